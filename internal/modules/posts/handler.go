package posts

import (
	"errors"
	"net/http"
	"strconv"

	"microblog/internal/domain"
	"microblog/internal/pkg/response"
	"microblog/internal/pkg/validator"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterPublicRoutes(v1 *gin.RouterGroup) {
	postGroup := v1.Group("/posts")
	{
		postGroup.GET("", h.List)
		postGroup.GET("/:id", h.Get)
	}
}

func (h *Handler) RegisterProtectedRoutes(protected *gin.RouterGroup) {
	postGroup := protected.Group("/posts")
	{
		postGroup.POST("", h.Create)
		postGroup.GET("/mine", h.ListMine)
		postGroup.PUT("/:id", h.Update)
		postGroup.DELETE("/:id", h.Delete)
	}
}

func (h *Handler) Create(c *gin.Context) {
	actor := currentUser(c)
	if actor == nil {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	var req CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	post, err := h.service.Create(c.Request.Context(), actor, req)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "CREATE_FAILED", "Failed to create post")
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"post": toPostResponse(post)})
}

func (h *Handler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	posts, err := h.service.List(c.Request.Context(), limit, offset)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "LIST_FAILED", "Failed to list posts")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"posts": toPostResponses(posts)})
}

func (h *Handler) ListMine(c *gin.Context) {
	actor := currentUser(c)
	if actor == nil {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	posts, err := h.service.ListMine(c.Request.Context(), actor)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "LIST_FAILED", "Failed to list posts")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"posts": toPostResponses(posts)})
}

func (h *Handler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid post ID")
		return
	}

	post, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrPostNotFound) {
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Post not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "GET_FAILED", "Failed to get post")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"post": toPostResponse(post)})
}

func (h *Handler) Update(c *gin.Context) {
	actor := currentUser(c)
	if actor == nil {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid post ID")
		return
	}

	var req UpdatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if fieldErrors := validator.Validate(req); fieldErrors != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid fields", fieldErrors)
		return
	}

	post, err := h.service.Update(c.Request.Context(), actor, id, req)
	if err != nil {
		writeMutationError(c, err, "UPDATE_FAILED", "Failed to update post")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"post": toPostResponse(post)})
}

func (h *Handler) Delete(c *gin.Context) {
	actor := currentUser(c)
	if actor == nil {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid post ID")
		return
	}

	if err := h.service.Delete(c.Request.Context(), actor, id); err != nil {
		writeMutationError(c, err, "DELETE_FAILED", "Failed to delete post")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "Post deleted"})
}

func writeMutationError(c *gin.Context, err error, failCode, failMessage string) {
	switch {
	case errors.Is(err, ErrPostNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Post not found")
	case errors.Is(err, ErrNotOwner):
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "You don't own this post")
	default:
		response.Error(c, http.StatusInternalServerError, failCode, failMessage)
	}
}

func currentUser(c *gin.Context) *domain.User {
	userAny, exists := c.Get("user")
	if !exists {
		return nil
	}
	user, ok := userAny.(*domain.User)
	if !ok {
		return nil
	}
	return user
}

func toPostResponse(p *domain.Post) PostResponse {
	return PostResponse{
		ID:        p.ID,
		Title:     p.Title,
		Content:   p.Content,
		OwnerID:   p.OwnerID,
		CreatedAt: p.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

func toPostResponses(posts []domain.Post) []PostResponse {
	out := make([]PostResponse, 0, len(posts))
	for i := range posts {
		out = append(out, toPostResponse(&posts[i]))
	}
	return out
}
