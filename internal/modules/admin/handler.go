package admin

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"microblog/internal/domain"
	"microblog/internal/pkg/response"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// UserDirectory — user listing and moderation for the admin views
type UserDirectory interface {
	List(ctx context.Context) ([]domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	Update(ctx context.Context, u *domain.User) error
}

type SetActiveRequest struct {
	IsActive *bool `json:"is_active" binding:"required"`
}

type Handler struct {
	users UserDirectory
}

func NewHandler(users UserDirectory) *Handler {
	return &Handler{users: users}
}

// RegisterRoutes expects a group already guarded by AdminOnly middleware.
func (h *Handler) RegisterRoutes(adminGroup *gin.RouterGroup) {
	adminGroup.GET("/dashboard", h.Dashboard)
	adminGroup.GET("/users", h.ListUsers)
	adminGroup.PATCH("/users/:id/active", h.SetUserActive)
}

func (h *Handler) Dashboard(c *gin.Context) {
	users, err := h.users.List(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "DASHBOARD_FAILED", "Failed to load dashboard")
		return
	}

	var active int
	for _, u := range users {
		if u.IsActive {
			active++
		}
	}

	admin := ""
	if userAny, exists := c.Get("user"); exists {
		if u, ok := userAny.(*domain.User); ok {
			admin = u.Username
		}
	}

	response.Success(c, http.StatusOK, gin.H{
		"message":      "Welcome Admin",
		"admin":        admin,
		"total_users":  len(users),
		"active_users": active,
	})
}

func (h *Handler) ListUsers(c *gin.Context) {
	users, err := h.users.List(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "LIST_FAILED", "Failed to list users")
		return
	}

	out := make([]gin.H, 0, len(users))
	for _, u := range users {
		out = append(out, gin.H{
			"id":        u.ID,
			"username":  u.Username,
			"email":     u.Email,
			"role":      u.Role,
			"is_active": u.IsActive,
		})
	}

	response.Success(c, http.StatusOK, gin.H{"users": out})
}

// SetUserActive enables or disables an account. A disabled account can no
// longer log in, refresh or resolve its access tokens.
func (h *Handler) SetUserActive(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid user ID")
		return
	}

	var req SetActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "is_active is required")
		return
	}

	user, err := h.users.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.Error(c, http.StatusNotFound, "USER_NOT_FOUND", "User not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "UPDATE_FAILED", "Failed to load user")
		return
	}

	user.IsActive = *req.IsActive
	if err := h.users.Update(c.Request.Context(), user); err != nil {
		response.Error(c, http.StatusInternalServerError, "UPDATE_FAILED", "Failed to update user")
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"id":        user.ID,
		"username":  user.Username,
		"is_active": user.IsActive,
	})
}
