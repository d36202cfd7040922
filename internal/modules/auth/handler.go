package auth

import (
	"errors"
	"net/http"

	"microblog/internal/domain"
	"microblog/internal/pkg/response"
	"microblog/internal/pkg/token"

	"github.com/gin-gonic/gin"
)

// Handler manages all HTTP interactions for authentication
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterPublicRoutes(v1 *gin.RouterGroup) {
	authGroup := v1.Group("/auth")
	{
		authGroup.POST("/register", h.Register)
		authGroup.POST("/login", h.Login)
		authGroup.POST("/refresh", h.Refresh)
		authGroup.POST("/logout", h.Logout)
	}
}

func (h *Handler) RegisterProtectedRoutes(protected *gin.RouterGroup) {
	userGroup := protected.Group("/users")
	{
		userGroup.GET("/me", h.GetMe)
	}
}

func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	user, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrEmailAlreadyExists):
			response.Error(c, http.StatusConflict, "EMAIL_EXISTS", "This email is already registered")
		case errors.Is(err, ErrUsernameTaken):
			response.Error(c, http.StatusConflict, "USERNAME_TAKEN", "This username is already taken")
		default:
			response.Error(c, http.StatusInternalServerError, "REGISTRATION_FAILED", "Failed to register user")
		}
		return
	}

	response.Success(c, http.StatusCreated, gin.H{
		"user": toUserResponse(user),
	})
}

func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	result, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidCredentials):
			response.Error(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Email or password is incorrect")
		case errors.Is(err, ErrAccountDisabled):
			response.Error(c, http.StatusForbidden, "ACCOUNT_DISABLED", "This account is disabled")
		case errors.Is(err, ErrUnavailable):
			response.Error(c, http.StatusServiceUnavailable, "UNAVAILABLE", "Authentication temporarily unavailable")
		default:
			response.Error(c, http.StatusInternalServerError, "LOGIN_FAILED", "Failed to login")
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"user": toUserResponse(result.User),
		"tokens": TokenPairResponse{
			AccessToken:  result.AccessToken,
			RefreshToken: result.RefreshToken,
			TokenType:    "bearer",
		},
	})
}

func (h *Handler) Refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	result, err := h.service.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		writeRefreshError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"tokens": TokenPairResponse{
			AccessToken:  result.AccessToken,
			RefreshToken: result.RefreshToken,
			TokenType:    "bearer",
		},
	})
}

func (h *Handler) Logout(c *gin.Context) {
	var req LogoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	if err := h.service.Logout(c.Request.Context(), req.Token); err != nil {
		response.Error(c, http.StatusServiceUnavailable, "UNAVAILABLE", "Authentication temporarily unavailable")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "Logged out"})
}

func (h *Handler) GetMe(c *gin.Context) {
	userIDAny, exists := c.Get("user_id")
	if !exists {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	user, err := h.service.GetCurrentUser(c.Request.Context(), userIDAny.(int64))
	if err != nil {
		response.Error(c, http.StatusNotFound, "USER_NOT_FOUND", "User not found")
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"user": toUserResponse(user),
	})
}

// writeRefreshError keeps the token failure modes distinct: an expired
// token should send the client back to login, a revoked one means a
// possible replay, malformed or kind-mismatched tokens are rejected flat.
func writeRefreshError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrTokenRevoked):
		response.Error(c, http.StatusUnauthorized, "TOKEN_REVOKED", "Refresh token has been revoked")
	case errors.Is(err, token.ErrExpired):
		response.Error(c, http.StatusUnauthorized, "TOKEN_EXPIRED", "Refresh token has expired")
	case errors.Is(err, token.ErrKindMismatch):
		response.Error(c, http.StatusUnauthorized, "TOKEN_KIND_MISMATCH", "Not a refresh token")
	case errors.Is(err, token.ErrMalformed):
		response.Error(c, http.StatusUnauthorized, "TOKEN_MALFORMED", "Invalid refresh token")
	case errors.Is(err, ErrAccountInvalid):
		response.Error(c, http.StatusUnauthorized, "ACCOUNT_INVALID", "Account is missing or disabled")
	case errors.Is(err, ErrUnavailable):
		response.Error(c, http.StatusServiceUnavailable, "UNAVAILABLE", "Authentication temporarily unavailable")
	default:
		response.Error(c, http.StatusInternalServerError, "REFRESH_FAILED", "Failed to refresh session")
	}
}

func toUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		Role:     string(u.Role),
	}
}
