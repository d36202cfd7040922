package auth_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"microblog/internal/database"
	"microblog/internal/domain"
	"microblog/internal/middleware"
	"microblog/internal/modules/admin"
	"microblog/internal/modules/auth"
	"microblog/internal/pkg/password"
	"microblog/internal/pkg/token"
	"microblog/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	router *gin.Engine
	users  *repository.UserRepository
}

type apiResponse struct {
	Success bool                   `json:"success"`
	Data    map[string]interface{} `json:"data,omitempty"`
	Error   *errorDetail           `json:"error,omitempty"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.Connect(":memory:")
	require.NoError(t, err, "Failed to connect to test database")
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))

	userRepo := repository.NewUserRepository(db)
	revokedRepo := repository.NewRevokedTokenRepository(db)

	codec := token.New("e2e-secret", 15*time.Minute, 168*time.Hour)
	authService := auth.NewService(userRepo, revokedRepo, codec, "e2e-pepper", 168*time.Hour, false)
	authHandler := auth.NewHandler(authService)
	adminHandler := admin.NewHandler(userRepo)

	r := gin.New()
	r.Use(middleware.ErrorLogger())

	v1 := r.Group("/api/v1")
	authHandler.RegisterPublicRoutes(v1)

	protected := v1.Group("/")
	protected.Use(middleware.Auth(authService))
	authHandler.RegisterProtectedRoutes(protected)

	adminGroup := protected.Group("/admin")
	adminGroup.Use(middleware.AdminOnly())
	adminHandler.RegisterRoutes(adminGroup)

	return &testEnv{router: r, users: userRepo}
}

func (e *testEnv) do(t *testing.T, method, path string, body any, bearer string) (*httptest.ResponseRecorder, apiResponse) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	var parsed apiResponse
	_ = json.Unmarshal(w.Body.Bytes(), &parsed)
	return w, parsed
}

func registerAndLogin(t *testing.T, env *testEnv, email, username, pw string) (access, refresh string) {
	t.Helper()

	w, _ := env.do(t, http.MethodPost, "/api/v1/auth/register", gin.H{
		"username": username, "email": email, "password": pw,
	}, "")
	require.Equal(t, http.StatusCreated, w.Code)

	w, resp := env.do(t, http.MethodPost, "/api/v1/auth/login", gin.H{
		"email": email, "password": pw,
	}, "")
	require.Equal(t, http.StatusOK, w.Code)

	tokens := resp.Data["tokens"].(map[string]interface{})
	return tokens["access_token"].(string), tokens["refresh_token"].(string)
}

func TestAPI_RegisterLoginMe(t *testing.T) {
	env := setupEnv(t)

	access, _ := registerAndLogin(t, env, "a@x.com", "alice", "pw123456")

	w, resp := env.do(t, http.MethodGet, "/api/v1/users/me", nil, access)
	require.Equal(t, http.StatusOK, w.Code)

	user := resp.Data["user"].(map[string]interface{})
	assert.Equal(t, "alice", user["username"])
	assert.Equal(t, "a@x.com", user["email"])
	assert.Equal(t, "user", user["role"])
}

func TestAPI_RegisterDuplicateEmail(t *testing.T) {
	env := setupEnv(t)

	registerAndLogin(t, env, "a@x.com", "alice", "pw123456")

	w, resp := env.do(t, http.MethodPost, "/api/v1/auth/register", gin.H{
		"username": "other", "email": "a@x.com", "password": "pw123456",
	}, "")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "EMAIL_EXISTS", resp.Error.Code)
}

func TestAPI_LoginWrongPassword(t *testing.T) {
	env := setupEnv(t)

	registerAndLogin(t, env, "a@x.com", "alice", "pw123456")

	w, resp := env.do(t, http.MethodPost, "/api/v1/auth/login", gin.H{
		"email": "a@x.com", "password": "nope",
	}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "INVALID_CREDENTIALS", resp.Error.Code)
}

func TestAPI_RefreshRotationFlow(t *testing.T) {
	env := setupEnv(t)

	access1, refresh1 := registerAndLogin(t, env, "a@x.com", "alice", "pw123456")

	// First refresh succeeds
	w, resp := env.do(t, http.MethodPost, "/api/v1/auth/refresh", gin.H{"refresh_token": refresh1}, "")
	require.Equal(t, http.StatusOK, w.Code)
	tokens := resp.Data["tokens"].(map[string]interface{})
	refresh2 := tokens["refresh_token"].(string)
	require.NotEqual(t, refresh1, refresh2)

	// Replay of the rotated token is rejected
	w, resp = env.do(t, http.MethodPost, "/api/v1/auth/refresh", gin.H{"refresh_token": refresh1}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "TOKEN_REVOKED", resp.Error.Code)

	// The original access token still works until its own exp
	w, _ = env.do(t, http.MethodGet, "/api/v1/users/me", nil, access1)
	assert.Equal(t, http.StatusOK, w.Code)

	// Logout the live refresh token, then refreshing with it fails
	w, _ = env.do(t, http.MethodPost, "/api/v1/auth/logout", gin.H{"token": refresh2}, "")
	require.Equal(t, http.StatusOK, w.Code)

	w, resp = env.do(t, http.MethodPost, "/api/v1/auth/refresh", gin.H{"refresh_token": refresh2}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "TOKEN_REVOKED", resp.Error.Code)
}

func TestAPI_LogoutAccessToken(t *testing.T) {
	env := setupEnv(t)

	access, _ := registerAndLogin(t, env, "a@x.com", "alice", "pw123456")

	w, _ := env.do(t, http.MethodPost, "/api/v1/auth/logout", gin.H{"token": access}, "")
	require.Equal(t, http.StatusOK, w.Code)

	w, resp := env.do(t, http.MethodGet, "/api/v1/users/me", nil, access)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "TOKEN_REVOKED", resp.Error.Code)
}

func TestAPI_AccessTokenRejectedAsRefresh(t *testing.T) {
	env := setupEnv(t)

	access, _ := registerAndLogin(t, env, "a@x.com", "alice", "pw123456")

	w, resp := env.do(t, http.MethodPost, "/api/v1/auth/refresh", gin.H{"refresh_token": access}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "TOKEN_KIND_MISMATCH", resp.Error.Code)
}

func TestAPI_AdminRoutesRequireAdminRole(t *testing.T) {
	env := setupEnv(t)

	access, _ := registerAndLogin(t, env, "a@x.com", "alice", "pw123456")

	w, resp := env.do(t, http.MethodGet, "/api/v1/admin/users", nil, access)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "FORBIDDEN", resp.Error.Code)

	// Promote a second account to admin directly in the store
	hash, err := password.Hash("admin123")
	require.NoError(t, err)
	adminUser := &domain.User{
		Email: "admin@x.com", Username: "boss", PasswordHash: hash,
		Role: domain.RoleAdmin, IsActive: true,
	}
	require.NoError(t, env.users.Create(context.Background(), adminUser))

	w, resp = env.do(t, http.MethodPost, "/api/v1/auth/login", gin.H{
		"email": "admin@x.com", "password": "admin123",
	}, "")
	require.Equal(t, http.StatusOK, w.Code)
	adminAccess := resp.Data["tokens"].(map[string]interface{})["access_token"].(string)

	w, resp = env.do(t, http.MethodGet, "/api/v1/admin/users", nil, adminAccess)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, resp.Data["users"], 2)
}

func TestAPI_MissingAndGarbledAuthorization(t *testing.T) {
	env := setupEnv(t)

	w, resp := env.do(t, http.MethodGet, "/api/v1/users/me", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "UNAUTHORIZED", resp.Error.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
	req.Header.Set("Authorization", "Token abc")
	w2 := httptest.NewRecorder()
	env.router.ServeHTTP(w2, req)
	assert.Equal(t, http.StatusUnauthorized, w2.Code)

	w, resp = env.do(t, http.MethodGet, "/api/v1/users/me", nil, "garbage.token.here")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "INVALID_TOKEN", resp.Error.Code)
}
