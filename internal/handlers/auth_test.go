package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/elky431-debug/creax-backend/internal/constants"
	"github.com/elky431-debug/creax-backend/internal/database"
	"github.com/elky431-debug/creax-backend/internal/dto"
	"github.com/elky431-debug/creax-backend/internal/middleware"
	"github.com/elky431-debug/creax-backend/internal/models"
	"github.com/elky431-debug/creax-backend/internal/repository"
	"github.com/elky431-debug/creax-backend/internal/services"
)

type authTestEnv struct {
	db          *gorm.DB
	handler     *AuthHandler
	authService *services.AuthService
}

func setupAuthTestEnv(t *testing.T) authTestEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&models.User{})
	require.NoError(t, err)

	database.SetDB(db)

	userRepo := repository.NewUserRepository(db)
	authService := services.NewAuthService(userRepo)
	handler := NewAuthHandler(authService)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	return authTestEnv{
		db:          db,
		handler:     handler,
		authService: authService,
	}
}

func newAuthRouter(env authTestEnv) *gin.Engine {
	r := gin.New()
	store := cookie.NewStore([]byte("secret"))
	r.Use(sessions.Sessions(constants.SessionName, store))
	r.POST("/api/auth/signup", env.handler.Signup)
	r.POST("/api/auth/login", env.handler.Login)
	r.GET("/api/auth/me", middleware.RequireAuth(), env.handler.GetCurrentUser)
	return r
}

func postJSON(t *testing.T, r *gin.Engine, path string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()

	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthHandler_Signup(t *testing.T) {
	env := setupAuthTestEnv(t)
	r := newAuthRouter(env)

	w := postJSON(t, r, "/api/auth/signup", map[string]string{
		"email":        "new@example.com",
		"password":     "supersecret",
		"display_name": "New User",
		"role":         "designer",
	})

	require.Equal(t, http.StatusCreated, w.Code)

	var response dto.ProfileDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Equal(t, "new@example.com", response.Email)
	require.Equal(t, models.RoleDesigner, response.Role)
}

func TestAuthHandler_SignupRejectsBadRole(t *testing.T) {
	env := setupAuthTestEnv(t)
	r := newAuthRouter(env)

	w := postJSON(t, r, "/api/auth/signup", map[string]string{
		"email":        "new@example.com",
		"password":     "supersecret",
		"display_name": "New User",
		"role":         "admin",
	})

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthHandler_SignupConflictOnDuplicateEmail(t *testing.T) {
	env := setupAuthTestEnv(t)
	r := newAuthRouter(env)

	payload := map[string]string{
		"email":        "dup@example.com",
		"password":     "supersecret",
		"display_name": "Dup",
		"role":         "creator",
	}
	require.Equal(t, http.StatusCreated, postJSON(t, r, "/api/auth/signup", payload).Code)
	require.Equal(t, http.StatusConflict, postJSON(t, r, "/api/auth/signup", payload).Code)
}

func TestAuthHandler_LoginAndMe(t *testing.T) {
	env := setupAuthTestEnv(t)
	r := newAuthRouter(env)

	_, err := env.authService.Signup(services.SignupInput{
		Email:       "existing@example.com",
		Password:    "supersecret",
		DisplayName: "Existing",
		Role:        models.RoleCreator,
	})
	require.NoError(t, err)

	w := postJSON(t, r, "/api/auth/login", map[string]string{
		"email":    "existing@example.com",
		"password": "supersecret",
	})
	require.Equal(t, http.StatusOK, w.Code)

	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies, "expected session cookie to be set")

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	me := httptest.NewRecorder()
	r.ServeHTTP(me, req)

	require.Equal(t, http.StatusOK, me.Code)

	var response dto.ProfileDTO
	require.NoError(t, json.Unmarshal(me.Body.Bytes(), &response))
	require.Equal(t, "existing@example.com", response.Email)
}

func TestAuthHandler_LoginRejectsWrongPassword(t *testing.T) {
	env := setupAuthTestEnv(t)
	r := newAuthRouter(env)

	_, err := env.authService.Signup(services.SignupInput{
		Email:       "existing@example.com",
		Password:    "supersecret",
		DisplayName: "Existing",
		Role:        models.RoleCreator,
	})
	require.NoError(t, err)

	w := postJSON(t, r, "/api/auth/login", map[string]string{
		"email":    "existing@example.com",
		"password": "wrong",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthHandler_MeRequiresSession(t *testing.T) {
	env := setupAuthTestEnv(t)
	r := newAuthRouter(env)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
}
