package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/lexpravo/intake-api/config"
	"github.com/lexpravo/intake-api/internal/handlers"
	"github.com/lexpravo/intake-api/internal/middleware"
	"github.com/lexpravo/intake-api/internal/models"
	"github.com/lexpravo/intake-api/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type adminFixture struct {
	router  *gin.Engine
	appRepo *MockApplicationRepository
}

// newAdminRouter builds the staff surface exactly like the production
// router: cookie-session login plus the protected dashboard group
func newAdminRouter(t *testing.T) *adminFixture {
	t.Helper()

	cfg := &config.Config{
		AdminSession: config.AdminSessionConfig{
			JWTSecret:       "test-secret-at-least-32-chars-long",
			JWTIssuer:       "intake-api",
			SessionTTLHours: 8,
			StaffEmail:      "lawyer@lexpravo.ru",
			StaffName:       "Анна",
			StaffPassword:   "correct horse battery staple",
		},
	}

	appRepo := new(MockApplicationRepository)
	authService := services.NewAdminAuthService(cfg)
	adminService := services.NewAdminService(appRepo, new(MockClientRepository), new(MockPaymentRepository))

	authHandler := handlers.NewAdminAuthHandler(authService)
	adminHandler := handlers.NewAdminHandler(adminService)

	router := gin.New()
	auth := router.Group("/api/v1/auth/admin")
	{
		auth.POST("/login", authHandler.Login)
		auth.POST("/logout", authHandler.Logout)
	}

	sessionRequired := middleware.AdminSessionMiddleware(
		authService.GetTokenManager(),
		authService.GetCookieDomain(),
		authService.GetCookieSecure(),
	)
	admin := router.Group("/api/v1/admin", sessionRequired)
	{
		admin.GET("/applications", adminHandler.ListApplications)
		admin.GET("/applications/:id", adminHandler.GetApplication)
		admin.POST("/applications/:id/status", adminHandler.UpdateApplicationStatus)
	}
	router.GET("/api/v1/auth/admin/session", sessionRequired, authHandler.GetSession)

	return &adminFixture{router: router, appRepo: appRepo}
}

// login performs the login round trip and returns the session cookie
func (f *adminFixture) login(t *testing.T) *http.Cookie {
	t.Helper()

	body, _ := json.Marshal(gin.H{
		"email":    "lawyer@lexpravo.ru",
		"password": "correct horse battery staple",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/admin/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == middleware.AdminSessionCookieName {
			return cookie
		}
	}
	t.Fatal("login response carries no session cookie")
	return nil
}

func TestAdminLogin_SetsSessionCookie(t *testing.T) {
	f := newAdminRouter(t)

	cookie := f.login(t)
	assert.NotEmpty(t, cookie.Value)
	assert.True(t, cookie.HttpOnly)
}

func TestAdminLogin_InvalidCredentials(t *testing.T) {
	f := newAdminRouter(t)

	body, _ := json.Marshal(gin.H{"email": "lawyer@lexpravo.ru", "password": "wrong"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/admin/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminDashboard_RequiresSession(t *testing.T) {
	f := newAdminRouter(t)

	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/admin/applications", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminDashboard_ListApplications(t *testing.T) {
	f := newAdminRouter(t)
	cookie := f.login(t)

	f.appRepo.On("List", mock.Anything, models.ApplicationFilter{
		Status: models.ApplicationStatusNew,
		Limit:  20,
	}).Return([]*models.Application{{ID: 101, Status: models.ApplicationStatusNew}}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/applications?status=new&limit=20", nil)
	req.AddCookie(cookie)

	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"count":1`)
}

func TestAdminDashboard_UpdateApplicationStatus(t *testing.T) {
	f := newAdminRouter(t)
	cookie := f.login(t)

	f.appRepo.On("UpdateStatus", mock.Anything, int64(101), models.ApplicationStatusInProgress).Return(nil)
	f.appRepo.On("GetByID", mock.Anything, int64(101)).
		Return(&models.Application{ID: 101, Status: models.ApplicationStatusInProgress}, nil)

	body, _ := json.Marshal(gin.H{"status": "in_progress"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/applications/101/status", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(cookie)

	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var app models.Application
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &app))
	assert.Equal(t, models.ApplicationStatusInProgress, app.Status)
}

func TestAdminSession_Endpoint(t *testing.T) {
	f := newAdminRouter(t)
	cookie := f.login(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/admin/session", nil)
	req.AddCookie(cookie)

	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "lawyer@lexpravo.ru")
}
