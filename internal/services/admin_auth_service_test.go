package services_test

import (
	"context"
	"testing"

	"github.com/lexpravo/intake-api/config"
	"github.com/lexpravo/intake-api/internal/models"
	"github.com/lexpravo/intake-api/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func adminAuthConfig() *config.Config {
	return &config.Config{
		AdminSession: config.AdminSessionConfig{
			JWTSecret:       "test-secret-at-least-32-chars-long",
			JWTIssuer:       "intake-api",
			SessionTTLHours: 8,
			StaffEmail:      "lawyer@lexpravo.ru",
			StaffName:       "Анна",
			StaffPassword:   "correct horse battery staple",
		},
	}
}

func TestAdminAuthService_Login(t *testing.T) {
	svc := services.NewAdminAuthService(adminAuthConfig())

	session, token, err := svc.Login(context.Background(), "lawyer@lexpravo.ru", "correct horse battery staple")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, "lawyer@lexpravo.ru", session.Email)
	assert.Equal(t, models.StaffRoleAdmin, session.Role)
	assert.NotEmpty(t, session.StaffID)

	claims, err := svc.GetTokenManager().ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, session.StaffID, claims.StaffID)
	assert.Equal(t, "lawyer@lexpravo.ru", claims.Email)
}

func TestAdminAuthService_Login_EmailCaseInsensitive(t *testing.T) {
	svc := services.NewAdminAuthService(adminAuthConfig())

	_, _, err := svc.Login(context.Background(), "  Lawyer@LexPravo.RU ", "correct horse battery staple")
	require.NoError(t, err)
}

func TestAdminAuthService_Login_WrongPassword(t *testing.T) {
	svc := services.NewAdminAuthService(adminAuthConfig())

	_, _, err := svc.Login(context.Background(), "lawyer@lexpravo.ru", "wrong")
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)
}

func TestAdminAuthService_Login_WrongEmail(t *testing.T) {
	svc := services.NewAdminAuthService(adminAuthConfig())

	_, _, err := svc.Login(context.Background(), "intruder@example.com", "correct horse battery staple")
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)
}

func TestAdminAuthService_Login_Disabled(t *testing.T) {
	svc := services.NewAdminAuthService(&config.Config{})

	_, _, err := svc.Login(context.Background(), "lawyer@lexpravo.ru", "anything")
	assert.ErrorIs(t, err, services.ErrAdminAuthDisabled)
	assert.Nil(t, svc.GetTokenManager())
}

func TestAdminAuthService_SessionTTL(t *testing.T) {
	svc := services.NewAdminAuthService(adminAuthConfig())
	assert.Equal(t, 8*3600, svc.GetSessionTTL())
}
