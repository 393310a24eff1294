package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"

	"github.com/lexpravo/intake-api/config"
	"github.com/lexpravo/intake-api/internal/models"
	"github.com/lexpravo/intake-api/pkg/jwt"
	"github.com/lexpravo/intake-api/pkg/logger"
	"go.uber.org/zap"
)

var (
	ErrAdminAuthDisabled   = errors.New("staff dashboard login is not configured")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrAdminTokenGenerated = errors.New("failed to issue session token")
)

// AdminAuthService authenticates the staff dashboard against the
// credentials configured for the deployment. Sessions are stateless JWTs
// carried in an HTTP-only cookie.
type AdminAuthService struct {
	config       *config.Config
	tokenManager *jwt.TokenManager
}

func NewAdminAuthService(cfg *config.Config) *AdminAuthService {
	var tokenManager *jwt.TokenManager
	if cfg.AdminSession.JWTSecret != "" {
		tokenManager = jwt.NewTokenManager(
			cfg.AdminSession.JWTSecret,
			cfg.AdminSession.JWTIssuer,
			cfg.AdminSession.SessionTTLHours,
		)
	}

	return &AdminAuthService{
		config:       cfg,
		tokenManager: tokenManager,
	}
}

// Login checks the configured staff credentials and issues a session token
func (s *AdminAuthService) Login(ctx context.Context, email, password string) (*models.AdminSession, string, error) {
	if s.tokenManager == nil || s.config.AdminSession.StaffEmail == "" {
		return nil, "", ErrAdminAuthDisabled
	}

	emailOK := jwt.TimingSafeCompare(
		strings.ToLower(strings.TrimSpace(email)),
		strings.ToLower(s.config.AdminSession.StaffEmail),
	)
	passwordOK := jwt.TimingSafeCompare(password, s.config.AdminSession.StaffPassword)
	if !emailOK || !passwordOK {
		logger.Warn("Staff login rejected", zap.String("email", email))
		return nil, "", ErrInvalidCredentials
	}

	staffID := staffIDFromEmail(s.config.AdminSession.StaffEmail)
	token, err := s.tokenManager.GenerateToken(
		staffID,
		s.config.AdminSession.StaffEmail,
		s.config.AdminSession.StaffName,
		string(models.StaffRoleAdmin),
	)
	if err != nil {
		logger.Error("Failed to generate staff session token", zap.Error(err))
		return nil, "", ErrAdminTokenGenerated
	}

	session := &models.AdminSession{
		StaffID: staffID,
		Email:   s.config.AdminSession.StaffEmail,
		Name:    s.config.AdminSession.StaffName,
		Role:    models.StaffRoleAdmin,
	}

	logger.Info("Staff logged in", zap.String("staff_id", staffID))

	return session, token, nil
}

func (s *AdminAuthService) GetSessionTTL() int {
	return s.config.AdminSession.SessionTTLHours * 3600
}

func (s *AdminAuthService) GetCookieDomain() string {
	return s.config.AdminSession.CookieDomain
}

func (s *AdminAuthService) GetCookieSecure() bool {
	return s.config.AdminSession.CookieSecure
}

func (s *AdminAuthService) GetTokenManager() *jwt.TokenManager {
	return s.tokenManager
}

// staffIDFromEmail derives a stable opaque id so logs never carry the email
func staffIDFromEmail(email string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(email)))
	return hex.EncodeToString(sum[:8])
}
