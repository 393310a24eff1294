package services

import (
	"context"

	"github.com/lexpravo/intake-api/internal/models"
	"github.com/lexpravo/intake-api/pkg/jwt"
)

// ApplicationRepositoryInterface defines application persistence operations
type ApplicationRepositoryInterface interface {
	Create(ctx context.Context, app *models.NewApplication) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.Application, error)
	List(ctx context.Context, filter models.ApplicationFilter) ([]*models.Application, error)
	UpdateStatus(ctx context.Context, id int64, status models.ApplicationStatus) error
	GetClientTelegramID(ctx context.Context, clientID int64) (int64, error)
}

// ClientRepositoryInterface defines client read operations
type ClientRepositoryInterface interface {
	List(ctx context.Context, limit, offset int) ([]*models.Client, error)
}

// PaymentRepositoryInterface defines payment persistence operations
type PaymentRepositoryInterface interface {
	Create(ctx context.Context, payment *models.Payment) (int64, error)
	List(ctx context.Context, limit, offset int) ([]*models.Payment, error)
}

// NotifierInterface defines Telegram notification operations
type NotifierInterface interface {
	NotifyNewApplication(ctx context.Context, app *models.Application) error
	NotifyClient(ctx context.Context, telegramUserID int64, text string) error
}

// WizardServiceInterface defines the draft lifecycle operations
type WizardServiceInterface interface {
	GetDraft(ctx context.Context, sessionKey string) *models.DraftResponse
	SaveDraft(ctx context.Context, sessionKey string, draft *models.ApplicationDraft) (*models.DraftResponse, error)
	Advance(ctx context.Context, sessionKey string) (*models.DraftResponse, *models.StepError)
	Retreat(ctx context.Context, sessionKey string) (*models.DraftResponse, error)
	Reset(ctx context.Context, sessionKey string)
	StageFiles(ctx context.Context, sessionKey string, uploads []models.FileUpload) (*models.FileStageResult, error)
	RemoveFile(ctx context.Context, sessionKey string, fileID string) (*models.DraftResponse, error)
}

// IntakeServiceInterface defines submission operations
type IntakeServiceInterface interface {
	Submit(ctx context.Context, sessionKey string, req *models.SubmitRequest) (*models.SubmitResponse, error)
	NotifyClient(ctx context.Context, req *models.NotifyClientRequest) (*models.NotifyClientResponse, error)
}

// CategoryServiceInterface defines catalogue read operations
type CategoryServiceInterface interface {
	GetAll(ctx context.Context) ([]*models.Category, error)
	GetByID(ctx context.Context, id int) (*models.Category, error)
}

// AdminServiceInterface defines staff dashboard operations
type AdminServiceInterface interface {
	ListApplications(ctx context.Context, filter models.ApplicationFilter) ([]*models.Application, error)
	GetApplication(ctx context.Context, id int64) (*models.Application, error)
	UpdateApplicationStatus(ctx context.Context, id int64, status models.ApplicationStatus) (*models.Application, error)
	ListClients(ctx context.Context, limit, offset int) ([]*models.Client, error)
	ListPayments(ctx context.Context, limit, offset int) ([]*models.Payment, error)
}

// AdminAuthServiceInterface defines the staff dashboard login flow
type AdminAuthServiceInterface interface {
	Login(ctx context.Context, email, password string) (*models.AdminSession, string, error)
	GetSessionTTL() int
	GetCookieDomain() string
	GetCookieSecure() bool
	GetTokenManager() *jwt.TokenManager
}
