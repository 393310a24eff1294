package services_test

import (
	"context"
	"encoding/base64"
	"sync"
	"testing"
	"time"

	"github.com/lexpravo/intake-api/config"
	"github.com/lexpravo/intake-api/internal/drafts"
	"github.com/lexpravo/intake-api/internal/files"
	"github.com/lexpravo/intake-api/internal/models"
	"github.com/lexpravo/intake-api/internal/services"
	"github.com/lexpravo/intake-api/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{AppEnv: "development"},
		Wizard: config.WizardConfig{
			DraftTTLHours:    24,
			MaxFiles:         5,
			MaxFileSizeBytes: 10 * 1024 * 1024,
		},
	}
}

func validSubmitRequest() *models.SubmitRequest {
	return &models.SubmitRequest{
		CategoryID:     3,
		Description:    "Спор о границах участка с соседом",
		Name:           "Иван",
		Phone:          "+79991234567",
		ContactMethod:  models.ContactMethodTelegram,
		TelegramUserID: 42,
	}
}

func realEstateCategory() *models.Category {
	return &models.Category{ID: 3, Name: "Недвижимость", Slug: "real-estate"}
}

func newIntakeFixture(cfg *config.Config) (*services.IntakeService, *MockApplicationRepository, *MockPaymentRepository, *MockCategoryService, *drafts.Store) {
	appRepo := new(MockApplicationRepository)
	paymentRepo := new(MockPaymentRepository)
	categories := new(MockCategoryService)
	store := drafts.NewStore(24 * time.Hour)
	intake := files.NewIntake(nil, files.DefaultLimits())

	svc := services.NewIntakeService(appRepo, paymentRepo, categories, store, intake, nil, cfg, &stubHTTPClient{status: 200})
	return svc, appRepo, paymentRepo, categories, store
}

func TestIntakeService_Submit_Success(t *testing.T) {
	svc, appRepo, _, categories, store := newIntakeFixture(testConfig())
	ctx := context.Background()

	// A draft snapshot exists before submission and must be cleared after
	store.Save("tg:42", &models.WizardState{CurrentStep: 4})

	categories.On("GetByID", ctx, 3).Return(realEstateCategory(), nil)
	appRepo.On("Create", ctx, mock.MatchedBy(func(app *models.NewApplication) bool {
		return app.CategoryID == 3 &&
			app.Client.Name == "Иван" &&
			app.Client.TelegramUserID == int64(42) &&
			app.ContactMethod == models.ContactMethodTelegram &&
			app.ContactTime == models.ContactTimeAny
	})).Return(int64(101), nil).Once()

	resp, err := svc.Submit(ctx, "tg:42", validSubmitRequest())
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, int64(101), resp.ApplicationID)
	assert.Empty(t, resp.PaymentURL)

	_, found := store.Load("tg:42")
	assert.False(t, found, "snapshot must be cleared after a confirmed submission")

	appRepo.AssertExpectations(t)
}

func TestIntakeService_Submit_ValidationFailureKeepsSnapshot(t *testing.T) {
	svc, appRepo, _, _, store := newIntakeFixture(testConfig())
	ctx := context.Background()

	store.Save("tg:42", &models.WizardState{CurrentStep: 4})

	req := validSubmitRequest()
	req.Description = "коротко"

	_, err := svc.Submit(ctx, "tg:42", req)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrValidation))

	_, found := store.Load("tg:42")
	assert.True(t, found, "a failed submission must not clear the snapshot")

	appRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestIntakeService_Submit_UnknownCategory(t *testing.T) {
	svc, appRepo, _, categories, _ := newIntakeFixture(testConfig())
	ctx := context.Background()

	categories.On("GetByID", ctx, 3).Return(nil, errors.NotFoundError("category"))

	_, err := svc.Submit(ctx, "tg:42", validSubmitRequest())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrValidation))
	appRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestIntakeService_Submit_IdempotencyReplay(t *testing.T) {
	svc, appRepo, _, categories, _ := newIntakeFixture(testConfig())
	ctx := context.Background()

	categories.On("GetByID", ctx, 3).Return(realEstateCategory(), nil)
	appRepo.On("Create", ctx, mock.Anything).Return(int64(101), nil).Once()

	req := validSubmitRequest()
	req.IdempotencyKey = "key-1"

	first, err := svc.Submit(ctx, "tg:42", req)
	require.NoError(t, err)

	second, err := svc.Submit(ctx, "tg:42", req)
	require.NoError(t, err)
	assert.Equal(t, first.ApplicationID, second.ApplicationID)

	// Create ran exactly once; the second call replayed the response
	appRepo.AssertExpectations(t)
	appRepo.AssertNumberOfCalls(t, "Create", 1)
}

func TestIntakeService_Submit_PayableCategoryCreatesPayment(t *testing.T) {
	cfg := testConfig()
	cfg.Payments.GatewayBaseURL = "https://pay.example.com"

	appRepo := new(MockApplicationRepository)
	paymentRepo := new(MockPaymentRepository)
	categories := new(MockCategoryService)
	store := drafts.NewStore(24 * time.Hour)
	gateway := &stubHTTPClient{status: 200, body: `{"payment_url":"https://pay.example.com/checkout/xyz"}`}

	svc := services.NewIntakeService(appRepo, paymentRepo, categories, store,
		files.NewIntake(nil, files.DefaultLimits()), nil, cfg, gateway)
	ctx := context.Background()

	payable := realEstateCategory()
	payable.Payable = true
	payable.PriceKopecks = 500000

	categories.On("GetByID", ctx, 3).Return(payable, nil)
	appRepo.On("Create", ctx, mock.Anything).Return(int64(101), nil).Once()
	paymentRepo.On("Create", ctx, mock.MatchedBy(func(p *models.Payment) bool {
		return p.ApplicationID == 101 &&
			p.AmountKopecks == 500000 &&
			p.Status == models.PaymentStatusPending
	})).Return(int64(7), nil).Once()

	resp, err := svc.Submit(ctx, "tg:42", validSubmitRequest())
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "https://pay.example.com/checkout/xyz", resp.PaymentURL)
	assert.Equal(t, 1, gateway.calls)

	paymentRepo.AssertExpectations(t)
}

func TestIntakeService_Submit_PaymentFailureDoesNotFailSubmission(t *testing.T) {
	cfg := testConfig()
	cfg.Payments.GatewayBaseURL = "https://pay.example.com"

	appRepo := new(MockApplicationRepository)
	paymentRepo := new(MockPaymentRepository)
	categories := new(MockCategoryService)
	gateway := &stubHTTPClient{status: 502, body: `bad gateway`}

	svc := services.NewIntakeService(appRepo, paymentRepo, categories,
		drafts.NewStore(24*time.Hour), files.NewIntake(nil, files.DefaultLimits()), nil, cfg, gateway)
	ctx := context.Background()

	payable := realEstateCategory()
	payable.Payable = true
	payable.PriceKopecks = 500000

	categories.On("GetByID", ctx, 3).Return(payable, nil)
	appRepo.On("Create", ctx, mock.Anything).Return(int64(101), nil).Once()

	resp, err := svc.Submit(ctx, "tg:42", validSubmitRequest())
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Status)
	assert.Empty(t, resp.PaymentURL)

	paymentRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

// recordingUploader tracks stored and deleted object keys
type recordingUploader struct {
	mu       sync.Mutex
	uploaded []string
	deleted  []string
}

func (u *recordingUploader) Upload(ctx context.Context, data []byte, key, contentType string) (string, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.uploaded = append(u.uploaded, key)
	return "https://storage.example.com/" + key, nil
}

func (u *recordingUploader) Delete(ctx context.Context, key string) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.deleted = append(u.deleted, key)
	return nil
}

func (u *recordingUploader) GenerateKey(sessionKey, originalFileName string) string {
	return sessionKey + "/" + originalFileName
}

func TestIntakeService_Submit_RejectedBatchCleansUpUploadedSiblings(t *testing.T) {
	appRepo := new(MockApplicationRepository)
	categories := new(MockCategoryService)
	uploader := &recordingUploader{}

	svc := services.NewIntakeService(appRepo, new(MockPaymentRepository), categories,
		drafts.NewStore(24*time.Hour), files.NewIntake(uploader, files.DefaultLimits()),
		nil, testConfig(), &stubHTTPClient{status: 200})
	ctx := context.Background()

	categories.On("GetByID", ctx, 3).Return(realEstateCategory(), nil)

	req := validSubmitRequest()
	req.Files = []models.FileUpload{
		{Name: "договор.pdf", MimeType: "application/pdf", Data: base64.StdEncoding.EncodeToString([]byte("pdf-bytes"))},
		{Name: "вирус.exe", MimeType: "application/x-msdownload", Data: base64.StdEncoding.EncodeToString([]byte("x"))},
	}

	_, err := svc.Submit(ctx, "tg:42", req)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrValidation))

	// The sibling that made it into storage before the batch was refused
	// must not be left behind
	require.Equal(t, []string{"tg:42/договор.pdf"}, uploader.uploaded)
	assert.Equal(t, uploader.uploaded, uploader.deleted)

	appRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestIntakeService_Submit_MergesStagedFiles(t *testing.T) {
	svc, appRepo, _, categories, store := newIntakeFixture(testConfig())
	ctx := context.Background()

	store.Save("tg:42", &models.WizardState{
		CurrentStep: 4,
		Draft: models.ApplicationDraft{
			Files: []models.FileAttachment{{ID: "f1", Name: "план.pdf"}},
		},
	})

	categories.On("GetByID", ctx, 3).Return(realEstateCategory(), nil)
	appRepo.On("Create", ctx, mock.MatchedBy(func(app *models.NewApplication) bool {
		return len(app.Files) == 1 && app.Files[0].Name == "план.pdf"
	})).Return(int64(101), nil).Once()

	_, err := svc.Submit(ctx, "tg:42", validSubmitRequest())
	require.NoError(t, err)
	appRepo.AssertExpectations(t)
}

func TestIntakeService_NotifyClient(t *testing.T) {
	appRepo := new(MockApplicationRepository)
	notifier := new(MockNotifier)

	svc := services.NewIntakeService(appRepo, new(MockPaymentRepository), new(MockCategoryService),
		drafts.NewStore(24*time.Hour), files.NewIntake(nil, files.DefaultLimits()),
		notifier, testConfig(), &stubHTTPClient{status: 200})
	ctx := context.Background()

	app := &models.Application{ID: 101, ClientID: 9, ClientName: "Иван", ClientPhone: "+79991234567"}
	appRepo.On("GetByID", ctx, int64(101)).Return(app, nil)
	appRepo.On("GetClientTelegramID", ctx, int64(9)).Return(int64(42), nil)
	notifier.On("NotifyClient", ctx, int64(42), mock.MatchedBy(func(text string) bool {
		return text != ""
	})).Return(nil).Once()

	resp, err := svc.NotifyClient(ctx, &models.NotifyClientRequest{ApplicationID: 101})
	require.NoError(t, err)
	assert.True(t, resp.Success)
	notifier.AssertExpectations(t)
}

func TestIntakeService_NotifyClient_UnknownApplication(t *testing.T) {
	appRepo := new(MockApplicationRepository)

	svc := services.NewIntakeService(appRepo, new(MockPaymentRepository), new(MockCategoryService),
		drafts.NewStore(24*time.Hour), files.NewIntake(nil, files.DefaultLimits()),
		nil, testConfig(), &stubHTTPClient{status: 200})
	ctx := context.Background()

	appRepo.On("GetByID", ctx, int64(999)).Return(nil, errors.NotFoundError("application"))

	_, err := svc.NotifyClient(ctx, &models.NotifyClientRequest{ApplicationID: 999})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}
