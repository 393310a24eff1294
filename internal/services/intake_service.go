package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lexpravo/intake-api/config"
	"github.com/lexpravo/intake-api/internal/drafts"
	"github.com/lexpravo/intake-api/internal/files"
	"github.com/lexpravo/intake-api/internal/models"
	"github.com/lexpravo/intake-api/internal/wizard"
	"github.com/lexpravo/intake-api/pkg/circuitbreaker"
	"github.com/lexpravo/intake-api/pkg/errors"
	"github.com/lexpravo/intake-api/pkg/httpclient"
	"github.com/lexpravo/intake-api/pkg/logger"
	"github.com/lexpravo/intake-api/pkg/metrics"
	"github.com/lexpravo/intake-api/pkg/trigger"
	gocache "github.com/patrickmn/go-cache"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

const idempotencyTTL = 10 * time.Minute

// IntakeService owns the final submission flow: validate the complete
// draft, persist the application, create a payment for payable
// categories, fire the side effects and clear the draft snapshot.
type IntakeService struct {
	applicationRepo ApplicationRepositoryInterface
	paymentRepo     PaymentRepositoryInterface
	categories      CategoryServiceInterface
	draftStore      *drafts.Store
	fileIntake      *files.Intake
	notifier        NotifierInterface
	config          *config.Config
	httpClient      httpclient.Client
	paymentBreaker  *gobreaker.CircuitBreaker
	idempotency     *gocache.Cache
}

func NewIntakeService(
	applicationRepo ApplicationRepositoryInterface,
	paymentRepo PaymentRepositoryInterface,
	categories CategoryServiceInterface,
	draftStore *drafts.Store,
	fileIntake *files.Intake,
	notifier NotifierInterface,
	cfg *config.Config,
	httpClient httpclient.Client,
) *IntakeService {
	return &IntakeService{
		applicationRepo: applicationRepo,
		paymentRepo:     paymentRepo,
		categories:      categories,
		draftStore:      draftStore,
		fileIntake:      fileIntake,
		notifier:        notifier,
		config:          cfg,
		httpClient:      httpClient,
		paymentBreaker:  circuitbreaker.NewCircuitBreaker(circuitbreaker.DefaultConfig("payment-gateway")),
		idempotency:     gocache.New(idempotencyTTL, 2*idempotencyTTL),
	}
}

// Submit validates and persists one application. A repeated call with the
// same idempotency key replays the original response instead of creating
// a duplicate.
func (s *IntakeService) Submit(ctx context.Context, sessionKey string, req *models.SubmitRequest) (*models.SubmitResponse, error) {
	if req.IdempotencyKey != "" {
		if cached, found := s.idempotency.Get(req.IdempotencyKey); found {
			logger.Info("Submission replayed from idempotency cache",
				zap.String("idempotency_key", req.IdempotencyKey))
			return cached.(*models.SubmitResponse), nil
		}
	}

	draft := req.Draft()
	if result := wizard.ValidateDraft(&draft); !result.Valid {
		metrics.ApplicationSubmissions.WithLabelValues("validation_error").Inc()
		return nil, errors.ValidationError(result.Field, result.Message)
	}

	category, err := s.categories.GetByID(ctx, req.CategoryID)
	if err != nil {
		metrics.ApplicationSubmissions.WithLabelValues("validation_error").Inc()
		return nil, errors.ValidationError("category_id", "Выберите категорию из списка")
	}

	attachments, err := s.collectAttachments(ctx, sessionKey, req)
	if err != nil {
		metrics.ApplicationSubmissions.WithLabelValues("file_error").Inc()
		return nil, err
	}

	newApp := &models.NewApplication{
		Client: &models.Client{
			TelegramUserID: req.TelegramUserID,
			Name:           req.Name,
			Phone:          req.Phone,
			Email:          req.Email,
		},
		CategoryID:    category.ID,
		CategoryName:  category.Name,
		Subcategory:   req.Subcategory,
		Description:   req.Description,
		ContactMethod: req.ContactMethod,
		ContactTime:   draft.ContactTime,
		StartParam:    req.StartParam,
		Files:         attachments,
	}

	applicationID, err := s.applicationRepo.Create(ctx, newApp)
	if err != nil {
		metrics.ApplicationSubmissions.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to persist application: %w", err)
	}

	response := &models.SubmitResponse{
		Status:        "ok",
		ApplicationID: applicationID,
	}

	if category.Payable && category.PriceKopecks > 0 {
		if paymentURL, payErr := s.createPayment(ctx, applicationID, category); payErr != nil {
			// The application is already saved; a payment hiccup must not
			// fail the submission. Staff can send a payment link manually.
			logger.Error("Failed to create payment",
				zap.Int64("application_id", applicationID),
				zap.Error(payErr))
		} else {
			response.PaymentURL = paymentURL
		}
	}

	s.draftStore.Clear(sessionKey)
	metrics.ApplicationSubmissions.WithLabelValues("success").Inc()

	if req.IdempotencyKey != "" {
		s.idempotency.Set(req.IdempotencyKey, response, gocache.DefaultExpiration)
	}

	s.fireSubmissionEffects(applicationID)

	logger.Info("Application submitted",
		zap.Int64("application_id", applicationID),
		zap.Int("category_id", category.ID),
		zap.Int("files", len(attachments)))

	return response, nil
}

// collectAttachments merges files staged through the draft endpoints with
// any inline uploads carried in the submission body itself
func (s *IntakeService) collectAttachments(ctx context.Context, sessionKey string, req *models.SubmitRequest) ([]models.FileAttachment, error) {
	var staged []models.FileAttachment
	if state, found := s.draftStore.Load(sessionKey); found {
		staged = state.Draft.Files
	}

	if len(req.Files) == 0 {
		return staged, nil
	}

	accepted, rejections := s.fileIntake.Stage(ctx, sessionKey, staged, req.Files)
	if len(rejections) > 0 {
		// The whole inline batch is refused; clean up the siblings that
		// already made it into storage
		s.fileIntake.Discard(ctx, accepted)
		first := rejections[0]
		return nil, errors.InvalidInputError("files", fmt.Sprintf("%s: %s", first.Name, first.Reason))
	}

	return append(staged, accepted...), nil
}

func (s *IntakeService) createPayment(ctx context.Context, applicationID int64, category *models.Category) (string, error) {
	paymentURL, err := circuitbreaker.Execute(s.paymentBreaker, func() (string, error) {
		return s.requestPaymentLink(applicationID, category)
	})
	if err != nil {
		return "", err
	}

	_, err = s.paymentRepo.Create(ctx, &models.Payment{
		ApplicationID: applicationID,
		AmountKopecks: category.PriceKopecks,
		Status:        models.PaymentStatusPending,
		PaymentURL:    paymentURL,
	})
	if err != nil {
		return "", err
	}

	return paymentURL, nil
}

// requestPaymentLink registers the order with the payment gateway and
// returns the hosted checkout URL
func (s *IntakeService) requestPaymentLink(applicationID int64, category *models.Category) (string, error) {
	base := s.config.Payments.GatewayBaseURL
	if base == "" {
		return "", fmt.Errorf("payment gateway is not configured")
	}

	payload, err := json.Marshal(map[string]any{
		"order_id":       fmt.Sprintf("app-%d", applicationID),
		"amount_kopecks": category.PriceKopecks,
		"description":    fmt.Sprintf("Консультация: %s", category.Name),
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal payment order: %w", err)
	}

	resp, err := s.httpClient.Post(base+"/orders", "application/json", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("payment gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("payment gateway returned status %d", resp.StatusCode)
	}

	var order struct {
		PaymentURL string `json:"payment_url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&order); err != nil {
		return "", fmt.Errorf("failed to decode payment gateway response: %w", err)
	}
	if order.PaymentURL == "" {
		return "", fmt.Errorf("payment gateway returned no payment url")
	}

	return order.PaymentURL, nil
}

// fireSubmissionEffects kicks off the out-of-band side effects: the staff
// Telegram notification and the automation webhook. Both are fire-and-forget.
func (s *IntakeService) fireSubmissionEffects(applicationID int64) {
	if s.notifier != nil {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			app, err := s.applicationRepo.GetByID(ctx, applicationID)
			if err != nil {
				logger.Error("Failed to load application for notification",
					zap.Int64("application_id", applicationID),
					zap.Error(err))
				return
			}
			if err := s.notifier.NotifyNewApplication(ctx, app); err != nil {
				logger.Error("Failed to notify staff channel",
					zap.Int64("application_id", applicationID),
					zap.Error(err))
			}
		}()
	}

	if s.config.EventTriggers.ApplicationCreatedTriggerURL != "" {
		trigger.CallAsync(
			s.config.EventTriggers.ApplicationCreatedTriggerURL,
			fmt.Sprintf("%d", applicationID),
			s.httpClient,
		)
	}
}

// NotifyClient sends a service message to the client's Telegram chat and
// mirrors it to the automation webhook when one is configured
func (s *IntakeService) NotifyClient(ctx context.Context, req *models.NotifyClientRequest) (*models.NotifyClientResponse, error) {
	app, err := s.applicationRepo.GetByID(ctx, req.ApplicationID)
	if err != nil {
		return nil, err
	}

	message := req.Message
	if message == "" {
		message = fmt.Sprintf("Ваша заявка №%d принята. Мы свяжемся с вами в ближайшее время.", app.ID)
	}

	if s.config.EventTriggers.ClientNotifyTriggerURL != "" {
		trigger.CallAsyncWithPayload(s.config.EventTriggers.ClientNotifyTriggerURL, map[string]any{
			"application_id": app.ID,
			"name":           app.ClientName,
			"phone":          app.ClientPhone,
			"message":        message,
		}, s.httpClient)
	}

	if s.notifier == nil || app.ClientID == 0 {
		return &models.NotifyClientResponse{Success: true}, nil
	}

	telegramID, err := s.applicationRepo.GetClientTelegramID(ctx, app.ClientID)
	if err != nil || telegramID == 0 {
		// No Telegram chat to reach; webhook delivery above still counts
		return &models.NotifyClientResponse{Success: true}, nil
	}

	if err := s.notifier.NotifyClient(ctx, telegramID, message); err != nil {
		logger.Warn("Failed to notify client via telegram",
			zap.Int64("application_id", app.ID),
			zap.Error(err))
		return &models.NotifyClientResponse{Success: false}, nil
	}

	return &models.NotifyClientResponse{Success: true}, nil
}
