package services_test

import (
	"bytes"
	"context"
	"io"
	"net/http"

	"github.com/lexpravo/intake-api/internal/models"
	"github.com/stretchr/testify/mock"
)

// MockApplicationRepository is a mock implementation of ApplicationRepositoryInterface
type MockApplicationRepository struct {
	mock.Mock
}

func (m *MockApplicationRepository) Create(ctx context.Context, app *models.NewApplication) (int64, error) {
	args := m.Called(ctx, app)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockApplicationRepository) GetByID(ctx context.Context, id int64) (*models.Application, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Application), args.Error(1)
}

func (m *MockApplicationRepository) List(ctx context.Context, filter models.ApplicationFilter) ([]*models.Application, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Application), args.Error(1)
}

func (m *MockApplicationRepository) UpdateStatus(ctx context.Context, id int64, status models.ApplicationStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockApplicationRepository) GetClientTelegramID(ctx context.Context, clientID int64) (int64, error) {
	args := m.Called(ctx, clientID)
	return args.Get(0).(int64), args.Error(1)
}

// MockClientRepository is a mock implementation of ClientRepositoryInterface
type MockClientRepository struct {
	mock.Mock
}

func (m *MockClientRepository) List(ctx context.Context, limit, offset int) ([]*models.Client, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Client), args.Error(1)
}

// MockPaymentRepository is a mock implementation of PaymentRepositoryInterface
type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) Create(ctx context.Context, payment *models.Payment) (int64, error) {
	args := m.Called(ctx, payment)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPaymentRepository) List(ctx context.Context, limit, offset int) ([]*models.Payment, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Payment), args.Error(1)
}

// MockNotifier is a mock implementation of NotifierInterface
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) NotifyNewApplication(ctx context.Context, app *models.Application) error {
	args := m.Called(ctx, app)
	return args.Error(0)
}

func (m *MockNotifier) NotifyClient(ctx context.Context, telegramUserID int64, text string) error {
	args := m.Called(ctx, telegramUserID, text)
	return args.Error(0)
}

// MockCategoryService is a mock implementation of CategoryServiceInterface
type MockCategoryService struct {
	mock.Mock
}

func (m *MockCategoryService) GetAll(ctx context.Context) ([]*models.Category, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Category), args.Error(1)
}

func (m *MockCategoryService) GetByID(ctx context.Context, id int) (*models.Category, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Category), args.Error(1)
}

// stubHTTPClient answers every request with a canned response
type stubHTTPClient struct {
	status int
	body   string
	calls  int
}

func (c *stubHTTPClient) respond() (*http.Response, error) {
	c.calls++
	return &http.Response{
		StatusCode: c.status,
		Body:       io.NopCloser(bytes.NewBufferString(c.body)),
		Header:     make(http.Header),
	}, nil
}

func (c *stubHTTPClient) Post(url, contentType string, body io.Reader) (*http.Response, error) {
	return c.respond()
}

func (c *stubHTTPClient) Get(url string) (*http.Response, error) {
	return c.respond()
}

func (c *stubHTTPClient) Do(req *http.Request) (*http.Response, error) {
	return c.respond()
}
