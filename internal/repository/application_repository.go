package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lexpravo/intake-api/internal/models"
	apperrors "github.com/lexpravo/intake-api/pkg/errors"
	"github.com/lexpravo/intake-api/pkg/logger"
	"github.com/lexpravo/intake-api/pkg/metrics"
	"go.uber.org/zap"
)

// ApplicationRepository handles application and client persistence
type ApplicationRepository struct {
	pool *pgxpool.Pool
}

// NewApplicationRepository creates a new application repository
func NewApplicationRepository(pool *pgxpool.Pool) *ApplicationRepository {
	return &ApplicationRepository{pool: pool}
}

// Create persists one submission: the client row is upserted (keyed by
// Telegram user id when present, by phone otherwise), then the application
// and its attachments are inserted. Everything happens in one transaction.
func (r *ApplicationRepository) Create(ctx context.Context, app *models.NewApplication) (int64, error) {
	start := time.Now()
	operation := "createApplication"

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		recordMetrics(operation, "error", metrics.MeasureDuration(start))
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	clientID, err := upsertClient(ctx, tx, app.Client)
	if err != nil {
		recordMetrics(operation, "error", metrics.MeasureDuration(start))
		return 0, err
	}

	var applicationID int64
	err = tx.QueryRow(ctx, `
		INSERT INTO applications
			(client_id, category_id, subcategory, description, contact_method, contact_time, status, start_param)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`,
		clientID,
		app.CategoryID,
		nilIfEmpty(app.Subcategory),
		app.Description,
		app.ContactMethod,
		app.ContactTime,
		models.ApplicationStatusNew,
		nilIfEmpty(app.StartParam),
	).Scan(&applicationID)
	if err != nil {
		recordMetrics(operation, "error", metrics.MeasureDuration(start))
		return 0, fmt.Errorf("failed to create application: %w", err)
	}

	for _, f := range app.Files {
		_, err = tx.Exec(ctx, `
			INSERT INTO attachments (id, application_id, file_name, mime_type, size_bytes, storage_key, url)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, f.ID, applicationID, f.Name, f.MimeType, f.SizeBytes, nilIfEmpty(f.StorageKey), nilIfEmpty(f.URL))
		if err != nil {
			recordMetrics(operation, "error", metrics.MeasureDuration(start))
			return 0, fmt.Errorf("failed to attach file: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		recordMetrics(operation, "error", metrics.MeasureDuration(start))
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	duration := metrics.MeasureDuration(start)
	recordMetrics(operation, "success", duration)
	logger.LogAPICall("postgres", operation, "success", duration,
		zap.Int64("application_id", applicationID),
		zap.Int64("client_id", clientID))

	return applicationID, nil
}

func upsertClient(ctx context.Context, tx pgx.Tx, client *models.Client) (int64, error) {
	var clientID int64
	var err error

	if client.TelegramUserID != 0 {
		err = tx.QueryRow(ctx,
			"SELECT id FROM clients WHERE telegram_user_id = $1",
			client.TelegramUserID).Scan(&clientID)
	} else {
		err = tx.QueryRow(ctx,
			"SELECT id FROM clients WHERE phone = $1 AND telegram_user_id IS NULL",
			client.Phone).Scan(&clientID)
	}

	switch {
	case err == nil:
		// Known client: refresh contact details from the latest submission
		_, err = tx.Exec(ctx, `
			UPDATE clients SET name = $1, phone = $2, email = $3, updated_at = now()
			WHERE id = $4
		`, client.Name, client.Phone, nilIfEmpty(client.Email), clientID)
		if err != nil {
			return 0, fmt.Errorf("failed to update client: %w", err)
		}
		return clientID, nil

	case errors.Is(err, pgx.ErrNoRows):
		err = tx.QueryRow(ctx, `
			INSERT INTO clients (telegram_user_id, name, phone, email)
			VALUES ($1, $2, $3, $4)
			RETURNING id
		`, nilIfZero(client.TelegramUserID), client.Name, client.Phone, nilIfEmpty(client.Email)).Scan(&clientID)
		if err != nil {
			return 0, fmt.Errorf("failed to create client: %w", err)
		}
		return clientID, nil

	default:
		return 0, fmt.Errorf("failed to look up client: %w", err)
	}
}

// GetByID returns a single application with its client and attachments
func (r *ApplicationRepository) GetByID(ctx context.Context, id int64) (*models.Application, error) {
	start := time.Now()
	operation := "getApplicationByID"

	row := r.pool.QueryRow(ctx, `
		SELECT a.id, a.client_id, a.category_id, cat.name, a.subcategory, a.description,
		       a.contact_method, a.contact_time, a.status, a.start_param,
		       a.created_at, a.updated_at,
		       c.name, c.phone, c.email
		FROM applications a
		JOIN clients c ON c.id = a.client_id
		JOIN categories cat ON cat.id = a.category_id
		WHERE a.id = $1
	`, id)

	app, err := scanApplication(row)
	if err != nil {
		duration := metrics.MeasureDuration(start)
		if errors.Is(err, pgx.ErrNoRows) {
			recordMetrics(operation, "not_found", duration)
			return nil, apperrors.NotFoundError("application")
		}
		recordMetrics(operation, "error", duration)
		return nil, fmt.Errorf("failed to get application: %w", err)
	}

	attachments, err := r.getAttachments(ctx, id)
	if err != nil {
		recordMetrics(operation, "error", metrics.MeasureDuration(start))
		return nil, err
	}
	app.Files = attachments

	duration := metrics.MeasureDuration(start)
	recordMetrics(operation, "success", duration)
	logger.LogAPICall("postgres", operation, "success", duration, zap.Int64("application_id", id))

	return app, nil
}

// List returns applications for the staff dashboard, newest first
func (r *ApplicationRepository) List(ctx context.Context, filter models.ApplicationFilter) ([]*models.Application, error) {
	start := time.Now()
	operation := "listApplications"

	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	query := `
		SELECT a.id, a.client_id, a.category_id, cat.name, a.subcategory, a.description,
		       a.contact_method, a.contact_time, a.status, a.start_param,
		       a.created_at, a.updated_at,
		       c.name, c.phone, c.email
		FROM applications a
		JOIN clients c ON c.id = a.client_id
		JOIN categories cat ON cat.id = a.category_id
		WHERE ($1 = '' OR a.status = $1)
		  AND ($2 = 0 OR a.category_id = $2)
		ORDER BY a.created_at DESC
		LIMIT $3 OFFSET $4
	`

	rows, err := r.pool.Query(ctx, query, string(filter.Status), filter.CategoryID, limit, filter.Offset)
	if err != nil {
		recordMetrics(operation, "error", metrics.MeasureDuration(start))
		return nil, fmt.Errorf("failed to query applications: %w", err)
	}
	defer rows.Close()

	applications := make([]*models.Application, 0)
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			recordMetrics(operation, "error", metrics.MeasureDuration(start))
			return nil, err
		}
		applications = append(applications, app)
	}

	duration := metrics.MeasureDuration(start)
	recordMetrics(operation, "success", duration)
	logger.LogAPICall("postgres", operation, "success", duration, zap.Int("count", len(applications)))

	return applications, nil
}

// UpdateStatus changes an application's processing status
func (r *ApplicationRepository) UpdateStatus(ctx context.Context, id int64, status models.ApplicationStatus) error {
	start := time.Now()
	operation := "updateApplicationStatus"

	tag, err := r.pool.Exec(ctx,
		"UPDATE applications SET status = $1, updated_at = now() WHERE id = $2",
		status, id)

	duration := metrics.MeasureDuration(start)

	if err != nil {
		recordMetrics(operation, "error", duration)
		return fmt.Errorf("failed to update application status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		recordMetrics(operation, "not_found", duration)
		return apperrors.NotFoundError("application")
	}

	recordMetrics(operation, "success", duration)
	logger.LogAPICall("postgres", operation, "success", duration,
		zap.Int64("application_id", id),
		zap.String("status", string(status)))

	return nil
}

// GetClientTelegramID returns the Telegram user id bound to a client,
// or zero when the client came in outside the Mini App
func (r *ApplicationRepository) GetClientTelegramID(ctx context.Context, clientID int64) (int64, error) {
	var telegramID int64
	err := r.pool.QueryRow(ctx,
		"SELECT COALESCE(telegram_user_id, 0) FROM clients WHERE id = $1",
		clientID).Scan(&telegramID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, apperrors.NotFoundError("client")
		}
		return 0, fmt.Errorf("failed to look up client telegram id: %w", err)
	}
	return telegramID, nil
}

func (r *ApplicationRepository) getAttachments(ctx context.Context, applicationID int64) ([]models.FileAttachment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, file_name, mime_type, size_bytes, COALESCE(storage_key, ''), COALESCE(url, '')
		FROM attachments
		WHERE application_id = $1
		ORDER BY created_at
	`, applicationID)
	if err != nil {
		return nil, fmt.Errorf("failed to query attachments: %w", err)
	}
	defer rows.Close()

	attachments := make([]models.FileAttachment, 0)
	for rows.Next() {
		var a models.FileAttachment
		if err := rows.Scan(&a.ID, &a.Name, &a.MimeType, &a.SizeBytes, &a.StorageKey, &a.URL); err != nil {
			return nil, fmt.Errorf("failed to scan attachment: %w", err)
		}
		attachments = append(attachments, a)
	}

	return attachments, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanApplication(row rowScanner) (*models.Application, error) {
	var app models.Application
	var subcategory, startParam, clientEmail *string

	err := row.Scan(
		&app.ID, &app.ClientID, &app.CategoryID, &app.CategoryName, &subcategory, &app.Description,
		&app.ContactMethod, &app.ContactTime, &app.Status, &startParam,
		&app.CreatedAt, &app.UpdatedAt,
		&app.ClientName, &app.ClientPhone, &clientEmail,
	)
	if err != nil {
		return nil, err
	}

	if subcategory != nil {
		app.Subcategory = *subcategory
	}
	if startParam != nil {
		app.StartParam = *startParam
	}
	if clientEmail != nil {
		app.ClientEmail = *clientEmail
	}

	return &app, nil
}
