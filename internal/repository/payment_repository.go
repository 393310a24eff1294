package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lexpravo/intake-api/internal/models"
	"github.com/lexpravo/intake-api/pkg/logger"
	"github.com/lexpravo/intake-api/pkg/metrics"
	"go.uber.org/zap"
)

// PaymentRepository persists payment records created for payable categories
type PaymentRepository struct {
	pool *pgxpool.Pool
}

// NewPaymentRepository creates a new payment repository
func NewPaymentRepository(pool *pgxpool.Pool) *PaymentRepository {
	return &PaymentRepository{pool: pool}
}

// Create inserts one pending payment and returns its id
func (r *PaymentRepository) Create(ctx context.Context, payment *models.Payment) (int64, error) {
	start := time.Now()
	operation := "createPayment"

	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO payments (application_id, amount_kopecks, status, payment_url)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, payment.ApplicationID, payment.AmountKopecks, payment.Status, nilIfEmpty(payment.PaymentURL)).Scan(&id)

	duration := metrics.MeasureDuration(start)

	if err != nil {
		recordMetrics(operation, "error", duration)
		return 0, fmt.Errorf("failed to create payment: %w", err)
	}

	recordMetrics(operation, "success", duration)
	logger.LogAPICall("postgres", operation, "success", duration,
		zap.Int64("payment_id", id),
		zap.Int64("application_id", payment.ApplicationID))

	return id, nil
}

// List returns payments for the staff dashboard, newest first
func (r *PaymentRepository) List(ctx context.Context, limit, offset int) ([]*models.Payment, error) {
	start := time.Now()
	operation := "listPayments"

	if limit <= 0 || limit > 200 {
		limit = 50
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, application_id, amount_kopecks, status, COALESCE(payment_url, ''),
		       created_at, updated_at
		FROM payments
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		recordMetrics(operation, "error", metrics.MeasureDuration(start))
		return nil, fmt.Errorf("failed to query payments: %w", err)
	}
	defer rows.Close()

	payments := make([]*models.Payment, 0)
	for rows.Next() {
		var p models.Payment
		if err := rows.Scan(&p.ID, &p.ApplicationID, &p.AmountKopecks, &p.Status, &p.PaymentURL,
			&p.CreatedAt, &p.UpdatedAt); err != nil {
			recordMetrics(operation, "error", metrics.MeasureDuration(start))
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		payments = append(payments, &p)
	}

	duration := metrics.MeasureDuration(start)
	recordMetrics(operation, "success", duration)
	logger.LogAPICall("postgres", operation, "success", duration, zap.Int("count", len(payments)))

	return payments, nil
}
