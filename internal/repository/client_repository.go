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

// ClientRepository reads client records for the staff dashboard
type ClientRepository struct {
	pool *pgxpool.Pool
}

// NewClientRepository creates a new client repository
func NewClientRepository(pool *pgxpool.Pool) *ClientRepository {
	return &ClientRepository{pool: pool}
}

// List returns clients ordered by most recent activity
func (r *ClientRepository) List(ctx context.Context, limit, offset int) ([]*models.Client, error) {
	start := time.Now()
	operation := "listClients"

	if limit <= 0 || limit > 200 {
		limit = 50
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, COALESCE(telegram_user_id, 0), name, phone, COALESCE(email, ''),
		       created_at, updated_at
		FROM clients
		ORDER BY updated_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		recordMetrics(operation, "error", metrics.MeasureDuration(start))
		return nil, fmt.Errorf("failed to query clients: %w", err)
	}
	defer rows.Close()

	clients := make([]*models.Client, 0)
	for rows.Next() {
		var c models.Client
		if err := rows.Scan(&c.ID, &c.TelegramUserID, &c.Name, &c.Phone, &c.Email,
			&c.CreatedAt, &c.UpdatedAt); err != nil {
			recordMetrics(operation, "error", metrics.MeasureDuration(start))
			return nil, fmt.Errorf("failed to scan client: %w", err)
		}
		clients = append(clients, &c)
	}

	duration := metrics.MeasureDuration(start)
	recordMetrics(operation, "success", duration)
	logger.LogAPICall("postgres", operation, "success", duration, zap.Int("count", len(clients)))

	return clients, nil
}
