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

// CategoryRepository reads the legal practice area catalogue
type CategoryRepository struct {
	pool *pgxpool.Pool
}

// NewCategoryRepository creates a new category repository
func NewCategoryRepository(pool *pgxpool.Pool) *CategoryRepository {
	return &CategoryRepository{pool: pool}
}

// FetchAll returns every category ordered for display
func (r *CategoryRepository) FetchAll(ctx context.Context) ([]*models.Category, error) {
	start := time.Now()
	operation := "fetchCategories"

	rows, err := r.pool.Query(ctx, `
		SELECT id, name, slug, payable, price_kopecks, sort_order, subcategories
		FROM categories
		ORDER BY sort_order, id
	`)
	if err != nil {
		recordMetrics(operation, "error", metrics.MeasureDuration(start))
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	categories := make([]*models.Category, 0)
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.Payable, &c.PriceKopecks,
			&c.SortOrder, &c.Subcategories); err != nil {
			recordMetrics(operation, "error", metrics.MeasureDuration(start))
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, &c)
	}

	duration := metrics.MeasureDuration(start)
	recordMetrics(operation, "success", duration)
	logger.LogAPICall("postgres", operation, "success", duration, zap.Int("count", len(categories)))

	return categories, nil
}
