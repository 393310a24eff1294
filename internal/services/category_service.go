package services

import (
	"context"

	"github.com/lexpravo/intake-api/internal/cache"
	"github.com/lexpravo/intake-api/internal/models"
	"github.com/lexpravo/intake-api/pkg/errors"
)

// CategoryService serves the practice area catalogue from the in-memory cache
type CategoryService struct {
	cache *cache.CategoryCache
}

func NewCategoryService(categoryCache *cache.CategoryCache) *CategoryService {
	return &CategoryService{cache: categoryCache}
}

func (s *CategoryService) GetAll(ctx context.Context) ([]*models.Category, error) {
	return s.cache.Get(ctx)
}

func (s *CategoryService) GetByID(ctx context.Context, id int) (*models.Category, error) {
	category, err := s.cache.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, errors.NotFoundError("category")
	}
	return category, nil
}
