package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/lexpravo/intake-api/internal/models"
	"github.com/lexpravo/intake-api/pkg/logger"
	"github.com/lexpravo/intake-api/pkg/metrics"
	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

const categoriesCacheKey = "categories"

// CategoryFetcher loads the category list from the database
type CategoryFetcher func(ctx context.Context) ([]*models.Category, error)

// CategoryCache manages the in-memory cache for service categories.
// Categories change a few times a year, so every wizard page load reads
// from here instead of Postgres.
type CategoryCache struct {
	cache   *gocache.Cache
	fetcher CategoryFetcher
	ttl     time.Duration
	mu      sync.RWMutex
	ready   bool
}

// NewCategoryCache creates a category cache with the given fetcher and TTL
func NewCategoryCache(fetcher CategoryFetcher, ttlSeconds int) *CategoryCache {
	ttl := time.Duration(ttlSeconds) * time.Second

	return &CategoryCache{
		cache:   gocache.New(ttl, time.Hour),
		fetcher: fetcher,
		ttl:     ttl,
	}
}

// Initialize performs initial cache population (synchronous, blocks until
// ready). Called during startup before accepting requests.
func (cc *CategoryCache) Initialize() error {
	logger.Info("Initializing category cache...")
	if _, err := cc.refresh(); err != nil {
		logger.Error("Failed to initialize category cache", zap.Error(err))
		return err
	}

	cc.mu.Lock()
	cc.ready = true
	cc.mu.Unlock()

	logger.Info("Category cache initialized successfully")
	return nil
}

// IsReady returns true if the cache has been successfully initialized
func (cc *CategoryCache) IsReady() bool {
	cc.mu.RLock()
	defer cc.mu.RUnlock()
	return cc.ready
}

// Get retrieves categories from cache, fetching on a miss
func (cc *CategoryCache) Get(ctx context.Context) ([]*models.Category, error) {
	if !cc.IsReady() {
		return nil, fmt.Errorf("category cache not initialized")
	}

	if data, found := cc.cache.Get(categoriesCacheKey); found {
		metrics.CacheHits.WithLabelValues("categories").Inc()
		categories, ok := data.([]*models.Category)
		if !ok {
			logger.Error("Invalid category cache data type")
			cc.cache.Delete(categoriesCacheKey)
			return nil, fmt.Errorf("invalid cache data type")
		}
		return categories, nil
	}

	metrics.CacheMisses.WithLabelValues("categories").Inc()
	logger.Info("Category cache miss, fetching from database")

	return cc.refresh()
}

// GetByID returns a single category, or nil when the id is unknown
func (cc *CategoryCache) GetByID(ctx context.Context, id int) (*models.Category, error) {
	categories, err := cc.Get(ctx)
	if err != nil {
		return nil, err
	}

	for _, c := range categories {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, nil
}

func (cc *CategoryCache) refresh() ([]*models.Category, error) {
	categories, err := cc.fetcher(context.Background())
	if err != nil {
		logger.Error("Failed to refresh category cache", zap.Error(err))
		return nil, err
	}

	cc.cache.Set(categoriesCacheKey, categories, cc.ttl)
	logger.Info("Category cache refreshed", zap.Int("count", len(categories)))

	return categories, nil
}
