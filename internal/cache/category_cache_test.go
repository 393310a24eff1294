package cache

import (
	"context"
	"errors"
	"testing"

	"github.com/lexpravo/intake-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func catalogueFetcher(calls *int, err error) CategoryFetcher {
	return func(ctx context.Context) ([]*models.Category, error) {
		*calls++
		if err != nil {
			return nil, err
		}
		return []*models.Category{
			{ID: 1, Name: "Семейное право", Slug: "family"},
			{ID: 3, Name: "Недвижимость", Slug: "real-estate"},
		}, nil
	}
}

func TestCategoryCache_InitializeAndGet(t *testing.T) {
	var calls int
	cc := NewCategoryCache(catalogueFetcher(&calls, nil), 600)

	assert.False(t, cc.IsReady())
	require.NoError(t, cc.Initialize())
	assert.True(t, cc.IsReady())

	categories, err := cc.Get(context.Background())
	require.NoError(t, err)
	assert.Len(t, categories, 2)

	// Initialize populated the cache; Get must not refetch
	_, err = cc.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestCategoryCache_GetBeforeInitialize(t *testing.T) {
	var calls int
	cc := NewCategoryCache(catalogueFetcher(&calls, nil), 600)

	_, err := cc.Get(context.Background())
	assert.Error(t, err)
	assert.Zero(t, calls)
}

func TestCategoryCache_InitializeFailure(t *testing.T) {
	var calls int
	cc := NewCategoryCache(catalogueFetcher(&calls, errors.New("connection refused")), 600)

	assert.Error(t, cc.Initialize())
	assert.False(t, cc.IsReady())
}

func TestCategoryCache_GetByID(t *testing.T) {
	var calls int
	cc := NewCategoryCache(catalogueFetcher(&calls, nil), 600)
	require.NoError(t, cc.Initialize())

	category, err := cc.GetByID(context.Background(), 3)
	require.NoError(t, err)
	require.NotNil(t, category)
	assert.Equal(t, "Недвижимость", category.Name)

	unknown, err := cc.GetByID(context.Background(), 99)
	require.NoError(t, err)
	assert.Nil(t, unknown)
}
