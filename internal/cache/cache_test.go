package cache

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cachedListing struct {
	Slug  string  `json:"slug"`
	Price float64 `json:"price"`
}

func setupMiniredis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { SetClient(nil) })
	return mr
}

func TestAside_MissThenHit(t *testing.T) {
	setupMiniredis(t)
	ctx := context.Background()

	fills := 0
	fill := func(dest *cachedListing) func() error {
		return func() error {
			fills++
			dest.Slug = "sea-view-condo"
			dest.Price = 250000
			return nil
		}
	}

	var first cachedListing
	require.NoError(t, Aside(ctx, ListingKey("sea-view-condo"), &first, ListingTTL, fill(&first)))
	assert.Equal(t, 1, fills)

	var second cachedListing
	require.NoError(t, Aside(ctx, ListingKey("sea-view-condo"), &second, ListingTTL, fill(&second)))
	assert.Equal(t, 1, fills, "second read should be served from cache")
	assert.Equal(t, first, second)
}

func TestAside_FillErrorPropagates(t *testing.T) {
	setupMiniredis(t)

	var dest cachedListing
	wantErr := errors.New("db down")
	err := Aside(context.Background(), ListingKey("x"), &dest, ListingTTL, func() error {
		return wantErr
	})
	assert.ErrorIs(t, err, wantErr)
}

func TestAside_WithoutClientFallsThrough(t *testing.T) {
	SetClient(nil)

	fills := 0
	var dest cachedListing
	for i := 0; i < 2; i++ {
		require.NoError(t, Aside(context.Background(), ListingKey("y"), &dest, ListingTTL, func() error {
			fills++
			return nil
		}))
	}
	assert.Equal(t, 2, fills, "every read fills when cache is disabled")
}

func TestInvalidateListing(t *testing.T) {
	mr := setupMiniredis(t)
	ctx := context.Background()

	require.NoError(t, mr.Set(ListingKey("sea-view-condo"), "{}"))
	require.NoError(t, mr.Set(PublishedKey, "[]"))
	require.NoError(t, mr.Set(RealtorFeedKey(7), "[]"))

	InvalidateListing(ctx, "sea-view-condo", 7)

	assert.False(t, mr.Exists(ListingKey("sea-view-condo")))
	assert.False(t, mr.Exists(PublishedKey))
	assert.False(t, mr.Exists(RealtorFeedKey(7)))
}
