package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	ListingKeyPrefix    = "listing:%s"
	PublishedKey        = "listings:published"
	RealtorFeedKeyParam = "listings:realtor:%d"
)

const (
	ListingTTL   = 10 * time.Minute
	PublishedTTL = 2 * time.Minute
)

// ListingKey returns the cache key for a published listing by slug.
func ListingKey(slug string) string {
	return fmt.Sprintf(ListingKeyPrefix, slug)
}

// RealtorFeedKey returns the cache key for a realtor's own listing feed.
func RealtorFeedKey(realtorID uint) string {
	return fmt.Sprintf(RealtorFeedKeyParam, realtorID)
}

func Invalidate(ctx context.Context, keys ...string) {
	if client != nil && len(keys) > 0 {
		client.Del(ctx, keys...)
	}
}

// InvalidateListing removes the cached entries affected by a listing
// mutation: the slug-keyed detail entry, the published feed and the
// owning realtor's feed.
func InvalidateListing(ctx context.Context, slug string, realtorID uint) {
	Invalidate(ctx, ListingKey(slug), PublishedKey, RealtorFeedKey(realtorID))
}
