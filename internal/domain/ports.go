package domain

import (
	"context"
	"time"
)

// ReviewPage is one fetched page: parsed reviews, the source's aggregate
// stats, a has-more signal, and the raw payload for the caller to archive.
type ReviewPage struct {
	Reviews []Review
	Stats   SourceStats
	HasMore bool
	Raw     []byte
}

// SourceStats carries the per-configuration aggregates the source reports
// alongside each page.
type SourceStats struct {
	ReviewsCount int
}

// ReviewSource is the third-party review API boundary.
type ReviewSource interface {
	// GetHotel fetches the hotel record for a canonical identifier.
	GetHotel(ctx context.Context, id string) (Hotel, error)
	// FetchPage fetches one 1-based page of reviews under the given criteria.
	FetchPage(ctx context.Context, hotelID string, c FilterCriteria, page int) (ReviewPage, error)
}

// UpsertStats reports how a review batch landed.
type UpsertStats struct {
	Inserted    int
	Overwritten int
}

// ReviewQuery is the read-side filter predicate. Zero values mean "no
// constraint". Results are ordered by reviewed date descending unless
// OldestFirst is set.
type ReviewQuery struct {
	HotelID     string
	MinScore    *float64
	MaxScore    *float64
	Languages   []string
	Country     string
	From, To    *time.Time
	OldestFirst bool
	Limit       int
}

// TypeCount is one aggregate bucket for the dashboard boundary.
type TypeCount struct {
	Key   string
	Count int
}

// ReviewStore is the deduplicating persistence boundary. Upserts are
// idempotent; a hotel's review batch is written in one transaction scoped to
// that hotel.
type ReviewStore interface {
	UpsertHotel(ctx context.Context, h Hotel) error
	UpsertReviews(ctx context.Context, hotelID string, rs []Review) (UpsertStats, error)
	// RefreshReviewCount recomputes the hotel's stored review count from the
	// reviews table and returns the new value.
	RefreshReviewCount(ctx context.Context, hotelID string) (int, error)

	GetHotel(ctx context.Context, id string) (Hotel, error)
	QueryReviews(ctx context.Context, q ReviewQuery) ([]Review, error)
	CountsByCustomerType(ctx context.Context, hotelID string) ([]TypeCount, error)
	CountsByLanguage(ctx context.Context, hotelID string) ([]TypeCount, error)
}

// PageArchive persists raw page payloads keyed by hotel and page number for
// audit and replay.
type PageArchive interface {
	SavePage(hotelID string, page int, raw []byte) error
}

// Cache is the read-path response cache.
type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}
