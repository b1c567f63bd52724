package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"booking_reviews/internal/domain"
)

// QueryService is the read-only surface the dashboard and export
// collaborators consume. It never writes review data.
type QueryService struct {
	store    domain.ReviewStore
	cache    domain.Cache
	cacheTTL time.Duration
}

func NewQueryService(s domain.ReviewStore, c domain.Cache, ttl time.Duration) *QueryService {
	return &QueryService{store: s, cache: c, cacheTTL: ttl}
}

func (s *QueryService) GetHotel(ctx context.Context, id string) (domain.Hotel, error) {
	key := "hotel:" + id
	var h domain.Hotel
	if ok, _ := s.cache.Get(ctx, key, &h); ok {
		return h, nil
	}
	h, err := s.store.GetHotel(ctx, id)
	if err != nil {
		return domain.Hotel{}, err
	}
	_ = s.cache.Set(ctx, key, h, int(s.cacheTTL.Seconds()))
	return h, nil
}

func (s *QueryService) ListReviews(ctx context.Context, q domain.ReviewQuery) ([]domain.Review, error) {
	key := reviewsKey(q)
	var out []domain.Review
	if ok, _ := s.cache.Get(ctx, key, &out); ok {
		return out, nil
	}
	rs, err := s.store.QueryReviews(ctx, q)
	if err != nil {
		return nil, err
	}
	// copy so later store mutations can't alias into the cached value
	cp := make([]domain.Review, len(rs))
	copy(cp, rs)
	_ = s.cache.Set(ctx, key, cp, int(s.cacheTTL.Seconds()))
	return cp, nil
}

// HotelStats are the aggregate counts the dashboard renders per hotel.
type HotelStats struct {
	ByCustomerType []domain.TypeCount
	ByLanguage     []domain.TypeCount
}

func (s *QueryService) GetHotelStats(ctx context.Context, id string) (HotelStats, error) {
	key := "stats:" + id
	var st HotelStats
	if ok, _ := s.cache.Get(ctx, key, &st); ok {
		return st, nil
	}
	byType, err := s.store.CountsByCustomerType(ctx, id)
	if err != nil {
		return HotelStats{}, err
	}
	byLang, err := s.store.CountsByLanguage(ctx, id)
	if err != nil {
		return HotelStats{}, err
	}
	st = HotelStats{ByCustomerType: byType, ByLanguage: byLang}
	_ = s.cache.Set(ctx, key, st, int(s.cacheTTL.Seconds()))
	return st, nil
}

// InvalidateHotel drops cached read responses for one hotel. The scheduler
// calls it after a hotel's run lands new pages; review-list keys are left to
// expire by TTL since they vary per filter combination.
func (s *QueryService) InvalidateHotel(ctx context.Context, id string) {
	_ = s.cache.Del(ctx, "hotel:"+id)
	_ = s.cache.Del(ctx, "stats:"+id)
}

func reviewsKey(q domain.ReviewQuery) string {
	var b strings.Builder
	fmt.Fprintf(&b, "reviews:%s:%d", q.HotelID, q.Limit)
	if q.MinScore != nil {
		fmt.Fprintf(&b, ":min%g", *q.MinScore)
	}
	if q.MaxScore != nil {
		fmt.Fprintf(&b, ":max%g", *q.MaxScore)
	}
	if len(q.Languages) > 0 {
		fmt.Fprintf(&b, ":l%s", strings.Join(q.Languages, ","))
	}
	if q.Country != "" {
		fmt.Fprintf(&b, ":c%s", q.Country)
	}
	if q.From != nil {
		fmt.Fprintf(&b, ":f%d", q.From.Unix())
	}
	if q.To != nil {
		fmt.Fprintf(&b, ":t%d", q.To.Unix())
	}
	if q.OldestFirst {
		b.WriteString(":asc")
	}
	return b.String()
}
