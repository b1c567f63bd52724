package httpserver_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"booking_reviews/internal/adapters/http_server"
	"booking_reviews/internal/app"
	"booking_reviews/internal/domain"
)

// ---- fakes ----

type fakeStore struct {
	hotel   domain.Hotel
	reviews []domain.Review
	lastQ   domain.ReviewQuery
}

func (f *fakeStore) UpsertHotel(ctx context.Context, h domain.Hotel) error { return nil }
func (f *fakeStore) UpsertReviews(ctx context.Context, hotelID string, rs []domain.Review) (domain.UpsertStats, error) {
	return domain.UpsertStats{}, nil
}
func (f *fakeStore) RefreshReviewCount(ctx context.Context, hotelID string) (int, error) {
	return 0, nil
}
func (f *fakeStore) GetHotel(ctx context.Context, id string) (domain.Hotel, error) {
	if id != f.hotel.ID {
		return domain.Hotel{}, domain.ErrNotFound
	}
	return f.hotel, nil
}
func (f *fakeStore) QueryReviews(ctx context.Context, q domain.ReviewQuery) ([]domain.Review, error) {
	f.lastQ = q
	return f.reviews, nil
}
func (f *fakeStore) CountsByCustomerType(ctx context.Context, hotelID string) ([]domain.TypeCount, error) {
	return []domain.TypeCount{{Key: "COUPLES", Count: 3}}, nil
}
func (f *fakeStore) CountsByLanguage(ctx context.Context, hotelID string) ([]domain.TypeCount, error) {
	return []domain.TypeCount{{Key: "en", Count: 3}}, nil
}

type nopCache struct{}

func (nopCache) Get(ctx context.Context, key string, dst any) (bool, error) { return false, nil }
func (nopCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	return nil
}
func (nopCache) Del(ctx context.Context, key string) error { return nil }

func newTestServer(t *testing.T, st *fakeStore) *httptest.Server {
	t.Helper()
	q := app.NewQueryService(st, nopCache{}, time.Minute)
	srv := httpserver.New()
	srv.MountHandlers(&httpserver.Handlers{Q: q})
	ts := httptest.NewServer(srv.Mux())
	t.Cleanup(ts.Close)
	return ts
}

// ---- tests ----

func TestGetHotel_OKAndNotModified(t *testing.T) {
	st := &fakeStore{hotel: domain.Hotel{ID: "eg/golden-scarab-pyramids", Name: "Golden Scarab", Score: 8.7}}
	ts := newTestServer(t, st)

	resp, err := http.Get(ts.URL + "/v1/hotels/eg/golden-scarab-pyramids")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	etag := resp.Header.Get("ETag")
	if etag == "" {
		t.Fatal("missing ETag")
	}
	var h domain.Hotel
	if err := json.NewDecoder(resp.Body).Decode(&h); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if h.Name != "Golden Scarab" {
		t.Fatalf("unexpected hotel: %+v", h)
	}

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/v1/hotels/eg/golden-scarab-pyramids", nil)
	req.Header.Set("If-None-Match", etag)
	resp2, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("conditional get: %v", err)
	}
	defer resp2.Body.Close()
	if resp2.StatusCode != http.StatusNotModified {
		t.Fatalf("conditional status = %d, want 304", resp2.StatusCode)
	}
}

func TestGetHotel_NotFoundProblem(t *testing.T) {
	ts := newTestServer(t, &fakeStore{hotel: domain.Hotel{ID: "eg/real"}})

	resp, err := http.Get(ts.URL + "/v1/hotels/xx/nowhere")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/problem+json" {
		t.Fatalf("content type = %q", ct)
	}
}

func TestListReviews_FilterParams(t *testing.T) {
	st := &fakeStore{
		hotel:   domain.Hotel{ID: "eg/golden-scarab-pyramids"},
		reviews: []domain.Review{{ID: "/reviewlist/r-1", HotelID: "eg/golden-scarab-pyramids", Score: 9}},
	}
	ts := newTestServer(t, st)

	resp, err := http.Get(ts.URL + "/v1/hotels/eg/golden-scarab-pyramids/reviews?min_score=7&langs=en,fr&order=oldest&limit=10&from=2024-01-01")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	q := st.lastQ
	if q.HotelID != "eg/golden-scarab-pyramids" || q.Limit != 10 || !q.OldestFirst {
		t.Fatalf("query not mapped: %+v", q)
	}
	if q.MinScore == nil || *q.MinScore != 7 {
		t.Fatalf("min score not mapped: %+v", q)
	}
	if len(q.Languages) != 2 || q.Languages[0] != "en" || q.Languages[1] != "fr" {
		t.Fatalf("languages not mapped: %+v", q)
	}
	if q.From == nil || q.From.Year() != 2024 {
		t.Fatalf("from not mapped: %+v", q)
	}
}

func TestListReviews_BadLimit(t *testing.T) {
	ts := newTestServer(t, &fakeStore{hotel: domain.Hotel{ID: "eg/h"}})

	resp, err := http.Get(ts.URL + "/v1/hotels/eg/h/reviews?limit=0")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestGetStats(t *testing.T) {
	st := &fakeStore{hotel: domain.Hotel{ID: "eg/golden-scarab-pyramids"}}
	ts := newTestServer(t, st)

	resp, err := http.Get(ts.URL + "/v1/hotels/eg/golden-scarab-pyramids/stats")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var body app.HotelStats
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.ByCustomerType) != 1 || body.ByCustomerType[0].Key != "COUPLES" {
		t.Fatalf("unexpected stats: %+v", body)
	}
}
