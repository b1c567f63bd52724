package media_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync/atomic"
	"testing"

	"booking_reviews/internal/domain"
	"booking_reviews/internal/media"
)

func review(hotelID, id string, urls ...string) domain.Review {
	return domain.Review{ID: id, HotelID: hotelID, PhotoURLs: urls}
}

func TestDownloadReviewPhotos_WritesFiles(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(200)
		_, _ = w.Write([]byte("jpegbytes:" + r.URL.Path))
	}))
	defer ts.Close()

	d := media.New(t.TempDir(), "test-agent")
	r := review("eg/scarab", "rv-1", ts.URL+"/a.jpg", ts.URL+"/b.jpg")

	res := d.DownloadReviewPhotos(context.Background(), r)
	if res.Downloaded != 2 || res.Failed != 0 || res.Skipped != 0 {
		t.Fatalf("unexpected result: %+v", res)
	}
	for i := 0; i < 2; i++ {
		b, err := os.ReadFile(d.PhotoPath(r, i))
		if err != nil {
			t.Fatalf("photo %d missing: %v", i, err)
		}
		if !strings.HasPrefix(string(b), "jpegbytes:") {
			t.Fatalf("photo %d content: %q", i, b)
		}
	}
}

func TestDownloadReviewPhotos_ExistingFileSkippedWithoutRequest(t *testing.T) {
	var hits int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(200)
		_, _ = w.Write([]byte("x"))
	}))
	defer ts.Close()

	d := media.New(t.TempDir(), "test-agent")
	r := review("eg/scarab", "rv-2", ts.URL+"/a.jpg")

	if res := d.DownloadReviewPhotos(context.Background(), r); res.Downloaded != 1 {
		t.Fatalf("first pass: %+v", res)
	}
	got := atomic.LoadInt32(&hits)

	if res := d.DownloadReviewPhotos(context.Background(), r); res.Skipped != 1 || res.Downloaded != 0 {
		t.Fatalf("second pass: %+v", res)
	}
	if atomic.LoadInt32(&hits) != got {
		t.Fatalf("expected no new network calls, got %d -> %d", got, hits)
	}
}

func TestDownloadReviewPhotos_OneFailureDoesNotBlockSiblings(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "bad") {
			w.WriteHeader(403) // not retryable
			return
		}
		w.WriteHeader(200)
		_, _ = w.Write([]byte("x"))
	}))
	defer ts.Close()

	d := media.New(t.TempDir(), "test-agent")
	r := review("eg/scarab", "rv-3", ts.URL+"/bad.jpg", ts.URL+"/good.jpg")

	res := d.DownloadReviewPhotos(context.Background(), r)
	if res.Downloaded != 1 || res.Failed != 1 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if _, err := os.Stat(d.PhotoPath(r, 1)); err != nil {
		t.Fatalf("sibling photo missing: %v", err)
	}
}
