package redisad_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	redisad "booking_reviews/internal/adapters/redis"
	"booking_reviews/internal/domain"
)

func TestCache_RoundTrip(t *testing.T) {
	srv := miniredis.RunT(t)
	c := redisad.New(srv.Addr(), "", 0)
	ctx := context.Background()

	h := domain.Hotel{ID: "eg/golden-scarab-pyramids", Name: "Golden Scarab", Score: 8.7}

	var out domain.Hotel
	ok, err := c.Get(ctx, "hotel:"+h.ID, &out)
	if err != nil || ok {
		t.Fatalf("cold get: ok=%v err=%v", ok, err)
	}

	if err := c.Set(ctx, "hotel:"+h.ID, h, 60); err != nil {
		t.Fatalf("set: %v", err)
	}
	ok, err = c.Get(ctx, "hotel:"+h.ID, &out)
	if err != nil || !ok {
		t.Fatalf("warm get: ok=%v err=%v", ok, err)
	}
	if out.Name != h.Name || out.Score != h.Score {
		t.Fatalf("round trip mismatch: %+v", out)
	}

	if err := c.Del(ctx, "hotel:"+h.ID); err != nil {
		t.Fatalf("del: %v", err)
	}
	if ok, _ = c.Get(ctx, "hotel:"+h.ID, &out); ok {
		t.Fatal("get after del should miss")
	}
}

func TestCache_TTLExpiry(t *testing.T) {
	srv := miniredis.RunT(t)
	c := redisad.New(srv.Addr(), "", 0)
	ctx := context.Background()

	if err := c.Set(ctx, "k", "v", 30); err != nil {
		t.Fatalf("set: %v", err)
	}
	srv.FastForward(31 * time.Second)

	var s string
	if ok, _ := c.Get(ctx, "k", &s); ok {
		t.Fatal("key should have expired")
	}
}
