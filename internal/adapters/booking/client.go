package booking

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"booking_reviews/internal/adapters/observability"
	"booking_reviews/internal/domain"
	"booking_reviews/internal/retry"
)

// Client fetches hotel pages and review pages from the source, with
// client-side rate limiting, a circuit breaker, and classified retries.
type Client struct {
	base   string
	hc     *http.Client
	ua     string
	rl     *rate.Limiter
	cb     *gobreaker.CircuitBreaker
	policy retry.Policy
}

func New(base, userAgent string, rps int) (*Client, error) {
	if base == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	if rps <= 0 {
		rps = 2
	}
	return &Client{
		base: strings.TrimRight(base, "/"),
		hc:   &http.Client{Timeout: 30 * time.Second},
		ua:   userAgent,
		rl:   rate.NewLimiter(rate.Limit(rps), rps),
		cb: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "booking",
			Timeout: 30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
			// Only transient failures trip the breaker. Terminal answers for
			// one hotel (not found, rejected, malformed) say nothing about
			// the source's health and must not cut off sibling hotels.
			IsSuccessful: func(err error) bool {
				if err == nil {
					return true
				}
				var tr *domain.TransientError
				return !errors.As(err, &tr)
			},
		}),
		policy: retry.DefaultPolicy(),
	}, nil
}

// GetHotel fetches the hotel's browsing page and extracts the property
// record embedded in it.
func (c *Client) GetHotel(ctx context.Context, id string) (domain.Hotel, error) {
	body, err := c.do(ctx, http.MethodGet, c.base+"/hotel/"+id+".html", nil, "hotel_page")
	if err != nil {
		return domain.Hotel{}, err
	}
	return parseHotelPage(body, id)
}

// FetchPage fetches one 1-based page of reviews. The returned page carries
// the raw payload; writing it anywhere is the caller's business.
func (c *Client) FetchPage(ctx context.Context, hotelID string, crit domain.FilterCriteria, page int) (domain.ReviewPage, error) {
	skip := (page - 1) * crit.PageSize
	payload, err := json.Marshal(newReviewListRequest(hotelID, crit, skip))
	if err != nil {
		return domain.ReviewPage{}, err
	}
	body, err := c.do(ctx, http.MethodPost, c.base+"/dml/graphql", payload, "review_list")
	if err != nil {
		return domain.ReviewPage{}, err
	}
	return parseReviewPage(body, hotelID, skip)
}

// do performs one request under the retry policy. Each attempt waits on the
// rate limiter and runs through the circuit breaker.
func (c *Client) do(ctx context.Context, method, url string, payload []byte, endpoint string) ([]byte, error) {
	var body []byte
	err := retry.Do(ctx, c.policy, retry.Classify, retry.Exhaust, func(ctx context.Context) error {
		if err := c.rl.Wait(ctx); err != nil {
			return err
		}
		out, err := c.cb.Execute(func() (any, error) {
			return c.attempt(ctx, method, url, payload, endpoint)
		})
		if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
			return &domain.TransientError{Cause: err}
		}
		if err != nil {
			return err
		}
		body = out.([]byte)
		return nil
	})
	return body, err
}

func (c *Client) attempt(ctx context.Context, method, url string, payload []byte, endpoint string) ([]byte, error) {
	var rdr io.Reader
	if payload != nil {
		rdr = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, rdr)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "*/*")
	req.Header.Set("User-Agent", c.ua)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		observability.ObserveExternal("booking", endpoint, 0, time.Since(start))
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &domain.TransientError{Cause: err}
	}
	defer resp.Body.Close()
	observability.ObserveExternal("booking", endpoint, resp.StatusCode, time.Since(start))

	switch {
	case resp.StatusCode == http.StatusOK:
		return io.ReadAll(resp.Body)

	case resp.StatusCode == http.StatusNotFound:
		return nil, domain.ErrNotFound

	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, &domain.RateLimitedError{RetryAfter: retryAfter(resp)}

	case resp.StatusCode >= 500:
		return nil, &domain.TransientError{Cause: fmt.Errorf("remote %d", resp.StatusCode)}

	default:
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("%w: status %d: %s", domain.ErrRejected, resp.StatusCode, strings.TrimSpace(string(b)))
	}
}

// retryAfter parses a Retry-After header (seconds or HTTP-date). Returns 0
// when absent or invalid.
func retryAfter(resp *http.Response) time.Duration {
	h := resp.Header.Get("Retry-After")
	if h == "" {
		return 0
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(h)); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(h); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}
