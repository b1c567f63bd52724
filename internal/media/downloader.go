// Package media downloads review photos to content-addressed local paths.
package media

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"booking_reviews/internal/adapters/observability"
	"booking_reviews/internal/archive"
	"booking_reviews/internal/domain"
	"booking_reviews/internal/retry"
)

// Result counts one review's photo downloads.
type Result struct {
	Downloaded int
	Skipped    int
	Failed     int
}

type Downloader struct {
	hc       *http.Client
	root     string
	ua       string
	policy   retry.Policy
	parallel int
}

func New(root, userAgent string) *Downloader {
	return &Downloader{
		hc:       &http.Client{Timeout: 30 * time.Second},
		root:     root,
		ua:       userAgent,
		policy:   retry.DefaultPolicy(),
		parallel: 4,
	}
}

// PhotoPath is the content-addressed location for one photo: derived from the
// review identifier and photo index only, so re-runs land on the same file.
func (d *Downloader) PhotoPath(r domain.Review, idx int) string {
	dir := filepath.Join(d.root, archive.Sanitize(r.HotelID))
	name := fmt.Sprintf("review_%s_photo_%d.jpg", archive.Sanitize(r.ID), idx+1)
	return filepath.Join(dir, name)
}

// DownloadReviewPhotos fetches every photo referenced by the review. A failed
// photo is recorded and skipped; it never fails the review or blocks sibling
// downloads. Photos whose target file already exists are skipped without a
// network call.
func (d *Downloader) DownloadReviewPhotos(ctx context.Context, r domain.Review) Result {
	if len(r.PhotoURLs) == 0 {
		return Result{}
	}
	if err := os.MkdirAll(filepath.Join(d.root, archive.Sanitize(r.HotelID)), 0o755); err != nil {
		log.Error().Err(err).Str("review", r.ID).Msg("photo dir create failed")
		return Result{Failed: len(r.PhotoURLs)}
	}

	var mu sync.Mutex
	var res Result
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(d.parallel)

	for i, url := range r.PhotoURLs {
		i, url := i, url
		g.Go(func() error {
			path := d.PhotoPath(r, i)
			if _, err := os.Stat(path); err == nil {
				observability.ObservePhoto("skipped")
				mu.Lock()
				res.Skipped++
				mu.Unlock()
				return nil
			}
			if err := d.fetchOne(ctx, url, path); err != nil {
				observability.ObservePhoto("error")
				log.Warn().Err(err).Str("review", r.ID).Str("url", url).Msg("photo download failed")
				mu.Lock()
				res.Failed++
				mu.Unlock()
				return nil // sibling downloads keep going
			}
			observability.ObservePhoto("ok")
			mu.Lock()
			res.Downloaded++
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return res
}

func (d *Downloader) fetchOne(ctx context.Context, url, path string) error {
	return retry.Do(ctx, d.policy, retry.Classify, retry.Exhaust, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		req.Header.Set("User-Agent", d.ua)
		resp, err := d.hc.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return &domain.TransientError{Cause: err}
		}
		defer resp.Body.Close()
		switch {
		case resp.StatusCode == http.StatusOK:
			// fall through to the write below
		case resp.StatusCode == http.StatusTooManyRequests:
			return &domain.RateLimitedError{}
		case resp.StatusCode >= 500:
			return &domain.TransientError{Cause: fmt.Errorf("remote %d", resp.StatusCode)}
		default:
			return fmt.Errorf("%w: status %d", domain.ErrRejected, resp.StatusCode)
		}

		tmp := path + ".part"
		f, err := os.Create(tmp)
		if err != nil {
			return err
		}
		if _, err := io.Copy(f, resp.Body); err != nil {
			f.Close()
			os.Remove(tmp)
			return &domain.TransientError{Cause: err}
		}
		if err := f.Close(); err != nil {
			os.Remove(tmp)
			return err
		}
		// rename last so an existing file always means a complete download
		return os.Rename(tmp, path)
	})
}
