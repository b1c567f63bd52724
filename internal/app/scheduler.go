package app

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"booking_reviews/internal/adapters/observability"
	"booking_reviews/internal/domain"
	"booking_reviews/internal/media"
)

// Resolver turns a user-supplied hotel reference into a canonical identifier.
type Resolver func(ref string) (string, error)

// Invalidator drops cached read responses for a hotel after its data changed.
type Invalidator func(ctx context.Context, hotelID string)

// Scheduler runs the fetch-filter-persist pipeline for N hotels under a
// bounded concurrency ceiling. Failures are isolated per hotel.
type Scheduler struct {
	resolve    Resolver
	src        domain.ReviewSource
	store      domain.ReviewStore
	arch       domain.PageArchive
	photos     *media.Downloader // nil disables media downloads
	invalidate Invalidator       // nil disables cache invalidation
}

func NewScheduler(resolve Resolver, src domain.ReviewSource, store domain.ReviewStore, arch domain.PageArchive, photos *media.Downloader, invalidate Invalidator) *Scheduler {
	return &Scheduler{resolve: resolve, src: src, store: store, arch: arch, photos: photos, invalidate: invalidate}
}

// RunParams are one run's inputs, shared by every hotel.
type RunParams struct {
	Refs        []string
	Criteria    domain.FilterCriteria
	Concurrency int // 1..5
}

// Run executes the pipeline. It validates every bound before any network
// call; a ConfigError here means no FetchJob was created. The returned report
// has exactly one terminal job per input reference, in input order.
func (s *Scheduler) Run(ctx context.Context, p RunParams) (domain.RunReport, error) {
	if len(p.Refs) == 0 {
		return domain.RunReport{}, &domain.ConfigError{Field: "refs", Reason: "no hotel references given"}
	}
	if p.Concurrency < 1 || p.Concurrency > 5 {
		return domain.RunReport{}, &domain.ConfigError{Field: "concurrency", Reason: fmt.Sprintf("%d out of range [1,5]", p.Concurrency)}
	}
	if err := p.Criteria.Validate(); err != nil {
		return domain.RunReport{}, err
	}

	jobs := make([]domain.FetchJob, len(p.Refs))
	sem := semaphore.NewWeighted(int64(p.Concurrency))
	var wg sync.WaitGroup

	for i, ref := range p.Refs {
		i, ref := i, ref
		jobs[i] = domain.FetchJob{Reference: ref}

		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			jobs[i].Status = domain.JobFailed
			jobs[i].Err = err
			continue
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer sem.Release(1)
			jobs[i] = s.runHotel(ctx, ref, p.Criteria)
		}()
	}
	wg.Wait()

	rep := domain.RunReport{Jobs: jobs}
	log.Info().
		Int("hotels", len(jobs)).
		Int("reviews", rep.TotalReviews()).
		Strs("failing", rep.Failing()).
		Bool("complete", rep.Complete()).
		Msg("run finished")
	return rep, nil
}

// runHotel is one worker: resolve, fetch the hotel record, then paginate,
// persisting each page as it lands.
func (s *Scheduler) runHotel(ctx context.Context, ref string, crit domain.FilterCriteria) domain.FetchJob {
	job := domain.FetchJob{Reference: ref}

	id, err := s.resolve(ref)
	if err != nil {
		log.Warn().Str("ref", ref).Err(err).Msg("reference skipped")
		job.Status = domain.JobSkipped
		job.Err = err
		return job
	}
	job.HotelID = id

	hotel, err := s.src.GetHotel(ctx, id)
	if err != nil {
		log.Warn().Str("hotel", id).Err(err).Msg("hotel fetch failed")
		job.Status = domain.JobFailed
		job.Err = err
		return job
	}
	if err := s.store.UpsertHotel(ctx, hotel); err != nil {
		job.Status = domain.JobFailed
		job.Err = fmt.Errorf("upsert hotel %s: %w", id, err)
		return job
	}

	res := DrivePages(ctx, s.src, id, crit, func(page int, pg domain.ReviewPage) error {
		if s.arch != nil {
			// archival is best-effort; a full disk must not stop the run
			if aerr := s.arch.SavePage(id, page, pg.Raw); aerr != nil {
				log.Warn().Str("hotel", id).Int("page", page).Err(aerr).Msg("page archive failed")
			}
		}
		if len(pg.Reviews) == 0 {
			return nil
		}
		stats, uerr := s.store.UpsertReviews(ctx, id, pg.Reviews)
		if uerr != nil {
			return fmt.Errorf("upsert reviews for %s page %d: %w", id, page, uerr)
		}
		observability.ObserveUpserts(stats.Inserted, stats.Overwritten)
		if s.photos != nil {
			for _, rv := range pg.Reviews {
				s.photos.DownloadReviewPhotos(ctx, rv)
			}
		}
		return nil
	})

	job.Pages = res.Pages
	job.Reviews = len(res.Reviews)
	job.Err = res.Err
	switch {
	case res.Err == nil:
		job.Status = domain.JobSucceeded
	case res.Pages > 0:
		job.Status = domain.JobPartial
	default:
		job.Status = domain.JobFailed
	}

	if res.Pages > 0 {
		if n, cerr := s.store.RefreshReviewCount(ctx, id); cerr != nil {
			log.Warn().Str("hotel", id).Err(cerr).Msg("review count refresh failed")
		} else {
			log.Info().Str("hotel", id).Int("reviews", n).Int("pages", res.Pages).Msg("hotel done")
		}
		if s.invalidate != nil {
			s.invalidate(ctx, id)
		}
	}
	return job
}
