package app

import (
	"context"

	"booking_reviews/internal/adapters/observability"
	"booking_reviews/internal/domain"
)

// PageFetcher is the slice of the review source the driver needs.
type PageFetcher interface {
	FetchPage(ctx context.Context, hotelID string, c domain.FilterCriteria, page int) (domain.ReviewPage, error)
}

// PageSink receives each successfully fetched page, in page order. A sink
// error is terminal for the hotel (typically a storage failure).
type PageSink func(page int, pg domain.ReviewPage) error

// DriveResult is one hotel's pagination outcome. Err is nil on a clean stop;
// when Err is set and Pages > 0 the reviews gathered so far are still here —
// progress is never discarded.
type DriveResult struct {
	Reviews []domain.Review
	Pages   int
	Err     error
}

// DrivePages fetches successive pages for one hotel, starting at the
// criteria's start page, until the source reports no more pages, the page
// budget is spent, or a terminal error occurs. Pages advance by exactly one;
// retries live inside the fetcher, never here.
func DrivePages(ctx context.Context, src PageFetcher, hotelID string, crit domain.FilterCriteria, sink PageSink) DriveResult {
	var res DriveResult
	page := crit.StartPage
	for n := 0; n < crit.MaxPages; n++ {
		if err := ctx.Err(); err != nil {
			res.Err = err
			return res
		}
		pg, err := src.FetchPage(ctx, hotelID, crit, page)
		if err != nil {
			observability.ObservePage(false)
			res.Err = err
			return res
		}
		observability.ObservePage(true)
		res.Pages++
		res.Reviews = append(res.Reviews, pg.Reviews...)
		if sink != nil {
			if err := sink(page, pg); err != nil {
				res.Err = err
				return res
			}
		}
		if !pg.HasMore {
			return res
		}
		page++
	}
	return res
}
