package booking

import "booking_reviews/internal/domain"

// Wire types for the source's ReviewList operation.

type reviewFilters struct {
	Text         string   `json:"text"`
	CustomerType *string  `json:"customerType"`
	TimeOfYear   *string  `json:"timeOfYear"`
	Languages    []string `json:"languages"`
	ScoreRange   *string  `json:"scoreRange"`
}

type reviewListInput struct {
	HotelID          string        `json:"hotelId"`
	HotelCountryCode string        `json:"hotelCountryCode"`
	Sorter           string        `json:"sorter"`
	Filters          reviewFilters `json:"filters"`
	Skip             int           `json:"skip"`
	Limit            int           `json:"limit"`
}

type reviewListVariables struct {
	Input            reviewListInput `json:"input"`
	ShowPhotoAltText bool            `json:"shouldShowReviewListPhotoAltText"`
}

type reviewListRequest struct {
	OperationName string              `json:"operationName"`
	Variables     reviewListVariables `json:"variables"`
	Query         string              `json:"query"`
}

const reviewListQuery = `
query ReviewList($input: ReviewListFrontendInput!, $shouldShowReviewListPhotoAltText: Boolean = false) {
  reviewListFrontend(input: $input) {
    ... on ReviewListFrontendResult {
      reviewsCount
      customerTypeFilter { count name value }
      languageFilter { name value count countryFlag }
      reviewCard {
        reviewUrl
        reviewedDate
        reviewScore
        guestDetails { username countryCode countryName }
        bookingDetails { customerType checkinDate checkoutDate }
        textDetails { title positiveText negativeText lang }
        photos { urls { size url } }
      }
    }
    ... on ReviewsFrontendError { statusCode message }
  }
}`

func newReviewListRequest(hotelID string, c domain.FilterCriteria, skip int) reviewListRequest {
	optional := func(s, all string) *string {
		if s == all || s == "" {
			return nil
		}
		return &s
	}
	langs := c.Languages
	if langs == nil {
		langs = []string{}
	}
	cc := ""
	if i := len(hotelID); i > 2 && hotelID[2] == '/' {
		cc = hotelID[:2]
	}
	return reviewListRequest{
		OperationName: "ReviewList",
		Variables: reviewListVariables{
			Input: reviewListInput{
				HotelID:          hotelID,
				HotelCountryCode: cc,
				Sorter:           string(c.Sort),
				Filters: reviewFilters{
					CustomerType: optional(string(c.CustomerType), string(domain.CustomerAll)),
					TimeOfYear:   optional(string(c.TimeOfYear), string(domain.SeasonAll)),
					Languages:    langs,
					ScoreRange:   optional(string(c.Score), string(domain.ScoreAll)),
				},
				Skip:  skip,
				Limit: c.PageSize,
			},
			ShowPhotoAltText: true,
		},
		Query: reviewListQuery,
	}
}
