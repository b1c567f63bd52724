package booking

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"booking_reviews/internal/domain"
)

// Response wire types. Only the fields the pipeline consumes are declared; the
// full card is retained as raw JSON on each review.

type reviewListResponse struct {
	Data struct {
		ReviewListFrontend json.RawMessage `json:"reviewListFrontend"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

type reviewListResult struct {
	ReviewsCount int               `json:"reviewsCount"`
	ReviewCard   []json.RawMessage `json:"reviewCard"`
	StatusCode   *int              `json:"statusCode"` // set on the error variant
	Message      string            `json:"message"`
}

type reviewCard struct {
	ReviewURL    string  `json:"reviewUrl"`
	ReviewedDate any     `json:"reviewedDate"` // unix seconds or "YYYY-MM-DD"
	ReviewScore  float64 `json:"reviewScore"`
	GuestDetails struct {
		Username    string `json:"username"`
		CountryCode string `json:"countryCode"`
		CountryName string `json:"countryName"`
	} `json:"guestDetails"`
	BookingDetails struct {
		CustomerType string `json:"customerType"`
		CheckinDate  string `json:"checkinDate"`
	} `json:"bookingDetails"`
	TextDetails struct {
		Title        string `json:"title"`
		PositiveText string `json:"positiveText"`
		NegativeText string `json:"negativeText"`
		Lang         string `json:"lang"`
	} `json:"textDetails"`
	Photos []struct {
		URLs []struct {
			Size string `json:"size"`
			URL  string `json:"url"`
		} `json:"urls"`
	} `json:"photos"`
}

const photoSize = "max1280x900"

var wireCustomerTypes = map[string]domain.CustomerType{
	"FAMILIES":            domain.CustomerFamilies,
	"COUPLES":             domain.CustomerCouples,
	"GROUP_OF_FRIENDS":    domain.CustomerFriends,
	"SOLO_TRAVELLERS":     domain.CustomerSolo,
	"BUSINESS_TRAVELLERS": domain.CustomerBusiness,
}

// parseReviewPage maps one raw ReviewList payload to a page of domain
// reviews. skip is the offset the page was requested at; it feeds the
// has-more signal.
func parseReviewPage(raw []byte, hotelID string, skip int) (domain.ReviewPage, error) {
	var resp reviewListResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return domain.ReviewPage{}, fmt.Errorf("%w: %v", domain.ErrMalformedResponse, err)
	}
	if len(resp.Errors) > 0 {
		return domain.ReviewPage{}, fmt.Errorf("%w: %s", domain.ErrMalformedResponse, resp.Errors[0].Message)
	}
	if len(resp.Data.ReviewListFrontend) == 0 {
		return domain.ReviewPage{}, fmt.Errorf("%w: missing reviewListFrontend", domain.ErrMalformedResponse)
	}
	var result reviewListResult
	if err := json.Unmarshal(resp.Data.ReviewListFrontend, &result); err != nil {
		return domain.ReviewPage{}, fmt.Errorf("%w: %v", domain.ErrMalformedResponse, err)
	}
	if result.StatusCode != nil {
		return domain.ReviewPage{}, fmt.Errorf("%w: source error %d: %s",
			domain.ErrMalformedResponse, *result.StatusCode, result.Message)
	}

	page := domain.ReviewPage{
		Stats: domain.SourceStats{ReviewsCount: result.ReviewsCount},
		Raw:   raw,
	}
	for _, cardRaw := range result.ReviewCard {
		var card reviewCard
		if err := json.Unmarshal(cardRaw, &card); err != nil || card.ReviewURL == "" {
			continue // skip entries the source sent broken
		}
		page.Reviews = append(page.Reviews, mapReview(card, cardRaw, hotelID))
	}
	page.HasMore = len(page.Reviews) > 0 && skip+len(page.Reviews) < result.ReviewsCount
	return page, nil
}

func mapReview(card reviewCard, raw []byte, hotelID string) domain.Review {
	r := domain.Review{
		ID:           card.ReviewURL,
		HotelID:      hotelID,
		Score:        card.ReviewScore,
		Title:        ptrStr(card.TextDetails.Title),
		PositiveText: ptrStr(card.TextDetails.PositiveText),
		NegativeText: ptrStr(card.TextDetails.NegativeText),
		Author:       ptrStr(card.GuestDetails.Username),
		CountryCode:  ptrStr(strings.ToLower(card.GuestDetails.CountryCode)),
		CustomerType: domain.CustomerAll,
		Lang:         ptrStr(strings.ToLower(card.TextDetails.Lang)),
		ReviewedAt:   coerceDate(card.ReviewedDate),
		CheckinDate:  ptrStr(card.BookingDetails.CheckinDate),
		RawJSON:      append([]byte(nil), raw...),
	}
	if ct, ok := wireCustomerTypes[card.BookingDetails.CustomerType]; ok {
		r.CustomerType = ct
	}
	for _, p := range card.Photos {
		for _, u := range p.URLs {
			if u.Size == photoSize && u.URL != "" {
				r.PhotoURLs = append(r.PhotoURLs, u.URL)
				break
			}
		}
	}
	return r
}

// coerceDate accepts the source's two date encodings: unix seconds as a JSON
// number, or a plain "YYYY-MM-DD" string.
func coerceDate(v any) time.Time {
	switch d := v.(type) {
	case float64:
		if d > 0 {
			return time.Unix(int64(d), 0).UTC()
		}
	case string:
		if t, err := time.Parse("2006-01-02", d); err == nil {
			return t
		}
		if n, err := strconv.ParseInt(d, 10, 64); err == nil && n > 0 {
			return time.Unix(n, 0).UTC()
		}
	}
	return time.Time{}
}

func ptrStr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// The hotel page embeds a tracking object with the property's identity and
// aggregates. We pull the object literal out and decode it as JSON.
var utagPattern = regexp.MustCompile(`(?s)utag_data\s*=\s*(\{.*?\})\s*[;\n]`)

func parseHotelPage(html []byte, id string) (domain.Hotel, error) {
	m := utagPattern.FindSubmatch(html)
	if m == nil {
		return domain.Hotel{}, fmt.Errorf("%w: no property data on hotel page", domain.ErrMalformedResponse)
	}
	var data map[string]any
	if err := json.Unmarshal(m[1], &data); err != nil {
		return domain.Hotel{}, fmt.Errorf("%w: property data: %v", domain.ErrMalformedResponse, err)
	}
	h := domain.Hotel{
		ID:          id,
		Name:        str(data["hotel_name"]),
		CountryCode: strings.ToLower(str(data["dest_cc"])),
		CountryName: str(data["country_name"]),
		City:        str(data["city_name"]),
		Score:       num(data["utrs"]),
		RawJSON:     append([]byte(nil), m[1]...),
	}
	if h.CountryCode == "" && len(id) > 2 && id[2] == '/' {
		h.CountryCode = id[:2]
	}
	if h.Name == "" {
		return domain.Hotel{}, fmt.Errorf("%w: hotel page missing name", domain.ErrMalformedResponse)
	}
	return h, nil
}

func str(v any) string {
	s, _ := v.(string)
	return strings.TrimSpace(s)
}

func num(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case string:
		f, _ := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(n), ",", "."), 64)
		return f
	}
	return 0
}
