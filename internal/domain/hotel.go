package domain

import "time"

// Hotel is the source hotel record, keyed by the canonical identifier the
// resolver produces. Aggregate fields are refreshed on every run; stored
// reviews are left alone unless re-fetched.
type Hotel struct {
	ID          string
	Name        string
	CountryCode string
	CountryName string
	City        string
	Score       float64 // source aggregate, 0..10
	ReviewCount int     // derived: count of stored reviews
	RawJSON     []byte  // full source payload
}

// Review is immutable once stored; a corrective re-fetch of the same
// identifier overwrites it in place.
type Review struct {
	ID           string // stable source identifier, the persistence key
	HotelID      string
	Score        float64
	Title        *string
	PositiveText *string
	NegativeText *string
	Author       *string
	CountryCode  *string
	CustomerType CustomerType
	Lang         *string
	ReviewedAt   time.Time
	CheckinDate  *string // YYYY-MM-DD when the source provides it
	PhotoURLs    []string
	RawJSON      []byte
}
