package domain

import (
	"fmt"
	"regexp"
	"strings"
)

// SortOrder selects the order in which the source returns review pages.
type SortOrder string

const (
	SortNewestFirst  SortOrder = "NEWEST_FIRST"
	SortOldestFirst  SortOrder = "OLDEST_FIRST"
	SortHighestScore SortOrder = "SCORE_DESC"
	SortLowestScore  SortOrder = "SCORE_ASC"
	SortMostRelevant SortOrder = "MOST_RELEVANT"
)

// TimeOfYear buckets reviews by stay season. Wire values are the source's
// month-range tokens.
type TimeOfYear string

const (
	SeasonAll    TimeOfYear = "ALL"
	SeasonMarMay TimeOfYear = "_03_05"
	SeasonJunAug TimeOfYear = "_06_08"
	SeasonSepNov TimeOfYear = "_09_11"
	SeasonDecFeb TimeOfYear = "_12_02"
)

// CustomerType buckets reviews by the kind of stay.
type CustomerType string

const (
	CustomerAll      CustomerType = "ALL"
	CustomerFamilies CustomerType = "FAMILIES"
	CustomerCouples  CustomerType = "COUPLES"
	CustomerFriends  CustomerType = "GROUP_OF_FRIENDS"
	CustomerSolo     CustomerType = "SOLO_TRAVELLERS"
	CustomerBusiness CustomerType = "BUSINESS_TRAVELLERS"
)

// ScoreBucket buckets reviews by the source's score adjective ranges.
type ScoreBucket string

const (
	ScoreAll       ScoreBucket = "ALL"
	ScoreWonderful ScoreBucket = "REVIEW_ADJ_SUPERB"
	ScoreGood      ScoreBucket = "REVIEW_ADJ_GOOD"
	ScoreFair      ScoreBucket = "REVIEW_ADJ_AVERAGE_PASSABLE"
	ScorePoor      ScoreBucket = "REVIEW_ADJ_POOR"
	ScoreVeryPoor  ScoreBucket = "REVIEW_ADJ_VERY_POOR"
)

var sortNames = map[string]SortOrder{
	"newest_first":  SortNewestFirst,
	"oldest_first":  SortOldestFirst,
	"highest_score": SortHighestScore,
	"lowest_score":  SortLowestScore,
	"most_relevant": SortMostRelevant,
}

var seasonNames = map[string]TimeOfYear{
	"all":     SeasonAll,
	"mar_may": SeasonMarMay,
	"jun_aug": SeasonJunAug,
	"sep_nov": SeasonSepNov,
	"dec_feb": SeasonDecFeb,
}

var customerNames = map[string]CustomerType{
	"all":                 CustomerAll,
	"families":            CustomerFamilies,
	"couples":             CustomerCouples,
	"group_of_friends":    CustomerFriends,
	"solo_travellers":     CustomerSolo,
	"business_travellers": CustomerBusiness,
}

var scoreNames = map[string]ScoreBucket{
	"all":       ScoreAll,
	"wonderful": ScoreWonderful,
	"good":      ScoreGood,
	"fair":      ScoreFair,
	"poor":      ScorePoor,
	"very_poor": ScoreVeryPoor,
}

func ParseSortOrder(s string) (SortOrder, error) {
	if v, ok := sortNames[strings.ToLower(strings.TrimSpace(s))]; ok {
		return v, nil
	}
	return "", &ConfigError{Field: "sort", Reason: fmt.Sprintf("unknown value %q", s)}
}

func ParseTimeOfYear(s string) (TimeOfYear, error) {
	if v, ok := seasonNames[strings.ToLower(strings.TrimSpace(s))]; ok {
		return v, nil
	}
	return "", &ConfigError{Field: "time_of_year", Reason: fmt.Sprintf("unknown value %q", s)}
}

func ParseCustomerType(s string) (CustomerType, error) {
	if v, ok := customerNames[strings.ToLower(strings.TrimSpace(s))]; ok {
		return v, nil
	}
	return "", &ConfigError{Field: "customer_type", Reason: fmt.Sprintf("unknown value %q", s)}
}

func ParseScoreBucket(s string) (ScoreBucket, error) {
	if v, ok := scoreNames[strings.ToLower(strings.TrimSpace(s))]; ok {
		return v, nil
	}
	return "", &ConfigError{Field: "score", Reason: fmt.Sprintf("unknown value %q", s)}
}

var langPattern = regexp.MustCompile(`^[a-z]{2}(-[a-z]{2})?$`)

// FilterCriteria is the immutable sort/filter/pagination configuration shared
// by every hotel in one run.
type FilterCriteria struct {
	Sort         SortOrder
	TimeOfYear   TimeOfYear
	CustomerType CustomerType
	Score        ScoreBucket
	Languages    []string // ISO 639-1, lowercase; empty means all
	PageSize     int      // 10..25
	StartPage    int      // 1-based
	MaxPages     int      // >= 1
}

// Validate enforces every bound before a FetchJob may be created.
func (c FilterCriteria) Validate() error {
	if c.Sort == "" || c.TimeOfYear == "" || c.CustomerType == "" || c.Score == "" {
		return &ConfigError{Field: "criteria", Reason: "enum fields must be set"}
	}
	if c.PageSize < 10 || c.PageSize > 25 {
		return &ConfigError{Field: "page_size", Reason: fmt.Sprintf("%d out of range [10,25]", c.PageSize)}
	}
	if c.StartPage < 1 {
		return &ConfigError{Field: "start_page", Reason: fmt.Sprintf("%d must be >= 1", c.StartPage)}
	}
	if c.MaxPages < 1 {
		return &ConfigError{Field: "max_pages", Reason: fmt.Sprintf("%d must be >= 1", c.MaxPages)}
	}
	for _, l := range c.Languages {
		if !langPattern.MatchString(l) {
			return &ConfigError{Field: "languages", Reason: fmt.Sprintf("invalid code %q", l)}
		}
	}
	return nil
}

// DefaultCriteria fills the enum fields with their "all" values and the
// pagination fields with the smallest valid run.
func DefaultCriteria() FilterCriteria {
	return FilterCriteria{
		Sort:         SortNewestFirst,
		TimeOfYear:   SeasonAll,
		CustomerType: CustomerAll,
		Score:        ScoreAll,
		PageSize:     10,
		StartPage:    1,
		MaxPages:     1,
	}
}
