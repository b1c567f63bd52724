package shared

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"booking_reviews/internal/domain"
)

type Config struct {
	AppEnv      string
	HTTPAddr    string
	MetricsAddr string
	MySQLDSN    string
	RedisAddr   string
	RedisDB     int
	RedisPass   string
	SourceBase  string
	UserAgent   string
	SourceRPS   int
	CacheTTL    time.Duration

	// Run inputs
	HotelRefs      []string
	Concurrency    int
	DownloadPhotos bool
	ArchiveDir     string
	PhotosDir      string

	// Raw criteria values; Criteria() parses and validates them.
	Sort         string
	TimeOfYear   string
	CustomerType string
	Score        string
	Languages    []string
	PageSize     int
	StartPage    int
	MaxPages     int
}

func Load() Config {
	// .env is optional; real environments set variables directly.
	_ = godotenv.Load()

	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return def
	}
	return Config{
		AppEnv:      env("APP_ENV", "prod"),
		HTTPAddr:    env("HTTP_ADDR", ":8080"),
		MetricsAddr: env("METRICS_ADDR", ":9100"),
		MySQLDSN:    env("MYSQL_DSN", "root:root@tcp(localhost:3306)/booking?parseTime=true&charset=utf8mb4,utf8&loc=UTC"),
		RedisAddr:   env("REDIS_ADDR", "localhost:6379"),
		RedisPass:   env("REDIS_PASSWORD", ""),
		RedisDB:     atoi("REDIS_DB", 0),
		SourceBase:  env("SOURCE_BASE_URL", "https://www.booking.com"),
		UserAgent:   env("SOURCE_USER_AGENT", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/136.0.0.0 Safari/537.36"),
		SourceRPS:   atoi("SOURCE_RPS", 2),
		CacheTTL:    time.Duration(atoi("CACHE_TTL_SECONDS", 900)) * time.Second,

		HotelRefs:      list("HOTEL_REFS"),
		Concurrency:    atoi("CONCURRENT_HOTELS", 3),
		DownloadPhotos: env("DOWNLOAD_PHOTOS", "") == "true",
		ArchiveDir:     env("ARCHIVE_DIR", "output/json"),
		PhotosDir:      env("PHOTOS_DIR", "output/photos"),

		Sort:         env("SORT", "newest_first"),
		TimeOfYear:   env("TIME_OF_YEAR", "all"),
		CustomerType: env("CUSTOMER_TYPE", "all"),
		Score:        env("SCORE", "all"),
		Languages:    list("LANGUAGES"),
		PageSize:     atoi("PAGE_SIZE", 10),
		StartPage:    atoi("START_PAGE", 1),
		MaxPages:     atoi("MAX_PAGES", 1),
	}
}

// Criteria parses the raw filter values into a validated FilterCriteria.
// Any out-of-bound or unknown value fails here, before a FetchJob exists.
func (c Config) Criteria() (domain.FilterCriteria, error) {
	sort, err := domain.ParseSortOrder(c.Sort)
	if err != nil {
		return domain.FilterCriteria{}, err
	}
	season, err := domain.ParseTimeOfYear(c.TimeOfYear)
	if err != nil {
		return domain.FilterCriteria{}, err
	}
	customer, err := domain.ParseCustomerType(c.CustomerType)
	if err != nil {
		return domain.FilterCriteria{}, err
	}
	score, err := domain.ParseScoreBucket(c.Score)
	if err != nil {
		return domain.FilterCriteria{}, err
	}
	langs := make([]string, 0, len(c.Languages))
	for _, l := range c.Languages {
		langs = append(langs, strings.ToLower(strings.TrimSpace(l)))
	}
	if len(langs) == 0 {
		langs = nil
	}
	crit := domain.FilterCriteria{
		Sort:         sort,
		TimeOfYear:   season,
		CustomerType: customer,
		Score:        score,
		Languages:    langs,
		PageSize:     c.PageSize,
		StartPage:    c.StartPage,
		MaxPages:     c.MaxPages,
	}
	if err := crit.Validate(); err != nil {
		return domain.FilterCriteria{}, err
	}
	return crit, nil
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func list(k string) []string {
	v := os.Getenv(k)
	if v == "" {
		return nil
	}
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
