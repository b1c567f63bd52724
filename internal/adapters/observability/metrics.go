package observability

import (
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

var (
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "booking", Name: "http_requests_total", Help: "HTTP requests."},
		[]string{"route", "method", "status"},
	)
	HTTPLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "booking", Name: "http_request_duration_seconds",
			Help:    "HTTP request duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)
	ExternalRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "booking", Name: "external_requests_total", Help: "Outbound requests to the review source."},
		[]string{"service", "endpoint", "status"},
	)
	ExternalLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "booking", Name: "external_request_duration_seconds",
			Help:    "Outbound request duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "endpoint"},
	)
	PagesFetched = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "booking", Name: "pages_fetched_total", Help: "Review pages fetched per terminal outcome."},
		[]string{"outcome"}, // outcome: ok|error
	)
	ReviewsStored = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "booking", Name: "reviews_stored_total", Help: "Review upserts by kind."},
		[]string{"kind"}, // kind: inserted|overwritten
	)
	PhotoDownloads = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "booking", Name: "photo_downloads_total", Help: "Review photo downloads by result."},
		[]string{"result"}, // result: ok|skipped|error
	)
	CacheEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "booking", Name: "cache_events_total", Help: "Cache hits/misses/sets/dels."},
		[]string{"cache", "event"}, // event: hit|miss|set|del
	)
)

// Serve starts a standalone metrics listener when METRICS_ADDR is set; the
// scraper has no other HTTP surface.
func Serve() {
	addr := os.Getenv("METRICS_ADDR")
	if addr == "" {
		return // disabled
	}
	// Serve the registry the pipeline instruments are registered in; the
	// default registry knows nothing about them.
	mux := http.NewServeMux()
	mux.Handle("/metrics", MetricsHandler(InitRegistry()))

	go func() {
		srv := &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		log.Info().Str("addr", addr).Msg("metrics server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("metrics server failed")
		}
	}()
}

func InitRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(HTTPRequests, HTTPLatency, ExternalRequests, ExternalLatency,
		PagesFetched, ReviewsStored, PhotoDownloads, CacheEvents)
	return reg
}

func MetricsHandler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

func ObserveHTTP(route, method string, status int, dur time.Duration) {
	HTTPRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	HTTPLatency.WithLabelValues(route, method).Observe(dur.Seconds())
}

func ObserveExternal(service, endpoint string, status int, dur time.Duration) {
	ExternalRequests.WithLabelValues(service, endpoint, strconv.Itoa(status)).Inc()
	ExternalLatency.WithLabelValues(service, endpoint).Observe(dur.Seconds())
}

func ObservePage(ok bool) {
	if ok {
		PagesFetched.WithLabelValues("ok").Inc()
		return
	}
	PagesFetched.WithLabelValues("error").Inc()
}

func ObserveUpserts(inserted, overwritten int) {
	ReviewsStored.WithLabelValues("inserted").Add(float64(inserted))
	ReviewsStored.WithLabelValues("overwritten").Add(float64(overwritten))
}

func ObservePhoto(result string) { // result: ok|skipped|error
	PhotoDownloads.WithLabelValues(result).Inc()
}

func ObserveCache(cache, event string) { // event: hit|miss|set|del
	CacheEvents.WithLabelValues(cache, event).Inc()
}
