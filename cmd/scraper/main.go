package main

import (
	"context"
	"database/sql"
	"os"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"booking_reviews/internal/adapters/booking"
	"booking_reviews/internal/adapters/observability"
	redisad "booking_reviews/internal/adapters/redis"
	"booking_reviews/internal/app"
	"booking_reviews/internal/archive"
	"booking_reviews/internal/media"
	"booking_reviews/internal/shared"
	mysqlrepo "booking_reviews/internal/storage/mysql"
)

func main() {
	ctx := context.Background()
	cfg := shared.Load()

	// initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	crit, err := cfg.Criteria()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid filter configuration")
	}

	log.Info().
		Str("base", cfg.SourceBase).
		Int("hotels", len(cfg.HotelRefs)).
		Int("concurrency", cfg.Concurrency).
		Int("page_size", crit.PageSize).
		Int("max_pages", crit.MaxPages).
		Msg("scraper starting")

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("db ping ok")

	repo := mysqlrepo.New(db)

	client, err := booking.New(cfg.SourceBase, cfg.UserAgent, cfg.SourceRPS)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize review source client")
	}

	arch, err := archive.New(cfg.ArchiveDir)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to prepare archive directory")
	}

	var photos *media.Downloader
	if cfg.DownloadPhotos {
		photos = media.New(cfg.PhotosDir, cfg.UserAgent)
	}

	observability.Serve()

	// drop the API's cached responses for every hotel this run refreshes
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	q := app.NewQueryService(repo, cache, cfg.CacheTTL)

	sched := app.NewScheduler(booking.Resolve, client, repo, arch, photos, q.InvalidateHotel)
	report, err := sched.Run(ctx, app.RunParams{
		Refs:        cfg.HotelRefs,
		Criteria:    crit,
		Concurrency: cfg.Concurrency,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("run aborted")
	}

	for _, j := range report.Jobs {
		ev := log.Info()
		if j.Err != nil {
			ev = log.Warn().Err(j.Err)
		}
		ev.Str("ref", j.Reference).
			Str("hotel", j.HotelID).
			Str("status", string(j.Status)).
			Int("pages", j.Pages).
			Int("reviews", j.Reviews).
			Msg("job result")
	}

	if !report.Complete() {
		os.Exit(1)
	}
}
