//go:build integration || !unit

package mysql_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"

	"booking_reviews/internal/domain"
	mysqlrepo "booking_reviews/internal/storage/mysql"
)

// ---------- small helpers ----------
func pstr(s string) *string { return &s }

func mustEnv(t *testing.T, k string) string {
	t.Helper()
	v := os.Getenv(k)
	if v == "" {
		t.Fatalf("%s not set; export it (e.g. MIGRATIONS_DIR=/path/to/sql)", k)
	}
	return v
}

func applyMigrations(t *testing.T, db *sql.DB) {
	t.Helper()
	dir := mustEnv(t, "MIGRATIONS_DIR")

	st, err := os.Stat(dir)
	if err != nil || !st.IsDir() {
		t.Fatalf("MIGRATIONS_DIR=%s is not a directory or missing", dir)
	}

	ents, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read migrations dir: %v", err)
	}
	var files []string
	for _, e := range ents {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".sql" {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	if len(files) == 0 {
		t.Fatalf("no .sql files in %s", dir)
	}
	sort.Strings(files)

	for _, f := range files {
		sqlBytes, err := os.ReadFile(f)
		if err != nil {
			t.Fatalf("read %s: %v", f, err)
		}
		if _, err := db.Exec(string(sqlBytes)); err != nil {
			t.Fatalf("exec %s: %v", f, err)
		}
	}
}

// ---------- the test ----------
func TestRepo_MySQL_UpsertAndQuery(t *testing.T) {
	// Start isolated MySQL; let Docker pick a free host port.
	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Fatalf("dockertest: %v", err)
	}

	runOpts := &dockertest.RunOptions{
		Repository: "mysql",
		Tag:        "8.0.36",
		Env: []string{
			"MYSQL_ROOT_PASSWORD=root",
			"MYSQL_DATABASE=reviews",
		},
	}
	resource, err := pool.RunWithOptions(runOpts, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("run mysql: %v", err)
	}
	t.Cleanup(func() { _ = pool.Purge(resource) })

	hostPort := resource.GetPort("3306/tcp")
	dsn := fmt.Sprintf("root:%s@tcp(127.0.0.1:%s)/%s?parseTime=true&multiStatements=true&charset=utf8mb4,utf8&loc=UTC",
		"root", hostPort, "reviews")

	var db *sql.DB
	if err := pool.Retry(func() error {
		var e error
		db, e = sql.Open("mysql", dsn)
		if e != nil {
			return e
		}
		return db.Ping()
	}); err != nil {
		t.Fatalf("connect mysql: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	applyMigrations(t, db)

	repo := mysqlrepo.New(db)
	ctx := context.Background()

	// Arrange
	h := domain.Hotel{
		ID:          "eg/golden-scarab-pyramids",
		Name:        "Golden Scarab Pyramids",
		CountryCode: "eg",
		CountryName: "Egypt",
		City:        "Giza",
		Score:       8.7,
		RawJSON:     []byte(`{}`),
	}
	if err := repo.UpsertHotel(ctx, h); err != nil {
		t.Fatalf("UpsertHotel: %v", err)
	}

	when := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	r1 := domain.Review{
		ID:           "/reviewlist/r-1",
		HotelID:      h.ID,
		Score:        9.0,
		Title:        pstr("Great stay"),
		PositiveText: pstr("Close to everything"),
		Author:       pstr("Ana"),
		CountryCode:  pstr("pt"),
		CustomerType: domain.CustomerCouples,
		Lang:         pstr("en"),
		ReviewedAt:   when,
		RawJSON:      []byte(`{}`),
	}
	r2 := domain.Review{
		ID:           "/reviewlist/r-2",
		HotelID:      h.ID,
		Score:        6.5,
		NegativeText: pstr("Noisy"),
		Author:       pstr("Bob"),
		CustomerType: domain.CustomerSolo,
		Lang:         pstr("fr"),
		ReviewedAt:   when.AddDate(0, -1, 0),
		PhotoURLs:    []string{"https://cf.example/p1.jpg"},
		RawJSON:      []byte(`{}`),
	}

	stats, err := repo.UpsertReviews(ctx, h.ID, []domain.Review{r1, r2})
	if err != nil {
		t.Fatalf("UpsertReviews: %v", err)
	}
	if stats.Inserted != 2 || stats.Overwritten != 0 {
		t.Fatalf("first upsert: got %+v, want 2 inserted", stats)
	}

	// Same batch again: dedup by identifier, nothing newly inserted.
	stats, err = repo.UpsertReviews(ctx, h.ID, []domain.Review{r1, r2})
	if err != nil {
		t.Fatalf("UpsertReviews (repeat): %v", err)
	}
	if stats.Inserted != 0 || stats.Overwritten != 2 {
		t.Fatalf("repeat upsert: got %+v, want 2 overwritten", stats)
	}

	n, err := repo.RefreshReviewCount(ctx, h.ID)
	if err != nil {
		t.Fatalf("RefreshReviewCount: %v", err)
	}
	if n != 2 {
		t.Fatalf("review count = %d, want 2", n)
	}

	// Assert hotel read-back
	got, err := repo.GetHotel(ctx, h.ID)
	if err != nil {
		t.Fatalf("GetHotel: %v", err)
	}
	if got.Name != h.Name || got.ReviewCount != 2 {
		t.Fatalf("unexpected hotel: %+v", got)
	}

	if _, err := repo.GetHotel(ctx, "xx/nowhere"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("missing hotel: err = %v, want ErrNotFound", err)
	}

	// Query: newest first by default
	all, err := repo.QueryReviews(ctx, domain.ReviewQuery{HotelID: h.ID})
	if err != nil {
		t.Fatalf("QueryReviews: %v", err)
	}
	if len(all) != 2 || all[0].ID != r1.ID {
		t.Fatalf("newest-first query: %+v", all)
	}
	if len(all[1].PhotoURLs) != 1 || all[1].PhotoURLs[0] != r2.PhotoURLs[0] {
		t.Fatalf("photo urls not round-tripped: %+v", all[1])
	}

	// Language filter
	fr, err := repo.QueryReviews(ctx, domain.ReviewQuery{HotelID: h.ID, Languages: []string{"fr"}})
	if err != nil {
		t.Fatalf("QueryReviews (lang): %v", err)
	}
	if len(fr) != 1 || fr[0].ID != r2.ID {
		t.Fatalf("lang filter: %+v", fr)
	}

	// Score range
	min := 8.0
	high, err := repo.QueryReviews(ctx, domain.ReviewQuery{HotelID: h.ID, MinScore: &min})
	if err != nil {
		t.Fatalf("QueryReviews (score): %v", err)
	}
	if len(high) != 1 || high[0].ID != r1.ID {
		t.Fatalf("score filter: %+v", high)
	}

	// Aggregates
	byType, err := repo.CountsByCustomerType(ctx, h.ID)
	if err != nil {
		t.Fatalf("CountsByCustomerType: %v", err)
	}
	if len(byType) != 2 {
		t.Fatalf("counts by type: %+v", byType)
	}
	byLang, err := repo.CountsByLanguage(ctx, h.ID)
	if err != nil {
		t.Fatalf("CountsByLanguage: %v", err)
	}
	if len(byLang) != 2 {
		t.Fatalf("counts by lang: %+v", byLang)
	}
}
