package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"booking_reviews/internal/domain"
)

func valStr(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

func nullToPtr(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

func (r *Repo) UpsertHotel(ctx context.Context, h domain.Hotel) error {
	_, err := r.db.ExecContext(ctx, upsertHotelSQL,
		h.ID,
		h.Name,
		h.CountryCode,
		h.CountryName,
		h.City,
		h.Score,
		string(h.RawJSON),
	)
	if err != nil {
		return fmt.Errorf("upsert hotel %s: %w", h.ID, err)
	}
	return nil
}

// UpsertReviews writes one hotel's batch inside a single transaction, so a
// retried job for the same hotel serializes against itself while other
// hotels' batches proceed untouched. Inserts and overwrites are told apart
// by the driver's affected-row convention (1 insert, 2 changed, 0 identical).
func (r *Repo) UpsertReviews(ctx context.Context, hotelID string, rs []domain.Review) (domain.UpsertStats, error) {
	var stats domain.UpsertStats
	if len(rs) == 0 {
		return stats, nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return stats, fmt.Errorf("begin review batch for %s: %w", hotelID, err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, upsertReviewSQL)
	if err != nil {
		return stats, fmt.Errorf("prepare review upsert: %w", err)
	}
	defer stmt.Close()

	for _, rv := range rs {
		photos, _ := json.Marshal(rv.PhotoURLs)
		var reviewedAt any
		if !rv.ReviewedAt.IsZero() {
			reviewedAt = rv.ReviewedAt.UTC()
		}
		res, err := stmt.ExecContext(ctx,
			rv.ID,
			hotelID,
			rv.Score,
			valStr(rv.Title),
			valStr(rv.PositiveText),
			valStr(rv.NegativeText),
			valStr(rv.Author),
			valStr(rv.CountryCode),
			string(rv.CustomerType),
			valStr(rv.Lang),
			reviewedAt,
			valStr(rv.CheckinDate),
			string(photos),
			string(rv.RawJSON),
		)
		if err != nil {
			return domain.UpsertStats{}, fmt.Errorf("upsert review %s: %w", rv.ID, err)
		}
		if n, _ := res.RowsAffected(); n == 1 {
			stats.Inserted++
		} else {
			stats.Overwritten++
		}
	}
	if err := tx.Commit(); err != nil {
		return domain.UpsertStats{}, fmt.Errorf("commit review batch for %s: %w", hotelID, err)
	}
	return stats, nil
}

func (r *Repo) RefreshReviewCount(ctx context.Context, hotelID string) (int, error) {
	if _, err := r.db.ExecContext(ctx, refreshReviewCountSQL, hotelID, hotelID); err != nil {
		return 0, fmt.Errorf("refresh review count for %s: %w", hotelID, err)
	}
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT review_count FROM hotels WHERE id = ?`, hotelID).Scan(&n); err != nil {
		return 0, fmt.Errorf("read review count for %s: %w", hotelID, err)
	}
	return n, nil
}

func (r *Repo) GetHotel(ctx context.Context, id string) (domain.Hotel, error) {
	row := r.db.QueryRowContext(ctx, getHotelSQL, id)

	var h domain.Hotel
	var raw sql.NullString
	if err := row.Scan(&h.ID, &h.Name, &h.CountryCode, &h.CountryName, &h.City, &h.Score, &h.ReviewCount, &raw); err != nil {
		if err == sql.ErrNoRows {
			return domain.Hotel{}, domain.ErrNotFound
		}
		return domain.Hotel{}, err
	}
	if raw.Valid {
		h.RawJSON = []byte(raw.String)
	}
	return h, nil
}

// QueryReviews serves the read-side filter predicates. Default order is
// reviewed date descending; re-querying always produces a fresh result set.
func (r *Repo) QueryReviews(ctx context.Context, q domain.ReviewQuery) ([]domain.Review, error) {
	var (
		where []string
		args  []any
	)
	if q.HotelID != "" {
		where = append(where, "hotel_id = ?")
		args = append(args, q.HotelID)
	}
	if q.MinScore != nil {
		where = append(where, "score >= ?")
		args = append(args, *q.MinScore)
	}
	if q.MaxScore != nil {
		where = append(where, "score <= ?")
		args = append(args, *q.MaxScore)
	}
	if len(q.Languages) > 0 {
		ph := strings.TrimSuffix(strings.Repeat("?,", len(q.Languages)), ",")
		where = append(where, "lang IN ("+ph+")")
		for _, l := range q.Languages {
			args = append(args, l)
		}
	}
	if q.Country != "" {
		where = append(where, "country_code = ?")
		args = append(args, q.Country)
	}
	if q.From != nil {
		where = append(where, "reviewed_at >= ?")
		args = append(args, q.From.UTC())
	}
	if q.To != nil {
		where = append(where, "reviewed_at < ?")
		args = append(args, q.To.UTC())
	}

	sqlStr := selectReviewColumns
	if len(where) > 0 {
		sqlStr += " WHERE " + strings.Join(where, " AND ")
	}
	if q.OldestFirst {
		sqlStr += " ORDER BY reviewed_at ASC, id ASC"
	} else {
		sqlStr += " ORDER BY reviewed_at DESC, id DESC"
	}
	limit := q.Limit
	if limit <= 0 {
		limit = 50
	}
	sqlStr += " LIMIT ?"
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Review
	for rows.Next() {
		var (
			rv                          domain.Review
			title, pos, neg, author     sql.NullString
			country, customerType, lang sql.NullString
			reviewedAt                  sql.NullTime
			checkin, photosRaw, rawB    sql.NullString
		)
		if err := rows.Scan(
			&rv.ID, &rv.HotelID, &rv.Score,
			&title, &pos, &neg, &author,
			&country, &customerType, &lang,
			&reviewedAt, &checkin, &photosRaw, &rawB,
		); err != nil {
			return nil, err
		}
		rv.Title = nullToPtr(title)
		rv.PositiveText = nullToPtr(pos)
		rv.NegativeText = nullToPtr(neg)
		rv.Author = nullToPtr(author)
		rv.CountryCode = nullToPtr(country)
		if customerType.Valid {
			rv.CustomerType = domain.CustomerType(customerType.String)
		}
		rv.Lang = nullToPtr(lang)
		if reviewedAt.Valid {
			rv.ReviewedAt = reviewedAt.Time.UTC()
		}
		rv.CheckinDate = nullToPtr(checkin)
		if photosRaw.Valid && photosRaw.String != "" {
			_ = json.Unmarshal([]byte(photosRaw.String), &rv.PhotoURLs)
		}
		if rawB.Valid {
			rv.RawJSON = []byte(rawB.String)
		}
		out = append(out, rv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repo) CountsByCustomerType(ctx context.Context, hotelID string) ([]domain.TypeCount, error) {
	return r.counts(ctx, countsByCustomerTypeSQL, hotelID)
}

func (r *Repo) CountsByLanguage(ctx context.Context, hotelID string) ([]domain.TypeCount, error) {
	return r.counts(ctx, countsByLanguageSQL, hotelID)
}

func (r *Repo) counts(ctx context.Context, sqlStr, hotelID string) ([]domain.TypeCount, error) {
	rows, err := r.db.QueryContext(ctx, sqlStr, hotelID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.TypeCount
	for rows.Next() {
		var tc domain.TypeCount
		if err := rows.Scan(&tc.Key, &tc.Count); err != nil {
			return nil, err
		}
		out = append(out, tc)
	}
	return out, rows.Err()
}
