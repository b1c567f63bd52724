package mysql

const upsertHotelSQL = `
INSERT INTO hotels
  (id, name, country_code, country_name, city, score, review_count, raw)
VALUES
  (?, ?, ?, ?, ?, ?, 0, ?)
ON DUPLICATE KEY UPDATE
  name         = VALUES(name),
  country_code = VALUES(country_code),
  country_name = VALUES(country_name),
  city         = VALUES(city),
  score        = VALUES(score),
  raw          = VALUES(raw),
  updated_at   = CURRENT_TIMESTAMP
`

// One row per statement so RowsAffected can distinguish inserts (1) from
// overwrites (2, or 0 when identical).
const upsertReviewSQL = `
INSERT INTO reviews
  (id, hotel_id, score, title, positive_text, negative_text, author,
   country_code, customer_type, lang, reviewed_at, checkin_date, photo_urls, raw)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  hotel_id      = VALUES(hotel_id),
  score         = VALUES(score),
  title         = VALUES(title),
  positive_text = VALUES(positive_text),
  negative_text = VALUES(negative_text),
  author        = VALUES(author),
  country_code  = VALUES(country_code),
  customer_type = VALUES(customer_type),
  lang          = VALUES(lang),
  reviewed_at   = VALUES(reviewed_at),
  checkin_date  = VALUES(checkin_date),
  photo_urls    = VALUES(photo_urls),
  raw           = VALUES(raw)
`

const refreshReviewCountSQL = `
UPDATE hotels
SET review_count = (SELECT COUNT(*) FROM reviews WHERE hotel_id = ?),
    updated_at   = CURRENT_TIMESTAMP
WHERE id = ?
`

const getHotelSQL = `
SELECT id, name, country_code, country_name, city, score, review_count, raw
FROM hotels
WHERE id = ?
`

const countsByCustomerTypeSQL = `
SELECT customer_type, COUNT(*)
FROM reviews
WHERE hotel_id = ?
GROUP BY customer_type
ORDER BY COUNT(*) DESC, customer_type
`

const countsByLanguageSQL = `
SELECT COALESCE(lang, ''), COUNT(*)
FROM reviews
WHERE hotel_id = ?
GROUP BY lang
ORDER BY COUNT(*) DESC, lang
`

const selectReviewColumns = `
SELECT id, hotel_id, score, title, positive_text, negative_text, author,
       country_code, customer_type, lang, reviewed_at, checkin_date, photo_urls, raw
FROM reviews
`
