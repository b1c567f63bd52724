package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"booking_reviews/internal/app"
	"booking_reviews/internal/domain"
)

type Handlers struct{ Q *app.QueryService }

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

// Hotel identifiers are two path segments (country code, then slug), so each
// route binds both explicitly.
func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Get("/v1/hotels/{cc}/{slug}", h.getHotel)
	s.mux.Get("/v1/hotels/{cc}/{slug}/reviews", h.listReviews)
	s.mux.Get("/v1/hotels/{cc}/{slug}/stats", h.getStats)
}

func hotelID(r *http.Request) string {
	return strings.ToLower(chi.URLParam(r, "cc") + "/" + chi.URLParam(r, "slug"))
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

func writeCached(w http.ResponseWriter, r *http.Request, v any) {
	etag, body := calcETagAndBody(v)
	// If client already has this version, short-circuit.
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write response body")
	}
}

func (h *Handlers) getHotel(w http.ResponseWriter, r *http.Request) {
	resp, err := h.Q.GetHotel(r.Context(), hotelID(r))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeProblem(w, http.StatusNotFound, "Not Found", "hotel not found")
			return
		}
		writeProblem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	writeCached(w, r, resp)
}

// reviewQuery maps the filter query params onto the store query. Bad values
// fail the request instead of being silently dropped.
func reviewQuery(r *http.Request, id string) (domain.ReviewQuery, error) {
	q := domain.ReviewQuery{HotelID: id, Limit: 50}
	vals := r.URL.Query()

	if ls := vals.Get("limit"); ls != "" {
		l, err := strconv.Atoi(ls)
		if err != nil || l <= 0 || l > 200 {
			return q, errors.New("limit must be an integer between 1 and 200")
		}
		q.Limit = l
	}
	if s := vals.Get("min_score"); s != "" {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return q, errors.New("min_score must be a number")
		}
		q.MinScore = &f
	}
	if s := vals.Get("max_score"); s != "" {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return q, errors.New("max_score must be a number")
		}
		q.MaxScore = &f
	}
	if s := vals.Get("langs"); s != "" {
		for _, l := range strings.Split(s, ",") {
			if l = strings.TrimSpace(strings.ToLower(l)); l != "" {
				q.Languages = append(q.Languages, l)
			}
		}
	}
	if s := vals.Get("country"); s != "" {
		q.Country = strings.ToLower(s)
	}
	if s := vals.Get("from"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			return q, errors.New("from must be YYYY-MM-DD")
		}
		q.From = &t
	}
	if s := vals.Get("to"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			return q, errors.New("to must be YYYY-MM-DD")
		}
		q.To = &t
	}
	q.OldestFirst = vals.Get("order") == "oldest"
	return q, nil
}

func (h *Handlers) listReviews(w http.ResponseWriter, r *http.Request) {
	q, err := reviewQuery(r, hotelID(r))
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid query", err.Error())
		return
	}
	out, err := h.Q.ListReviews(r.Context(), q)
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	if out == nil {
		out = []domain.Review{}
	}
	writeCached(w, r, out)
}

func (h *Handlers) getStats(w http.ResponseWriter, r *http.Request) {
	id := hotelID(r)
	if _, err := h.Q.GetHotel(r.Context(), id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeProblem(w, http.StatusNotFound, "Not Found", "hotel not found")
			return
		}
		writeProblem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	st, err := h.Q.GetHotelStats(r.Context(), id)
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	writeCached(w, r, st)
}
