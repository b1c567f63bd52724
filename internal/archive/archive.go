// Package archive persists raw review-page payloads for audit and replay,
// one file per (hotel, page) pair.
package archive

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

type Archive struct {
	root string
}

func New(root string) (*Archive, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("archive root: %w", err)
	}
	return &Archive{root: root}, nil
}

// SavePage writes the payload to <root>/hotel_<id>/page_<n>.json,
// overwriting any previous capture of the same page.
func (a *Archive) SavePage(hotelID string, page int, raw []byte) error {
	dir := filepath.Join(a.root, "hotel_"+Sanitize(hotelID))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("archive dir: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("page_%d.json", page))
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("archive page %d for %s: %w", page, hotelID, err)
	}
	return nil
}

var unsafeChars = regexp.MustCompile(`[^\w.-]+`)

// Sanitize maps an arbitrary identifier to a filesystem-safe name.
func Sanitize(s string) string {
	s = unsafeChars.ReplaceAllString(s, "_")
	s = strings.Trim(s, "._")
	if s == "" {
		return "unknown"
	}
	return s
}
