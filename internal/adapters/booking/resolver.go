package booking

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"booking_reviews/internal/domain"
)

// Canonical hotel identifiers look like "eg/golden-scarab-pyramids": the
// two-letter country segment plus the property slug from the browsing URL.
var idPattern = regexp.MustCompile(`^[a-z]{2}/[a-z0-9][a-z0-9._-]*$`)

// Resolve turns a user-supplied reference (full browsing URL or short-form
// identifier) into a canonical hotel identifier. Pure function, no I/O.
// Query-string noise and trailing path segments are tolerated.
func Resolve(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", fmt.Errorf("%w: empty reference", domain.ErrInvalidReference)
	}

	// Short form first: "cc/slug".
	if id := strings.ToLower(ref); idPattern.MatchString(id) {
		return id, nil
	}

	raw := ref
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %q", domain.ErrInvalidReference, ref)
	}
	host := strings.ToLower(u.Hostname())
	if host != "booking.com" && !strings.HasSuffix(host, ".booking.com") {
		return "", fmt.Errorf("%w: host %q is not a booking.com domain", domain.ErrInvalidReference, host)
	}

	// Path shape: /hotel/<cc>/<slug>[.<lang>].html[/anything...]
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) < 3 || parts[0] != "hotel" {
		return "", fmt.Errorf("%w: %q is not a hotel URL", domain.ErrInvalidReference, ref)
	}
	cc := strings.ToLower(parts[1])
	slug := strings.ToLower(parts[2])
	slug = strings.TrimSuffix(slug, ".html")
	// strip a language suffix like "grand-hotel.en-gb"
	if i := strings.LastIndex(slug, "."); i > 0 {
		slug = slug[:i]
	}

	id := cc + "/" + slug
	if !idPattern.MatchString(id) {
		return "", fmt.Errorf("%w: %q", domain.ErrInvalidReference, ref)
	}
	return id, nil
}
