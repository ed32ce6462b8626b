package shared

import (
	"errors"
	"net/url"
	"os"
	"regexp"
	"strings"
)

// Shareable links are built against an allow-list of origins so a spoofed
// Host header or misconfigured APP_BASE_URL can never produce a link that
// points somewhere we do not control.

const productionOrigin = "https://candid-app.io"

var explicitAllowedOrigins = []string{
	productionOrigin,
	"http://localhost:5173",
	"http://localhost:8080",
	"http://127.0.0.1:8080",
}

var allowedHostSuffixes = []string{
	".candid-app.io",
	".candid-preview.dev",
}

var slugPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

var ErrInvalidSlug = errors.New("slug contains invalid characters")

// ValidSlug reports whether s is safe to embed in a shareable URL. Any
// character outside [a-zA-Z0-9_-] invalidates the whole value; callers
// reject instead of stripping so an identifier is never silently rewritten.
func ValidSlug(s string) bool {
	return slugPattern.MatchString(s)
}

func IsOriginAllowed(origin string) bool {
	parsed, err := url.Parse(origin)
	if err != nil || parsed.Host == "" {
		return false
	}

	for _, allowed := range explicitAllowedOrigins {
		if origin == allowed {
			return true
		}
	}

	for _, suffix := range allowedHostSuffixes {
		if strings.HasSuffix(parsed.Host, suffix) {
			return true
		}
	}

	return false
}

// SafeBaseURL resolves the origin used for shareable links. APP_BASE_URL is
// honored only when it passes the allow-list; otherwise the production
// origin is used.
func SafeBaseURL() string {
	if base := os.Getenv("APP_BASE_URL"); base != "" {
		base = strings.TrimSuffix(base, "/")
		if IsOriginAllowed(base) {
			return base
		}
	}
	return productionOrigin
}

func FeedbackURL(slug string) (string, error) {
	if slug == "" || !ValidSlug(slug) {
		return "", ErrInvalidSlug
	}
	return SafeBaseURL() + "/feedback/" + slug, nil
}
