// Package identity turns a code-hosting profile URL into the account username.
package identity

import (
	"net/url"
	"strings"

	"github.com/naka-gawa/candidate-stats/internal/domain"
)

// ExtractUsername returns the first non-empty path segment of profileURL.
// Query strings, fragments, trailing slashes and further segments are ignored.
// URLs that net/url refuses are split by hand, so a malformed tail does not hide the username.
func ExtractUsername(profileURL string) (string, error) {
	raw := strings.TrimSpace(profileURL)
	path := rawPath(raw)
	if u, err := url.Parse(raw); err == nil {
		path = u.Path
	}
	if segment := firstSegment(path); segment != "" {
		return segment, nil
	}
	return "", &domain.InvalidURLError{URL: profileURL}
}

// rawPath strips scheme://host and everything from the first '?' or '#'.
func rawPath(raw string) string {
	if i := strings.IndexAny(raw, "?#"); i >= 0 {
		raw = raw[:i]
	}
	if _, rest, ok := strings.Cut(raw, "://"); ok {
		_, path, found := strings.Cut(rest, "/")
		if !found {
			return ""
		}
		return path
	}
	return raw
}

func firstSegment(path string) string {
	for _, segment := range strings.Split(path, "/") {
		if segment != "" {
			return segment
		}
	}
	return ""
}
