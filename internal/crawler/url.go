package crawler

import (
	"net/url"
	"strings"
)

// NormalizeURL trims raw and prefixes https:// when no http(s) scheme is present.
// Empty input stays empty; callers filter it out before dispatch.
func NormalizeURL(raw string) string {
	u := strings.TrimSpace(raw)
	if u == "" {
		return u
	}
	if strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://") {
		return u
	}
	return "https://" + u
}

// NormalizeAll normalizes every entry, dropping the ones that end up empty.
func NormalizeAll(raw []string) []string {
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		if u := NormalizeURL(r); u != "" {
			out = append(out, u)
		}
	}
	return out
}

// Domain returns the host[:port] of rawURL for user-facing messages.
func Domain(rawURL string) string {
	if u, err := url.Parse(rawURL); err == nil && u.Host != "" {
		return u.Host
	}
	rest := rawURL
	if i := strings.Index(rest, "://"); i >= 0 {
		rest = rest[i+3:]
	}
	if i := strings.IndexAny(rest, "/?#"); i >= 0 {
		rest = rest[:i]
	}
	return rest
}
