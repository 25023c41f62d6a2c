package sanitizer

import (
	"net/url"
	"strings"
)

// NormalizeURL keeps http(s) URLs with a host, lowercasing the scheme and
// host. Paths are case sensitive on most object stores and are left alone.
func NormalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return ""
	}

	u.Scheme = strings.ToLower(u.Scheme)
	if u.Scheme != "http" && u.Scheme != "https" {
		return ""
	}
	u.Host = strings.ToLower(u.Host)

	return u.String()
}
