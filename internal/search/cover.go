package search

import (
	"net/url"
	"strings"
)

// SecureURL upgrades an image URL to https. Empty input, and URLs that are not
// http(s) or have no host, yield nil: the candidate simply has no cover.
func SecureURL(raw string) *string {
	s := strings.TrimSpace(raw)
	switch {
	case s == "":
		return nil
	case strings.HasPrefix(s, "//"):
		s = "https:" + s
	case strings.HasPrefix(strings.ToLower(s), "http://"):
		s = "https://" + s[len("http://"):]
	}

	u, err := url.Parse(s)
	if err != nil || !strings.EqualFold(u.Scheme, "https") || u.Host == "" {
		return nil
	}
	return &s
}
