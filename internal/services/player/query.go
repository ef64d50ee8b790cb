package player

import (
	"strings"
)

// DefaultSearchPrefix is prepended to plain-text queries so the backend
// searches instead of trying to fetch a URL
const DefaultSearchPrefix = "ytmsearch:"

// searchPrefixes are the backend search engines a user may name explicitly
var searchPrefixes = []string{
	"ytsearch:",
	"ytmsearch:",
	"scsearch:",
	"spsearch:",
	"amsearch:",
	"dzsearch:",
}

// urlMarkers identify queries the backend should resolve directly as links
var urlMarkers = []string{
	"youtube.com",
	"youtu.be",
	"spotify.com",
	"soundcloud.com",
	"music.apple.com",
	"deezer.com",
}

// ResolveQuery normalizes a raw user query into a resolver-ready form:
// recognized search prefixes and URL shapes pass through unchanged,
// anything else gets the default search prefix. Pure function; empty or
// whitespace-only input returns the empty string for the caller to treat
// as "no query".
func ResolveQuery(raw string) string {
	query := strings.TrimSpace(raw)
	if query == "" {
		return ""
	}

	lower := strings.ToLower(query)
	for _, prefix := range searchPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return query
		}
	}

	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") || strings.HasPrefix(lower, "www.") {
		return query
	}
	for _, marker := range urlMarkers {
		if strings.Contains(lower, marker) {
			return query
		}
	}

	return DefaultSearchPrefix + query
}
