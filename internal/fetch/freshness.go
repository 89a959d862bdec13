package fetch

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultMaxAge is the default staleness threshold (7 days).
	DefaultMaxAge = 7 * 24 * time.Hour

	// freshnessFile lives inside .git so it never shows up as an untracked
	// file in the checkout.
	freshnessFile = "kibrarian-fetched"
)

func markerPath(dir string) string {
	return filepath.Join(dir, ".git", freshnessFile)
}

// WriteFreshnessMarker records the current time as the last successful
// fetch of the checkout at dir.
func WriteFreshnessMarker(dir string) {
	ts := strconv.FormatInt(time.Now().Unix(), 10)
	_ = os.WriteFile(markerPath(dir), []byte(ts), 0644)
}

// LastFetched reads the timestamp written by WriteFreshnessMarker.
// Returns zero time if the marker doesn't exist or can't be parsed.
func LastFetched(dir string) time.Time {
	data, err := os.ReadFile(markerPath(dir))
	if err != nil {
		return time.Time{}
	}
	ts, err := strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64)
	if err != nil {
		return time.Time{}
	}
	return time.Unix(ts, 0)
}

// IsStale returns true if the checkout was last fetched more than maxAge ago.
// Returns true if the freshness marker doesn't exist.
func IsStale(dir string, maxAge time.Duration) bool {
	last := LastFetched(dir)
	if last.IsZero() {
		return true
	}
	return time.Since(last) > maxAge
}
