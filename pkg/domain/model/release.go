package model

import "time"

// ReleaseInfo represents the latest published release of a watched repository
type ReleaseInfo struct {
	Tag         string    // Release tag name, compared verbatim against the cache
	Name        string    // Release title
	URL         string    // Canonical HTML URL of the release
	Notes       string    // Release notes body, may be empty
	PublishedAt time.Time // Zero when the source did not provide it
}
