// Package mal reads a user's list progress from the MyAnimeList API v2.
package mal

import "errors"

// ContentType selects which of the user's lists is read.
type ContentType string

// Supported content types.
const (
	ContentTypeAnime ContentType = "anime"
	ContentTypeManga ContentType = "manga"
)

// listPath returns the list segment of the API path for the content type.
func (c ContentType) listPath() string {
	if c == ContentTypeManga {
		return "mangalist"
	}
	return "animelist"
}

// Status filters the list by the user's declared watch/read state.
type Status string

// Supported status filters.
const (
	StatusCurrent   Status = "current"
	StatusCompleted Status = "completed"
	StatusOnHold    Status = "on-hold"
	StatusDropped   Status = "dropped"
)

// apiValue maps a Status to the value the MAL API expects. "current" differs
// per medium: watching for anime, reading for manga.
func (s Status) apiValue(contentType ContentType) string {
	switch s {
	case StatusCurrent:
		if contentType == ContentTypeManga {
			return "reading"
		}
		return "watching"
	case StatusOnHold:
		return "on_hold"
	default:
		return string(s)
	}
}

// Entry is one list item's completion state at fetch time. Total == 0 means
// the service does not know the full length (still airing, open-ended manga).
type Entry struct {
	Title   string
	Current int
	Total   int
}

// Sentinel errors surfaced by Fetch. Callers match them with errors.Is.
var (
	// ErrInvalidUser indicates the service reports the username does not exist.
	ErrInvalidUser = errors.New("mal: user not found")
	// ErrUpstreamUnavailable indicates the service was unreachable or returned
	// a non-success response.
	ErrUpstreamUnavailable = errors.New("mal: upstream unavailable")
)
