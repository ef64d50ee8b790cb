package stats

import (
	"time"

	"github.com/velrin/cadence/internal/models"
)

// Window selects the aggregation time range
type Window string

const (
	// WindowDay covers the last 24 hours
	WindowDay Window = "24h"

	// WindowWeek covers the last 7 days
	WindowWeek Window = "7d"

	// WindowMonth covers the last 30 days
	WindowMonth Window = "30d"

	// WindowAll covers all recorded history
	WindowAll Window = "all"
)

// ParseWindow maps user input to a Window, defaulting to a week
func ParseWindow(s string) Window {
	switch Window(s) {
	case WindowDay, WindowMonth, WindowAll:
		return Window(s)
	default:
		return WindowWeek
	}
}

// start returns the window's lower bound relative to now; the zero time
// means unbounded
func (w Window) start(now time.Time) time.Time {
	switch w {
	case WindowDay:
		return now.Add(-24 * time.Hour)
	case WindowWeek:
		return now.Add(-7 * 24 * time.Hour)
	case WindowMonth:
		return now.Add(-30 * 24 * time.Hour)
	default:
		return time.Time{}
	}
}

type StartSessionInput struct {
	GuildID string
	Track   *models.Track
}

type EndSessionInput struct {
	GuildID string
	Track   *models.Track
}

type GuildSummaryInput struct {
	GuildID string
	Window  Window
}

type GuildSummaryOutput struct {
	Plays     int
	TotalMs   int64
	Listeners int
}

type UserSummaryInput struct {
	GuildID string
	UserID  string
	Window  Window
}

type UserSummaryOutput struct {
	Plays   int
	TotalMs int64
}

type TopTracksInput struct {
	GuildID string
	Window  Window
	Limit   int
}

// TrackCount is one top-tracks row
type TrackCount struct {
	Title   string
	Author  string
	URI     string
	Plays   int
	TotalMs int64
}

type TopTracksOutput struct {
	Tracks []TrackCount
}

type TopListenersInput struct {
	GuildID string
	Window  Window
	Limit   int
}

// ListenerCount is one top-listeners row
type ListenerCount struct {
	UserID  string
	Tag     string
	Plays   int
	TotalMs int64
}

type TopListenersOutput struct {
	Listeners []ListenerCount
}
