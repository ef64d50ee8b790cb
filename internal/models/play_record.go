package models

import (
	"time"
)

// PlayStatus represents the lifecycle state of a play record
type PlayStatus string

const (
	// PlayStatusStarted indicates the track began playing and has not ended
	PlayStatusStarted PlayStatus = "started"

	// PlayStatusEnded indicates the track finished or was skipped
	PlayStatusEnded PlayStatus = "ended"
)

// PlayRecord is one listening-history entry
type PlayRecord struct {
	// ID is the unique identifier for this record
	ID string

	// GuildID is the guild the track was played in
	GuildID string

	// UserID is the requester of the track
	UserID string

	// TrackID is the backend identifier of the track
	TrackID string

	// Title is the track title at play time
	Title string

	// Author is the track artist at play time
	Author string

	// URI is the source URL of the track
	URI string

	// Source names the platform the track came from
	Source string

	// DurationMs is the full track length in milliseconds
	DurationMs int64

	// StartedAt is when playback began
	StartedAt time.Time

	// EndedAt is when playback stopped, zero while still playing
	EndedAt time.Time

	// PlayedMs is how long the track actually played, bounded by DurationMs
	PlayedMs int64

	// RequesterTag is the display name of the requester at play time
	RequesterTag string

	// Status is started until the session closes the record
	Status PlayStatus
}

// ContributedMs is the duration this record adds to aggregates: the
// measured played time once the record has ended, the full track length
// while it is still open. A record is never counted both ways.
func (r *PlayRecord) ContributedMs() int64 {
	if r.Status == PlayStatusEnded {
		return r.PlayedMs
	}
	return r.DurationMs
}
