// Package audio defines the port to the external streaming backend. The
// orchestrator consumes it as an opaque client: resolution, transport
// control, and lifecycle events. Queue state lives with the orchestrator,
// not here.
package audio

import (
	"context"

	"github.com/velrin/cadence/internal/models"
)

// Client resolves queries and opens per-guild connections
type Client interface {
	// Resolve turns a resolver-ready query into a normalized LoadResult.
	// Transport failures are returned as errors; backend-reported load
	// failures come back as a LoadResult with Kind LoadKindError.
	Resolve(ctx context.Context, query string) (*LoadResult, error)

	// Connect opens (or reuses) the voice connection for a guild and
	// returns its transport handle
	Connect(ctx context.Context, guildID, voiceChannelID string) (Player, error)

	// Close tears down the backend connection
	Close() error
}

// Player is the transport handle for one guild's connection
type Player interface {
	// Play starts playback of the given track
	Play(ctx context.Context, track *models.Track) error

	// Pause suspends or resumes playback
	Pause(ctx context.Context, paused bool) error

	// Seek jumps to a position within the current track
	Seek(ctx context.Context, positionMs int64) error

	// Stop halts playback without disconnecting
	Stop(ctx context.Context) error

	// SetVolume sets playback volume, 1-100
	SetVolume(ctx context.Context, volume int) error

	// Destroy stops playback and releases the connection
	Destroy(ctx context.Context) error
}

// EventHandler receives backend lifecycle events. The orchestrator
// registers one handler at construction; the backend invokes it from its
// event loop.
type EventHandler interface {
	// TrackStart fires when a track begins playing
	TrackStart(guildID string, track *models.Track)

	// TrackEnd fires when a track stops, with the backend's end reason
	TrackEnd(guildID string, track *models.Track, reason string)

	// TrackError fires when the backend could not play a track
	TrackError(guildID string, track *models.Track, message string)

	// TrackStuck fires when playback stalled past the backend threshold
	TrackStuck(guildID string, track *models.Track, thresholdMs int64)

	// PlayerException fires on a backend-side playback exception
	PlayerException(guildID string, track *models.Track, message string)

	// PlayerDisconnect fires when the voice connection drops
	PlayerDisconnect(guildID string)

	// NodeError fires on backend node failures unrelated to one guild
	NodeError(err error)
}
