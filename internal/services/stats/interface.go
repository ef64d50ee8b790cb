package stats

import (
	"context"
)

// Service defines the interface for listening-history tracking
type Service interface {
	// StartSession records that a track began playing in a guild
	StartSession(ctx context.Context, input *StartSessionInput) error

	// EndSession closes the guild's open play record, bounding the
	// measured play time to the track length
	EndSession(ctx context.Context, input *EndSessionInput) error

	// GuildSummary aggregates plays, listeners and total listening time
	GuildSummary(ctx context.Context, input *GuildSummaryInput) (*GuildSummaryOutput, error)

	// UserSummary aggregates one listener's plays and listening time
	UserSummary(ctx context.Context, input *UserSummaryInput) (*UserSummaryOutput, error)

	// TopTracks returns the most played tracks in a window
	TopTracks(ctx context.Context, input *TopTracksInput) (*TopTracksOutput, error)

	// TopListeners returns the most active requesters in a window
	TopListeners(ctx context.Context, input *TopListenersInput) (*TopListenersOutput, error)
}
