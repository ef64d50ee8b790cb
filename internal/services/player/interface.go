package player

import "context"

// Service defines the interface the command layer talks to. It owns one
// playback session per guild and everything that mutates it.
type Service interface {
	// CreateOrJoin returns the guild's session, creating or moving the
	// voice connection as needed; safe to call repeatedly
	CreateOrJoin(ctx context.Context, input *CreateOrJoinInput) (*CreateOrJoinOutput, error)

	// PlaySong runs the full play pipeline for a raw user query
	PlaySong(ctx context.Context, input *PlaySongInput) (*PlaySongOutput, error)

	// SubmitRequest stores a DJ-gated song request awaiting approval
	SubmitRequest(ctx context.Context, input *SubmitRequestInput) (*SubmitRequestOutput, error)

	// ResolveRequest applies a DJ's verdict to a pending request
	ResolveRequest(ctx context.Context, input *ResolveRequestInput) (*ResolveRequestOutput, error)

	// ResolveDuplicate applies the requester's answer to a duplicate prompt
	ResolveDuplicate(ctx context.Context, input *ResolveDuplicateInput) (*ResolveDuplicateOutput, error)

	// QueueSnapshot reports the session's queue and transport state
	QueueSnapshot(ctx context.Context, input *QueueSnapshotInput) (*QueueSnapshotOutput, error)

	// RemoveTrack removes a queued track by 1-based position
	RemoveTrack(ctx context.Context, input *RemoveTrackInput) (*RemoveTrackOutput, error)

	// ClearQueue drops all queued tracks
	ClearQueue(ctx context.Context, input *ClearQueueInput) (*ClearQueueOutput, error)

	// Shuffle randomizes queue order
	Shuffle(ctx context.Context, input *ShuffleInput) error

	// MoveTrack relocates a queued track
	MoveTrack(ctx context.Context, input *MoveTrackInput) error

	// Jump skips ahead to a queued position, dropping what came before it
	Jump(ctx context.Context, input *JumpInput) (*JumpOutput, error)

	// Skip advances to the next queued track
	Skip(ctx context.Context, input *SkipInput) (*SkipOutput, error)

	// Previous replays the immediately-prior track
	Previous(ctx context.Context, input *PreviousInput) (*PreviousOutput, error)

	// Pause suspends or resumes playback
	Pause(ctx context.Context, input *PauseInput) error

	// Seek moves within the current track by a relative offset
	Seek(ctx context.Context, input *SeekInput) error

	// SetLoop changes the loop mode
	SetLoop(ctx context.Context, input *SetLoopInput) error

	// SetVolume changes the session volume
	SetVolume(ctx context.Context, input *SetVolumeInput) error

	// SetAlwaysOn persists the 24/7 override for a guild
	SetAlwaysOn(ctx context.Context, input *SetAlwaysOnInput) error

	// SetAutoplay toggles autoplay continuation for the session
	SetAutoplay(ctx context.Context, input *SetAutoplayInput) error

	// Stop destroys the guild's session and leaves the voice channel
	Stop(ctx context.Context, input *StopInput) error

	// NowPlaying reports the current track's display data, nil when idle
	NowPlaying(ctx context.Context, input *NowPlayingInput) (*NowPlayingOutput, error)

	// VoiceChannelEmptied handles the external zero-human-members signal
	VoiceChannelEmptied(ctx context.Context, guildID string)
}
