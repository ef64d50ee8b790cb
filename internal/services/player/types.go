package player

import (
	"context"
	"time"

	"github.com/velrin/cadence/internal/audio"
	"github.com/velrin/cadence/internal/models"
)

// DisplayInfo is the payload handed to the UI sync on every visible state
// transition
type DisplayInfo struct {
	// Track is the playing track
	Track *models.Track

	// ArtworkURL is the resolved thumbnail, possibly derived from the source
	ArtworkURL string

	// Paused reflects the transport state
	Paused bool

	// Volume is the session volume
	Volume int

	// Loop is the session loop mode
	Loop models.LoopMode

	// QueueLength is the number of queued tracks
	QueueLength int
}

// UISync keeps the guild's central display in step with playback. A nil
// display means the idle state.
type UISync interface {
	Refresh(ctx context.Context, guildID string, display *DisplayInfo)
}

// Notifier delivers user-facing notices that originate from asynchronous
// flows rather than direct command replies
type Notifier interface {
	// AnnounceNowPlaying posts the now-playing announcement, replacing the
	// guild's prior one
	AnnounceNowPlaying(guildID, textChannelID string, display *DisplayInfo)

	// NotifyRequestResolved tells the requester their request was approved
	// or rejected
	NotifyRequestResolved(request *models.PendingRequest, approved bool, actorID string)

	// NotifyTrackFailed reports a track that could not be played and how
	// many tracks remain queued
	NotifyTrackFailed(guildID, textChannelID string, track *models.Track, remaining int)
}

// ResultKind classifies the outcome of a play request
type ResultKind string

const (
	// ResultKindTrack means one track was enqueued
	ResultKindTrack ResultKind = "track"

	// ResultKindPlaylist means a whole playlist was enqueued
	ResultKindPlaylist ResultKind = "playlist"

	// ResultKindDuplicate means the track matched an existing entry and was
	// not enqueued; a duplicate choice is pending
	ResultKindDuplicate ResultKind = "duplicate"

	// ResultKindError means the query produced nothing playable
	ResultKindError ResultKind = "error"
)

// PlayResult is the normalized outcome of the play pipeline
type PlayResult struct {
	// Kind selects which of the remaining fields are meaningful
	Kind ResultKind

	// Track is set for track and duplicate results
	Track *models.Track

	// Playlist is set for playlist results
	Playlist *audio.PlaylistInfo

	// TrackCount is the number of tracks enqueued for playlist results
	TrackCount int

	// Duplicate describes the existing match for duplicate results
	Duplicate *DuplicateMatch

	// Message carries the failure reason for error results
	Message string

	// Started is true when this request kicked off playback
	Started bool
}

type CreateOrJoinInput struct {
	GuildID        string
	VoiceChannelID string
	TextChannelID  string
}

type CreateOrJoinOutput struct {
	Session *GuildSession

	// Created is false when an existing session was reused or moved
	Created bool
}

type PlaySongInput struct {
	GuildID   string
	Query     string
	Requester models.Requester
}

type PlaySongOutput struct {
	Result *PlayResult
}

type SubmitRequestInput struct {
	GuildID             string
	Track               *models.Track
	RequesterID         string
	EligibleApproverIDs []string
}

type SubmitRequestOutput struct {
	RequestID string
	ExpiresIn time.Duration
}

// RequestDecision is a DJ's verdict on a pending request
type RequestDecision string

const (
	// RequestDecisionApprove enqueues the requested track
	RequestDecisionApprove RequestDecision = "approve"

	// RequestDecisionReject discards the request
	RequestDecisionReject RequestDecision = "reject"
)

type ResolveRequestInput struct {
	RequestID string
	ActorID   string
	Decision  RequestDecision
}

type ResolveRequestOutput struct {
	Request  *models.PendingRequest
	Approved bool
}

// DuplicateResolution is the requester's answer to a duplicate prompt
type DuplicateResolution string

const (
	// DuplicateResolutionAdd enqueues the candidate anyway
	DuplicateResolutionAdd DuplicateResolution = "add"

	// DuplicateResolutionLoop loops the existing match instead
	DuplicateResolutionLoop DuplicateResolution = "loop"

	// DuplicateResolutionCancel discards the candidate
	DuplicateResolutionCancel DuplicateResolution = "cancel"
)

type ResolveDuplicateInput struct {
	GuildID     string
	RequesterID string
	ActorID     string
	Resolution  DuplicateResolution
}

type ResolveDuplicateOutput struct {
	Track      *models.Track
	Resolution DuplicateResolution
}

type QueueSnapshotInput struct {
	GuildID string
}

type QueueSnapshotOutput struct {
	Current  *models.Track
	Queue    []*models.Track
	State    models.PlayingState
	Loop     models.LoopMode
	Volume   int
	Autoplay bool
}

type RemoveTrackInput struct {
	GuildID  string
	Position int
}

type RemoveTrackOutput struct {
	Removed *models.Track
}

type ClearQueueInput struct {
	GuildID string
}

type ClearQueueOutput struct {
	Dropped int
}

type ShuffleInput struct {
	GuildID string
}

type MoveTrackInput struct {
	GuildID string
	From    int
	To      int
}

type JumpInput struct {
	GuildID  string
	Position int
}

type JumpOutput struct {
	Track *models.Track

	// Skipped counts the queue entries dropped to reach the target
	Skipped int
}

type SkipInput struct {
	GuildID string
}

type SkipOutput struct {
	Next *models.Track
}

type PreviousInput struct {
	GuildID string
}

type PreviousOutput struct {
	Track *models.Track
}

type PauseInput struct {
	GuildID string
	Paused  bool
}

type SeekInput struct {
	GuildID string

	// Offset is relative: positive seeks forward, negative rewinds
	Offset time.Duration
}

type SetLoopInput struct {
	GuildID string
	Mode    models.LoopMode
}

type SetVolumeInput struct {
	GuildID string
	Volume  int
}

type SetAlwaysOnInput struct {
	GuildID  string
	AlwaysOn bool
}

type SetAutoplayInput struct {
	GuildID string
	Enabled bool
}

type StopInput struct {
	GuildID string
}

type NowPlayingInput struct {
	GuildID string
}

type NowPlayingOutput struct {
	Display *DisplayInfo
}
