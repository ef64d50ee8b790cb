package models

// PlayingState represents what the session is currently doing
type PlayingState string

const (
	// PlayingStateStopped indicates nothing is playing and nothing is paused
	PlayingStateStopped PlayingState = "stopped"

	// PlayingStatePlaying indicates a track is actively playing
	PlayingStatePlaying PlayingState = "playing"

	// PlayingStatePaused indicates playback is suspended mid-track
	PlayingStatePaused PlayingState = "paused"
)

// IsActive returns true when the session is playing or paused
func (s PlayingState) IsActive() bool {
	return s == PlayingStatePlaying || s == PlayingStatePaused
}

// LoopMode represents the repeat behavior of a session
type LoopMode string

const (
	// LoopModeOff disables repeating
	LoopModeOff LoopMode = "off"

	// LoopModeTrack repeats the current track
	LoopModeTrack LoopMode = "track"

	// LoopModeQueue re-appends finished tracks to the end of the queue
	LoopModeQueue LoopMode = "queue"
)

// ParseLoopMode maps user input to a LoopMode, defaulting to off
func ParseLoopMode(s string) LoopMode {
	switch LoopMode(s) {
	case LoopModeTrack, LoopModeQueue:
		return LoopMode(s)
	default:
		return LoopModeOff
	}
}
