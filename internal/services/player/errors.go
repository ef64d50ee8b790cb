package player

// PlayerError is a custom error type for playback-related errors
type PlayerError string

// Error implements the error interface
func (e PlayerError) Error() string {
	return string(e)
}

// Define errors
const (
	ErrNoSession       PlayerError = "no active session for this guild"
	ErrEmptyQuery      PlayerError = "query cannot be empty"
	ErrConnectFailed   PlayerError = "failed to create voice connection"
	ErrNotEligible     PlayerError = "actor is not eligible to resolve this request"
	ErrRequestExpired  PlayerError = "request expired or was already resolved"
	ErrNotYourChoice   PlayerError = "only the original requester can resolve this prompt"
	ErrChoiceExpired   PlayerError = "duplicate prompt expired"
	ErrNoPrevious      PlayerError = "no previous track to replay"
	ErrQueueEmpty      PlayerError = "queue is empty"
	ErrInvalidPosition PlayerError = "invalid queue position"
	ErrInvalidVolume   PlayerError = "volume must be between 1 and 100"
	ErrNilConfig       PlayerError = "config cannot be nil"
	ErrNilBackend      PlayerError = "audio backend cannot be nil"
	ErrNilConfigRepo   PlayerError = "guild config repository cannot be nil"
	ErrNilStats        PlayerError = "stats service cannot be nil"
	ErrNilUISync       PlayerError = "ui sync cannot be nil"
	ErrNilNotifier     PlayerError = "notifier cannot be nil"
	ErrNilLogger       PlayerError = "logger cannot be nil"
)
