package audio

import (
	"sync"

	"github.com/velrin/cadence/internal/models"
)

// HandlerRelay is an EventHandler that forwards to a late-bound target.
// The backend client wants its handler at construction time while the
// orchestrator wants the backend at construction time; the relay lets the
// two be wired in either order. Events arriving before Bind are dropped.
type HandlerRelay struct {
	mu     sync.RWMutex
	target EventHandler
}

// Bind sets the forwarding target
func (r *HandlerRelay) Bind(target EventHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.target = target
}

func (r *HandlerRelay) handler() EventHandler {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.target
}

func (r *HandlerRelay) TrackStart(guildID string, track *models.Track) {
	if h := r.handler(); h != nil {
		h.TrackStart(guildID, track)
	}
}

func (r *HandlerRelay) TrackEnd(guildID string, track *models.Track, reason string) {
	if h := r.handler(); h != nil {
		h.TrackEnd(guildID, track, reason)
	}
}

func (r *HandlerRelay) TrackError(guildID string, track *models.Track, message string) {
	if h := r.handler(); h != nil {
		h.TrackError(guildID, track, message)
	}
}

func (r *HandlerRelay) TrackStuck(guildID string, track *models.Track, thresholdMs int64) {
	if h := r.handler(); h != nil {
		h.TrackStuck(guildID, track, thresholdMs)
	}
}

func (r *HandlerRelay) PlayerException(guildID string, track *models.Track, message string) {
	if h := r.handler(); h != nil {
		h.PlayerException(guildID, track, message)
	}
}

func (r *HandlerRelay) PlayerDisconnect(guildID string) {
	if h := r.handler(); h != nil {
		h.PlayerDisconnect(guildID)
	}
}

func (r *HandlerRelay) NodeError(err error) {
	if h := r.handler(); h != nil {
		h.NodeError(err)
	}
}
