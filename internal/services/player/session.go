package player

import (
	"math/rand"
	"sync"
	"time"

	"github.com/velrin/cadence/internal/audio"
	"github.com/velrin/cadence/internal/models"
)

// GuildSession is the live playback state for one guild. Exactly one exists
// per guild at any time; the service registry owns the map. Mutations are
// last-write-wins under the session mutex.
type GuildSession struct {
	mu sync.Mutex

	// GuildID never changes after creation
	GuildID string

	voiceChannelID string
	textChannelID  string

	queue    []*models.Track
	current  *models.Track
	previous *models.Track

	state    models.PlayingState
	loop     models.LoopMode
	volume   int
	autoplay bool

	conn audio.Player

	// playStartedAt anchors the playhead estimate: position is the elapsed
	// time since it, rebased on each seek
	playStartedAt time.Time

	// disconnectTimer is the single armed idle-disconnect handle, nil when
	// none is armed
	disconnectTimer *time.Timer
}

func newGuildSession(guildID, voiceChannelID, textChannelID string, conn audio.Player, volume int) *GuildSession {
	if volume <= 0 || volume > 100 {
		volume = 100
	}
	return &GuildSession{
		GuildID:        guildID,
		voiceChannelID: voiceChannelID,
		textChannelID:  textChannelID,
		state:          models.PlayingStateStopped,
		loop:           models.LoopModeOff,
		volume:         volume,
		conn:           conn,
	}
}

// VoiceChannelID returns the voice channel the session is bound to
func (g *GuildSession) VoiceChannelID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.voiceChannelID
}

// TextChannelID returns the text channel commands came from
func (g *GuildSession) TextChannelID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.textChannelID
}

func (g *GuildSession) moveTo(voiceChannelID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.voiceChannelID = voiceChannelID
}

// State returns the current playing state
func (g *GuildSession) State() models.PlayingState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

func (g *GuildSession) setState(state models.PlayingState) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.state = state
}

// Loop returns the loop mode
func (g *GuildSession) Loop() models.LoopMode {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.loop
}

func (g *GuildSession) setLoop(mode models.LoopMode) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.loop = mode
}

// Volume returns the session volume
func (g *GuildSession) Volume() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.volume
}

func (g *GuildSession) setVolume(volume int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.volume = volume
}

// Autoplay reports whether autoplay continuation is enabled
func (g *GuildSession) Autoplay() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.autoplay
}

func (g *GuildSession) setAutoplay(enabled bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.autoplay = enabled
}

// Current returns the playing track, nil when idle
func (g *GuildSession) Current() *models.Track {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.current
}

// Previous returns the immediately-prior track; a single slot, not a stack
func (g *GuildSession) Previous() *models.Track {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.previous
}

// enqueue appends tracks to the queue, dropping nils
func (g *GuildSession) enqueue(tracks ...*models.Track) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, t := range tracks {
		if t != nil {
			g.queue = append(g.queue, t)
		}
	}
}

// pollNext pops the queue head and makes it current, honoring the loop
// mode for the track that just ended: loop track replays it, loop queue
// re-appends it. Returns nil when nothing is left to play.
func (g *GuildSession) pollNext(ended *models.Track) *models.Track {
	g.mu.Lock()
	defer g.mu.Unlock()

	if ended != nil {
		switch g.loop {
		case models.LoopModeTrack:
			g.current = ended
			return ended
		case models.LoopModeQueue:
			g.queue = append(g.queue, ended)
		}
	}

	if len(g.queue) == 0 {
		g.current = nil
		return nil
	}

	next := g.queue[0]
	g.queue = g.queue[1:]
	g.current = next
	return next
}

// markStarted anchors the playhead at zero
func (g *GuildSession) markStarted(now time.Time) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.playStartedAt = now
}

// positionAt estimates the playhead. Zero before playback ever started.
func (g *GuildSession) positionAt(now time.Time) time.Duration {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.playStartedAt.IsZero() {
		return 0
	}
	return now.Sub(g.playStartedAt)
}

// rebase re-anchors the playhead after a seek
func (g *GuildSession) rebase(now time.Time, position time.Duration) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.playStartedAt = now.Add(-position)
}

// setCurrent records the now-playing track directly
func (g *GuildSession) setCurrent(track *models.Track) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.current = track
}

// setPrevious overwrites the single previous-track slot
func (g *GuildSession) setPrevious(track *models.Track) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.previous = track
}

// QueueLen returns the number of queued tracks
func (g *GuildSession) QueueLen() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.queue)
}

// QueueSnapshot copies the queue in order
func (g *GuildSession) QueueSnapshot() []*models.Track {
	g.mu.Lock()
	defer g.mu.Unlock()
	snapshot := make([]*models.Track, len(g.queue))
	copy(snapshot, g.queue)
	return snapshot
}

// removeAt removes the track at a 1-based position
func (g *GuildSession) removeAt(position int) (*models.Track, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if position < 1 || position > len(g.queue) {
		return nil, false
	}
	removed := g.queue[position-1]
	g.queue = append(g.queue[:position-1], g.queue[position:]...)
	return removed, true
}

// clearQueue drops all queued tracks, returning how many were dropped
func (g *GuildSession) clearQueue() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	n := len(g.queue)
	g.queue = nil
	return n
}

// shuffleQueue randomizes queue order
func (g *GuildSession) shuffleQueue() {
	g.mu.Lock()
	defer g.mu.Unlock()
	rand.Shuffle(len(g.queue), func(i, j int) {
		g.queue[i], g.queue[j] = g.queue[j], g.queue[i]
	})
}

// moveTrack relocates a queued track between 1-based positions
func (g *GuildSession) moveTrack(from, to int) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if from < 1 || from > len(g.queue) || to < 1 || to > len(g.queue) {
		return false
	}
	track := g.queue[from-1]
	g.queue = append(g.queue[:from-1], g.queue[from:]...)
	rest := make([]*models.Track, 0, len(g.queue)+1)
	rest = append(rest, g.queue[:to-1]...)
	rest = append(rest, track)
	rest = append(rest, g.queue[to-1:]...)
	g.queue = rest
	return true
}

// jumpTo drops everything before a 1-based position and returns the track
// at that position, removing it from the queue
func (g *GuildSession) jumpTo(position int) (*models.Track, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if position < 1 || position > len(g.queue) {
		return nil, false
	}
	target := g.queue[position-1]
	g.queue = g.queue[position:]
	g.current = target
	return target, true
}

// pushFront puts a track at the queue head
func (g *GuildSession) pushFront(track *models.Track) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.queue = append([]*models.Track{track}, g.queue...)
}

// armDisconnect replaces any armed idle-disconnect timer with a new one.
// Only one timer exists per guild; arming cancels the prior handle first.
func (g *GuildSession) armDisconnect(delay time.Duration, fire func()) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.disconnectTimer != nil {
		g.disconnectTimer.Stop()
	}
	g.disconnectTimer = time.AfterFunc(delay, fire)
}

// cancelDisconnect stops the armed timer, if any. Cancellation is advisory:
// the fire handler re-validates state, so a lost race is harmless.
func (g *GuildSession) cancelDisconnect() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.disconnectTimer != nil {
		g.disconnectTimer.Stop()
		g.disconnectTimer = nil
	}
}

// hasDisconnectArmed reports whether an idle-disconnect timer is armed
func (g *GuildSession) hasDisconnectArmed() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.disconnectTimer != nil
}
