package player

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/velrin/cadence/internal/audio"
	"github.com/velrin/cadence/internal/common/clock"
	"github.com/velrin/cadence/internal/common/ttlstore"
	"github.com/velrin/cadence/internal/models"
	configRepo "github.com/velrin/cadence/internal/repositories/guildconfig"
	"github.com/velrin/cadence/internal/services/stats"
)

// Workflow and timer defaults. Named here rather than per-guild settings;
// tests override them through the Config.
const (
	// DefaultDisconnectDelay is how long an empty-queue session stays
	// connected before the idle disconnect fires
	DefaultDisconnectDelay = 3 * time.Minute

	// DefaultRequestTTL is how long a DJ-gated request waits for a verdict
	DefaultRequestTTL = 2 * time.Minute

	// DefaultChoiceTTL is how long a duplicate prompt waits for its requester
	DefaultChoiceTTL = 30 * time.Second
)

// Config holds configuration for the player service
type Config struct {
	// Backend is the audio streaming client
	Backend audio.Client

	// ConfigRepo persists guild settings
	ConfigRepo configRepo.Repository

	// Stats records listening history
	Stats stats.Service

	// UISync keeps the central display current
	UISync UISync

	// Notifier delivers async user notices
	Notifier Notifier

	// Clock supplies time; defaults to the system clock
	Clock clock.Clock

	// Logger is required
	Logger *logrus.Logger

	// DisconnectDelay overrides DefaultDisconnectDelay when positive
	DisconnectDelay time.Duration

	// RequestTTL overrides DefaultRequestTTL when positive
	RequestTTL time.Duration

	// ChoiceTTL overrides DefaultChoiceTTL when positive
	ChoiceTTL time.Duration
}

// service implements the Service interface
type service struct {
	backend    audio.Client
	configRepo configRepo.Repository
	stats      stats.Service
	uiSync     UISync
	notifier   Notifier
	clock      clock.Clock
	logger     *logrus.Logger

	disconnectDelay time.Duration
	requestTTL      time.Duration
	choiceTTL       time.Duration

	mu       sync.RWMutex
	sessions map[string]*GuildSession

	requests *ttlstore.Store[*models.PendingRequest]
	choices  *ttlstore.Store[*models.DuplicateChoice]
}

// New creates a new player service
func New(cfg *Config) (*service, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}
	if cfg.Backend == nil {
		return nil, ErrNilBackend
	}
	if cfg.ConfigRepo == nil {
		return nil, ErrNilConfigRepo
	}
	if cfg.Stats == nil {
		return nil, ErrNilStats
	}
	if cfg.UISync == nil {
		return nil, ErrNilUISync
	}
	if cfg.Notifier == nil {
		return nil, ErrNilNotifier
	}
	if cfg.Logger == nil {
		return nil, ErrNilLogger
	}

	clk := cfg.Clock
	if clk == nil {
		clk = &clock.DefaultClock{}
	}

	disconnectDelay := cfg.DisconnectDelay
	if disconnectDelay <= 0 {
		disconnectDelay = DefaultDisconnectDelay
	}
	requestTTL := cfg.RequestTTL
	if requestTTL <= 0 {
		requestTTL = DefaultRequestTTL
	}
	choiceTTL := cfg.ChoiceTTL
	if choiceTTL <= 0 {
		choiceTTL = DefaultChoiceTTL
	}

	return &service{
		backend:         cfg.Backend,
		configRepo:      cfg.ConfigRepo,
		stats:           cfg.Stats,
		uiSync:          cfg.UISync,
		notifier:        cfg.Notifier,
		clock:           clk,
		logger:          cfg.Logger,
		disconnectDelay: disconnectDelay,
		requestTTL:      requestTTL,
		choiceTTL:       choiceTTL,
		sessions:        make(map[string]*GuildSession),
		requests:        ttlstore.New[*models.PendingRequest](clk),
		choices:         ttlstore.New[*models.DuplicateChoice](clk),
	}, nil
}

func (s *service) session(guildID string) (*GuildSession, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[guildID]
	return sess, ok
}

// guildConfig reads the guild's settings, falling back to defaults when the
// store has nothing or fails. A store failure is logged and treated as
// "features disabled" so playback keeps working.
func (s *service) guildConfig(ctx context.Context, guildID string) *models.GuildConfig {
	out, err := s.configRepo.Get(ctx, &configRepo.GetInput{GuildID: guildID})
	if err != nil {
		if err != configRepo.ErrNotFound {
			s.logger.WithError(err).WithField("guild_id", guildID).Warn("Guild config read failed, using defaults")
		}
		return models.DefaultGuildConfig(guildID)
	}
	return out.Config
}

// CreateOrJoin returns the guild's session, creating or moving the voice
// connection as needed. Calling it repeatedly for the same guild never
// creates a duplicate session.
func (s *service) CreateOrJoin(ctx context.Context, input *CreateOrJoinInput) (*CreateOrJoinOutput, error) {
	if input == nil || input.GuildID == "" || input.VoiceChannelID == "" {
		return nil, PlayerError("guild ID and voice channel ID are required")
	}

	if existing, ok := s.session(input.GuildID); ok {
		if existing.VoiceChannelID() == input.VoiceChannelID {
			return &CreateOrJoinOutput{Session: existing}, nil
		}
		// move the live session to the requested channel in place
		if _, err := s.backend.Connect(ctx, input.GuildID, input.VoiceChannelID); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrConnectFailed, err)
		}
		existing.moveTo(input.VoiceChannelID)
		return &CreateOrJoinOutput{Session: existing}, nil
	}

	conn, err := s.backend.Connect(ctx, input.GuildID, input.VoiceChannelID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnectFailed, err)
	}

	cfg := s.guildConfig(ctx, input.GuildID)
	sess := newGuildSession(input.GuildID, input.VoiceChannelID, input.TextChannelID, conn, cfg.DefaultVolume)

	s.mu.Lock()
	// a concurrent call may have won the race; keep the registered one and
	// release the connection this call opened
	if registered, ok := s.sessions[input.GuildID]; ok {
		s.mu.Unlock()
		if err := conn.Destroy(ctx); err != nil {
			s.logger.WithError(err).WithField("guild_id", input.GuildID).Warn("Losing connection teardown failed")
		}
		return &CreateOrJoinOutput{Session: registered}, nil
	}
	s.sessions[input.GuildID] = sess
	s.mu.Unlock()

	if err := conn.SetVolume(ctx, sess.Volume()); err != nil {
		s.logger.WithError(err).WithField("guild_id", input.GuildID).Warn("Initial volume set failed")
	}

	s.logger.WithFields(logrus.Fields{
		"guild_id":      input.GuildID,
		"voice_channel": input.VoiceChannelID,
	}).Info("Created playback session")

	return &CreateOrJoinOutput{Session: sess, Created: true}, nil
}

// PlaySong runs the play pipeline: normalize the query, resolve it, branch
// on the normalized outcome, duplicate-check single tracks, enqueue, and
// start playback when the session is idle. Resolution failures come back
// as an error-kind result, not a Go error.
func (s *service) PlaySong(ctx context.Context, input *PlaySongInput) (*PlaySongOutput, error) {
	if input == nil || input.GuildID == "" {
		return nil, PlayerError("guild ID is required")
	}

	query := ResolveQuery(input.Query)
	if query == "" {
		return nil, ErrEmptyQuery
	}

	sess, ok := s.session(input.GuildID)
	if !ok {
		return nil, ErrNoSession
	}

	resolved, err := s.backend.Resolve(ctx, query)
	if err != nil {
		s.logger.WithError(err).WithField("guild_id", input.GuildID).Error("Resolve failed")
		return &PlaySongOutput{Result: &PlayResult{
			Kind:    ResultKindError,
			Message: "failed to load track",
		}}, nil
	}

	switch resolved.Kind {
	case audio.LoadKindPlaylist:
		for _, t := range resolved.Tracks {
			t.Requester = input.Requester
		}
		sess.enqueue(resolved.Tracks...)
		started := s.maybeStart(ctx, sess)
		return &PlaySongOutput{Result: &PlayResult{
			Kind:       ResultKindPlaylist,
			Playlist:   resolved.Playlist,
			TrackCount: len(resolved.Tracks),
			Started:    started,
		}}, nil

	case audio.LoadKindTrack:
		if len(resolved.Tracks) == 0 {
			return &PlaySongOutput{Result: &PlayResult{
				Kind:    ResultKindError,
				Message: "no results found",
			}}, nil
		}
		track := resolved.Tracks[0]
		track.Requester = input.Requester

		if cfg := s.guildConfig(ctx, input.GuildID); !cfg.DuplicateWarning {
			sess.enqueue(track)
			started := s.maybeStart(ctx, sess)
			return &PlaySongOutput{Result: &PlayResult{
				Kind:    ResultKindTrack,
				Track:   track,
				Started: started,
			}}, nil
		}

		if match := CheckDuplicate(sess.Current(), sess.QueueSnapshot(), track); match != nil {
			s.choices.Put(choiceKey(input.GuildID, input.Requester.ID), &models.DuplicateChoice{
				GuildID:     input.GuildID,
				RequesterID: input.Requester.ID,
				Candidate:   track,
				CreatedAt:   s.clock.Now(),
			}, s.choiceTTL)
			return &PlaySongOutput{Result: &PlayResult{
				Kind:      ResultKindDuplicate,
				Track:     track,
				Duplicate: match,
			}}, nil
		}

		sess.enqueue(track)
		started := s.maybeStart(ctx, sess)
		return &PlaySongOutput{Result: &PlayResult{
			Kind:    ResultKindTrack,
			Track:   track,
			Started: started,
		}}, nil

	case audio.LoadKindError:
		message := resolved.ErrorMessage
		if message == "" {
			message = "failed to load track"
		}
		return &PlaySongOutput{Result: &PlayResult{
			Kind:    ResultKindError,
			Message: message,
		}}, nil

	default:
		return &PlaySongOutput{Result: &PlayResult{
			Kind:    ResultKindError,
			Message: "no results found",
		}}, nil
	}
}

// maybeStart begins playback when the session is neither playing nor
// paused. Returns true when a track was started.
func (s *service) maybeStart(ctx context.Context, sess *GuildSession) bool {
	if sess.State().IsActive() {
		return false
	}
	next := sess.pollNext(nil)
	if next == nil {
		return false
	}
	s.play(ctx, sess, next)
	return true
}

// play issues the transport command for a track. The backend confirms via
// the TrackStart event; failures surface through the track error events.
func (s *service) play(ctx context.Context, sess *GuildSession, track *models.Track) {
	sess.cancelDisconnect()
	sess.setState(models.PlayingStatePlaying)
	if err := sess.conn.Play(ctx, track); err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"guild_id": sess.GuildID,
			"track":    track.DisplayTitle(),
		}).Error("Play command failed")
	}
}

// QueueSnapshot reports the session's queue and transport state
func (s *service) QueueSnapshot(ctx context.Context, input *QueueSnapshotInput) (*QueueSnapshotOutput, error) {
	sess, ok := s.session(input.GuildID)
	if !ok {
		return nil, ErrNoSession
	}
	return &QueueSnapshotOutput{
		Current:  sess.Current(),
		Queue:    sess.QueueSnapshot(),
		State:    sess.State(),
		Loop:     sess.Loop(),
		Volume:   sess.Volume(),
		Autoplay: sess.Autoplay(),
	}, nil
}

// RemoveTrack removes a queued track by 1-based position
func (s *service) RemoveTrack(ctx context.Context, input *RemoveTrackInput) (*RemoveTrackOutput, error) {
	sess, ok := s.session(input.GuildID)
	if !ok {
		return nil, ErrNoSession
	}
	removed, ok := sess.removeAt(input.Position)
	if !ok {
		return nil, ErrInvalidPosition
	}
	return &RemoveTrackOutput{Removed: removed}, nil
}

// ClearQueue drops all queued tracks
func (s *service) ClearQueue(ctx context.Context, input *ClearQueueInput) (*ClearQueueOutput, error) {
	sess, ok := s.session(input.GuildID)
	if !ok {
		return nil, ErrNoSession
	}
	return &ClearQueueOutput{Dropped: sess.clearQueue()}, nil
}

// Shuffle randomizes queue order
func (s *service) Shuffle(ctx context.Context, input *ShuffleInput) error {
	sess, ok := s.session(input.GuildID)
	if !ok {
		return ErrNoSession
	}
	sess.shuffleQueue()
	return nil
}

// MoveTrack relocates a queued track
func (s *service) MoveTrack(ctx context.Context, input *MoveTrackInput) error {
	sess, ok := s.session(input.GuildID)
	if !ok {
		return ErrNoSession
	}
	if !sess.moveTrack(input.From, input.To) {
		return ErrInvalidPosition
	}
	return nil
}

// Jump skips ahead to a queued position, dropping what came before it
func (s *service) Jump(ctx context.Context, input *JumpInput) (*JumpOutput, error) {
	sess, ok := s.session(input.GuildID)
	if !ok {
		return nil, ErrNoSession
	}
	target, ok := sess.jumpTo(input.Position)
	if !ok {
		return nil, ErrInvalidPosition
	}
	s.play(ctx, sess, target)
	return &JumpOutput{Track: target, Skipped: input.Position - 1}, nil
}

// Skip advances to the next queued track, or stops when none remain
func (s *service) Skip(ctx context.Context, input *SkipInput) (*SkipOutput, error) {
	sess, ok := s.session(input.GuildID)
	if !ok {
		return nil, ErrNoSession
	}

	next := sess.pollNext(nil)
	if next == nil {
		sess.setState(models.PlayingStateStopped)
		if err := sess.conn.Stop(ctx); err != nil {
			s.logger.WithError(err).WithField("guild_id", input.GuildID).Warn("Stop command failed")
		}
		return &SkipOutput{}, nil
	}

	s.play(ctx, sess, next)
	return &SkipOutput{Next: next}, nil
}

// Previous replays the immediately-prior track. The current track, if any,
// goes back to the queue head.
func (s *service) Previous(ctx context.Context, input *PreviousInput) (*PreviousOutput, error) {
	sess, ok := s.session(input.GuildID)
	if !ok {
		return nil, ErrNoSession
	}

	prior := sess.Previous()
	if prior == nil {
		return nil, ErrNoPrevious
	}

	if current := sess.Current(); current != nil {
		sess.pushFront(current)
	}
	sess.setCurrent(prior)
	s.play(ctx, sess, prior)
	return &PreviousOutput{Track: prior}, nil
}

// Pause suspends or resumes playback
func (s *service) Pause(ctx context.Context, input *PauseInput) error {
	sess, ok := s.session(input.GuildID)
	if !ok {
		return ErrNoSession
	}
	if err := sess.conn.Pause(ctx, input.Paused); err != nil {
		return fmt.Errorf("pause command failed: %w", err)
	}
	if input.Paused {
		sess.setState(models.PlayingStatePaused)
	} else {
		sess.setState(models.PlayingStatePlaying)
	}
	return nil
}

// Seek moves within the current track by a relative offset, clamped to the
// track bounds
func (s *service) Seek(ctx context.Context, input *SeekInput) error {
	sess, ok := s.session(input.GuildID)
	if !ok {
		return ErrNoSession
	}
	current := sess.Current()
	if current == nil {
		return ErrQueueEmpty
	}

	now := s.clock.Now()
	position := sess.positionAt(now) + input.Offset
	if position < 0 {
		position = 0
	}
	if max := time.Duration(current.DurationMs) * time.Millisecond; position > max {
		position = max
	}

	if err := sess.conn.Seek(ctx, position.Milliseconds()); err != nil {
		return fmt.Errorf("seek command failed: %w", err)
	}
	sess.rebase(now, position)
	return nil
}

// SetLoop changes the loop mode
func (s *service) SetLoop(ctx context.Context, input *SetLoopInput) error {
	sess, ok := s.session(input.GuildID)
	if !ok {
		return ErrNoSession
	}
	sess.setLoop(input.Mode)
	return nil
}

// SetVolume changes the session volume
func (s *service) SetVolume(ctx context.Context, input *SetVolumeInput) error {
	sess, ok := s.session(input.GuildID)
	if !ok {
		return ErrNoSession
	}
	if input.Volume < 1 || input.Volume > 100 {
		return ErrInvalidVolume
	}
	if err := sess.conn.SetVolume(ctx, input.Volume); err != nil {
		return fmt.Errorf("volume command failed: %w", err)
	}
	sess.setVolume(input.Volume)
	return nil
}

// SetAlwaysOn persists the 24/7 override for a guild
func (s *service) SetAlwaysOn(ctx context.Context, input *SetAlwaysOnInput) error {
	return s.configRepo.SetAlwaysOn(ctx, &configRepo.SetAlwaysOnInput{
		GuildID:  input.GuildID,
		AlwaysOn: input.AlwaysOn,
	})
}

// SetAutoplay toggles autoplay continuation for the session
func (s *service) SetAutoplay(ctx context.Context, input *SetAutoplayInput) error {
	sess, ok := s.session(input.GuildID)
	if !ok {
		return ErrNoSession
	}
	sess.setAutoplay(input.Enabled)
	return nil
}

// Stop destroys the guild's session and leaves the voice channel
func (s *service) Stop(ctx context.Context, input *StopInput) error {
	if _, ok := s.session(input.GuildID); !ok {
		return ErrNoSession
	}
	s.destroySession(ctx, input.GuildID, true)
	return nil
}

// NowPlaying reports the current track's display data, nil when idle
func (s *service) NowPlaying(ctx context.Context, input *NowPlayingInput) (*NowPlayingOutput, error) {
	sess, ok := s.session(input.GuildID)
	if !ok {
		return nil, ErrNoSession
	}
	current := sess.Current()
	if current == nil {
		return &NowPlayingOutput{}, nil
	}
	return &NowPlayingOutput{Display: s.displayInfo(sess, current)}, nil
}

// destroySession removes the session, clears its timer, resets the display
// and optionally tears down the backend connection
func (s *service) destroySession(ctx context.Context, guildID string, destroyConn bool) {
	s.mu.Lock()
	sess, ok := s.sessions[guildID]
	if ok {
		delete(s.sessions, guildID)
	}
	s.mu.Unlock()
	if !ok {
		return
	}

	sess.cancelDisconnect()
	s.uiSync.Refresh(ctx, guildID, nil)

	if destroyConn && sess.conn != nil {
		if err := sess.conn.Destroy(ctx); err != nil {
			s.logger.WithError(err).WithField("guild_id", guildID).Warn("Connection teardown failed")
		}
	}

	s.logger.WithField("guild_id", guildID).Info("Destroyed playback session")
}

// displayInfo builds the UI payload for a track, deriving artwork from the
// source when the backend gave none
func (s *service) displayInfo(sess *GuildSession, track *models.Track) *DisplayInfo {
	return &DisplayInfo{
		Track:       track,
		ArtworkURL:  artworkFor(track),
		Paused:      sess.State() == models.PlayingStatePaused,
		Volume:      sess.Volume(),
		Loop:        sess.Loop(),
		QueueLength: sess.QueueLen(),
	}
}

// artworkFor falls back to the platform thumbnail when the track carries
// no artwork of its own
func artworkFor(track *models.Track) string {
	if track.ArtworkURL != "" {
		return track.ArtworkURL
	}
	if track.SourceName == "youtube" && track.Identifier != "" {
		return fmt.Sprintf("https://img.youtube.com/vi/%s/maxresdefault.jpg", track.Identifier)
	}
	return ""
}
