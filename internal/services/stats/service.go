package stats

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/velrin/cadence/internal/common/clock"
	"github.com/velrin/cadence/internal/models"
	playsRepo "github.com/velrin/cadence/internal/repositories/plays"
)

const defaultTopLimit = 5

// Config holds configuration for the stats service
type Config struct {
	// PlaysRepo persists the listening history
	PlaysRepo playsRepo.Repository

	// Clock supplies time; defaults to the system clock
	Clock clock.Clock

	// Logger is required
	Logger *logrus.Logger
}

// activeSession tracks the open play record for a guild
type activeSession struct {
	recordID   string
	record     *models.PlayRecord
	startedAt  time.Time
	durationMs int64
}

// service implements the Service interface
type service struct {
	playsRepo playsRepo.Repository
	clock     clock.Clock
	logger    *logrus.Logger

	mu       sync.Mutex
	sessions map[string]*activeSession
}

// New creates a new stats service
func New(cfg *Config) (*service, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}
	if cfg.PlaysRepo == nil {
		return nil, errors.New("plays repository cannot be nil")
	}
	if cfg.Logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	clk := cfg.Clock
	if clk == nil {
		clk = &clock.DefaultClock{}
	}

	return &service{
		playsRepo: cfg.PlaysRepo,
		clock:     clk,
		logger:    cfg.Logger,
		sessions:  make(map[string]*activeSession),
	}, nil
}

// StartSession records that a track began playing in a guild
func (s *service) StartSession(ctx context.Context, input *StartSessionInput) error {
	if input == nil || input.Track == nil {
		return errors.New("input and track cannot be nil")
	}

	now := s.clock.Now()
	record := &models.PlayRecord{
		ID:           uuid.New().String(),
		GuildID:      input.GuildID,
		UserID:       input.Track.Requester.ID,
		TrackID:      input.Track.Identifier,
		Title:        input.Track.Title,
		Author:       input.Track.Author,
		URI:          input.Track.URI,
		Source:       input.Track.SourceName,
		DurationMs:   input.Track.DurationMs,
		StartedAt:    now,
		RequesterTag: input.Track.Requester.DisplayName,
		Status:       models.PlayStatusStarted,
	}

	if err := s.playsRepo.AppendRecord(ctx, &playsRepo.AppendRecordInput{Record: record}); err != nil {
		return err
	}

	s.mu.Lock()
	s.sessions[input.GuildID] = &activeSession{
		recordID:   record.ID,
		record:     record,
		startedAt:  now,
		durationMs: record.DurationMs,
	}
	s.mu.Unlock()

	return nil
}

// EndSession closes the guild's open play record. When no open session is
// known (the process restarted mid-track) a complete ended record is
// written instead so the play still counts.
func (s *service) EndSession(ctx context.Context, input *EndSessionInput) error {
	if input == nil {
		return errors.New("input cannot be nil")
	}

	s.mu.Lock()
	session := s.sessions[input.GuildID]
	delete(s.sessions, input.GuildID)
	s.mu.Unlock()

	now := s.clock.Now()

	trackLength := int64(0)
	if input.Track != nil {
		trackLength = input.Track.DurationMs
	}
	if trackLength == 0 && session != nil {
		trackLength = session.durationMs
	}

	startedAt := now.Add(-time.Duration(trackLength) * time.Millisecond)
	if session != nil {
		startedAt = session.startedAt
	}

	playedMs := now.Sub(startedAt).Milliseconds()
	if playedMs < 0 {
		playedMs = 0
	}
	if trackLength > 0 && playedMs > trackLength {
		playedMs = trackLength
	}

	if session != nil {
		record := session.record
		record.EndedAt = now
		record.PlayedMs = playedMs
		record.Status = models.PlayStatusEnded
		return s.playsRepo.UpdateRecord(ctx, &playsRepo.UpdateRecordInput{Record: record})
	}

	if input.Track == nil {
		return nil
	}

	// no open session for this guild (restart mid-track); write a whole
	// ended record so the play still counts
	s.logger.WithField("guild_id", input.GuildID).Debug("Closing play with no open session")

	record := &models.PlayRecord{
		ID:           uuid.New().String(),
		GuildID:      input.GuildID,
		UserID:       input.Track.Requester.ID,
		TrackID:      input.Track.Identifier,
		Title:        input.Track.Title,
		Author:       input.Track.Author,
		URI:          input.Track.URI,
		Source:       input.Track.SourceName,
		DurationMs:   trackLength,
		StartedAt:    startedAt,
		EndedAt:      now,
		PlayedMs:     playedMs,
		RequesterTag: input.Track.Requester.DisplayName,
		Status:       models.PlayStatusEnded,
	}
	return s.playsRepo.AppendRecord(ctx, &playsRepo.AppendRecordInput{Record: record})
}

func (s *service) recordsInWindow(ctx context.Context, guildID string, window Window) ([]*models.PlayRecord, error) {
	out, err := s.playsRepo.GetRecordsSince(ctx, &playsRepo.GetRecordsSinceInput{
		GuildID: guildID,
		Since:   window.start(s.clock.Now()),
	})
	if err != nil {
		return nil, err
	}
	return out.Records, nil
}

// GuildSummary aggregates plays, listeners and total listening time
func (s *service) GuildSummary(ctx context.Context, input *GuildSummaryInput) (*GuildSummaryOutput, error) {
	if input == nil || input.GuildID == "" {
		return nil, errors.New("input and guild ID cannot be empty")
	}

	records, err := s.recordsInWindow(ctx, input.GuildID, input.Window)
	if err != nil {
		return nil, err
	}

	listeners := make(map[string]struct{})
	out := &GuildSummaryOutput{}
	for _, r := range records {
		out.Plays++
		out.TotalMs += r.ContributedMs()
		if r.UserID != "" {
			listeners[r.UserID] = struct{}{}
		}
	}
	out.Listeners = len(listeners)

	return out, nil
}

// UserSummary aggregates one listener's plays and listening time
func (s *service) UserSummary(ctx context.Context, input *UserSummaryInput) (*UserSummaryOutput, error) {
	if input == nil || input.GuildID == "" || input.UserID == "" {
		return nil, errors.New("input, guild ID and user ID cannot be empty")
	}

	records, err := s.recordsInWindow(ctx, input.GuildID, input.Window)
	if err != nil {
		return nil, err
	}

	out := &UserSummaryOutput{}
	for _, r := range records {
		if r.UserID != input.UserID {
			continue
		}
		out.Plays++
		out.TotalMs += r.ContributedMs()
	}

	return out, nil
}

// TopTracks returns the most played tracks in a window, ordered by play
// count then total listening time
func (s *service) TopTracks(ctx context.Context, input *TopTracksInput) (*TopTracksOutput, error) {
	if input == nil || input.GuildID == "" {
		return nil, errors.New("input and guild ID cannot be empty")
	}

	records, err := s.recordsInWindow(ctx, input.GuildID, input.Window)
	if err != nil {
		return nil, err
	}

	byTrack := make(map[string]*TrackCount)
	for _, r := range records {
		key := r.TrackID
		if key == "" {
			key = r.URI
		}
		entry, ok := byTrack[key]
		if !ok {
			entry = &TrackCount{Title: r.Title, Author: r.Author, URI: r.URI}
			byTrack[key] = entry
		}
		entry.Plays++
		entry.TotalMs += r.ContributedMs()
	}

	tracks := make([]TrackCount, 0, len(byTrack))
	for _, entry := range byTrack {
		tracks = append(tracks, *entry)
	}
	sort.Slice(tracks, func(i, j int) bool {
		if tracks[i].Plays != tracks[j].Plays {
			return tracks[i].Plays > tracks[j].Plays
		}
		return tracks[i].TotalMs > tracks[j].TotalMs
	})

	limit := input.Limit
	if limit <= 0 {
		limit = defaultTopLimit
	}
	if len(tracks) > limit {
		tracks = tracks[:limit]
	}

	return &TopTracksOutput{Tracks: tracks}, nil
}

// TopListeners returns the most active requesters in a window
func (s *service) TopListeners(ctx context.Context, input *TopListenersInput) (*TopListenersOutput, error) {
	if input == nil || input.GuildID == "" {
		return nil, errors.New("input and guild ID cannot be empty")
	}

	records, err := s.recordsInWindow(ctx, input.GuildID, input.Window)
	if err != nil {
		return nil, err
	}

	byUser := make(map[string]*ListenerCount)
	for _, r := range records {
		if r.UserID == "" {
			continue
		}
		entry, ok := byUser[r.UserID]
		if !ok {
			entry = &ListenerCount{UserID: r.UserID}
			byUser[r.UserID] = entry
		}
		entry.Plays++
		entry.TotalMs += r.ContributedMs()
		if r.RequesterTag != "" {
			entry.Tag = r.RequesterTag
		}
	}

	listeners := make([]ListenerCount, 0, len(byUser))
	for _, entry := range byUser {
		listeners = append(listeners, *entry)
	}
	sort.Slice(listeners, func(i, j int) bool {
		if listeners[i].Plays != listeners[j].Plays {
			return listeners[i].Plays > listeners[j].Plays
		}
		return listeners[i].TotalMs > listeners[j].TotalMs
	})

	limit := input.Limit
	if limit <= 0 {
		limit = defaultTopLimit
	}
	if len(listeners) > limit {
		listeners = listeners[:limit]
	}

	return &TopListenersOutput{Listeners: listeners}, nil
}
