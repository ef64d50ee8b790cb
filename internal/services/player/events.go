package player

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/velrin/cadence/internal/models"
	"github.com/velrin/cadence/internal/services/stats"
)

// Backend end reasons the orchestrator cares about. "finished" is the only
// reason that advances the queue; a load failure is followed by its own
// error event, and "replaced" means a command already decided what happens
// next. A stop that drained the queue still goes through queue-end handling
// so the display resets and the idle timer arms.
const (
	endReasonFinished   = "finished"
	endReasonLoadFailed = "loadFailed"
	endReasonReplaced   = "replaced"
	endReasonStopped    = "stopped"
	endReasonCleanup    = "cleanup"
)

// TrackStart confirms playback began: it clears any armed idle timer,
// opens a listening-history session, refreshes the display and announces
// the track when the guild has announcements on.
func (s *service) TrackStart(guildID string, track *models.Track) {
	ctx := context.Background()

	sess, ok := s.session(guildID)
	if !ok {
		return
	}

	sess.cancelDisconnect()
	sess.setState(models.PlayingStatePlaying)
	sess.markStarted(s.clock.Now())
	if track != nil && sess.Current() == nil {
		sess.setCurrent(track)
	}

	playing := sess.Current()
	if playing == nil {
		playing = track
	}
	if playing == nil {
		return
	}

	if err := s.stats.StartSession(ctx, &stats.StartSessionInput{
		GuildID: guildID,
		Track:   playing,
	}); err != nil {
		s.logger.WithError(err).WithField("guild_id", guildID).Warn("Failed to open play record")
	}

	display := s.displayInfo(sess, playing)
	s.uiSync.Refresh(ctx, guildID, display)

	cfg := s.guildConfig(ctx, guildID)
	if cfg.NowPlayingAnnounce {
		s.notifier.AnnounceNowPlaying(guildID, sess.TextChannelID(), display)
	}

	s.logger.WithFields(logrus.Fields{
		"guild_id": guildID,
		"track":    playing.DisplayTitle(),
	}).Info("Track started")
}

// TrackEnd closes the listening-history session and advances the queue.
// Only a natural finish advances here: a replaced end was already handled
// by the command that caused it, and a load failure is handled by the
// error event that follows it. A stopped end with nothing left queued
// still runs the queue-end handling.
func (s *service) TrackEnd(guildID string, track *models.Track, reason string) {
	ctx := context.Background()

	sess, ok := s.session(guildID)
	if !ok {
		return
	}

	if track != nil {
		sess.setPrevious(track)
	}
	if err := s.stats.EndSession(ctx, &stats.EndSessionInput{
		GuildID: guildID,
		Track:   track,
	}); err != nil {
		s.logger.WithError(err).WithField("guild_id", guildID).Warn("Failed to close play record")
	}

	if reason != endReasonFinished {
		if reason == endReasonStopped || reason == endReasonCleanup {
			sess.setState(models.PlayingStateStopped)
			// a skip that drained the queue ends here; the session still
			// needs its queue-end handling
			if sess.QueueLen() == 0 {
				s.handleQueueEnd(ctx, sess)
			}
		}
		return
	}

	next := sess.pollNext(track)
	if next == nil {
		sess.setState(models.PlayingStateStopped)
		s.handleQueueEnd(ctx, sess)
		return
	}
	s.play(ctx, sess, next)
}

// TrackError recovers from a track the backend could not play
func (s *service) TrackError(guildID string, track *models.Track, message string) {
	s.logger.WithFields(logrus.Fields{
		"guild_id": guildID,
		"reason":   message,
	}).Warn("Track failed")
	s.recoverTrack(guildID, track)
}

// TrackStuck recovers from a track that stalled past the backend threshold
func (s *service) TrackStuck(guildID string, track *models.Track, thresholdMs int64) {
	s.logger.WithFields(logrus.Fields{
		"guild_id":     guildID,
		"threshold_ms": thresholdMs,
	}).Warn("Track stuck")
	s.recoverTrack(guildID, track)
}

// PlayerException recovers from a backend-side playback exception
func (s *service) PlayerException(guildID string, track *models.Track, message string) {
	s.logger.WithFields(logrus.Fields{
		"guild_id": guildID,
		"reason":   message,
	}).Warn("Player exception")
	s.recoverTrack(guildID, track)
}

// recoverTrack notifies about the failed track and auto-skips to the next
// queued one. The session survives: an empty queue goes through the normal
// queue-end path, never a teardown.
func (s *service) recoverTrack(guildID string, track *models.Track) {
	ctx := context.Background()

	sess, ok := s.session(guildID)
	if !ok {
		return
	}

	remaining := sess.QueueLen()
	s.notifier.NotifyTrackFailed(guildID, sess.TextChannelID(), track, remaining)

	// never honor loop-track here, that would replay the broken track
	next := sess.pollNext(nil)
	if next == nil {
		sess.setState(models.PlayingStateStopped)
		s.handleQueueEnd(ctx, sess)
		return
	}
	s.play(ctx, sess, next)
}

// handleQueueEnd runs when nothing is left to play: reset the display,
// then try autoplay continuation, and otherwise arm the idle disconnect.
// A guild pinned always-on stays connected with no timer at all.
func (s *service) handleQueueEnd(ctx context.Context, sess *GuildSession) {
	guildID := sess.GuildID
	s.uiSync.Refresh(ctx, guildID, nil)

	cfg := s.guildConfig(ctx, guildID)
	if cfg.AlwaysOn {
		s.logger.WithField("guild_id", guildID).Debug("Queue ended, staying connected (always-on)")
		return
	}

	if sess.Autoplay() || cfg.Autoplay {
		if s.autoplayNext(ctx, sess) {
			return
		}
	}

	sess.armDisconnect(s.disconnectDelay, func() {
		s.idleDisconnect(guildID)
	})
	s.logger.WithFields(logrus.Fields{
		"guild_id": guildID,
		"delay":    s.disconnectDelay,
	}).Debug("Queue ended, idle disconnect armed")
}

// idleDisconnect fires from the armed timer. Conditions are re-checked at
// fire time against live state: anything queued, playing, or a config flip
// to always-on in the meantime vetoes the teardown.
func (s *service) idleDisconnect(guildID string) {
	ctx := context.Background()

	sess, ok := s.session(guildID)
	if !ok {
		return
	}
	if sess.QueueLen() > 0 || sess.State() == models.PlayingStatePlaying {
		return
	}
	if cfg := s.guildConfig(ctx, guildID); cfg.AlwaysOn {
		return
	}

	s.logger.WithField("guild_id", guildID).Info("Idle timeout reached, leaving voice")
	s.destroySession(ctx, guildID, true)
}

// autoplayNext seeds a continuation from the last played track via the
// platform's mix radio. Returns false when no continuation could be found,
// in which case the caller falls back to the idle timer.
func (s *service) autoplayNext(ctx context.Context, sess *GuildSession) bool {
	seed := sess.Previous()
	if seed == nil {
		seed = sess.Current()
	}
	if seed == nil || seed.Identifier == "" || seed.SourceName != "youtube" {
		return false
	}

	query := fmt.Sprintf("https://www.youtube.com/watch?v=%s&list=RD%s", seed.Identifier, seed.Identifier)
	resolved, err := s.backend.Resolve(ctx, query)
	if err != nil {
		s.logger.WithError(err).WithField("guild_id", sess.GuildID).Warn("Autoplay resolve failed")
		return false
	}

	for _, candidate := range resolved.Tracks {
		if candidate == nil || candidate.Identifier == seed.Identifier {
			continue
		}
		candidate.Requester = seed.Requester
		sess.enqueue(candidate)
		s.play(ctx, sess, sess.pollNext(nil))
		s.logger.WithFields(logrus.Fields{
			"guild_id": sess.GuildID,
			"track":    candidate.DisplayTitle(),
		}).Info("Autoplay continuation")
		return true
	}
	return false
}

// PlayerDisconnect handles the voice connection dropping out from under a
// session. The backend connection is already gone, so only local state is
// cleaned up.
func (s *service) PlayerDisconnect(guildID string) {
	ctx := context.Background()

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
	s.logger.WithField("guild_id", guildID).Info("Voice connection dropped, session removed")
}

// NodeError surfaces backend node failures
func (s *service) NodeError(err error) {
	s.logger.WithError(err).Error("Audio backend node error")
}

// VoiceChannelEmptied handles the last human listener leaving the voice
// channel. Always-on guilds keep their session.
func (s *service) VoiceChannelEmptied(ctx context.Context, guildID string) {
	if _, ok := s.session(guildID); !ok {
		return
	}
	if cfg := s.guildConfig(ctx, guildID); cfg.AlwaysOn {
		s.logger.WithField("guild_id", guildID).Debug("Voice channel emptied, staying (always-on)")
		return
	}
	s.logger.WithField("guild_id", guildID).Info("Voice channel emptied, leaving")
	s.destroySession(ctx, guildID, true)
}
