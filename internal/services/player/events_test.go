package player

import (
	"time"

	"github.com/velrin/cadence/internal/models"
	"github.com/velrin/cadence/internal/repositories/guildconfig"
)

// saveConfig writes guild settings directly through the repository
func (s *PlayerServiceTestSuite) saveConfig(cfg *models.GuildConfig) {
	cfg.GuildID = testGuild
	err := s.cfgRepo.Save(s.ctx, &guildconfig.SaveInput{Config: cfg})
	s.Require().NoError(err)
}

func (s *PlayerServiceTestSuite) TestTrackStartRefreshesDisplay() {
	s.join()
	track := testTrack("t1", "First")
	s.playTrack(track)

	s.svc.TrackStart(testGuild, track)

	last, ok := s.ui.lastRefresh()
	s.Require().True(ok)
	s.Require().NotNil(last.display)
	s.Equal("First", last.display.Track.Title)
	s.Empty(s.notifier.announcements)
}

func (s *PlayerServiceTestSuite) TestTrackStartAnnouncesWhenEnabled() {
	s.saveConfig(&models.GuildConfig{NowPlayingAnnounce: true})
	s.join()
	track := testTrack("t1", "First")
	s.playTrack(track)

	s.svc.TrackStart(testGuild, track)

	s.Require().Len(s.notifier.announcements, 1)
	s.Equal("First", s.notifier.announcements[0].Track.Title)
}

func (s *PlayerServiceTestSuite) TestTrackStartUnknownGuildIgnored() {
	s.svc.TrackStart("guild-unknown", testTrack("t1", "First"))
	s.Empty(s.ui.refreshes)
}

func (s *PlayerServiceTestSuite) TestTrackEndFinishedAdvancesQueue() {
	s.join()
	first := testTrack("t1", "First")
	s.playTrack(first)
	s.playTrack(testTrack("t2", "Second"))

	s.svc.TrackEnd(testGuild, first, "finished")

	s.Equal([]string{"First", "Second"}, s.backend.player.playedTitles())
	snap, err := s.svc.QueueSnapshot(s.ctx, &QueueSnapshotInput{GuildID: testGuild})
	s.Require().NoError(err)
	s.Equal("Second", snap.Current.Title)
	s.Empty(snap.Queue)
}

func (s *PlayerServiceTestSuite) TestTrackEndReplacedDoesNotAdvance() {
	s.join()
	first := testTrack("t1", "First")
	s.playTrack(first)
	s.playTrack(testTrack("t2", "Second"))

	s.svc.TrackEnd(testGuild, first, "replaced")

	// only the original play command reached the transport
	s.Equal([]string{"First"}, s.backend.player.playedTitles())
	snap, err := s.svc.QueueSnapshot(s.ctx, &QueueSnapshotInput{GuildID: testGuild})
	s.Require().NoError(err)
	s.Len(snap.Queue, 1)
}

func (s *PlayerServiceTestSuite) TestTrackEndLoopTrackReplays() {
	s.join()
	first := testTrack("t1", "First")
	s.playTrack(first)
	s.Require().NoError(s.svc.SetLoop(s.ctx, &SetLoopInput{GuildID: testGuild, Mode: models.LoopModeTrack}))

	s.svc.TrackEnd(testGuild, first, "finished")

	s.Equal([]string{"First", "First"}, s.backend.player.playedTitles())
}

func (s *PlayerServiceTestSuite) TestTrackEndLoopQueueRequeues() {
	s.join()
	first := testTrack("t1", "First")
	s.playTrack(first)
	s.playTrack(testTrack("t2", "Second"))
	s.Require().NoError(s.svc.SetLoop(s.ctx, &SetLoopInput{GuildID: testGuild, Mode: models.LoopModeQueue}))

	s.svc.TrackEnd(testGuild, first, "finished")

	snap, err := s.svc.QueueSnapshot(s.ctx, &QueueSnapshotInput{GuildID: testGuild})
	s.Require().NoError(err)
	s.Equal("Second", snap.Current.Title)
	s.Require().Len(snap.Queue, 1)
	s.Equal("First", snap.Queue[0].Title)
}

func (s *PlayerServiceTestSuite) TestQueueEndArmsIdleDisconnect() {
	sess := s.join()
	first := testTrack("t1", "First")
	s.playTrack(first)

	s.svc.TrackEnd(testGuild, first, "finished")

	s.True(sess.hasDisconnectArmed())
	last, ok := s.ui.lastRefresh()
	s.Require().True(ok)
	s.Nil(last.display)

	// the timer fires and tears the idle session down
	s.Require().Eventually(func() bool {
		return s.backend.player.destroyCount() == 1
	}, time.Second, 5*time.Millisecond)

	_, err := s.svc.NowPlaying(s.ctx, &NowPlayingInput{GuildID: testGuild})
	s.ErrorIs(err, ErrNoSession)
}

func (s *PlayerServiceTestSuite) TestSkipLastTrackArmsIdleDisconnect() {
	sess := s.join()
	first := testTrack("t1", "First")
	s.playTrack(first)

	out, err := s.svc.Skip(s.ctx, &SkipInput{GuildID: testGuild})
	s.Require().NoError(err)
	s.Require().Nil(out.Next)

	// the backend confirms the stop; the drained queue still goes through
	// queue-end handling
	s.svc.TrackEnd(testGuild, first, "stopped")

	s.True(sess.hasDisconnectArmed())
	last, ok := s.ui.lastRefresh()
	s.Require().True(ok)
	s.Nil(last.display)
}

func (s *PlayerServiceTestSuite) TestQueueEndAlwaysOnSkipsTimer() {
	s.saveConfig(&models.GuildConfig{AlwaysOn: true})
	sess := s.join()
	first := testTrack("t1", "First")
	s.playTrack(first)

	s.svc.TrackEnd(testGuild, first, "finished")

	s.False(sess.hasDisconnectArmed())
}

func (s *PlayerServiceTestSuite) TestIdleDisconnectVetoedByLateAlwaysOn() {
	sess := s.join()
	first := testTrack("t1", "First")
	s.playTrack(first)

	s.svc.TrackEnd(testGuild, first, "finished")
	s.Require().True(sess.hasDisconnectArmed())

	// the flag flips after the timer was armed; fire-time re-check wins
	s.saveConfig(&models.GuildConfig{AlwaysOn: true})

	time.Sleep(3 * testDisconnectDelay)
	s.Equal(0, s.backend.player.destroyCount())
	_, err := s.svc.NowPlaying(s.ctx, &NowPlayingInput{GuildID: testGuild})
	s.NoError(err)
}

func (s *PlayerServiceTestSuite) TestPlayWithinDelayCancelsTimer() {
	sess := s.join()
	first := testTrack("t1", "First")
	s.playTrack(first)

	s.svc.TrackEnd(testGuild, first, "finished")
	s.Require().True(sess.hasDisconnectArmed())

	s.playTrack(testTrack("t2", "Second"))
	s.False(sess.hasDisconnectArmed())

	time.Sleep(3 * testDisconnectDelay)
	s.Equal(0, s.backend.player.destroyCount())
}

func (s *PlayerServiceTestSuite) TestTrackErrorAutoSkips() {
	s.join()
	first := testTrack("t1", "First")
	s.playTrack(first)
	s.playTrack(testTrack("t2", "Second"))

	s.svc.TrackError(testGuild, first, "decoder blew up")

	s.Require().Len(s.notifier.failures, 1)
	s.Equal(1, s.notifier.failures[0].remaining)
	s.Equal([]string{"First", "Second"}, s.backend.player.playedTitles())
}

func (s *PlayerServiceTestSuite) TestTrackErrorEmptyQueueKeepsSession() {
	sess := s.join()
	first := testTrack("t1", "First")
	s.playTrack(first)

	s.svc.TrackError(testGuild, first, "decoder blew up")

	// failure never tears the session down, it goes idle like a normal
	// queue end
	_, err := s.svc.NowPlaying(s.ctx, &NowPlayingInput{GuildID: testGuild})
	s.NoError(err)
	s.True(sess.hasDisconnectArmed())
	s.Equal(0, s.backend.player.destroyCount())
}

func (s *PlayerServiceTestSuite) TestTrackStuckAutoSkips() {
	s.join()
	first := testTrack("t1", "First")
	s.playTrack(first)
	s.playTrack(testTrack("t2", "Second"))

	s.svc.TrackStuck(testGuild, first, 10000)

	s.Require().Len(s.notifier.failures, 1)
	s.Equal([]string{"First", "Second"}, s.backend.player.playedTitles())
}

func (s *PlayerServiceTestSuite) TestPlayerDisconnectDropsSessionOnly() {
	s.join()
	s.playTrack(testTrack("t1", "First"))

	s.svc.PlayerDisconnect(testGuild)

	// the connection is already gone, no teardown command is sent
	s.Equal(0, s.backend.player.destroyCount())
	last, ok := s.ui.lastRefresh()
	s.Require().True(ok)
	s.Nil(last.display)
	_, err := s.svc.NowPlaying(s.ctx, &NowPlayingInput{GuildID: testGuild})
	s.ErrorIs(err, ErrNoSession)
}

func (s *PlayerServiceTestSuite) TestVoiceChannelEmptiedLeaves() {
	s.join()
	s.playTrack(testTrack("t1", "First"))

	s.svc.VoiceChannelEmptied(s.ctx, testGuild)

	s.Equal(1, s.backend.player.destroyCount())
	_, err := s.svc.NowPlaying(s.ctx, &NowPlayingInput{GuildID: testGuild})
	s.ErrorIs(err, ErrNoSession)
}

func (s *PlayerServiceTestSuite) TestVoiceChannelEmptiedAlwaysOnStays() {
	s.saveConfig(&models.GuildConfig{AlwaysOn: true})
	s.join()
	s.playTrack(testTrack("t1", "First"))

	s.svc.VoiceChannelEmptied(s.ctx, testGuild)

	s.Equal(0, s.backend.player.destroyCount())
	_, err := s.svc.NowPlaying(s.ctx, &NowPlayingInput{GuildID: testGuild})
	s.NoError(err)
}
