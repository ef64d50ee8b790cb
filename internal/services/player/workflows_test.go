package player

import (
	"time"

	"github.com/velrin/cadence/internal/models"
)

// submitRequest parks a request for "Wanted" with dj-1 and dj-2 eligible
func (s *PlayerServiceTestSuite) submitRequest() string {
	out, err := s.svc.SubmitRequest(s.ctx, &SubmitRequestInput{
		GuildID:             testGuild,
		Track:               testTrack("req1", "Wanted"),
		RequesterID:         "user-1",
		EligibleApproverIDs: []string{"dj-1", "dj-2"},
	})
	s.Require().NoError(err)
	return out.RequestID
}

func (s *PlayerServiceTestSuite) TestSubmitRequestReportsTTL() {
	s.join()

	out, err := s.svc.SubmitRequest(s.ctx, &SubmitRequestInput{
		GuildID:             testGuild,
		Track:               testTrack("req1", "Wanted"),
		RequesterID:         "user-1",
		EligibleApproverIDs: []string{"dj-1"},
	})
	s.Require().NoError(err)
	s.NotEmpty(out.RequestID)
	s.Equal(DefaultRequestTTL, out.ExpiresIn)
}

func (s *PlayerServiceTestSuite) TestApproveEnqueuesAndStarts() {
	s.join()
	requestID := s.submitRequest()

	out, err := s.svc.ResolveRequest(s.ctx, &ResolveRequestInput{
		RequestID: requestID,
		ActorID:   "dj-1",
		Decision:  RequestDecisionApprove,
	})
	s.Require().NoError(err)
	s.True(out.Approved)

	s.Equal([]string{"Wanted"}, s.backend.player.playedTitles())
	s.Require().Len(s.notifier.resolutions, 1)
	s.True(s.notifier.resolutions[0].approved)
	s.Equal("dj-1", s.notifier.resolutions[0].actorID)
}

func (s *PlayerServiceTestSuite) TestRejectOnlyNotifies() {
	s.join()
	requestID := s.submitRequest()

	out, err := s.svc.ResolveRequest(s.ctx, &ResolveRequestInput{
		RequestID: requestID,
		ActorID:   "dj-2",
		Decision:  RequestDecisionReject,
	})
	s.Require().NoError(err)
	s.False(out.Approved)

	s.Empty(s.backend.player.playedTitles())
	s.Require().Len(s.notifier.resolutions, 1)
	s.False(s.notifier.resolutions[0].approved)
}

func (s *PlayerServiceTestSuite) TestIneligibleActorLeavesRequestPending() {
	s.join()
	requestID := s.submitRequest()

	_, err := s.svc.ResolveRequest(s.ctx, &ResolveRequestInput{
		RequestID: requestID,
		ActorID:   "bystander",
		Decision:  RequestDecisionApprove,
	})
	s.ErrorIs(err, ErrNotEligible)

	// an eligible DJ can still act on it afterwards
	out, err := s.svc.ResolveRequest(s.ctx, &ResolveRequestInput{
		RequestID: requestID,
		ActorID:   "dj-1",
		Decision:  RequestDecisionApprove,
	})
	s.Require().NoError(err)
	s.True(out.Approved)
}

func (s *PlayerServiceTestSuite) TestRequesterNotAutomaticallyEligible() {
	s.join()
	requestID := s.submitRequest()

	_, err := s.svc.ResolveRequest(s.ctx, &ResolveRequestInput{
		RequestID: requestID,
		ActorID:   "user-1",
		Decision:  RequestDecisionApprove,
	})
	s.ErrorIs(err, ErrNotEligible)
}

func (s *PlayerServiceTestSuite) TestRequestExpires() {
	s.join()
	requestID := s.submitRequest()

	s.clock.Advance(DefaultRequestTTL + time.Second)

	_, err := s.svc.ResolveRequest(s.ctx, &ResolveRequestInput{
		RequestID: requestID,
		ActorID:   "dj-1",
		Decision:  RequestDecisionApprove,
	})
	s.ErrorIs(err, ErrRequestExpired)
}

func (s *PlayerServiceTestSuite) TestRequestResolvedOnlyOnce() {
	s.join()
	requestID := s.submitRequest()

	_, err := s.svc.ResolveRequest(s.ctx, &ResolveRequestInput{
		RequestID: requestID,
		ActorID:   "dj-1",
		Decision:  RequestDecisionApprove,
	})
	s.Require().NoError(err)

	_, err = s.svc.ResolveRequest(s.ctx, &ResolveRequestInput{
		RequestID: requestID,
		ActorID:   "dj-2",
		Decision:  RequestDecisionReject,
	})
	s.ErrorIs(err, ErrRequestExpired)
}

func (s *PlayerServiceTestSuite) TestApproveWithSessionGoneLeavesRequestPending() {
	s.join()
	requestID := s.submitRequest()

	s.Require().NoError(s.svc.Stop(s.ctx, &StopInput{GuildID: testGuild}))

	_, err := s.svc.ResolveRequest(s.ctx, &ResolveRequestInput{
		RequestID: requestID,
		ActorID:   "dj-1",
		Decision:  RequestDecisionApprove,
	})
	s.ErrorIs(err, ErrNoSession)

	// once playback is back, the same request can still be approved
	s.join()
	out, err := s.svc.ResolveRequest(s.ctx, &ResolveRequestInput{
		RequestID: requestID,
		ActorID:   "dj-1",
		Decision:  RequestDecisionApprove,
	})
	s.Require().NoError(err)
	s.True(out.Approved)
	s.Len(s.notifier.resolutions, 1)
}

func (s *PlayerServiceTestSuite) TestApproveSkipsDuplicateCheck() {
	s.join()
	// the requested track is already playing
	s.playTrack(testTrack("req1", "Wanted"))
	requestID := s.submitRequest()

	out, err := s.svc.ResolveRequest(s.ctx, &ResolveRequestInput{
		RequestID: requestID,
		ActorID:   "dj-1",
		Decision:  RequestDecisionApprove,
	})
	s.Require().NoError(err)
	s.True(out.Approved)

	// the approved track lands in the queue despite matching the current one
	snap, err := s.svc.QueueSnapshot(s.ctx, &QueueSnapshotInput{GuildID: testGuild})
	s.Require().NoError(err)
	s.Require().Len(snap.Queue, 1)
	s.Equal("Wanted", snap.Queue[0].Title)
}

// promptDuplicate plays a track twice so the second attempt parks a
// duplicate choice for user-1
func (s *PlayerServiceTestSuite) promptDuplicate() *models.Track {
	track := testTrack("t1", "First")
	s.playTrack(track)
	result := s.playTrack(testTrack("t1", "First"))
	s.Require().Equal(ResultKindDuplicate, result.Kind)
	return track
}

func (s *PlayerServiceTestSuite) TestDuplicateChoiceAdd() {
	s.join()
	s.promptDuplicate()

	out, err := s.svc.ResolveDuplicate(s.ctx, &ResolveDuplicateInput{
		GuildID:     testGuild,
		RequesterID: "user-1",
		ActorID:     "user-1",
		Resolution:  DuplicateResolutionAdd,
	})
	s.Require().NoError(err)
	s.Equal("First", out.Track.Title)

	snap, err := s.svc.QueueSnapshot(s.ctx, &QueueSnapshotInput{GuildID: testGuild})
	s.Require().NoError(err)
	s.Len(snap.Queue, 1)
}

func (s *PlayerServiceTestSuite) TestDuplicateChoiceLoop() {
	s.join()
	s.promptDuplicate()

	_, err := s.svc.ResolveDuplicate(s.ctx, &ResolveDuplicateInput{
		GuildID:     testGuild,
		RequesterID: "user-1",
		ActorID:     "user-1",
		Resolution:  DuplicateResolutionLoop,
	})
	s.Require().NoError(err)

	snap, err := s.svc.QueueSnapshot(s.ctx, &QueueSnapshotInput{GuildID: testGuild})
	s.Require().NoError(err)
	s.Equal(models.LoopModeTrack, snap.Loop)
	s.Empty(snap.Queue)
}

func (s *PlayerServiceTestSuite) TestDuplicateChoiceCancel() {
	s.join()
	s.promptDuplicate()

	_, err := s.svc.ResolveDuplicate(s.ctx, &ResolveDuplicateInput{
		GuildID:     testGuild,
		RequesterID: "user-1",
		ActorID:     "user-1",
		Resolution:  DuplicateResolutionCancel,
	})
	s.Require().NoError(err)

	snap, err := s.svc.QueueSnapshot(s.ctx, &QueueSnapshotInput{GuildID: testGuild})
	s.Require().NoError(err)
	s.Empty(snap.Queue)
}

func (s *PlayerServiceTestSuite) TestDuplicateChoiceWrongActor() {
	s.join()
	s.promptDuplicate()

	_, err := s.svc.ResolveDuplicate(s.ctx, &ResolveDuplicateInput{
		GuildID:     testGuild,
		RequesterID: "user-1",
		ActorID:     "user-2",
		Resolution:  DuplicateResolutionAdd,
	})
	s.ErrorIs(err, ErrNotYourChoice)

	// the prompt is still live for its owner
	_, err = s.svc.ResolveDuplicate(s.ctx, &ResolveDuplicateInput{
		GuildID:     testGuild,
		RequesterID: "user-1",
		ActorID:     "user-1",
		Resolution:  DuplicateResolutionCancel,
	})
	s.NoError(err)
}

func (s *PlayerServiceTestSuite) TestDuplicateChoiceExpires() {
	s.join()
	s.promptDuplicate()

	s.clock.Advance(DefaultChoiceTTL + time.Second)

	_, err := s.svc.ResolveDuplicate(s.ctx, &ResolveDuplicateInput{
		GuildID:     testGuild,
		RequesterID: "user-1",
		ActorID:     "user-1",
		Resolution:  DuplicateResolutionAdd,
	})
	s.ErrorIs(err, ErrChoiceExpired)
}
