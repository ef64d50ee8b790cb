package player

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/velrin/cadence/internal/models"
)

// SubmitRequest parks a DJ-gated track request for approval. The eligible
// approver set is frozen at submit time; DJs who join the channel later
// cannot act on it.
func (s *service) SubmitRequest(ctx context.Context, input *SubmitRequestInput) (*SubmitRequestOutput, error) {
	if input == nil || input.GuildID == "" || input.Track == nil {
		return nil, PlayerError("guild ID and track are required")
	}

	request := &models.PendingRequest{
		ID:                  uuid.New().String(),
		GuildID:             input.GuildID,
		Track:               input.Track,
		RequesterID:         input.RequesterID,
		EligibleApproverIDs: input.EligibleApproverIDs,
		CreatedAt:           s.clock.Now(),
	}
	s.requests.Put(request.ID, request, s.requestTTL)

	s.logger.WithFields(logrus.Fields{
		"guild_id":   input.GuildID,
		"request_id": request.ID,
		"track":      input.Track.DisplayTitle(),
	}).Info("Parked track request for approval")

	return &SubmitRequestOutput{
		RequestID: request.ID,
		ExpiresIn: s.requestTTL,
	}, nil
}

// ResolveRequest applies a DJ's verdict to a pending request. An ineligible
// actor leaves the request parked so an eligible DJ can still act on it
// before the TTL runs out. Approval enqueues the track as it was requested,
// without re-running the duplicate check.
func (s *service) ResolveRequest(ctx context.Context, input *ResolveRequestInput) (*ResolveRequestOutput, error) {
	if input == nil || input.RequestID == "" {
		return nil, PlayerError("request ID is required")
	}

	request, ok := s.requests.Get(input.RequestID)
	if !ok {
		return nil, ErrRequestExpired
	}
	if !request.CanResolve(input.ActorID) {
		return nil, ErrNotEligible
	}
	// first eligible verdict wins; a concurrent Take means we lost the race
	request, ok = s.requests.Take(input.RequestID)
	if !ok {
		return nil, ErrRequestExpired
	}

	approved := input.Decision == RequestDecisionApprove
	if approved {
		sess, ok := s.session(request.GuildID)
		if !ok {
			// the session is gone; park the request again so it can still
			// be resolved within its original TTL
			if remaining := s.requestTTL - s.clock.Now().Sub(request.CreatedAt); remaining > 0 {
				s.requests.Put(request.ID, request, remaining)
			}
			return nil, ErrNoSession
		}
		sess.enqueue(request.Track)
		s.maybeStart(ctx, sess)
	}

	s.notifier.NotifyRequestResolved(request, approved, input.ActorID)

	s.logger.WithFields(logrus.Fields{
		"guild_id":   request.GuildID,
		"request_id": request.ID,
		"approved":   approved,
	}).Info("Resolved track request")

	return &ResolveRequestOutput{Request: request, Approved: approved}, nil
}

// ResolveDuplicate applies the requester's answer to a duplicate prompt.
// Only the user who triggered the prompt may answer it.
func (s *service) ResolveDuplicate(ctx context.Context, input *ResolveDuplicateInput) (*ResolveDuplicateOutput, error) {
	if input == nil || input.GuildID == "" {
		return nil, PlayerError("guild ID is required")
	}
	if input.ActorID != input.RequesterID {
		return nil, ErrNotYourChoice
	}

	choice, ok := s.choices.Take(choiceKey(input.GuildID, input.RequesterID))
	if !ok {
		return nil, ErrChoiceExpired
	}

	switch input.Resolution {
	case DuplicateResolutionAdd:
		sess, ok := s.session(input.GuildID)
		if !ok {
			return nil, ErrNoSession
		}
		sess.enqueue(choice.Candidate)
		s.maybeStart(ctx, sess)

	case DuplicateResolutionLoop:
		sess, ok := s.session(input.GuildID)
		if !ok {
			return nil, ErrNoSession
		}
		sess.setLoop(models.LoopModeTrack)

	case DuplicateResolutionCancel:
		// nothing to do, the candidate is discarded

	default:
		return nil, PlayerError("unknown duplicate resolution")
	}

	return &ResolveDuplicateOutput{
		Track:      choice.Candidate,
		Resolution: input.Resolution,
	}, nil
}

// choiceKey scopes duplicate prompts per guild and requester, so a user can
// have at most one pending prompt per guild
func choiceKey(guildID, requesterID string) string {
	return guildID + ":" + requesterID
}
