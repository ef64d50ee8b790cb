package models

import (
	"time"
)

// PendingRequest is an ephemeral DJ-approval record. It lives in process
// memory only; losing it on restart is acceptable.
type PendingRequest struct {
	// ID is the unique identifier handed back to the requester
	ID string

	// GuildID is the guild the request was made in
	GuildID string

	// Track is a snapshot of the resolved track at submit time
	Track *Track

	// RequesterID is the user who made the request
	RequesterID string

	// EligibleApproverIDs are the DJs present in the voice channel at
	// submit time; only they may resolve the request
	EligibleApproverIDs []string

	// CreatedAt is when the request was submitted
	CreatedAt time.Time
}

// CanResolve reports whether the actor is in the eligible approver set
func (r *PendingRequest) CanResolve(actorID string) bool {
	for _, id := range r.EligibleApproverIDs {
		if id == actorID {
			return true
		}
	}
	return false
}

// DuplicateChoice is an ephemeral per-user decision offered when a
// requested track already sits in the queue or is playing.
type DuplicateChoice struct {
	// GuildID is the guild the candidate was requested in
	GuildID string

	// RequesterID is the only user allowed to resolve the choice
	RequesterID string

	// Candidate is the track that matched an existing entry
	Candidate *Track

	// CreatedAt is when the choice was offered
	CreatedAt time.Time
}
