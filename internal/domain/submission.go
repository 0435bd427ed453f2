package domain

import (
	"time"
)

// SubmissionStatus is the review state of a submission. A submission starts as
// pending and transitions at most once to approved or denied.
type SubmissionStatus string

const (
	StatusPending  SubmissionStatus = "pending"
	StatusApproved SubmissionStatus = "approved"
	StatusDenied   SubmissionStatus = "denied"
)

// ReviewAction is a moderator decision on a pending submission.
type ReviewAction string

const (
	ActionApprove ReviewAction = "approve"
	ActionDeny    ReviewAction = "deny"
)

// ParseReviewAction validates a raw action string from either the admin API or
// a Discord button custom ID.
func ParseReviewAction(raw string) (ReviewAction, error) {
	switch ReviewAction(raw) {
	case ActionApprove:
		return ActionApprove, nil
	case ActionDeny:
		return ActionDeny, nil
	default:
		return "", NewInvalidActionError(raw)
	}
}

// Status returns the terminal status this action resolves a submission to.
func (a ReviewAction) Status() SubmissionStatus {
	if a == ActionApprove {
		return StatusApproved
	}
	return StatusDenied
}

// Submission is one scored quiz attempt. Score and Passed are computed once at
// creation and never recomputed.
type Submission struct {
	ID        string
	UserID    string
	Answers   map[string]string
	Score     int
	Passed    bool
	Status    SubmissionStatus
	CreatedAt time.Time
	UpdatedAt time.Time

	// User is populated on joined reads (admin listing, owner fetch).
	User *User
}

// Resolved reports whether the submission has reached a terminal status.
func (s *Submission) Resolved() bool {
	return s.Status != StatusPending
}
