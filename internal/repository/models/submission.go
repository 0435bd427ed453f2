package models

import (
	"time"
)

// Submission represents a row of the submissions table.
type Submission struct {
	ID        string    `db:"id"`
	UserID    string    `db:"user_id"`
	Answers   AnswerMap `db:"answers"`
	Score     int       `db:"score"`
	Passed    bool      `db:"passed"`
	Status    string    `db:"status"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// SubmissionWithUser is a submission joined with its owning user, as read by
// the admin listing and the owner fetch.
type SubmissionWithUser struct {
	Submission
	User User `db:"user"`
}
