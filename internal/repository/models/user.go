package models

import (
	"database/sql"
	"time"
)

// User represents a row of the users table. The primary key is the Discord
// user ID, which is immutable once created.
type User struct {
	ID              string         `db:"id"`
	Username        string         `db:"username"`
	Discriminator   sql.NullString `db:"discriminator"`
	AvatarURL       sql.NullString `db:"avatar_url"`
	IsAdmin         bool           `db:"is_admin"`
	SubmissionCount int            `db:"submission_count"`
	CreatedAt       time.Time      `db:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at"`
}
