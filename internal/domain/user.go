package domain

import (
	"time"
)

// User represents one Discord account known to the system. The Discord user ID
// is the primary key; a record is created on first OAuth login and its profile
// fields are refreshed on every subsequent login.
type User struct {
	ID              string
	Username        string
	Discriminator   string
	AvatarURL       string
	IsAdmin         bool
	SubmissionCount int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// NewUser creates a new User from a Discord profile.
func NewUser(discordID, username string) *User {
	now := time.Now()
	return &User{
		ID:        discordID,
		Username:  username,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Validate validates the user
func (u *User) Validate() error {
	if u.ID == "" {
		return NewValidationError("discord user id is required")
	}
	if u.Username == "" {
		return NewValidationError("username is required")
	}
	return nil
}
