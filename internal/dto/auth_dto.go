package dto

import (
	"github.com/golang-jwt/jwt/v5"
)

// DiscordUserInfo holds the profile returned by Discord's /users/@me endpoint.
type DiscordUserInfo struct {
	ID            string `json:"id"`
	Username      string `json:"username"`
	Discriminator string `json:"discriminator"`
	Avatar        string `json:"avatar"`
	GlobalName    string `json:"global_name"`
}

// AvatarURL resolves the CDN URL for the user's avatar, or "" when unset.
func (u DiscordUserInfo) AvatarURL() string {
	if u.Avatar == "" {
		return ""
	}
	return "https://cdn.discordapp.com/avatars/" + u.ID + "/" + u.Avatar + ".png"
}

// SessionClaims defines the custom claims carried by a session token. The
// token is only honored while SessionID is still live in the session store,
// which is what makes logout and single-session enforcement server-side.
type SessionClaims struct {
	UserID    string `json:"user_id"`
	SessionID string `json:"session_id"`
	jwt.RegisteredClaims
}

// UserResponse is the public shape of a user record.
type UserResponse struct {
	ID              string `json:"id"`
	Username        string `json:"username"`
	Discriminator   string `json:"discriminator,omitempty"`
	AvatarURL       string `json:"avatar_url,omitempty"`
	IsAdmin         bool   `json:"is_admin"`
	SubmissionCount int    `json:"submission_count"`
	CreatedAt       string `json:"created_at"`
}

// MessageResponse represents a generic message response.
type MessageResponse struct {
	Message string `json:"message"`
}
