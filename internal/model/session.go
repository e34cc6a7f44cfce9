package model

import "time"

// Session is a server-side admin session. The record-store access and refresh
// tokens are stored encrypted at rest; these fields hold decrypted values.
type Session struct {
	ID           int64     `json:"id"`
	Token        string    `json:"token"`
	Email        string    `json:"email"`
	AccessToken  string    `json:"-"`
	RefreshToken string    `json:"-"`
	TokenExpiry  time.Time `json:"token_expiry"`
	ExpiresAt    time.Time `json:"expires_at"`
	CreatedAt    time.Time `json:"created_at"`
}
