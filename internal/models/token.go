package models

import "time"

// TokenInfo summarises the stored portal bearer token for status endpoints.
// ExpiresAt is best-effort: it is read from the unverified JWT exp claim and
// is nil when the token is opaque or carries no expiry.
type TokenInfo struct {
	Present   bool       `json:"present"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	Expired   bool       `json:"expired"`
}

// Credentials are the login inputs the portal expects.
type Credentials struct {
	StudentID string `json:"student_id" validate:"required"`
	Password  string `json:"password" validate:"required"`
}
