package models

import "time"

type OtpPurpose string

const (
	OtpSignup        OtpPurpose = "SIGNUP"
	OtpLogin         OtpPurpose = "LOGIN"
	OtpResetPassword OtpPurpose = "RESET_PASSWORD"
)

func (p OtpPurpose) Valid() bool {
	switch p {
	case OtpSignup, OtpLogin, OtpResetPassword:
		return true
	}
	return false
}

// OtpCode rows are only ever mutated by an attempt increment or by being
// marked used/invalidated; Used, Invalidated and expiry are terminal.
// UserID is nullable because a SIGNUP code precedes account creation.
type OtpCode struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	Purpose     OtpPurpose `json:"purpose"`
	UserID      *int64     `json:"user_id,omitempty"`
	ExpiresAt   time.Time  `json:"expires_at"`
	Used        bool       `json:"used"`
	Invalidated bool       `json:"invalidated"`
	Attempts    int        `json:"attempts"`
	CreatedAt   time.Time  `json:"created_at"`
}
