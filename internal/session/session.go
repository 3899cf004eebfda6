// Package session holds the authenticated dashboard state: the backend-issued
// API token paired with the user profile, plus the transient pending-flow
// records used by the login and password-reset sequences. The store is the
// only durable state this service owns.
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/rtb-ict/devicehub/internal/model"
)

// Session pairs the backend API token with the profile it was issued for.
type Session struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

// Valid reports whether the session may authorize anything. A token without a
// profile, or a profile without a token, never does.
func (s *Session) Valid() bool {
	return s != nil && s.Token != "" && s.User != nil
}

// Flow purposes for pending records.
const (
	PurposeLogin = "login"
	PurposeReset = "reset"
)

// PendingFlow is the transient state between steps of a multi-step auth flow:
// a login awaiting its OTP, or a password reset in progress.
type PendingFlow struct {
	Email       string `json:"email"`
	Purpose     string `json:"purpose"`
	OTPVerified bool   `json:"otpVerified"`
	// OTP is pinned once verified so the final reset step can thread it
	// through unchanged.
	OTP string `json:"otp,omitempty"`
}

// Store persists sessions and pending flows keyed by an opaque browser key.
// Get and GetPending return (nil, nil) when no live record exists; a non-nil
// error means the store itself could not answer.
type Store interface {
	Put(ctx context.Context, key string, sess Session, expiresAt time.Time) error
	Get(ctx context.Context, key string) (*Session, error)
	Delete(ctx context.Context, key string) error
	DeleteExpired(ctx context.Context) (int64, error)

	PutPending(ctx context.Context, key string, flow PendingFlow, expiresAt time.Time) error
	GetPending(ctx context.Context, key string) (*PendingFlow, error)
	DeletePending(ctx context.Context, key string) error
}

// NewKey generates an opaque 32-byte hex browser key.
func NewKey() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate key: %w", err)
	}
	return hex.EncodeToString(b), nil
}
