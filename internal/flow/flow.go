// Package flow drives the multi-step authentication sequences against the
// inventory backend: login → OTP verification → session, and the three-step
// password reset. It is the only writer of session and pending-flow state.
package flow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/rtb-ict/devicehub/internal/gateway"
	"github.com/rtb-ict/devicehub/internal/session"
)

// State is the position of a browser key in the login flow.
type State int

const (
	StateUnauthenticated State = iota
	StateCredentialsSubmitted
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateCredentialsSubmitted:
		return "credentials_submitted"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unauthenticated"
	}
}

// Contract violations detected locally, without a backend call. Their text is
// surfaced to the dashboard as-is.
var (
	ErrNoPendingLogin        = errors.New("No login is awaiting verification. Please sign in again.")
	ErrInvalidServerResponse = errors.New("Invalid response from server")
	ErrNoResetFlow           = errors.New("No password reset is in progress for this email.")
	ErrResetNotVerified      = errors.New("The reset code has not been verified yet.")
)

// Config bounds the lifetimes of the two kinds of state the manager writes.
type Config struct {
	// SessionTTL is how long an installed session lives. Defaults to 30 days.
	SessionTTL time.Duration
	// PendingTTL is how long a login or reset may sit between steps.
	// Defaults to 15 minutes.
	PendingTTL time.Duration
}

// Manager owns the auth state transitions. Handlers and middleware only read
// session state; every mutation goes through here.
type Manager struct {
	gw         *gateway.Client
	store      session.Store
	sessionTTL time.Duration
	pendingTTL time.Duration
	logger     *slog.Logger
}

func NewManager(gw *gateway.Client, store session.Store, cfg Config, logger *slog.Logger) *Manager {
	if cfg.SessionTTL == 0 {
		cfg.SessionTTL = 30 * 24 * time.Hour
	}
	if cfg.PendingTTL == 0 {
		cfg.PendingTTL = 15 * time.Minute
	}
	return &Manager{
		gw:         gw,
		store:      store,
		sessionTTL: cfg.SessionTTL,
		pendingTTL: cfg.PendingTTL,
		logger:     logger,
	}
}

// Login submits credentials. On success the backend emails an OTP and the key
// moves to CredentialsSubmitted; no session is installed here under any
// circumstances. A new login replaces whatever pending identity the key held.
func (m *Manager) Login(ctx context.Context, key, email, password string) (string, error) {
	resp, err := m.gw.Login(ctx, email, password)
	if err != nil {
		return "", err
	}

	pending := session.PendingFlow{Email: email, Purpose: session.PurposeLogin}
	if err := m.store.PutPending(ctx, key, pending, time.Now().Add(m.pendingTTL)); err != nil {
		return "", fmt.Errorf("record pending login: %w", err)
	}
	m.logger.Info("login accepted, otp pending", "email", email)
	return resp.Message, nil
}

// VerifyOTP exchanges the emailed code for a session. The response must carry
// both a token and a profile; a 2xx with either missing is an error and the
// key stays at CredentialsSubmitted.
func (m *Manager) VerifyOTP(ctx context.Context, key, email, otp string) (*session.Session, error) {
	pending, err := m.store.GetPending(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("load pending login: %w", err)
	}
	if pending == nil || pending.Purpose != session.PurposeLogin || !strings.EqualFold(pending.Email, email) {
		return nil, ErrNoPendingLogin
	}

	resp, err := m.gw.VerifyOTP(ctx, email, otp)
	if err != nil {
		return nil, err
	}
	if resp.Token == "" || resp.User == nil {
		return nil, ErrInvalidServerResponse
	}

	sess := session.Session{Token: resp.Token, User: resp.User}
	if err := m.store.Put(ctx, key, sess, time.Now().Add(m.sessionTTL)); err != nil {
		return nil, fmt.Errorf("install session: %w", err)
	}
	if err := m.store.DeletePending(ctx, key); err != nil {
		// The session is installed; a leftover pending row only wastes a slot
		// until its TTL.
		m.logger.Warn("clear pending login", "error", err)
	}
	m.logger.Info("session installed", "email", email, "role", resp.User.Role)
	return &sess, nil
}

// ForgotPassword starts the reset flow for email.
func (m *Manager) ForgotPassword(ctx context.Context, key, email string) (string, error) {
	msg, err := m.gw.ForgotPassword(ctx, email)
	if err != nil {
		return "", err
	}

	pending := session.PendingFlow{Email: email, Purpose: session.PurposeReset}
	if err := m.store.PutPending(ctx, key, pending, time.Now().Add(m.pendingTTL)); err != nil {
		return "", fmt.Errorf("record reset flow: %w", err)
	}
	return msg, nil
}

// VerifyResetOTP confirms the reset code and pins it for the final step.
func (m *Manager) VerifyResetOTP(ctx context.Context, key, email, otp string) (string, error) {
	pending, err := m.store.GetPending(ctx, key)
	if err != nil {
		return "", fmt.Errorf("load reset flow: %w", err)
	}
	if pending == nil || pending.Purpose != session.PurposeReset || !strings.EqualFold(pending.Email, email) {
		return "", ErrNoResetFlow
	}

	msg, err := m.gw.VerifyResetOTP(ctx, email, otp)
	if err != nil {
		return "", err
	}

	pending.OTPVerified = true
	pending.OTP = otp
	if err := m.store.PutPending(ctx, key, *pending, time.Now().Add(m.pendingTTL)); err != nil {
		return "", fmt.Errorf("record verified reset: %w", err)
	}
	return msg, nil
}

// ResetPassword completes the flow. The request is refused locally — no
// backend call — unless VerifyResetOTP succeeded for this email and the OTP
// matches the one verified there.
func (m *Manager) ResetPassword(ctx context.Context, key, email, otp, newPassword string) (string, error) {
	pending, err := m.store.GetPending(ctx, key)
	if err != nil {
		return "", fmt.Errorf("load reset flow: %w", err)
	}
	if pending == nil || pending.Purpose != session.PurposeReset || !strings.EqualFold(pending.Email, email) {
		return "", ErrNoResetFlow
	}
	if !pending.OTPVerified || pending.OTP != otp {
		return "", ErrResetNotVerified
	}

	msg, err := m.gw.ResetPassword(ctx, email, otp, newPassword)
	if err != nil {
		return "", err
	}

	if err := m.store.DeletePending(ctx, key); err != nil {
		m.logger.Warn("clear reset flow", "error", err)
	}
	return msg, nil
}

// Logout clears the session and any pending identity. It is a local
// transition, requires no backend call, and is idempotent.
func (m *Manager) Logout(ctx context.Context, key string) error {
	sessErr := m.store.Delete(ctx, key)
	pendErr := m.store.DeletePending(ctx, key)
	if sessErr != nil {
		return fmt.Errorf("logout: %w", sessErr)
	}
	if pendErr != nil {
		return fmt.Errorf("logout: %w", pendErr)
	}
	return nil
}

// State reports where the key currently sits in the login flow.
func (m *Manager) State(ctx context.Context, key string) (State, error) {
	sess, err := m.store.Get(ctx, key)
	if err != nil {
		return StateUnauthenticated, fmt.Errorf("load session: %w", err)
	}
	if sess.Valid() {
		return StateAuthenticated, nil
	}

	pending, err := m.store.GetPending(ctx, key)
	if err != nil {
		return StateUnauthenticated, fmt.Errorf("load pending login: %w", err)
	}
	if pending != nil && pending.Purpose == session.PurposeLogin {
		return StateCredentialsSubmitted, nil
	}
	return StateUnauthenticated, nil
}
