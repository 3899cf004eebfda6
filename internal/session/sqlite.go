package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rtb-ict/devicehub/internal/model"
)

// SQLiteStore is the default Store backend, backed by the service's own
// database so sessions survive restarts.
type SQLiteStore struct {
	db     *sql.DB
	sealer *Sealer
}

// NewSQLiteStore wraps db. sealer may be nil to store tokens unencrypted.
func NewSQLiteStore(db *sql.DB, sealer *Sealer) *SQLiteStore {
	return &SQLiteStore{db: db, sealer: sealer}
}

func (s *SQLiteStore) Put(ctx context.Context, key string, sess Session, expiresAt time.Time) error {
	if !sess.Valid() {
		return fmt.Errorf("put session: token and user are both required")
	}
	token, err := s.sealer.Seal([]byte(sess.Token))
	if err != nil {
		return fmt.Errorf("put session: %w", err)
	}
	user, err := json.Marshal(sess.User)
	if err != nil {
		return fmt.Errorf("put session: marshal user: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO sessions (key, token, user, expires_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET token = excluded.token, user = excluded.user, expires_at = excluded.expires_at`,
		key, token, string(user), expiresAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("put session: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Get(ctx context.Context, key string) (*Session, error) {
	var sealed []byte
	var userJSON string
	err := s.db.QueryRowContext(ctx,
		`SELECT token, user FROM sessions WHERE key = ? AND expires_at > ?`,
		key, time.Now().UTC(),
	).Scan(&sealed, &userJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	token, err := s.sealer.Open(sealed)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	var user model.User
	if err := json.Unmarshal([]byte(userJSON), &user); err != nil {
		return nil, fmt.Errorf("get session: unmarshal user: %w", err)
	}
	return &Session{Token: string(token), User: &user}, nil
}

func (s *SQLiteStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// DeleteExpired removes expired sessions and pending flows, returning the
// number of sessions removed.
func (s *SQLiteStore) DeleteExpired(ctx context.Context) (int64, error) {
	now := time.Now().UTC()
	result, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= ?`, now)
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM pending_flows WHERE expires_at <= ?`, now); err != nil {
		return 0, fmt.Errorf("delete expired pending flows: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}

func (s *SQLiteStore) PutPending(ctx context.Context, key string, flow PendingFlow, expiresAt time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO pending_flows (key, email, purpose, otp, otp_verified, expires_at) VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET email = excluded.email, purpose = excluded.purpose,
		 otp = excluded.otp, otp_verified = excluded.otp_verified, expires_at = excluded.expires_at`,
		key, flow.Email, flow.Purpose, flow.OTP, flow.OTPVerified, expiresAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("put pending flow: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetPending(ctx context.Context, key string) (*PendingFlow, error) {
	var flow PendingFlow
	err := s.db.QueryRowContext(ctx,
		`SELECT email, purpose, otp, otp_verified FROM pending_flows WHERE key = ? AND expires_at > ?`,
		key, time.Now().UTC(),
	).Scan(&flow.Email, &flow.Purpose, &flow.OTP, &flow.OTPVerified)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get pending flow: %w", err)
	}
	return &flow, nil
}

func (s *SQLiteStore) DeletePending(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM pending_flows WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete pending flow: %w", err)
	}
	return nil
}
