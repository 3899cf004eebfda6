package session

import (
	"context"
	"testing"
	"time"

	"github.com/rtb-ict/devicehub/internal/database"
	"github.com/rtb-ict/devicehub/internal/model"
)

func setupStore(t *testing.T, sealer *Sealer) *SQLiteStore {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewSQLiteStore(db, sealer)
}

func testUser() *model.User {
	return &model.User{
		ID:        1,
		FirstName: "Aline",
		LastName:  "Uwase",
		Email:     "aline@rtb.gov.rw",
		Role:      model.RoleAdmin,
		Status:    "active",
	}
}

func TestPutGetRoundTrip(t *testing.T) {
	store := setupStore(t, nil)
	ctx := context.Background()

	sess := Session{Token: "api-token-1", User: testUser()}
	if err := store.Put(ctx, "key1", sess, time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, err := store.Get(ctx, "key1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil {
		t.Fatal("expected session, got nil")
	}
	if got.Token != "api-token-1" {
		t.Errorf("token = %q, want %q", got.Token, "api-token-1")
	}
	if got.User.Email != "aline@rtb.gov.rw" {
		t.Errorf("email = %q, want %q", got.User.Email, "aline@rtb.gov.rw")
	}
	if got.User.Role != model.RoleAdmin {
		t.Errorf("role = %q, want %q", got.User.Role, model.RoleAdmin)
	}
}

func TestPutRejectsPartialSession(t *testing.T) {
	store := setupStore(t, nil)
	ctx := context.Background()

	if err := store.Put(ctx, "k", Session{Token: "t"}, time.Now().Add(time.Hour)); err == nil {
		t.Error("expected error for session without user")
	}
	if err := store.Put(ctx, "k", Session{User: testUser()}, time.Now().Add(time.Hour)); err == nil {
		t.Error("expected error for session without token")
	}
	got, err := store.Get(ctx, "k")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != nil {
		t.Error("expected no session persisted from rejected puts")
	}
}

func TestGetMissingKey(t *testing.T) {
	store := setupStore(t, nil)

	got, err := store.Get(context.Background(), "nope")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != nil {
		t.Error("expected nil for unknown key")
	}
}

func TestGetExpiredSession(t *testing.T) {
	store := setupStore(t, nil)
	ctx := context.Background()

	sess := Session{Token: "t", User: testUser()}
	if err := store.Put(ctx, "k", sess, time.Now().Add(-time.Minute)); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, err := store.Get(ctx, "k")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != nil {
		t.Error("expected nil for expired session")
	}
}

func TestPutReplacesSession(t *testing.T) {
	store := setupStore(t, nil)
	ctx := context.Background()

	if err := store.Put(ctx, "k", Session{Token: "old", User: testUser()}, time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("put old: %v", err)
	}
	newUser := testUser()
	newUser.Role = model.RoleTechnician
	if err := store.Put(ctx, "k", Session{Token: "new", User: newUser}, time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("put new: %v", err)
	}

	got, _ := store.Get(ctx, "k")
	if got.Token != "new" {
		t.Errorf("token = %q, want %q", got.Token, "new")
	}
	if got.User.Role != model.RoleTechnician {
		t.Errorf("role = %q, want wholesale replacement", got.User.Role)
	}
}

func TestDelete(t *testing.T) {
	store := setupStore(t, nil)
	ctx := context.Background()

	store.Put(ctx, "k", Session{Token: "t", User: testUser()}, time.Now().Add(time.Hour))
	if err := store.Delete(ctx, "k"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	got, _ := store.Get(ctx, "k")
	if got != nil {
		t.Error("expected session gone after delete")
	}
	// Deleting again is fine.
	if err := store.Delete(ctx, "k"); err != nil {
		t.Errorf("second delete: %v", err)
	}
}

func TestDeleteExpired(t *testing.T) {
	store := setupStore(t, nil)
	ctx := context.Background()

	store.Put(ctx, "live", Session{Token: "t", User: testUser()}, time.Now().Add(time.Hour))
	store.Put(ctx, "dead", Session{Token: "t", User: testUser()}, time.Now().Add(-time.Hour))
	store.PutPending(ctx, "stale", PendingFlow{Email: "a@b.com", Purpose: PurposeLogin}, time.Now().Add(-time.Minute))

	n, err := store.DeleteExpired(ctx)
	if err != nil {
		t.Fatalf("delete expired: %v", err)
	}
	if n != 1 {
		t.Errorf("deleted = %d, want 1", n)
	}
	if got, _ := store.Get(ctx, "live"); got == nil {
		t.Error("live session should survive the sweep")
	}
	if got, _ := store.GetPending(ctx, "stale"); got != nil {
		t.Error("stale pending flow should be swept")
	}
}

func TestPendingFlowRoundTrip(t *testing.T) {
	store := setupStore(t, nil)
	ctx := context.Background()

	flow := PendingFlow{Email: "u@rtb.gov.rw", Purpose: PurposeReset, OTPVerified: true, OTP: "123456"}
	if err := store.PutPending(ctx, "k", flow, time.Now().Add(15*time.Minute)); err != nil {
		t.Fatalf("put pending: %v", err)
	}

	got, err := store.GetPending(ctx, "k")
	if err != nil {
		t.Fatalf("get pending: %v", err)
	}
	if got == nil {
		t.Fatal("expected pending flow")
	}
	if got.Email != "u@rtb.gov.rw" || got.Purpose != PurposeReset || !got.OTPVerified || got.OTP != "123456" {
		t.Errorf("pending = %+v", got)
	}

	if err := store.DeletePending(ctx, "k"); err != nil {
		t.Fatalf("delete pending: %v", err)
	}
	if got, _ := store.GetPending(ctx, "k"); got != nil {
		t.Error("expected pending flow gone after delete")
	}
}

func TestPendingReplacedWholesale(t *testing.T) {
	store := setupStore(t, nil)
	ctx := context.Background()

	store.PutPending(ctx, "k", PendingFlow{Email: "first@rtb.gov.rw", Purpose: PurposeLogin}, time.Now().Add(time.Hour))
	store.PutPending(ctx, "k", PendingFlow{Email: "second@rtb.gov.rw", Purpose: PurposeLogin}, time.Now().Add(time.Hour))

	got, _ := store.GetPending(ctx, "k")
	if got.Email != "second@rtb.gov.rw" {
		t.Errorf("email = %q, want the replacing identity", got.Email)
	}
}

func TestSealedTokenAtRest(t *testing.T) {
	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i)
	}
	sealer, err := NewSealer(key)
	if err != nil {
		t.Fatalf("new sealer: %v", err)
	}
	store := setupStore(t, sealer)
	ctx := context.Background()

	if err := store.Put(ctx, "k", Session{Token: "secret-token", User: testUser()}, time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("put: %v", err)
	}

	var raw []byte
	if err := store.db.QueryRow(`SELECT token FROM sessions WHERE key = 'k'`).Scan(&raw); err != nil {
		t.Fatalf("raw read: %v", err)
	}
	if string(raw) == "secret-token" {
		t.Error("token stored in the clear despite sealer")
	}

	got, err := store.Get(ctx, "k")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Token != "secret-token" {
		t.Errorf("token = %q, want round-tripped plaintext", got.Token)
	}
}
