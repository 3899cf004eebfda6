package session

import (
	"bytes"
	"testing"
)

func TestSealOpenRoundTrip(t *testing.T) {
	key := bytes.Repeat([]byte{7}, 32)
	s, err := NewSealer(key)
	if err != nil {
		t.Fatalf("new sealer: %v", err)
	}

	sealed, err := s.Seal([]byte("api-token"))
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	if bytes.Contains(sealed, []byte("api-token")) {
		t.Error("sealed output contains plaintext")
	}

	opened, err := s.Open(sealed)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if string(opened) != "api-token" {
		t.Errorf("opened = %q, want %q", opened, "api-token")
	}
}

func TestOpenRejectsTampering(t *testing.T) {
	s, err := NewSealer(bytes.Repeat([]byte{7}, 32))
	if err != nil {
		t.Fatalf("new sealer: %v", err)
	}
	sealed, _ := s.Seal([]byte("api-token"))
	sealed[len(sealed)-1] ^= 0xFF

	if _, err := s.Open(sealed); err == nil {
		t.Error("expected error for tampered ciphertext")
	}
}

func TestNewSealerRejectsShortKey(t *testing.T) {
	if _, err := NewSealer([]byte("short")); err == nil {
		t.Error("expected error for short key")
	}
}

func TestNilSealerPassthrough(t *testing.T) {
	var s *Sealer

	sealed, err := s.Seal([]byte("plain"))
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	if string(sealed) != "plain" {
		t.Errorf("sealed = %q, want passthrough", sealed)
	}
	opened, err := s.Open(sealed)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if string(opened) != "plain" {
		t.Errorf("opened = %q, want passthrough", opened)
	}
}

func TestSessionValid(t *testing.T) {
	if (&Session{Token: "t"}).Valid() {
		t.Error("token without user must not be valid")
	}
	if (&Session{User: testUser()}).Valid() {
		t.Error("user without token must not be valid")
	}
	var nilSession *Session
	if nilSession.Valid() {
		t.Error("nil session must not be valid")
	}
	if !(&Session{Token: "t", User: testUser()}).Valid() {
		t.Error("token+user session must be valid")
	}
}
