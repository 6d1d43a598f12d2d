package store

import (
	"testing"
	"time"
)

func TestJWTSessionRoundTrip(t *testing.T) {
	s := NewJWTSessionStore("test-secret", time.Hour)
	token, err := s.NewSession("user-1")
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	uid, ok, err := s.GetUserIDByToken(token)
	if err != nil || !ok {
		t.Fatalf("get user by token: ok=%v err=%v", ok, err)
	}
	if uid != "user-1" {
		t.Fatalf("subject = %q, want user-1", uid)
	}
}

func TestJWTSessionRejectsWrongSecret(t *testing.T) {
	issuer := NewJWTSessionStore("secret-a", time.Hour)
	token, err := issuer.NewSession("user-1")
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	verifier := NewJWTSessionStore("secret-b", time.Hour)
	if _, ok, err := verifier.GetUserIDByToken(token); ok || err == nil {
		t.Fatalf("expected verification failure with wrong secret")
	}
}

func TestJWTSessionRejectsExpired(t *testing.T) {
	s := NewJWTSessionStore("test-secret", -time.Minute)
	token, err := s.NewSession("user-1")
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	if _, ok, err := s.GetUserIDByToken(token); ok || err == nil {
		t.Fatalf("expected expired token to be rejected")
	}
}
