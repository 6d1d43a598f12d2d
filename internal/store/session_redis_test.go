package store

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func TestRedisSessionRoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	s := NewRedisSessionStore(mr.Addr(), "", time.Hour)

	token, err := s.NewSession("user-1")
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	uid, ok, err := s.GetUserIDByToken(token)
	if err != nil || !ok || uid != "user-1" {
		t.Fatalf("resolve token: uid=%q ok=%v err=%v", uid, ok, err)
	}

	if err := s.DeleteSession(token); err != nil {
		t.Fatalf("delete session: %v", err)
	}
	if _, ok, err := s.GetUserIDByToken(token); err != nil || ok {
		t.Fatalf("deleted token should not resolve: ok=%v err=%v", ok, err)
	}
}

func TestRedisSessionExpires(t *testing.T) {
	mr := miniredis.RunT(t)
	s := NewRedisSessionStore(mr.Addr(), "", time.Minute)

	token, err := s.NewSession("user-1")
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	mr.FastForward(2 * time.Minute)
	if _, ok, err := s.GetUserIDByToken(token); err != nil || ok {
		t.Fatalf("expired token should not resolve: ok=%v err=%v", ok, err)
	}
}
