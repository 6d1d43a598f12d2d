package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"refurrm/internal/app"
	"refurrm/internal/assistant"
	"refurrm/internal/ratelimit"
	"refurrm/internal/util"
	"refurrm/pkg/domain"
)

// Config wires required dependencies for the HTTP server.
type Config struct {
	App       *app.App
	Assistant *assistant.Client

	RedisAddr     string
	RedisPassword string

	SignupRateLimitPerMinute    int
	LoginRateLimitPerMinute     int
	BookingRateLimitPerMinute   int
	AssistantRateLimitPerMinute int
}

// Server exposes the portal's HTTP endpoints.
type Server struct {
	app       *app.App
	assistant *assistant.Client
	mux       *http.ServeMux

	signupLimiter    *ratelimit.FixedWindowLimiter
	loginLimiter     *ratelimit.FixedWindowLimiter
	bookingLimiter   *ratelimit.FixedWindowLimiter
	assistantLimiter *ratelimit.FixedWindowLimiter
}

// New constructs the server with routes configured.
func New(cfg Config) (*Server, error) {
	signupLimit := cfg.SignupRateLimitPerMinute
	if signupLimit <= 0 {
		signupLimit = 5
	}
	loginLimit := cfg.LoginRateLimitPerMinute
	if loginLimit <= 0 {
		loginLimit = 10
	}
	bookingLimit := cfg.BookingRateLimitPerMinute
	if bookingLimit <= 0 {
		bookingLimit = 5
	}
	assistantLimit := cfg.AssistantRateLimitPerMinute
	if assistantLimit <= 0 {
		assistantLimit = 20
	}
	rateWindow := time.Minute
	newLimiter := func(name string, limit int) (*ratelimit.FixedWindowLimiter, error) {
		prefix := "refurrm:ratelimit:" + name
		limiter, err := ratelimit.NewRedisFixedWindowLimiter(cfg.RedisAddr, cfg.RedisPassword, prefix, limit, rateWindow)
		if err != nil {
			return nil, fmt.Errorf("init %s limiter: %w", name, err)
		}
		return limiter, nil
	}
	signupLimiter, err := newLimiter("signup", signupLimit)
	if err != nil {
		return nil, err
	}
	loginLimiter, err := newLimiter("login", loginLimit)
	if err != nil {
		return nil, err
	}
	bookingLimiter, err := newLimiter("booking", bookingLimit)
	if err != nil {
		return nil, err
	}
	assistantLimiter, err := newLimiter("assistant", assistantLimit)
	if err != nil {
		return nil, err
	}
	s := &Server{
		app:              cfg.App,
		assistant:        cfg.Assistant,
		mux:              http.NewServeMux(),
		signupLimiter:    signupLimiter,
		loginLimiter:     loginLimiter,
		bookingLimiter:   bookingLimiter,
		assistantLimiter: assistantLimiter,
	}
	s.routes()
	return s, nil
}

// Router returns the configured handler.
func (s *Server) Router() http.Handler {
	return util.WithSecurityHeaders(util.WithCORS(util.WithRequestID(util.WithRequestLog(s.mux))))
}

func (s *Server) routes() {
	s.mux.HandleFunc("/healthz", s.handleHealth)

	// auth
	s.mux.HandleFunc("/api/auth/signup", s.handleSignup)
	s.mux.HandleFunc("/api/auth/login", s.handleLogin)
	s.mux.HandleFunc("/api/auth/logout", s.handleLogout)
	s.mux.Handle("/api/users/me", s.authenticated(s.handleMe))

	// public website
	s.mux.HandleFunc("/api/bookings", s.handleBooking)
	s.mux.HandleFunc("/api/assistant/chat", s.handleAssistantChat)

	// job board (auth required)
	s.mux.Handle("/api/jobs", s.authenticated(s.handleJobs))
	s.mux.Handle("/api/jobs/", s.authenticated(s.handleJobByID))
	s.mux.Handle("/api/jobs/open", s.authenticated(s.handleOpenJobs))
	s.mux.Handle("/api/my-jobs", s.authenticated(s.handleMyJobs))

	// profile & journal
	s.mux.Handle("/api/profile", s.authenticated(s.handleProfile))
	s.mux.Handle("/api/sessions", s.authenticated(s.handleSessions))
	s.mux.Handle("/api/sessions/summary", s.authenticated(s.handleSessionSummary))

	// bookkeeping (admin enforced in the app layer)
	s.mux.Handle("/api/expenses", s.authenticated(s.handleExpenses))
	s.mux.Handle("/api/expenses/summary", s.authenticated(s.handleExpenseSummary))
	s.mux.Handle("/api/expenses/", s.authenticated(s.handleExpenseByID))
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// auth wrappers
type authHandler func(http.ResponseWriter, *http.Request, domain.User)

func (s *Server) authenticated(next authHandler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := s.authorize(r)
		if !ok {
			s.audit(r, "portal.authorize", "fail")
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next(w, r, user)
	})
}

func (s *Server) authorize(r *http.Request) (domain.User, bool) {
	token, ok := bearerToken(r)
	if !ok {
		return domain.User{}, false
	}
	user, ok, err := s.app.UserFromToken(token)
	if err != nil || !ok {
		s.audit(r, "portal.token.verify", "fail", "reason", "invalid_or_expired_token")
		return domain.User{}, false
	}
	return user, true
}

func methodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	if token == "" {
		return "", false
	}
	return token, true
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeErrorCode(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, map[string]string{"error": msg, "code": code})
}

// writeAppError maps app layer failures to HTTP statuses. Anything
// unrecognized is a 500 with no internal detail leaked.
func writeAppError(w http.ResponseWriter, err error) {
	var ve *app.ValidationError
	switch {
	case errors.As(err, &ve):
		writeError(w, http.StatusBadRequest, ve.Error())
	case errors.Is(err, app.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, app.ErrForbidden):
		writeError(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, app.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, app.ErrClaimConflict):
		writeErrorCode(w, http.StatusConflict, "claim_conflict", app.ErrClaimConflict.Error())
	case errors.Is(err, app.ErrInvalidTransition):
		writeErrorCode(w, http.StatusConflict, "invalid_transition", app.ErrInvalidTransition.Error())
	default:
		slog.Error("request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func (s *Server) audit(r *http.Request, event, outcome string, attrs ...any) {
	logAttrs := []any{
		"event", event,
		"outcome", outcome,
		"path", r.URL.Path,
		"method", r.Method,
		"ip", clientIP(r),
	}
	logAttrs = append(logAttrs, attrs...)
	if outcome == "success" {
		slog.Info("security_event", logAttrs...)
		return
	}
	slog.Warn("security_event", logAttrs...)
}

func (s *Server) allowRate(w http.ResponseWriter, r *http.Request, limiter *ratelimit.FixedWindowLimiter, msg string) bool {
	key := r.URL.Path + "|" + clientIP(r)
	if limiter.Allow(key) {
		return true
	}
	w.Header().Set("Retry-After", "60")
	writeError(w, http.StatusTooManyRequests, msg)
	return false
}

func clientIP(r *http.Request) string {
	if xfwd := strings.TrimSpace(r.Header.Get("X-Forwarded-For")); xfwd != "" {
		parts := strings.Split(xfwd, ",")
		if len(parts) > 0 {
			ip := strings.TrimSpace(parts[0])
			if ip != "" {
				return ip
			}
		}
	}
	if realIP := strings.TrimSpace(r.Header.Get("X-Real-IP")); realIP != "" {
		return realIP
	}
	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err == nil && host != "" {
		return host
	}
	return strings.TrimSpace(r.RemoteAddr)
}
