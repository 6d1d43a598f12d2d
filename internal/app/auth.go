package app

import (
	"fmt"
	"log/slog"
	"strings"

	"refurrm/internal/util"
	"refurrm/pkg/auth"
	"refurrm/pkg/domain"
)

// SignUpInput is the payload for account creation.
type SignUpInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"fullName"`
}

// SignUp creates an account and opens a session for it. The first account
// ever created becomes the admin; every later account is a notary.
func (a *App) SignUp(in SignUpInput) (domain.User, string, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" {
		return domain.User{}, "", missing("email")
	}
	if in.Password == "" {
		return domain.User{}, "", missing("password")
	}
	if len(in.Password) < 8 {
		return domain.User{}, "", &ValidationError{Field: "password (min 8 characters)"}
	}
	if strings.TrimSpace(in.FullName) == "" {
		return domain.User{}, "", missing("fullName")
	}

	taken, err := a.store.HasUserEmail(email)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("check email: %w", err)
	}
	if taken {
		return domain.User{}, "", &ValidationError{Field: "email (already registered)"}
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("hash password: %w", err)
	}

	count, err := a.store.UserCount()
	if err != nil {
		return domain.User{}, "", fmt.Errorf("count users: %w", err)
	}
	role := domain.RoleNotary
	if count == 0 {
		role = domain.RoleAdmin
	}

	now := a.now()
	u := domain.User{
		ID:           util.NewID(),
		Email:        email,
		PasswordHash: hash,
		FullName:     strings.TrimSpace(in.FullName),
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := a.store.SaveUser(u); err != nil {
		return domain.User{}, "", fmt.Errorf("save user: %w", err)
	}
	slog.Info("user signed up", "user_id", u.ID, "role", u.Role)

	token, err := a.sessions.NewSession(u.ID)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("open session: %w", err)
	}
	return u, token, nil
}

// Login verifies credentials and opens a session.
func (a *App) Login(email, password string) (domain.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return domain.User{}, "", ErrInvalidCredentials
	}
	u, ok, err := a.store.GetUserByEmail(email)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("lookup user: %w", err)
	}
	if !ok || !auth.CheckPassword(password, u.PasswordHash) {
		return domain.User{}, "", ErrInvalidCredentials
	}
	token, err := a.sessions.NewSession(u.ID)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("open session: %w", err)
	}
	return u, token, nil
}

// UserFromToken resolves a session token to its user.
func (a *App) UserFromToken(token string) (domain.User, bool, error) {
	uid, ok, err := a.sessions.GetUserIDByToken(token)
	if err != nil || !ok {
		return domain.User{}, false, err
	}
	return a.store.GetUserByID(uid)
}

// Logout invalidates a session token.
func (a *App) Logout(token string) error {
	return a.sessions.DeleteSession(token)
}
