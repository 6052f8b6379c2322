// Package auth implements the shared-password login and the session store
// backing the ShareBox cookie.
package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidPassword is returned when the supplied password does not match.
	ErrInvalidPassword = errors.New("auth: invalid password")
	// ErrSessionNotFound is returned for unknown or expired session tokens.
	ErrSessionNotFound = errors.New("auth: session not found")
	// ErrNoPassword is returned when neither a password nor a hash is configured.
	ErrNoPassword = errors.New("auth: no password configured")
)

// Session is a logged-in browser or CLI client.
type Session struct {
	Token     string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Expired reports whether the session has passed its expiry. Sessions with a
// zero ExpiresAt never expire.
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// Store persists sessions.
type Store interface {
	Put(ctx context.Context, s Session) error
	Get(ctx context.Context, token string) (Session, error)
	Delete(ctx context.Context, token string) error
	Prune(ctx context.Context, now time.Time) (int, error)
}

// Options configures a Manager.
type Options struct {
	// Password is compared in constant time when PasswordHash is empty.
	Password string
	// PasswordHash is a bcrypt hash and takes precedence over Password.
	PasswordHash string
	// TTL bounds session lifetime; zero keeps sessions until logout.
	TTL time.Duration
}

// Manager checks passwords and issues session tokens.
type Manager struct {
	store    Store
	password []byte
	hash     []byte
	ttl      time.Duration
	now      func() time.Time
}

// NewManager builds a Manager over store.
func NewManager(store Store, opts Options) (*Manager, error) {
	if store == nil {
		return nil, errors.New("auth: store is required")
	}
	hash := strings.TrimSpace(opts.PasswordHash)
	if hash == "" && opts.Password == "" {
		return nil, ErrNoPassword
	}
	if hash != "" {
		if _, err := bcrypt.Cost([]byte(hash)); err != nil {
			return nil, fmt.Errorf("auth: password hash: %w", err)
		}
	}
	if opts.TTL < 0 {
		return nil, fmt.Errorf("auth: negative session ttl %s", opts.TTL)
	}
	return &Manager{
		store:    store,
		password: []byte(opts.Password),
		hash:     []byte(hash),
		ttl:      opts.TTL,
		now:      time.Now,
	}, nil
}

// CheckPassword reports whether password matches the configured secret.
func (m *Manager) CheckPassword(password string) bool {
	if len(m.hash) > 0 {
		return bcrypt.CompareHashAndPassword(m.hash, []byte(password)) == nil
	}
	return subtle.ConstantTimeCompare(m.password, []byte(password)) == 1
}

// Login verifies password and stores a new session.
func (m *Manager) Login(ctx context.Context, password string) (Session, error) {
	if !m.CheckPassword(password) {
		return Session{}, ErrInvalidPassword
	}
	now := m.now().UTC()
	s := Session{Token: uuid.NewString(), CreatedAt: now}
	if m.ttl > 0 {
		s.ExpiresAt = now.Add(m.ttl)
	}
	if err := m.store.Put(ctx, s); err != nil {
		return Session{}, fmt.Errorf("auth: store session: %w", err)
	}
	return s, nil
}

// Validate returns the live session for token.
func (m *Manager) Validate(ctx context.Context, token string) (Session, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Session{}, ErrSessionNotFound
	}
	s, err := m.store.Get(ctx, token)
	if err != nil {
		return Session{}, err
	}
	if s.Expired(m.now()) {
		_ = m.store.Delete(ctx, token)
		return Session{}, ErrSessionNotFound
	}
	return s, nil
}

// Logout removes the session. Unknown tokens are not an error.
func (m *Manager) Logout(ctx context.Context, token string) error {
	if strings.TrimSpace(token) == "" {
		return nil
	}
	return m.store.Delete(ctx, token)
}

// Prune drops expired sessions and returns how many were removed.
func (m *Manager) Prune(ctx context.Context) (int, error) {
	return m.store.Prune(ctx, m.now())
}

// HashPassword returns a bcrypt hash suitable for auth.password_hash.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", ErrNoPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("auth: hash password: %w", err)
	}
	return string(hash), nil
}
