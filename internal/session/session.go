// Package session holds the authenticated user's credential and persists it
// between CLI invocations. A *Session is passed explicitly to the gateway
// client; nothing in the sync core reads credentials from ambient storage.
package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/golang-jwt/jwt/v5"

	"github.com/alfredjeanlab/crm/internal/model"
)

// ErrNoSession is returned by Store.Load when nobody is logged in.
var ErrNoSession = errors.New("not logged in")

// Session is a logged-in user's credential set.
type Session struct {
	AccessToken  string    `toml:"access_token"`
	RefreshToken string    `toml:"refresh_token,omitempty"`
	UserID       string    `toml:"user_id,omitempty"`
	Username     string    `toml:"username,omitempty"`
	Email        string    `toml:"email,omitempty"`
	APIURL       string    `toml:"api_url,omitempty"`
	CreatedAt    time.Time `toml:"created_at"`
}

// FromAuthResult builds a session from a login or signup response.
func FromAuthResult(res *model.AuthResult, apiURL string) *Session {
	return &Session{
		AccessToken:  res.AccessToken,
		RefreshToken: res.RefreshToken,
		UserID:       res.User.ID,
		Username:     res.User.Username,
		Email:        res.User.Email,
		APIURL:       apiURL,
		CreatedAt:    time.Now().UTC(),
	}
}

// Token returns the bearer credential, or "" for a nil session.
func (s *Session) Token() string {
	if s == nil {
		return ""
	}
	return s.AccessToken
}

// ExpiresAt reads the exp claim from the access token without verifying the
// signature. ok is false for opaque tokens or tokens without exp.
func (s *Session) ExpiresAt() (exp time.Time, ok bool) {
	if s.Token() == "" {
		return time.Time{}, false
	}
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(s.AccessToken, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}

// Expired reports whether the access token carries an exp claim that lies
// before now. Tokens without a readable expiry never count as expired; the
// server remains the authority.
func (s *Session) Expired(now time.Time) bool {
	exp, ok := s.ExpiresAt()
	return ok && !now.Before(exp)
}

// Store persists a single session as TOML on disk.
type Store struct {
	path string
}

// NewStore returns a store backed by the file at path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// DefaultPath is ~/.local/state/crm/session.toml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "state", "crm", "session.toml"), nil
}

// Path returns the file backing the store.
func (st *Store) Path() string { return st.path }

// Load reads the stored session. It returns ErrNoSession when the file is
// missing or holds no token.
func (st *Store) Load() (*Session, error) {
	var s Session
	if _, err := toml.DecodeFile(st.path, &s); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNoSession
		}
		return nil, fmt.Errorf("reading session %s: %w", st.path, err)
	}
	if s.AccessToken == "" {
		return nil, ErrNoSession
	}
	return &s, nil
}

// Save writes the session with owner-only permissions.
func (st *Store) Save(s *Session) error {
	if err := os.MkdirAll(filepath.Dir(st.path), 0o700); err != nil {
		return fmt.Errorf("creating session dir: %w", err)
	}
	f, err := os.OpenFile(st.path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("opening session file: %w", err)
	}
	defer f.Close()
	if err := toml.NewEncoder(f).Encode(s); err != nil {
		return fmt.Errorf("encoding session: %w", err)
	}
	return nil
}

// Clear removes the stored session. Clearing an absent session is not an error.
func (st *Store) Clear() error {
	if err := os.Remove(st.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing session: %w", err)
	}
	return nil
}
