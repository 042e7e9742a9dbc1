// Package session holds the staff login state: bearer token, the account it
// belongs to and the cached restaurant name. It replaces ambient reads of a
// global token store with an explicit object loaded and cleared by callers.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/marcus/rsv/internal/config"
)

const sessionFile = "session.json"

// ErrNotLoggedIn is returned when no token is available
var ErrNotLoggedIn = errors.New("not logged in: run 'rsv auth login'")

// Session is the persisted login state
type Session struct {
	Token          string    `json:"token"`
	Email          string    `json:"email,omitempty"`
	ServerURL      string    `json:"server_url,omitempty"`
	RestaurantName string    `json:"restaurant_name,omitempty"`
	ExpiresAt      time.Time `json:"expires_at,omitempty"`
	LoggedInAt     time.Time `json:"logged_in_at,omitempty"`

	dir string
}

// New creates a session for a freshly issued token. The expiry is read
// from the token's exp claim when present.
func New(dir, token, email, serverURL string) *Session {
	s := &Session{
		Token:      token,
		Email:      email,
		ServerURL:  serverURL,
		LoggedInAt: time.Now().UTC(),
		dir:        dir,
	}
	if exp, ok := TokenExpiry(token); ok {
		s.ExpiresAt = exp
	}
	return s
}

// Load reads dir/session.json. A missing file yields an empty session, not
// an error. envToken, when set, overrides the stored token.
func Load(dir, envToken string) (*Session, error) {
	s := &Session{dir: dir}
	data, err := os.ReadFile(filepath.Join(dir, sessionFile))
	switch {
	case err == nil:
		if err := json.Unmarshal(data, s); err != nil {
			return nil, fmt.Errorf("parse %s: %w", sessionFile, err)
		}
	case os.IsNotExist(err):
	default:
		return nil, fmt.Errorf("read session: %w", err)
	}

	if envToken != "" && envToken != s.Token {
		s.Token = envToken
		s.ExpiresAt = time.Time{}
		if exp, ok := TokenExpiry(envToken); ok {
			s.ExpiresAt = exp
		}
	}
	return s, nil
}

// Save writes the session with 0600 permissions
func (s *Session) Save() error {
	if s.dir == "" {
		return errors.New("session has no directory")
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return config.WithLock(s.dir, func() error {
		return os.WriteFile(filepath.Join(s.dir, sessionFile), data, 0600)
	})
}

// Clear removes the stored session and forgets the token and cached name
func (s *Session) Clear() error {
	s.Token = ""
	s.Email = ""
	s.RestaurantName = ""
	s.ExpiresAt = time.Time{}
	if s.dir == "" {
		return nil
	}
	return config.WithLock(s.dir, func() error {
		err := os.Remove(filepath.Join(s.dir, sessionFile))
		if os.IsNotExist(err) {
			return nil
		}
		return err
	})
}

// LoggedIn reports whether a token is present
func (s *Session) LoggedIn() bool {
	return s != nil && s.Token != ""
}

// Expired reports whether the token has a known expiry before now
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}

// Require returns ErrNotLoggedIn when no usable token exists
func (s *Session) Require(now time.Time) error {
	if !s.LoggedIn() {
		return ErrNotLoggedIn
	}
	if s.Expired(now) {
		return fmt.Errorf("session expired at %s: run 'rsv auth login'", s.ExpiresAt.Local().Format(time.RFC822))
	}
	return nil
}

// SetRestaurantName caches a freshly fetched name. Empty names keep the
// previous value.
func (s *Session) SetRestaurantName(name string) bool {
	name = strings.TrimSpace(name)
	if name == "" || name == s.RestaurantName {
		return false
	}
	s.RestaurantName = name
	return true
}

// TokenExpiry extracts the exp claim without verifying the signature; the
// client never holds the signing key.
func TokenExpiry(token string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time.UTC(), true
}

// TokenSubject returns the email or sub claim, if any
func TokenSubject(token string) string {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return ""
	}
	if email, ok := claims["email"].(string); ok && email != "" {
		return email
	}
	sub, _ := claims.GetSubject()
	return sub
}
