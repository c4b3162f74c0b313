// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session provides the client session store.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/raddesk/raddesk-tui/internal/util"
)

// =============================================================================
// SESSION TYPES
// =============================================================================

// Role is the access role carried by a session. Exactly one per session.
type Role string

const (
	RoleRadiologist Role = "radiologist"
	RolePatient     Role = "patient"
	RoleLabAdmin    Role = "labadmin"
)

// Valid reports whether the role is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleRadiologist, RolePatient, RoleLabAdmin:
		return true
	}
	return false
}

// AuthMethod records how a session was established.
type AuthMethod string

const (
	AuthMethodPassword  AuthMethod = "password"
	AuthMethodPhone     AuthMethod = "phone"
	AuthMethodFederated AuthMethod = "federated"
)

// Session is the authenticated identity held by the client.
type Session struct {
	Subject       string     `json:"subject"`
	DisplayName   string     `json:"display_name"`
	Role          Role       `json:"role"`
	Authenticated bool       `json:"authenticated"`
	Method        AuthMethod `json:"auth_method"`
}

// State is the lifecycle state of the store.
type State int

const (
	// StateLoading is the initial state while Restore runs. Never re-entered.
	StateLoading State = iota
	StateAuthenticated
	StateUnauthenticated
)

// String returns the state name for display and logging.
func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateAuthenticated:
		return "authenticated"
	case StateUnauthenticated:
		return "unauthenticated"
	default:
		return "unknown"
	}
}

// =============================================================================
// AUTH ERRORS
// =============================================================================

var (
	// ErrInvalidCredentials covers a wrong passphrase or empty identifier.
	// The message intentionally states the required passphrase; the
	// passphrase path is a dev-mode stub, not production auth.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidPhoneFormat indicates the phone number did not normalize
	// to exactly ten digits.
	ErrInvalidPhoneFormat = errors.New("phone number must be 10 digits")

	// ErrUnsupportedRegionalPrefix indicates a leading digit outside the
	// allowed set for the selected country code.
	ErrUnsupportedRegionalPrefix = errors.New("phone number must start with 6, 7, 8 or 9")
)

// AuthError wraps one of the sentinel auth errors with a user-facing message.
type AuthError struct {
	Kind    error
	Message string
}

// Error returns the user-facing message.
func (e *AuthError) Error() string { return e.Message }

// Unwrap exposes the sentinel for errors.Is.
func (e *AuthError) Unwrap() error { return e.Kind }

// =============================================================================
// SESSION STORE
// =============================================================================

// sessionFile is the fixed name of the persisted session record.
const sessionFile = "session.json"

// Config holds store configuration.
type Config struct {
	// Dir is the directory holding the persisted session record.
	Dir string

	// Passphrase is the shared dev-mode passphrase. Ignored unless
	// PassphraseEnabled.
	Passphrase string

	// PassphraseEnabled gates the passphrase login path.
	PassphraseEnabled bool
}

// DefaultPassphrase is the dev-mode shared passphrase.
const DefaultPassphrase = "password123"

// Store owns the current session and its persisted copy.
//
// Mutations arrive from the update loop only, but the mutex keeps the
// store safe for reads from command goroutines.
type Store struct {
	mu      sync.Mutex
	cfg     Config
	state   State
	current *Session
}

// NewStore creates a session store rooted at cfg.Dir.
func NewStore(cfg Config) *Store {
	if cfg.Passphrase == "" {
		cfg.Passphrase = DefaultPassphrase
	}
	return &Store{cfg: cfg, state: StateLoading}
}

// State returns the current lifecycle state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Current returns the active session, or nil when unauthenticated.
func (s *Store) Current() *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil
	}
	out := *s.current
	return &out
}

// =============================================================================
// LOGIN / LOGOUT
// =============================================================================

// Login authenticates an identifier/secret pair for the given role.
// The secret must equal the configured shared passphrase and the
// identifier must be non-empty after trimming. Radiologists get a
// courtesy "Dr." prefix unless the name already carries one.
// On success the session is persisted.
func (s *Store) Login(identifier, secret string, role Role) (*Session, error) {
	identifier = strings.TrimSpace(identifier)

	if !s.cfg.PassphraseEnabled {
		return nil, &AuthError{
			Kind:    ErrInvalidCredentials,
			Message: "Password login is disabled",
		}
	}
	if !s.passphraseOK(secret) || identifier == "" {
		return nil, &AuthError{
			Kind:    ErrInvalidCredentials,
			Message: fmt.Sprintf("Invalid credentials. Password must be %q", s.cfg.Passphrase),
		}
	}

	displayName := identifier
	if role == RoleRadiologist && !strings.HasPrefix(strings.ToLower(displayName), "dr") {
		displayName = "Dr. " + displayName
	}

	sess := &Session{
		Subject:       identifier,
		DisplayName:   displayName,
		Role:          role,
		Authenticated: true,
		Method:        AuthMethodPassword,
	}
	s.install(sess)
	return sess, nil
}

// LoginWithPhone authenticates a phone/country-code pair for the given
// role. The number must normalize to exactly ten digits; for the +91
// country code the leading digit must be 6-9.
func (s *Store) LoginWithPhone(number, countryCode string, role Role) (*Session, error) {
	digits := normalizeDigits(number)

	if len(digits) != 10 || !allDigits(digits) {
		return nil, &AuthError{
			Kind:    ErrInvalidPhoneFormat,
			Message: "Please enter a valid 10-digit phone number",
		}
	}
	if countryCode == "+91" && !strings.ContainsRune("6789", rune(digits[0])) {
		return nil, &AuthError{
			Kind:    ErrUnsupportedRegionalPrefix,
			Message: "Indian mobile numbers start with 6, 7, 8 or 9",
		}
	}

	sess := &Session{
		Subject:       countryCode + digits,
		DisplayName:   countryCode + " " + digits,
		Role:          role,
		Authenticated: true,
		Method:        AuthMethodPhone,
	}
	s.install(sess)
	return sess, nil
}

// Logout clears the in-memory session and the persisted copy.
func (s *Store) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = nil
	s.state = StateUnauthenticated
	os.Remove(s.path())
}

// =============================================================================
// PERSISTENCE
// =============================================================================

// Restore reads the persisted session at startup. A missing, corrupt, or
// non-authenticated record is treated as absence; corrupt records are
// cleared so the next start does not re-read them. Restore never returns
// an error to the caller.
func (s *Store) Restore() *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path())
	if err != nil {
		s.state = StateUnauthenticated
		return nil
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil || !sess.Authenticated || !sess.Role.Valid() {
		os.Remove(s.path())
		s.state = StateUnauthenticated
		return nil
	}

	s.current = &sess
	s.state = StateAuthenticated
	out := sess
	return &out
}

// install makes sess current and persists it under the fixed key.
// Persistence failure is non-fatal: the in-memory session still works
// for this run.
func (s *Store) install(sess *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = sess
	s.state = StateAuthenticated

	if data, err := json.MarshalIndent(sess, "", "  "); err == nil {
		if err := os.MkdirAll(s.cfg.Dir, 0o755); err == nil {
			util.AtomicWriteFile(s.path(), data, 0o600)
		}
	}
}

// path returns the location of the persisted session record.
func (s *Store) path() string {
	return filepath.Join(s.cfg.Dir, sessionFile)
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// passphraseOK checks the dev-mode shared passphrase. When the
// passphrase path is disabled in config, no secret passes.
func (s *Store) passphraseOK(secret string) bool {
	return s.cfg.PassphraseEnabled && secret == s.cfg.Passphrase
}

// normalizeDigits strips spaces, dashes, and parentheses from a phone
// number, returning only its digits. Any other character invalidates the
// number by surviving into the result.
func normalizeDigits(number string) string {
	var b strings.Builder
	for _, r := range number {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '(' || r == ')':
			// separator, skip
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// allDigits reports whether s consists only of ASCII digits.
func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
