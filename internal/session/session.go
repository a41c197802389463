// Package session is the mocked phone + OTP login. No code is ever sent; any
// four character code is accepted. It only gates access to rooms.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/comigor/roomchat/internal/kv"
	"github.com/comigor/roomchat/internal/logger"
	"github.com/comigor/roomchat/internal/metrics"
)

var phoneRegex = regexp.MustCompile(`^\d{10}$`)

var (
	ErrInvalidPhone        = errors.New("session: enter a valid 10-digit number")
	ErrCountryCode         = errors.New("session: country code is required")
	ErrNoPendingLogin      = errors.New("session: request an OTP first")
	ErrInvalidOTP          = errors.New("session: please enter a 4-digit OTP")
	ErrUnauthenticated     = errors.New("session: not logged in")
	ErrOTPAlreadyRequested = errors.New("session: OTP already sent")
)

// User is the logged-in identity.
type User struct {
	Phone       string `json:"phone"`
	CountryCode string `json:"countryCode"`
}

// Manager drives the login flow and owns the current user record.
type Manager struct {
	mu      sync.Mutex
	rec     kv.Store
	pending *User
}

// NewManager creates a manager persisting the user in rec.
func NewManager(rec kv.Store) *Manager {
	return &Manager{rec: rec}
}

// RequestOTP validates the login form and pretends to send a code.
// A second request before verification is rejected.
func (m *Manager) RequestOTP(phone, countryCode string) error {
	phone = strings.TrimSpace(phone)
	countryCode = strings.TrimSpace(countryCode)
	if !phoneRegex.MatchString(phone) {
		return ErrInvalidPhone
	}
	if countryCode == "" {
		return ErrCountryCode
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pending != nil {
		return ErrOTPAlreadyRequested
	}
	m.pending = &User{Phone: phone, CountryCode: countryCode}
	logger.L.Info("OTP sent", "country_code", countryCode)
	return nil
}

// VerifyOTP accepts any four character code and stores the pending user.
func (m *Manager) VerifyOTP(ctx context.Context, code string) (User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.pending == nil {
		return User{}, ErrNoPendingLogin
	}
	if len([]rune(code)) != 4 {
		return User{}, ErrInvalidOTP
	}
	u := *m.pending
	b, err := json.Marshal(u)
	if err != nil {
		return User{}, err
	}
	if err := m.rec.Set(ctx, kv.KeyUser, string(b)); err != nil {
		return User{}, fmt.Errorf("store user: %w", err)
	}
	m.pending = nil
	logger.L.Info("logged in")
	return u, nil
}

// Current returns the stored user. A malformed record counts as logged out.
func (m *Manager) Current(ctx context.Context) (User, error) {
	raw, ok, err := m.rec.Get(ctx, kv.KeyUser)
	if err != nil {
		return User{}, fmt.Errorf("read user: %w", err)
	}
	if !ok {
		return User{}, ErrUnauthenticated
	}
	var u User
	if err := json.Unmarshal([]byte(raw), &u); err != nil || u.Phone == "" {
		metrics.StorageCorrupt.WithLabelValues(kv.KeyUser).Inc()
		logger.L.Warn("stored user is malformed; treating as logged out", "error", err)
		return User{}, ErrUnauthenticated
	}
	return u, nil
}

// Logout wipes every stored record, chatrooms and messages included.
func (m *Manager) Logout(ctx context.Context) error {
	m.mu.Lock()
	m.pending = nil
	m.mu.Unlock()
	if err := m.rec.Clear(ctx); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	logger.L.Info("logged out")
	return nil
}
