// Package settings persists the dashboard's credentials and refresh interval.
package settings

import (
	"errors"
	"strings"

	"github.com/techwomen-moldova/mentordesk/internal/common"
	"github.com/techwomen-moldova/mentordesk/internal/vault"
	"github.com/techwomen-moldova/mentordesk/pkg/schema"
	"github.com/techwomen-moldova/mentordesk/pkg/sdk"
)

// Key is the store key holding the settings blob.
const Key = "adminSecureSettings"

// ErrCredentialsRequired is returned when saving without a token or form id.
var ErrCredentialsRequired = common.Errorf(common.ErrValidation, "Both Netlify token and Form ID are required")

// Manager loads and saves schema.Settings. When a passphrase is configured
// the token is sealed before it reaches the store.
type Manager struct {
	store      sdk.KeyValueStore
	passphrase string
}

// NewManager returns a manager. An empty passphrase stores the token as is.
func NewManager(store sdk.KeyValueStore, passphrase string) *Manager {
	return &Manager{store: store, passphrase: passphrase}
}

// Load returns the stored settings, or defaults when nothing is stored.
func (m *Manager) Load() (schema.Settings, error) {
	s, err := sdk.Get[schema.Settings](m.store, Key)
	if errors.Is(err, sdk.ErrKeyNotFound) {
		return schema.Settings{AutoRefresh: schema.DefaultAutoRefresh}, nil
	}
	if err != nil {
		return schema.Settings{}, err
	}

	if vault.IsSealed(s.NetlifyToken) {
		if m.passphrase == "" {
			return schema.Settings{}, common.Errorf(common.ErrNotConfigured, "Stored token is encrypted; set MENTORDESK_SETTINGS_KEY")
		}
		token, err := vault.Open(s.NetlifyToken, m.passphrase)
		if err != nil {
			return schema.Settings{}, common.Wrap(common.ErrNotConfigured, err, "Cannot read stored token")
		}
		s.NetlifyToken = token
	}
	if s.AutoRefresh < 0 {
		s.AutoRefresh = 0
	}
	return s, nil
}

// Save validates and stores s.
func (m *Manager) Save(s schema.Settings) error {
	s.NetlifyToken = strings.TrimSpace(s.NetlifyToken)
	s.FormID = strings.TrimSpace(s.FormID)
	if !s.Configured() {
		return ErrCredentialsRequired
	}
	return m.put(s)
}

// SaveAutoRefresh updates only the refresh interval.
func (m *Manager) SaveAutoRefresh(seconds int) error {
	if seconds < 0 {
		return common.Errorf(common.ErrValidation, "Auto-refresh interval cannot be negative")
	}
	s, err := m.Load()
	if err != nil {
		return err
	}
	s.AutoRefresh = seconds
	return m.put(s)
}

// Clear removes the stored settings.
func (m *Manager) Clear() error {
	err := m.store.Delete(Key)
	if errors.Is(err, sdk.ErrKeyNotFound) {
		return nil
	}
	return err
}

func (m *Manager) put(s schema.Settings) error {
	if m.passphrase != "" {
		sealed, err := vault.Seal(s.NetlifyToken, m.passphrase)
		if err != nil {
			return common.Wrap(common.ErrIO, err, "Cannot encrypt token")
		}
		s.NetlifyToken = sealed
	}
	return sdk.Set(m.store, Key, s)
}
