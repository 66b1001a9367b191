package settings

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/techwomen-moldova/mentordesk/internal/common"
	"github.com/techwomen-moldova/mentordesk/internal/engine"
	"github.com/techwomen-moldova/mentordesk/pkg/schema"
	"github.com/techwomen-moldova/mentordesk/pkg/sdk"
)

func TestLoad_Defaults(t *testing.T) {
	m := NewManager(engine.NewMemStore(nil, nil), "")

	s, err := m.Load()
	require.NoError(t, err)
	assert.Equal(t, schema.Settings{AutoRefresh: 60}, s)
	assert.False(t, s.Configured())
}

func TestSave_RequiresBoth(t *testing.T) {
	m := NewManager(engine.NewMemStore(nil, nil), "")

	err := m.Save(schema.Settings{NetlifyToken: "tok", FormID: "  "})
	assert.ErrorIs(t, err, common.ErrValidation)
	assert.Equal(t, "Both Netlify token and Form ID are required", err.Error())
}

func TestSaveLoad_Plain(t *testing.T) {
	store := engine.NewMemStore(nil, nil)
	m := NewManager(store, "")

	require.NoError(t, m.Save(schema.Settings{NetlifyToken: " tok ", FormID: "form", AutoRefresh: 30}))

	s, err := m.Load()
	require.NoError(t, err)
	assert.Equal(t, schema.Settings{NetlifyToken: "tok", FormID: "form", AutoRefresh: 30}, s)
}

func TestSaveLoad_Sealed(t *testing.T) {
	store := engine.NewMemStore(nil, nil)
	m := NewManager(store, "passphrase")

	require.NoError(t, m.Save(schema.Settings{NetlifyToken: "secret-token", FormID: "form", AutoRefresh: 60}))

	raw, err := sdk.Get[schema.Settings](store, Key)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(raw.NetlifyToken, "enc:v2:"))
	assert.NotContains(t, raw.NetlifyToken, "secret-token")

	s, err := m.Load()
	require.NoError(t, err)
	assert.Equal(t, "secret-token", s.NetlifyToken)

	_, err = NewManager(store, "").Load()
	assert.ErrorIs(t, err, common.ErrNotConfigured)

	_, err = NewManager(store, "wrong").Load()
	assert.ErrorIs(t, err, common.ErrNotConfigured)
}

func TestSaveAutoRefresh(t *testing.T) {
	m := NewManager(engine.NewMemStore(nil, nil), "")
	require.NoError(t, m.Save(schema.Settings{NetlifyToken: "tok", FormID: "form", AutoRefresh: 60}))

	require.NoError(t, m.SaveAutoRefresh(0))
	s, err := m.Load()
	require.NoError(t, err)
	assert.Equal(t, 0, s.AutoRefresh)
	assert.Equal(t, "tok", s.NetlifyToken)

	assert.ErrorIs(t, m.SaveAutoRefresh(-5), common.ErrValidation)
}

func TestClear(t *testing.T) {
	m := NewManager(engine.NewMemStore(nil, nil), "")
	require.NoError(t, m.Save(schema.Settings{NetlifyToken: "tok", FormID: "form"}))

	require.NoError(t, m.Clear())
	require.NoError(t, m.Clear())

	s, err := m.Load()
	require.NoError(t, err)
	assert.False(t, s.Configured())
}
