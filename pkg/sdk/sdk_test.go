package sdk_test

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/techwomen-moldova/mentordesk/internal/api"
	"github.com/techwomen-moldova/mentordesk/internal/common"
	"github.com/techwomen-moldova/mentordesk/internal/engine"
	"github.com/techwomen-moldova/mentordesk/internal/logging"
	"github.com/techwomen-moldova/mentordesk/internal/profiles"
	"github.com/techwomen-moldova/mentordesk/pkg/schema"
	"github.com/techwomen-moldova/mentordesk/pkg/sdk"
)

func startDaemon(t *testing.T) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := profiles.NewMemoryRepository()
	r := gin.New()
	api.Register(r, &api.Handler{
		Publisher: profiles.NewPublisher(repo, logging.Discard()),
		Profiles:  repo,
		Store:     engine.NewMemStore(nil, nil),
		Log:       logging.Discard(),
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_KeyValue(t *testing.T) {
	srv := startDaemon(t)
	c, err := sdk.Connect(context.Background(), srv.URL, time.Second)
	require.NoError(t, err)

	_, err = c.Get("missing")
	assert.ErrorIs(t, err, sdk.ErrKeyNotFound)

	require.NoError(t, c.Set("processedSubmissions", []string{"a", "b"}))
	ids, err := sdk.Get[[]string](c, "processedSubmissions")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids)

	keys, err := c.Keys()
	require.NoError(t, err)
	assert.Equal(t, []string{"processedSubmissions"}, keys)

	require.NoError(t, c.Delete("processedSubmissions"))
	got, err := sdk.GetOr(c, "processedSubmissions", []string{})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestClient_Apply(t *testing.T) {
	srv := startDaemon(t)
	c := sdk.NewClient(srv.URL, time.Second)
	ctx := context.Background()

	req := schema.PublishRequest{
		Profile: map[string]any{"name": "Ana", "email": "a@x.md"},
		Role:    schema.RoleMentor,
	}
	res, err := c.Apply(ctx, req)
	require.NoError(t, err)
	assert.True(t, res.Success)
	require.NotNil(t, res.TotalProfiles)
	assert.Equal(t, 1, *res.TotalProfiles)

	_, err = c.Apply(ctx, req)
	assert.ErrorIs(t, err, common.ErrTransport)
	assert.Equal(t, "Profile with this email already exists", err.Error())

	_, err = c.Apply(ctx, schema.PublishRequest{Profile: req.Profile, Role: "admin"})
	assert.ErrorIs(t, err, common.ErrBadRequest)

	list, err := c.Profiles(ctx, schema.RoleMentor)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Ana", list[0].Name)
}

func TestConnect_Unreachable(t *testing.T) {
	srv := httptest.NewServer(nil)
	addr := srv.URL
	srv.Close()

	_, err := sdk.Connect(context.Background(), addr, time.Second)
	assert.ErrorIs(t, err, common.ErrTransport)
}

func TestNewClient_AddsScheme(t *testing.T) {
	srv := startDaemon(t)
	c := sdk.NewClient(srv.Listener.Addr().String(), time.Second)
	assert.NoError(t, c.Ping(context.Background()))
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()

	local, err := sdk.Open(context.Background(), "", dir, time.Second)
	require.NoError(t, err)
	require.NoError(t, local.Set("k", "v"))

	reopened, err := sdk.OpenLocal(dir)
	require.NoError(t, err)
	v, err := sdk.Get[string](reopened, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", v)

	srv := startDaemon(t)
	remote, err := sdk.Open(context.Background(), srv.URL, dir, time.Second)
	require.NoError(t, err)
	_, isClient := remote.(*sdk.Client)
	assert.True(t, isClient)
}

func TestGetGeneric(t *testing.T) {
	store := engine.NewMemStore(map[string]any{
		"settings": map[string]any{"formId": "f", "autoRefresh": float64(30)},
	}, nil)

	s, err := sdk.Get[schema.Settings](store, "settings")
	require.NoError(t, err)
	assert.Equal(t, schema.Settings{FormID: "f", AutoRefresh: 30}, s)

	n, err := sdk.GetOr(store, "missing", 7)
	require.NoError(t, err)
	assert.Equal(t, 7, n)
}
