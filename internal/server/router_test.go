package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvailur/syncmarks/internal/server/handlers"
	"github.com/mvailur/syncmarks/internal/server/middleware"
	"github.com/mvailur/syncmarks/internal/server/storage/sqlite"
	"github.com/mvailur/syncmarks/internal/sync"
	"github.com/mvailur/syncmarks/pkg/api"
)

func setupRouter(t *testing.T) (http.Handler, handlers.JWTConfig) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	store, err := sqlite.New(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	limiter := middleware.NewRateLimiter(100, time.Minute, logger)
	t.Cleanup(limiter.Stop)

	jwtCfg := handlers.JWTConfig{Secret: []byte("test-secret")}

	router := NewRouter(RouterConfig{
		Logger:  logger,
		Engine:  sync.NewService(logger, store),
		JWT:     jwtCfg,
		Limiter: limiter,
		Version: "test",
	})

	return router, jwtCfg
}

func TestRouter_HealthIsOpen(t *testing.T) {
	router, _ := setupRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_SyncRequiresAuth(t *testing.T) {
	router, _ := setupRouter(t)

	for _, tt := range []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/v1/sync/push"},
		{http.MethodGet, "/api/v1/sync/pull"},
		{http.MethodGet, "/api/v1/sync/check"},
	} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code, tt.path)
	}
}

func TestRouter_PushPullRoundTrip(t *testing.T) {
	router, jwtCfg := setupRouter(t)

	token, err := handlers.SignSessionToken(jwtCfg, "user1", "device1", time.Hour)
	require.NoError(t, err)

	body, err := json.Marshal(&api.PushRequest{
		Folders: api.Batch[api.Folder]{
			Create: []api.CreateOp[api.Folder]{
				{TempID: "t1", Item: api.Folder{Name: "Inbox", UpdateDate: 100}},
			},
		},
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sync/push", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+token)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var pushResp api.PushResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&pushResp))
	require.Len(t, pushResp.Pairs, 1)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/sync/pull", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var pullResp api.PullResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&pullResp))
	assert.Equal(t, pushResp.HeadCommit, pullResp.HeadCommit)
	require.Len(t, pullResp.Folders.Create, 1)
	assert.Equal(t, pushResp.Pairs[0].CloudID, pullResp.Folders.Create[0].ID)
}
