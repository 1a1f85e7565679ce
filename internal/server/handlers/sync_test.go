package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvailur/syncmarks/internal/server/storage/sqlite"
	"github.com/mvailur/syncmarks/internal/sync"
	"github.com/mvailur/syncmarks/pkg/api"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestHandler(t *testing.T) (*SyncHandler, *sync.Service) {
	t.Helper()

	store, err := sqlite.New(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	engine := sync.NewService(testLogger(), store)
	return NewSyncHandler(testLogger(), engine), engine
}

// authed кладёт user_id в контекст запроса, как это делает auth middleware
func authed(r *http.Request, userID string) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), UserIDKey, userID))
}

func pushBody(t *testing.T, req *api.PushRequest) *bytes.Reader {
	t.Helper()
	body, err := json.Marshal(req)
	require.NoError(t, err)
	return bytes.NewReader(body)
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) api.ErrorResponse {
	t.Helper()
	var resp api.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestHandlePush_Success(t *testing.T) {
	h, _ := newTestHandler(t)

	body := pushBody(t, &api.PushRequest{
		Folders: api.Batch[api.Folder]{
			Create: []api.CreateOp[api.Folder]{
				{TempID: "t1", Item: api.Folder{Name: "Inbox", UpdateDate: 100}},
			},
		},
	})

	rec := httptest.NewRecorder()
	h.HandlePush(rec, authed(httptest.NewRequest(http.MethodPost, "/api/v1/sync/push", body), "user1"))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp api.PushResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.NotEmpty(t, resp.HeadCommit)
	require.Len(t, resp.Pairs, 1)
	assert.Equal(t, "t1", resp.Pairs[0].LocalID)
	assert.NotEmpty(t, resp.Pairs[0].CloudID)
}

func TestHandlePush_MissingUser(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := httptest.NewRecorder()
	h.HandlePush(rec, httptest.NewRequest(http.MethodPost, "/api/v1/sync/push", pushBody(t, &api.PushRequest{})))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHandlePush_MalformedBody(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := httptest.NewRecorder()
	h.HandlePush(rec, authed(httptest.NewRequest(
		http.MethodPost, "/api/v1/sync/push", bytes.NewReader([]byte("{not json"))), "user1"))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, api.CodeValidation, decodeError(t, rec).Code)
}

func TestHandlePush_RejectedByValidation(t *testing.T) {
	h, _ := newTestHandler(t)

	body := pushBody(t, &api.PushRequest{
		Folders: api.Batch[api.Folder]{
			Create: []api.CreateOp[api.Folder]{{TempID: "t1"}}, // пустое имя
		},
	})

	rec := httptest.NewRecorder()
	h.HandlePush(rec, authed(httptest.NewRequest(http.MethodPost, "/api/v1/sync/push", body), "user1"))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, api.CodeValidation, decodeError(t, rec).Code)
}

func TestHandlePush_StaleClient(t *testing.T) {
	h, engine := newTestHandler(t)
	ctx := context.Background()

	first, err := engine.Push(ctx, "user1", &api.PushRequest{
		Folders: api.Batch[api.Folder]{
			Create: []api.CreateOp[api.Folder]{
				{TempID: "t1", Item: api.Folder{Name: "A", UpdateDate: 100}},
			},
		},
	})
	require.NoError(t, err)

	_, err = engine.Push(ctx, "user1", &api.PushRequest{
		LocalCommit: first.HeadCommit,
		Folders: api.Batch[api.Folder]{
			Create: []api.CreateOp[api.Folder]{
				{TempID: "t2", Item: api.Folder{Name: "B", UpdateDate: 110}},
			},
		},
	})
	require.NoError(t, err)

	// head ушёл вперёд, клиент всё ещё держит старый токен
	body := pushBody(t, &api.PushRequest{
		LocalCommit: first.HeadCommit,
		Folders: api.Batch[api.Folder]{
			Create: []api.CreateOp[api.Folder]{
				{TempID: "t3", Item: api.Folder{Name: "C", UpdateDate: 120}},
			},
		},
	})

	rec := httptest.NewRecorder()
	h.HandlePush(rec, authed(httptest.NewRequest(http.MethodPost, "/api/v1/sync/push", body), "user1"))

	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, api.CodePullRequired, decodeError(t, rec).Code)
}

func TestHandlePush_UnknownEntity(t *testing.T) {
	h, _ := newTestHandler(t)

	body := pushBody(t, &api.PushRequest{
		Folders: api.Batch[api.Folder]{
			Update: []api.UpdateOp[api.Folder]{{
				ID:   "9b1deb4d-3b7d-4bad-9bdd-2b0d7b3dcb6d",
				Item: api.Folder{Name: "Ghost", UpdateDate: 100},
			}},
		},
	})

	rec := httptest.NewRecorder()
	h.HandlePush(rec, authed(httptest.NewRequest(http.MethodPost, "/api/v1/sync/push", body), "user1"))

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, api.CodeNotFound, decodeError(t, rec).Code)
}

func TestHandlePush_DanglingReference(t *testing.T) {
	h, _ := newTestHandler(t)

	body := pushBody(t, &api.PushRequest{
		Bookmarks: api.Batch[api.Bookmark]{
			Create: []api.CreateOp[api.Bookmark]{{
				TempID: "t1",
				Item: api.Bookmark{
					FolderID:   "t-missing",
					Title:      "Orphan",
					URL:        "https://example.com",
					UpdateDate: 100,
				},
			}},
		},
	})

	rec := httptest.NewRecorder()
	h.HandlePush(rec, authed(httptest.NewRequest(http.MethodPost, "/api/v1/sync/push", body), "user1"))

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, api.CodeCycle, decodeError(t, rec).Code)
}

func TestHandlePull(t *testing.T) {
	h, engine := newTestHandler(t)

	_, err := engine.Push(context.Background(), "user1", &api.PushRequest{
		Folders: api.Batch[api.Folder]{
			Create: []api.CreateOp[api.Folder]{
				{TempID: "t1", Item: api.Folder{Name: "Inbox", UpdateDate: 100}},
			},
		},
	})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	h.HandlePull(rec, authed(httptest.NewRequest(http.MethodGet, "/api/v1/sync/pull", nil), "user1"))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp api.PullResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.NotEmpty(t, resp.HeadCommit)
	require.Len(t, resp.Folders.Create, 1)
	assert.Equal(t, "Inbox", resp.Folders.Create[0].Name)
}

func TestHandlePull_BadToken(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := httptest.NewRecorder()
	h.HandlePull(rec, authed(httptest.NewRequest(
		http.MethodGet, "/api/v1/sync/pull?from=%21%21garbage", nil), "user1"))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, api.CodeValidation, decodeError(t, rec).Code)
}

func TestHandleCheck(t *testing.T) {
	h, engine := newTestHandler(t)

	pushed, err := engine.Push(context.Background(), "user1", &api.PushRequest{
		Folders: api.Batch[api.Folder]{
			Create: []api.CreateOp[api.Folder]{
				{TempID: "t1", Item: api.Folder{Name: "Inbox", UpdateDate: 100}},
			},
		},
	})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	h.HandleCheck(rec, authed(httptest.NewRequest(http.MethodGet, "/api/v1/sync/check", nil), "user1"))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp api.CheckUpdateResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.True(t, resp.ExistUpdate)
	assert.Equal(t, pushed.HeadCommit, resp.HeadCommit)
}

func TestHealth(t *testing.T) {
	h := NewHealthHandler(testLogger(), "1.2.3")

	rec := httptest.NewRecorder()
	h.Health(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp HealthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "1.2.3", resp.Version)
}
