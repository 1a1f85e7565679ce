package sync

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvailur/syncmarks/pkg/api"
)

func TestPull_FullSnapshotReportsEverythingAsCreate(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	_, err := svc.Push(ctx, "user1", &api.PushRequest{
		Folders: api.Batch[api.Folder]{
			Create: []api.CreateOp[api.Folder]{folderCreate("t1", "", "A", 100)},
		},
		Settings: api.Batch[api.Setting]{
			Create: []api.CreateOp[api.Setting]{{
				TempID: "t2",
				Item:   api.Setting{Name: "theme", Value: "dark", UpdateDate: 100},
			}},
		},
	})
	require.NoError(t, err)

	// вторым push-ом папка становится update на сервере
	pull, err := svc.Pull(ctx, "user1", "", "")
	require.NoError(t, err)
	id := pull.Folders.Create[0].ID

	_, err = svc.Push(ctx, "user1", &api.PushRequest{
		LocalCommit: pull.HeadCommit,
		Folders: api.Batch[api.Folder]{
			Update: []api.UpdateOp[api.Folder]{{
				ID:   id,
				Item: api.Folder{Name: "A renamed", UpdateDate: 200},
			}},
		},
	})
	require.NoError(t, err)

	// полный снапшот: даже обновлённые строки приходят как create
	full, err := svc.Pull(ctx, "user1", "", "")
	require.NoError(t, err)
	require.Len(t, full.Folders.Create, 1)
	assert.Empty(t, full.Folders.Update)
	assert.Equal(t, "A renamed", full.Folders.Create[0].Name)
	assert.Len(t, full.Settings.Create, 1)
	assert.NotEmpty(t, full.HeadCommit)
}

func TestPull_EmptyDeltaAtHead(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	resp, err := svc.Push(ctx, "user1", &api.PushRequest{
		Folders: api.Batch[api.Folder]{
			Create: []api.CreateOp[api.Folder]{folderCreate("t1", "", "A", 100)},
		},
	})
	require.NoError(t, err)

	pull, err := svc.Pull(ctx, "user1", resp.HeadCommit, "")
	require.NoError(t, err)
	assert.Empty(t, pull.Folders.Create)
	assert.Empty(t, pull.Folders.Update)
	assert.Empty(t, pull.Folders.Delete)
	assert.Equal(t, resp.HeadCommit, pull.HeadCommit)
}

func TestPull_IncrementalSplitsCreateAndUpdate(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	first, err := svc.Push(ctx, "user1", &api.PushRequest{
		Folders: api.Batch[api.Folder]{
			Create: []api.CreateOp[api.Folder]{folderCreate("t1", "", "A", 100)},
		},
	})
	require.NoError(t, err)
	idA := pairMap(first.Pairs)["t1"]

	_, err = svc.Push(ctx, "user1", &api.PushRequest{
		LocalCommit: first.HeadCommit,
		Folders: api.Batch[api.Folder]{
			Create: []api.CreateOp[api.Folder]{folderCreate("t2", "", "B", 200)},
			Update: []api.UpdateOp[api.Folder]{{
				ID:   idA,
				Item: api.Folder{Name: "A renamed", UpdateDate: 200},
			}},
		},
	})
	require.NoError(t, err)

	pull, err := svc.Pull(ctx, "user1", first.HeadCommit, "")
	require.NoError(t, err)

	require.Len(t, pull.Folders.Create, 1, "новая строка — create")
	assert.Equal(t, "B", pull.Folders.Create[0].Name)
	require.Len(t, pull.Folders.Update, 1, "существовавшая строка — update")
	assert.Equal(t, "A renamed", pull.Folders.Update[0].Name)
}

func TestPull_DeletionsVisibleOnlyIncrementally(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	first, err := svc.Push(ctx, "user1", &api.PushRequest{
		Bookmarks: api.Batch[api.Bookmark]{
			Create: []api.CreateOp[api.Bookmark]{{
				TempID: "t1",
				Item: api.Bookmark{
					Title:      "Go blog",
					URL:        "https://go.dev/blog",
					UpdateDate: 100,
				},
			}},
		},
	})
	require.NoError(t, err)
	id := pairMap(first.Pairs)["t1"]

	_, err = svc.Push(ctx, "user1", &api.PushRequest{
		LocalCommit: first.HeadCommit,
		Bookmarks: api.Batch[api.Bookmark]{
			Delete: []api.DeleteOp{{ID: id, DeleteDate: 150}},
		},
	})
	require.NoError(t, err)

	incremental, err := svc.Pull(ctx, "user1", first.HeadCommit, "")
	require.NoError(t, err)
	require.Len(t, incremental.Bookmarks.Delete, 1, "удаление видно отставшему устройству")
	assert.Equal(t, id, incremental.Bookmarks.Delete[0])
	assert.Empty(t, incremental.Bookmarks.Create)

	full, err := svc.Pull(ctx, "user1", "", "")
	require.NoError(t, err)
	assert.Empty(t, full.Bookmarks.Delete, "полному снапшоту нечего удалять локально")
	assert.Empty(t, full.Bookmarks.Create, "строка удалена")
}

func TestPull_UpperBoundLimitsWindow(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	first, err := svc.Push(ctx, "user1", &api.PushRequest{
		Folders: api.Batch[api.Folder]{
			Create: []api.CreateOp[api.Folder]{folderCreate("t1", "", "A", 100)},
		},
	})
	require.NoError(t, err)

	second, err := svc.Push(ctx, "user1", &api.PushRequest{
		LocalCommit: first.HeadCommit,
		Folders: api.Batch[api.Folder]{
			Create: []api.CreateOp[api.Folder]{folderCreate("t2", "", "B", 200)},
		},
	})
	require.NoError(t, err)

	third, err := svc.Push(ctx, "user1", &api.PushRequest{
		LocalCommit: second.HeadCommit,
		Folders: api.Batch[api.Folder]{
			Create: []api.CreateOp[api.Folder]{folderCreate("t3", "", "C", 300)},
		},
	})
	require.NoError(t, err)

	// окно (first, second]: только B, C за верхней границей
	pull, err := svc.Pull(ctx, "user1", first.HeadCommit, second.HeadCommit)
	require.NoError(t, err)
	require.Len(t, pull.Folders.Create, 1)
	assert.Equal(t, "B", pull.Folders.Create[0].Name)
	assert.Equal(t, third.HeadCommit, pull.HeadCommit, "ответ всегда несёт текущий head")
}

func TestPull_UsersAreIsolated(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	_, err := svc.Push(ctx, "user1", &api.PushRequest{
		Folders: api.Batch[api.Folder]{
			Create: []api.CreateOp[api.Folder]{folderCreate("t1", "", "Private", 100)},
		},
	})
	require.NoError(t, err)

	pull, err := svc.Pull(ctx, "user2", "", "")
	require.NoError(t, err)
	assert.Empty(t, pull.Folders.Create)
	assert.Empty(t, pull.HeadCommit)
}

func TestCheckUpdate_Service(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	// пустой сервер: обновлений нет даже для пустого клиента
	resp, err := svc.CheckUpdate(ctx, "user1", "")
	require.NoError(t, err)
	assert.False(t, resp.ExistUpdate)

	pushed, err := svc.Push(ctx, "user1", &api.PushRequest{
		Folders: api.Batch[api.Folder]{
			Create: []api.CreateOp[api.Folder]{folderCreate("t1", "", "A", 100)},
		},
	})
	require.NoError(t, err)

	resp, err = svc.CheckUpdate(ctx, "user1", "")
	require.NoError(t, err)
	assert.True(t, resp.ExistUpdate, "у клиента ничего нет, у сервера есть")
	assert.Equal(t, pushed.HeadCommit, resp.HeadCommit)

	resp, err = svc.CheckUpdate(ctx, "user1", pushed.HeadCommit)
	require.NoError(t, err)
	assert.False(t, resp.ExistUpdate, "клиент на head-е")
}
