package sync

import (
	"context"

	"github.com/google/uuid"

	"github.com/mvailur/syncmarks/internal/models"
	"github.com/mvailur/syncmarks/internal/server/storage"
	"github.com/mvailur/syncmarks/pkg/api"
)

// bookmarkAdapter — адаптер закладок. Натуральный ключ: (folder, title).
// FolderID и TagIDs могут ссылаться на временные id папок и меток,
// созданных тем же push-ем.
type bookmarkAdapter struct {
	bookmarks storage.BookmarkStorage
}

func newBookmarkSync(p storage.Provider) *typeSync[api.Bookmark, *models.Bookmark] {
	return &typeSync[api.Bookmark, *models.Bookmark]{
		adapter: bookmarkAdapter{bookmarks: p.Bookmarks()},
		history: p.History(),
	}
}

func (a bookmarkAdapter) Kind() models.Kind { return models.KindBookmark }

func (a bookmarkAdapter) Store() storage.SnapshotStorage[*models.Bookmark] { return a.bookmarks }

func (a bookmarkAdapter) ClientModified(item api.Bookmark) int64 { return item.UpdateDate }

func (a bookmarkAdapter) Refs(item api.Bookmark) []string {
	var refs []string
	if item.FolderID != "" {
		refs = append(refs, item.FolderID)
	}
	for _, id := range item.TagIDs {
		if id != "" {
			refs = append(refs, id)
		}
	}
	return refs
}

func (a bookmarkAdapter) Rewrite(item *api.Bookmark, resolved map[string]string) {
	if id, ok := resolved[item.FolderID]; ok {
		item.FolderID = id
	}
	if len(item.TagIDs) == 0 {
		return
	}

	// item — копия элемента запроса, но заголовок слайса делит с ней
	// backing array; подстановка идёт в свежий слайс
	tagIDs := make([]string, len(item.TagIDs))
	for i, tagID := range item.TagIDs {
		if id, ok := resolved[tagID]; ok {
			tagID = id
		}
		tagIDs[i] = tagID
	}
	item.TagIDs = tagIDs
}

func (a bookmarkAdapter) ByKey(ctx context.Context, userID string, item api.Bookmark) (*models.Bookmark, error) {
	return a.bookmarks.ByFolderAndTitle(ctx, userID, item.FolderID, item.Title)
}

func (a bookmarkAdapter) New(userID string, item api.Bookmark) (*models.Bookmark, error) {
	return &models.Bookmark{
		SyncMeta: models.SyncMeta{
			ID:         uuid.NewString(),
			UserID:     userID,
			UpdateDate: item.UpdateDate,
		},
		FolderID:    item.FolderID,
		Title:       item.Title,
		URL:         item.URL,
		Description: item.Description,
		TagIDs:      item.TagIDs,
	}, nil
}

func (a bookmarkAdapter) Apply(b *models.Bookmark, item api.Bookmark) error {
	b.FolderID = item.FolderID
	b.Title = item.Title
	b.URL = item.URL
	b.Description = item.Description
	b.TagIDs = item.TagIDs
	return nil
}

func (a bookmarkAdapter) Repair(ctx context.Context, userID string, item *api.Bookmark, server *models.Bookmark, favorClient bool) (bool, error) {
	return false, nil
}

func (a bookmarkAdapter) Wire(b *models.Bookmark) api.Bookmark {
	return api.Bookmark{
		ID:          b.ID,
		FolderID:    b.FolderID,
		Title:       b.Title,
		URL:         b.URL,
		Description: b.Description,
		TagIDs:      b.TagIDs,
		UpdateDate:  b.UpdateDate,
	}
}
