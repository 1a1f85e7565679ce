package sqlite

import (
	"context"
	"encoding/json"

	"github.com/mvailur/syncmarks/internal/models"
)

// bookmarkStore реализует storage.BookmarkStorage.
// Список меток хранится в колонке tag_ids как JSON-массив.
type bookmarkStore struct {
	*snapshotStore[*models.Bookmark]
}

func newBookmarkSnapshots(q dbtx) *snapshotStore[*models.Bookmark] {
	return &snapshotStore[*models.Bookmark]{
		q: q,
		c: rowCodec[*models.Bookmark]{
			table:   "bookmarks",
			columns: []string{"folder_id", "title", "url", "description", "tag_ids"},
			values: func(b *models.Bookmark) ([]any, error) {
				tagIDs, err := json.Marshal(b.TagIDs)
				if err != nil {
					return nil, err
				}
				return []any{b.FolderID, b.Title, b.URL, b.Description, string(tagIDs)}, nil
			},
			newRow: func() (*models.Bookmark, []any, func() error) {
				b := &models.Bookmark{}
				var rawTagIDs string
				finish := func() error {
					if rawTagIDs == "" || rawTagIDs == "null" {
						return nil
					}
					return json.Unmarshal([]byte(rawTagIDs), &b.TagIDs)
				}
				return b, []any{&b.FolderID, &b.Title, &b.URL, &b.Description, &rawTagIDs}, finish
			},
		},
	}
}

// ByFolderAndTitle resolves the bookmark natural key (folder + title)
func (st *bookmarkStore) ByFolderAndTitle(ctx context.Context, userID, folderID, title string) (*models.Bookmark, error) {
	return st.one(ctx, "user_id = ? AND folder_id = ? AND title = ?", userID, folderID, title)
}
