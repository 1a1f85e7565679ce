package sqlite

import (
	"context"

	"github.com/mvailur/syncmarks/internal/models"
)

// folderStore реализует storage.FolderStorage.
type folderStore struct {
	*snapshotStore[*models.Folder]
}

func newFolderSnapshots(q dbtx) *snapshotStore[*models.Folder] {
	return &snapshotStore[*models.Folder]{
		q: q,
		c: rowCodec[*models.Folder]{
			table:   "folders",
			columns: []string{"parent_id", "name", "position"},
			values: func(f *models.Folder) ([]any, error) {
				return []any{f.ParentID, f.Name, f.Position}, nil
			},
			newRow: func() (*models.Folder, []any, func() error) {
				f := &models.Folder{}
				return f, []any{&f.ParentID, &f.Name, &f.Position}, nil
			},
		},
	}
}

// ByParentAndName resolves the folder natural key (parent + name)
func (st *folderStore) ByParentAndName(ctx context.Context, userID, parentID, name string) (*models.Folder, error) {
	return st.one(ctx, "user_id = ? AND parent_id = ? AND name = ?", userID, parentID, name)
}
