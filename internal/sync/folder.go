package sync

import (
	"context"

	"github.com/google/uuid"

	"github.com/mvailur/syncmarks/internal/models"
	"github.com/mvailur/syncmarks/internal/server/storage"
	"github.com/mvailur/syncmarks/pkg/api"
)

// folderAdapter — адаптер папок. Натуральный ключ: (parent, name).
// Ссылка ParentID может быть временным id папки из того же пакета.
type folderAdapter struct {
	folders storage.FolderStorage
}

func newFolderSync(p storage.Provider) *typeSync[api.Folder, *models.Folder] {
	return &typeSync[api.Folder, *models.Folder]{
		adapter: folderAdapter{folders: p.Folders()},
		history: p.History(),
	}
}

func (a folderAdapter) Kind() models.Kind { return models.KindFolder }

func (a folderAdapter) Store() storage.SnapshotStorage[*models.Folder] { return a.folders }

func (a folderAdapter) ClientModified(item api.Folder) int64 { return item.UpdateDate }

func (a folderAdapter) Refs(item api.Folder) []string {
	if item.ParentID == "" {
		return nil
	}
	return []string{item.ParentID}
}

func (a folderAdapter) Rewrite(item *api.Folder, resolved map[string]string) {
	if id, ok := resolved[item.ParentID]; ok {
		item.ParentID = id
	}
}

func (a folderAdapter) ByKey(ctx context.Context, userID string, item api.Folder) (*models.Folder, error) {
	return a.folders.ByParentAndName(ctx, userID, item.ParentID, item.Name)
}

func (a folderAdapter) New(userID string, item api.Folder) (*models.Folder, error) {
	return &models.Folder{
		SyncMeta: models.SyncMeta{
			ID:         uuid.NewString(),
			UserID:     userID,
			UpdateDate: item.UpdateDate,
		},
		ParentID: item.ParentID,
		Name:     item.Name,
		Position: item.Position,
	}, nil
}

func (a folderAdapter) Apply(f *models.Folder, item api.Folder) error {
	f.ParentID = item.ParentID
	f.Name = item.Name
	f.Position = item.Position
	return nil
}

func (a folderAdapter) Repair(ctx context.Context, userID string, item *api.Folder, server *models.Folder, favorClient bool) (bool, error) {
	return false, nil
}

func (a folderAdapter) Wire(f *models.Folder) api.Folder {
	return api.Folder{
		ID:         f.ID,
		ParentID:   f.ParentID,
		Name:       f.Name,
		Position:   f.Position,
		UpdateDate: f.UpdateDate,
	}
}
