package sync

import (
	"context"

	"github.com/google/uuid"

	"github.com/mvailur/syncmarks/internal/models"
	"github.com/mvailur/syncmarks/internal/server/storage"
	"github.com/mvailur/syncmarks/pkg/api"
)

// favoriteAdapter — адаптер избранного. Натуральный ключ:
// (item_type, item_id). ItemID может быть временным id папки, метки
// или закладки из того же push-а.
type favoriteAdapter struct {
	favorites storage.FavoriteStorage
}

func newFavoriteSync(p storage.Provider) *typeSync[api.Favorite, *models.Favorite] {
	return &typeSync[api.Favorite, *models.Favorite]{
		adapter: favoriteAdapter{favorites: p.Favorites()},
		history: p.History(),
	}
}

func (a favoriteAdapter) Kind() models.Kind { return models.KindFavorite }

func (a favoriteAdapter) Store() storage.SnapshotStorage[*models.Favorite] { return a.favorites }

func (a favoriteAdapter) ClientModified(item api.Favorite) int64 { return item.UpdateDate }

func (a favoriteAdapter) Refs(item api.Favorite) []string {
	if item.ItemID == "" {
		return nil
	}
	return []string{item.ItemID}
}

func (a favoriteAdapter) Rewrite(item *api.Favorite, resolved map[string]string) {
	if id, ok := resolved[item.ItemID]; ok {
		item.ItemID = id
	}
}

func (a favoriteAdapter) ByKey(ctx context.Context, userID string, item api.Favorite) (*models.Favorite, error) {
	return a.favorites.ByItem(ctx, userID, item.ItemType, item.ItemID)
}

func (a favoriteAdapter) New(userID string, item api.Favorite) (*models.Favorite, error) {
	return &models.Favorite{
		SyncMeta: models.SyncMeta{
			ID:         uuid.NewString(),
			UserID:     userID,
			UpdateDate: item.UpdateDate,
		},
		ItemType: item.ItemType,
		ItemID:   item.ItemID,
		Position: item.Position,
	}, nil
}

func (a favoriteAdapter) Apply(f *models.Favorite, item api.Favorite) error {
	f.ItemType = item.ItemType
	f.ItemID = item.ItemID
	f.Position = item.Position
	return nil
}

func (a favoriteAdapter) Repair(ctx context.Context, userID string, item *api.Favorite, server *models.Favorite, favorClient bool) (bool, error) {
	return false, nil
}

func (a favoriteAdapter) Wire(f *models.Favorite) api.Favorite {
	return api.Favorite{
		ID:         f.ID,
		ItemType:   f.ItemType,
		ItemID:     f.ItemID,
		Position:   f.Position,
		UpdateDate: f.UpdateDate,
	}
}
