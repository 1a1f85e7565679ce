package sqlite

import (
	"context"

	"github.com/mvailur/syncmarks/internal/models"
)

// favoriteStore реализует storage.FavoriteStorage.
type favoriteStore struct {
	*snapshotStore[*models.Favorite]
}

func newFavoriteSnapshots(q dbtx) *snapshotStore[*models.Favorite] {
	return &snapshotStore[*models.Favorite]{
		q: q,
		c: rowCodec[*models.Favorite]{
			table:   "favorites",
			columns: []string{"item_type", "item_id", "position"},
			values: func(f *models.Favorite) ([]any, error) {
				return []any{f.ItemType, f.ItemID, f.Position}, nil
			},
			newRow: func() (*models.Favorite, []any, func() error) {
				f := &models.Favorite{}
				return f, []any{&f.ItemType, &f.ItemID, &f.Position}, nil
			},
		},
	}
}

// ByItem resolves the favorite natural key (item type + item id)
func (st *favoriteStore) ByItem(ctx context.Context, userID, itemType, itemID string) (*models.Favorite, error) {
	return st.one(ctx, "user_id = ? AND item_type = ? AND item_id = ?", userID, itemType, itemID)
}
