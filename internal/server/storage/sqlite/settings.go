package sqlite

import (
	"context"

	"github.com/mvailur/syncmarks/internal/models"
)

// settingStore реализует storage.SettingStorage.
type settingStore struct {
	*snapshotStore[*models.Setting]
}

func newSettingSnapshots(q dbtx) *snapshotStore[*models.Setting] {
	return &snapshotStore[*models.Setting]{
		q: q,
		c: rowCodec[*models.Setting]{
			table:   "settings",
			columns: []string{"name", "value"},
			values: func(s *models.Setting) ([]any, error) {
				return []any{s.Name, s.Value}, nil
			},
			newRow: func() (*models.Setting, []any, func() error) {
				s := &models.Setting{}
				return s, []any{&s.Name, &s.Value}, nil
			},
		},
	}
}

// ByName resolves the setting natural key (name)
func (st *settingStore) ByName(ctx context.Context, userID, name string) (*models.Setting, error) {
	return st.one(ctx, "user_id = ? AND name = ?", userID, name)
}
