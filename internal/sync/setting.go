package sync

import (
	"context"

	"github.com/google/uuid"

	"github.com/mvailur/syncmarks/internal/models"
	"github.com/mvailur/syncmarks/internal/server/storage"
	"github.com/mvailur/syncmarks/pkg/api"
)

// settingAdapter — адаптер настроек. Натуральный ключ: name.
// Настройки ни на что не ссылаются.
type settingAdapter struct {
	settings storage.SettingStorage
}

func newSettingSync(p storage.Provider) *typeSync[api.Setting, *models.Setting] {
	return &typeSync[api.Setting, *models.Setting]{
		adapter: settingAdapter{settings: p.Settings()},
		history: p.History(),
	}
}

func (a settingAdapter) Kind() models.Kind { return models.KindSetting }

func (a settingAdapter) Store() storage.SnapshotStorage[*models.Setting] { return a.settings }

func (a settingAdapter) ClientModified(item api.Setting) int64 { return item.UpdateDate }

func (a settingAdapter) Refs(item api.Setting) []string { return nil }

func (a settingAdapter) Rewrite(item *api.Setting, resolved map[string]string) {}

func (a settingAdapter) ByKey(ctx context.Context, userID string, item api.Setting) (*models.Setting, error) {
	return a.settings.ByName(ctx, userID, item.Name)
}

func (a settingAdapter) New(userID string, item api.Setting) (*models.Setting, error) {
	return &models.Setting{
		SyncMeta: models.SyncMeta{
			ID:         uuid.NewString(),
			UserID:     userID,
			UpdateDate: item.UpdateDate,
		},
		Name:  item.Name,
		Value: item.Value,
	}, nil
}

func (a settingAdapter) Apply(s *models.Setting, item api.Setting) error {
	s.Name = item.Name
	s.Value = item.Value
	return nil
}

func (a settingAdapter) Repair(ctx context.Context, userID string, item *api.Setting, server *models.Setting, favorClient bool) (bool, error) {
	return false, nil
}

func (a settingAdapter) Wire(s *models.Setting) api.Setting {
	return api.Setting{
		ID:         s.ID,
		Name:       s.Name,
		Value:      s.Value,
		UpdateDate: s.UpdateDate,
	}
}
