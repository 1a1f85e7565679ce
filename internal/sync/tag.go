package sync

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/mvailur/syncmarks/internal/models"
	"github.com/mvailur/syncmarks/internal/server/storage"
	"github.com/mvailur/syncmarks/pkg/api"
)

// tagAdapter — адаптер меток. Натуральный ключ: name; отдельно
// поддерживается уникальность целого ColorKey в пределах пользователя.
type tagAdapter struct {
	tags storage.TagStorage
}

func newTagSync(p storage.Provider) *typeSync[api.Tag, *models.Tag] {
	return &typeSync[api.Tag, *models.Tag]{
		adapter: tagAdapter{tags: p.Tags()},
		history: p.History(),
	}
}

func (a tagAdapter) Kind() models.Kind { return models.KindTag }

func (a tagAdapter) Store() storage.SnapshotStorage[*models.Tag] { return a.tags }

func (a tagAdapter) ClientModified(item api.Tag) int64 { return item.UpdateDate }

func (a tagAdapter) Refs(item api.Tag) []string { return nil }

func (a tagAdapter) Rewrite(item *api.Tag, resolved map[string]string) {}

func (a tagAdapter) ByKey(ctx context.Context, userID string, item api.Tag) (*models.Tag, error) {
	return a.tags.ByName(ctx, userID, item.Name)
}

func (a tagAdapter) New(userID string, item api.Tag) (*models.Tag, error) {
	return &models.Tag{
		SyncMeta: models.SyncMeta{
			ID:         uuid.NewString(),
			UserID:     userID,
			UpdateDate: item.UpdateDate,
		},
		Name:     item.Name,
		ColorKey: item.ColorKey,
	}, nil
}

func (a tagAdapter) Apply(t *models.Tag, item api.Tag) error {
	t.Name = item.Name
	t.ColorKey = item.ColorKey
	return nil
}

// Repair следит за уникальностью ColorKey до generic-слияния. Если ключ
// клиента занят другой меткой, назначается наименьшее свободное
// положительное целое; при server-favoring слиянии остаётся серверный
// ключ, он уже уникален. Исправленный ключ подставляется в клиентский
// payload, чтобы дальнейшая запись была самосогласованной.
func (a tagAdapter) Repair(ctx context.Context, userID string, item *api.Tag, server *models.Tag, favorClient bool) (bool, error) {
	if !favorClient {
		// серверная строка авторитетна и уже удовлетворяет ограничению
		if server != nil && item.ColorKey != server.ColorKey {
			item.ColorKey = server.ColorKey
			return true, nil
		}
		return false, nil
	}

	keys, err := a.tags.ColorKeys(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("failed to list tag color keys: %w", err)
	}

	assigned := make(map[int]bool, len(keys))
	for _, k := range keys {
		assigned[k] = true
	}
	if server != nil {
		// собственный ключ серверной строки не считается занятым
		delete(assigned, server.ColorKey)
	}

	if item.ColorKey > 0 && !assigned[item.ColorKey] {
		return false, nil
	}

	free := smallestFreeKey(assigned)
	changed := item.ColorKey != free
	item.ColorKey = free

	return changed, nil
}

// smallestFreeKey возвращает наименьшее положительное целое,
// отсутствующее среди занятых ключей.
func smallestFreeKey(assigned map[int]bool) int {
	key := 1
	for assigned[key] {
		key++
	}
	return key
}

func (a tagAdapter) Wire(t *models.Tag) api.Tag {
	return api.Tag{
		ID:         t.ID,
		Name:       t.Name,
		ColorKey:   t.ColorKey,
		UpdateDate: t.UpdateDate,
	}
}
