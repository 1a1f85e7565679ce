package sync

import (
	"context"
	"errors"
	"fmt"

	"github.com/oklog/ulid/v2"

	"github.com/mvailur/syncmarks/internal/models"
	"github.com/mvailur/syncmarks/internal/server/storage"
	"github.com/mvailur/syncmarks/pkg/api"
)

// Adapter связывает один тип сущности с generic-конвейером синхронизации.
// W — wire-тип элемента (pkg/api), S — тип строки снапшота (internal/models).
// Хранилище адаптера привязано к транзакции текущего push.
type Adapter[W any, S models.Snapshot] interface {
	// Kind возвращает тип сущности
	Kind() models.Kind

	// Store возвращает generic-хранилище снапшотов этого типа
	Store() storage.SnapshotStorage[S]

	// ClientModified возвращает клиентское время изменения элемента (unix millis)
	ClientModified(item W) int64

	// Refs возвращает ссылки элемента, которые могут быть временными id
	Refs(item W) []string

	// Rewrite подставляет постоянные id вместо временных по карте resolved
	Rewrite(item *W, resolved map[string]string)

	// ByKey ищет серверный снапшот по натуральному ключу элемента.
	// Возвращает storage.ErrEntryNotFound, если совпадения нет.
	ByKey(ctx context.Context, userID string, item W) (S, error)

	// New строит новый снапшот из клиентского элемента, назначая постоянный id
	New(userID string, item W) (S, error)

	// Apply переносит клиентский payload в существующий снапшот
	Apply(s S, item W) error

	// Repair чинит type-specific ограничения уникальности до слияния
	// (например, colorKey меток). Возвращает true, если клиентский payload
	// был изменён и его нужно вернуть клиенту.
	Repair(ctx context.Context, userID string, item *W, server S, favorClient bool) (bool, error)

	// Wire преобразует снапшот в элемент ответа
	Wire(s S) W
}

// typeSync прогоняет пакет одного типа сущности через резолвер
// зависимостей, разрешение конфликтов и запись снапшотов.
type typeSync[W any, S models.Snapshot] struct {
	adapter Adapter[W, S]
	history storage.HistoryStorage
}

// apply обрабатывает create/update/delete операции пакета одним штампом
// коммита. Карта resolved пополняется соответствиями временных id и
// передаётся дальше следующим типам сущностей.
func (t *typeSync[W, S]) apply(
	ctx context.Context,
	userID string,
	batch api.Batch[W],
	stamp int64,
	resolved map[string]string,
) (*api.Delta[W], []api.Pair, error) {
	ops := make([]Op[W], 0, len(batch.Create)+len(batch.Update))
	for _, c := range batch.Create {
		ops = append(ops, Op[W]{LocalID: c.TempID, Refs: t.adapter.Refs(c.Item), Item: c.Item, Create: true})
	}
	for _, u := range batch.Update {
		item := u.Item
		ops = append(ops, Op[W]{LocalID: u.ID, Refs: t.adapter.Refs(item), Item: item})
	}

	levels, err := Levels(ops, resolved)
	if err != nil {
		return nil, nil, err
	}

	delta := &api.Delta[W]{}
	var pairs []api.Pair

	for _, level := range levels {
		for _, op := range level {
			pair, err := t.applyOp(ctx, userID, op, stamp, resolved, delta)
			if err != nil {
				return nil, nil, err
			}
			if pair != nil {
				pairs = append(pairs, *pair)
			}
		}
	}

	for _, d := range batch.Delete {
		if err := t.applyDelete(ctx, userID, d, stamp); err != nil {
			return nil, nil, err
		}
		delta.Delete = append(delta.Delete, d.ID)
	}

	return delta, pairs, nil
}

// applyOp разрешает конфликт одной операции create/update и записывает
// победившее состояние. Возвращает пару temp→permanent для create.
func (t *typeSync[W, S]) applyOp(
	ctx context.Context,
	userID string,
	op Op[W],
	stamp int64,
	resolved map[string]string,
	delta *api.Delta[W],
) (*api.Pair, error) {
	store := t.adapter.Store()

	item := op.Item
	t.adapter.Rewrite(&item, resolved)

	// ищем серверное состояние: по постоянному id для update,
	// по натуральному ключу для create (дедупликация повторной отправки)
	var server S
	var found bool
	var err error

	if op.Create {
		server, err = t.adapter.ByKey(ctx, userID, item)
	} else {
		server, err = store.ByID(ctx, userID, op.LocalID)
		if errors.Is(err, storage.ErrEntryNotFound) {
			return nil, fmt.Errorf("%s %s: %w", t.adapter.Kind(), op.LocalID, ErrNotFound)
		}
	}
	switch {
	case err == nil:
		found = true
	case errors.Is(err, storage.ErrEntryNotFound):
		found = false
	default:
		return nil, fmt.Errorf("failed to look up %s: %w", t.adapter.Kind(), err)
	}

	if !found {
		// серверного совпадения нет: создаём новое состояние из payload
		var zero S
		changed, err := t.adapter.Repair(ctx, userID, &item, zero, true)
		if err != nil {
			return nil, err
		}

		s, err := t.adapter.New(userID, item)
		if err != nil {
			return nil, err
		}
		s.Meta().StampCreate(stamp)

		if err := store.Insert(ctx, s); err != nil {
			if errors.Is(err, storage.ErrDuplicateEntry) {
				return nil, fmt.Errorf("%s %s: %w", t.adapter.Kind(), op.LocalID, ErrConflict)
			}
			return nil, fmt.Errorf("failed to insert %s: %w", t.adapter.Kind(), err)
		}

		resolved[op.LocalID] = s.EntityID()
		if changed {
			// payload был исправлен сервером, клиент должен его принять
			delta.Create = append(delta.Create, t.adapter.Wire(s))
		}
		return &api.Pair{LocalID: op.LocalID, CloudID: s.EntityID()}, nil
	}

	// серверное состояние есть: LWW по клиентскому времени изменения,
	// сервер выигрывает при равенстве
	favorClient := t.adapter.ClientModified(item) > server.ModifiedAt()

	changed, err := t.adapter.Repair(ctx, userID, &item, server, favorClient)
	if err != nil {
		return nil, err
	}

	var pair *api.Pair
	if op.Create {
		// дубль create: temp id указывает на существующую строку
		resolved[op.LocalID] = server.EntityID()
		pair = &api.Pair{LocalID: op.LocalID, CloudID: server.EntityID()}
	} else {
		resolved[op.LocalID] = op.LocalID
	}

	if favorClient {
		// клиентский payload авторитетен и становится серверным состоянием
		if err := t.adapter.Apply(server, item); err != nil {
			return nil, err
		}
		server.Meta().UpdateDate = t.adapter.ClientModified(item)
		server.Meta().StampUpdate(stamp)

		if err := t.adapter.Store().Update(ctx, server); err != nil {
			// победивший payload клиента занял чужой натуральный ключ:
			// переименование на уже существующую сущность неразрешимо
			if errors.Is(err, storage.ErrDuplicateEntry) {
				return nil, fmt.Errorf("%s %s: %w", t.adapter.Kind(), server.EntityID(), ErrConflict)
			}
			return nil, fmt.Errorf("failed to update %s: %w", t.adapter.Kind(), err)
		}

		if changed {
			t.echo(delta, op.Create, server)
		}
		return pair, nil
	}

	// серверный payload авторитетен: строка не трогается, клиент получает
	// её в дельте и перезаписывает локальную копию
	t.echo(delta, op.Create, server)
	return pair, nil
}

// echo кладёт авторитетное серверное состояние в дельту ответа:
// в create, если клиентская операция была create, иначе в update.
func (t *typeSync[W, S]) echo(delta *api.Delta[W], wasCreate bool, s S) {
	if wasCreate {
		delta.Create = append(delta.Create, t.adapter.Wire(s))
	} else {
		delta.Update = append(delta.Update, t.adapter.Wire(s))
	}
}

// applyDelete удаляет строку снапшота и добавляет запись журнала
// удалений. Удаления безусловны: времена не сравниваются.
func (t *typeSync[W, S]) applyDelete(ctx context.Context, userID string, d api.DeleteOp, stamp int64) error {
	err := t.adapter.Store().Delete(ctx, userID, d.ID)
	if err != nil {
		if errors.Is(err, storage.ErrEntryNotFound) {
			return fmt.Errorf("%s %s: %w", t.adapter.Kind(), d.ID, ErrNotFound)
		}
		return fmt.Errorf("failed to delete %s: %w", t.adapter.Kind(), err)
	}

	entry := &models.HistoryEntry{
		ID:         ulid.Make().String(),
		UserID:     userID,
		EntityType: t.adapter.Kind(),
		EntityID:   d.ID,
		DeleteDate: d.DeleteDate,
		Commit:     stamp,
	}
	if err := t.history.Append(ctx, entry); err != nil {
		return fmt.Errorf("failed to record %s deletion: %w", t.adapter.Kind(), err)
	}

	return nil
}

// delta строит pull-дельту одного типа. from == 0 означает полный
// снапшот: каждая строка отдаётся как create, клиенту не с чем diff-ить.
func (t *typeSync[W, S]) delta(ctx context.Context, userID string, from, to int64) (api.Delta[W], error) {
	var delta api.Delta[W]
	store := t.adapter.Store()

	if from == 0 {
		rows, err := store.All(ctx, userID)
		if err != nil {
			return delta, fmt.Errorf("failed to load %s snapshot: %w", t.adapter.Kind(), err)
		}
		for _, s := range rows {
			delta.Create = append(delta.Create, t.adapter.Wire(s))
		}
		return delta, nil
	}

	rows, err := store.ChangedSince(ctx, userID, from, to)
	if err != nil {
		return delta, fmt.Errorf("failed to load %s changes: %w", t.adapter.Kind(), err)
	}

	for _, s := range rows {
		if s.Meta().LastAction == models.ActionCreate {
			delta.Create = append(delta.Create, t.adapter.Wire(s))
		} else {
			delta.Update = append(delta.Update, t.adapter.Wire(s))
		}
	}

	return delta, nil
}
