// Package validation проверяет форму входящих пакетов синхронизации.
// Некорректный пакет отклоняется до каких-либо мутаций хранилища.
package validation

import (
	"fmt"

	"github.com/mvailur/syncmarks/internal/sync"
	"github.com/mvailur/syncmarks/pkg/api"
)

// допустимые значения itemType избранного
var favoriteItemTypes = map[string]bool{
	"folder":   true,
	"tag":      true,
	"bookmark": true,
}

// PushRequest проверяет форму всего входящего пакета.
// Все ошибки оборачивают sync.ErrValidation.
func PushRequest(req *api.PushRequest) error {
	if req == nil {
		return fmt.Errorf("%w: empty request", sync.ErrValidation)
	}

	// карта временных id одна на весь запрос: пакет целиком делит одну
	// карту разрешения, повтор tempId между типами склеил бы ссылки
	seen := make(map[string]bool)

	if err := batch("folders", req.Folders, seen, func(f api.Folder) error {
		if f.Name == "" {
			return fmt.Errorf("empty name")
		}
		return nil
	}); err != nil {
		return err
	}

	if err := batch("tags", req.Tags, seen, func(t api.Tag) error {
		if t.Name == "" {
			return fmt.Errorf("empty name")
		}
		if t.ColorKey < 0 {
			return fmt.Errorf("negative colorKey")
		}
		return nil
	}); err != nil {
		return err
	}

	if err := batch("bookmarks", req.Bookmarks, seen, func(b api.Bookmark) error {
		if b.Title == "" {
			return fmt.Errorf("empty title")
		}
		if b.URL == "" {
			return fmt.Errorf("empty url")
		}
		return nil
	}); err != nil {
		return err
	}

	if err := batch("favorites", req.Favorites, seen, func(f api.Favorite) error {
		if !favoriteItemTypes[f.ItemType] {
			return fmt.Errorf("unknown itemType %q", f.ItemType)
		}
		if f.ItemID == "" {
			return fmt.Errorf("empty itemId")
		}
		return nil
	}); err != nil {
		return err
	}

	if err := batch("settings", req.Settings, seen, func(s api.Setting) error {
		if s.Name == "" {
			return fmt.Errorf("empty name")
		}
		return nil
	}); err != nil {
		return err
	}

	return nil
}

// batch проверяет общую форму операций одного типа сущности плюс
// type-specific правило item для каждого payload-а. seen накапливает
// tempId всех типов запроса.
func batch[T any](kind string, b api.Batch[T], seen map[string]bool, item func(T) error) error {
	for i, c := range b.Create {
		if c.TempID == "" {
			return fmt.Errorf("%w: %s create %d: empty tempId", sync.ErrValidation, kind, i)
		}
		if seen[c.TempID] {
			return fmt.Errorf("%w: %s create %d: duplicate tempId %q", sync.ErrValidation, kind, i, c.TempID)
		}
		seen[c.TempID] = true

		if err := item(c.Item); err != nil {
			return fmt.Errorf("%w: %s create %d: %v", sync.ErrValidation, kind, i, err)
		}
	}

	for i, u := range b.Update {
		if u.ID == "" {
			return fmt.Errorf("%w: %s update %d: empty id", sync.ErrValidation, kind, i)
		}
		if err := item(u.Item); err != nil {
			return fmt.Errorf("%w: %s update %d: %v", sync.ErrValidation, kind, i, err)
		}
	}

	for i, d := range b.Delete {
		if d.ID == "" {
			return fmt.Errorf("%w: %s delete %d: empty id", sync.ErrValidation, kind, i)
		}
		if d.DeleteDate <= 0 {
			return fmt.Errorf("%w: %s delete %d: missing deleteDate", sync.ErrValidation, kind, i)
		}
	}

	return nil
}
