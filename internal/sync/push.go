// Package sync реализует ядро синхронизации: журнал коммитов, резолвер
// зависимостей по временным id, LWW-разрешение конфликтов и конвейеры
// push/pull поверх generic-хранилища снапшотов.
package sync

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mvailur/syncmarks/internal/server/storage"
	"github.com/mvailur/syncmarks/pkg/api"
)

// Service — движок синхронизации. Все операции request-scoped; push
// выполняется в одной транзакции хранилища, журнал коммитов продвигается
// ровно один раз после всех мутаций.
type Service struct {
	logger *slog.Logger
	store  storage.Provider
}

// NewService создаёт движок синхронизации.
func NewService(logger *slog.Logger, store storage.Provider) *Service {
	return &Service{
		logger: logger,
		store:  store,
	}
}

// Push применяет полный входящий пакет: типы обрабатываются в порядке
// зависимостей (папки → метки → закладки → избранное → настройки),
// карта временных id общая для всего push-а. Вся работа — включая
// продвижение журнала — атомарна: ошибка любого типа откатывает всё.
func (s *Service) Push(ctx context.Context, userID string, req *api.PushRequest) (*api.PushResponse, error) {
	var resp *api.PushResponse

	err := s.store.InTransaction(ctx, func(p storage.Provider) error {
		ledger := NewLedger(p.Commits())

		// защита от слепого слияния: расхождение локального коммита
		// клиента с серверным head означает, что клиент должен сначала
		// выполнить pull
		if req.LocalCommit != "" {
			local, err := DecodeToken(req.LocalCommit)
			if err != nil {
				return err
			}
			head, err := ledger.head(ctx, userID)
			if err != nil {
				return err
			}
			if head == nil || head.Head != local.Head {
				return ErrStaleClient
			}
		}

		stage, err := ledger.Stage(ctx, userID)
		if err != nil {
			return err
		}

		resolved := make(map[string]string)
		resp = &api.PushResponse{}

		folders, pairs, err := newFolderSync(p).apply(ctx, userID, req.Folders, stage, resolved)
		if err != nil {
			return fmt.Errorf("folders: %w", err)
		}
		resp.Folders = *folders
		resp.Pairs = append(resp.Pairs, pairs...)

		tags, pairs, err := newTagSync(p).apply(ctx, userID, req.Tags, stage, resolved)
		if err != nil {
			return fmt.Errorf("tags: %w", err)
		}
		resp.Tags = *tags
		resp.Pairs = append(resp.Pairs, pairs...)

		bookmarks, pairs, err := newBookmarkSync(p).apply(ctx, userID, req.Bookmarks, stage, resolved)
		if err != nil {
			return fmt.Errorf("bookmarks: %w", err)
		}
		resp.Bookmarks = *bookmarks
		resp.Pairs = append(resp.Pairs, pairs...)

		favorites, pairs, err := newFavoriteSync(p).apply(ctx, userID, req.Favorites, stage, resolved)
		if err != nil {
			return fmt.Errorf("favorites: %w", err)
		}
		resp.Favorites = *favorites
		resp.Pairs = append(resp.Pairs, pairs...)

		settings, pairs, err := newSettingSync(p).apply(ctx, userID, req.Settings, stage, resolved)
		if err != nil {
			return fmt.Errorf("settings: %w", err)
		}
		resp.Settings = *settings
		resp.Pairs = append(resp.Pairs, pairs...)

		// единственная отметка «это произошло» для всего пакета
		token, err := ledger.Commit(ctx, stage, userID)
		if err != nil {
			return err
		}
		resp.HeadCommit = token

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("push applied",
		"user_id", userID,
		"pairs", len(resp.Pairs),
	)

	return resp, nil
}
