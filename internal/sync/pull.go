package sync

import (
	"context"
	"fmt"

	"github.com/mvailur/syncmarks/internal/models"
	"github.com/mvailur/syncmarks/pkg/api"
)

// Pull вычисляет дельту изменений с fromToken (не включая) по toToken
// (включая). Пустой fromToken — режим полного снапшота: все текущие
// строки отдаются как create. Ответ всегда несёт текущий head-токен,
// клиент сохраняет его как новый локальный курсор.
func (s *Service) Pull(ctx context.Context, userID, fromToken, toToken string) (*api.PullResponse, error) {
	var from, to int64

	if fromToken != "" {
		c, err := DecodeToken(fromToken)
		if err != nil {
			return nil, err
		}
		from = c.Head
	}
	if toToken != "" {
		c, err := DecodeToken(toToken)
		if err != nil {
			return nil, err
		}
		to = c.Head
	}

	p := s.store
	ledger := NewLedger(p.Commits())

	head, err := ledger.Head(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp := &api.PullResponse{HeadCommit: head}

	if resp.Folders, err = newFolderSync(p).delta(ctx, userID, from, to); err != nil {
		return nil, fmt.Errorf("folders: %w", err)
	}
	if resp.Tags, err = newTagSync(p).delta(ctx, userID, from, to); err != nil {
		return nil, fmt.Errorf("tags: %w", err)
	}
	if resp.Bookmarks, err = newBookmarkSync(p).delta(ctx, userID, from, to); err != nil {
		return nil, fmt.Errorf("bookmarks: %w", err)
	}
	if resp.Favorites, err = newFavoriteSync(p).delta(ctx, userID, from, to); err != nil {
		return nil, fmt.Errorf("favorites: %w", err)
	}
	if resp.Settings, err = newSettingSync(p).delta(ctx, userID, from, to); err != nil {
		return nil, fmt.Errorf("settings: %w", err)
	}

	// удаления видны только в инкрементальном режиме: при полном снапшоте
	// клиенту нечего удалять локально
	if from > 0 {
		entries, err := p.History().Window(ctx, userID, from, to)
		if err != nil {
			return nil, fmt.Errorf("history: %w", err)
		}
		for _, e := range entries {
			switch e.EntityType {
			case models.KindFolder:
				resp.Folders.Delete = append(resp.Folders.Delete, e.EntityID)
			case models.KindTag:
				resp.Tags.Delete = append(resp.Tags.Delete, e.EntityID)
			case models.KindBookmark:
				resp.Bookmarks.Delete = append(resp.Bookmarks.Delete, e.EntityID)
			case models.KindFavorite:
				resp.Favorites.Delete = append(resp.Favorites.Delete, e.EntityID)
			case models.KindSetting:
				resp.Settings.Delete = append(resp.Settings.Delete, e.EntityID)
			}
		}
	}

	return resp, nil
}

// CheckUpdate сообщает клиенту, появились ли на сервере изменения
// относительно его локального коммита.
func (s *Service) CheckUpdate(ctx context.Context, userID, localToken string) (*api.CheckUpdateResponse, error) {
	ledger := NewLedger(s.store.Commits())

	exist, head, err := ledger.CheckUpdate(ctx, localToken, userID)
	if err != nil {
		return nil, err
	}

	return &api.CheckUpdateResponse{
		ExistUpdate: exist,
		HeadCommit:  head,
	}, nil
}
