package sync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mvailur/syncmarks/internal/models"
	"github.com/mvailur/syncmarks/internal/server/storage"
)

// Collection — имя коллекции сущностей, под которую движок ведёт единую
// цепочку коммитов. Вся иерархия закладок синхронизируется одной цепочкой.
const Collection = "bookmarks"

// Ledger ведёт линейную цепочку коммитов пользователя. Штампы — unix
// millis, строго возрастающие в пределах цепочки; продвижение происходит
// ровно один раз на успешный push, после всех мутаций сущностей.
type Ledger struct {
	commits storage.CommitStorage
	now     func() time.Time
}

// NewLedger создаёт Ledger поверх хранилища коммитов.
func NewLedger(commits storage.CommitStorage) *Ledger {
	return &Ledger{
		commits: commits,
		now:     time.Now,
	}
}

// head возвращает текущее состояние цепочки или nil, если её ещё нет.
func (l *Ledger) head(ctx context.Context, userID string) (*models.Commit, error) {
	c, err := l.commits.Get(ctx, userID, Collection)
	if err != nil {
		if errors.Is(err, storage.ErrCommitNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read commit chain: %w", err)
	}
	return c, nil
}

// Stage возвращает свежий штамп-кандидат для выполняющегося push.
// Состояние не мутируется. Штамп строго больше текущего head: если
// локальные часы отстают, берётся head+1 (логика часов Лампорта).
func (l *Ledger) Stage(ctx context.Context, userID string) (int64, error) {
	cur, err := l.head(ctx, userID)
	if err != nil {
		return 0, err
	}

	stamp := l.now().UnixMilli()
	if cur != nil && stamp <= cur.Head {
		stamp = cur.Head + 1
	}

	return stamp, nil
}

// Commit продвигает цепочку на подготовленный штамп и возвращает новый
// токен. Первая фиксация создаёт цепочку (root = head = stage), дальше
// previous сдвигается на старый head, root неизменен.
func (l *Ledger) Commit(ctx context.Context, stage int64, userID string) (string, error) {
	cur, err := l.head(ctx, userID)
	if err != nil {
		return "", err
	}

	var next models.Commit
	if cur == nil {
		next = models.Commit{Head: stage, Root: stage}
	} else {
		next = models.Commit{Head: stage, Root: cur.Root, Previous: cur.Head}
	}

	if err := l.commits.Put(ctx, userID, Collection, &next); err != nil {
		return "", fmt.Errorf("failed to advance commit chain: %w", err)
	}

	return EncodeToken(next), nil
}

// Head возвращает токен текущего head или пустую строку, если
// пользователь ещё ничего не синхронизировал.
func (l *Ledger) Head(ctx context.Context, userID string) (string, error) {
	cur, err := l.head(ctx, userID)
	if err != nil {
		return "", err
	}
	if cur == nil {
		return "", nil
	}
	return EncodeToken(*cur), nil
}

// CheckUpdate сообщает, расходится ли локальный head клиента с серверным.
// Пустой localToken означает, что у клиента ничего нет: любое серверное
// состояние считается обновлением.
func (l *Ledger) CheckUpdate(ctx context.Context, localToken, userID string) (bool, string, error) {
	cur, err := l.head(ctx, userID)
	if err != nil {
		return false, "", err
	}

	if cur == nil {
		// серверу нечего отдавать
		return false, "", nil
	}

	headToken := EncodeToken(*cur)

	if localToken == "" {
		return true, headToken, nil
	}

	local, err := DecodeToken(localToken)
	if err != nil {
		return false, "", err
	}

	return local.Head != cur.Head, headToken, nil
}
