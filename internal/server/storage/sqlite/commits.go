package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mvailur/syncmarks/internal/models"
	"github.com/mvailur/syncmarks/internal/server/storage"
)

// commitStore реализует storage.CommitStorage: единственная строка
// на пару (пользователь, коллекция), продвигаемая upsert-ом.
type commitStore struct {
	q dbtx
}

// Get returns the current chain state
func (st *commitStore) Get(ctx context.Context, userID, collection string) (*models.Commit, error) {
	query := `
		SELECT head, root, previous
		FROM commits
		WHERE user_id = ? AND collection = ?
	`

	c := &models.Commit{}
	err := st.q.QueryRowContext(ctx, query, userID, collection).Scan(&c.Head, &c.Root, &c.Previous)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrCommitNotFound
		}
		return nil, fmt.Errorf("failed to get commit chain: %w", err)
	}

	return c, nil
}

// Put creates or advances the chain (upsert of the single row)
func (st *commitStore) Put(ctx context.Context, userID, collection string, c *models.Commit) error {
	query := `
		INSERT INTO commits (user_id, collection, head, root, previous)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (user_id, collection)
		DO UPDATE SET head = excluded.head, previous = excluded.previous
	`

	_, err := st.q.ExecContext(ctx, query, userID, collection, c.Head, c.Root, c.Previous)
	if err != nil {
		return fmt.Errorf("failed to put commit chain: %w", err)
	}

	return nil
}
