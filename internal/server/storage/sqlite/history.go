package sqlite

import (
	"context"
	"fmt"

	"github.com/mvailur/syncmarks/internal/models"
)

// historyStore реализует storage.HistoryStorage поверх append-only
// таблицы history. Записи никогда не обновляются и не удаляются.
type historyStore struct {
	q dbtx
}

// Append stores one immutable deletion record
func (st *historyStore) Append(ctx context.Context, e *models.HistoryEntry) error {
	query := `
		INSERT INTO history (id, user_id, entity_type, entity_id, delete_date, commit_stamp)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := st.q.ExecContext(ctx, query,
		e.ID,
		e.UserID,
		string(e.EntityType),
		e.EntityID,
		e.DeleteDate,
		e.Commit,
	)
	if err != nil {
		return fmt.Errorf("failed to append history entry: %w", err)
	}

	return nil
}

// Window returns deletion records with commit in (from, to]
func (st *historyStore) Window(ctx context.Context, userID string, from, to int64) ([]*models.HistoryEntry, error) {
	query := `
		SELECT id, user_id, entity_type, entity_id, delete_date, commit_stamp
		FROM history
		WHERE user_id = ? AND commit_stamp > ?
	`
	args := []any{userID, from}

	if to > 0 {
		query += " AND commit_stamp <= ?"
		args = append(args, to)
	}
	query += " ORDER BY commit_stamp ASC, id ASC"

	rows, err := st.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query history window: %w", err)
	}
	defer rows.Close()

	var entries []*models.HistoryEntry
	for rows.Next() {
		e := &models.HistoryEntry{}
		if err := rows.Scan(&e.ID, &e.UserID, &e.EntityType, &e.EntityID, &e.DeleteDate, &e.Commit); err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return entries, nil
}
