package sqlite

import (
	"context"
	"fmt"

	"github.com/mvailur/syncmarks/internal/models"
)

// tagStore реализует storage.TagStorage.
type tagStore struct {
	*snapshotStore[*models.Tag]
}

func newTagSnapshots(q dbtx) *snapshotStore[*models.Tag] {
	return &snapshotStore[*models.Tag]{
		q: q,
		c: rowCodec[*models.Tag]{
			table:   "tags",
			columns: []string{"name", "color_key"},
			values: func(t *models.Tag) ([]any, error) {
				return []any{t.Name, t.ColorKey}, nil
			},
			newRow: func() (*models.Tag, []any, func() error) {
				t := &models.Tag{}
				return t, []any{&t.Name, &t.ColorKey}, nil
			},
		},
	}
}

// ByName resolves the tag natural key (name)
func (st *tagStore) ByName(ctx context.Context, userID, name string) (*models.Tag, error) {
	return st.one(ctx, "user_id = ? AND name = ?", userID, name)
}

// ColorKeys returns every color key currently assigned to the user's tags
func (st *tagStore) ColorKeys(ctx context.Context, userID string) ([]int, error) {
	rows, err := st.q.QueryContext(ctx,
		"SELECT color_key FROM tags WHERE user_id = ? ORDER BY color_key ASC", userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query tag color keys: %w", err)
	}
	defer rows.Close()

	var keys []int
	for rows.Next() {
		var key int
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("failed to scan color key: %w", err)
		}
		keys = append(keys, key)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return keys, nil
}
