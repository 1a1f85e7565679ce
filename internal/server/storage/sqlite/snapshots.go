package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/mvailur/syncmarks/internal/models"
	"github.com/mvailur/syncmarks/internal/server/storage"
)

// metaColumns — общие колонки синхронизации, одинаковые для всех таблиц
// снапшотов. Порядок фиксирован и согласован со scan.
const metaColumns = "id, user_id, last_action, create_commit, update_commit, update_date"

// rowCodec описывает payload-колонки одной таблицы снапшотов.
// Метаданные синхронизации обрабатывает generic-стор, кодек отвечает
// только за специфичные для типа поля.
type rowCodec[S models.Snapshot] struct {
	table   string
	columns []string
	// values возвращает значения payload-колонок в порядке columns
	values func(s S) ([]any, error)
	// newRow возвращает пустой снапшот, приёмники Scan для payload-колонок
	// и finish-хук, выполняемый после скана (nil, если не нужен)
	newRow func() (S, []any, func() error)
}

// snapshotStore — generic-реализация storage.SnapshotStorage поверх
// одной таблицы. Конкретные сторы встраивают его и добавляют только
// поиск по натуральному ключу.
type snapshotStore[S models.Snapshot] struct {
	q dbtx
	c rowCodec[S]
}

func (st *snapshotStore[S]) selectQuery() string {
	return fmt.Sprintf("SELECT %s, %s FROM %s",
		metaColumns, strings.Join(st.c.columns, ", "), st.c.table)
}

// scan читает одну строку: сначала метаданные, затем payload-колонки.
func (st *snapshotStore[S]) scan(row interface{ Scan(dest ...any) error }) (S, error) {
	var zero S

	s, extra, finish := st.c.newRow()
	m := s.Meta()
	dest := append([]any{&m.ID, &m.UserID, &m.LastAction, &m.CreateCommit, &m.UpdateCommit, &m.UpdateDate}, extra...)

	if err := row.Scan(dest...); err != nil {
		return zero, err
	}

	if finish != nil {
		if err := finish(); err != nil {
			return zero, fmt.Errorf("failed to decode %s row: %w", st.c.table, err)
		}
	}

	return s, nil
}

// one выполняет select с условием where и возвращает единственную строку.
func (st *snapshotStore[S]) one(ctx context.Context, where string, args ...any) (S, error) {
	var zero S

	row := st.q.QueryRowContext(ctx, st.selectQuery()+" WHERE "+where, args...)

	s, err := st.scan(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return zero, storage.ErrEntryNotFound
		}
		return zero, fmt.Errorf("failed to query %s: %w", st.c.table, err)
	}

	return s, nil
}

// list выполняет select с условием where и возвращает все строки.
func (st *snapshotStore[S]) list(ctx context.Context, where string, args ...any) ([]S, error) {
	query := st.selectQuery() + " WHERE " + where + " ORDER BY update_commit ASC, id ASC"

	rows, err := st.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", st.c.table, err)
	}
	defer rows.Close()

	var result []S
	for rows.Next() {
		s, err := st.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", st.c.table, err)
		}
		result = append(result, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}

// ByID retrieves a snapshot by its permanent id
func (st *snapshotStore[S]) ByID(ctx context.Context, userID, id string) (S, error) {
	return st.one(ctx, "user_id = ? AND id = ?", userID, id)
}

// Insert stores a new snapshot row
func (st *snapshotStore[S]) Insert(ctx context.Context, s S) error {
	vals, err := st.c.values(s)
	if err != nil {
		return fmt.Errorf("failed to encode %s row: %w", st.c.table, err)
	}

	m := s.Meta()
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", 6+len(st.c.columns)), ", ")
	query := fmt.Sprintf("INSERT INTO %s (%s, %s) VALUES (%s)",
		st.c.table, metaColumns, strings.Join(st.c.columns, ", "), placeholders)

	args := append([]any{m.ID, m.UserID, string(m.LastAction), m.CreateCommit, m.UpdateCommit, m.UpdateDate}, vals...)

	if _, err := st.q.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%s: %w", st.c.table, storage.ErrDuplicateEntry)
		}
		return fmt.Errorf("failed to insert into %s: %w", st.c.table, err)
	}

	return nil
}

// isUniqueViolation распознаёт нарушение UNIQUE-ограничения SQLite.
// Драйвер не экспортирует стабильного типа ошибки, текст — единственный
// переносимый признак.
func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint")
}

// Update overwrites an existing snapshot row
func (st *snapshotStore[S]) Update(ctx context.Context, s S) error {
	vals, err := st.c.values(s)
	if err != nil {
		return fmt.Errorf("failed to encode %s row: %w", st.c.table, err)
	}

	sets := []string{"last_action = ?", "create_commit = ?", "update_commit = ?", "update_date = ?"}
	for _, col := range st.c.columns {
		sets = append(sets, col+" = ?")
	}

	query := fmt.Sprintf("UPDATE %s SET %s WHERE user_id = ? AND id = ?",
		st.c.table, strings.Join(sets, ", "))

	m := s.Meta()
	args := append([]any{string(m.LastAction), m.CreateCommit, m.UpdateCommit, m.UpdateDate}, vals...)
	args = append(args, m.UserID, m.ID)

	result, err := st.q.ExecContext(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%s: %w", st.c.table, storage.ErrDuplicateEntry)
		}
		return fmt.Errorf("failed to update %s: %w", st.c.table, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return storage.ErrEntryNotFound
	}

	return nil
}

// Delete physically removes a snapshot row
func (st *snapshotStore[S]) Delete(ctx context.Context, userID, id string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE user_id = ? AND id = ?", st.c.table)

	result, err := st.q.ExecContext(ctx, query, userID, id)
	if err != nil {
		return fmt.Errorf("failed to delete from %s: %w", st.c.table, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return storage.ErrEntryNotFound
	}

	return nil
}

// All returns every current row for the user
func (st *snapshotStore[S]) All(ctx context.Context, userID string) ([]S, error) {
	return st.list(ctx, "user_id = ?", userID)
}

// ChangedSince returns rows with update_commit in (from, to]
func (st *snapshotStore[S]) ChangedSince(ctx context.Context, userID string, from, to int64) ([]S, error) {
	if to > 0 {
		return st.list(ctx, "user_id = ? AND update_commit > ? AND update_commit <= ?", userID, from, to)
	}
	return st.list(ctx, "user_id = ? AND update_commit > ?", userID, from)
}
