package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/mvailur/syncmarks/internal/server/storage"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// dbtx объединяет *sql.DB и *sql.Tx: все запросы сторов идут через него,
// поэтому один и тот же код работает и вне, и внутри транзакции.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Storage represents SQLite storage implementation
type Storage struct {
	db *sql.DB
	stores
}

// stores выдаёт сторы, привязанные к q (соединение или транзакция).
type stores struct {
	q dbtx
}

// New creates a new SQLite storage instance
// dbPath is the path to the SQLite database file
// Use ":memory:" for in-memory database (useful for testing)
func New(ctx context.Context, dbPath string) (*Storage, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// SQLite с WAL mode поддерживает несколько читателей, но одного писателя
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL;",
		"PRAGMA synchronous = NORMAL;",
		"PRAGMA foreign_keys = ON;",
		"PRAGMA busy_timeout = 5000;",
	}

	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	s := &Storage{db: db, stores: stores{q: db}}

	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection
func (s *Storage) Close() error {
	return s.db.Close()
}

// runMigrations выполняет миграции из embedded FS
func (s *Storage) runMigrations() error {
	goose.SetDialect("sqlite3")
	goose.SetBaseFS(embedMigrations)

	if err := goose.Up(s.db, "migrations"); err != nil {
		return fmt.Errorf("goose up failed: %w", err)
	}

	return nil
}

// DB returns the underlying database connection for testing purposes
func (s *Storage) DB() *sql.DB {
	return s.db
}

// InTransaction выполняет fn внутри одной транзакции: все сторы
// переданного Provider привязаны к ней. Ошибка fn откатывает транзакцию.
func (s *Storage) InTransaction(ctx context.Context, fn func(storage.Provider) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(&txStorage{stores: stores{q: tx}}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback failed: %v (original error: %w)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// txStorage — Provider, уже связанный с открытой транзакцией.
type txStorage struct {
	stores
}

// InTransaction внутри транзакции просто выполняет fn: вложенных
// транзакций SQLite здесь не использует.
func (t *txStorage) InTransaction(ctx context.Context, fn func(storage.Provider) error) error {
	return fn(t)
}

func (s stores) Folders() storage.FolderStorage     { return &folderStore{snapshotStore: newFolderSnapshots(s.q)} }
func (s stores) Tags() storage.TagStorage           { return &tagStore{snapshotStore: newTagSnapshots(s.q)} }
func (s stores) Bookmarks() storage.BookmarkStorage { return &bookmarkStore{snapshotStore: newBookmarkSnapshots(s.q)} }
func (s stores) Favorites() storage.FavoriteStorage { return &favoriteStore{snapshotStore: newFavoriteSnapshots(s.q)} }
func (s stores) Settings() storage.SettingStorage   { return &settingStore{snapshotStore: newSettingSnapshots(s.q)} }
func (s stores) History() storage.HistoryStorage    { return &historyStore{q: s.q} }
func (s stores) Commits() storage.CommitStorage     { return &commitStore{q: s.q} }
