package storage

import (
	"context"

	"github.com/mvailur/syncmarks/internal/models"
)

// SnapshotStorage defines the generic persistence contract for the current
// state of one entity type. Every row carries the sync metadata of the last
// touching commit (models.SyncMeta).
type SnapshotStorage[S models.Snapshot] interface {
	// ByID retrieves a snapshot by its permanent id
	// Returns ErrEntryNotFound if no row exists for this user
	ByID(ctx context.Context, userID, id string) (S, error)

	// Insert stores a new snapshot row
	Insert(ctx context.Context, s S) error

	// Update overwrites an existing snapshot row
	Update(ctx context.Context, s S) error

	// Delete physically removes a snapshot row
	// Returns ErrEntryNotFound if no row was removed
	Delete(ctx context.Context, userID, id string) error

	// All returns every current row for the user
	All(ctx context.Context, userID string) ([]S, error)

	// ChangedSince returns rows with update_commit in (from, to].
	// to == 0 means no upper bound.
	ChangedSince(ctx context.Context, userID string, from, to int64) ([]S, error)
}

// FolderStorage persists folders and resolves their natural key.
type FolderStorage interface {
	SnapshotStorage[*models.Folder]

	// ByParentAndName resolves the folder natural key (parent + name)
	ByParentAndName(ctx context.Context, userID, parentID, name string) (*models.Folder, error)
}

// TagStorage persists tags and resolves their natural keys.
type TagStorage interface {
	SnapshotStorage[*models.Tag]

	// ByName resolves the tag natural key (name)
	ByName(ctx context.Context, userID, name string) (*models.Tag, error)

	// ColorKeys returns every color key currently assigned to the user's tags
	ColorKeys(ctx context.Context, userID string) ([]int, error)
}

// BookmarkStorage persists bookmarks and resolves their natural key.
type BookmarkStorage interface {
	SnapshotStorage[*models.Bookmark]

	// ByFolderAndTitle resolves the bookmark natural key (folder + title)
	ByFolderAndTitle(ctx context.Context, userID, folderID, title string) (*models.Bookmark, error)
}

// FavoriteStorage persists favorites and resolves their natural key.
type FavoriteStorage interface {
	SnapshotStorage[*models.Favorite]

	// ByItem resolves the favorite natural key (item type + item id)
	ByItem(ctx context.Context, userID, itemType, itemID string) (*models.Favorite, error)
}

// SettingStorage persists settings and resolves their natural key.
type SettingStorage interface {
	SnapshotStorage[*models.Setting]

	// ByName resolves the setting natural key (name)
	ByName(ctx context.Context, userID, name string) (*models.Setting, error)
}

// HistoryStorage defines the append-only deletion log.
type HistoryStorage interface {
	// Append stores one immutable deletion record
	Append(ctx context.Context, e *models.HistoryEntry) error

	// Window returns deletion records with commit in (from, to],
	// ordered by commit. to == 0 means no upper bound.
	Window(ctx context.Context, userID string, from, to int64) ([]*models.HistoryEntry, error)
}

// CommitStorage persists the per-(user, collection) commit chain.
type CommitStorage interface {
	// Get returns the current chain state
	// Returns ErrCommitNotFound if the user has never pushed
	Get(ctx context.Context, userID, collection string) (*models.Commit, error)

	// Put creates or advances the chain (upsert of the single row)
	Put(ctx context.Context, userID, collection string, c *models.Commit) error
}

// Provider bundles every store behind one handle. InTransaction runs fn
// with a Provider bound to a single transaction, so a push can mutate all
// entity types and advance the ledger atomically.
type Provider interface {
	Folders() FolderStorage
	Tags() TagStorage
	Bookmarks() BookmarkStorage
	Favorites() FavoriteStorage
	Settings() SettingStorage
	History() HistoryStorage
	Commits() CommitStorage

	InTransaction(ctx context.Context, fn func(Provider) error) error
}
