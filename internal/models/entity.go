package models

// Action описывает последнее действие, применённое к снапшоту сущности.
type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Kind определяет тип синхронизируемой сущности.
type Kind string

const (
	KindFolder   Kind = "folder"
	KindTag      Kind = "tag"
	KindBookmark Kind = "bookmark"
	KindFavorite Kind = "favorite"
	KindSetting  Kind = "setting"
)

// SyncMeta содержит общие поля синхронизации, встраиваемые в каждую сущность.
// CreateCommit и UpdateCommit — серверные штампы коммитов (unix millis),
// UpdateDate — клиентское время последнего изменения (unix millis),
// по нему работает LWW-слияние.
type SyncMeta struct {
	ID           string `json:"id"`
	UserID       string `json:"user_id"`
	LastAction   Action `json:"last_action"`
	CreateCommit int64  `json:"create_commit"`
	UpdateCommit int64  `json:"update_commit"`
	UpdateDate   int64  `json:"update_date"`
}

// EntityID возвращает постоянный идентификатор сущности.
func (m *SyncMeta) EntityID() string { return m.ID }

// Owner возвращает владельца сущности.
func (m *SyncMeta) Owner() string { return m.UserID }

// ModifiedAt возвращает клиентское время изменения (unix millis).
func (m *SyncMeta) ModifiedAt() int64 { return m.UpdateDate }

// Meta даёт доступ к встроенным полям синхронизации.
func (m *SyncMeta) Meta() *SyncMeta { return m }

// StampCreate помечает снапшот как созданный в рамках коммита.
func (m *SyncMeta) StampCreate(commit int64) {
	m.LastAction = ActionCreate
	m.CreateCommit = commit
	m.UpdateCommit = commit
}

// StampUpdate помечает снапшот как обновлённый в рамках коммита.
func (m *SyncMeta) StampUpdate(commit int64) {
	m.LastAction = ActionUpdate
	m.UpdateCommit = commit
}

// Snapshot — общий контракт строки снапшота для generic-хранилища
// и конвейеров синхронизации. Реализуется через встраивание SyncMeta.
type Snapshot interface {
	EntityID() string
	Owner() string
	ModifiedAt() int64
	Meta() *SyncMeta
}

// Folder — папка закладок. Натуральный ключ: (parent_id, name).
type Folder struct {
	SyncMeta
	ParentID string `json:"parent_id"` // пустая строка = корень
	Name     string `json:"name"`
	Position int    `json:"position"`
}

// Tag — метка закладки. Натуральные ключи: name и отдельно color_key.
type Tag struct {
	SyncMeta
	Name     string `json:"name"`
	ColorKey int    `json:"color_key"` // уникален в пределах пользователя
}

// Bookmark — закладка. Натуральный ключ: (folder_id, title).
type Bookmark struct {
	SyncMeta
	FolderID    string   `json:"folder_id"`
	Title       string   `json:"title"`
	URL         string   `json:"url"`
	Description string   `json:"description"`
	TagIDs      []string `json:"tag_ids"`
}

// Favorite — элемент избранного. Натуральный ключ: (item_type, item_id).
type Favorite struct {
	SyncMeta
	ItemType string `json:"item_type"` // folder | tag | bookmark
	ItemID   string `json:"item_id"`
	Position int    `json:"position"`
}

// Setting — настройка приложения. Натуральный ключ: name.
type Setting struct {
	SyncMeta
	Name  string `json:"name"`
	Value string `json:"value"`
}
