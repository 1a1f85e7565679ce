// Package api содержит wire-типы протокола синхронизации.
// Пакет самодостаточен: клиенты импортируют только его.
package api

// Pair — соответствие временного клиентского id постоянному серверному.
// Клиент переписывает локальные ссылки по этому списку после push.
type Pair struct {
	LocalID string `json:"localId"`
	CloudID string `json:"cloudId"`
}

// CreateOp — операция создания: payload плюс выбранный клиентом временный id.
type CreateOp[T any] struct {
	TempID string `json:"tempId"`
	Item   T      `json:"item"`
}

// UpdateOp — операция обновления сущности с постоянным id.
type UpdateOp[T any] struct {
	ID   string `json:"id"`
	Item T      `json:"item"`
}

// DeleteOp — операция удаления. DeleteDate — клиентское время удаления
// (unix millis), попадает в журнал удалений как есть.
type DeleteOp struct {
	ID         string `json:"id"`
	DeleteDate int64  `json:"deleteDate"`
}

// Batch — входящий пакет операций одного типа сущности.
// Любой из массивов может быть пустым.
type Batch[T any] struct {
	Create []CreateOp[T] `json:"create,omitempty"`
	Update []UpdateOp[T] `json:"update,omitempty"`
	Delete []DeleteOp    `json:"delete,omitempty"`
}

// Delta — авторитетные изменения сервера по одному типу сущности,
// которые клиент обязан принять локально.
type Delta[T any] struct {
	Create []T      `json:"create,omitempty"`
	Update []T      `json:"update,omitempty"`
	Delete []string `json:"delete,omitempty"`
}

// Folder — папка закладок. ParentID в операциях создания может
// содержать временный id другой папки из того же пакета.
type Folder struct {
	ID         string `json:"id,omitempty"`
	ParentID   string `json:"parentId,omitempty"`
	Name       string `json:"name"`
	Position   int    `json:"position,omitempty"`
	UpdateDate int64  `json:"updateDate"`
}

// Tag — метка с уникальным в пределах пользователя целым ColorKey.
type Tag struct {
	ID         string `json:"id,omitempty"`
	Name       string `json:"name"`
	ColorKey   int    `json:"colorKey"`
	UpdateDate int64  `json:"updateDate"`
}

// Bookmark — закладка. FolderID и TagIDs могут содержать временные id.
type Bookmark struct {
	ID          string   `json:"id,omitempty"`
	FolderID    string   `json:"folderId,omitempty"`
	Title       string   `json:"title"`
	URL         string   `json:"url"`
	Description string   `json:"description,omitempty"`
	TagIDs      []string `json:"tagIds,omitempty"`
	UpdateDate  int64    `json:"updateDate"`
}

// Favorite — элемент избранного, ссылается на папку, метку или закладку.
type Favorite struct {
	ID         string `json:"id,omitempty"`
	ItemType   string `json:"itemType"` // folder | tag | bookmark
	ItemID     string `json:"itemId"`
	Position   int    `json:"position,omitempty"`
	UpdateDate int64  `json:"updateDate"`
}

// Setting — настройка приложения.
type Setting struct {
	ID         string `json:"id,omitempty"`
	Name       string `json:"name"`
	Value      string `json:"value"`
	UpdateDate int64  `json:"updateDate"`
}

// PushRequest — полный входящий пакет одного push.
// LocalCommit — последний известный клиенту токен коммита; если задан
// и расходится с серверным head, сервер отвечает pull_required.
type PushRequest struct {
	LocalCommit string          `json:"localCommit,omitempty"`
	Folders     Batch[Folder]   `json:"folders,omitempty"`
	Tags        Batch[Tag]      `json:"tags,omitempty"`
	Bookmarks   Batch[Bookmark] `json:"bookmarks,omitempty"`
	Favorites   Batch[Favorite] `json:"favorites,omitempty"`
	Settings    Batch[Setting]  `json:"settings,omitempty"`
}

// PushResponse — результат push: новый head, соответствия временных id
// и серверные авторитетные дельты для локальной сверки клиента.
type PushResponse struct {
	HeadCommit string          `json:"headCommit"`
	Pairs      []Pair          `json:"pair,omitempty"`
	Folders    Delta[Folder]   `json:"folders,omitempty"`
	Tags       Delta[Tag]      `json:"tags,omitempty"`
	Bookmarks  Delta[Bookmark] `json:"bookmarks,omitempty"`
	Favorites  Delta[Favorite] `json:"favorites,omitempty"`
	Settings   Delta[Setting]  `json:"settings,omitempty"`
}

// PullResponse — дельта (или полный снапшот) изменений с указанного коммита.
type PullResponse struct {
	HeadCommit string          `json:"headCommit"`
	Folders    Delta[Folder]   `json:"folders,omitempty"`
	Tags       Delta[Tag]      `json:"tags,omitempty"`
	Bookmarks  Delta[Bookmark] `json:"bookmarks,omitempty"`
	Favorites  Delta[Favorite] `json:"favorites,omitempty"`
	Settings   Delta[Setting]  `json:"settings,omitempty"`
}

// CheckUpdateResponse — ответ на проверку актуальности локального коммита.
type CheckUpdateResponse struct {
	ExistUpdate bool   `json:"existUpdate"`
	HeadCommit  string `json:"headCommit"`
}

// ErrorResponse — единый формат ошибки API.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Коды ошибок API.
const (
	CodeValidation   = "validation_error"
	CodeConflict     = "conflict"
	CodePullRequired = "pull_required"
	CodeNotFound     = "not_found"
	CodeCycle        = "cyclic_dependency"
	CodeInternal     = "internal_error"
)
