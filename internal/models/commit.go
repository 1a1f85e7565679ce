package models

// Commit представляет точку синхронизации в линейной цепочке коммитов
// пользователя. Все значения — unix millis. Сервер хранит единственную
// авторитетную строку на пару (пользователь, коллекция); клиенты видят
// коммит только в виде закодированного токена.
type Commit struct {
	Head     int64 `json:"head"`     // последний коммит цепочки
	Root     int64 `json:"root"`     // самый первый коммит, неизменен
	Previous int64 `json:"previous"` // предыдущий head, 0 если его не было
}

// HistoryEntry — запись журнала удалений. Единственный след удалённой
// сущности: сама строка снапшота физически удаляется. Запись неизменяема.
type HistoryEntry struct {
	ID         string `json:"id"` // ULID, сортируется по времени
	UserID     string `json:"user_id"`
	EntityType Kind   `json:"entity_type"`
	EntityID   string `json:"entity_id"`
	DeleteDate int64  `json:"delete_date"` // клиентское время удаления (unix millis)
	Commit     int64  `json:"commit"`      // штамп коммита, в котором применено удаление
}
