package sync

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/mvailur/syncmarks/internal/models"
)

// tokenVersion — текущая версия схемы токена коммита. Декодер отвергает
// неизвестные версии, чтобы формат мог эволюционировать без рассинхронизации
// старых клиентов.
const tokenVersion = 1

// tokenEnvelope — версионированная обёртка клиентского токена коммита.
// Сериализуется в JSON и кодируется base64url без паддинга; round-trip
// обязан быть побайтово стабильным.
type tokenEnvelope struct {
	Version  int   `json:"v"`
	Head     int64 `json:"head"`
	Root     int64 `json:"root"`
	Previous int64 `json:"prev"`
}

// EncodeToken кодирует коммит в непрозрачный клиентский токен.
func EncodeToken(c models.Commit) string {
	env := tokenEnvelope{
		Version:  tokenVersion,
		Head:     c.Head,
		Root:     c.Root,
		Previous: c.Previous,
	}

	// json.Marshal детерминирован для фиксированной структуры
	data, _ := json.Marshal(env)
	return base64.RawURLEncoding.EncodeToString(data)
}

// DecodeToken восстанавливает коммит из клиентского токена.
// Возвращает ErrBadToken для мусора и неподдерживаемых версий.
func DecodeToken(token string) (models.Commit, error) {
	data, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return models.Commit{}, fmt.Errorf("%w: %v", ErrBadToken, err)
	}

	var env tokenEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return models.Commit{}, fmt.Errorf("%w: %v", ErrBadToken, err)
	}

	if env.Version != tokenVersion {
		return models.Commit{}, fmt.Errorf("%w: unsupported version %d", ErrBadToken, env.Version)
	}
	if env.Head <= 0 || env.Root <= 0 {
		return models.Commit{}, fmt.Errorf("%w: empty commit stamps", ErrBadToken)
	}

	return models.Commit{Head: env.Head, Root: env.Root, Previous: env.Previous}, nil
}
