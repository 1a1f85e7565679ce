package sync

import (
	"errors"
	"fmt"
	"strings"
)

// Ошибки конвейеров синхронизации. Хендлеры транслируют их
// в соответствующие коды ответов API.
var (
	// ErrValidation — некорректная форма входящего пакета; отклоняется
	// до каких-либо мутаций
	ErrValidation = errors.New("invalid sync batch")

	// ErrBadToken — токен коммита не декодируется или имеет
	// неподдерживаемую версию
	ErrBadToken = errors.New("malformed commit token")

	// ErrConflict — ограничение уникальности неразрешимо даже после
	// ремедиации слияния
	ErrConflict = errors.New("unresolvable conflict")

	// ErrStaleClient — локальный коммит клиента расходится с серверным
	// head; клиент должен сначала выполнить pull
	ErrStaleClient = errors.New("stale client commit")

	// ErrNotFound — операция update/delete ссылается на несуществующий
	// постоянный id
	ErrNotFound = errors.New("entity not found")
)

// CycleError — резолвер зависимостей не может продвинуться: цикл ссылок
// или ссылка на отсутствующий временный id.
type CycleError struct {
	Stuck []string // локальные id операций, оставшихся без прогресса
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("dependency cycle or dangling reference among: %s", strings.Join(e.Stuck, ", "))
}
