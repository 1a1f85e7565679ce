package sync

import (
	"github.com/google/uuid"
)

// Op — одна операция create/update в терминах резолвера зависимостей.
// LocalID — временный id для create и постоянный id для update; Refs —
// ссылки операции, которые должны быть разрешены раньше неё.
type Op[T any] struct {
	LocalID string
	Refs    []string
	Item    T
	Create  bool
}

// isPermanentID отличает серверный постоянный id от клиентского
// временного: сервер выдаёт только UUID, временные id клиентов —
// произвольные строки.
func isPermanentID(id string) bool {
	return uuid.Validate(id) == nil
}

// Levels упорядочивает операции уровнями так, что любая ссылка
// разрешается раньше ссылающейся операции, независимо от порядка
// массивов клиента. resolved — уже известные соответствия временных id
// (от ранее обработанных типов сущностей); карта не мутируется.
//
// Ссылка считается готовой, если она пуста, уже разрешена, попала в
// предыдущий уровень или является постоянным id вне пакета. Если уровень
// пуст при непустой очереди — в пакете цикл ссылок либо ссылка на
// отсутствующий временный id; возвращается CycleError с застрявшими id.
func Levels[T any](ops []Op[T], resolved map[string]string) ([][]Op[T], error) {
	if len(ops) == 0 {
		return nil, nil
	}

	// все локальные id пакета: ссылки на них не могут быть «внешними»
	local := make(map[string]bool, len(ops))
	for _, op := range ops {
		local[op.LocalID] = true
	}

	done := make(map[string]bool, len(ops))

	ready := func(op Op[T]) bool {
		for _, ref := range op.Refs {
			if ref == "" || done[ref] {
				continue
			}
			if _, ok := resolved[ref]; ok {
				continue
			}
			if !local[ref] && isPermanentID(ref) {
				continue
			}
			return false
		}
		return true
	}

	pending := ops
	var levels [][]Op[T]

	for len(pending) > 0 {
		var level, rest []Op[T]
		for _, op := range pending {
			if ready(op) {
				level = append(level, op)
			} else {
				rest = append(rest, op)
			}
		}

		if len(level) == 0 {
			stuck := make([]string, 0, len(rest))
			for _, op := range rest {
				stuck = append(stuck, op.LocalID)
			}
			return nil, &CycleError{Stuck: stuck}
		}

		for _, op := range level {
			done[op.LocalID] = true
		}

		levels = append(levels, level)
		pending = rest
	}

	return levels, nil
}
