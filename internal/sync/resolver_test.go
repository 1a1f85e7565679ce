package sync

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func op(localID string, create bool, refs ...string) Op[string] {
	return Op[string]{LocalID: localID, Refs: refs, Item: localID, Create: create}
}

func levelIDs(levels [][]Op[string]) [][]string {
	result := make([][]string, 0, len(levels))
	for _, level := range levels {
		ids := make([]string, 0, len(level))
		for _, o := range level {
			ids = append(ids, o.LocalID)
		}
		result = append(result, ids)
	}
	return result
}

func TestLevels_OrderIndependence(t *testing.T) {
	// Folder 2 ссылается на temp id Folder 1; порядок массива не важен
	tests := []struct {
		name string
		ops  []Op[string]
	}{
		{
			name: "child first",
			ops:  []Op[string]{op("t2", true, "t1"), op("t1", true)},
		},
		{
			name: "parent first",
			ops:  []Op[string]{op("t1", true), op("t2", true, "t1")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			levels, err := Levels(tt.ops, map[string]string{})
			require.NoError(t, err)

			require.Len(t, levels, 2)
			assert.Equal(t, [][]string{{"t1"}, {"t2"}}, levelIDs(levels))
		})
	}
}

func TestLevels_ChainOfThree(t *testing.T) {
	ops := []Op[string]{
		op("t3", true, "t2"),
		op("t1", true),
		op("t2", true, "t1"),
	}

	levels, err := Levels(ops, map[string]string{})
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"t1"}, {"t2"}, {"t3"}}, levelIDs(levels))
}

func TestLevels_PermanentReferenceIsReady(t *testing.T) {
	// ссылка на существующий серверный UUID не задерживает операцию
	parent := uuid.NewString()
	ops := []Op[string]{op("t1", true, parent)}

	levels, err := Levels(ops, map[string]string{})
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"t1"}}, levelIDs(levels))
}

func TestLevels_ResolvedFromEarlierType(t *testing.T) {
	// закладка ссылается на temp id папки, уже разрешённый ранее
	resolved := map[string]string{"folder-tmp": uuid.NewString()}
	ops := []Op[string]{op("b1", true, "folder-tmp")}

	levels, err := Levels(ops, resolved)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"b1"}}, levelIDs(levels))
}

func TestLevels_CycleDetected(t *testing.T) {
	ops := []Op[string]{
		op("t1", true, "t2"),
		op("t2", true, "t1"),
	}

	_, err := Levels(ops, map[string]string{})

	var cycle *CycleError
	require.ErrorAs(t, err, &cycle)
	assert.ElementsMatch(t, []string{"t1", "t2"}, cycle.Stuck)
}

func TestLevels_DanglingTempReference(t *testing.T) {
	// ссылка на temp id, которого нет ни в пакете, ни среди разрешённых
	ops := []Op[string]{op("t1", true, "missing-tmp")}

	_, err := Levels(ops, map[string]string{})

	var cycle *CycleError
	require.ErrorAs(t, err, &cycle)
	assert.Equal(t, []string{"t1"}, cycle.Stuck)
}

func TestLevels_Empty(t *testing.T) {
	levels, err := Levels[string](nil, map[string]string{})
	require.NoError(t, err)
	assert.Nil(t, levels)
}
