package engine

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hirestack/assessment-engine/internal/model"
)

func questionSet(n int) []model.Question {
	qs := make([]model.Question, n)
	for i := range qs {
		qs[i] = model.Question{ID: uuid.New(), OrderNum: i}
	}
	return qs
}

func TestDeclaredOrderPreservesAuthoring(t *testing.T) {
	qs := questionSet(5)
	ids := declaredOrder(qs)

	require.Len(t, ids, 5)
	for i := range qs {
		assert.Equal(t, qs[i].ID, ids[i])
	}
}

func TestShuffledOrderIsPermutation(t *testing.T) {
	qs := questionSet(10)
	ids := shuffledOrder(qs)

	require.Len(t, ids, len(qs))
	seen := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		assert.False(t, seen[id], "duplicate id in shuffled order")
		seen[id] = true
	}
	for _, q := range qs {
		assert.True(t, seen[q.ID], "question %s missing from shuffled order", q.ID)
	}
}

func TestShuffledOrderVaries(t *testing.T) {
	qs := questionSet(8)
	base := declaredOrder(qs)

	// With 8! permutations, 100 shuffles that all equal the declared
	// order would mean the shuffle is broken.
	varied := false
	for i := 0; i < 100; i++ {
		ids := shuffledOrder(qs)
		for j := range ids {
			if ids[j] != base[j] {
				varied = true
				break
			}
		}
		if varied {
			break
		}
	}
	assert.True(t, varied)
}

func TestShuffledOrderPositionsAreUniform(t *testing.T) {
	const trials = 400
	qs := questionSet(5)

	index := make(map[uuid.UUID]int, len(qs))
	for i, q := range qs {
		index[q.ID] = i
	}
	counts := make([][]int, len(qs))
	for i := range counts {
		counts[i] = make([]int, len(qs))
	}
	for i := 0; i < trials; i++ {
		for pos, id := range shuffledOrder(qs) {
			counts[index[id]][pos]++
		}
	}

	// Each question should land in each position about trials/k times; a
	// generous tolerance keeps the test deterministic in practice while
	// still catching a biased shuffle.
	expected := float64(trials) / float64(len(qs))
	for q, row := range counts {
		for pos, n := range row {
			assert.InDelta(t, expected, float64(n), expected/2,
				"question %d at position %d", q, pos)
		}
	}
}

func TestShuffledOptionIDsIsPermutation(t *testing.T) {
	q := &model.Question{
		ID: uuid.New(),
		Options: []model.Option{
			{ID: "a"}, {ID: "b"}, {ID: "c", Correct: true}, {ID: "d"},
		},
	}

	ids := shuffledOptionIDs(q)
	require.Len(t, ids, 4)
	assert.ElementsMatch(t, []string{"a", "b", "c", "d"}, ids)
}

func TestShuffledOptionIDsPositionsAreUniform(t *testing.T) {
	const trials = 400
	q := &model.Question{
		ID: uuid.New(),
		Options: []model.Option{
			{ID: "a"}, {ID: "b"}, {ID: "c"}, {ID: "d"},
		},
	}

	counts := make(map[string][]int, len(q.Options))
	for _, o := range q.Options {
		counts[o.ID] = make([]int, len(q.Options))
	}
	for i := 0; i < trials; i++ {
		for pos, id := range shuffledOptionIDs(q) {
			counts[id][pos]++
		}
	}

	expected := float64(trials) / float64(len(q.Options))
	for id, row := range counts {
		for pos, n := range row {
			assert.InDelta(t, expected, float64(n), expected/2,
				"option %s at position %d", id, pos)
		}
	}
}
