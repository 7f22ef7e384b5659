package engine

import (
	"math/rand/v2"

	"github.com/google/uuid"

	"github.com/hirestack/assessment-engine/internal/model"
)

// declaredOrder returns question ids in their authored order.
func declaredOrder(questions []model.Question) []uuid.UUID {
	ids := make([]uuid.UUID, len(questions))
	for i := range questions {
		ids[i] = questions[i].ID
	}
	return ids
}

// shuffledOrder returns a uniform-random permutation of the question ids.
// rand.Shuffle is a Fisher–Yates shuffle, so every permutation is equally
// likely and the original set is preserved exactly.
func shuffledOrder(questions []model.Question) []uuid.UUID {
	ids := declaredOrder(questions)
	rand.Shuffle(len(ids), func(i, j int) {
		ids[i], ids[j] = ids[j], ids[i]
	})
	return ids
}

// shuffledOptionIDs returns a uniform-random permutation of a question's
// option ids. Scoring compares against option ids, so the permutation
// never affects correctness.
func shuffledOptionIDs(q *model.Question) []string {
	ids := make([]string, len(q.Options))
	for i := range q.Options {
		ids[i] = q.Options[i].ID
	}
	rand.Shuffle(len(ids), func(i, j int) {
		ids[i], ids[j] = ids[j], ids[i]
	})
	return ids
}
