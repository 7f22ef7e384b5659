// Package repository implements Postgres data access for the question
// catalog. The catalog is authored elsewhere; this service only reads it.
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hirestack/assessment-engine/internal/model"
	"github.com/hirestack/assessment-engine/internal/store"
)

// CatalogRepository handles test and question data access.
type CatalogRepository struct {
	pool *pgxpool.Pool
}

// NewCatalogRepository creates a new CatalogRepository.
func NewCatalogRepository(pool *pgxpool.Pool) *CatalogRepository {
	return &CatalogRepository{pool: pool}
}

// TestByID retrieves a test definition. Returns store.ErrNotFound for an
// unknown id.
func (r *CatalogRepository) TestByID(ctx context.Context, testID uuid.UUID) (*model.TestDefinition, error) {
	var (
		t        model.TestDefinition
		adaptive []byte
	)
	err := r.pool.QueryRow(ctx,
		`SELECT id, title, time_limit_seconds, randomize_questions, randomize_options, adaptive
		 FROM tests WHERE id = $1`, testID,
	).Scan(&t.ID, &t.Title, &t.TimeLimitSeconds, &t.RandomizeQuestions, &t.RandomizeOptions, &adaptive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}

	if len(adaptive) > 0 {
		t.Adaptive = &model.AdaptiveSettings{}
		if err := json.Unmarshal(adaptive, t.Adaptive); err != nil {
			return nil, fmt.Errorf("decode adaptive settings for test %s: %w", testID, err)
		}
	}
	return &t, nil
}

// QuestionsForTest retrieves all questions for a test, ordered by order_num.
// Options and test cases are stored as jsonb alongside each question.
func (r *CatalogRepository) QuestionsForTest(ctx context.Context, testID uuid.UUID) ([]model.Question, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, test_id, question_type, prompt, difficulty, options, test_cases, points, time_limit_seconds, order_num
		 FROM questions WHERE test_id = $1
		 ORDER BY order_num`, testID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []model.Question
	for rows.Next() {
		var (
			q         model.Question
			options   []byte
			testCases []byte
		)
		if err := rows.Scan(&q.ID, &q.TestID, &q.Type, &q.Prompt, &q.Difficulty, &options, &testCases, &q.Points, &q.TimeLimitSeconds, &q.OrderNum); err != nil {
			return nil, err
		}
		if len(options) > 0 {
			if err := json.Unmarshal(options, &q.Options); err != nil {
				return nil, fmt.Errorf("decode options for question %s: %w", q.ID, err)
			}
		}
		if len(testCases) > 0 {
			if err := json.Unmarshal(testCases, &q.TestCases); err != nil {
				return nil, fmt.Errorf("decode test cases for question %s: %w", q.ID, err)
			}
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}
