package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/hirestack/assessment-engine/internal/config"
	"github.com/hirestack/assessment-engine/internal/database"
	"github.com/hirestack/assessment-engine/internal/logger"
	"github.com/hirestack/assessment-engine/internal/model"
)

// Seeds a small demo catalog: one fixed-order test and one adaptive test.
// Intended for local development, not production.
func main() {
	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	fmt.Println("=== Seeding demo catalog ===")

	fixed := &model.TestDefinition{
		ID:                 uuid.New(),
		Title:              "Backend Fundamentals",
		TimeLimitSeconds:   1800,
		RandomizeQuestions: true,
		RandomizeOptions:   true,
	}
	adaptive := &model.TestDefinition{
		ID:               uuid.New(),
		Title:            "Adaptive Screening",
		TimeLimitSeconds: 2700,
		Adaptive: &model.AdaptiveSettings{
			MinQuestions: 5,
			MaxQuestions: 12,
		},
	}
	insertTest(ctx, pool, log, fixed)
	insertTest(ctx, pool, log, adaptive)

	count := 0
	count += insertQuestions(ctx, pool, log, choiceQuestions(fixed.ID))
	count += insertQuestions(ctx, pool, log, []model.Question{codingQuestion(fixed.ID)})
	count += insertQuestions(ctx, pool, log, adaptiveLadder(adaptive.ID))

	fmt.Printf("\nSeed completed! %d questions across 2 tests.\n", count)
	fmt.Printf("fixed test:    %s\n", fixed.ID)
	fmt.Printf("adaptive test: %s\n", adaptive.ID)
}

func insertTest(ctx context.Context, pool *pgxpool.Pool, log zerolog.Logger, t *model.TestDefinition) {
	var adaptive []byte
	if t.Adaptive != nil {
		var err error
		if adaptive, err = json.Marshal(t.Adaptive); err != nil {
			log.Fatal().Err(err).Msg("Failed to encode adaptive settings")
		}
	}
	_, err := pool.Exec(ctx,
		`INSERT INTO tests (id, title, time_limit_seconds, randomize_questions, randomize_options, adaptive)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		t.ID, t.Title, t.TimeLimitSeconds, t.RandomizeQuestions, t.RandomizeOptions, adaptive)
	if err != nil {
		log.Fatal().Err(err).Str("title", t.Title).Msg("Failed to insert test")
	}
	fmt.Printf("Created test %q (%s)\n", t.Title, t.ID)
}

func insertQuestions(ctx context.Context, pool *pgxpool.Pool, log zerolog.Logger, questions []model.Question) int {
	inserted := 0
	for _, q := range questions {
		var options, testCases []byte
		var err error
		if len(q.Options) > 0 {
			if options, err = json.Marshal(q.Options); err != nil {
				log.Fatal().Err(err).Msg("Failed to encode options")
			}
		}
		if len(q.TestCases) > 0 {
			if testCases, err = json.Marshal(q.TestCases); err != nil {
				log.Fatal().Err(err).Msg("Failed to encode test cases")
			}
		}
		_, err = pool.Exec(ctx,
			`INSERT INTO questions (id, test_id, question_type, prompt, difficulty, options, test_cases, points, time_limit_seconds, order_num)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			q.ID, q.TestID, q.Type, q.Prompt, q.Difficulty, options, testCases, q.Points, q.TimeLimitSeconds, q.OrderNum)
		if err != nil {
			fmt.Printf("Error inserting question %d: %v\n", q.OrderNum, err)
			continue
		}
		inserted++
	}
	return inserted
}

func choiceQuestions(testID uuid.UUID) []model.Question {
	return []model.Question{
		{
			ID: uuid.New(), TestID: testID, Type: model.QuestionTypeMultipleChoice,
			Prompt: "Which HTTP status code indicates a resource was not found?", Difficulty: 0.2,
			Options: []model.Option{
				{ID: "a", Text: "200"},
				{ID: "b", Text: "404", Correct: true},
				{ID: "c", Text: "500"},
				{ID: "d", Text: "301"},
			},
			Points: 2, OrderNum: 1,
		},
		{
			ID: uuid.New(), TestID: testID, Type: model.QuestionTypeMultipleChoice,
			Prompt: "Select every property guaranteed by a SQL transaction.", Difficulty: 0.6,
			Options: []model.Option{
				{ID: "a", Text: "Atomicity", Correct: true},
				{ID: "b", Text: "Durability", Correct: true},
				{ID: "c", Text: "Horizontal scaling"},
				{ID: "d", Text: "Isolation", Correct: true},
			},
			Points: 4, OrderNum: 2,
		},
		{
			ID: uuid.New(), TestID: testID, Type: model.QuestionTypeTrueFalse,
			Prompt: "TCP guarantees in-order delivery within a single connection.", Difficulty: 0.4,
			Options: []model.Option{
				{ID: "true", Text: "True", Correct: true},
				{ID: "false", Text: "False"},
			},
			Points: 2, OrderNum: 3,
		},
		{
			ID: uuid.New(), TestID: testID, Type: model.QuestionTypeEssay,
			Prompt: "Describe how you would design idempotent retry handling for a payment API.", Difficulty: 0.7,
			Points: 10, OrderNum: 4,
		},
	}
}

func codingQuestion(testID uuid.UUID) model.Question {
	return model.Question{
		ID: uuid.New(), TestID: testID, Type: model.QuestionTypeCoding,
		Prompt:     "Read an integer n from stdin and print the sum 1..n.",
		Difficulty: 0.5,
		TestCases: []model.TestCase{
			{Input: "3\n", ExpectedOutput: "6\n"},
			{Input: "10\n", ExpectedOutput: "55\n"},
			{Input: "1000\n", ExpectedOutput: "500500\n", Hidden: true},
		},
		Points: 8, TimeLimitSeconds: 20, OrderNum: 5,
	}
}

// adaptiveLadder spreads difficulties across the selector's working range so
// the demo test always has a nearby question for any ability estimate.
func adaptiveLadder(testID uuid.UUID) []model.Question {
	prompts := []string{
		"What does the acronym DNS stand for?",
		"Which data structure gives O(1) average lookup by key?",
		"What is the default port for HTTPS?",
		"Which isolation level prevents dirty reads but allows phantom rows?",
		"What problem does connection pooling solve?",
		"When does a goroutine leak occur?",
		"What is the difference between optimistic and pessimistic locking?",
		"Why can a covering index make a query faster?",
		"What does exactly-once delivery require from a consumer?",
		"How does a Bloom filter trade accuracy for space?",
		"What makes a distributed transaction expensive?",
		"Why is vector-clock comparison only a partial order?",
	}
	questions := make([]model.Question, 0, len(prompts))
	for i, prompt := range prompts {
		questions = append(questions, model.Question{
			ID: uuid.New(), TestID: testID, Type: model.QuestionTypeMultipleChoice,
			Prompt:     prompt,
			Difficulty: 0.1 + 0.07*float64(i),
			Options: []model.Option{
				{ID: "a", Text: "Option A", Correct: true},
				{ID: "b", Text: "Option B"},
				{ID: "c", Text: "Option C"},
				{ID: "d", Text: "Option D"},
			},
			Points: 3, OrderNum: i + 1,
		})
	}
	return questions
}
