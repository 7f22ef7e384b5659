// Package sandbox executes untrusted code submissions against test cases
// inside isolated, resource-capped environments. Failures attributable to
// the submitted code (timeouts, memory kills, crashes, wrong output) are
// reported as statuses inside the returned summary, never as errors: the
// executor must always return a structured result.
package sandbox

import (
	"context"
	"errors"
	"time"

	"github.com/hirestack/assessment-engine/internal/model"
)

// ErrUnsupportedLanguage is returned when no language profile exists for
// the submission's language identifier.
var ErrUnsupportedLanguage = errors.New("unsupported language")

// Submission is one run request: source code plus the test cases to
// execute it against. Zero limits fall back to the language defaults.
type Submission struct {
	SourceCode    string
	Language      string
	TestCases     []model.TestCase
	TimeLimit     time.Duration
	MemoryLimitKB int64
}

// Executor runs one submission against its test cases. Run blocks until
// every case has finished or been skipped; concurrent calls for different
// sessions are independent, each under its own resource caps.
type Executor interface {
	Run(ctx context.Context, sub Submission) (*model.ExecutionSummary, error)
}
