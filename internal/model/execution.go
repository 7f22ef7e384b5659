package model

import "time"

// ExecutionStatus is the outcome of executing one test case in the sandbox.
type ExecutionStatus string

const (
	ExecutionAccepted       ExecutionStatus = "accepted"
	ExecutionWrongAnswer    ExecutionStatus = "wrong_answer"
	ExecutionTimeout        ExecutionStatus = "timeout"
	ExecutionMemoryExceeded ExecutionStatus = "memory_exceeded"
	ExecutionCompileError   ExecutionStatus = "compile_error"
	ExecutionRuntimeError   ExecutionStatus = "runtime_error"
	ExecutionSkipped        ExecutionStatus = "skipped"
	ExecutionSandboxError   ExecutionStatus = "sandbox_error"
)

// Passed reports whether the test case counts as a pass.
func (s ExecutionStatus) Passed() bool {
	return s == ExecutionAccepted
}

// TestCaseResult is the per-test-case outcome returned by the sandbox.
// For hidden cases the expected output is omitted.
type TestCaseResult struct {
	Index          int             `json:"index"`
	Hidden         bool            `json:"hidden,omitempty"`
	Status         ExecutionStatus `json:"status"`
	Stdout         string          `json:"stdout,omitempty"`
	Stderr         string          `json:"stderr,omitempty"`
	ExpectedOutput string          `json:"expected_output,omitempty"`
	ExitCode       int             `json:"exit_code"`
	TimeMillis     int64           `json:"time_millis"`
	MemoryKB       int64           `json:"memory_kb"`
}

// ExecutionSummary aggregates all test-case results of one submission run.
// The sandbox always returns a summary, never a bare error, for failures
// attributable to the submitted code.
type ExecutionSummary struct {
	Language      string           `json:"language"`
	Passed        int              `json:"passed"`
	Failed        int              `json:"failed"`
	Skipped       int              `json:"skipped"`
	Total         int              `json:"total"`
	Results       []TestCaseResult `json:"results"`
	CompileOutput string           `json:"compile_output,omitempty"`
	// SecurityFlags lists static pre-check matches. Recorded for audit,
	// never blocking: the isolation boundary is the real control.
	SecurityFlags []string  `json:"security_flags,omitempty"`
	StartedAt     time.Time `json:"started_at"`
	FinishedAt    time.Time `json:"finished_at"`
}

// AllPassed reports whether every test case ran and passed.
func (s *ExecutionSummary) AllPassed() bool {
	return s.Total > 0 && s.Passed == s.Total
}

// PassRatio returns passed cases over all cases. Skipped cases count
// against the ratio so short-circuiting can never inflate a score.
func (s *ExecutionSummary) PassRatio() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Passed) / float64(s.Total)
}
