package sandbox

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/hirestack/assessment-engine/internal/model"
)

// IsolateExecutor runs submissions under the isolate sandbox, one fresh box
// per test case so no process state leaks between cases.
type IsolateExecutor struct {
	languages map[string]Language
	patterns  []SecurityPattern
	runner    boxRunner
	// shortCircuit skips remaining cases once a visible case fails. Hidden
	// cases are still informative for anti-gaming, so the default is to run
	// everything; either way the pass/fail counts cover only cases run.
	shortCircuit bool
	log          zerolog.Logger
}

// NewIsolateExecutor creates an executor with the given language profiles
// and security-pattern table. Nil arguments select the built-in defaults.
func NewIsolateExecutor(languages map[string]Language, patterns []SecurityPattern, shortCircuit bool, log zerolog.Logger) *IsolateExecutor {
	if languages == nil {
		languages = DefaultLanguages()
	}
	if patterns == nil {
		patterns = DefaultSecurityPatterns()
	}
	return &IsolateExecutor{
		languages:    languages,
		patterns:     patterns,
		runner:       newIsolateRunner(),
		shortCircuit: shortCircuit,
		log:          log.With().Str("component", "sandbox").Logger(),
	}
}

// Run executes the submission against every test case and always returns a
// structured summary; the only error conditions are an unknown language or
// a sandbox-infrastructure failure before any case could run.
func (e *IsolateExecutor) Run(ctx context.Context, sub Submission) (*model.ExecutionSummary, error) {
	lang, ok := e.languages[sub.Language]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedLanguage, sub.Language)
	}

	timeLimit := sub.TimeLimit
	if timeLimit <= 0 {
		timeLimit = lang.TimeLimit
	}
	memLimit := sub.MemoryLimitKB
	if memLimit <= 0 {
		memLimit = lang.MemoryLimitKB
	}

	summary := &model.ExecutionSummary{
		Language:      sub.Language,
		Total:         len(sub.TestCases),
		SecurityFlags: ScanSource(sub.SourceCode, sub.Language, e.patterns),
		StartedAt:     time.Now(),
	}
	if len(summary.SecurityFlags) > 0 {
		e.log.Warn().
			Str("language", sub.Language).
			Strs("flags", summary.SecurityFlags).
			Msg("static pre-check flagged submission")
	}

	files := map[string][]byte{lang.SourceFile: []byte(sub.SourceCode)}

	if lang.Compiled() {
		artifacts, compileOut, err := e.compile(ctx, lang, files, memLimit)
		summary.CompileOutput = compileOut
		if err != nil {
			return nil, err
		}
		if artifacts == nil {
			// Compilation failed: every case reports compile_error.
			for i, tc := range sub.TestCases {
				summary.Results = append(summary.Results, model.TestCaseResult{
					Index:  i,
					Hidden: tc.Hidden,
					Status: model.ExecutionCompileError,
					Stderr: compileOut,
				})
				summary.Failed++
			}
			summary.FinishedAt = time.Now()
			return summary, nil
		}
		for name, content := range artifacts {
			files[name] = content
		}
	}

	skipRemaining := false
	for i, tc := range sub.TestCases {
		if skipRemaining {
			summary.Results = append(summary.Results, model.TestCaseResult{
				Index:  i,
				Hidden: tc.Hidden,
				Status: model.ExecutionSkipped,
			})
			summary.Skipped++
			continue
		}

		result := e.runCase(ctx, lang, files, tc, i, timeLimit, memLimit)
		summary.Results = append(summary.Results, result)
		if result.Status.Passed() {
			summary.Passed++
		} else {
			summary.Failed++
			if e.shortCircuit && !tc.Hidden {
				skipRemaining = true
			}
		}
	}

	summary.FinishedAt = time.Now()
	return summary, nil
}

// compile runs the compile step in its own box. A nil artifact map with a
// nil error means the submission itself failed to compile.
func (e *IsolateExecutor) compile(ctx context.Context, lang Language, files map[string][]byte, memLimitKB int64) (map[string][]byte, string, error) {
	res, err := e.runner.Run(ctx, boxTask{
		Files:         files,
		Command:       lang.CompileCmd,
		Collect:       lang.Artifacts,
		TimeLimit:     lang.TimeLimit,
		MemoryLimitKB: memLimitKB,
	})
	if err != nil {
		return nil, "", fmt.Errorf("compile in sandbox: %w", err)
	}
	if res.Status != boxOK || res.ExitCode != 0 {
		return nil, res.Stderr, nil
	}
	return res.Artifacts, res.Stderr, nil
}

func (e *IsolateExecutor) runCase(ctx context.Context, lang Language, files map[string][]byte, tc model.TestCase, index int, timeLimit time.Duration, memLimitKB int64) model.TestCaseResult {
	result := model.TestCaseResult{Index: index, Hidden: tc.Hidden}
	if !tc.Hidden {
		result.ExpectedOutput = tc.ExpectedOutput
	}

	res, err := e.runner.Run(ctx, boxTask{
		Files:         files,
		Command:       lang.RunCmd,
		Stdin:         tc.Input,
		TimeLimit:     timeLimit,
		MemoryLimitKB: memLimitKB,
	})
	if err != nil {
		e.log.Error().Err(err).Int("case", index).Msg("sandbox execution failed")
		result.Status = model.ExecutionSandboxError
		return result
	}

	result.Stdout = res.Stdout
	result.Stderr = res.Stderr
	result.ExitCode = res.ExitCode
	result.TimeMillis = res.TimeMillis
	result.MemoryKB = res.MemoryKB

	switch res.Status {
	case boxTimeout:
		result.Status = model.ExecutionTimeout
	case boxMemoryKilled:
		result.Status = model.ExecutionMemoryExceeded
	case boxRuntimeError:
		result.Status = model.ExecutionRuntimeError
	case boxInternal:
		result.Status = model.ExecutionSandboxError
	default:
		if OutputsMatch(res.Stdout, tc.ExpectedOutput) {
			result.Status = model.ExecutionAccepted
		} else {
			result.Status = model.ExecutionWrongAnswer
		}
	}
	return result
}
