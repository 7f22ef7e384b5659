package sandbox

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hirestack/assessment-engine/internal/model"
)

// fakeRunner scripts box behavior per task and records every task it ran.
type fakeRunner struct {
	run   func(task boxTask) (*boxResult, error)
	tasks []boxTask
}

func (f *fakeRunner) Run(_ context.Context, task boxTask) (*boxResult, error) {
	f.tasks = append(f.tasks, task)
	return f.run(task)
}

func newTestExecutor(runner *fakeRunner, shortCircuit bool) *IsolateExecutor {
	return &IsolateExecutor{
		languages:    DefaultLanguages(),
		patterns:     DefaultSecurityPatterns(),
		runner:       runner,
		shortCircuit: shortCircuit,
		log:          zerolog.Nop(),
	}
}

// echoRunner pretends the program echoes its stdin.
func echoRunner() *fakeRunner {
	f := &fakeRunner{}
	f.run = func(task boxTask) (*boxResult, error) {
		return &boxResult{Status: boxOK, Stdout: task.Stdin, TimeMillis: 10, MemoryKB: 1024}, nil
	}
	return f
}

func submission(lang string, cases ...model.TestCase) Submission {
	return Submission{SourceCode: "print(input())", Language: lang, TestCases: cases}
}

func TestRunAllCasesPass(t *testing.T) {
	runner := echoRunner()
	exec := newTestExecutor(runner, false)

	summary, err := exec.Run(context.Background(), submission("python",
		model.TestCase{Input: "1", ExpectedOutput: "1"},
		model.TestCase{Input: "2", ExpectedOutput: "2", Hidden: true},
	))
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Passed)
	assert.Equal(t, 0, summary.Failed)
	assert.True(t, summary.AllPassed())
	assert.Equal(t, 1.0, summary.PassRatio())

	// One fresh box per test case, no compile step for python.
	assert.Len(t, runner.tasks, 2)
}

func TestRunWrongAnswer(t *testing.T) {
	exec := newTestExecutor(echoRunner(), false)

	summary, err := exec.Run(context.Background(), submission("python",
		model.TestCase{Input: "1", ExpectedOutput: "2"},
	))
	require.NoError(t, err)

	require.Len(t, summary.Results, 1)
	assert.Equal(t, model.ExecutionWrongAnswer, summary.Results[0].Status)
	assert.Equal(t, 0.0, summary.PassRatio())
}

func TestRunUnsupportedLanguage(t *testing.T) {
	exec := newTestExecutor(echoRunner(), false)

	_, err := exec.Run(context.Background(), submission("cobol",
		model.TestCase{Input: "1", ExpectedOutput: "1"},
	))
	assert.ErrorIs(t, err, ErrUnsupportedLanguage)
}

func TestRunStatusMapping(t *testing.T) {
	cases := []struct {
		box  boxStatus
		want model.ExecutionStatus
	}{
		{boxTimeout, model.ExecutionTimeout},
		{boxMemoryKilled, model.ExecutionMemoryExceeded},
		{boxRuntimeError, model.ExecutionRuntimeError},
		{boxInternal, model.ExecutionSandboxError},
	}

	for _, tc := range cases {
		runner := &fakeRunner{run: func(boxTask) (*boxResult, error) {
			return &boxResult{Status: tc.box, ExitCode: 1}, nil
		}}
		exec := newTestExecutor(runner, false)

		summary, err := exec.Run(context.Background(), submission("python",
			model.TestCase{Input: "1", ExpectedOutput: "1"},
		))
		require.NoError(t, err, string(tc.box))
		require.Len(t, summary.Results, 1)
		assert.Equal(t, tc.want, summary.Results[0].Status, string(tc.box))
	}
}

func TestRunnerFailureIsSandboxError(t *testing.T) {
	runner := &fakeRunner{run: func(boxTask) (*boxResult, error) {
		return nil, errors.New("isolate: box allocation failed")
	}}
	exec := newTestExecutor(runner, false)

	summary, err := exec.Run(context.Background(), submission("python",
		model.TestCase{Input: "1", ExpectedOutput: "1"},
	))
	require.NoError(t, err)
	require.Len(t, summary.Results, 1)
	assert.Equal(t, model.ExecutionSandboxError, summary.Results[0].Status)
}

func TestCompileErrorMarksAllCases(t *testing.T) {
	runner := &fakeRunner{run: func(task boxTask) (*boxResult, error) {
		// The first (and only) task is the compile step.
		return &boxResult{Status: boxOK, ExitCode: 1, Stderr: "main.cpp:3: error: expected ';'"}, nil
	}}
	exec := newTestExecutor(runner, false)

	summary, err := exec.Run(context.Background(), Submission{
		SourceCode: "int main( { }",
		Language:   "cpp",
		TestCases: []model.TestCase{
			{Input: "1", ExpectedOutput: "1"},
			{Input: "2", ExpectedOutput: "2"},
		},
	})
	require.NoError(t, err)

	assert.Len(t, runner.tasks, 1) // no test case ever ran
	require.Len(t, summary.Results, 2)
	for _, r := range summary.Results {
		assert.Equal(t, model.ExecutionCompileError, r.Status)
	}
	assert.Contains(t, summary.CompileOutput, "expected ';'")
	assert.Equal(t, 0.0, summary.PassRatio())
}

func TestCompileOncePerSubmission(t *testing.T) {
	runner := &fakeRunner{}
	runner.run = func(task boxTask) (*boxResult, error) {
		if strings.Contains(task.Command, "g++") {
			return &boxResult{Status: boxOK, Artifacts: map[string][]byte{"main": []byte("ELF")}}, nil
		}
		// Runtime tasks must carry the installed artifact.
		if _, ok := task.Files["main"]; !ok {
			return nil, errors.New("artifact missing from box")
		}
		return &boxResult{Status: boxOK, Stdout: task.Stdin}, nil
	}
	exec := newTestExecutor(runner, false)

	summary, err := exec.Run(context.Background(), Submission{
		SourceCode: "int main() {}",
		Language:   "cpp",
		TestCases: []model.TestCase{
			{Input: "1", ExpectedOutput: "1"},
			{Input: "2", ExpectedOutput: "2"},
			{Input: "3", ExpectedOutput: "3"},
		},
	})
	require.NoError(t, err)
	assert.True(t, summary.AllPassed())
	assert.Len(t, runner.tasks, 4) // 1 compile + 3 cases
}

func TestShortCircuitSkipsAfterVisibleFailure(t *testing.T) {
	exec := newTestExecutor(echoRunner(), true)

	summary, err := exec.Run(context.Background(), submission("python",
		model.TestCase{Input: "1", ExpectedOutput: "1"},
		model.TestCase{Input: "2", ExpectedOutput: "wrong"},
		model.TestCase{Input: "3", ExpectedOutput: "3"},
		model.TestCase{Input: "4", ExpectedOutput: "4", Hidden: true},
	))
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Passed)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 2, summary.Skipped)
	assert.Equal(t, model.ExecutionSkipped, summary.Results[2].Status)
	assert.Equal(t, model.ExecutionSkipped, summary.Results[3].Status)
	// Skipped cases count against the score.
	assert.Equal(t, 0.25, summary.PassRatio())
}

func TestHiddenFailureDoesNotShortCircuit(t *testing.T) {
	exec := newTestExecutor(echoRunner(), true)

	summary, err := exec.Run(context.Background(), submission("python",
		model.TestCase{Input: "1", ExpectedOutput: "wrong", Hidden: true},
		model.TestCase{Input: "2", ExpectedOutput: "2"},
	))
	require.NoError(t, err)

	assert.Equal(t, 0, summary.Skipped)
	assert.Equal(t, 1, summary.Passed)
}

func TestHiddenCaseExpectedOutputWithheld(t *testing.T) {
	exec := newTestExecutor(echoRunner(), false)

	summary, err := exec.Run(context.Background(), submission("python",
		model.TestCase{Input: "1", ExpectedOutput: "1"},
		model.TestCase{Input: "2", ExpectedOutput: "not-two", Hidden: true},
	))
	require.NoError(t, err)

	assert.Equal(t, "1", summary.Results[0].ExpectedOutput)
	assert.Empty(t, summary.Results[1].ExpectedOutput)
	assert.True(t, summary.Results[1].Hidden)
}

func TestSubmissionLimitsOverrideDefaults(t *testing.T) {
	runner := echoRunner()
	exec := newTestExecutor(runner, false)

	sub := submission("python", model.TestCase{Input: "1", ExpectedOutput: "1"})
	sub.TimeLimit = 5 * time.Second
	sub.MemoryLimitKB = 64 * 1024

	_, err := exec.Run(context.Background(), sub)
	require.NoError(t, err)

	require.Len(t, runner.tasks, 1)
	assert.Equal(t, 5*time.Second, runner.tasks[0].TimeLimit)
	assert.Equal(t, int64(64*1024), runner.tasks[0].MemoryLimitKB)
}

func TestSecurityFlagsRecordedNotBlocking(t *testing.T) {
	exec := newTestExecutor(echoRunner(), false)

	summary, err := exec.Run(context.Background(), Submission{
		SourceCode: "import os\nprint(input())",
		Language:   "python",
		TestCases:  []model.TestCase{{Input: "1", ExpectedOutput: "1"}},
	})
	require.NoError(t, err)

	assert.NotEmpty(t, summary.SecurityFlags)
	// Flagged code still runs; isolation is the enforcement layer.
	assert.Equal(t, 1, summary.Passed)
}
