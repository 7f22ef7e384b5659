package engine_test

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hirestack/assessment-engine/internal/engine"
	"github.com/hirestack/assessment-engine/internal/model"
	"github.com/hirestack/assessment-engine/internal/sandbox"
	"github.com/hirestack/assessment-engine/internal/store"
)

// fakeCatalog serves tests and questions from memory.
type fakeCatalog struct {
	tests     map[uuid.UUID]*model.TestDefinition
	questions map[uuid.UUID][]model.Question
}

func (c *fakeCatalog) TestByID(_ context.Context, testID uuid.UUID) (*model.TestDefinition, error) {
	t, ok := c.tests[testID]
	if !ok {
		return nil, store.ErrNotFound
	}
	return t, nil
}

func (c *fakeCatalog) QuestionsForTest(_ context.Context, testID uuid.UUID) ([]model.Question, error) {
	return c.questions[testID], nil
}

// stubExecutor passes every case when the source contains "pass", fails
// them all otherwise.
type stubExecutor struct{}

func (stubExecutor) Run(_ context.Context, sub sandbox.Submission) (*model.ExecutionSummary, error) {
	summary := &model.ExecutionSummary{Language: sub.Language, Total: len(sub.TestCases)}
	for i, tc := range sub.TestCases {
		status := model.ExecutionWrongAnswer
		if sub.SourceCode == "pass" || (sub.SourceCode == "half" && i%2 == 0) {
			status = model.ExecutionAccepted
		}
		summary.Results = append(summary.Results, model.TestCaseResult{Index: i, Hidden: tc.Hidden, Status: status})
		if status.Passed() {
			summary.Passed++
		} else {
			summary.Failed++
		}
	}
	return summary, nil
}

type fixture struct {
	engine  *engine.Engine
	store   store.SessionStore
	catalog *fakeCatalog
	test    *model.TestDefinition
}

func choiceQuestion(testID uuid.UUID, order int, points float64) model.Question {
	return model.Question{
		ID:     uuid.New(),
		TestID: testID,
		Type:   model.QuestionTypeMultipleChoice,
		Prompt: fmt.Sprintf("question %d", order),
		Options: []model.Option{
			{ID: "a", Text: "right", Correct: true},
			{ID: "b", Text: "wrong"},
		},
		Difficulty: 0.5,
		Points:     points,
		OrderNum:   order,
	}
}

func newFixture(t *testing.T, mutate func(*model.TestDefinition, *[]model.Question)) *fixture {
	t.Helper()

	testID := uuid.New()
	def := &model.TestDefinition{ID: testID, Title: "Backend Screen", TimeLimitSeconds: 600}
	questions := make([]model.Question, 0, 5)
	for i := 0; i < 5; i++ {
		questions = append(questions, choiceQuestion(testID, i, 2))
	}
	if mutate != nil {
		mutate(def, &questions)
	}

	cat := &fakeCatalog{
		tests:     map[uuid.UUID]*model.TestDefinition{testID: def},
		questions: map[uuid.UUID][]model.Question{testID: questions},
	}
	st := store.NewMemoryStore()
	eng := engine.New(st, cat, stubExecutor{}, nil, engine.DefaultConfig(), zerolog.Nop())
	t.Cleanup(eng.Close)

	return &fixture{engine: eng, store: st, catalog: cat, test: def}
}

func (f *fixture) createSession(t *testing.T) *model.Session {
	t.Helper()
	sess, err := f.engine.CreateSession(context.Background(), &model.CreateSessionRequest{
		CandidateID: "cand-1",
		TestID:      f.test.ID,
	})
	require.NoError(t, err)
	return sess
}

func answer(id uuid.UUID, value string) *model.SubmitAnswerRequest {
	return &model.SubmitAnswerRequest{QuestionID: id, Value: json.RawMessage(value)}
}

func TestFixedFlowAllCorrect(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	sess := f.createSession(t)
	assert.Equal(t, model.SessionStatusNotStarted, sess.Status)

	var last *engine.SubmitResult
	for i := 0; i < 5; i++ {
		view, err := f.engine.GetNextQuestion(ctx, sess.ID)
		require.NoError(t, err)
		require.NotNil(t, view)
		assert.Equal(t, i, view.Index)
		assert.Equal(t, 5, view.Total)
		// The answer key never leaks.
		for _, opt := range view.Question.Options {
			assert.NotEmpty(t, opt.ID)
			assert.NotEmpty(t, opt.Text)
		}

		last, err = f.engine.SubmitAnswer(ctx, sess.ID, answer(view.Question.ID, `"a"`))
		require.NoError(t, err)
		require.NotNil(t, last.IsCorrect)
		assert.True(t, *last.IsCorrect)
	}

	require.True(t, last.Completed)
	assert.Equal(t, model.ReasonAllQuestionsDone, last.CompletionReason)
	assert.Equal(t, 10.0, last.RunningTotal)

	stats, err := f.engine.GetSessionStats(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SessionStatusCompleted, stats.Status)
	assert.Equal(t, 100.0, stats.Percentage)
	assert.Equal(t, 5, stats.QuestionsAnswered)
}

func TestUnknownTestRejected(t *testing.T) {
	f := newFixture(t, nil)
	_, err := f.engine.CreateSession(context.Background(), &model.CreateSessionRequest{
		CandidateID: "cand-1",
		TestID:      uuid.New(),
	})
	assert.ErrorIs(t, err, engine.ErrTestNotFound)
}

func TestAnswerBeforeStartRejected(t *testing.T) {
	f := newFixture(t, nil)
	sess := f.createSession(t)

	_, err := f.engine.SubmitAnswer(context.Background(), sess.ID, answer(uuid.New(), `"a"`))
	assert.ErrorIs(t, err, engine.ErrSessionNotStarted)
}

func TestForeignQuestionRejected(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	sess := f.createSession(t)
	_, err := f.engine.GetNextQuestion(ctx, sess.ID)
	require.NoError(t, err)

	_, err = f.engine.SubmitAnswer(ctx, sess.ID, answer(uuid.New(), `"a"`))
	assert.ErrorIs(t, err, engine.ErrQuestionNotFound)
}

func TestTimeLimitExpiresSession(t *testing.T) {
	f := newFixture(t, func(def *model.TestDefinition, _ *[]model.Question) {
		def.TimeLimitSeconds = 1
	})
	ctx := context.Background()
	sess := f.createSession(t)

	view, err := f.engine.GetNextQuestion(ctx, sess.ID)
	require.NoError(t, err)

	time.Sleep(1100 * time.Millisecond)

	_, err = f.engine.SubmitAnswer(ctx, sess.ID, answer(view.Question.ID, `"a"`))
	var expired *engine.SessionExpiredError
	require.ErrorAs(t, err, &expired)
	require.NotNil(t, expired.Result)
	assert.Equal(t, model.SessionStatusExpired, expired.Result.Status)
	assert.Equal(t, model.ReasonTimeLimitExceeded, expired.Result.Reason)

	// The late answer was not recorded.
	assert.Equal(t, 0, expired.Result.QuestionsAnswered)

	// The expiry is durable, not just in-memory.
	saved, _, err := f.store.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SessionStatusExpired, saved.Status)
}

func TestTerminalSessionsAreImmutable(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	sess := f.createSession(t)
	_, err := f.engine.GetNextQuestion(ctx, sess.ID)
	require.NoError(t, err)

	result, err := f.engine.CompleteSession(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ReasonSubmitted, result.Reason)

	var closed *engine.SessionClosedError

	_, err = f.engine.GetNextQuestion(ctx, sess.ID)
	require.ErrorAs(t, err, &closed)
	assert.Equal(t, model.SessionStatusCompleted, closed.Status)
	require.NotNil(t, closed.Result)

	_, err = f.engine.CompleteSession(ctx, sess.ID)
	assert.ErrorAs(t, err, &closed)

	_, err = f.engine.PauseSession(ctx, sess.ID)
	assert.ErrorAs(t, err, &closed)

	_, _, err = f.engine.ReportViolation(ctx, sess.ID, &model.ReportViolationRequest{Type: "tab_switch", Severity: "low"})
	assert.ErrorAs(t, err, &closed)
}

func TestPauseFreezesCountdown(t *testing.T) {
	f := newFixture(t, func(def *model.TestDefinition, _ *[]model.Question) {
		def.TimeLimitSeconds = 2
	})
	ctx := context.Background()
	sess := f.createSession(t)
	view, err := f.engine.GetNextQuestion(ctx, sess.ID)
	require.NoError(t, err)

	_, err = f.engine.PauseSession(ctx, sess.ID)
	require.NoError(t, err)

	// While paused the clock stands still and submissions are refused.
	_, err = f.engine.SubmitAnswer(ctx, sess.ID, answer(view.Question.ID, `"a"`))
	assert.ErrorIs(t, err, engine.ErrSessionPaused)
	_, err = f.engine.GetNextQuestion(ctx, sess.ID)
	assert.ErrorIs(t, err, engine.ErrSessionPaused)

	time.Sleep(2100 * time.Millisecond)

	resumed, err := f.engine.ResumeSession(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SessionStatusInProgress, resumed.Status)
	assert.GreaterOrEqual(t, resumed.PausedSeconds, 2.0)

	// The paused interval did not count against the limit.
	_, err = f.engine.SubmitAnswer(ctx, sess.ID, answer(view.Question.ID, `"a"`))
	require.NoError(t, err)
}

func TestResumeRequiresPausedState(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	sess := f.createSession(t)
	_, err := f.engine.GetNextQuestion(ctx, sess.ID)
	require.NoError(t, err)

	_, err = f.engine.ResumeSession(ctx, sess.ID)
	assert.ErrorIs(t, err, engine.ErrNotPaused)
}

func TestRecoveryAcrossEngineRestart(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	sess := f.createSession(t)

	view, err := f.engine.GetNextQuestion(ctx, sess.ID)
	require.NoError(t, err)
	_, err = f.engine.SubmitAnswer(ctx, sess.ID, answer(view.Question.ID, `"a"`))
	require.NoError(t, err)

	// A new engine over the same store simulates a process restart.
	restarted := engine.New(f.store, f.catalog, stubExecutor{}, nil, engine.DefaultConfig(), zerolog.Nop())
	t.Cleanup(restarted.Close)

	state, err := restarted.ResumeAfterInterruption(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SessionStatusInProgress, state.Session.Status)
	assert.Equal(t, 1, state.Session.CurrentQuestionIndex)
	assert.Len(t, state.Session.Answers, 1)
	assert.Equal(t, 2.0, state.Session.TotalScore)
	assert.Greater(t, state.TimeRemainingSeconds, 0.0)

	// The restarted engine can drive the session to completion.
	for {
		view, err := restarted.GetNextQuestion(ctx, sess.ID)
		require.NoError(t, err)
		require.NotNil(t, view)
		result, err := restarted.SubmitAnswer(ctx, sess.ID, answer(view.Question.ID, `"a"`))
		require.NoError(t, err)
		if result.Completed {
			assert.Equal(t, 10.0, result.RunningTotal)
			break
		}
	}
}

func TestRecoveryUnknownSession(t *testing.T) {
	f := newFixture(t, nil)
	_, err := f.engine.ResumeAfterInterruption(context.Background(), uuid.New())
	assert.ErrorIs(t, err, engine.ErrInvalidSession)
}

func TestViolationThresholdTerminates(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	sess := f.createSession(t)
	_, err := f.engine.GetNextQuestion(ctx, sess.ID)
	require.NoError(t, err)

	limit := engine.DefaultConfig().ViolationLimit
	var final *engine.FinalResult
	for i := 0; i < limit; i++ {
		_, final, err = f.engine.ReportViolation(ctx, sess.ID, &model.ReportViolationRequest{
			Type:     "window_blur",
			Severity: "medium",
		})
		require.NoError(t, err)
		if i < limit-1 {
			assert.Nil(t, final)
		}
	}

	require.NotNil(t, final)
	assert.Equal(t, model.SessionStatusTerminated, final.Status)
	assert.Equal(t, model.ReasonViolationThreshold, final.Reason)
}

func TestTerminateSessionHardStop(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	sess := f.createSession(t)
	_, err := f.engine.GetNextQuestion(ctx, sess.ID)
	require.NoError(t, err)

	result, err := f.engine.TerminateSession(ctx, sess.ID, "proctor decision")
	require.NoError(t, err)
	assert.Equal(t, model.SessionStatusTerminated, result.Status)
	assert.Equal(t, "proctor decision", result.Reason)
}

func TestCodeSubmissionPartialCredit(t *testing.T) {
	f := newFixture(t, func(def *model.TestDefinition, questions *[]model.Question) {
		*questions = []model.Question{{
			ID:     uuid.New(),
			TestID: def.ID,
			Type:   model.QuestionTypeCoding,
			Prompt: "sum two ints",
			TestCases: []model.TestCase{
				{Input: "1 2", ExpectedOutput: "3"},
				{Input: "2 3", ExpectedOutput: "5", Hidden: true},
				{Input: "4 4", ExpectedOutput: "8"},
				{Input: "0 0", ExpectedOutput: "0", Hidden: true},
			},
			Points: 8,
		}}
	})
	ctx := context.Background()
	sess := f.createSession(t)
	view, err := f.engine.GetNextQuestion(ctx, sess.ID)
	require.NoError(t, err)
	// Hidden cases never reach the candidate.
	assert.Len(t, view.Question.TestCases, 2)

	result, summary, err := f.engine.SubmitCode(ctx, sess.ID, &model.SubmitCodeRequest{
		QuestionID: view.Question.ID,
		SourceCode: "half",
		Language:   "python",
	})
	require.NoError(t, err)
	require.NotNil(t, summary)
	assert.Equal(t, 2, summary.Passed)
	assert.Equal(t, 4, summary.Total)

	require.NotNil(t, result.IsCorrect)
	assert.False(t, *result.IsCorrect)
	assert.Equal(t, 4.0, result.PointsAwarded) // 8 points x 2/4 pass rate
	assert.True(t, result.Completed)

	saved, _, err := f.store.Get(ctx, sess.ID)
	require.NoError(t, err)
	record, ok := saved.CodeSubmissions[view.Question.ID]
	require.True(t, ok)
	assert.Equal(t, "half", record.SourceCode)
	require.NotNil(t, record.LastExecutionResult)
	assert.Equal(t, 2, record.LastExecutionResult.Passed)
}

func TestCodeSubmissionOnChoiceQuestionRejected(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	sess := f.createSession(t)
	view, err := f.engine.GetNextQuestion(ctx, sess.ID)
	require.NoError(t, err)

	_, _, err = f.engine.SubmitCode(ctx, sess.ID, &model.SubmitCodeRequest{
		QuestionID: view.Question.ID,
		SourceCode: "pass",
		Language:   "python",
	})
	assert.ErrorIs(t, err, engine.ErrInvalidQuestionType)
}

func TestAdaptiveFlowBuildsOrderIncrementally(t *testing.T) {
	f := newFixture(t, func(def *model.TestDefinition, questions *[]model.Question) {
		def.Adaptive = &model.AdaptiveSettings{MinQuestions: 3, MaxQuestions: 5}
		qs := make([]model.Question, 0, 12)
		for i := 0; i < 12; i++ {
			q := choiceQuestion(def.ID, i, 1)
			q.Difficulty = float64(i) / 11
			qs = append(qs, q)
		}
		*questions = qs
	})
	ctx := context.Background()
	sess := f.createSession(t)

	seen := make(map[uuid.UUID]bool)
	answered := 0
	for {
		view, err := f.engine.GetNextQuestion(ctx, sess.ID)
		require.NoError(t, err)
		require.NotNil(t, view)
		assert.Equal(t, 5, view.Total) // adaptive total is the configured maximum
		assert.False(t, seen[view.Question.ID], "question repeated")
		seen[view.Question.ID] = true

		result, err := f.engine.SubmitAnswer(ctx, sess.ID, answer(view.Question.ID, `"a"`))
		require.NoError(t, err)
		answered++
		if result.Completed {
			assert.NotEmpty(t, result.CompletionReason)
			break
		}
		require.Less(t, answered, 6, "adaptive session exceeded its maximum")
	}

	assert.GreaterOrEqual(t, answered, 3)
	assert.LessOrEqual(t, answered, 5)

	saved, _, err := f.store.Get(ctx, sess.ID)
	require.NoError(t, err)
	require.NotNil(t, saved.Adaptive)
	assert.Equal(t, answered, saved.Adaptive.QuestionsAnswered)
	assert.Equal(t, float64(answered), saved.MaxScore)
	assert.NotEmpty(t, saved.Adaptive.StopReason)
}

func TestConcurrentSessionsAreIndependent(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	const n = 8
	var wg sync.WaitGroup
	errs := make(chan error, n)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sess, err := f.engine.CreateSession(ctx, &model.CreateSessionRequest{
				CandidateID: fmt.Sprintf("cand-%d", i),
				TestID:      f.test.ID,
			})
			if err != nil {
				errs <- err
				return
			}
			for {
				view, err := f.engine.GetNextQuestion(ctx, sess.ID)
				if err != nil {
					errs <- err
					return
				}
				result, err := f.engine.SubmitAnswer(ctx, sess.ID, answer(view.Question.ID, `"a"`))
				if err != nil {
					errs <- err
					return
				}
				if result.Completed {
					if result.RunningTotal != 10.0 {
						errs <- fmt.Errorf("session %d finished with score %v", i, result.RunningTotal)
					}
					return
				}
			}
		}(i)
	}

	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}
}

func TestSweepExpired(t *testing.T) {
	f := newFixture(t, func(def *model.TestDefinition, _ *[]model.Question) {
		def.TimeLimitSeconds = 1
	})
	ctx := context.Background()

	sess := f.createSession(t)
	_, err := f.engine.GetNextQuestion(ctx, sess.ID)
	require.NoError(t, err)

	// A second session that never starts must survive the sweep.
	idle := f.createSession(t)

	time.Sleep(1100 * time.Millisecond)

	expired, err := f.engine.SweepExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, expired)

	saved, _, err := f.store.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SessionStatusExpired, saved.Status)

	savedIdle, _, err := f.store.Get(ctx, idle.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SessionStatusNotStarted, savedIdle.Status)

	// Idempotent: nothing left to expire.
	expired, err = f.engine.SweepExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, expired)
}

func TestAdaptiveResubmitDoesNotAdvanceSelector(t *testing.T) {
	f := newFixture(t, func(def *model.TestDefinition, questions *[]model.Question) {
		def.Adaptive = &model.AdaptiveSettings{MinQuestions: 3, MaxQuestions: 20}
		qs := make([]model.Question, 0, 12)
		for i := 0; i < 12; i++ {
			q := choiceQuestion(def.ID, i, 1)
			q.Difficulty = float64(i) / 11
			qs = append(qs, q)
		}
		*questions = qs
	})
	ctx := context.Background()
	sess := f.createSession(t)

	view, err := f.engine.GetNextQuestion(ctx, sess.ID)
	require.NoError(t, err)

	_, err = f.engine.SubmitAnswer(ctx, sess.ID, answer(view.Question.ID, `"a"`))
	require.NoError(t, err)

	// Changing one's mind replaces the score but must not feed the
	// selector again or grow the order.
	for i := 0; i < 3; i++ {
		result, err := f.engine.SubmitAnswer(ctx, sess.ID, answer(view.Question.ID, `"b"`))
		require.NoError(t, err)
		assert.False(t, result.Completed)
		assert.Equal(t, 0.0, result.RunningTotal)
	}

	saved, _, err := f.store.Get(ctx, sess.ID)
	require.NoError(t, err)
	require.NotNil(t, saved.Adaptive)
	assert.Len(t, saved.Answers, 1)
	assert.Equal(t, 1, saved.Adaptive.QuestionsAnswered)
	assert.Len(t, saved.QuestionOrder, 2) // the answered question plus one selected next
	assert.Equal(t, 2.0, saved.MaxScore)
	assert.Equal(t, model.SessionStatusInProgress, saved.Status)

	// The session continues with the already-selected next question.
	next, err := f.engine.GetNextQuestion(ctx, sess.ID)
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.NotEqual(t, view.Question.ID, next.Question.ID)
}

func TestConcurrentSubmitsOneSessionAllPersisted(t *testing.T) {
	const n = 8
	f := newFixture(t, func(def *model.TestDefinition, questions *[]model.Question) {
		qs := make([]model.Question, 0, n)
		for i := 0; i < n; i++ {
			qs = append(qs, choiceQuestion(def.ID, i, 2))
		}
		*questions = qs
	})
	ctx := context.Background()
	sess := f.createSession(t)
	_, err := f.engine.GetNextQuestion(ctx, sess.ID)
	require.NoError(t, err)

	questions := f.catalog.questions[f.test.ID]
	require.Len(t, questions, n)

	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(q model.Question) {
			defer wg.Done()
			if _, err := f.engine.SubmitAnswer(ctx, sess.ID, answer(q.ID, `"a"`)); err != nil {
				errs <- err
			}
		}(questions[i])
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	// Every submit survived the interleaving: N distinct answers, none
	// lost to a stale snapshot, and the total matches.
	saved, _, err := f.store.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.Len(t, saved.Answers, n)
	assert.Equal(t, float64(2*n), saved.TotalScore)
}

func TestCompletedSessionReadsFollowStore(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	sess := f.createSession(t)

	view, err := f.engine.GetNextQuestion(ctx, sess.ID)
	require.NoError(t, err)
	_, err = f.engine.SubmitAnswer(ctx, sess.ID, answer(view.Question.ID, `"a"`))
	require.NoError(t, err)

	_, err = f.engine.CompleteSession(ctx, sess.ID)
	require.NoError(t, err)

	// Once terminal, the durable snapshot is the source of truth: an
	// out-of-band change to the stored session is visible on the next
	// read instead of being shadowed by a retained in-memory runtime.
	saved, version, err := f.store.Get(ctx, sess.ID)
	require.NoError(t, err)
	saved.TotalScore = 99
	_, err = f.store.Save(ctx, saved, version)
	require.NoError(t, err)

	stats, err := f.engine.GetSessionStats(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, 99.0, stats.TotalScore)
}

func TestResubmitReplacesAnswer(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	sess := f.createSession(t)
	view, err := f.engine.GetNextQuestion(ctx, sess.ID)
	require.NoError(t, err)

	first, err := f.engine.SubmitAnswer(ctx, sess.ID, answer(view.Question.ID, `"a"`))
	require.NoError(t, err)
	assert.Equal(t, 2.0, first.RunningTotal)

	second, err := f.engine.SubmitAnswer(ctx, sess.ID, answer(view.Question.ID, `"b"`))
	require.NoError(t, err)
	require.NotNil(t, second.IsCorrect)
	assert.False(t, *second.IsCorrect)
	assert.Equal(t, 0.0, second.RunningTotal)

	saved, _, err := f.store.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.Len(t, saved.Answers, 1)
}
