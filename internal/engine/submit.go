package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hirestack/assessment-engine/internal/model"
	"github.com/hirestack/assessment-engine/internal/sandbox"
)

// SubmitAnswer scores an answer to a non-coding question, records it, and
// advances the session. Re-submitting a question replaces the previous
// answer and adjusts the running total.
func (e *Engine) SubmitAnswer(ctx context.Context, sessionID uuid.UUID, req *model.SubmitAnswerRequest) (*SubmitResult, error) {
	rt, err := e.loadRuntime(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	rt.mu.Lock()
	defer rt.mu.Unlock()

	now := time.Now()
	q, err := e.acceptSubmission(ctx, rt, req.QuestionID, now)
	if err != nil {
		return nil, err
	}
	if q.Type == model.QuestionTypeCoding {
		return nil, fmt.Errorf("%w: %s requires a code submission", ErrInvalidQuestionType, q.ID)
	}

	isCorrect, points := scoreAnswer(q, req.Value)

	record := model.AnswerRecord{
		QuestionID:      q.ID,
		Value:           req.Value,
		IsCorrect:       isCorrect,
		PointsAwarded:   points,
		SubmittedAt:     now,
		ResponseSeconds: now.Sub(rt.sess.LastActivityAt).Seconds(),
	}
	resubmit := e.recordAnswer(rt, q, record)

	return e.afterScored(ctx, rt, q, record, resubmit, now)
}

// SubmitCode records a coding submission, executes it in the sandbox, and
// scores it by pass rate. The raw submission is persisted before execution
// so a crash mid-run never loses the candidate's code.
func (e *Engine) SubmitCode(ctx context.Context, sessionID uuid.UUID, req *model.SubmitCodeRequest) (*SubmitResult, *model.ExecutionSummary, error) {
	rt, err := e.loadRuntime(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}

	rt.mu.Lock()
	defer rt.mu.Unlock()

	now := time.Now()
	q, err := e.acceptSubmission(ctx, rt, req.QuestionID, now)
	if err != nil {
		return nil, nil, err
	}
	if q.Type != model.QuestionTypeCoding {
		return nil, nil, fmt.Errorf("%w: %s is not a coding question", ErrInvalidQuestionType, q.ID)
	}

	code := model.CodeRecord{
		QuestionID:  q.ID,
		SourceCode:  req.SourceCode,
		Language:    req.Language,
		SubmittedAt: now,
	}
	rt.sess.CodeSubmissions[q.ID] = code
	rt.dirty = true
	if err := e.persist(ctx, rt); err != nil {
		return nil, nil, err
	}

	sub := sandbox.Submission{
		SourceCode: req.SourceCode,
		Language:   req.Language,
		TestCases:  q.TestCases,
	}
	if q.TimeLimitSeconds > 0 {
		sub.TimeLimit = time.Duration(q.TimeLimitSeconds) * time.Second
	}
	summary, err := e.executor.Run(ctx, sub)
	if err != nil {
		if errors.Is(err, sandbox.ErrUnsupportedLanguage) {
			return nil, nil, err
		}
		return nil, nil, fmt.Errorf("execute submission: %w", err)
	}

	code.LastExecutionResult = summary
	rt.sess.CodeSubmissions[q.ID] = code

	passed := summary.AllPassed()
	record := model.AnswerRecord{
		QuestionID:      q.ID,
		IsCorrect:       &passed,
		PointsAwarded:   q.Points * summary.PassRatio(),
		SubmittedAt:     now,
		ResponseSeconds: now.Sub(rt.sess.LastActivityAt).Seconds(),
	}
	resubmit := e.recordAnswer(rt, q, record)

	result, err := e.afterScored(ctx, rt, q, record, resubmit, time.Now())
	if err != nil {
		return nil, nil, err
	}
	return result, summary, nil
}

// acceptSubmission runs the shared submission preconditions: the session
// must be running and the question must be part of its order. Runs with
// the runtime lock held.
func (e *Engine) acceptSubmission(ctx context.Context, rt *sessionRuntime, questionID uuid.UUID, now time.Time) (*model.Question, error) {
	if err := e.guardOpen(ctx, rt, now); err != nil {
		return nil, err
	}
	switch rt.sess.Status {
	case model.SessionStatusPaused:
		return nil, ErrSessionPaused
	case model.SessionStatusNotStarted:
		return nil, ErrSessionNotStarted
	}

	for _, id := range rt.sess.QuestionOrder {
		if id == questionID {
			q, ok := rt.questions[questionID]
			if !ok {
				return nil, fmt.Errorf("%w: %s not in catalog", ErrQuestionNotFound, questionID)
			}
			return q, nil
		}
	}
	return nil, fmt.Errorf("%w: %s not part of session", ErrQuestionNotFound, questionID)
}

// recordAnswer upserts the answer record, adjusting the running total for
// re-submissions, and advances the cursor past the answered position.
// Reports whether a previous answer was replaced. Runs with the runtime
// lock held.
func (e *Engine) recordAnswer(rt *sessionRuntime, q *model.Question, record model.AnswerRecord) (resubmit bool) {
	sess := rt.sess
	if prev, ok := sess.Answers[q.ID]; ok {
		sess.TotalScore -= prev.PointsAwarded
		resubmit = true
	}
	sess.Answers[q.ID] = record
	sess.TotalScore += record.PointsAwarded
	sess.LastActivityAt = record.SubmittedAt
	rt.dirty = true

	for i, id := range sess.QuestionOrder {
		if id == q.ID && i == sess.CurrentQuestionIndex {
			sess.CurrentQuestionIndex++
			break
		}
	}
	return resubmit
}

// afterScored runs the post-scoring step shared by answer and code paths:
// the adaptive update and stop check (or fixed-order completion check),
// then a persist. A re-submission only replaces the recorded score; the
// selector already consumed the question's first outcome, so feeding it
// again would inflate QuestionsAnswered and append phantom questions to
// the order. Runs with the runtime lock held.
func (e *Engine) afterScored(ctx context.Context, rt *sessionRuntime, q *model.Question, record model.AnswerRecord, resubmit bool, now time.Time) (*SubmitResult, error) {
	sess := rt.sess

	if resubmit {
		// Score already adjusted in place; nothing to advance.
	} else if rt.selector != nil && sess.Adaptive != nil {
		correct := record.IsCorrect != nil && *record.IsCorrect
		rt.selector.RecordAnswer(sess.Adaptive, q, correct, record.ResponseSeconds)

		stop, reason := rt.selector.ShouldStop(sess.Adaptive)
		if !stop {
			next := rt.selector.SelectNext(sess.Adaptive, rt.remainingQuestions())
			if next == nil {
				stop, reason = true, model.ReasonAllQuestionsDone
			} else {
				sess.QuestionOrder = append(sess.QuestionOrder, next.ID)
				sess.MaxScore += next.Points
			}
		}
		if stop {
			sess.Adaptive.StopReason = reason
			e.transitionTerminal(rt, model.SessionStatusCompleted, reason, now)
		}
	} else if sess.CurrentQuestionIndex >= len(sess.QuestionOrder) {
		e.transitionTerminal(rt, model.SessionStatusCompleted, model.ReasonAllQuestionsDone, now)
	}

	if err := e.persist(ctx, rt); err != nil {
		return nil, err
	}

	return &SubmitResult{
		IsCorrect:            record.IsCorrect,
		PointsAwarded:        record.PointsAwarded,
		RunningTotal:         sess.TotalScore,
		Completed:            sess.Status.Terminal(),
		CompletionReason:     sess.CompletionReason,
		TimeRemainingSeconds: sess.TimeRemaining(now).Seconds(),
	}, nil
}
