package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hirestack/assessment-engine/internal/model"
	"github.com/hirestack/assessment-engine/internal/store"
)

// CreateSession creates a new not_started session for a candidate/test pair.
// The countdown does not start until the first question is requested.
func (e *Engine) CreateSession(ctx context.Context, req *model.CreateSessionRequest) (*model.Session, error) {
	test, err := e.catalog.TestByID(ctx, req.TestID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrTestNotFound
		}
		return nil, fmt.Errorf("load test: %w", err)
	}

	now := time.Now()
	sess := &model.Session{
		ID:                 uuid.New(),
		CandidateID:        req.CandidateID,
		TestID:             test.ID,
		Status:             model.SessionStatusNotStarted,
		TimeLimitSeconds:   test.TimeLimitSeconds,
		Answers:            make(map[uuid.UUID]model.AnswerRecord),
		CodeSubmissions:    make(map[uuid.UUID]model.CodeRecord),
		LastActivityAt:     now,
		RandomizeQuestions: test.RandomizeQuestions,
		RandomizeOptions:   test.RandomizeOptions,
	}
	if req.TimeLimitSeconds != nil {
		sess.TimeLimitSeconds = *req.TimeLimitSeconds
	}
	if req.RandomizeQuestions != nil {
		sess.RandomizeQuestions = *req.RandomizeQuestions
	}
	if req.RandomizeOptions != nil {
		sess.RandomizeOptions = *req.RandomizeOptions
	}

	if err := e.store.Create(ctx, sess); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	rt, err := e.buildRuntime(ctx, sess, 1)
	if err != nil {
		return nil, err
	}
	e.runtimes.Store(sess.ID, rt)

	e.log.Info().
		Str("session_id", sess.ID.String()).
		Str("candidate_id", sess.CandidateID).
		Str("test_id", sess.TestID.String()).
		Msg("session created")
	return sess, nil
}

// start performs the not_started → in_progress transition: it fixes the
// question order (or seeds the adaptive selector), starts the countdown,
// and arms auto-save. Runs with the runtime lock held.
func (e *Engine) start(rt *sessionRuntime, now time.Time) error {
	sess := rt.sess
	sess.Status = model.SessionStatusInProgress
	sess.StartedAt = &now
	sess.LastActivityAt = now

	if rt.selector != nil {
		sess.Adaptive = rt.selector.NewState()
		first := rt.selector.SelectNext(sess.Adaptive, rt.remainingQuestions())
		if first == nil {
			return fmt.Errorf("test %s has no questions", sess.TestID)
		}
		sess.QuestionOrder = []uuid.UUID{first.ID}
		sess.MaxScore = first.Points
	} else {
		if sess.RandomizeQuestions {
			sess.QuestionOrder = shuffledOrder(rt.ordered)
		} else {
			sess.QuestionOrder = declaredOrder(rt.ordered)
		}
		for i := range rt.ordered {
			sess.MaxScore += rt.ordered[i].Points
		}
	}

	if sess.RandomizeOptions {
		sess.OptionOrders = make(map[uuid.UUID][]string)
		for id, q := range rt.questions {
			if len(q.Options) > 0 {
				sess.OptionOrders[id] = shuffledOptionIDs(q)
			}
		}
	}

	e.scheduleAutosave(rt)
	e.log.Info().
		Str("session_id", sess.ID.String()).
		Bool("adaptive", rt.selector != nil).
		Int("time_limit_seconds", sess.TimeLimitSeconds).
		Msg("session started")
	return nil
}

// remainingQuestions returns catalog questions not yet placed in the
// session's order. Runs with the runtime lock held.
func (rt *sessionRuntime) remainingQuestions() []model.Question {
	asked := make(map[uuid.UUID]bool, len(rt.sess.QuestionOrder))
	for _, id := range rt.sess.QuestionOrder {
		asked[id] = true
	}
	var out []model.Question
	for i := range rt.ordered {
		if !asked[rt.ordered[i].ID] {
			out = append(out, rt.ordered[i])
		}
	}
	return out
}

// GetNextQuestion returns the current unanswered question, starting the
// session on the first call. Returns (nil, nil) when no questions remain
// but the session has not yet been completed.
func (e *Engine) GetNextQuestion(ctx context.Context, sessionID uuid.UUID) (*QuestionView, error) {
	rt, err := e.loadRuntime(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	rt.mu.Lock()
	defer rt.mu.Unlock()

	now := time.Now()
	if err := e.guardOpen(ctx, rt, now); err != nil {
		return nil, err
	}
	if rt.sess.Status == model.SessionStatusPaused {
		return nil, ErrSessionPaused
	}

	if rt.sess.Status == model.SessionStatusNotStarted {
		if err := e.start(rt, now); err != nil {
			return nil, err
		}
		if err := e.persist(ctx, rt); err != nil {
			return nil, err
		}
	}

	sess := rt.sess
	if sess.CurrentQuestionIndex >= len(sess.QuestionOrder) {
		return nil, nil
	}

	qid := sess.QuestionOrder[sess.CurrentQuestionIndex]
	q, ok := rt.questions[qid]
	if !ok {
		return nil, fmt.Errorf("%w: %s not in catalog", ErrQuestionNotFound, qid)
	}

	sess.LastActivityAt = now
	rt.dirty = true

	total := len(sess.QuestionOrder)
	if rt.selector != nil {
		total = rt.selector.Config().MaxQuestions
	}
	return &QuestionView{
		Question:             sanitize(q, sess.OptionOrders[qid]),
		Index:                sess.CurrentQuestionIndex,
		Total:                total,
		TimeRemainingSeconds: sess.TimeRemaining(now).Seconds(),
	}, nil
}

// sanitize strips the answer key from a question: correctness flags are
// dropped and hidden test cases are omitted entirely. optionOrder, when
// non-nil, gives the per-session option permutation.
func sanitize(q *model.Question, optionOrder []string) SanitizedQuestion {
	sq := SanitizedQuestion{
		ID:               q.ID,
		Type:             q.Type,
		Prompt:           q.Prompt,
		Points:           q.Points,
		TimeLimitSeconds: q.TimeLimitSeconds,
	}

	if len(q.Options) > 0 {
		byID := make(map[string]model.Option, len(q.Options))
		for _, o := range q.Options {
			byID[o.ID] = o
		}
		if optionOrder == nil {
			for _, o := range q.Options {
				sq.Options = append(sq.Options, OptionView{ID: o.ID, Text: o.Text})
			}
		} else {
			for _, id := range optionOrder {
				if o, ok := byID[id]; ok {
					sq.Options = append(sq.Options, OptionView{ID: o.ID, Text: o.Text})
				}
			}
		}
	}

	for _, tc := range q.TestCases {
		if tc.Hidden {
			continue
		}
		sq.TestCases = append(sq.TestCases, TestCaseView{Input: tc.Input, ExpectedOutput: tc.ExpectedOutput})
	}
	return sq
}

// PauseSession freezes the countdown. Only running sessions can pause.
func (e *Engine) PauseSession(ctx context.Context, sessionID uuid.UUID) (*model.Session, error) {
	rt, err := e.loadRuntime(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	rt.mu.Lock()
	defer rt.mu.Unlock()

	now := time.Now()
	if err := e.guardOpen(ctx, rt, now); err != nil {
		return nil, err
	}
	if rt.sess.Status != model.SessionStatusInProgress {
		return nil, ErrSessionNotStarted
	}

	rt.sess.Status = model.SessionStatusPaused
	rt.sess.PausedAt = &now
	rt.sess.LastActivityAt = now
	rt.stopAutosave()

	if err := e.persist(ctx, rt); err != nil {
		return nil, err
	}
	e.log.Info().Str("session_id", sessionID.String()).Msg("session paused")
	return rt.sess, nil
}

// ResumeSession restarts the countdown of a paused session. Paused time
// does not count against the limit.
func (e *Engine) ResumeSession(ctx context.Context, sessionID uuid.UUID) (*model.Session, error) {
	rt, err := e.loadRuntime(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	rt.mu.Lock()
	defer rt.mu.Unlock()

	now := time.Now()
	if rt.sess.Status.Terminal() {
		return nil, &SessionClosedError{Status: rt.sess.Status, Result: finalResult(rt.sess)}
	}
	if rt.sess.Status != model.SessionStatusPaused {
		return nil, ErrNotPaused
	}

	if rt.sess.PausedAt != nil {
		rt.sess.PausedSeconds += now.Sub(*rt.sess.PausedAt).Seconds()
		rt.sess.PausedAt = nil
	}
	rt.sess.Status = model.SessionStatusInProgress
	rt.sess.LastActivityAt = now

	if err := e.persist(ctx, rt); err != nil {
		return nil, err
	}
	e.log.Info().Str("session_id", sessionID.String()).Msg("session resumed")
	return rt.sess, nil
}

// CompleteSession finishes a running session at the candidate's request and
// returns the final scored result.
func (e *Engine) CompleteSession(ctx context.Context, sessionID uuid.UUID) (*FinalResult, error) {
	rt, err := e.loadRuntime(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	rt.mu.Lock()
	defer rt.mu.Unlock()

	now := time.Now()
	if err := e.guardOpen(ctx, rt, now); err != nil {
		return nil, err
	}
	if rt.sess.Status == model.SessionStatusPaused {
		return nil, ErrSessionPaused
	}
	if rt.sess.Status != model.SessionStatusInProgress {
		return nil, ErrSessionNotStarted
	}

	e.transitionTerminal(rt, model.SessionStatusCompleted, model.ReasonSubmitted, now)
	if err := e.persist(ctx, rt); err != nil {
		return nil, err
	}
	return finalResult(rt.sess), nil
}

// TerminateSession is the administrative hard stop. It works from any
// non-terminal state.
func (e *Engine) TerminateSession(ctx context.Context, sessionID uuid.UUID, reason string) (*FinalResult, error) {
	rt, err := e.loadRuntime(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	rt.mu.Lock()
	defer rt.mu.Unlock()

	if rt.sess.Status.Terminal() {
		return nil, &SessionClosedError{Status: rt.sess.Status, Result: finalResult(rt.sess)}
	}

	now := time.Now()
	if rt.sess.PausedAt != nil {
		rt.sess.PausedSeconds += now.Sub(*rt.sess.PausedAt).Seconds()
		rt.sess.PausedAt = nil
	}
	e.transitionTerminal(rt, model.SessionStatusTerminated, reason, now)
	if err := e.persist(ctx, rt); err != nil {
		return nil, err
	}
	return finalResult(rt.sess), nil
}

// ResumeAfterInterruption reloads a session after a disconnect or crash and
// returns everything the client needs to restore its state. The session
// keeps whatever status it had; if the limit ran out while the client was
// away, the expiry transition happens here.
func (e *Engine) ResumeAfterInterruption(ctx context.Context, sessionID uuid.UUID) (*RecoveredState, error) {
	rt, err := e.loadRuntime(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	rt.mu.Lock()
	defer rt.mu.Unlock()

	now := time.Now()
	if rt.sess.Status == model.SessionStatusInProgress {
		if err := e.guardOpen(ctx, rt, now); err != nil {
			return nil, err
		}
		rt.sess.LastActivityAt = now
		rt.dirty = true
	}

	return &RecoveredState{
		Session:              rt.sess,
		TimeRemainingSeconds: rt.sess.TimeRemaining(now).Seconds(),
	}, nil
}

// GetSessionStats returns a progress snapshot without mutating the session.
func (e *Engine) GetSessionStats(ctx context.Context, sessionID uuid.UUID) (*SessionStats, error) {
	rt, err := e.loadRuntime(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	rt.mu.Lock()
	defer rt.mu.Unlock()

	sess := rt.sess
	return &SessionStats{
		Status:            sess.Status,
		DurationSeconds:   sess.ActiveElapsed(time.Now()).Seconds(),
		QuestionsAnswered: len(sess.Answers),
		ViolationCount:    len(sess.Violations),
		TotalScore:        sess.TotalScore,
		Percentage:        sess.Percentage(),
	}, nil
}

// ReportViolation records a proctoring violation. The record always lands
// in the session snapshot first; the audit sink copy is best effort.
// Crossing the violation limit terminates the session.
func (e *Engine) ReportViolation(ctx context.Context, sessionID uuid.UUID, req *model.ReportViolationRequest) (*model.Session, *FinalResult, error) {
	rt, err := e.loadRuntime(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}

	rt.mu.Lock()
	defer rt.mu.Unlock()

	if rt.sess.Status.Terminal() {
		return nil, nil, &SessionClosedError{Status: rt.sess.Status, Result: finalResult(rt.sess)}
	}

	now := time.Now()
	v := model.ViolationRecord{
		Type:      req.Type,
		Severity:  req.Severity,
		Timestamp: now,
		Details:   req.Details,
	}
	rt.sess.Violations = append(rt.sess.Violations, v)
	rt.sess.LastActivityAt = now

	if e.sink != nil {
		if err := e.sink.Publish(ctx, sessionID, rt.sess.CandidateID, v); err != nil {
			e.log.Warn().Err(err).Str("session_id", sessionID.String()).Msg("violation audit publish failed")
		}
	}

	var final *FinalResult
	if e.cfg.ViolationLimit > 0 && len(rt.sess.Violations) >= e.cfg.ViolationLimit {
		if rt.sess.PausedAt != nil {
			rt.sess.PausedSeconds += now.Sub(*rt.sess.PausedAt).Seconds()
			rt.sess.PausedAt = nil
		}
		e.transitionTerminal(rt, model.SessionStatusTerminated, model.ReasonViolationThreshold, now)
		final = finalResult(rt.sess)
	}

	if err := e.persist(ctx, rt); err != nil {
		return nil, nil, err
	}

	e.log.Info().
		Str("session_id", sessionID.String()).
		Str("type", v.Type).
		Str("severity", v.Severity).
		Int("count", len(rt.sess.Violations)).
		Msg("violation recorded")
	return rt.sess, final, nil
}

// SweepExpired scans running sessions and expires those whose limit has run
// out. Returns how many sessions were expired. Intended for a periodic job.
func (e *Engine) SweepExpired(ctx context.Context) (int, error) {
	ids, err := e.store.ListActive(ctx)
	if err != nil {
		return 0, fmt.Errorf("list active sessions: %w", err)
	}

	expired := 0
	for _, id := range ids {
		rt, err := e.loadRuntime(ctx, id)
		if err != nil {
			e.log.Warn().Err(err).Str("session_id", id.String()).Msg("sweep: load failed")
			continue
		}

		rt.mu.Lock()
		err = e.guardOpen(ctx, rt, time.Now())
		rt.mu.Unlock()

		var exp *SessionExpiredError
		if errors.As(err, &exp) {
			expired++
		}
	}

	if expired > 0 {
		e.log.Info().Int("expired", expired).Msg("expiry sweep finished")
	}
	return expired, nil
}
