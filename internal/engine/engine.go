// Package engine owns the assessment session lifecycle: the state machine,
// auto-save, time limits, question ordering, scoring, and the calls out to
// the adaptive selector and the sandboxed executor. Concurrent calls
// against the same session are serialized by a per-session lock; different
// sessions proceed fully in parallel.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/puzpuzpuz/xsync/v3"
	"github.com/rs/zerolog"

	"github.com/hirestack/assessment-engine/internal/adaptive"
	"github.com/hirestack/assessment-engine/internal/model"
	"github.com/hirestack/assessment-engine/internal/sandbox"
	"github.com/hirestack/assessment-engine/internal/store"
)

// Catalog is the read-only question catalog collaborator. Safe for
// concurrent use without locking.
type Catalog interface {
	TestByID(ctx context.Context, testID uuid.UUID) (*model.TestDefinition, error)
	QuestionsForTest(ctx context.Context, testID uuid.UUID) ([]model.Question, error)
}

// ViolationSink receives audit copies of reported violations. Delivery is
// best effort; the session record remains the source of truth.
type ViolationSink interface {
	Publish(ctx context.Context, sessionID uuid.UUID, candidateID string, v model.ViolationRecord) error
}

// Config carries the engine tunables.
type Config struct {
	AutoSaveInterval time.Duration
	// ViolationLimit terminates a session once this many violations are
	// recorded. Zero disables the automatic cutoff.
	ViolationLimit int
	Adaptive       adaptive.Config
}

// DefaultConfig returns the engine defaults.
func DefaultConfig() Config {
	return Config{
		AutoSaveInterval: 30 * time.Second,
		ViolationLimit:   10,
		Adaptive:         adaptive.DefaultConfig(),
	}
}

// Engine orchestrates assessment sessions.
type Engine struct {
	store    store.SessionStore
	catalog  Catalog
	executor sandbox.Executor
	sink     ViolationSink // may be nil
	cfg      Config
	log      zerolog.Logger

	runtimes *xsync.MapOf[uuid.UUID, *sessionRuntime]
}

// sessionRuntime is the in-memory working state of one session. Its mutex
// is the single-writer discipline: every engine operation holds it for the
// operation's full duration, including store writes and sandbox execution.
type sessionRuntime struct {
	mu      sync.Mutex
	sess    *model.Session
	version int64

	test      *model.TestDefinition
	questions map[uuid.UUID]*model.Question
	ordered   []model.Question
	selector  *adaptive.Selector

	autosave *time.Timer
	// dirty tracks unsaved in-memory changes so the auto-save tick only
	// writes when the snapshot actually changed.
	dirty bool
}

// New creates an Engine. sink may be nil to disable violation auditing.
func New(st store.SessionStore, catalog Catalog, executor sandbox.Executor, sink ViolationSink, cfg Config, log zerolog.Logger) *Engine {
	if cfg.AutoSaveInterval <= 0 {
		cfg.AutoSaveInterval = 30 * time.Second
	}
	return &Engine{
		store:    st,
		catalog:  catalog,
		executor: executor,
		sink:     sink,
		cfg:      cfg,
		log:      log.With().Str("component", "session_engine").Logger(),
		runtimes: xsync.NewMapOf[uuid.UUID, *sessionRuntime](),
	}
}

// Close cancels all background auto-save tasks. Pending state is already
// durable: every mutating operation persists before returning.
func (e *Engine) Close() {
	e.runtimes.Range(func(_ uuid.UUID, rt *sessionRuntime) bool {
		rt.mu.Lock()
		rt.stopAutosave()
		rt.mu.Unlock()
		return true
	})
}

// loadRuntime returns the runtime for a session, recovering it from the
// store if this process has not seen the session yet (crash recovery or a
// fresh deployment). The caller must not hold the runtime lock.
func (e *Engine) loadRuntime(ctx context.Context, id uuid.UUID) (*sessionRuntime, error) {
	if rt, ok := e.runtimes.Load(id); ok {
		return rt, nil
	}

	sess, version, err := e.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidSession
		}
		return nil, fmt.Errorf("load session: %w", err)
	}

	rt, err := e.buildRuntime(ctx, sess, version)
	if err != nil {
		return nil, err
	}

	// Terminal sessions are read-only; serving them without registering
	// keeps the registry bounded by the live session count.
	if sess.Status.Terminal() {
		return rt, nil
	}

	actual, loaded := e.runtimes.LoadOrStore(id, rt)
	if !loaded && sess.Status == model.SessionStatusInProgress {
		// The recovered session's auto-save task restarts with it.
		rt.mu.Lock()
		e.scheduleAutosave(rt)
		rt.mu.Unlock()
	}
	return actual, nil
}

func (e *Engine) buildRuntime(ctx context.Context, sess *model.Session, version int64) (*sessionRuntime, error) {
	test, err := e.catalog.TestByID(ctx, sess.TestID)
	if err != nil {
		return nil, fmt.Errorf("load test %s: %w", sess.TestID, err)
	}
	questions, err := e.catalog.QuestionsForTest(ctx, sess.TestID)
	if err != nil {
		return nil, fmt.Errorf("load questions for test %s: %w", sess.TestID, err)
	}

	rt := &sessionRuntime{
		sess:      sess,
		version:   version,
		test:      test,
		questions: make(map[uuid.UUID]*model.Question, len(questions)),
		ordered:   questions,
	}
	for i := range questions {
		rt.questions[questions[i].ID] = &questions[i]
	}
	if test.Adaptive != nil {
		rt.selector = adaptive.NewSelector(e.cfg.Adaptive.ApplySettings(test.Adaptive), nil)
	}
	return rt, nil
}

// persist saves the current in-memory snapshot, never a cached stale copy,
// so saved snapshots are monotonically non-decreasing in logical progress.
// It also counts as a manual save: the auto-save timer restarts.
func (e *Engine) persist(ctx context.Context, rt *sessionRuntime) error {
	now := time.Now()
	rt.sess.LastAutoSaveAt = &now

	version, err := e.store.Save(ctx, rt.sess, rt.version)
	if err != nil {
		if errors.Is(err, store.ErrVersionConflict) {
			return fmt.Errorf("%w: session %s", ErrPersistenceConflict, rt.sess.ID)
		}
		return fmt.Errorf("save session: %w", err)
	}

	rt.version = version
	rt.dirty = false
	if rt.sess.Status.Terminal() {
		// The durable snapshot is now the source of truth; later reads
		// rehydrate from the store.
		e.runtimes.Delete(rt.sess.ID)
		return nil
	}
	e.scheduleAutosave(rt)
	return nil
}

// scheduleAutosave (re)arms the session's auto-save task. Only running
// sessions keep a timer; pause and terminal transitions cancel it so no
// background work leaks.
func (e *Engine) scheduleAutosave(rt *sessionRuntime) {
	rt.stopAutosave()
	if rt.sess.Status != model.SessionStatusInProgress {
		return
	}
	id := rt.sess.ID
	rt.autosave = time.AfterFunc(e.cfg.AutoSaveInterval, func() {
		e.autosaveTick(id)
	})
}

func (rt *sessionRuntime) stopAutosave() {
	if rt.autosave != nil {
		rt.autosave.Stop()
		rt.autosave = nil
	}
}

// autosaveTick persists the session iff it changed since the last save.
func (e *Engine) autosaveTick(id uuid.UUID) {
	rt, ok := e.runtimes.Load(id)
	if !ok {
		return
	}

	rt.mu.Lock()
	defer rt.mu.Unlock()

	if rt.sess.Status != model.SessionStatusInProgress {
		rt.stopAutosave()
		return
	}

	if !rt.dirty {
		e.scheduleAutosave(rt)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.persist(ctx, rt); err != nil {
		e.log.Error().Err(err).Str("session_id", id.String()).Msg("auto-save failed")
		// Keep the dirty flag; the next tick retries.
		e.scheduleAutosave(rt)
	}
}

// guardOpen enforces the terminal-state and time-limit rules shared by
// every operation. It must run with the runtime lock held. On expiry it
// performs the lazy in_progress → expired transition, keeping the current
// best-effort state.
func (e *Engine) guardOpen(ctx context.Context, rt *sessionRuntime, now time.Time) error {
	if rt.sess.Status.Terminal() {
		return &SessionClosedError{Status: rt.sess.Status, Result: finalResult(rt.sess)}
	}

	if rt.sess.Status == model.SessionStatusInProgress && rt.sess.TimeLimitExceeded(now) {
		e.transitionTerminal(rt, model.SessionStatusExpired, model.ReasonTimeLimitExceeded, now)
		if err := e.persist(ctx, rt); err != nil {
			e.log.Error().Err(err).Str("session_id", rt.sess.ID.String()).Msg("persist expired session failed")
		}
		return &SessionExpiredError{Result: finalResult(rt.sess)}
	}

	return nil
}

// transitionTerminal moves the session into a terminal state and cancels
// its background work. Persisting is the caller's responsibility.
func (e *Engine) transitionTerminal(rt *sessionRuntime, status model.SessionStatus, reason string, now time.Time) {
	rt.sess.Status = status
	rt.sess.CompletionReason = reason
	rt.sess.CompletedAt = &now
	rt.stopAutosave()

	e.log.Info().
		Str("session_id", rt.sess.ID.String()).
		Str("status", string(status)).
		Str("reason", reason).
		Float64("score", rt.sess.TotalScore).
		Msg("session reached terminal state")
}
