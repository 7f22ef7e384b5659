package worker

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/hirestack/assessment-engine/internal/engine"
)

// ExpiryWorker periodically expires running sessions whose time limit ran
// out without the candidate coming back. The engine also expires lazily on
// access; the sweep covers sessions nobody touches again.
type ExpiryWorker struct {
	engine *engine.Engine
	cron   *cron.Cron
	log    zerolog.Logger
}

func NewExpiryWorker(eng *engine.Engine, log zerolog.Logger) *ExpiryWorker {
	return &ExpiryWorker{
		engine: eng,
		cron:   cron.New(),
		log:    log.With().Str("component", "expiry_worker").Logger(),
	}
}

// Start schedules the sweep and runs it until Stop.
func (w *ExpiryWorker) Start() error {
	_, err := w.cron.AddFunc("@every 1m", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if _, err := w.engine.SweepExpired(ctx); err != nil {
			w.log.Error().Err(err).Msg("expiry sweep failed")
		}
	})
	if err != nil {
		return err
	}

	w.cron.Start()
	w.log.Info().Msg("ExpiryWorker started")
	return nil
}

// Stop halts the schedule and waits for a running sweep to finish.
func (w *ExpiryWorker) Stop() {
	ctx := w.cron.Stop()
	<-ctx.Done()
	w.log.Info().Msg("ExpiryWorker stopped")
}
