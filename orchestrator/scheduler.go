package orchestrator

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"
)

const triggerSchedule = "schedule"

// Scheduler invokes the handler on a cron schedule. A run still in progress
// when the next one is due causes that one to be skipped.
type Scheduler struct {
	cron     *cron.Cron
	handler  *Handler
	onResult func(*BatchResult)
}

type SchedulerOption func(*Scheduler)

// WithResultHook is called with the result of every scheduled batch
func WithResultHook(fn func(*BatchResult)) SchedulerOption {
	return func(s *Scheduler) {
		s.onResult = fn
	}
}

func NewScheduler(ctx context.Context, handler *Handler, spec string, opts ...SchedulerOption) (*Scheduler, error) {
	logger := cron.PrintfLogger(slog.NewLogLogger(slog.Default().Handler(), slog.LevelInfo))
	s := &Scheduler{
		handler: handler,
		cron: cron.New(
			cron.WithLogger(logger),
			cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
		),
	}
	for _, opt := range opts {
		opt(s)
	}

	if _, err := s.cron.AddFunc(spec, func() { s.invoke(ctx) }); err != nil {
		return nil, fmt.Errorf("invalid schedule %q: %w", spec, err)
	}
	return s, nil
}

func (s *Scheduler) invoke(ctx context.Context) {
	result, err := s.handler.Handle(ctx, Event{Trigger: triggerSchedule})
	if err != nil {
		slog.Error("scheduled batch failed", "error", err)
		return
	}
	if s.onResult != nil {
		s.onResult(result)
	}
}

// Run starts the schedule and blocks until ctx is done and the current batch finished
func (s *Scheduler) Run(ctx context.Context) {
	s.cron.Start()
	slog.Info("scheduler started", "next", s.cron.Entries()[0].Next)
	<-ctx.Done()
	<-s.cron.Stop().Done()
	slog.Info("scheduler stopped")
}
