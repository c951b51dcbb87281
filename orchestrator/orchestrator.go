// Package orchestrator runs the dataset pipelines of a batch and collects a
// per dataset outcome. A failing dataset never stops the others.
package orchestrator

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/turbot/go-kit/helpers"
	"github.com/wirvsvirus/landingzone/constants"
	"github.com/wirvsvirus/landingzone/context_values"
	"github.com/wirvsvirus/landingzone/datasource"
	"github.com/wirvsvirus/landingzone/events"
	"github.com/wirvsvirus/landingzone/frame"
	"github.com/wirvsvirus/landingzone/observable"
	"github.com/wirvsvirus/landingzone/sink"
	"golang.org/x/sync/errgroup"
)

// Pipeline extracts one dataset
type Pipeline interface {
	Name() string
	Kind() datasource.Kind
	GetData(ctx context.Context) (*frame.Frame, error)
}

// Writer persists an extracted frame
type Writer interface {
	Write(ctx context.Context, f *frame.Frame, kind datasource.Kind, name string) (*sink.Receipt, error)
}

// Orchestrator publishes Started, DatasetCompleted and Completed events to
// its observers
type Orchestrator struct {
	observable.Base

	pipelines   []Pipeline
	writer      Writer
	concurrency int
	timeout     time.Duration
}

type Option func(*Orchestrator)

// WithConcurrency sets how many datasets run at the same time
func WithConcurrency(n int) Option {
	return func(o *Orchestrator) {
		o.concurrency = n
	}
}

// WithDatasetTimeout bounds the fetch, transform and write of each dataset, 0 disables it
func WithDatasetTimeout(d time.Duration) Option {
	return func(o *Orchestrator) {
		o.timeout = d
	}
}

func New(pipelines []Pipeline, writer Writer, opts ...Option) (*Orchestrator, error) {
	if writer == nil {
		return nil, errors.New("writer must not be nil")
	}
	o := &Orchestrator{
		pipelines:   pipelines,
		writer:      writer,
		concurrency: constants.DefaultConcurrency,
		timeout:     constants.DefaultDatasetTimeout,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.concurrency < 1 {
		return nil, errors.New("concurrency must be at least 1")
	}
	if o.timeout < 0 {
		return nil, errors.New("dataset timeout must not be negative")
	}
	return o, nil
}

// FromDataSources adapts data sources to pipelines
func FromDataSources(sources []*datasource.DataSource) []Pipeline {
	res := make([]Pipeline, len(sources))
	for i, s := range sources {
		res[i] = s
	}
	return res
}

// Run executes every pipeline and returns once all of them finished
func (o *Orchestrator) Run(ctx context.Context) *BatchResult {
	result := &BatchResult{
		RunID:     uuid.NewString(),
		StartedAt: time.Now().UTC(),
		Outcomes:  make([]Outcome, len(o.pipelines)),
	}
	ctx = context_values.WithRunId(ctx, result.RunID)
	logger := slog.With("run_id", result.RunID)
	logger.Info("batch started", "datasets", len(o.pipelines), "concurrency", o.concurrency)

	names := make([]string, len(o.pipelines))
	for i, p := range o.pipelines {
		names[i] = p.Name()
	}
	o.notify(ctx, logger, events.NewStartedEvent(result.RunID, context_values.TriggerFromContext(ctx), names))

	// tasks never return an error so one failure does not cancel the rest
	var g errgroup.Group
	g.SetLimit(o.concurrency)
	for i, p := range o.pipelines {
		g.Go(func() error {
			outcome := o.runOne(ctx, logger, p)
			result.Outcomes[i] = outcome
			o.notify(ctx, logger, datasetCompletedEvent(result.RunID, outcome))
			return nil
		})
	}
	_ = g.Wait()

	result.FinishedAt = time.Now().UTC()
	logger.Info("batch finished",
		"succeeded", len(result.Succeeded()),
		"failed", len(result.Failed()),
		"duration", result.FinishedAt.Sub(result.StartedAt))
	o.notify(ctx, logger, events.NewCompletedEvent(result.RunID, len(result.Succeeded()), len(result.Failed()), result.FinishedAt.Sub(result.StartedAt)))
	return result
}

// notify publishes e, observer errors never fail the batch
func (o *Orchestrator) notify(ctx context.Context, logger *slog.Logger, e events.Event) {
	if err := o.NotifyObservers(ctx, e); err != nil {
		logger.Warn("observer failed", "error", err)
	}
}

func datasetCompletedEvent(runId string, o Outcome) *events.DatasetCompleted {
	e := events.NewDatasetCompletedEvent(runId, o.Dataset, string(o.Kind))
	e.Duration = o.Duration
	if o.Receipt != nil {
		e.Rows = o.Receipt.Rows
		e.Location = o.Receipt.Location
	}
	if !o.Succeeded() {
		e.ErrorKind = string(o.ErrorKind)
		e.Err = o.Err()
	}
	return e
}

func (o *Orchestrator) runOne(ctx context.Context, logger *slog.Logger, p Pipeline) (outcome Outcome) {
	outcome = Outcome{Dataset: p.Name(), Kind: p.Kind()}
	start := time.Now()
	logger = logger.With("dataset", p.Name())

	defer func() {
		if r := recover(); r != nil {
			outcome.fail(&PanicError{Dataset: p.Name(), Err: helpers.ToError(r)})
		}
		outcome.Duration = time.Since(start)
		if outcome.Succeeded() {
			return
		}
		logger.Error("dataset failed", "error_kind", outcome.ErrorKind, "error", outcome.Error)
	}()

	if err := ctx.Err(); err != nil {
		outcome.fail(err)
		return outcome
	}
	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	f, err := p.GetData(ctx)
	if err != nil {
		outcome.fail(err)
		return outcome
	}
	receipt, err := o.writer.Write(ctx, f, p.Kind(), p.Name())
	if err != nil {
		outcome.fail(err)
		return outcome
	}

	outcome.Status = StatusSuccess
	outcome.Receipt = receipt
	return outcome
}
