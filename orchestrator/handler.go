package orchestrator

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/wirvsvirus/landingzone/context_values"
	"github.com/wirvsvirus/landingzone/datasource"
	"github.com/wirvsvirus/landingzone/observable"
	"github.com/wirvsvirus/landingzone/registry"
)

// Event triggers one batch. An empty dataset list runs the whole registry.
type Event struct {
	Datasets []string `json:"datasets,omitempty"`
	// Trigger names what caused the invocation, e.g. cli or schedule
	Trigger string `json:"trigger,omitempty"`
}

// Handler is the invocation entry point, every call runs one batch
type Handler struct {
	Fetcher        datasource.Fetcher
	Writer         Writer
	DateFormat     string
	Datasets       []string
	Concurrency    int
	DatasetTimeout time.Duration
	// Observers are added to the orchestrator of every batch
	Observers []observable.Observer
}

// Handle builds the pipelines named by the event, or the configured datasets
// when it names none, and runs them
func (h *Handler) Handle(ctx context.Context, ev Event) (*BatchResult, error) {
	names := ev.Datasets
	if len(names) == 0 {
		names = h.Datasets
	}

	var registryOpts []registry.Option
	if len(names) > 0 {
		registryOpts = append(registryOpts, registry.WithOnly(names...))
	}
	if h.DateFormat != "" {
		registryOpts = append(registryOpts, registry.WithDateFormat(h.DateFormat))
	}
	sources, err := registry.List(h.Fetcher, registryOpts...)
	if err != nil {
		return nil, fmt.Errorf("invalid event: %w", err)
	}

	var opts []Option
	if h.Concurrency > 0 {
		opts = append(opts, WithConcurrency(h.Concurrency))
	}
	if h.DatasetTimeout > 0 {
		opts = append(opts, WithDatasetTimeout(h.DatasetTimeout))
	}
	o, err := New(FromDataSources(sources), h.Writer, opts...)
	if err != nil {
		return nil, err
	}
	for _, obs := range h.Observers {
		if err := o.AddObserver(obs); err != nil {
			return nil, err
		}
	}
	if ev.Trigger != "" {
		ctx = context_values.WithTrigger(ctx, ev.Trigger)
	}
	return o.Run(ctx), nil
}

// Close releases the writer, e.g. the Cloud Storage client behind a sink
func (h *Handler) Close() error {
	if c, ok := h.Writer.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
