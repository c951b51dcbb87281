package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wirvsvirus/landingzone/datasource"
	"github.com/wirvsvirus/landingzone/sink"
)

// ErrorKind classifies why a dataset failed
type ErrorKind string

const (
	KindFetch      ErrorKind = "FetchError"
	KindSchema     ErrorKind = "SchemaError"
	KindDateFormat ErrorKind = "DateFormatError"
	KindWrite      ErrorKind = "WriteError"
	KindCanceled   ErrorKind = "Canceled"
	KindInternal   ErrorKind = "InternalError"
)

type Status string

const (
	StatusSuccess Status = "success"
	StatusFailure Status = "failure"
)

// Outcome is the result of one dataset pipeline
type Outcome struct {
	Dataset   string          `json:"dataset"`
	Kind      datasource.Kind `json:"kind"`
	Status    Status          `json:"status"`
	Receipt   *sink.Receipt   `json:"receipt,omitempty"`
	ErrorKind ErrorKind       `json:"error_kind,omitempty"`
	Error     string          `json:"error,omitempty"`
	Duration  time.Duration   `json:"duration"`

	err error
}

func (o Outcome) Succeeded() bool {
	return o.Status == StatusSuccess
}

// Err returns the error of a failed outcome
func (o Outcome) Err() error {
	return o.err
}

func (o *Outcome) fail(err error) {
	o.Status = StatusFailure
	o.ErrorKind = Classify(err)
	o.Error = err.Error()
	o.err = err
}

// BatchResult lists the outcome of every dataset of a run, in registry order
type BatchResult struct {
	RunID      string    `json:"run_id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Outcomes   []Outcome `json:"outcomes"`
}

func (r *BatchResult) Succeeded() []Outcome {
	return r.filter(StatusSuccess)
}

func (r *BatchResult) Failed() []Outcome {
	return r.filter(StatusFailure)
}

func (r *BatchResult) filter(status Status) []Outcome {
	var res []Outcome
	for _, o := range r.Outcomes {
		if o.Status == status {
			res = append(res, o)
		}
	}
	return res
}

// Err joins the errors of all failed datasets, nil if all succeeded
func (r *BatchResult) Err() error {
	var errs []error
	for _, o := range r.Failed() {
		errs = append(errs, fmt.Errorf("%s: %w", o.Dataset, o.err))
	}
	return errors.Join(errs...)
}

// Classify maps a pipeline error to its kind. Canceled is only reported for
// context errors outside any stage, e.g. a batch cancelled before the
// dataset started.
func Classify(err error) ErrorKind {
	var (
		fetchErr  *datasource.FetchError
		schemaErr *datasource.SchemaError
		dateErr   *datasource.DateFormatError
		writeErr  *sink.WriteError
		panicErr  *PanicError
	)
	switch {
	case errors.As(err, &panicErr):
		return KindInternal
	// a stage error keeps its kind even when a deadline caused it
	case errors.As(err, &fetchErr):
		return KindFetch
	case errors.As(err, &schemaErr):
		return KindSchema
	case errors.As(err, &dateErr):
		return KindDateFormat
	case errors.As(err, &writeErr):
		return KindWrite
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindCanceled
	default:
		return KindInternal
	}
}

// PanicError is a recovered panic of a dataset pipeline
type PanicError struct {
	Dataset string
	Err     error
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic in %s pipeline: %v", e.Dataset, e.Err)
}

func (e *PanicError) Unwrap() error {
	return e.Err
}
