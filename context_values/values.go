package context_values

import (
	"context"
	"fmt"

	"github.com/turbot/pipe-fittings/contexthelpers"
)

var (
	contextKeyRunId   = contexthelpers.ContextKey("run_id")
	contextKeyTrigger = contexthelpers.ContextKey("trigger")
)

// WithRunId adds the batch run id to the context
func WithRunId(ctx context.Context, runId string) context.Context {
	return context.WithValue(ctx, contextKeyRunId, runId)
}

// RunIdFromContext returns the run id from the context
func RunIdFromContext(ctx context.Context) (string, error) {
	if ctx == nil {
		return "", fmt.Errorf("context is nil")
	}
	val, ok := ctx.Value(contextKeyRunId).(string)
	if !ok {
		return "", fmt.Errorf("no run id in context")
	}
	return val, nil
}

func WithTrigger(ctx context.Context, trigger string) context.Context {
	return context.WithValue(ctx, contextKeyTrigger, trigger)
}

// TriggerFromContext returns what started the batch, empty if unknown
func TriggerFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	val, _ := ctx.Value(contextKeyTrigger).(string)
	return val
}
