package observable

import (
	"context"

	"github.com/wirvsvirus/landingzone/events"
)

type Observable interface {
	AddObserver(Observer) error
}

// Observer is the interface that all observers must implement. Notify may be
// called from several goroutines at once.
type Observer interface {
	Notify(context.Context, events.Event) error
}

// ObserverFunc adapts a function to an Observer
type ObserverFunc func(context.Context, events.Event) error

func (f ObserverFunc) Notify(ctx context.Context, e events.Event) error {
	return f(ctx, e)
}
