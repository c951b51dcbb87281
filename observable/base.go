package observable

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/wirvsvirus/landingzone/events"
)

// Base provides a base implementation of the Observable interface, it is
// embedded in the orchestrator
type Base struct {
	observerLock sync.RWMutex
	Observers    []Observer
}

func (p *Base) AddObserver(o Observer) error {
	if o == nil {
		return errors.New("observer must not be nil")
	}
	slog.Debug("AddObserver")
	p.observerLock.Lock()
	p.Observers = append(p.Observers, o)
	p.observerLock.Unlock()

	return nil
}

func (p *Base) NotifyObservers(ctx context.Context, e events.Event) error {
	p.observerLock.RLock()
	defer p.observerLock.RUnlock()
	var notifyErrors []error
	for _, observer := range p.Observers {
		err := observer.Notify(ctx, e)
		if err != nil {
			notifyErrors = append(notifyErrors, err)
		}
	}

	return errors.Join(notifyErrors...)
}
