// Package events defines the progress events an orchestrator run publishes
// to its observers.
package events

type Event interface {
	IsEvent()
}

type Base struct {
}

func (b *Base) IsEvent() {}
