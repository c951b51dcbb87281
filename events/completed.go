package events

import "time"

type Completed struct {
	Base
	RunId     string
	Succeeded int
	Failed    int
	Duration  time.Duration
}

func NewCompletedEvent(runId string, succeeded, failed int, duration time.Duration) *Completed {
	return &Completed{
		RunId:     runId,
		Succeeded: succeeded,
		Failed:    failed,
		Duration:  duration,
	}
}
