package events

// Started is published once a batch begins
type Started struct {
	Base
	RunId    string
	Trigger  string
	Datasets []string
}

func NewStartedEvent(runId, trigger string, datasets []string) *Started {
	return &Started{
		RunId:    runId,
		Trigger:  trigger,
		Datasets: datasets,
	}
}
