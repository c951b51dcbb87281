package events

import "time"

// DatasetCompleted is published when one dataset pipeline finished, Err is
// nil for a dataset which was written
type DatasetCompleted struct {
	Base
	RunId     string
	Dataset   string
	Kind      string
	Rows      int
	Location  string
	ErrorKind string
	Err       error
	Duration  time.Duration
}

func NewDatasetCompletedEvent(runId, dataset, kind string) *DatasetCompleted {
	return &DatasetCompleted{
		RunId:   runId,
		Dataset: dataset,
		Kind:    kind,
	}
}

func (d *DatasetCompleted) Succeeded() bool {
	return d.Err == nil
}
