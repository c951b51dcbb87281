package events

// Status accumulates the progress of a run from its events
type Status struct {
	Base
	RunId    string
	Datasets int
	Written  int
	Failed   int
	Rows     int
	Done     bool
}

func NewStatusEvent(runId string) *Status {
	return &Status{
		RunId: runId,
	}
}

func (s *Status) Update(event Event) {
	switch e := event.(type) {
	case *Started:
		s.Datasets = len(e.Datasets)
	case *DatasetCompleted:
		if e.Succeeded() {
			s.Written++
			s.Rows += e.Rows
		} else {
			s.Failed++
		}
	case *Completed:
		s.Done = true
	}
}

// Pending returns the number of datasets not finished yet
func (s *Status) Pending() int {
	return s.Datasets - s.Written - s.Failed
}
