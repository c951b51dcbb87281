package events

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatus_Update(t *testing.T) {
	s := NewStatusEvent("run-1")

	s.Update(NewStartedEvent("run-1", "cli", []string{"a", "b", "c"}))
	assert.Equal(t, 3, s.Pending())

	written := NewDatasetCompletedEvent("run-1", "a", "infection_cases")
	written.Rows = 16
	s.Update(written)

	failed := NewDatasetCompletedEvent("run-1", "b", "infection_cases")
	failed.Err = errors.New("boom")
	s.Update(failed)

	assert.Equal(t, 1, s.Pending())
	assert.False(t, s.Done)

	s.Update(NewCompletedEvent("run-1", 1, 1, 0))

	assert.Equal(t, &Status{RunId: "run-1", Datasets: 3, Written: 1, Failed: 1, Rows: 16, Done: true}, s)
}
