package athena

import "fmt"

// QueryError is returned for a query which ended FAILED or CANCELLED
type QueryError struct {
	ID     string
	State  string
	Reason string
}

func (e *QueryError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("query %s ended %s", e.ID, e.State)
	}
	return fmt.Sprintf("query %s ended %s: %s", e.ID, e.State, e.Reason)
}
