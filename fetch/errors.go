package fetch

import "fmt"

// StatusError is returned for a response outside the 2xx range
type StatusError struct {
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("GET %s: http %d: %s", e.URL, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("GET %s: http %d", e.URL, e.StatusCode)
}
