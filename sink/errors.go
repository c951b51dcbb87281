package sink

import "fmt"

// WriteError is returned when a frame could not be stored
type WriteError struct {
	Bucket string
	Key    string
	Err    error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write %s/%s: %v", e.Bucket, e.Key, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}
