package datasource

import "fmt"

// FetchError is returned when the raw payload could not be retrieved
type FetchError struct {
	Dataset string
	URL     string
	// StatusCode is the final http status, zero for network failures
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: %s returned status %d", e.Dataset, e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s from %s: %v", e.Dataset, e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// SchemaError is returned when a payload or frame does not have the expected shape
type SchemaError struct {
	Dataset string
	Stage   Stage
	Detail  string
	Err     error
}

func (e *SchemaError) Error() string {
	msg := fmt.Sprintf("%s %s: unexpected shape", e.Stage, e.Dataset)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *SchemaError) Unwrap() error {
	return e.Err
}

// DateFormatError is returned when a value of a date column does not match the format
type DateFormatError struct {
	Dataset string
	Column  string
	Value   string
	Format  string
	Err     error
}

func (e *DateFormatError) Error() string {
	return fmt.Sprintf("normalize dates %s: column %s: value %q does not match %s", e.Dataset, e.Column, e.Value, e.Format)
}

func (e *DateFormatError) Unwrap() error {
	return e.Err
}

func schemaErrorf(stage Stage, format string, args ...any) *SchemaError {
	return &SchemaError{Stage: stage, Detail: fmt.Sprintf(format, args...)}
}
