// Package frame provides the in-memory labelled table passed between the
// extraction, cleansing, date normalisation and sink steps.
//
// A Frame holds an ordered, unique set of column names and a list of rows.
// Every row carries exactly the frame's columns: a missing value is stored as
// an explicit nil, never as an absent key. Cell values are one of
//
//   - string
//   - float64 (numbers)
//   - time.Time (dates)
//   - nil (null)
package frame

import (
	"errors"
	"fmt"
	"slices"
	"time"
)

var (
	ErrFrozen          = errors.New("frame is frozen")
	ErrColumnNotFound  = errors.New("column not found")
	ErrDuplicateColumn = errors.New("duplicate column")
)

type ColumnType int

const (
	String ColumnType = iota
	Number
	Date
)

func (t ColumnType) String() string {
	switch t {
	case Number:
		return "number"
	case Date:
		return "date"
	default:
		return "string"
	}
}

// Row maps column name to cell value
type Row map[string]any

type Frame struct {
	columns []string
	types   map[string]ColumnType
	rows    []Row
	frozen  bool
}

// New returns an empty frame with the given header
func New(columns ...string) (*Frame, error) {
	f := &Frame{types: make(map[string]ColumnType, len(columns))}
	for _, c := range columns {
		if err := f.AddColumn(c); err != nil {
			return nil, err
		}
	}
	return f, nil
}

func (f *Frame) Columns() []string {
	return slices.Clone(f.columns)
}

func (f *Frame) Len() int {
	return len(f.rows)
}

func (f *Frame) HasColumn(name string) bool {
	_, ok := f.types[name]
	return ok
}

func (f *Frame) ColumnType(name string) ColumnType {
	return f.types[name]
}

func (f *Frame) SetColumnType(name string, t ColumnType) error {
	if err := f.checkWritable(); err != nil {
		return err
	}
	if !f.HasColumn(name) {
		return fmt.Errorf("%w: %s", ErrColumnNotFound, name)
	}
	f.types[name] = t
	return nil
}

// AddColumn appends a string typed column, backfilling nil in existing rows
func (f *Frame) AddColumn(name string) error {
	if err := f.checkWritable(); err != nil {
		return err
	}
	if name == "" {
		return errors.New("column name must not be empty")
	}
	if f.HasColumn(name) {
		return fmt.Errorf("%w: %s", ErrDuplicateColumn, name)
	}
	f.columns = append(f.columns, name)
	f.types[name] = String
	for _, r := range f.rows {
		r[name] = nil
	}
	return nil
}

// AppendRow adds a row. Keys of values which are not yet columns are added as
// new columns (in the iteration order of keys) and header columns without a
// value are set to nil.
func (f *Frame) AppendRow(values Row, keys ...string) error {
	if err := f.checkWritable(); err != nil {
		return err
	}
	for _, k := range keys {
		if !f.HasColumn(k) {
			if err := f.AddColumn(k); err != nil {
				return err
			}
		}
	}
	for k := range values {
		if !f.HasColumn(k) {
			return fmt.Errorf("%w: %s (not in header)", ErrColumnNotFound, k)
		}
	}
	row := make(Row, len(f.columns))
	for _, c := range f.columns {
		row[c] = values[c]
	}
	f.rows = append(f.rows, row)
	return nil
}

// Row returns a copy of row i
func (f *Frame) Row(i int) Row {
	res := make(Row, len(f.columns))
	for k, v := range f.rows[i] {
		res[k] = v
	}
	return res
}

func (f *Frame) Value(i int, column string) any {
	return f.rows[i][column]
}

// Values returns the values of row i in header order
func (f *Frame) Values(i int) []any {
	res := make([]any, len(f.columns))
	for j, c := range f.columns {
		res[j] = f.rows[i][c]
	}
	return res
}

// Column returns a copy of all values of a column
func (f *Frame) Column(name string) ([]any, error) {
	if !f.HasColumn(name) {
		return nil, fmt.Errorf("%w: %s", ErrColumnNotFound, name)
	}
	res := make([]any, len(f.rows))
	for i, r := range f.rows {
		res[i] = r[name]
	}
	return res, nil
}

// Freeze marks the frame immutable, all later mutations fail with ErrFrozen
func (f *Frame) Freeze() {
	f.frozen = true
}

func (f *Frame) Frozen() bool {
	return f.frozen
}

// Clone returns a writable deep copy of the frame
func (f *Frame) Clone() *Frame {
	res := &Frame{
		columns: slices.Clone(f.columns),
		types:   make(map[string]ColumnType, len(f.types)),
		rows:    make([]Row, len(f.rows)),
	}
	for k, v := range f.types {
		res.types[k] = v
	}
	for i := range f.rows {
		res.rows[i] = f.Row(i)
	}
	return res
}

func (f *Frame) checkWritable() error {
	if f.frozen {
		return ErrFrozen
	}
	return nil
}

// IsNull reports whether v is a null cell
func IsNull(v any) bool {
	return v == nil
}

// IsDate reports whether v is a date cell
func IsDate(v any) bool {
	_, ok := v.(time.Time)
	return ok
}
