package frame

import (
	"fmt"
	"maps"
	"math"
	"slices"
	"strconv"
	"strings"
)

// DropColumns removes the named columns. All of them must exist.
func (f *Frame) DropColumns(names ...string) error {
	if err := f.checkWritable(); err != nil {
		return err
	}
	if missing := f.missing(names); len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrColumnNotFound, strings.Join(missing, ", "))
	}
	drop := make(map[string]struct{}, len(names))
	for _, n := range names {
		drop[n] = struct{}{}
		delete(f.types, n)
	}
	f.columns = slices.DeleteFunc(f.columns, func(c string) bool {
		_, ok := drop[c]
		return ok
	})
	for _, r := range f.rows {
		for n := range drop {
			delete(r, n)
		}
	}
	return nil
}

// RenameColumns applies all renames simultaneously, so a -> b together with
// b -> c is valid. Columns keep their position. Every source must exist and
// the resulting header must be unique.
func (f *Frame) RenameColumns(mapping map[string]string) error {
	if err := f.checkWritable(); err != nil {
		return err
	}
	sources := slices.Sorted(maps.Keys(mapping))
	if missing := f.missing(sources); len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrColumnNotFound, strings.Join(missing, ", "))
	}

	newColumns := make([]string, len(f.columns))
	seen := make(map[string]struct{}, len(f.columns))
	for i, c := range f.columns {
		n := c
		if to, ok := mapping[c]; ok {
			n = to
		}
		if _, dup := seen[n]; dup {
			return fmt.Errorf("%w: rename results in %s twice", ErrDuplicateColumn, n)
		}
		seen[n] = struct{}{}
		newColumns[i] = n
	}

	newTypes := make(map[string]ColumnType, len(f.types))
	for i, c := range f.columns {
		newTypes[newColumns[i]] = f.types[c]
	}
	for i, r := range f.rows {
		nr := make(Row, len(r))
		for j, c := range f.columns {
			nr[newColumns[j]] = r[c]
		}
		f.rows[i] = nr
	}
	f.columns = newColumns
	f.types = newTypes
	return nil
}

// MapColumn replaces every value of a column with fn(value). The first error
// aborts and leaves the frame unchanged.
func (f *Frame) MapColumn(name string, fn func(any) (any, error)) error {
	if err := f.checkWritable(); err != nil {
		return err
	}
	if !f.HasColumn(name) {
		return fmt.Errorf("%w: %s", ErrColumnNotFound, name)
	}
	mapped := make([]any, len(f.rows))
	for i, r := range f.rows {
		v, err := fn(r[name])
		if err != nil {
			return err
		}
		mapped[i] = v
	}
	for i, r := range f.rows {
		r[name] = mapped[i]
	}
	return nil
}

// InferNumberColumns converts every column whose non-null values all parse as
// numbers to Number. Columns listed in skip, and columns with only nulls, are
// left untouched.
func (f *Frame) InferNumberColumns(skip ...string) error {
	if err := f.checkWritable(); err != nil {
		return err
	}
	for _, c := range f.columns {
		if slices.Contains(skip, c) || f.types[c] != String {
			continue
		}
		parsed, ok := f.parseNumbers(c)
		if !ok {
			continue
		}
		for i, r := range f.rows {
			r[c] = parsed[i]
		}
		f.types[c] = Number
	}
	return nil
}

func (f *Frame) parseNumbers(column string) ([]any, bool) {
	res := make([]any, len(f.rows))
	nonNull := 0
	for i, r := range f.rows {
		switch v := r[column].(type) {
		case nil:
			continue
		case float64:
			res[i] = v
		case string:
			n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			// NaN and Inf spellings are text, not numbers
			if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
				return nil, false
			}
			res[i] = n
		default:
			return nil, false
		}
		nonNull++
	}
	return res, nonNull > 0
}

func (f *Frame) missing(names []string) []string {
	var res []string
	for _, n := range names {
		if !f.HasColumn(n) {
			res = append(res, n)
		}
	}
	return res
}
