package datasource

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ncruces/go-strftime"
	"github.com/wirvsvirus/landingzone/frame"
)

// layoutFor converts a strftime format into a time layout, failing for
// specifiers Go layouts cannot express
func layoutFor(format string) (string, error) {
	layout, err := strftime.Layout(format)
	if err != nil {
		return "", fmt.Errorf("unsupported date format %q: %w", format, err)
	}
	return layout, nil
}

// normalizeDates parses every declared date column of f in place. Nulls stay
// null, values which are already dates are kept. A frame without rows has no
// header to check and is returned as is.
func normalizeDates(f *frame.Frame, d Descriptor) error {
	if f.Len() == 0 {
		return nil
	}
	for _, column := range d.DateColumns {
		if !f.HasColumn(column) {
			return schemaErrorf(StageNormalizeDates, "date column %s not found", column)
		}
		format := d.FormatFor(column)
		if _, err := layoutFor(format); err != nil {
			return err
		}

		err := f.MapColumn(column, func(v any) (any, error) {
			if frame.IsNull(v) || frame.IsDate(v) {
				return v, nil
			}
			var raw string
			switch value := v.(type) {
			case string:
				raw = value
			case float64:
				raw = strconv.FormatFloat(value, 'f', -1, 64)
			default:
				raw = fmt.Sprint(value)
			}
			// parsing accepts values without leading zeros, like strptime
			t, err := strftime.Parse(format, strings.TrimSpace(raw))
			if err != nil {
				return nil, &DateFormatError{Column: column, Value: raw, Format: format, Err: err}
			}
			return t, nil
		})
		if err != nil {
			return err
		}
		if err := f.SetColumnType(column, frame.Date); err != nil {
			return err
		}
	}
	return nil
}
