package sink

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/wirvsvirus/landingzone/frame"
)

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02T15:04:05"
)

// Serialize writes f as comma separated text, header first
func Serialize(w io.Writer, f *frame.Frame) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(f.Columns()); err != nil {
		return err
	}
	record := make([]string, len(f.Columns()))
	for i := 0; i < f.Len(); i++ {
		for j, v := range f.Values(i) {
			s, err := formatValue(v)
			if err != nil {
				return fmt.Errorf("row %d column %s: %w", i, f.Columns()[j], err)
			}
			record[j] = s
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func serializeBytes(f *frame.Frame) ([]byte, error) {
	var buf bytes.Buffer
	if err := Serialize(&buf, f); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func formatValue(v any) (string, error) {
	switch value := v.(type) {
	case nil:
		return "", nil
	case string:
		return value, nil
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64), nil
	case time.Time:
		if value.Hour() == 0 && value.Minute() == 0 && value.Second() == 0 && value.Nanosecond() == 0 {
			return value.Format(dateLayout), nil
		}
		return value.Format(dateTimeLayout), nil
	default:
		return "", fmt.Errorf("unsupported cell type %T", v)
	}
}
