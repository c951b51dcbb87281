package datasource

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/wirvsvirus/landingzone/frame"
)

// NewDelimitedTextSource returns a DataSource for comma separated text with a header row
func NewDelimitedTextSource(d Descriptor, fetcher Fetcher, opts ...Option) (*DataSource, error) {
	return New(d, fetcher, Capabilities{
		FetchRaw: FetchText,
		Flatten:  FlattenDelimited,
	}, opts...)
}

// FetchText retrieves url and decodes the body as UTF-8 text
func FetchText(ctx context.Context, f Fetcher, url string) (RawPayload, error) {
	body, err := f.Get(ctx, url)
	if err != nil {
		return RawPayload{}, err
	}
	body = bytes.TrimPrefix(body, utf8BOM)
	if !utf8.Valid(body) {
		return RawPayload{}, schemaErrorf(StageFetchRaw, "response of %s is not valid UTF-8", url)
	}
	return RawPayload{Text: string(body)}, nil
}

// FlattenDelimited parses the text with the first line as header. Empty fields
// are null. Columns whose values all parse as numbers become Number columns,
// the date columns of d are left to date normalisation.
func FlattenDelimited(raw RawPayload, d Descriptor) (*frame.Frame, error) {
	if raw.IsJSON() {
		return nil, schemaErrorf(StageFlatten, "expected a text payload")
	}
	r := csv.NewReader(strings.NewReader(raw.Text))
	r.ReuseRecord = true

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return frame.New()
	}
	if err != nil {
		return nil, &SchemaError{Stage: StageFlatten, Detail: "header", Err: err}
	}
	columns := make([]string, len(header))
	copy(columns, header)

	f, err := frame.New(columns...)
	if err != nil {
		return nil, &SchemaError{Stage: StageFlatten, Detail: "header", Err: err}
	}

	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// covers ragged rows, the reader enforces the header's field count
			return nil, &SchemaError{Stage: StageFlatten, Err: err}
		}
		row := make(frame.Row, len(columns))
		for i, c := range columns {
			if record[i] == "" {
				row[c] = nil
				continue
			}
			row[c] = record[i]
		}
		if err := f.AppendRow(row); err != nil {
			return nil, &SchemaError{Stage: StageFlatten, Detail: fmt.Sprintf("line %d", f.Len()+2), Err: err}
		}
	}

	if err := f.InferNumberColumns(d.DateColumns...); err != nil {
		return nil, err
	}
	return f, nil
}
