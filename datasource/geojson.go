package datasource

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/wirvsvirus/landingzone/frame"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

const (
	LatitudeColumn  = "latitude"
	LongitudeColumn = "longitude"
)

var utf8BOM = []byte("\xef\xbb\xbf")

type featureCollection struct {
	Features *[]json.RawMessage `json:"features"`
}

type feature struct {
	Properties *orderedmap.OrderedMap[string, json.RawMessage] `json:"properties"`
	Geometry   *struct {
		Coordinates json.RawMessage `json:"coordinates"`
	} `json:"geometry"`
}

// NewJSONFeatureSource returns a DataSource for a GeoJSON feature collection.
// Each feature becomes a row built from its properties, a point geometry adds
// latitude and longitude columns.
func NewJSONFeatureSource(d Descriptor, fetcher Fetcher, opts ...Option) (*DataSource, error) {
	return New(d, fetcher, Capabilities{
		FetchRaw: FetchJSON,
		Flatten:  FlattenFeatures,
	}, opts...)
}

// FetchJSON retrieves url and checks the body is a JSON document
func FetchJSON(ctx context.Context, f Fetcher, url string) (RawPayload, error) {
	body, err := f.Get(ctx, url)
	if err != nil {
		return RawPayload{}, err
	}
	body = bytes.TrimPrefix(body, utf8BOM)
	if !json.Valid(body) {
		return RawPayload{}, schemaErrorf(StageFetchRaw, "response of %s is not a valid JSON document", url)
	}
	return RawPayload{JSON: json.RawMessage(body)}, nil
}

// FlattenFeatures turns the features of a feature collection into rows. The
// header is the union of all property keys in first-seen order.
func FlattenFeatures(raw RawPayload, _ Descriptor) (*frame.Frame, error) {
	if !raw.IsJSON() {
		return nil, schemaErrorf(StageFlatten, "expected a JSON payload")
	}
	var fc featureCollection
	if err := json.Unmarshal(raw.JSON, &fc); err != nil {
		return nil, &SchemaError{Stage: StageFlatten, Detail: "document is not a feature collection", Err: err}
	}
	if fc.Features == nil {
		return nil, schemaErrorf(StageFlatten, "document has no features list")
	}

	f, err := frame.New()
	if err != nil {
		return nil, err
	}
	for i, rawFeature := range *fc.Features {
		var ft feature
		if err := json.Unmarshal(rawFeature, &ft); err != nil {
			return nil, &SchemaError{Stage: StageFlatten, Detail: fmt.Sprintf("feature %d", i), Err: err}
		}
		if ft.Properties == nil {
			return nil, schemaErrorf(StageFlatten, "feature %d has no properties", i)
		}

		keys := make([]string, 0, ft.Properties.Len()+2)
		row := make(frame.Row, ft.Properties.Len()+2)
		for pair := ft.Properties.Oldest(); pair != nil; pair = pair.Next() {
			v, err := propertyValue(pair.Value)
			if err != nil {
				return nil, &SchemaError{Stage: StageFlatten, Detail: fmt.Sprintf("feature %d property %s", i, pair.Key), Err: err}
			}
			keys = append(keys, pair.Key)
			row[pair.Key] = v
		}
		if ft.Geometry != nil {
			if lat, lon, ok := coordinatePair(ft.Geometry.Coordinates); ok {
				for _, k := range []string{LatitudeColumn, LongitudeColumn} {
					if _, exists := row[k]; !exists {
						keys = append(keys, k)
					}
				}
				row[LatitudeColumn] = lat
				row[LongitudeColumn] = lon
			}
		}
		if err := f.AppendRow(row, keys...); err != nil {
			return nil, &SchemaError{Stage: StageFlatten, Detail: fmt.Sprintf("feature %d", i), Err: err}
		}
	}

	if err := typeNumberColumns(f); err != nil {
		return nil, err
	}
	return f, nil
}

// propertyValue converts a JSON property to a frame cell. Nested values are
// kept as their compact JSON text.
func propertyValue(raw json.RawMessage) (any, error) {
	var v any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	switch value := v.(type) {
	case nil:
		return nil, nil
	case string:
		return value, nil
	case bool:
		return strconv.FormatBool(value), nil
	case json.Number:
		return value.Float64()
	default:
		var buf bytes.Buffer
		if err := json.Compact(&buf, raw); err != nil {
			return nil, err
		}
		return buf.String(), nil
	}
}

// coordinatePair returns the first two components of a position. Anything
// other than an array starting with two numbers is not a pair.
func coordinatePair(raw json.RawMessage) (float64, float64, bool) {
	if len(raw) == 0 {
		return 0, 0, false
	}
	var position []json.RawMessage
	if err := json.Unmarshal(raw, &position); err != nil || len(position) < 2 {
		return 0, 0, false
	}
	var first, second *float64
	if json.Unmarshal(position[0], &first) != nil || json.Unmarshal(position[1], &second) != nil {
		return 0, 0, false
	}
	if first == nil || second == nil {
		return 0, 0, false
	}
	return *first, *second, true
}

// typeNumberColumns marks columns holding only numbers (and nulls) as Number
func typeNumberColumns(f *frame.Frame) error {
	for _, c := range f.Columns() {
		values, err := f.Column(c)
		if err != nil {
			return err
		}
		numbers := 0
		allNumbers := true
		for _, v := range values {
			switch v.(type) {
			case nil:
			case float64:
				numbers++
			default:
				allNumbers = false
			}
		}
		if allNumbers && numbers > 0 {
			if err := f.SetColumnType(c, frame.Number); err != nil {
				return err
			}
		}
	}
	return nil
}
