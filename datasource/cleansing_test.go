package datasource

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wirvsvirus/landingzone/frame"
)

func prefix2(s string) string {
	if len(s) < 2 {
		return s
	}
	return s[:2]
}

func testCleansing() *Cleansing {
	return &Cleansing{
		Drop: []string{"OBJECTID"},
		Derive: []Derivation{{
			Source: "county", Target: "kind_of_county",
			Transform: prefix2, Allowed: []string{"SK", "LK"},
		}},
		Rename: map[string]string{"GEN": "county", "EWZ": "population"},
	}
}

func rawCountyFrame(t *testing.T, county string) *frame.Frame {
	t.Helper()
	f, err := frame.New("OBJECTID", "GEN", "county", "EWZ")
	require.NoError(t, err)
	require.NoError(t, f.AppendRow(frame.Row{"OBJECTID": 1.0, "GEN": "Hamburg", "county": county, "EWZ": 1841179.0}))
	return f
}

func TestCleansing_Apply(t *testing.T) {
	f, err := testCleansing().Apply(rawCountyFrame(t, "SK Hamburg"))
	require.NoError(t, err)

	assert.Equal(t, []string{"county", "kind_of_county", "population"}, f.Columns())
	assert.Equal(t, frame.Row{"county": "Hamburg", "kind_of_county": "SK", "population": 1841179.0}, f.Row(0))
}

func TestCleansing_Idempotent(t *testing.T) {
	c := testCleansing()
	once, err := c.Apply(rawCountyFrame(t, "LK Pinneberg"))
	require.NoError(t, err)
	want := once.Clone()

	twice, err := c.Apply(once)
	require.NoError(t, err)

	assert.Equal(t, want.Columns(), twice.Columns())
	assert.Equal(t, want.Row(0), twice.Row(0))
}

func TestCleansing_ShapeErrors(t *testing.T) {
	tests := []struct {
		name   string
		build  func(t *testing.T) *frame.Frame
		detail string
	}{
		{
			name: "declared column missing",
			build: func(t *testing.T) *frame.Frame {
				f := rawCountyFrame(t, "SK Hamburg")
				require.NoError(t, f.DropColumns("EWZ"))
				return f
			},
			detail: "missing columns: EWZ",
		},
		{
			name: "raw and cleansed columns mixed",
			build: func(t *testing.T) *frame.Frame {
				f := rawCountyFrame(t, "SK Hamburg")
				require.NoError(t, f.AddColumn("population"))
				return f
			},
			detail: "mixed",
		},
		{
			name: "unknown county prefix",
			build: func(t *testing.T) *frame.Frame {
				return rawCountyFrame(t, "StadtRegion Aachen")
			},
			detail: `"St" derived from "StadtRegion Aachen"`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := testCleansing().Apply(tt.build(t))
			var schemaErr *SchemaError
			require.ErrorAs(t, err, &schemaErr)
			assert.Equal(t, StageCleanse, schemaErr.Stage)
			assert.Contains(t, schemaErr.Error(), tt.detail)
		})
	}
}

func TestCleansing_Validate(t *testing.T) {
	assert.NoError(t, testCleansing().Validate())

	swap := &Cleansing{Rename: map[string]string{"a": "b", "b": "a"}}
	assert.ErrorContains(t, swap.Validate(), "cannot be told apart")

	incomplete := &Cleansing{Derive: []Derivation{{Source: "a", Target: "b"}}}
	assert.ErrorContains(t, incomplete.Validate(), "incomplete")
}
