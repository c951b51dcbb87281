package frame

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFrame(t *testing.T) *Frame {
	t.Helper()
	f, err := New("a", "b", "c")
	require.NoError(t, err)
	require.NoError(t, f.AppendRow(Row{"a": "1", "b": "x", "c": "2020"}))
	require.NoError(t, f.AppendRow(Row{"a": "2", "b": "y"}))
	return f
}

func TestNew_DuplicateColumn(t *testing.T) {
	_, err := New("a", "b", "a")
	assert.ErrorIs(t, err, ErrDuplicateColumn)
}

func TestAppendRow(t *testing.T) {
	f := testFrame(t)

	assert.Equal(t, 2, f.Len())
	assert.Equal(t, Row{"a": "2", "b": "y", "c": nil}, f.Row(1))
	assert.Equal(t, []any{"1", "x", "2020"}, f.Values(0))

	err := f.AppendRow(Row{"unknown": 1})
	assert.ErrorIs(t, err, ErrColumnNotFound)
}

func TestAppendRow_NewKeysBackfill(t *testing.T) {
	f, err := New()
	require.NoError(t, err)

	require.NoError(t, f.AppendRow(Row{"x": 1.0}, "x"))
	require.NoError(t, f.AppendRow(Row{"y": "b"}, "y"))

	assert.Equal(t, []string{"x", "y"}, f.Columns())
	assert.Equal(t, Row{"x": 1.0, "y": nil}, f.Row(0))
	assert.Equal(t, Row{"x": nil, "y": "b"}, f.Row(1))
}

func TestDropColumns(t *testing.T) {
	f := testFrame(t)

	require.NoError(t, f.DropColumns("b"))
	assert.Equal(t, []string{"a", "c"}, f.Columns())
	assert.Equal(t, Row{"a": "1", "c": "2020"}, f.Row(0))

	assert.ErrorIs(t, f.DropColumns("b"), ErrColumnNotFound)
}

func TestRenameColumns(t *testing.T) {
	tests := []struct {
		name        string
		mapping     map[string]string
		wantColumns []string
		wantRow     Row
		wantErr     error
	}{
		{
			name:        "simple",
			mapping:     map[string]string{"a": "alpha"},
			wantColumns: []string{"alpha", "b", "c"},
			wantRow:     Row{"alpha": "1", "b": "x", "c": "2020"},
		},
		{
			name:        "simultaneous swap",
			mapping:     map[string]string{"a": "b", "b": "a"},
			wantColumns: []string{"b", "a", "c"},
			wantRow:     Row{"b": "1", "a": "x", "c": "2020"},
		},
		{
			name:    "missing source",
			mapping: map[string]string{"z": "zz"},
			wantErr: ErrColumnNotFound,
		},
		{
			name:    "collision",
			mapping: map[string]string{"a": "b"},
			wantErr: ErrDuplicateColumn,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := testFrame(t)
			err := f.RenameColumns(tt.mapping)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, []string{"a", "b", "c"}, f.Columns())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantColumns, f.Columns())
			assert.Equal(t, tt.wantRow, f.Row(0))
		})
	}
}

func TestInferNumberColumns(t *testing.T) {
	f := testFrame(t)

	require.NoError(t, f.InferNumberColumns("c"))

	assert.Equal(t, Number, f.ColumnType("a"))
	assert.Equal(t, String, f.ColumnType("b"))
	assert.Equal(t, String, f.ColumnType("c"))
	assert.Equal(t, 2.0, f.Value(1, "a"))
	assert.Equal(t, "2020", f.Value(0, "c"))
}

func TestInferNumberColumns_NonFinite(t *testing.T) {
	tests := []struct {
		name   string
		values []string
		want   ColumnType
	}{
		{name: "finite", values: []string{"1.5", "-2", "1e3"}, want: Number},
		{name: "nan", values: []string{"1", "NaN"}, want: String},
		{name: "inf", values: []string{"inf", "2"}, want: String},
		{name: "infinity", values: []string{"-Infinity"}, want: String},
		{name: "out of range", values: []string{"1e400"}, want: String},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := New("v")
			require.NoError(t, err)
			for _, v := range tt.values {
				require.NoError(t, f.AppendRow(Row{"v": v}))
			}

			require.NoError(t, f.InferNumberColumns())
			assert.Equal(t, tt.want, f.ColumnType("v"))
			if tt.want == String {
				assert.Equal(t, tt.values[0], f.Value(0, "v"))
			}
		})
	}
}

func TestFreeze(t *testing.T) {
	f := testFrame(t)
	f.Freeze()

	assert.ErrorIs(t, f.MapColumn("a", func(any) (any, error) { return "9", nil }), ErrFrozen)
	assert.ErrorIs(t, f.DropColumns("a"), ErrFrozen)
	assert.ErrorIs(t, f.AppendRow(Row{}), ErrFrozen)

	c := f.Clone()
	assert.False(t, c.Frozen())
	require.NoError(t, c.MapColumn("c", func(any) (any, error) { return time.Date(2020, 12, 31, 0, 0, 0, 0, time.UTC), nil }))
	assert.True(t, IsDate(c.Value(0, "c")))
	assert.Equal(t, "2020", f.Value(0, "c"))
}
