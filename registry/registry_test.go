package registry

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wirvsvirus/landingzone/datasource"
	"github.com/wirvsvirus/landingzone/frame"
)

type fakeFetcher map[string]string

func (f fakeFetcher) Get(_ context.Context, url string) ([]byte, error) {
	body, ok := f[url]
	if !ok {
		return nil, fmt.Errorf("unexpected url %s", url)
	}
	return []byte(body), nil
}

func TestList(t *testing.T) {
	sources, err := List(fakeFetcher{})
	require.NoError(t, err)

	var names []string
	for _, s := range sources {
		names = append(names, s.Name())
	}
	assert.Equal(t, []string{
		"hamburg_clinics",
		"rki_age_group",
		"rki_county",
		"rki_state",
		"rki_age_group_level",
		"rki_county_level",
		"rki_state_level",
	}, names)
	assert.Equal(t, names, Names())
	assert.Equal(t, datasource.HealthCareCapacity, sources[0].Kind())
	for _, s := range sources[1:] {
		assert.Equal(t, datasource.InfectionCases, s.Kind())
	}
}

func TestList_Options(t *testing.T) {
	tests := []struct {
		name      string
		opts      []Option
		wantNames []string
		wantErr   string
	}{
		{
			name:      "only keeps registry order",
			opts:      []Option{WithOnly("rki_state", "Hamburg_Clinics")},
			wantNames: []string{"hamburg_clinics", "rki_state"},
		},
		{
			name:    "unknown dataset",
			opts:    []Option{WithOnly("rki_weather")},
			wantErr: `unknown dataset "rki_weather"`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sources, err := List(fakeFetcher{}, tt.opts...)
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			var names []string
			for _, s := range sources {
				names = append(names, s.Name())
			}
			assert.Equal(t, tt.wantNames, names)
		})
	}
}

func TestList_WithDateFormat(t *testing.T) {
	sources, err := List(fakeFetcher{}, WithOnly("hamburg_clinics", "rki_state"), WithDateFormat("%Y-%m-%d"))
	require.NoError(t, err)

	assert.Equal(t, "%Y-%m-%d", sources[0].Descriptor().FormatFor("stand"))
	// per column formats win
	assert.Equal(t, "%Y/%m/%d %H:%M:%S", sources[1].Descriptor().FormatFor("Aktualisierung"))
}

func TestDescriptors_AreCopies(t *testing.T) {
	d := Descriptors()
	d[1].DateFormats["Meldedatum"] = "%Y"

	e, ok := Lookup("RKI_AGE_GROUP")
	require.True(t, ok)
	assert.Equal(t, "%Y/%m/%d %H:%M:%S", e.Descriptor.DateFormats["Meldedatum"])
	assert.Equal(t, "https://opendata.arcgis.com/datasets/dd4580c810204019a7b8eb3e0b329dd6_0.geojson", e.Descriptor.URL())
}

func TestClinics_EmptyFeatureCollection(t *testing.T) {
	e, ok := Lookup("hamburg_clinics")
	require.True(t, ok)
	require.Equal(t, []string{"stand"}, e.Descriptor.DateColumns)

	sources, err := List(fakeFetcher{e.Descriptor.URL(): `{"type":"FeatureCollection","features":[]}`}, WithOnly("hamburg_clinics"))
	require.NoError(t, err)

	f, err := sources[0].GetData(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, f.Len())
}

// countyCSV renders a county level file with one row, leaving out the skipped columns
func countyCSV(county string, skip ...string) string {
	var header, values []string
	for _, c := range countyAdminColumns {
		if slices.Contains(skip, c) {
			continue
		}
		header = append(header, c)
		values = append(values, "1")
	}
	header = append(header, "county", "BL", "GEN", "cases", "EWZ", "KFL")
	values = append(values, county, "Hamburg", "Hamburg", "2231", "1841179", "755.09")
	return strings.Join(header, ",") + "\n" + strings.Join(values, ",") + "\n"
}

func TestCountyLevel_Cleansing(t *testing.T) {
	e, ok := Lookup("rki_county_level")
	require.True(t, ok)

	sources, err := List(fakeFetcher{e.Descriptor.URL(): countyCSV("SK Hamburg")}, WithOnly("rki_county_level"))
	require.NoError(t, err)

	f, err := sources[0].GetData(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"kind_of_county", "federal_state", "county", "cumulative_cases", "population", "county_km2"}, f.Columns())
	assert.Equal(t, frame.Row{
		"kind_of_county":   "SK",
		"federal_state":    "Hamburg",
		"county":           "Hamburg",
		"cumulative_cases": 2231.0,
		"population":       1841179.0,
		"county_km2":       755.09,
	}, f.Row(0))
}

func TestCountyCleansing_Idempotent(t *testing.T) {
	raw, err := datasource.FlattenDelimited(datasource.RawPayload{Text: countyCSV("LK Pinneberg")}, datasource.Descriptor{})
	require.NoError(t, err)

	c := CountyCleansing()
	require.NoError(t, c.Validate())
	once, err := c.Apply(raw)
	require.NoError(t, err)
	want := once.Clone()

	twice, err := c.Apply(once)
	require.NoError(t, err)
	assert.Equal(t, want.Columns(), twice.Columns())
	assert.Equal(t, want.Row(0), twice.Row(0))
}

func TestCountyCleansing_SchemaErrors(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{name: "unknown county kind", text: countyCSV("StadtRegion Aachen")},
		{name: "admin column removed upstream", text: countyCSV("SK Hamburg", "DEBKG_ID")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, _ := Lookup("rki_county_level")
			sources, err := List(fakeFetcher{e.Descriptor.URL(): tt.text}, WithOnly("rki_county_level"))
			require.NoError(t, err)

			_, err = sources[0].GetData(context.Background())
			var schemaErr *datasource.SchemaError
			require.ErrorAs(t, err, &schemaErr)
			assert.Equal(t, "rki_county_level", schemaErr.Dataset)
			assert.Equal(t, datasource.StageCleanse, schemaErr.Stage)
		})
	}
}
