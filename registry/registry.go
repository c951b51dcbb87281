// Package registry holds the fixed list of datasets extracted into the landing zone.
package registry

import (
	"fmt"
	"slices"
	"strings"

	"github.com/wirvsvirus/landingzone/datasource"
)

const arcgisOpenData = "https://opendata.arcgis.com"

// Format of a dataset payload
type Format string

const (
	FormatGeoJSON Format = "geojson"
	FormatCSV     Format = "csv"
)

// Entry pairs a descriptor with the extraction strategy of the dataset
type Entry struct {
	Descriptor datasource.Descriptor
	Format     Format
	Cleansing  *datasource.Cleansing
}

var entries = []Entry{
	{
		Descriptor: datasource.Descriptor{
			Name:        "hamburg_clinics",
			Kind:        datasource.HealthCareCapacity,
			BaseURL:     arcgisOpenData,
			Endpoint:    "datasets/78dc2cd921114c839a21aa8ed48760bc_0.geojson",
			Info:        "Capacity of clinics Hamburg 2016",
			DateColumns: []string{"stand"},
		},
		Format: FormatGeoJSON,
	},
	{
		Descriptor: datasource.Descriptor{
			Name:        "rki_age_group",
			Kind:        datasource.InfectionCases,
			BaseURL:     arcgisOpenData,
			Endpoint:    "datasets/dd4580c810204019a7b8eb3e0b329dd6_0.geojson",
			Info:        "Data from the Robert-Koch-Institut on the new cases per day. Sorted by gender, age group and county in Germany.",
			DateColumns: []string{"Datenstand", "Meldedatum"},
			DateFormats: rkiAgeGroupDateFormats,
		},
		Format: FormatGeoJSON,
	},
	{
		Descriptor: datasource.Descriptor{
			Name:     "rki_county",
			Kind:     datasource.InfectionCases,
			BaseURL:  arcgisOpenData,
			Endpoint: "datasets/917fc37a709542548cc3be077a786c17_0.geojson",
			Info:     "Data from the Robert-Koch-Institut on the current cases per county.",
		},
		Format: FormatGeoJSON,
	},
	{
		Descriptor: datasource.Descriptor{
			Name:        "rki_state",
			Kind:        datasource.InfectionCases,
			BaseURL:     arcgisOpenData,
			Endpoint:    "datasets/ef4b445a53c1406892257fe63129a8ea_0.geojson",
			Info:        "Accumulated cases in federal states in Germany as per Robert-Koch-Institut.",
			DateColumns: []string{"Aktualisierung"},
			DateFormats: rkiStateDateFormats,
		},
		Format: FormatGeoJSON,
	},
	{
		Descriptor: datasource.Descriptor{
			Name:        "rki_age_group_level",
			Kind:        datasource.InfectionCases,
			BaseURL:     arcgisOpenData,
			Endpoint:    "datasets/dd4580c810204019a7b8eb3e0b329dd6_0.csv",
			Info:        "Data from the Robert-Koch-Institut on the new cases per day. Sorted by gender, age group and county in Germany.",
			DateColumns: []string{"Datenstand", "Meldedatum"},
			DateFormats: rkiAgeGroupDateFormats,
		},
		Format: FormatCSV,
	},
	{
		Descriptor: datasource.Descriptor{
			Name:     "rki_county_level",
			Kind:     datasource.InfectionCases,
			BaseURL:  arcgisOpenData,
			Endpoint: "datasets/917fc37a709542548cc3be077a786c17_0.csv",
			Info:     "Data from the Robert-Koch-Institut on the current cases per county.",
		},
		Format:    FormatCSV,
		Cleansing: CountyCleansing(),
	},
	{
		Descriptor: datasource.Descriptor{
			Name:        "rki_state_level",
			Kind:        datasource.InfectionCases,
			BaseURL:     arcgisOpenData,
			Endpoint:    "datasets/ef4b445a53c1406892257fe63129a8ea_0.csv",
			Info:        "Accumulated cases in federal states in Germany as per Robert-Koch-Institut.",
			DateColumns: []string{"Aktualisierung"},
			DateFormats: rkiStateDateFormats,
		},
		Format: FormatCSV,
	},
}

var (
	rkiAgeGroupDateFormats = map[string]string{
		"Datenstand": "%d.%m.%Y, %H:%M Uhr",
		"Meldedatum": "%Y/%m/%d %H:%M:%S",
	}
	rkiStateDateFormats = map[string]string{
		"Aktualisierung": "%Y/%m/%d %H:%M:%S",
	}
)

type config struct {
	only       []string
	dateFormat string
}

type Option func(*config)

// WithOnly restricts the list to the named datasets, in registry order
func WithOnly(names ...string) Option {
	return func(c *config) {
		c.only = append(c.only, names...)
	}
}

// WithDateFormat replaces the default date format of every dataset. Per
// column formats still apply.
func WithDateFormat(format string) Option {
	return func(c *config) {
		c.dateFormat = format
	}
}

// Descriptors returns the descriptors of all registered datasets in registry order
func Descriptors() []datasource.Descriptor {
	res := make([]datasource.Descriptor, len(entries))
	for i, e := range entries {
		res[i] = e.Descriptor.Clone()
	}
	return res
}

// Names returns the names of all registered datasets in registry order
func Names() []string {
	res := make([]string, len(entries))
	for i, e := range entries {
		res[i] = e.Descriptor.Name
	}
	return res
}

// Lookup returns the entry of the named dataset
func Lookup(name string) (Entry, bool) {
	for _, e := range entries {
		if e.Descriptor.Name == strings.ToLower(name) {
			e.Descriptor = e.Descriptor.Clone()
			return e, true
		}
	}
	return Entry{}, false
}

// List builds a DataSource for each registered dataset, in registry order
func List(fetcher datasource.Fetcher, opts ...Option) ([]*datasource.DataSource, error) {
	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}
	for _, name := range cfg.only {
		if _, ok := Lookup(name); !ok {
			return nil, fmt.Errorf("unknown dataset %q, available: %s", name, strings.Join(Names(), ", "))
		}
	}

	var res []*datasource.DataSource
	for _, e := range entries {
		if len(cfg.only) > 0 && !slices.ContainsFunc(cfg.only, func(n string) bool {
			return strings.ToLower(n) == e.Descriptor.Name
		}) {
			continue
		}
		s, err := e.build(fetcher, cfg)
		if err != nil {
			return nil, err
		}
		res = append(res, s)
	}
	return res, nil
}

func (e Entry) build(fetcher datasource.Fetcher, cfg *config) (*datasource.DataSource, error) {
	var opts []datasource.Option
	if cfg.dateFormat != "" {
		opts = append(opts, datasource.WithDateFormat(cfg.dateFormat))
	}
	if e.Cleansing != nil {
		opts = append(opts, datasource.WithCleansing(e.Cleansing))
	}

	switch e.Format {
	case FormatGeoJSON:
		return datasource.NewJSONFeatureSource(e.Descriptor, fetcher, opts...)
	case FormatCSV:
		return datasource.NewDelimitedTextSource(e.Descriptor, fetcher, opts...)
	default:
		return nil, fmt.Errorf("dataset %s: unsupported format %q", e.Descriptor.Name, e.Format)
	}
}
