package datasource

import (
	"errors"
	"fmt"
	"maps"
	"net/url"
	"slices"
	"strings"

	"github.com/wirvsvirus/landingzone/constants"
)

// Kind is the coarse category of a dataset
type Kind string

const (
	HealthCareCapacity Kind = "health_care_capacity"
	InfectionCases     Kind = "infection_cases"
)

func Kinds() []Kind {
	return []Kind{HealthCareCapacity, InfectionCases}
}

func (k Kind) Validate() error {
	if !slices.Contains(Kinds(), k) {
		return fmt.Errorf("unknown dataset kind %q", string(k))
	}
	return nil
}

// Descriptor is the static configuration of one dataset
type Descriptor struct {
	Name     string
	Kind     Kind
	BaseURL  string
	Endpoint string
	Info     string
	// DateColumns are parsed to dates after cleansing, using the column
	// names of the cleansed frame
	DateColumns []string
	// DateFormat is a strftime format, defaults to %d.%m.%Y
	DateFormat string
	// DateFormats overrides DateFormat per column
	DateFormats map[string]string
}

func (d Descriptor) Validate() error {
	var errs []error
	if d.Name == "" {
		errs = append(errs, errors.New("name is required"))
	}
	if err := d.Kind.Validate(); err != nil {
		errs = append(errs, err)
	}
	if d.BaseURL == "" {
		errs = append(errs, errors.New("base url is required"))
	} else if u, err := url.Parse(d.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("invalid base url %q", d.BaseURL))
	}
	for c := range d.DateFormats {
		if !slices.Contains(d.DateColumns, c) {
			errs = append(errs, fmt.Errorf("date format given for %s which is not a date column", c))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid descriptor %q: %w", d.Name, errors.Join(errs...))
	}
	return nil
}

// URL returns base url and endpoint joined by a single slash
func (d Descriptor) URL() string {
	return strings.TrimRight(d.BaseURL, "/") + "/" + strings.TrimLeft(d.Endpoint, "/")
}

// FormatFor returns the strftime format used for a date column
func (d Descriptor) FormatFor(column string) string {
	if f, ok := d.DateFormats[column]; ok && f != "" {
		return f
	}
	if d.DateFormat != "" {
		return d.DateFormat
	}
	return constants.DefaultDateFormat
}

// Clone returns a deep copy of d
func (d Descriptor) Clone() Descriptor {
	res := d
	res.DateColumns = slices.Clone(d.DateColumns)
	res.DateFormats = maps.Clone(d.DateFormats)
	return res
}

// withDefaults returns a deep copy with defaults applied
func (d Descriptor) withDefaults() Descriptor {
	res := d.Clone()
	if res.DateFormat == "" {
		res.DateFormat = constants.DefaultDateFormat
	}
	if res.DateColumns == nil {
		res.DateColumns = []string{}
	}
	return res
}
