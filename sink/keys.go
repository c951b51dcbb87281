package sink

import (
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/iancoleman/strcase"
	"github.com/ncruces/go-strftime"
	"github.com/wirvsvirus/landingzone/constants"
	"github.com/wirvsvirus/landingzone/datasource"
)

// KeyScheme selects how objects are named in the bucket
type KeyScheme string

const (
	// KeySchemeKind is <kind>/<name>/data.csv, one stable key per dataset
	KeySchemeKind KeyScheme = "kind"
	// KeySchemeTimestamp is <name>_<capture time>.csv, one key per run
	KeySchemeTimestamp KeyScheme = "timestamp"
)

func (s KeyScheme) Validate() error {
	switch s {
	case KeySchemeKind, KeySchemeTimestamp:
		return nil
	default:
		return fmt.Errorf("unknown key scheme %q, expected %s or %s", string(s), KeySchemeKind, KeySchemeTimestamp)
	}
}

// KindScopedKey returns <kind>/<name>/data.csv with name in snake case
func KindScopedKey(kind datasource.Kind, name string) string {
	return path.Join(string(kind), strcase.ToSnake(name), constants.DataFileName)
}

// TimestampedKey returns <name>_<%Y-%m-%dT%H%M%S>.csv
func TimestampedKey(name string, capturedAt time.Time) string {
	return strings.ReplaceAll(name, " ", "_") + "_" + strftime.Format(constants.TimestampKeyFormat, capturedAt) + ".csv"
}

func (s KeyScheme) key(kind datasource.Kind, name string, now time.Time) string {
	if s == KeySchemeTimestamp {
		return TimestampedKey(name, now)
	}
	return KindScopedKey(kind, name)
}
