package constants

import (
	"log/slog"
	"math"
	"time"
)

const (
	AppName = "landingzone"

	// DefaultBucket is the landing zone bucket used when the config does not name one
	DefaultBucket = "wirvsvirus-data-lake-landing-zone"
	// DefaultDateFormat is a strftime format, e.g. 31.12.2020
	DefaultDateFormat     = "%d.%m.%Y"
	DefaultConcurrency    = 4
	DefaultDatasetTimeout = 2 * time.Minute
	DefaultFetchTimeout   = 30 * time.Second
	DefaultFetchRetries   = 3
	DefaultDataDir        = "~/.landingzone"
	DefaultServeAddress   = ":8080"

	// DataFileName is the leaf object name of the kind scoped key scheme
	DataFileName = "data.csv"
	// TimestampKeyFormat is the strftime format of the capture time in timestamped keys
	TimestampKeyFormat = "%Y-%m-%dT%H%M%S"
	DefaultAwsRegion   = "eu-central-1"
)

// LogLevelOff is above every level slog emits
const LogLevelOff = slog.Level(math.MaxInt32)
