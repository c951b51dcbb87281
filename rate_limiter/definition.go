package rate_limiter

import (
	"fmt"
	"strings"

	"golang.org/x/time/rate"
)

// Definition configures the throttling applied to dataset fetches
type Definition struct {
	// the limiter name, usually the upstream host
	Name string `hcl:"name,optional"`
	// requests per second and burst
	FillRate   float64 `hcl:"fill_rate,optional"`
	BucketSize int64   `hcl:"bucket_size,optional"`
	// the max number of requests in flight
	MaxConcurrency int64 `hcl:"max_concurrency,optional"`
}

func (d *Definition) String() string {
	var parts []string
	if d.FillRate > 0 {
		parts = append(parts, fmt.Sprintf("Limit(/s): %v, Burst: %d", d.FillRate, d.BucketSize))
	}
	if d.MaxConcurrency > 0 {
		parts = append(parts, fmt.Sprintf("MaxConcurrency: %d", d.MaxConcurrency))
	}
	return strings.Join(parts, " ")
}

// Enabled reports whether the definition limits anything at all
func (d *Definition) Enabled() bool {
	return (d.FillRate > 0 && d.BucketSize > 0) || d.MaxConcurrency > 0
}

func (d *Definition) Validate() []string {
	var validationErrors []string
	if d.Name == "" {
		validationErrors = append(validationErrors, "rate limiter definition must specify a name")
	}
	if d.FillRate < 0 || d.BucketSize < 0 || d.MaxConcurrency < 0 {
		validationErrors = append(validationErrors, "rate limiter values must not be negative")
	}
	if (d.FillRate > 0) != (d.BucketSize > 0) {
		validationErrors = append(validationErrors, "rate limiter definition must set fill_rate and bucket_size together")
	}
	return validationErrors
}

func (d *Definition) limit() rate.Limit {
	return rate.Limit(d.FillRate)
}
