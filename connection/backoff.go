package connection

import (
	"context"
	"log/slog"
	"math"
	"math/rand"
	"time"
)

const maxBackoff = 5 * time.Minute

// ExponentialJitterBackoff waits minDelay * 3^attempt, with +-20% jitter, capped at five minutes
type ExponentialJitterBackoff struct {
	minDelay    time.Duration
	maxAttempts int
}

func NewExponentialJitterBackoff(minDelay time.Duration, maxAttempts int) *ExponentialJitterBackoff {
	return &ExponentialJitterBackoff{minDelay, maxAttempts}
}

func (j *ExponentialJitterBackoff) BackoffDelay(attempt int, err error) (time.Duration, error) {
	// [0.8, 1.2)
	jitter := float64(rand.Intn(40)+80) / 100

	delay := float64(j.minDelay) * math.Pow(3, float64(attempt)) * jitter
	retryTime := maxBackoff
	if delay < float64(maxBackoff) {
		retryTime = time.Duration(delay)
	}

	slog.Info("aws request backoff", "attempt", attempt, "max_attempts", j.maxAttempts, "retry_time", retryTime.String(), "error", err)
	return retryTime, nil
}

// NoOpRateLimit disables the client side retry token bucket of the sdk,
// see https://github.com/aws/aws-sdk-go-v2/issues/543
type NoOpRateLimit struct{}

func (NoOpRateLimit) AddTokens(uint) error { return nil }
func (NoOpRateLimit) GetToken(context.Context, uint) (func() error, error) {
	return noOpToken, nil
}
func noOpToken() error { return nil }
