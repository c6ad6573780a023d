package retry

import (
	"context"
	"math"
	"math/rand"
	"time"

	"github.com/rs/zerolog"
)

// Config holds the backoff policy parameters
type Config struct {
	// Total number of attempts, including the first one
	MaxAttempts int `json:"max_attempts"`
	// Delay before the second attempt
	InitialDelay time.Duration `json:"initial_delay"`
	// Cap on the computed delay regardless of attempt count
	MaxDelay time.Duration `json:"max_delay"`
	// Growth factor applied per failed attempt, must be > 1
	ExponentialBase float64 `json:"exponential_base"`
	// Multiply each delay by a uniform factor in [0.5, 1.5)
	EnableJitter bool `json:"enable_jitter"`
}

// DefaultConfig returns a default backoff policy configuration
func DefaultConfig() Config {
	return Config{
		MaxAttempts:     3,
		InitialDelay:    2 * time.Second,
		MaxDelay:        60 * time.Second,
		ExponentialBase: 2.0,
		EnableJitter:    true,
	}
}

// Executor retries a fallible operation with exponential backoff
type Executor struct {
	config    Config
	logger    zerolog.Logger
	randFloat func() float64
}

// NewExecutor creates a new retry executor
func NewExecutor(config Config, logger zerolog.Logger) *Executor {
	if config.MaxAttempts < 1 {
		config.MaxAttempts = 1
	}
	if config.ExponentialBase <= 1 {
		config.ExponentialBase = 2.0
	}

	return &Executor{
		config:    config,
		logger:    logger.With().Str("component", "RetryExecutor").Logger(),
		randFloat: rand.Float64,
	}
}

// CalculateDelay computes the delay after the given number of consecutive
// failures (1-based). The pre-jitter delay is
// min(MaxDelay, InitialDelay * ExponentialBase^(failures-1)); with jitter
// enabled the result is scaled by a uniform factor in [0.5, 1.5).
func (e *Executor) CalculateDelay(failures int) time.Duration {
	if failures < 1 {
		failures = 1
	}

	delay := time.Duration(float64(e.config.InitialDelay) * math.Pow(e.config.ExponentialBase, float64(failures-1)))
	if delay > e.config.MaxDelay || delay < 0 {
		delay = e.config.MaxDelay
	}

	if e.config.EnableJitter {
		delay = time.Duration(float64(delay) * (0.5 + e.randFloat()))
	}

	return delay
}

// Do executes the operation, retrying on failure up to MaxAttempts total
// attempts. The first success short-circuits. After the final failed attempt
// the operation's last error is returned unmodified so callers can match it
// with errors.Is/As. Waits between attempts honor context cancellation, in
// which case ctx.Err() is returned instead.
func (e *Executor) Do(ctx context.Context, operation func(context.Context) error) error {
	var lastErr error

	for attempt := 1; attempt <= e.config.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = operation(ctx)
		if lastErr == nil {
			return nil
		}

		if attempt == e.config.MaxAttempts {
			break
		}

		delay := e.CalculateDelay(attempt)
		e.logger.Warn().
			Err(lastErr).
			Int("attempt", attempt).
			Int("max_attempts", e.config.MaxAttempts).
			Dur("delay", delay).
			Msg("Operation failed, waiting before retry")

		if err := e.wait(ctx, delay); err != nil {
			return err
		}
	}

	return lastErr
}

// wait blocks for the given delay or until the context is cancelled
func (e *Executor) wait(ctx context.Context, delay time.Duration) error {
	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// DoWithResult executes a result-carrying operation under the executor's
// backoff policy, returning the first successful result or the zero value
// together with the final error.
func DoWithResult[T any](ctx context.Context, executor *Executor, operation func(context.Context) (T, error)) (T, error) {
	var result T
	err := executor.Do(ctx, func(ctx context.Context) error {
		var opErr error
		result, opErr = operation(ctx)
		return opErr
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return result, nil
}
