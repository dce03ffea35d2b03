// Package retry runs fallible operations with capped exponential backoff.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

// Config of a retried operation.
type Config struct {
	MaxAttempts       int           `mapstructure:"max-attempts"`
	InitialDelay      time.Duration `mapstructure:"initial-delay"`
	MaxDelay          time.Duration `mapstructure:"max-delay"`
	BackoffMultiplier float64       `mapstructure:"backoff-multiplier"`
}

// DefaultConfig is 3 attempts starting at 1s, doubling up to 10s.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:       3,
		InitialDelay:      time.Second,
		MaxDelay:          10 * time.Second,
		BackoffMultiplier: 2.0,
	}
}

// WithAttempts returns a copy of c with MaxAttempts set to n.
func (c Config) WithAttempts(n int) Config {
	c.MaxAttempts = n
	return c
}

// Validate checks that the delay sequence is well formed.
func (c Config) Validate() error {
	if c.MaxAttempts < 1 {
		return fmt.Errorf("max attempts must be at least 1, got %d", c.MaxAttempts)
	}
	if c.BackoffMultiplier <= 1 {
		return fmt.Errorf("backoff multiplier must be greater than 1, got %v", c.BackoffMultiplier)
	}
	if c.InitialDelay < 0 {
		return fmt.Errorf("initial delay must not be negative, got %v", c.InitialDelay)
	}
	if c.InitialDelay > c.MaxDelay {
		return fmt.Errorf("initial delay %v exceeds max delay %v", c.InitialDelay, c.MaxDelay)
	}
	return nil
}

// Delays returns the waits between consecutive attempts.
// The sequence is non-decreasing and capped at MaxDelay.
func (c Config) Delays() []time.Duration {
	if c.MaxAttempts <= 1 {
		return nil
	}
	delays := make([]time.Duration, 0, c.MaxAttempts-1)
	delay := c.InitialDelay
	for range c.MaxAttempts - 1 {
		delays = append(delays, delay)
		delay = next(c, delay)
	}
	return delays
}

func next(c Config, delay time.Duration) time.Duration {
	scaled := time.Duration(float64(delay) * c.BackoffMultiplier)
	if scaled > c.MaxDelay || scaled < delay {
		return c.MaxDelay
	}
	return scaled
}

// ErrorHook observes every error returned by an attempt.
type ErrorHook func(op string, attempt int, err error)

// Opt configures an Executor.
type Opt func(*Executor)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Opt {
	return func(e *Executor) {
		e.logger = logger
	}
}

// WithClock sets the clock used to wait between attempts.
func WithClock(clock clockwork.Clock) Opt {
	return func(e *Executor) {
		e.clock = clock
	}
}

// WithErrorHook registers a hook called with every attempt error.
func WithErrorHook(hook ErrorHook) Opt {
	return func(e *Executor) {
		e.hook = hook
	}
}

// Executor runs operations according to a Config.
type Executor struct {
	logger *zap.Logger
	clock  clockwork.Clock
	hook   ErrorHook
}

// New creates an Executor.
func New(opts ...Opt) *Executor {
	e := &Executor{
		logger: zap.NewNop(),
		clock:  clockwork.NewRealClock(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Func is a single attempt. It succeeds when it returns ok and no error.
// Errors are not propagated, the attempt is simply retried.
type Func[T any] func(ctx context.Context) (T, bool, error)

// Execute runs op until it succeeds, cfg.MaxAttempts attempts were made or ctx is done.
// There is no wait after the last attempt. On failure it returns the zero value and false.
func Execute[T any](ctx context.Context, e *Executor, op string, cfg Config, fn Func[T]) (T, bool) {
	var zero T
	attempts := max(cfg.MaxAttempts, 1)
	delay := cfg.InitialDelay
	for attempt := 1; attempt <= attempts; attempt++ {
		attemptsCount.WithLabelValues(op).Inc()
		value, ok, err := safeCall(ctx, fn)
		if err == nil && ok {
			if attempt > 1 {
				e.logger.Debug("operation succeeded after retry",
					zap.String("op", op),
					zap.Int("attempt", attempt),
				)
			}
			outcomes.WithLabelValues(op, "success").Inc()
			return value, true
		}
		if err != nil {
			e.logger.Debug("attempt failed",
				zap.String("op", op),
				zap.Int("attempt", attempt),
				zap.Int("max_attempts", attempts),
				zap.Error(err),
			)
			if e.hook != nil {
				e.hook(op, attempt, err)
			}
		}
		if attempt == attempts {
			break
		}
		select {
		case <-ctx.Done():
			e.logger.Debug("retry interrupted", zap.String("op", op), zap.Error(ctx.Err()))
			outcomes.WithLabelValues(op, "canceled").Inc()
			return zero, false
		case <-e.clock.After(delay):
		}
		delay = next(cfg, delay)
	}
	outcomes.WithLabelValues(op, "exhausted").Inc()
	e.logger.Debug("operation failed", zap.String("op", op), zap.Int("attempts", attempts))
	return zero, false
}

// ExecuteBool is Execute for operations that only report success.
func ExecuteBool(ctx context.Context, e *Executor, op string, cfg Config, fn func(context.Context) (bool, error)) bool {
	_, ok := Execute(ctx, e, op, cfg, func(ctx context.Context) (struct{}, bool, error) {
		ok, err := fn(ctx)
		return struct{}{}, ok, err
	})
	return ok
}

// ErrPanic wraps a panic recovered from an attempt.
var ErrPanic = errors.New("attempt panicked")

func safeCall[T any](ctx context.Context, fn Func[T]) (value T, ok bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrPanic, r)
			ok = false
		}
	}()
	return fn(ctx)
}
