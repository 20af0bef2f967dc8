package llm

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v5"
	"golang.org/x/time/rate"
)

// Observer is notified after every call reaching the provider.
type Observer func(err error, elapsed time.Duration)

type retrying struct {
	next       Model
	maxRetries uint
	initial    time.Duration
	logger     *slog.Logger
}

// WithRetry retries transient failures with exponential backoff.
func WithRetry(next Model, maxRetries int, initial time.Duration, logger *slog.Logger) Model {
	if maxRetries <= 0 {
		return next
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &retrying{next: next, maxRetries: uint(maxRetries), initial: initial, logger: logger}
}

func (r *retrying) Complete(ctx context.Context, req Request) (string, error) {
	b := backoff.NewExponentialBackOff()
	if r.initial > 0 {
		b.InitialInterval = r.initial
	}

	op := func() (string, error) {
		out, err := r.next.Complete(ctx, req)
		if err != nil && !retryable(ctx, err) {
			return "", backoff.Permanent(err)
		}
		return out, err
	}

	return backoff.Retry(ctx, op,
		backoff.WithBackOff(b),
		backoff.WithMaxTries(r.maxRetries+1),
		backoff.WithNotify(func(err error, wait time.Duration) {
			r.logger.Warn("model call failed, retrying", "error", err, "wait", wait)
		}),
	)
}

func retryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil || errors.Is(err, context.Canceled) {
		return false
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Temporary()
	}
	return true
}

type limited struct {
	next    Model
	limiter *rate.Limiter
}

// WithRateLimit spaces outbound calls to at most perSecond per second.
func WithRateLimit(next Model, perSecond float64, burst int) Model {
	if perSecond <= 0 {
		return next
	}
	if burst <= 0 {
		burst = 1
	}
	return &limited{next: next, limiter: rate.NewLimiter(rate.Limit(perSecond), burst)}
}

func (l *limited) Complete(ctx context.Context, req Request) (string, error) {
	if err := l.limiter.Wait(ctx); err != nil {
		return "", err
	}
	return l.next.Complete(ctx, req)
}

type observed struct {
	next     Model
	observer Observer
}

// WithObserver reports the outcome and latency of each call.
func WithObserver(next Model, observer Observer) Model {
	if observer == nil {
		return next
	}
	return &observed{next: next, observer: observer}
}

func (o *observed) Complete(ctx context.Context, req Request) (string, error) {
	start := time.Now()
	out, err := o.next.Complete(ctx, req)
	o.observer(err, time.Since(start))
	return out, err
}

// Func adapts a function to the Model interface.
type Func func(ctx context.Context, req Request) (string, error)

func (f Func) Complete(ctx context.Context, req Request) (string, error) { return f(ctx, req) }
