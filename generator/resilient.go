package generator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"pantrypilot/recipe"
)

type ResilientOptions struct {
	Name          string
	RatePerSecond float64
	Burst         int
	FailureRatio  float64
	MinRequests   uint32
	OpenTimeout   time.Duration
	Interval      time.Duration
}

// Resilient guards a Generator with a rate limiter and a circuit breaker.
// It is safe for concurrent use.
type Resilient struct {
	next    Generator
	cb      *gobreaker.CircuitBreaker[[]recipe.Recipe]
	limiter *rate.Limiter
	name    string
}

func NewResilient(next Generator, opts ResilientOptions) *Resilient {
	if opts.Name == "" {
		opts.Name = "recipe-generator"
	}
	if opts.FailureRatio <= 0 {
		opts.FailureRatio = 0.6
	}
	if opts.MinRequests == 0 {
		opts.MinRequests = 5
	}
	if opts.OpenTimeout <= 0 {
		opts.OpenTimeout = 30 * time.Second
	}
	if opts.Interval <= 0 {
		opts.Interval = time.Minute
	}

	limit := rate.Inf
	if opts.RatePerSecond > 0 {
		limit = rate.Limit(opts.RatePerSecond)
	}
	burst := opts.Burst
	if burst <= 0 {
		burst = 1
	}

	cb := gobreaker.NewCircuitBreaker[[]recipe.Recipe](gobreaker.Settings{
		Name:        opts.Name,
		MaxRequests: 1,
		Interval:    opts.Interval,
		Timeout:     opts.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < opts.MinRequests {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			if ratio >= opts.FailureRatio {
				slog.Warn("GENERATOR: Opening circuit", "name", opts.Name, "failures", counts.TotalFailures, "requests", counts.Requests)
				return true
			}
			return false
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Info("GENERATOR: Circuit state change", "name", name, "from", from.String(), "to", to.String())
		},
		IsSuccessful: func(err error) bool {
			// Caller cancellations say nothing about provider health.
			return err == nil || errors.Is(err, context.Canceled)
		},
	})

	return &Resilient{
		next:    next,
		cb:      cb,
		limiter: rate.NewLimiter(limit, burst),
		name:    opts.Name,
	}
}

func (r *Resilient) Generate(ctx context.Context, req Request) ([]recipe.Recipe, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("generator rate limit: %w", err)
	}

	out, err := r.cb.Execute(func() ([]recipe.Recipe, error) {
		return r.next.Generate(ctx, req)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %s: %v", ErrUnavailable, r.name, err)
		}
		return nil, err
	}
	return out, nil
}

// State reports the circuit breaker state ("closed", "half-open", "open").
func (r *Resilient) State() string {
	return r.cb.State().String()
}
