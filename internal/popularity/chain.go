package popularity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/meshcast/meshcast/internal/models"
)

// ErrNoStrategy is returned when no strategy in a Chain could produce an
// estimate.
var ErrNoStrategy = errors.New("no popularity strategy available")

// Capability is a bit set of optional inputs a strategy depends on.
type Capability uint8

const (
	// CapText means the request carries listing text (tags, description or
	// categories).
	CapText Capability = 1 << iota
)

// Strategy produces a popularity estimate from a request.
type Strategy interface {
	Name() string
	Requires() Capability
	Estimate(ctx context.Context, req Request) (models.PopularityEstimate, error)
}

// StrategyError records a failed attempt by one strategy.
type StrategyError struct {
	Strategy string
	Err      error
}

func (e *StrategyError) Error() string {
	return fmt.Sprintf("%s strategy failed: %v", e.Strategy, e.Err)
}

func (e *StrategyError) Unwrap() error {
	return e.Err
}

// Chain tries strategies in order and returns the first success.
type Chain struct {
	strategies []Strategy
}

// NewChain builds a chain. Nil strategies are skipped so callers can pass
// optional models directly.
func NewChain(strategies ...Strategy) *Chain {
	c := &Chain{}
	for _, s := range strategies {
		if s != nil {
			c.strategies = append(c.strategies, s)
		}
	}
	return c
}

// Names lists the strategies in the order they are tried.
func (c *Chain) Names() []string {
	names := make([]string, len(c.strategies))
	for i, s := range c.strategies {
		names[i] = s.Name()
	}
	return names
}

// Estimate runs the chain. Failures are logged and the next strategy is
// tried; an error is returned only when every eligible strategy failed.
func (c *Chain) Estimate(ctx context.Context, req Request) (models.PopularityEstimate, error) {
	have := req.Capabilities()
	var errs []error

	for _, s := range c.strategies {
		if err := ctx.Err(); err != nil {
			return models.PopularityEstimate{}, err
		}
		if missing := s.Requires() &^ have; missing != 0 {
			slog.Debug("Skipping popularity strategy", "strategy", s.Name(), "missing", missing)
			continue
		}

		est, err := s.Estimate(ctx, req)
		if err != nil {
			var se *StrategyError
			if !errors.As(err, &se) {
				err = &StrategyError{Strategy: s.Name(), Err: err}
			}
			slog.Warn("Popularity strategy failed, falling back", "strategy", s.Name(), "error", err)
			errs = append(errs, err)
			continue
		}
		if est.ModelUsed == "" {
			est.ModelUsed = s.Name()
		}
		return est, nil
	}

	if len(errs) == 0 {
		return models.PopularityEstimate{}, ErrNoStrategy
	}
	return models.PopularityEstimate{}, fmt.Errorf("%w: %w", ErrNoStrategy, errors.Join(errs...))
}
