package reasoner

import (
	"context"
	"errors"
	"time"

	"underwriter/internal/pkg/circuit"
	"underwriter/internal/underwriting"
)

// ErrUnavailable is returned while the breaker is open; the workflow treats
// it like any other reasoner failure and falls back deterministically.
var ErrUnavailable = errors.New("reasoner temporarily unavailable")

// Guarded wraps a reasoner with a circuit breaker so a flapping model
// endpoint costs a fast rejection instead of a timeout per request.
type Guarded struct {
	inner   underwriting.Reasoner
	breaker *circuit.Breaker
}

func NewGuarded(inner underwriting.Reasoner, threshold int, cooldown time.Duration) *Guarded {
	if threshold <= 0 {
		threshold = 3
	}
	if cooldown <= 0 {
		cooldown = 30 * time.Second
	}
	return &Guarded{
		inner:   inner,
		breaker: circuit.NewBreaker("reasoner", threshold, cooldown),
	}
}

func (g *Guarded) Infer(ctx context.Context, purpose, prompt string) (string, error) {
	if !g.breaker.Allow() {
		return "", ErrUnavailable
	}
	out, err := g.inner.Infer(ctx, purpose, prompt)
	if err != nil {
		g.breaker.RecordFailure()
		return "", err
	}
	g.breaker.RecordSuccess()
	return out, nil
}

// Healthy reports whether the breaker currently admits calls.
func (g *Guarded) Healthy() bool {
	return g.breaker.State() != circuit.StateOpen
}
