package gateway

import (
	"context"
	"fmt"
	"math/rand"
	"sync"

	"github.com/shopspring/decimal"
)

// Result is what a gateway reports for one charge attempt.
type Result struct {
	Accepted bool
	// Ref is the gateway's identifier for the charge, set when accepted.
	Ref string
	// Reason explains a decline.
	Reason string
}

// Gateway charges an amount through a payment provider. An error means the
// provider could not be reached, not that the charge was declined; declines
// come back as a Result with Accepted false.
type Gateway interface {
	Charge(ctx context.Context, amount decimal.Decimal, method string) (Result, error)
}

// DeterministicGateway accepts or declines every charge according to a
// fixed flag. Used in tests and local development.
type DeterministicGateway struct {
	Accept bool
	calls  int
	mu     sync.Mutex
}

func (g *DeterministicGateway) Charge(_ context.Context, _ decimal.Decimal, _ string) (Result, error) {
	g.mu.Lock()
	g.calls++
	n := g.calls
	g.mu.Unlock()

	if !g.Accept {
		return Result{Accepted: false, Reason: "declined by gateway"}, nil
	}
	return Result{Accepted: true, Ref: fmt.Sprintf("sim_%06d", n)}, nil
}

// ProbabilisticGateway accepts a configurable fraction of charges. Used for
// load and failure-path testing.
type ProbabilisticGateway struct {
	SuccessRate float64
	rng         *rand.Rand
	mu          sync.Mutex
}

func NewProbabilisticGateway(successRate float64, seed int64) *ProbabilisticGateway {
	return &ProbabilisticGateway{
		SuccessRate: successRate,
		rng:         rand.New(rand.NewSource(seed)),
	}
}

func (g *ProbabilisticGateway) Charge(_ context.Context, _ decimal.Decimal, _ string) (Result, error) {
	g.mu.Lock()
	roll := g.rng.Float64()
	ref := g.rng.Int63()
	g.mu.Unlock()

	if roll >= g.SuccessRate {
		return Result{Accepted: false, Reason: "declined by gateway"}, nil
	}
	return Result{Accepted: true, Ref: fmt.Sprintf("sim_%08x", ref)}, nil
}
