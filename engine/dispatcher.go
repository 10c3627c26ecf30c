package engine

import (
	"context"
	"time"

	"github.com/hupe1980/honeymesh/agent"
	"github.com/hupe1980/honeymesh/core"
	"github.com/hupe1980/honeymesh/logging"
	"github.com/hupe1980/honeymesh/strategy"
)

// DefaultDeadline bounds one turn's strategy race. It sits under the 30
// seconds upstream callers typically allow, leaving room for scoring,
// persistence and response serialization.
const DefaultDeadline = 25 * time.Second

// Dispatcher races every strategy concurrently and collects whatever
// completes before the deadline. Late results are discarded, never awaited:
// the result channel is buffered to the strategy count so stragglers can
// finish and exit on their own.
type Dispatcher struct {
	runner     *agent.Runner
	strategies strategy.Set
	deadline   time.Duration
	logger     *logging.HoneymeshLogger
}

// NewDispatcher creates a Dispatcher. A non-positive deadline means the race
// is already over when it starts; Dispatch then returns no candidates and
// the caller falls back to a forced offline reply.
func NewDispatcher(runner *agent.Runner, strategies strategy.Set, deadline time.Duration, logger logging.Logger) *Dispatcher {
	return &Dispatcher{
		runner:     runner,
		strategies: strategies,
		deadline:   deadline,
		logger:     logging.Wrap(logger).WithComponent("dispatcher"),
	}
}

// Dispatch runs every strategy against the turn context and returns the
// candidates that completed in time, in arrival order.
func (d *Dispatcher) Dispatch(ctx context.Context, tc strategy.TurnContext) []core.CandidateResult {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, d.deadline)
	defer cancel()

	results := make(chan core.CandidateResult, len(d.strategies))
	for _, strat := range d.strategies {
		go func(strat strategy.Strategy) {
			results <- d.runner.Run(ctx, strat, tc)
		}(strat)
	}

	logger := d.logger.WithSession(tc.Turn.SessionID, tc.TurnNumber)

	collected := make([]core.CandidateResult, 0, len(d.strategies))
	for range d.strategies {
		select {
		case cand := <-results:
			collected = append(collected, cand)
		case <-ctx.Done():
			// Deadline hit: keep anything already buffered, drop the rest.
			for {
				select {
				case cand := <-results:
					collected = append(collected, cand)
					continue
				default:
				}
				logger.WithContext("deadline_exceeded", true).
					LogDispatch(len(d.strategies), len(collected), time.Since(start))
				return collected
			}
		}
	}

	logger.LogDispatch(len(d.strategies), len(collected), time.Since(start))
	return collected
}
