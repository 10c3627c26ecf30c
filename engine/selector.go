package engine

import "github.com/hupe1980/honeymesh/strategy"

// Selector picks the candidate to send. Ties break toward the strategy
// declared earlier in the strategy set, so selection is deterministic for
// equal inputs.
type Selector struct {
	order map[string]int
}

// NewSelector creates a Selector using the set's declaration order.
func NewSelector(strategies strategy.Set) *Selector {
	order := make(map[string]int, len(strategies))
	for i, strat := range strategies {
		order[strat.Name] = i
	}
	return &Selector{order: order}
}

// Select returns the best-scored candidate. The second return value is false
// only when no candidates were offered; the engine then forces an offline
// reply instead.
func (s *Selector) Select(scored []ScoredCandidate) (ScoredCandidate, bool) {
	if len(scored) == 0 {
		return ScoredCandidate{}, false
	}

	best := scored[0]
	for _, sc := range scored[1:] {
		switch {
		case sc.Score > best.Score:
			best = sc
		case sc.Score == best.Score && s.rank(sc.Candidate.Strategy) < s.rank(best.Candidate.Strategy):
			best = sc
		}
	}
	return best, true
}

func (s *Selector) rank(name string) int {
	if r, ok := s.order[name]; ok {
		return r
	}
	return len(s.order)
}
