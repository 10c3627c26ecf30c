package engine

import (
	"context"
	"testing"
	"time"

	"github.com/hupe1980/honeymesh/agent"
	"github.com/hupe1980/honeymesh/core"
	"github.com/hupe1980/honeymesh/extract"
	"github.com/hupe1980/honeymesh/internal/testutil"
	"github.com/hupe1980/honeymesh/model"
	"github.com/hupe1980/honeymesh/strategy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

var dispatchExtractor = extract.MustNew(extract.DefaultConfig())

func dispatchContext(t *testing.T, turn core.Turn) strategy.TurnContext {
	t.Helper()
	state := testutil.NewSessionBuilder(turn.SessionID).Build()
	extracted := dispatchExtractor.ExtractTurn(turn)
	known := state.Intel.Clone()
	known.Merge(extracted)
	return strategy.TurnContext{
		Turn:       turn,
		Session:    state,
		TurnNumber: 1,
		Phase:      strategy.PhaseForTurn(1),
		Extracted:  extracted,
		Known:      known,
		Missing:    known.MissingCategories(),
		Language:   turn.Language(),
	}
}

func TestDispatcher_AllStrategiesComplete(t *testing.T) {
	defer goleak.VerifyNone(t)

	m := model.NewMockModel("test")
	m.AddResponse("", `{"reply":"Which account sir? Please tell me your number.","scamDetected":true,"confidence":0.9}`)

	runner := agent.NewRunner(m)
	strategies := strategy.DefaultSet()
	d := NewDispatcher(runner, strategies, time.Second, nil)

	tc := dispatchContext(t, testutil.NewTurnBuilder("s1").Incoming("your account is blocked").Build())
	cands := d.Dispatch(context.Background(), tc)

	require.Len(t, cands, len(strategies))
	seen := make(map[string]bool)
	for _, cand := range cands {
		seen[cand.Strategy] = true
		assert.NotEmpty(t, cand.Reply)
	}
	assert.Len(t, seen, len(strategies))
}

func TestDispatcher_SlowModelStillYieldsOfflineCandidates(t *testing.T) {
	defer goleak.VerifyNone(t)

	m := model.NewMockModel("test")
	m.DelayBy(10 * time.Second)

	runner := agent.NewRunner(m)
	d := NewDispatcher(runner, strategy.DefaultSet(), 100*time.Millisecond, nil)

	tc := dispatchContext(t, testutil.NewTurnBuilder("s1").Incoming("share the otp now").Build())
	start := time.Now()
	cands := d.Dispatch(context.Background(), tc)

	// The model call times out, but each strategy degrades to its offline
	// rung inside the window.
	assert.Less(t, time.Since(start), 5*time.Second)
	require.NotEmpty(t, cands)
	for _, cand := range cands {
		assert.Equal(t, core.TierOffline, cand.Tier)
		assert.NotEmpty(t, cand.Reply)
	}
}

func TestDispatcher_ZeroDeadlineReturnsQuickly(t *testing.T) {
	defer goleak.VerifyNone(t)

	m := model.NewMockModel("test")
	m.DelayBy(10 * time.Second)

	runner := agent.NewRunner(m)
	d := NewDispatcher(runner, strategy.DefaultSet(), 0, nil)

	tc := dispatchContext(t, testutil.NewTurnBuilder("s1").Incoming("urgent verify").Build())
	start := time.Now()
	_ = d.Dispatch(context.Background(), tc)
	assert.Less(t, time.Since(start), 2*time.Second)

	// Let the straggler goroutines drain into the buffered channel before
	// goleak inspects the stacks.
	time.Sleep(50 * time.Millisecond)
}
