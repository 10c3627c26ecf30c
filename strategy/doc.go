// Package strategy defines the fixed set of engagement strategies (tactical
// personas), the turn-phase model derived from the session's turn counter,
// the per-turn instruction builder for the generation capability, and the
// offline reply synthesizer used when no model is reachable.
//
// A Strategy is pure configuration: a name, a sampling bias, and a prompt
// overlay. All per-turn inputs arrive through TurnContext, which the engine
// computes once per turn and passes to every strategy identically.
package strategy
