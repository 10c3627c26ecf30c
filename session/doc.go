// Package session provides SessionStore implementations backing the per
// conversation accumulator. The in-memory store serves tests and
// single-instance deployments; the sqlite and firestore subpackages provide
// durable backends behind the same interface. All backends share the
// accumulation semantics in core.ApplyTurnUpdate, so switching stores never
// changes behavior.
package session
