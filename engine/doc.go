// Package engine orchestrates turn processing: it races every engagement
// strategy against a shared deadline, scores the completed candidates,
// selects the reply to send, folds each turn's intelligence into the durable
// session record, and fires the final report exactly once per session.
//
// Key features:
//   - Concurrent strategy dispatch with a hard per-turn deadline
//   - Deterministic scoring (new intelligence, confidence, naturalness,
//     cover-breaking penalties) with declaration-order tie breaks
//   - Intelligence from every candidate is merged, not just the winner's
//   - Forced offline fallback so a turn always yields a reply
//   - Once-only asynchronous report delivery guarded by the session store
//
// Example:
//
//	store := session.NewInMemoryStore()
//	eng := engine.New(store, myModel, engine.WithReportSink(sink))
//	result, err := eng.ProcessTurn(ctx, turn)
package engine
