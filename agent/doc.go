// Package agent runs one engagement strategy against one turn and always
// produces a usable candidate. Generation degrades through a fixed ladder:
//
//   - structured: one model call whose instruction embeds the JSON response
//     contract; the output must parse strictly and pass validation.
//   - recovered: the same raw model text reinterpreted by local parse
//     strategies (direct parse, field pull, cleanup then reparse, surviving
//     prose as the reply).
//   - offline: a locally synthesized canned reply with no model call. This
//     rung cannot fail, so a Runner never returns an error to the caller.
//
// Key features:
//   - Per-strategy sampling bias and persona instruction assembly
//   - Regex-extracted intelligence unioned into every candidate
//   - Deterministic degradation: a given raw output always lands on the same tier
package agent
