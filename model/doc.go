// Package model defines the external generation capability behind a minimal
// interface plus a MockModel for tests. Provider adapters live in the
// subpackages anthropic, openai and gemini.
//
// Every adapter supports independent concurrent invocation with no shared
// mutable state between calls, honors context cancellation, and applies the
// per-request Temperature override that strategies use as their sampling
// bias.
package model
