package model

import (
	"context"

	"github.com/hupe1980/honeymesh/core"
)

// Request captures the normalized model input produced by the agent runner.
type Request struct {
	Instructions string         `json:"instructions"`          // System instruction for the model
	Contents     []core.Content `json:"contents"`              // Conversation converted to provider messages
	Temperature  *float64       `json:"temperature,omitempty"` // Per-strategy sampling bias override
	MaxTokens    int64          `json:"max_tokens,omitempty"`  // Completion budget, 0 means adapter default
}

// Response is the final answer emitted by a model call.
type Response struct {
	Content      core.Content `json:"content"`
	FinishReason string       `json:"finish_reason"` // "stop", "length", etc.
}

// Text concatenates the text parts of the response content.
func (r Response) Text() string { return r.Content.Text() }

// Info contains metadata about a model implementation.
type Info struct {
	Name     string `json:"name"`
	Provider string `json:"provider"` // "anthropic", "openai", "gemini", "mock"
}

// Model is the minimal interface required to drive generation. Generate
// returns a response channel and an error channel; exactly one of them
// yields a value, and both are closed when the call finishes. Calls must be
// independent and side-effect free so the dispatcher can run several
// concurrently.
type Model interface {
	Generate(ctx context.Context, req Request) (<-chan Response, <-chan error)

	// Info returns information about the model implementation.
	Info() Info
}
