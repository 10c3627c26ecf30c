package model

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/hupe1980/honeymesh/core"
)

// MockModel is a lightweight in-memory Model useful for tests & examples. It
// supports canned outputs keyed by instruction substring, scripted errors,
// and artificial delays for dispatcher deadline tests. Safe for concurrent
// use.
type MockModel struct {
	mu        sync.Mutex
	info      Info
	responses []mockRule
	err       error
	delay     time.Duration
	calls     int
}

type mockRule struct {
	match string // substring of the instruction; "" matches everything
	text  string
}

// NewMockModel constructs a MockModel.
func NewMockModel(name string) *MockModel {
	return &MockModel{info: Info{Name: name, Provider: "mock"}}
}

// AddResponse registers a canned completion returned when the request
// instruction contains match. Rules are evaluated in registration order; an
// empty match string is a catch-all.
func (m *MockModel) AddResponse(match, text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, mockRule{match: match, text: text})
}

// FailWith makes every subsequent Generate call yield err.
func (m *MockModel) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// DelayBy makes every subsequent Generate call wait d before responding,
// still honoring context cancellation.
func (m *MockModel) DelayBy(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delay = d
}

// Calls returns how many Generate calls have started.
func (m *MockModel) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Generate implements Model.
func (m *MockModel) Generate(ctx context.Context, req Request) (<-chan Response, <-chan error) {
	respCh := make(chan Response, 1)
	errCh := make(chan error, 1)

	m.mu.Lock()
	m.calls++
	err := m.err
	delay := m.delay
	rules := append([]mockRule(nil), m.responses...)
	m.mu.Unlock()

	go func() {
		defer close(respCh)
		defer close(errCh)

		if delay > 0 {
			select {
			case <-ctx.Done():
				errCh <- ctx.Err()
				return
			case <-time.After(delay):
			}
		}
		if err != nil {
			errCh <- err
			return
		}

		text := ""
		for _, rule := range rules {
			if rule.match == "" || strings.Contains(req.Instructions, rule.match) {
				text = rule.text
				break
			}
		}
		if text == "" {
			text = fmt.Sprintf("Mock response to: %s", lastUserText(req.Contents))
		}
		respCh <- Response{
			Content:      core.NewAssistantContent(text),
			FinishReason: "stop",
		}
	}()
	return respCh, errCh
}

// Info implements Model.
func (m *MockModel) Info() Info { return m.info }

func lastUserText(contents []core.Content) string {
	for i := len(contents) - 1; i >= 0; i-- {
		if contents[i].Role == "user" {
			return contents[i].Text()
		}
	}
	return ""
}
