// Package gemini provides a model adapter for Google's Gemini models via the
// unified genai SDK. It supports both the Gemini API and Vertex AI backends.
package gemini

import (
	"context"
	"fmt"

	"github.com/hupe1980/honeymesh/core"
	"github.com/hupe1980/honeymesh/model"
	"google.golang.org/genai"
)

// Options configures the Gemini model adapter.
type Options struct {
	Model           string
	Temperature     float64
	MaxOutputTokens int32
	APIKey          string
	// Project and Location switch the client to the Vertex AI backend when
	// both are set.
	Project  string
	Location string
}

// Model wraps the genai SDK behind the generic model.Model interface. A
// per-request Temperature override takes precedence over the adapter default.
type Model struct {
	client *genai.Client
	opts   Options
}

var _ model.Model = (*Model)(nil)

// NewModel creates a new Gemini model. The client is built for the Vertex AI
// backend when Project and Location are configured, otherwise for the Gemini
// API using the configured or ambient API key.
func NewModel(ctx context.Context, optFns ...func(o *Options)) (*Model, error) {
	opts := Options{
		Model:           "gemini-2.5-flash",
		Temperature:     0.7,
		MaxOutputTokens: 1024,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	cfg := &genai.ClientConfig{APIKey: opts.APIKey}
	if opts.Project != "" && opts.Location != "" {
		cfg = &genai.ClientConfig{
			Project:  opts.Project,
			Location: opts.Location,
			Backend:  genai.BackendVertexAI,
		}
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	return &Model{client: client, opts: opts}, nil
}

// Generate implements model.Model via a single non-streaming call.
func (m *Model) Generate(ctx context.Context, req model.Request) (<-chan model.Response, <-chan error) {
	out := make(chan model.Response, 1)
	errCh := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errCh)

		temperature := float32(m.opts.Temperature)
		if req.Temperature != nil {
			temperature = float32(*req.Temperature)
		}
		maxTokens := m.opts.MaxOutputTokens
		if req.MaxTokens > 0 {
			maxTokens = int32(req.MaxTokens)
		}

		cfg := &genai.GenerateContentConfig{
			Temperature:     &temperature,
			MaxOutputTokens: maxTokens,
		}
		if req.Instructions != "" {
			cfg.SystemInstruction = genai.NewContentFromText(req.Instructions, genai.RoleUser)
		}

		resp, err := m.client.Models.GenerateContent(ctx, m.opts.Model, buildContents(req.Contents), cfg)
		if err != nil {
			errCh <- fmt.Errorf("gemini api error: %w", err)
			return
		}

		text := resp.Text()
		if text == "" {
			errCh <- fmt.Errorf("gemini returned empty text")
			return
		}

		out <- model.Response{
			Content:      core.NewAssistantContent(text),
			FinishReason: "stop",
		}
	}()

	return out, errCh
}

// Info implements model.Model.
func (m *Model) Info() model.Info {
	return model.Info{Name: m.opts.Model, Provider: "gemini"}
}

// buildContents converts core contents to genai contents. System content is
// carried via the request instructions; assistant turns map to the model role.
func buildContents(contents []core.Content) []*genai.Content {
	var out []*genai.Content
	for _, c := range contents {
		if c.Role == "system" {
			continue
		}
		text := c.Text()
		if text == "" {
			continue
		}
		role := genai.Role(genai.RoleUser)
		if c.Role == "assistant" {
			role = genai.RoleModel
		}
		out = append(out, genai.NewContentFromText(text, role))
	}
	return out
}
