// Package openai provides a model adapter for the OpenAI Chat Completions
// API. It adapts Honeymesh's normalized Request/Response structures into the
// SDK's message format and back.
package openai

import (
	"context"
	"fmt"

	"github.com/hupe1980/honeymesh/core"
	"github.com/hupe1980/honeymesh/model"
	"github.com/openai/openai-go"
)

// Options configure the OpenAI model adapter. Fields mirror a minimal subset
// of Chat Completion parameters; extend via functional options.
type Options struct {
	Model               string
	Temperature         float64
	MaxCompletionTokens int64
}

// Model wraps the OpenAI Chat Completions API behind the generic model.Model
// interface. A per-request Temperature override takes precedence over the
// adapter default.
type Model struct {
	client *openai.Client
	opts   Options
}

var _ model.Model = (*Model)(nil)

// NewModel creates a new OpenAI model using the official client.
func NewModel(optFns ...func(o *Options)) *Model {
	client := openai.NewClient()
	return NewModelFromClient(&client, optFns...)
}

// NewModelFromClient creates a new OpenAI model from an existing client.
func NewModelFromClient(client *openai.Client, optFns ...func(o *Options)) *Model {
	opts := Options{
		Model:               openai.ChatModelGPT4oMini,
		Temperature:         0.7,
		MaxCompletionTokens: 1024,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Model{client: client, opts: opts}
}

// Generate implements model.Model via a single non-streaming completion.
func (m *Model) Generate(ctx context.Context, req model.Request) (<-chan model.Response, <-chan error) {
	out := make(chan model.Response, 1)
	errCh := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errCh)

		temperature := m.opts.Temperature
		if req.Temperature != nil {
			temperature = *req.Temperature
		}
		maxTokens := m.opts.MaxCompletionTokens
		if req.MaxTokens > 0 {
			maxTokens = req.MaxTokens
		}

		params := openai.ChatCompletionNewParams{
			Model:               m.opts.Model,
			Messages:            buildMessages(req),
			Temperature:         openai.Float(temperature),
			MaxCompletionTokens: openai.Int(maxTokens),
		}

		resp, err := m.client.Chat.Completions.New(ctx, params)
		if err != nil {
			errCh <- fmt.Errorf("openai api error: %w", err)
			return
		}
		if len(resp.Choices) == 0 {
			errCh <- fmt.Errorf("openai api returned no choices")
			return
		}

		choice := resp.Choices[0]
		finishReason := "stop"
		if choice.FinishReason != "" {
			finishReason = choice.FinishReason
		}
		out <- model.Response{
			Content:      core.NewAssistantContent(choice.Message.Content),
			FinishReason: finishReason,
		}
	}()

	return out, errCh
}

// Info implements model.Model.
func (m *Model) Info() model.Info {
	return model.Info{Name: m.opts.Model, Provider: "openai"}
}

// buildMessages converts normalized contents into OpenAI chat messages. The
// request instruction becomes the leading system message.
func buildMessages(req model.Request) []openai.ChatCompletionMessageParamUnion {
	var messages []openai.ChatCompletionMessageParamUnion
	if req.Instructions != "" {
		messages = append(messages, openai.SystemMessage(req.Instructions))
	}
	for _, c := range req.Contents {
		text := c.Text()
		if text == "" {
			continue
		}
		switch c.Role {
		case "system":
			messages = append(messages, openai.SystemMessage(text))
		case "assistant":
			messages = append(messages, openai.AssistantMessage(text))
		default:
			messages = append(messages, openai.UserMessage(text))
		}
	}
	return messages
}
