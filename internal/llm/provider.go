package llm

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/opaline-dev/troupe/internal/state"
)

// Provider is the single reasoning-engine capability the engine consumes:
// an ordered message list in, free text out. Roles holding a nil Provider
// fall back to deterministic logic.
type Provider interface {
	Invoke(ctx context.Context, messages []state.Message) (string, error)
}

// Model adapts a langchaingo model to the Provider contract.
type Model struct {
	llm llms.Model
}

// Wrap exposes an already constructed langchaingo model as a Provider.
func Wrap(llm llms.Model) *Model {
	return &Model{llm: llm}
}

// NewOpenAI builds an OpenAI-compatible provider. An empty baseURL keeps
// the library default; OpenRouter-style gateways supply their own.
func NewOpenAI(token, model, baseURL string) (*Model, error) {
	opts := []openai.Option{
		openai.WithToken(token),
		openai.WithModel(model),
	}
	if baseURL != "" {
		opts = append(opts, openai.WithBaseURL(baseURL))
	}
	llm, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("llm: openai: %w", err)
	}
	return &Model{llm: llm}, nil
}

// NewOllama builds a provider backed by a local ollama server.
func NewOllama(model, serverURL string) (*Model, error) {
	opts := []ollama.Option{ollama.WithModel(model)}
	if serverURL != "" {
		opts = append(opts, ollama.WithServerURL(serverURL))
	}
	llm, err := ollama.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("llm: ollama: %w", err)
	}
	return &Model{llm: llm}, nil
}

// Invoke sends the conversation to the model and returns the first choice.
func (m *Model) Invoke(ctx context.Context, messages []state.Message) (string, error) {
	if m == nil || m.llm == nil {
		return "", fmt.Errorf("llm: no model configured")
	}
	content := make([]llms.MessageContent, 0, len(messages))
	for _, msg := range messages {
		content = append(content, llms.MessageContent{
			Role:  chatRole(msg.Kind),
			Parts: []llms.ContentPart{llms.TextPart(msg.Content)},
		})
	}
	resp, err := m.llm.GenerateContent(ctx, content)
	if err != nil {
		return "", fmt.Errorf("llm: generate: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("llm: empty response")
	}
	return resp.Choices[0].Content, nil
}

func chatRole(kind state.MessageKind) llms.ChatMessageType {
	switch kind {
	case state.KindSystem:
		return llms.ChatMessageTypeSystem
	case state.KindAssistant:
		return llms.ChatMessageTypeAI
	default:
		return llms.ChatMessageTypeHuman
	}
}
