package strategy

import (
	"context"
	"io"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	openai "github.com/sashabaranov/go-openai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
)

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"

	DefaultOpenAIModel = openai.GPT4oMini
	DefaultGeminiModel = "gemini-1.5-flash"
)

// Prompt is one completion request.
type Prompt struct {
	System      string
	User        string
	Temperature float32
	MaxTokens   int
}

// Completer turns a prompt into model text.
type Completer interface {
	Complete(ctx context.Context, p Prompt) (string, error)
	Model() string
}

// OpenAICompleter calls the chat completions API.
type OpenAICompleter struct {
	client *openai.Client
	model  string
}

// NewOpenAICompleter builds a completer for apiKey. baseURL may be empty.
func NewOpenAICompleter(apiKey, baseURL string) *OpenAICompleter {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/")
	}
	return &OpenAICompleter{client: openai.NewClientWithConfig(cfg), model: DefaultOpenAIModel}
}

// Model returns the model name.
func (c *OpenAICompleter) Model() string { return c.model }

// Complete sends the system and user messages.
func (c *OpenAICompleter) Complete(ctx context.Context, p Prompt) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if p.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: p.System})
	}
	messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: p.User})

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: p.Temperature,
		MaxTokens:   p.MaxTokens,
	})
	if err != nil {
		return "", goerr.Wrap(err, "openai completion failed", goerr.V("model", c.model))
	}
	if len(resp.Choices) == 0 {
		return "", goerr.New("openai returned no choices", goerr.V("model", c.model))
	}
	return resp.Choices[0].Message.Content, nil
}

// GeminiCompleter calls Gemini through langchaingo. It holds a gRPC client; call Close when done.
type GeminiCompleter struct {
	llm   *googleai.GoogleAI
	model string
}

// NewGeminiCompleter builds a completer for apiKey.
func NewGeminiCompleter(ctx context.Context, apiKey string) (*GeminiCompleter, error) {
	llm, err := googleai.New(ctx, googleai.WithAPIKey(apiKey), googleai.WithDefaultModel(DefaultGeminiModel))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create gemini client")
	}
	return &GeminiCompleter{llm: llm, model: DefaultGeminiModel}, nil
}

// Model returns the model name.
func (c *GeminiCompleter) Model() string { return c.model }

// Close releases the underlying client.
func (c *GeminiCompleter) Close() error {
	if c.llm == nil {
		return nil
	}
	return c.llm.Close()
}

// Complete prepends the system prompt to the user prompt.
func (c *GeminiCompleter) Complete(ctx context.Context, p Prompt) (string, error) {
	full := p.User
	if p.System != "" {
		full = p.System + "\n\n" + p.User
	}
	out, err := llms.GenerateFromSinglePrompt(ctx, c.llm, full,
		llms.WithTemperature(float64(p.Temperature)),
		llms.WithMaxTokens(p.MaxTokens),
	)
	if err != nil {
		return "", goerr.Wrap(err, "gemini completion failed", goerr.V("model", c.model))
	}
	return out, nil
}

var _ io.Closer = (*GeminiCompleter)(nil)

// NewCompleter picks a backend by provider name. Completers that implement io.Closer must be
// closed by the caller.
func NewCompleter(ctx context.Context, provider, apiKey string) (Completer, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrNoAIKey
	}
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case "", ProviderOpenAI:
		return NewOpenAICompleter(apiKey, ""), nil
	case ProviderGemini:
		return NewGeminiCompleter(ctx, apiKey)
	default:
		return nil, goerr.New("unsupported ai provider", goerr.V("provider", provider))
	}
}
