package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	einoopenai "github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	goopenai "github.com/meguminnnnnnnnn/go-openai"
)

const (
	defaultOpenAIBaseURL = "https://api.openai.com/v1"
	defaultOpenAIModel   = "gpt-4o-mini"
	noReplyMessage       = "No reply received from OpenAI API"
)

var (
	ErrAPIKeyRequired    = errors.New("completion api key is empty")
	ErrToolsNotSupported = errors.New("tool binding is not supported by the help desk model")
)

// UpstreamError reports a completion response without a usable reply.
// Message carries the provider's own error text when it sent one.
type UpstreamError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode != 0 && e.StatusCode != http.StatusOK {
		return fmt.Sprintf("completion api http %d: %s", e.StatusCode, e.Message)
	}
	return e.Message
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// OpenAIConfig configures an OpenAI-compatible chat completions model.
type OpenAIConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature *float32
	TopP        *float32
	MaxTokens   *int
	Timeout     time.Duration
	HTTPClient  *http.Client
}

// OpenAIChatModel wraps the eino-ext OpenAI model and turns provider
// failures and empty replies into *UpstreamError.
type OpenAIChatModel struct {
	inner model.ChatModel
}

var _ model.ChatModel = (*OpenAIChatModel)(nil)

// NewOpenAIChatModel validates cfg and builds the eino-ext OpenAI model.
func NewOpenAIChatModel(ctx context.Context, cfg OpenAIConfig) (*OpenAIChatModel, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrAPIKeyRequired
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultOpenAIBaseURL
	}
	modelName := cfg.Model
	if modelName == "" {
		modelName = defaultOpenAIModel
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	inner, err := einoopenai.NewChatModel(ctx, &einoopenai.ChatModelConfig{
		APIKey:      cfg.APIKey,
		BaseURL:     baseURL,
		Model:       modelName,
		Temperature: cfg.Temperature,
		TopP:        cfg.TopP,
		MaxTokens:   cfg.MaxTokens,
		Timeout:     timeout,
		HTTPClient:  cfg.HTTPClient,
	})
	if err != nil {
		return nil, fmt.Errorf("create openai chat model: %w", err)
	}
	return &OpenAIChatModel{inner: inner}, nil
}

// Generate sends input as one chat completions request.
func (m *OpenAIChatModel) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	msg, err := m.inner.Generate(ctx, input, opts...)
	if err != nil {
		return nil, upstreamError(err)
	}
	if msg == nil || msg.Content == "" {
		return nil, &UpstreamError{Message: noReplyMessage}
	}
	return msg, nil
}

// Stream satisfies model.ChatModel with a single-chunk stream.
func (m *OpenAIChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	msg, err := m.Generate(ctx, input, opts...)
	if err != nil {
		return nil, err
	}
	return schema.StreamReaderFromArray([]*schema.Message{msg}), nil
}

// BindTools is unsupported; the help desk never offers tools to the model.
func (m *OpenAIChatModel) BindTools(_ []*schema.ToolInfo) error {
	return ErrToolsNotSupported
}

// upstreamError classifies a failed call. Provider error bodies keep their
// message, transport and context failures pass through, anything else means
// the provider answered without a usable reply.
func upstreamError(err error) error {
	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) {
		message := apiErr.Message
		if message == "" {
			message = http.StatusText(apiErr.HTTPStatusCode)
		}
		return &UpstreamError{StatusCode: apiErr.HTTPStatusCode, Message: message, Err: err}
	}

	var reqErr *goopenai.RequestError
	if errors.As(err, &reqErr) {
		return &UpstreamError{StatusCode: reqErr.HTTPStatusCode, Message: http.StatusText(reqErr.HTTPStatusCode), Err: err}
	}

	var netErr *url.Error
	if errors.As(err, &netErr) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("call completion api: %w", err)
	}

	return &UpstreamError{Message: noReplyMessage, Err: err}
}
