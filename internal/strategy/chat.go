package strategy

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ChatOptions configures the chat-completions client shared by the planner
// and the consistency evaluator.
type ChatOptions struct {
	APIKey       string
	Model        string
	BaseURL      string
	Organization string
	HTTPClient   *http.Client
	OnFallback   func(reason string, err error)
}

// openAIChat sends one system+user exchange and returns the message text.
type openAIChat struct {
	apiKey       string
	model        string
	baseURL      string
	organization string
	client       *http.Client
}

// chatError carries the fallback reason of a failed exchange.
type chatError struct {
	reason string
	err    error
}

func (e *chatError) Error() string {
	return fmt.Sprintf("%s: %v", e.reason, e.err)
}

func (e *chatError) Unwrap() error { return e.err }

var errMissingAPIKey = errors.New("api key not configured")

func newOpenAIChat(apiKey, model, baseURL, organization string, client *http.Client) openAIChat {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	if client == nil {
		client = &http.Client{Timeout: openAIDefaultTimeout}
	}
	return openAIChat{
		apiKey:       strings.TrimSpace(apiKey),
		model:        model,
		baseURL:      baseURL,
		organization: strings.TrimSpace(organization),
		client:       client,
	}
}

func newChatFromOptions(opts ChatOptions) openAIChat {
	model, _ := normalizeOpenAIModel(opts.Model)
	return newOpenAIChat(opts.APIKey, model, opts.BaseURL, opts.Organization, opts.HTTPClient)
}

// complete runs the exchange in JSON mode. Failures are *chatError values.
func (c openAIChat) complete(ctx context.Context, system, user string, temperature float64) (string, error) {
	if c.apiKey == "" {
		return "", &chatError{reason: "missing_api_key", err: errMissingAPIKey}
	}
	payload := openAIChatRequest{
		Model:          c.model,
		Temperature:    temperature,
		ResponseFormat: &openAIFormat{Type: "json_object"},
		Messages: []openAIMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		return "", &chatError{reason: "encode_request", err: err}
	}
	endpoint := fmt.Sprintf("%s/chat/completions", c.baseURL)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &buf)
	if err != nil {
		return "", &chatError{reason: "build_request", err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	if c.organization != "" {
		httpReq.Header.Set("OpenAI-Organization", c.organization)
	}
	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", &chatError{reason: "http_request", err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 300 {
		return "", &chatError{reason: fmt.Sprintf("http_%d", resp.StatusCode), err: fmt.Errorf("openai status %d", resp.StatusCode)}
	}
	var out openAIChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", &chatError{reason: "decode_response", err: err}
	}
	if len(out.Choices) == 0 {
		return "", &chatError{reason: "empty_choices", err: errors.New("no choices")}
	}
	text := strings.TrimSpace(out.Choices[0].Message.Content)
	if text == "" {
		return "", &chatError{reason: "empty_response", err: errors.New("empty response")}
	}
	return text, nil
}

// chatReason extracts the fallback reason of a complete error.
func chatReason(err error) string {
	var ce *chatError
	if errors.As(err, &ce) {
		return ce.reason
	}
	return "chat_failed"
}
