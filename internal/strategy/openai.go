package strategy

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// OpenAIOptions configures OpenAIResolver.
type OpenAIOptions struct {
	APIKey       string
	Model        string
	BaseURL      string
	Organization string
	HTTPClient   *http.Client
	Limits       Limits
	Fallback     Resolver
	OnFallback   func(reason string, err error)
	OnWarning    func(reason, detail string)
}

// OpenAIResolver asks a chat-completions model for the brief.
type OpenAIResolver struct {
	chat       openAIChat
	limits     Limits
	static     *StaticResolver
	fallback   Resolver
	onFallback func(reason string, err error)
}

const openAIDefaultTimeout = 15 * time.Second

const defaultOpenAIModel = "gpt-4o-mini"

const openAITemperature = 0.5

var openAIModelCanonical = map[string]string{
	"gpt-4o-mini":   "gpt-4o-mini",
	"gpt-4o":        "gpt-4o",
	"gpt-4.1-mini":  "gpt-4.1-mini",
	"gpt-3.5-turbo": "gpt-3.5-turbo",
}

var openAIModelAliases = map[string]string{
	"gpt4o-mini":             "gpt-4o-mini",
	"gpt4omini":              "gpt-4o-mini",
	"gpt-4o-mini-2024-07-18": "gpt-4o-mini",
	"gpt4o":                  "gpt-4o",
	"gpt-4.1mini":            "gpt-4.1-mini",
	"gpt-3.5":                "gpt-3.5-turbo",
	"gpt3.5":                 "gpt-3.5-turbo",
	"gpt-35-turbo":           "gpt-3.5-turbo",
}

type openAIChatRequest struct {
	Model          string          `json:"model"`
	Messages       []openAIMessage `json:"messages"`
	Temperature    float64         `json:"temperature,omitempty"`
	ResponseFormat *openAIFormat   `json:"response_format,omitempty"`
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIFormat struct {
	Type string `json:"type"`
}

type openAIChatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// NewOpenAIResolver builds the resolver. An empty API key is accepted: every
// call then degrades with reason missing_api_key.
func NewOpenAIResolver(opts OpenAIOptions) *OpenAIResolver {
	modelInput := strings.TrimSpace(opts.Model)
	model, normalizationReason := normalizeOpenAIModel(modelInput)
	if normalizationReason != "" && opts.OnWarning != nil {
		detail := fmt.Sprintf("requested=%s resolved=%s", coalesce(modelInput, defaultOpenAIModel), model)
		opts.OnWarning("model_"+normalizationReason, detail)
	}
	limits := opts.Limits.normalized()
	return &OpenAIResolver{
		chat:       newOpenAIChat(opts.APIKey, model, opts.BaseURL, opts.Organization, opts.HTTPClient),
		limits:     limits,
		static:     NewStaticResolver(limits),
		fallback:   opts.Fallback,
		onFallback: opts.OnFallback,
	}
}

// Resolve implements Resolver.
func (o *OpenAIResolver) Resolve(ctx context.Context, req Request) (*Result, error) {
	text, err := o.chat.complete(ctx, SystemInstruction(), BuildUserContent(req), openAITemperature)
	if err != nil {
		return o.useFallback(ctx, req, chatReason(err), err)
	}
	brief, err := briefFromPayload(text, o.static.Brief(req), o.limits.HeadlineMax)
	if err != nil {
		reason := "parse_payload"
		if errors.Is(err, errMissingFields) {
			reason = "missing_fields"
		}
		return o.useFallback(ctx, req, reason, err)
	}
	return &Result{
		Brief:    brief,
		Provider: openAIProviderName,
		Metadata: map[string]string{"model": o.chat.model},
	}, nil
}

func (o *OpenAIResolver) useFallback(ctx context.Context, req Request, reason string, fallbackErr error) (*Result, error) {
	if o.onFallback != nil {
		o.onFallback(reason, fallbackErr)
	}
	if o.fallback != nil {
		return degrade(ctx, o.fallback, req, reason)
	}
	return degrade(ctx, o.static, req, reason)
}

var _ Resolver = (*OpenAIResolver)(nil)

func normalizeOpenAIModel(name string) (string, string) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return defaultOpenAIModel, ""
	}
	normalized := strings.ToLower(trimmed)
	normalized = strings.ReplaceAll(normalized, "_", "-")
	normalized = strings.ReplaceAll(normalized, " ", "-")
	if canonical, ok := openAIModelCanonical[normalized]; ok {
		return canonical, ""
	}
	if alias, ok := openAIModelAliases[normalized]; ok {
		return alias, "alias"
	}
	return defaultOpenAIModel, "defaulted"
}
