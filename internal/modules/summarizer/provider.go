package summarizer

import (
	"context"
	"errors"
	"fmt"
	neturl "net/url"
	"strings"

	anthropicclient "github.com/anthropics/anthropic-sdk-go"
	anthropicoption "github.com/anthropics/anthropic-sdk-go/option"
	openaiclient "github.com/openai/openai-go/v2"
	openaioption "github.com/openai/openai-go/v2/option"
	"github.com/pdfsummarizer/core/internal/pkg/retry"
	jetai "go.jetify.com/ai"
	jetapi "go.jetify.com/ai/api"
	jetanthropic "go.jetify.com/ai/provider/anthropic"
	jetopenai "go.jetify.com/ai/provider/openai"
)

// Provider generates text for a prompt.
type Provider interface {
	Name() string
	Generate(ctx context.Context, prompt string) (string, error)
}

// ProviderConfig selects and configures a Provider.
type ProviderConfig struct {
	Type      string // gemini | openai | anthropic
	APIKey    string
	Model     string
	Endpoint  string
	MaxOutput int64
}

var errEmptyResponse = errors.New("empty response from model")

// NewProvider builds the provider named by cfg.Type.
func NewProvider(ctx context.Context, cfg ProviderConfig) (Provider, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("summarizer api key is empty")
	}
	switch normalizeProviderType(cfg.Type) {
	case "", "gemini":
		return NewGemini(ctx, cfg)
	case "openai":
		return newJetifyProvider("openai", buildOpenAIModel(cfg), cfg.MaxOutput), nil
	case "anthropic":
		return newJetifyProvider("anthropic", buildAnthropicModel(cfg), cfg.MaxOutput), nil
	default:
		return nil, fmt.Errorf("unsupported summarizer provider %q", cfg.Type)
	}
}

func normalizeProviderType(raw string) string {
	t := strings.ToLower(strings.TrimSpace(raw))
	t = strings.ReplaceAll(t, "_", "-")
	return strings.ReplaceAll(t, " ", "")
}

// jetifyProvider drives OpenAI and Anthropic models through go.jetify.com/ai.
type jetifyProvider struct {
	name      string
	model     jetapi.LanguageModel
	maxOutput int64
}

func newJetifyProvider(name string, model jetapi.LanguageModel, maxOutput int64) *jetifyProvider {
	if maxOutput <= 0 {
		maxOutput = 2048
	}
	return &jetifyProvider{name: name, model: model, maxOutput: maxOutput}
}

func (p *jetifyProvider) Name() string { return p.name }

func (p *jetifyProvider) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := jetai.GenerateText(
		ctx,
		[]jetapi.Message{&jetapi.UserMessage{Content: jetapi.ContentFromText(prompt)}},
		jetai.WithModel(p.model),
		jetai.WithMaxOutputTokens(int(p.maxOutput)),
	)
	if err != nil {
		return "", classify(err)
	}
	return extractTextFromResponse(resp)
}

func extractTextFromResponse(resp *jetapi.Response) (string, error) {
	if resp == nil {
		return "", errEmptyResponse
	}

	var full strings.Builder
	for _, block := range resp.Content {
		textBlock, ok := block.(*jetapi.TextBlock)
		if !ok || textBlock.Text == "" {
			continue
		}
		full.WriteString(textBlock.Text)
	}

	text := strings.TrimSpace(full.String())
	if text == "" {
		return "", errEmptyResponse
	}
	return text, nil
}

func buildOpenAIModel(cfg ProviderConfig) jetapi.LanguageModel {
	opts := []openaioption.RequestOption{
		openaioption.WithAPIKey(strings.TrimSpace(cfg.APIKey)),
		// retries are owned by retry.Policy
		openaioption.WithMaxRetries(0),
	}
	if normalized := normalizeOpenAIBaseURL(cfg.Endpoint); normalized != "" {
		opts = append(opts, openaioption.WithBaseURL(normalized))
	}

	client := openaiclient.NewClient(opts...)
	return jetopenai.NewLanguageModel(cfg.Model, jetopenai.WithClient(client))
}

func buildAnthropicModel(cfg ProviderConfig) jetapi.LanguageModel {
	opts := []anthropicoption.RequestOption{
		anthropicoption.WithAPIKey(strings.TrimSpace(cfg.APIKey)),
		anthropicoption.WithMaxRetries(0),
	}
	if endpoint := strings.TrimSpace(cfg.Endpoint); endpoint != "" {
		opts = append(opts, anthropicoption.WithBaseURL(strings.TrimRight(endpoint, "/")))
	}

	client := anthropicclient.NewClient(opts...)
	return jetanthropic.NewLanguageModel(cfg.Model, jetanthropic.WithClient(client))
}

func normalizeOpenAIBaseURL(raw string) string {
	base := strings.TrimSpace(raw)
	if base == "" {
		return ""
	}
	parsed, err := neturl.Parse(base)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return strings.TrimRight(base, "/")
	}

	path := strings.TrimRight(parsed.Path, "/")
	if !strings.HasSuffix(path, "/v1") {
		if path == "" {
			path = "/v1"
		} else {
			path += "/v1"
		}
	}
	parsed.Path = path
	return strings.TrimRight(parsed.String(), "/")
}

// classify marks client errors that will not succeed on retry.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var oaErr *openaiclient.Error
	if errors.As(err, &oaErr) && permanentStatus(oaErr.StatusCode) {
		return retry.Permanent(err)
	}
	var anErr *anthropicclient.Error
	if errors.As(err, &anErr) && permanentStatus(anErr.StatusCode) {
		return retry.Permanent(err)
	}
	return err
}

func permanentStatus(code int) bool {
	switch code {
	case 400, 401, 403, 404:
		return true
	}
	return false
}
