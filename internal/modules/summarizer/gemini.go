package summarizer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pdfsummarizer/core/internal/pkg/retry"
	"google.golang.org/genai"
)

// Gemini calls the Gemini API through google.golang.org/genai.
type Gemini struct {
	client *genai.Client
	model  string
	config *genai.GenerateContentConfig
}

// NewGemini creates a Gemini provider.
func NewGemini(ctx context.Context, cfg ProviderConfig) (*Gemini, error) {
	clientCfg := &genai.ClientConfig{
		APIKey:  strings.TrimSpace(cfg.APIKey),
		Backend: genai.BackendGeminiAPI,
	}
	if endpoint := strings.TrimSpace(cfg.Endpoint); endpoint != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: strings.TrimRight(endpoint, "/") + "/"}
	}
	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	genCfg := &genai.GenerateContentConfig{}
	if cfg.MaxOutput > 0 {
		genCfg.MaxOutputTokens = int32(cfg.MaxOutput)
	}
	return &Gemini{client: client, model: cfg.Model, config: genCfg}, nil
}

func (g *Gemini) Name() string { return "gemini" }

func (g *Gemini) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), g.config)
	if err != nil {
		var apiErr genai.APIError
		if errors.As(err, &apiErr) && permanentStatus(apiErr.Code) {
			return "", retry.Permanent(err)
		}
		return "", err
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return "", errEmptyResponse
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", errEmptyResponse
	}
	return text, nil
}
