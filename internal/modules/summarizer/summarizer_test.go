package summarizer

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/pdfsummarizer/core/internal/pkg/retry"
)

type scriptedProvider struct {
	results []error
	reply   string
	prompts []string
}

func (p *scriptedProvider) Name() string { return "fake" }

func (p *scriptedProvider) Generate(_ context.Context, prompt string) (string, error) {
	p.prompts = append(p.prompts, prompt)
	n := len(p.prompts) - 1
	if n < len(p.results) && p.results[n] != nil {
		return "", p.results[n]
	}
	return p.reply, nil
}

func testPolicy() retry.Policy {
	return retry.Policy{Timeout: time.Second, MaxAttempts: 3, BaseDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond}
}

func TestParseStyle(t *testing.T) {
	cases := map[string]Style{
		"brief":     StyleBrief,
		" Academic": StyleAcademic,
		"bullet":    StyleBullet,
		"detailed":  StyleDetailed,
		"standard":  StyleStandard,
		"":          StyleStandard,
		"haiku":     StyleStandard,
	}
	for in, want := range cases {
		if got := ParseStyle(in); got != want {
			t.Errorf("ParseStyle(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestBuildPrompt(t *testing.T) {
	got := BuildPrompt(StyleBrief, "Hello world.")
	want := "Provide a very concise 3-sentence summary of the following document.\n\nHello world."
	if got != want {
		t.Fatalf("BuildPrompt() = %q", got)
	}
	if !strings.HasPrefix(BuildPrompt(Style("unknown"), "x"), promptTemplates[StyleStandard]) {
		t.Fatal("unknown style should use the standard template")
	}
	for _, s := range Styles() {
		if promptTemplates[s] == "" {
			t.Errorf("style %q has no template", s)
		}
	}
}

func TestSummarizeSuccessAfterRetry(t *testing.T) {
	p := &scriptedProvider{results: []error{errors.New("503")}, reply: "A short summary."}
	svc := NewService(p, testPolicy(), nil)

	got, err := svc.Summarize(context.Background(), "Hello world. Foo bar.", StyleBrief)
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if got != "A short summary." {
		t.Fatalf("Summarize() = %q", got)
	}
	if len(p.prompts) != 2 {
		t.Fatalf("provider called %d times, want 2", len(p.prompts))
	}
	if !strings.HasSuffix(p.prompts[0], "\n\nHello world. Foo bar.") {
		t.Fatalf("prompt = %q", p.prompts[0])
	}
}

func TestSummarizeReturnsTypedError(t *testing.T) {
	boom := errors.New("upstream down")
	p := &scriptedProvider{results: []error{boom, boom, boom}}
	svc := NewService(p, testPolicy(), nil)

	got, err := svc.Summarize(context.Background(), "text", StyleStandard)
	if got != "" {
		t.Fatalf("Summarize() = %q, want empty", got)
	}
	var sErr *Error
	if !errors.As(err, &sErr) {
		t.Fatalf("error %T is not *Error", err)
	}
	if sErr.Attempts != 3 || sErr.Provider != "fake" || !errors.Is(err, boom) {
		t.Fatalf("error = %+v", sErr)
	}
}

func TestSummarizePermanentErrorNotRetried(t *testing.T) {
	p := &scriptedProvider{results: []error{retry.Permanent(errors.New("401 invalid api key"))}}
	svc := NewService(p, testPolicy(), nil)

	_, err := svc.Summarize(context.Background(), "text", StyleStandard)
	var sErr *Error
	if !errors.As(err, &sErr) || sErr.Attempts != 1 {
		t.Fatalf("error = %v", err)
	}
	if len(p.prompts) != 1 {
		t.Fatalf("provider called %d times, want 1", len(p.prompts))
	}
}

func TestSummarizeEmptyText(t *testing.T) {
	p := &scriptedProvider{reply: "x"}
	_, err := NewService(p, testPolicy(), nil).Summarize(context.Background(), "  ", StyleBrief)
	var sErr *Error
	if !errors.As(err, &sErr) {
		t.Fatalf("error = %v, want *Error", err)
	}
	if len(p.prompts) != 0 {
		t.Fatal("provider should not be called for empty text")
	}
}

func TestNewProviderValidation(t *testing.T) {
	if _, err := NewProvider(context.Background(), ProviderConfig{Type: "openai"}); err == nil {
		t.Fatal("missing api key should fail")
	}
	if _, err := NewProvider(context.Background(), ProviderConfig{Type: "cohere", APIKey: "k"}); err == nil {
		t.Fatal("unknown provider should fail")
	}
	p, err := NewProvider(context.Background(), ProviderConfig{Type: "anthropic", APIKey: "k", Model: "claude-3-5-haiku-latest"})
	if err != nil {
		t.Fatalf("NewProvider(anthropic) error = %v", err)
	}
	if p.Name() != "anthropic" {
		t.Fatalf("Name() = %q", p.Name())
	}
}

func TestNormalizeOpenAIBaseURL(t *testing.T) {
	cases := map[string]string{
		"":                          "",
		"https://api.example.com":   "https://api.example.com/v1",
		"https://api.example.com/":  "https://api.example.com/v1",
		"https://gw.example.com/v1": "https://gw.example.com/v1",
		"https://gw.example.com/ai": "https://gw.example.com/ai/v1",
	}
	for in, want := range cases {
		if got := normalizeOpenAIBaseURL(in); got != want {
			t.Errorf("normalizeOpenAIBaseURL(%q) = %q, want %q", in, got, want)
		}
	}
}
