package summarizer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pdfsummarizer/core/internal/pkg/retry"
	"go.uber.org/zap"
)

// Error is returned when no summary could be produced.
type Error struct {
	Provider string
	Attempts int
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("summarize via %s failed after %d attempt(s): %v", e.Provider, e.Attempts, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Service turns document text into a summary with one provider and a retry policy.
type Service struct {
	provider Provider
	policy   retry.Policy
	logger   *zap.Logger
}

func NewService(provider Provider, policy retry.Policy, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{provider: provider, policy: policy, logger: logger}
}

// Summarize returns the generated summary, or an *Error.
func (s *Service) Summarize(ctx context.Context, text string, style Style) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", &Error{Provider: s.provider.Name(), Err: errors.New("empty document text")}
	}
	prompt := BuildPrompt(style, text)

	var summary string
	attempts, err := s.policy.Do(ctx, s.logger.With(zap.String("provider", s.provider.Name())), func(ctx context.Context) error {
		out, err := s.provider.Generate(ctx, prompt)
		if err != nil {
			return err
		}
		summary = out
		return nil
	})
	if err != nil {
		return "", &Error{Provider: s.provider.Name(), Attempts: attempts, Err: err}
	}

	s.logger.Info("summary generated",
		zap.String("provider", s.provider.Name()),
		zap.String("style", string(style)),
		zap.Int("attempts", attempts),
		zap.Int("prompt_runes", len([]rune(prompt))),
	)
	return summary, nil
}
