package sanitize

import (
	"errors"
	"fmt"
	"testing"
)

func TestForClient(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "generic error returns generic message",
			err:      errors.New("open /var/data/instance/history.db: permission denied"),
			expected: Fallback,
		},
		{
			name:     "nil error returns empty",
			err:      nil,
			expected: "",
		},
		{
			name:     "api key error sanitized",
			err:      errors.New("invalid API key: AIzaSyXXXX"),
			expected: "authentication failed with provider",
		},
		{
			name:     "rate limit preserved",
			err:      errors.New("rate limit exceeded"),
			expected: "rate limit exceeded",
		},
		{
			name:     "wrapped deadline",
			err:      fmt.Errorf("attempt 3: %w", errors.New("context deadline exceeded")),
			expected: "request timed out",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ForClient(nil, tt.err)
			if result != tt.expected {
				t.Errorf("ForClient() = %q, want %q", result, tt.expected)
			}
		})
	}
}

func TestProviderForClientFallback(t *testing.T) {
	got := ProviderForClient(nil, errors.New("dial tcp 10.0.0.1:443: connection refused"))
	if got != "summarization provider temporarily unavailable" {
		t.Errorf("ProviderForClient() = %q", got)
	}
}
