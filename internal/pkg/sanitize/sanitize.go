package sanitize

import (
	"strings"

	"go.uber.org/zap"
)

type pattern struct {
	match string
	safe  string
}

// clientSafePatterns is checked in order; the first match wins.
var clientSafePatterns = []pattern{
	{"rate limit", "rate limit exceeded"},
	{"resource_exhausted", "quota exceeded"},
	{"quota", "quota exceeded"},
	{"deadline exceeded", "request timed out"},
	{"timeout", "request timed out"},
	{"context canceled", "request cancelled"},
	{"api key", "authentication failed with provider"},
	{"invalid api", "authentication failed with provider"},
	{"unauthorized", "authentication failed with provider"},
	{"permission_denied", "access denied by provider"},
	{"forbidden", "access denied by provider"},
}

// Fallback is returned for errors that match no known pattern.
const Fallback = "internal server error"

// ForClient converts an internal error to a client-safe message. The original is logged.
func ForClient(log *zap.Logger, err error) string {
	return forClient(log, err, Fallback)
}

// ProviderForClient is ForClient for upstream model failures.
func ProviderForClient(log *zap.Logger, err error) string {
	return forClient(log, err, "summarization provider temporarily unavailable")
}

func forClient(log *zap.Logger, err error, fallback string) string {
	if err == nil {
		return ""
	}
	if log == nil {
		log = zap.NewNop()
	}

	lower := strings.ToLower(err.Error())
	for _, p := range clientSafePatterns {
		if strings.Contains(lower, p.match) {
			log.Debug("sanitizing error for client",
				zap.String("original", err.Error()),
				zap.String("sanitized", p.safe),
			)
			return p.safe
		}
	}

	log.Error("internal error (sanitized for client)", zap.Error(err))
	return fallback
}
