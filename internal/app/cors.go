package app

import (
	"net/url"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/pdfsummarizer/core/internal/config"
	"github.com/pdfsummarizer/core/internal/middleware"
)

// corsConfig allows every origin in development or when no origins are configured.
// Otherwise each configured entry is matched against the request origin's host.
func corsConfig(cfg *config.AppConfig) cors.Config {
	c := cors.Config{
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", middleware.HeaderRequestID},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", middleware.HeaderRequestID},
		AllowCredentials: true,
	}
	if cfg.IsDev() || len(cfg.AllowedOrigins) == 0 {
		c.AllowOriginFunc = func(string) bool { return true }
		return c
	}

	patterns := make([]string, 0, len(cfg.AllowedOrigins))
	for _, p := range cfg.AllowedOrigins {
		patterns = append(patterns, strings.ToLower(extractOriginHost(p)))
	}
	c.AllowOriginFunc = func(origin string) bool {
		host := strings.ToLower(extractOriginHost(origin))
		for _, pattern := range patterns {
			if matchOriginPattern(pattern, host) {
				return true
			}
		}
		return false
	}
	return c
}

// extractOriginHost returns host[:port] of an origin URL, or the input when it has no scheme.
func extractOriginHost(origin string) string {
	if !strings.Contains(origin, "://") {
		return origin
	}
	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		return origin
	}
	return u.Host
}

// matchOriginPattern supports exact hosts, "*.domain" for subdomains and "host:*" for any port.
func matchOriginPattern(pattern, host string) bool {
	switch {
	case pattern == host:
		return true
	case strings.HasPrefix(pattern, "*."):
		return strings.HasSuffix(host, pattern[1:])
	case strings.HasSuffix(pattern, ":*"):
		return strings.HasPrefix(host, strings.TrimSuffix(pattern, "*"))
	default:
		return false
	}
}
