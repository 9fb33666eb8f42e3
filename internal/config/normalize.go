package config

import (
	"crypto/rand"
	"encoding/hex"
	"strings"

	"github.com/pdfsummarizer/core/internal/pkg/retry"
)

func normalize(cfg *AppConfig) {
	cfg.Env = normalizeEnv(cfg.Env)
	cfg.Timezone = strings.TrimSpace(cfg.Timezone)
	cfg.AllowedOrigins = normalizeOrigins(cfg.AllowedOrigins)
	cfg.DefaultTheme = strings.ToLower(strings.TrimSpace(cfg.DefaultTheme))
	if cfg.DefaultTheme == "" {
		cfg.DefaultTheme = defaultTheme
	}
	cfg.SecretKey = strings.TrimSpace(cfg.SecretKey)
	if cfg.SecretKey == "" {
		cfg.SecretKey = randomSecret()
	}

	cfg.Database = normalizeDatabaseConfig(cfg.Database)
	cfg.Redis.URL = normalizeRedisRawURL(cfg.Redis.URL)
	if cfg.Redis.RateLimitPerMinute < 0 {
		cfg.Redis.RateLimitPerMinute = 0
	}
	cfg.Upload.AllowedExtensions = normalizeExtensions(cfg.Upload.AllowedExtensions)
	cfg.Extract.PdftotextPath = strings.TrimSpace(cfg.Extract.PdftotextPath)
	if cfg.Extract.PdftotextPath == "" {
		cfg.Extract.PdftotextPath = defaultPdftotext
	}
	if cfg.Extract.PageDelay < 0 {
		cfg.Extract.PageDelay = 0
	}
	cfg.Summarizer = normalizeSummarizerConfig(cfg.Summarizer)
	cfg.Backup = normalizeBackupConfig(cfg.Backup)
}

func normalizeDatabaseConfig(cfg DatabaseConfig) DatabaseConfig {
	cfg.Driver = strings.ToLower(strings.TrimSpace(cfg.Driver))
	cfg.Path = strings.TrimSpace(cfg.Path)
	cfg.DSN = strings.TrimSpace(cfg.DSN)
	if cfg.Driver == "" || cfg.Driver == "sqlite3" {
		cfg.Driver = DriverSQLite
	}
	if cfg.Path == "" {
		cfg.Path = defaultDBPath
	}
	return cfg
}

func normalizeSummarizerConfig(cfg SummarizerConfig) SummarizerConfig {
	cfg.Provider = strings.ToLower(strings.TrimSpace(cfg.Provider))
	if cfg.Provider == "" {
		cfg.Provider = defaultProvider
	}
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	cfg.GeminiAPIKey = strings.TrimSpace(cfg.GeminiAPIKey)
	if cfg.APIKey == "" {
		cfg.APIKey = cfg.GeminiAPIKey
	}
	cfg.Endpoint = strings.TrimRight(strings.TrimSpace(cfg.Endpoint), "/")
	cfg.Model = strings.TrimSpace(cfg.Model)
	if cfg.Model == "" {
		cfg.Model = defaultModelFor(cfg.Provider)
	}
	defaults := retry.DefaultPolicy()
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaults.Timeout
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = defaults.BaseDelay
	}
	if cfg.MaxDelay < cfg.BaseDelay {
		cfg.MaxDelay = cfg.BaseDelay
	}
	if cfg.MaxOutput <= 0 {
		cfg.MaxOutput = 2048
	}
	return cfg
}

func defaultModelFor(provider string) string {
	switch provider {
	case "openai":
		return "gpt-4o-mini"
	case "anthropic":
		return "claude-3-5-haiku-latest"
	default:
		return defaultGeminiModel
	}
}

func normalizeBackupConfig(cfg BackupConfig) BackupConfig {
	cfg.Bucket = strings.TrimSpace(cfg.Bucket)
	cfg.Region = strings.TrimSpace(cfg.Region)
	cfg.Endpoint = strings.TrimRight(strings.TrimSpace(cfg.Endpoint), "/")
	cfg.AccessKeyID = strings.TrimSpace(cfg.AccessKeyID)
	cfg.SecretAccessKey = strings.TrimSpace(cfg.SecretAccessKey)
	cfg.Prefix = strings.Trim(strings.TrimSpace(cfg.Prefix), "/")
	if cfg.Prefix == "" {
		cfg.Prefix = defaultBackupPrefix
	}
	if cfg.Interval <= 0 {
		cfg.Interval = defaultBackupEvery
	}
	return cfg
}

func normalizeRedisRawURL(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	if strings.HasPrefix(trimmed, "redis://") || strings.HasPrefix(trimmed, "rediss://") {
		return trimmed
	}
	return "redis://" + trimmed
}

func normalizeOrigins(origins []string) []string {
	out := make([]string, 0, len(origins))
	for _, origin := range origins {
		trimmed := strings.TrimSpace(origin)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeExtensions(exts []string) []string {
	out := make([]string, 0, len(exts))
	for _, ext := range exts {
		trimmed := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return []string{"pdf"}
	}
	return out
}

func normalizeEnv(env string) string {
	trimmed := strings.ToLower(strings.TrimSpace(env))
	if trimmed == "" {
		return defaultEnv
	}
	return trimmed
}

func randomSecret() string {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "change-me"
	}
	return hex.EncodeToString(buf)
}
