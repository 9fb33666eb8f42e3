package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/pdfsummarizer/core/internal/pkg/retry"
	"gopkg.in/yaml.v3"
)

// AppConfig holds runtime startup configuration. Values come from defaults, then an
// optional YAML file, then the environment.
type AppConfig struct {
	Port           int              `yaml:"port"            env:"PORT"`
	Env            string           `yaml:"env"             env:"APP_ENV"`
	SecretKey      string           `yaml:"secret_key"      env:"SECRET_KEY"`
	Timezone       string           `yaml:"timezone"        env:"TIMEZONE"`
	AllowedOrigins []string         `yaml:"allowed_origins" env:"ALLOWED_ORIGINS"`
	DefaultTheme   string           `yaml:"default_theme"   env:"DEFAULT_THEME"`
	Database       DatabaseConfig   `yaml:"database"`
	Redis          RedisConfig      `yaml:"redis"`
	Paths          PathsConfig      `yaml:"paths"`
	Upload         UploadConfig     `yaml:"upload"`
	Extract        ExtractConfig    `yaml:"extract"`
	Summarizer     SummarizerConfig `yaml:"summarizer"`
	Backup         BackupConfig     `yaml:"backup"`
}

type DatabaseConfig struct {
	Driver string `yaml:"driver" env:"DB_DRIVER"` // sqlite | mysql
	Path   string `yaml:"path"   env:"DB_PATH"`   // sqlite file
	DSN    string `yaml:"dsn"    env:"DB_DSN"`    // mysql DSN
}

type RedisConfig struct {
	URL string `yaml:"url" env:"REDIS_URL"`
	// RateLimitPerMinute caps POST /summarize per client IP; 0 disables. Needs Redis.
	RateLimitPerMinute int `yaml:"rate_limit_per_minute" env:"RATE_LIMIT_PER_MINUTE"`
}

type PathsConfig struct {
	Logs    string `yaml:"logs"    env:"LOG_DIR"`
	Uploads string `yaml:"uploads" env:"UPLOAD_DIR"`
}

type UploadConfig struct {
	MaxFileSizeMB     int           `yaml:"max_file_size_mb"   env:"MAX_FILE_SIZE_MB"`
	AllowedExtensions []string      `yaml:"allowed_extensions" env:"ALLOWED_EXTENSIONS"`
	StaleAfter        time.Duration `yaml:"stale_after"        env:"UPLOAD_STALE_AFTER"`
}

type ExtractConfig struct {
	PageDelay     time.Duration `yaml:"page_delay"      env:"EXTRACT_PAGE_DELAY"`
	PdftotextPath string        `yaml:"pdftotext_path"  env:"PDFTOTEXT_PATH"`
	MaxTextLength int           `yaml:"max_text_length" env:"MAX_TEXT_LENGTH"`
}

type SummarizerConfig struct {
	Provider     string        `yaml:"provider"      env:"SUMMARIZER_PROVIDER"` // gemini | openai | anthropic
	APIKey       string        `yaml:"api_key"       env:"SUMMARIZER_API_KEY"`
	GeminiAPIKey string        `yaml:"-"             env:"GEMINI_API_KEY"`
	Model        string        `yaml:"model"         env:"GEMINI_MODEL_ID"`
	Endpoint     string        `yaml:"endpoint"      env:"SUMMARIZER_ENDPOINT"`
	Timeout      time.Duration `yaml:"timeout"       env:"SUMMARIZER_TIMEOUT"`
	MaxAttempts  int           `yaml:"max_attempts"  env:"SUMMARIZER_MAX_ATTEMPTS"`
	BaseDelay    time.Duration `yaml:"base_delay"    env:"SUMMARIZER_BASE_DELAY"`
	MaxDelay     time.Duration `yaml:"max_delay"     env:"SUMMARIZER_MAX_DELAY"`
	MaxOutput    int64         `yaml:"max_output_tokens" env:"SUMMARIZER_MAX_OUTPUT_TOKENS"`
}

// RetryPolicy returns the provider call policy, falling back to retry.DefaultPolicy for unset fields.
func (s SummarizerConfig) RetryPolicy() retry.Policy {
	policy := retry.DefaultPolicy()
	if s.Timeout > 0 {
		policy.Timeout = s.Timeout
	}
	if s.MaxAttempts > 0 {
		policy.MaxAttempts = s.MaxAttempts
	}
	if s.BaseDelay > 0 {
		policy.BaseDelay = s.BaseDelay
	}
	if s.MaxDelay > 0 {
		policy.MaxDelay = s.MaxDelay
	}
	return policy
}

// BackupConfig enables the periodic history snapshot upload to S3 when Bucket is set.
type BackupConfig struct {
	Bucket          string        `yaml:"bucket"            env:"BACKUP_S3_BUCKET"`
	Region          string        `yaml:"region"            env:"BACKUP_S3_REGION"`
	Endpoint        string        `yaml:"endpoint"          env:"BACKUP_S3_ENDPOINT"`
	AccessKeyID     string        `yaml:"access_key_id"     env:"BACKUP_S3_ACCESS_KEY_ID"`
	SecretAccessKey string        `yaml:"secret_access_key" env:"BACKUP_S3_SECRET_ACCESS_KEY"`
	PathStyle       bool          `yaml:"path_style"        env:"BACKUP_S3_PATH_STYLE"`
	Prefix          string        `yaml:"prefix"            env:"BACKUP_S3_PREFIX"`
	Interval        time.Duration `yaml:"interval"          env:"BACKUP_INTERVAL"`
}

// Enabled reports whether enough S3 settings are present to run backups.
func (b BackupConfig) Enabled() bool {
	return strings.TrimSpace(b.Bucket) != "" && strings.TrimSpace(b.Region) != ""
}

var ErrMissingAPIKey = errors.New("summarizer api key is required (set GEMINI_API_KEY or SUMMARIZER_API_KEY)")

// Load builds the configuration. configPath may point to a missing file only when it is the
// default path.
func Load(configPath string) (*AppConfig, error) {
	cfg := defaultAppConfig()

	path := strings.TrimSpace(configPath)
	if path == "" {
		path = DefaultConfigPath
	}
	content, err := os.ReadFile(path)
	switch {
	case err == nil:
		decoder := yaml.NewDecoder(bytes.NewReader(content))
		decoder.KnownFields(true)
		// an empty file decodes to io.EOF and means no overrides
		if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("parse config file %q: %w", path, err)
		}
	case os.IsNotExist(err) && path == DefaultConfigPath:
		// env-only deployment
	default:
		return nil, fmt.Errorf("read config file %q: %w", path, err)
	}

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	normalize(&cfg)
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func defaultAppConfig() AppConfig {
	policy := retry.DefaultPolicy()
	return AppConfig{
		Port:         defaultPort,
		Env:          defaultEnv,
		DefaultTheme: defaultTheme,
		Database: DatabaseConfig{
			Driver: defaultDBDriver,
			Path:   defaultDBPath,
		},
		Paths: PathsConfig{
			Logs:    defaultLogDir,
			Uploads: defaultUploadDir,
		},
		Upload: UploadConfig{
			MaxFileSizeMB:     defaultMaxFileSizeMB,
			AllowedExtensions: []string{"pdf"},
			StaleAfter:        time.Hour,
		},
		Extract: ExtractConfig{
			PageDelay:     defaultPageDelay,
			PdftotextPath: defaultPdftotext,
			MaxTextLength: defaultMaxTextLength,
		},
		Summarizer: SummarizerConfig{
			Provider:    defaultProvider,
			Timeout:     policy.Timeout,
			MaxAttempts: policy.MaxAttempts,
			BaseDelay:   policy.BaseDelay,
			MaxDelay:    policy.MaxDelay,
			MaxOutput:   2048,
		},
		Backup: BackupConfig{
			Prefix:   defaultBackupPrefix,
			Interval: defaultBackupEvery,
		},
	}
}

func (c *AppConfig) validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d, expected 1-65535", c.Port)
	}
	if c.Summarizer.APIKey == "" {
		return ErrMissingAPIKey
	}
	switch c.Summarizer.Provider {
	case "gemini", "openai", "anthropic":
	default:
		return fmt.Errorf("unsupported summarizer provider %q", c.Summarizer.Provider)
	}
	switch c.Database.Driver {
	case DriverSQLite:
	case DriverMySQL:
		if c.Database.DSN == "" {
			return errors.New("database.dsn is required for the mysql driver")
		}
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.Upload.MaxFileSizeMB < 1 {
		return fmt.Errorf("invalid max_file_size_mb %d", c.Upload.MaxFileSizeMB)
	}
	if c.Extract.MaxTextLength < 1 {
		return fmt.Errorf("invalid max_text_length %d", c.Extract.MaxTextLength)
	}
	if c.Summarizer.MaxAttempts < 1 {
		return fmt.Errorf("invalid summarizer max_attempts %d", c.Summarizer.MaxAttempts)
	}
	return nil
}

func (c *AppConfig) IsDev() bool {
	return strings.EqualFold(c.Env, defaultEnv)
}

// MaxUploadBytes is the request body cap for uploads.
func (c *AppConfig) MaxUploadBytes() int64 {
	return int64(c.Upload.MaxFileSizeMB) * 1024 * 1024
}

func (c *AppConfig) LogDir() string {
	return ResolveRuntimePath(c.Paths.Logs, defaultLogDir)
}

func (c *AppConfig) UploadDir() string {
	return ResolveRuntimePath(c.Paths.Uploads, defaultUploadDir)
}

func (c *AppConfig) DatabasePath() string {
	return ResolveRuntimePath(c.Database.Path, defaultDBPath)
}
