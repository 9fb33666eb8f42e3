package config

import "time"

const (
	// DefaultConfigPath is used when --config is not provided. A missing file is not an error.
	DefaultConfigPath = "config.yml"

	defaultPort          = 5001
	defaultEnv           = "development"
	defaultDBDriver      = DriverSQLite
	defaultDBPath        = "instance/history.db"
	defaultUploadDir     = "static/uploads"
	defaultLogDir        = "logs"
	defaultMaxFileSizeMB = 10
	defaultMaxTextLength = 8000
	defaultProvider      = "gemini"
	defaultGeminiModel   = "gemini-2.5-flash"
	defaultPageDelay     = 100 * time.Millisecond
	defaultPdftotext     = "pdftotext"
	defaultTheme         = "light"
	defaultBackupEvery   = 24 * time.Hour
	defaultBackupPrefix  = "docsum/history"

	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
)
