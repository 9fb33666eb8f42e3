package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/pdfsummarizer/core/internal/config"
	"github.com/pdfsummarizer/core/internal/database"
	"github.com/pdfsummarizer/core/internal/middleware"
	"github.com/pdfsummarizer/core/internal/modules/backup"
	"github.com/pdfsummarizer/core/internal/modules/extract"
	"github.com/pdfsummarizer/core/internal/modules/gateway"
	"github.com/pdfsummarizer/core/internal/modules/history"
	"github.com/pdfsummarizer/core/internal/modules/pipeline"
	"github.com/pdfsummarizer/core/internal/modules/summarizer"
	pkgcron "github.com/pdfsummarizer/core/internal/pkg/cron"
	jwtpkg "github.com/pdfsummarizer/core/internal/pkg/jwt"
	pkgredis "github.com/pdfsummarizer/core/internal/pkg/redis"
	"github.com/pdfsummarizer/core/internal/pkg/session"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// App holds all application dependencies.
type App struct {
	cfg      *config.AppConfig
	router   *gin.Engine
	db       *gorm.DB
	rc       *pkgredis.Client
	hub      *gateway.Hub
	history  *history.Service
	pipeline *pipeline.Service
	sessions *session.Store
	logger   *zap.Logger
	cancel   context.CancelFunc
	sched    *pkgcron.Scheduler
	started  time.Time
}

// Option overrides a dependency New would otherwise build from config.
type Option func(*options)

type options struct {
	db        *gorm.DB
	provider  summarizer.Provider
	extractor pipeline.Extractor
}

// WithDB uses an already opened and migrated database.
func WithDB(db *gorm.DB) Option { return func(o *options) { o.db = db } }

// WithProvider replaces the configured summarization provider.
func WithProvider(p summarizer.Provider) Option { return func(o *options) { o.provider = p } }

// WithExtractor replaces the default layout/pdftotext extractor.
func WithExtractor(e pipeline.Extractor) Option { return func(o *options) { o.extractor = e } }

// New initializes the application: DB → Redis → services → routes → background jobs.
func New(logger *zap.Logger, cfg *config.AppConfig, opts ...Option) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if err := applyRuntimeSettings(cfg); err != nil {
		return nil, err
	}

	db := o.db
	if db == nil {
		var err error
		db, err = database.Connect(cfg)
		if err != nil {
			return nil, fmt.Errorf("database: %w", err)
		}
	}

	var rc *pkgredis.Client
	ctx, cancel := context.WithCancel(context.Background())
	// fail releases everything opened so far when a later setup step errors.
	fail := func(err error) (*App, error) {
		cancel()
		if rc != nil {
			if cerr := rc.Close(); cerr != nil {
				logger.Warn("redis close failed", zap.Error(cerr))
			}
		}
		if sqlDB, derr := db.DB(); derr == nil {
			_ = sqlDB.Close()
		}
		return nil, err
	}

	if cfg.Redis.URL != "" {
		var err error
		rc, err = pkgredis.Connect(cfg.Redis.URL)
		if err != nil {
			return fail(fmt.Errorf("redis: %w", err))
		}
	}

	provider := o.provider
	if provider == nil {
		var err error
		provider, err = summarizer.NewProvider(ctx, summarizer.ProviderConfig{
			Type:      cfg.Summarizer.Provider,
			APIKey:    cfg.Summarizer.APIKey,
			Model:     cfg.Summarizer.Model,
			Endpoint:  cfg.Summarizer.Endpoint,
			MaxOutput: cfg.Summarizer.MaxOutput,
		})
		if err != nil {
			return fail(fmt.Errorf("summarizer: %w", err))
		}
	}
	extractor := o.extractor
	if extractor == nil {
		extractor = extract.NewExtractor(logger.Named("Extract"), extract.Options{
			PageDelay:     cfg.Extract.PageDelay,
			PdftotextPath: cfg.Extract.PdftotextPath,
		})
	}

	signer, err := jwtpkg.NewSigner(cfg.SecretKey)
	if err != nil {
		return fail(fmt.Errorf("session signer: %w", err))
	}

	if cfg.IsDev() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.MaxMultipartMemory = cfg.MaxUploadBytes()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(logger.Named("HTTP")))
	router.Use(cors.New(corsConfig(cfg)))

	hub := gateway.NewHub(rc, logger.Named("Gateway"))
	go hub.Run(ctx)

	historySvc := history.NewService(db)
	summarizerSvc := summarizer.NewService(provider, cfg.Summarizer.RetryPolicy(), logger.Named("Summarizer"))
	pipelineSvc := pipeline.NewService(extractor, summarizerSvc, historySvc, hub, cfg.Extract.MaxTextLength, logger.Named("Pipeline"))

	cronLogger := logger.Named("CronService")
	a := &App{
		cfg:      cfg,
		router:   router,
		db:       db,
		rc:       rc,
		hub:      hub,
		history:  historySvc,
		pipeline: pipelineSvc,
		sessions: session.NewStore(signer, !cfg.IsDev()),
		logger:   logger,
		cancel:   cancel,
		sched:    pkgcron.New(cronLogger),
		started:  time.Now(),
	}

	var backupSvc *backup.Service
	if cfg.Backup.Enabled() {
		uploader, err := backup.NewS3Uploader(cfg.Backup)
		if err != nil {
			return fail(fmt.Errorf("backup: %w", err))
		}
		backupSvc = backup.NewService(historySvc, uploader, cfg.Backup.Prefix, logger.Named("Backup"))
	}
	registerCronJobs(a.sched, cfg, backupSvc, cronLogger)
	go a.sched.Start(ctx)

	a.registerRoutes()
	return a, nil
}

// Addr returns the listen address.
func (a *App) Addr() string { return fmt.Sprintf(":%d", a.cfg.Port) }

// Router returns the HTTP handler.
func (a *App) Router() http.Handler { return a.router }

// Shutdown stops background goroutines and releases connections.
func (a *App) Shutdown() {
	a.cancel()
	if a.rc != nil {
		if err := a.rc.Close(); err != nil {
			a.logger.Warn("redis close failed", zap.Error(err))
		}
	}
	if sqlDB, err := a.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
