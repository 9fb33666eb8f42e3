package app

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pdfsummarizer/core/internal/middleware"
	"github.com/pdfsummarizer/core/internal/modules/export"
	"github.com/pdfsummarizer/core/internal/modules/gateway"
	"github.com/pdfsummarizer/core/internal/modules/history"
	"github.com/pdfsummarizer/core/internal/modules/pipeline"
	"github.com/pdfsummarizer/core/internal/modules/preference"
	"github.com/pdfsummarizer/core/internal/pkg/response"
)

const appVersion = "1.0.0"

func (a *App) registerRoutes() {
	r := a.router

	r.NoRoute(func(c *gin.Context) {
		response.NotFound(c)
	})
	r.NoMethod(func(c *gin.Context) {
		response.Error(c, http.StatusMethodNotAllowed, "Method not allowed")
	})

	root := r.Group("")

	root.GET("/", func(c *gin.Context) {
		c.PureJSON(http.StatusOK, gin.H{
			"name":     "pdf-summarizer",
			"version":  appVersion,
			"provider": a.cfg.Summarizer.Provider,
			"model":    a.cfg.Summarizer.Model,
			"uptime":   humanizeDuration(time.Since(a.started)),
		})
	})
	root.GET("/ping", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"data": "pong"}) })
	root.GET("/health", a.health)

	var uploadGuards []gin.HandlerFunc
	if a.rc != nil && a.cfg.Redis.RateLimitPerMinute > 0 {
		uploadGuards = append(uploadGuards, middleware.RateLimit(a.rc, a.cfg.Redis.RateLimitPerMinute, a.logger.Named("RateLimit")))
	}
	pipeline.NewHandler(a.pipeline, pipeline.Options{
		UploadDir:         a.cfg.UploadDir(),
		MaxUploadBytes:    a.cfg.MaxUploadBytes(),
		AllowedExtensions: a.cfg.Upload.AllowedExtensions,
	}, a.logger.Named("Pipeline")).RegisterRoutes(root, uploadGuards...)

	history.NewHandler(a.history, a.logger.Named("History")).RegisterRoutes(root)
	export.NewHandler(a.logger.Named("Export")).RegisterRoutes(root)
	preference.NewHandler(a.sessions, a.cfg.DefaultTheme, a.logger.Named("Preference")).RegisterRoutes(root)
	gateway.RegisterRoutes(root, a.hub)
}

// GET /health reports database reachability and background job state.
func (a *App) health(c *gin.Context) {
	status := http.StatusOK
	dbState := "ok"
	if sqlDB, err := a.db.DB(); err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
		status = http.StatusServiceUnavailable
		dbState = "unavailable"
	}

	jobs := make([]interface{}, 0, 2)
	for _, name := range []string{jobSweepUploads, jobBackup} {
		if snap, err := a.sched.Status(name); err == nil {
			jobs = append(jobs, snap)
		}
	}

	c.JSON(status, gin.H{
		"database": dbState,
		"clients":  a.hub.ClientCount(),
		"jobs":     jobs,
	})
}
