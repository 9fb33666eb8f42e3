package app

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/pdfsummarizer/core/internal/config"
	"github.com/pdfsummarizer/core/internal/modules/backup"
	pkgcron "github.com/pdfsummarizer/core/internal/pkg/cron"
	"go.uber.org/zap"
)

const (
	jobSweepUploads = "sweep_uploads"
	jobBackup       = "backup_history"
)

// registerCronJobs registers all scheduled background jobs.
func registerCronJobs(sched *pkgcron.Scheduler, cfg *config.AppConfig, backupSvc *backup.Service, cronLogger *zap.Logger) {
	uploadDir := cfg.UploadDir()
	staleAfter := cfg.Upload.StaleAfter

	if staleAfter > 0 {
		sched.Register(pkgcron.Job{
			Name:       jobSweepUploads,
			Interval:   sweepInterval(staleAfter),
			RunOnStart: true,
			Fn: func(ctx context.Context) error {
				removed, err := sweepUploads(uploadDir, staleAfter, time.Now())
				if err != nil {
					cronLogger.Warn("sweep uploads failed", zap.Error(err))
					return err
				}
				if removed > 0 {
					cronLogger.Info("removed stale uploads", zap.Int("count", removed), zap.String("dir", uploadDir))
				}
				return nil
			},
		})
	}

	if backupSvc != nil {
		sched.Register(pkgcron.Job{
			Name:     jobBackup,
			Interval: cfg.Backup.Interval,
			Fn: func(ctx context.Context) error {
				cronLogger.Info("backing up history...")
				if _, err := backupSvc.Run(ctx); err != nil {
					cronLogger.Warn("history backup failed", zap.Error(err))
					return err
				}
				return nil
			},
		})
	}
}

func sweepInterval(staleAfter time.Duration) time.Duration {
	interval := staleAfter / 2
	if interval < time.Minute {
		interval = time.Minute
	}
	return interval
}

// sweepUploads removes regular files in dir last modified before now-olderThan. Uploads are
// deleted when their request ends, so anything this old was left behind by a crash.
func sweepUploads(dir string, olderThan time.Duration, now time.Time) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}

	cutoff := now.Add(-olderThan)
	removed := 0
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		info, err := e.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(dir, e.Name())); err == nil {
			removed++
		}
	}
	return removed, nil
}
