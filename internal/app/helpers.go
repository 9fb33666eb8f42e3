package app

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pdfsummarizer/core/internal/config"
)

// applyRuntimeSettings sets the process timezone and prepares the upload directory.
func applyRuntimeSettings(cfg *config.AppConfig) error {
	if err := os.MkdirAll(cfg.UploadDir(), 0o755); err != nil {
		return fmt.Errorf("create upload dir: %w", err)
	}

	tz := strings.TrimSpace(cfg.Timezone)
	if tz == "" {
		return nil
	}
	loc, err := parseTimezoneLocation(tz)
	if err != nil {
		return fmt.Errorf("invalid timezone %q: %w", tz, err)
	}
	time.Local = loc
	return nil
}

// parseTimezoneLocation accepts an IANA name or a "+hh:mm" offset.
func parseTimezoneLocation(raw string) (*time.Location, error) {
	tz := strings.TrimSpace(raw)
	if tz == "" {
		return time.Local, nil
	}
	if loc, err := time.LoadLocation(tz); err == nil {
		return loc, nil
	}
	if strings.HasPrefix(tz, "+") || strings.HasPrefix(tz, "-") {
		if t, err := time.Parse("-07:00", tz); err == nil {
			_, offset := t.Zone()
			return time.FixedZone(tz, offset), nil
		}
	}
	return nil, fmt.Errorf("expect IANA zone (e.g. Europe/Berlin) or UTC offset (e.g. +02:00)")
}

// humanizeDuration rounds d down to its largest whole unit.
func humanizeDuration(d time.Duration) string {
	for _, unit := range []time.Duration{24 * time.Hour, time.Hour, time.Minute} {
		if d >= unit {
			return d.Truncate(unit).String()
		}
	}
	return d.Truncate(time.Second).String()
}
