package app

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pdfsummarizer/core/internal/config"
	"github.com/pdfsummarizer/core/internal/database"
	"github.com/pdfsummarizer/core/internal/modules/extract"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm/logger"
)

type echoProvider struct{}

func (echoProvider) Name() string { return "echo" }

func (echoProvider) Generate(_ context.Context, prompt string) (string, error) {
	return "- " + prompt[strings.LastIndex(prompt, "\n")+1:], nil
}

type staticExtractor struct{}

func (staticExtractor) Extract(_ context.Context, _ string, progress extract.ProgressFunc) (*extract.Result, error) {
	progress(1, 1)
	return &extract.Result{Text: "Hello world. Foo bar.", PageCount: 1, WordCount: 4, Method: "static"}, nil
}

func testConfig(t *testing.T) *config.AppConfig {
	t.Helper()
	return &config.AppConfig{
		Port:         5001,
		Env:          "production",
		SecretKey:    "test-secret",
		DefaultTheme: "light",
		Paths:        config.PathsConfig{Logs: t.TempDir(), Uploads: t.TempDir()},
		Upload:       config.UploadConfig{MaxFileSizeMB: 1, AllowedExtensions: []string{"pdf"}},
		Extract:      config.ExtractConfig{MaxTextLength: 8000},
		Summarizer: config.SummarizerConfig{
			Provider:    "gemini",
			APIKey:      "unused",
			Model:       "gemini-2.5-flash",
			Timeout:     time.Second,
			MaxAttempts: 1,
			BaseDelay:   time.Millisecond,
			MaxDelay:    time.Millisecond,
		},
	}
}

func newTestApp(t *testing.T) *App {
	t.Helper()
	db, err := database.Open(sqlite.Open("file::memory:"), logger.Silent)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	a, err := New(nil, testConfig(t), WithDB(db), WithProvider(echoProvider{}), WithExtractor(staticExtractor{}))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(a.Shutdown)
	return a
}

func (a *App) serve(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	a.Router().ServeHTTP(w, req)
	return w
}

func TestNewReleasesDatabaseOnSetupFailure(t *testing.T) {
	db, err := database.Open(sqlite.Open("file::memory:"), logger.Silent)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	cfg := testConfig(t)
	cfg.Summarizer.Provider = "carrier-pigeon"

	if _, err := New(nil, cfg, WithDB(db), WithExtractor(staticExtractor{})); err == nil {
		t.Fatal("New() with an unknown provider should fail")
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatal(err)
	}
	if err := sqlDB.Ping(); err == nil {
		t.Fatal("database still open after failed setup")
	}
}

func TestPingAndInfo(t *testing.T) {
	a := newTestApp(t)

	w := a.serve(httptest.NewRequest(http.MethodGet, "/ping", nil))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "pong") {
		t.Fatalf("ping = %d %s", w.Code, w.Body.String())
	}
	w = a.serve(httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"provider":"gemini"`) {
		t.Fatalf("info = %d %s", w.Code, w.Body.String())
	}
	w = a.serve(httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"database":"ok"`) {
		t.Fatalf("health = %d %s", w.Code, w.Body.String())
	}
	w = a.serve(httptest.NewRequest(http.MethodGet, "/nope", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("unknown route = %d", w.Code)
	}
}

func TestUploadThenHistoryAndStats(t *testing.T) {
	a := newTestApp(t)

	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	_ = mw.WriteField("summary_type", "bullet")
	part, _ := mw.CreateFormFile("pdf_file", "doc.pdf")
	_, _ = part.Write([]byte("%PDF-1.4 stub"))
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/summarize", body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := a.serve(req)
	if w.Code != http.StatusOK {
		t.Fatalf("summarize = %d %s", w.Code, w.Body.String())
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("missing request id header")
	}
	var out struct {
		Summary     string `json:"summary"`
		SummaryType string `json:"summary_type"`
		HistoryID   uint   `json:"history_id"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	if out.SummaryType != "bullet" || out.Summary != "- Hello world. Foo bar." || out.HistoryID == 0 {
		t.Fatalf("outcome = %+v", out)
	}

	w = a.serve(httptest.NewRequest(http.MethodGet, "/history", nil))
	var list []map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil || len(list) != 1 {
		t.Fatalf("history = %s", w.Body.String())
	}

	w = a.serve(httptest.NewRequest(http.MethodGet, "/stats", nil))
	if !strings.Contains(w.Body.String(), `"total_summaries":1`) {
		t.Fatalf("stats = %s", w.Body.String())
	}

	entries, _ := os.ReadDir(a.cfg.UploadDir())
	if len(entries) != 0 {
		t.Fatalf("upload dir not cleaned: %d entries", len(entries))
	}
}

func TestSweepUploads(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()
	old := filepath.Join(dir, "old.pdf")
	fresh := filepath.Join(dir, "fresh.pdf")
	for _, p := range []string{old, fresh} {
		if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Chtimes(old, now.Add(-2*time.Hour), now.Add(-2*time.Hour)); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0o755); err != nil {
		t.Fatal(err)
	}

	removed, err := sweepUploads(dir, time.Hour, now)
	if err != nil || removed != 1 {
		t.Fatalf("removed = %d, err = %v", removed, err)
	}
	if _, err := os.Stat(old); !os.IsNotExist(err) {
		t.Error("stale file still present")
	}
	if _, err := os.Stat(fresh); err != nil {
		t.Error("fresh file removed")
	}

	if n, err := sweepUploads(filepath.Join(dir, "missing"), time.Hour, now); err != nil || n != 0 {
		t.Fatalf("missing dir: n = %d, err = %v", n, err)
	}
}

func TestMatchOriginPattern(t *testing.T) {
	cases := []struct {
		pattern, origin string
		want            bool
	}{
		{"example.com", "https://example.com", true},
		{"*.example.com", "https://app.example.com", true},
		{"*.example.com", "https://example.org", false},
		{"localhost:*", "http://localhost:3000", true},
	}
	for _, tc := range cases {
		if got := matchOriginPattern(tc.pattern, extractOriginHost(tc.origin)); got != tc.want {
			t.Errorf("match(%q, %q) = %v", tc.pattern, tc.origin, got)
		}
	}
}

func TestParseTimezoneLocation(t *testing.T) {
	loc, err := parseTimezoneLocation("+05:30")
	if err != nil {
		t.Fatal(err)
	}
	if _, off := time.Date(2025, 1, 1, 0, 0, 0, 0, loc).Zone(); off != 5*3600+30*60 {
		t.Errorf("offset = %d", off)
	}
	if _, err := parseTimezoneLocation("Mars/Olympus"); err == nil {
		t.Error("bogus zone should fail")
	}
}
