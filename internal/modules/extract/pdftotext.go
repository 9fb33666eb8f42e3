package extract

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"go.uber.org/zap"
)

// Runner lets us stub external commands in tests.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)
}

// PdftotextMethod counts pages with pdfcpu and extracts each page with poppler's pdftotext.
type PdftotextMethod struct {
	Binary string
	Runner Runner
}

func (PdftotextMethod) Name() string { return "pdftotext" }

func (m PdftotextMethod) Open(_ context.Context, path string) (Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	pages, err := api.PageCount(f, conf)
	if err != nil {
		return nil, fmt.Errorf("count pages: %w", err)
	}
	return &pdftotextDocument{method: m, path: path, pages: pages}, nil
}

type pdftotextDocument struct {
	method PdftotextMethod
	path   string
	pages  int
}

func (d *pdftotextDocument) NumPages() int { return d.pages }

func (d *pdftotextDocument) PageText(ctx context.Context, n int) (string, error) {
	page := strconv.Itoa(n)
	out, errb, err := d.method.Runner.Run(ctx, d.method.Binary,
		"-f", page, "-l", page, "-layout", "-enc", "UTF-8", "-eol", "unix", d.path, "-")
	if err != nil {
		return "", fmt.Errorf("pdftotext page %d: %w: %s", n, err, truncate(string(errb), 512))
	}
	return strings.TrimRight(string(out), "\f\n"), nil
}

func (d *pdftotextDocument) Close() error { return nil }

// ExecRunner runs commands with os/exec and logs their outcome.
type ExecRunner struct {
	Logger *zap.Logger
}

func (r ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	log := r.Logger
	if log == nil {
		log = zap.NewNop()
	}
	start := time.Now()

	cmd := exec.CommandContext(ctx, name, args...)
	var out, errb bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errb

	err := cmd.Run()
	dur := time.Since(start)

	if err != nil {
		log.Warn("exec failed",
			zap.String("cmd", name),
			zap.Int64("duration_ms", dur.Milliseconds()),
			zap.Error(err),
			zap.String("stderr", truncate(errb.String(), 8<<10)),
		)
	} else {
		log.Debug("exec ok",
			zap.String("cmd", name),
			zap.String("args", strings.Join(args, " ")),
			zap.Int64("duration_ms", dur.Milliseconds()),
			zap.Int("stdout_bytes", out.Len()),
		)
	}
	return out.Bytes(), errb.Bytes(), err
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "...(truncated)"
}
