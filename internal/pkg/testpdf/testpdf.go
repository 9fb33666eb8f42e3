// Package testpdf writes small text PDFs for tests.
package testpdf

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-pdf/fpdf"
)

// Bytes renders one page per entry of pages.
func Bytes(t testing.TB, pages ...string) []byte {
	t.Helper()
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Helvetica", "", 12)
	for _, text := range pages {
		pdf.AddPage()
		pdf.Text(20, 30, text)
	}
	path := filepath.Join(t.TempDir(), "fixture.pdf")
	if err := pdf.OutputFileAndClose(path); err != nil {
		t.Fatalf("render pdf: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read pdf: %v", err)
	}
	return data
}

// Write renders pages into dir/name and returns the path.
func Write(t testing.TB, dir, name string, pages ...string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, Bytes(t, pages...), 0o644); err != nil {
		t.Fatalf("write pdf: %v", err)
	}
	return path
}
