package export

import (
	"archive/zip"
	"bytes"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

const sample = "First point.\n\n  \nSecond point with <tags> & \"quotes\".\r\nThird."

func TestTextRoundTrip(t *testing.T) {
	for _, s := range []string{"", sample, "ünïcødé ✓"} {
		got, err := Text(s, "x")
		if err != nil {
			t.Fatal(err)
		}
		if string(got) != s {
			t.Fatalf("Text() = %q, want %q", got, s)
		}
	}
}

func TestParagraphs(t *testing.T) {
	got := paragraphs(sample)
	if len(got) != 3 || got[0] != "First point." || got[2] != "Third." {
		t.Fatalf("paragraphs() = %q", got)
	}
}

func TestPDF(t *testing.T) {
	data, err := PDF(sample, "report")
	if err != nil {
		t.Fatalf("PDF() error = %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Fatalf("PDF() output does not start with %%PDF-")
	}
}

func TestPDFEmbedsUnicodeFont(t *testing.T) {
	data, err := PDF("Growth → 12% ≥ target. Ωmega and Привет.", "ünïcødé")
	if err != nil {
		t.Fatalf("PDF() error = %v", err)
	}
	for _, want := range []string{"/Identity-H", "/FontFile2"} {
		if !bytes.Contains(data, []byte(want)) {
			t.Errorf("PDF() output missing %s", want)
		}
	}
}

func TestDOCXStructure(t *testing.T) {
	data, err := DOCX(sample, "report")
	if err != nil {
		t.Fatalf("DOCX() error = %v", err)
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("not a zip: %v", err)
	}

	var doc string
	names := map[string]bool{}
	for _, f := range zr.File {
		names[f.Name] = true
		if f.Name == "word/document.xml" {
			rc, err := f.Open()
			if err != nil {
				t.Fatal(err)
			}
			b, _ := io.ReadAll(rc)
			rc.Close()
			doc = string(b)
		}
	}
	for _, want := range []string{"[Content_Types].xml", "word/document.xml"} {
		if !names[want] {
			t.Errorf("missing part %s", want)
		}
	}

	if !strings.Contains(doc, "Summary: report") || !strings.Contains(doc, docxTitleColor) || !strings.Contains(doc, docxTitleStyle) {
		t.Fatal("heading missing")
	}
	for _, want := range []string{"First point.", "Third."} {
		if strings.Count(doc, want) != 1 {
			t.Errorf("paragraph %q count = %d, want 1", want, strings.Count(doc, want))
		}
	}
	if !strings.Contains(doc, "&lt;tags&gt; &amp;") {
		t.Fatal("body text not escaped")
	}
}

func TestDOCXDropsControlCharacters(t *testing.T) {
	data, err := DOCX("bell\x07 here", "ctl")
	if err != nil {
		t.Fatalf("DOCX() error = %v", err)
	}
	if _, err := zip.NewReader(bytes.NewReader(data), int64(len(data))); err != nil {
		t.Fatalf("not a zip: %v", err)
	}
	if got := stripInvalidXML("a\x07b\tc"); got != "ab\tc" {
		t.Fatalf("stripInvalidXML() = %q", got)
	}
}

func TestLookup(t *testing.T) {
	f, err := Lookup("PDF")
	if err != nil || f.Extension != "pdf" {
		t.Fatalf("Lookup(PDF) = %+v, %v", f, err)
	}
	if f.DownloadName("report") != "report_summary.pdf" {
		t.Fatalf("DownloadName() = %q", f.DownloadName("report"))
	}
	if _, err := Lookup("rtf"); !errors.Is(err, ErrUnknownFormat) {
		t.Fatalf("Lookup(rtf) error = %v", err)
	}
}

func TestDownloadHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(nil).RegisterRoutes(r.Group(""))

	q := url.Values{"summary": {"hello"}, "filename": {"notes"}}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/download/txt?"+q.Encode(), nil))
	if w.Code != http.StatusOK || w.Body.String() != "hello" {
		t.Fatalf("txt = %d %q", w.Code, w.Body.String())
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "notes_summary.txt") {
		t.Fatalf("Content-Disposition = %q", cd)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/download/docx", nil))
	if w.Code != http.StatusOK || !strings.Contains(w.Header().Get("Content-Disposition"), "summary_summary.docx") {
		t.Fatalf("docx default name = %d %q", w.Code, w.Header().Get("Content-Disposition"))
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/download/exe", nil))
	if w.Code != http.StatusBadRequest || !strings.Contains(w.Body.String(), "Invalid format") {
		t.Fatalf("unknown format = %d %s", w.Code, w.Body.String())
	}
}
