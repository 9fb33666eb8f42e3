package export

import (
	"errors"
	"strings"
)

var ErrUnknownFormat = errors.New("invalid format")

// Renderer turns a summary into a downloadable document.
type Renderer func(summary, displayName string) ([]byte, error)

// Format is one download flavour.
type Format struct {
	Name        string
	Extension   string
	ContentType string
	Render      Renderer
}

var formats = map[string]Format{
	"txt":  {Name: "txt", Extension: "txt", ContentType: "text/plain; charset=utf-8", Render: Text},
	"pdf":  {Name: "pdf", Extension: "pdf", ContentType: "application/pdf", Render: PDF},
	"docx": {Name: "docx", Extension: "docx", ContentType: "application/vnd.openxmlformats-officedocument.wordprocessingml.document", Render: DOCX},
}

// Lookup resolves a format name such as "pdf".
func Lookup(name string) (Format, error) {
	f, ok := formats[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Format{}, ErrUnknownFormat
	}
	return f, nil
}

// DownloadName is "<filename>_summary.<ext>".
func (f Format) DownloadName(filename string) string {
	return filename + "_summary." + f.Extension
}

// Text returns the summary bytes unchanged.
func Text(summary, _ string) ([]byte, error) {
	return []byte(summary), nil
}

// paragraphs returns the non-blank lines of summary, as written.
func paragraphs(summary string) []string {
	lines := strings.Split(strings.ReplaceAll(summary, "\r\n", "\n"), "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if strings.TrimSpace(line) != "" {
			out = append(out, line)
		}
	}
	return out
}

func heading(displayName string) string {
	return "Summary: " + displayName
}
