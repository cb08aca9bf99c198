// Package document holds the text of open editor buffers.
package document

import (
	"net/url"
	"path/filepath"
	"strings"

	"go.lsp.dev/uri"

	"hlsllint/pkg/types"
)

// Document is an immutable snapshot of an editor buffer.
type Document struct {
	URI        string
	Path       string
	LanguageID string
	Version    int
	Text       string

	lines []string
}

// New builds a snapshot. Path is derived from a file URI when empty.
func New(d types.Document) *Document {
	path := d.Path
	if path == "" {
		path = URIToPath(d.URI)
	}
	return &Document{
		URI:        d.URI,
		Path:       path,
		LanguageID: d.LanguageID,
		Version:    d.Version,
		Text:       d.Text,
		lines:      splitLines(d.Text),
	}
}

// WithText returns a copy carrying new text and version.
func (d *Document) WithText(text string, version int) *Document {
	return &Document{
		URI:        d.URI,
		Path:       d.Path,
		LanguageID: d.LanguageID,
		Version:    version,
		Text:       text,
		lines:      splitLines(text),
	}
}

// LineText returns the text of a zero-based line without its terminator, or
// "" when the line does not exist.
func (d *Document) LineText(line int) string {
	if line < 0 || line >= len(d.lines) {
		return ""
	}
	return d.lines[line]
}

// LineCount returns the number of lines in the snapshot.
func (d *Document) LineCount() int { return len(d.lines) }

func splitLines(text string) []string {
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

// URIToPath converts a file URI to a local path. Strings without a scheme are
// treated as paths already; other schemes yield "".
func URIToPath(s string) string {
	if s == "" {
		return ""
	}
	parsed, err := url.Parse(s)
	if err != nil {
		return ""
	}
	// Windows drive letters parse as a one-letter scheme.
	if parsed.Scheme == "" || len(parsed.Scheme) == 1 {
		return filepath.FromSlash(s)
	}
	if parsed.Scheme != uri.FileScheme {
		return ""
	}
	return uri.URI(s).Filename()
}

// PathToURI converts a local path to a file URI.
func PathToURI(path string) string {
	if path == "" {
		return ""
	}
	return string(uri.File(path))
}
