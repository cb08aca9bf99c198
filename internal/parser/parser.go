// Package parser turns the compiler's streamed stderr into diagnostics for
// one document.
package parser

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/grafana/regexp"

	"hlsllint/pkg/types"
)

// nolintPattern marks a source line whose diagnostics are suppressed.
var nolintPattern = regexp.MustCompile(`(?i)//\s*@nolint`)

// Source gives access to the text of the document the output refers to.
type Source interface {
	// LineText returns the zero-based line, or "" when it does not exist.
	LineText(line int) string
}

// Parser consumes compiler output in arbitrary chunks. It implements
// io.Writer so it can be installed directly as a process's stderr. A Parser
// belongs to a single run and is not safe for concurrent writes.
type Parser struct {
	filename   string
	src        Source
	lineOffset int
	buf        []byte
	diags      []types.Diagnostic
}

// New returns a parser that keeps only lines about filename and checks
// suppression markers against src.
func New(filename string, src Source) *Parser {
	return &Parser{filename: filename, src: src}
}

// SetLineOffset adds delta to the line of every diagnostic processed from now
// on. It compensates for lines prepended to the analyzed text.
func (p *Parser) SetLineOffset(delta int) { p.lineOffset = delta }

// Write buffers b and processes every complete line it now holds.
func (p *Parser) Write(b []byte) (int, error) {
	p.buf = append(p.buf, b...)
	for {
		i := bytes.IndexByte(p.buf, '\n')
		if i < 0 {
			break
		}
		p.processLine(string(bytes.TrimSuffix(p.buf[:i], []byte{'\r'})))
		p.buf = p.buf[i+1:]
	}
	// Release the consumed prefix once the buffer drains.
	if len(p.buf) == 0 {
		p.buf = nil
	}
	return len(b), nil
}

// WriteString is Write for string fragments.
func (p *Parser) WriteString(s string) (int, error) { return p.Write([]byte(s)) }

// Diagnostics finalizes the stream and returns the diagnostics in the order
// they were recognized. An unterminated trailing line is discarded.
func (p *Parser) Diagnostics() []types.Diagnostic {
	p.buf = nil
	return p.diags
}

func (p *Parser) processLine(line string) {
	if p.filename == "" || !strings.HasPrefix(line, p.filename) {
		return
	}
	rest := line[len(p.filename):]
	if rest == "" {
		return
	}
	// Skip the separator that follows the file name.
	parts := strings.Split(rest[1:], ":")
	if len(parts) < 4 {
		return
	}
	lineNo, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return
	}
	col, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return
	}
	lineNo = max(0, lineNo-1+p.lineOffset)
	col = max(0, col-1)

	if p.src != nil && nolintPattern.MatchString(p.src.LineText(lineNo)) {
		return
	}
	p.diags = append(p.diags, types.Diagnostic{
		Line:     lineNo,
		Column:   col,
		Severity: ParseSeverity(parts[2]),
		Message:  strings.TrimSpace(strings.Join(parts[3:], ":")),
	})
}

// ParseSeverity maps a compiler severity word to a diagnostic severity.
// Unknown words map to SeverityInformation.
func ParseSeverity(s string) types.Severity {
	s = strings.TrimSpace(s)
	switch {
	case strings.EqualFold(s, "warning"):
		return types.SeverityWarning
	case strings.EqualFold(s, "error"):
		return types.SeverityError
	case strings.EqualFold(s, "note"):
		return types.SeverityHint
	}
	return types.SeverityInformation
}
