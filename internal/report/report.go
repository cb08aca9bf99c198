// Package report prints diagnostics for terminals and logs.
package report

import (
	"fmt"
	"io"
	"maps"
	"slices"

	"github.com/fatih/color"

	"hlsllint/pkg/types"
)

// Options configures a Printer.
type Options struct {
	// Color enables ANSI colors. Callers usually pass !color.NoColor.
	Color bool
}

// Printer writes one line per diagnostic:
//
//	<path>:<line>:<col>: <severity>: <message>
//
// with 1-based line and column.
type Printer struct {
	w       io.Writer
	path    *color.Color
	sev     map[types.Severity]*color.Color
	summary Summary
}

func New(w io.Writer, opts Options) *Printer {
	p := &Printer{
		w:    w,
		path: color.New(color.Bold),
		sev: map[types.Severity]*color.Color{
			types.SeverityError:       color.New(color.FgRed, color.Bold),
			types.SeverityWarning:     color.New(color.FgYellow, color.Bold),
			types.SeverityInformation: color.New(color.FgCyan),
			types.SeverityHint:        color.New(color.FgBlue),
		},
	}
	for _, c := range append([]*color.Color{p.path}, slices.Collect(maps.Values(p.sev))...) {
		if opts.Color {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// File prints the diagnostics of one file ordered by position and adds them
// to the running summary.
func (p *Printer) File(path string, diags []types.Diagnostic) error {
	sorted := slices.Clone(diags)
	slices.SortStableFunc(sorted, func(a, b types.Diagnostic) int {
		if a.Line != b.Line {
			return a.Line - b.Line
		}
		return a.Column - b.Column
	})
	p.summary.Files++
	for _, d := range sorted {
		p.summary.add(d.Severity)
		sev := d.Severity.String()
		if c, ok := p.sev[d.Severity]; ok {
			sev = c.Sprint(sev)
		}
		loc := fmt.Sprintf("%s:%d:%d:", path, d.Line+1, d.Column+1)
		if _, err := fmt.Fprintf(p.w, "%s %s: %s\n", p.path.Sprint(loc), sev, d.Message); err != nil {
			return err
		}
	}
	return nil
}

// Summary returns the totals of everything printed so far.
func (p *Printer) Summary() Summary { return p.summary }

// WriteSummary prints a one-line total to w.
func (p *Printer) WriteSummary(w io.Writer) error {
	s := p.summary
	_, err := fmt.Fprintf(w, "%d file(s) checked: %d error(s), %d warning(s), %d other\n",
		s.Files, s.Errors, s.Warnings, s.Other)
	return err
}

// Summary counts printed diagnostics by severity.
type Summary struct {
	Files    int
	Errors   int
	Warnings int
	Other    int
}

func (s *Summary) add(sev types.Severity) {
	switch sev {
	case types.SeverityError:
		s.Errors++
	case types.SeverityWarning:
		s.Warnings++
	default:
		s.Other++
	}
}

// Failed reports whether any error-severity diagnostic was printed.
func (s Summary) Failed() bool { return s.Errors > 0 }
