package types

import (
	"fmt"
	"strings"
)

// Severity classifies a diagnostic. Values follow the LSP numbering so they
// convert to protocol severities without a lookup table.
type Severity int

const (
	SeverityError       Severity = 1
	SeverityWarning     Severity = 2
	SeverityInformation Severity = 3
	SeverityHint        Severity = 4
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityInformation:
		return "information"
	case SeverityHint:
		return "hint"
	}
	return "unknown"
}

// MarshalText encodes the severity as its lowercase name.
func (s Severity) MarshalText() ([]byte, error) {
	if s < SeverityError || s > SeverityHint {
		return nil, fmt.Errorf("invalid severity %d", int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText accepts the names produced by MarshalText.
func (s *Severity) UnmarshalText(b []byte) error {
	switch strings.ToLower(string(b)) {
	case "error":
		*s = SeverityError
	case "warning":
		*s = SeverityWarning
	case "information", "info":
		*s = SeverityInformation
	case "hint":
		*s = SeverityHint
	default:
		return fmt.Errorf("invalid severity %q", string(b))
	}
	return nil
}

// Diagnostic is a single position-corrected report produced from compiler output.
type Diagnostic struct {
	// Zero-based line in the original document.
	// example: 2
	Line int `json:"line" example:"2"`
	// Zero-based column.
	// example: 4
	Column int `json:"column" example:"4"`
	// Severity name: error, warning, information or hint.
	// example: error
	Severity Severity `json:"severity" example:"error"`
	// Compiler message with surrounding whitespace removed.
	// example: undeclared identifier 'foo'
	Message string `json:"message" example:"undeclared identifier 'foo'"`
}

// Document describes an editor buffer submitted for linting.
type Document struct {
	// Stable document identity, usually a file URI.
	// example: file:///work/shaders/lighting.hlsl
	URI string `json:"uri" example:"file:///work/shaders/lighting.hlsl"`
	// Filesystem path; derived from URI when empty.
	// example: /work/shaders/lighting.hlsl
	Path string `json:"path,omitempty" example:"/work/shaders/lighting.hlsl"`
	// Editor language identifier.
	// example: hlsl
	LanguageID string `json:"language_id,omitempty" example:"hlsl"`
	// Editor version counter.
	// example: 3
	Version int `json:"version,omitempty" example:"3"`
	// Full document text.
	Text string `json:"text"`
}
