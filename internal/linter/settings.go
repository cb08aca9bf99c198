package linter

import (
	"slices"
	"strings"
	"time"

	"hlsllint/internal/config"
)

// Settings is the part of the configuration the linter acts on. A Settings
// value is replaced wholesale by Reconfigure and never mutated in place.
type Settings struct {
	Executable    string
	Trigger       Trigger
	Debounce      time.Duration
	IncludeDirs   []string
	DefaultArgs   []string
	Languages     []string
	WorkspaceRoot string
	// Timeout bounds a single compiler run; zero means no bound.
	Timeout time.Duration
}

// SettingsFromConfig derives Settings from a loaded configuration.
func SettingsFromConfig(cfg config.Config) Settings {
	cfg = cfg.WithDefaults()
	return Settings{
		Executable:    cfg.ExecutablePath,
		Trigger:       ParseTrigger(cfg.Trigger),
		Debounce:      time.Duration(cfg.DebounceMS) * time.Millisecond,
		IncludeDirs:   slices.Clone(cfg.IncludeDirs),
		DefaultArgs:   slices.Clone(cfg.DefaultArgs),
		Languages:     slices.Clone(cfg.Languages),
		WorkspaceRoot: cfg.WorkspaceRoot,
		Timeout:       time.Duration(cfg.LintTimeoutMS) * time.Millisecond,
	}
}

// delay returns the debounce applied to runs started by ev. Explicit lint
// requests are never delayed.
func (s Settings) delay(ev event) time.Duration {
	if s.Trigger == TriggerOnType && ev != eventManual {
		return s.Debounce
	}
	return 0
}

// accepts reports whether documents with languageID are linted. Documents
// without a language ID are always accepted.
func (s Settings) accepts(languageID string) bool {
	if languageID == "" || len(s.Languages) == 0 {
		return true
	}
	return slices.ContainsFunc(s.Languages, func(l string) bool {
		return strings.EqualFold(l, languageID)
	})
}
