package lsp

import (
	"encoding/json"
	"slices"
	"time"

	"go.lsp.dev/protocol"

	"hlsllint/internal/linter"
)

// configurationParams is workspace/didChangeConfiguration narrowed to the
// "hlsl.linter" section.
type configurationParams struct {
	Settings struct {
		HLSL struct {
			Linter clientSettings `json:"linter"`
		} `json:"hlsl"`
	} `json:"settings"`
}

// clientSettings mirrors the editor settings. Absent fields keep the value
// in effect.
type clientSettings struct {
	ExecutablePath *string   `json:"executablePath"`
	Trigger        *string   `json:"trigger"`
	IncludeDirs    *[]string `json:"includeDirs"`
	DefaultArgs    *[]string `json:"defaultArgs"`
	DebounceMS     *int      `json:"debounceMs"`
}

func (c clientSettings) apply(s linter.Settings) linter.Settings {
	if c.ExecutablePath != nil && *c.ExecutablePath != "" {
		s.Executable = *c.ExecutablePath
	}
	if c.Trigger != nil {
		s.Trigger = linter.ParseTrigger(*c.Trigger)
	}
	if c.IncludeDirs != nil {
		s.IncludeDirs = slices.Clone(*c.IncludeDirs)
	}
	if c.DefaultArgs != nil {
		s.DefaultArgs = slices.Clone(*c.DefaultArgs)
	}
	if c.DebounceMS != nil && *c.DebounceMS >= 0 {
		s.Debounce = time.Duration(*c.DebounceMS) * time.Millisecond
	}
	return s
}

// initializationSettings reads settings passed as initializationOptions,
// either in the "hlsl.linter" shape or flat.
func initializationSettings(opts interface{}) *clientSettings {
	if opts == nil {
		return nil
	}
	raw, err := json.Marshal(opts)
	if err != nil {
		return nil
	}
	var nested struct {
		HLSL *struct {
			Linter *clientSettings `json:"linter"`
		} `json:"hlsl"`
	}
	if json.Unmarshal(raw, &nested) == nil && nested.HLSL != nil && nested.HLSL.Linter != nil {
		return nested.HLSL.Linter
	}
	var flat clientSettings
	if json.Unmarshal(raw, &flat) != nil {
		return nil
	}
	return &flat
}

// didSaveParams mirrors protocol.DidSaveTextDocumentParams but keeps an
// included empty text apart from an omitted one.
type didSaveParams struct {
	TextDocument protocol.TextDocumentIdentifier `json:"textDocument"`
	Text         *string                         `json:"text"`
}
