package linter

import "strings"

// Trigger selects which document events start a lint run.
type Trigger int

const (
	// TriggerNever disables linting and clears published diagnostics.
	TriggerNever Trigger = iota
	// TriggerOnType lints on open and on every change, debounced.
	TriggerOnType
	// TriggerOnSave lints on open and save, without delay.
	TriggerOnSave
	// TriggerManual lints only on explicit request.
	TriggerManual
)

var triggerNames = [...]string{"never", "onType", "onSave", "manual"}

func (t Trigger) String() string {
	if int(t) < len(triggerNames) {
		return triggerNames[t]
	}
	return "never"
}

// ParseTrigger maps a setting value to a Trigger, ignoring case. Unknown
// values disable linting.
func ParseTrigger(s string) Trigger {
	s = strings.TrimSpace(s)
	for i, name := range triggerNames {
		if strings.EqualFold(s, name) {
			return Trigger(i)
		}
	}
	return TriggerNever
}

// event is a document lifecycle event that may lead to a run.
type event string

const (
	eventOpen        event = "open"
	eventChange      event = "change"
	eventSave        event = "save"
	eventReconfigure event = "reconfigure"
	eventManual      event = "manual"
)

// fires reports whether ev starts a run under t.
func (t Trigger) fires(ev event) bool {
	switch t {
	case TriggerOnType:
		return ev == eventOpen || ev == eventChange || ev == eventReconfigure || ev == eventManual
	case TriggerOnSave:
		return ev == eventOpen || ev == eventSave || ev == eventReconfigure || ev == eventManual
	case TriggerManual:
		return ev == eventManual
	}
	return false
}
