package types

// ChangeRequest replaces the text of an open document.
type ChangeRequest struct {
	// example: file:///work/shaders/lighting.hlsl
	URI string `json:"uri" example:"file:///work/shaders/lighting.hlsl"`
	// example: 4
	Version int `json:"version,omitempty" example:"4"`
	// Full new text.
	Text string `json:"text"`
}

// SaveRequest marks a document as saved. Text is optional; when present it
// replaces the stored text first.
type SaveRequest struct {
	// example: file:///work/shaders/lighting.hlsl
	URI  string  `json:"uri" example:"file:///work/shaders/lighting.hlsl"`
	Text *string `json:"text,omitempty"`
}

// URIRequest carries only a document URI (close, lint).
type URIRequest struct {
	// example: file:///work/shaders/lighting.hlsl
	URI string `json:"uri" example:"file:///work/shaders/lighting.hlsl"`
}

// DiagnosticsResponse is returned by GET /diagnostics and POST /lint.
type DiagnosticsResponse struct {
	// example: file:///work/shaders/lighting.hlsl
	URI         string       `json:"uri" example:"file:///work/shaders/lighting.hlsl"`
	Diagnostics []Diagnostic `json:"diagnostics"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: invalid JSON body
	Error string `json:"error" example:"invalid JSON body"`
	// HTTP status code.
	// example: 400
	Code int `json:"code" example:"400"`
}

// SchedulerStatus summarizes the scheduler of one open document.
type SchedulerStatus struct {
	// example: file:///work/shaders/lighting.hlsl
	URI string `json:"uri" example:"file:///work/shaders/lighting.hlsl"`
	// One of idle, pending, running, running+queued.
	// example: running
	State string `json:"state" example:"running"`
	// example: 3
	Version int `json:"version" example:"3"`
	// Number of diagnostics currently published for the document.
	// example: 2
	Diagnostics int `json:"diagnostics" example:"2"`
}

// StatusResponse is returned by GET /status.
type StatusResponse struct {
	Documents []SchedulerStatus `json:"documents"`
	// Trigger mode in effect: onType, onSave, manual or never.
	// example: onType
	Trigger string `json:"trigger" example:"onType"`
	// Compiler executable configured for runs.
	// example: dxc
	Executable string `json:"executable" example:"dxc"`
	// True once the compiler could not be found; cleared by reconfiguration.
	ToolMissing bool `json:"tool_missing"`
	// Last spawn or tool error observed (if any).
	LastError string `json:"last_error,omitempty"`
	// example: 42
	RunsTotal uint64 `json:"runs_total" example:"42"`
	// Uptime of the server in seconds.
	// example: 3600
	UptimeSeconds int64 `json:"uptime_seconds" example:"3600"`
	// Server time in unix seconds.
	// example: 1700000000
	ServerTimeUnix int64 `json:"server_time_unix" example:"1700000000"`
}
