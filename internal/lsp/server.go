// Package lsp serves the linter to editors over the Language Server Protocol.
package lsp

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
	"github.com/sourcegraph/jsonrpc2"
	"go.lsp.dev/protocol"

	"hlsllint/internal/document"
	"hlsllint/internal/linter"
	"hlsllint/internal/toolexec"
	"hlsllint/pkg/types"
)

const (
	// Source labels every published diagnostic.
	Source = "hlsllint"
	// CommandLint lints the document named by its single URI argument.
	CommandLint = "hlsl.lint"

	serverName = "hlsllint"
)

// Version is reported in the initialize result.
var Version = "dev"

// Options carries the collaborators of a Server.
type Options struct {
	Runner toolexec.Runner
	Events linter.EventPublisher
	Log    zerolog.Logger
}

// Server is one LSP session. It owns a Linter whose diagnostics are pushed
// to the client with textDocument/publishDiagnostics.
type Server struct {
	log  zerolog.Logger
	base linter.Settings
	lint *linter.Linter

	conn     atomic.Pointer[jsonrpc2.Conn]
	mu       sync.Mutex
	shutdown bool
	exited   chan struct{}
	exitOnce sync.Once
}

// NewServer returns a Server linting with s until the client sends its own
// settings. Runs are canceled when ctx is.
func NewServer(ctx context.Context, s linter.Settings, opts Options) *Server {
	srv := &Server{
		log:    opts.Log.With().Str("component", "lsp").Logger(),
		base:   s,
		exited: make(chan struct{}),
	}
	srv.lint = linter.New(ctx, s, linter.Options{
		Runner: opts.Runner,
		Sink:   srv,
		Events: opts.Events,
		Log:    opts.Log,
	})
	return srv
}

// Linter exposes the linter driven by the session.
func (s *Server) Linter() *linter.Linter { return s.lint }

// Serve speaks LSP on rwc until the client exits, the stream ends or ctx is
// canceled. Pending runs are withdrawn before it returns.
func (s *Server) Serve(ctx context.Context, rwc io.ReadWriteCloser) error {
	stream := jsonrpc2.NewBufferedStream(rwc, jsonrpc2.VSCodeObjectCodec{})
	conn := jsonrpc2.NewConn(ctx, stream, s, jsonrpc2.SetLogger(&s.log))
	s.conn.Store(conn)
	defer s.lint.Shutdown()

	select {
	case <-conn.DisconnectNotify():
	case <-s.exited:
		_ = conn.Close()
	case <-ctx.Done():
		_ = conn.Close()
		return ctx.Err()
	}
	s.conn.Store(nil)
	s.log.Info().Msg("session ended")
	return nil
}

// Handle implements jsonrpc2.Handler. Requests are handled in arrival order;
// only an explicit lint command runs concurrently, so that edits received
// while it waits still reach the linter.
func (s *Server) Handle(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) {
	h := jsonrpc2.HandlerWithError(s.handle)
	if req.Method == protocol.MethodWorkspaceExecuteCommand && !req.Notif {
		go h.Handle(ctx, conn, req)
		return
	}
	h.Handle(ctx, conn, req)
}

func (s *Server) handle(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) (interface{}, error) {
	s.log.Debug().Str("method", req.Method).Bool("notification", req.Notif).Msg("request")
	if s.isShutdown() && req.Method != protocol.MethodExit {
		return nil, &jsonrpc2.Error{Code: jsonrpc2.CodeInvalidRequest, Message: "server is shutting down"}
	}

	switch req.Method {
	case protocol.MethodInitialize:
		var params protocol.InitializeParams
		if err := decode(req, &params); err != nil {
			return nil, err
		}
		return s.initialize(params), nil

	case protocol.MethodInitialized:
		return nil, nil

	case protocol.MethodShutdown:
		s.mu.Lock()
		s.shutdown = true
		s.mu.Unlock()
		s.lint.Shutdown()
		return nil, nil

	case protocol.MethodExit:
		s.exitOnce.Do(func() { close(s.exited) })
		return nil, nil

	case protocol.MethodTextDocumentDidOpen:
		var params protocol.DidOpenTextDocumentParams
		if err := decode(req, &params); err != nil {
			return nil, err
		}
		return nil, s.lint.Open(types.Document{
			URI:        string(params.TextDocument.URI),
			LanguageID: string(params.TextDocument.LanguageID),
			Version:    int(params.TextDocument.Version),
			Text:       params.TextDocument.Text,
		})

	case protocol.MethodTextDocumentDidChange:
		var params protocol.DidChangeTextDocumentParams
		if err := decode(req, &params); err != nil {
			return nil, err
		}
		if len(params.ContentChanges) == 0 {
			return nil, nil
		}
		// Full sync: the last change holds the whole text.
		last := params.ContentChanges[len(params.ContentChanges)-1]
		return nil, s.lint.Change(types.ChangeRequest{
			URI:     string(params.TextDocument.URI),
			Version: int(params.TextDocument.Version),
			Text:    last.Text,
		})

	case protocol.MethodTextDocumentDidSave:
		var params didSaveParams
		if err := decode(req, &params); err != nil {
			return nil, err
		}
		return nil, s.lint.Save(types.SaveRequest{URI: string(params.TextDocument.URI), Text: params.Text})

	case protocol.MethodTextDocumentDidClose:
		var params protocol.DidCloseTextDocumentParams
		if err := decode(req, &params); err != nil {
			return nil, err
		}
		err := s.lint.Close(string(params.TextDocument.URI))
		if linter.IsDocumentNotFound(err) {
			return nil, nil
		}
		return nil, err

	case protocol.MethodWorkspaceDidChangeConfiguration:
		var params configurationParams
		if err := decode(req, &params); err != nil {
			return nil, err
		}
		s.lint.Reconfigure(params.Settings.HLSL.Linter.apply(s.lint.Settings()))
		return nil, nil

	case protocol.MethodWorkspaceExecuteCommand:
		var params protocol.ExecuteCommandParams
		if err := decode(req, &params); err != nil {
			return nil, err
		}
		return s.execute(ctx, params)
	}

	if req.Notif {
		return nil, nil
	}
	return nil, &jsonrpc2.Error{Code: jsonrpc2.CodeMethodNotFound, Message: "method not supported: " + req.Method}
}

func (s *Server) initialize(params protocol.InitializeParams) protocol.InitializeResult {
	settings := s.base
	if settings.WorkspaceRoot == "" && params.RootURI != "" {
		settings.WorkspaceRoot = document.URIToPath(string(params.RootURI))
	}
	if opts := initializationSettings(params.InitializationOptions); opts != nil {
		settings = opts.apply(settings)
	}
	s.base = settings
	s.lint.Reconfigure(settings)
	if params.ClientInfo != nil {
		s.log.Info().Str("client", params.ClientInfo.Name).Str("root", settings.WorkspaceRoot).Msg("initialize")
	}

	return protocol.InitializeResult{
		Capabilities: protocol.ServerCapabilities{
			TextDocumentSync: protocol.TextDocumentSyncOptions{
				OpenClose: true,
				Change:    protocol.TextDocumentSyncKindFull,
				Save:      &protocol.SaveOptions{IncludeText: true},
			},
			ExecuteCommandProvider: &protocol.ExecuteCommandOptions{
				Commands: []string{CommandLint},
			},
		},
		ServerInfo: &protocol.ServerInfo{Name: serverName, Version: Version},
	}
}

func (s *Server) execute(ctx context.Context, params protocol.ExecuteCommandParams) (interface{}, error) {
	if params.Command != CommandLint {
		return nil, &jsonrpc2.Error{Code: jsonrpc2.CodeInvalidParams, Message: "unknown command: " + params.Command}
	}
	var uri string
	if len(params.Arguments) > 0 {
		uri, _ = params.Arguments[0].(string)
	}
	if uri == "" {
		return nil, &jsonrpc2.Error{Code: jsonrpc2.CodeInvalidParams, Message: CommandLint + " expects a document URI"}
	}
	diags, err := s.lint.Lint(ctx, uri)
	if err != nil {
		return nil, &jsonrpc2.Error{Code: jsonrpc2.CodeInternalError, Message: err.Error()}
	}
	return toProtocol(diags), nil
}

func (s *Server) isShutdown() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.shutdown
}

// Publish implements linter.Sink.
func (s *Server) Publish(uri string, diags []types.Diagnostic) {
	s.notify(uri, toProtocol(diags))
}

// Clear implements linter.Sink.
func (s *Server) Clear(uri string) {
	s.notify(uri, []protocol.Diagnostic{})
}

func (s *Server) notify(uri string, diags []protocol.Diagnostic) {
	conn := s.conn.Load()
	if conn == nil {
		return
	}
	params := protocol.PublishDiagnosticsParams{
		URI:         protocol.DocumentURI(uri),
		Diagnostics: diags,
	}
	if err := conn.Notify(context.Background(), protocol.MethodTextDocumentPublishDiagnostics, params); err != nil && !errors.Is(err, jsonrpc2.ErrClosed) {
		s.log.Warn().Err(err).Str("uri", uri).Msg("publish diagnostics failed")
	}
}

// toProtocol converts diagnostics to zero-width LSP ranges at their position.
func toProtocol(diags []types.Diagnostic) []protocol.Diagnostic {
	out := make([]protocol.Diagnostic, 0, len(diags))
	for _, d := range diags {
		pos := protocol.Position{Line: uint32(d.Line), Character: uint32(d.Column)}
		out = append(out, protocol.Diagnostic{
			Range:    protocol.Range{Start: pos, End: pos},
			Severity: protocol.DiagnosticSeverity(d.Severity),
			Source:   Source,
			Message:  d.Message,
		})
	}
	return out
}

func decode(req *jsonrpc2.Request, v interface{}) error {
	if req.Params == nil {
		return &jsonrpc2.Error{Code: jsonrpc2.CodeInvalidParams, Message: "missing params"}
	}
	if err := json.Unmarshal(*req.Params, v); err != nil {
		return &jsonrpc2.Error{Code: jsonrpc2.CodeInvalidParams, Message: err.Error()}
	}
	return nil
}
