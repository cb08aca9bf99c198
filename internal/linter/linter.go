package linter

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"hlsllint/internal/document"
	"hlsllint/internal/parser"
	"hlsllint/internal/preprocess"
	"hlsllint/internal/scheduler"
	"hlsllint/internal/toolexec"
	"hlsllint/pkg/types"
)

// inputExt is the extension of the temporary file handed to the compiler.
const inputExt = ".hlsl"

// Options carries the collaborators of a Linter. Zero values select defaults.
type Options struct {
	// Runner executes the compiler; defaults to a toolexec.ExecRunner.
	Runner toolexec.Runner
	// Sink additionally receives every publish and clear, e.g. an LSP client.
	Sink Sink
	// Events receives lifecycle events.
	Events EventPublisher
	Log    zerolog.Logger
}

// Linter ties open documents to per-document schedulers and publishes the
// diagnostics of every completed compiler run.
type Linter struct {
	log    zerolog.Logger
	runner toolexec.Runner
	sink   Sink
	events EventPublisher
	cache  *MemorySink
	docs   *document.Store
	sched  *scheduler.Registry

	mu       sync.RWMutex
	settings Settings
	lastErr  string

	// pubMu orders publication against Close so a run finishing after its
	// document closed publishes nothing.
	pubMu sync.Mutex
	// openMu makes Open and Close of a document atomic with respect to each
	// other, so a reopen never lands between removal and eviction.
	openMu sync.Mutex

	toolMissing atomic.Bool
	runs        atomic.Uint64
	started     time.Time
}

// New returns a Linter using s. Runs receive a context derived from ctx.
func New(ctx context.Context, s Settings, opts Options) *Linter {
	l := &Linter{
		log:      opts.Log.With().Str("component", "linter").Logger(),
		runner:   opts.Runner,
		sink:     opts.Sink,
		events:   opts.Events,
		cache:    NewMemorySink(),
		docs:     document.NewStore(),
		sched:    scheduler.NewRegistry(ctx),
		settings: s,
		started:  time.Now(),
	}
	if l.runner == nil {
		l.runner = toolexec.NewExecRunner(opts.Log)
	}
	if l.events == nil {
		l.events = noopPublisher{}
	}
	return l
}

// Settings returns the settings in effect.
func (l *Linter) Settings() Settings {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.settings
}

// Open starts tracking d and lints it when the trigger mode says so.
// Opening a URI that is already open replaces its text.
func (l *Linter) Open(d types.Document) error {
	if d.URI == "" {
		return ErrBadInput("uri is required")
	}
	l.openMu.Lock()
	defer l.openMu.Unlock()
	l.docs.Put(document.New(d))
	l.request(d.URI, eventOpen)
	return nil
}

// Change replaces the text of an open document. A zero version increments
// the previous one.
func (l *Linter) Change(req types.ChangeRequest) error {
	if req.URI == "" {
		return ErrBadInput("uri is required")
	}
	if _, ok := l.docs.Update(req.URI, req.Text, req.Version); !ok {
		return ErrDocumentNotFound(req.URI)
	}
	l.request(req.URI, eventChange)
	return nil
}

// Save records a save of an open document, replacing its text first when
// the request carries one.
func (l *Linter) Save(req types.SaveRequest) error {
	if req.URI == "" {
		return ErrBadInput("uri is required")
	}
	doc, ok := l.docs.Get(req.URI)
	if !ok {
		return ErrDocumentNotFound(req.URI)
	}
	if req.Text != nil && *req.Text != doc.Text {
		l.docs.Update(req.URI, *req.Text, 0)
	}
	l.request(req.URI, eventSave)
	return nil
}

// Close stops tracking uri, drops its scheduler and clears its diagnostics.
func (l *Linter) Close(uri string) error {
	l.openMu.Lock()
	l.pubMu.Lock()
	ok := l.docs.Delete(uri)
	if ok {
		l.clearLocked(uri)
	}
	l.pubMu.Unlock()
	l.sched.Evict(uri)
	l.openMu.Unlock()
	if !ok {
		return ErrDocumentNotFound(uri)
	}
	l.events.Publish(Event{Name: EventClosed, URI: uri})
	return nil
}

// Lint runs the compiler on uri as soon as no other run for it is active and
// returns the diagnostics published by that run. It works in every trigger
// mode.
func (l *Linter) Lint(ctx context.Context, uri string) ([]types.Diagnostic, error) {
	if _, ok := l.docs.Get(uri); !ok {
		return nil, ErrDocumentNotFound(uri)
	}
	if l.toolMissing.Load() {
		return nil, l.toolErr(l.Settings())
	}
	triggersTotal.WithLabelValues(string(eventManual)).Inc()
	f := l.sched.Schedule(uri, l.work(uri, eventManual), 0)
	if err := f.Wait(ctx); err != nil {
		return nil, err
	}
	diags, _ := l.cache.Get(uri)
	if diags == nil {
		diags = []types.Diagnostic{}
	}
	return diags, nil
}

// Diagnostics returns the diagnostics currently published for uri.
func (l *Linter) Diagnostics(uri string) ([]types.Diagnostic, error) {
	if _, ok := l.docs.Get(uri); !ok {
		return nil, ErrDocumentNotFound(uri)
	}
	diags, _ := l.cache.Get(uri)
	if diags == nil {
		diags = []types.Diagnostic{}
	}
	return diags, nil
}

// Reconfigure replaces the settings, re-enables a linter disabled by a
// missing compiler and re-evaluates every open document.
func (l *Linter) Reconfigure(s Settings) {
	l.mu.Lock()
	l.settings = s
	l.lastErr = ""
	l.mu.Unlock()
	l.toolMissing.Store(false)
	l.log.Info().Str("trigger", s.Trigger.String()).Str("exe", s.Executable).Msg("settings changed")
	l.events.Publish(Event{Name: EventReconfigured, Fields: map[string]any{"trigger": s.Trigger.String()}})
	for _, d := range l.docs.All() {
		l.request(d.URI, eventReconfigure)
	}
}

// Ready reports whether the compiler is believed to be available.
func (l *Linter) Ready() bool { return !l.toolMissing.Load() }

// Status reports the scheduler state of every open document.
func (l *Linter) Status() types.StatusResponse {
	s := l.Settings()
	states := l.sched.States()
	docs := l.docs.All()
	out := types.StatusResponse{
		Documents:      make([]types.SchedulerStatus, 0, len(docs)),
		Trigger:        s.Trigger.String(),
		Executable:     s.Executable,
		ToolMissing:    l.toolMissing.Load(),
		RunsTotal:      l.runs.Load(),
		UptimeSeconds:  int64(time.Since(l.started).Seconds()),
		ServerTimeUnix: time.Now().Unix(),
	}
	l.mu.RLock()
	out.LastError = l.lastErr
	l.mu.RUnlock()
	for _, d := range docs {
		st, ok := states[d.URI]
		if !ok {
			st = scheduler.StateIdle
		}
		diags, _ := l.cache.Get(d.URI)
		out.Documents = append(out.Documents, types.SchedulerStatus{
			URI:         d.URI,
			State:       st.String(),
			Version:     d.Version,
			Diagnostics: len(diags),
		})
	}
	return out
}

// Shutdown withdraws every pending run and cancels active ones.
func (l *Linter) Shutdown() { l.sched.Close() }

// request hands a run for uri to its scheduler when the trigger mode and
// linter state allow it.
func (l *Linter) request(uri string, ev event) {
	s := l.Settings()
	if s.Trigger == TriggerNever {
		l.sched.Cancel(uri)
		l.clear(uri)
		skippedTotal.WithLabelValues("trigger").Inc()
		return
	}
	if !s.Trigger.fires(ev) {
		skippedTotal.WithLabelValues("trigger").Inc()
		return
	}
	doc, ok := l.docs.Get(uri)
	if !ok {
		return
	}
	if !s.accepts(doc.LanguageID) {
		skippedTotal.WithLabelValues("language").Inc()
		return
	}
	if l.toolMissing.Load() {
		skippedTotal.WithLabelValues("tool_missing").Inc()
		return
	}
	triggersTotal.WithLabelValues(string(ev)).Inc()
	l.sched.Schedule(uri, l.work(uri, ev), s.delay(ev))
}

func (l *Linter) work(uri string, ev event) scheduler.Work {
	return func(ctx context.Context) error { return l.run(ctx, uri, ev) }
}

// run performs one compiler run on the latest text of uri.
func (l *Linter) run(ctx context.Context, uri string, ev event) error {
	s := l.Settings()
	if l.toolMissing.Load() {
		skippedTotal.WithLabelValues("tool_missing").Inc()
		return l.toolErr(s)
	}
	doc, ok := l.docs.Get(uri)
	if !ok {
		return nil
	}
	start := time.Now()
	diags, err := l.analyze(ctx, s, doc)
	runDuration.Observe(time.Since(start).Seconds())
	l.runs.Add(1)
	if err != nil {
		return l.fail(uri, s, err)
	}
	runsTotal.WithLabelValues(outcomeOK).Inc()
	l.log.Debug().Str("uri", uri).Int("version", doc.Version).Int("diagnostics", len(diags)).Dur("elapsed", time.Since(start)).Msg("lint done")
	l.publish(uri, diags, ev)
	return nil
}

func (l *Linter) analyze(ctx context.Context, s Settings, doc *document.Document) ([]types.Diagnostic, error) {
	name := doc.Path
	if name == "" {
		name = doc.URI
	}
	pre := preprocess.Expand(doc.Text, name)
	input, cleanup, err := toolexec.WriteTemp(pre.Text, inputExt)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	p := parser.New(input, doc)
	p.SetLineOffset(pre.LineOffset)
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}
	if err := l.runner.Run(ctx, BuildInvocation(s, doc, pre, input), p); err != nil {
		return nil, err
	}
	return p.Diagnostics(), nil
}

// fail records a failed run. A missing compiler disables scheduling for
// every document until Reconfigure.
func (l *Linter) fail(uri string, s Settings, err error) error {
	switch {
	case toolexec.IsToolNotFound(err):
		runsTotal.WithLabelValues(outcomeToolMissing).Inc()
		terr := l.toolErr(s)
		if l.toolMissing.CompareAndSwap(false, true) {
			l.setLastErr(terr)
			l.log.Error().Err(err).Str("exe", s.Executable).Msg(terr.Error())
			l.events.Publish(Event{Name: EventToolMissing, URI: uri, Fields: map[string]any{"exe": s.Executable}})
		}
		return terr
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		runsTotal.WithLabelValues(outcomeCanceled).Inc()
		l.log.Warn().Err(err).Str("uri", uri).Msg("lint interrupted")
		return err
	case toolexec.IsSpawnError(err):
		runsTotal.WithLabelValues(outcomeSpawnError).Inc()
		l.setLastErr(err)
		l.log.Error().Err(err).Str("uri", uri).Msg("compiler failed to start")
		l.events.Publish(Event{Name: EventSpawnFailed, URI: uri, Fields: map[string]any{"error": err.Error()}})
		return err
	default:
		runsTotal.WithLabelValues(outcomeError).Inc()
		l.setLastErr(err)
		l.log.Error().Err(err).Str("uri", uri).Msg("lint failed")
		l.events.Publish(Event{Name: EventRunFailed, URI: uri, Fields: map[string]any{"error": err.Error()}})
		return err
	}
}

func (l *Linter) toolErr(s Settings) error {
	return ErrToolUnavailable(fmt.Sprintf("cannot lint: the %q program was not found; set executable_path to the location of dxc", s.Executable))
}

func (l *Linter) setLastErr(err error) {
	l.mu.Lock()
	l.lastErr = err.Error()
	l.mu.Unlock()
}

// publish replaces the diagnostics of uri, or clears them when diags is
// empty. Nothing is published for a document closed meanwhile, nor after
// linting was disabled unless the run was requested explicitly.
func (l *Linter) publish(uri string, diags []types.Diagnostic, ev event) {
	l.pubMu.Lock()
	defer l.pubMu.Unlock()
	if _, ok := l.docs.Get(uri); !ok {
		return
	}
	if ev != eventManual && l.Settings().Trigger == TriggerNever {
		return
	}
	if len(diags) == 0 {
		l.clearLocked(uri)
	} else {
		l.cache.Publish(uri, diags)
		if l.sink != nil {
			l.sink.Publish(uri, diags)
		}
		for _, d := range diags {
			diagnosticsPublished.WithLabelValues(d.Severity.String()).Inc()
		}
	}
	l.events.Publish(Event{Name: EventRunDone, URI: uri, Fields: map[string]any{"diagnostics": len(diags)}})
}

func (l *Linter) clear(uri string) {
	l.pubMu.Lock()
	defer l.pubMu.Unlock()
	l.clearLocked(uri)
}

func (l *Linter) clearLocked(uri string) {
	l.cache.Clear(uri)
	if l.sink != nil {
		l.sink.Clear(uri)
	}
	l.events.Publish(Event{Name: EventCleared, URI: uri})
}
