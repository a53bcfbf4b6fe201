package lsp

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"codeproof/internal/bridge"
	"codeproof/internal/config"
	"codeproof/internal/dict"
	"codeproof/internal/engine"
	"codeproof/internal/pipeline"
	"codeproof/internal/resolve"
	"codeproof/internal/trace"
)

var (
	// ErrExit signals a graceful shutdown after receiving "exit".
	ErrExit = errors.New("lsp exit")
	// ErrExitWithoutShutdown signals an "exit" without a preceding "shutdown".
	ErrExitWithoutShutdown = errors.New("lsp exit without shutdown")
)

// LoaderFunc builds the dictionary loader for a configuration.
type LoaderFunc func(ctx context.Context, cfg *config.Config) bridge.Loader

// DefaultLoader resolves cfg.Dictionaries and loads them as hunspell
// dictionaries.
func DefaultLoader(ctx context.Context, cfg *config.Config) bridge.Loader {
	return engine.Resolved(ctx, resolve.New(cfg.ResolverOptions()), cfg.Dictionaries)
}

// ServerOptions configures LSP server behavior.
type ServerOptions struct {
	// Config is the base configuration; initializationOptions are layered on
	// top of it. Nil means config.Default().
	Config *config.Config
	// Debounce overrides debounce_ms when positive.
	Debounce time.Duration
	Loader   LoaderFunc
	Version  string
}

type document struct {
	text       string
	languageID string
	version    int
	gen        int64
	timer      *time.Timer
	cancel     context.CancelFunc
}

func (d *document) stop() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
}

// Server handles stdio JSON-RPC for the codeproof LSP.
type Server struct {
	in     *bufio.Reader
	out    *bufio.Writer
	sendMu sync.Mutex
	mu     sync.Mutex

	docs      map[string]*document
	published map[string]struct{}

	base      *config.Config
	cfg       *config.Config
	checker   *bridge.Bridge
	pipe      *pipeline.Pipeline
	store     *dict.Store
	stopWatch context.CancelFunc

	loader            LoaderFunc
	debounce          time.Duration
	version           string
	baseCtx           context.Context
	initialized       bool
	shutdownRequested bool
	background        sync.WaitGroup
}

// NewServer constructs a new LSP server.
func NewServer(in io.Reader, out io.Writer, opts ServerOptions) *Server {
	base := opts.Config
	if base == nil {
		base = config.Default()
	}
	loader := opts.Loader
	if loader == nil {
		loader = DefaultLoader
	}
	return &Server{
		in:        bufio.NewReader(in),
		out:       bufio.NewWriter(out),
		docs:      make(map[string]*document),
		published: make(map[string]struct{}),
		base:      base,
		cfg:       base.Clone(),
		pipe:      pipeline.New(nil),
		store:     dict.NewStore(base.DictPath, dict.NewSet(base.CaseSensitive)),
		loader:    loader,
		debounce:  opts.Debounce,
		version:   opts.Version,
		baseCtx:   context.Background(),
	}
}

// Run serves LSP requests until exit or end of input.
func (s *Server) Run(ctx context.Context) error {
	s.mu.Lock()
	s.baseCtx = ctx
	s.mu.Unlock()
	defer s.close()
	for {
		payload, err := readMessage(s.in)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		var msg rpcMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			s.logf("failed to parse message: %v", err)
			continue
		}
		if msg.Method == "" {
			continue
		}
		if err := s.handleMessage(&msg); err != nil {
			return err
		}
	}
}

func (s *Server) handleMessage(msg *rpcMessage) error {
	trace.Point(s.tracer(), trace.ScopeServer, msg.Method, "")
	switch msg.Method {
	case "initialize":
		return s.handleInitialize(msg)
	case "initialized":
		return nil
	case "shutdown":
		return s.handleShutdown(msg)
	case "exit":
		s.mu.Lock()
		requested := s.shutdownRequested
		s.mu.Unlock()
		if requested {
			return ErrExit
		}
		return ErrExitWithoutShutdown
	case "workspace/didChangeConfiguration":
		return s.handleDidChangeConfiguration(msg)
	case "workspace/executeCommand":
		return s.handleExecuteCommand(msg)
	case "textDocument/didOpen":
		return s.handleDidOpen(msg)
	case "textDocument/didChange":
		return s.handleDidChange(msg)
	case "textDocument/didSave":
		return s.handleDidSave(msg)
	case "textDocument/didClose":
		return s.handleDidClose(msg)
	case "textDocument/codeAction":
		return s.handleCodeAction(msg)
	default:
		if len(msg.ID) > 0 {
			return s.sendError(msg.ID, codeMethodNotFound, "method not found")
		}
		return nil
	}
}

func (s *Server) handleInitialize(msg *rpcMessage) error {
	var params initializeParams
	if len(msg.Params) > 0 {
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			return s.sendError(msg.ID, codeInvalidParams, "invalid params")
		}
	}
	cfg, err := config.ApplyOptions(s.base, params.InitializationOptions)
	if err != nil {
		s.logError("initializationOptions: %v", err)
		cfg = s.base.Clone()
	}
	s.configure(cfg)

	result := initializeResult{
		Capabilities: serverCapabilities{
			TextDocumentSync: textDocumentSyncOptions{
				OpenClose: true,
				Change:    1,
				Save: saveOptions{
					IncludeText: true,
				},
			},
			CodeActionProvider: true,
			ExecuteCommandProvider: &executeCommandOptions{
				Commands: commandNames(),
			},
		},
		ServerInfo: &serverInfo{Name: "codeproof", Version: s.version},
	}
	return s.sendResponse(msg.ID, result)
}

func (s *Server) handleShutdown(msg *rpcMessage) error {
	s.mu.Lock()
	s.shutdownRequested = true
	for _, doc := range s.docs {
		doc.stop()
	}
	s.mu.Unlock()
	s.clearPublishedDiagnostics()
	return s.sendResponse(msg.ID, nil)
}

// configure switches to cfg, reloading the accepted words and restarting the
// spell checker only when the settings they depend on changed.
func (s *Server) configure(cfg *config.Config) {
	s.mu.Lock()
	prev := s.cfg
	first := !s.initialized
	s.initialized = true
	s.cfg = cfg
	s.mu.Unlock()

	if first || prev.DictPath != cfg.DictPath || prev.CaseSensitive != cfg.CaseSensitive {
		s.openStore(cfg)
	}
	if first || checkerChanged(prev, cfg) {
		s.startChecker(cfg)
	}
	s.mu.Lock()
	s.pipe = pipeline.New(s.checker, pipeline.WithMinLength(cfg.MinWordLength))
	s.mu.Unlock()
	s.recheckAll()
}

func checkerChanged(prev, next *config.Config) bool {
	if prev.MaxSuggestions != next.MaxSuggestions ||
		prev.DownloadURL != next.DownloadURL ||
		prev.CacheDir != next.CacheDir ||
		len(prev.Dictionaries) != len(next.Dictionaries) ||
		len(prev.SearchPaths) != len(next.SearchPaths) {
		return true
	}
	for i := range prev.Dictionaries {
		if prev.Dictionaries[i] != next.Dictionaries[i] {
			return true
		}
	}
	for i := range prev.SearchPaths {
		if prev.SearchPaths[i] != next.SearchPaths[i] {
			return true
		}
	}
	return false
}

func (s *Server) openStore(cfg *config.Config) {
	store := dict.NewStore(cfg.DictPath, dict.NewSet(cfg.CaseSensitive))
	if err := store.Load(); err != nil {
		s.logError("load accepted words: %v", err)
	}
	ctx, cancel := context.WithCancel(s.context())
	if err := store.Watch(ctx, s.onDictChange); err != nil {
		s.logError("watch accepted words: %v", err)
	}
	s.mu.Lock()
	old := s.stopWatch
	s.store = store
	s.stopWatch = cancel
	s.mu.Unlock()
	if old != nil {
		old()
	}
}

func (s *Server) onDictChange(err error) {
	if err != nil {
		s.logError("reload accepted words: %v", err)
		return
	}
	s.recheckAll()
}

func (s *Server) startChecker(cfg *config.Config) {
	ctx := s.context()
	b := bridge.Start(ctx, s.loader(ctx, cfg), bridge.Options{MaxSuggestions: cfg.MaxSuggestions})
	s.mu.Lock()
	old := s.checker
	s.checker = b
	s.mu.Unlock()
	old.Close()
	go s.awaitChecker(b)
}

// awaitChecker rechecks every open document once b has loaded; until then
// all words count as known.
func (s *Server) awaitChecker(b *bridge.Bridge) {
	select {
	case <-b.Ready():
		trace.Point(s.tracer(), trace.ScopeServer, "checker.ready", "")
		s.recheckAll()
	case <-b.Done():
		if err := b.Err(); err != nil {
			s.logError("spell checker unavailable: %v", err)
		}
	}
}

func (s *Server) close() {
	s.mu.Lock()
	for _, doc := range s.docs {
		doc.stop()
	}
	stopWatch := s.stopWatch
	s.stopWatch = nil
	checker := s.checker
	s.mu.Unlock()
	if stopWatch != nil {
		stopWatch()
	}
	checker.Close()
	s.background.Wait()
}

// goAsync runs fn off the read loop. Run waits for pending calls before it
// returns.
func (s *Server) goAsync(fn func()) {
	s.background.Add(1)
	go func() {
		defer s.background.Done()
		fn()
	}()
}

func (s *Server) context() context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.baseCtx
}

func (s *Server) tracer() trace.Tracer {
	return trace.FromContext(s.context())
}

func (s *Server) sendResponse(id json.RawMessage, result any) error {
	msg := map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"result":  result,
	}
	return s.send(msg)
}

func (s *Server) sendError(id json.RawMessage, code int, message string) error {
	msg := map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"error": rpcError{
			Code:    code,
			Message: message,
		},
	}
	return s.send(msg)
}

func (s *Server) sendNotification(method string, params any) error {
	msg := map[string]any{
		"jsonrpc": "2.0",
		"method":  method,
		"params":  params,
	}
	return s.send(msg)
}

func (s *Server) sendPublish(uri string, version *int, list []lspDiagnostic) error {
	if list == nil {
		list = []lspDiagnostic{}
	}
	return s.sendNotification("textDocument/publishDiagnostics", publishDiagnosticsParams{
		URI:         uri,
		Version:     version,
		Diagnostics: list,
	})
}

func (s *Server) send(msg any) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	s.sendMu.Lock()
	defer s.sendMu.Unlock()
	if err := writeMessage(s.out, payload); err != nil {
		return err
	}
	return s.out.Flush()
}

func (s *Server) logf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "lsp: "+format+"\n", args...)
}

// logError reports a failure on stderr, to the tracer and to the client.
func (s *Server) logError(format string, args ...any) {
	err := fmt.Errorf(format, args...)
	s.logf("%v", err)
	trace.Error(s.tracer(), trace.ScopeServer, "lsp", err)
	if sendErr := s.sendNotification("window/logMessage", logMessageParams{
		Type:    messageError,
		Message: err.Error(),
	}); sendErr != nil {
		s.logf("failed to log message: %v", sendErr)
	}
}
