package lsp

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"codeproof/internal/bridge"
	"codeproof/internal/config"
)

const waitTimeout = 5 * time.Second

type fakeEngine struct {
	known       map[string]bool
	suggestions map[string][]string
}

func (e fakeEngine) Check(word string) bool { return e.known[word] }

func (e fakeEngine) Suggest(word string) []string { return e.suggestions[word] }

func newFakeEngine() fakeEngine {
	return fakeEngine{
		known: map[string]bool{
			"greeting": true,
			"world":    true,
			"hello":    true,
			"message":  true,
		},
		suggestions: map[string][]string{
			"helo":  {"hello", "help"},
			"wrold": {"world"},
		},
	}
}

type testClient struct {
	t      *testing.T
	in     *io.PipeWriter
	msgs   chan rpcMessage
	done   chan error
	nextID int
	cfg    *config.Config
	// pending holds messages skipped while waiting for something else
	pending []rpcMessage
}

func startServer(t *testing.T) *testClient {
	t.Helper()
	engine := newFakeEngine()
	return startServerWith(t, func() ([]bridge.Engine, error) {
		return []bridge.Engine{engine}, nil
	})
}

func startServerWith(t *testing.T, load bridge.Loader) *testClient {
	t.Helper()
	cfg := config.Default()
	cfg.DictPath = filepath.Join(t.TempDir(), "dict.txt")

	inR, inW := io.Pipe()
	outR, outW := io.Pipe()
	srv := NewServer(inR, outW, ServerOptions{
		Config:   cfg,
		Debounce: 10 * time.Millisecond,
		Loader: func(context.Context, *config.Config) bridge.Loader {
			return load
		},
	})

	c := &testClient{
		t:    t,
		in:   inW,
		msgs: make(chan rpcMessage, 256),
		done: make(chan error, 1),
		cfg:  cfg,
	}
	go func() {
		reader := bufio.NewReader(outR)
		for {
			payload, err := readMessage(reader)
			if err != nil {
				close(c.msgs)
				return
			}
			var msg rpcMessage
			if err := json.Unmarshal(payload, &msg); err != nil {
				continue
			}
			c.msgs <- msg
		}
	}()
	go func() {
		c.done <- srv.Run(context.Background())
	}()
	t.Cleanup(func() {
		inW.Close()
		select {
		case <-c.done:
		case <-time.After(waitTimeout):
			t.Error("server did not stop")
		}
		outW.Close()
	})
	return c
}

func (c *testClient) write(msg map[string]any) {
	c.t.Helper()
	msg["jsonrpc"] = "2.0"
	payload, err := json.Marshal(msg)
	if err != nil {
		c.t.Fatalf("marshal: %v", err)
	}
	if err := writeMessage(c.in, payload); err != nil {
		c.t.Fatalf("write: %v", err)
	}
}

func (c *testClient) notify(method string, params any) {
	c.t.Helper()
	c.write(map[string]any{"method": method, "params": params})
}

func (c *testClient) request(method string, params any) rpcMessage {
	c.t.Helper()
	c.nextID++
	id := strconv.Itoa(c.nextID)
	c.write(map[string]any{"id": c.nextID, "method": method, "params": params})
	return c.waitFor(method+" response", false, func(msg rpcMessage) bool {
		return msg.Method == "" && string(msg.ID) == id
	})
}

// waitFor returns the first message satisfying match. With discard set,
// messages older than the match are dropped; otherwise they stay pending.
func (c *testClient) waitFor(what string, discard bool, match func(rpcMessage) bool) rpcMessage {
	c.t.Helper()
	for i, msg := range c.pending {
		if match(msg) {
			if discard {
				c.pending = c.pending[i+1:]
			} else {
				c.pending = slices.Delete(c.pending, i, i+1)
			}
			return msg
		}
	}
	deadline := time.After(waitTimeout)
	for {
		select {
		case msg, ok := <-c.msgs:
			if !ok {
				c.t.Fatalf("connection closed while waiting for %s", what)
			}
			if match(msg) {
				if discard {
					c.pending = nil
				}
				return msg
			}
			c.pending = append(c.pending, msg)
		case <-deadline:
			c.t.Fatalf("timed out waiting for %s", what)
		}
	}
}

// nextPublish returns the next diagnostics publish for uri, whatever it
// carries.
func (c *testClient) nextPublish(uri string) publishDiagnosticsParams {
	c.t.Helper()
	var params publishDiagnosticsParams
	c.waitFor("publish for "+uri, true, func(msg rpcMessage) bool {
		if msg.Method != "textDocument/publishDiagnostics" {
			return false
		}
		params = publishDiagnosticsParams{}
		return json.Unmarshal(msg.Params, &params) == nil && params.URI == uri
	})
	return params
}

// waitDiagnostics waits for a publish for uri carrying n diagnostics.
func (c *testClient) waitDiagnostics(uri string, n int) []lspDiagnostic {
	c.t.Helper()
	var params publishDiagnosticsParams
	c.waitFor("diagnostics for "+uri, true, func(msg rpcMessage) bool {
		if msg.Method != "textDocument/publishDiagnostics" {
			return false
		}
		params = publishDiagnosticsParams{}
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			return false
		}
		return params.URI == uri && len(params.Diagnostics) == n
	})
	return params.Diagnostics
}

func (c *testClient) initialize(options any) {
	c.t.Helper()
	params := map[string]any{"rootUri": pathToURI(c.t.TempDir())}
	if options != nil {
		params["initializationOptions"] = options
	}
	resp := c.request("initialize", params)
	if resp.Error != nil {
		c.t.Fatalf("initialize failed: %+v", resp.Error)
	}
	c.notify("initialized", map[string]any{})
}

func (c *testClient) open(name, languageID, text string) string {
	c.t.Helper()
	uri := pathToURI(filepath.Join(c.t.TempDir(), name))
	c.notify("textDocument/didOpen", didOpenTextDocumentParams{
		TextDocument: textDocumentItem{URI: uri, LanguageID: languageID, Version: 1, Text: text},
	})
	return uri
}

func wordOf(t *testing.T, d lspDiagnostic) string {
	t.Helper()
	var word string
	if err := json.Unmarshal(d.Data, &word); err != nil {
		t.Fatalf("decode diagnostic data: %v", err)
	}
	return word
}

func TestInitializeCapabilities(t *testing.T) {
	c := startServer(t)
	resp := c.request("initialize", map[string]any{})
	var result initializeResult
	if err := json.Unmarshal(resp.Result, &result); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	caps := result.Capabilities
	if !caps.TextDocumentSync.OpenClose || !caps.TextDocumentSync.Save.IncludeText {
		t.Fatalf("unexpected sync options: %+v", caps.TextDocumentSync)
	}
	if caps.TextDocumentSync.Change != 1 {
		t.Fatalf("expected full sync, got %d", caps.TextDocumentSync.Change)
	}
	if !caps.CodeActionProvider {
		t.Fatal("expected code action provider")
	}
	if caps.ExecuteCommandProvider == nil {
		t.Fatal("expected execute command provider")
	}
	want := []string{"replace.with.word", "add.to.dict", "add.all.to.dict"}
	if !slices.Equal(caps.ExecuteCommandProvider.Commands, want) {
		t.Fatalf("unexpected commands: %v", caps.ExecuteCommandProvider.Commands)
	}
	if result.ServerInfo == nil || result.ServerInfo.Name != "codeproof" {
		t.Fatalf("unexpected server info: %+v", result.ServerInfo)
	}
}

func TestPublishDiagnostics(t *testing.T) {
	c := startServer(t)
	c.initialize(nil)
	uri := c.open("greeting.js", "javascript", `const greeting = "helo wrold";`)

	diags := c.waitDiagnostics(uri, 2)
	first, second := diags[0], diags[1]
	if wordOf(t, first) != "helo" || wordOf(t, second) != "wrold" {
		t.Fatalf("unexpected words: %s, %s", first.Data, second.Data)
	}
	wantRange := lspRange{Start: position{Line: 0, Character: 18}, End: position{Line: 0, Character: 22}}
	if first.Range != wantRange {
		t.Fatalf("unexpected range: %+v", first.Range)
	}
	if first.Message != `Unknown word "helo"` {
		t.Fatalf("unexpected message: %q", first.Message)
	}
	if first.Code != "unknown-word" || first.Source != "codeproof" {
		t.Fatalf("unexpected code/source: %q/%q", first.Code, first.Source)
	}
	if first.Severity != 2 {
		t.Fatalf("expected warning severity, got %d", first.Severity)
	}
}

func TestDidChangeRechecks(t *testing.T) {
	c := startServer(t)
	c.initialize(map[string]any{"diagnostic_severity": "error"})
	uri := c.open("note.txt", "plaintext", "hello wrold")
	diags := c.waitDiagnostics(uri, 1)
	if diags[0].Severity != 1 {
		t.Fatalf("expected error severity, got %d", diags[0].Severity)
	}

	c.notify("textDocument/didChange", didChangeTextDocumentParams{
		TextDocument:   versionedTextDocumentIdentifier{URI: uri, Version: 2},
		ContentChanges: []textDocumentContentChangeEvent{{Text: "hello world"}},
	})
	c.waitDiagnostics(uri, 0)
}

func TestRecheckWhenCheckerBecomesReady(t *testing.T) {
	gate := make(chan struct{})
	var once sync.Once
	release := func() { once.Do(func() { close(gate) }) }
	engine := newFakeEngine()
	c := startServerWith(t, func() ([]bridge.Engine, error) {
		<-gate
		return []bridge.Engine{engine}, nil
	})
	t.Cleanup(release)
	c.initialize(nil)
	uri := c.open("note.txt", "plaintext", "hello wrold")

	if got := c.nextPublish(uri); len(got.Diagnostics) != 0 {
		t.Fatalf("expected no diagnostics while loading, got %d", len(got.Diagnostics))
	}
	release()
	got := c.nextPublish(uri)
	if len(got.Diagnostics) != 1 || wordOf(t, got.Diagnostics[0]) != "wrold" {
		t.Fatalf("unexpected diagnostics after load: %+v", got.Diagnostics)
	}
}

// stallingEngine blocks checks of stall until release is closed.
type stallingEngine struct {
	fakeEngine
	stall   string
	entered chan struct{}
	release chan struct{}
	once    *sync.Once
}

func (e stallingEngine) Check(word string) bool {
	if word == e.stall {
		e.once.Do(func() { close(e.entered) })
		<-e.release
		return false
	}
	return e.fakeEngine.Check(word)
}

func TestSupersededCheckIsNotPublished(t *testing.T) {
	engine := stallingEngine{
		fakeEngine: newFakeEngine(),
		stall:      "stuck",
		entered:    make(chan struct{}),
		release:    make(chan struct{}),
		once:       &sync.Once{},
	}
	var releaseOnce sync.Once
	release := func() { releaseOnce.Do(func() { close(engine.release) }) }
	c := startServerWith(t, func() ([]bridge.Engine, error) {
		return []bridge.Engine{engine}, nil
	})
	t.Cleanup(release)
	c.initialize(nil)

	// a finding proves the checker has loaded
	ready := c.open("ready.txt", "plaintext", "wrold")
	c.waitDiagnostics(ready, 1)

	uri := c.open("note.txt", "plaintext", "stuck")
	select {
	case <-engine.entered:
	case <-time.After(waitTimeout):
		t.Fatal("check of version 1 never started")
	}
	c.notify("textDocument/didChange", didChangeTextDocumentParams{
		TextDocument:   versionedTextDocumentIdentifier{URI: uri, Version: 2},
		ContentChanges: []textDocumentContentChangeEvent{{Text: "hello"}},
	})
	// messages are handled in order, so the change has cancelled version 1
	// once this request is answered
	c.request("codeproof/sync", nil)
	release()

	got := c.nextPublish(uri)
	if got.Version == nil || *got.Version != 2 || len(got.Diagnostics) != 0 {
		t.Fatalf("expected empty publish for version 2, got version %v with %d diagnostics", got.Version, len(got.Diagnostics))
	}
	if resp := c.request("shutdown", nil); resp.Error != nil {
		t.Fatalf("shutdown failed: %+v", resp.Error)
	}
	for _, msg := range c.pending {
		var params publishDiagnosticsParams
		if msg.Method == "textDocument/publishDiagnostics" && json.Unmarshal(msg.Params, &params) == nil &&
			params.Version != nil && *params.Version == 1 && params.URI == uri {
			t.Fatalf("superseded version 1 was published: %+v", params)
		}
	}
}

func TestDidCloseClearsDiagnostics(t *testing.T) {
	c := startServer(t)
	c.initialize(nil)
	uri := c.open("note.txt", "plaintext", "wrold")
	c.waitDiagnostics(uri, 1)

	c.notify("textDocument/didClose", didCloseTextDocumentParams{
		TextDocument: textDocumentIdentifier{URI: uri},
	})
	c.waitDiagnostics(uri, 0)
}

func TestCodeActionsAndAddToDict(t *testing.T) {
	c := startServer(t)
	c.initialize(nil)
	uri := c.open("greeting.js", "javascript", `const greeting = "helo wrold";`)
	diags := c.waitDiagnostics(uri, 2)

	resp := c.request("textDocument/codeAction", codeActionParams{
		TextDocument: textDocumentIdentifier{URI: uri},
		Range:        lspRange{Start: position{Line: 0, Character: 19}, End: position{Line: 0, Character: 19}},
		Context:      codeActionContext{Diagnostics: diags},
	})
	var actions []codeAction
	if err := json.Unmarshal(resp.Result, &actions); err != nil {
		t.Fatalf("decode actions: %v", err)
	}
	var titles []string
	for _, a := range actions {
		titles = append(titles, a.Title)
	}
	want := []string{
		`Replace with "hello"`,
		`Replace with "help"`,
		`Add "helo" to dictionary`,
		"Add all misspelled words in current file to local dictionary",
	}
	if !slices.Equal(titles, want) {
		t.Fatalf("unexpected actions: %q", titles)
	}
	edit := actions[0].Edit.Changes[uri]
	if len(edit) != 1 || edit[0].NewText != "hello" || edit[0].Range != diags[0].Range {
		t.Fatalf("unexpected edit: %+v", edit)
	}

	resp = c.request("workspace/executeCommand", map[string]any{
		"command":   "add.to.dict",
		"arguments": []any{"helo", uri},
	})
	if resp.Error != nil {
		t.Fatalf("add.to.dict failed: %+v", resp.Error)
	}
	remaining := c.waitDiagnostics(uri, 1)
	if wordOf(t, remaining[0]) != "wrold" {
		t.Fatalf("unexpected remaining word %s", remaining[0].Data)
	}
	data, err := os.ReadFile(c.cfg.DictPath)
	if err != nil {
		t.Fatalf("read dictionary: %v", err)
	}
	if strings.TrimSpace(string(data)) != "helo" {
		t.Fatalf("unexpected dictionary file %q", data)
	}

	resp = c.request("workspace/executeCommand", map[string]any{
		"command":   "replace.with.word",
		"arguments": []any{uri, remaining[0].Range, "world"},
	})
	if resp.Error != nil {
		t.Fatalf("replace.with.word failed: %+v", resp.Error)
	}
	c.waitDiagnostics(uri, 0)
}

func TestCodeActionOutsideDiagnostic(t *testing.T) {
	c := startServer(t)
	c.initialize(nil)
	uri := c.open("note.txt", "plaintext", "hello wrold")
	diags := c.waitDiagnostics(uri, 1)

	resp := c.request("textDocument/codeAction", codeActionParams{
		TextDocument: textDocumentIdentifier{URI: uri},
		Range:        lspRange{Start: position{Line: 0, Character: 1}, End: position{Line: 0, Character: 1}},
		Context:      codeActionContext{Diagnostics: diags},
	})
	if string(resp.Result) != "null" {
		t.Fatalf("expected null result, got %s", resp.Result)
	}
}

func TestAddAllToDict(t *testing.T) {
	c := startServer(t)
	c.initialize(nil)
	uri := c.open("note.txt", "plaintext", "fooo barr fooo hello")
	c.waitDiagnostics(uri, 3)

	resp := c.request("workspace/executeCommand", map[string]any{
		"command":   "add.all.to.dict",
		"arguments": []any{uri},
	})
	if resp.Error != nil {
		t.Fatalf("add.all.to.dict failed: %+v", resp.Error)
	}
	c.waitDiagnostics(uri, 0)
	data, err := os.ReadFile(c.cfg.DictPath)
	if err != nil {
		t.Fatalf("read dictionary: %v", err)
	}
	if got := strings.Fields(string(data)); !slices.Equal(got, []string{"fooo", "barr"}) {
		t.Fatalf("unexpected dictionary words %q", got)
	}
}

func TestAcceptedWordsLoadedOnInitialize(t *testing.T) {
	c := startServer(t)
	if err := os.WriteFile(c.cfg.DictPath, []byte("wrold\n"), 0o600); err != nil {
		t.Fatalf("write dictionary: %v", err)
	}
	c.initialize(nil)
	uri := c.open("note.txt", "plaintext", "helo wrold")
	diags := c.waitDiagnostics(uri, 1)
	if wordOf(t, diags[0]) != "helo" {
		t.Fatalf("unexpected word %s", diags[0].Data)
	}
}

func TestExecuteCommandErrors(t *testing.T) {
	c := startServer(t)
	c.initialize(nil)

	resp := c.request("workspace/executeCommand", map[string]any{"command": "nope"})
	if resp.Error == nil || resp.Error.Code != codeInvalidParams {
		t.Fatalf("expected invalid params for unknown command, got %+v", resp.Error)
	}
	resp = c.request("workspace/executeCommand", map[string]any{
		"command":   "add.to.dict",
		"arguments": []any{"only-one"},
	})
	if resp.Error == nil || resp.Error.Code != codeInvalidParams {
		t.Fatalf("expected invalid params for bad arguments, got %+v", resp.Error)
	}
}

func TestInvalidInitializationOptionsAreLogged(t *testing.T) {
	c := startServer(t)
	c.nextID++
	c.write(map[string]any{
		"id":     c.nextID,
		"method": "initialize",
		"params": map[string]any{"initializationOptions": map[string]any{"min_word_length": "four"}},
	})
	msg := c.waitFor("logMessage", false, func(msg rpcMessage) bool {
		return msg.Method == "window/logMessage"
	})
	var params logMessageParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		t.Fatalf("decode logMessage: %v", err)
	}
	if params.Type != messageError || !strings.Contains(params.Message, "initializationOptions") {
		t.Fatalf("unexpected log message: %+v", params)
	}
	c.waitFor("initialize response", false, func(msg rpcMessage) bool {
		return string(msg.ID) == strconv.Itoa(c.nextID) && msg.Error == nil
	})
}

func TestDidChangeConfiguration(t *testing.T) {
	c := startServer(t)
	c.initialize(nil)
	uri := c.open("note.txt", "plaintext", "helo wrold message")
	c.waitDiagnostics(uri, 2)

	c.notify("workspace/didChangeConfiguration", map[string]any{
		"settings": map[string]any{"codeproof": map[string]any{"min_word_length": 6}},
	})
	c.waitDiagnostics(uri, 0)
}

func TestMethodNotFound(t *testing.T) {
	c := startServer(t)
	resp := c.request("textDocument/hover", map[string]any{})
	if resp.Error == nil || resp.Error.Code != codeMethodNotFound {
		t.Fatalf("expected method not found, got %+v", resp.Error)
	}
}

func TestShutdownAndExit(t *testing.T) {
	c := startServer(t)
	c.initialize(nil)
	resp := c.request("shutdown", nil)
	if resp.Error != nil {
		t.Fatalf("shutdown failed: %+v", resp.Error)
	}
	c.notify("exit", nil)
	select {
	case err := <-c.done:
		if !errors.Is(err, ErrExit) {
			t.Fatalf("expected ErrExit, got %v", err)
		}
		c.done <- err
	case <-time.After(waitTimeout):
		t.Fatal("server did not exit")
	}
}

func TestExitWithoutShutdown(t *testing.T) {
	c := startServer(t)
	c.notify("exit", nil)
	select {
	case err := <-c.done:
		if !errors.Is(err, ErrExitWithoutShutdown) {
			t.Fatalf("expected ErrExitWithoutShutdown, got %v", err)
		}
		c.done <- err
	case <-time.After(waitTimeout):
		t.Fatal("server did not exit")
	}
}
