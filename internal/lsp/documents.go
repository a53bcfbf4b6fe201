package lsp

import (
	"context"
	"encoding/json"
	"time"

	"codeproof/internal/diag"
	"codeproof/internal/pipeline"
)

func (s *Server) handleDidOpen(msg *rpcMessage) error {
	var params didOpenTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		s.logf("didOpen: invalid params: %v", err)
		return nil
	}
	uri := canonicalURI(params.TextDocument.URI)
	if uri == "" {
		return nil
	}
	s.mu.Lock()
	if old, ok := s.docs[uri]; ok {
		old.stop()
	}
	s.docs[uri] = &document{
		text:       params.TextDocument.Text,
		languageID: params.TextDocument.LanguageID,
		version:    params.TextDocument.Version,
	}
	s.mu.Unlock()
	s.scheduleCheck(uri, 0)
	return nil
}

func (s *Server) handleDidChange(msg *rpcMessage) error {
	var params didChangeTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		s.logf("didChange: invalid params: %v", err)
		return nil
	}
	uri := canonicalURI(params.TextDocument.URI)
	s.mu.Lock()
	doc, ok := s.docs[uri]
	if ok {
		doc.text = applyChanges(doc.text, params.ContentChanges)
		doc.version = params.TextDocument.Version
	}
	s.mu.Unlock()
	if ok {
		s.scheduleCheck(uri, s.debounceDelay())
	}
	return nil
}

func (s *Server) handleDidSave(msg *rpcMessage) error {
	var params didSaveTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		s.logf("didSave: invalid params: %v", err)
		return nil
	}
	uri := canonicalURI(params.TextDocument.URI)
	s.mu.Lock()
	doc, ok := s.docs[uri]
	if ok && params.Text != nil {
		doc.text = *params.Text
	}
	s.mu.Unlock()
	if ok {
		s.scheduleCheck(uri, 0)
	}
	return nil
}

func (s *Server) handleDidClose(msg *rpcMessage) error {
	var params didCloseTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		s.logf("didClose: invalid params: %v", err)
		return nil
	}
	uri := canonicalURI(params.TextDocument.URI)
	s.mu.Lock()
	if doc, ok := s.docs[uri]; ok {
		doc.stop()
		delete(s.docs, uri)
	}
	_, hadDiagnostics := s.published[uri]
	delete(s.published, uri)
	s.mu.Unlock()
	if hadDiagnostics {
		if err := s.sendPublish(uri, nil, nil); err != nil {
			s.logf("failed to clear diagnostics: %v", err)
		}
	}
	return nil
}

func (s *Server) debounceDelay() time.Duration {
	if s.debounce > 0 {
		return s.debounce
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return time.Duration(s.cfg.DebounceMS) * time.Millisecond
}

// scheduleCheck starts a new generation for uri and checks it after delay.
// Checks of older generations are cancelled and never published.
func (s *Server) scheduleCheck(uri string, delay time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[uri]
	if !ok || s.shutdownRequested {
		return
	}
	doc.stop()
	doc.gen++
	gen := doc.gen
	doc.timer = time.AfterFunc(delay, func() {
		s.checkDocument(uri, gen)
	})
}

func (s *Server) recheckAll() {
	s.mu.Lock()
	uris := make([]string, 0, len(s.docs))
	for uri := range s.docs {
		uris = append(uris, uri)
	}
	s.mu.Unlock()
	for _, uri := range uris {
		s.scheduleCheck(uri, 0)
	}
}

func (s *Server) checkDocument(uri string, gen int64) {
	s.mu.Lock()
	doc, ok := s.docs[uri]
	if !ok || doc.gen != gen {
		s.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(s.baseCtx)
	doc.cancel = cancel
	text, languageID, version := doc.text, doc.languageID, doc.version
	pipe, accepted, severity := s.pipe, s.store.Set(), s.cfg.Severity()
	s.mu.Unlock()
	defer cancel()

	findings := pipe.Check(ctx, text, languageID, accepted)
	if ctx.Err() != nil {
		return
	}
	list := make([]lspDiagnostic, 0, len(findings))
	for _, f := range findings {
		list = append(list, toLSPDiagnostic(diag.UnknownWord(severity, uri, f.Span(), f.Word)))
	}

	// Publishing under mu keeps a concurrent close or newer generation from
	// being overtaken by this result.
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok = s.docs[uri]
	if !ok || doc.gen != gen {
		return
	}
	s.published[uri] = struct{}{}
	if err := s.sendPublish(uri, &version, list); err != nil {
		s.logf("failed to publish diagnostics: %v", err)
	}
}

func (s *Server) clearPublishedDiagnostics() {
	s.mu.Lock()
	prev := s.published
	s.published = make(map[string]struct{})
	s.mu.Unlock()
	for uri := range prev {
		if err := s.sendPublish(uri, nil, nil); err != nil {
			s.logf("failed to clear diagnostics: %v", err)
		}
	}
}

// documentSnapshot returns what the commands need to know about an open
// document.
func (s *Server) documentSnapshot(uri string) (text, languageID string, pipe *pipeline.Pipeline, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[uri]
	if !ok {
		return "", "", s.pipe, false
	}
	return doc.text, doc.languageID, s.pipe, true
}

func toLSPDiagnostic(d diag.Diagnostic) lspDiagnostic {
	data, _ := json.Marshal(d.Word)
	return lspDiagnostic{
		Range:    rangeForSpan(d.Primary),
		Severity: d.Severity.LSP(),
		Code:     string(d.Code),
		Source:   diag.Source,
		Message:  d.Message,
		Data:     data,
	}
}
