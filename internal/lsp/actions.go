package lsp

import (
	"context"
	"encoding/json"
	"fmt"

	"codeproof/internal/diag"
	"codeproof/internal/pipeline"
)

// handleCodeAction answers from a goroutine because suggestions wait on the
// spell checker.
func (s *Server) handleCodeAction(msg *rpcMessage) error {
	var params codeActionParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return s.sendError(msg.ID, codeInvalidParams, "invalid params")
	}
	id := msg.ID
	s.mu.Lock()
	pipe := s.pipe
	ctx := s.baseCtx
	s.mu.Unlock()
	s.goAsync(func() {
		actions := buildCodeActions(ctx, pipe, params)
		if err := s.sendResponse(id, actions); err != nil {
			s.logf("failed to send code actions: %v", err)
		}
	})
	return nil
}

// buildCodeActions offers one replacement per suggestion for the
// unknown-word diagnostic under the cursor, then the dictionary commands.
// It returns nil when no such diagnostic is there.
func buildCodeActions(ctx context.Context, pipe *pipeline.Pipeline, params codeActionParams) []codeAction {
	target, word, ok := diagnosticAt(params.Context.Diagnostics, params.Range.Start)
	if !ok {
		return nil
	}
	uri := params.TextDocument.URI
	suggestions := pipe.Suggest(ctx, word)
	actions := make([]codeAction, 0, len(suggestions)+2)
	for _, suggestion := range suggestions {
		title := fmt.Sprintf("Replace with %q", suggestion)
		actions = append(actions, codeAction{
			Title:       title,
			Kind:        "quickfix",
			Diagnostics: []lspDiagnostic{target},
			Edit: &workspaceEdit{
				Changes: map[string][]textEdit{
					uri: {{Range: target.Range, NewText: suggestion}},
				},
			},
			Command: &command{
				Title:     title,
				Command:   cmdReplaceWithWord,
				Arguments: []any{uri, target.Range, suggestion},
			},
		})
	}
	addTitle := fmt.Sprintf("Add %q to dictionary", word)
	actions = append(actions, codeAction{
		Title:       addTitle,
		Kind:        "quickfix",
		Diagnostics: []lspDiagnostic{target},
		Command: &command{
			Title:     addTitle,
			Command:   cmdAddToDict,
			Arguments: []any{word, uri},
		},
	})
	const addAllTitle = "Add all misspelled words in current file to local dictionary"
	actions = append(actions, codeAction{
		Title: addAllTitle,
		Kind:  "quickfix",
		Command: &command{
			Title:     addAllTitle,
			Command:   cmdAddAllToDict,
			Arguments: []any{uri},
		},
	})
	return actions
}

// diagnosticAt finds the first codeproof diagnostic whose range holds pos
// and returns it together with the word stored in its data.
func diagnosticAt(list []lspDiagnostic, pos position) (lspDiagnostic, string, bool) {
	for _, d := range list {
		if d.Source != "" && d.Source != diag.Source {
			continue
		}
		if !d.Range.covers(pos) || len(d.Data) == 0 {
			continue
		}
		var word string
		if err := json.Unmarshal(d.Data, &word); err != nil || word == "" {
			continue
		}
		return d, word, true
	}
	return lspDiagnostic{}, "", false
}
