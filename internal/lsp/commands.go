package lsp

import (
	"encoding/json"
	"errors"
	"fmt"
)

const (
	cmdReplaceWithWord = "replace.with.word"
	cmdAddToDict       = "add.to.dict"
	cmdAddAllToDict    = "add.all.to.dict"
)

const codeInternalError = -32603

var (
	errUnknownCommand = errors.New("unknown command")
	errBadArguments   = errors.New("bad command arguments")
)

func commandNames() []string {
	return []string{cmdReplaceWithWord, cmdAddToDict, cmdAddAllToDict}
}

func (s *Server) handleExecuteCommand(msg *rpcMessage) error {
	var params executeCommandParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return s.sendError(msg.ID, codeInvalidParams, "invalid params")
	}
	id := msg.ID
	s.goAsync(func() {
		err := s.executeCommand(params)
		switch {
		case err == nil:
			err = s.sendResponse(id, nil)
		case errors.Is(err, errUnknownCommand), errors.Is(err, errBadArguments):
			err = s.sendError(id, codeInvalidParams, err.Error())
		default:
			s.logError("%s: %v", params.Command, err)
			err = s.sendError(id, codeInternalError, err.Error())
		}
		if err != nil {
			s.logf("failed to answer %s: %v", params.Command, err)
		}
	})
	return nil
}

func (s *Server) executeCommand(params executeCommandParams) error {
	switch params.Command {
	case cmdReplaceWithWord:
		var (
			uri  string
			rng  lspRange
			word string
		)
		if err := decodeArguments(params.Arguments, &uri, &rng, &word); err != nil {
			return err
		}
		return s.replaceWord(canonicalURI(uri), rng, word)
	case cmdAddToDict:
		var word, uri string
		if err := decodeArguments(params.Arguments, &word, &uri); err != nil {
			return err
		}
		return s.addToDict(canonicalURI(uri), word)
	case cmdAddAllToDict:
		var uri string
		if err := decodeArguments(params.Arguments, &uri); err != nil {
			return err
		}
		return s.addAllToDict(canonicalURI(uri))
	default:
		return fmt.Errorf("%w: %q", errUnknownCommand, params.Command)
	}
}

func decodeArguments(raw []json.RawMessage, targets ...any) error {
	if len(raw) != len(targets) {
		return fmt.Errorf("%w: want %d, got %d", errBadArguments, len(targets), len(raw))
	}
	for i, target := range targets {
		if err := json.Unmarshal(raw[i], target); err != nil {
			return fmt.Errorf("%w: argument %d: %v", errBadArguments, i, err)
		}
	}
	return nil
}

// replaceWord edits the server copy of the document. The client applies
// the same edit from the code action.
func (s *Server) replaceWord(uri string, rng lspRange, word string) error {
	s.mu.Lock()
	doc, ok := s.docs[uri]
	if ok {
		doc.text = replaceRange(doc.text, rng, word)
	}
	s.mu.Unlock()
	if ok {
		s.scheduleCheck(uri, 0)
	}
	return nil
}

func (s *Server) addToDict(uri, word string) error {
	s.mu.Lock()
	store := s.store
	s.mu.Unlock()
	if _, err := store.Add(word); err != nil {
		return err
	}
	s.scheduleCheck(uri, 0)
	return nil
}

func (s *Server) addAllToDict(uri string) error {
	text, languageID, pipe, ok := s.documentSnapshot(uri)
	if !ok {
		return nil
	}
	s.mu.Lock()
	store := s.store
	s.mu.Unlock()
	words := pipe.Misspelled(s.context(), text, languageID, store.Set())
	if _, err := store.AddAll(words); err != nil {
		return err
	}
	s.scheduleCheck(uri, 0)
	return nil
}
