package lsp

import (
	"encoding/json"

	"codeproof/internal/config"
)

// handleDidChangeConfiguration layers the "codeproof" section of the new
// settings over the current configuration. Invalid settings are reported and
// ignored.
func (s *Server) handleDidChangeConfiguration(msg *rpcMessage) error {
	if len(msg.Params) == 0 {
		return nil
	}
	var params didChangeConfigurationParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		s.logf("didChangeConfiguration: invalid params: %v", err)
		return nil
	}
	section := config.SettingsSection(params.Settings)
	if section == nil {
		return nil
	}
	s.mu.Lock()
	current := s.cfg
	s.mu.Unlock()
	cfg, err := config.ApplyOptions(current, section)
	if err != nil {
		s.logError("settings: %v", err)
		return nil
	}
	s.configure(cfg)
	return nil
}
