package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schema.json
var schemaData []byte

const schemaURL = "codeproof://schema/options.json"

var optionsSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaURL, bytes.NewReader(schemaData)); err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}
	return compiler.Compile(schemaURL)
})

// ValidateOptions checks raw editor options against the options schema.
func ValidateOptions(raw json.RawMessage) error {
	schema, err := optionsSchema()
	if err != nil {
		return err
	}
	var instance any
	if err := json.Unmarshal(raw, &instance); err != nil {
		return fmt.Errorf("decode options: %w", err)
	}
	if err := schema.Validate(instance); err != nil {
		return fmt.Errorf("invalid options: %w", err)
	}
	return nil
}

// ApplyOptions overlays editor options (LSP initializationOptions or the
// codeproof section of a configuration change) on a copy of base. Empty or
// null options return the copy unchanged.
func ApplyOptions(base *Config, raw json.RawMessage) (*Config, error) {
	cfg := base.Clone()
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return cfg, nil
	}
	if err := ValidateOptions(trimmed); err != nil {
		return nil, err
	}
	// lists replace rather than merge
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &probe); err != nil {
		return nil, fmt.Errorf("decode options: %w", err)
	}
	if _, ok := probe["dictionaries"]; ok {
		cfg.Dictionaries = nil
	}
	if _, ok := probe["search_paths"]; ok {
		cfg.SearchPaths = nil
	}
	if err := json.Unmarshal(trimmed, cfg); err != nil {
		return nil, fmt.Errorf("decode options: %w", err)
	}
	if err := cfg.Normalize(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	return cfg, nil
}

// SettingsSection extracts the codeproof object from a
// workspace/didChangeConfiguration settings value. It returns nil when the
// settings carry no codeproof section.
func SettingsSection(settings json.RawMessage) json.RawMessage {
	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal(settings, &wrapper); err != nil {
		return nil
	}
	return wrapper["codeproof"]
}
