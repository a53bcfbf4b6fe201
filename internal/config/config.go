// Package config loads codeproof settings from defaults, a config file and
// the options sent by the editor.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"

	"codeproof/internal/diag"
	"codeproof/internal/resolve"
)

const (
	DefaultMinWordLength  = 4
	DefaultMaxSuggestions = 6
	DefaultDebounceMS     = 300
	DefaultSeverity       = "warning"
)

// Config holds every setting. Keys are snake_case in every file format.
type Config struct {
	DictPath           string         `json:"dict_path,omitempty" toml:"dict_path" yaml:"dict_path"`
	Dictionaries       []resolve.Spec `json:"dictionaries,omitempty" toml:"dictionaries" yaml:"dictionaries"`
	DiagnosticSeverity string         `json:"diagnostic_severity,omitempty" toml:"diagnostic_severity" yaml:"diagnostic_severity"`
	MinWordLength      int            `json:"min_word_length,omitempty" toml:"min_word_length" yaml:"min_word_length"`
	CaseSensitive      bool           `json:"case_sensitive,omitempty" toml:"case_sensitive" yaml:"case_sensitive"`
	MaxSuggestions     int            `json:"max_suggestions,omitempty" toml:"max_suggestions" yaml:"max_suggestions"`
	SearchPaths        []string       `json:"search_paths,omitempty" toml:"search_paths" yaml:"search_paths"`
	DownloadURL        string         `json:"download_url,omitempty" toml:"download_url" yaml:"download_url"`
	CacheDir           string         `json:"cache_dir,omitempty" toml:"cache_dir" yaml:"cache_dir"`
	DebounceMS         int            `json:"debounce_ms,omitempty" toml:"debounce_ms" yaml:"debounce_ms"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		DictPath:           DefaultDictPath(),
		Dictionaries:       []resolve.Spec{{Language: resolve.DefaultLanguage()}},
		DiagnosticSeverity: DefaultSeverity,
		MinWordLength:      DefaultMinWordLength,
		MaxSuggestions:     DefaultMaxSuggestions,
		DownloadURL:        resolve.DefaultDownloadURL,
		DebounceMS:         DefaultDebounceMS,
	}
}

// Dir returns <UserConfigDir>/codeproof.
func Dir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		base = "."
	}
	return filepath.Join(base, "codeproof")
}

// DefaultDictPath returns the accepted-word file used when none is set.
func DefaultDictPath() string {
	return filepath.Join(Dir(), "dict.txt")
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	out := *c
	out.Dictionaries = append([]resolve.Spec(nil), c.Dictionaries...)
	out.SearchPaths = append([]string(nil), c.SearchPaths...)
	return &out
}

// Severity returns the parsed diagnostic severity.
func (c *Config) Severity() diag.Severity {
	sev, err := diag.ParseSeverity(c.DiagnosticSeverity)
	if err != nil {
		return diag.SevWarning
	}
	return sev
}

// ResolverOptions returns the dictionary resolution settings.
func (c *Config) ResolverOptions() resolve.Options {
	return resolve.Options{
		SearchPaths: c.SearchPaths,
		DownloadURL: c.DownloadURL,
		CacheDir:    c.CacheDir,
	}
}

// Normalize expands ~ in paths and fills zero values with defaults.
func (c *Config) Normalize() error {
	var errs []error
	expand := func(p *string) {
		if *p == "" {
			return
		}
		v, err := homedir.Expand(*p)
		if err != nil {
			errs = append(errs, fmt.Errorf("expand %s: %w", *p, err))
			return
		}
		*p = v
	}
	if c.DictPath == "" {
		c.DictPath = DefaultDictPath()
	}
	expand(&c.DictPath)
	expand(&c.CacheDir)
	for i := range c.SearchPaths {
		expand(&c.SearchPaths[i])
	}
	if c.DiagnosticSeverity == "" {
		c.DiagnosticSeverity = DefaultSeverity
	}
	if c.MinWordLength == 0 {
		c.MinWordLength = DefaultMinWordLength
	}
	if c.MaxSuggestions == 0 {
		c.MaxSuggestions = DefaultMaxSuggestions
	}
	if c.DebounceMS == 0 {
		c.DebounceMS = DefaultDebounceMS
	}
	if c.DownloadURL == "" {
		c.DownloadURL = resolve.DefaultDownloadURL
	}
	if len(c.Dictionaries) == 0 {
		c.Dictionaries = []resolve.Spec{{Language: resolve.DefaultLanguage()}}
	}
	return errors.Join(errs...)
}

// Validate reports every invalid setting.
func (c *Config) Validate() error {
	var errs []error
	if _, err := diag.ParseSeverity(c.DiagnosticSeverity); err != nil {
		errs = append(errs, fmt.Errorf("diagnostic_severity: %w", err))
	}
	if c.MinWordLength < 1 {
		errs = append(errs, fmt.Errorf("min_word_length must be at least 1, got %d", c.MinWordLength))
	}
	if c.MaxSuggestions < 1 {
		errs = append(errs, fmt.Errorf("max_suggestions must be at least 1, got %d", c.MaxSuggestions))
	}
	if c.DebounceMS < 0 {
		errs = append(errs, fmt.Errorf("debounce_ms must not be negative, got %d", c.DebounceMS))
	}
	if c.DownloadURL != "" && !strings.Contains(c.DownloadURL, "{ext}") {
		errs = append(errs, fmt.Errorf("download_url must contain {ext}"))
	}
	for i, d := range c.Dictionaries {
		hasFiles := d.Aff != "" || d.Dic != ""
		switch {
		case hasFiles && (d.Aff == "" || d.Dic == ""):
			errs = append(errs, fmt.Errorf("dictionaries[%d]: aff and dic must be set together", i))
		case !hasFiles && d.Language == "":
			errs = append(errs, fmt.Errorf("dictionaries[%d]: language or aff/dic required", i))
		}
	}
	return errors.Join(errs...)
}
