// Package diag defines the diagnostic model shared by the CLI and the
// language server.
//
// Diagnostic is the central record: severity, a stable Code, a message, the
// file path and the primary source.Span, plus the misspelled word and
// optional replacement fixes. Package diag does no formatting or IO;
// rendering lives in internal/diagfmt and the LSP conversion in
// internal/lsp.
package diag
