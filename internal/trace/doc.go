// Package trace records what the language server and the CLI are doing.
//
// Tracing is off unless requested on the command line:
//
//	codeproof --trace=- --trace-level=request lsp
//	codeproof --trace=check.ndjson --trace-level=debug check ./src
//
// The request level shows LSP messages and commands, detail adds one span
// per checked document, and debug adds single-word lookups. Failures are
// emitted at every level except off.
//
// The tracer travels in the context, and spans nest through it:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	ctx, span := trace.Start(ctx, trace.ScopeDocument, "pipeline.check")
//	defer span.End("")
package trace
