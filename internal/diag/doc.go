// Package diag defines the diagnostic model shared by the input loader, the
// character annotator and the CLI.
//
// Diagnostic is the central record: a Severity, a numeric Code with a stable
// string form (LEX1001, IO4001), a short message and a primary source.Span.
// Producers never format anything themselves; they call a Reporter, usually a
// BagReporter that collects into a Bag with an upper bound. Rendering lives in
// internal/diagfmt.
//
// Tokenization itself never fails on malformed text. Findings such as invalid
// UTF-8 are warnings; the token stream is produced regardless.
package diag
