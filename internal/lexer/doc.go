// Package lexer splits an annotated rune stream into whitespace-delimited
// tokens.
//
// The Lexer is a two-state machine (between tokens / inside a token) pulling
// from a chars.Annotator. A rune is a boundary when unicode.IsSpace reports
// true for it or when it is the End element. Each call to Next runs the
// machine until one token is complete or the stream is over; the machine is
// always between tokens when Next returns.
package lexer
