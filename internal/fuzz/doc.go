// Package fuzztests houses Go fuzz harnesses for the tokenizer. Every input
// is run through the lexer and the output is checked against the positional
// invariants in internal/testkit, so a failure is either a panic or a token
// that does not describe the text it came from.
package fuzztests
