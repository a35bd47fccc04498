// Package token defines the whitespace-delimited token record.
// Invariants:
//   - Token.Text is never empty and never contains whitespace.
//   - Bytes and Chars use the inclusive convention: End is the offset of the
//     last character that belongs to the token, so a one-character token has
//     End == Start.
//   - Span is the half-open byte range of Text in the input; its End is the
//     offset of the boundary that closed the token.
//   - Index values of one stream are 0, 1, 2, ... without gaps.
package token
