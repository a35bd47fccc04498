package token

import (
	"fmt"

	"wstok/internal/source"
)

// Range is an inclusive pair of offsets.
type Range struct {
	Start uint32 `json:"start" msgpack:"start"`
	End   uint32 `json:"end" msgpack:"end"`
}

func (r Range) String() string {
	return fmt.Sprintf("%d..=%d", r.Start, r.End)
}

// Len returns the number of positions covered by r.
func (r Range) Len() uint32 {
	return r.End - r.Start + 1
}

// Token is one maximal run of non-whitespace characters.
type Token struct {
	Text  string      `json:"text" msgpack:"text"`
	Bytes Range       `json:"bytes" msgpack:"bytes"`
	Chars Range       `json:"chars" msgpack:"chars"`
	Index uint32      `json:"index" msgpack:"index"`
	Span  source.Span `json:"span" msgpack:"span"`
}

// String renders the token the way debug dumps print it.
func (t Token) String() string {
	return fmt.Sprintf("Token { text: %q, bytes: %s, chars: %s, index: %d }", t.Text, t.Bytes, t.Chars, t.Index)
}

// Before reports whether t ends strictly before other starts.
func (t Token) Before(other Token) bool {
	return t.Bytes.End < other.Bytes.Start && t.Chars.End < other.Chars.Start
}
