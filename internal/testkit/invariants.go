// Package testkit holds checks shared by unit, property and fuzz tests.
package testkit

import (
	"fmt"
	"unicode"
	"unicode/utf8"

	"fortio.org/safecast"

	"wstok/internal/source"
	"wstok/internal/token"
)

// CheckTokenInvariants verifies toks against the content they were cut from:
//  1. indices are 0, 1, 2, ... in order
//  2. every token is non-empty, whitespace-free and decodes from its span
//  3. byte and char ranges agree with the span and with each other
//  4. tokens are ordered and separated only by whitespace
//  5. no non-whitespace text is left outside the tokens
//
// Invalid UTF-8 bytes count as one char each and read back as U+FFFD.
func CheckTokenInvariants(toks []token.Token, fileID source.FileID, content []byte) error {
	size, err := safecast.Conv[uint32](len(content))
	if err != nil {
		return fmt.Errorf("content length overflow: %w", err)
	}

	var (
		cursor uint32 // first byte not yet accounted for
		chars  uint32 // chars before cursor
	)
	for i, tok := range toks {
		want, convErr := safecast.Conv[uint32](i)
		if convErr != nil {
			return fmt.Errorf("index overflow: %w", convErr)
		}
		if tok.Index != want {
			return fmt.Errorf("token %d has index %d", i, tok.Index)
		}
		sp := tok.Span
		if sp.File != fileID {
			return fmt.Errorf("token %d: span file %d, want %d", i, sp.File, fileID)
		}
		if sp.Start >= sp.End || sp.End > size {
			return fmt.Errorf("token %d: span %v out of bounds (size %d)", i, sp, size)
		}
		if sp.Start < cursor {
			return fmt.Errorf("token %d: span %v overlaps the previous token", i, sp)
		}

		gap, gapChars, ok := whitespaceOnly(content[cursor:sp.Start])
		if !ok {
			return fmt.Errorf("token %d: non-whitespace %q skipped before it", i, gap)
		}
		chars += gapChars

		raw := content[sp.Start:sp.End]
		text, n := decode(raw)
		if tok.Text != text {
			return fmt.Errorf("token %d: text %q, span decodes to %q", i, tok.Text, text)
		}
		for _, r := range tok.Text {
			if unicode.IsSpace(r) {
				return fmt.Errorf("token %d: text %q contains whitespace", i, tok.Text)
			}
		}
		if tok.Bytes.Start != sp.Start || tok.Bytes.End >= sp.End || tok.Bytes.End < tok.Bytes.Start {
			return fmt.Errorf("token %d: bytes %v disagree with span %v", i, tok.Bytes, sp)
		}
		if _, last := lastRune(raw); tok.Bytes.End != sp.End-last {
			return fmt.Errorf("token %d: bytes end %d is not the start of the last char", i, tok.Bytes.End)
		}
		if tok.Chars.Start != chars || tok.Chars.Len() != n {
			return fmt.Errorf("token %d: chars %v, want start %d and %d chars", i, tok.Chars, chars, n)
		}
		if tok.Chars.Len() > tok.Bytes.Len() {
			return fmt.Errorf("token %d: more chars than bytes (%v vs %v)", i, tok.Chars, tok.Bytes)
		}

		chars += n
		cursor = sp.End
	}
	if rest, _, ok := whitespaceOnly(content[cursor:]); !ok {
		return fmt.Errorf("non-whitespace %q after the last token", rest)
	}
	return nil
}

// decode reads b rune by rune the way a bytes.Reader would.
func decode(b []byte) (string, uint32) {
	runes := make([]rune, 0, len(b))
	for len(b) > 0 {
		r, size := utf8.DecodeRune(b)
		runes = append(runes, r)
		b = b[size:]
	}
	return string(runes), uint32(len(runes)) // #nosec G115 -- bounded by the checked content length
}

func lastRune(b []byte) (rune, uint32) {
	var (
		r    rune
		size int
	)
	for len(b) > 0 {
		r, size = utf8.DecodeRune(b)
		b = b[size:]
	}
	return r, uint32(size) // #nosec G115 -- a rune is at most 4 bytes
}

func whitespaceOnly(b []byte) (string, uint32, bool) {
	var n uint32
	for rest := b; len(rest) > 0; {
		r, size := utf8.DecodeRune(rest)
		if !unicode.IsSpace(r) {
			return string(b), n, false
		}
		n++
		rest = rest[size:]
	}
	return "", n, true
}
