package lexer

import (
	"errors"
	"io"
	"iter"

	"wstok/internal/token"
)

// All adapts Next to a range-over-func sequence. The sequence stops at the
// end of the text; a read error is yielded once as the last pair.
func (lx *Lexer) All() iter.Seq2[token.Token, error] {
	return func(yield func(token.Token, error) bool) {
		for {
			tok, err := lx.Next()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				yield(token.Token{}, err)
				return
			}
			if !yield(tok, nil) {
				return
			}
		}
	}
}

// Tokenize collects every token of r.
func Tokenize(r io.RuneReader, opts Options) ([]token.Token, error) {
	lx := NewReader(r, opts)
	var toks []token.Token
	for tok, err := range lx.All() {
		if err != nil {
			return toks, err
		}
		toks = append(toks, tok)
	}
	return toks, nil
}
