package lexer

import (
	"io"
	"strings"
	"unicode"

	"wstok/internal/chars"
	"wstok/internal/source"
	"wstok/internal/token"
)

type state uint8

const (
	betweenTokens state = iota
	inToken
	finished
)

func (s state) String() string {
	switch s {
	case betweenTokens:
		return "between-tokens"
	case inToken:
		return "in-token"
	case finished:
		return "finished"
	default:
		return "unknown"
	}
}

// Lexer produces tokens on demand. It is not safe for concurrent use.
type Lexer struct {
	src   *chars.Annotator
	opts  Options
	state state
	count uint32          // tokens emitted so far
	buf   strings.Builder // text of the open token
	open  token.Token     // offsets of the open token
}

// New returns a Lexer pulling from src.
func New(src *chars.Annotator, opts Options) *Lexer {
	return &Lexer{src: src, opts: opts}
}

// NewReader wires an Annotator over r and returns a Lexer on top of it.
func NewReader(r io.RuneReader, opts Options) *Lexer {
	return New(chars.New(r, chars.Options{File: opts.File, Reporter: opts.Reporter}), opts)
}

// Next returns the next token. When the text is over it returns io.EOF, or
// the read error of the underlying reader if there was one. Calling Next
// again after that is a precondition violation reported as ErrExhausted.
func (lx *Lexer) Next() (token.Token, error) {
	switch lx.state {
	case finished:
		return token.Token{}, &PreconditionError{State: lx.state.String(), Err: ErrExhausted}
	case inToken:
		return token.Token{}, &PreconditionError{State: lx.state.String(), Err: errMidToken}
	}

	for {
		ch, ok := lx.src.Next()
		if !ok {
			// the annotator was drained by someone else
			return token.Token{}, lx.finish()
		}

		switch lx.state {
		case betweenTokens:
			if ch.IsEnd() {
				return token.Token{}, lx.finish()
			}
			if isBoundary(ch) {
				continue
			}
			lx.begin(ch)
		case inToken:
			if isBoundary(ch) {
				return lx.close(ch), nil
			}
			lx.extend(ch)
		}
	}
}

// Count returns how many tokens were emitted so far.
func (lx *Lexer) Count() uint32 {
	return lx.count
}

func (lx *Lexer) begin(ch chars.Char) {
	lx.buf.Reset()
	lx.buf.WriteRune(ch.Rune)
	lx.open = token.Token{
		Bytes: token.Range{Start: ch.Byte, End: ch.Byte},
		Chars: token.Range{Start: ch.Offset, End: ch.Offset},
		Index: lx.count,
	}
	lx.state = inToken
}

func (lx *Lexer) extend(ch chars.Char) {
	lx.buf.WriteRune(ch.Rune)
	lx.open.Bytes.End = ch.Byte
	lx.open.Chars.End = ch.Offset
}

// close finalizes the open token at boundary ch.
func (lx *Lexer) close(ch chars.Char) token.Token {
	tok := lx.open
	tok.Text = lx.buf.String()
	tok.Span = source.Span{File: lx.opts.File, Start: tok.Bytes.Start, End: ch.Byte}
	lx.count++
	lx.open = token.Token{}
	lx.state = betweenTokens
	return tok
}

func (lx *Lexer) finish() error {
	lx.state = finished
	if err := lx.src.Err(); err != nil {
		return err
	}
	return io.EOF
}

func isBoundary(ch chars.Char) bool {
	return ch.IsEnd() || unicode.IsSpace(ch.Rune)
}
