package lexer_test

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"unicode/utf8"

	"wstok/internal/chars"
	"wstok/internal/lexer"
	"wstok/internal/source"
	"wstok/internal/token"
)

// makeTestLexer builds a lexer over input tagged with file id 7.
func makeTestLexer(input string) *lexer.Lexer {
	return lexer.NewReader(strings.NewReader(input), lexer.Options{File: 7})
}

// collectAllTokens pulls until completion and fails on any other error.
func collectAllTokens(t *testing.T, lx *lexer.Lexer) []token.Token {
	t.Helper()
	var toks []token.Token
	for {
		tok, err := lx.Next()
		if errors.Is(err, io.EOF) {
			return toks
		}
		if err != nil {
			t.Fatalf("unexpected error after %d tokens: %v", len(toks), err)
		}
		toks = append(toks, tok)
	}
}

func texts(toks []token.Token) []string {
	out := make([]string, len(toks))
	for i, tok := range toks {
		out[i] = tok.Text
	}
	return out
}

func TestEmptyInput(t *testing.T) {
	lx := makeTestLexer("")
	if _, err := lx.Next(); !errors.Is(err, io.EOF) {
		t.Fatalf("expected immediate io.EOF, got %v", err)
	}
}

func TestWhitespaceOnlyInput(t *testing.T) {
	for _, in := range []string{" ", "\t\n\r ", " \u3000\u0085\v\f"} {
		if toks := collectAllTokens(t, makeTestLexer(in)); len(toks) != 0 {
			t.Errorf("input %q: expected no tokens, got %v", in, toks)
		}
	}
}

func TestSingleWord(t *testing.T) {
	toks := collectAllTokens(t, makeTestLexer("hello"))
	if len(toks) != 1 {
		t.Fatalf("expected one token, got %v", toks)
	}
	want := token.Token{
		Text:  "hello",
		Bytes: token.Range{Start: 0, End: 4},
		Chars: token.Range{Start: 0, End: 4},
		Index: 0,
		Span:  source.Span{File: 7, Start: 0, End: 5},
	}
	if toks[0] != want {
		t.Fatalf("expected %+v, got %+v", want, toks[0])
	}
}

func TestSurroundingWhitespaceCollapses(t *testing.T) {
	toks := collectAllTokens(t, makeTestLexer("  hello   world  "))
	if got := texts(toks); fmt.Sprint(got) != "[hello world]" {
		t.Fatalf("unexpected tokens %q", got)
	}
	if toks[0].Index != 0 || toks[1].Index != 1 {
		t.Fatalf("unexpected indices %d, %d", toks[0].Index, toks[1].Index)
	}
	if toks[0].Bytes != (token.Range{Start: 2, End: 6}) || toks[1].Bytes != (token.Range{Start: 10, End: 14}) {
		t.Fatalf("unexpected byte ranges %v, %v", toks[0].Bytes, toks[1].Bytes)
	}
}

func TestMultiByteOffsets(t *testing.T) {
	toks := collectAllTokens(t, makeTestLexer("é x"))
	if len(toks) != 2 {
		t.Fatalf("expected two tokens, got %v", toks)
	}
	e, x := toks[0], toks[1]
	if e.Text != "é" || e.Bytes.Start != 0 || e.Chars.Start != 0 {
		t.Fatalf("unexpected first token %+v", e)
	}
	if e.Span.End != 2 {
		t.Fatalf("span of é must cover its two bytes, got %v", e.Span)
	}
	if x.Text != "x" || x.Bytes.Start != 3 || x.Chars.Start != 2 || x.Index != 1 {
		t.Fatalf("unexpected second token %+v", x)
	}
}

func TestSingleCharThenCompletion(t *testing.T) {
	lx := makeTestLexer("a")
	tok, err := lx.Next()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tok.Text != "a" || tok.Bytes.Start != tok.Bytes.End || tok.Chars.Start != tok.Chars.End {
		t.Fatalf("single char token must have End == Start, got %+v", tok)
	}
	if _, err := lx.Next(); !errors.Is(err, io.EOF) {
		t.Fatalf("expected completion on the next pull, got %v", err)
	}
}

func TestNextAfterCompletionIsPreconditionError(t *testing.T) {
	lx := makeTestLexer("x")
	collectAllTokens(t, lx)

	_, err := lx.Next()
	if !errors.Is(err, lexer.ErrExhausted) {
		t.Fatalf("expected ErrExhausted, got %v", err)
	}
	var pe *lexer.PreconditionError
	if !errors.As(err, &pe) || pe.State != "finished" {
		t.Fatalf("expected PreconditionError in state finished, got %#v", err)
	}
	if _, err := lx.Next(); !errors.Is(err, lexer.ErrExhausted) {
		t.Fatalf("violation must be stable, got %v", err)
	}
}

func TestUnicodeWhitespaceIsBoundary(t *testing.T) {
	in := "a b c\u3000d\u0085e f"
	got := texts(collectAllTokens(t, makeTestLexer(in)))
	if strings.Join(got, ",") != "a,b,c,d,e,f" {
		t.Fatalf("unexpected tokens %q", got)
	}
}

func TestNonSpaceSeparatorsStayInsideTokens(t *testing.T) {
	// zero width space and punctuation are not whitespace
	got := texts(collectAllTokens(t, makeTestLexer("foo,bar\u200bbaz. qux")))
	if len(got) != 2 || got[0] != "foo,bar\u200bbaz." || got[1] != "qux" {
		t.Fatalf("unexpected tokens %q", got)
	}
}

func TestCountTracksEmitted(t *testing.T) {
	lx := makeTestLexer("one two three")
	if lx.Count() != 0 {
		t.Fatalf("fresh lexer must have count 0")
	}
	collectAllTokens(t, lx)
	if lx.Count() != 3 {
		t.Fatalf("expected count 3, got %d", lx.Count())
	}
}

func TestLexerOverSharedAnnotator(t *testing.T) {
	a := chars.New(strings.NewReader("x y"), chars.Options{})
	lx := lexer.New(a, lexer.Options{})
	if tok, err := lx.Next(); err != nil || tok.Text != "x" {
		t.Fatalf("unexpected first pull %v, %v", tok, err)
	}
	// drain the annotator behind the lexer's back
	for {
		if _, ok := a.Next(); !ok {
			break
		}
	}
	if _, err := lx.Next(); !errors.Is(err, io.EOF) {
		t.Fatalf("drained annotator must end the stream, got %v", err)
	}
}

func TestLongInputIndices(t *testing.T) {
	var sb strings.Builder
	const n = 2000
	for i := range n {
		fmt.Fprintf(&sb, "w%d\n\t ", i)
	}
	toks := collectAllTokens(t, makeTestLexer(sb.String()))
	if len(toks) != n {
		t.Fatalf("expected %d tokens, got %d", n, len(toks))
	}
	for i, tok := range toks {
		if tok.Index != uint32(i) || tok.Text != fmt.Sprintf("w%d", i) {
			t.Fatalf("token %d is %+v", i, tok)
		}
		if utf8.RuneCountInString(tok.Text) != int(tok.Chars.Len()) {
			t.Fatalf("token %d: char range %v disagrees with text %q", i, tok.Chars, tok.Text)
		}
	}
}
