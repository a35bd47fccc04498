package diagfmt_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"wstok/internal/diag"
	"wstok/internal/diagfmt"
	"wstok/internal/lexer"
	"wstok/internal/source"
	"wstok/internal/token"
)

func lexFile(t *testing.T, fs *source.FileSet, name, content string) (*source.File, []token.Token) {
	t.Helper()
	file := fs.Get(fs.AddVirtual(name, []byte(content)))
	toks, err := lexer.Tokenize(bytes.NewReader(file.Content), lexer.Options{File: file.ID})
	if err != nil {
		t.Fatalf("tokenize: %v", err)
	}
	return file, toks
}

func TestFormatTokensDebug(t *testing.T) {
	_, toks := lexFile(t, source.NewFileSet(), "d.txt", "\u00e9 x")
	var buf bytes.Buffer
	if err := diagfmt.FormatTokensDebug(&buf, toks); err != nil {
		t.Fatalf("format: %v", err)
	}
	want := `Token { text: "é", bytes: 0..=0, chars: 0..=0, index: 0 }
Token { text: "x", bytes: 3..=3, chars: 2..=2, index: 1 }
<END_OF_TEXT>
`
	if buf.String() != want {
		t.Fatalf("unexpected output:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestFormatTokensDebugEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := diagfmt.FormatTokensDebug(&buf, nil); err != nil {
		t.Fatalf("format: %v", err)
	}
	if buf.String() != diagfmt.EndOfText+"\n" {
		t.Fatalf("empty input must print only the end marker, got %q", buf.String())
	}
}

func TestFormatTokensPretty(t *testing.T) {
	fs := source.NewFileSet()
	_, toks := lexFile(t, fs, "p.txt", "alpha\n  日本語テキスト averyveryverylongword")
	var buf bytes.Buffer
	if err := diagfmt.FormatTokensPretty(&buf, toks, fs, diagfmt.TableOpts{TextWidth: 10}); err != nil {
		t.Fatalf("format: %v", err)
	}
	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	if len(lines) != 5 {
		t.Fatalf("expected header, 3 rows and end marker, got %d lines:\n%s", len(lines), buf.String())
	}
	if !strings.Contains(lines[1], "alpha") || !strings.HasSuffix(lines[1], "1:1") {
		t.Errorf("unexpected first row %q", lines[1])
	}
	if !strings.Contains(lines[2], "日本語...") || !strings.HasSuffix(lines[2], "2:3") {
		t.Errorf("wide text must be truncated by display width, got %q", lines[2])
	}
	if !strings.Contains(lines[3], "averyve...") {
		t.Errorf("long text must be truncated, got %q", lines[3])
	}
	if lines[4] != diagfmt.EndOfText {
		t.Errorf("missing end marker, got %q", lines[4])
	}
}

func TestFormatTokensJSON(t *testing.T) {
	fs := source.NewFileSet()
	file, toks := lexFile(t, fs, "j.txt", "hello world")
	var buf bytes.Buffer
	if err := diagfmt.FormatTokensJSON(&buf, []diagfmt.FileTokens{diagfmt.NewFileTokens(file, toks, nil)}); err != nil {
		t.Fatalf("format: %v", err)
	}

	var decoded []struct {
		Path   string `json:"path"`
		Bytes  int    `json:"bytes"`
		Tokens []struct {
			Text  string      `json:"text"`
			Index int         `json:"index"`
			Bytes token.Range `json:"bytes"`
		} `json:"tokens"`
	}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid json: %v\n%s", err, buf.String())
	}
	if len(decoded) != 1 || decoded[0].Path != "j.txt" || decoded[0].Bytes != 11 || len(decoded[0].Tokens) != 2 {
		t.Fatalf("unexpected document %+v", decoded)
	}
	if w := decoded[0].Tokens[1]; w.Text != "world" || w.Index != 1 || w.Bytes != (token.Range{Start: 6, End: 10}) {
		t.Fatalf("unexpected second token %+v", w)
	}
}

func TestMsgpackRoundTripKeepsDiagnostics(t *testing.T) {
	fs := source.NewFileSet()
	file, toks := lexFile(t, fs, "m.txt", "one two")
	bag := diag.NewBag(4)
	bag.Add(diag.Diagnostic{Severity: diag.SevWarning, Code: diag.LexInvalidUTF8, Message: "bad", Primary: source.Span{File: file.ID, Start: 1, End: 2}})

	var buf bytes.Buffer
	in := []diagfmt.FileTokens{diagfmt.NewFileTokens(file, toks, bag)}
	if err := diagfmt.FormatTokensMsgpack(&buf, in); err != nil {
		t.Fatalf("encode: %v", err)
	}
	out, err := diagfmt.DecodeTokensMsgpack(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out) != 1 || len(out[0].Tokens) != 2 || out[0].Tokens[1] != toks[1] {
		t.Fatalf("tokens changed in transit: %+v", out)
	}
	if d := out[0].Diagnostics; len(d) != 1 || d[0].Severity != diag.SevWarning || d[0].Code != "LEX1001" {
		t.Fatalf("diagnostics changed in transit: %+v", d)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"much too long", 8, "much ..."},
		{"日本語", 4, "..."},
		{"日本語", 5, "日..."},
		{"日本語", 6, "日本語"},
		{"abcdef", 2, "ab"},
		{"anything", 0, "anything"},
	}
	for _, tt := range tests {
		if got := diagfmt.Truncate(tt.in, tt.width); got != tt.want {
			t.Errorf("Truncate(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
	}
}
