package driver_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/iotest"

	"wstok/internal/diag"
	"wstok/internal/driver"
	"wstok/internal/source"
	"wstok/internal/trace"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestTokenizeFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "in.txt", "\xEF\xBB\xBFhello  world\n")
	res, err := driver.Tokenize(context.Background(), path, driver.Options{Load: source.DefaultLoadOptions()})
	if err != nil {
		t.Fatalf("tokenize: %v", err)
	}
	if len(res.Tokens) != 2 || res.Tokens[0].Text != "hello" || res.Tokens[1].Text != "world" {
		t.Fatalf("unexpected tokens %v", res.Tokens)
	}
	if got := res.Tokens[1].Bytes.Start; got != 7 {
		t.Fatalf("offsets must refer to the text after the BOM, got start %d", got)
	}
	items := res.Bag.Items()
	if len(items) != 1 || items[0].Code != diag.InputBOMStripped || items[0].Severity != diag.SevInfo {
		t.Fatalf("expected a single BOM note, got %+v", items)
	}
	if len(res.Timing.Phases) != 2 || res.Timing.Phases[0].Name != "load" || res.Timing.Phases[1].Name != "tokenize" {
		t.Fatalf("unexpected phases %+v", res.Timing.Phases)
	}
}

func TestTokenizeMissingFile(t *testing.T) {
	_, err := driver.Tokenize(context.Background(), filepath.Join(t.TempDir(), "nope.txt"), driver.Options{})
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected ErrNotExist, got %v", err)
	}
}

func TestTokenizeReaderInvalidUTF8(t *testing.T) {
	res, err := driver.TokenizeReader(context.Background(), "<stdin>", strings.NewReader("a\xffb c"), driver.Options{})
	if err != nil {
		t.Fatalf("tokenize: %v", err)
	}
	if res.File.Flags&source.FileVirtual == 0 {
		t.Fatalf("stdin input must be virtual")
	}
	if len(res.Tokens) != 2 || res.Tokens[0].Text != "a\uFFFDb" || res.Tokens[0].Bytes.End != 2 {
		t.Fatalf("unexpected tokens %v", res.Tokens)
	}
	if !res.Bag.HasWarnings() || res.Bag.HasErrors() {
		t.Fatalf("invalid UTF-8 must be a warning only: %+v", res.Bag.Items())
	}
	if code := res.Bag.Items()[0].Code; code != diag.LexInvalidUTF8 {
		t.Fatalf("unexpected code %v", code)
	}
}

func TestTokenizeReaderReadError(t *testing.T) {
	boom := errors.New("boom")
	_, err := driver.TokenizeReader(context.Background(), "<stdin>", iotest.ErrReader(boom), driver.Options{})
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped read error, got %v", err)
	}
}

func TestTokenizeCRLFAndLimit(t *testing.T) {
	path := writeFile(t, t.TempDir(), "crlf.txt", "a\r\nb\xff\xfe\xfd\r\n")
	opts := driver.Options{MaxDiagnostics: 2, Load: source.LoadOptions{NormalizeCRLF: true}}
	res, err := driver.Tokenize(context.Background(), path, opts)
	if err != nil {
		t.Fatalf("tokenize: %v", err)
	}
	if string(res.File.Content) != "a\nb\xff\xfe\xfd\n" {
		t.Fatalf("unexpected content %q", res.File.Content)
	}
	if res.Bag.Len() != 2 || res.Bag.Dropped() != 2 {
		t.Fatalf("expected 2 kept and 2 dropped diagnostics, got %d/%d", res.Bag.Len(), res.Bag.Dropped())
	}
}

func TestTokenizeCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	text := strings.Repeat("w ", 10000)
	res, err := driver.TokenizeReader(ctx, "big", strings.NewReader(text), driver.Options{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(res.Tokens) == 0 || len(res.Tokens) >= 10000 {
		t.Fatalf("expected a partial result, got %d tokens", len(res.Tokens))
	}
}

func TestTokenizeCanceledWhitespaceOnly(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := driver.TokenizeReader(ctx, "blank", strings.NewReader(strings.Repeat(" ", 10000)), driver.Options{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(res.Tokens) != 0 {
		t.Fatalf("whitespace yields no tokens, got %d", len(res.Tokens))
	}
	if res.Bag.HasErrors() {
		t.Fatalf("cancellation must not be reported as a read error: %v", res.Bag.Items())
	}
}

func TestTokenizeCanceledShortInput(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := driver.TokenizeReader(ctx, "short", strings.NewReader("a b"), driver.Options{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if res == nil || res.Bag.HasErrors() {
		t.Fatalf("expected a result without error diagnostics, got %+v", res)
	}
}

func TestTokenizeEmitsTraceSpans(t *testing.T) {
	ring := trace.NewRingTracer(64, trace.LevelDebug)
	ctx := trace.WithTracer(context.Background(), ring)
	if _, err := driver.TokenizeReader(ctx, "traced", strings.NewReader("a b"), driver.Options{}); err != nil {
		t.Fatalf("tokenize: %v", err)
	}

	begins := map[string]trace.Scope{}
	points := 0
	for _, ev := range ring.Snapshot() {
		switch ev.Kind {
		case trace.KindSpanBegin:
			begins[ev.Name] = ev.Scope
		case trace.KindPoint:
			points++
		}
	}
	want := map[string]trace.Scope{
		"tokenize": trace.ScopeDriver, // command span; the stage span shares the name
		"load":     trace.ScopeStage,
		"traced":   trace.ScopeFile,
	}
	for name, scope := range want {
		if _, ok := begins[name]; !ok {
			t.Errorf("missing span %q (scope %v)", name, scope)
		}
	}
	if points != 2 {
		t.Errorf("expected one point per token at debug level, got %d", points)
	}
}
