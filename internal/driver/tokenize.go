package driver

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strconv"

	"wstok/internal/diag"
	"wstok/internal/lexer"
	"wstok/internal/observ"
	"wstok/internal/source"
	"wstok/internal/token"
	"wstok/internal/trace"
)

// cancelEvery is how many runes are read between context checks.
const cancelEvery = 4096

// Tokenize loads path and splits it into tokens.
func Tokenize(ctx context.Context, path string, opts Options) (*TokenizeResult, error) {
	span := trace.Begin(trace.FromContext(ctx), trace.ScopeDriver, "tokenize", trace.CurrentSpan(ctx))
	defer span.End("")
	ctx = trace.WithSpan(ctx, span)

	fs := source.NewFileSet()
	timer := observ.NewTimer()
	endLoad := beginPhase(ctx, timer, "load")
	fileID, err := fs.Load(path, opts.Load)
	endLoad("")
	if err != nil {
		return nil, err
	}
	return tokenizeLoaded(ctx, fs, fileID, opts, timer)
}

// TokenizeReader drains r and tokenizes it as a virtual file called name.
func TokenizeReader(ctx context.Context, name string, r io.Reader, opts Options) (*TokenizeResult, error) {
	span := trace.Begin(trace.FromContext(ctx), trace.ScopeDriver, "tokenize", trace.CurrentSpan(ctx))
	defer span.End("")
	ctx = trace.WithSpan(ctx, span)

	fs := source.NewFileSet()
	timer := observ.NewTimer()
	endLoad := beginPhase(ctx, timer, "load")
	fileID, err := fs.LoadReader(name, r, opts.Load)
	endLoad("")
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return tokenizeLoaded(ctx, fs, fileID, opts, timer)
}

func tokenizeLoaded(ctx context.Context, fs *source.FileSet, fileID source.FileID, opts Options, timer *observ.Timer) (*TokenizeResult, error) {
	file := fs.Get(fileID)
	bag := diag.NewBag(opts.MaxDiagnostics)
	reportNormalization(bag, file)

	endTokenize := beginPhase(ctx, timer, "tokenize")
	toks, err := tokenizeFile(ctx, file, bag)
	endTokenize(strconv.Itoa(len(toks)) + " tokens")
	bag.Sort()

	return &TokenizeResult{
		FileSet: fs,
		File:    file,
		Tokens:  toks,
		Bag:     bag,
		Timing:  timer.Report(),
	}, err
}

// beginPhase starts a timer phase and a stage span together; the returned
// func ends both.
func beginPhase(ctx context.Context, timer *observ.Timer, name string) func(note string) {
	span := trace.Begin(trace.FromContext(ctx), trace.ScopeStage, name, trace.CurrentSpan(ctx))
	idx := timer.Begin(name)
	return func(note string) {
		timer.End(idx, note)
		span.End(note)
	}
}

// tokenizeFile runs the lexer over the loaded content of file.
func tokenizeFile(ctx context.Context, file *source.File, bag *diag.Bag) ([]token.Token, error) {
	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopeFile, file.Path, trace.CurrentSpan(ctx))

	src := &ctxRuneReader{ctx: ctx, r: bytes.NewReader(file.Content)}
	lx := lexer.NewReader(src, lexer.Options{
		File:     file.ID,
		Reporter: lexReporter{ctx: ctx, inner: &diag.BagReporter{Bag: bag}},
	})
	perToken := tracer.Enabled() && tracer.Level().ShouldEmit(trace.ScopeToken)

	toks := make([]token.Token, 0, len(file.Content)/8)
	for tok, err := range lx.All() {
		if err != nil {
			if ctx.Err() != nil {
				span.End("canceled")
			} else {
				span.End("read error")
			}
			return toks, err
		}
		toks = append(toks, tok)
		if perToken {
			trace.Point(tracer, trace.ScopeToken, "token", tok.String(), span.ID())
		}
	}
	if err := ctx.Err(); err != nil {
		span.End("canceled")
		return toks, err
	}
	span.WithExtra("tokens", strconv.Itoa(len(toks))).End("")
	return toks, nil
}

// ctxRuneReader fails with the context's error once ctx is done. It checks
// every cancelEvery runes so long runs of whitespace, which yield no tokens,
// still notice cancellation.
type ctxRuneReader struct {
	ctx context.Context
	r   io.RuneReader
	n   int
}

func (c *ctxRuneReader) ReadRune() (rune, int, error) {
	c.n++
	if c.n%cancelEvery == 0 {
		if err := c.ctx.Err(); err != nil {
			return 0, 0, err
		}
	}
	return c.r.ReadRune()
}

// lexReporter drops the read error a cancellation produces; the caller gets
// ctx.Err() instead.
type lexReporter struct {
	ctx   context.Context
	inner diag.Reporter
}

func (r lexReporter) Report(code diag.Code, sev diag.Severity, primary source.Span, msg string) {
	if code == diag.LexReadError && r.ctx.Err() != nil {
		return
	}
	r.inner.Report(code, sev, primary, msg)
}

// reportNormalization records what loading changed in the content, since
// token offsets refer to the normalized text rather than the bytes on disk.
func reportNormalization(bag *diag.Bag, file *source.File) {
	at := source.Span{File: file.ID}
	if file.Flags&source.FileHadBOM != 0 {
		bag.Add(diag.Diagnostic{
			Severity: diag.SevInfo,
			Code:     diag.InputBOMStripped,
			Message:  "UTF-8 byte order mark removed; offsets start after it",
			Primary:  at,
		})
	}
	if file.Flags&source.FileNormalizedCRLF != 0 {
		bag.Add(diag.Diagnostic{
			Severity: diag.SevInfo,
			Code:     diag.InputNormalized,
			Message:  "CRLF line endings rewritten to LF",
			Primary:  at,
		})
	}
	if file.Flags&source.FileNormalizedNFC != 0 {
		bag.Add(diag.Diagnostic{
			Severity: diag.SevInfo,
			Code:     diag.InputNormalized,
			Message:  "text rewritten to Unicode NFC",
			Primary:  at,
		})
	}
}
