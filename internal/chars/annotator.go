package chars

import (
	"errors"
	"fmt"
	"io"
	"math"
	"unicode/utf8"

	"fortio.org/safecast"

	"wstok/internal/diag"
	"wstok/internal/source"
)

// ErrOffsetOverflow is reported when the input grows past what uint32
// offsets can address.
var ErrOffsetOverflow = errors.New("input exceeds 4 GiB offset range")

// Options configures an Annotator. Both fields may be left zero.
type Options struct {
	File     source.FileID // file id used in reported spans
	Reporter diag.Reporter // may be nil; then malformed input goes unreported
}

// Annotator decorates runes from an io.RuneReader with byte and rune offsets.
// It is not safe for concurrent use.
type Annotator struct {
	src    io.RuneReader
	opts   Options
	byteAt uint32
	runeAt uint32
	ended  bool // End already handed out
	err    error
}

// New returns an Annotator reading from src.
func New(src io.RuneReader, opts Options) *Annotator {
	return &Annotator{src: src, opts: opts}
}

// Next returns the next positioned element. The element after the last rune
// has kind End; after it Next returns false forever.
func (a *Annotator) Next() (Char, bool) {
	if a.ended {
		return Char{}, false
	}

	r, size, err := a.src.ReadRune()
	if err != nil || size == 0 {
		if err != nil && !errors.Is(err, io.EOF) {
			a.err = err
			a.report(diag.LexReadError, diag.SevError, 0, err.Error())
		}
		a.ended = true
		return Char{Kind: End, Byte: a.byteAt, Offset: a.runeAt}, true
	}

	width, convErr := safecast.Conv[uint32](size)
	if convErr != nil {
		panic(fmt.Errorf("rune width overflow: %w", convErr))
	}
	// Offsets stay representable: the End record sits one past the last rune.
	if a.byteAt > math.MaxUint32-width || a.runeAt == math.MaxUint32 {
		a.err = ErrOffsetOverflow
		a.report(diag.LexOffsetOverflow, diag.SevError, 0, ErrOffsetOverflow.Error())
		a.ended = true
		return Char{Kind: End, Byte: a.byteAt, Offset: a.runeAt}, true
	}
	if r == utf8.RuneError && width == 1 {
		a.report(diag.LexInvalidUTF8, diag.SevWarning, width, "invalid UTF-8 byte replaced with U+FFFD")
	}

	ch := Char{Kind: Rune, Rune: r, Size: width, Byte: a.byteAt, Offset: a.runeAt}
	a.byteAt += width
	a.runeAt++
	return ch, true
}

// Err returns the first read error other than io.EOF, or ErrOffsetOverflow.
func (a *Annotator) Err() error {
	return a.err
}

// Offsets returns the running byte and rune counters.
func (a *Annotator) Offsets() (byteOff, runeOff uint32) {
	return a.byteAt, a.runeAt
}

func (a *Annotator) report(code diag.Code, sev diag.Severity, width uint32, msg string) {
	if a.opts.Reporter == nil {
		return
	}
	sp := source.Span{File: a.opts.File, Start: a.byteAt, End: a.byteAt + width}
	a.opts.Reporter.Report(code, sev, sp, msg)
}
