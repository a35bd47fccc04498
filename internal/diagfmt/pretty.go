package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"wstok/internal/diag"
	"wstok/internal/source"
)

type palette struct {
	err, warn, info, loc, gutter, caret *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		err:    color.New(color.FgRed, color.Bold),
		warn:   color.New(color.FgYellow, color.Bold),
		info:   color.New(color.FgCyan),
		loc:    color.New(color.Bold),
		gutter: color.New(color.FgBlue),
		caret:  color.New(color.FgGreen, color.Bold),
	}
	for _, c := range []*color.Color{p.err, p.warn, p.info, p.loc, p.gutter, p.caret} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) severity(sev diag.Severity) *color.Color {
	switch sev {
	case diag.SevError:
		return p.err
	case diag.SevWarning:
		return p.warn
	default:
		return p.info
	}
}

// Pretty renders every diagnostic of bag as
//
//	<path>:<line>:<col>: <SEV> <CODE>: <message>
//	   3 | source line
//	     |   ^
//
// Diagnostics without a file position (I/O failures) print only the header.
// The bag is expected to be sorted.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	p := newPalette(opts.Color)
	for _, d := range bag.Items() {
		writeDiagnostic(w, d, fs, opts, p)
	}
	if n := bag.Dropped(); n > 0 {
		fmt.Fprintf(w, "... %d more diagnostics suppressed\n", n)
	}
}

func writeDiagnostic(w io.Writer, d diag.Diagnostic, fs *source.FileSet, opts PrettyOpts, p palette) {
	sev := p.severity(d.Severity).Sprint(d.Severity.String())
	if !resolvable(fs, d.Primary.File) {
		fmt.Fprintf(w, "%s %s: %s\n", sev, d.Code.ID(), d.Message)
		return
	}

	file := fs.Get(d.Primary.File)
	start, _ := fs.Resolve(d.Primary)
	loc := fmt.Sprintf("%s:%d:%d", file.DisplayPath(opts.BaseDir), start.Line, start.Col)
	fmt.Fprintf(w, "%s: %s %s: %s\n", p.loc.Sprint(loc), sev, d.Code.ID(), d.Message)

	line := file.GetLine(start.Line)
	if line == "" && d.Primary.Empty() {
		return
	}
	num := fmt.Sprintf("%d", start.Line)
	pad := strings.Repeat(" ", len(num))
	fmt.Fprintf(w, " %s %s %s\n", p.gutter.Sprint(num), p.gutter.Sprint("|"), sanitizeLine(line))

	width := max(int(d.Primary.Len()), 1)
	caret := strings.Repeat(" ", caretIndent(line, int(start.Col)-1)) + "^" + strings.Repeat("~", max(width-1, 0))
	fmt.Fprintf(w, " %s %s %s\n", pad, p.gutter.Sprint("|"), p.caret.Sprint(caret))
	for _, n := range d.Notes {
		fmt.Fprintf(w, " %s = note: %s\n", pad, n.Msg)
	}
}

func resolvable(fs *source.FileSet, id source.FileID) bool {
	return fs != nil && id != source.NoFileID && int(id) < fs.Len()
}

// sanitizeLine keeps invalid bytes and tabs from breaking the terminal layout.
func sanitizeLine(line string) string {
	return strings.ToValidUTF8(strings.ReplaceAll(line, "\t", " "), "\uFFFD")
}

// caretIndent converts a byte column into display columns.
func caretIndent(line string, byteCol int) int {
	if byteCol > len(line) {
		byteCol = len(line)
	}
	if byteCol <= 0 {
		return 0
	}
	return displayWidth(sanitizeLine(line[:byteCol]))
}
