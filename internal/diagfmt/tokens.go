package diagfmt

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
	"github.com/vmihailenco/msgpack/v5"

	"wstok/internal/diag"
	"wstok/internal/source"
	"wstok/internal/token"
)

// EndOfText is printed after the last token by the line-oriented formats.
const EndOfText = "<END_OF_TEXT>"

const defaultTextWidth = 24

// FileTokens is the serialized result for one input.
type FileTokens struct {
	Path        string             `json:"path" msgpack:"path"`
	Bytes       int                `json:"bytes" msgpack:"bytes"`
	Tokens      []token.Token      `json:"tokens" msgpack:"tokens"`
	Diagnostics []DiagnosticOutput `json:"diagnostics,omitempty" msgpack:"diagnostics,omitempty"`
}

// DiagnosticOutput is the serialized form of a diagnostic.
type DiagnosticOutput struct {
	Severity diag.Severity `json:"severity" msgpack:"severity"`
	Code     string        `json:"code" msgpack:"code"`
	Message  string        `json:"message" msgpack:"message"`
	Span     source.Span   `json:"span" msgpack:"span"`
}

// NewFileTokens packs one input's tokens and diagnostics.
func NewFileTokens(file *source.File, toks []token.Token, bag *diag.Bag) FileTokens {
	out := FileTokens{Tokens: toks}
	if out.Tokens == nil {
		out.Tokens = []token.Token{}
	}
	if file != nil {
		out.Path = file.Path
		out.Bytes = len(file.Content)
	}
	if bag != nil {
		for _, d := range bag.Items() {
			out.Diagnostics = append(out.Diagnostics, DiagnosticOutput{
				Severity: d.Severity,
				Code:     d.Code.ID(),
				Message:  d.Message,
				Span:     d.Primary,
			})
		}
	}
	return out
}

// FormatTokensDebug writes one debug line per token followed by EndOfText.
func FormatTokensDebug(w io.Writer, toks []token.Token) error {
	for _, tok := range toks {
		if _, err := fmt.Fprintln(w, tok.String()); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, EndOfText)
	return err
}

// FormatTokensPretty writes an aligned table:
//
//	#   text        bytes   chars   at
//	0   hello       0..=4   0..=4   1:1
//
// Token text is truncated to opts.TextWidth display columns.
func FormatTokensPretty(w io.Writer, toks []token.Token, fs *source.FileSet, opts TableOpts) error {
	width := opts.TextWidth
	if width <= 0 {
		width = defaultTextWidth
	}
	head := color.New(color.Bold)
	if opts.Color {
		head.EnableColor()
	} else {
		head.DisableColor()
	}

	idxWidth := len(strconv.Itoa(len(toks)))
	header := fmt.Sprintf("%-*s  %s  %-14s %-14s %s", idxWidth, "#", runewidth.FillRight("text", width), "bytes", "chars", "at")
	if _, err := fmt.Fprintln(w, head.Sprint(header)); err != nil {
		return err
	}
	for _, tok := range toks {
		at := "-"
		if resolvable(fs, tok.Span.File) {
			start, _ := fs.Resolve(tok.Span)
			at = fmt.Sprintf("%d:%d", start.Line, start.Col)
		}
		text := runewidth.FillRight(Truncate(tok.Text, width), width)
		if _, err := fmt.Fprintf(w, "%-*d  %s  %-14s %-14s %s\n", idxWidth, tok.Index, text, tok.Bytes, tok.Chars, at); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, EndOfText)
	return err
}

// FormatTokensJSON writes files as an indented JSON array.
func FormatTokensJSON(w io.Writer, files []FileTokens) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(files)
}

// FormatTokensMsgpack writes files as one msgpack array.
func FormatTokensMsgpack(w io.Writer, files []FileTokens) error {
	return msgpack.NewEncoder(w).Encode(files)
}

// DecodeTokensMsgpack reads what FormatTokensMsgpack wrote.
func DecodeTokensMsgpack(r io.Reader) ([]FileTokens, error) {
	var files []FileTokens
	if err := msgpack.NewDecoder(r).Decode(&files); err != nil {
		return nil, fmt.Errorf("decode msgpack tokens: %w", err)
	}
	return files, nil
}

// Truncate shortens value to width display columns, marking the cut with "...".
func Truncate(value string, width int) string {
	if width <= 0 || runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width, "...")
}

func displayWidth(s string) int {
	return runewidth.StringWidth(s)
}
