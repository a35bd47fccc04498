package lexer

import (
	"wstok/internal/diag"
	"wstok/internal/source"
)

// Options carries the context a Lexer stamps on its output. None of it
// changes how text is split.
type Options struct {
	File     source.FileID // file id written into token spans and diagnostics
	Reporter diag.Reporter // may be nil
}
