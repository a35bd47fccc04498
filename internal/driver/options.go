package driver

import (
	"wstok/internal/diag"
	"wstok/internal/observ"
	"wstok/internal/source"
	"wstok/internal/token"
)

// Options control how inputs are loaded and how many diagnostics are kept.
type Options struct {
	MaxDiagnostics int                // per input; <= 0 keeps everything
	Load           source.LoadOptions // normalization applied before tokenizing
	Extensions     []string           // TokenizeDir filter, e.g. ".txt"; empty matches every file
}

// TokenizeResult holds everything produced for a single input.
type TokenizeResult struct {
	FileSet *source.FileSet
	File    *source.File
	Tokens  []token.Token
	Bag     *diag.Bag
	Timing  observ.Report
}
