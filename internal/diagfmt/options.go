package diagfmt

// PrettyOpts configures pretty-printing of diagnostics.
type PrettyOpts struct {
	Color   bool
	BaseDir string // paths are shown relative to it when shorter
}

// TableOpts configures the aligned token table.
type TableOpts struct {
	Color     bool
	TextWidth int // display columns for token text; <= 0 uses 24
}
