package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"wstok/internal/diag"
	"wstok/internal/diagfmt"
	"wstok/internal/driver"
	"wstok/internal/observ"
	"wstok/internal/source"
)

const stdinName = "<stdin>"

// errHadErrors makes the process exit 1 after everything was printed.
var errHadErrors = errors.New("errors were reported")

func newTokenizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tokenize [flags] [file|dir|-]",
		Short: "Split text into whitespace-separated tokens",
		Long: `Tokenize prints every maximal run of non-whitespace characters together with
its inclusive byte range, inclusive character range and ordinal. Without an
argument, or with "-", the text is read from standard input. A directory is
walked and every file matching --ext is tokenized in parallel.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runTokenize,
	}
	flags := cmd.Flags()
	flags.String("format", "debug", "output format (debug|pretty|json|msgpack)")
	flags.Bool("echo", false, "print the input text before its tokens")
	flags.Int("jobs", 0, "max parallel workers for directories (0=auto)")
	flags.StringSlice("ext", []string{".txt"}, "file extensions tokenized in directories (\"*\" for all)")
	flags.String("ui", "auto", "progress UI for directories (auto|on|off)")
	flags.Bool("strip-bom", true, "drop a leading UTF-8 byte order mark")
	flags.Bool("normalize-crlf", false, "rewrite CRLF line endings to LF before tokenizing")
	flags.Bool("nfc", false, "normalize text to Unicode NFC before tokenizing")
	return cmd
}

func runTokenize(cmd *cobra.Command, args []string) (err error) {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	stopProfiling, err := setupProfiling(cmd)
	if err != nil {
		return err
	}
	defer stopProfiling()
	cleanup, err := setupTracing(cmd, s.cfg.Trace)
	if err != nil {
		return err
	}
	defer func() { cleanup(err) }()

	echo, err := cmd.Flags().GetBool("echo")
	if err != nil {
		return fmt.Errorf("failed to get echo flag: %w", err)
	}
	ctx := cmd.Context()
	opts := s.driverOptions()

	target := "-"
	if len(args) == 1 {
		target = args[0]
	}
	if target == "-" {
		res, err := driver.TokenizeReader(ctx, stdinName, cmd.InOrStdin(), opts)
		if err != nil && res == nil {
			return fmt.Errorf("tokenization failed: %w", err)
		}
		return finishSingle(cmd, s, res, echo, err)
	}

	st, err := os.Stat(target)
	if err != nil {
		return fmt.Errorf("tokenization failed: %w", err)
	}
	if st.IsDir() {
		return runTokenizeDir(ctx, cmd, s, target, echo)
	}

	res, err := driver.Tokenize(ctx, target, opts)
	if err != nil && res == nil {
		return fmt.Errorf("tokenization failed: %w", err)
	}
	return finishSingle(cmd, s, res, echo, err)
}

// finishSingle prints the result of one input. lexErr is a read error or
// cancellation that cut the token stream short.
func finishSingle(cmd *cobra.Command, s settings, res *driver.TokenizeResult, echo bool, lexErr error) error {
	out := cmd.OutOrStdout()
	timer := observ.NewTimer()
	idx := timer.Begin("render")
	err := renderTokens(out, s, res.FileSet, []renderItem{{file: res.File, tokens: res.Tokens, bag: res.Bag}}, echo)
	timer.End(idx, s.cfg.Output.Format)

	printDiagnostics(cmd.ErrOrStderr(), s, res.Bag, res.FileSet)
	if s.timings {
		report := res.Timing
		report.Merge("", timer.Report())
		printTimings(cmd.ErrOrStderr(), report)
	}
	switch {
	case err != nil:
		return err
	case lexErr != nil:
		return fmt.Errorf("tokenization failed: %w", lexErr)
	case res.Bag.HasErrors():
		return errHadErrors
	}
	return nil
}

func runTokenizeDir(ctx context.Context, cmd *cobra.Command, s settings, dir string, echo bool) error {
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return fmt.Errorf("failed to get jobs flag: %w", err)
	}
	uiValue, err := cmd.Flags().GetString("ui")
	if err != nil {
		return fmt.Errorf("failed to get ui flag: %w", err)
	}
	mode, err := readUIMode(uiValue)
	if err != nil {
		return err
	}

	opts := s.driverOptions()
	var (
		fs      *source.FileSet
		results []driver.TokenizeDirResult
	)
	files, err := driver.ListFiles(dir, opts.Extensions)
	if err != nil {
		return fmt.Errorf("tokenization failed: %w", err)
	}
	if !s.quiet && len(files) > 1 && shouldUseTUI(mode) {
		fs, results, err = runTokenizeDirWithUI(ctx, "tokenizing "+dir, files, dir, opts, jobs)
	} else {
		fs, results, err = driver.TokenizeDir(ctx, dir, opts, jobs, nil)
	}
	if err != nil && fs == nil {
		return fmt.Errorf("tokenization failed: %w", err)
	}

	items := make([]renderItem, 0, len(results))
	merged := diag.NewBag(0)
	total := observ.Report{}
	for _, res := range results {
		name := displayName(res.Path, dir)
		item := renderItem{name: name, tokens: res.Tokens, bag: res.Bag}
		if res.Loaded {
			item.file = fs.Get(res.FileID)
		}
		items = append(items, item)
		merged.Merge(res.Bag)
		total.Merge(name+"/", res.Timing)
	}

	timer := observ.NewTimer()
	idx := timer.Begin("render")
	renderErr := renderTokens(cmd.OutOrStdout(), s, fs, items, echo)
	timer.End(idx, s.cfg.Output.Format)

	printDiagnostics(cmd.ErrOrStderr(), s, merged, fs)
	if s.timings {
		total.Merge("", timer.Report())
		printTimings(cmd.ErrOrStderr(), total)
	}
	switch {
	case renderErr != nil:
		return renderErr
	case err != nil:
		return fmt.Errorf("tokenization failed: %w", err)
	case merged.HasErrors():
		return errHadErrors
	}
	return nil
}

func printDiagnostics(w io.Writer, s settings, bag *diag.Bag, fs *source.FileSet) {
	if bag == nil || bag.Len() == 0 {
		return
	}
	if s.quiet {
		if !bag.HasErrors() {
			return
		}
		bag = bag.Filter(func(d diag.Diagnostic) bool { return d.Severity >= diag.SevError })
	}
	bag.Sort()
	var base string
	if fs != nil {
		base = fs.BaseDir()
	}
	diagfmt.Pretty(w, bag, fs, diagfmt.PrettyOpts{Color: s.useColor(os.Stderr), BaseDir: base})
}

// displayName shortens path relative to dir for headers and timing labels.
func displayName(path, dir string) string {
	if rel, err := source.RelativePath(path, dir); err == nil {
		return rel
	}
	return path
}
