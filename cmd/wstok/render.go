package main

import (
	"fmt"
	"io"
	"os"

	"wstok/internal/diag"
	"wstok/internal/diagfmt"
	"wstok/internal/source"
	"wstok/internal/token"
)

// renderItem is one input ready for output. file is nil when it could not be
// loaded.
type renderItem struct {
	name   string
	file   *source.File
	tokens []token.Token
	bag    *diag.Bag
}

func renderTokens(out io.Writer, s settings, fs *source.FileSet, items []renderItem, echo bool) error {
	switch s.cfg.Output.Format {
	case "json", "msgpack":
		files := make([]diagfmt.FileTokens, 0, len(items))
		for _, item := range items {
			ft := diagfmt.NewFileTokens(item.file, item.tokens, item.bag)
			if item.name != "" {
				ft.Path = item.name
			}
			files = append(files, ft)
		}
		if s.cfg.Output.Format == "json" {
			return diagfmt.FormatTokensJSON(out, files)
		}
		return diagfmt.FormatTokensMsgpack(out, files)
	}

	headers := len(items) > 1
	for i, item := range items {
		if item.file == nil {
			continue
		}
		if headers {
			if i > 0 {
				fmt.Fprintln(out)
			}
			fmt.Fprintf(out, "==> %s <==\n", item.name)
		}
		if echo {
			if _, err := fmt.Fprintf(out, "%s\n", item.file.Content); err != nil {
				return err
			}
		}
		var err error
		if s.cfg.Output.Format == "pretty" {
			err = diagfmt.FormatTokensPretty(out, item.tokens, fs, diagfmt.TableOpts{Color: s.useColor(os.Stdout)})
		} else {
			err = diagfmt.FormatTokensDebug(out, item.tokens)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
