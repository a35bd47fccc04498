package main

import (
	"fmt"
	"io"

	"wstok/internal/observ"
)

func printTimings(out io.Writer, report observ.Report) {
	if out == nil {
		return
	}
	if _, err := fmt.Fprint(out, report.Summary()); err != nil {
		panic(err)
	}
}
