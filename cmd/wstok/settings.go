package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"wstok/internal/config"
	"wstok/internal/driver"
)

// settings is wstok.toml overlaid with the flags set on the command line.
type settings struct {
	cfg     config.Config
	quiet   bool
	timings bool
}

func loadSettings(cmd *cobra.Command) (settings, error) {
	root := cmd.Root().PersistentFlags()

	path, err := root.GetString("config")
	if err != nil {
		return settings{}, fmt.Errorf("failed to get config flag: %w", err)
	}
	var cfg config.Config
	if path != "" {
		cfg, err = config.Load(path)
	} else {
		cfg, err = config.Discover(".")
	}
	if err != nil {
		return settings{}, err
	}

	if err := overlayFlags(cmd, &cfg); err != nil {
		return settings{}, err
	}

	s := settings{cfg: cfg}
	if s.quiet, err = root.GetBool("quiet"); err != nil {
		return settings{}, fmt.Errorf("failed to get quiet flag: %w", err)
	}
	if s.timings, err = root.GetBool("timings"); err != nil {
		return settings{}, fmt.Errorf("failed to get timings flag: %w", err)
	}
	return s, nil
}

// overlayFlags copies every explicitly set flag into cfg. Flags a command
// does not define are skipped.
func overlayFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	var err error
	changed := func(name string) bool {
		f := flags.Lookup(name)
		return f != nil && f.Changed && err == nil
	}

	if changed("format") {
		cfg.Output.Format, err = flags.GetString("format")
	}
	if changed("color") {
		cfg.Output.Color, err = flags.GetString("color")
	}
	if changed("max-diagnostics") {
		cfg.Output.MaxDiagnostics, err = flags.GetInt("max-diagnostics")
	}
	if changed("ext") {
		var exts []string
		exts, err = flags.GetStringSlice("ext")
		cfg.Input.Extensions = normalizeExts(exts)
	}
	if changed("strip-bom") {
		cfg.Input.StripBOM, err = flags.GetBool("strip-bom")
	}
	if changed("normalize-crlf") {
		cfg.Input.NormalizeCRLF, err = flags.GetBool("normalize-crlf")
	}
	if changed("nfc") {
		cfg.Input.NFC, err = flags.GetBool("nfc")
	}
	if changed("trace") {
		cfg.Trace.Output, err = flags.GetString("trace")
	}
	if changed("trace-level") {
		cfg.Trace.Level, err = flags.GetString("trace-level")
	}
	if changed("trace-mode") {
		cfg.Trace.Mode, err = flags.GetString("trace-mode")
	}
	if err != nil {
		return fmt.Errorf("failed to read flags: %w", err)
	}

	switch cfg.Output.Format {
	case "debug", "pretty", "json", "msgpack":
	default:
		return fmt.Errorf("unknown format: %s (expected debug|pretty|json|msgpack)", cfg.Output.Format)
	}
	if _, err := readColorMode(cfg.Output.Color); err != nil {
		return err
	}
	if cfg.Output.MaxDiagnostics < 0 {
		return fmt.Errorf("--max-diagnostics must not be negative")
	}
	return nil
}

func normalizeExts(exts []string) []string {
	out := make([]string, 0, len(exts))
	for _, ext := range exts {
		ext = strings.TrimSpace(ext)
		switch {
		case ext == "" || ext == "*":
			// an empty entry disables filtering
			return nil
		case !strings.HasPrefix(ext, "."):
			ext = "." + ext
		}
		out = append(out, ext)
	}
	return out
}

func (s settings) driverOptions() driver.Options {
	return driver.Options{
		MaxDiagnostics: s.cfg.Output.MaxDiagnostics,
		Load:           s.cfg.LoadOptions(),
		Extensions:     s.cfg.Input.Extensions,
	}
}

// useColor resolves the color mode for f.
func (s settings) useColor(f *os.File) bool {
	mode, _ := readColorMode(s.cfg.Output.Color)
	switch mode {
	case colorOn:
		return true
	case colorOff:
		return false
	default:
		return isTerminal(f)
	}
}

type colorMode string

const (
	colorAuto colorMode = "auto"
	colorOn   colorMode = "on"
	colorOff  colorMode = "off"
)

func readColorMode(value string) (colorMode, error) {
	switch strings.TrimSpace(strings.ToLower(value)) {
	case "", "auto":
		return colorAuto, nil
	case "on", "always":
		return colorOn, nil
	case "off", "never":
		return colorOff, nil
	default:
		return "", fmt.Errorf("invalid --color value %q (expected auto|on|off)", value)
	}
}
