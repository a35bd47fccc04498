// Package config loads the optional wstok.toml file holding CLI defaults.
// The tokenizer core never reads it.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"wstok/internal/source"
)

// FileName is the name looked up from the working directory upwards.
const FileName = "wstok.toml"

// Config mirrors wstok.toml.
type Config struct {
	Output OutputConfig `toml:"output"`
	Input  InputConfig  `toml:"input"`
	Trace  TraceConfig  `toml:"trace"`

	// Path is where the config was read from; empty for defaults.
	Path string `toml:"-"`
}

type OutputConfig struct {
	Format         string `toml:"format"`
	Color          string `toml:"color"`
	MaxDiagnostics int    `toml:"max_diagnostics"`
}

type InputConfig struct {
	StripBOM      bool     `toml:"strip_bom"`
	NormalizeCRLF bool     `toml:"normalize_crlf"`
	NFC           bool     `toml:"nfc"`
	Extensions    []string `toml:"extensions"`
}

type TraceConfig struct {
	Level  string `toml:"level"`
	Mode   string `toml:"mode"`
	Output string `toml:"output"`
}

// Default returns the values used when no file is found.
func Default() Config {
	return Config{
		Output: OutputConfig{Format: "debug", Color: "auto", MaxDiagnostics: 100},
		Input:  InputConfig{StripBOM: true, Extensions: []string{".txt"}},
		Trace:  TraceConfig{Level: "off", Mode: "stream"},
	}
}

// LoadOptions converts the input section.
func (c Config) LoadOptions() source.LoadOptions {
	return source.LoadOptions{
		StripBOM:      c.Input.StripBOM,
		NormalizeCRLF: c.Input.NormalizeCRLF,
		NFC:           c.Input.NFC,
	}
}

// Find walks up from startDir looking for FileName.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false, nil
		}
		dir = parent
	}
}

// Load reads path over the defaults. Keys missing from the file keep their
// default values; unknown keys are an error.
func Load(path string) (Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	cfg.Path = path
	return cfg, nil
}

// Discover finds and loads the nearest config, or returns the defaults.
func Discover(startDir string) (Config, error) {
	path, ok, err := Find(startDir)
	if err != nil {
		return Config{}, err
	}
	if !ok {
		return Default(), nil
	}
	return Load(path)
}

func (c *Config) validate() error {
	switch c.Output.Format {
	case "debug", "pretty", "json", "msgpack":
	default:
		return fmt.Errorf("output.format: unsupported %q (expected debug|pretty|json|msgpack)", c.Output.Format)
	}
	switch c.Output.Color {
	case "auto", "on", "off":
	default:
		return fmt.Errorf("output.color: unsupported %q (expected auto|on|off)", c.Output.Color)
	}
	if c.Output.MaxDiagnostics < 0 {
		return fmt.Errorf("output.max_diagnostics must not be negative")
	}
	for i, ext := range c.Input.Extensions {
		if !strings.HasPrefix(ext, ".") {
			c.Input.Extensions[i] = "." + ext
		}
	}
	return nil
}
