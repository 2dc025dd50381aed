package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const DefaultFile = "synan.toml"

type Config struct {
	Version int     `toml:"version"`
	Check   Check   `toml:"check"`
	Output  Output  `toml:"output"`
	History History `toml:"history"`
	Watch   Watch   `toml:"watch"`
	Log     Log     `toml:"log"`
}

type Check struct {
	// Extensions selects program files when a directory is checked.
	Extensions []string `toml:"extensions"`
}

type Output struct {
	Events  bool `toml:"events"`  // print the grammar event log
	Symbols bool `toml:"symbols"` // print the final symbol table
	Trace   bool `toml:"trace"`   // print the rule trace on failure
	Color   bool `toml:"color"`
}

type History struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

type Watch struct {
	Debounce     time.Duration `toml:"debounce"`
	ExcludeDirs  []string      `toml:"exclude_dirs"`
	ExcludeFiles []string      `toml:"exclude_files"`
}

type Log struct {
	Level string `toml:"level"`
}

// Default is the configuration used when no file exists.
func Default() *Config {
	cfg := &Config{
		Output: Output{Trace: true, Color: true},
	}
	applyDefaults(cfg)
	return cfg
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(string(data))
}

// LoadOrDefault loads path, falling back to Default when the file is missing.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	return cfg, err
}

func Parse(data string) (*Config, error) {
	cfg := &Config{}
	md, err := toml.Decode(data, cfg)
	if err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if !md.IsDefined("output", "trace") {
		cfg.Output.Trace = true
	}
	if !md.IsDefined("output", "color") {
		cfg.Output.Color = true
	}
	applyDefaults(cfg)

	if err := validateVersion(cfg); err != nil {
		return nil, err
	}
	if err := validateCheck(cfg); err != nil {
		return nil, err
	}
	if err := validateHistory(cfg); err != nil {
		return nil, err
	}
	if err := validateWatch(cfg); err != nil {
		return nil, err
	}
	if err := validateLog(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Version == 0 {
		cfg.Version = 1
	}
	if len(cfg.Check.Extensions) == 0 {
		cfg.Check.Extensions = []string{".txt"}
	}
	for i, ext := range cfg.Check.Extensions {
		ext = strings.TrimSpace(ext)
		if ext != "" && !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		cfg.Check.Extensions[i] = ext
	}
	if strings.TrimSpace(cfg.History.Path) == "" {
		cfg.History.Path = "data/synan-history.db"
	}
	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = 300 * time.Millisecond
	}
	if len(cfg.Watch.ExcludeDirs) == 0 {
		cfg.Watch.ExcludeDirs = []string{".git", "node_modules", "vendor"}
	}
	if strings.TrimSpace(cfg.Log.Level) == "" {
		cfg.Log.Level = "info"
	}
}
