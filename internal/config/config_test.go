package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	content := `
version = 1

[check]
extensions = ["prg", ".txt"]

[output]
events = true
trace = false

[history]
enabled = true
path = "state/history.db"

[watch]
debounce = "1s"
exclude_dirs = [".git"]
exclude_files = ["*.bak"]

[log]
level = "debug"
`
	path := filepath.Join(t.TempDir(), DefaultFile)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []string{".prg", ".txt"}, cfg.Check.Extensions)
	assert.True(t, cfg.Output.Events)
	assert.False(t, cfg.Output.Trace)
	assert.True(t, cfg.Output.Color, "color defaults on when unset")
	assert.True(t, cfg.History.Enabled)
	assert.Equal(t, "state/history.db", cfg.History.Path)
	assert.Equal(t, time.Second, cfg.Watch.Debounce)
	assert.Equal(t, []string{".git"}, cfg.Watch.ExcludeDirs)
	assert.Equal(t, []string{"*.bak"}, cfg.Watch.ExcludeFiles)
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
}

func TestDefaults(t *testing.T) {
	cfg, err := Parse("")
	require.NoError(t, err)

	assert.Equal(t, Default(), cfg)
	assert.Equal(t, 1, cfg.Version)
	assert.Equal(t, []string{".txt"}, cfg.Check.Extensions)
	assert.True(t, cfg.Output.Trace)
	assert.False(t, cfg.History.Enabled)
	assert.Equal(t, 300*time.Millisecond, cfg.Watch.Debounce)
	assert.Equal(t, slog.LevelInfo, cfg.SlogLevel())
}

func TestLoadOrDefaultMissingFile(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad version", "version = 3"},
		{"bad level", "[log]\nlevel = \"loud\""},
		{"negative debounce", "[watch]\ndebounce = \"-1s\""},
		{"bad glob", "[watch]\nexclude_files = [\"[\"]"},
		{"extension with separator", "[check]\nextensions = [\"a/b\"]"},
		{"malformed toml", "[check\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.content)
			assert.Error(t, err)
		})
	}
}
