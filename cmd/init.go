package cmd

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"text/template"

	"github.com/spf13/cobra"

	"github.com/arnavsurve/synan/internal/config"
)

//go:embed templates/*
var tplFS embed.FS

// init: scaffold a project
var InitCmd = &cobra.Command{
	Use:   "init [dir]",
	Short: "Scaffold a synan.toml and a sample program",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		targetDir := "."
		if len(args) == 1 {
			targetDir = args[0]
		}

		written, err := scaffold(targetDir)
		if err != nil {
			return err
		}
		for _, path := range written {
			fmt.Fprintf(cmd.OutOrStdout(), "✓ wrote %s\n", path)
		}
		return nil
	},
}

// scaffold writes the config, a sample program and a .gitignore into
// targetDir. An existing synan.toml is never overwritten.
func scaffold(targetDir string) ([]string, error) {
	abs, err := filepath.Abs(targetDir)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(filepath.Join(abs, config.DefaultFile)); err == nil {
		return nil, fmt.Errorf("%s already exists in %q", config.DefaultFile, targetDir)
	}

	if err := os.MkdirAll(filepath.Join(targetDir, "programs"), 0o755); err != nil {
		return nil, err
	}

	data := map[string]string{"Name": filepath.Base(abs)}
	files := []struct{ tpl, out string }{
		{"templates/synan.toml.tpl", config.DefaultFile},
		{"templates/hello.txt.tpl", filepath.Join("programs", "hello.txt")},
		{"templates/gitignore.tpl", ".gitignore"},
	}

	var written []string
	for _, f := range files {
		outPath := filepath.Join(targetDir, f.out)
		if err := writeTpl(f.tpl, outPath, data); err != nil {
			return written, err
		}
		written = append(written, outPath)
	}
	return written, nil
}

// writeTpl loads tplName from tplFS, executes it with data, and writes to outPath
func writeTpl(tplName, outPath string, data any) error {
	t, err := template.ParseFS(tplFS, tplName)
	if err != nil {
		return err
	}

	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer f.Close()

	return t.Execute(f, data)
}
