package compiler

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/arnavsurve/synan/internal/compiler/diag"
	"github.com/arnavsurve/synan/internal/compiler/emitter"
	"github.com/arnavsurve/synan/internal/compiler/lexer"
	"github.com/arnavsurve/synan/internal/compiler/parser"
	"github.com/arnavsurve/synan/internal/compiler/symbols"
)

// Parser is what the driver needs from a syntax analyser: one call that
// consumes a whole program.
type Parser interface {
	Program() error
}

type Options struct {
	// Extensions selects files when a directory is given. Defaults to .txt.
	Extensions []string
	// Events receives the grammar event log. nil disables it.
	Events io.Writer
	// TraceOutput receives the rule trace of a failing program. nil disables it.
	TraceOutput io.Writer
	Logger      *slog.Logger
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}

func (o Options) extensions() []string {
	if len(o.Extensions) == 0 {
		return []string{".txt"}
	}
	return o.Extensions
}

type Result struct {
	Path     string
	OK       bool
	Symbols  []symbols.Variable // symbol table after the parse
	Err      error
	Duration time.Duration
}

// CompilationError returns the syntax error that failed the program, if any.
func (r Result) CompilationError() *diag.CompilationError {
	var ce *diag.CompilationError
	if errors.As(r.Err, &ce) {
		return ce
	}
	return nil
}

// Analyse checks a single program read from r.
func Analyse(name string, r io.Reader, opts Options) Result {
	start := time.Now()
	traceOut := opts.TraceOutput
	if traceOut == nil {
		traceOut = io.Discard
	}

	rec := emitter.NewRecorder(opts.Events)
	p := parser.NewParser(lexer.NewLexer(r), rec, parser.WithTraceOutput(traceOut))
	err := run(p)

	res := Result{
		Path:     name,
		OK:       err == nil,
		Symbols:  rec.Symbols(),
		Err:      err,
		Duration: time.Since(start),
	}
	opts.logger().Debug("analysed program", "path", name, "ok", res.OK, "symbols", len(res.Symbols), "duration", res.Duration)
	return res
}

func run(p Parser) error {
	return p.Program()
}

// CheckFile opens and checks the program at path.
func CheckFile(path string, opts Options) Result {
	f, err := os.Open(path)
	if err != nil {
		return Result{Path: path, Err: fmt.Errorf("open program: %w", err)}
	}
	defer f.Close()
	return Analyse(path, f, opts)
}

// CheckFiles checks every program named by paths, expanding directories.
// A failing program does not stop the ones after it, and a file that cannot
// be opened fails only its own Result. Only a directory that cannot be
// walked is returned as an error.
func CheckFiles(paths []string, opts Options) ([]Result, error) {
	files, err := ExpandPaths(paths, opts.extensions())
	if err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(files))
	for _, file := range files {
		res := CheckFile(file, opts)
		if !res.OK {
			opts.logger().Debug("program failed", "path", file, "error", res.Err)
		}
		results = append(results, res)
	}
	return results, nil
}

// ExpandPaths keeps plain files as given and walks directories for files
// with one of exts. Directory results are sorted. A path that cannot be
// stat'ed is kept as a file so opening it reports the failure.
func ExpandPaths(paths []string, exts []string) ([]string, error) {
	var files []string
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil || !info.IsDir() {
			files = append(files, path)
			continue
		}

		var found []string
		err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && HasExtension(p, exts) {
				found = append(found, p)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %q: %w", path, err)
		}
		sort.Strings(found)
		files = append(files, found...)
	}
	return files, nil
}

func HasExtension(path string, exts []string) bool {
	ext := filepath.Ext(path)
	for _, want := range exts {
		if strings.EqualFold(ext, want) {
			return true
		}
	}
	return false
}
