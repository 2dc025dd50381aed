package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/arnavsurve/synan/internal/compiler"
)

var (
	passStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981")).
			Bold(true)

	failStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F87171")).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#64748B"))
)

type painter struct {
	color bool
}

func (p painter) paint(style lipgloss.Style, s string) string {
	if !p.color {
		return s
	}
	return style.Render(s)
}

// report prints one line per result and returns how many failed.
func report(w io.Writer, results []compiler.Result, p painter, showSymbols bool) int {
	failed := 0
	for _, res := range results {
		if res.OK {
			fmt.Fprintf(w, "%s %s %s\n", p.paint(passStyle, "✔︎"), res.Path, p.paint(dimStyle, res.Duration.String()))
		} else {
			failed++
			fmt.Fprintf(w, "%s %s: %s\n", p.paint(failStyle, "✘"), res.Path, describe(res))
		}

		if showSymbols && len(res.Symbols) > 0 {
			names := make([]string, 0, len(res.Symbols))
			for _, v := range res.Symbols {
				names = append(names, v.String())
			}
			fmt.Fprintf(w, "  %s %s\n", p.paint(dimStyle, "symbols:"), strings.Join(names, " "))
		}
	}
	return failed
}

func describe(res compiler.Result) string {
	if ce := res.CompilationError(); ce != nil {
		return fmt.Sprintf("%s on line %d at %q: %s", ce.Kind, ce.Token.Line, ce.Token.Literal, ce.Message)
	}
	return res.Err.Error()
}
