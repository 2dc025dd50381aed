package diag

import (
	"fmt"
	"io"
	"strings"
	"unicode"
)

// Separator closes every rendered trace.
var Separator = strings.Repeat("-", 206) + ">"

// Frame is one grammar rule still in progress, with the line of the token
// that was current when the rule was entered.
type Frame struct {
	Rule string
	Line int
}

// Label is the rule name split into words: "StatementPart" -> "Statement Part".
func (f Frame) Label() string {
	var b strings.Builder
	for i, r := range f.Rule {
		if i > 0 && unicode.IsUpper(r) {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Trace is the stack of rules entered but not yet completed.
type Trace struct {
	frames []Frame
}

func (t *Trace) Push(rule string, line int) {
	t.frames = append(t.frames, Frame{Rule: rule, Line: line})
}

func (t *Trace) Pop() {
	if len(t.frames) > 0 {
		t.frames = t.frames[:len(t.frames)-1]
	}
}

func (t *Trace) Depth() int {
	return len(t.frames)
}

// Frames returns a copy, outermost first.
func (t *Trace) Frames() []Frame {
	out := make([]Frame, len(t.frames))
	copy(out, t.frames)
	return out
}

// Render writes the frames innermost first, then the separator.
func Render(w io.Writer, frames []Frame) error {
	for i := len(frames) - 1; i >= 0; i-- {
		if _, err := fmt.Fprintf(w, ">\tCaused by %s on line %d\n", frames[i].Label(), frames[i].Line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, Separator)
	return err
}
