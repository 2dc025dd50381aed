package emitter

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/arnavsurve/synan/internal/compiler/diag"
	"github.com/arnavsurve/synan/internal/compiler/symbols"
	"github.com/arnavsurve/synan/internal/compiler/token"
)

// Emitter receives everything the parser recognises: grammar rule
// boundaries, accepted terminals and symbol table changes. Error never
// returns nil.
type Emitter interface {
	BeginRule(name string)
	EndRule(name string)
	AcceptToken(tok token.Token)
	DeclareVariable(v symbols.Variable)
	UndeclareVariable(v symbols.Variable)
	LookupVariable(identifier string) (symbols.Variable, bool)
	Error(tok token.Token, kind diag.Kind, message string) error
}

type EventKind string

const (
	EventBegin     EventKind = "begin"
	EventEnd       EventKind = "end"
	EventAccept    EventKind = "accept"
	EventDeclare   EventKind = "declare"
	EventUndeclare EventKind = "undeclare"
	EventError     EventKind = "error"
)

// Event is one recorded emitter call. Only the fields relevant to Kind are set.
type Event struct {
	Kind     EventKind
	Rule     string
	Token    token.Token
	Variable symbols.Variable
}

const indentUnit = "  "

// Recorder is the stock Emitter. It keeps the symbol table, records every
// event in order and, when given a writer, logs them as an indented tree.
type Recorder struct {
	out     io.Writer
	depth   int
	events  []Event
	symbols map[string]symbols.Variable
}

// NewRecorder returns a Recorder that logs to out. out may be nil.
func NewRecorder(out io.Writer) *Recorder {
	return &Recorder{
		out:     out,
		symbols: make(map[string]symbols.Variable),
	}
}

func (r *Recorder) BeginRule(name string) {
	r.record(Event{Kind: EventBegin, Rule: name})
	r.logf("begin %s", name)
	r.depth++
}

func (r *Recorder) EndRule(name string) {
	if r.depth > 0 {
		r.depth--
	}
	r.record(Event{Kind: EventEnd, Rule: name})
	r.logf("end %s", name)
}

func (r *Recorder) AcceptToken(tok token.Token) {
	r.record(Event{Kind: EventAccept, Token: tok})
	r.logf("accept %s %q (line %d)", tok.Type, tok.Literal, tok.Line)
}

// DeclareVariable adds v, replacing any entry with the same identifier.
func (r *Recorder) DeclareVariable(v symbols.Variable) {
	r.symbols[v.Identifier] = v
	r.record(Event{Kind: EventDeclare, Variable: v})
	r.logf("declare %s", v)
}

// UndeclareVariable removes the entry for v's identifier.
func (r *Recorder) UndeclareVariable(v symbols.Variable) {
	delete(r.symbols, v.Identifier)
	r.record(Event{Kind: EventUndeclare, Variable: v})
	r.logf("undeclare %s", v)
}

func (r *Recorder) LookupVariable(identifier string) (symbols.Variable, bool) {
	v, ok := r.symbols[identifier]
	return v, ok
}

func (r *Recorder) Error(tok token.Token, kind diag.Kind, message string) error {
	r.record(Event{Kind: EventError, Token: tok})
	r.logf("error %s: %s", tok, message)
	return diag.New(kind, tok, message)
}

func (r *Recorder) Events() []Event {
	return r.events
}

// Rules returns the begin/end events as "begin X" / "end X" strings.
func (r *Recorder) Rules() []string {
	var out []string
	for _, ev := range r.events {
		if ev.Kind == EventBegin || ev.Kind == EventEnd {
			out = append(out, string(ev.Kind)+" "+ev.Rule)
		}
	}
	return out
}

// Symbols returns the current symbol table sorted by identifier.
func (r *Recorder) Symbols() []symbols.Variable {
	names := make([]string, 0, len(r.symbols))
	for name := range r.symbols {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]symbols.Variable, 0, len(names))
	for _, name := range names {
		out = append(out, r.symbols[name])
	}
	return out
}

func (r *Recorder) record(ev Event) {
	r.events = append(r.events, ev)
}

func (r *Recorder) logf(format string, args ...any) {
	if r.out == nil {
		return
	}
	fmt.Fprintf(r.out, "%s%s\n", strings.Repeat(indentUnit, r.depth), fmt.Sprintf(format, args...))
}
