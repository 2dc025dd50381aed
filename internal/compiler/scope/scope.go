package scope

import (
	"errors"
	"fmt"
	"sort"

	"github.com/arnavsurve/synan/internal/compiler/symbols"
)

var ErrNoLoopScope = errors.New("no loop scope is open")

// --- Scope ---
type Scope struct {
	Symbols map[string]symbols.Variable
	Name    string

	order []string // identifiers in declaration order
}

func NewScope(name string) *Scope {
	return &Scope{
		Symbols: make(map[string]symbols.Variable),
		Name:    name,
	}
}

// Define adds v to this scope level. Redefining an identifier replaces its
// type and reports false.
func (s *Scope) Define(v symbols.Variable) bool {
	_, exists := s.Symbols[v.Identifier]
	s.Symbols[v.Identifier] = v
	if !exists {
		s.order = append(s.order, v.Identifier)
	}
	return !exists
}

// LookupCurrentScope checks ONLY this scope level.
func (s *Scope) LookupCurrentScope(name string) (symbols.Variable, bool) {
	v, ok := s.Symbols[name]
	return v, ok
}

// Variables returns the members in declaration order.
func (s *Scope) Variables() []symbols.Variable {
	out := make([]symbols.Variable, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.Symbols[name])
	}
	return out
}

// SymbolTable is the part of the emitter the manager keeps in step.
type SymbolTable interface {
	DeclareVariable(v symbols.Variable)
	UndeclareVariable(v symbols.Variable)
}

// Manager owns the global scope and the stack of scopes opened by loops.
// Every declaration is forwarded to the symbol table; loop members are
// withdrawn from it again when their loop closes.
type Manager struct {
	table  SymbolTable
	global *Scope
	loops  []*Scope
}

func NewManager(table SymbolTable) *Manager {
	return &Manager{
		table:  table,
		global: NewScope("global"),
	}
}

// Declare records identifier with type t. Outside a loop it goes to the
// global scope. Inside one it goes to the innermost loop scope unless it is
// already visible there or globally, in which case it is a re-use.
func (m *Manager) Declare(identifier string, t symbols.Type) {
	v := symbols.Variable{Identifier: identifier, Type: t}
	m.table.DeclareVariable(v)

	if len(m.loops) == 0 {
		m.global.Define(v)
		return
	}
	if m.IsShadowed(identifier) {
		return
	}
	m.innermost().Define(v)
}

// IsShadowed reports whether identifier exists in the innermost loop scope
// or in the global scope. Enclosing loop scopes are not consulted.
func (m *Manager) IsShadowed(identifier string) bool {
	if len(m.loops) > 0 {
		if _, ok := m.innermost().LookupCurrentScope(identifier); ok {
			return true
		}
	}
	_, ok := m.global.LookupCurrentScope(identifier)
	return ok
}

func (m *Manager) OpenLoop() {
	m.loops = append(m.loops, NewScope(fmt.Sprintf("loop-%d", len(m.loops)+1)))
}

// CloseLoop undeclares every member of the innermost loop scope and pops it.
func (m *Manager) CloseLoop() ([]symbols.Variable, error) {
	if len(m.loops) == 0 {
		return nil, ErrNoLoopScope
	}
	members := m.innermost().Variables()
	for _, v := range members {
		m.table.UndeclareVariable(v)
	}
	m.loops = m.loops[:len(m.loops)-1]
	return members, nil
}

// Depth is the number of loop scopes currently open.
func (m *Manager) Depth() int {
	return len(m.loops)
}

func (m *Manager) InLoop() bool {
	return len(m.loops) > 0
}

// Globals returns the global scope sorted by identifier.
func (m *Manager) Globals() []symbols.Variable {
	out := m.global.Variables()
	sort.Slice(out, func(i, j int) bool { return out[i].Identifier < out[j].Identifier })
	return out
}

func (m *Manager) innermost() *Scope {
	return m.loops[len(m.loops)-1]
}
