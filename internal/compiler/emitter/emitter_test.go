package emitter

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arnavsurve/synan/internal/compiler/diag"
	"github.com/arnavsurve/synan/internal/compiler/symbols"
	"github.com/arnavsurve/synan/internal/compiler/token"
)

func TestRecorderLog(t *testing.T) {
	var out bytes.Buffer
	r := NewRecorder(&out)

	r.BeginRule("StatementPart")
	r.AcceptToken(token.Token{Type: token.TokenBegin, Literal: "begin", Line: 1})
	r.BeginRule("StatementList")
	r.DeclareVariable(symbols.Variable{Identifier: "x", Type: symbols.Number})
	r.EndRule("StatementList")
	r.UndeclareVariable(symbols.Variable{Identifier: "x", Type: symbols.Number})
	r.EndRule("StatementPart")

	want := "begin StatementPart\n" +
		"  accept BEGIN \"begin\" (line 1)\n" +
		"  begin StatementList\n" +
		"    declare x:NUMBER\n" +
		"  end StatementList\n" +
		"  undeclare x:NUMBER\n" +
		"end StatementPart\n"
	assert.Equal(t, want, out.String())
	assert.Equal(t, []string{"begin StatementPart", "begin StatementList", "end StatementList", "end StatementPart"}, r.Rules())
	assert.Len(t, r.Events(), 7)
}

func TestRecorderSymbolTable(t *testing.T) {
	r := NewRecorder(nil)

	r.DeclareVariable(symbols.Variable{Identifier: "b", Type: symbols.String})
	r.DeclareVariable(symbols.Variable{Identifier: "a", Type: symbols.Number})
	r.DeclareVariable(symbols.Variable{Identifier: "b", Type: symbols.Number})

	v, ok := r.LookupVariable("b")
	require.True(t, ok)
	assert.Equal(t, symbols.Number, v.Type)

	assert.Equal(t, []symbols.Variable{
		{Identifier: "a", Type: symbols.Number},
		{Identifier: "b", Type: symbols.Number},
	}, r.Symbols())

	r.UndeclareVariable(symbols.Variable{Identifier: "a"})
	_, ok = r.LookupVariable("a")
	assert.False(t, ok)
	assert.Len(t, r.Symbols(), 1)
}

func TestRecorderError(t *testing.T) {
	r := NewRecorder(nil)
	tok := token.Token{Type: token.TokenSemicolon, Literal: ";", Line: 3, Column: 7}

	err := r.Error(tok, diag.UnexpectedSymbol, diag.MsgUnexpectedSymbol)
	require.Error(t, err)
	assert.True(t, diag.IsKind(err, diag.UnexpectedSymbol))
	assert.Equal(t, []Event{{Kind: EventError, Token: tok}}, r.Events())
}
