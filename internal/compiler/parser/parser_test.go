package parser

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arnavsurve/synan/internal/compiler/diag"
	"github.com/arnavsurve/synan/internal/compiler/emitter"
	"github.com/arnavsurve/synan/internal/compiler/lexer"
	"github.com/arnavsurve/synan/internal/compiler/symbols"
	"github.com/arnavsurve/synan/internal/compiler/token"
)

// --- Test Helper Functions ---

type result struct {
	parser   *Parser
	recorder *emitter.Recorder
	trace    *bytes.Buffer
	err      error
}

func parse(t *testing.T, src string) result {
	t.Helper()
	rec := emitter.NewRecorder(nil)
	var trace bytes.Buffer
	p := NewParser(lexer.NewLexer(strings.NewReader(src)), rec, WithTraceOutput(&trace))
	err := p.Program()
	return result{parser: p, recorder: rec, trace: &trace, err: err}
}

func mustParse(t *testing.T, src string) result {
	t.Helper()
	res := parse(t, src)
	require.NoError(t, res.err, "trace:\n%s", res.trace.String())
	assert.Zero(t, res.parser.LoopDepth(), "loop scopes left open")
	return res
}

func compilationError(t *testing.T, err error) *diag.CompilationError {
	t.Helper()
	var ce *diag.CompilationError
	require.True(t, errors.As(err, &ce), "expected *diag.CompilationError, got %T: %v", err, err)
	return ce
}

func num(id string) symbols.Variable { return symbols.Variable{Identifier: id, Type: symbols.Number} }
func str(id string) symbols.Variable { return symbols.Variable{Identifier: id, Type: symbols.String} }

func undeclared(rec *emitter.Recorder) []string {
	var out []string
	for _, ev := range rec.Events() {
		if ev.Kind == emitter.EventUndeclare {
			out = append(out, ev.Variable.Identifier)
		}
	}
	return out
}

// --- Grammar ---

func TestIfWithoutElse(t *testing.T) {
	res := mustParse(t, `begin x := 1 ; if x > 0 then y := 2 end if end`)

	want := []symbols.Variable{num("x"), num("y")}
	if diff := cmp.Diff(want, res.recorder.Symbols()); diff != "" {
		t.Errorf("symbol table mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(want, res.parser.Globals()); diff != "" {
		t.Errorf("global scope mismatch (-want +got):\n%s", diff)
	}
}

func TestIfWithElse(t *testing.T) {
	res := mustParse(t, `begin x := 1 ; if x <> 0 then y := 2 else z := "no" end if end`)

	want := []symbols.Variable{num("x"), num("y"), str("z")}
	assert.Equal(t, want, res.recorder.Symbols())
}

func TestIfMissingElseKeyword(t *testing.T) {
	res := parse(t, `begin x := 1 ; if x > 0 then y := 2 y := 3 end if end`)

	ce := compilationError(t, res.err)
	assert.Equal(t, diag.UnexpectedSymbol, ce.Kind)
	assert.Equal(t, token.TokenIdent, ce.Token.Type)
	assert.Equal(t, "y", ce.Token.Literal)
}

func TestStatementForms(t *testing.T) {
	src := `
begin
  x := 1;
  while x < 10 loop x := x + 1 end loop;
  call print(x, y, z);
  do x := x + 2 until x >= 20;
  name := "ada";
  if name = "ada" then x := 0 end if
end`
	res := mustParse(t, src)
	assert.Equal(t, []symbols.Variable{str("name"), num("x")}, res.recorder.Symbols())
}

func TestConditionOperands(t *testing.T) {
	for _, cond := range []string{`a > b`, `a >= 1`, `a = "s"`, `a <> b`, `a < 2.5`, `a <= c`} {
		t.Run(cond, func(t *testing.T) {
			mustParse(t, `begin while `+cond+` loop x := 1 end loop end`)
		})
	}
}

func TestSyntaxErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		at   token.TokenType
	}{
		{"missing begin", `x := 1 end`, token.TokenIdent},
		{"empty statement", `begin ; end`, token.TokenSemicolon},
		{"missing becomes", `begin x 1 end`, token.TokenNumber},
		{"bad conditional operator", `begin while x := 1 loop y := 1 end loop end`, token.TokenBecomes},
		{"bad condition operand", `begin while x > ( loop y := 1 end loop end`, token.TokenLParen},
		{"bad factor", `begin x := end`, token.TokenEnd},
		{"unclosed paren", `begin x := (1 + 2 end`, token.TokenEnd},
		{"while without end loop", `begin while x > 1 loop y := 1 end end`, token.TokenEnd},
		{"until dispatch on until", `begin until x > 1 end`, token.TokenUntil},
		{"call without parens", `begin call f x end`, token.TokenIdent},
		{"argument list trailing comma", `begin call f(x,) end`, token.TokenRParen},
		{"illegal character", `begin x := 1 # 2 end`, token.TokenIllegal},
		{"trailing tokens", `begin x := 1 end x`, token.TokenIdent},
		{"missing end", `begin x := 1`, token.TokenEOF},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := parse(t, tt.src)
			ce := compilationError(t, res.err)
			assert.Equal(t, diag.UnexpectedSymbol, ce.Kind)
			assert.Equal(t, diag.MsgUnexpectedSymbol, ce.Message)
			assert.Equal(t, tt.at, ce.Token.Type)
		})
	}
}

func TestRuleEvents(t *testing.T) {
	res := mustParse(t, `begin x := 1 end`)

	want := []string{
		"begin StatementPart",
		"begin StatementList",
		"begin Statement",
		"begin AssignmentStatement",
		"begin Expression",
		"begin Term",
		"begin Factor",
		"end Factor",
		"end Term",
		"end Expression",
		"end AssignmentStatement",
		"end Statement",
		"end StatementList",
		"end StatementPart",
	}
	if diff := cmp.Diff(want, res.recorder.Rules()); diff != "" {
		t.Errorf("rule events mismatch (-want +got):\n%s", diff)
	}

	var accepted []token.TokenType
	for _, ev := range res.recorder.Events() {
		if ev.Kind == emitter.EventAccept {
			accepted = append(accepted, ev.Token.Type)
		}
	}
	wantAccepted := []token.TokenType{token.TokenBegin, token.TokenIdent, token.TokenBecomes, token.TokenNumber, token.TokenEnd, token.TokenEOF}
	assert.Equal(t, wantAccepted, accepted)
}

func TestRightRecursiveLists(t *testing.T) {
	res := mustParse(t, `begin call f(a, b); x := 1 end`)

	var lists, args int
	for _, r := range res.recorder.Rules() {
		switch r {
		case "begin StatementList":
			lists++
		case "begin ArgumentList":
			args++
		}
	}
	assert.Equal(t, 2, lists)
	assert.Equal(t, 2, args)
}

// --- Scopes ---

func TestForLoopVariablesAreWithdrawn(t *testing.T) {
	res := mustParse(t, `begin for ( i := 0 ; i < 5 ; i := i ) do x := i end loop end`)

	assert.Empty(t, res.recorder.Symbols())
	assert.Empty(t, res.parser.Globals())
	assert.ElementsMatch(t, []string{"i", "x"}, undeclared(res.recorder))
}

func TestGlobalSurvivesLoop(t *testing.T) {
	res := mustParse(t, `begin x := 0 ; for ( i := 0 ; i < 5 ; i := i ) do x := i end loop end`)

	assert.Equal(t, []symbols.Variable{num("x")}, res.recorder.Symbols())
	assert.Equal(t, []symbols.Variable{num("x")}, res.parser.Globals())
	assert.Equal(t, []string{"i"}, undeclared(res.recorder))
}

func TestGlobalRedeclaredInLoopIsReused(t *testing.T) {
	res := mustParse(t, `begin i := 5 ; for ( i := 0 ; i < 3 ; i := i + 1 ) do y := i end loop end`)

	assert.Equal(t, []symbols.Variable{num("i")}, res.recorder.Symbols())
	assert.Equal(t, []string{"y"}, undeclared(res.recorder))
}

func TestLoopVariableRedeclaredOnce(t *testing.T) {
	res := mustParse(t, `begin for ( i := 0 ; i < 3 ; i := i + 1 ) do i := i + 1 ; i := 2 end loop end`)

	assert.Empty(t, res.recorder.Symbols())
	assert.Equal(t, []string{"i"}, undeclared(res.recorder))
}

func TestNestedForLoops(t *testing.T) {
	src := `
begin
  total := 0;
  for (i := 0; i < 3; i := i + 1) do
    for (j := 0; j < 3; j := j + 1) do
      k := i * j;
      total := total + k
    end loop;
    m := i
  end loop
end`
	res := mustParse(t, src)

	assert.Equal(t, []symbols.Variable{num("total")}, res.recorder.Symbols())
	// inner loop members go first, then the outer loop's
	got := undeclared(res.recorder)
	require.Len(t, got, 4)
	assert.ElementsMatch(t, []string{"j", "k"}, got[:2])
	assert.ElementsMatch(t, []string{"i", "m"}, got[2:])
}

func TestLoopVariableUsedAfterLoop(t *testing.T) {
	res := parse(t, `begin for (i := 0; i < 3; i := i + 1) do x := 1 end loop; y := i end`)

	ce := compilationError(t, res.err)
	assert.Equal(t, diag.UninitialisedVariable, ce.Kind)
	assert.Equal(t, "i", ce.Token.Literal)
}

func TestInnerLoopWithdrawsOuterLoopVariable(t *testing.T) {
	src := `
begin
  for (i := 0; i < 3; i := i + 1) do
    for (j := 0; j < 3; i := i + 1) do
      x := j
    end loop;
    y := i
  end loop
end`
	res := parse(t, src)

	ce := compilationError(t, res.err)
	assert.Equal(t, diag.UninitialisedVariable, ce.Kind)
	assert.Equal(t, "i", ce.Token.Literal)
	assert.Equal(t, 7, ce.Token.Line)
	assert.ElementsMatch(t, []string{"j", "i", "x"}, undeclared(res.recorder))
}

func TestUninitialisedVariable(t *testing.T) {
	res := parse(t, `begin y := z end`)

	ce := compilationError(t, res.err)
	assert.True(t, diag.IsKind(res.err, diag.UninitialisedVariable))
	assert.Equal(t, diag.MsgUninitialisedVariable, ce.Message)
	assert.Equal(t, "z", ce.Token.Literal)
}

func TestSelfReferenceBeforeDeclaration(t *testing.T) {
	res := parse(t, `begin x := x + 1 end`)
	assert.True(t, diag.IsKind(res.err, diag.UninitialisedVariable))
}

// --- String operations ---

func TestStringOperations(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		wantErr bool
		message string
		at      string
	}{
		{"plus is legal", `begin s := "a" ; t := s + s + 1 end`, false, "", ""},
		{"string times", `begin x := "a" ; y := x * 2 end`, true, diag.MsgIllegalStringOperator("*"), "*"},
		{"string divide", `begin x := "a" ; y := x / 2 end`, true, diag.MsgIllegalStringOperator("/"), "/"},
		{"string minus", `begin x := "a" ; y := x - 2 end`, true, diag.MsgIllegalStringOperator("-"), "-"},
		{"string after plus then minus", `begin x := "a" ; y := x + 1 - 2 end`, true, diag.MsgIllegalStringOperator("-"), "-"},
		{"string after minus", `begin x := "a" ; y := 1 - x end`, true, diag.MsgIllegalStringOperand, "x"},
		{"string after times", `begin x := "a" ; y := 2 * x end`, true, diag.MsgIllegalStringOperand, "x"},
		{"string after product in sum", `begin x := "a" ; y := 2 * 3 + x end`, true, diag.MsgIllegalStringOperand, "x"},
		{"parenthesised product releases", `begin x := "a" ; y := (2 * 3) + x end`, false, "", ""},
		{"string inside parens then times", `begin x := "a" ; y := (x) * 2 end`, true, diag.MsgIllegalStringOperator("*"), "*"},
		{"number minus is legal", `begin x := 4 ; y := x - 2 * 3 / 1 end`, false, "", ""},
		{"state does not leak across statements", `begin s := "a" ; t := s + 1 ; u := 2 * 3 end`, false, "", ""},
		{"restriction does not leak across statements", `begin s := "a" ; t := 2 * 3 ; u := s + 1 end`, false, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := parse(t, tt.src)
			if !tt.wantErr {
				require.NoError(t, res.err)
				return
			}
			ce := compilationError(t, res.err)
			assert.Equal(t, diag.IllegalStringOperation, ce.Kind)
			assert.Equal(t, tt.message, ce.Message)
			assert.Equal(t, tt.at, ce.Token.Literal)
		})
	}
}

func TestStringAssignmentTypes(t *testing.T) {
	res := mustParse(t, `begin s := "a" ; t := s + s ; s := 3 end`)
	// t came from an expression, s was re-assigned a number
	assert.Equal(t, []symbols.Variable{num("s"), num("t")}, res.recorder.Symbols())
}

// --- Trace ---

func TestTraceRendering(t *testing.T) {
	src := "begin\n  x := 1;\n  y := x +\nend\n"
	res := parse(t, src)

	ce := compilationError(t, res.err)
	assert.Equal(t, 4, ce.Token.Line)

	want := []string{
		">\tCaused by Factor on line 4",
		">\tCaused by Term on line 4",
		">\tCaused by Expression on line 4",
		">\tCaused by Expression on line 3",
		">\tCaused by Assignment Statement on line 3",
		">\tCaused by Statement on line 3",
		">\tCaused by Statement List on line 3",
		">\tCaused by Statement List on line 2",
		">\tCaused by Statement Part on line 1",
		diag.Separator,
	}
	got := strings.Split(strings.TrimSuffix(res.trace.String(), "\n"), "\n")
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("trace mismatch (-want +got):\n%s", diff)
	}

	require.Len(t, ce.Trace, 9)
	assert.Equal(t, diag.Frame{Rule: RuleStatementPart, Line: 1}, ce.Trace[0])
	assert.Equal(t, diag.Frame{Rule: RuleFactor, Line: 4}, ce.Trace[8])
}

func TestTraceNotRenderedOutsideStatementPart(t *testing.T) {
	res := parse(t, `begin x := 1 end end`)

	ce := compilationError(t, res.err)
	assert.Empty(t, ce.Trace)
	assert.Empty(t, res.trace.String())
}

// --- Token stream failures ---

type failingReader struct {
	data string
	err  error
}

func (r *failingReader) Read(b []byte) (int, error) {
	if r.data == "" {
		return 0, r.err
	}
	n := copy(b, r.data)
	r.data = r.data[n:]
	return n, nil
}

func TestReadErrorPropagates(t *testing.T) {
	boom := errors.New("disk on fire")
	rec := emitter.NewRecorder(nil)
	var trace bytes.Buffer
	p := NewParser(lexer.NewLexer(&failingReader{data: "begin x := ", err: boom}), rec, WithTraceOutput(&trace))

	err := p.Program()
	require.ErrorIs(t, err, boom)

	var ce *diag.CompilationError
	assert.False(t, errors.As(err, &ce))
	assert.Empty(t, trace.String())
}

// silentEmitter breaks the Error contract by returning nil.
type silentEmitter struct {
	*emitter.Recorder
}

func (silentEmitter) Error(token.Token, diag.Kind, string) error { return nil }

func TestNilEmitterErrorStillFails(t *testing.T) {
	for _, src := range []string{
		`begin x := end`,
		`begin x := y end`,
		`begin s := "a" ; x := s * 2 end`,
	} {
		t.Run(src, func(t *testing.T) {
			rec := emitter.NewRecorder(nil)
			var trace bytes.Buffer
			p := NewParser(lexer.NewLexer(strings.NewReader(src)), silentEmitter{rec}, WithTraceOutput(&trace))

			err := p.Program()
			compilationError(t, err)
			assert.Contains(t, trace.String(), "Caused by Statement Part")
		})
	}
}
