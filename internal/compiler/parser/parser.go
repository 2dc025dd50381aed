package parser

import (
	"errors"
	"io"
	"os"

	"github.com/arnavsurve/synan/internal/compiler/diag"
	"github.com/arnavsurve/synan/internal/compiler/emitter"
	"github.com/arnavsurve/synan/internal/compiler/scope"
	"github.com/arnavsurve/synan/internal/compiler/symbols"
	"github.com/arnavsurve/synan/internal/compiler/token"
)

// Grammar rule names, as reported to the emitter and the trace.
const (
	RuleStatementPart       = "StatementPart"
	RuleStatementList       = "StatementList"
	RuleStatement           = "Statement"
	RuleAssignmentStatement = "AssignmentStatement"
	RuleIfStatement         = "IfStatement"
	RuleWhileStatement      = "WhileStatement"
	RuleProcedureStatement  = "ProcedureStatement"
	RuleUntilStatement      = "UntilStatement"
	RuleForStatement        = "ForStatement"
	RuleArgumentList        = "ArgumentList"
	RuleCondition           = "Condition"
	RuleConditionalOperator = "ConditionalOperator"
	RuleExpression          = "Expression"
	RuleTerm                = "Term"
	RuleFactor              = "Factor"
)

// TokenStream hands out one token per call. Its errors are passed up
// untouched.
type TokenStream interface {
	Next() (token.Token, error)
}

type Parser struct {
	l        TokenStream
	curTok   token.Token
	em       emitter.Emitter
	scopes   *scope.Manager
	trace    diag.Trace
	traceOut io.Writer
}

type Option func(*Parser)

// WithTraceOutput sets where the rule trace is written when a program fails.
// Defaults to os.Stderr.
func WithTraceOutput(w io.Writer) Option {
	return func(p *Parser) {
		p.traceOut = w
	}
}

func NewParser(l TokenStream, em emitter.Emitter, opts ...Option) *Parser {
	p := &Parser{
		l:        l,
		em:       em,
		scopes:   scope.NewManager(em),
		traceOut: os.Stderr,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Globals returns the variables in the global scope.
func (p *Parser) Globals() []symbols.Variable {
	return p.scopes.Globals()
}

// LoopDepth is the number of loop scopes still open.
func (p *Parser) LoopDepth() int {
	return p.scopes.Depth()
}

// --- Token Handling ---
func (p *Parser) nextToken() error {
	tok, err := p.l.Next()
	if err != nil {
		return err
	}
	p.curTok = tok
	return nil
}

func (p *Parser) acceptTerminal(expected token.TokenType) error {
	if p.curTok.Type != expected {
		return p.unexpected()
	}
	p.em.AcceptToken(p.curTok)
	return p.nextToken()
}

func (p *Parser) unexpected() error {
	return p.fail(diag.UnexpectedSymbol, diag.MsgUnexpectedSymbol)
}

// fail reports an error at the current token. An emitter that hands back nil
// still fails the production, so begin/end events stay balanced.
func (p *Parser) fail(kind diag.Kind, message string) error {
	if err := p.em.Error(p.curTok, kind, message); err != nil {
		return err
	}
	return diag.New(kind, p.curTok, message)
}

// enter and leave bracket every production. A failing production returns
// without calling leave, so its frame stays on the trace.
func (p *Parser) enter(rule string) {
	p.em.BeginRule(rule)
	p.trace.Push(rule, p.curTok.Line)
}

func (p *Parser) leave(rule string) {
	p.trace.Pop()
	p.em.EndRule(rule)
}

// --- Program ---

// Program reads the first token, parses the statement part and requires the
// input to end right after it.
func (p *Parser) Program() error {
	if err := p.nextToken(); err != nil {
		return err
	}
	if err := p.StatementPart(); err != nil {
		return err
	}
	return p.acceptTerminal(token.TokenEOF)
}

// StatementPart = "begin" StatementList "end".
// A compilation error is annotated with the rule trace, which is also
// written to the trace output, before it is returned.
func (p *Parser) StatementPart() error {
	p.enter(RuleStatementPart)

	err := p.statementPart()
	if err != nil {
		var ce *diag.CompilationError
		if errors.As(err, &ce) {
			ce.Trace = p.trace.Frames()
			_ = diag.Render(p.traceOut, ce.Trace)
		}
		return err
	}

	p.leave(RuleStatementPart)
	return nil
}

func (p *Parser) statementPart() error {
	if err := p.acceptTerminal(token.TokenBegin); err != nil {
		return err
	}
	if err := p.statementList(); err != nil {
		return err
	}
	return p.acceptTerminal(token.TokenEnd)
}

// StatementList = Statement [ ";" StatementList ].
func (p *Parser) statementList() error {
	p.enter(RuleStatementList)

	if err := p.statement(); err != nil {
		return err
	}
	if p.curTok.Type == token.TokenSemicolon {
		if err := p.acceptTerminal(token.TokenSemicolon); err != nil {
			return err
		}
		if err := p.statementList(); err != nil {
			return err
		}
	}

	p.leave(RuleStatementList)
	return nil
}

func (p *Parser) statement() error {
	p.enter(RuleStatement)

	var err error
	switch p.curTok.Type {
	case token.TokenIdent:
		err = p.assignmentStatement()
	case token.TokenIf:
		err = p.ifStatement()
	case token.TokenWhile:
		err = p.whileStatement()
	case token.TokenCall:
		err = p.procedureStatement()
	case token.TokenDo:
		err = p.untilStatement()
	case token.TokenFor:
		err = p.forStatement()
	default:
		err = p.unexpected()
	}
	if err != nil {
		return err
	}

	p.leave(RuleStatement)
	return nil
}

// AssignmentStatement = identifier ":=" ( string | Expression ).
// The identifier is declared only once the right-hand side has parsed.
func (p *Parser) assignmentStatement() error {
	p.enter(RuleAssignmentStatement)

	identifier := p.curTok.Literal
	if err := p.acceptTerminal(token.TokenIdent); err != nil {
		return err
	}
	if err := p.acceptTerminal(token.TokenBecomes); err != nil {
		return err
	}

	if p.curTok.Type == token.TokenString {
		if err := p.acceptTerminal(token.TokenString); err != nil {
			return err
		}
		p.scopes.Declare(identifier, symbols.String)
	} else {
		if _, err := p.expression(ctxClean); err != nil {
			return err
		}
		p.scopes.Declare(identifier, symbols.Number)
	}

	p.leave(RuleAssignmentStatement)
	return nil
}

// IfStatement = "if" Condition "then" StatementList [ "else" StatementList ] "end" "if".
// Anything other than "end" after the then-branch must be "else".
func (p *Parser) ifStatement() error {
	p.enter(RuleIfStatement)

	if err := p.acceptTerminal(token.TokenIf); err != nil {
		return err
	}
	if err := p.condition(); err != nil {
		return err
	}
	if err := p.acceptTerminal(token.TokenThen); err != nil {
		return err
	}
	if err := p.statementList(); err != nil {
		return err
	}

	if p.curTok.Type != token.TokenEnd {
		if err := p.acceptTerminal(token.TokenElse); err != nil {
			return err
		}
		if err := p.statementList(); err != nil {
			return err
		}
	}

	if p.curTok.Type == token.TokenEnd {
		if err := p.acceptTerminal(token.TokenEnd); err != nil {
			return err
		}
		if err := p.acceptTerminal(token.TokenIf); err != nil {
			return err
		}
	}

	p.leave(RuleIfStatement)
	return nil
}

// WhileStatement = "while" Condition "loop" StatementList "end" "loop".
func (p *Parser) whileStatement() error {
	p.enter(RuleWhileStatement)

	if err := p.acceptTerminal(token.TokenWhile); err != nil {
		return err
	}
	if err := p.condition(); err != nil {
		return err
	}
	if err := p.acceptTerminal(token.TokenLoop); err != nil {
		return err
	}
	if err := p.statementList(); err != nil {
		return err
	}
	if err := p.acceptTerminal(token.TokenEnd); err != nil {
		return err
	}
	if err := p.acceptTerminal(token.TokenLoop); err != nil {
		return err
	}

	p.leave(RuleWhileStatement)
	return nil
}

// ProcedureStatement = "call" identifier "(" ArgumentList ")".
func (p *Parser) procedureStatement() error {
	p.enter(RuleProcedureStatement)

	for _, tt := range []token.TokenType{token.TokenCall, token.TokenIdent, token.TokenLParen} {
		if err := p.acceptTerminal(tt); err != nil {
			return err
		}
	}
	if err := p.argumentList(); err != nil {
		return err
	}
	if err := p.acceptTerminal(token.TokenRParen); err != nil {
		return err
	}

	p.leave(RuleProcedureStatement)
	return nil
}

// UntilStatement = "do" StatementList "until" Condition.
func (p *Parser) untilStatement() error {
	p.enter(RuleUntilStatement)

	if err := p.acceptTerminal(token.TokenDo); err != nil {
		return err
	}
	if err := p.statementList(); err != nil {
		return err
	}
	if err := p.acceptTerminal(token.TokenUntil); err != nil {
		return err
	}
	if err := p.condition(); err != nil {
		return err
	}

	p.leave(RuleUntilStatement)
	return nil
}

// ForStatement = "for" "(" AssignmentStatement ";" Condition ";"
// AssignmentStatement ")" "do" StatementList "end" "loop".
// Everything declared from the opening "for" onwards lives in a loop scope
// that is withdrawn from the symbol table once "end loop" is accepted.
func (p *Parser) forStatement() error {
	p.enter(RuleForStatement)
	p.scopes.OpenLoop()

	if err := p.acceptTerminal(token.TokenFor); err != nil {
		return err
	}
	if err := p.acceptTerminal(token.TokenLParen); err != nil {
		return err
	}
	if err := p.assignmentStatement(); err != nil {
		return err
	}
	if err := p.acceptTerminal(token.TokenSemicolon); err != nil {
		return err
	}
	if err := p.condition(); err != nil {
		return err
	}
	if err := p.acceptTerminal(token.TokenSemicolon); err != nil {
		return err
	}
	if err := p.assignmentStatement(); err != nil {
		return err
	}
	for _, tt := range []token.TokenType{token.TokenRParen, token.TokenDo} {
		if err := p.acceptTerminal(tt); err != nil {
			return err
		}
	}
	if err := p.statementList(); err != nil {
		return err
	}
	for _, tt := range []token.TokenType{token.TokenEnd, token.TokenLoop} {
		if err := p.acceptTerminal(tt); err != nil {
			return err
		}
	}

	if _, err := p.scopes.CloseLoop(); err != nil {
		return err
	}

	p.leave(RuleForStatement)
	return nil
}

// ArgumentList = identifier [ "," ArgumentList ].
func (p *Parser) argumentList() error {
	p.enter(RuleArgumentList)

	if err := p.acceptTerminal(token.TokenIdent); err != nil {
		return err
	}
	if p.curTok.Type == token.TokenComma {
		if err := p.acceptTerminal(token.TokenComma); err != nil {
			return err
		}
		if err := p.argumentList(); err != nil {
			return err
		}
	}

	p.leave(RuleArgumentList)
	return nil
}

// Condition = identifier ConditionalOperator ( identifier | number | string ).
func (p *Parser) condition() error {
	p.enter(RuleCondition)

	if err := p.acceptTerminal(token.TokenIdent); err != nil {
		return err
	}
	if err := p.conditionalOperator(); err != nil {
		return err
	}

	switch p.curTok.Type {
	case token.TokenIdent, token.TokenNumber, token.TokenString:
		if err := p.acceptTerminal(p.curTok.Type); err != nil {
			return err
		}
	default:
		return p.unexpected()
	}

	p.leave(RuleCondition)
	return nil
}

func (p *Parser) conditionalOperator() error {
	p.enter(RuleConditionalOperator)

	if !p.curTok.IsConditionalOperator() {
		return p.unexpected()
	}
	if err := p.acceptTerminal(p.curTok.Type); err != nil {
		return err
	}

	p.leave(RuleConditionalOperator)
	return nil
}

// Expression = Term [ ( "+" | "-" ) Expression ].
func (p *Parser) expression(ctx typeContext) (typeContext, error) {
	p.enter(RuleExpression)

	ctx, err := p.term(ctx)
	if err != nil {
		return ctx, err
	}

	switch p.curTok.Type {
	case token.TokenPlus:
		if err := p.acceptTerminal(token.TokenPlus); err != nil {
			return ctx, err
		}
		if ctx, err = p.expression(ctx); err != nil {
			return ctx, err
		}
	case token.TokenMinus:
		if ctx, err = p.restrict(ctx, "-"); err != nil {
			return ctx, err
		}
		if err := p.acceptTerminal(token.TokenMinus); err != nil {
			return ctx, err
		}
		if ctx, err = p.expression(ctx); err != nil {
			return ctx, err
		}
	}

	p.leave(RuleExpression)
	return ctx.release(), nil
}

// Term = Factor [ ( "*" | "/" ) Term ].
func (p *Parser) term(ctx typeContext) (typeContext, error) {
	p.enter(RuleTerm)

	ctx, err := p.factor(ctx)
	if err != nil {
		return ctx, err
	}

	if op := p.curTok; op.Type == token.TokenAsterisk || op.Type == token.TokenSlash {
		if ctx, err = p.restrict(ctx, op.Literal); err != nil {
			return ctx, err
		}
		if err := p.acceptTerminal(op.Type); err != nil {
			return ctx, err
		}
		if ctx, err = p.term(ctx); err != nil {
			return ctx, err
		}
	}

	p.leave(RuleTerm)
	return ctx, nil
}

// Factor = identifier | number | "(" Expression ")".
// Identifiers must already be in the symbol table.
func (p *Parser) factor(ctx typeContext) (typeContext, error) {
	p.enter(RuleFactor)

	var err error
	switch p.curTok.Type {
	case token.TokenIdent:
		v, ok := p.em.LookupVariable(p.curTok.Literal)
		if !ok {
			return ctx, p.fail(diag.UninitialisedVariable, diag.MsgUninitialisedVariable)
		}
		if v.Type == symbols.String {
			if ctx, err = p.useString(ctx); err != nil {
				return ctx, err
			}
		}
		if err = p.acceptTerminal(token.TokenIdent); err != nil {
			return ctx, err
		}
	case token.TokenNumber:
		if err = p.acceptTerminal(token.TokenNumber); err != nil {
			return ctx, err
		}
	case token.TokenLParen:
		if err = p.acceptTerminal(token.TokenLParen); err != nil {
			return ctx, err
		}
		if ctx, err = p.expression(ctx); err != nil {
			return ctx, err
		}
		if err = p.acceptTerminal(token.TokenRParen); err != nil {
			return ctx, err
		}
	default:
		return ctx, p.unexpected()
	}

	p.leave(RuleFactor)
	return ctx, nil
}
