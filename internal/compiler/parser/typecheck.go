package parser

import "github.com/arnavsurve/synan/internal/compiler/diag"

// typeContext is the string/number compatibility state of the expression
// being parsed. It is passed into and returned from expression, term and
// factor, so it never outlives the assignment that started it.
type typeContext int

const (
	ctxClean      typeContext = iota
	ctxStringSeen             // a STRING operand has been used
	ctxRestricted             // a '-', '*' or '/' has been applied
)

func (c typeContext) String() string {
	switch c {
	case ctxStringSeen:
		return "string-seen"
	case ctxRestricted:
		return "restricted"
	}
	return "clean"
}

// release drops the operator restriction when an expression completes.
// A string already seen stays seen.
func (c typeContext) release() typeContext {
	if c == ctxRestricted {
		return ctxClean
	}
	return c
}

// restrict guards a '-', '*' or '/' operator. The current token must still be
// the operator.
func (p *Parser) restrict(ctx typeContext, op string) (typeContext, error) {
	if ctx == ctxStringSeen {
		return ctx, p.fail(diag.IllegalStringOperation, diag.MsgIllegalStringOperator(op))
	}
	return ctxRestricted, nil
}

// useString records a STRING identifier as an operand. The current token
// must still be the identifier.
func (p *Parser) useString(ctx typeContext) (typeContext, error) {
	if ctx == ctxRestricted {
		return ctx, p.fail(diag.IllegalStringOperation, diag.MsgIllegalStringOperand)
	}
	return ctxStringSeen, nil
}
