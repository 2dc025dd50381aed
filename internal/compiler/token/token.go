package token

import "fmt"

type TokenType string

const (
	// Punctuation
	TokenLParen    TokenType = "LPAREN"    // (
	TokenRParen    TokenType = "RPAREN"    // )
	TokenComma     TokenType = "COMMA"     // ,
	TokenSemicolon TokenType = "SEMICOLON" // ;

	// Operators
	TokenBecomes      TokenType = "BECOMES"       // :=
	TokenPlus         TokenType = "PLUS"          // +
	TokenMinus        TokenType = "MINUS"         // -
	TokenAsterisk     TokenType = "ASTERISK"      // *
	TokenSlash        TokenType = "SLASH"         // /
	TokenGreater      TokenType = "GREATER"       // >
	TokenGreaterEqual TokenType = "GREATER_EQUAL" // >=
	TokenEqual        TokenType = "EQUAL"         // =
	TokenNotEqual     TokenType = "NOT_EQUAL"     // <>
	TokenLess         TokenType = "LESS"          // <
	TokenLessEqual    TokenType = "LESS_EQUAL"    // <=

	// Keywords
	TokenBegin TokenType = "BEGIN" // begin
	TokenEnd   TokenType = "END"   // end
	TokenIf    TokenType = "IF"    // if
	TokenThen  TokenType = "THEN"  // then
	TokenElse  TokenType = "ELSE"  // else
	TokenWhile TokenType = "WHILE" // while
	TokenLoop  TokenType = "LOOP"  // loop
	TokenCall  TokenType = "CALL"  // call
	TokenDo    TokenType = "DO"    // do
	TokenUntil TokenType = "UNTIL" // until
	TokenFor   TokenType = "FOR"   // for

	// Literals & Identifiers
	TokenIdent  TokenType = "IDENT"  // x, total, i2
	TokenNumber TokenType = "NUMBER" // 42, 3.5
	TokenString TokenType = "STRING" // "..."

	// Special
	TokenEOF     TokenType = "EOF"
	TokenIllegal TokenType = "ILLEGAL"
)

var keywords = map[string]TokenType{
	"begin": TokenBegin,
	"end":   TokenEnd,
	"if":    TokenIf,
	"then":  TokenThen,
	"else":  TokenElse,
	"while": TokenWhile,
	"loop":  TokenLoop,
	"call":  TokenCall,
	"do":    TokenDo,
	"until": TokenUntil,
	"for":   TokenFor,
}

// LookupIdent returns the keyword type for ident, or TokenIdent.
func LookupIdent(ident string) TokenType {
	if tt, ok := keywords[ident]; ok {
		return tt
	}
	return TokenIdent
}

type Token struct {
	Type    TokenType
	Literal string
	Line    int
	Column  int
}

func (t Token) String() string {
	if t.Type == TokenEOF {
		return fmt.Sprintf("%s (line %d)", t.Type, t.Line)
	}
	return fmt.Sprintf("%s %q (line %d)", t.Type, t.Literal, t.Line)
}

// IsConditionalOperator reports whether the token is one of the six
// relational operators allowed in a condition.
func (t Token) IsConditionalOperator() bool {
	switch t.Type {
	case TokenGreater, TokenGreaterEqual, TokenEqual, TokenNotEqual, TokenLess, TokenLessEqual:
		return true
	}
	return false
}
