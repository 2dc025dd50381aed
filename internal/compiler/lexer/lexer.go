package lexer

import (
	"bufio"
	"errors"
	"io"
	"strings"
	"unicode"

	"github.com/arnavsurve/synan/internal/compiler/token"
)

const eof rune = -1

type Lexer struct {
	r   *bufio.Reader
	ch  rune  // current char, eof once the input is exhausted
	err error // sticky read error, reported by the next call to Next

	line   int // current line number (1-indexed)
	column int // current column number (1-indexed)
}

func NewLexer(r io.Reader) *Lexer {
	l := &Lexer{r: bufio.NewReader(r), line: 1}
	l.readChar()
	return l
}

// readChar advances to the next rune and keeps line/column in step with it.
// A newline belongs to the line it terminates.
func (l *Lexer) readChar() {
	if l.ch == '\n' {
		l.line++
		l.column = 0
	}
	if l.err != nil {
		l.ch = eof
		return
	}

	r, _, err := l.r.ReadRune()
	if err != nil {
		if !errors.Is(err, io.EOF) {
			l.err = err
		}
		l.ch = eof
		return
	}
	l.ch = r
	l.column++
}

// Returns the next byte without consuming it, 0 at end of input
func (l *Lexer) peekChar() byte {
	b, err := l.r.Peek(1)
	if err != nil || len(b) == 0 {
		return 0
	}
	return b[0]
}

// Next returns the next token. Once the input is exhausted it keeps
// returning EOF. Read failures from the underlying reader are returned as is.
func (l *Lexer) Next() (token.Token, error) {
	l.skipWhitespace()
	if l.err != nil {
		return token.Token{}, l.err
	}

	tok := token.Token{Line: l.line, Column: l.column}

	switch l.ch {
	case eof:
		tok.Type = token.TokenEOF
		return tok, nil
	case '(':
		tok.Type, tok.Literal = token.TokenLParen, "("
	case ')':
		tok.Type, tok.Literal = token.TokenRParen, ")"
	case ',':
		tok.Type, tok.Literal = token.TokenComma, ","
	case ';':
		tok.Type, tok.Literal = token.TokenSemicolon, ";"
	case '+':
		tok.Type, tok.Literal = token.TokenPlus, "+"
	case '-':
		tok.Type, tok.Literal = token.TokenMinus, "-"
	case '*':
		tok.Type, tok.Literal = token.TokenAsterisk, "*"
	case '=':
		tok.Type, tok.Literal = token.TokenEqual, "="
	case '/':
		if l.peekChar() == '/' {
			l.readComment()
			return l.Next()
		}
		tok.Type, tok.Literal = token.TokenSlash, "/"
	case ':':
		if l.peekChar() == '=' {
			l.readChar()
			tok.Type, tok.Literal = token.TokenBecomes, ":="
		} else {
			tok.Type, tok.Literal = token.TokenIllegal, ":"
		}
	case '<':
		switch l.peekChar() {
		case '=':
			l.readChar()
			tok.Type, tok.Literal = token.TokenLessEqual, "<="
		case '>':
			l.readChar()
			tok.Type, tok.Literal = token.TokenNotEqual, "<>"
		default:
			tok.Type, tok.Literal = token.TokenLess, "<"
		}
	case '>':
		if l.peekChar() == '=' {
			l.readChar()
			tok.Type, tok.Literal = token.TokenGreaterEqual, ">="
		} else {
			tok.Type, tok.Literal = token.TokenGreater, ">"
		}
	case '"':
		tok.Type, tok.Literal = l.readString()
		return tok, l.err
	default:
		if isLetter(l.ch) {
			tok.Literal = l.readIdentifier()
			tok.Type = token.LookupIdent(tok.Literal)
			return tok, l.err
		}
		if isDigit(l.ch) {
			tok.Type, tok.Literal = token.TokenNumber, l.readNumber()
			return tok, l.err
		}
		tok.Type, tok.Literal = token.TokenIllegal, string(l.ch)
	}

	l.readChar()
	return tok, l.err
}

// Tokenize drains r and returns every token up to and including EOF.
func Tokenize(r io.Reader) ([]token.Token, error) {
	l := NewLexer(r)
	var toks []token.Token
	for {
		tok, err := l.Next()
		if err != nil {
			return toks, err
		}
		toks = append(toks, tok)
		if tok.Type == token.TokenEOF {
			return toks, nil
		}
	}
}

func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\n' || l.ch == '\t' || l.ch == '\r' {
		l.readChar()
	}
}

// readComment skips a // comment up to, but not including, the newline
func (l *Lexer) readComment() {
	for l.ch != '\n' && l.ch != eof {
		l.readChar()
	}
}

func (l *Lexer) readIdentifier() string {
	var b strings.Builder
	for isLetter(l.ch) || isDigit(l.ch) || l.ch == '_' {
		b.WriteRune(l.ch)
		l.readChar()
	}
	return b.String()
}

func (l *Lexer) readNumber() string {
	var b strings.Builder
	for isDigit(l.ch) {
		b.WriteRune(l.ch)
		l.readChar()
	}
	if l.ch == '.' && isDigit(rune(l.peekChar())) {
		b.WriteRune(l.ch)
		l.readChar()
		for isDigit(l.ch) {
			b.WriteRune(l.ch)
			l.readChar()
		}
	}
	return b.String()
}

// readString reads a double-quoted constant. Strings may not span lines; an
// unterminated string comes back as ILLEGAL with its opening quote.
func (l *Lexer) readString() (token.TokenType, string) {
	l.readChar() // skip opening "
	var b strings.Builder
	for l.ch != '"' && l.ch != '\n' && l.ch != eof {
		b.WriteRune(l.ch)
		l.readChar()
	}
	if l.ch != '"' {
		return token.TokenIllegal, `"` + b.String()
	}
	l.readChar() // skip closing "
	return token.TokenString, b.String()
}

func isLetter(ch rune) bool {
	return ch != eof && unicode.IsLetter(ch)
}

func isDigit(ch rune) bool {
	return '0' <= ch && ch <= '9'
}
