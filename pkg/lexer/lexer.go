package lexer

import (
	"strings"

	"napkin/pkg/diag"
	"napkin/pkg/token"
)

type Lexer struct {
	input        string
	position     int  // current position in input (points to current char)
	readPosition int  // current reading position in input (after current char)
	ch           byte // current char under examination
	line         int
	column       int

	finished bool // trailing NEWLINE already emitted
	errors   []*diag.Error
}

func New(input string) *Lexer {
	l := &Lexer{
		input:  input,
		line:   1,
		column: 0,
	}
	l.readChar()
	return l
}

// Tokenize scans the whole input. The returned slice always ends with a
// NEWLINE followed by EOF. The first lexical error, if any, is returned
// alongside the tokens scanned so far.
func Tokenize(input string) ([]token.Token, error) {
	l := New(input)
	var tokens []token.Token
	for {
		tok := l.NextToken()
		if tok.Type == token.ILLEGAL {
			return tokens, l.errors[len(l.errors)-1]
		}
		tokens = append(tokens, tok)
		if tok.Type == token.EOF {
			return tokens, nil
		}
	}
}

// Errors returns the lexical errors reported so far, one per ILLEGAL token.
func (l *Lexer) Errors() []*diag.Error {
	return l.errors
}

func (l *Lexer) readChar() {
	if l.readPosition >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = l.input[l.readPosition]
	}
	l.position = l.readPosition
	l.readPosition += 1
	l.column += 1
}

func (l *Lexer) peekChar() byte {
	return l.peekCharN(1)
}

func (l *Lexer) peekCharN(n int) byte {
	idx := l.position + n
	if idx >= len(l.input) {
		return 0
	}
	return l.input[idx]
}

func (l *Lexer) atEnd() bool {
	return l.position >= len(l.input)
}

// NextToken returns the next token. ILLEGAL tokens carry the diagnostic
// message as their literal; the matching *diag.Error is kept in Errors.
func (l *Lexer) NextToken() token.Token {
	// Skip whitespace but NOT newlines
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\r' {
		l.readChar()
	}

	// Skip comments
	if l.ch == '#' {
		l.skipComment()
	}

	line, col := l.line, l.column

	if l.atEnd() {
		if !l.finished {
			l.finished = true
			return token.Token{Type: token.NEWLINE, Literal: "", Line: line, Column: col}
		}
		return token.Token{Type: token.EOF, Literal: "", Line: line, Column: col}
	}

	var tok token.Token

	switch l.ch {
	case '\n':
		tok = newToken(token.NEWLINE, l.ch, line, col)
		l.readChar()
		l.line++
		l.column = 1
		return tok
	case ';':
		tok = newToken(token.NEWLINE, l.ch, line, col)
	case '=':
		tok = l.twoCharOr('=', token.EQ, token.ASSIGN, line, col)
	case '!':
		tok = l.twoCharOr('=', token.NOT_EQ, token.BANG, line, col)
	case '<':
		tok = l.twoCharOr('=', token.LTE, token.LT, line, col)
	case '>':
		tok = l.twoCharOr('=', token.GTE, token.GT, line, col)
	case '*':
		tok = l.twoCharOr('*', token.POWER, token.ASTERISK, line, col)
	case '-':
		tok = l.twoCharOr('>', token.ARROW, token.MINUS, line, col)
	case ':':
		if l.peekChar() != '=' {
			return l.illegal(line, col, "unexpected character ':'")
		}
		l.readChar()
		tok = token.Token{Type: token.DECLARE, Literal: ":=", Line: line, Column: col}
	case '+':
		tok = newToken(token.PLUS, l.ch, line, col)
	case '/':
		tok = newToken(token.SLASH, l.ch, line, col)
	case ',':
		tok = newToken(token.COMMA, l.ch, line, col)
	case '(':
		tok = newToken(token.LPAREN, l.ch, line, col)
	case ')':
		tok = newToken(token.RPAREN, l.ch, line, col)
	case '.':
		tok = newToken(token.DOT, l.ch, line, col)
	case '{':
		tok = newToken(token.LBRACE, l.ch, line, col)
	case '}':
		tok = newToken(token.RBRACE, l.ch, line, col)
	case '[':
		tok = newToken(token.LBRACKET, l.ch, line, col)
	case ']':
		tok = newToken(token.RBRACKET, l.ch, line, col)
	case '"':
		literal, ok := l.readString()
		if !ok {
			return l.illegal(line, col, "unterminated string")
		}
		tok = token.Token{Type: token.STRING, Literal: literal, Line: line, Column: col}
	default:
		if l.ch == 'j' && (isDigit(l.peekChar()) || (l.peekChar() == '-' && isDigit(l.peekCharN(2)))) {
			l.readChar() // skip 'j'
			return token.Token{Type: token.IMAGINARY, Literal: l.readNumber(true), Line: line, Column: col}
		} else if isLetter(l.ch) {
			literal := l.readIdentifier()
			return token.Token{Type: token.LookupIdent(literal), Literal: literal, Line: line, Column: col}
		} else if isDigit(l.ch) {
			return token.Token{Type: token.NUMBER, Literal: l.readNumber(false), Line: line, Column: col}
		}
		return l.illegal(line, col, "unexpected character '"+string(l.ch)+"'")
	}

	l.readChar()
	return tok
}

// twoCharOr returns the two-character token when the next char is second,
// otherwise the single-character token.
func (l *Lexer) twoCharOr(second byte, double, single token.TokenType, line, col int) token.Token {
	if l.peekChar() == second {
		ch := l.ch
		l.readChar()
		return token.Token{Type: double, Literal: string(ch) + string(l.ch), Line: line, Column: col}
	}
	return newToken(single, l.ch, line, col)
}

func (l *Lexer) illegal(line, col int, msg string) token.Token {
	l.errors = append(l.errors, diag.Lexf(line, col, "%s", msg))
	l.readChar()
	return token.Token{Type: token.ILLEGAL, Literal: msg, Line: line, Column: col}
}

func newToken(tokenType token.TokenType, ch byte, line, col int) token.Token {
	return token.Token{Type: tokenType, Literal: string(ch), Line: line, Column: col}
}

func (l *Lexer) readIdentifier() string {
	position := l.position
	for isLetter(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	return l.input[position:l.position]
}

func isLetter(ch byte) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z' || ch == '_'
}

// readNumber reads digits with an optional fraction. A '.' only belongs to
// the number when a digit follows it.
func (l *Lexer) readNumber(allowSign bool) string {
	position := l.position
	if allowSign && l.ch == '-' {
		l.readChar()
	}
	for isDigit(l.ch) {
		l.readChar()
	}
	if l.ch == '.' && isDigit(l.peekChar()) {
		l.readChar()
		for isDigit(l.ch) {
			l.readChar()
		}
	}
	return l.input[position:l.position]
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}

// readString consumes a double-quoted string starting at the opening quote
// and leaves l.ch on the closing quote. Strings may span lines.
func (l *Lexer) readString() (string, bool) {
	var result strings.Builder
	l.readChar() // Skip opening quote

	for l.ch != '"' {
		if l.atEnd() {
			return "", false
		}
		if l.ch == '\\' {
			l.readChar()
			switch l.ch {
			case 'n':
				result.WriteByte('\n')
			case 't':
				result.WriteByte('\t')
			case 'r':
				result.WriteByte('\r')
			case '\\':
				result.WriteByte('\\')
			case '"':
				result.WriteByte('"')
			default:
				// Unknown escape, just include the backslash and character
				result.WriteByte('\\')
				result.WriteByte(l.ch)
			}
		} else {
			if l.ch == '\n' {
				l.line++
				l.column = 0
			}
			result.WriteByte(l.ch)
		}
		l.readChar()
	}

	return result.String(), true
}

func (l *Lexer) skipComment() {
	for l.ch != '\n' && !l.atEnd() {
		l.readChar()
	}
}
