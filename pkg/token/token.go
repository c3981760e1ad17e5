package token

import "fmt"

type TokenType string

const (
	// Special
	ILLEGAL = "ILLEGAL"
	EOF     = "EOF"
	NEWLINE = "NEWLINE" // '\n' or ';'

	// Identifiers & Literals
	IDENT     = "IDENT"
	NUMBER    = "NUMBER"
	IMAGINARY = "IMAGINARY" // j2, j-1.5
	STRING    = "STRING"

	// Operators
	ASSIGN   = "="
	DECLARE  = ":="
	PLUS     = "+"
	MINUS    = "-"
	BANG     = "!"
	ASTERISK = "*"
	POWER    = "**"
	SLASH    = "/"
	ARROW    = "->"

	LT     = "<"
	GT     = ">"
	EQ     = "=="
	NOT_EQ = "!="
	LTE    = "<="
	GTE    = ">="

	// Delimiters
	COMMA    = ","
	DOT      = "."
	LPAREN   = "("
	RPAREN   = ")"
	LBRACE   = "{"
	RBRACE   = "}"
	LBRACKET = "["
	RBRACKET = "]"

	// Keywords
	TRUE    = "TRUE"
	FALSE   = "FALSE"
	OUTPUT  = "OUTPUT"
	IF      = "IF"
	ELSE    = "ELSE"
	WHILE   = "WHILE"
	AND     = "AND"
	OR      = "OR"
	NOT     = "NOT"
	J       = "J"
	MAG     = "MAG"
	RE      = "RE"
	IM      = "IM"
	ANGLEOF = "ANGLEOF"
	PI      = "PI"
	EULER   = "EULER"
)

type Token struct {
	Type    TokenType
	Literal string
	Line    int
	Column  int
}

func (t Token) String() string {
	return fmt.Sprintf("Token(%s, %q, %d:%d)", t.Type, t.Literal, t.Line, t.Column)
}

var keywords = map[string]TokenType{
	"true":    TRUE,
	"false":   FALSE,
	"output":  OUTPUT,
	"if":      IF,
	"else":    ELSE,
	"while":   WHILE,
	"and":     AND,
	"or":      OR,
	"not":     NOT,
	"j":       J,
	"mag":     MAG,
	"re":      RE,
	"im":      IM,
	"angleOf": ANGLEOF,
	"pi":      PI,
	"e":       EULER,
	"euler":   EULER,
}

func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT
}
