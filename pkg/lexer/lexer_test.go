package lexer

import (
	"testing"

	"napkin/pkg/diag"
	"napkin/pkg/token"
)

func TestNextToken(t *testing.T) {
	input := `add := -> (x, y) {
x + y
}
output add(1, j2) # comment
if a <= b and not c { a = b ** 2 } else { b != a; c >= 1.5 }
`

	tests := []struct {
		expectedType    token.TokenType
		expectedLiteral string
	}{
		{token.IDENT, "add"},
		{token.DECLARE, ":="},
		{token.ARROW, "->"},
		{token.LPAREN, "("},
		{token.IDENT, "x"},
		{token.COMMA, ","},
		{token.IDENT, "y"},
		{token.RPAREN, ")"},
		{token.LBRACE, "{"},
		{token.NEWLINE, "\n"},
		{token.IDENT, "x"},
		{token.PLUS, "+"},
		{token.IDENT, "y"},
		{token.NEWLINE, "\n"},
		{token.RBRACE, "}"},
		{token.NEWLINE, "\n"},
		{token.OUTPUT, "output"},
		{token.IDENT, "add"},
		{token.LPAREN, "("},
		{token.NUMBER, "1"},
		{token.COMMA, ","},
		{token.IMAGINARY, "2"},
		{token.RPAREN, ")"},
		{token.NEWLINE, "\n"},
		{token.IF, "if"},
		{token.IDENT, "a"},
		{token.LTE, "<="},
		{token.IDENT, "b"},
		{token.AND, "and"},
		{token.NOT, "not"},
		{token.IDENT, "c"},
		{token.LBRACE, "{"},
		{token.IDENT, "a"},
		{token.ASSIGN, "="},
		{token.IDENT, "b"},
		{token.POWER, "**"},
		{token.NUMBER, "2"},
		{token.RBRACE, "}"},
		{token.ELSE, "else"},
		{token.LBRACE, "{"},
		{token.IDENT, "b"},
		{token.NOT_EQ, "!="},
		{token.IDENT, "a"},
		{token.NEWLINE, ";"},
		{token.IDENT, "c"},
		{token.GTE, ">="},
		{token.NUMBER, "1.5"},
		{token.RBRACE, "}"},
		{token.NEWLINE, "\n"},
		{token.NEWLINE, ""},
		{token.EOF, ""},
	}

	l := New(input)

	for i, tt := range tests {
		tok := l.NextToken()

		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - tokentype wrong. expected=%q, got=%q, literal=%q",
				i, tt.expectedType, tok.Type, tok.Literal)
		}

		if tok.Literal != tt.expectedLiteral {
			t.Fatalf("tests[%d] - literal wrong. expected=%q, got=%q",
				i, tt.expectedLiteral, tok.Literal)
		}
	}
}

func TestImaginaryLiterals(t *testing.T) {
	tests := []struct {
		input    string
		expected []token.Token
	}{
		{"j-1.5", []token.Token{{Type: token.IMAGINARY, Literal: "-1.5"}}},
		{"j x", []token.Token{{Type: token.J, Literal: "j"}, {Type: token.IDENT, Literal: "x"}}},
		{"jx", []token.Token{{Type: token.IDENT, Literal: "jx"}}},
		{"3j4", []token.Token{{Type: token.NUMBER, Literal: "3"}, {Type: token.IMAGINARY, Literal: "4"}}},
		{"1.", []token.Token{{Type: token.NUMBER, Literal: "1"}, {Type: token.DOT, Literal: "."}}},
	}

	for _, tt := range tests {
		tokens, err := Tokenize(tt.input)
		if err != nil {
			t.Fatalf("%q: unexpected error: %v", tt.input, err)
		}
		// trailing NEWLINE and EOF
		if len(tokens) != len(tt.expected)+2 {
			t.Fatalf("%q: wrong token count. expected=%d, got=%d (%v)", tt.input, len(tt.expected)+2, len(tokens), tokens)
		}
		for i, exp := range tt.expected {
			if tokens[i].Type != exp.Type || tokens[i].Literal != exp.Literal {
				t.Errorf("%q: tokens[%d] wrong. expected=%s/%q, got=%s/%q",
					tt.input, i, exp.Type, exp.Literal, tokens[i].Type, tokens[i].Literal)
			}
		}
	}
}

func TestStringLiterals(t *testing.T) {
	tokens, err := Tokenize("\"Hello\" \"\" \"a\\tb\" \"two\nlines\" x")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := []string{"Hello", "", "a\tb", "two\nlines"}
	for i, lit := range expected {
		if tokens[i].Type != token.STRING || tokens[i].Literal != lit {
			t.Errorf("tokens[%d] wrong. expected=STRING/%q, got=%s/%q", i, lit, tokens[i].Type, tokens[i].Literal)
		}
	}
	if tokens[4].Line != 2 {
		t.Errorf("identifier after multi-line string on wrong line. got=%d", tokens[4].Line)
	}
}

func TestPositions(t *testing.T) {
	tokens, err := Tokenize("x := 1\n  output x")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		idx, line, col int
	}{
		{0, 1, 1}, // x
		{1, 1, 3}, // :=
		{2, 1, 6}, // 1
		{4, 2, 3}, // output
		{5, 2, 10}, // x
	}
	for _, tt := range tests {
		tok := tokens[tt.idx]
		if tok.Line != tt.line || tok.Column != tt.col {
			t.Errorf("%s: wrong position. expected=%d:%d, got=%d:%d", tok, tt.line, tt.col, tok.Line, tok.Column)
		}
	}
}

func TestLexErrors(t *testing.T) {
	tests := []struct {
		input   string
		message string
		line    int
		col     int
	}{
		{"x := @", "unexpected character '@'", 1, 6},
		{"a : b", "unexpected character ':'", 1, 3},
		{"\n\"never closed", "unterminated string", 2, 1},
	}

	for _, tt := range tests {
		_, err := Tokenize(tt.input)
		if err == nil {
			t.Fatalf("%q: expected error", tt.input)
		}
		de, ok := err.(*diag.Error)
		if !ok {
			t.Fatalf("%q: error is not *diag.Error. got=%T", tt.input, err)
		}
		if de.Category != diag.Lex || de.Msg != tt.message || de.Line != tt.line || de.Column != tt.col {
			t.Errorf("%q: wrong error. got=%+v", tt.input, de)
		}
	}
}
