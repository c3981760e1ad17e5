package ast

import (
	"bytes"
	"strings"

	"napkin/pkg/token"
)

// Node is implemented by every statement and expression. The unexported
// marker methods close the set of variants to this package.
type Node interface {
	TokenLiteral() string
	String() string
}

type Statement interface {
	Node
	statementNode()
}

type Expression interface {
	Node
	expressionNode()
}

type Program struct {
	Statements []Statement
}

func (p *Program) TokenLiteral() string {
	if len(p.Statements) > 0 {
		return p.Statements[0].TokenLiteral()
	}
	return ""
}

func (p *Program) String() string {
	var out bytes.Buffer
	for i, s := range p.Statements {
		if i > 0 {
			out.WriteString("\n")
		}
		out.WriteString(s.String())
	}
	return out.String()
}

// Statements

type ExpressionStatement struct {
	Token      token.Token // the first token of the expression
	Expression Expression
}

func (es *ExpressionStatement) statementNode()       {}
func (es *ExpressionStatement) TokenLiteral() string { return es.Token.Literal }
func (es *ExpressionStatement) String() string {
	if es.Expression != nil {
		return es.Expression.String()
	}
	return ""
}

type OutputStatement struct {
	Token token.Token // 'output'
	Value Expression
}

func (os *OutputStatement) statementNode()       {}
func (os *OutputStatement) TokenLiteral() string { return os.Token.Literal }
func (os *OutputStatement) String() string {
	return "output " + os.Value.String()
}

type BlockStatement struct {
	Token      token.Token // '{'
	Statements []Statement
}

func (bs *BlockStatement) statementNode()       {}
func (bs *BlockStatement) TokenLiteral() string { return bs.Token.Literal }
func (bs *BlockStatement) String() string {
	if len(bs.Statements) == 0 {
		return "{ }"
	}
	stmts := make([]string, 0, len(bs.Statements))
	for _, s := range bs.Statements {
		stmts = append(stmts, s.String())
	}
	return "{ " + strings.Join(stmts, "; ") + " }"
}

type IfStatement struct {
	Token       token.Token // 'if'
	Condition   Expression
	Consequence Statement
	Alternative Statement // nil without 'else'
}

func (is *IfStatement) statementNode()       {}
func (is *IfStatement) TokenLiteral() string { return is.Token.Literal }
func (is *IfStatement) String() string {
	var out bytes.Buffer
	out.WriteString("if ")
	out.WriteString(is.Condition.String())
	out.WriteString(" ")
	out.WriteString(is.Consequence.String())
	if is.Alternative != nil {
		out.WriteString(" else ")
		out.WriteString(is.Alternative.String())
	}
	return out.String()
}

type WhileStatement struct {
	Token     token.Token // 'while'
	Condition Expression
	Body      Statement
}

func (ws *WhileStatement) statementNode()       {}
func (ws *WhileStatement) TokenLiteral() string { return ws.Token.Literal }
func (ws *WhileStatement) String() string {
	return "while " + ws.Condition.String() + " " + ws.Body.String()
}

// Expressions

// AssignExpression rebinds Name in the nearest scope that already holds it.
type AssignExpression struct {
	Token token.Token // the identifier token
	Name  *Identifier
	Value Expression
}

func (ae *AssignExpression) expressionNode()      {}
func (ae *AssignExpression) TokenLiteral() string { return ae.Token.Literal }
func (ae *AssignExpression) String() string {
	return ae.Name.String() + " = " + ae.Value.String()
}

// DeclareExpression introduces Name in the current scope.
type DeclareExpression struct {
	Token token.Token // the identifier token
	Name  *Identifier
	Value Expression
}

func (de *DeclareExpression) expressionNode()      {}
func (de *DeclareExpression) TokenLiteral() string { return de.Token.Literal }
func (de *DeclareExpression) String() string {
	return de.Name.String() + " := " + de.Value.String()
}

type Identifier struct {
	Token token.Token // the token.IDENT token
	Value string
}

func (i *Identifier) expressionNode()      {}
func (i *Identifier) TokenLiteral() string { return i.Token.Literal }
func (i *Identifier) String() string       { return i.Value }

type RealLiteral struct {
	Token token.Token
	Value float64
}

func (rl *RealLiteral) expressionNode()      {}
func (rl *RealLiteral) TokenLiteral() string { return rl.Token.Literal }
func (rl *RealLiteral) String() string       { return rl.Token.Literal }

// ImaginaryLiteral is a literal such as j2; Value holds the coefficient.
type ImaginaryLiteral struct {
	Token token.Token
	Value float64
}

func (il *ImaginaryLiteral) expressionNode()      {}
func (il *ImaginaryLiteral) TokenLiteral() string { return il.Token.Literal }
func (il *ImaginaryLiteral) String() string       { return "j" + il.Token.Literal }

type StringLiteral struct {
	Token token.Token
	Value string
}

func (sl *StringLiteral) expressionNode()      {}
func (sl *StringLiteral) TokenLiteral() string { return sl.Token.Literal }
func (sl *StringLiteral) String() string       { return "\"" + sl.Value + "\"" }

type Boolean struct {
	Token token.Token
	Value bool
}

func (b *Boolean) expressionNode()      {}
func (b *Boolean) TokenLiteral() string { return b.Token.Literal }
func (b *Boolean) String() string       { return b.Token.Literal }

// KeywordConstant is a named mathematical constant such as pi.
type KeywordConstant struct {
	Token token.Token
	Name  string
}

func (kc *KeywordConstant) expressionNode()      {}
func (kc *KeywordConstant) TokenLiteral() string { return kc.Token.Literal }
func (kc *KeywordConstant) String() string       { return kc.Name }

type PrefixExpression struct {
	Token    token.Token // The prefix token, e.g. ! or mag
	Operator string
	Right    Expression
}

func (pe *PrefixExpression) expressionNode()      {}
func (pe *PrefixExpression) TokenLiteral() string { return pe.Token.Literal }
func (pe *PrefixExpression) String() string {
	var out bytes.Buffer
	out.WriteString("(")
	out.WriteString(pe.Operator)
	if isWord(pe.Operator) {
		out.WriteString(" ")
	}
	out.WriteString(pe.Right.String())
	out.WriteString(")")
	return out.String()
}

func isWord(op string) bool {
	return op != "" && (op[0] >= 'a' && op[0] <= 'z' || op[0] >= 'A' && op[0] <= 'Z')
}

type InfixExpression struct {
	Token    token.Token // The operator token, e.g. +
	Left     Expression
	Operator string
	Right    Expression
}

func (ie *InfixExpression) expressionNode()      {}
func (ie *InfixExpression) TokenLiteral() string { return ie.Token.Literal }
func (ie *InfixExpression) String() string {
	var out bytes.Buffer
	out.WriteString("(")
	out.WriteString(ie.Left.String())
	out.WriteString(" " + ie.Operator + " ")
	out.WriteString(ie.Right.String())
	out.WriteString(")")
	return out.String()
}

// GroupedExpression is a parenthesized expression. It prints as its
// contents since infix and prefix nodes already parenthesize themselves.
type GroupedExpression struct {
	Token token.Token // '('
	Inner Expression
}

func (ge *GroupedExpression) expressionNode()      {}
func (ge *GroupedExpression) TokenLiteral() string { return ge.Token.Literal }
func (ge *GroupedExpression) String() string       { return ge.Inner.String() }

type CallExpression struct {
	Token     token.Token // The '(' token
	Function  Expression  // Identifier, LambdaLiteral or another call
	Arguments []Expression
}

func (ce *CallExpression) expressionNode()      {}
func (ce *CallExpression) TokenLiteral() string { return ce.Token.Literal }
func (ce *CallExpression) String() string {
	var out bytes.Buffer
	out.WriteString(ce.Function.String())
	out.WriteString("(")
	args := []string{}
	for _, a := range ce.Arguments {
		args = append(args, a.String())
	}
	out.WriteString(strings.Join(args, ", "))
	out.WriteString(")")
	return out.String()
}

// LambdaLiteral is shared read-only by every closure created from it.
type LambdaLiteral struct {
	Token      token.Token // '->'
	Parameters []*Identifier
	Body       *BlockStatement
}

func (ll *LambdaLiteral) expressionNode()      {}
func (ll *LambdaLiteral) TokenLiteral() string { return ll.Token.Literal }
func (ll *LambdaLiteral) String() string {
	var out bytes.Buffer
	out.WriteString("->(")
	params := []string{}
	for _, p := range ll.Parameters {
		params = append(params, p.String())
	}
	out.WriteString(strings.Join(params, ", "))
	out.WriteString(") ")
	out.WriteString(ll.Body.String())
	return out.String()
}
