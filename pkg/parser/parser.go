// Package parser turns a napkin token stream into an *ast.Program using a
// Pratt parser. Parsing stops at the first error.
package parser

import (
	"errors"
	"strconv"

	"napkin/pkg/ast"
	"napkin/pkg/diag"
	"napkin/pkg/lexer"
	"napkin/pkg/token"
)

// UnclosedBlockMsg is reported when the input ends inside a block.
const UnclosedBlockMsg = "expected '}' after block"

// IsUnclosedBlock reports whether err means the input ended inside a block,
// so more input could still complete the program.
func IsUnclosedBlock(err error) bool {
	var de *diag.Error
	if !errors.As(err, &de) {
		return false
	}
	return de.Category == diag.Parse && de.Msg == UnclosedBlockMsg
}

const (
	_ int = iota
	LOWEST
	OR          // or
	AND         // and
	EQUALS      // ==
	LESSGREATER // > or <
	SUM         // +
	PRODUCT     // *
	POWER       // **
	PREFIX      // -X, !X, mag X
	CALL        // myFunction(X)
)

var precedences = map[token.TokenType]int{
	token.OR:       OR,
	token.AND:      AND,
	token.EQ:       EQUALS,
	token.NOT_EQ:   EQUALS,
	token.LT:       LESSGREATER,
	token.GT:       LESSGREATER,
	token.LTE:      LESSGREATER,
	token.GTE:      LESSGREATER,
	token.PLUS:     SUM,
	token.MINUS:    SUM,
	token.SLASH:    PRODUCT,
	token.ASTERISK: PRODUCT,
	token.POWER:    POWER,
	token.LPAREN:   CALL,
}

type (
	prefixParseFn func() ast.Expression
	infixParseFn  func(ast.Expression) ast.Expression
)

// TokenSource yields tokens one at a time. *lexer.Lexer satisfies it.
type TokenSource interface {
	NextToken() token.Token
}

type sliceSource struct {
	tokens []token.Token
	pos    int
}

// NextToken returns the next token, repeating the last one (normally EOF)
// once the slice is exhausted.
func (s *sliceSource) NextToken() token.Token {
	if len(s.tokens) == 0 {
		return token.Token{Type: token.EOF}
	}
	if s.pos >= len(s.tokens) {
		return s.tokens[len(s.tokens)-1]
	}
	tok := s.tokens[s.pos]
	s.pos++
	return tok
}

type Parser struct {
	src    TokenSource
	errors []*diag.Error

	curToken  token.Token
	peekToken token.Token

	prefixParseFns map[token.TokenType]prefixParseFn
	infixParseFns  map[token.TokenType]infixParseFn
}

func New(l *lexer.Lexer) *Parser {
	return NewFromSource(l)
}

// NewFromTokens parses an already scanned token slice. The slice is read
// but never modified.
func NewFromTokens(tokens []token.Token) *Parser {
	return NewFromSource(&sliceSource{tokens: tokens})
}

func NewFromSource(src TokenSource) *Parser {
	p := &Parser{
		src:    src,
		errors: []*diag.Error{},
	}

	p.prefixParseFns = make(map[token.TokenType]prefixParseFn)
	p.registerPrefix(token.IDENT, p.parseIdentifier)
	p.registerPrefix(token.NUMBER, p.parseRealLiteral)
	p.registerPrefix(token.IMAGINARY, p.parseImaginaryLiteral)
	p.registerPrefix(token.STRING, p.parseStringLiteral)
	p.registerPrefix(token.TRUE, p.parseBoolean)
	p.registerPrefix(token.FALSE, p.parseBoolean)
	p.registerPrefix(token.PI, p.parseKeywordConstant)
	p.registerPrefix(token.EULER, p.parseKeywordConstant)
	p.registerPrefix(token.LPAREN, p.parseGroupedExpression)
	p.registerPrefix(token.ARROW, p.parseLambdaLiteral)
	for _, tt := range []token.TokenType{
		token.MINUS, token.BANG, token.NOT,
		token.J, token.MAG, token.RE, token.IM, token.ANGLEOF,
	} {
		p.registerPrefix(tt, p.parsePrefixExpression)
	}

	p.infixParseFns = make(map[token.TokenType]infixParseFn)
	for tt := range precedences {
		p.registerInfix(tt, p.parseInfixExpression)
	}
	p.registerInfix(token.LPAREN, p.parseCallExpression)

	// Read two tokens, so curToken and peekToken are both set
	p.nextToken()
	p.nextToken()

	return p
}

// Parse is a convenience wrapper returning the program and the first error.
func Parse(tokens []token.Token) (*ast.Program, error) {
	p := NewFromTokens(tokens)
	program := p.ParseProgram()
	if err := p.Err(); err != nil {
		return program, err
	}
	return program, nil
}

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.src.NextToken()
}

// Errors returns the errors reported while parsing. Since parsing stops at
// the first failure there is at most one.
func (p *Parser) Errors() []*diag.Error {
	return p.errors
}

// Err returns the first error or nil.
func (p *Parser) Err() error {
	if len(p.errors) == 0 {
		return nil
	}
	return p.errors[0]
}

func (p *Parser) failed() bool { return len(p.errors) > 0 }

// ParseProgram returns the statements parsed before the first error.
func (p *Parser) ParseProgram() *ast.Program {
	program := &ast.Program{}
	program.Statements = []ast.Statement{}

	for !p.curTokenIs(token.EOF) && !p.failed() {
		if p.curTokenIs(token.NEWLINE) {
			p.nextToken()
			continue
		}
		stmt := p.parseStatement()
		if p.failed() {
			break
		}
		if stmt != nil {
			program.Statements = append(program.Statements, stmt)
		}
		p.nextToken()
	}

	return program
}

// parseStatement leaves curToken on the statement's last token, which is
// its NEWLINE terminator when it had one.
func (p *Parser) parseStatement() ast.Statement {
	switch p.curToken.Type {
	case token.OUTPUT:
		return p.parseOutputStatement()
	case token.LBRACE:
		return p.parseBlockStatement()
	case token.IF:
		return p.parseIfStatement()
	case token.WHILE:
		return p.parseWhileStatement()
	default:
		return p.parseExpressionStatement()
	}
}

func (p *Parser) parseExpressionStatement() ast.Statement {
	stmt := &ast.ExpressionStatement{Token: p.curToken}
	stmt.Expression = p.parseAssignment()
	if stmt.Expression == nil || !p.expectTerminator() {
		return nil
	}
	return stmt
}

func (p *Parser) parseOutputStatement() ast.Statement {
	stmt := &ast.OutputStatement{Token: p.curToken}
	p.nextToken()
	stmt.Value = p.parseAssignment()
	if stmt.Value == nil || !p.expectTerminator() {
		return nil
	}
	return stmt
}

// expectTerminator consumes a NEWLINE after a statement. A following '}'
// also ends the statement but is left for the enclosing block.
func (p *Parser) expectTerminator() bool {
	switch {
	case p.peekTokenIs(token.NEWLINE):
		p.nextToken()
		return true
	case p.peekTokenIs(token.RBRACE), p.peekTokenIs(token.EOF):
		return true
	}
	p.errorAt(p.peekToken, "expected newline or ';' after expression")
	return false
}

func (p *Parser) parseBlockStatement() *ast.BlockStatement {
	block := &ast.BlockStatement{Token: p.curToken}
	block.Statements = []ast.Statement{}

	p.nextToken()
	for !p.curTokenIs(token.RBRACE) {
		if p.curTokenIs(token.NEWLINE) {
			p.nextToken()
			continue
		}
		if p.curTokenIs(token.EOF) {
			p.errorAt(p.curToken, UnclosedBlockMsg)
			return nil
		}
		stmt := p.parseStatement()
		if p.failed() {
			return nil
		}
		block.Statements = append(block.Statements, stmt)
		p.nextToken()
	}

	return block
}

func (p *Parser) parseIfStatement() ast.Statement {
	stmt := &ast.IfStatement{Token: p.curToken}

	p.nextToken()
	stmt.Condition = p.parseAssignment()
	if stmt.Condition == nil {
		return nil
	}

	if stmt.Consequence = p.parseBody(); stmt.Consequence == nil {
		return nil
	}

	// Look past blank lines for an else. Without one the newlines are
	// harmless to skip: the next statement would ignore them anyway.
	for p.peekTokenIs(token.NEWLINE) {
		p.nextToken()
	}
	if p.peekTokenIs(token.ELSE) {
		p.nextToken()
		if stmt.Alternative = p.parseBody(); stmt.Alternative == nil {
			return nil
		}
	}

	return stmt
}

func (p *Parser) parseWhileStatement() ast.Statement {
	stmt := &ast.WhileStatement{Token: p.curToken}

	p.nextToken()
	stmt.Condition = p.parseAssignment()
	if stmt.Condition == nil {
		return nil
	}

	if stmt.Body = p.parseBody(); stmt.Body == nil {
		return nil
	}
	return stmt
}

// parseBody skips blank lines after a condition or else and parses the
// statement that follows.
func (p *Parser) parseBody() ast.Statement {
	p.nextToken()
	for p.curTokenIs(token.NEWLINE) {
		p.nextToken()
	}
	if p.curTokenIs(token.EOF) {
		p.errorAt(p.curToken, "expected statement, found end of input")
		return nil
	}
	stmt := p.parseStatement()
	if p.failed() {
		return nil
	}
	return stmt
}

// parseAssignment handles the lowest grammar level: an identifier followed
// by '=' or ':=' binds everything to its right.
func (p *Parser) parseAssignment() ast.Expression {
	if p.curTokenIs(token.IDENT) && (p.peekTokenIs(token.ASSIGN) || p.peekTokenIs(token.DECLARE)) {
		nameTok := p.curToken
		name := &ast.Identifier{Token: nameTok, Value: nameTok.Literal}
		p.nextToken()
		declare := p.curTokenIs(token.DECLARE)
		p.nextToken()

		value := p.parseAssignment()
		if value == nil {
			return nil
		}
		if declare {
			return &ast.DeclareExpression{Token: nameTok, Name: name, Value: value}
		}
		return &ast.AssignExpression{Token: nameTok, Name: name, Value: value}
	}
	return p.parseExpression(LOWEST)
}

func (p *Parser) parseExpression(precedence int) ast.Expression {
	prefix := p.prefixParseFns[p.curToken.Type]
	if prefix == nil {
		p.noPrefixParseFnError(p.curToken)
		return nil
	}
	leftExp := prefix()

	for leftExp != nil && !p.peekTokenIs(token.NEWLINE) && precedence < p.peekPrecedence() {
		infix := p.infixParseFns[p.peekToken.Type]
		if infix == nil {
			return leftExp
		}

		p.nextToken()

		leftExp = infix(leftExp)
	}

	return leftExp
}

func (p *Parser) parseIdentifier() ast.Expression {
	return &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}
}

func (p *Parser) parseRealLiteral() ast.Expression {
	lit := &ast.RealLiteral{Token: p.curToken}

	value, err := strconv.ParseFloat(p.curToken.Literal, 64)
	if err != nil {
		p.errorAt(p.curToken, "could not parse %q as number", p.curToken.Literal)
		return nil
	}

	lit.Value = value
	return lit
}

func (p *Parser) parseImaginaryLiteral() ast.Expression {
	lit := &ast.ImaginaryLiteral{Token: p.curToken}

	value, err := strconv.ParseFloat(p.curToken.Literal, 64)
	if err != nil {
		p.errorAt(p.curToken, "could not parse %q as imaginary number", p.curToken.Literal)
		return nil
	}

	lit.Value = value
	return lit
}

func (p *Parser) parseStringLiteral() ast.Expression {
	return &ast.StringLiteral{Token: p.curToken, Value: p.curToken.Literal}
}

func (p *Parser) parseBoolean() ast.Expression {
	return &ast.Boolean{Token: p.curToken, Value: p.curTokenIs(token.TRUE)}
}

func (p *Parser) parseKeywordConstant() ast.Expression {
	name := "pi"
	if p.curTokenIs(token.EULER) {
		name = "euler"
	}
	return &ast.KeywordConstant{Token: p.curToken, Name: name}
}

func (p *Parser) parsePrefixExpression() ast.Expression {
	expression := &ast.PrefixExpression{
		Token:    p.curToken,
		Operator: p.curToken.Literal,
	}

	p.nextToken()

	expression.Right = p.parseExpression(PREFIX)
	if expression.Right == nil {
		return nil
	}

	return expression
}

func (p *Parser) parseInfixExpression(left ast.Expression) ast.Expression {
	expression := &ast.InfixExpression{
		Token:    p.curToken,
		Operator: p.curToken.Literal,
		Left:     left,
	}

	precedence := p.curPrecedence()
	if p.curTokenIs(token.POWER) {
		// right-associative
		precedence--
	}
	p.nextToken()
	expression.Right = p.parseExpression(precedence)
	if expression.Right == nil {
		return nil
	}

	return expression
}

func (p *Parser) parseGroupedExpression() ast.Expression {
	group := &ast.GroupedExpression{Token: p.curToken}
	p.nextToken()

	group.Inner = p.parseAssignment()
	if group.Inner == nil {
		return nil
	}

	if p.peekTokenIs(token.J) {
		p.errorAt(p.peekToken, "unexpected 'j'; did you mean to prefix it?")
		return nil
	}
	if !p.peekTokenIs(token.RPAREN) {
		p.errorAt(p.peekToken, "expected ')' after expression")
		return nil
	}
	p.nextToken()

	return group
}

func (p *Parser) parseCallExpression(function ast.Expression) ast.Expression {
	exp := &ast.CallExpression{Token: p.curToken, Function: function}
	exp.Arguments = p.parseCallArguments()
	if exp.Arguments == nil {
		return nil
	}
	return exp
}

func (p *Parser) parseCallArguments() []ast.Expression {
	args := []ast.Expression{}

	if p.peekTokenIs(token.RPAREN) {
		p.nextToken()
		return args
	}

	p.nextToken()
	arg := p.parseAssignment()
	if arg == nil {
		return nil
	}
	args = append(args, arg)

	for p.peekTokenIs(token.COMMA) {
		p.nextToken()
		p.nextToken()
		if arg = p.parseAssignment(); arg == nil {
			return nil
		}
		args = append(args, arg)
	}

	if !p.peekTokenIs(token.RPAREN) {
		p.errorAt(p.peekToken, "expected ')' after arguments in function call")
		return nil
	}
	p.nextToken()

	return args
}

// parseLambdaLiteral parses `-> (a, b) { ... }`. The parameter list may be
// omitted entirely.
func (p *Parser) parseLambdaLiteral() ast.Expression {
	lit := &ast.LambdaLiteral{Token: p.curToken, Parameters: []*ast.Identifier{}}

	if p.peekTokenIs(token.LPAREN) {
		p.nextToken()
		params, ok := p.parseLambdaParameters()
		if !ok {
			return nil
		}
		lit.Parameters = params
	}

	if !p.peekTokenIs(token.LBRACE) {
		p.errorAt(p.peekToken, "expected opening '{' for lambda body")
		return nil
	}
	p.nextToken()

	lit.Body = p.parseBlockStatement()
	if lit.Body == nil {
		return nil
	}
	return lit
}

func (p *Parser) parseLambdaParameters() ([]*ast.Identifier, bool) {
	identifiers := []*ast.Identifier{}

	if p.peekTokenIs(token.IDENT) {
		p.nextToken()
		identifiers = append(identifiers, &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal})

		for p.peekTokenIs(token.COMMA) {
			p.nextToken()
			if !p.peekTokenIs(token.IDENT) {
				p.errorAt(p.peekToken, "expected identifier after comma in parameter list")
				return nil, false
			}
			p.nextToken()
			identifiers = append(identifiers, &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal})
		}
	}

	if !p.peekTokenIs(token.RPAREN) {
		p.errorAt(p.peekToken, "expected closing ')' after parameter list")
		return nil, false
	}
	p.nextToken()

	return identifiers, true
}

func (p *Parser) curTokenIs(t token.TokenType) bool {
	return p.curToken.Type == t
}

func (p *Parser) peekTokenIs(t token.TokenType) bool {
	return p.peekToken.Type == t
}

func (p *Parser) peekPrecedence() int {
	if p, ok := precedences[p.peekToken.Type]; ok {
		return p
	}
	return LOWEST
}

func (p *Parser) curPrecedence() int {
	if p, ok := precedences[p.curToken.Type]; ok {
		return p
	}
	return LOWEST
}

// errorAt records a parse error at tok. Lexical failures surface here as
// ILLEGAL tokens and keep their own category and message.
func (p *Parser) errorAt(tok token.Token, format string, a ...any) {
	if p.failed() {
		return
	}
	if tok.Type == token.ILLEGAL {
		p.errors = append(p.errors, diag.Lexf(tok.Line, tok.Column, "%s", tok.Literal))
		return
	}
	p.errors = append(p.errors, diag.Parsef(tok.Line, tok.Column, format, a...))
}

// noPrefixParseFnError reports a token that cannot start an expression.
// The lexer and parser disagree about the token set when this happens, so
// it is an internal error rather than a syntax error.
func (p *Parser) noPrefixParseFnError(tok token.Token) {
	if p.failed() {
		return
	}
	if tok.Type == token.ILLEGAL {
		p.errorAt(tok, "")
		return
	}
	p.errors = append(p.errors, &diag.Error{
		Category: diag.Internal,
		Msg:      "unhandled token type " + string(tok.Type) + " while parsing primary",
		Line:     tok.Line,
		Column:   tok.Column,
	})
}

func (p *Parser) registerPrefix(tokenType token.TokenType, fn prefixParseFn) {
	p.prefixParseFns[tokenType] = fn
}

func (p *Parser) registerInfix(tokenType token.TokenType, fn infixParseFn) {
	p.infixParseFns[tokenType] = fn
}
