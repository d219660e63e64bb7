// internal/parser/parser.go
package parser

import (
	"fmt"
	"strconv"
	"strings"

	"sst/internal/errors"
	"sst/internal/lexer"
)

// Operator precedence, low to high. Unary and primary are handled
// below this table.
var precedence = map[lexer.TokenType]int{
	lexer.TokenOr:          1, // ||
	lexer.TokenAnd:         2, // &&
	lexer.TokenDoubleEqual: 3, // ==
	lexer.TokenNotEqual:    3, // !=
	lexer.TokenLT:          4, // <
	lexer.TokenGT:          4, // >
	lexer.TokenLE:          4, // <=
	lexer.TokenGE:          4, // >=
	lexer.TokenPlus:        5, // +
	lexer.TokenMinus:       5, // -
	lexer.TokenStar:        6, // *
	lexer.TokenSlash:       6, // /
}

var typeTokens = map[lexer.TokenType]Type{
	lexer.TokenIntType:    TypeInt,
	lexer.TokenFloatType:  TypeFloat,
	lexer.TokenBoolType:   TypeBool,
	lexer.TokenStringType: TypeString,
}

type Parser struct {
	tokens      []lexer.Token
	current     int
	sourceLines []string // for error reporting, may be nil
}

func NewParser(tokens []lexer.Token) *Parser {
	return &Parser{tokens: tokens}
}

func NewParserWithSource(tokens []lexer.Token, source string) *Parser {
	return &Parser{
		tokens:      tokens,
		sourceLines: strings.Split(source, "\n"),
	}
}

// Parse consumes the token stream and returns the program AST. It stops
// at the first syntax error. Internally the descent panics with a
// diagnostic; the panic never escapes this method.
func (p *Parser) Parse() (prog *Program, err error) {
	defer func() {
		if r := recover(); r != nil {
			if perr, ok := r.(*errors.Error); ok {
				prog, err = nil, perr
				return
			}
			panic(r)
		}
	}()

	prog = &Program{}
	for !p.isAtEnd() {
		prog.Stmts = append(prog.Stmts, p.statement())
	}
	return prog, nil
}

func (p *Parser) statement() Stmt {
	switch {
	case p.match(lexer.TokenLet):
		return p.declaration(false)
	case p.match(lexer.TokenConst):
		return p.declaration(true)
	case p.match(lexer.TokenIf):
		return p.ifStatement()
	case p.match(lexer.TokenWhile):
		return p.whileStatement()
	case p.match(lexer.TokenPrint):
		return p.printStatement(true)
	case p.match(lexer.TokenWrite):
		return p.printStatement(false)
	case p.check(lexer.TokenLBrace):
		return p.block()
	}

	// Assignment: IDENT '=' expr ';'
	if p.check(lexer.TokenIdent) && p.checkNext(lexer.TokenEqual) {
		nameTok := p.advance()
		p.advance() // '='
		value := p.expression()
		p.consume(lexer.TokenSemicolon, "expect ';' after assignment")
		stmt := &AssignStmt{Name: nameTok.Lexeme, Value: value}
		stmt.Line, stmt.Column = nameTok.Line, nameTok.Column
		return stmt
	}

	// Expression statement.
	tok := p.peek()
	expr := p.expression()
	p.consume(lexer.TokenSemicolon, "expect ';' after expression")
	stmt := &ExpressionStmt{Expr: expr}
	stmt.Line, stmt.Column = tok.Line, tok.Column
	return stmt
}

// declaration parses ("let"|"const") TYPE IDENT "=" EXPR ";".
// The keyword token has already been consumed.
func (p *Parser) declaration(constant bool) Stmt {
	kw := p.previous()
	declType, ok := typeTokens[p.peek().Type]
	if !ok {
		p.fail("expect type name after declaration keyword")
	}
	p.advance()
	nameTok := p.consume(lexer.TokenIdent, "expect variable name")
	p.consume(lexer.TokenEqual, "expect '=' after variable name")
	init := p.expression()
	p.consume(lexer.TokenSemicolon, "expect ';' after declaration")

	stmt := &DeclStmt{
		Constant: constant,
		DeclType: declType,
		Name:     nameTok.Lexeme,
		Init:     init,
	}
	stmt.Line, stmt.Column = kw.Line, kw.Column
	return stmt
}

func (p *Parser) ifStatement() Stmt {
	kw := p.previous()
	p.consume(lexer.TokenLParen, "expect '(' after 'if'")
	cond := p.expression()
	p.consume(lexer.TokenRParen, "expect ')' after condition")
	then := p.block()

	var elseStmt Stmt
	if p.match(lexer.TokenElse) {
		if p.match(lexer.TokenIf) {
			elseStmt = p.ifStatement()
		} else {
			elseStmt = p.block()
		}
	}

	stmt := &IfStmt{Cond: cond, Then: then, Else: elseStmt}
	stmt.Line, stmt.Column = kw.Line, kw.Column
	return stmt
}

func (p *Parser) whileStatement() Stmt {
	kw := p.previous()
	p.consume(lexer.TokenLParen, "expect '(' after 'while'")
	cond := p.expression()
	p.consume(lexer.TokenRParen, "expect ')' after condition")
	body := p.block()

	stmt := &WhileStmt{Cond: cond, Body: body}
	stmt.Line, stmt.Column = kw.Line, kw.Column
	return stmt
}

func (p *Parser) printStatement(newline bool) Stmt {
	kw := p.previous()
	p.consume(lexer.TokenLParen, fmt.Sprintf("expect '(' after '%s'", kw.Lexeme))
	expr := p.expression()
	p.consume(lexer.TokenRParen, fmt.Sprintf("expect ')' after %s argument", kw.Lexeme))
	p.consume(lexer.TokenSemicolon, fmt.Sprintf("expect ';' after %s statement", kw.Lexeme))

	stmt := &PrintStmt{Newline: newline, Expr: expr}
	stmt.Line, stmt.Column = kw.Line, kw.Column
	return stmt
}

func (p *Parser) block() *BlockStmt {
	open := p.consume(lexer.TokenLBrace, "expect '{'")
	blk := &BlockStmt{}
	blk.Line, blk.Column = open.Line, open.Column
	for !p.check(lexer.TokenRBrace) && !p.isAtEnd() {
		blk.Stmts = append(blk.Stmts, p.statement())
	}
	p.consume(lexer.TokenRBrace, "expect '}' after block")
	return blk
}

// --- Expression parsing with precedence climbing ---

func (p *Parser) expression() Expr {
	return p.parseBinary(1)
}

func (p *Parser) parseBinary(minPrec int) Expr {
	left := p.unary()
	for {
		tok := p.peek()
		prec, ok := precedence[tok.Type]
		if !ok || prec < minPrec {
			break
		}
		p.advance()
		right := p.parseBinary(prec + 1)

		if tok.Type == lexer.TokenAnd || tok.Type == lexer.TokenOr {
			node := &Logical{Operator: tok.Lexeme, Left: left, Right: right}
			node.Line, node.Column = tok.Line, tok.Column
			left = node
		} else {
			node := &Binary{Operator: tok.Lexeme, Left: left, Right: right}
			node.Line, node.Column = tok.Line, tok.Column
			left = node
		}
	}
	return left
}

func (p *Parser) unary() Expr {
	if p.match(lexer.TokenNot) || p.match(lexer.TokenMinus) {
		op := p.previous()
		operand := p.unary()
		node := &Unary{Operator: op.Lexeme, Operand: operand}
		node.Line, node.Column = op.Line, op.Column
		return node
	}
	return p.primary()
}

func (p *Parser) primary() Expr {
	if p.isAtEnd() {
		p.failAt(p.peek(), "unexpected end of input in expression")
	}
	tok := p.advance()
	switch tok.Type {
	case lexer.TokenInt:
		v, err := strconv.ParseInt(tok.Lexeme, 10, 64)
		if err != nil {
			p.failAt(tok, fmt.Sprintf("invalid integer literal '%s'", tok.Lexeme))
		}
		return p.literal(tok, v)
	case lexer.TokenFloat:
		v, err := strconv.ParseFloat(tok.Lexeme, 64)
		if err != nil {
			p.failAt(tok, fmt.Sprintf("invalid float literal '%s'", tok.Lexeme))
		}
		return p.literal(tok, v)
	case lexer.TokenString:
		return p.literal(tok, tok.Lexeme)
	case lexer.TokenTrue:
		return p.literal(tok, true)
	case lexer.TokenFalse:
		return p.literal(tok, false)
	case lexer.TokenIdent:
		node := &Variable{Name: tok.Lexeme}
		node.Line, node.Column = tok.Line, tok.Column
		return node
	case lexer.TokenLParen:
		expr := p.expression()
		p.consume(lexer.TokenRParen, "expect ')' after expression")
		return expr
	default:
		p.failAt(tok, fmt.Sprintf("unexpected token '%s' in expression", tok.Lexeme))
		return nil
	}
}

func (p *Parser) literal(tok lexer.Token, v interface{}) Expr {
	node := &Literal{Value: v}
	node.Line, node.Column = tok.Line, tok.Column
	return node
}

// --- Utility methods ---

func (p *Parser) match(t lexer.TokenType) bool {
	if p.check(t) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) consume(t lexer.TokenType, msg string) lexer.Token {
	if p.check(t) {
		return p.advance()
	}
	p.fail(msg)
	return lexer.Token{}
}

func (p *Parser) check(t lexer.TokenType) bool {
	return p.peek().Type == t
}

func (p *Parser) checkNext(t lexer.TokenType) bool {
	if p.current+1 >= len(p.tokens) {
		return false
	}
	return p.tokens[p.current+1].Type == t
}

func (p *Parser) advance() lexer.Token {
	if !p.isAtEnd() {
		p.current++
	}
	return p.tokens[p.current-1]
}

func (p *Parser) previous() lexer.Token {
	return p.tokens[p.current-1]
}

func (p *Parser) peek() lexer.Token {
	return p.tokens[p.current]
}

func (p *Parser) isAtEnd() bool {
	return p.peek().Type == lexer.TokenEOF
}

func (p *Parser) fail(msg string) {
	tok := p.peek()
	found := tok.Lexeme
	if tok.Type == lexer.TokenEOF {
		found = "end of input"
	}
	p.failAt(tok, fmt.Sprintf("%s, found '%s'", msg, found))
}

func (p *Parser) failAt(tok lexer.Token, msg string) {
	err := errors.New(errors.ParseError, errors.UnexpectedToken, msg, tok.Line, tok.Column)
	if p.sourceLines != nil && tok.Line > 0 && tok.Line <= len(p.sourceLines) {
		err = err.WithSource(p.sourceLines[tok.Line-1])
	}
	panic(err)
}
