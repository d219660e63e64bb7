// internal/check/checker.go
package check

import (
	"fmt"

	"sst/internal/errors"
	"sst/internal/parser"
)

// Checker validates static types and mutability over the AST and
// annotates every expression node with its type. It stops at the first
// violation; a program that fails here never reaches the evaluator.
type Checker struct {
	root    *scope
	current *scope
}

func NewChecker() *Checker {
	root := newScope(nil)
	return &Checker{root: root, current: root}
}

// Check runs a single top-to-bottom traversal of the program. The root
// scope persists across calls so a REPL session can feed statement
// batches incrementally.
func (c *Checker) Check(prog *parser.Program) error {
	for _, stmt := range prog.Stmts {
		if err := c.stmt(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (c *Checker) stmt(stmt parser.Stmt) error {
	switch s := stmt.(type) {
	case *parser.DeclStmt:
		return c.decl(s)
	case *parser.AssignStmt:
		return c.assign(s)
	case *parser.BlockStmt:
		return c.block(s)
	case *parser.IfStmt:
		return c.ifStmt(s)
	case *parser.WhileStmt:
		return c.whileStmt(s)
	case *parser.PrintStmt:
		// print accepts any of the four types.
		_, err := c.expr(s.Expr)
		return err
	case *parser.ExpressionStmt:
		_, err := c.expr(s.Expr)
		return err
	default:
		line, col := stmt.Pos()
		return c.errorf(errors.TypeMismatch, line, col, "unknown statement")
	}
}

func (c *Checker) decl(s *parser.DeclStmt) error {
	line, col := s.Pos()
	if c.current.definedHere(s.Name) {
		return c.errorf(errors.DuplicateDeclaration, line, col,
			"'%s' is already declared in this scope", s.Name)
	}
	initType, err := c.expr(s.Init)
	if err != nil {
		return err
	}
	// Exact match required; no widening at declaration.
	if initType != s.DeclType {
		return c.errorf(errors.TypeMismatch, line, col,
			"cannot initialize %s '%s' with %s value", s.DeclType, s.Name, initType)
	}
	c.current.define(s.Name, &binding{declType: s.DeclType, mutable: !s.Constant})
	return nil
}

func (c *Checker) assign(s *parser.AssignStmt) error {
	line, col := s.Pos()
	b, ok := c.current.lookup(s.Name)
	if !ok {
		return c.errorf(errors.UndefinedIdentifier, line, col,
			"assignment to undeclared variable '%s'", s.Name)
	}
	if !b.mutable {
		return c.errorf(errors.AssignToConst, line, col,
			"cannot assign to constant '%s'", s.Name)
	}
	valType, err := c.expr(s.Value)
	if err != nil {
		return err
	}
	if valType != b.declType {
		return c.errorf(errors.TypeMismatch, line, col,
			"cannot assign %s value to %s '%s'", valType, b.declType, s.Name)
	}
	return nil
}

func (c *Checker) block(s *parser.BlockStmt) error {
	c.current = newScope(c.current)
	defer func() { c.current = c.current.parent }()
	for _, stmt := range s.Stmts {
		if err := c.stmt(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (c *Checker) ifStmt(s *parser.IfStmt) error {
	if err := c.condition(s.Cond, "if"); err != nil {
		return err
	}
	if err := c.block(s.Then); err != nil {
		return err
	}
	if s.Else != nil {
		return c.stmt(s.Else)
	}
	return nil
}

func (c *Checker) whileStmt(s *parser.WhileStmt) error {
	if err := c.condition(s.Cond, "while"); err != nil {
		return err
	}
	return c.block(s.Body)
}

func (c *Checker) condition(cond parser.Expr, construct string) error {
	t, err := c.expr(cond)
	if err != nil {
		return err
	}
	if t != parser.TypeBool {
		line, col := cond.Pos()
		return c.errorf(errors.TypeMismatch, line, col,
			"%s condition must be bool, got %s", construct, t)
	}
	return nil
}

// expr type-checks an expression, annotates the node and returns its
// static type.
func (c *Checker) expr(expr parser.Expr) (parser.Type, error) {
	switch e := expr.(type) {
	case *parser.Literal:
		t := literalType(e.Value)
		e.SetType(t)
		return t, nil

	case *parser.Variable:
		b, ok := c.current.lookup(e.Name)
		if !ok {
			line, col := e.Pos()
			return parser.TypeInvalid, c.errorf(errors.UndefinedIdentifier, line, col,
				"undefined identifier '%s'", e.Name)
		}
		e.SetType(b.declType)
		return b.declType, nil

	case *parser.Unary:
		return c.unary(e)

	case *parser.Binary:
		return c.binary(e)

	case *parser.Logical:
		return c.logical(e)

	default:
		line, col := expr.Pos()
		return parser.TypeInvalid, c.errorf(errors.TypeMismatch, line, col, "unknown expression")
	}
}

func (c *Checker) unary(e *parser.Unary) (parser.Type, error) {
	t, err := c.expr(e.Operand)
	if err != nil {
		return parser.TypeInvalid, err
	}
	line, col := e.Pos()
	switch e.Operator {
	case "!":
		if t != parser.TypeBool {
			return parser.TypeInvalid, c.errorf(errors.InvalidOperandTypes, line, col,
				"operator '!' requires bool operand, got %s", t)
		}
		e.SetType(parser.TypeBool)
		return parser.TypeBool, nil
	case "-":
		if !isNumeric(t) {
			return parser.TypeInvalid, c.errorf(errors.InvalidOperandTypes, line, col,
				"operator '-' requires numeric operand, got %s", t)
		}
		e.SetType(t)
		return t, nil
	}
	return parser.TypeInvalid, c.errorf(errors.InvalidOperandTypes, line, col,
		"unknown unary operator '%s'", e.Operator)
}

func (c *Checker) binary(e *parser.Binary) (parser.Type, error) {
	lt, err := c.expr(e.Left)
	if err != nil {
		return parser.TypeInvalid, err
	}
	rt, err := c.expr(e.Right)
	if err != nil {
		return parser.TypeInvalid, err
	}
	line, col := e.Pos()

	switch e.Operator {
	case "+", "-", "*", "/":
		if e.Operator == "+" && lt == parser.TypeString && rt == parser.TypeString {
			e.SetType(parser.TypeString)
			return parser.TypeString, nil
		}
		if !isNumeric(lt) || !isNumeric(rt) {
			return parser.TypeInvalid, c.errorf(errors.InvalidOperandTypes, line, col,
				"operator '%s' cannot be applied to %s and %s", e.Operator, lt, rt)
		}
		t := promote(lt, rt)
		e.SetType(t)
		return t, nil

	case "<", ">", "<=", ">=":
		if !isNumeric(lt) || !isNumeric(rt) {
			return parser.TypeInvalid, c.errorf(errors.InvalidOperandTypes, line, col,
				"operator '%s' requires numeric operands, got %s and %s", e.Operator, lt, rt)
		}
		e.SetType(parser.TypeBool)
		return parser.TypeBool, nil

	case "==", "!=":
		if lt != rt {
			return parser.TypeInvalid, c.errorf(errors.InvalidOperandTypes, line, col,
				"operator '%s' requires operands of the same type, got %s and %s", e.Operator, lt, rt)
		}
		e.SetType(parser.TypeBool)
		return parser.TypeBool, nil
	}
	return parser.TypeInvalid, c.errorf(errors.InvalidOperandTypes, line, col,
		"unknown operator '%s'", e.Operator)
}

func (c *Checker) logical(e *parser.Logical) (parser.Type, error) {
	lt, err := c.expr(e.Left)
	if err != nil {
		return parser.TypeInvalid, err
	}
	rt, err := c.expr(e.Right)
	if err != nil {
		return parser.TypeInvalid, err
	}
	if lt != parser.TypeBool || rt != parser.TypeBool {
		line, col := e.Pos()
		return parser.TypeInvalid, c.errorf(errors.InvalidOperandTypes, line, col,
			"operator '%s' requires bool operands, got %s and %s", e.Operator, lt, rt)
	}
	e.SetType(parser.TypeBool)
	return parser.TypeBool, nil
}

func literalType(v interface{}) parser.Type {
	switch v.(type) {
	case int64:
		return parser.TypeInt
	case float64:
		return parser.TypeFloat
	case bool:
		return parser.TypeBool
	case string:
		return parser.TypeString
	default:
		return parser.TypeInvalid
	}
}

func isNumeric(t parser.Type) bool {
	return t == parser.TypeInt || t == parser.TypeFloat
}

// promote yields the arithmetic result type: Int only when both sides
// are Int, Float as soon as either side is.
func promote(a, b parser.Type) parser.Type {
	if a == parser.TypeFloat || b == parser.TypeFloat {
		return parser.TypeFloat
	}
	return parser.TypeInt
}

func (c *Checker) errorf(code errors.Code, line, col int, format string, args ...interface{}) error {
	return errors.New(errors.TypeError, code, fmt.Sprintf(format, args...), line, col)
}
