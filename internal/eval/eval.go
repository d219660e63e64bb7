// internal/eval/eval.go
package eval

import (
	"fmt"
	"io"

	"sst/internal/errors"
	"sst/internal/memory"
	"sst/internal/parser"
)

// Evaluator walks a type-checked AST and executes it. It is
// single-threaded: every statement runs to completion before the next,
// and the scope chain is only ever touched by the one execution.
type Evaluator struct {
	mem     *memory.Manager
	out     io.Writer
	scopes  []scopeRec
	current int
}

// New creates an evaluator writing program output to out. The root
// scope is opened immediately and lives until Close.
func New(out io.Writer) *Evaluator {
	e := &Evaluator{
		mem:     memory.NewManager(),
		out:     out,
		current: -1,
	}
	e.pushScope()
	return e
}

// Close releases the root scope and everything still allocated in it.
// After Close the outstanding allocation count is zero.
func (e *Evaluator) Close() {
	if e.current == 0 {
		e.popScope()
	}
}

// Mem exposes the memory manager for stats reporting and tests.
func (e *Evaluator) Mem() *memory.Manager {
	return e.mem
}

// Exec runs the program's statements in order against the root scope.
// It halts at the first runtime error; scopes opened by the failing
// statement are unwound (and their arenas released) on the way out.
func (e *Evaluator) Exec(prog *parser.Program) error {
	for _, stmt := range prog.Stmts {
		if err := e.execStmt(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (e *Evaluator) execStmt(stmt parser.Stmt) error {
	switch s := stmt.(type) {
	case *parser.DeclStmt:
		v, err := e.eval(s.Init)
		if err != nil {
			return err
		}
		// Binding a string always takes an independent copy so no two
		// bindings ever alias one allocation.
		if v.T == parser.TypeString {
			h, err := e.mem.Copy(v.Str)
			if err != nil {
				return e.reposition(err, s)
			}
			v = StringValue(h)
		}
		e.bind(s.Name, !s.Constant, v)
		return nil

	case *parser.AssignStmt:
		v, err := e.eval(s.Value)
		if err != nil {
			return err
		}
		b, owner, ok := e.lookup(s.Name)
		if !ok || !b.mutable {
			// Unreachable: the checker rejects these statically.
			line, col := s.Pos()
			return errors.New(errors.RuntimeError, errors.UseAfterFree,
				fmt.Sprintf("assignment to invalid binding '%s'", s.Name), line, col)
		}
		// Fresh allocation-and-copy into the owning scope's arena, so
		// the value lives exactly as long as the binding does.
		if v.T == parser.TypeString {
			h, err := e.mem.CopyInto(e.scopes[owner].mem, v.Str)
			if err != nil {
				return e.reposition(err, s)
			}
			v = StringValue(h)
		}
		b.val = v
		return nil

	case *parser.BlockStmt:
		e.pushScope()
		defer e.popScope()
		for _, inner := range s.Stmts {
			if err := e.execStmt(inner); err != nil {
				return err
			}
		}
		return nil

	case *parser.IfStmt:
		cond, err := e.eval(s.Cond)
		if err != nil {
			return err
		}
		if cond.Bool {
			return e.execStmt(s.Then)
		}
		if s.Else != nil {
			return e.execStmt(s.Else)
		}
		return nil

	case *parser.WhileStmt:
		for {
			cond, err := e.eval(s.Cond)
			if err != nil {
				return err
			}
			if !cond.Bool {
				return nil
			}
			// Each iteration gets a fresh child scope, so loop-local
			// allocations are freed every iteration.
			if err := e.execStmt(s.Body); err != nil {
				return err
			}
		}

	case *parser.PrintStmt:
		v, err := e.eval(s.Expr)
		if err != nil {
			return err
		}
		text, err := Format(v, e.mem)
		if err != nil {
			return e.reposition(err, s)
		}
		if s.Newline {
			text += "\n"
		}
		_, werr := io.WriteString(e.out, text)
		return werr

	case *parser.ExpressionStmt:
		_, err := e.eval(s.Expr)
		return err
	}
	return nil
}

// eval evaluates an expression. Binary operands are evaluated strictly
// left to right.
func (e *Evaluator) eval(expr parser.Expr) (Value, error) {
	switch ex := expr.(type) {
	case *parser.Literal:
		return e.literal(ex)

	case *parser.Variable:
		b, _, ok := e.lookup(ex.Name)
		if !ok {
			// Unreachable after checking.
			line, col := ex.Pos()
			return Value{}, errors.New(errors.RuntimeError, errors.UseAfterFree,
				fmt.Sprintf("read of unbound variable '%s'", ex.Name), line, col)
		}
		return b.val, nil

	case *parser.Unary:
		return e.unary(ex)

	case *parser.Binary:
		return e.binary(ex)

	case *parser.Logical:
		left, err := e.eval(ex.Left)
		if err != nil {
			return Value{}, err
		}
		// Short-circuit: the right operand only runs when needed.
		if ex.Operator == "&&" && !left.Bool {
			return BoolValue(false), nil
		}
		if ex.Operator == "||" && left.Bool {
			return BoolValue(true), nil
		}
		right, err := e.eval(ex.Right)
		if err != nil {
			return Value{}, err
		}
		return BoolValue(right.Bool), nil
	}
	return Value{}, nil
}

func (e *Evaluator) literal(ex *parser.Literal) (Value, error) {
	switch v := ex.Value.(type) {
	case int64:
		return IntValue(v), nil
	case float64:
		return FloatValue(v), nil
	case bool:
		return BoolValue(v), nil
	case string:
		return StringValue(e.mem.Allocate([]byte(v))), nil
	}
	line, col := ex.Pos()
	return Value{}, errors.New(errors.RuntimeError, errors.UseAfterFree,
		"malformed literal", line, col)
}

func (e *Evaluator) unary(ex *parser.Unary) (Value, error) {
	v, err := e.eval(ex.Operand)
	if err != nil {
		return Value{}, err
	}
	switch ex.Operator {
	case "!":
		return BoolValue(!v.Bool), nil
	case "-":
		if v.T == parser.TypeFloat {
			return FloatValue(-v.Float), nil
		}
		return IntValue(-v.Int), nil
	}
	return Value{}, nil
}

func (e *Evaluator) binary(ex *parser.Binary) (Value, error) {
	left, err := e.eval(ex.Left)
	if err != nil {
		return Value{}, err
	}
	right, err := e.eval(ex.Right)
	if err != nil {
		return Value{}, err
	}

	// String concatenation.
	if ex.Operator == "+" && left.T == parser.TypeString {
		return e.concat(ex, left, right)
	}

	switch ex.Operator {
	case "+", "-", "*", "/":
		return e.arithmetic(ex, left, right)
	case "<", ">", "<=", ">=":
		return compareOrder(ex.Operator, left, right), nil
	case "==", "!=":
		return e.compareEqual(ex.Operator, left, right)
	}
	return Value{}, nil
}

func (e *Evaluator) concat(ex *parser.Binary, left, right Value) (Value, error) {
	lb, err := e.mem.Bytes(left.Str)
	if err != nil {
		return Value{}, e.reposition(err, ex)
	}
	rb, err := e.mem.Bytes(right.Str)
	if err != nil {
		return Value{}, e.reposition(err, ex)
	}
	joined := make([]byte, 0, len(lb)+len(rb))
	joined = append(joined, lb...)
	joined = append(joined, rb...)
	return StringValue(e.mem.Allocate(joined)), nil
}

// arithmetic applies + - * / with Int→Float promotion: the result is
// Int only when both operands are.
func (e *Evaluator) arithmetic(ex *parser.Binary, left, right Value) (Value, error) {
	if left.T == parser.TypeInt && right.T == parser.TypeInt {
		switch ex.Operator {
		case "+":
			return IntValue(left.Int + right.Int), nil
		case "-":
			return IntValue(left.Int - right.Int), nil
		case "*":
			return IntValue(left.Int * right.Int), nil
		case "/":
			if right.Int == 0 {
				return Value{}, e.divisionByZero(ex)
			}
			return IntValue(left.Int / right.Int), nil
		}
	}

	lf, rf := left.asFloat(), right.asFloat()
	switch ex.Operator {
	case "+":
		return FloatValue(lf + rf), nil
	case "-":
		return FloatValue(lf - rf), nil
	case "*":
		return FloatValue(lf * rf), nil
	case "/":
		if rf == 0 {
			return Value{}, e.divisionByZero(ex)
		}
		return FloatValue(lf / rf), nil
	}
	return Value{}, nil
}

func compareOrder(op string, left, right Value) Value {
	lf, rf := left.asFloat(), right.asFloat()
	// Two ints compare exactly, without the float detour.
	if left.T == parser.TypeInt && right.T == parser.TypeInt {
		switch op {
		case "<":
			return BoolValue(left.Int < right.Int)
		case ">":
			return BoolValue(left.Int > right.Int)
		case "<=":
			return BoolValue(left.Int <= right.Int)
		default:
			return BoolValue(left.Int >= right.Int)
		}
	}
	switch op {
	case "<":
		return BoolValue(lf < rf)
	case ">":
		return BoolValue(lf > rf)
	case "<=":
		return BoolValue(lf <= rf)
	default:
		return BoolValue(lf >= rf)
	}
}

func (e *Evaluator) compareEqual(op string, left, right Value) (Value, error) {
	var eq bool
	switch left.T {
	case parser.TypeInt:
		eq = left.Int == right.Int
	case parser.TypeFloat:
		eq = left.Float == right.Float
	case parser.TypeBool:
		eq = left.Bool == right.Bool
	case parser.TypeString:
		ls, err := e.mem.String(left.Str)
		if err != nil {
			return Value{}, err
		}
		rs, err := e.mem.String(right.Str)
		if err != nil {
			return Value{}, err
		}
		eq = ls == rs
	}
	if op == "!=" {
		eq = !eq
	}
	return BoolValue(eq), nil
}

func (e *Evaluator) divisionByZero(ex *parser.Binary) error {
	line, col := ex.Pos()
	return errors.New(errors.RuntimeError, errors.DivisionByZero,
		"division by zero", line, col)
}

// reposition stamps a position onto manager errors, which are raised
// without one.
func (e *Evaluator) reposition(err error, node interface{ Pos() (int, int) }) error {
	if serr, ok := err.(*errors.Error); ok && serr.Line == 0 {
		serr.Line, serr.Column = node.Pos()
	}
	return err
}
