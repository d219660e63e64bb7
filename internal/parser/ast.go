// internal/parser/ast.go
package parser

// Type is the closed set of static types in the language. It lives with
// the AST because the checker's output is a type-annotated AST.
type Type int

const (
	TypeInvalid Type = iota
	TypeInt
	TypeFloat
	TypeBool
	TypeString
)

func (t Type) String() string {
	switch t {
	case TypeInt:
		return "int"
	case TypeFloat:
		return "float"
	case TypeBool:
		return "bool"
	case TypeString:
		return "string"
	default:
		return "invalid"
	}
}

// Expr is a closed expression variant, dispatched by type switch.
type Expr interface {
	exprNode()
	Pos() (line, column int)
	Type() Type
	SetType(t Type)
}

// exprBase carries the source position and the static type assigned by
// the checker. Every expression node embeds it.
type exprBase struct {
	Line   int
	Column int
	T      Type
}

func (e *exprBase) exprNode()       {}
func (e *exprBase) Pos() (int, int) { return e.Line, e.Column }
func (e *exprBase) Type() Type      { return e.T }
func (e *exprBase) SetType(t Type)  { e.T = t }

// Binary expression: a + b. Covers arithmetic, comparison and equality.
type Binary struct {
	exprBase
	Operator string
	Left     Expr
	Right    Expr
}

// Logical expression: a && b, a || b. Split from Binary because the
// right operand is evaluated conditionally.
type Logical struct {
	exprBase
	Operator string
	Left     Expr
	Right    Expr
}

// Unary expression: !x, -x.
type Unary struct {
	exprBase
	Operator string
	Operand  Expr
}

// Literal expression. Value is int64, float64, bool or string.
type Literal struct {
	exprBase
	Value interface{}
}

// Variable reference: x.
type Variable struct {
	exprBase
	Name string
}
