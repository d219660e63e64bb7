// internal/parser/stmt.go
package parser

// Stmt is a closed statement variant, dispatched by type switch.
type Stmt interface {
	stmtNode()
	Pos() (line, column int)
}

type stmtBase struct {
	Line   int
	Column int
}

func (s *stmtBase) stmtNode()       {}
func (s *stmtBase) Pos() (int, int) { return s.Line, s.Column }

// Program is the root node: the ordered top-level statements.
type Program struct {
	Stmts []Stmt
}

// DeclStmt covers both forms of variable declaration:
// let TYPE name = expr;  /  const TYPE name = expr;
type DeclStmt struct {
	stmtBase
	Constant bool
	DeclType Type
	Name     string
	Init     Expr
}

// AssignStmt: name = expr;
type AssignStmt struct {
	stmtBase
	Name  string
	Value Expr
}

// BlockStmt: { stmts... }. Opens a fresh scope at runtime.
type BlockStmt struct {
	stmtBase
	Stmts []Stmt
}

// IfStmt. Else is nil, a *BlockStmt, or a nested *IfStmt (else-if).
type IfStmt struct {
	stmtBase
	Cond Expr
	Then *BlockStmt
	Else Stmt
}

// WhileStmt. Each iteration of Body runs in its own child scope.
type WhileStmt struct {
	stmtBase
	Cond Expr
	Body *BlockStmt
}

// PrintStmt covers print(expr); which appends a newline, and
// write(expr); which does not.
type PrintStmt struct {
	stmtBase
	Newline bool
	Expr    Expr
}

// ExpressionStmt wraps a raw expression as a statement.
type ExpressionStmt struct {
	stmtBase
	Expr Expr
}
