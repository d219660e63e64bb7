package parser

import (
	"testing"

	"sst/internal/errors"
	"sst/internal/lexer"
)

func parseString(t *testing.T, input string) (*Program, error) {
	t.Helper()
	tokens, err := lexer.NewScanner(input).ScanTokens()
	if err != nil {
		t.Fatalf("lex error for %q: %v", input, err)
	}
	return NewParserWithSource(tokens, input).Parse()
}

func assertParseSuccess(t *testing.T, input string) *Program {
	t.Helper()
	prog, err := parseString(t, input)
	if err != nil {
		t.Fatalf("parsing %q failed: %v", input, err)
	}
	return prog
}

func assertParseError(t *testing.T, input string) *errors.Error {
	t.Helper()
	_, err := parseString(t, input)
	if err == nil {
		t.Fatalf("expected parsing %q to fail", input)
	}
	serr, ok := err.(*errors.Error)
	if !ok {
		t.Fatalf("expected *errors.Error, got %T", err)
	}
	if serr.Phase != errors.ParseError || serr.Code != errors.UnexpectedToken {
		t.Errorf("got %s/%s, want ParseError/UnexpectedToken", serr.Phase, serr.Code)
	}
	return serr
}

func TestStatements(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		shouldPass bool
	}{
		{"let declaration", "let int x = 5;", true},
		{"const declaration", "const float f = 1.5;", true},
		{"string declaration", `let string s = "hi";`, true},
		{"bool declaration", "let bool b = true;", true},
		{"assignment", "x = 5;", true},
		{"if", "if (x < y) { print(x); }", true},
		{"if else", "if (b) { print(1); } else { print(2); }", true},
		{"else if chain", "if (a) { x = 1; } else if (b) { x = 2; } else { x = 3; }", true},
		{"while", "while (i < 10) { i = i + 1; }", true},
		{"bare block", "{ let int x = 1; }", true},
		{"expression statement", "1 + 2;", true},
		{"print", `print("hi");`, true},
		{"write", `write("hi");`, true},
		{"empty program", "", true},

		{"declaration without type", "let x = 5;", false},
		{"declaration without init", "let int x;", false},
		{"missing semicolon", "let int x = 5", false},
		{"if without parens", "if x < y { print(x); }", false},
		{"while without body", "while (x < y)", false},
		{"print without semicolon", "print(x)", false},
		{"unclosed block", "{ let int x = 1;", false},
		{"assignment without rhs", "x = ;", false},
		{"stray rbrace", "}", false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if test.shouldPass {
				assertParseSuccess(t, test.input)
			} else {
				assertParseError(t, test.input)
			}
		})
	}
}

func TestDeclarationShape(t *testing.T) {
	prog := assertParseSuccess(t, "const int y = 10;")
	if len(prog.Stmts) != 1 {
		t.Fatalf("got %d statements, want 1", len(prog.Stmts))
	}
	decl, ok := prog.Stmts[0].(*DeclStmt)
	if !ok {
		t.Fatalf("got %T, want *DeclStmt", prog.Stmts[0])
	}
	if !decl.Constant || decl.DeclType != TypeInt || decl.Name != "y" {
		t.Errorf("unexpected decl: constant=%v type=%s name=%s", decl.Constant, decl.DeclType, decl.Name)
	}
	lit, ok := decl.Init.(*Literal)
	if !ok || lit.Value != int64(10) {
		t.Errorf("unexpected initializer: %#v", decl.Init)
	}
}

func TestPrecedence(t *testing.T) {
	// a || b && c == d < e + f * g parses as a || (b && ((c == (d < (e + (f * g))))))
	prog := assertParseSuccess(t, "a || b && c == d < e + f * g;")
	expr := prog.Stmts[0].(*ExpressionStmt).Expr

	or, ok := expr.(*Logical)
	if !ok || or.Operator != "||" {
		t.Fatalf("top operator: got %#v, want ||", expr)
	}
	and, ok := or.Right.(*Logical)
	if !ok || and.Operator != "&&" {
		t.Fatalf("next operator: got %#v, want &&", or.Right)
	}
	eq, ok := and.Right.(*Binary)
	if !ok || eq.Operator != "==" {
		t.Fatalf("next operator: got %#v, want ==", and.Right)
	}
	lt, ok := eq.Right.(*Binary)
	if !ok || lt.Operator != "<" {
		t.Fatalf("next operator: got %#v, want <", eq.Right)
	}
	add, ok := lt.Right.(*Binary)
	if !ok || add.Operator != "+" {
		t.Fatalf("next operator: got %#v, want +", lt.Right)
	}
	mul, ok := add.Right.(*Binary)
	if !ok || mul.Operator != "*" {
		t.Fatalf("innermost operator: got %#v, want *", add.Right)
	}
}

func TestLeftAssociativity(t *testing.T) {
	prog := assertParseSuccess(t, "1 - 2 - 3;")
	outer, ok := prog.Stmts[0].(*ExpressionStmt).Expr.(*Binary)
	if !ok || outer.Operator != "-" {
		t.Fatalf("got %#v, want binary -", prog.Stmts[0])
	}
	inner, ok := outer.Left.(*Binary)
	if !ok || inner.Operator != "-" {
		t.Fatalf("left operand: got %#v, want binary - (left associative)", outer.Left)
	}
	if lit, ok := outer.Right.(*Literal); !ok || lit.Value != int64(3) {
		t.Errorf("right operand: got %#v, want 3", outer.Right)
	}
}

func TestParenthesesOverridePrecedence(t *testing.T) {
	prog := assertParseSuccess(t, "(1 + 2) * 3;")
	mul, ok := prog.Stmts[0].(*ExpressionStmt).Expr.(*Binary)
	if !ok || mul.Operator != "*" {
		t.Fatalf("got %#v, want binary *", prog.Stmts[0])
	}
	if add, ok := mul.Left.(*Binary); !ok || add.Operator != "+" {
		t.Errorf("left operand: got %#v, want binary +", mul.Left)
	}
}

func TestUnaryNesting(t *testing.T) {
	prog := assertParseSuccess(t, "!!b;")
	outer, ok := prog.Stmts[0].(*ExpressionStmt).Expr.(*Unary)
	if !ok || outer.Operator != "!" {
		t.Fatalf("got %#v, want unary !", prog.Stmts[0])
	}
	if inner, ok := outer.Operand.(*Unary); !ok || inner.Operator != "!" {
		t.Errorf("operand: got %#v, want unary !", outer.Operand)
	}
}

func TestElseIfNesting(t *testing.T) {
	prog := assertParseSuccess(t, "if (a) { x = 1; } else if (b) { x = 2; }")
	ifStmt := prog.Stmts[0].(*IfStmt)
	if _, ok := ifStmt.Else.(*IfStmt); !ok {
		t.Errorf("else branch: got %T, want *IfStmt", ifStmt.Else)
	}
}

func TestErrorPosition(t *testing.T) {
	serr := assertParseError(t, "let int x = ;")
	if serr.Line != 1 || serr.Column != 13 {
		t.Errorf("error at %d:%d, want 1:13", serr.Line, serr.Column)
	}
	if serr.Source == "" {
		t.Error("expected source line on parser diagnostic")
	}
}
