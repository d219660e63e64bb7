// internal/parser/printer.go
package parser

import (
	"fmt"
	"strconv"
	"strings"
)

// Print renders the AST back to source. Parsing the output again yields
// a structurally identical AST, which the `fmt` subcommand and the
// round-trip tests rely on.
func Print(prog *Program) string {
	var sb strings.Builder
	for _, stmt := range prog.Stmts {
		printStmt(&sb, stmt, 0)
	}
	return sb.String()
}

func printStmt(sb *strings.Builder, stmt Stmt, depth int) {
	indent := strings.Repeat("    ", depth)
	switch s := stmt.(type) {
	case *DeclStmt:
		kw := "let"
		if s.Constant {
			kw = "const"
		}
		fmt.Fprintf(sb, "%s%s %s %s = %s;\n", indent, kw, s.DeclType, s.Name, printExpr(s.Init))
	case *AssignStmt:
		fmt.Fprintf(sb, "%s%s = %s;\n", indent, s.Name, printExpr(s.Value))
	case *IfStmt:
		fmt.Fprintf(sb, "%sif (%s) ", indent, printExpr(s.Cond))
		printBlockBody(sb, s.Then, depth)
		cur := s
		for cur.Else != nil {
			if nested, ok := cur.Else.(*IfStmt); ok {
				fmt.Fprintf(sb, "%selse if (%s) ", indent, printExpr(nested.Cond))
				printBlockBody(sb, nested.Then, depth)
				cur = nested
				continue
			}
			fmt.Fprintf(sb, "%selse ", indent)
			printBlockBody(sb, cur.Else.(*BlockStmt), depth)
			break
		}
	case *WhileStmt:
		fmt.Fprintf(sb, "%swhile (%s) ", indent, printExpr(s.Cond))
		printBlockBody(sb, s.Body, depth)
	case *PrintStmt:
		kw := "write"
		if s.Newline {
			kw = "print"
		}
		fmt.Fprintf(sb, "%s%s(%s);\n", indent, kw, printExpr(s.Expr))
	case *BlockStmt:
		sb.WriteString(indent)
		printBlockBody(sb, s, depth)
	case *ExpressionStmt:
		fmt.Fprintf(sb, "%s%s;\n", indent, printExpr(s.Expr))
	}
}

func printBlockBody(sb *strings.Builder, blk *BlockStmt, depth int) {
	indent := strings.Repeat("    ", depth)
	sb.WriteString("{\n")
	for _, stmt := range blk.Stmts {
		printStmt(sb, stmt, depth+1)
	}
	sb.WriteString(indent + "}\n")
}

func printExpr(expr Expr) string {
	switch e := expr.(type) {
	case *Literal:
		return printLiteral(e.Value)
	case *Variable:
		return e.Name
	case *Unary:
		return e.Operator + printOperand(e.Operand)
	case *Binary:
		return printOperand(e.Left) + " " + e.Operator + " " + printOperand(e.Right)
	case *Logical:
		return printOperand(e.Left) + " " + e.Operator + " " + printOperand(e.Right)
	default:
		return ""
	}
}

// printOperand parenthesizes compound subexpressions so the printed
// form re-parses with the same structure regardless of precedence.
func printOperand(expr Expr) string {
	switch expr.(type) {
	case *Binary, *Logical:
		return "(" + printExpr(expr) + ")"
	default:
		return printExpr(expr)
	}
}

func printLiteral(v interface{}) string {
	switch val := v.(type) {
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		s := strconv.FormatFloat(val, 'f', -1, 64)
		if !strings.Contains(s, ".") {
			s += ".0"
		}
		return s
	case bool:
		return strconv.FormatBool(val)
	case string:
		escaped := strings.NewReplacer("\\", "\\\\", "\"", "\\\"", "\n", "\\n").Replace(val)
		return "\"" + escaped + "\""
	default:
		return ""
	}
}
