package envcheck

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"strconv"
	"strings"
)

const defaultExpect = "exitCode == 0"

// CheckOutcome is what a custom check's expect expression can see.
type CheckOutcome struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

func (o CheckOutcome) vars() map[string]any {
	return map[string]any{
		"exitCode": o.ExitCode,
		"stdout":   strings.TrimSpace(o.Stdout),
		"stderr":   strings.TrimSpace(o.Stderr),
	}
}

// ValidateCondition parses expr without evaluating it.
func ValidateCondition(expr string) error {
	_, err := parseCondition(expr)
	return err
}

func EvalCondition(expr string, data map[string]any) (bool, error) {
	node, err := parseCondition(expr)
	if err != nil {
		return false, err
	}
	value, err := evalExpr(node, data)
	if err != nil {
		return false, err
	}
	b, ok := value.(bool)
	if !ok {
		return false, fmt.Errorf("condition did not evaluate to bool")
	}
	return b, nil
}

func parseCondition(expr string) (ast.Expr, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, fmt.Errorf("empty condition")
	}
	node, err := parser.ParseExpr(expr)
	if err != nil {
		return nil, fmt.Errorf("parse condition: %w", err)
	}
	return node, nil
}

func evalExpr(node ast.Expr, data map[string]any) (any, error) {
	switch expr := node.(type) {
	case *ast.BasicLit:
		switch expr.Kind {
		case token.STRING:
			return strconv.Unquote(expr.Value)
		case token.INT:
			return strconv.Atoi(expr.Value)
		default:
			return nil, fmt.Errorf("unsupported literal: %s", expr.Value)
		}
	case *ast.Ident:
		switch expr.Name {
		case "true":
			return true, nil
		case "false":
			return false, nil
		default:
			value, ok := data[expr.Name]
			if !ok {
				return nil, fmt.Errorf("unknown identifier: %s", expr.Name)
			}
			return value, nil
		}
	case *ast.ParenExpr:
		return evalExpr(expr.X, data)
	case *ast.UnaryExpr:
		if expr.Op != token.NOT {
			return nil, fmt.Errorf("unsupported operator: %s", expr.Op)
		}
		value, err := evalExpr(expr.X, data)
		if err != nil {
			return nil, err
		}
		b, ok := value.(bool)
		if !ok {
			return nil, fmt.Errorf("! requires a bool")
		}
		return !b, nil
	case *ast.BinaryExpr:
		if expr.Op == token.LAND || expr.Op == token.LOR {
			return evalLogical(expr, data)
		}
		left, err := evalExpr(expr.X, data)
		if err != nil {
			return nil, err
		}
		right, err := evalExpr(expr.Y, data)
		if err != nil {
			return nil, err
		}
		return compare(expr.Op, left, right)
	case *ast.CallExpr:
		return evalCall(expr, data)
	default:
		return nil, fmt.Errorf("unsupported expression: %T", node)
	}
}

// evalLogical short-circuits so the right side is only evaluated when needed.
func evalLogical(expr *ast.BinaryExpr, data map[string]any) (any, error) {
	left, err := evalBool(expr.X, data)
	if err != nil {
		return nil, err
	}
	if expr.Op == token.LAND && !left {
		return false, nil
	}
	if expr.Op == token.LOR && left {
		return true, nil
	}
	return evalBool(expr.Y, data)
}

func evalBool(node ast.Expr, data map[string]any) (bool, error) {
	value, err := evalExpr(node, data)
	if err != nil {
		return false, err
	}
	b, ok := value.(bool)
	if !ok {
		return false, fmt.Errorf("logical ops require bools")
	}
	return b, nil
}

func evalCall(expr *ast.CallExpr, data map[string]any) (any, error) {
	fn, ok := expr.Fun.(*ast.Ident)
	if !ok {
		return nil, fmt.Errorf("unsupported call")
	}
	if len(expr.Args) != 2 {
		return nil, fmt.Errorf("%s expects 2 arguments", fn.Name)
	}
	args := make([]string, 0, 2)
	for _, arg := range expr.Args {
		value, err := evalExpr(arg, data)
		if err != nil {
			return nil, err
		}
		s, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("%s expects string arguments", fn.Name)
		}
		args = append(args, s)
	}
	switch fn.Name {
	case "contains":
		return strings.Contains(args[0], args[1]), nil
	case "hasPrefix":
		return strings.HasPrefix(args[0], args[1]), nil
	case "hasSuffix":
		return strings.HasSuffix(args[0], args[1]), nil
	default:
		return nil, fmt.Errorf("unknown function: %s", fn.Name)
	}
}

func compare(op token.Token, left, right any) (bool, error) {
	switch l := left.(type) {
	case int:
		r, ok := right.(int)
		if !ok {
			return false, fmt.Errorf("mismatched types for comparison")
		}
		return compareOrdered(op, l, r)
	case string:
		r, ok := right.(string)
		if !ok {
			return false, fmt.Errorf("mismatched types for comparison")
		}
		return compareOrdered(op, l, r)
	case bool:
		r, ok := right.(bool)
		if !ok {
			return false, fmt.Errorf("mismatched types for comparison")
		}
		switch op {
		case token.EQL:
			return l == r, nil
		case token.NEQ:
			return l != r, nil
		default:
			return false, fmt.Errorf("unsupported operator for bools: %s", op)
		}
	default:
		return false, fmt.Errorf("unsupported comparison types")
	}
}

func compareOrdered[T int | string](op token.Token, left, right T) (bool, error) {
	switch op {
	case token.EQL:
		return left == right, nil
	case token.NEQ:
		return left != right, nil
	case token.LSS:
		return left < right, nil
	case token.GTR:
		return left > right, nil
	case token.LEQ:
		return left <= right, nil
	case token.GEQ:
		return left >= right, nil
	default:
		return false, fmt.Errorf("unsupported operator: %s", op)
	}
}
