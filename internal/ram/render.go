package ram

import (
	"fmt"
	"strings"
)

// Render produces a deterministic indented text form of a query, one
// operation per line. The same tree always renders to the same string, so
// the output is suitable for golden files and debugging.
func Render(q *Query) string {
	var b strings.Builder
	b.WriteString("QUERY\n")
	renderOp(&b, q.Op, 1)
	return b.String()
}

func renderOp(b *strings.Builder, op Operation, depth int) {
	indent := strings.Repeat("  ", depth)
	switch o := op.(type) {
	case *Scan:
		fmt.Fprintf(b, "%sFOR t%d IN %s\n", indent, o.Tuple, o.Relation)
		renderOp(b, o.Body, depth+1)
	case *Filter:
		fmt.Fprintf(b, "%sIF %s\n", indent, CondString(o.Cond))
		renderOp(b, o.Body, depth+1)
	case *Aggregate:
		line := fmt.Sprintf("%st%d.0 = %s", indent, o.Tuple, o.Fn)
		if o.Expr != nil {
			line += " " + ExprString(o.Expr)
		}
		line += fmt.Sprintf(" FOR t%d IN %s", o.Tuple, o.Relation)
		if o.Cond != nil {
			line += " IF " + CondString(o.Cond)
		}
		b.WriteString(line + "\n")
		renderOp(b, o.Body, depth+1)
	case *Project:
		fmt.Fprintf(b, "%sINSERT (%s) INTO %s\n", indent, exprList(o.Values), o.Relation)
	case *SubroutineReturn:
		fmt.Fprintf(b, "%sRETURN (%s)\n", indent, exprList(o.Values))
	default:
		panic(fmt.Sprintf("ram: unknown operation type %T", op))
	}
}

// ExprString renders a single expression.
func ExprString(e Expression) string {
	switch x := e.(type) {
	case *TupleElement:
		return fmt.Sprintf("t%d.%d", x.Tuple, x.Element)
	case *SignedConstant:
		return fmt.Sprintf("%d", x.Value)
	case *UndefValue:
		return "_"
	case *IntrinsicOp:
		return fmt.Sprintf("(%s %s)", x.Op, exprList(x.Args))
	default:
		panic(fmt.Sprintf("ram: unknown expression type %T", e))
	}
}

// CondString renders a single condition.
func CondString(c Condition) string {
	switch x := c.(type) {
	case *Constraint:
		return fmt.Sprintf("%s %s %s", ExprString(x.LHS), x.Op, ExprString(x.RHS))
	case *Negation:
		return "NOT " + CondString(x.Cond)
	case *Conjunction:
		return fmt.Sprintf("(%s AND %s)", CondString(x.LHS), CondString(x.RHS))
	case *ExistenceCheck:
		return fmt.Sprintf("(%s) IN %s", exprList(x.Values), x.Relation)
	case *ProvenanceExistenceCheck:
		return fmt.Sprintf("(%s) PROV-IN %s", exprList(x.Values), x.Relation)
	case *EmptinessCheck:
		return fmt.Sprintf("EMPTY %s", x.Relation)
	default:
		panic(fmt.Sprintf("ram: unknown condition type %T", c))
	}
}

func exprList(exprs []Expression) string {
	parts := make([]string, len(exprs))
	for i, e := range exprs {
		parts[i] = ExprString(e)
	}
	return strings.Join(parts, ", ")
}
