package ast2ram

import (
	"github.com/quarrylang/quarry/internal/ast"
	"github.com/quarrylang/quarry/internal/ram"
	"github.com/quarrylang/quarry/internal/symtab"
)

// translateValue lowers an AST term into a RAM expression.
//
// Pure function of (argument, symbol table, index): variables resolve
// through the index, string constants intern through the symbol table and
// lower to their index, functors recurse, and a generator term reads
// element 0 of its generator tuple. Failure (an unbound variable) is an
// invariant violation and propagates as a panic; it is never swallowed.
func translateValue(symbols *symtab.Table, index *ValueIndex, arg ast.Argument) ram.Expression {
	switch a := arg.(type) {
	case *ast.Variable:
		loc := index.Lookup(a.Name)
		return &ram.TupleElement{Tuple: loc.Tuple, Element: loc.Element}
	case *ast.UnnamedVariable:
		return &ram.UndefValue{}
	case *ast.NumberConstant:
		return &ram.SignedConstant{Value: a.Value}
	case *ast.StringConstant:
		return &ram.SignedConstant{Value: int64(symbols.Intern(a.Value))}
	case *ast.IntrinsicFunctor:
		args := make([]ram.Expression, len(a.Args))
		for i, sub := range a.Args {
			args[i] = translateValue(symbols, index, sub)
		}
		return &ram.IntrinsicOp{Op: a.Op, Args: args}
	case *ast.Aggregator:
		return &ram.TupleElement{Tuple: index.GeneratorTuple(a), Element: 0}
	default:
		invariant(false, "unknown argument type %T", arg)
		return nil
	}
}
