package ast2ram

import (
	"github.com/quarrylang/quarry/internal/ast"
	"github.com/quarrylang/quarry/internal/ram"
)

// unassignedAux marks an auxiliary column (rule number, proof height) whose
// value is assigned downstream, after the final provenance negation. The
// code generator reserves -1 for this; legitimate heights are non-negative.
const unassignedAux = -1

// provenanceStrategy instruments translation so derivations can later be
// explained: facts and rule bodies become value-return subroutines the
// proof reconstruction invokes on demand, and user negations become
// provenance-aware existence checks.
type provenanceStrategy struct{}

// factQuery emits a subroutine returning the fact's lowered head-argument
// values instead of an insertion, so a provenance query can retrieve the
// value tuple without it residing in the relation.
func (provenanceStrategy) factQuery(t *translation) *ram.Query {
	invariant(t.clause.IsFact(), "rule translated as fact")
	invariant(!t.recursive, "recursive clauses cannot have facts")

	head := t.clause.Head
	values := make([]ram.Expression, 0, len(head.Args))
	for _, arg := range head.Args {
		values = append(values, translateValue(t.symbols, t.index, arg))
	}
	return &ram.Query{Op: &ram.SubroutineReturn{Values: values}}
}

func (s provenanceStrategy) innermost(t *translation) ram.Operation {
	return s.valueSubroutine(t)
}

// negate keeps the base behavior on the delta path and otherwise builds a
// provenance existence check: the non-auxiliary argument values, an
// unconstrained rule-number column (non-existence of any derivation must
// hold for every rule number), and the lowered height columns beyond the
// first, which participate in minimality comparisons.
func (provenanceStrategy) negate(t *translation, atom *ast.Atom, op ram.Operation, isDelta bool) ram.Operation {
	if isDelta {
		return t.plainNegate(atom, op, true)
	}

	aux := t.ctx.EvaluationArity(atom)
	invariant(aux <= atom.Arity(),
		"auxiliary arity %d exceeds arity %d of %s", aux, atom.Arity(), atom.Relation)
	arity := atom.Arity() - aux

	values := make([]ram.Expression, 0, atom.Arity())
	for i := 0; i < arity; i++ {
		values = append(values, translateValue(t.symbols, t.index, atom.Args[i]))
	}
	if aux > 0 {
		values = append(values, &ram.UndefValue{})
		for height := 1; height < aux; height++ {
			values = append(values, translateValue(t.symbols, t.index, atom.Args[arity+height]))
		}
	}

	return &ram.Filter{
		Cond: &ram.Negation{Cond: &ram.ProvenanceExistenceCheck{
			Relation: t.ctx.ConcreteName(atom.Relation),
			Values:   values,
		}},
		Body: op,
	}
}

// valueSubroutine returns, in body-literal order, the lowered value of
// every argument of every positive atom, every negated atom, and both
// operands of every binary constraint: the full list of intermediate values
// needed to reconstruct why a derivation held. For recursive clauses it
// appends the head's non-auxiliary values followed by one unassigned
// sentinel per auxiliary column (the final provenance negation step).
func (provenanceStrategy) valueSubroutine(t *translation) ram.Operation {
	var values []ram.Expression

	for _, lit := range t.clause.Body {
		switch l := lit.(type) {
		case *ast.Atom:
			for _, arg := range l.Args {
				values = append(values, translateValue(t.symbols, t.index, arg))
			}
		case *ast.Negation:
			for _, arg := range l.Atom.Args {
				values = append(values, translateValue(t.symbols, t.index, arg))
			}
		case *ast.BinaryConstraint:
			values = append(values, translateValue(t.symbols, t.index, l.LHS))
			values = append(values, translateValue(t.symbols, t.index, l.RHS))
		}
	}

	if t.recursive {
		head := t.clause.Head
		aux := t.ctx.EvaluationArity(head)
		invariant(aux <= head.Arity(),
			"auxiliary arity %d exceeds arity %d of %s", aux, head.Arity(), head.Relation)
		for i := 0; i < head.Arity()-aux; i++ {
			values = append(values, translateValue(t.symbols, t.index, head.Args[i]))
		}
		for i := 0; i < aux; i++ {
			values = append(values, &ram.SignedConstant{Value: unassignedAux})
		}
	}

	return &ram.SubroutineReturn{Values: values}
}
