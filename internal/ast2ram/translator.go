package ast2ram

import (
	"github.com/quarrylang/quarry/internal/ast"
	"github.com/quarrylang/quarry/internal/ram"
	"github.com/quarrylang/quarry/internal/symtab"
)

// Relation name prefixes for the semi-naive working relations.
const (
	deltaPrefix = "@delta_"
	newPrefix   = "@new_"
)

func deltaName(rel string) string { return deltaPrefix + rel }
func newName(rel string) string   { return newPrefix + rel }

// strategy customizes the parts of clause translation that differ between
// plain evaluation and provenance-instrumented evaluation. Supplying the
// strategy as an explicit dependency keeps both negation builders directly
// unit-testable and avoids hidden mode coupling between translators.
type strategy interface {
	// factQuery translates a clause with an empty body.
	factQuery(t *translation) *ram.Query

	// innermost builds the head action of a rule: an insertion for plain
	// evaluation, a value-return subroutine for provenance.
	innermost(t *translation) ram.Operation

	// negate wraps op in an existence-negation filter for the atom.
	// isDelta marks the semi-naive delta-avoidance path; user-written
	// negations pass false.
	negate(t *translation, atom *ast.Atom, op ram.Operation, isDelta bool) ram.Operation
}

// ClauseTranslator lowers clauses into RAM queries. A translator is
// stateless across invocations: every TranslateClause call builds a fresh
// value-location index, so one translator may serve concurrent callers as
// long as the Context permits concurrent reads.
type ClauseTranslator struct {
	ctx     Context
	symbols *symtab.Table
	strat   strategy
}

// NewClauseTranslator creates the plain (non-provenance) translator.
func NewClauseTranslator(ctx Context, symbols *symtab.Table) *ClauseTranslator {
	return &ClauseTranslator{ctx: ctx, symbols: symbols, strat: insertStrategy{}}
}

// NewProvenanceClauseTranslator creates the provenance-instrumented
// translator. Provenance is a constructor decision, not a global flag.
func NewProvenanceClauseTranslator(ctx Context, symbols *symtab.Table) *ClauseTranslator {
	return &ClauseTranslator{ctx: ctx, symbols: symbols, strat: provenanceStrategy{}}
}

// TranslateClause lowers one (clause, version) pair. Version selects which
// recursive positive body atom of a recursive rule scans the delta
// relation; it is ignored for facts and must be 0 for non-recursive rules.
// The caller owns the returned tree.
func (ct *ClauseTranslator) TranslateClause(clause *ast.Clause, version int) *ram.Query {
	invariant(clause != nil && clause.Head != nil, "clause has no head")
	invariant(version >= 0, "negative version %d", version)

	t := ct.newTranslation(clause, version)
	if clause.IsFact() {
		return ct.strat.factQuery(t)
	}
	if !t.recursive {
		invariant(version == 0, "non-recursive rule translated with version %d", version)
	}
	return t.ruleQuery()
}

// translation carries the per-invocation state of one clause lowering.
type translation struct {
	ctx     Context
	symbols *symtab.Table
	strat   strategy

	clause    *ast.Clause
	version   int
	recursive bool

	index *ValueIndex

	// atoms are the positive body atoms in body order; the slice position
	// of an atom is its tuple level.
	atoms []*ast.Atom

	// eligible lists the tuple levels of the recursive positive atoms, in
	// body order. For recursive rules the version indexes this slice: the
	// atom at level eligible[version] scans the delta relation.
	eligible []int

	// generators in body order; generator i owns tuple level len(atoms)+i.
	generators []*ast.Aggregator

	// varOrder lists variables in first-occurrence order so constraint
	// emission is deterministic.
	varOrder    []string
	occurrences map[string][]Location

	// crossRefs holds (binding, occurrence) pairs for variables reappearing
	// in a later atom; lowered to equality filters at the innermost level.
	crossRefs [][2]Location

	// scanEq maps an occurrence to the variable's binding for repeats
	// within a single atom; checked at the scan enclosing that atom.
	scanEq map[Location]Location
}

func (ct *ClauseTranslator) newTranslation(clause *ast.Clause, version int) *translation {
	return &translation{
		ctx:         ct.ctx,
		symbols:     ct.symbols,
		strat:       ct.strat,
		clause:      clause,
		version:     version,
		recursive:   ct.isRecursive(clause),
		index:       NewValueIndex(),
		occurrences: make(map[string][]Location),
		scanEq:      make(map[Location]Location),
	}
}

// isRecursive reports whether the clause participates in fixpoint
// iteration: its head relation is recursive and at least one positive body
// atom is too. Base-case clauses of a recursive relation translate with
// plain relation names, outside the loop.
func (ct *ClauseTranslator) isRecursive(clause *ast.Clause) bool {
	if !ct.ctx.IsRecursive(clause.Head.Relation) {
		return false
	}
	for _, atom := range clause.PositiveAtoms() {
		if ct.ctx.IsRecursive(atom.Relation) {
			return true
		}
	}
	return false
}

// VersionCount reports how many semi-naive versions the clause translates
// to: one per recursive positive body atom of a recursive rule, zero for
// facts and non-recursive rules (which translate once, with version 0).
func (ct *ClauseTranslator) VersionCount(clause *ast.Clause) int {
	if clause == nil || clause.Head == nil || !ct.isRecursive(clause) {
		return 0
	}
	n := 0
	for _, atom := range clause.PositiveAtoms() {
		if ct.ctx.IsRecursive(atom.Relation) {
			n++
		}
	}
	return n
}

// ruleQuery composes the operation tree strictly bottom-up: head action,
// variable-binding constraints, body-literal constraints, generator levels,
// and finally the scans introducing each positive atom's tuple.
func (t *translation) ruleQuery() *ram.Query {
	invariant(t.clause.IsRule(), "fact translated as rule")

	t.indexClause()
	if t.recursive {
		invariant(t.version < len(t.eligible),
			"version %d out of range for rule with %d recursive atoms",
			t.version, len(t.eligible))
	}

	op := t.strat.innermost(t)
	op = t.addVariableBindingConstraints(op)
	op = t.addBodyLiteralConstraints(op)
	op = t.addGeneratorLevels(op)
	op = t.addVariableIntroductions(op)
	return &ram.Query{Op: op}
}

// indexClause is the pre-pass: it assigns tuple levels to positive atoms
// and generators, binds every variable at its first appearance, and records
// where repeated occurrences must be checked.
func (t *translation) indexClause() {
	// Positive atoms: tuple level = body position among atoms.
	for _, lit := range t.clause.Body {
		atom, ok := lit.(*ast.Atom)
		if !ok {
			continue
		}
		level := len(t.atoms)
		t.atoms = append(t.atoms, atom)
		if t.ctx.IsRecursive(atom.Relation) {
			t.eligible = append(t.eligible, level)
		}

		for pos, arg := range atom.Args {
			v, ok := arg.(*ast.Variable)
			if !ok {
				continue
			}
			loc := Location{Tuple: level, Element: pos}
			occs := t.occurrences[v.Name]
			switch {
			case len(occs) == 0:
				t.index.Bind(v.Name, loc)
				t.varOrder = append(t.varOrder, v.Name)
			case t.seenInTuple(v.Name, level):
				// Repeat within one atom: checked at this atom's scan.
				t.scanEq[loc] = occs[0]
			default:
				t.crossRefs = append(t.crossRefs, [2]Location{occs[0], loc})
			}
			t.occurrences[v.Name] = append(occs, loc)
		}
	}

	// Generators: tuple levels after all atom levels, in body order.
	for _, lit := range t.clause.Body {
		bc, ok := lit.(*ast.BinaryConstraint)
		if !ok {
			continue
		}
		gen, ok := bc.RHS.(*ast.Aggregator)
		if !ok {
			continue
		}
		invariant(bc.Op == ast.OpEQ, "generator bound by non-equality constraint %q", bc.Op)

		level := len(t.atoms) + len(t.generators)
		t.generators = append(t.generators, gen)
		t.index.BindGenerator(gen, level)

		// The constrained variable reads the generator's result unless
		// already bound elsewhere.
		if v, ok := bc.LHS.(*ast.Variable); ok && !t.index.Defined(v.Name) {
			t.index.Bind(v.Name, Location{Tuple: level, Element: 0})
		}

		// Variables first seen inside the pattern are local to the
		// generator's own tuple.
		for pos, arg := range gen.Pattern.Args {
			if v, ok := arg.(*ast.Variable); ok && !t.index.Defined(v.Name) {
				t.index.Bind(v.Name, Location{Tuple: level, Element: pos})
			}
		}
	}
}

// seenInTuple reports whether the variable already occurred at the given
// tuple level. The binding occurrence counts: a repeat in the binding atom
// is a within-atom repeat.
func (t *translation) seenInTuple(name string, tuple int) bool {
	for _, loc := range t.occurrences[name] {
		if loc.Tuple == tuple {
			return true
		}
	}
	return false
}

// addVariableBindingConstraints emits one equality filter per variable
// occurrence that reappears in a later atom (the self-join condition).
// Within-atom repeats are deliberately absent here: they are checked at the
// scan enclosing their atom.
func (t *translation) addVariableBindingConstraints(op ram.Operation) ram.Operation {
	for _, pair := range t.crossRefs {
		op = &ram.Filter{
			Cond: &ram.Constraint{
				Op:  ram.BinEQ,
				LHS: tupleElement(pair[0]),
				RHS: tupleElement(pair[1]),
			},
			Body: op,
		}
	}
	return op
}

// addBodyLiteralConstraints wraps op with one filter per binary constraint
// and one existence-negation per negated atom, in body order. For recursive
// rules it additionally negates the delta relation of every recursive atom
// after the version atom, so no tuple is derived by two versions.
func (t *translation) addBodyLiteralConstraints(op ram.Operation) ram.Operation {
	for _, lit := range t.clause.Body {
		switch l := lit.(type) {
		case *ast.BinaryConstraint:
			op = &ram.Filter{
				Cond: &ram.Constraint{
					Op:  ram.BinaryOp(l.Op),
					LHS: translateValue(t.symbols, t.index, l.LHS),
					RHS: translateValue(t.symbols, t.index, l.RHS),
				},
				Body: op,
			}
		case *ast.Negation:
			op = t.strat.negate(t, l.Atom, op, false)
		}
	}

	if t.recursive {
		for _, level := range t.eligible[t.version+1:] {
			op = t.strat.negate(t, t.atoms[level], op, true)
		}
	}
	return op
}

// addGeneratorLevels wraps op with one aggregate evaluation per generator,
// later generators innermost, so every generator's result is available to
// all lowering steps outside it.
func (t *translation) addGeneratorLevels(op ram.Operation) ram.Operation {
	for i := len(t.generators) - 1; i >= 0; i-- {
		gen := t.generators[i]
		tuple := t.index.GeneratorTuple(gen)

		var cond ram.Condition
		for pos, arg := range gen.Pattern.Args {
			if _, ok := arg.(*ast.UnnamedVariable); ok {
				continue
			}
			if v, ok := arg.(*ast.Variable); ok {
				if t.index.Lookup(v.Name) == (Location{Tuple: tuple, Element: pos}) {
					continue // introduced by this generator
				}
			}
			cond = conjoin(cond, &ram.Constraint{
				Op:  ram.BinEQ,
				LHS: &ram.TupleElement{Tuple: tuple, Element: pos},
				RHS: translateValue(t.symbols, t.index, arg),
			})
		}

		var expr ram.Expression
		if gen.Fn != ast.AggCount {
			invariant(gen.Target != nil, "aggregate %q requires a target expression", gen.Fn)
			expr = translateValue(t.symbols, t.index, gen.Target)
		}

		op = &ram.Aggregate{
			Tuple:    tuple,
			Fn:       ram.AggregateFn(gen.Fn),
			Relation: t.ctx.ConcreteName(gen.Pattern.Relation),
			Expr:     expr,
			Cond:     cond,
			Body:     op,
		}
	}
	return op
}

// addVariableIntroductions wraps op with one scan per positive atom in
// reverse body order, so the first literal becomes the outermost loop. For
// version v of a recursive rule, exactly the v-th recursive atom scans the
// delta relation. Constant arguments and within-atom variable repeats are
// filtered immediately inside their atom's scan, keeping each check as
// close as possible to the binding that makes it checkable.
func (t *translation) addVariableIntroductions(op ram.Operation) ram.Operation {
	for i := len(t.atoms) - 1; i >= 0; i-- {
		atom := t.atoms[i]

		var conds []ram.Condition
		for pos, arg := range atom.Args {
			elem := &ram.TupleElement{Tuple: i, Element: pos}
			switch a := arg.(type) {
			case *ast.Variable:
				if bound, ok := t.scanEq[Location{Tuple: i, Element: pos}]; ok {
					conds = append(conds, &ram.Constraint{
						Op: ram.BinEQ, LHS: tupleElement(bound), RHS: elem,
					})
				}
			case *ast.NumberConstant:
				conds = append(conds, &ram.Constraint{
					Op: ram.BinEQ, LHS: elem, RHS: &ram.SignedConstant{Value: a.Value},
				})
			case *ast.StringConstant:
				conds = append(conds, &ram.Constraint{
					Op:  ram.BinEQ,
					LHS: elem,
					RHS: &ram.SignedConstant{Value: int64(t.symbols.Intern(a.Value))},
				})
			case *ast.UnnamedVariable:
				// binds nothing, checks nothing
			default:
				invariant(false, "atom argument %T not normalized", arg)
			}
		}
		for k := len(conds) - 1; k >= 0; k-- {
			op = &ram.Filter{Cond: conds[k], Body: op}
		}

		op = &ram.Scan{Relation: t.scanRelationName(i, atom), Tuple: i, Body: op}
	}
	return op
}

func (t *translation) scanRelationName(level int, atom *ast.Atom) string {
	concrete := t.ctx.ConcreteName(atom.Relation)
	if t.recursive && level == t.eligible[t.version] {
		return deltaName(concrete)
	}
	return concrete
}

// headRelationName is the insertion target: the new (accumulator) relation
// for recursive rules, the relation itself otherwise.
func (t *translation) headRelationName() string {
	concrete := t.ctx.ConcreteName(t.clause.Head.Relation)
	if t.recursive {
		return newName(concrete)
	}
	return concrete
}

// plainNegate is the base negation builder: a filter over the negation of a
// plain existence check. The check lowers the non-auxiliary argument values
// and leaves auxiliary columns unconstrained. isDelta switches the check to
// the atom's delta relation.
func (t *translation) plainNegate(atom *ast.Atom, op ram.Operation, isDelta bool) ram.Operation {
	aux := t.ctx.EvaluationArity(atom)
	invariant(aux <= atom.Arity(),
		"auxiliary arity %d exceeds arity %d of %s", aux, atom.Arity(), atom.Relation)
	arity := atom.Arity() - aux

	values := make([]ram.Expression, 0, atom.Arity())
	for i := 0; i < arity; i++ {
		values = append(values, translateValue(t.symbols, t.index, atom.Args[i]))
	}
	for i := 0; i < aux; i++ {
		values = append(values, &ram.UndefValue{})
	}

	relation := t.ctx.ConcreteName(atom.Relation)
	if isDelta {
		relation = deltaName(relation)
	}
	return &ram.Filter{
		Cond: &ram.Negation{Cond: &ram.ExistenceCheck{Relation: relation, Values: values}},
		Body: op,
	}
}

// insertStrategy is the plain evaluation strategy: facts and rule heads
// become insertions, negations become plain existence checks.
type insertStrategy struct{}

func (insertStrategy) factQuery(t *translation) *ram.Query {
	invariant(t.clause.IsFact(), "rule translated as fact")
	head := t.clause.Head

	values := make([]ram.Expression, 0, len(head.Args))
	for _, arg := range head.Args {
		values = append(values, translateValue(t.symbols, t.index, arg))
	}
	return &ram.Query{Op: &ram.Project{
		Relation: t.ctx.ConcreteName(head.Relation),
		Values:   values,
	}}
}

func (insertStrategy) innermost(t *translation) ram.Operation {
	head := t.clause.Head

	values := make([]ram.Expression, 0, len(head.Args))
	for _, arg := range head.Args {
		values = append(values, translateValue(t.symbols, t.index, arg))
	}

	relation := t.headRelationName()
	var op ram.Operation = &ram.Project{Relation: relation, Values: values}
	if head.Arity() == 0 {
		// A proposition is derived at most once.
		op = &ram.Filter{Cond: &ram.EmptinessCheck{Relation: relation}, Body: op}
	}
	return op
}

func (insertStrategy) negate(t *translation, atom *ast.Atom, op ram.Operation, isDelta bool) ram.Operation {
	return t.plainNegate(atom, op, isDelta)
}

func tupleElement(loc Location) *ram.TupleElement {
	return &ram.TupleElement{Tuple: loc.Tuple, Element: loc.Element}
}

func conjoin(cond ram.Condition, next ram.Condition) ram.Condition {
	if cond == nil {
		return next
	}
	return &ram.Conjunction{LHS: cond, RHS: next}
}
