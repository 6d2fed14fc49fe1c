// Package compiler loads program fixtures written in structural CUE into
// AST clauses plus the relation declarations that drive translation.
//
// A fixture is not Datalog source text: the clause structure is spelled out
// field by field, so this loader does CUE value walking only. The actual
// Datalog parser lives in the front end, outside this repository.
//
// Fixture shape:
//
//	program: {
//		relations: {
//			edge: {arity: 2}
//			path: {arity: 2, recursive: true}
//		}
//		clauses: [{
//			head: {relation: "path", args: [{var: "x"}, {var: "y"}]}
//			body: [
//				{atom: {relation: "edge", args: [{var: "x"}, {var: "y"}]}},
//				{constraint: {op: "<", lhs: {var: "x"}, rhs: {num: 10}}},
//			]
//		}]
//	}
package compiler

import (
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/quarrylang/quarry/internal/ast"
	"github.com/quarrylang/quarry/internal/ast2ram"
)

// Program is a loaded fixture: relation declarations and clauses.
type Program struct {
	Relations []ast2ram.RelationInfo
	Clauses   []*ast.Clause
}

// Context builds the translation context for the program's relations.
func (p *Program) Context() *ast2ram.StaticContext {
	return ast2ram.NewStaticContext(p.Relations...)
}

// LoadFile compiles one CUE fixture file and loads its program block.
func LoadFile(path string) (*Program, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture: %w", err)
	}

	cuectx := cuecontext.New()
	v := cuectx.CompileBytes(src, cue.Filename(path))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	progVal := v.LookupPath(cue.ParsePath("program"))
	if !progVal.Exists() {
		return nil, &CompileError{
			Field:   "program",
			Message: fmt.Sprintf("no 'program' block found in %s", path),
			Pos:     v.Pos(),
		}
	}
	return LoadProgram(progVal)
}

// LoadProgram parses a CUE value into a Program.
// Uses CUE SDK's Go API directly (not CLI subprocess).
//
// The CUE value should be the program struct itself, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(src)
//	prog, err := LoadProgram(v.LookupPath(cue.ParsePath("program")))
func LoadProgram(v cue.Value) (*Program, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	prog := &Program{}

	relsVal := v.LookupPath(cue.ParsePath("relations"))
	if !relsVal.Exists() {
		return nil, &CompileError{
			Field:   "relations",
			Message: "relations block is required",
			Pos:     v.Pos(),
		}
	}
	iter, err := relsVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}
	for iter.Next() {
		info, err := parseRelation(iter.Label(), iter.Value())
		if err != nil {
			return nil, err
		}
		prog.Relations = append(prog.Relations, info)
	}

	clausesVal := v.LookupPath(cue.ParsePath("clauses"))
	if clausesVal.Exists() {
		list, err := clausesVal.List()
		if err != nil {
			return nil, formatCUEError(err)
		}
		for i := 0; list.Next(); i++ {
			clause, err := parseClause(list.Value())
			if err != nil {
				return nil, fmt.Errorf("clauses[%d]: %w", i, err)
			}
			prog.Clauses = append(prog.Clauses, clause)
		}
	}

	return prog, nil
}

// parseRelation reads one relation declaration.
func parseRelation(name string, v cue.Value) (ast2ram.RelationInfo, error) {
	info := ast2ram.RelationInfo{Name: ast.QualifiedName(name)}

	arityVal := v.LookupPath(cue.ParsePath("arity"))
	if !arityVal.Exists() {
		return info, &CompileError{
			Field:   fmt.Sprintf("relations.%s.arity", name),
			Message: "arity is required",
			Pos:     v.Pos(),
		}
	}
	arity, err := arityVal.Int64()
	if err != nil {
		return info, formatCUEError(err)
	}
	info.Arity = int(arity)

	if auxVal := v.LookupPath(cue.ParsePath("aux")); auxVal.Exists() {
		aux, err := auxVal.Int64()
		if err != nil {
			return info, formatCUEError(err)
		}
		info.AuxArity = int(aux)
	}
	if info.AuxArity > info.Arity {
		return info, &CompileError{
			Field:   fmt.Sprintf("relations.%s.aux", name),
			Message: fmt.Sprintf("aux arity %d exceeds arity %d", info.AuxArity, info.Arity),
			Pos:     v.Pos(),
		}
	}

	if recVal := v.LookupPath(cue.ParsePath("recursive")); recVal.Exists() {
		rec, err := recVal.Bool()
		if err != nil {
			return info, formatCUEError(err)
		}
		info.Recursive = rec
	}

	return info, nil
}

// parseClause reads one clause: a head atom and an optional body list.
func parseClause(v cue.Value) (*ast.Clause, error) {
	headVal := v.LookupPath(cue.ParsePath("head"))
	if !headVal.Exists() {
		return nil, &CompileError{
			Field:   "head",
			Message: "clause head is required",
			Pos:     v.Pos(),
		}
	}
	head, err := parseAtom(headVal)
	if err != nil {
		return nil, err
	}

	clause := &ast.Clause{Head: head}

	bodyVal := v.LookupPath(cue.ParsePath("body"))
	if bodyVal.Exists() {
		list, err := bodyVal.List()
		if err != nil {
			return nil, formatCUEError(err)
		}
		for i := 0; list.Next(); i++ {
			lit, err := parseLiteral(list.Value())
			if err != nil {
				return nil, fmt.Errorf("body[%d]: %w", i, err)
			}
			clause.Body = append(clause.Body, lit)
		}
	}

	return clause, nil
}

// parseLiteral reads one body literal: exactly one of atom, negation, or
// constraint must be present.
func parseLiteral(v cue.Value) (ast.Literal, error) {
	if atomVal := v.LookupPath(cue.ParsePath("atom")); atomVal.Exists() {
		return parseAtom(atomVal)
	}
	if negVal := v.LookupPath(cue.ParsePath("negation")); negVal.Exists() {
		atom, err := parseAtom(negVal)
		if err != nil {
			return nil, err
		}
		return &ast.Negation{Atom: atom}, nil
	}
	if conVal := v.LookupPath(cue.ParsePath("constraint")); conVal.Exists() {
		return parseConstraint(conVal)
	}
	return nil, &CompileError{
		Field:   "body",
		Message: "literal must be one of atom, negation, constraint",
		Pos:     v.Pos(),
	}
}

func parseConstraint(v cue.Value) (*ast.BinaryConstraint, error) {
	opVal := v.LookupPath(cue.ParsePath("op"))
	if !opVal.Exists() {
		return nil, &CompileError{
			Field:   "constraint.op",
			Message: "constraint requires 'op' field",
			Pos:     v.Pos(),
		}
	}
	op, err := opVal.String()
	if err != nil {
		return nil, formatCUEError(err)
	}
	if !validConstraintOp(ast.ConstraintOp(op)) {
		return nil, &CompileError{
			Field:   "constraint.op",
			Message: fmt.Sprintf("invalid operator %q", op),
			Pos:     opVal.Pos(),
		}
	}

	lhs, err := parseArgumentField(v, "lhs")
	if err != nil {
		return nil, err
	}
	rhs, err := parseArgumentField(v, "rhs")
	if err != nil {
		return nil, err
	}
	return &ast.BinaryConstraint{Op: ast.ConstraintOp(op), LHS: lhs, RHS: rhs}, nil
}

func parseAtom(v cue.Value) (*ast.Atom, error) {
	relVal := v.LookupPath(cue.ParsePath("relation"))
	if !relVal.Exists() {
		return nil, &CompileError{
			Field:   "relation",
			Message: "atom requires 'relation' field",
			Pos:     v.Pos(),
		}
	}
	rel, err := relVal.String()
	if err != nil {
		return nil, formatCUEError(err)
	}

	atom := &ast.Atom{Relation: ast.QualifiedName(rel)}

	argsVal := v.LookupPath(cue.ParsePath("args"))
	if argsVal.Exists() {
		list, err := argsVal.List()
		if err != nil {
			return nil, formatCUEError(err)
		}
		for i := 0; list.Next(); i++ {
			arg, err := parseArgument(list.Value())
			if err != nil {
				return nil, fmt.Errorf("args[%d]: %w", i, err)
			}
			atom.Args = append(atom.Args, arg)
		}
	}

	return atom, nil
}

func parseArgumentField(v cue.Value, field string) (ast.Argument, error) {
	fieldVal := v.LookupPath(cue.ParsePath(field))
	if !fieldVal.Exists() {
		return nil, &CompileError{
			Field:   field,
			Message: fmt.Sprintf("constraint requires %q field", field),
			Pos:     v.Pos(),
		}
	}
	return parseArgument(fieldVal)
}

// parseArgument reads one term: exactly one of var, unnamed, num, str,
// functor, or agg must be present.
func parseArgument(v cue.Value) (ast.Argument, error) {
	if varVal := v.LookupPath(cue.ParsePath("var")); varVal.Exists() {
		name, err := varVal.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return &ast.Variable{Name: name}, nil
	}
	if unVal := v.LookupPath(cue.ParsePath("unnamed")); unVal.Exists() {
		return &ast.UnnamedVariable{}, nil
	}
	if numVal := v.LookupPath(cue.ParsePath("num")); numVal.Exists() {
		n, err := numVal.Int64()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return &ast.NumberConstant{Value: n}, nil
	}
	if strVal := v.LookupPath(cue.ParsePath("str")); strVal.Exists() {
		s, err := strVal.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return &ast.StringConstant{Value: s}, nil
	}
	if fnVal := v.LookupPath(cue.ParsePath("functor")); fnVal.Exists() {
		return parseFunctor(fnVal)
	}
	if aggVal := v.LookupPath(cue.ParsePath("agg")); aggVal.Exists() {
		return parseAggregator(aggVal)
	}
	return nil, &CompileError{
		Field:   "arg",
		Message: "argument must be one of var, unnamed, num, str, functor, agg",
		Pos:     v.Pos(),
	}
}

func parseFunctor(v cue.Value) (*ast.IntrinsicFunctor, error) {
	opVal := v.LookupPath(cue.ParsePath("op"))
	if !opVal.Exists() {
		return nil, &CompileError{
			Field:   "functor.op",
			Message: "functor requires 'op' field",
			Pos:     v.Pos(),
		}
	}
	op, err := opVal.String()
	if err != nil {
		return nil, formatCUEError(err)
	}

	functor := &ast.IntrinsicFunctor{Op: op}
	argsVal := v.LookupPath(cue.ParsePath("args"))
	if argsVal.Exists() {
		list, err := argsVal.List()
		if err != nil {
			return nil, formatCUEError(err)
		}
		for i := 0; list.Next(); i++ {
			arg, err := parseArgument(list.Value())
			if err != nil {
				return nil, fmt.Errorf("functor args[%d]: %w", i, err)
			}
			functor.Args = append(functor.Args, arg)
		}
	}
	return functor, nil
}

func parseAggregator(v cue.Value) (*ast.Aggregator, error) {
	fnVal := v.LookupPath(cue.ParsePath("fn"))
	if !fnVal.Exists() {
		return nil, &CompileError{
			Field:   "agg.fn",
			Message: "aggregator requires 'fn' field",
			Pos:     v.Pos(),
		}
	}
	fn, err := fnVal.String()
	if err != nil {
		return nil, formatCUEError(err)
	}
	aggFn := ast.AggregateFn(fn)
	switch aggFn {
	case ast.AggCount, ast.AggSum, ast.AggMin, ast.AggMax:
	default:
		return nil, &CompileError{
			Field:   "agg.fn",
			Message: fmt.Sprintf("invalid aggregate function %q", fn),
			Pos:     fnVal.Pos(),
		}
	}

	agg := &ast.Aggregator{Fn: aggFn}

	if targetVal := v.LookupPath(cue.ParsePath("target")); targetVal.Exists() {
		target, err := parseArgument(targetVal)
		if err != nil {
			return nil, err
		}
		agg.Target = target
	}
	if agg.Target == nil && aggFn != ast.AggCount {
		return nil, &CompileError{
			Field:   "agg.target",
			Message: fmt.Sprintf("aggregate %q requires a target", fn),
			Pos:     v.Pos(),
		}
	}

	patternVal := v.LookupPath(cue.ParsePath("pattern"))
	if !patternVal.Exists() {
		return nil, &CompileError{
			Field:   "agg.pattern",
			Message: "aggregator requires 'pattern' atom",
			Pos:     v.Pos(),
		}
	}
	pattern, err := parseAtom(patternVal)
	if err != nil {
		return nil, err
	}
	agg.Pattern = pattern

	return agg, nil
}

func validConstraintOp(op ast.ConstraintOp) bool {
	switch op {
	case ast.OpEQ, ast.OpNE, ast.OpLT, ast.OpLE, ast.OpGT, ast.OpGE:
		return true
	}
	return false
}
