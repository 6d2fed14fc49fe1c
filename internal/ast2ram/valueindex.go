package ast2ram

import (
	"fmt"

	"github.com/quarrylang/quarry/internal/ast"
)

// invariant panics when an internal-consistency condition does not hold.
// Violations indicate a bug in an upstream pass and abort the compilation;
// they are never caught or downgraded.
func invariant(cond bool, format string, args ...any) {
	if !cond {
		panic("ast2ram: " + fmt.Sprintf(format, args...))
	}
}

// Location identifies where a value becomes available in the operation tree
// under construction: element Element of the tuple introduced at nesting
// level Tuple.
type Location struct {
	Tuple   int
	Element int
}

// ValueIndex maps logical values to their producing locations. One index is
// built per clause-translation invocation, scoped to that invocation, and
// discarded afterwards. It has no visibility into the operation tree itself.
//
// Each variable is bound exactly once, at its first appearance in
// body-literal order; repeated occurrences become equality constraints in
// the translator, never rebindings. Generator results are keyed by the
// aggregator node's identity.
type ValueIndex struct {
	vars       map[string]Location
	generators map[*ast.Aggregator]int
}

// NewValueIndex creates an empty index.
func NewValueIndex() *ValueIndex {
	return &ValueIndex{
		vars:       make(map[string]Location),
		generators: make(map[*ast.Aggregator]int),
	}
}

// Defined reports whether the variable has a binding.
func (ix *ValueIndex) Defined(name string) bool {
	_, ok := ix.vars[name]
	return ok
}

// Bind records the first-seen binding of a variable. Rebinding is an
// internal-consistency violation.
func (ix *ValueIndex) Bind(name string, loc Location) {
	_, bound := ix.vars[name]
	invariant(!bound, "variable %q bound twice", name)
	ix.vars[name] = loc
}

// Lookup returns the binding location of a variable. Looking up an unbound
// variable is an internal-consistency violation: every occurrence must have
// been indexed before lowering reaches it.
func (ix *ValueIndex) Lookup(name string) Location {
	loc, ok := ix.vars[name]
	invariant(ok, "unbound variable %q", name)
	return loc
}

// BindGenerator records the tuple level at which a generator's result
// becomes available (element 0 of that tuple).
func (ix *ValueIndex) BindGenerator(gen *ast.Aggregator, tuple int) {
	_, bound := ix.generators[gen]
	invariant(!bound, "generator bound twice")
	ix.generators[gen] = tuple
}

// GeneratorTuple returns the tuple level of a generator's result.
func (ix *ValueIndex) GeneratorTuple(gen *ast.Aggregator) int {
	tuple, ok := ix.generators[gen]
	invariant(ok, "unbound generator")
	return tuple
}
