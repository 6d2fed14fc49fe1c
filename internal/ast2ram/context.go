package ast2ram

import "github.com/quarrylang/quarry/internal/ast"

// Context supplies per-relation metadata computed by the upstream analysis
// passes (type analysis, stratification, schema computation). It is consumed
// read-only; implementations must allow safe concurrent reads.
type Context interface {
	// EvaluationArity returns the number of trailing auxiliary
	// (provenance bookkeeping) columns of the atom's relation.
	EvaluationArity(atom *ast.Atom) int

	// Arity returns the declared arity of the relation, auxiliary
	// columns included.
	Arity(name ast.QualifiedName) int

	// IsRecursive reports whether the relation participates in a
	// recursive clique.
	IsRecursive(name ast.QualifiedName) bool

	// ConcreteName resolves a qualified relation name to the concrete
	// name used in the operation tree.
	ConcreteName(name ast.QualifiedName) string
}

// RelationInfo describes one relation for a StaticContext.
type RelationInfo struct {
	Name      ast.QualifiedName
	Arity     int
	AuxArity  int
	Recursive bool
}

// StaticContext is a Context backed by an in-memory relation table.
// Construction is the only mutation; afterwards it is safe for concurrent
// readers.
type StaticContext struct {
	rels map[ast.QualifiedName]RelationInfo
}

// NewStaticContext builds a context from relation descriptions.
func NewStaticContext(infos ...RelationInfo) *StaticContext {
	rels := make(map[ast.QualifiedName]RelationInfo, len(infos))
	for _, info := range infos {
		rels[info.Name] = info
	}
	return &StaticContext{rels: rels}
}

// EvaluationArity implements Context.
func (c *StaticContext) EvaluationArity(atom *ast.Atom) int {
	return c.rels[atom.Relation].AuxArity
}

// Arity implements Context.
func (c *StaticContext) Arity(name ast.QualifiedName) int {
	return c.rels[name].Arity
}

// IsRecursive implements Context.
func (c *StaticContext) IsRecursive(name ast.QualifiedName) bool {
	return c.rels[name].Recursive
}

// ConcreteName implements Context.
func (c *StaticContext) ConcreteName(name ast.QualifiedName) string {
	return name.String()
}
