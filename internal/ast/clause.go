package ast

// QualifiedName names a relation. Front-end qualification (dots) is already
// flattened into the string by the name-resolution pass.
type QualifiedName string

// String returns the name as written.
func (q QualifiedName) String() string { return string(q) }

// Literal represents one entry of a clause body.
//
// This is a sealed interface - only types in this package implement it.
// Body order is semantically significant: it fixes the nesting order of the
// scans the lowering pass generates.
//
// Literal types:
//   - Atom: positive relation membership
//   - Negation: negation-as-failure over an atom
//   - BinaryConstraint: comparison between two terms
type Literal interface {
	literalNode() // Marker method - seals interface to this package
}

// Atom is a relation name applied to a list of arguments.
type Atom struct {
	Relation QualifiedName
	Args     []Argument
}

func (*Atom) literalNode() {}

// Arity returns the number of arguments, auxiliary columns included.
func (a *Atom) Arity() int { return len(a.Args) }

// Negation is negation-as-failure: the enclosing clause branch survives only
// when no tuple of the atom's relation matches.
type Negation struct {
	Atom *Atom
}

func (*Negation) literalNode() {}

// ConstraintOp enumerates binary constraint operators.
type ConstraintOp string

const (
	OpEQ ConstraintOp = "="
	OpNE ConstraintOp = "!="
	OpLT ConstraintOp = "<"
	OpLE ConstraintOp = "<="
	OpGT ConstraintOp = ">"
	OpGE ConstraintOp = ">="
)

// BinaryConstraint compares two terms with a relational operator.
type BinaryConstraint struct {
	Op  ConstraintOp
	LHS Argument
	RHS Argument
}

func (*BinaryConstraint) literalNode() {}

// Clause is a fact or rule: a head atom plus an ordered body.
// Facts have an empty body.
type Clause struct {
	Head *Atom
	Body []Literal
}

// IsFact reports whether the clause has an empty body.
func (c *Clause) IsFact() bool { return len(c.Body) == 0 }

// IsRule reports whether the clause has at least one body literal.
func (c *Clause) IsRule() bool { return len(c.Body) > 0 }

// PositiveAtoms returns the positive body atoms in body order.
func (c *Clause) PositiveAtoms() []*Atom {
	var atoms []*Atom
	for _, lit := range c.Body {
		if atom, ok := lit.(*Atom); ok {
			atoms = append(atoms, atom)
		}
	}
	return atoms
}
