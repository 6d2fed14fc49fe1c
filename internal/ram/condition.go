package ram

// Condition represents a boolean test evaluated by a Filter or an Aggregate.
//
// This is a sealed interface - only types in this package implement it.
type Condition interface {
	condNode() // Marker method - seals interface to this package
}

// BinaryOp enumerates constraint operators at the RAM level. Values mirror
// the source-level operators one to one.
type BinaryOp string

const (
	BinEQ BinaryOp = "="
	BinNE BinaryOp = "!="
	BinLT BinaryOp = "<"
	BinLE BinaryOp = "<="
	BinGT BinaryOp = ">"
	BinGE BinaryOp = ">="
)

// Constraint compares two expressions.
type Constraint struct {
	Op  BinaryOp
	LHS Expression
	RHS Expression
}

func (*Constraint) condNode() {}

// Negation inverts a condition.
type Negation struct {
	Cond Condition
}

func (*Negation) condNode() {}

// Conjunction is the logical AND of two conditions.
type Conjunction struct {
	LHS Condition
	RHS Condition
}

func (*Conjunction) condNode() {}

// ExistenceCheck tests whether a tuple matching Values exists in Relation.
// An UndefValue entry leaves the corresponding column unconstrained.
// Values length always equals the relation's arity.
type ExistenceCheck struct {
	Relation string
	Values   []Expression
}

func (*ExistenceCheck) condNode() {}

// ProvenanceExistenceCheck is the provenance-aware variant of
// ExistenceCheck: the rule-number column is unconstrained and height
// columns participate in the minimality comparison instead of plain
// equality. The code generator treats the two node kinds differently;
// the translator only fixes the value layout.
type ProvenanceExistenceCheck struct {
	Relation string
	Values   []Expression
}

func (*ProvenanceExistenceCheck) condNode() {}

// EmptinessCheck tests whether Relation holds no tuples. Used to guard
// nullary-head insertions so a proposition is derived at most once.
type EmptinessCheck struct {
	Relation string
}

func (*EmptinessCheck) condNode() {}
