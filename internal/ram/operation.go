package ram

// AggregateFn enumerates aggregate functions at the RAM level.
type AggregateFn string

const (
	AggCount AggregateFn = "count"
	AggSum   AggregateFn = "sum"
	AggMin   AggregateFn = "min"
	AggMax   AggregateFn = "max"
)

// Operation represents one level of the nested operation tree.
//
// This is a sealed interface - only types in this package implement it.
// Trees are built bottom-up and are immutable once returned: wrapping an
// operation transfers ownership of the wrapped node to the new tree.
type Operation interface {
	opNode() // Marker method - seals interface to this package
}

// Scan iterates all tuples of Relation, introducing tuple level Tuple for
// the enclosed Body.
type Scan struct {
	Relation string
	Tuple    int
	Body     Operation
}

func (*Scan) opNode() {}

// Filter evaluates Body only when Cond holds.
type Filter struct {
	Cond Condition
	Body Operation
}

func (*Filter) opNode() {}

// Aggregate evaluates Fn over the tuples of Relation satisfying Cond and
// introduces tuple level Tuple whose element 0 carries the result. Expr is
// the aggregated expression; it is nil for count.
type Aggregate struct {
	Tuple    int
	Fn       AggregateFn
	Relation string
	Expr     Expression
	Cond     Condition
	Body     Operation
}

func (*Aggregate) opNode() {}

// Project inserts the tuple formed by Values into Relation. Always the
// innermost node of an insertion query; value order matches the relation's
// column order exactly.
type Project struct {
	Relation string
	Values   []Expression
}

func (*Project) opNode() {}

// SubroutineReturn yields Values to the caller of a subroutine query.
// Value order is significant and preserved verbatim downstream.
type SubroutineReturn struct {
	Values []Expression
}

func (*SubroutineReturn) opNode() {}

// Query is the statement-level wrapper around a completed operation tree.
// One Query is produced per (clause, version) translation.
type Query struct {
	Op Operation
}
