package ast

// Argument represents a term appearing in an atom, constraint, or head.
//
// This is a sealed interface - only types in this package implement it.
// The marker method pattern prevents external implementations and enables
// exhaustive type switches in the lowering pass.
type Argument interface {
	argNode() // Marker method - seals interface to this package
}

// Variable is a named logic variable.
//
// Identity is by name within one clause: every occurrence of the same name
// in a clause denotes the same variable.
type Variable struct {
	Name string
}

func (*Variable) argNode() {}

// UnnamedVariable is the wildcard "_". Each occurrence is distinct and
// never binds anything.
type UnnamedVariable struct{}

func (*UnnamedVariable) argNode() {}

// NumberConstant is a signed integer literal. Always int64, never float.
type NumberConstant struct {
	Value int64
}

func (*NumberConstant) argNode() {}

// StringConstant is a string literal. Lowering interns it through the
// symbol table and emits its index.
type StringConstant struct {
	Value string
}

func (*StringConstant) argNode() {}

// IntrinsicFunctor is a function application over arguments, e.g. X+1.
// Op is the intrinsic's name ("+", "-", "*", "cat", ...).
type IntrinsicFunctor struct {
	Op   string
	Args []Argument
}

func (*IntrinsicFunctor) argNode() {}

// AggregateFn enumerates the supported aggregate functions.
type AggregateFn string

const (
	AggCount AggregateFn = "count"
	AggSum   AggregateFn = "sum"
	AggMin   AggregateFn = "min"
	AggMax   AggregateFn = "max"
)

// Aggregator is a generator term: it evaluates an aggregate function over
// the tuples matching a single-atom pattern and yields one value.
//
// Target is the aggregated expression (nil for count). Pattern is the atom
// whose matching tuples feed the aggregate; variables first seen inside the
// pattern are local to the generator.
//
// Aggregators appear as the right-hand side of an equality constraint in a
// clause body. Pointer identity is significant: the value-location index
// keys generator bindings by the *Aggregator itself.
type Aggregator struct {
	Fn      AggregateFn
	Target  Argument
	Pattern *Atom
}

func (*Aggregator) argNode() {}
