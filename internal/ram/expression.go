package ram

// Expression represents a value computed inside an operation.
//
// This is a sealed interface - only types in this package implement it.
type Expression interface {
	exprNode() // Marker method - seals interface to this package
}

// TupleElement reads element Element of the tuple introduced at nesting
// level Tuple (by a Scan or an Aggregate).
type TupleElement struct {
	Tuple   int
	Element int
}

func (*TupleElement) exprNode() {}

// SignedConstant is a literal int64. String constants are represented by
// their interned symbol index, so every constant at this level is signed.
type SignedConstant struct {
	Value int64
}

func (*SignedConstant) exprNode() {}

// UndefValue is the unconstrained "don't care" value. Existence checks use
// it to leave a column unconstrained; it never appears in projected tuples.
type UndefValue struct{}

func (*UndefValue) exprNode() {}

// IntrinsicOp applies an intrinsic operator to argument expressions.
type IntrinsicOp struct {
	Op   string
	Args []Expression
}

func (*IntrinsicOp) exprNode() {}
