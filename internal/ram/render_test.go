package ram

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	q := &Query{Op: &Scan{
		Relation: "edge",
		Tuple:    0,
		Body: &Scan{
			Relation: "node",
			Tuple:    1,
			Body: &Filter{
				Cond: &Constraint{
					Op:  BinEQ,
					LHS: &TupleElement{Tuple: 0, Element: 1},
					RHS: &TupleElement{Tuple: 1, Element: 0},
				},
				Body: &Project{
					Relation: "path",
					Values: []Expression{
						&TupleElement{Tuple: 0, Element: 0},
						&TupleElement{Tuple: 1, Element: 0},
					},
				},
			},
		},
	}}

	expected := `QUERY
  FOR t0 IN edge
    FOR t1 IN node
      IF t0.1 = t1.0
        INSERT (t0.0, t1.0) INTO path
`
	assert.Equal(t, expected, Render(q))
}

func TestRender_ConditionsAndReturn(t *testing.T) {
	q := &Query{Op: &Filter{
		Cond: &Negation{Cond: &ProvenanceExistenceCheck{
			Relation: "path",
			Values: []Expression{
				&TupleElement{Tuple: 0, Element: 0},
				&UndefValue{},
				&SignedConstant{Value: -1},
			},
		}},
		Body: &Filter{
			Cond: &Conjunction{
				LHS: &EmptinessCheck{Relation: "done"},
				RHS: &ExistenceCheck{
					Relation: "edge",
					Values:   []Expression{&SignedConstant{Value: 3}},
				},
			},
			Body: &SubroutineReturn{Values: []Expression{
				&IntrinsicOp{Op: "+", Args: []Expression{
					&TupleElement{Tuple: 0, Element: 0},
					&SignedConstant{Value: 1},
				}},
			}},
		},
	}}

	expected := `QUERY
  IF NOT (t0.0, _, -1) PROV-IN path
    IF (EMPTY done AND (3) IN edge)
      RETURN ((+ t0.0, 1))
`
	assert.Equal(t, expected, Render(q))
}

func TestRender_Aggregate(t *testing.T) {
	count := &Query{Op: &Aggregate{
		Tuple:    0,
		Fn:       AggCount,
		Relation: "s",
		Body: &Project{
			Relation: "total",
			Values:   []Expression{&TupleElement{Tuple: 0, Element: 0}},
		},
	}}
	assert.Equal(t, `QUERY
  t0.0 = count FOR t0 IN s
    INSERT (t0.0) INTO total
`, Render(count))

	sum := &Query{Op: &Aggregate{
		Tuple:    1,
		Fn:       AggSum,
		Relation: "order",
		Expr:     &TupleElement{Tuple: 1, Element: 1},
		Cond: &Constraint{
			Op:  BinEQ,
			LHS: &TupleElement{Tuple: 1, Element: 0},
			RHS: &TupleElement{Tuple: 0, Element: 0},
		},
		Body: &SubroutineReturn{},
	}}
	assert.Equal(t, `QUERY
  t1.0 = sum t1.1 FOR t1 IN order IF t1.0 = t0.0
    RETURN ()
`, Render(sum))
}

func TestRender_Deterministic(t *testing.T) {
	q := &Query{Op: &Project{
		Relation: "r",
		Values:   []Expression{&SignedConstant{Value: 1}, &UndefValue{}},
	}}

	first := Render(q)
	for i := 0; i < 10; i++ {
		require.Equal(t, first, Render(q))
	}
}
