package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClause_FactAndRule(t *testing.T) {
	fact := &Clause{Head: &Atom{Relation: "edge", Args: []Argument{
		&NumberConstant{Value: 1},
		&NumberConstant{Value: 2},
	}}}
	assert.True(t, fact.IsFact())
	assert.False(t, fact.IsRule())

	rule := &Clause{
		Head: &Atom{Relation: "path", Args: []Argument{&Variable{Name: "X"}}},
		Body: []Literal{&Atom{Relation: "edge", Args: []Argument{&Variable{Name: "X"}}}},
	}
	assert.False(t, rule.IsFact())
	assert.True(t, rule.IsRule())
}

func TestClause_PositiveAtoms(t *testing.T) {
	edge := &Atom{Relation: "edge"}
	path := &Atom{Relation: "path"}
	clause := &Clause{
		Head: &Atom{Relation: "path"},
		Body: []Literal{
			edge,
			&Negation{Atom: &Atom{Relation: "blocked"}},
			&BinaryConstraint{Op: OpLT, LHS: &Variable{Name: "X"}, RHS: &NumberConstant{Value: 9}},
			path,
		},
	}

	assert.Equal(t, []*Atom{edge, path}, clause.PositiveAtoms())
	assert.Empty(t, (&Clause{Head: edge}).PositiveAtoms())
}

func TestAtom_Arity(t *testing.T) {
	assert.Equal(t, 0, (&Atom{Relation: "done"}).Arity())
	assert.Equal(t, 2, (&Atom{Relation: "edge", Args: []Argument{
		&Variable{Name: "X"}, &UnnamedVariable{},
	}}).Arity())
}
