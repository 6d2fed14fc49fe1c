package catalog

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quarrylang/quarry/internal/ast"
	"github.com/quarrylang/quarry/internal/ast2ram"
)

func openTestCatalog(t *testing.T, path string) *Catalog {
	t.Helper()
	c, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestDeclareAndContext(t *testing.T) {
	c := openTestCatalog(t, filepath.Join(t.TempDir(), "catalog.db"))

	require.NoError(t, c.Declare(ast2ram.RelationInfo{Name: "edge", Arity: 2}))
	require.NoError(t, c.Declare(ast2ram.RelationInfo{
		Name: "path", Arity: 4, AuxArity: 2, Recursive: true,
	}))

	assert.Equal(t, 2, c.Arity("edge"))
	assert.Equal(t, 4, c.Arity("path"))
	assert.False(t, c.IsRecursive("edge"))
	assert.True(t, c.IsRecursive("path"))
	assert.Equal(t, "path", c.ConcreteName("path"))
	assert.Equal(t, 2, c.EvaluationArity(&ast.Atom{Relation: "path"}))
	assert.Equal(t, 0, c.EvaluationArity(&ast.Atom{Relation: "edge"}))
}

func TestDeclare_Upsert(t *testing.T) {
	c := openTestCatalog(t, filepath.Join(t.TempDir(), "catalog.db"))

	require.NoError(t, c.Declare(ast2ram.RelationInfo{Name: "edge", Arity: 2}))
	require.NoError(t, c.Declare(ast2ram.RelationInfo{Name: "edge", Arity: 3}))

	assert.Equal(t, 3, c.Arity("edge"))
	assert.Len(t, c.Relations(), 1)
}

func TestDeclare_AuxArityExceedsArity(t *testing.T) {
	c := openTestCatalog(t, filepath.Join(t.TempDir(), "catalog.db"))

	err := c.Declare(ast2ram.RelationInfo{Name: "bad", Arity: 2, AuxArity: 3})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "aux arity")
}

func TestOpen_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.db")

	c := openTestCatalog(t, path)
	require.NoError(t, c.Declare(ast2ram.RelationInfo{
		Name: "path", Arity: 2, Recursive: true,
	}))
	require.NoError(t, c.Close())

	reopened := openTestCatalog(t, path)
	assert.Equal(t, 2, reopened.Arity("path"))
	assert.True(t, reopened.IsRecursive("path"))
}

func TestRelations_SortedByName(t *testing.T) {
	c := openTestCatalog(t, filepath.Join(t.TempDir(), "catalog.db"))

	for _, name := range []ast.QualifiedName{"zeta", "alpha", "mid"} {
		require.NoError(t, c.Declare(ast2ram.RelationInfo{Name: name, Arity: 1}))
	}

	var names []ast.QualifiedName
	for _, info := range c.Relations() {
		names = append(names, info.Name)
	}
	assert.Equal(t, []ast.QualifiedName{"alpha", "mid", "zeta"}, names)
}

func TestCatalog_ServesAsTranslationContext(t *testing.T) {
	c := openTestCatalog(t, filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, c.Declare(ast2ram.RelationInfo{Name: "edge", Arity: 2}))

	var _ ast2ram.Context = c
}
