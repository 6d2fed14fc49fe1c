// Package catalog provides durable storage for relation declarations.
// Uses SQLite with WAL mode for concurrent read access.
//
// A Catalog doubles as the translation context: it implements
// ast2ram.Context against an in-memory snapshot of the relations table, so
// reads during translation never touch the database and are safe under
// concurrency.
package catalog

import (
	"database/sql"
	_ "embed"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/quarrylang/quarry/internal/ast"
	"github.com/quarrylang/quarry/internal/ast2ram"
)

//go:embed schema.sql
var schemaSQL string

// Catalog stores relation declarations in a SQLite database and serves
// them as a translation context.
type Catalog struct {
	db *sql.DB

	mu   sync.RWMutex
	rels map[ast.QualifiedName]ast2ram.RelationInfo
}

// Open creates or opens a catalog database at the given path.
// Applies required pragmas and the schema, then loads the relation
// snapshot. Idempotent - safe to call multiple times on the same path.
func Open(path string) (*Catalog, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	c := &Catalog{db: db, rels: make(map[ast.QualifiedName]ast2ram.RelationInfo)}
	if err := c.load(); err != nil {
		db.Close()
		return nil, err
	}
	return c, nil
}

// Close closes the database connection.
func (c *Catalog) Close() error {
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}

// Declare inserts or updates a relation declaration. Declarations happen
// during program setup; translation afterwards only reads.
func (c *Catalog) Declare(info ast2ram.RelationInfo) error {
	if info.AuxArity > info.Arity {
		return fmt.Errorf("relation %s: aux arity %d exceeds arity %d",
			info.Name, info.AuxArity, info.Arity)
	}

	recursive := 0
	if info.Recursive {
		recursive = 1
	}
	_, err := c.db.Exec(`
		INSERT INTO relations (id, name, arity, aux_arity, recursive)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			arity = excluded.arity,
			aux_arity = excluded.aux_arity,
			recursive = excluded.recursive`,
		uuid.NewString(), info.Name.String(), info.Arity, info.AuxArity, recursive)
	if err != nil {
		return fmt.Errorf("failed to declare relation %s: %w", info.Name, err)
	}

	c.mu.Lock()
	c.rels[info.Name] = info
	c.mu.Unlock()
	return nil
}

// Relations returns all declared relations sorted by name.
func (c *Catalog) Relations() []ast2ram.RelationInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()

	infos := make([]ast2ram.RelationInfo, 0, len(c.rels))
	for _, info := range c.rels {
		infos = append(infos, info)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos
}

// load reads the relations table into the in-memory snapshot.
func (c *Catalog) load() error {
	rows, err := c.db.Query(`SELECT name, arity, aux_arity, recursive FROM relations`)
	if err != nil {
		return fmt.Errorf("failed to read relations: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		var arity, auxArity, recursive int
		if err := rows.Scan(&name, &arity, &auxArity, &recursive); err != nil {
			return fmt.Errorf("failed to scan relation row: %w", err)
		}
		c.rels[ast.QualifiedName(name)] = ast2ram.RelationInfo{
			Name:      ast.QualifiedName(name),
			Arity:     arity,
			AuxArity:  auxArity,
			Recursive: recursive != 0,
		}
	}
	return rows.Err()
}

// EvaluationArity implements ast2ram.Context.
func (c *Catalog) EvaluationArity(atom *ast.Atom) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.rels[atom.Relation].AuxArity
}

// Arity implements ast2ram.Context.
func (c *Catalog) Arity(name ast.QualifiedName) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.rels[name].Arity
}

// IsRecursive implements ast2ram.Context.
func (c *Catalog) IsRecursive(name ast.QualifiedName) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.rels[name].Recursive
}

// ConcreteName implements ast2ram.Context.
func (c *Catalog) ConcreteName(name ast.QualifiedName) string {
	return name.String()
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return nil
}
