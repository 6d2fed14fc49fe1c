// Package symtab provides the symbol table: a process-wide interning service
// mapping string constants to stable indices. Lowering emits an interned
// string as the signed constant carrying its index.
package symtab

import "sync"

// Table interns strings to dense indices. Safe for concurrent use: the
// lowering pass may translate independent clauses in parallel against one
// shared table.
type Table struct {
	mu      sync.RWMutex
	indexOf map[string]int
	names   []string
}

// New creates an empty symbol table.
func New() *Table {
	return &Table{indexOf: make(map[string]int)}
}

// Intern returns the index of s, inserting it on first sight.
// Indices are assigned densely in insertion order and never change.
func (t *Table) Intern(s string) int {
	t.mu.RLock()
	idx, ok := t.indexOf[s]
	t.mu.RUnlock()
	if ok {
		return idx
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	// Double-check: another goroutine may have inserted between locks.
	if idx, ok := t.indexOf[s]; ok {
		return idx
	}
	idx = len(t.names)
	t.indexOf[s] = idx
	t.names = append(t.names, s)
	return idx
}

// Resolve returns the string at the given index.
func (t *Table) Resolve(idx int) (string, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if idx < 0 || idx >= len(t.names) {
		return "", false
	}
	return t.names[idx], true
}

// Len returns the number of interned symbols.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.names)
}
