// Package ast2ram lowers clauses into RAM operation trees.
//
// Translation of one clause is a single linear pass over the body literals
// with one pre-pass (value indexing) and a bottom-up composition: the head
// action sits innermost, and each body literal wraps it moving from the last
// literal to the first, so the first literal becomes the outermost loop.
// For recursive rules a version number selects which single recursive
// positive body atom is matched against the delta relation, realizing
// semi-naive evaluation across the version set.
//
// Two translator configurations exist: the plain translator emits insertion
// queries, the provenance translator emits value-return subroutines and
// provenance-aware existence checks. The difference is an explicit strategy
// supplied at construction, not a process-global flag.
//
// There are no user-facing errors at this layer. Malformed programs are
// rejected by the upstream analysis passes; anything that still goes wrong
// here (an unbound variable, a fact routed through rule translation,
// auxiliary arity exceeding an atom's arity) is an internal-consistency
// violation and panics, aborting the compilation.
//
// Each translation invocation builds its own value-location index, so
// independent (clause, version) pairs may be translated concurrently as
// long as the shared Context is read-only for the duration.
package ast2ram
