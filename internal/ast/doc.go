// Package ast defines the clause-level abstract syntax tree consumed by the
// lowering pass.
//
// This package contains type definitions only. All other internal packages
// import ast; ast imports nothing internal. Clauses are immutable inputs:
// the translator reads them and never mutates them.
//
// The AST is already normalized by the (external) front end: positive body
// atoms carry only variables, unnamed variables, and constants as arguments;
// functors and aggregators appear in heads and binary constraints.
package ast
