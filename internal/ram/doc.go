// Package ram defines the relational-abstract-machine operation tree: the
// intermediate representation produced by the lowering pass and consumed by
// the code generator.
//
// Three sealed node families (marker-method pattern):
//
//   - Expression: values read inside an operation (tuple elements, signed
//     constants, the undefined value, intrinsic function applications)
//   - Condition: boolean tests (constraints, existence checks, negation)
//   - Operation: nested control structure (scan, filter, aggregate, project,
//     subroutine return)
//
// A Query wraps the outermost operation and is the unit handed downstream.
//
// Field order inside every node is part of the wire contract with the code
// generator: value lists are emitted and must be consumed in exactly the
// order produced. Render and Fingerprint preserve that order.
package ram
