// Package pattern defines bijections between structured, constrained
// numeric values ("folded" values) and their flat vector representations.
//
// The pattern package provides:
//
//   - NumericArrayPattern for dense arrays with optional element-wise
//     bounds (log / logit free maps).
//   - SimplexPattern for probability vectors (softmax free map).
//   - PSDMatrixPattern for symmetric positive semi-definite matrices
//     (log-Cholesky free map).
//   - Dict and PatternArray composites that concatenate sub-patterns in a
//     fixed, deterministic flat layout.
//
// Every pattern supports two flat modes. The plain mode (free=false) is a
// direct reshape of the folded entries; it is exact but shape- and
// constraint-checked. The free mode (free=true) is an unconstraining
// bijection: every finite flat vector folds to a valid value, which is what
// optimizers and differentiation engines want to walk on.
//
// Patterns are immutable once constructed and stateless across calls; the
// same pattern value may be shared by any number of goroutines.
//
// See the examples in this package and blockhess for usage patterns.
package pattern
