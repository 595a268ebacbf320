// SPDX-License-Identifier: MIT
// Package pattern: sentinel error set (unified, consistent).
// This file defines ONLY package-level sentinel errors used across the
// pattern package. All operations MUST return these sentinels and tests MUST
// check them via errors.Is. No operation panics on user-triggered error
// conditions; panics are reserved for programmer errors in private helpers.

package pattern

import "errors"

// NOTE ON NAMING & PREFIXING
// --------------------------
// Every message is prefixed with "pattern: ..." for consistency and to allow
// easy grepping across logs. DO NOT %w wrap these sentinels when returning
// directly; if context is essential, wrap with fmt.Errorf("ctx: %w", ErrX)
// at the outer boundary — callers will still use errors.Is to match.
//
// ERROR PRIORITY (documented, enforced in tests):
// construction -> type -> length -> shape -> domain.
// Length errors are fatal and never suppressed by SkipValidation.

var (
	// ErrBadPattern is returned when construction parameters are invalid
	// (non-positive dimensions, lb >= ub, duplicate dict names, nil
	// sub-patterns). Constructors must validate before allocation.
	ErrBadPattern = errors.New("pattern: invalid pattern construction")

	// ErrType indicates a folded value (or boolean mask) whose dynamic type
	// does not match the pattern variant, e.g. a []float64 handed to a
	// PSDMatrixPattern.
	ErrType = errors.New("pattern: folded value has unexpected dynamic type")

	// ErrLength indicates that a flat vector's length does not match the
	// pattern's declared flat length for the requested mode. This check is
	// unconditional: SkipValidation never suppresses it.
	ErrLength = errors.New("pattern: flat vector length mismatch")

	// ErrShape indicates a folded value with the right type but the wrong
	// shape (array shape mismatch, wrong matrix size, wrong simplex length,
	// missing or extra dict keys).
	ErrShape = errors.New("pattern: folded value has wrong shape")

	// ErrDomain indicates a folded value violating a pattern's domain
	// constraint (entry outside bounds, simplex not summing to one,
	// asymmetry, diagonal beneath its lower bound). The wrapped message
	// names the violated constraint and its bound.
	ErrDomain = errors.New("pattern: folded value violates a domain constraint")

	// ErrNotPositiveDefinite is returned by the free flatten of a PSD
	// pattern when the Cholesky factorization fails, i.e. the matrix is not
	// positive definite within tolerance. The free fold never returns it:
	// the free transform is total on finite inputs.
	ErrNotPositiveDefinite = errors.New("pattern: matrix is not positive definite within tolerance")
)
