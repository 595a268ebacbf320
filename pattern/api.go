// SPDX-License-Identifier: MIT
// Package pattern: public contract.
//
// Purpose:
//   - Declare the Pattern interface shared by all variants.
//   - Define the Value alias for folded values and the functional fold
//     options (documented defaults live next to the option constructors).
//   - Centralize error wrapping so all variants expose uniform surfaces.

package pattern

import "fmt"

// Value is a folded (structured) value. Each pattern variant documents its
// concrete folded type:
//
//	NumericArrayPattern → *Array
//	SimplexPattern      → []float64
//	PSDMatrixPattern    → *mat.SymDense
//	Dict                → map[string]Value
//	PatternArray        → []Value (row-major outer order)
//
// Boolean masks produced by EmptyBool mirror the same structure with
// *BoolArray / []bool leaves.
type Value interface{}

// Pattern is a bijection between a folded value and its flat vector forms,
// plus the validation rules that define the folded domain.
//
// Invariants (within floating-point tolerance for free mode, exactly for
// plain mode):
//
//	Fold(Flatten(x, free), free) == x     for every valid folded x
//	Flatten(Fold(v, true), true) == v     for every finite free vector v
//
// The second invariant is what makes free mode safe for optimizers: there
// are no invalid points in ℝ^FlatLength(true).
//
// Patterns are immutable and safe for concurrent use.
type Pattern interface {
	// FlatLength reports the flat vector length for the given mode.
	FlatLength(free bool) int

	// Flatten maps a folded value to its flat form. The folded value is
	// always validated (shape and domain) before flattening; free mode
	// additionally requires the value to lie in the interior of the
	// constrained set where the unconstraining map is defined.
	Flatten(v Value, free bool) ([]float64, error)

	// Fold is the inverse of Flatten. The flat length check is
	// unconditional; the domain check on the reconstructed value runs
	// unless SkipValidation is passed (free mode needs no domain check:
	// the transform is total by construction).
	Fold(flat []float64, free bool, opts ...FoldOption) (Value, error)

	// ValidateFolded reports whether v is a valid instance of the pattern
	// together with a human-readable diagnostic (empty when valid). It
	// never returns an error value; use it for non-throwing checks.
	ValidateFolded(v Value) (bool, string)

	// EmptyBool constructs a folded-shaped boolean container with every
	// position set to def, for building masks over structured values.
	EmptyBool(def bool) Value

	// FlatIndices maps a folded-shaped boolean mask to the flat indices
	// (in the chosen mode) whose structural positions are marked true.
	// Element-separable modes map positions one-to-one; entangled free
	// modes (simplex, PSD) return the pattern's whole free range when any
	// position is marked. Composites recurse, offsetting each sub-segment.
	FlatIndices(mask Value, free bool) ([]int, error)

	// Random produces a random valid folded instance, respecting the
	// pattern's domain constraints. Intended for tests and initialization.
	Random() Value
}

// FoldOption configures a single Fold call.
type FoldOption func(*foldConfig)

// foldConfig carries per-call fold state; fields are unexported and
// gathered via gatherFoldOptions to enforce invariants in one place.
type foldConfig struct {
	skipValidation bool
}

// SkipValidation disables the domain check on the folded value, for
// performance-sensitive inner loops where the caller guarantees validity
// out-of-band. Length checks still run: a length mismatch is never
// suppressed.
func SkipValidation() FoldOption {
	return func(c *foldConfig) { c.skipValidation = true }
}

// gatherFoldOptions applies opts over the documented defaults.
func gatherFoldOptions(opts []FoldOption) foldConfig {
	var cfg foldConfig // zero value == validate
	for _, o := range opts {
		o(&cfg)
	}

	return cfg
}

// Operation name constants for unified error wrapping and reducing magic
// strings.
const (
	opFlatten     = "Flatten"
	opFold        = "Fold"
	opFlatIndices = "FlatIndices"
)

// patternErrorf wraps err with an operation tag, preserving the original
// error via %w so callers can still match sentinels with errors.Is.
// Use only when err != nil.
func patternErrorf(tag string, err error) error {
	return fmt.Errorf("%s: %w", tag, err)
}

// domainErrorf builds an ErrDomain (or ErrShape) violation with the
// human-readable diagnostic produced by a validator, keeping a stable
// "Op: sentinel: detail" shape for uniform reporting.
func domainErrorf(tag string, sentinel error, msg string) error {
	return fmt.Errorf("%s: %w: %s", tag, sentinel, msg)
}

// checkFlatLen enforces the unconditional flat-length contract.
func checkFlatLen(tag string, got, want int) error {
	if got != want {
		return fmt.Errorf("%s: %w: expected %d, got %d", tag, ErrLength, want, got)
	}

	return nil
}
