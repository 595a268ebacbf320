// SPDX-License-Identifier: MIT
// Package pattern: NumericArrayPattern — dense arrays with optional bounds.
//
// Free transform (element-wise, per bound configuration):
//
//	(-∞, +∞) : identity
//	[lb, +∞) : v = log(x − lb)        x = exp(v) + lb
//	(-∞, ub] : v = −log(ub − x)       x = ub − exp(−v)
//	[lb, ub] : v = log(x−lb)−log(ub−x) x = lb + (ub−lb)·σ(v)
//
// Every finite v maps into the (closure of the) bounded interval, so the
// free fold is total; flatten requires interior points where a log is taken.

package pattern

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// NumericArrayPattern is a pattern for (optionally bounded) dense arrays.
// Folded values are *Array; both flat modes have length prod(shape).
type NumericArrayPattern struct {
	shape []int
	size  int
	lb    float64
	ub    float64
}

// NumericArrayOption configures NumericArrayPattern construction.
type NumericArrayOption func(*numericArrayConfig)

type numericArrayConfig struct {
	lb float64
	ub float64
}

// WithBounds sets inclusive element-wise bounds. Either side may be
// infinite; lb must be strictly less than ub.
func WithBounds(lb, ub float64) NumericArrayOption {
	return func(c *numericArrayConfig) {
		c.lb = lb
		c.ub = ub
	}
}

// NewNumericArray builds a pattern for arrays of the given shape.
//
// Inputs:
//   - shape: dimensions of the folded array; every entry must be > 0.
//   - opts:  WithBounds for element-wise constraints (default unbounded).
//
// Errors: ErrBadPattern on empty/non-positive shape, lb >= ub, or NaN bound.
// Complexity: O(len(shape)).
func NewNumericArray(shape []int, opts ...NumericArrayOption) (*NumericArrayPattern, error) {
	n, err := sizeOfShape(shape)
	if err != nil {
		return nil, err
	}
	cfg := numericArrayConfig{lb: math.Inf(-1), ub: math.Inf(1)}
	for _, o := range opts {
		o(&cfg)
	}
	if math.IsNaN(cfg.lb) || math.IsNaN(cfg.ub) {
		return nil, fmt.Errorf("NewNumericArray: %w: NaN bound", ErrBadPattern)
	}
	if cfg.lb >= cfg.ub {
		return nil, fmt.Errorf("NewNumericArray: %w: lower bound %g must be strictly less than upper bound %g",
			ErrBadPattern, cfg.lb, cfg.ub)
	}

	return &NumericArrayPattern{shape: cloneInts(shape), size: n, lb: cfg.lb, ub: cfg.ub}, nil
}

// Shape returns a copy of the folded array shape.
func (p *NumericArrayPattern) Shape() []int { return cloneInts(p.shape) }

// Bounds returns the configured element-wise bounds.
func (p *NumericArrayPattern) Bounds() (lb, ub float64) { return p.lb, p.ub }

// FlatLength reports prod(shape) for both modes: the bound transforms are
// element-wise bijections, so the free length equals the plain length.
func (p *NumericArrayPattern) FlatLength(free bool) int { return p.size }

// ValidateFolded checks the dynamic type, the shape, and the bounds.
// It never returns an error value; the diagnostic is empty when valid.
func (p *NumericArrayPattern) ValidateFolded(v Value) (bool, string) {
	arr, ok := v.(*Array)
	if !ok {
		return false, fmt.Sprintf("expected *pattern.Array, got %T", v)
	}
	if !shapesEqual(arr.shape, p.shape) {
		return false, fmt.Sprintf("wrong shape for array: expected %v, got %v", p.shape, arr.shape)
	}
	for i, x := range arr.data {
		if x < p.lb {
			return false, fmt.Sprintf("entry %g at flat position %d beneath lower bound %g", x, i, p.lb)
		}
		if x > p.ub {
			return false, fmt.Sprintf("entry %g at flat position %d above upper bound %g", x, i, p.ub)
		}
	}

	return true, ""
}

// Flatten maps a folded array to its flat form. The folded value is always
// validated first; free mode applies the unconstraining map element-wise.
func (p *NumericArrayPattern) Flatten(v Value, free bool) ([]float64, error) {
	if ok, msg := p.ValidateFolded(v); !ok {
		return nil, domainErrorf(opFlatten, validationSentinel(v, msg), msg)
	}
	arr := v.(*Array)
	out := make([]float64, p.size)
	if !free {
		copy(out, arr.data)

		return out, nil
	}
	for i, x := range arr.data {
		out[i] = p.unconstrain(x)
	}

	return out, nil
}

// Fold reconstructs a folded array from flat. The length check is
// unconditional; in plain mode the bounds check runs unless skipped.
func (p *NumericArrayPattern) Fold(flat []float64, free bool, opts ...FoldOption) (Value, error) {
	if err := checkFlatLen(opFold, len(flat), p.size); err != nil {
		return nil, err
	}
	cfg := gatherFoldOptions(opts)

	data := make([]float64, p.size)
	if free {
		// Total on finite inputs: nothing further to validate.
		for i, v := range flat {
			data[i] = p.constrain(v)
		}

		return &Array{shape: cloneInts(p.shape), data: data}, nil
	}

	copy(data, flat)
	arr := &Array{shape: cloneInts(p.shape), data: data}
	if !cfg.skipValidation {
		if ok, msg := p.ValidateFolded(arr); !ok {
			return nil, domainErrorf(opFold, ErrDomain, msg)
		}
	}

	return arr, nil
}

// EmptyBool returns a *BoolArray of the folded shape filled with def.
func (p *NumericArrayPattern) EmptyBool(def bool) Value {
	b, err := NewBoolArray(p.shape, def)
	if err != nil {
		// The shape was validated at construction; reaching here is a bug.
		panic(err)
	}

	return b
}

// FlatIndices maps marked positions one-to-one onto flat coordinates; the
// element-wise transforms keep the correspondence in both modes.
func (p *NumericArrayPattern) FlatIndices(mask Value, free bool) ([]int, error) {
	b, ok := mask.(*BoolArray)
	if !ok {
		return nil, domainErrorf(opFlatIndices, ErrType,
			fmt.Sprintf("expected *pattern.BoolArray, got %T", mask))
	}
	if !shapesEqual(b.shape, p.shape) {
		return nil, domainErrorf(opFlatIndices, ErrShape,
			fmt.Sprintf("wrong mask shape: expected %v, got %v", p.shape, b.shape))
	}
	var idx []int
	for i, set := range b.data {
		if set {
			idx = append(idx, i)
		}
	}

	return idx, nil
}

// Random draws a valid instance by folding standard-normal free coordinates,
// which lands inside the bounds by construction.
func (p *NumericArrayPattern) Random() Value {
	norm := distuv.Normal{Mu: 0, Sigma: 1}
	flat := make([]float64, p.size)
	for i := range flat {
		flat[i] = norm.Rand()
	}
	v, err := p.Fold(flat, true)
	if err != nil {
		panic(err) // unreachable: free fold is total on finite inputs
	}

	return v
}

// unconstrain maps a bounded entry to its free coordinate.
func (p *NumericArrayPattern) unconstrain(x float64) float64 {
	lbInf, ubInf := math.IsInf(p.lb, -1), math.IsInf(p.ub, 1)
	switch {
	case lbInf && ubInf:
		return x
	case ubInf:
		return math.Log(x - p.lb)
	case lbInf:
		return -math.Log(p.ub - x)
	default:
		return math.Log(x-p.lb) - math.Log(p.ub-x)
	}
}

// constrain is the inverse of unconstrain; total on finite inputs.
func (p *NumericArrayPattern) constrain(v float64) float64 {
	lbInf, ubInf := math.IsInf(p.lb, -1), math.IsInf(p.ub, 1)
	switch {
	case lbInf && ubInf:
		return v
	case ubInf:
		return math.Exp(v) + p.lb
	case lbInf:
		return p.ub - math.Exp(-v)
	default:
		return p.lb + (p.ub-p.lb)*sigmoid(v)
	}
}

// sigmoid is the numerically stable logistic function.
func sigmoid(v float64) float64 {
	if v >= 0 {
		return 1 / (1 + math.Exp(-v))
	}
	e := math.Exp(v)

	return e / (1 + e)
}

// validationSentinel picks ErrType, ErrShape or ErrDomain for a failed
// folded-value validation so errors.Is stays precise at the facade.
func validationSentinel(v Value, msg string) error {
	// Shape and type diagnostics are produced with stable prefixes by the
	// ValidateFolded implementations; match on them here.
	switch {
	case len(msg) >= 8 && msg[:8] == "expected":
		return ErrType
	case len(msg) >= 5 && msg[:5] == "wrong":
		return ErrShape
	default:
		return ErrDomain
	}
}
