// SPDX-License-Identifier: MIT
// Package pattern: SimplexPattern — probability vectors.
//
// A folded value is a []float64 of length d with non-negative entries
// summing to one. The free representation has length d−1: coordinate k of
// the free vector is log(x[k+1]/x[0]), and folding is the softmax of
// (0, v[0], ..., v[d−2]) computed through LogSumExp for stability. Every
// finite free vector folds to a strictly positive simplex point, so the
// free fold is total; flattening a boundary point (an exact zero entry)
// yields ±Inf free coordinates.

package pattern

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"
)

// DefaultSimplexTol is the tolerance on |sum − 1| and on entry negativity
// accepted by simplex validation.
const DefaultSimplexTol = 1e-8

// SimplexPattern is a pattern for a single probability vector of a fixed
// dimension. Folded values are []float64.
type SimplexPattern struct {
	dim int
	tol float64
}

// SimplexOption configures SimplexPattern construction.
type SimplexOption func(*simplexConfig)

type simplexConfig struct {
	tol float64
}

// WithSimplexTol overrides the validation tolerance (default
// DefaultSimplexTol). Must be non-negative and finite.
func WithSimplexTol(tol float64) SimplexOption {
	return func(c *simplexConfig) { c.tol = tol }
}

// NewSimplex builds a pattern for probability vectors of dimension dim.
//
// Errors: ErrBadPattern when dim < 2 (a 1-simplex has no free coordinates
// and is a constant) or the tolerance is invalid.
func NewSimplex(dim int, opts ...SimplexOption) (*SimplexPattern, error) {
	if dim < 2 {
		return nil, fmt.Errorf("NewSimplex: %w: dimension %d, must be >= 2", ErrBadPattern, dim)
	}
	cfg := simplexConfig{tol: DefaultSimplexTol}
	for _, o := range opts {
		o(&cfg)
	}
	if cfg.tol < 0 || math.IsNaN(cfg.tol) || math.IsInf(cfg.tol, 0) {
		return nil, fmt.Errorf("NewSimplex: %w: tolerance %g, must be finite and >= 0",
			ErrBadPattern, cfg.tol)
	}

	return &SimplexPattern{dim: dim, tol: cfg.tol}, nil
}

// Dim returns the simplex dimension d.
func (p *SimplexPattern) Dim() int { return p.dim }

// FlatLength reports d−1 in free mode and d in plain mode.
func (p *SimplexPattern) FlatLength(free bool) int {
	if free {
		return p.dim - 1
	}

	return p.dim
}

// ValidateFolded checks type, length, non-negativity (within tol) and the
// sum-to-one constraint (within tol).
func (p *SimplexPattern) ValidateFolded(v Value) (bool, string) {
	x, ok := v.([]float64)
	if !ok {
		return false, fmt.Sprintf("expected []float64, got %T", v)
	}
	if len(x) != p.dim {
		return false, fmt.Sprintf("wrong length for simplex: expected %d, got %d", p.dim, len(x))
	}
	sum := 0.0
	for i, e := range x {
		if e < -p.tol || math.IsNaN(e) {
			return false, fmt.Sprintf("entry %g at position %d beneath lower bound 0 (tol %g)", e, i, p.tol)
		}
		sum += e
	}
	if math.Abs(sum-1) > p.tol {
		return false, fmt.Sprintf("entries sum to %g, must sum to 1 within tol %g", sum, p.tol)
	}

	return true, ""
}

// Flatten maps a simplex point to flat form; free mode takes log-ratios
// against the first coordinate.
func (p *SimplexPattern) Flatten(v Value, free bool) ([]float64, error) {
	if ok, msg := p.ValidateFolded(v); !ok {
		return nil, domainErrorf(opFlatten, validationSentinel(v, msg), msg)
	}
	x := v.([]float64)
	if !free {
		out := make([]float64, p.dim)
		copy(out, x)

		return out, nil
	}
	out := make([]float64, p.dim-1)
	anchor := math.Log(x[0])
	for k := 1; k < p.dim; k++ {
		out[k-1] = math.Log(x[k]) - anchor
	}

	return out, nil
}

// Fold reconstructs a simplex point. Free mode is the anchored softmax and
// needs no domain check; plain mode validates unless skipped.
func (p *SimplexPattern) Fold(flat []float64, free bool, opts ...FoldOption) (Value, error) {
	if err := checkFlatLen(opFold, len(flat), p.FlatLength(free)); err != nil {
		return nil, err
	}
	cfg := gatherFoldOptions(opts)

	if free {
		// logits = (0, flat...); x_k = exp(logits_k − LogSumExp(logits)).
		logits := make([]float64, p.dim)
		copy(logits[1:], flat)
		lse := floats.LogSumExp(logits)
		x := make([]float64, p.dim)
		for k, l := range logits {
			x[k] = math.Exp(l - lse)
		}

		return x, nil
	}

	x := make([]float64, p.dim)
	copy(x, flat)
	if !cfg.skipValidation {
		if ok, msg := p.ValidateFolded(x); !ok {
			return nil, domainErrorf(opFold, ErrDomain, msg)
		}
	}

	return x, nil
}

// EmptyBool returns a []bool of length d filled with def.
func (p *SimplexPattern) EmptyBool(def bool) Value {
	b := make([]bool, p.dim)
	if def {
		for i := range b {
			b[i] = true
		}
	}

	return b
}

// FlatIndices maps marked positions one-to-one in plain mode. In free mode
// the coordinates are entangled (every free coordinate moves every entry),
// so any marked position selects the whole free range.
func (p *SimplexPattern) FlatIndices(mask Value, free bool) ([]int, error) {
	b, ok := mask.([]bool)
	if !ok {
		return nil, domainErrorf(opFlatIndices, ErrType,
			fmt.Sprintf("expected []bool, got %T", mask))
	}
	if len(b) != p.dim {
		return nil, domainErrorf(opFlatIndices, ErrShape,
			fmt.Sprintf("wrong mask length: expected %d, got %d", p.dim, len(b)))
	}
	any := false
	var idx []int
	for i, set := range b {
		if set {
			any = true
			if !free {
				idx = append(idx, i)
			}
		}
	}
	if free && any {
		idx = make([]int, p.dim-1)
		for i := range idx {
			idx[i] = i
		}
	}

	return idx, nil
}

// Random draws a valid instance from normalized Gamma(1,1) variates, i.e.
// uniformly on the simplex.
func (p *SimplexPattern) Random() Value {
	g := distuv.Gamma{Alpha: 1, Beta: 1}
	x := make([]float64, p.dim)
	sum := 0.0
	for i := range x {
		x[i] = g.Rand()
		sum += x[i]
	}
	for i := range x {
		x[i] /= sum
	}

	return x
}
