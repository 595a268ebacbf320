// SPDX-License-Identifier: MIT
// Package pattern: PSDMatrixPattern — symmetric positive semi-definite
// matrices under the log-Cholesky free parameterization.
//
// Folded values are *mat.SymDense of a fixed size n. The plain flat form is
// the n² entries in row-major order (redundant but reshape-exact). The free
// flat form has n(n+1)/2 entries: the lower Cholesky factor of (A − lb·I),
// stacked column-major by Cholesky column then row, with the diagonal
// log-transformed. The inverse re-exponentiates the log-diagonal and forms
// L·Lᵀ + lb·I, a bijection from ℝ^{n(n+1)/2} onto matrices whose shifted
// part is strictly positive definite — so every finite free vector folds to
// a valid value.
//
// Validation policy (mirrors the flat layout's redundancy): plain folds
// check symmetry within tolerance and the diagonal lower bound; a full
// eigenvalue check is deliberately not performed on plain folds, matching
// the source semantics where the diagonal bound is the guarded constraint.

package pattern

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Default numeric policy for PSD patterns.
const (
	// DefaultPSDSymmetryTol bounds |A[i,j]−A[j,i]| accepted by plain folds.
	DefaultPSDSymmetryTol = 1e-8

	// DefaultDiagLowerBound is the inclusive lower bound on diagonal
	// entries of folded values.
	DefaultDiagLowerBound = 0.0
)

// PSDMatrixPattern is a pattern for size-n symmetric matrices constrained
// positive semi-definite (diagonal bounded below). Folded values are
// *mat.SymDense.
type PSDMatrixPattern struct {
	size   int
	diagLB float64
	symTol float64
}

// PSDOption configures PSDMatrixPattern construction.
type PSDOption func(*psdConfig)

type psdConfig struct {
	diagLB float64
	symTol float64
}

// WithDiagLowerBound sets the inclusive lower bound applied to diagonal
// entries (default 0). The free transform factorizes A − lb·I, so folded
// free values satisfy the bound strictly.
func WithDiagLowerBound(lb float64) PSDOption {
	return func(c *psdConfig) { c.diagLB = lb }
}

// WithSymmetryTol overrides the symmetry tolerance used when folding the
// redundant n² plain representation (default DefaultPSDSymmetryTol).
func WithSymmetryTol(tol float64) PSDOption {
	return func(c *psdConfig) { c.symTol = tol }
}

// NewPSDMatrix builds a pattern for n×n PSD matrices.
//
// Errors: ErrBadPattern when n < 1, the diagonal bound is not finite, or
// the symmetry tolerance is invalid.
func NewPSDMatrix(size int, opts ...PSDOption) (*PSDMatrixPattern, error) {
	if size < 1 {
		return nil, fmt.Errorf("NewPSDMatrix: %w: size %d, must be >= 1", ErrBadPattern, size)
	}
	cfg := psdConfig{diagLB: DefaultDiagLowerBound, symTol: DefaultPSDSymmetryTol}
	for _, o := range opts {
		o(&cfg)
	}
	if math.IsNaN(cfg.diagLB) || math.IsInf(cfg.diagLB, 0) {
		return nil, fmt.Errorf("NewPSDMatrix: %w: diagonal lower bound must be finite", ErrBadPattern)
	}
	if cfg.symTol < 0 || math.IsNaN(cfg.symTol) || math.IsInf(cfg.symTol, 0) {
		return nil, fmt.Errorf("NewPSDMatrix: %w: symmetry tolerance %g, must be finite and >= 0",
			ErrBadPattern, cfg.symTol)
	}

	return &PSDMatrixPattern{size: size, diagLB: cfg.diagLB, symTol: cfg.symTol}, nil
}

// Size returns the matrix dimension n.
func (p *PSDMatrixPattern) Size() int { return p.size }

// DiagLowerBound returns the inclusive diagonal lower bound.
func (p *PSDMatrixPattern) DiagLowerBound() float64 { return p.diagLB }

// FlatLength reports n(n+1)/2 in free mode and n² in plain mode.
func (p *PSDMatrixPattern) FlatLength(free bool) int {
	if free {
		return p.size * (p.size + 1) / 2
	}

	return p.size * p.size
}

// ValidateFolded checks the dynamic type, the size, and the diagonal lower
// bound. *mat.SymDense is symmetric by representation, so no symmetry check
// is needed here (plain Fold checks the redundant raw entries separately).
func (p *PSDMatrixPattern) ValidateFolded(v Value) (bool, string) {
	m, ok := v.(*mat.SymDense)
	if !ok {
		return false, fmt.Sprintf("expected *mat.SymDense, got %T", v)
	}
	if m.SymmetricDim() != p.size {
		return false, fmt.Sprintf("wrong size for PSD matrix: expected %d, got %d",
			p.size, m.SymmetricDim())
	}
	for i := 0; i < p.size; i++ {
		if d := m.At(i, i); d < p.diagLB || math.IsNaN(d) {
			return false, fmt.Sprintf("diagonal entry %g at position %d beneath lower bound %g",
				d, i, p.diagLB)
		}
	}

	return true, ""
}

// Flatten maps a folded matrix to flat form.
//
// Plain mode emits the n² entries in row-major order. Free mode Cholesky-
// factorizes A − lb·I and emits the log-Cholesky coordinates; it fails with
// ErrNotPositiveDefinite when the shifted matrix is singular or indefinite
// (the free map is defined on the open cone only).
func (p *PSDMatrixPattern) Flatten(v Value, free bool) ([]float64, error) {
	if ok, msg := p.ValidateFolded(v); !ok {
		return nil, domainErrorf(opFlatten, validationSentinel(v, msg), msg)
	}
	m := v.(*mat.SymDense)
	n := p.size

	if !free {
		out := make([]float64, n*n)
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				out[i*n+j] = m.At(i, j)
			}
		}

		return out, nil
	}

	// Shift the diagonal bound away before factorizing.
	shifted := mat.NewSymDense(n, nil)
	shifted.CopySym(m)
	if p.diagLB != 0 {
		for i := 0; i < n; i++ {
			shifted.SetSym(i, i, m.At(i, i)-p.diagLB)
		}
	}

	var chol mat.Cholesky
	if ok := chol.Factorize(shifted); !ok {
		return nil, patternErrorf(opFlatten, ErrNotPositiveDefinite)
	}
	lower := mat.NewTriDense(n, mat.Lower, nil)
	chol.LTo(lower)

	out := make([]float64, p.FlatLength(true))
	k := 0
	for j := 0; j < n; j++ { // column-major by Cholesky column
		for i := j; i < n; i++ { // then row
			if i == j {
				out[k] = math.Log(lower.At(i, i))
			} else {
				out[k] = lower.At(i, j)
			}
			k++
		}
	}

	return out, nil
}

// Fold reconstructs a folded matrix from flat.
//
// Free mode rebuilds the lower factor (exponentiating the log-diagonal) and
// returns L·Lᵀ + lb·I; it is total on finite inputs and performs no domain
// check. Plain mode reads the n² row-major entries and, unless skipped,
// checks symmetry within tolerance and the diagonal lower bound.
func (p *PSDMatrixPattern) Fold(flat []float64, free bool, opts ...FoldOption) (Value, error) {
	if err := checkFlatLen(opFold, len(flat), p.FlatLength(free)); err != nil {
		return nil, err
	}
	cfg := gatherFoldOptions(opts)
	n := p.size

	if free {
		lower := mat.NewTriDense(n, mat.Lower, nil)
		k := 0
		for j := 0; j < n; j++ {
			for i := j; i < n; i++ {
				if i == j {
					lower.SetTri(i, i, math.Exp(flat[k]))
				} else {
					lower.SetTri(i, j, flat[k])
				}
				k++
			}
		}
		out := mat.NewSymDense(n, nil)
		out.SymOuterK(1, lower)
		if p.diagLB != 0 {
			for i := 0; i < n; i++ {
				out.SetSym(i, i, out.At(i, i)+p.diagLB)
			}
		}

		return out, nil
	}

	if !cfg.skipValidation {
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				if math.Abs(flat[i*n+j]-flat[j*n+i]) > p.symTol {
					return nil, domainErrorf(opFold, ErrDomain,
						fmt.Sprintf("matrix is not symmetric within tol %g: |A[%d,%d]-A[%d,%d]| = %g",
							p.symTol, i, j, j, i, math.Abs(flat[i*n+j]-flat[j*n+i])))
				}
			}
		}
		for i := 0; i < n; i++ {
			if d := flat[i*n+i]; d < p.diagLB || math.IsNaN(d) {
				return nil, domainErrorf(opFold, ErrDomain,
					fmt.Sprintf("diagonal entry %g at position %d beneath lower bound %g",
						d, i, p.diagLB))
			}
		}
	}

	data := make([]float64, n*n)
	copy(data, flat)

	// SymDense keys off the upper triangle; with validation on, both
	// triangles agree within tolerance, and with validation off the caller
	// has accepted the upper-triangle reading of asymmetric input.
	return mat.NewSymDense(n, data), nil
}

// EmptyBool returns an n×n *BoolArray filled with def.
func (p *PSDMatrixPattern) EmptyBool(def bool) Value {
	b, err := NewBoolArray([]int{p.size, p.size}, def)
	if err != nil {
		panic(err) // size validated at construction
	}

	return b
}

// FlatIndices maps marked (i,j) positions to row-major flat coordinates in
// plain mode. In free mode every Cholesky coordinate moves every entry of
// L·Lᵀ, so any marked position selects the whole free range.
func (p *PSDMatrixPattern) FlatIndices(mask Value, free bool) ([]int, error) {
	b, ok := mask.(*BoolArray)
	if !ok {
		return nil, domainErrorf(opFlatIndices, ErrType,
			fmt.Sprintf("expected *pattern.BoolArray, got %T", mask))
	}
	want := []int{p.size, p.size}
	if !shapesEqual(b.shape, want) {
		return nil, domainErrorf(opFlatIndices, ErrShape,
			fmt.Sprintf("wrong mask shape: expected %v, got %v", want, b.shape))
	}
	if free {
		if !b.Any() {
			return nil, nil
		}
		idx := make([]int, p.FlatLength(true))
		for i := range idx {
			idx[i] = i
		}

		return idx, nil
	}
	var idx []int
	for i, set := range b.data {
		if set {
			idx = append(idx, i)
		}
	}

	return idx, nil
}

// Random draws a valid instance by folding standard-normal log-Cholesky
// coordinates; the result is positive definite above the diagonal bound.
func (p *PSDMatrixPattern) Random() Value {
	norm := distuv.Normal{Mu: 0, Sigma: 1}
	flat := make([]float64, p.FlatLength(true))
	for i := range flat {
		flat[i] = norm.Rand()
	}
	v, err := p.Fold(flat, true)
	if err != nil {
		panic(err) // unreachable: free fold is total on finite inputs
	}

	return v
}
