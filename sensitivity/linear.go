// SPDX-License-Identifier: MIT
// Package sensitivity: the LinearApproximation estimator.

package sensitivity

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/foldgami/blockhess"
	"github.com/katalvlaran/foldgami/flatfunc"
	"github.com/katalvlaran/foldgami/pattern"
)

var (
	// ErrBadInput indicates a nil objective, pattern, or differentiator,
	// or a precomputed Hessian of the wrong size.
	ErrBadInput = errors.New("sensitivity: invalid input")

	// ErrNotOptimal indicates a nonzero gradient at the putative optimum.
	ErrNotOptimal = errors.New("sensitivity: gradient is not zero at the putative optimum")

	// ErrHessianNotPD indicates that the Hessian at the optimum is not
	// positive definite, so the sensitivity system cannot be solved.
	ErrHessianNotPD = errors.New("sensitivity: hessian at the optimum is not positive definite")
)

// Defaults (single source of truth).
const (
	// DefaultGradTol is the tolerance on ‖∇f‖ at the putative optimum.
	DefaultGradTol = 1e-8

	// DefaultCrossStep is the hyperparameter displacement used to
	// difference the gradient when forming the cross Hessian.
	DefaultCrossStep = 1e-6
)

// Option configures LinearApproximation construction.
type Option func(*config)

type config struct {
	gradTol   float64
	crossStep float64
	checkOpt  bool
	hessian   *mat.SymDense
}

// WithGradTol overrides the optimum-check tolerance (default DefaultGradTol).
func WithGradTol(tol float64) Option {
	return func(c *config) { c.gradTol = tol }
}

// SkipOptimumCheck disables the gradient-at-optimum verification, for
// callers that have already certified the base point.
func SkipOptimumCheck() Option {
	return func(c *config) { c.checkOpt = false }
}

// WithHessian supplies a precomputed Hessian of the objective at the base
// optimum (in the flattened opt coordinates), skipping its estimation.
func WithHessian(h *mat.SymDense) Option {
	return func(c *config) { c.hessian = h }
}

// WithCrossStep overrides the cross-Hessian differencing step.
// Panics on non-positive step (programmer error).
func WithCrossStep(step float64) Option {
	if step <= 0 {
		panic("sensitivity: WithCrossStep requires step > 0")
	}

	return func(c *config) { c.crossStep = step }
}

// LinearApproximation holds the factorized base-point state: the flattened
// base values, the Cholesky-factorized Hessian, and the sensitivity matrix
// S = −H⁻¹·C. Immutable after New; safe for concurrent use.
type LinearApproximation struct {
	flat      *flatfunc.Flattened
	optPat    pattern.Pattern
	hyperPat  pattern.Pattern
	optFree   bool
	hyperFree bool

	opt0   []float64
	hyper0 []float64
	hess   *mat.SymDense
	sens   *mat.Dense // dOpt × dHyper
}

// New evaluates the linear approximation at a base point.
//
// Inputs:
//   - fn:          the objective f over [opt, hyper] folded arguments.
//   - optPat/hyperPat, optFree/hyperFree: patterns and flat modes.
//   - optFolded/hyperFolded: the base folded values (opt optimal at hyper).
//   - diff:        derivative capability (e.g. blockhess.NewFD()).
//
// Stage 1 flattens the base point and (unless skipped) verifies the
// gradient vanishes there. Stage 2 obtains the Hessian — supplied or
// estimated column-by-column via HVP probes along the opt unit vectors —
// factorizes it, differences the gradient along hyper coordinates for the
// cross Hessian, and Cholesky-solves for S.
//
// Errors: ErrBadInput, flatfunc/pattern errors from flattening the base
// point, ErrNotOptimal, ErrHessianNotPD, and propagated capability errors.
func New(
	fn flatfunc.Func,
	optPat, hyperPat pattern.Pattern,
	optFree, hyperFree bool,
	optFolded, hyperFolded pattern.Value,
	diff blockhess.Differentiator,
	opts ...Option,
) (*LinearApproximation, error) {
	if fn == nil || optPat == nil || hyperPat == nil {
		return nil, fmt.Errorf("New: %w: nil objective or pattern", ErrBadInput)
	}
	if diff == nil {
		return nil, fmt.Errorf("New: %w: nil differentiator", ErrBadInput)
	}
	cfg := config{gradTol: DefaultGradTol, crossStep: DefaultCrossStep, checkOpt: true}
	for _, o := range opts {
		o(&cfg)
	}

	flat, err := flatfunc.New(fn, []pattern.Pattern{optPat, hyperPat}, []bool{optFree, hyperFree})
	if err != nil {
		return nil, fmt.Errorf("New: %w", err)
	}

	la := &LinearApproximation{
		flat:      flat,
		optPat:    optPat,
		hyperPat:  hyperPat,
		optFree:   optFree,
		hyperFree: hyperFree,
	}

	flats, err := flat.FlattenArgs([]pattern.Value{optFolded, hyperFolded})
	if err != nil {
		return nil, fmt.Errorf("New: %w", err)
	}
	la.opt0, la.hyper0 = flats[0], flats[1]
	dOpt, dHyper := len(la.opt0), len(la.hyper0)

	// Objective over opt with hyper pinned.
	atHyper := func(hyper []float64) blockhess.Objective {
		return func(x []float64, extra ...interface{}) (float64, error) {
			return flat.Call([][]float64{x, hyper}, extra...)
		}
	}
	objAtBase := atHyper(la.hyper0)

	if cfg.checkOpt {
		grad0, gerr := diff.Gradient(objAtBase, la.opt0)
		if gerr != nil {
			return nil, fmt.Errorf("New: %w", gerr)
		}
		if norm := floats.Norm(grad0, 2); norm > cfg.gradTol {
			return nil, fmt.Errorf("New: %w: ||grad|| = %g > %g = gradTol",
				ErrNotOptimal, norm, cfg.gradTol)
		}
	}

	// Hessian at the optimum: supplied, or one HVP probe per opt coordinate.
	if cfg.hessian != nil {
		if cfg.hessian.SymmetricDim() != dOpt {
			return nil, fmt.Errorf("New: %w: hessian size %d, opt dimension %d",
				ErrBadInput, cfg.hessian.SymmetricDim(), dOpt)
		}
		la.hess = mat.NewSymDense(dOpt, nil)
		la.hess.CopySym(cfg.hessian)
	} else {
		la.hess, err = estimateHessian(diff, objAtBase, la.opt0)
		if err != nil {
			return nil, fmt.Errorf("New: %w", err)
		}
	}

	var chol mat.Cholesky
	if ok := chol.Factorize(la.hess); !ok {
		return nil, fmt.Errorf("New: %w", ErrHessianNotPD)
	}

	// Cross Hessian C[:,j] = d(∇_opt f)/d hyper_j by central differences.
	cross := mat.NewDense(dOpt, dHyper, nil)
	h := cfg.crossStep
	shifted := make([]float64, dHyper)
	for j := 0; j < dHyper; j++ {
		copy(shifted, la.hyper0)
		shifted[j] = la.hyper0[j] + h
		gPlus, gerr := diff.Gradient(atHyper(shifted), la.opt0)
		if gerr != nil {
			return nil, fmt.Errorf("New: cross hessian column %d: %w", j, gerr)
		}
		shifted[j] = la.hyper0[j] - h
		gMinus, gerr := diff.Gradient(atHyper(shifted), la.opt0)
		if gerr != nil {
			return nil, fmt.Errorf("New: cross hessian column %d: %w", j, gerr)
		}
		shifted[j] = la.hyper0[j]
		for i := 0; i < dOpt; i++ {
			cross.Set(i, j, (gPlus[i]-gMinus[i])/(2*h))
		}
	}

	// S = −H⁻¹·C via the Cholesky factors.
	var sol mat.Dense
	if err = chol.SolveTo(&sol, cross); err != nil {
		return nil, fmt.Errorf("New: %w: %w", ErrHessianNotPD, err)
	}
	sol.Scale(-1, &sol)
	la.sens = &sol

	return la, nil
}

// estimateHessian recovers the dense Hessian column-by-column through the
// capability's HVP along unit vectors, then symmetrizes: finite-difference
// capabilities return columns that agree only up to probe noise.
func estimateHessian(diff blockhess.Differentiator, f blockhess.Objective, x []float64) (*mat.SymDense, error) {
	n := len(x)
	cols := mat.NewDense(n, n, nil)
	unit := make([]float64, n)
	for j := 0; j < n; j++ {
		for i := range unit {
			unit[i] = 0
		}
		unit[j] = 1
		hv, err := diff.HVP(f, x, unit)
		if err != nil {
			return nil, fmt.Errorf("hessian column %d: %w", j, err)
		}
		for i := 0; i < n; i++ {
			cols.Set(i, j, hv[i])
		}
	}
	sym := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			sym.SetSym(i, j, 0.5*(cols.At(i, j)+cols.At(j, i)))
		}
	}

	return sym, nil
}

// DOptDHyper returns a copy of the sensitivity matrix S = dθ̂/dλ in
// flattened coordinates (dOpt × dHyper).
func (la *LinearApproximation) DOptDHyper() *mat.Dense {
	return mat.DenseCopyOf(la.sens)
}

// HessianAtOpt returns a copy of the Hessian used for the factorization.
func (la *LinearApproximation) HessianAtOpt() *mat.SymDense {
	out := mat.NewSymDense(la.hess.SymmetricDim(), nil)
	out.CopySym(la.hess)

	return out
}

// PredictOptFlat predicts the flattened optimum at a new folded
// hyperparameter value: opt₀ + S·(hyper₁ − hyper₀).
func (la *LinearApproximation) PredictOptFlat(newHyperFolded pattern.Value) ([]float64, error) {
	hyper1, err := la.hyperPat.Flatten(newHyperFolded, la.hyperFree)
	if err != nil {
		return nil, fmt.Errorf("PredictOptFlat: %w", err)
	}
	delta := mat.NewVecDense(len(hyper1), nil)
	for i := range hyper1 {
		delta.SetVec(i, hyper1[i]-la.hyper0[i])
	}
	var shift mat.VecDense
	shift.MulVec(la.sens, delta)

	out := make([]float64, len(la.opt0))
	for i := range out {
		out[i] = la.opt0[i] + shift.AtVec(i)
	}

	return out, nil
}

// PredictOpt folds PredictOptFlat's result back through the opt pattern.
// In free mode the fold is total; in plain mode the folded prediction is
// validated and may legitimately fail for large extrapolations.
func (la *LinearApproximation) PredictOpt(newHyperFolded pattern.Value) (pattern.Value, error) {
	flat, err := la.PredictOptFlat(newHyperFolded)
	if err != nil {
		return nil, err
	}
	folded, err := la.optPat.Fold(flat, la.optFree)
	if err != nil {
		return nil, fmt.Errorf("PredictOpt: %w", err)
	}

	return folded, nil
}
