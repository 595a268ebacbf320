// SPDX-License-Identifier: MIT
// Package blockhess: the Differentiator capability and its finite-difference
// default. The spec of this package treats differentiation as external:
// anything that can produce gradients and forward directional derivatives of
// gradients plugs in here.

package blockhess

import (
	"fmt"

	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/floats"
)

// Objective is a flattened scalar objective with trailing pass-through
// arguments. It must be pure in its inputs.
type Objective func(x []float64, extra ...interface{}) (float64, error)

// Differentiator supplies derivative evaluations of scalar objectives.
//
// Implementations backed by automatic differentiation should compute HVP as
// the forward-mode directional derivative of the gradient (forward-over-
// reverse); FD approximates the same quantity with central differences.
type Differentiator interface {
	// Gradient evaluates ∇f(x).
	Gradient(f Objective, x []float64, extra ...interface{}) ([]float64, error)

	// HVP evaluates the Hessian-vector product H(x)·v.
	HVP(f Objective, x, v []float64, extra ...interface{}) ([]float64, error)
}

// DefaultFDStep is the displacement used by FD's Hessian-vector probes.
// Central differences leave quadratic objectives exact up to rounding; for
// general objectives the error is O(step²) plus gradient noise over step.
const DefaultFDStep = 1e-6

// FDOption configures the finite-difference differentiator.
type FDOption func(*FD)

// WithStep overrides the probe displacement (default DefaultFDStep).
// Panics on non-positive step: a nonsensical step is a programmer error.
func WithStep(step float64) FDOption {
	if step <= 0 {
		panic("blockhess: WithStep requires step > 0")
	}

	return func(d *FD) { d.step = step }
}

// FD is a central-difference Differentiator built on gonum's diff/fd.
// It is stateless across calls and safe for concurrent use.
type FD struct {
	step float64
}

// NewFD builds the default finite-difference capability.
func NewFD(opts ...FDOption) *FD {
	d := &FD{step: DefaultFDStep}
	for _, o := range opts {
		o(d)
	}

	return d
}

// Gradient evaluates ∇f(x) by central differences. An objective error
// during any probe aborts the evaluation and is propagated.
func (d *FD) Gradient(f Objective, x []float64, extra ...interface{}) ([]float64, error) {
	if f == nil {
		return nil, ErrNilObjective
	}
	var evalErr error
	wrapped := func(z []float64) float64 {
		v, err := f(z, extra...)
		if err != nil && evalErr == nil {
			evalErr = err
		}

		return v
	}
	dst := make([]float64, len(x))
	fd.Gradient(dst, wrapped, x, &fd.Settings{Formula: fd.Central})
	if evalErr != nil {
		return nil, fmt.Errorf("Gradient: %w", evalErr)
	}

	return dst, nil
}

// HVP approximates H(x)·v as the central difference of the gradient along
// the normalized direction:
//
//	H·v ≈ ‖v‖ · (∇f(x + h·u) − ∇f(x − h·u)) / (2h),  u = v/‖v‖.
//
// A zero direction yields a zero product without evaluating f.
func (d *FD) HVP(f Objective, x, v []float64, extra ...interface{}) ([]float64, error) {
	if f == nil {
		return nil, ErrNilObjective
	}
	if len(v) != len(x) {
		return nil, fmt.Errorf("HVP: %w: point has %d coordinates, direction %d",
			ErrDimensionMismatch, len(x), len(v))
	}
	norm := floats.Norm(v, 2)
	out := make([]float64, len(x))
	if norm == 0 {
		return out, nil
	}

	h := d.step
	plus := make([]float64, len(x))
	minus := make([]float64, len(x))
	for i := range x {
		step := h * v[i] / norm
		plus[i] = x[i] + step
		minus[i] = x[i] - step
	}

	gPlus, err := d.Gradient(f, plus, extra...)
	if err != nil {
		return nil, fmt.Errorf("HVP: %w", err)
	}
	gMinus, err := d.Gradient(f, minus, extra...)
	if err != nil {
		return nil, fmt.Errorf("HVP: %w", err)
	}
	scale := norm / (2 * h)
	for i := range out {
		out[i] = (gPlus[i] - gMinus[i]) * scale
	}

	return out, nil
}
