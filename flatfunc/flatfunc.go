// SPDX-License-Identifier: MIT
// Package flatfunc: the Flattened adapter.

package flatfunc

import (
	"errors"
	"fmt"

	"github.com/katalvlaran/foldgami/pattern"
)

var (
	// ErrNilFunc indicates that a nil objective was passed to New.
	ErrNilFunc = errors.New("flatfunc: objective function is nil")

	// ErrArity indicates mismatched pattern/free/argument counts.
	ErrArity = errors.New("flatfunc: argument count mismatch")
)

// Func is a scalar objective over folded arguments plus trailing
// pass-through arguments. Implementations must be pure in their inputs.
type Func func(folded []pattern.Value, extra ...interface{}) (float64, error)

// Flattened wraps a Func so that its folded arguments are supplied as flat
// vectors. Immutable after New; safe for concurrent use.
type Flattened struct {
	fn       Func
	patterns []pattern.Pattern
	free     []bool
}

// New builds the adapter.
//
// Inputs:
//   - fn:       the objective over folded arguments.
//   - patterns: one pattern per flattened argument, in call order.
//   - free:     one flag per pattern selecting the flat mode.
//
// Errors: ErrNilFunc; ErrArity when len(free) != len(patterns) or when no
// pattern is given; pattern.ErrBadPattern semantics are left to the caller
// (patterns are constructed elsewhere).
func New(fn Func, patterns []pattern.Pattern, free []bool) (*Flattened, error) {
	if fn == nil {
		return nil, ErrNilFunc
	}
	if len(patterns) == 0 {
		return nil, fmt.Errorf("New: %w: at least one pattern required", ErrArity)
	}
	if len(free) != len(patterns) {
		return nil, fmt.Errorf("New: %w: %d patterns but %d free flags",
			ErrArity, len(patterns), len(free))
	}
	for i, p := range patterns {
		if p == nil {
			return nil, fmt.Errorf("New: %w: nil pattern at position %d", ErrArity, i)
		}
	}
	ps := make([]pattern.Pattern, len(patterns))
	copy(ps, patterns)
	fs := make([]bool, len(free))
	copy(fs, free)

	return &Flattened{fn: fn, patterns: ps, free: fs}, nil
}

// NumArgs returns the number of flattened arguments.
func (f *Flattened) NumArgs() int { return len(f.patterns) }

// FlatLength reports the flat length of argument i in its declared mode.
func (f *Flattened) FlatLength(i int) int { return f.patterns[i].FlatLength(f.free[i]) }

// Call folds each flat argument through its pattern and evaluates the
// wrapped objective. Length checks are unconditional; domain validation is
// skipped (see the package comment).
func (f *Flattened) Call(flats [][]float64, extra ...interface{}) (float64, error) {
	folded, err := f.FoldArgs(flats)
	if err != nil {
		return 0, err
	}

	return f.fn(folded, extra...)
}

// FoldArgs folds every flat argument without evaluating the objective.
func (f *Flattened) FoldArgs(flats [][]float64) ([]pattern.Value, error) {
	if len(flats) != len(f.patterns) {
		return nil, fmt.Errorf("FoldArgs: %w: expected %d flat arguments, got %d",
			ErrArity, len(f.patterns), len(flats))
	}
	folded := make([]pattern.Value, len(flats))
	for i, flat := range flats {
		v, err := f.patterns[i].Fold(flat, f.free[i], pattern.SkipValidation())
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i, err)
		}
		folded[i] = v
	}

	return folded, nil
}

// FlattenArgs is the forward direction: flatten folded base points into the
// per-argument flat vectors Call expects. Folded values are validated.
func (f *Flattened) FlattenArgs(folded []pattern.Value) ([][]float64, error) {
	if len(folded) != len(f.patterns) {
		return nil, fmt.Errorf("FlattenArgs: %w: expected %d folded arguments, got %d",
			ErrArity, len(f.patterns), len(folded))
	}
	flats := make([][]float64, len(folded))
	for i, v := range folded {
		flat, err := f.patterns[i].Flatten(v, f.free[i])
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i, err)
		}
		flats[i] = flat
	}

	return flats, nil
}
