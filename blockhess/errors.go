// SPDX-License-Identifier: MIT
// Package blockhess: sentinel error set. All operations return these
// sentinels (optionally wrapped with context via %w) and tests check them
// via errors.Is.

package blockhess

import "errors"

var (
	// ErrNilObjective indicates a nil objective function.
	ErrNilObjective = errors.New("blockhess: objective function is nil")

	// ErrNilDifferentiator indicates a nil differentiation capability.
	ErrNilDifferentiator = errors.New("blockhess: differentiator is nil")

	// ErrBadStructure indicates an invalid block-index structure: empty,
	// ragged (blocks of unequal width), or zero-width blocks.
	ErrBadStructure = errors.New("blockhess: invalid block-index structure")

	// ErrIndexOutOfRange indicates a flat index outside [0, dim).
	ErrIndexOutOfRange = errors.New("blockhess: flat index out of range")

	// ErrOverlap indicates a flat index appearing more than once in the
	// structure while WithDisjointBlockCheck is in force.
	ErrOverlap = errors.New("blockhess: block indices overlap")

	// ErrDimensionMismatch indicates an evaluation point or derivative
	// vector whose length does not match the declared flat dimension.
	ErrDimensionMismatch = errors.New("blockhess: dimension mismatch")
)
