// SPDX-License-Identifier: MIT
// Package blockhess: the SparseBlockHessian estimator. See doc.go for the
// algorithm outline and cost model.

package blockhess

import (
	"fmt"

	"github.com/james-bowman/sparse"
)

// Option configures SparseBlockHessian construction.
type Option func(*config)

type config struct {
	checkDisjoint bool
}

// WithDisjointBlockCheck rejects, at construction, any flat index that
// appears more than once in the structure. The default preserves the
// silent-summation behavior: duplicate coordinates accumulate, which callers
// exploiting deliberate overlap rely on.
func WithDisjointBlockCheck() Option {
	return func(c *config) { c.checkDisjoint = true }
}

// SparseBlockHessian reconstructs the Hessian of a flattened objective over
// a declared block partition using only Hessian-vector probes.
//
// It holds the objective, the capability, and the (validated) index
// bookkeeping; it is stateless across BlockHessian calls and safe for
// concurrent use.
type SparseBlockHessian struct {
	f         Objective
	diff      Differentiator
	dim       int
	blockSize int
	inds      [][]int
}

// New builds the estimator.
//
// Inputs:
//   - f:    the flattened scalar objective.
//   - diff: the differentiation capability (e.g. NewFD()).
//   - dim:  the full flat dimension of f's argument.
//   - inds: rectangular structure inds[b][s]; every entry in [0, dim).
//
// Errors:
//   - ErrNilObjective / ErrNilDifferentiator on missing collaborators.
//   - ErrBadStructure on empty, zero-width, or ragged structures, or dim <= 0.
//   - ErrIndexOutOfRange on entries outside [0, dim).
//   - ErrOverlap on duplicate entries when WithDisjointBlockCheck is given.
//
// The index structure is copied; later mutation of inds by the caller does
// not affect the estimator.
//
// Complexity: O(total indices).
func New(f Objective, diff Differentiator, dim int, inds [][]int, opts ...Option) (*SparseBlockHessian, error) {
	if f == nil {
		return nil, ErrNilObjective
	}
	if diff == nil {
		return nil, ErrNilDifferentiator
	}
	if dim <= 0 {
		return nil, fmt.Errorf("New: %w: dimension %d, must be > 0", ErrBadStructure, dim)
	}
	if len(inds) == 0 {
		return nil, fmt.Errorf("New: %w: no blocks", ErrBadStructure)
	}
	var cfg config
	for _, o := range opts {
		o(&cfg)
	}

	blockSize := len(inds[0])
	if blockSize == 0 {
		return nil, fmt.Errorf("New: %w: block 0 is empty", ErrBadStructure)
	}
	var seen map[int]struct{}
	if cfg.checkDisjoint {
		seen = make(map[int]struct{}, len(inds)*blockSize)
	}
	copied := make([][]int, len(inds))
	for b, block := range inds {
		if len(block) != blockSize {
			return nil, fmt.Errorf("New: %w: block %d has width %d, block 0 has %d",
				ErrBadStructure, b, len(block), blockSize)
		}
		copied[b] = make([]int, blockSize)
		for s, idx := range block {
			if idx < 0 || idx >= dim {
				return nil, fmt.Errorf("New: %w: inds[%d][%d] = %d, dimension is %d",
					ErrIndexOutOfRange, b, s, idx, dim)
			}
			if cfg.checkDisjoint {
				if _, dup := seen[idx]; dup {
					return nil, fmt.Errorf("New: %w: flat index %d appears more than once",
						ErrOverlap, idx)
				}
				seen[idx] = struct{}{}
			}
			copied[b][s] = idx
		}
	}

	return &SparseBlockHessian{f: f, diff: diff, dim: dim, blockSize: blockSize, inds: copied}, nil
}

// Dim returns the full flat dimension.
func (s *SparseBlockHessian) Dim() int { return s.dim }

// BlockSize returns the per-block width — and hence the number of
// Hessian-vector probes BlockHessian performs.
func (s *SparseBlockHessian) BlockSize() int { return s.blockSize }

// BlockHessian estimates the Hessian at x.
//
// Implementation:
//   - Stage 1: for each slot, build the multi-block probe and evaluate
//     H(x)·v through the capability (fixed slot order; one probe per slot).
//   - Stage 2: extract per-block columns into triplets, summing duplicates
//     deterministically in first-seen order, and assemble a CSR matrix.
//
// Returns a sparse matrix satisfying gonum's mat.Matrix. A single failed
// probe aborts the whole reconstruction: a partial Hessian is not
// meaningful.
//
// Complexity: blockSize HVP evaluations plus O(blocks · blockSize²)
// assembly work and memory for the triplets.
func (s *SparseBlockHessian) BlockHessian(x []float64, extra ...interface{}) (*sparse.CSR, error) {
	if len(x) != s.dim {
		return nil, fmt.Errorf("BlockHessian: %w: point has %d coordinates, dimension is %d",
			ErrDimensionMismatch, len(x), s.dim)
	}

	capacity := len(s.inds) * s.blockSize * s.blockSize
	rows := make([]int, 0, capacity)
	cols := make([]int, 0, capacity)
	data := make([]float64, 0, capacity)
	// position of each (row, col) pair in the triplet slices, so duplicate
	// coordinates sum here rather than relying on downstream semantics
	pos := make(map[[2]int]int, capacity)

	probe := make([]float64, s.dim)
	for slot := 0; slot < s.blockSize; slot++ {
		// Build the probe: activate slot `slot` across every block.
		for i := range probe {
			probe[i] = 0
		}
		for _, block := range s.inds {
			probe[block[slot]] = 1
		}

		hv, err := s.diff.HVP(s.f, x, probe, extra...)
		if err != nil {
			return nil, fmt.Errorf("BlockHessian: slot %d: %w", slot, err)
		}
		if len(hv) != s.dim {
			return nil, fmt.Errorf("BlockHessian: slot %d: %w: product has %d coordinates, dimension is %d",
				slot, ErrDimensionMismatch, len(hv), s.dim)
		}

		// Column `slot` of every block's sub-Hessian.
		for _, block := range s.inds {
			col := block[slot]
			for _, row := range block {
				key := [2]int{row, col}
				if at, dup := pos[key]; dup {
					data[at] += hv[row]

					continue
				}
				pos[key] = len(data)
				rows = append(rows, row)
				cols = append(cols, col)
				data = append(data, hv[row])
			}
		}
	}

	return sparse.NewCOO(s.dim, s.dim, rows, cols, data).ToCSR(), nil
}
