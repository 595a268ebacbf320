// Package blockhess reconstructs block-sparse Hessians from Hessian-vector
// probes.
//
// Description:
//
//	Given a flattened scalar objective f(x) and a rectangular index
//	structure inds[b][s] — block b, slot s — whose implied sparsity
//	pattern covers every nonzero off-block entry of the true Hessian,
//	SparseBlockHessian recovers the Hessian with blockSize Hessian-vector
//	products instead of one per dimension.
//
// Algorithm Outline:
//  1. For each slot s in 0..blockSize-1, build a probe v that is zero
//     except v[inds[b][s]] = 1 for every block b (one probe activates
//     slot s across all blocks simultaneously).
//  2. Evaluate H(x)·v through the Differentiator capability.
//  3. For each block b, the product restricted to inds[b][:] is column s
//     of that block's sub-Hessian: H[inds[b][:], inds[b][s]].
//  4. Accumulate (row, col, value) triplets and assemble a sparse matrix,
//     summing entries that land on the same coordinate.
//
// Cost:
//
//	blockSize HVP evaluations, each O(one gradient evaluation) — versus
//	O(dim) evaluations for a dense Hessian. That trade is the entire
//	reason this package exists.
//
// Fidelity:
//
//	If the true Hessian is exactly zero outside the declared structure,
//	the reconstruction equals the dense Hessian within autodiff/floating
//	tolerance. If the structure is too narrow, outside entries are
//	silently treated as zero — supply WithDisjointBlockCheck to at least
//	reject overlapping structures up front.
//
// Differentiation is an external capability: callers with a real AD engine
// implement Differentiator; FD provides a central-difference fallback built
// on gonum's diff/fd.
package blockhess
