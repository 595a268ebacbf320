// Package foldgami is your in-memory toolkit for flattening structured,
// constrained numeric parameters into plain vectors — and folding them
// back — so that optimizers and differentiation engines only ever see
// flat, unconstrained coordinates.
//
// 🚀 What is foldgami?
//
//	A modern library that brings together:
//		• Patterns: bijections between folded values and flat vectors
//		  (numeric arrays with bounds, simplices, PSD matrices,
//		  ordered dictionaries and repeated arrays of sub-patterns)
//		• Free parameterizations: every finite vector folds to a valid
//		  value (log/logit maps for bounds, softmax for simplices,
//		  log-Cholesky for positive-definite matrices)
//		• Function flattening: wrap f(folded args...) as f(flat vectors...)
//		• Block-sparse Hessians: reconstruct a structured Hessian from a
//		  handful of Hessian-vector probes instead of one per dimension
//		• Sensitivity: linear response of an optimum to a hyperparameter
//
// ✨ Why choose foldgami?
//
//   - Total free transforms – no invalid points for a line search to hit
//   - Deterministic flat layouts – stable index-to-semantics mapping
//   - Fail-fast validation – sentinel errors, skippable only where safe
//   - Built on gonum – Cholesky, finite differences, sparse assembly
//
// Under the hood, everything is organized under four subpackages:
//
//	pattern/     — the Pattern contract and its five variants
//	flatfunc/    — flatten the inputs of arbitrary objective functions
//	blockhess/   — sparse block-Hessian reconstruction from HVP probes
//	sensitivity/ — hyperparameter sensitivity of optima
//
// Quick sketch:
//
//	    folded Θ = {probs: simplex(3), cov: psd(3)}
//	        │ Flatten(free=true)
//	        ▼
//	    flat v ∈ ℝ⁸  ──optimizer──▶  v*  ──Fold──▶  valid Θ*
//
// Dive into the package docs for full examples and the exact layout
// guarantees each pattern makes.
//
//	go get github.com/katalvlaran/foldgami
package foldgami
