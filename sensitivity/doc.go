// Package sensitivity linearly approximates the dependence of an optimum on
// a hyperparameter.
//
// Description:
//
//	Suppose θ̂(λ) = argmin over θ of f(θ, λ). The dependence of θ̂ on λ is
//	in general nonlinear; this package evaluates the first-order
//	approximation
//
//	    θ̂(λ) ≈ θ̂(λ₀) + S·(λ − λ₀),   S = −H⁻¹·C,
//
//	where H is the Hessian of f in the θ coordinates at the base optimum
//	and C is the cross Hessian d²f/dθdλ. Because θ and λ are in general
//	structured, constrained values, everything is evaluated in flattened
//	space through user-supplied patterns — typically free mode, so the
//	predicted optimum always folds back to a valid value.
//
// Errors:
//   - ErrNotOptimal      — the gradient at the putative optimum is not
//     within tolerance of zero (reported with its norm and the tolerance).
//   - ErrHessianNotPD    — the Hessian at the optimum fails Cholesky
//     factorization, so the linear system cannot be solved stably.
//
// Derivative evaluation is delegated to a blockhess.Differentiator, so a
// real AD engine can replace the finite-difference default.
package sensitivity
