// Package flatfunc adapts functions of folded (structured) arguments into
// functions of flat vectors.
//
// Given an objective f(folded₁, ..., foldedₖ, extra...) and one pattern per
// folded argument, Flattened exposes Call(flat₁, ..., flatₖ, extra...): each
// flat vector is folded back through its pattern (free or plain mode, as
// declared per argument) before f runs. Because every pattern's fold is
// expressed with shape-resolved numeric operations only — no branching on
// input values — the flattened function is differentiable wherever f is,
// which is exactly what blockhess and sensitivity rely on.
//
// Fold validation is skipped on the Call path: the free modes are total by
// construction, and plain-mode callers in optimization inner loops guarantee
// validity out-of-band. Length mismatches are still rejected unconditionally
// by the patterns themselves.
package flatfunc
