// SPDX-License-Identifier: MIT
// Package pattern: PatternArray — a fixed outer shape of one repeated
// sub-pattern.
//
// The flat representation concatenates the sub-pattern's flat segment once
// per outer index in row-major order. Folded values are []Value of length
// prod(outerShape), indexed row-major over the outer shape, so the k-th
// element occupies flat coordinates [k·subLen, (k+1)·subLen).

package pattern

import "fmt"

// PatternArray repeats one sub-pattern over a fixed outer shape.
type PatternArray struct {
	outer []int
	count int
	sub   Pattern
}

// NewPatternArray builds a composite repeating sub over outerShape.
//
// Errors: ErrBadPattern on an invalid outer shape or a nil sub-pattern.
func NewPatternArray(outerShape []int, sub Pattern) (*PatternArray, error) {
	count, err := sizeOfShape(outerShape)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, fmt.Errorf("NewPatternArray: %w: nil sub-pattern", ErrBadPattern)
	}

	return &PatternArray{outer: cloneInts(outerShape), count: count, sub: sub}, nil
}

// OuterShape returns a copy of the replication shape.
func (p *PatternArray) OuterShape() []int { return cloneInts(p.outer) }

// Sub returns the repeated sub-pattern.
func (p *PatternArray) Sub() Pattern { return p.sub }

// FlatLength reports count · sub.FlatLength(free).
func (p *PatternArray) FlatLength(free bool) int { return p.count * p.sub.FlatLength(free) }

// ValidateFolded checks the slice type, the element count, and every
// element against the sub-pattern. Diagnostics carry the outer index.
func (p *PatternArray) ValidateFolded(v Value) (bool, string) {
	vs, ok := v.([]Value)
	if !ok {
		return false, fmt.Sprintf("expected []pattern.Value, got %T", v)
	}
	if len(vs) != p.count {
		return false, fmt.Sprintf("wrong element count for pattern array: expected %d, got %d",
			p.count, len(vs))
	}
	for k, sub := range vs {
		if ok, msg := p.sub.ValidateFolded(sub); !ok {
			return false, fmt.Sprintf("element %d: %s", k, msg)
		}
	}

	return true, ""
}

// Flatten concatenates per-element flat segments in row-major outer order.
func (p *PatternArray) Flatten(v Value, free bool) ([]float64, error) {
	vs, ok := v.([]Value)
	if !ok {
		return nil, domainErrorf(opFlatten, ErrType,
			fmt.Sprintf("expected []pattern.Value, got %T", v))
	}
	if len(vs) != p.count {
		return nil, domainErrorf(opFlatten, ErrShape,
			fmt.Sprintf("wrong element count for pattern array: expected %d, got %d", p.count, len(vs)))
	}
	out := make([]float64, 0, p.FlatLength(free))
	for k, sub := range vs {
		seg, err := p.sub.Flatten(sub, free)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", k, err)
		}
		out = append(out, seg...)
	}

	return out, nil
}

// Fold slices flat into count equal segments and folds each one,
// propagating the fold options unchanged.
func (p *PatternArray) Fold(flat []float64, free bool, opts ...FoldOption) (Value, error) {
	if err := checkFlatLen(opFold, len(flat), p.FlatLength(free)); err != nil {
		return nil, err
	}
	stride := p.sub.FlatLength(free)
	out := make([]Value, p.count)
	for k := 0; k < p.count; k++ {
		sub, err := p.sub.Fold(flat[k*stride:(k+1)*stride], free, opts...)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", k, err)
		}
		out[k] = sub
	}

	return out, nil
}

// EmptyBool returns a []Value of per-element masks, all set to def.
func (p *PatternArray) EmptyBool(def bool) Value {
	out := make([]Value, p.count)
	for k := range out {
		out[k] = p.sub.EmptyBool(def)
	}

	return out
}

// FlatIndices concatenates per-element index sets, offsetting element k by
// k · sub.FlatLength(free).
func (p *PatternArray) FlatIndices(mask Value, free bool) ([]int, error) {
	ms, ok := mask.([]Value)
	if !ok {
		return nil, domainErrorf(opFlatIndices, ErrType,
			fmt.Sprintf("expected []pattern.Value, got %T", mask))
	}
	if len(ms) != p.count {
		return nil, domainErrorf(opFlatIndices, ErrShape,
			fmt.Sprintf("wrong mask element count: expected %d, got %d", p.count, len(ms)))
	}
	stride := p.sub.FlatLength(free)
	var idx []int
	for k, m := range ms {
		subIdx, err := p.sub.FlatIndices(m, free)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", k, err)
		}
		for _, j := range subIdx {
			idx = append(idx, k*stride+j)
		}
	}

	return idx, nil
}

// Random draws a valid instance per element.
func (p *PatternArray) Random() Value {
	out := make([]Value, p.count)
	for k := range out {
		out[k] = p.sub.Random()
	}

	return out
}
