// SPDX-License-Identifier: MIT
// Package pattern: Dict — an ordered dictionary of named sub-patterns.
//
// The flat representation concatenates sub-patterns' flat segments in
// declaration order; the folded representation is a map from field name to
// the sub-pattern's folded value. Segment offsets are pure functions of the
// preceding sub-patterns' flat lengths, computed once at construction —
// downstream differentiation code depends on this layout being fixed.

package pattern

import "fmt"

// Field names one sub-pattern of a Dict.
type Field struct {
	Name    string
	Pattern Pattern
}

// Dict is an ordered composite pattern over named sub-patterns.
// Folded values are map[string]Value with exactly the declared keys.
type Dict struct {
	fields   []Field
	offFree  []int // prefix offsets in free mode, len(fields)+1
	offPlain []int // prefix offsets in plain mode, len(fields)+1
}

// NewDict builds a composite pattern from fields in declaration order.
//
// Errors: ErrBadPattern on zero fields, empty or duplicate names, or nil
// sub-patterns.
// Complexity: O(len(fields)).
func NewDict(fields ...Field) (*Dict, error) {
	if len(fields) == 0 {
		return nil, fmt.Errorf("NewDict: %w: at least one field required", ErrBadPattern)
	}
	seen := make(map[string]struct{}, len(fields))
	offFree := make([]int, len(fields)+1)
	offPlain := make([]int, len(fields)+1)
	for i, f := range fields {
		if f.Name == "" {
			return nil, fmt.Errorf("NewDict: %w: empty field name at position %d", ErrBadPattern, i)
		}
		if _, dup := seen[f.Name]; dup {
			return nil, fmt.Errorf("NewDict: %w: duplicate field name %q", ErrBadPattern, f.Name)
		}
		seen[f.Name] = struct{}{}
		if f.Pattern == nil {
			return nil, fmt.Errorf("NewDict: %w: nil sub-pattern for field %q", ErrBadPattern, f.Name)
		}
		offFree[i+1] = offFree[i] + f.Pattern.FlatLength(true)
		offPlain[i+1] = offPlain[i] + f.Pattern.FlatLength(false)
	}
	fs := make([]Field, len(fields))
	copy(fs, fields)

	return &Dict{fields: fs, offFree: offFree, offPlain: offPlain}, nil
}

// Fields returns the declared fields in order (copy).
func (p *Dict) Fields() []Field {
	out := make([]Field, len(p.fields))
	copy(out, p.fields)

	return out
}

// FlatLength reports the sum of sub-pattern lengths for the given mode.
func (p *Dict) FlatLength(free bool) int { return p.offsets(free)[len(p.fields)] }

// offsets selects the cached prefix table for the mode.
func (p *Dict) offsets(free bool) []int {
	if free {
		return p.offFree
	}

	return p.offPlain
}

// ValidateFolded checks the map type, the exact key set, and every
// sub-value against its sub-pattern. Diagnostics are prefixed with the
// offending field name.
func (p *Dict) ValidateFolded(v Value) (bool, string) {
	m, ok := v.(map[string]Value)
	if !ok {
		return false, fmt.Sprintf("expected map[string]pattern.Value, got %T", v)
	}
	if len(m) != len(p.fields) {
		return false, fmt.Sprintf("wrong key count for dict: expected %d, got %d",
			len(p.fields), len(m))
	}
	for _, f := range p.fields {
		sub, present := m[f.Name]
		if !present {
			return false, fmt.Sprintf("wrong key set for dict: missing %q", f.Name)
		}
		if ok, msg := f.Pattern.ValidateFolded(sub); !ok {
			return false, fmt.Sprintf("field %q: %s", f.Name, msg)
		}
	}

	return true, ""
}

// Flatten concatenates sub-pattern flat segments in declaration order.
func (p *Dict) Flatten(v Value, free bool) ([]float64, error) {
	m, ok := v.(map[string]Value)
	if !ok {
		return nil, domainErrorf(opFlatten, ErrType,
			fmt.Sprintf("expected map[string]pattern.Value, got %T", v))
	}
	if len(m) != len(p.fields) {
		return nil, domainErrorf(opFlatten, ErrShape,
			fmt.Sprintf("wrong key count for dict: expected %d, got %d", len(p.fields), len(m)))
	}
	out := make([]float64, 0, p.FlatLength(free))
	for _, f := range p.fields {
		sub, present := m[f.Name]
		if !present {
			return nil, domainErrorf(opFlatten, ErrShape,
				fmt.Sprintf("wrong key set for dict: missing %q", f.Name))
		}
		seg, err := f.Pattern.Flatten(sub, free)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", f.Name, err)
		}
		out = append(out, seg...)
	}

	return out, nil
}

// Fold slices flat into the cached segments and folds each sub-pattern,
// propagating the fold options unchanged.
func (p *Dict) Fold(flat []float64, free bool, opts ...FoldOption) (Value, error) {
	if err := checkFlatLen(opFold, len(flat), p.FlatLength(free)); err != nil {
		return nil, err
	}
	off := p.offsets(free)
	out := make(map[string]Value, len(p.fields))
	for i, f := range p.fields {
		sub, err := f.Pattern.Fold(flat[off[i]:off[i+1]], free, opts...)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", f.Name, err)
		}
		out[f.Name] = sub
	}

	return out, nil
}

// EmptyBool returns a map of sub-pattern masks, all set to def.
func (p *Dict) EmptyBool(def bool) Value {
	out := make(map[string]Value, len(p.fields))
	for _, f := range p.fields {
		out[f.Name] = f.Pattern.EmptyBool(def)
	}

	return out
}

// FlatIndices concatenates sub-pattern index sets in declaration order,
// offsetting each by its segment's position in the flat layout.
func (p *Dict) FlatIndices(mask Value, free bool) ([]int, error) {
	m, ok := mask.(map[string]Value)
	if !ok {
		return nil, domainErrorf(opFlatIndices, ErrType,
			fmt.Sprintf("expected map[string]pattern.Value, got %T", mask))
	}
	off := p.offsets(free)
	var idx []int
	for i, f := range p.fields {
		sub, present := m[f.Name]
		if !present {
			return nil, domainErrorf(opFlatIndices, ErrShape,
				fmt.Sprintf("wrong key set for mask: missing %q", f.Name))
		}
		subIdx, err := f.Pattern.FlatIndices(sub, free)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", f.Name, err)
		}
		for _, j := range subIdx {
			idx = append(idx, off[i]+j)
		}
	}

	return idx, nil
}

// Random draws a valid instance per field.
func (p *Dict) Random() Value {
	out := make(map[string]Value, len(p.fields))
	for _, f := range p.fields {
		out[f.Name] = f.Pattern.Random()
	}

	return out
}
