// SPDX-License-Identifier: MIT
// Package pattern: folded containers for numeric-array values.
//
// Array is a minimal row-major N-dimensional container (shape + flat backing
// slice). gonum's mat package is strictly two-dimensional, so folded arrays
// of arbitrary rank carry their own shape; the layout matches the flat
// (non-free) representation exactly, which keeps Flatten/Fold a plain copy.

package pattern

import "fmt"

// Array is a dense row-major N-dimensional array of float64.
// The zero value is not usable; construct via NewArray or NewArrayFrom.
type Array struct {
	shape []int
	data  []float64
}

// NewArray allocates a zero-filled array of the given shape.
// Every dimension must be positive.
func NewArray(shape []int) (*Array, error) {
	n, err := sizeOfShape(shape)
	if err != nil {
		return nil, err
	}

	return &Array{shape: cloneInts(shape), data: make([]float64, n)}, nil
}

// NewArrayFrom wraps data (not copied) as an array of the given shape.
// len(data) must equal the product of the dimensions.
func NewArrayFrom(data []float64, shape []int) (*Array, error) {
	n, err := sizeOfShape(shape)
	if err != nil {
		return nil, err
	}
	if len(data) != n {
		return nil, fmt.Errorf("NewArrayFrom: %w: shape %v needs %d entries, got %d",
			ErrShape, shape, n, len(data))
	}

	return &Array{shape: cloneInts(shape), data: data}, nil
}

// Shape returns a copy of the array's dimensions.
func (a *Array) Shape() []int { return cloneInts(a.shape) }

// Len returns the total number of entries.
func (a *Array) Len() int { return len(a.data) }

// Data returns the backing slice (row-major). Mutating it mutates the array.
func (a *Array) Data() []float64 { return a.data }

// At returns the entry at the given multi-index.
func (a *Array) At(idx ...int) float64 { return a.data[a.offset(idx)] }

// Set assigns the entry at the given multi-index.
func (a *Array) Set(v float64, idx ...int) { a.data[a.offset(idx)] = v }

// offset converts a multi-index to a flat row-major offset.
// Panics on rank or bounds violations (programmer error, same policy as
// slice indexing).
func (a *Array) offset(idx []int) int {
	if len(idx) != len(a.shape) {
		panic(fmt.Sprintf("pattern: Array index rank %d, want %d", len(idx), len(a.shape)))
	}
	off := 0
	for d, i := range idx {
		if i < 0 || i >= a.shape[d] {
			panic(fmt.Sprintf("pattern: Array index %d out of range [0,%d) in dim %d", i, a.shape[d], d))
		}
		off = off*a.shape[d] + i
	}

	return off
}

// BoolArray is the boolean mirror of Array, used for masks over folded
// values (see Pattern.EmptyBool and Pattern.FlatIndices).
type BoolArray struct {
	shape []int
	data  []bool
}

// NewBoolArray allocates a mask of the given shape with every entry def.
func NewBoolArray(shape []int, def bool) (*BoolArray, error) {
	n, err := sizeOfShape(shape)
	if err != nil {
		return nil, err
	}
	b := &BoolArray{shape: cloneInts(shape), data: make([]bool, n)}
	if def {
		for i := range b.data {
			b.data[i] = true
		}
	}

	return b, nil
}

// Shape returns a copy of the mask's dimensions.
func (b *BoolArray) Shape() []int { return cloneInts(b.shape) }

// Len returns the total number of entries.
func (b *BoolArray) Len() int { return len(b.data) }

// Data returns the backing slice (row-major).
func (b *BoolArray) Data() []bool { return b.data }

// Any reports whether at least one entry is set.
func (b *BoolArray) Any() bool {
	for _, v := range b.data {
		if v {
			return true
		}
	}

	return false
}

// sizeOfShape validates a shape and returns the product of its dimensions.
func sizeOfShape(shape []int) (int, error) {
	if len(shape) == 0 {
		return 0, fmt.Errorf("sizeOfShape: %w: empty shape", ErrBadPattern)
	}
	n := 1
	for d, s := range shape {
		if s <= 0 {
			return 0, fmt.Errorf("sizeOfShape: %w: dimension %d is %d, must be > 0",
				ErrBadPattern, d, s)
		}
		n *= s
	}

	return n, nil
}

// cloneInts returns a defensive copy of s.
func cloneInts(s []int) []int {
	out := make([]int, len(s))
	copy(out, s)

	return out
}

// shapesEqual reports whether two shapes match dimension by dimension.
func shapesEqual(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}

	return true
}
