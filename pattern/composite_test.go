package pattern_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/foldgami/pattern"
)

// TestDict_ConstructionErrors verifies fail-fast field validation.
func TestDict_ConstructionErrors(t *testing.T) {
	num, err := pattern.NewNumericArray([]int{2})
	require.NoError(t, err)

	_, err = pattern.NewDict()
	assert.ErrorIs(t, err, pattern.ErrBadPattern, "zero fields must error")

	_, err = pattern.NewDict(pattern.Field{Name: "", Pattern: num})
	assert.ErrorIs(t, err, pattern.ErrBadPattern, "empty field name must error")

	_, err = pattern.NewDict(
		pattern.Field{Name: "a", Pattern: num},
		pattern.Field{Name: "a", Pattern: num},
	)
	assert.ErrorIs(t, err, pattern.ErrBadPattern, "duplicate field name must error")

	_, err = pattern.NewDict(pattern.Field{Name: "a", Pattern: nil})
	assert.ErrorIs(t, err, pattern.ErrBadPattern, "nil sub-pattern must error")
}

// TestDict_RoundTrip checks both modes through a heterogeneous dict.
func TestDict_RoundTrip(t *testing.T) {
	num, err := pattern.NewNumericArray([]int{2}, pattern.WithBounds(0, 10))
	require.NoError(t, err)
	sim, err := pattern.NewSimplex(3)
	require.NoError(t, err)
	d, err := pattern.NewDict(
		pattern.Field{Name: "scale", Pattern: num},
		pattern.Field{Name: "probs", Pattern: sim},
	)
	require.NoError(t, err)

	assert.Equal(t, 5, d.FlatLength(false), "2 + 3 plain")
	assert.Equal(t, 4, d.FlatLength(true), "2 + 2 free")

	arr, err := pattern.NewArrayFrom([]float64{1.5, 9}, []int{2})
	require.NoError(t, err)
	v := map[string]pattern.Value{
		"scale": arr,
		"probs": []float64{0.2, 0.3, 0.5},
	}

	for _, free := range []bool{false, true} {
		flat, ferr := d.Flatten(v, free)
		require.NoError(t, ferr, "free=%v", free)
		require.Len(t, flat, d.FlatLength(free))

		back, ferr := d.Fold(flat, free)
		require.NoError(t, ferr)
		m := back.(map[string]pattern.Value)

		gotScale := m["scale"].(*pattern.Array).Data()
		gotProbs := m["probs"].([]float64)
		for i, want := range []float64{1.5, 9} {
			assert.InDelta(t, want, gotScale[i], 1e-10)
		}
		for i, want := range []float64{0.2, 0.3, 0.5} {
			assert.InDelta(t, want, gotProbs[i], 1e-10)
		}
	}
}

// TestDict_ValidationErrors checks the wrong-type, wrong-key-set, and
// propagated sub-pattern diagnostics.
func TestDict_ValidationErrors(t *testing.T) {
	num, err := pattern.NewNumericArray([]int{2}, pattern.WithBounds(0, 1))
	require.NoError(t, err)
	d, err := pattern.NewDict(pattern.Field{Name: "a", Pattern: num})
	require.NoError(t, err)

	_, err = d.Flatten([]float64{1, 2}, false)
	assert.ErrorIs(t, err, pattern.ErrType, "non-map folded value must error")

	_, err = d.Flatten(map[string]pattern.Value{"b": nil}, false)
	assert.ErrorIs(t, err, pattern.ErrShape, "wrong key set must error")

	oob, err := pattern.NewArrayFrom([]float64{0.5, 2}, []int{2})
	require.NoError(t, err)
	_, err = d.Flatten(map[string]pattern.Value{"a": oob}, false)
	assert.ErrorIs(t, err, pattern.ErrDomain)
	assert.Contains(t, err.Error(), `field "a"`, "diagnostic names the offending field")

	ok, msg := d.ValidateFolded(map[string]pattern.Value{"a": oob})
	assert.False(t, ok)
	assert.Contains(t, msg, `field "a"`)
}

// TestDict_FoldPropagatesOptions verifies that SkipValidation reaches the
// sub-patterns.
func TestDict_FoldPropagatesOptions(t *testing.T) {
	num, err := pattern.NewNumericArray([]int{2}, pattern.WithBounds(0, 1))
	require.NoError(t, err)
	d, err := pattern.NewDict(pattern.Field{Name: "a", Pattern: num})
	require.NoError(t, err)

	_, err = d.Fold([]float64{-1, 0.5}, false)
	assert.ErrorIs(t, err, pattern.ErrDomain)

	v, err := d.Fold([]float64{-1, 0.5}, false, pattern.SkipValidation())
	require.NoError(t, err)
	got := v.(map[string]pattern.Value)["a"].(*pattern.Array).Data()
	assert.Equal(t, []float64{-1, 0.5}, got)
}

// TestPatternArray_RoundTrip checks replication of a PSD sub-pattern in
// free mode.
func TestPatternArray_RoundTrip(t *testing.T) {
	psd, err := pattern.NewPSDMatrix(2)
	require.NoError(t, err)
	pa, err := pattern.NewPatternArray([]int{3}, psd)
	require.NoError(t, err)

	assert.Equal(t, 12, pa.FlatLength(false), "3 · 4 plain")
	assert.Equal(t, 9, pa.FlatLength(true), "3 · 3 free")

	vs := make([]pattern.Value, 3)
	for k := range vs {
		d := float64(k + 2)
		vs[k] = mat.NewSymDense(2, []float64{d, 0.5, 0.5, d})
	}

	free, err := pa.Flatten(vs, true)
	require.NoError(t, err)
	back, err := pa.Fold(free, true)
	require.NoError(t, err)
	for k, orig := range vs {
		a, b := orig.(*mat.SymDense), back.([]pattern.Value)[k].(*mat.SymDense)
		for i := 0; i < 2; i++ {
			for j := 0; j < 2; j++ {
				assert.InDelta(t, a.At(i, j), b.At(i, j), 1e-10, "element %d at (%d,%d)", k, i, j)
			}
		}
	}
}

// TestPatternArray_ElementErrors checks that diagnostics carry the outer
// index.
func TestPatternArray_ElementErrors(t *testing.T) {
	sim, err := pattern.NewSimplex(3)
	require.NoError(t, err)
	pa, err := pattern.NewPatternArray([]int{2}, sim)
	require.NoError(t, err)

	_, err = pa.Fold([]float64{0.2, 0.3, 0.5, 0.5, 0.5, 0.5}, false)
	assert.ErrorIs(t, err, pattern.ErrDomain)
	assert.Contains(t, err.Error(), "element 1", "diagnostic names the offending element")

	_, err = pa.Flatten([]pattern.Value{[]float64{0.2, 0.3, 0.5}}, false)
	assert.ErrorIs(t, err, pattern.ErrShape, "wrong element count must error")
}

// TestComposite_LayoutDeterminism builds a dict of a 10×3 numeric array and
// ten 3×3 PSD matrices, then checks that per-group masks partition the flat
// layout exactly in both modes: the array segment first, then fixed-stride
// per-element segments.
func TestComposite_LayoutDeterminism(t *testing.T) {
	num, err := pattern.NewNumericArray([]int{10, 3})
	require.NoError(t, err)
	psd, err := pattern.NewPSDMatrix(3)
	require.NoError(t, err)
	mats, err := pattern.NewPatternArray([]int{10}, psd)
	require.NoError(t, err)
	d, err := pattern.NewDict(
		pattern.Field{Name: "array", Pattern: num},
		pattern.Field{Name: "mats", Pattern: mats},
	)
	require.NoError(t, err)

	require.Equal(t, 120, d.FlatLength(false), "30 + 10·9 plain")
	require.Equal(t, 90, d.FlatLength(true), "30 + 10·6 free")

	for _, tc := range []struct {
		free      bool
		arrOff    int // array segment start (always 0)
		matStride int // per-element flat width of one PSD matrix
	}{
		{free: false, matStride: 9},
		{free: true, matStride: 6},
	} {
		t.Run(fmt.Sprintf("free=%v", tc.free), func(t *testing.T) {
			covered := make([]int, d.FlatLength(tc.free))
			for g := 0; g < 10; g++ {
				mask := d.EmptyBool(false).(map[string]pattern.Value)
				arrMask := mask["array"].(*pattern.BoolArray)
				for j := 0; j < 3; j++ {
					arrMask.Data()[g*3+j] = true
				}
				matMask := mask["mats"].([]pattern.Value)[g].(*pattern.BoolArray)
				for i := range matMask.Data() {
					matMask.Data()[i] = true
				}

				idx, ierr := d.FlatIndices(mask, tc.free)
				require.NoError(t, ierr)

				want := []int{g * 3, g*3 + 1, g*3 + 2}
				base := 30 + g*tc.matStride
				for j := 0; j < tc.matStride; j++ {
					want = append(want, base+j)
				}
				assert.Equal(t, want, idx, "group %d occupies its own contiguous segments", g)

				for _, i := range idx {
					covered[i]++
				}
			}
			for i, c := range covered {
				assert.Equal(t, 1, c, "flat coordinate %d covered exactly once", i)
			}
		})
	}
}

// TestComposite_Random draws whole nested instances and requires validity.
func TestComposite_Random(t *testing.T) {
	sim, err := pattern.NewSimplex(4)
	require.NoError(t, err)
	psd, err := pattern.NewPSDMatrix(2)
	require.NoError(t, err)
	mats, err := pattern.NewPatternArray([]int{2, 2}, psd)
	require.NoError(t, err)
	d, err := pattern.NewDict(
		pattern.Field{Name: "probs", Pattern: sim},
		pattern.Field{Name: "mats", Pattern: mats},
	)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		ok, msg := d.ValidateFolded(d.Random())
		require.True(t, ok, "random instance must be valid: %s", msg)
	}
}
