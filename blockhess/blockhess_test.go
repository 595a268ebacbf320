package blockhess_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/foldgami/blockhess"
)

// quadratic builds f(x) = ½·xᵀAx from a dense row-major n×n matrix. Central
// differences are exact on quadratics, so the analytic Hessian A is the
// reference.
func quadratic(n int, a []float64) blockhess.Objective {
	return func(x []float64, _ ...interface{}) (float64, error) {
		var total float64
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				total += 0.5 * x[i] * a[i*n+j] * x[j]
			}
		}

		return total, nil
	}
}

// countingDiff wraps a Differentiator and counts HVP evaluations.
type countingDiff struct {
	inner blockhess.Differentiator
	hvps  int
}

func (c *countingDiff) Gradient(f blockhess.Objective, x []float64, extra ...interface{}) ([]float64, error) {
	return c.inner.Gradient(f, x, extra...)
}

func (c *countingDiff) HVP(f blockhess.Objective, x, v []float64, extra ...interface{}) ([]float64, error) {
	c.hvps++

	return c.inner.HVP(f, x, v, extra...)
}

// TestFD_GradientQuadratic checks ∇(½·xᵀAx) = Ax on a 2×2 quadratic.
func TestFD_GradientQuadratic(t *testing.T) {
	f := quadratic(2, []float64{2, 1, 1, 3})
	d := blockhess.NewFD()

	grad, err := d.Gradient(f, []float64{1, -1})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, grad[0], 1e-6)  // 2·1 + 1·(−1)
	assert.InDelta(t, -2.0, grad[1], 1e-6) // 1·1 + 3·(−1)
}

// TestFD_HVPQuadratic checks H·v = Av, including the zero-direction
// shortcut and the dimension guard.
func TestFD_HVPQuadratic(t *testing.T) {
	f := quadratic(2, []float64{2, 1, 1, 3})
	d := blockhess.NewFD()

	hv, err := d.HVP(f, []float64{0.3, -0.7}, []float64{1, 2})
	require.NoError(t, err)
	assert.InDelta(t, 4.0, hv[0], 1e-5) // 2·1 + 1·2
	assert.InDelta(t, 7.0, hv[1], 1e-5) // 1·1 + 3·2

	zero, err := d.HVP(f, []float64{0.3, -0.7}, []float64{0, 0})
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0}, zero, "zero direction yields zero product")

	_, err = d.HVP(f, []float64{1, 2}, []float64{1})
	assert.ErrorIs(t, err, blockhess.ErrDimensionMismatch)
}

// TestFD_ObjectiveErrorPropagates aborts a probe on objective failure.
func TestFD_ObjectiveErrorPropagates(t *testing.T) {
	boom := errors.New("evaluation failed")
	f := func([]float64, ...interface{}) (float64, error) { return 0, boom }
	d := blockhess.NewFD()

	_, err := d.Gradient(f, []float64{1})
	assert.ErrorIs(t, err, boom)

	_, err = d.HVP(f, []float64{1}, []float64{1})
	assert.ErrorIs(t, err, boom)
}

// TestNew_StructureErrors verifies construction validation.
func TestNew_StructureErrors(t *testing.T) {
	f := quadratic(2, []float64{1, 0, 0, 1})
	d := blockhess.NewFD()

	_, err := blockhess.New(nil, d, 2, [][]int{{0}})
	assert.ErrorIs(t, err, blockhess.ErrNilObjective)

	_, err = blockhess.New(f, nil, 2, [][]int{{0}})
	assert.ErrorIs(t, err, blockhess.ErrNilDifferentiator)

	_, err = blockhess.New(f, d, 0, [][]int{{0}})
	assert.ErrorIs(t, err, blockhess.ErrBadStructure, "non-positive dimension must error")

	_, err = blockhess.New(f, d, 2, nil)
	assert.ErrorIs(t, err, blockhess.ErrBadStructure, "no blocks must error")

	_, err = blockhess.New(f, d, 2, [][]int{{}})
	assert.ErrorIs(t, err, blockhess.ErrBadStructure, "empty block must error")

	_, err = blockhess.New(f, d, 4, [][]int{{0, 1}, {2}})
	assert.ErrorIs(t, err, blockhess.ErrBadStructure, "ragged structure must error")

	_, err = blockhess.New(f, d, 2, [][]int{{0, 2}})
	assert.ErrorIs(t, err, blockhess.ErrIndexOutOfRange)

	_, err = blockhess.New(f, d, 4, [][]int{{0, 1}, {1, 2}}, blockhess.WithDisjointBlockCheck())
	assert.ErrorIs(t, err, blockhess.ErrOverlap, "duplicate index rejected when disjointness is requested")

	_, err = blockhess.New(f, d, 4, [][]int{{0, 1}, {1, 2}})
	assert.NoError(t, err, "overlap tolerated by default")
}

// TestBlockHessian_BlockDiagonal reconstructs a 6-dimensional block-diagonal
// Hessian from two 3-wide blocks and compares entry-by-entry against the
// analytic matrix.
func TestBlockHessian_BlockDiagonal(t *testing.T) {
	// Two disjoint 3×3 diagonal blocks; everything else zero.
	a := make([]float64, 36)
	blockA := []float64{4, 1, 0, 1, 3, 0.5, 0, 0.5, 2}
	blockB := []float64{5, -1, 0, -1, 2, 0.25, 0, 0.25, 1}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			a[i*6+j] = blockA[i*3+j]
			a[(i+3)*6+(j+3)] = blockB[i*3+j]
		}
	}
	f := quadratic(6, a)

	diff := &countingDiff{inner: blockhess.NewFD()}
	est, err := blockhess.New(f, diff, 6, [][]int{{0, 1, 2}, {3, 4, 5}})
	require.NoError(t, err)
	assert.Equal(t, 6, est.Dim())
	assert.Equal(t, 3, est.BlockSize())

	x := []float64{0.1, -0.2, 0.3, 0.7, -0.5, 0.4}
	hess, err := est.BlockHessian(x)
	require.NoError(t, err)

	assert.Equal(t, 3, diff.hvps, "one probe per slot, not per block")

	r, c := hess.Dims()
	require.Equal(t, 6, r)
	require.Equal(t, 6, c)
	for i := 0; i < 6; i++ {
		for j := 0; j < 6; j++ {
			assert.InDelta(t, a[i*6+j], hess.At(i, j), 1e-5, "entry (%d,%d)", i, j)
		}
	}
}

// TestBlockHessian_OverlapSums checks that a flat index shared by two
// blocks accumulates both contributions.
func TestBlockHessian_OverlapSums(t *testing.T) {
	// f(x) = ½·(2x₀² + 2x₁²): H = diag(2, 2).
	f := quadratic(2, []float64{2, 0, 0, 2})
	// Both single-index blocks name coordinate 0, so its diagonal entry is
	// probed twice and the triplets sum to 2·H₀₀.
	est, err := blockhess.New(f, blockhess.NewFD(), 2, [][]int{{0}, {0}})
	require.NoError(t, err)

	hess, err := est.BlockHessian([]float64{1, 1})
	require.NoError(t, err)
	assert.InDelta(t, 4.0, hess.At(0, 0), 1e-5, "duplicate coordinates sum")
	assert.InDelta(t, 0.0, hess.At(1, 1), 1e-12, "unprobed coordinates stay zero")
}

// TestBlockHessian_ProbeFailureAborts discards the whole reconstruction on
// a failed probe.
func TestBlockHessian_ProbeFailureAborts(t *testing.T) {
	boom := errors.New("probe failed")
	calls := 0
	f := func(x []float64, _ ...interface{}) (float64, error) {
		calls++
		if calls > 4 {
			return 0, boom
		}

		return x[0] * x[0], nil
	}
	est, err := blockhess.New(f, blockhess.NewFD(), 2, [][]int{{0, 1}})
	require.NoError(t, err)

	_, err = est.BlockHessian([]float64{1, 1})
	assert.ErrorIs(t, err, boom, "a failed probe aborts the estimate")
}

// TestBlockHessian_DimensionGuard rejects mis-sized evaluation points.
func TestBlockHessian_DimensionGuard(t *testing.T) {
	f := quadratic(2, []float64{1, 0, 0, 1})
	est, err := blockhess.New(f, blockhess.NewFD(), 2, [][]int{{0, 1}})
	require.NoError(t, err)

	_, err = est.BlockHessian([]float64{1})
	assert.ErrorIs(t, err, blockhess.ErrDimensionMismatch)
}
