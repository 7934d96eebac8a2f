package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCubicSplinePassesThroughKnots(t *testing.T) {
	xs := []float64{0, 1, 2.5, 4, 5.5}
	ys := []float64{1, -1, 0.5, 3, 2}

	s, err := NewCubicSpline(xs, ys)
	require.NoError(t, err)

	for i := range xs {
		assert.InDelta(t, ys[i], s.Value(xs[i]), 1e-12, "knot %d", i)
	}
}

func TestCubicSplineTwoPointsIsLinear(t *testing.T) {
	s, err := NewCubicSpline([]float64{0, 2}, []float64{1, 5})
	require.NoError(t, err)

	assert.InDelta(t, 3.0, s.Value(1), 1e-12)
	// 端部线性外推
	assert.InDelta(t, 7.0, s.Value(3), 1e-12)
}

func TestCubicSplineReproducesLinearData(t *testing.T) {
	xs := []float64{0, 1, 2, 3, 4}
	ys := make([]float64, len(xs))
	for i, x := range xs {
		ys[i] = 2*x + 1
	}

	s, err := NewCubicSpline(xs, ys)
	require.NoError(t, err)

	for x := 0.0; x <= 4.0; x += 0.25 {
		assert.InDelta(t, 2*x+1, s.Value(x), 1e-10)
	}
}

func TestCubicSplineDegenerate(t *testing.T) {
	_, err := NewCubicSpline([]float64{1}, []float64{2})
	var gridErr *DegenerateGridError
	require.ErrorAs(t, err, &gridErr)
	assert.Equal(t, 1, gridErr.Usable)

	_, err = NewCubicSpline(nil, nil)
	require.ErrorAs(t, err, &gridErr)
	assert.Equal(t, 0, gridErr.Usable)
}

func TestCubicSplineSmoothness(t *testing.T) {
	// 对 sin 采样，区间内插值误差应远小于采样间距的平方
	xs := make([]float64, 21)
	ys := make([]float64, 21)
	for i := range xs {
		xs[i] = float64(i) * 0.2
		ys[i] = math.Sin(xs[i])
	}

	s, err := NewCubicSpline(xs, ys)
	require.NoError(t, err)

	for x := 0.1; x < 4.0; x += 0.1 {
		assert.InDelta(t, math.Sin(x), s.Value(x), 1e-3)
	}
}
