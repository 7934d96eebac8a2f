package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTridiagonalSolveForInvertsApplyTo(t *testing.T) {
	op := NewTridiagonalOperator(5)
	op.SetFirstRow(4, 1)
	op.SetMidRows(1, 4, 1)
	op.SetLastRow(1, 4)

	x := []float64{1, -2, 3, 0.5, 2}
	rhs := op.ApplyTo(x)
	solved := op.SolveFor(rhs)

	require.Len(t, solved, 5)
	for i := range x {
		assert.InDelta(t, x[i], solved[i], 1e-12, "index %d", i)
	}
}

func TestTridiagonalSolveForKnownSystem(t *testing.T) {
	// [2 1 0; 1 2 1; 0 1 2] x = [4 8 8] → x = [1 2 3]
	op := NewTridiagonalOperator(3)
	op.SetFirstRow(2, 1)
	op.SetMidRow(1, 1, 2, 1)
	op.SetLastRow(1, 2)

	x := op.SolveFor([]float64{4, 8, 8})
	assert.InDelta(t, 1, x[0], 1e-12)
	assert.InDelta(t, 2, x[1], 1e-12)
	assert.InDelta(t, 3, x[2], 1e-12)
}

func TestTridiagonalIdentityAndArithmetic(t *testing.T) {
	v := []float64{3, 1, 4, 1, 5}

	identity := NewIdentityOperator(5)
	assert.Equal(t, v, identity.ApplyTo(v))

	op := NewTridiagonalOperator(5)
	op.SetMidRows(1, -2, 1)

	// I + 0·L = I
	same := identity.Add(op.Scale(0))
	assert.Equal(t, v, same.ApplyTo(v))

	// (I + L) − L = I
	back := identity.Add(op).Subtract(op)
	out := back.ApplyTo(v)
	for i := range v {
		assert.InDelta(t, v[i], out[i], 1e-12)
	}
}

func TestBlackScholesOperatorCoefficients(t *testing.T) {
	dx, r, q, sigma := 0.05, 0.05, 0.01, 0.2

	op := NewBlackScholesOperator(11, dx, r, q, sigma)

	sigma2 := sigma * sigma
	nu := r - q - sigma2/2
	wantPd := -(sigma2/dx - nu) / (2 * dx)
	wantPu := -(sigma2/dx + nu) / (2 * dx)
	wantPm := sigma2/(dx*dx) + r

	for i := 1; i < 10; i++ {
		assert.InDelta(t, wantPd, op.lower[i], 1e-15)
		assert.InDelta(t, wantPm, op.diag[i], 1e-15)
		assert.InDelta(t, wantPu, op.upper[i], 1e-15)
	}
}
