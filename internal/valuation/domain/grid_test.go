package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildTestGrid(t *testing.T, gm *GridManager, points int) []float64 {
	t.Helper()
	grid := make([]float64, points)
	gm.BuildGrid(grid)
	for i := 1; i < len(grid); i++ {
		require.Greater(t, grid[i], grid[i-1], "grid must be strictly increasing at index %d", i)
	}
	return grid
}

func TestGridManagerSetGridLimits(t *testing.T) {
	gm := NewGridManager(100, 0.2, 101)
	gm.SetGridLimits(95, 1.0)

	b := gm.Bounds()
	assert.Less(t, b.SMin, b.Center)
	assert.Greater(t, b.SMax, b.Center)
	// 执行价必须落在网格内，并留有安全区
	assert.LessOrEqual(t, b.SMin, 100/1.1)
	assert.GreaterOrEqual(t, b.SMax, 100*1.1)

	buildTestGrid(t, gm, 101)
}

func TestGridManagerStrikeSafetyZone(t *testing.T) {
	// 深度实值：中心远离执行价，边界必须拉伸覆盖执行价
	gm := NewGridManager(100, 0.1, 101)
	gm.SetGridLimits(300, 0.25)

	b := gm.Bounds()
	assert.LessOrEqual(t, b.SMin, 100/1.1)
	// 对侧按对数对称回缩
	assert.InDelta(t, b.Center*b.Center/b.SMin, b.SMax, 1e-9*b.SMax)
}

func TestGridManagerOnDividendEvent(t *testing.T) {
	gm := NewGridManager(100, 0.2, 101)
	gm.SetGridLimits(95, 1.0)
	oldBounds := gm.Bounds()

	newBounds := gm.OnDividendEvent(5, 0.5)

	// 回溯跨越除息日：中心上移股息额
	assert.InDelta(t, oldBounds.Center+5, newBounds.Center, 1e-12)
	assert.Less(t, newBounds.SMin, newBounds.Center)
	assert.Greater(t, newBounds.SMax, newBounds.Center)

	buildTestGrid(t, gm, 101)
}

func TestGridManagerWideningPreservesLogSymmetry(t *testing.T) {
	gm := NewGridManager(10, 0.4, 101)
	gm.SetGridLimits(95, 1.0)
	before := gm.Bounds()

	// 大额股息把候选下界推过波动率带宽的下界，触发扩展
	newBounds := gm.OnDividendEvent(60, 0.5)
	require.Greater(t, newBounds.SMin, before.SMin)
	assert.InDelta(t, newBounds.Center*newBounds.Center/newBounds.SMin, newBounds.SMax, 1e-9*newBounds.SMax)

	buildTestGrid(t, gm, 101)
}

func TestGridLengthInvariantAcrossEvents(t *testing.T) {
	gm := NewGridManager(100, 0.2, 101)
	gm.SetGridLimits(90, 1.0)
	grid := make([]float64, 101)

	for _, event := range []struct{ amount, time float64 }{
		{5, 0.75}, {3, 0.5}, {2, 0.25},
	} {
		gm.OnDividendEvent(event.amount, event.time)
		gm.BuildGrid(grid)
		assert.Len(t, grid, 101)
		for i := 1; i < len(grid); i++ {
			require.Greater(t, grid[i], grid[i-1])
		}
	}
}

func TestCenterSampling(t *testing.T) {
	// 奇数长度取中点，偶数长度取中间两点均值
	assert.Equal(t, 3.0, ValueAtCenter([]float64{1, 2, 3, 4, 5}))
	assert.Equal(t, 2.5, ValueAtCenter([]float64{1, 2, 3, 4}))

	// 线性函数的中心导数恢复斜率，二阶导数为零
	grid := []float64{1, 2, 3, 4, 5}
	linear := []float64{2, 4, 6, 8, 10}
	assert.InDelta(t, 2.0, FirstDerivativeAtCenter(linear, grid), 1e-12)
	assert.InDelta(t, 0.0, SecondDerivativeAtCenter(linear, grid), 1e-12)
}
