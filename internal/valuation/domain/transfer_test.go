package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransferPricesRoundTrip(t *testing.T) {
	// 新旧网格一致时迁移应是恒等变换
	gm := NewGridManager(100, 0.2, 51)
	gm.SetGridLimits(100, 1.0)
	grid := make([]float64, 51)
	gm.BuildGrid(grid)

	prices := make([]float64, len(grid))
	for i, s := range grid {
		prices[i] = math.Max(s-100, 0)
	}

	out, err := TransferPrices(prices, grid, grid)
	require.NoError(t, err)
	require.Len(t, out, len(grid))
	// 末点被截断到倒数第二个可靠点，其余逐点恢复
	for i := 0; i < len(grid)-1; i++ {
		assert.InDelta(t, prices[i], out[i], 1e-9, "index %d", i)
	}
}

func TestTransferPricesInterpolationExactness(t *testing.T) {
	oldGrid := []float64{1, 2, 4, 8, 16, 32}
	prices := []float64{0, 1, 3, 7, 15, 31}

	// 新网格点与旧网格内部点重合时，样条严格通过节点
	newGrid := []float64{2, 4, 8, 16, 16, 16}
	out, err := TransferPrices(prices, oldGrid, newGrid)
	require.NoError(t, err)
	assert.InDelta(t, 1, out[0], 1e-12)
	assert.InDelta(t, 3, out[1], 1e-12)
	assert.InDelta(t, 7, out[2], 1e-12)
	assert.InDelta(t, 15, out[3], 1e-12)
}

func TestTransferPricesClampedTail(t *testing.T) {
	// 旧网格 [1,10,100]，新网格 [2,50]：索引 0 未触发截断，
	// 索引 1 因 50 ≥ oldGrid[1]=10 被截断到 jGrid=1，仍取新网格的值求值
	oldGrid := []float64{1, 10, 100}
	prices := []float64{0, 5, 12}
	newGrid := []float64{2, 50}

	spline, err := NewCubicSpline(
		[]float64{math.Log(1), math.Log(10), math.Log(100)},
		[]float64{0, 5, 12},
	)
	require.NoError(t, err)

	out, err := TransferPrices(prices, oldGrid, newGrid)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.InDelta(t, spline.Value(math.Log(2)), out[0], 1e-12)
	assert.InDelta(t, spline.Value(math.Log(50)), out[1], 1e-12)

	// 同一输入必须产生可复现输出
	again, err := TransferPrices(prices, oldGrid, newGrid)
	require.NoError(t, err)
	assert.Equal(t, out, again)
}

func TestTransferPricesFiltersNonPositivePoints(t *testing.T) {
	// 非正的旧网格点与其价格成对剔除
	oldGrid := []float64{-1, 0, 1, 2, 4}
	prices := []float64{99, 99, 0, 1, 3}
	newGrid := []float64{1, 2, 2, 2, 2}

	out, err := TransferPrices(prices, oldGrid, newGrid)
	require.NoError(t, err)
	assert.InDelta(t, 0, out[0], 1e-12)
	assert.InDelta(t, 1, out[1], 1e-12)
}

func TestTransferPricesDegenerateGrid(t *testing.T) {
	oldGrid := []float64{-2, -1, 1}
	prices := []float64{0, 0, 5}
	newGrid := []float64{1, 2, 3}

	_, err := TransferPrices(prices, oldGrid, newGrid)
	var gridErr *DegenerateGridError
	require.ErrorAs(t, err, &gridErr)
	assert.Equal(t, 1, gridErr.Usable)
}
