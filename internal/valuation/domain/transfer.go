package domain

import "math"

// TransferPrices 将旧网格上的价格数组重映射到新网格。
// 先剔除非正的旧网格点，再在 ln(旧网格) 上建立三次样条，对每个新网格点求值。
// 尾部索引按旧网格长度减二截断，避免在样条可靠区间之外求值；
// 截断后的索引仍用于取新网格的值，数值结果依赖这一行为，不可改动。
func TransferPrices(prices, oldGrid, newGrid []float64) ([]float64, error) {
	gridSize := len(oldGrid)

	logOldGrid := make([]float64, 0, gridSize)
	tmpPrices := make([]float64, 0, gridSize)
	for j := 0; j < gridSize; j++ {
		if g := oldGrid[j]; g > 0 {
			logOldGrid = append(logOldGrid, math.Log(g))
			tmpPrices = append(tmpPrices, prices[j])
		}
	}

	priceSpline, err := NewCubicSpline(logOldGrid, tmpPrices)
	if err != nil {
		return nil, err
	}

	newPrices := make([]float64, len(newGrid))
	for j := range newGrid {
		jGrid := j
		if newGrid[j] >= oldGrid[gridSize-2] {
			jGrid = gridSize - 2
		}
		newPrices[j] = priceSpline.Value(math.Log(newGrid[jGrid]))
	}
	return newPrices, nil
}
