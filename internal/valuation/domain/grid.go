package domain

import "math"

// CenterAndBounds 当前网格支撑区间，约束 SMin < Center < SMax
type CenterAndBounds struct {
	Center float64
	SMin   float64
	SMax   float64
}

// GridManager 管理网格的中心与上下界，并在除息事件时决定边界如何扩展
type GridManager struct {
	strike     float64
	volatility float64
	gridPoints int

	center float64
	sMin   float64
	sMax   float64
}

// NewGridManager 创建网格管理器，gridPoints 为估值生命周期内固定的网格点数
func NewGridManager(strike, volatility float64, gridPoints int) *GridManager {
	return &GridManager{
		strike:     strike,
		volatility: volatility,
		gridPoints: gridPoints,
	}
}

// SetGridLimits 围绕 center 按波动率带宽重设上下界，并保证执行价落在网格内
func (g *GridManager) SetGridLimits(center, timeDelay float64) {
	g.center = center
	volSqrtTime := g.volatility * math.Sqrt(timeDelay)

	// prefactor 在小波动率下微调带宽；timeDelay 为零时取表达式的极限值
	minMaxFactor := math.Exp(0.08)
	if volSqrtTime > 0 {
		prefactor := 1.0 + 0.02/volSqrtTime
		minMaxFactor = math.Exp(4.0 * prefactor * volSqrtTime)
	}
	g.sMin = g.center / minMaxFactor
	g.sMax = g.center * minMaxFactor

	// 执行价安全区，调整一侧后另一侧按对数对称回缩
	const safetyZoneFactor = 1.1
	if g.sMin > g.strike/safetyZoneFactor {
		g.sMin = g.strike / safetyZoneFactor
		g.sMax = g.center / (g.sMin / g.center)
	}
	if g.sMax < g.strike*safetyZoneFactor {
		g.sMax = g.strike * safetyZoneFactor
		g.sMin = g.center / (g.sMax / g.center)
	}
}

// OnDividendEvent 回溯跨越除息日：股息重新计入参考价位，必要时抬高下界并
// 按对数对称重标上界。边界变化意味着调用方需要完整重建网格而非平移。
func (g *GridManager) OnDividendEvent(amount, eventTime float64) CenterAndBounds {
	newSMin := g.sMin + amount
	g.SetGridLimits(g.center+amount, eventTime)
	if newSMin > g.sMin {
		g.sMin = newSMin
		g.sMax = g.center / (g.sMin / g.center)
	}
	return g.Bounds()
}

// Bounds 当前中心与上下界
func (g *GridManager) Bounds() CenterAndBounds {
	return CenterAndBounds{Center: g.center, SMin: g.sMin, SMax: g.sMax}
}

// LogSpacing 当前对数网格间距
func (g *GridManager) LogSpacing() float64 {
	return (math.Log(g.sMax) - math.Log(g.sMin)) / float64(g.gridPoints-1)
}

// BuildGrid 在 dst 上重建对数均匀网格，dst 长度必须等于 gridPoints
func (g *GridManager) BuildGrid(dst []float64) {
	edx := math.Exp(g.LogSpacing())
	dst[0] = g.sMin
	for j := 1; j < g.gridPoints; j++ {
		dst[j] = dst[j-1] * edx
	}
}

// ValueAtCenter 取数组中心值，偶数长度时取中间两点均值
func ValueAtCenter(a []float64) float64 {
	n := len(a)
	if n%2 == 1 {
		return a[n/2]
	}
	return (a[n/2-1] + a[n/2]) / 2
}

// FirstDerivativeAtCenter 网格中心处的一阶导数（中心差分）
func FirstDerivativeAtCenter(a, grid []float64) float64 {
	n := len(a)
	if n%2 == 1 {
		mid := n / 2
		return (a[mid+1] - a[mid-1]) / (grid[mid+1] - grid[mid-1])
	}
	mid := n / 2
	return (a[mid] - a[mid-1]) / (grid[mid] - grid[mid-1])
}

// SecondDerivativeAtCenter 网格中心处的二阶导数
func SecondDerivativeAtCenter(a, grid []float64) float64 {
	n := len(a)
	if n%2 == 1 {
		mid := n / 2
		deltaPlus := (a[mid+1] - a[mid]) / (grid[mid+1] - grid[mid])
		deltaMinus := (a[mid] - a[mid-1]) / (grid[mid] - grid[mid-1])
		dS := (grid[mid+1] - grid[mid-1]) / 2
		return (deltaPlus - deltaMinus) / dS
	}
	mid := n / 2
	deltaPlus := (a[mid+1] - a[mid-1]) / (grid[mid+1] - grid[mid-1])
	deltaMinus := (a[mid] - a[mid-2]) / (grid[mid] - grid[mid-2])
	return (deltaPlus - deltaMinus) / (grid[mid] - grid[mid-1])
}
