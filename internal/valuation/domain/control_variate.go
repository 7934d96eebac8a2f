package domain

// ControlVariateCoordinator 维护控制变量：与主数组共用同一网格与时间步的
// 欧式等价数值解，以及对应的解析参考值。主数值解减去数值控制解、加回
// 解析控制值，可抵消两条数值解共有的离散化误差。控制数组不接受任何
// 步进条件，只跟踪欧式等价解。
type ControlVariateCoordinator struct {
	analytic *AnalyticResult
	prices   []float64
}

// NewControlVariateCoordinator 以股息计回现价的解析欧式解作为参考值
func NewControlVariateCoordinator(optionType OptionType, underlying, strike, dividendYield, riskFreeRate, residualTime, volatility float64, schedule *DividendSchedule) *ControlVariateCoordinator {
	amounts := make([]float64, schedule.Len())
	times := make([]float64, schedule.Len())
	for i, e := range schedule.Events() {
		amounts[i] = e.Amount
		times[i] = e.Time
	}
	analytic := AnalyticDividendEuropean(optionType,
		underlying+schedule.TotalAmount(), strike,
		dividendYield, riskFreeRate, residualTime, volatility,
		amounts, times)
	return &ControlVariateCoordinator{analytic: analytic}
}

// Reset 以终端收益初始化控制数组，与主数组同源
func (c *ControlVariateCoordinator) Reset(initialPrices []float64) {
	c.prices = append(c.prices[:0], initialPrices...)
}

// Prices 当前控制数组
func (c *ControlVariateCoordinator) Prices() []float64 {
	return c.prices
}

// SetPrices 替换控制数组，网格迁移后由调用方写回
func (c *ControlVariateCoordinator) SetPrices(prices []float64) {
	c.prices = prices
}

// Correction 价格修正量：解析参考值减数值控制值
func (c *ControlVariateCoordinator) Correction() float64 {
	return c.analytic.Value - ValueAtCenter(c.prices)
}

// DeltaCorrection Delta 修正量
func (c *ControlVariateCoordinator) DeltaCorrection(grid []float64) float64 {
	return c.analytic.Delta - FirstDerivativeAtCenter(c.prices, grid)
}

// GammaCorrection Gamma 修正量
func (c *ControlVariateCoordinator) GammaCorrection(grid []float64) float64 {
	return c.analytic.Gamma - SecondDerivativeAtCenter(c.prices, grid)
}
