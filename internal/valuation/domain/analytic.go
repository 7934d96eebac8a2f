package domain

import "math"

// AnalyticResult 解析定价结果与希腊字母
type AnalyticResult struct {
	Value float64
	Delta float64
	Gamma float64
	Theta float64
	Vega  float64
	Rho   float64
}

// AnalyticEuropean 含连续股息率的欧式 Black-Scholes 解析解
func AnalyticEuropean(optionType OptionType, spot, strike, dividendYield, riskFreeRate, residualTime, volatility float64) *AnalyticResult {
	q, r, t, v := dividendYield, riskFreeRate, residualTime, volatility

	sqrtT := math.Sqrt(t)
	d1 := (math.Log(spot/strike) + (r-q+0.5*v*v)*t) / (v * sqrtT)
	d2 := d1 - v*sqrtT

	qDisc := math.Exp(-q * t)
	rDisc := math.Exp(-r * t)

	res := &AnalyticResult{
		Gamma: qDisc * normPdf(d1) / (spot * v * sqrtT),
		Vega:  spot * qDisc * normPdf(d1) * sqrtT,
	}

	if optionType == OptionTypeCall {
		res.Value = spot*qDisc*normCdf(d1) - strike*rDisc*normCdf(d2)
		res.Delta = qDisc * normCdf(d1)
		res.Theta = -spot*qDisc*normPdf(d1)*v/(2*sqrtT) -
			r*strike*rDisc*normCdf(d2) + q*spot*qDisc*normCdf(d1)
		res.Rho = strike * t * rDisc * normCdf(d2)
	} else {
		res.Value = strike*rDisc*normCdf(-d2) - spot*qDisc*normCdf(-d1)
		res.Delta = qDisc * (normCdf(d1) - 1)
		res.Theta = -spot*qDisc*normPdf(d1)*v/(2*sqrtT) +
			r*strike*rDisc*normCdf(-d2) - q*spot*qDisc*normCdf(-d1)
		res.Rho = -strike * t * rDisc * normCdf(-d2)
	}
	return res
}

// AnalyticDividendEuropean 离散股息欧式解析解：各期股息按无风险利率折现后从现价剥离
func AnalyticDividendEuropean(optionType OptionType, spot, strike, dividendYield, riskFreeRate, residualTime, volatility float64, dividends, exDates []float64) *AnalyticResult {
	effectiveSpot := spot
	for i := range dividends {
		effectiveSpot -= dividends[i] * math.Exp(-riskFreeRate*exDates[i])
	}
	return AnalyticEuropean(optionType, effectiveSpot, strike, dividendYield, riskFreeRate, residualTime, volatility)
}

// normCdf 标准正态分布累积分布函数
func normCdf(x float64) float64 {
	return 0.5 * (1 + math.Erf(x/math.Sqrt2))
}

// normPdf 标准正态分布概率密度函数
func normPdf(x float64) float64 {
	return math.Exp(-x*x/2) / math.Sqrt(2*math.Pi)
}
