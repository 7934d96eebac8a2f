package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyticEuropeanKnownValues(t *testing.T) {
	tests := []struct {
		name       string
		optionType OptionType
		spot       float64
		strike     float64
		q          float64
		r          float64
		time       float64
		vol        float64
		wantValue  float64
		wantDelta  float64
	}{
		{
			name: "atm call", optionType: OptionTypeCall,
			spot: 100, strike: 100, r: 0.05, time: 1.0, vol: 0.20,
			wantValue: 10.4506, wantDelta: 0.6368,
		},
		{
			name: "atm put", optionType: OptionTypePut,
			spot: 100, strike: 100, r: 0.05, time: 1.0, vol: 0.20,
			wantValue: 5.5735, wantDelta: -0.3632,
		},
		{
			name: "itm call with yield", optionType: OptionTypeCall,
			spot: 110, strike: 100, q: 0.03, r: 0.05, time: 0.5, vol: 0.25,
			wantValue: 13.9116, wantDelta: 0.7418,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := AnalyticEuropean(tt.optionType, tt.spot, tt.strike, tt.q, tt.r, tt.time, tt.vol)
			assert.InDelta(t, tt.wantValue, res.Value, 2e-3)
			assert.InDelta(t, tt.wantDelta, res.Delta, 2e-3)
			assert.Greater(t, res.Gamma, 0.0)
			assert.Greater(t, res.Vega, 0.0)
		})
	}
}

func TestAnalyticEuropeanPutCallParity(t *testing.T) {
	spot, strike, q, r, tm, vol := 105.0, 100.0, 0.02, 0.05, 0.75, 0.3

	call := AnalyticEuropean(OptionTypeCall, spot, strike, q, r, tm, vol)
	put := AnalyticEuropean(OptionTypePut, spot, strike, q, r, tm, vol)

	// C − P = S e^{−qT} − K e^{−rT}
	want := spot*math.Exp(-q*tm) - strike*math.Exp(-r*tm)
	assert.InDelta(t, want, call.Value-put.Value, 1e-10)
}

func TestAnalyticDividendEuropean(t *testing.T) {
	dividends := []float64{3, 4}
	exDates := []float64{0.25, 0.75}
	r := 0.05

	res := AnalyticDividendEuropean(OptionTypeCall, 100, 100, 0, r, 1.0, 0.2, dividends, exDates)

	// 等价于把折现后的股息从现价剥离后的普通欧式
	effective := 100 - 3*math.Exp(-r*0.25) - 4*math.Exp(-r*0.75)
	want := AnalyticEuropean(OptionTypeCall, effective, 100, 0, r, 1.0, 0.2)
	assert.InDelta(t, want.Value, res.Value, 1e-12)
	assert.InDelta(t, want.Delta, res.Delta, 1e-12)

	// 剥离股息压低现价，看涨价值必然下降
	plain := AnalyticEuropean(OptionTypeCall, 100, 100, 0, r, 1.0, 0.2)
	require.Less(t, res.Value, plain.Value)
}
