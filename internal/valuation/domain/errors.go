package domain

import (
	"fmt"
	"sort"
	"strings"
)

// ConfigurationError 估值参数校验失败，携带违约值用于诊断
type ConfigurationError struct {
	// 出错的参数名
	Field string
	// 失败原因
	Reason string
	// 违约的数值，如股息总额与标的价
	Values map[string]float64
	// 违约的数量，如股息与除息日计数
	Counts map[string]int
}

func (e *ConfigurationError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "invalid valuation configuration: %s: %s", e.Field, e.Reason)
	for _, k := range sortedKeys(e.Counts) {
		fmt.Fprintf(&b, " %s=%d", k, e.Counts[k])
	}
	for _, k := range sortedKeys(e.Values) {
		fmt.Fprintf(&b, " %s=%g", k, e.Values[k])
	}
	return b.String()
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// DegenerateGridError 网格退化，可用的正值网格点不足以构建插值
type DegenerateGridError struct {
	// 过滤后剩余的可用点数
	Usable int
}

func (e *DegenerateGridError) Error() string {
	return fmt.Sprintf("degenerate grid: only %d usable positive grid points, need at least 2", e.Usable)
}

// newCountMismatchError 股息与除息日数量不一致
func newCountMismatchError(dividends, exDates int) *ConfigurationError {
	return &ConfigurationError{
		Field:  "dividends",
		Reason: "dividend count must equal ex-date count",
		Counts: map[string]int{"dividends": dividends, "ex_dates": exDates},
	}
}

// newDividendSumError 股息总额不小于标的价
func newDividendSumError(sum, underlying float64) *ConfigurationError {
	return &ConfigurationError{
		Field:  "dividends",
		Reason: "cumulative dividends must be less than the underlying",
		Values: map[string]float64{"dividend_sum": sum, "underlying": underlying},
	}
}

// newParameterError 单一参数违约
func newParameterError(field, reason string, value float64) *ConfigurationError {
	return &ConfigurationError{
		Field:  field,
		Reason: reason,
		Values: map[string]float64{field: value},
	}
}
