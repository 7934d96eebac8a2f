package domain

import "sort"

// CubicSpline 自然三次样条插值，严格通过全部节点
type CubicSpline struct {
	xs []float64
	ys []float64
	// 各节点处的二阶导数
	y2 []float64
}

// NewCubicSpline 由升序节点构建自然三次样条，节点少于 2 个时返回退化网格错误
func NewCubicSpline(xs, ys []float64) (*CubicSpline, error) {
	n := len(xs)
	if n < 2 {
		return nil, &DegenerateGridError{Usable: n}
	}

	s := &CubicSpline{
		xs: append([]float64(nil), xs...),
		ys: append([]float64(nil), ys...),
		y2: make([]float64, n),
	}

	if n == 2 {
		// 两点退化为线性段，二阶导数为零
		return s, nil
	}

	// 自然边界条件下的三对角方程组，Thomas 消元
	u := make([]float64, n-1)
	for i := 1; i < n-1; i++ {
		sig := (xs[i] - xs[i-1]) / (xs[i+1] - xs[i-1])
		p := sig*s.y2[i-1] + 2.0
		s.y2[i] = (sig - 1.0) / p
		u[i] = (ys[i+1]-ys[i])/(xs[i+1]-xs[i]) - (ys[i]-ys[i-1])/(xs[i]-xs[i-1])
		u[i] = (6.0*u[i]/(xs[i+1]-xs[i-1]) - sig*u[i-1]) / p
	}
	s.y2[n-1] = 0
	for k := n - 2; k >= 0; k-- {
		s.y2[k] = s.y2[k]*s.y2[k+1] + u[k]
	}
	return s, nil
}

// Value 在 x 处求值，落在节点区间之外时沿端部多项式外推
func (s *CubicSpline) Value(x float64) float64 {
	n := len(s.xs)
	hi := sort.SearchFloat64s(s.xs, x)
	if hi <= 0 {
		hi = 1
	}
	if hi >= n {
		hi = n - 1
	}
	lo := hi - 1

	h := s.xs[hi] - s.xs[lo]
	a := (s.xs[hi] - x) / h
	b := (x - s.xs[lo]) / h
	return a*s.ys[lo] + b*s.ys[hi] +
		((a*a*a-a)*s.y2[lo]+(b*b*b-b)*s.y2[hi])*(h*h)/6.0
}
