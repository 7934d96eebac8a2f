package domain

// TridiagonalOperator 三对角差分算子，首末元素在带外的位置不使用
type TridiagonalOperator struct {
	lower []float64
	diag  []float64
	upper []float64
}

// NewTridiagonalOperator 创建指定规模的零算子
func NewTridiagonalOperator(size int) *TridiagonalOperator {
	return &TridiagonalOperator{
		lower: make([]float64, size),
		diag:  make([]float64, size),
		upper: make([]float64, size),
	}
}

// NewIdentityOperator 创建单位算子
func NewIdentityOperator(size int) *TridiagonalOperator {
	op := NewTridiagonalOperator(size)
	for i := range op.diag {
		op.diag[i] = 1
	}
	return op
}

// Size 算子规模
func (op *TridiagonalOperator) Size() int {
	return len(op.diag)
}

// SetFirstRow 设置首行系数
func (op *TridiagonalOperator) SetFirstRow(b, c float64) {
	op.diag[0] = b
	op.upper[0] = c
}

// SetMidRow 设置第 i 行系数
func (op *TridiagonalOperator) SetMidRow(i int, a, b, c float64) {
	op.lower[i] = a
	op.diag[i] = b
	op.upper[i] = c
}

// SetMidRows 统一设置全部内部行
func (op *TridiagonalOperator) SetMidRows(a, b, c float64) {
	for i := 1; i < op.Size()-1; i++ {
		op.SetMidRow(i, a, b, c)
	}
}

// SetLastRow 设置末行系数
func (op *TridiagonalOperator) SetLastRow(a, b float64) {
	n := op.Size()
	op.lower[n-1] = a
	op.diag[n-1] = b
}

// Clone 深拷贝算子
func (op *TridiagonalOperator) Clone() *TridiagonalOperator {
	dst := NewTridiagonalOperator(op.Size())
	copy(dst.lower, op.lower)
	copy(dst.diag, op.diag)
	copy(dst.upper, op.upper)
	return dst
}

// Scale 返回标量乘积 k·L
func (op *TridiagonalOperator) Scale(k float64) *TridiagonalOperator {
	dst := op.Clone()
	for i := range dst.diag {
		dst.lower[i] *= k
		dst.diag[i] *= k
		dst.upper[i] *= k
	}
	return dst
}

// Add 返回算子和 L + M
func (op *TridiagonalOperator) Add(other *TridiagonalOperator) *TridiagonalOperator {
	dst := op.Clone()
	for i := range dst.diag {
		dst.lower[i] += other.lower[i]
		dst.diag[i] += other.diag[i]
		dst.upper[i] += other.upper[i]
	}
	return dst
}

// Subtract 返回算子差 L − M
func (op *TridiagonalOperator) Subtract(other *TridiagonalOperator) *TridiagonalOperator {
	return op.Add(other.Scale(-1))
}

// ApplyTo 矩阵-向量乘积 L·v
func (op *TridiagonalOperator) ApplyTo(v []float64) []float64 {
	n := op.Size()
	out := make([]float64, n)
	out[0] = op.diag[0]*v[0] + op.upper[0]*v[1]
	for i := 1; i < n-1; i++ {
		out[i] = op.lower[i]*v[i-1] + op.diag[i]*v[i] + op.upper[i]*v[i+1]
	}
	out[n-1] = op.lower[n-1]*v[n-2] + op.diag[n-1]*v[n-1]
	return out
}

// SolveFor 求解 L·x = rhs，Thomas 追赶法，O(n)
func (op *TridiagonalOperator) SolveFor(rhs []float64) []float64 {
	n := op.Size()
	x := make([]float64, n)
	tmp := make([]float64, n)

	bet := op.diag[0]
	x[0] = rhs[0] / bet
	for i := 1; i < n; i++ {
		tmp[i] = op.upper[i-1] / bet
		bet = op.diag[i] - op.lower[i]*tmp[i]
		x[i] = (rhs[i] - op.lower[i]*x[i-1]) / bet
	}
	for i := n - 2; i >= 0; i-- {
		x[i] -= tmp[i+1] * x[i+1]
	}
	return x
}

// NewBlackScholesOperator 对数空间常系数 Black-Scholes 微分算子
func NewBlackScholesOperator(size int, dx, r, q, sigma float64) *TridiagonalOperator {
	op := NewTridiagonalOperator(size)
	sigma2 := sigma * sigma
	nu := r - q - sigma2/2
	pd := -(sigma2/dx - nu) / (2 * dx)
	pu := -(sigma2/dx + nu) / (2 * dx)
	pm := sigma2/(dx*dx) + r
	op.SetMidRows(pd, pm, pu)
	return op
}
