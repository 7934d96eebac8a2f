package domain

// BoundarySide 边界所在侧
type BoundarySide int

const (
	LowerBoundary BoundarySide = iota
	UpperBoundary
)

// NeumannBoundary 诺伊曼边界条件，固定边界处的一阶差分值
type NeumannBoundary struct {
	side  BoundarySide
	value float64
}

// NewNeumannBoundary 以给定差分值创建边界条件
func NewNeumannBoundary(side BoundarySide, value float64) *NeumannBoundary {
	return &NeumannBoundary{side: side, value: value}
}

// ApplyBeforeApplying 显式步前改写算子的边界行
func (bc *NeumannBoundary) ApplyBeforeApplying(op *TridiagonalOperator) {
	switch bc.side {
	case LowerBoundary:
		op.SetFirstRow(-1, 1)
	case UpperBoundary:
		op.SetLastRow(-1, 1)
	}
}

// ApplyAfterApplying 显式步后修正边界值
func (bc *NeumannBoundary) ApplyAfterApplying(a []float64) {
	n := len(a)
	switch bc.side {
	case LowerBoundary:
		a[0] = a[1] - bc.value
	case UpperBoundary:
		a[n-1] = a[n-2] + bc.value
	}
}

// ApplyBeforeSolving 隐式求解前改写算子边界行并固定右端项
func (bc *NeumannBoundary) ApplyBeforeSolving(op *TridiagonalOperator, rhs []float64) {
	switch bc.side {
	case LowerBoundary:
		op.SetFirstRow(-1, 1)
		rhs[0] = bc.value
	case UpperBoundary:
		op.SetLastRow(-1, 1)
		rhs[len(rhs)-1] = bc.value
	}
}
