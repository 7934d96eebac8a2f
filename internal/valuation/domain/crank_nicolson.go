package domain

// CrankNicolson θ=1/2 混合差分格式：先作用显式部分 I − ½dt·L，再求解隐式部分 I + ½dt·L
type CrankNicolson struct {
	operator   *TridiagonalOperator
	boundaries []*NeumannBoundary

	dt           float64
	explicitPart *TridiagonalOperator
	implicitPart *TridiagonalOperator
}

// NewCrankNicolson 由微分算子与边界条件创建格式
func NewCrankNicolson(op *TridiagonalOperator, boundaries []*NeumannBoundary) *CrankNicolson {
	return &CrankNicolson{operator: op, boundaries: boundaries}
}

// SetStep 设定时间步长并重建两部分算子
func (cn *CrankNicolson) SetStep(dt float64) {
	if dt == cn.dt && cn.explicitPart != nil {
		return
	}
	cn.dt = dt
	identity := NewIdentityOperator(cn.operator.Size())
	cn.explicitPart = identity.Subtract(cn.operator.Scale(0.5 * dt))
	cn.implicitPart = identity.Add(cn.operator.Scale(0.5 * dt))
}

// Step 向后推进一个时间步
func (cn *CrankNicolson) Step(a []float64) []float64 {
	explicitPart := cn.explicitPart.Clone()
	for _, bc := range cn.boundaries {
		bc.ApplyBeforeApplying(explicitPart)
	}
	a = explicitPart.ApplyTo(a)
	for _, bc := range cn.boundaries {
		bc.ApplyAfterApplying(a)
	}

	implicitPart := cn.implicitPart.Clone()
	for _, bc := range cn.boundaries {
		bc.ApplyBeforeSolving(implicitPart, a)
	}
	return implicitPart.SolveFor(a)
}

// FiniteDifferenceModel 有限差分时间推进模型
type FiniteDifferenceModel struct {
	evolver *CrankNicolson
}

// NewFiniteDifferenceModel 创建时间推进模型
func NewFiniteDifferenceModel(evolver *CrankNicolson) *FiniteDifferenceModel {
	return &FiniteDifferenceModel{evolver: evolver}
}

// Rollback 将数组从 from 回溯到 to，均分 steps 步，每步后对目标时刻应用步进条件
func (m *FiniteDifferenceModel) Rollback(a []float64, from, to float64, steps int, condition StepCondition) []float64 {
	dt := (from - to) / float64(steps)
	m.evolver.SetStep(dt)

	t := from
	for i := 0; i < steps; i++ {
		a = m.evolver.Step(a)
		if condition != nil {
			condition.ApplyTo(a, t-dt)
		}
		t -= dt
	}
	return a
}
