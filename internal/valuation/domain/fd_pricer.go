package domain

import "math"

// 网格点数下限，低于此值中心采样与样条迁移不可靠
const minGridPoints = 10

// 事件时间与区间端点重合的判定容差
const dateTolerance = 1e-6

// DividendOptionInput 离散股息有限差分定价输入
type DividendOptionInput struct {
	Type          OptionType
	Exercise      ExerciseType
	Underlying    float64
	Strike        float64
	DividendYield float64
	RiskFreeRate  float64
	ResidualTime  float64
	Volatility    float64
	Dividends     []float64
	ExDates       []float64
	TimeSteps     int
	GridPoints    int
}

// DividendOptionResult 离散股息有限差分定价输出
type DividendOptionResult struct {
	Value                    float64
	Delta                    float64
	Gamma                    float64
	Theta                    float64
	ControlVariateCorrection float64
}

// FDDividendPricer 离散股息期权的有限差分定价器。
// 从到期日向估值日回溯，按除息事件序列推进：每个事件处重建网格、
// 把主数组与控制数组迁移到新网格、仅对主数组施加步进条件。
type FDDividendPricer struct {
	input    DividendOptionInput
	schedule *DividendSchedule
	netSpot  float64

	firstDateIsZero    bool
	lastDateIsResidual bool

	gridManager  *GridManager
	control      *ControlVariateCoordinator
	newCondition StepConditionFactory

	grid      []float64
	payoff    []float64
	prices    []float64
	model     *FiniteDifferenceModel
	condition StepCondition
}

// NewFDDividendPricer 构建定价器并完成全部参数校验。
// condition 为空时按行权方式选择默认步进条件。
func NewFDDividendPricer(input DividendOptionInput, condition StepConditionFactory) (*FDDividendPricer, error) {
	if input.Underlying <= 0 {
		return nil, newParameterError("underlying", "underlying must be positive", input.Underlying)
	}
	if input.Strike <= 0 {
		return nil, newParameterError("strike", "strike must be positive", input.Strike)
	}
	if input.ResidualTime <= 0 {
		return nil, newParameterError("residual_time", "residual time must be positive", input.ResidualTime)
	}
	if input.Volatility <= 0 {
		return nil, newParameterError("volatility", "volatility must be positive", input.Volatility)
	}
	if input.TimeSteps <= 0 {
		return nil, newParameterError("time_steps", "time steps must be positive", float64(input.TimeSteps))
	}
	if input.GridPoints < minGridPoints {
		return nil, newParameterError("grid_points", "too few grid points", float64(input.GridPoints))
	}

	schedule, err := NewDividendSchedule(input.Dividends, input.ExDates)
	if err != nil {
		return nil, err
	}
	if err := schedule.ValidateAgainstSpot(input.Underlying); err != nil {
		return nil, err
	}

	p := &FDDividendPricer{
		input:        input,
		schedule:     schedule,
		netSpot:      input.Underlying - schedule.TotalAmount(),
		gridManager:  NewGridManager(input.Strike, input.Volatility, input.GridPoints),
		newCondition: condition,
		grid:         make([]float64, input.GridPoints),
		payoff:       make([]float64, input.GridPoints),
	}
	if p.newCondition == nil {
		p.newCondition = defaultStepConditionFactory(input)
	}

	if n := schedule.Len(); n > 0 {
		if schedule.Time(n-1) > input.ResidualTime+dateTolerance {
			return nil, newParameterError("ex_date", "ex-dividend times cannot exceed residual time", schedule.Time(n-1))
		}
		p.firstDateIsZero = schedule.Time(0) < dateTolerance
		p.lastDateIsResidual = math.Abs(schedule.Time(n-1)-input.ResidualTime) < dateTolerance
	}
	return p, nil
}

// defaultStepConditionFactory 按行权方式选择步进条件，欧式无条件
func defaultStepConditionFactory(input DividendOptionInput) StepConditionFactory {
	switch input.Exercise {
	case ExerciseAmerican:
		return func(payoff []float64) StepCondition {
			return NewAmericanCondition(payoff)
		}
	case ExerciseShout:
		return func(payoff []float64) StepCondition {
			return NewShoutCondition(payoff, input.ResidualTime, input.RiskFreeRate)
		}
	default:
		return nil
	}
}

// Calculate 执行整个回溯估值并返回修正后的价格与希腊字母
func (p *FDDividendPricer) Calculate() (*DividendOptionResult, error) {
	n := p.schedule.Len()

	p.control = NewControlVariateCoordinator(p.input.Type,
		p.netSpot, p.input.Strike, p.input.DividendYield,
		p.input.RiskFreeRate, p.input.ResidualTime, p.input.Volatility,
		p.schedule)

	p.gridManager.SetGridLimits(p.netSpot, p.input.ResidualTime)
	p.initializeGrid()
	p.initializeInitialCondition()
	p.initializeOperatorAndModel()
	p.initializeStepCondition()

	p.prices = append([]float64(nil), p.payoff...)
	p.control.Reset(p.payoff)

	if p.lastDateIsResidual {
		if err := p.executeEventStep(n - 1); err != nil {
			return nil, err
		}
	}

	// 最后一段回溯的保护时间，保证不跨越任何事件
	dt := p.input.ResidualTime / (float64(p.input.TimeSteps) * float64(n+1))
	if first, ok := p.firstNonZeroDate(); ok && dt >= first {
		dt = first / 2
	}

	firstIndex := -1
	if p.firstDateIsZero {
		firstIndex = 0
	}
	lastIndex := n - 1
	if p.lastDateIsResidual {
		lastIndex = n - 2
	}

	for j := lastIndex; j >= firstIndex; j-- {
		begin := p.input.ResidualTime
		if j < n-1 {
			begin = p.schedule.Time(j + 1)
		}
		eventAtEnd := j >= 0 && !(p.firstDateIsZero && j == 0)
		end := dt
		if eventAtEnd {
			end = p.schedule.Time(j)
		}

		p.rollback(begin, end, p.input.TimeSteps)
		if eventAtEnd {
			if err := p.executeEventStep(j); err != nil {
				return nil, err
			}
		}
	}

	p.rollback(dt, 0, 1)
	if p.firstDateIsZero {
		if err := p.executeEventStep(0); err != nil {
			return nil, err
		}
	}

	correction := p.control.Correction()
	value := ValueAtCenter(p.prices) + correction
	delta := FirstDerivativeAtCenter(p.prices, p.grid) + p.control.DeltaCorrection(p.grid)
	gamma := SecondDerivativeAtCenter(p.prices, p.grid) + p.control.GammaCorrection(p.grid)

	// theta 由 Black-Scholes 恒等式在参考中心处求出
	s := p.gridManager.Bounds().Center
	r, q, v := p.input.RiskFreeRate, p.input.DividendYield, p.input.Volatility
	theta := r*value - (r-q)*s*delta - 0.5*v*v*s*s*gamma

	return &DividendOptionResult{
		Value:                    value,
		Delta:                    delta,
		Gamma:                    gamma,
		Theta:                    theta,
		ControlVariateCorrection: correction,
	}, nil
}

// firstNonZeroDate 首个非零事件时间，不存在时 ok 为 false
func (p *FDDividendPricer) firstNonZeroDate() (float64, bool) {
	switch {
	case p.schedule.Len() == 0:
		return 0, false
	case !p.firstDateIsZero:
		return p.schedule.Time(0), true
	case p.schedule.Len() > 1:
		return p.schedule.Time(1), true
	default:
		return 0, false
	}
}

// rollback 主数组与控制数组各自回溯同一区间；控制数组不施加步进条件
func (p *FDDividendPricer) rollback(from, to float64, steps int) {
	p.prices = p.model.Rollback(p.prices, from, to, steps, p.condition)
	p.control.SetPrices(p.model.Rollback(p.control.Prices(), from, to, steps, nil))
}

// executeEventStep 跨越第 k 个除息事件：旧网格即当前网格平移股息额，
// 重建网格与收益后把两个数组迁移到新网格，仅主数组施加步进条件
func (p *FDDividendPricer) executeEventStep(k int) error {
	div := p.schedule.Amount(k)

	oldGrid := make([]float64, len(p.grid))
	for i := range p.grid {
		oldGrid[i] = p.grid[i] + div
	}

	p.gridManager.OnDividendEvent(div, p.schedule.Time(k))
	p.initializeGrid()
	p.initializeInitialCondition()

	newPrices, err := TransferPrices(p.prices, oldGrid, p.grid)
	if err != nil {
		return err
	}
	controlPrices, err := TransferPrices(p.control.Prices(), oldGrid, p.grid)
	if err != nil {
		return err
	}
	p.prices = newPrices
	p.control.SetPrices(controlPrices)

	p.initializeOperatorAndModel()
	p.initializeStepCondition()
	if p.condition != nil {
		p.condition.ApplyTo(p.prices, p.schedule.Time(k))
	}
	return nil
}

func (p *FDDividendPricer) initializeGrid() {
	p.gridManager.BuildGrid(p.grid)
}

func (p *FDDividendPricer) initializeInitialCondition() {
	for i, s := range p.grid {
		if p.input.Type == OptionTypeCall {
			p.payoff[i] = math.Max(s-p.input.Strike, 0)
		} else {
			p.payoff[i] = math.Max(p.input.Strike-s, 0)
		}
	}
}

func (p *FDDividendPricer) initializeOperatorAndModel() {
	n := p.input.GridPoints
	operator := NewBlackScholesOperator(n, p.gridManager.LogSpacing(),
		p.input.RiskFreeRate, p.input.DividendYield, p.input.Volatility)
	boundaries := []*NeumannBoundary{
		NewNeumannBoundary(LowerBoundary, p.payoff[1]-p.payoff[0]),
		NewNeumannBoundary(UpperBoundary, p.payoff[n-1]-p.payoff[n-2]),
	}
	p.model = NewFiniteDifferenceModel(NewCrankNicolson(operator, boundaries))
}

func (p *FDDividendPricer) initializeStepCondition() {
	if p.newCondition == nil {
		p.condition = nil
		return
	}
	p.condition = p.newCondition(append([]float64(nil), p.payoff...))
}
