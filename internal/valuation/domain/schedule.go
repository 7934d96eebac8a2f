package domain

import "math"

// DividendEvent 单次现金股息，时间为从估值日起的年化分数
type DividendEvent struct {
	Time   float64
	Amount float64
}

// DividendSchedule 经过校验的股息序列，按时间升序
type DividendSchedule struct {
	events []DividendEvent
}

// NewDividendSchedule 构建股息序列并校验：数量一致、时间非负且严格递增、金额为有限正数
func NewDividendSchedule(amounts []float64, times []float64) (*DividendSchedule, error) {
	if len(amounts) != len(times) {
		return nil, newCountMismatchError(len(amounts), len(times))
	}

	events := make([]DividendEvent, len(amounts))
	for i := range amounts {
		if math.IsNaN(amounts[i]) || math.IsInf(amounts[i], 0) || amounts[i] <= 0 {
			return nil, newParameterError("dividend_amount", "dividend amounts must be finite and positive", amounts[i])
		}
		if times[i] < 0 {
			return nil, newParameterError("ex_date", "ex-dividend times must be non-negative", times[i])
		}
		if i > 0 && times[i] <= times[i-1] {
			return nil, newParameterError("ex_date", "ex-dividend times must be strictly increasing", times[i])
		}
		events[i] = DividendEvent{Time: times[i], Amount: amounts[i]}
	}

	return &DividendSchedule{events: events}, nil
}

// ValidateAgainstSpot 校验股息总额严格小于标的价
func (s *DividendSchedule) ValidateAgainstSpot(underlying float64) error {
	if sum := s.TotalAmount(); sum >= underlying {
		return newDividendSumError(sum, underlying)
	}
	return nil
}

// Len 事件个数
func (s *DividendSchedule) Len() int {
	return len(s.events)
}

// Amount 第 i 个事件的股息金额
func (s *DividendSchedule) Amount(i int) float64 {
	return s.events[i].Amount
}

// Time 第 i 个事件的除息时间
func (s *DividendSchedule) Time(i int) float64 {
	return s.events[i].Time
}

// Events 返回事件副本，调用方可安全修改
func (s *DividendSchedule) Events() []DividendEvent {
	out := make([]DividendEvent, len(s.events))
	copy(out, s.events)
	return out
}

// TotalAmount 股息总额
func (s *DividendSchedule) TotalAmount() float64 {
	var sum float64
	for _, e := range s.events {
		sum += e.Amount
	}
	return sum
}
