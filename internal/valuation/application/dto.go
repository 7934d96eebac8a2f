package application

// ValueOptionCommand 单笔估值命令
type ValueOptionCommand struct {
	Symbol        string
	OptionType    string
	Exercise      string
	Underlying    float64
	Strike        float64
	DividendYield float64
	RiskFreeRate  float64
	ResidualTime  float64
	Volatility    float64
	Dividends     []float64
	ExDates       []float64
	// 为零时取服务默认值
	TimeSteps  int
	GridPoints int
}

// ValueBatchCommand 批量估值命令
type ValueBatchCommand struct {
	Contracts []ValueOptionCommand
}

// ValuationDTO 估值结果传输对象
type ValuationDTO struct {
	Symbol       string `json:"symbol"`
	Method       string `json:"method"`
	OptionType   string `json:"option_type"`
	Exercise     string `json:"exercise"`
	Underlying   string `json:"underlying"`
	Strike       string `json:"strike"`
	Price        string `json:"price"`
	Delta        string `json:"delta"`
	Gamma        string `json:"gamma"`
	Theta        string `json:"theta"`
	CVCorrection string `json:"cv_correction"`
	CalculatedAt int64  `json:"calculated_at"`
}

// BatchResultDTO 批量估值汇总
type BatchResultDTO struct {
	BatchID      string            `json:"batch_id"`
	Total        int               `json:"total"`
	SuccessCount int               `json:"success_count"`
	FailureCount int               `json:"failure_count"`
	Results      []*ValuationDTO   `json:"results"`
	Errors       map[string]string `json:"errors,omitempty"`
}

// HistoryDTO 估值历史分页结果
type HistoryDTO struct {
	Items    []*ValuationDTO `json:"items"`
	Page     int             `json:"page"`
	PageSize int             `json:"page_size"`
	Total    int64           `json:"total"`
}
