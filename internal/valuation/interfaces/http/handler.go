package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wyfcoding/optionpricing/internal/valuation/application"
	"github.com/wyfcoding/optionpricing/internal/valuation/domain"
	"github.com/wyfcoding/optionpricing/pkg/logger"
	"github.com/wyfcoding/optionpricing/pkg/response"
)

// ValuationHandler 估值 HTTP 处理器
type ValuationHandler struct {
	cmd   *application.ValuationCommandService
	query *application.ValuationQueryService
}

// NewValuationHandler 创建 HTTP 处理器实例
func NewValuationHandler(cmd *application.ValuationCommandService, query *application.ValuationQueryService) *ValuationHandler {
	return &ValuationHandler{cmd: cmd, query: query}
}

// RegisterRoutes 将处理器方法绑定到 Gin 路由引擎
func (h *ValuationHandler) RegisterRoutes(router *gin.RouterGroup) {
	api := router.Group("/api/v1/valuations")
	{
		api.POST("", h.ValueOption)
		api.POST("/batch", h.ValueBatch)
		api.GET("/:symbol/latest", h.GetLatest)
		api.GET("/:symbol", h.ListHistory)
	}
}

// ValuationRequest 单笔估值请求
type ValuationRequest struct {
	Symbol        string    `json:"symbol" binding:"required"`
	OptionType    string    `json:"option_type" binding:"required,oneof=CALL PUT"`
	Exercise      string    `json:"exercise" binding:"omitempty,oneof=EUROPEAN AMERICAN SHOUT"`
	Underlying    float64   `json:"underlying" binding:"required,gt=0"`
	Strike        float64   `json:"strike" binding:"required,gt=0"`
	DividendYield float64   `json:"dividend_yield"`
	RiskFreeRate  float64   `json:"risk_free_rate"`
	ResidualTime  float64   `json:"residual_time" binding:"required,gt=0"`
	Volatility    float64   `json:"volatility" binding:"required,gt=0"`
	Dividends     []float64 `json:"dividends"`
	ExDates       []float64 `json:"ex_dates"`
	TimeSteps     int       `json:"time_steps"`
	GridPoints    int       `json:"grid_points"`
}

// BatchValuationRequest 批量估值请求
type BatchValuationRequest struct {
	Contracts []ValuationRequest `json:"contracts" binding:"required,min=1,dive"`
}

// ValueOption 单笔估值
func (h *ValuationHandler) ValueOption(c *gin.Context) {
	var req ValuationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
		return
	}

	result, err := h.cmd.ValueOption(c.Request.Context(), toCommand(req))
	if err != nil {
		h.renderError(c, err)
		return
	}
	response.Success(c, result)
}

// ValueBatch 批量估值
func (h *ValuationHandler) ValueBatch(c *gin.Context) {
	var req BatchValuationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
		return
	}

	cmd := application.ValueBatchCommand{
		Contracts: make([]application.ValueOptionCommand, len(req.Contracts)),
	}
	for i, contract := range req.Contracts {
		cmd.Contracts[i] = toCommand(contract)
	}

	batch, err := h.cmd.ValueBatch(c.Request.Context(), cmd)
	if err != nil {
		h.renderError(c, err)
		return
	}
	response.Success(c, batch)
}

// GetLatest 查询最新估值
func (h *ValuationHandler) GetLatest(c *gin.Context) {
	symbol := c.Param("symbol")
	result, err := h.query.GetLatest(c.Request.Context(), symbol)
	if err != nil {
		h.renderError(c, err)
		return
	}
	if result == nil {
		response.ErrorWithStatus(c, http.StatusNotFound, "no valuation found", "NOT_FOUND")
		return
	}
	response.Success(c, result)
}

// HistoryQuery 历史查询分页参数
type HistoryQuery struct {
	Page     int `form:"page,default=1"`
	PageSize int `form:"page_size,default=20"`
}

// ListHistory 查询估值历史
func (h *ValuationHandler) ListHistory(c *gin.Context) {
	var q HistoryQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
		return
	}

	history, err := h.query.ListHistory(c.Request.Context(), c.Param("symbol"), q.Page, q.PageSize)
	if err != nil {
		h.renderError(c, err)
		return
	}
	response.Success(c, history)
}

// renderError 领域错误映射：配置错误 400，网格退化 422，其余 500
func (h *ValuationHandler) renderError(c *gin.Context, err error) {
	var confErr *domain.ConfigurationError
	var gridErr *domain.DegenerateGridError
	switch {
	case errors.As(err, &confErr):
		response.ErrorWithStatus(c, http.StatusBadRequest, confErr.Error(), "CONFIGURATION")
	case errors.As(err, &gridErr):
		response.ErrorWithStatus(c, http.StatusUnprocessableEntity, gridErr.Error(), "DEGENERATE_GRID")
	default:
		logger.Error(c.Request.Context(), "valuation request failed", "error", err)
		response.ErrorWithStatus(c, http.StatusInternalServerError, err.Error(), "INTERNAL")
	}
}

func toCommand(req ValuationRequest) application.ValueOptionCommand {
	return application.ValueOptionCommand{
		Symbol:        req.Symbol,
		OptionType:    req.OptionType,
		Exercise:      req.Exercise,
		Underlying:    req.Underlying,
		Strike:        req.Strike,
		DividendYield: req.DividendYield,
		RiskFreeRate:  req.RiskFreeRate,
		ResidualTime:  req.ResidualTime,
		Volatility:    req.Volatility,
		Dividends:     req.Dividends,
		ExDates:       req.ExDates,
		TimeSteps:     req.TimeSteps,
		GridPoints:    req.GridPoints,
	}
}
