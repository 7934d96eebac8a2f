package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wyfcoding/optionpricing/internal/valuation/application"
	"github.com/wyfcoding/optionpricing/internal/valuation/domain"
	"github.com/wyfcoding/optionpricing/pkg/response"
)

// memoryRepository 内存仓储，供处理器测试驱动真实应用服务
type memoryRepository struct {
	mu      sync.Mutex
	results []*domain.ValuationResult
}

func (m *memoryRepository) Save(_ context.Context, result *domain.ValuationResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results = append(m.results, result)
	return nil
}

func (m *memoryRepository) GetLatest(_ context.Context, symbol string) (*domain.ValuationResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.results) - 1; i >= 0; i-- {
		if m.results[i].Symbol == symbol {
			return m.results[i], nil
		}
	}
	return nil, nil
}

func (m *memoryRepository) GetHistory(_ context.Context, symbol string, offset, limit int) ([]*domain.ValuationResult, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var matched []*domain.ValuationResult
	for _, r := range m.results {
		if r.Symbol == symbol {
			matched = append(matched, r)
		}
	}
	total := int64(len(matched))
	if offset >= len(matched) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], total, nil
}

func (m *memoryRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func newTestRouter(repo *memoryRepository) *gin.Engine {
	gin.SetMode(gin.TestMode)
	cmd := application.NewValuationCommandService(repo, nil, nil, application.EngineDefaults{
		GridPoints:       51,
		TimeSteps:        50,
		BatchParallelism: 2,
	})
	query := application.NewValuationQueryService(repo, nil, nil)

	router := gin.New()
	NewValuationHandler(cmd, query).RegisterRoutes(router.Group(""))
	return router
}

func validBody() map[string]interface{} {
	return map[string]interface{}{
		"symbol":         "AAPL-C-100",
		"option_type":    "CALL",
		"exercise":       "EUROPEAN",
		"underlying":     100.0,
		"strike":         100.0,
		"risk_free_rate": 0.05,
		"residual_time":  1.0,
		"volatility":     0.2,
		"dividends":      []float64{5},
		"ex_dates":       []float64{0.5},
	}
}

func postJSON(router *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	payload, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestValueOptionEndpoint(t *testing.T) {
	repo := &memoryRepository{}
	router := newTestRouter(repo)

	w := postJSON(router, "/api/v1/valuations", validBody())
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var body response.Body
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Empty(t, body.Code)
	require.Len(t, repo.results, 1)
	assert.Equal(t, "AAPL-C-100", repo.results[0].Symbol)
}

func TestValueOptionEndpointBindingErrors(t *testing.T) {
	router := newTestRouter(&memoryRepository{})

	tests := []struct {
		name   string
		mutate func(map[string]interface{})
	}{
		{name: "missing volatility", mutate: func(b map[string]interface{}) { delete(b, "volatility") }},
		{name: "unknown option type", mutate: func(b map[string]interface{}) { b["option_type"] = "STRADDLE" }},
		{name: "unknown exercise", mutate: func(b map[string]interface{}) { b["exercise"] = "BERMUDAN" }},
		{name: "negative strike", mutate: func(b map[string]interface{}) { b["strike"] = -1.0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := validBody()
			tt.mutate(body)

			w := postJSON(router, "/api/v1/valuations", body)
			assert.Equal(t, http.StatusBadRequest, w.Code)

			var resp response.Body
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, "BAD_REQUEST", resp.Code)
		})
	}
}

func TestValueOptionEndpointEngineErrorMapping(t *testing.T) {
	router := newTestRouter(&memoryRepository{})

	// 绑定通过但股息超过现价，引擎构造失败应映射为 400/CONFIGURATION
	body := validBody()
	body["dividends"] = []float64{150}

	w := postJSON(router, "/api/v1/valuations", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp response.Body
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "CONFIGURATION", resp.Code)
}

func TestValueBatchEndpoint(t *testing.T) {
	router := newTestRouter(&memoryRepository{})

	w := postJSON(router, "/api/v1/valuations/batch", map[string]interface{}{
		"contracts": []map[string]interface{}{validBody(), validBody()},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Data application.BatchResultDTO `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Data.Total)
	assert.Equal(t, 2, resp.Data.SuccessCount)

	// 空批量不通过绑定校验
	w = postJSON(router, "/api/v1/valuations/batch", map[string]interface{}{
		"contracts": []map[string]interface{}{},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetLatestEndpoint(t *testing.T) {
	repo := &memoryRepository{}
	router := newTestRouter(repo)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/valuations/UNKNOWN/latest", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	postJSON(router, "/api/v1/valuations", validBody())

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/valuations/AAPL-C-100/latest", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestListHistoryEndpoint(t *testing.T) {
	repo := &memoryRepository{}
	router := newTestRouter(repo)

	postJSON(router, "/api/v1/valuations", validBody())
	postJSON(router, "/api/v1/valuations", validBody())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/valuations/AAPL-C-100?page=1&page_size=1", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data application.HistoryDTO `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(2), resp.Data.Total)
	assert.Len(t, resp.Data.Items, 1)
}
