// Package metrics 提供 Prometheus helper，包含本服务的 counter/gauge/histogram 模板
package metrics

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wyfcoding/optionpricing/pkg/logger"
)

// Metrics 指标集合
type Metrics struct {
	// HTTP 请求计数
	HTTPRequestsTotal prometheus.Counter
	// HTTP 请求耗时
	HTTPRequestDuration prometheus.Histogram

	// 估值计数
	ValuationsTotal prometheus.Counter
	// 估值失败计数
	ValuationErrorsTotal prometheus.Counter
	// 估值耗时
	ValuationDuration prometheus.Histogram
	// 批量估值批大小
	BatchSize prometheus.Histogram

	// Outbox 已发布消息计数
	OutboxPublishedTotal prometheus.Counter
	// Outbox 发布失败计数
	OutboxFailedTotal prometheus.Counter
	// Outbox 待发送消息数
	OutboxPending prometheus.Gauge

	// Redis 缓存命中计数
	CacheHitsTotal prometheus.Counter
	// Redis 缓存未命中计数
	CacheMissesTotal prometheus.Counter
}

// New 创建指标实例
func New(serviceName string) *Metrics {
	return &Metrics{
		HTTPRequestsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "optionpricing",
			Subsystem: serviceName,
			Name:      "http_requests_total",
			Help:      "Total HTTP requests",
		}),
		HTTPRequestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "optionpricing",
			Subsystem: serviceName,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),

		ValuationsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "optionpricing",
			Subsystem: serviceName,
			Name:      "valuations_total",
			Help:      "Total option valuations computed",
		}),
		ValuationErrorsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "optionpricing",
			Subsystem: serviceName,
			Name:      "valuation_errors_total",
			Help:      "Total option valuations that failed",
		}),
		ValuationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "optionpricing",
			Subsystem: serviceName,
			Name:      "valuation_duration_seconds",
			Help:      "Option valuation duration in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "optionpricing",
			Subsystem: serviceName,
			Name:      "batch_size",
			Help:      "Number of contracts per batch valuation",
			Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500},
		}),

		OutboxPublishedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "optionpricing",
			Subsystem: serviceName,
			Name:      "outbox_published_total",
			Help:      "Total outbox messages relayed to the broker",
		}),
		OutboxFailedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "optionpricing",
			Subsystem: serviceName,
			Name:      "outbox_failed_total",
			Help:      "Total outbox messages that failed to relay",
		}),
		OutboxPending: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "optionpricing",
			Subsystem: serviceName,
			Name:      "outbox_pending",
			Help:      "Outbox messages waiting to be relayed",
		}),

		CacheHitsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "optionpricing",
			Subsystem: serviceName,
			Name:      "cache_hits_total",
			Help:      "Total valuation cache hits",
		}),
		CacheMissesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "optionpricing",
			Subsystem: serviceName,
			Name:      "cache_misses_total",
			Help:      "Total valuation cache misses",
		}),
	}
}

// Register 注册所有指标
func (m *Metrics) Register() error {
	metrics := []prometheus.Collector{
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.ValuationsTotal,
		m.ValuationErrorsTotal,
		m.ValuationDuration,
		m.BatchSize,
		m.OutboxPublishedTotal,
		m.OutboxFailedTotal,
		m.OutboxPending,
		m.CacheHitsTotal,
		m.CacheMissesTotal,
	}

	for _, metric := range metrics {
		if err := prometheus.DefaultRegisterer.Register(metric); err != nil {
			logger.Error(context.Background(), "Failed to register metric", "error", err)
			return err
		}
	}

	logger.Info(context.Background(), "Metrics registered successfully")
	return nil
}

// StartHTTPServer 启动 Prometheus HTTP 服务器
func StartHTTPServer(port int, path string) error {
	if path == "" {
		path = "/metrics"
	}

	http.Handle(path, promhttp.Handler())

	addr := fmt.Sprintf(":%d", port)
	logger.Info(context.Background(), "Starting Prometheus HTTP server", "addr", addr, "path", path)

	go func() {
		if err := http.ListenAndServe(addr, nil); err != nil {
			logger.Error(context.Background(), "Failed to start Prometheus HTTP server", "error", err)
		}
	}()

	return nil
}
