package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestInitMetrics 重复初始化不会panic（promauto重复注册会panic）
func TestInitMetrics(t *testing.T) {
	assert.NotPanics(t, func() {
		InitMetrics()
		InitMetrics()
	})
	assert.NotNil(t, HTTPRequestsTotal)
	assert.NotNil(t, PaymentCallbacksTotal)
	assert.NotNil(t, CircuitBreakerState)
}

func TestObserveHTTPRequest(t *testing.T) {
	InitMetrics()
	labels := map[string]string{"method": "GET", "path": "/api/v1/books", "status": "200"}
	before := getCounterVecValue(t, HTTPRequestsTotal, labels)

	ObserveHTTPRequest("GET", "/api/v1/books", 200, 15*time.Millisecond)
	ObserveHTTPRequest("GET", "/api/v1/books", 200, 25*time.Millisecond)
	ObserveHTTPRequest("GET", "/api/v1/books", 404, time.Millisecond)

	assert.Equal(t, before+2, getCounterVecValue(t, HTTPRequestsTotal, labels))
	count := getHistogramVecCount(t, HTTPRequestDuration, map[string]string{"method": "GET", "path": "/api/v1/books"})
	assert.GreaterOrEqual(t, count, uint64(3))
}

func TestOrderMetrics(t *testing.T) {
	InitMetrics()
	created := getCounterValue(t, OrdersCreatedTotal)
	failed := getCounterVecValue(t, OrdersFailedTotal, map[string]string{"reason": "stock"})

	RecordOrderCreated(120 * time.Millisecond)
	RecordOrderFailed("stock")
	RecordOrderFailed("stock")

	assert.Equal(t, created+1, getCounterValue(t, OrdersCreatedTotal))
	assert.Equal(t, failed+2, getCounterVecValue(t, OrdersFailedTotal, map[string]string{"reason": "stock"}))
}

func TestCallbackMetrics(t *testing.T) {
	InitMetrics()
	labels := map[string]string{"status": "hold", "result": "applied"}
	before := getCounterVecValue(t, PaymentCallbacksTotal, labels)
	restocked := getCounterValue(t, BooksRestockedTotal)

	RecordCallback("hold", "applied")
	AddRestocked(3)

	assert.Equal(t, before+1, getCounterVecValue(t, PaymentCallbacksTotal, labels))
	assert.Equal(t, restocked+3, getCounterValue(t, BooksRestockedTotal))
}

func TestSetBreakerState(t *testing.T) {
	SetBreakerState("monobank", 1)
	assert.Equal(t, float64(1), getGaugeVecValue(t, CircuitBreakerState, map[string]string{"name": "monobank"}))

	SetBreakerState("monobank", 0)
	assert.Equal(t, float64(0), getGaugeVecValue(t, CircuitBreakerState, map[string]string{"name": "monobank"}))
}

func TestGaugeInProgress(t *testing.T) {
	InitMetrics()
	start := getGaugeValue(t, HTTPRequestsInProgress)

	IncGauge(HTTPRequestsInProgress)
	IncGauge(HTTPRequestsInProgress)
	DecGauge(HTTPRequestsInProgress)

	assert.Equal(t, start+1, getGaugeValue(t, HTTPRequestsInProgress))
	DecGauge(HTTPRequestsInProgress)
}

// 辅助函数：获取Counter值
func getCounterValue(t *testing.T, counter prometheus.Counter) float64 {
	var metric dto.Metric
	require.NoError(t, counter.Write(&metric))
	return metric.Counter.GetValue()
}

// 辅助函数：获取CounterVec值
func getCounterVecValue(t *testing.T, counterVec *prometheus.CounterVec, labels map[string]string) float64 {
	var metric dto.Metric
	require.NoError(t, counterVec.With(labels).Write(&metric))
	return metric.Counter.GetValue()
}

// 辅助函数：获取Gauge值
func getGaugeValue(t *testing.T, gauge prometheus.Gauge) float64 {
	var metric dto.Metric
	require.NoError(t, gauge.Write(&metric))
	return metric.Gauge.GetValue()
}

// 辅助函数：获取GaugeVec值
func getGaugeVecValue(t *testing.T, gaugeVec *prometheus.GaugeVec, labels map[string]string) float64 {
	var metric dto.Metric
	require.NoError(t, gaugeVec.With(labels).Write(&metric))
	return metric.Gauge.GetValue()
}

// 辅助函数：获取HistogramVec观测次数
func getHistogramVecCount(t *testing.T, histogramVec *prometheus.HistogramVec, labels map[string]string) uint64 {
	var metric dto.Metric
	histogram := histogramVec.With(labels)
	require.NoError(t, histogram.(prometheus.Histogram).Write(&metric))
	return metric.Histogram.GetSampleCount()
}
