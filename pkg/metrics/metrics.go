package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP 请求延迟（秒）
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "path", "status"},
	)

	// 数据库查询延迟（秒），operation 取 SQL 动词（select/insert/...）
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"operation"},
	)

	// MQ 消费延迟（毫秒）
	MQConsumeLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mq_consume_latency_ms",
			Help:    "MQ message consumption latency in milliseconds",
			Buckets: prometheus.ExponentialBuckets(10, 2, 10), // 10ms to ~10s
		},
		[]string{"routing_key", "queue"},
	)

	// 预测计算耗时（秒）
	ForecastComputeDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "forecast_compute_duration_seconds",
			Help:    "Schedule forecast computation duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 12),
		},
		[]string{"cache"}, // cache: hit, miss
	)

	// 生产记录同步计数
	EntriesSyncedCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "production_entries_synced_count",
			Help: "Total number of production entries synced",
		},
		[]string{"source"}, // source: api, batch_replay
	)

	// 报表生成计数
	ReportGeneratedCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "report_generated_count",
			Help: "Total number of progress reports generated",
		},
		[]string{"format"}, // format: csv, json
	)

	// 慢查询计数
	SlowQueryCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "db_slow_query_count",
			Help: "Total number of slow database queries",
		},
		[]string{"sql"},
	)
)

// RecordHTTPRequestDuration 记录 HTTP 请求延迟
func RecordHTTPRequestDuration(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// RecordDBQueryDuration 记录数据库查询延迟
func RecordDBQueryDuration(operation string, duration time.Duration) {
	DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordMQConsumeLatency 记录 MQ 消费延迟
func RecordMQConsumeLatency(routingKey, queue string, duration time.Duration) {
	MQConsumeLatency.WithLabelValues(routingKey, queue).Observe(float64(duration.Milliseconds()))
}

// RecordForecastCompute 记录预测计算耗时
func RecordForecastCompute(cache string, duration time.Duration) {
	ForecastComputeDuration.WithLabelValues(cache).Observe(duration.Seconds())
}

// IncrementEntriesSynced 增加生产记录同步计数
func IncrementEntriesSynced(source string, n int) {
	EntriesSyncedCount.WithLabelValues(source).Add(float64(n))
}

// IncrementReportGenerated 增加报表生成计数
func IncrementReportGenerated(format string) {
	ReportGeneratedCount.WithLabelValues(format).Inc()
}

// IncrementSlowQuery 增加慢查询计数
func IncrementSlowQuery(sql string, duration time.Duration) {
	SlowQueryCount.WithLabelValues(sql).Inc()
}
