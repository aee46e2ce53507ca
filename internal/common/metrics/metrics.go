package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	Namespace = "mentions_relay"

	BotSubsystem = "bot"
)

// Общие метрики сервиса.
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"service", "method", "endpoint", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "endpoint"},
	)
)

// Метрики обработки упоминаний.
var (
	MessagesProcessedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: BotSubsystem,
			Name:      "messages_processed_total",
			Help:      "Total number of inbound message events processed",
		},
		[]string{"result"},
	)

	MentionsDroppedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: BotSubsystem,
			Name:      "mentions_dropped_total",
			Help:      "Total number of dropped messages by reason",
		},
		[]string{"reason"},
	)

	NotificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: BotSubsystem,
			Name:      "notifications_total",
			Help:      "Total number of private notifications by outcome",
		},
		[]string{"status"},
	)

	ConfigCacheLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: BotSubsystem,
			Name:      "config_cache_lookups_total",
			Help:      "Total number of config cache lookups",
		},
		[]string{"entity", "outcome"},
	)

	GatewayRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: BotSubsystem,
			Name:      "gateway_request_duration_seconds",
			Help:      "Chat gateway request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"operation"},
	)
)

func RecordHTTPRequest(service, method, endpoint string, statusCode int, duration time.Duration) {
	status := "success"
	if statusCode >= 400 {
		status = "error"
	}

	HTTPRequestsTotal.WithLabelValues(service, method, endpoint, status).Inc()
	HTTPRequestDuration.WithLabelValues(service, method, endpoint).Observe(duration.Seconds())
}

func RecordMessageProcessed(result string) {
	MessagesProcessedTotal.WithLabelValues(result).Inc()
}

func RecordDroppedMessage(reason string) {
	MentionsDroppedTotal.WithLabelValues(reason).Inc()
}

func RecordNotification(status string) {
	NotificationsTotal.WithLabelValues(status).Inc()
}

func RecordConfigCacheLookup(entity, outcome string) {
	ConfigCacheLookupsTotal.WithLabelValues(entity, outcome).Inc()
}

func RecordGatewayRequest(operation string, duration time.Duration) {
	GatewayRequestDuration.WithLabelValues(operation).Observe(duration.Seconds())
}
