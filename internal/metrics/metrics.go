// Package metrics содержит метрики Prometheus сервиса алертов
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "community_alerts"

var (
	// AlertWrites - записи в хранилище по операциям и результату
	AlertWrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "alert_writes_total",
		Help:      "Alert mutations sent to the store, by operation and result.",
	}, []string{"op", "result"})

	// Snapshots - сколько снимков получено из подписки
	Snapshots = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "snapshots_total",
		Help:      "Full alert snapshots received from the live subscription.",
	})

	// AlertsInSnapshot - размер последнего снимка
	AlertsInSnapshot = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "alerts_in_snapshot",
		Help:      "Number of alerts in the latest snapshot.",
	})

	// FeedSubscribers - активные подписчики живой ленты
	FeedSubscribers = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "feed_subscribers",
		Help:      "Open live feed connections.",
	})

	// WebhookDeliveries - результаты доставки вебхуков
	WebhookDeliveries = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "webhook_deliveries_total",
		Help:      "Webhook delivery attempts by result.",
	}, []string{"result"})
)

// Результаты операций для меток
const (
	ResultOK      = "ok"
	ResultNoop    = "noop"
	ResultDenied  = "denied"
	ResultInvalid = "invalid"
	ResultError   = "error"
)
