// Package metrics описывает prometheus метрики пайплайна.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Исходы обработки записи ленты
const (
	OutcomeFetched        = "fetched"
	OutcomeMalformed      = "malformed"
	OutcomeIrrelevant     = "irrelevant"
	OutcomeDuplicate      = "duplicate"
	OutcomeInserted       = "inserted"
	OutcomeImageRefreshed = "image_refreshed"
	OutcomeUnchanged      = "unchanged"
)

type Metrics struct {
	Items          *prometheus.CounterVec
	SourceFailures *prometheus.CounterVec
	Deliveries     *prometheus.CounterVec
	RunDuration    *prometheus.HistogramVec
}

// New регистрирует метрики в reg. В тестах удобно передавать prometheus.NewRegistry()
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		Items: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "news_digest",
			Name:      "items_total",
			Help:      "Feed entries by source and processing outcome.",
		}, []string{"source", "outcome"}),
		SourceFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "news_digest",
			Name:      "source_failures_total",
			Help:      "Feed endpoints skipped because they could not be fetched or parsed.",
		}, []string{"source"}),
		Deliveries: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "news_digest",
			Name:      "deliveries_total",
			Help:      "Digest deliveries by channel and status.",
		}, []string{"channel", "status"}),
		RunDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "news_digest",
			Name:      "run_duration_seconds",
			Help:      "Duration of ingestion and digest runs.",
			Buckets:   prometheus.ExponentialBuckets(0.5, 2, 10),
		}, []string{"stage"}),
	}
}

// Nop нужен там, где метрики не важны: метрики пишутся в отдельный реестр и никуда не отдаются
func Nop() *Metrics {
	return New(prometheus.NewRegistry())
}
