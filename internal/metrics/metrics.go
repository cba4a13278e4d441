package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Исходы похода в ленту
const (
	OutcomeOK        = "ok"
	OutcomeMalformed = "malformed"
	OutcomeError     = "error"
)

var (
	FeedFetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "intelfeed_feed_fetches_total",
		Help: "Feed fetches by outcome",
	}, []string{"outcome"})

	ArticlesStored = promauto.NewCounter(prometheus.CounterOpts{
		Name: "intelfeed_articles_stored_total",
		Help: "New articles persisted by the pipeline",
	})

	ArticlesDuplicate = promauto.NewCounter(prometheus.CounterOpts{
		Name: "intelfeed_articles_duplicate_total",
		Help: "Entries skipped because an article with the same hash already exists",
	})

	EntriesSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "intelfeed_entries_skipped_total",
		Help: "Entries dropped by validation or keyword filters",
	})

	CycleDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "intelfeed_cycle_duration_seconds",
		Help:    "Duration of a full fetch cycle",
		Buckets: prometheus.ExponentialBuckets(0.5, 2, 10), // 0.5s .. ~4m
	})

	CyclesFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "intelfeed_cycles_failed_total",
		Help: "Fetch cycles that ended with an error",
	})

	Subscribers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "intelfeed_ws_subscribers",
		Help: "Currently connected live feed subscribers",
	})

	BroadcastDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "intelfeed_broadcast_dropped_total",
		Help: "Events dropped because a buffer was full",
	})
)

func Handler() http.Handler {
	return promhttp.Handler()
}
