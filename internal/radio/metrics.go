package radio

import "github.com/prometheus/client_golang/prometheus"

var (
	syncCycles = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "radio_sync_cycles_total", Help: "Sync cycles by result"},
		[]string{"result"},
	)
	syncSkipped = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "radio_sync_skipped_ticks_total", Help: "Ticks skipped because a cycle was still running"},
	)
	syncDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "radio_sync_cycle_duration_seconds",
			Help:    "Sync cycle time",
			Buckets: []float64{0.05, 0.1, 0.5, 1, 2, 5},
		},
	)
	fetchErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "radio_upstream_fetch_errors_total", Help: "Icecast fetch failures"},
		[]string{"kind"},
	)
	persistErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "radio_persist_errors_total", Help: "Failed document writes"},
		[]string{"document"},
	)
	tracksPlayed = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "radio_track_transitions_total", Help: "Track changes observed"},
	)
	listenersGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: "radio_listeners", Help: "Listeners reported by Icecast"},
	)
	peakGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: "radio_listener_peak", Help: "Highest listener count seen"},
	)
	onlineGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: "radio_stream_online", Help: "1 when the mount is live"},
	)
)

func RegisterMetrics() {
	prometheus.MustRegister(
		syncCycles, syncSkipped, syncDuration,
		fetchErrors, persistErrors,
		tracksPlayed, listenersGauge, peakGauge, onlineGauge,
	)
}
