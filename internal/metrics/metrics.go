// Package metrics exposes the counters the error-handling policy in
// SPEC_FULL.md §ERROR HANDLING requires to be observable out-of-band:
// decode failures, ring-buffer reservation failures, and broadcast lag are
// recovered locally but never silently lost.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// DecodeErrors counts ring-buffer records dropped because they did not
	// match the expected size or kind tag, labeled by event kind.
	DecodeErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "nerrf",
		Subsystem: "decode",
		Name:      "errors_total",
		Help:      "Ring-buffer records dropped due to a decode mismatch.",
	}, []string{"kind"})

	// ReserveErrors counts ring-buffer submissions dropped because the
	// buffer was full, labeled by event family.
	ReserveErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "nerrf",
		Subsystem: "ringbuf",
		Name:      "reserve_errors_total",
		Help:      "Ring buffer reservation failures at record submission.",
	}, []string{"family"})

	// SubscriberLag counts events dropped for a lagging broadcast
	// subscriber.
	SubscriberLag = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "nerrf",
		Subsystem: "dispatch",
		Name:      "subscriber_lag_total",
		Help:      "Events dropped for a subscriber that could not keep up.",
	}, []string{"subscriber"})

	// CollectorRestarts counts CollectorActor restarts performed by the
	// supervisor after an ActorFailed event.
	CollectorRestarts = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "nerrf",
		Subsystem: "collector",
		Name:      "restarts_total",
		Help:      "Times a ring-buffer collector actor was restarted.",
	}, []string{"family"})

	// FeatureAttached reports 1 when a feature currently holds its links,
	// 0 when detached.
	FeatureAttached = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "nerrf",
		Subsystem: "feature",
		Name:      "attached",
		Help:      "Whether a feature's probes are currently attached.",
	}, []string{"feature"})
)

func init() {
	prometheus.MustRegister(DecodeErrors, ReserveErrors, SubscriberLag, CollectorRestarts, FeatureAttached)
}
