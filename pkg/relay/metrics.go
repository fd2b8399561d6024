package relay

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "peerlink"

// Reasons a session gets destroyed.
const (
	ReasonEmpty      = "empty"
	ReasonLifetime   = "lifetime"
	ReasonDisconnect = "disconnect"
	ReasonDeleted    = "deleted"
	ReasonShutdown   = "shutdown"
)

type Metrics struct {
	sessionsActive       prometheus.Gauge
	sessionsCreated      prometheus.Counter
	sessionsDestroyed    *prometheus.CounterVec
	signalsRouted        prometheus.Counter
	signalsRejected      *prometheus.CounterVec
	notificationsDropped prometheus.Counter
	streamsActive        *prometheus.GaugeVec
}

// NewMetrics creates relay collectors and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		sessionsActive: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "sessions_active",
			Help: "Number of live sessions.",
		}),
		sessionsCreated: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "sessions_created_total",
			Help: "Sessions created since start.",
		}),
		sessionsDestroyed: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "sessions_destroyed_total",
			Help: "Sessions destroyed, by reason.",
		}, []string{"reason"}),
		signalsRouted: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "signals_routed_total",
			Help: "Signal messages accepted for delivery.",
		}),
		signalsRejected: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "signals_rejected_total",
			Help: "Signal messages refused, by reason.",
		}, []string{"reason"}),
		notificationsDropped: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "notifications_dropped_total",
			Help: "Presence notifications lost to a full queue.",
		}),
		streamsActive: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Name: "streams_active",
			Help: "Open event streams, by transport.",
		}, []string{"transport"}),
	}
}

func (m *Metrics) sessionCreated() {
	m.sessionsCreated.Inc()
	m.sessionsActive.Inc()
}

func (m *Metrics) sessionDestroyed(reason string) {
	m.sessionsDestroyed.WithLabelValues(reason).Inc()
	m.sessionsActive.Dec()
}

func (m *Metrics) signalRouted() { m.signalsRouted.Inc() }

func (m *Metrics) signalRejected(reason string) { m.signalsRejected.WithLabelValues(reason).Inc() }

func (m *Metrics) notificationDropped() { m.notificationsDropped.Inc() }

// TrackStream counts an open stream of the given transport until the
// returned func is called.
func (m *Metrics) TrackStream(transport string) (done func()) {
	g := m.streamsActive.WithLabelValues(transport)
	g.Inc()
	return g.Dec
}
