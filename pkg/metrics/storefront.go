package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Storefront records cart, remote API and notification activity for one process.
type Storefront struct {
	cartMutations *prometheus.CounterVec
	apiDuration   *prometheus.HistogramVec
	notifications *prometheus.CounterVec
	sessions      prometheus.Gauge
}

// NewStorefront registers the storefront metrics on the provided registerer.
func NewStorefront(reg prometheus.Registerer) *Storefront {
	if reg == nil {
		return &Storefront{}
	}
	cartMutations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_mutations_total",
		Help: "Cart mutations by operation, cart mode and result.",
	}, []string{"op", "mode", "result"})
	apiDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "remote_api_request_duration_seconds",
		Help:    "Duration of storefront API requests in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
	notifications := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "notifications_total",
		Help: "User-facing notifications by level.",
	}, []string{"level"})
	sessions := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "storefront_sessions_active",
		Help: "Sessions currently held by the registry.",
	})
	reg.MustRegister(cartMutations, apiDuration, notifications, sessions)
	return &Storefront{
		cartMutations: cartMutations,
		apiDuration:   apiDuration,
		notifications: notifications,
		sessions:      sessions,
	}
}

// IncCartMutation counts one cart mutation.
func (s *Storefront) IncCartMutation(op, mode string, err error) {
	if s == nil || s.cartMutations == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	s.cartMutations.WithLabelValues(normalizeLabel(op), normalizeLabel(mode), result).Inc()
}

// ObserveAPIRequest records the duration of a remote API call. A zero status means the
// request never produced a response.
func (s *Storefront) ObserveAPIRequest(method, route string, status int, duration time.Duration) {
	if s == nil || s.apiDuration == nil {
		return
	}
	code := "none"
	if status > 0 {
		code = strconv.Itoa(status)
	}
	s.apiDuration.WithLabelValues(normalizeLabel(method), normalizeLabel(route), code).Observe(duration.Seconds())
}

// IncNotification counts one toast.
func (s *Storefront) IncNotification(level string) {
	if s == nil || s.notifications == nil {
		return
	}
	s.notifications.WithLabelValues(normalizeLabel(level)).Inc()
}

// SetActiveSessions reports the registry size.
func (s *Storefront) SetActiveSessions(n int) {
	if s == nil || s.sessions == nil {
		return
	}
	s.sessions.Set(float64(n))
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
