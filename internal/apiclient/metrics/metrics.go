package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus metrics for the API client.
type Metrics struct {
	Requests          *prometheus.CounterVec
	UnauthedShortfall prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		Requests: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "gridview_api_requests_total",
			Help: "Total number of energy API requests by path and status code",
		}, []string{"path", "status"}),
		UnauthedShortfall: promauto.NewCounter(prometheus.CounterOpts{
			Name: "gridview_api_unauthenticated_shortcircuits_total",
			Help: "Authenticated API calls refused before any network traffic because no session exists",
		}),
	}
}

func (m *Metrics) ObserveRequest(path string, status int) {
	m.Requests.WithLabelValues(path, strconv.Itoa(status)).Inc()
}

func (m *Metrics) IncrementUnauthedShortfall() {
	m.UnauthedShortfall.Inc()
}
