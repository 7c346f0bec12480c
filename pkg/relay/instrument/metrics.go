// Package instrument decorates a relay.Transport with Prometheus metrics.
package instrument

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/toyz/relay/pkg/relay"
)

// StatusError is the status label recorded when the transport itself fails
const StatusError = "error"

// Metrics holds the collectors shared by every instrumented transport
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	inFlight prometheus.Gauge
}

// NewMetrics registers the relay client collectors with reg. A nil reg uses
// the default Prometheus registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		requests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "relay",
				Subsystem: "client",
				Name:      "requests_total",
				Help:      "Total number of outgoing relay requests",
			},
			[]string{"method", "host", "status"},
		),
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "relay",
				Subsystem: "client",
				Name:      "request_duration_seconds",
				Help:      "Time until response headers arrive, in seconds",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10},
			},
			[]string{"method", "host"},
		),
		inFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "relay",
				Subsystem: "client",
				Name:      "requests_in_flight",
				Help:      "Requests waiting for response headers",
			},
		),
	}
}

// Transport wraps next so every exchange is counted and timed
func (m *Metrics) Transport(next relay.Transport, logger *zap.Logger) *Transport {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Transport{next: next, metrics: m, logger: logger}
}

// Transport is a relay.Transport that records metrics around another one
type Transport struct {
	next    relay.Transport
	metrics *Metrics
	logger  *zap.Logger
}

var _ relay.Transport = (*Transport)(nil)

func (t *Transport) Do(req *http.Request) (*http.Response, error) {
	done := t.begin(req)
	resp, err := t.next.Do(req)
	done(resp, err)
	return resp, err
}

func (t *Transport) DoAsync(req *http.Request, callback func(*http.Response, error)) {
	done := t.begin(req)
	t.next.DoAsync(req, func(resp *http.Response, err error) {
		done(resp, err)
		callback(resp, err)
	})
}

func (t *Transport) begin(req *http.Request) func(*http.Response, error) {
	start := time.Now()
	host := req.URL.Host
	t.metrics.inFlight.Inc()

	return func(resp *http.Response, err error) {
		elapsed := time.Since(start)
		t.metrics.inFlight.Dec()

		status := StatusError
		if err == nil && resp != nil {
			status = strconv.Itoa(resp.StatusCode)
		}
		t.metrics.requests.WithLabelValues(req.Method, host, status).Inc()
		t.metrics.duration.WithLabelValues(req.Method, host).Observe(elapsed.Seconds())

		t.logger.Debug("request metrics collected",
			zap.String("method", req.Method),
			zap.String("host", host),
			zap.String("status", status),
			zap.Duration("duration", elapsed),
		)
	}
}
