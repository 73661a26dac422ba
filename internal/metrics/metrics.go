package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "http_requests_total", Help: "Total HTTP requests"},
		[]string{"route", "method", "status"},
	)
	ReqDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Request duration seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)
	UpstreamRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "upstream_requests_total", Help: "Outbound calls to Google and Facebook APIs"},
		[]string{"upstream", "status"},
	)
	UpstreamDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "upstream_request_duration_seconds",
			Help:    "Outbound call duration seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"upstream"},
	)
	ConnectionsStored = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "oauth_connections_stored_total", Help: "OAuth connections stored by platform and outcome"},
		[]string{"platform", "outcome"},
	)
)

func MustRegister() {
	prometheus.MustRegister(RequestsTotal, ReqDuration, UpstreamRequests, UpstreamDuration, ConnectionsStored)
}

type instrumentedTransport struct {
	upstream string
	base     http.RoundTripper
}

// InstrumentTransport counts and times every request sent through base.
func InstrumentTransport(upstream string, base http.RoundTripper) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	return &instrumentedTransport{upstream: upstream, base: base}
}

func (t *instrumentedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := t.base.RoundTrip(req)
	UpstreamDuration.WithLabelValues(t.upstream).Observe(time.Since(start).Seconds())

	status := "error"
	if err == nil {
		status = strconv.Itoa(resp.StatusCode)
	}
	UpstreamRequests.WithLabelValues(t.upstream, status).Inc()
	return resp, err
}

// NewHTTPClient returns a client with the upstream timeout and instrumentation.
func NewHTTPClient(upstream string, base *http.Client, timeout time.Duration) *http.Client {
	var transport http.RoundTripper
	if base != nil {
		transport = base.Transport
	}
	return &http.Client{
		Transport: InstrumentTransport(upstream, transport),
		Timeout:   timeout,
	}
}
