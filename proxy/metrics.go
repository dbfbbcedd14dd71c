package proxy

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeOK            = "ok"
	outcomeNoRoute       = "no_route"
	outcomeBadRequest    = "bad_request"
	outcomeUpstreamError = "upstream_error"
)

var (
	quoteRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quote_proxy_requests_total",
		Help: "Quote requests served, labeled by outcome.",
	}, []string{"outcome"})

	quoteDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "quote_proxy_upstream_duration_seconds",
		Help:    "Latency of upstream aggregator calls.",
		Buckets: prometheus.DefBuckets,
	})
)
