// Package metrics holds the Prometheus collectors the site exports on
// /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Remote write outcomes recorded in SyncWrites.
const (
	ResultRemote        = "remote"
	ResultRemoteFailed  = "remote_failed"
	ResultRemoteSkipped = "remote_skipped"
	ResultLocalOnly     = "local_only"
)

var (
	SyncWrites = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "devfolio", Name: "sync_writes_total", Help: "Writes by record kind, operation and remote outcome."},
		[]string{"kind", "op", "result"},
	)
	SyncLoads = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "devfolio", Name: "sync_loads_total", Help: "Loads by record kind and the source that answered."},
		[]string{"kind", "source"},
	)
	Uploads = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "devfolio", Name: "image_uploads_total", Help: "Image uploads by result."},
		[]string{"result"},
	)
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "devfolio", Name: "http_requests_total", Help: "HTTP requests by method, route pattern and status."},
		[]string{"method", "route", "status"},
	)
	PageCache = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "devfolio", Name: "page_cache_lookups_total", Help: "Page cache lookups by result."},
		[]string{"result"},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(SyncWrites)
	reg.MustRegister(SyncLoads)
	reg.MustRegister(Uploads)
	reg.MustRegister(PageCache)
	reg.MustRegister(HTTPRequests)
}
