package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const unmatchedRoute = "unmatched"

// Registry holds the HTTP collectors served on /metrics.
type Registry struct {
	reg      *prometheus.Registry
	duration *prometheus.HistogramVec
	inflight prometheus.Gauge
}

func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	r := &Registry{
		reg: reg,
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "sampletrack",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		inflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "sampletrack",
			Subsystem: "http",
			Name:      "requests_in_flight",
			Help:      "HTTP requests being served.",
		}),
	}
	reg.MustRegister(
		r.duration,
		r.inflight,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// Middleware records one observation per request, labelled with the route
// template so path parameters don't explode the label set.
func (r *Registry) Middleware() gin.HandlerFunc {
	return func(g *gin.Context) {
		start := time.Now()
		r.inflight.Inc()
		defer r.inflight.Dec()

		g.Next()

		route := g.FullPath()
		if route == "" {
			route = unmatchedRoute
		}
		r.duration.WithLabelValues(g.Request.Method, route, strconv.Itoa(g.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}

func (r *Registry) Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{Registry: r.reg}))
}
