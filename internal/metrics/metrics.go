// Package metrics exposes Prometheus counters for thumbnail generation and
// the HTTP surface of the local API.
package metrics

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Failure stages of the trigger handler.
const (
	StageRead   = "read"
	StageResize = "resize"
	StageWrite  = "write"
	StageRecord = "record"
)

// Recorder holds the service counters.
type Recorder struct {
	generated prometheus.Counter
	skipped   prometheus.Counter
	failures  *prometheus.CounterVec
	requests  *prometheus.CounterVec
}

// New registers the counters with reg.
func New(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		generated: f.NewCounter(prometheus.CounterOpts{
			Name: "thumbnail_generated_total",
			Help: "Thumbnails written to the object store and recorded.",
		}),
		skipped: f.NewCounter(prometheus.CounterOpts{
			Name: "thumbnail_trigger_skipped_total",
			Help: "Object-created events ignored because the key is a thumbnail.",
		}),
		failures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "thumbnail_trigger_failures_total",
			Help: "Trigger invocations that failed, by stage.",
		}, []string{"stage"}),
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "thumbnail_http_requests_total",
			Help: "HTTP requests served by the local API.",
		}, []string{"method", "route", "status"}),
	}
}

func (r *Recorder) ThumbnailGenerated() { r.generated.Inc() }

func (r *Recorder) TriggerSkipped() { r.skipped.Inc() }

func (r *Recorder) TriggerFailed(stage string) { r.failures.WithLabelValues(stage).Inc() }

// Middleware counts requests by method, matched route and status.
func (r *Recorder) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		r.requests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
	}
}

// Register attaches the Prometheus metrics endpoint to the router.
func Register(router *gin.Engine, path string, gatherer prometheus.Gatherer) {
	router.GET(path, gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
}
