// Package server exposes the Lambda handlers over plain HTTP for local
// development and integration testing.
package server

import (
	"context"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/sakarghimire/thumbnail-service/internal/logger"
	"github.com/sakarghimire/thumbnail-service/internal/metrics"
	"github.com/sakarghimire/thumbnail-service/internal/trigger"
)

type proxyHandler func(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error)

// QueryHandlers are the API Gateway query entry points.
type QueryHandlers interface {
	Get(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error)
	Delete(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error)
	List(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error)
}

// EventHandler consumes S3 object-created notifications.
type EventHandler interface {
	Handle(ctx context.Context, event events.S3Event) (*trigger.Result, error)
}

// Dependencies groups what the router serves.
type Dependencies struct {
	Queries     QueryHandlers
	Trigger     EventHandler
	Metrics     *metrics.Recorder
	Gatherer    prometheus.Gatherer
	MetricsPath string
	Ready       func(ctx context.Context) error
	Log         *zap.Logger
}

// NewRouter builds a gin engine with the query routes, an S3 event replay
// endpoint, health checks and metrics.
func NewRouter(deps Dependencies) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(logger.Middleware())
	if deps.Metrics != nil {
		router.Use(deps.Metrics.Middleware())
		metrics.Register(router, deps.MetricsPath, deps.Gatherer)
	}

	registerHealthRoutes(router, deps)

	if deps.Queries != nil {
		router.GET("/thumbnails", proxy(deps.Queries.List))
		router.GET("/thumbnails/:id", proxy(deps.Queries.Get))
		router.DELETE("/thumbnails/:id", proxy(deps.Queries.Delete))
	}
	if deps.Trigger != nil {
		router.POST("/events/s3", replayEvent(deps.Trigger, deps.Log))
	}

	return router
}

func registerHealthRoutes(router *gin.Engine, deps Dependencies) {
	router.GET("/health/live", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.GET("/health/ready", func(c *gin.Context) {
		if deps.Ready != nil {
			if err := deps.Ready(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}

// proxy translates a gin request into an API Gateway proxy event and writes
// the handler's response back.
func proxy(fn proxyHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := c.GetRawData()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable body"})
			return
		}

		params := make(map[string]string, len(c.Params))
		for _, p := range c.Params {
			params[p.Key] = p.Value
		}
		query := make(map[string]string)
		for k, v := range c.Request.URL.Query() {
			if len(v) > 0 {
				query[k] = v[0]
			}
		}
		headers := make(map[string]string, len(c.Request.Header))
		for k := range c.Request.Header {
			headers[k] = c.Request.Header.Get(k)
		}

		resp, err := fn(c.Request.Context(), events.APIGatewayProxyRequest{
			Resource:              c.FullPath(),
			Path:                  c.Request.URL.Path,
			HTTPMethod:            c.Request.Method,
			Headers:               headers,
			QueryStringParameters: query,
			PathParameters:        params,
			Body:                  string(body),
			RequestContext: events.APIGatewayProxyRequestContext{
				RequestID: logger.CorrelationID(c),
			},
		})
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}

		for k, v := range resp.Headers {
			c.Header(k, v)
		}
		c.Data(resp.StatusCode, resp.Headers["Content-Type"], []byte(resp.Body))
	}
}

func replayEvent(h EventHandler, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var event events.S3Event
		if err := c.ShouldBindJSON(&event); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid s3 event"})
			return
		}

		res, err := h.Handle(c.Request.Context(), event)
		if err != nil {
			if log != nil {
				log.Error("replayed event failed", zap.String("correlation_id", logger.CorrelationID(c)), zap.Error(err))
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if res == nil {
			c.Status(http.StatusNoContent)
			return
		}
		c.JSON(http.StatusOK, res)
	}
}
