package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sakarghimire/thumbnail-service/internal/metrics"
	"github.com/sakarghimire/thumbnail-service/internal/trigger"
)

type fakeQueries struct {
	last events.APIGatewayProxyRequest
}

func (f *fakeQueries) respond(req events.APIGatewayProxyRequest, body string) (events.APIGatewayProxyResponse, error) {
	f.last = req
	return events.APIGatewayProxyResponse{
		StatusCode: http.StatusOK,
		Headers:    map[string]string{"Content-Type": "application/json", "Access-Control-Allow-Origin": "*"},
		Body:       body,
	}, nil
}

func (f *fakeQueries) Get(_ context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	return f.respond(req, `{"id":"`+req.PathParameters["id"]+`"}`)
}

func (f *fakeQueries) Delete(_ context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	return f.respond(req, `{"deleted":true}`)
}

func (f *fakeQueries) List(_ context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	return f.respond(req, `[]`)
}

type fakeTrigger struct {
	event  events.S3Event
	result *trigger.Result
	err    error
}

func (f *fakeTrigger) Handle(_ context.Context, event events.S3Event) (*trigger.Result, error) {
	f.event = event
	return f.result, f.err
}

func newTestRouter(q *fakeQueries, tr *fakeTrigger, ready func(context.Context) error) *gin.Engine {
	gin.SetMode(gin.TestMode)
	reg := prometheus.NewRegistry()
	return NewRouter(Dependencies{
		Queries:     q,
		Trigger:     tr,
		Metrics:     metrics.New(reg),
		Gatherer:    reg,
		MetricsPath: "/metrics",
		Ready:       ready,
		Log:         zap.NewNop(),
	})
}

func serve(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func TestQueryRoutesProxyToHandlers(t *testing.T) {
	q := &fakeQueries{}
	r := newTestRouter(q, &fakeTrigger{}, nil)

	rr := serve(r, http.MethodGet, "/thumbnails/abc?verbose=1", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"id":"abc"}`, rr.Body.String())
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "abc", q.last.PathParameters["id"])
	assert.Equal(t, "1", q.last.QueryStringParameters["verbose"])
	assert.Equal(t, http.MethodGet, q.last.HTTPMethod)
	assert.NotEmpty(t, q.last.RequestContext.RequestID)

	rr = serve(r, http.MethodDelete, "/thumbnails/abc", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, http.MethodDelete, q.last.HTTPMethod)

	rr = serve(r, http.MethodGet, "/thumbnails", "")
	assert.Equal(t, "[]", rr.Body.String())
}

func TestReplayEvent(t *testing.T) {
	tr := &fakeTrigger{result: &trigger.Result{URL: "http://minio/uploads/cat_thumbnail.png", ID: "id-1", ApproxReduceSize: "53.0KB"}}
	r := newTestRouter(&fakeQueries{}, tr, nil)

	payload := `{"Records":[{"s3":{"bucket":{"name":"uploads"},"object":{"key":"my+cat.jpg","size":100000}}}]}`
	rr := serve(r, http.MethodPost, "/events/s3", payload)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"url":"http://minio/uploads/cat_thumbnail.png","id":"id-1","approxReduceSize":"53.0KB"}`, rr.Body.String())
	require.Len(t, tr.event.Records, 1)
	assert.Equal(t, "uploads", tr.event.Records[0].S3.Bucket.Name)
	assert.Equal(t, "my cat.jpg", tr.event.Records[0].S3.Object.URLDecodedKey)
	assert.Equal(t, int64(100000), tr.event.Records[0].S3.Object.Size)
}

func TestReplayEventOutcomes(t *testing.T) {
	payload := `{"Records":[{"s3":{"bucket":{"name":"uploads"},"object":{"key":"a_thumbnail.png"}}}]}`

	r := newTestRouter(&fakeQueries{}, &fakeTrigger{}, nil)
	assert.Equal(t, http.StatusNoContent, serve(r, http.MethodPost, "/events/s3", payload).Code)

	r = newTestRouter(&fakeQueries{}, &fakeTrigger{err: errors.New("boom")}, nil)
	assert.Equal(t, http.StatusInternalServerError, serve(r, http.MethodPost, "/events/s3", payload).Code)

	assert.Equal(t, http.StatusBadRequest, serve(r, http.MethodPost, "/events/s3", "{not json").Code)
}

func TestHealthRoutes(t *testing.T) {
	r := newTestRouter(&fakeQueries{}, &fakeTrigger{}, func(context.Context) error { return errors.New("dynamodb unreachable") })

	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/health/live", "").Code)

	rr := serve(r, http.MethodGet, "/health/ready", "")
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Contains(t, rr.Body.String(), "dynamodb unreachable")
}

func TestMetricsEndpoint(t *testing.T) {
	r := newTestRouter(&fakeQueries{}, &fakeTrigger{}, nil)
	serve(r, http.MethodGet, "/thumbnails", "")

	rr := serve(r, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "thumbnail_http_requests_total")
}
