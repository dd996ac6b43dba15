// Package api serves the thumbnail metadata table over API Gateway proxy
// events: get by id, delete by id and list all.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"go.uber.org/zap"

	"github.com/sakarghimire/thumbnail-service/internal/logger"
	"github.com/sakarghimire/thumbnail-service/internal/metadata"
)

// IDParam is the path parameter carrying the record id.
const IDParam = "id"

type recordStore interface {
	Get(ctx context.Context, id string) (metadata.Record, error)
	Delete(ctx context.Context, id string) (int, error)
	List(ctx context.Context) ([]metadata.Record, error)
}

// Handlers holds the query entry points.
type Handlers struct {
	store recordStore
	log   *zap.Logger
}

// NewHandlers constructs the query handlers.
func NewHandlers(store recordStore, log *zap.Logger) *Handlers {
	return &Handlers{store: store, log: log}
}

// DeleteResponse is the body returned after a confirmed delete.
type DeleteResponse struct {
	Deleted       bool   `json:"deleted"`
	ItemDeletedID string `json:"itemDeletedId"`
}

func jsonHeaders() map[string]string {
	return map[string]string{"Content-Type": "application/json"}
}

func corsHeaders() map[string]string {
	return map[string]string{
		"Content-Type":                 "application/json",
		"Access-Control-Allow-Methods": "*",
		"Access-Control-Allow-Origin":  "*",
	}
}

// Get returns the record named by the id path parameter.
func (h *Handlers) Get(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	log := logger.ForInvocation(ctx, h.log)
	id := request.PathParameters[IDParam]
	if id == "" {
		return events.APIGatewayProxyResponse{
			StatusCode: http.StatusBadRequest,
			Headers:    corsHeaders(),
			Body:       `{"error": "Invalid thumbnail ID"}`,
		}, nil
	}

	rec, err := h.store.Get(ctx, id)
	if errors.Is(err, metadata.ErrNotFound) {
		return events.APIGatewayProxyResponse{
			StatusCode: http.StatusNotFound,
			Headers:    corsHeaders(),
			Body:       `{"error": "thumbnail not found"}`,
		}, nil
	}
	if err != nil {
		log.Error("get thumbnail record", zap.String("id", id), zap.Error(err))
		return events.APIGatewayProxyResponse{
			StatusCode: http.StatusInternalServerError,
			Headers:    corsHeaders(),
			Body:       `{"error": "Error fetching thumbnail"}`,
		}, nil
	}

	return jsonResponse(http.StatusOK, corsHeaders(), rec)
}

// Delete removes the record named by the id path parameter. Success is
// reported only when DynamoDB acknowledged the delete with HTTP 200.
func (h *Handlers) Delete(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	log := logger.ForInvocation(ctx, h.log)
	id := request.PathParameters[IDParam]
	if id == "" {
		return events.APIGatewayProxyResponse{
			StatusCode: http.StatusBadRequest,
			Headers:    jsonHeaders(),
			Body:       `{"error": "Invalid thumbnail ID"}`,
		}, nil
	}

	status, err := h.store.Delete(ctx, id)
	if err != nil || status != http.StatusOK {
		log.Error("delete thumbnail record", zap.String("id", id), zap.Int("status", status), zap.Error(err))
		msg, _ := json.Marshal(fmt.Sprintf("Failed to delete thumbnail %s", id))
		return events.APIGatewayProxyResponse{
			StatusCode: http.StatusInternalServerError,
			Headers:    jsonHeaders(),
			Body:       string(msg),
		}, nil
	}

	log.Info("thumbnail record deleted", zap.String("id", id))
	return jsonResponse(http.StatusOK, jsonHeaders(), DeleteResponse{Deleted: true, ItemDeletedID: id})
}

// List returns every record in the table.
func (h *Handlers) List(ctx context.Context, _ events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	log := logger.ForInvocation(ctx, h.log)

	records, err := h.store.List(ctx)
	if err != nil {
		log.Error("list thumbnail records", zap.Error(err))
		return events.APIGatewayProxyResponse{
			StatusCode: http.StatusInternalServerError,
			Headers:    corsHeaders(),
			Body:       `{"error": "Error listing thumbnails"}`,
		}, nil
	}
	if records == nil {
		records = []metadata.Record{}
	}

	return jsonResponse(http.StatusOK, corsHeaders(), records)
}

func jsonResponse(status int, headers map[string]string, v any) (events.APIGatewayProxyResponse, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return events.APIGatewayProxyResponse{StatusCode: http.StatusInternalServerError}, err
	}
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    headers,
		Body:       string(body),
	}, nil
}
