package api

import (
	"context"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
)

// Route dispatches a single API Gateway proxy integration to the query
// handlers by method and the presence of the id path parameter.
func (h *Handlers) Route(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	switch request.HTTPMethod {
	case http.MethodGet:
		if request.PathParameters[IDParam] != "" {
			return h.Get(ctx, request)
		}
		return h.List(ctx, request)

	case http.MethodDelete:
		return h.Delete(ctx, request)

	case http.MethodOptions:
		return events.APIGatewayProxyResponse{
			StatusCode: http.StatusNoContent,
			Headers:    corsHeaders(),
		}, nil

	default:
		return events.APIGatewayProxyResponse{
			StatusCode: http.StatusMethodNotAllowed,
			Headers:    corsHeaders(),
			Body:       `{"error": "Method not allowed"}`,
		}, nil
	}
}
