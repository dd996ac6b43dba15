// Package metadata persists thumbnail metadata records in DynamoDB.
package metadata

import (
	"time"

	"github.com/google/uuid"
)

// Record describes one generated thumbnail. It is written once by the
// trigger handler and never updated.
type Record struct {
	ID               string `json:"id" dynamodbav:"id"`
	URL              string `json:"url" dynamodbav:"url"`
	ApproxReduceSize string `json:"approxReduceSize" dynamodbav:"approxReduceSize"`
	CreatedAt        string `json:"createdAt" dynamodbav:"createdAt"`
	UpdatedAt        string `json:"updatedAt" dynamodbav:"updatedAt"`
}

// NewRecord stamps a record with a fresh id and both timestamps set to now.
func NewRecord(url, approxReduceSize string, now time.Time) Record {
	ts := now.UTC().Format(time.RFC3339)
	return Record{
		ID:               uuid.New().String(),
		URL:              url,
		ApproxReduceSize: approxReduceSize,
		CreatedAt:        ts,
		UpdatedAt:        ts,
	}
}
