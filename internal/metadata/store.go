package metadata

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbattribute"
)

const storeTimeout = 10 * time.Second

// ErrNotFound signals that no record exists for the requested id.
var ErrNotFound = errors.New("thumbnail record not found")

// dynamoAPI is the subset of the DynamoDB client used by Store.
type dynamoAPI interface {
	PutItemWithContext(ctx aws.Context, input *dynamodb.PutItemInput, opts ...request.Option) (*dynamodb.PutItemOutput, error)
	GetItemWithContext(ctx aws.Context, input *dynamodb.GetItemInput, opts ...request.Option) (*dynamodb.GetItemOutput, error)
	DeleteItemWithContext(ctx aws.Context, input *dynamodb.DeleteItemInput, opts ...request.Option) (*dynamodb.DeleteItemOutput, error)
	ScanWithContext(ctx aws.Context, input *dynamodb.ScanInput, opts ...request.Option) (*dynamodb.ScanOutput, error)
}

var _ dynamoAPI = (*dynamodb.DynamoDB)(nil)

// Store reads and writes thumbnail records in a single table keyed by id.
type Store struct {
	client dynamoAPI
	table  string
}

// NewStore builds a store over the given table.
func NewStore(client *dynamodb.DynamoDB, table string) *Store {
	return &Store{client: client, table: table}
}

// Put inserts a new record. It refuses to overwrite an existing id.
func (s *Store) Put(ctx context.Context, rec Record) error {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	item, err := dynamodbattribute.MarshalMap(rec)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}

	_, err = s.client.PutItemWithContext(ctx, &dynamodb.PutItemInput{
		Item:                item,
		TableName:           aws.String(s.table),
		ConditionExpression: aws.String("attribute_not_exists(id)"),
	})
	if err != nil {
		return fmt.Errorf("put record %s: %w", rec.ID, err)
	}
	return nil
}

// Get fetches one record by id.
func (s *Store) Get(ctx context.Context, id string) (Record, error) {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	out, err := s.client.GetItemWithContext(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.table),
		Key:       keyFor(id),
	})
	if err != nil {
		return Record{}, fmt.Errorf("get record %s: %w", id, err)
	}
	if len(out.Item) == 0 {
		return Record{}, ErrNotFound
	}

	var rec Record
	if err := dynamodbattribute.UnmarshalMap(out.Item, &rec); err != nil {
		return Record{}, fmt.Errorf("unmarshal record %s: %w", id, err)
	}
	return rec, nil
}

// Delete removes the record with the given id and returns the HTTP status
// code DynamoDB answered with. A delete of a missing id still succeeds with
// 200, as DeleteItem is idempotent.
func (s *Store) Delete(ctx context.Context, id string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	var status int
	captureStatus := func(r *request.Request) {
		r.Handlers.Complete.PushBack(func(r *request.Request) {
			if r.HTTPResponse != nil {
				status = r.HTTPResponse.StatusCode
			}
		})
	}

	_, err := s.client.DeleteItemWithContext(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.table),
		Key:       keyFor(id),
	}, captureStatus)
	if err != nil {
		return status, fmt.Errorf("delete record %s: %w", id, err)
	}
	return status, nil
}

// List scans the whole table, following LastEvaluatedKey until every page
// has been read. Records are returned in the order DynamoDB yields them.
func (s *Store) List(ctx context.Context) ([]Record, error) {
	records := []Record{}
	input := &dynamodb.ScanInput{TableName: aws.String(s.table)}

	for {
		out, err := s.scanPage(ctx, input)
		if err != nil {
			return nil, err
		}

		var page []Record
		if err := dynamodbattribute.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, fmt.Errorf("unmarshal records: %w", err)
		}
		records = append(records, page...)

		if len(out.LastEvaluatedKey) == 0 {
			return records, nil
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}
}

func (s *Store) scanPage(ctx context.Context, input *dynamodb.ScanInput) (*dynamodb.ScanOutput, error) {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	out, err := s.client.ScanWithContext(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("scan records: %w", err)
	}
	return out, nil
}

func keyFor(id string) map[string]*dynamodb.AttributeValue {
	return map[string]*dynamodb.AttributeValue{
		"id": {S: aws.String(id)},
	}
}
