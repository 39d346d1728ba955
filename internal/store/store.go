package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/datasheet-miner/constants"
	"github.com/joseph-ayodele/datasheet-miner/internal/common"
	"github.com/joseph-ayodele/datasheet-miner/internal/entity"
)

// batchSize is the backend's BatchWriteItem limit.
const batchSize = 25

// DDBAPI is the interface for the DynamoDB operations the engine uses.
type DDBAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	BatchWriteItem(ctx context.Context, params *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error)
}

// Engine persists and queries records in one logical table keyed by
// (partition, sort).
type Engine struct {
	client DDBAPI
	table  string
	logger *slog.Logger
}

func NewEngine(client DDBAPI, table string, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{client: client, table: table, logger: logger}
}

// Create writes a record conditionally: it fails with ErrStorageConflict
// if an item already exists at the computed key. This is the only
// concurrency guard between workers racing on the same derived id.
func (e *Engine) Create(ctx context.Context, rec *entity.Record) error {
	item, err := serializeRecord(rec)
	if err != nil {
		return fmt.Errorf("serialize record: %w", err)
	}
	_, err = e.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(e.table),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(PK) AND attribute_not_exists(SK)"),
	})
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			e.logger.Info("store.create.conflict", "id", rec.ID, "type", rec.RecordType)
			return common.ErrStorageConflict
		}
		return fmt.Errorf("%w: put item: %v", common.ErrStorage, err)
	}
	e.logger.Debug("store.create.ok", "id", rec.ID, "type", rec.RecordType)
	return nil
}

// Read is a point lookup. A missing item returns (nil, nil).
func (e *Engine) Read(ctx context.Context, id uuid.UUID, rt constants.RecordType) (*entity.Record, error) {
	out, err := e.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(e.table),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: partitionKey(rt)},
			"SK": &types.AttributeValueMemberS{Value: sortKey(id)},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: get item: %v", common.ErrStorage, err)
	}
	if out.Item == nil {
		return nil, nil
	}
	return deserializeRecord(out.Item)
}

// ExistsByNaturalKey runs a partition-scoped query filtered on the
// human-readable identity, limited to a single result.
func (e *Engine) ExistsByNaturalKey(ctx context.Context, rt constants.RecordType, manufacturer, productName string) (bool, error) {
	out, err := e.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(e.table),
		KeyConditionExpression: aws.String("PK = :pk"),
		FilterExpression:       aws.String("manufacturer = :manufacturer AND product_name = :product_name"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk":           &types.AttributeValueMemberS{Value: partitionKey(rt)},
			":manufacturer": &types.AttributeValueMemberS{Value: manufacturer},
			":product_name": &types.AttributeValueMemberS{Value: productName},
		},
		Limit: aws.Int32(1),
	})
	if err != nil {
		return false, fmt.Errorf("%w: query: %v", common.ErrStorage, err)
	}
	if len(out.Items) > 0 {
		return true, nil
	}
	// A filtered query can return an empty page while more partition
	// data remains; keep paging until the key space is exhausted.
	for out.LastEvaluatedKey != nil {
		out, err = e.client.Query(ctx, &dynamodb.QueryInput{
			TableName:              aws.String(e.table),
			KeyConditionExpression: aws.String("PK = :pk"),
			FilterExpression:       aws.String("manufacturer = :manufacturer AND product_name = :product_name"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":pk":           &types.AttributeValueMemberS{Value: partitionKey(rt)},
				":manufacturer": &types.AttributeValueMemberS{Value: manufacturer},
				":product_name": &types.AttributeValueMemberS{Value: productName},
			},
			Limit:             aws.Int32(1),
			ExclusiveStartKey: out.LastEvaluatedKey,
		})
		if err != nil {
			return false, fmt.Errorf("%w: query: %v", common.ErrStorage, err)
		}
		if len(out.Items) > 0 {
			return true, nil
		}
	}
	return false, nil
}

// ListByType pages through one type's partition until exhausted.
func (e *Engine) ListByType(ctx context.Context, rt constants.RecordType) ([]*entity.Record, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(e.table),
		KeyConditionExpression: aws.String("PK = :pk"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: partitionKey(rt)},
		},
	}

	var records []*entity.Record
	for {
		out, err := e.client.Query(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("%w: query: %v", common.ErrStorage, err)
		}
		for _, item := range out.Items {
			rec, err := deserializeRecord(item)
			if err != nil {
				e.logger.Warn("store.list.deserialize_skipped", "error", err)
				continue
			}
			records = append(records, rec)
		}
		if out.LastEvaluatedKey == nil {
			break
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}
	return records, nil
}

// ScanAll walks the whole table with an optional filter expression. This
// is explicitly the slower path, for when the type is unknown.
func (e *Engine) ScanAll(ctx context.Context, filterExpr string, filterValues map[string]types.AttributeValue) ([]map[string]types.AttributeValue, error) {
	input := &dynamodb.ScanInput{TableName: aws.String(e.table)}
	if filterExpr != "" {
		input.FilterExpression = aws.String(filterExpr)
		input.ExpressionAttributeValues = filterValues
	}

	var items []map[string]types.AttributeValue
	for {
		out, err := e.client.Scan(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("%w: scan: %v", common.ErrStorage, err)
		}
		items = append(items, out.Items...)
		if out.LastEvaluatedKey == nil {
			break
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}
	return items, nil
}

// BatchWrite persists records in chunks of at most 25. A failure inside
// one chunk does not abort the rest; success plus failure always equals
// len(records). Unprocessed items get one retry before counting as
// failed.
func (e *Engine) BatchWrite(ctx context.Context, records []*entity.Record) (successCount, failureCount int) {
	for start := 0; start < len(records); start += batchSize {
		end := min(start+batchSize, len(records))
		chunk := records[start:end]

		requests := make([]types.WriteRequest, 0, len(chunk))
		serialized := 0
		for _, rec := range chunk {
			item, err := serializeRecord(rec)
			if err != nil {
				e.logger.Warn("store.batch.serialize_failed", "id", rec.ID, "error", err)
				failureCount++
				continue
			}
			requests = append(requests, types.WriteRequest{
				PutRequest: &types.PutRequest{Item: item},
			})
			serialized++
		}
		if len(requests) == 0 {
			continue
		}

		unprocessed, err := e.writeBatch(ctx, requests)
		if err != nil {
			e.logger.Error("store.batch.write_failed", "size", len(requests), "error", err)
			failureCount += serialized
			continue
		}
		if len(unprocessed) > 0 {
			retryFailed, retryErr := e.writeBatch(ctx, unprocessed)
			if retryErr != nil {
				failureCount += len(unprocessed)
				successCount += serialized - len(unprocessed)
				continue
			}
			failureCount += len(retryFailed)
			successCount += serialized - len(retryFailed)
			continue
		}
		successCount += serialized
	}
	return successCount, failureCount
}

func (e *Engine) writeBatch(ctx context.Context, requests []types.WriteRequest) ([]types.WriteRequest, error) {
	out, err := e.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
		RequestItems: map[string][]types.WriteRequest{e.table: requests},
	})
	if err != nil {
		return nil, err
	}
	return out.UnprocessedItems[e.table], nil
}
