package export

import (
	"bytes"
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/datasheet-miner/constants"
	"github.com/joseph-ayodele/datasheet-miner/internal/store"
)

// queryStub answers every query with one fixed page of items.
type queryStub struct {
	items []map[string]types.AttributeValue
}

func (s *queryStub) PutItem(_ context.Context, _ *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	return &dynamodb.PutItemOutput{}, nil
}

func (s *queryStub) GetItem(_ context.Context, _ *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	return &dynamodb.GetItemOutput{}, nil
}

func (s *queryStub) Query(_ context.Context, _ *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	return &dynamodb.QueryOutput{Items: s.items}, nil
}

func (s *queryStub) Scan(_ context.Context, _ *dynamodb.ScanInput, _ ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	return &dynamodb.ScanOutput{}, nil
}

func (s *queryStub) BatchWriteItem(_ context.Context, _ *dynamodb.BatchWriteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error) {
	return &dynamodb.BatchWriteItemOutput{}, nil
}

func motorItem(part string, torque string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK":           &types.AttributeValueMemberS{Value: "PRODUCT#MOTOR"},
		"SK":           &types.AttributeValueMemberS{Value: "PRODUCT#" + part},
		"product_id":   &types.AttributeValueMemberS{Value: "11111111-2222-5333-8444-555555555555"},
		"product_type": &types.AttributeValueMemberS{Value: "motor"},
		"manufacturer": &types.AttributeValueMemberS{Value: "ACME"},
		"part_number":  &types.AttributeValueMemberS{Value: part},
		"datasheet": &types.AttributeValueMemberM{Value: map[string]types.AttributeValue{
			"url": &types.AttributeValueMemberS{Value: "https://example.com/ds.pdf"},
		}},
		"rated_torque": &types.AttributeValueMemberM{Value: map[string]types.AttributeValue{
			"value": &types.AttributeValueMemberN{Value: torque},
			"unit":  &types.AttributeValueMemberS{Value: "Nm"},
		}},
	}
}

func TestExportTypeXLSX(t *testing.T) {
	stub := &queryStub{items: []map[string]types.AttributeValue{
		motorItem("B2", "4.77"),
		motorItem("A1", "2.39"),
	}}
	svc := NewService(store.NewEngine(stub, "products", nil), nil)

	workbook, err := svc.ExportTypeXLSX(context.Background(), constants.Motor)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(workbook))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows("Motor")
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "Product ID", rows[0][0])
	assert.Contains(t, rows[0], "rated_torque")

	// Sorted by manufacturer then part number: A1 before B2.
	assert.Equal(t, "A1", rows[1][2])
	assert.Equal(t, "B2", rows[2][2])

	// Quantity cells use the compact value;unit form.
	torqueCol := -1
	for i, h := range rows[0] {
		if h == "rated_torque" {
			torqueCol = i
		}
	}
	require.GreaterOrEqual(t, torqueCol, 0)
	assert.Equal(t, "2.39;Nm", rows[1][torqueCol])
}
