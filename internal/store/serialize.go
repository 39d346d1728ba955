package store

import (
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/datasheet-miner/constants"
	"github.com/joseph-ayodele/datasheet-miner/internal/entity"
)

// partitionKey / sortKey build the composite key: all records of one
// type share a partition, the deterministic id disambiguates within it.
func partitionKey(rt constants.RecordType) string {
	return rt.PartitionKey()
}

func sortKey(id uuid.UUID) string {
	return constants.TypeNamespace + "#" + id.String()
}

// serializeRecord flattens a record into the single-table item shape:
// {PK, SK, product_id, product_type, natural keys, datasheet, ...fields}.
// Floats are written as exact shortest-decimal numbers so nothing drifts
// through a binary float representation.
func serializeRecord(rec *entity.Record) (map[string]types.AttributeValue, error) {
	flat := map[string]any{
		"PK":           partitionKey(rec.RecordType),
		"SK":           sortKey(rec.ID),
		"product_id":   rec.ID.String(),
		"product_type": string(rec.RecordType),
		"manufacturer": rec.Manufacturer,
	}
	if rec.PartNumber != "" {
		flat["part_number"] = rec.PartNumber
	}
	if rec.ProductName != "" {
		flat["product_name"] = rec.ProductName
	}
	if rec.ProductFamily != "" {
		flat["product_family"] = rec.ProductFamily
	}
	if rec.Series != "" {
		flat["series"] = rec.Series
	}
	datasheet := map[string]any{"url": rec.Provenance.URL}
	if len(rec.Provenance.Pages) > 0 {
		pages := make([]any, len(rec.Provenance.Pages))
		for i, p := range rec.Provenance.Pages {
			pages[i] = p
		}
		datasheet["pages"] = pages
	}
	flat["datasheet"] = datasheet
	for k, v := range rec.Fields {
		flat[k] = v
	}

	item := make(map[string]types.AttributeValue, len(flat))
	for k, v := range flat {
		av, err := toAttributeValue(v)
		if err != nil {
			return nil, fmt.Errorf("attribute %q: %w", k, err)
		}
		item[k] = av
	}
	return item, nil
}

func toAttributeValue(v any) (types.AttributeValue, error) {
	switch t := v.(type) {
	case nil:
		return &types.AttributeValueMemberNULL{Value: true}, nil
	case string:
		return &types.AttributeValueMemberS{Value: t}, nil
	case bool:
		return &types.AttributeValueMemberBOOL{Value: t}, nil
	case int:
		return &types.AttributeValueMemberN{Value: strconv.Itoa(t)}, nil
	case int64:
		return &types.AttributeValueMemberN{Value: strconv.FormatInt(t, 10)}, nil
	case float64:
		return &types.AttributeValueMemberN{Value: strconv.FormatFloat(t, 'f', -1, 64)}, nil
	case map[string]any:
		m := make(map[string]types.AttributeValue, len(t))
		for k, el := range t {
			av, err := toAttributeValue(el)
			if err != nil {
				return nil, err
			}
			m[k] = av
		}
		return &types.AttributeValueMemberM{Value: m}, nil
	case []any:
		l := make([]types.AttributeValue, len(t))
		for i, el := range t {
			av, err := toAttributeValue(el)
			if err != nil {
				return nil, err
			}
			l[i] = av
		}
		return &types.AttributeValueMemberL{Value: l}, nil
	case []int:
		l := make([]types.AttributeValue, len(t))
		for i, el := range t {
			l[i] = &types.AttributeValueMemberN{Value: strconv.Itoa(el)}
		}
		return &types.AttributeValueMemberL{Value: l}, nil
	case []string:
		l := make([]types.AttributeValue, len(t))
		for i, el := range t {
			l[i] = &types.AttributeValueMemberS{Value: el}
		}
		return &types.AttributeValueMemberL{Value: l}, nil
	default:
		return nil, fmt.Errorf("unsupported attribute type %T", v)
	}
}

// deserializeRecord rebuilds a record from a raw item. Deserialization
// is tolerant: unknown attributes land in Fields instead of failing the
// read.
func deserializeRecord(item map[string]types.AttributeValue) (*entity.Record, error) {
	var flat map[string]any
	if err := attributevalue.UnmarshalMap(item, &flat); err != nil {
		return nil, fmt.Errorf("unmarshal item: %w", err)
	}
	delete(flat, "PK")
	delete(flat, "SK")

	rec := &entity.Record{}
	if s, ok := flat["product_id"].(string); ok {
		if id, err := uuid.Parse(s); err == nil {
			rec.ID = id
		}
		delete(flat, "product_id")
	}
	if s, ok := flat["product_type"].(string); ok {
		rec.RecordType = constants.RecordType(s)
		delete(flat, "product_type")
	}
	rec.Manufacturer = takeString(flat, "manufacturer")
	rec.PartNumber = takeString(flat, "part_number")
	rec.ProductName = takeString(flat, "product_name")
	rec.ProductFamily = takeString(flat, "product_family")
	rec.Series = takeString(flat, "series")

	if ds, ok := flat["datasheet"].(map[string]any); ok {
		rec.Provenance.URL, _ = ds["url"].(string)
		if pages, ok := ds["pages"].([]any); ok {
			for _, p := range pages {
				if n, ok := p.(float64); ok {
					rec.Provenance.Pages = append(rec.Provenance.Pages, int(n))
				}
			}
		}
		delete(flat, "datasheet")
	}
	rec.Fields = flat
	return rec, nil
}

func takeString(m map[string]any, key string) string {
	s, ok := m[key].(string)
	if ok {
		delete(m, key)
	}
	return s
}
