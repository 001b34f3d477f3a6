package dynamo

import (
	"encoding/json"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"lazyddb/internal/models"
)

// recordsFromItems converts raw DynamoDB items into display records. Items
// that cannot be decoded become records with a nil Value; the filter engine
// skips them and the detail view renders them as an empty tree.
func recordsFromItems(items []map[string]types.AttributeValue) []models.Record {
	records := make([]models.Record, 0, len(items))
	for _, item := range items {
		records = append(records, recordFromItem(item))
	}
	return records
}

func recordFromItem(item map[string]types.AttributeValue) models.Record {
	var value map[string]any
	if err := attributevalue.UnmarshalMap(item, &value); err != nil {
		return models.Record{Raw: "(unreadable item)"}
	}

	// Marshal sorts object keys, so the row text is stable across fetches.
	// Parsing it back yields the plain maps/slices/float64 shapes the filter
	// engine and tree builder walk.
	raw, err := json.Marshal(value)
	if err != nil {
		return models.Record{Raw: "(unreadable item)"}
	}
	return models.NewRecord(string(raw))
}
