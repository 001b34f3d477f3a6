// Package dynamo is the cursor-paginated fetch client for the remote store.
// Every page request is bounded to a fixed size and carries an opaque
// continuation cursor forward; the cursor is never inspected here or by any
// caller, only threaded through verbatim.
package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"lazyddb/internal/models"
)

// Cursor is the opaque resume point of a paged scan. A nil cursor means
// "no more pages".
type Cursor map[string]types.AttributeValue

// API is the subset of the DynamoDB client the fetch client uses.
type API interface {
	ListTables(ctx context.Context, in *dynamodb.ListTablesInput, opts ...func(*dynamodb.Options)) (*dynamodb.ListTablesOutput, error)
	Scan(ctx context.Context, in *dynamodb.ScanInput, opts ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	Query(ctx context.Context, in *dynamodb.QueryInput, opts ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	DescribeTable(ctx context.Context, in *dynamodb.DescribeTableInput, opts ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
}

// Page is one bounded slice of a table scan.
type Page struct {
	Records []models.Record
	Cursor  Cursor
	HasMore bool
}

// Client issues scan/query-style requests against DynamoDB.
type Client struct {
	api      API
	pageSize int32
	region   string
}

// New creates a Client over an existing API implementation.
func New(api API, pageSize int) *Client {
	if pageSize <= 0 {
		pageSize = 100
	}
	return &Client{api: api, pageSize: int32(pageSize)}
}

// NewFromConfig resolves credentials and region from the ambient AWS config
// chain and returns a connected Client. endpoint overrides the service
// endpoint (useful for dynamodb-local).
func NewFromConfig(ctx context.Context, region, endpoint string, pageSize int) (*Client, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	api := dynamodb.NewFromConfig(cfg, func(o *dynamodb.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})

	c := New(api, pageSize)
	c.region = cfg.Region
	return c, nil
}

// Region returns the resolved AWS region, if known.
func (c *Client) Region() string {
	return c.region
}

// ListTables returns the complete set of table names, following the store's
// own continuation token until exhausted. The UI filters over the full set,
// so this is one logical result, not a stream.
func (c *Client) ListTables(ctx context.Context) ([]string, error) {
	var tables []string
	var start *string

	for {
		out, err := c.api.ListTables(ctx, &dynamodb.ListTablesInput{
			ExclusiveStartTableName: start,
		})
		if err != nil {
			return nil, fmt.Errorf("listing tables: %w", err)
		}
		tables = append(tables, out.TableNames...)

		start = out.LastEvaluatedTableName
		if start == nil {
			break
		}
	}

	return tables, nil
}

// ScanPage issues one bounded page request. A non-nil cursor resumes a prior
// scan; the returned cursor resumes this one.
func (c *Client) ScanPage(ctx context.Context, table string, cursor Cursor) (Page, error) {
	in := &dynamodb.ScanInput{
		TableName: aws.String(table),
		Limit:     aws.Int32(c.pageSize),
	}
	if len(cursor) > 0 {
		in.ExclusiveStartKey = cursor
	}

	out, err := c.api.Scan(ctx, in)
	if err != nil {
		return Page{}, fmt.Errorf("scanning %s: %w", table, err)
	}

	page := Page{Records: recordsFromItems(out.Items)}
	if len(out.LastEvaluatedKey) > 0 {
		page.Cursor = Cursor(out.LastEvaluatedKey)
		page.HasMore = true
	}
	return page, nil
}

// ApproximateCount returns the store's cheap, possibly-stale cardinality
// estimate for a table. Display only.
func (c *Client) ApproximateCount(ctx context.Context, table string) (int64, error) {
	out, err := c.api.DescribeTable(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(table),
	})
	if err != nil {
		return 0, fmt.Errorf("describing %s: %w", table, err)
	}
	return aws.ToInt64(out.Table.ItemCount), nil
}

// KeySchema discovers the partition/sort key attributes of a table, with
// their attribute types so query values can be encoded correctly.
func (c *Client) KeySchema(ctx context.Context, table string) (models.KeySchema, error) {
	out, err := c.api.DescribeTable(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(table),
	})
	if err != nil {
		return models.KeySchema{}, fmt.Errorf("describing %s: %w", table, err)
	}

	attrTypes := make(map[string]string, len(out.Table.AttributeDefinitions))
	for _, def := range out.Table.AttributeDefinitions {
		attrTypes[aws.ToString(def.AttributeName)] = string(def.AttributeType)
	}

	var schema models.KeySchema
	for _, elem := range out.Table.KeySchema {
		name := aws.ToString(elem.AttributeName)
		attr := &models.KeyAttribute{Name: name, Type: attrTypes[name]}
		switch elem.KeyType {
		case types.KeyTypeHash:
			schema.Partition = attr
		case types.KeyTypeRange:
			schema.Sort = attr
		}
	}
	return schema, nil
}

// QueryByKey runs an equality-only key lookup. sort may be nil for a
// partition-key-only query. Query results are assumed to fit in memory and
// bypass the pagination controller.
func (c *Client) QueryByKey(ctx context.Context, table string, partition models.KeyAttribute, partitionValue string, sortKey *models.KeyAttribute, sortValue string) ([]models.Record, error) {
	condition := "#pk = :pk"
	names := map[string]string{"#pk": partition.Name}
	values := map[string]types.AttributeValue{
		":pk": encodeKeyValue(partition.Type, partitionValue),
	}
	if sortKey != nil {
		condition += " AND #sk = :sk"
		names["#sk"] = sortKey.Name
		values[":sk"] = encodeKeyValue(sortKey.Type, sortValue)
	}

	out, err := c.api.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(table),
		KeyConditionExpression:    aws.String(condition),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
	})
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", table, err)
	}

	return recordsFromItems(out.Items), nil
}

// encodeKeyValue converts user-typed text into the attribute value the key's
// declared type expects. Unknown types fall back to string.
func encodeKeyValue(attrType, value string) types.AttributeValue {
	switch attrType {
	case "N":
		return &types.AttributeValueMemberN{Value: value}
	case "B":
		return &types.AttributeValueMemberB{Value: []byte(value)}
	default:
		return &types.AttributeValueMemberS{Value: value}
	}
}
