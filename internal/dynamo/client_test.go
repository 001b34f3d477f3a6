package dynamo

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lazyddb/internal/models"
)

type fakeAPI struct {
	listPages []*dynamodb.ListTablesOutput
	listCalls int
	listIn    []*dynamodb.ListTablesInput

	scanOut *dynamodb.ScanOutput
	scanErr error
	scanIn  *dynamodb.ScanInput

	queryOut *dynamodb.QueryOutput
	queryErr error
	queryIn  *dynamodb.QueryInput

	describeOut *dynamodb.DescribeTableOutput
	describeErr error
}

func (f *fakeAPI) ListTables(ctx context.Context, in *dynamodb.ListTablesInput, _ ...func(*dynamodb.Options)) (*dynamodb.ListTablesOutput, error) {
	f.listIn = append(f.listIn, in)
	out := f.listPages[f.listCalls]
	f.listCalls++
	return out, nil
}

func (f *fakeAPI) Scan(ctx context.Context, in *dynamodb.ScanInput, _ ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	f.scanIn = in
	return f.scanOut, f.scanErr
}

func (f *fakeAPI) Query(ctx context.Context, in *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	f.queryIn = in
	return f.queryOut, f.queryErr
}

func (f *fakeAPI) DescribeTable(ctx context.Context, in *dynamodb.DescribeTableInput, _ ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error) {
	return f.describeOut, f.describeErr
}

func item(key, value string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		key: &types.AttributeValueMemberS{Value: value},
	}
}

func TestListTablesFollowsContinuation(t *testing.T) {
	api := &fakeAPI{
		listPages: []*dynamodb.ListTablesOutput{
			{TableNames: []string{"alpha", "beta"}, LastEvaluatedTableName: aws.String("beta")},
			{TableNames: []string{"gamma"}},
		},
	}
	c := New(api, 100)

	tables, err := c.ListTables(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "beta", "gamma"}, tables)

	require.Equal(t, 2, api.listCalls)
	assert.Nil(t, api.listIn[0].ExclusiveStartTableName)
	assert.Equal(t, "beta", aws.ToString(api.listIn[1].ExclusiveStartTableName))
}

func TestScanPageFirstPage(t *testing.T) {
	api := &fakeAPI{
		scanOut: &dynamodb.ScanOutput{
			Items:            []map[string]types.AttributeValue{item("id", "a"), item("id", "b")},
			LastEvaluatedKey: item("id", "b"),
		},
	}
	c := New(api, 100)

	page, err := c.ScanPage(context.Background(), "users", nil)
	require.NoError(t, err)

	require.Len(t, page.Records, 2)
	assert.Equal(t, `{"id":"a"}`, page.Records[0].Raw)
	assert.True(t, page.HasMore)
	assert.NotNil(t, page.Cursor)

	assert.Equal(t, "users", aws.ToString(api.scanIn.TableName))
	assert.Equal(t, int32(100), aws.ToInt32(api.scanIn.Limit))
	assert.Nil(t, api.scanIn.ExclusiveStartKey)
}

func TestScanPageResumesFromCursor(t *testing.T) {
	api := &fakeAPI{
		scanOut: &dynamodb.ScanOutput{
			Items: []map[string]types.AttributeValue{item("id", "c")},
		},
	}
	c := New(api, 25)
	cursor := Cursor(item("id", "b"))

	page, err := c.ScanPage(context.Background(), "users", cursor)
	require.NoError(t, err)

	assert.Equal(t, map[string]types.AttributeValue(cursor), api.scanIn.ExclusiveStartKey)
	assert.False(t, page.HasMore, "no LastEvaluatedKey means the scan is complete")
	assert.Nil(t, page.Cursor)
}

func TestScanPageError(t *testing.T) {
	api := &fakeAPI{scanErr: errors.New("boom")}
	c := New(api, 100)

	_, err := c.ScanPage(context.Background(), "users", nil)
	assert.ErrorContains(t, err, "scanning users")
}

func TestApproximateCount(t *testing.T) {
	api := &fakeAPI{
		describeOut: &dynamodb.DescribeTableOutput{
			Table: &types.TableDescription{ItemCount: aws.Int64(4821)},
		},
	}
	c := New(api, 100)

	count, err := c.ApproximateCount(context.Background(), "users")
	require.NoError(t, err)
	assert.Equal(t, int64(4821), count)
}

func TestKeySchema(t *testing.T) {
	api := &fakeAPI{
		describeOut: &dynamodb.DescribeTableOutput{
			Table: &types.TableDescription{
				KeySchema: []types.KeySchemaElement{
					{AttributeName: aws.String("pk"), KeyType: types.KeyTypeHash},
					{AttributeName: aws.String("sk"), KeyType: types.KeyTypeRange},
				},
				AttributeDefinitions: []types.AttributeDefinition{
					{AttributeName: aws.String("pk"), AttributeType: types.ScalarAttributeTypeS},
					{AttributeName: aws.String("sk"), AttributeType: types.ScalarAttributeTypeN},
				},
			},
		},
	}
	c := New(api, 100)

	schema, err := c.KeySchema(context.Background(), "users")
	require.NoError(t, err)
	require.NotNil(t, schema.Partition)
	assert.Equal(t, models.KeyAttribute{Name: "pk", Type: "S"}, *schema.Partition)
	require.NotNil(t, schema.Sort)
	assert.Equal(t, models.KeyAttribute{Name: "sk", Type: "N"}, *schema.Sort)
}

func TestQueryByKeyPartitionOnly(t *testing.T) {
	api := &fakeAPI{
		queryOut: &dynamodb.QueryOutput{
			Items: []map[string]types.AttributeValue{item("pk", "user-1")},
		},
	}
	c := New(api, 100)

	records, err := c.QueryByKey(context.Background(), "users",
		models.KeyAttribute{Name: "pk", Type: "S"}, "user-1", nil, "")
	require.NoError(t, err)
	require.Len(t, records, 1)

	assert.Equal(t, "#pk = :pk", aws.ToString(api.queryIn.KeyConditionExpression))
	assert.Equal(t, map[string]string{"#pk": "pk"}, api.queryIn.ExpressionAttributeNames)
	assert.Equal(t,
		&types.AttributeValueMemberS{Value: "user-1"},
		api.queryIn.ExpressionAttributeValues[":pk"])
}

func TestQueryByKeyWithSortKey(t *testing.T) {
	api := &fakeAPI{queryOut: &dynamodb.QueryOutput{}}
	c := New(api, 100)

	_, err := c.QueryByKey(context.Background(), "orders",
		models.KeyAttribute{Name: "pk", Type: "S"}, "user-1",
		&models.KeyAttribute{Name: "ts", Type: "N"}, "1700000000")
	require.NoError(t, err)

	assert.Equal(t, "#pk = :pk AND #sk = :sk", aws.ToString(api.queryIn.KeyConditionExpression))
	assert.Equal(t, "ts", api.queryIn.ExpressionAttributeNames["#sk"])
	assert.Equal(t,
		&types.AttributeValueMemberN{Value: "1700000000"},
		api.queryIn.ExpressionAttributeValues[":sk"])
}

func TestRecordFromItemDecodesToPlainJSON(t *testing.T) {
	rec := recordFromItem(map[string]types.AttributeValue{
		"name":   &types.AttributeValueMemberS{Value: "Alice"},
		"age":    &types.AttributeValueMemberN{Value: "30"},
		"active": &types.AttributeValueMemberBOOL{Value: true},
	})

	assert.Equal(t, `{"active":true,"age":30,"name":"Alice"}`, rec.Raw)
	require.NotNil(t, rec.Value)
	obj, ok := rec.Value.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Alice", obj["name"])
	assert.Equal(t, float64(30), obj["age"])
}
