// Package dynamodb serves forum collections from a single DynamoDB table.
//
// Every record of a collection shares the partition key
// "COLLECTION#<name>" and uses its id as sort key. Selectors become filter
// expressions; ordering and windowing happen in process after the
// partition has been read, so T must implement store.Document.
package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"go.uber.org/zap"

	"forum-api/internal/store"
	apperrors "forum-api/pkg/errors"
)

const (
	partitionKey = "PK"
	sortKey      = "SK"
)

// Client is the subset of the DynamoDB API the collection needs.
type Client interface {
	dynamodb.QueryAPIClient
	DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
}

// Collection reads one logical collection out of the table.
type Collection[T store.Document] struct {
	client    Client
	tableName string
	name      string
	logger    *zap.Logger
}

// NewCollection binds the named collection of tableName.
func NewCollection[T store.Document](client Client, tableName, name string, logger *zap.Logger) *Collection[T] {
	return &Collection[T]{
		client:    client,
		tableName: tableName,
		name:      name,
		logger:    logger,
	}
}

// PartitionValue is the partition key shared by every record of a collection.
func PartitionValue(collection string) string {
	return "COLLECTION#" + collection
}

// BuildQueryInput builds the query for sel. Selector keys are visited in
// sorted order so the generated expression is deterministic.
func BuildQueryInput(tableName, collection string, sel store.Selector, countOnly bool) (*dynamodb.QueryInput, error) {
	keyCond := expression.Key(partitionKey).Equal(expression.Value(PartitionValue(collection)))
	builder := expression.NewBuilder().WithKeyCondition(keyCond)

	if len(sel) > 0 {
		fields := make([]string, 0, len(sel))
		for k := range sel {
			fields = append(fields, k)
		}
		sort.Strings(fields)

		var filter expression.ConditionBuilder
		for i, f := range fields {
			var cond expression.ConditionBuilder
			if sel[f] == nil {
				cond = expression.AttributeNotExists(expression.Name(f))
			} else {
				cond = expression.Name(f).Equal(expression.Value(sel[f]))
			}
			if i == 0 {
				filter = cond
			} else {
				filter = filter.And(cond)
			}
		}
		builder = builder.WithFilter(filter)
	}

	expr, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build expression: %w", err)
	}

	input := &dynamodb.QueryInput{
		TableName:                 aws.String(tableName),
		KeyConditionExpression:    expr.KeyCondition(),
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	}
	if countOnly {
		input.Select = types.SelectCount
	}
	return input, nil
}

func (c *Collection[T]) scan(ctx context.Context, sel store.Selector) ([]T, error) {
	input, err := BuildQueryInput(c.tableName, c.name, sel, false)
	if err != nil {
		return nil, err
	}

	out := []T{}
	paginator := dynamodb.NewQueryPaginator(c.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, c.translate("query", err)
		}
		var items []T
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &items); err != nil {
			return nil, fmt.Errorf("failed to unmarshal %s items: %w", c.name, err)
		}
		out = append(out, items...)
	}

	c.logger.Debug("dynamodb query",
		zap.String("table", c.tableName),
		zap.String("collection", c.name),
		zap.Int("matched", len(out)),
	)
	return out, nil
}

func (c *Collection[T]) Find(ctx context.Context, q store.Query) ([]T, error) {
	docs, err := c.scan(ctx, q.Selector)
	if err != nil {
		return nil, err
	}
	store.SortDocuments(docs, q.Sort)
	return store.Window(docs, q.Skip, q.Limit), nil
}

func (c *Collection[T]) FindOne(ctx context.Context, q store.Query) (*T, error) {
	q.Limit = 1
	docs, err := c.Find(ctx, q)
	if err != nil || len(docs) == 0 {
		return nil, err
	}
	return &docs[0], nil
}

func (c *Collection[T]) Count(ctx context.Context, sel store.Selector) (int64, error) {
	input, err := BuildQueryInput(c.tableName, c.name, sel, true)
	if err != nil {
		return 0, err
	}

	var total int64
	paginator := dynamodb.NewQueryPaginator(c.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return 0, c.translate("count", err)
		}
		total += int64(page.Count)
	}
	return total, nil
}

func (c *Collection[T]) Ping(ctx context.Context) error {
	_, err := c.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(c.tableName)})
	if err != nil {
		return c.translate("describe", err)
	}
	return nil
}

// translate keeps the original error reachable through errors.Is/As and
// tags service-side failures with the DynamoDB error code.
func (c *Collection[T]) translate(op string, err error) error {
	var ae smithy.APIError
	if !errors.As(err, &ae) {
		return fmt.Errorf("dynamodb %s %s: %w", op, c.name, err)
	}
	appErr := apperrors.NewUpstreamError("dynamodb", err).WithCode(ae.ErrorCode())
	switch ae.ErrorCode() {
	case "ProvisionedThroughputExceededException", "RequestLimitExceeded", "ThrottlingException":
		appErr.Details = map[string]interface{}{"retryable": true}
	}
	return appErr
}
