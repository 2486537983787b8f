package repository

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// timeLayout is fixed width so that timestamps used as sort keys order
// lexicographically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// maxTransactItems is the DynamoDB TransactWriteItems limit.
const maxTransactItems = 100

const (
	reasonConditionalCheckFailed = "ConditionalCheckFailed"
	reasonTransactionConflict    = "TransactionConflict"
)

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		t, _ = time.Parse(time.RFC3339Nano, s)
	}
	return t
}

func floatToString(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func mergeNames(a, b map[string]string) map[string]string {
	if len(a) == 0 {
		return b
	}
	if len(b) == 0 {
		return a
	}
	out := make(map[string]string, len(a)+len(b))
	for k, v := range a {
		out[k] = v
	}
	for k, v := range b {
		out[k] = v
	}
	return out
}

func strKey(name, value string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{name: &types.AttributeValueMemberS{Value: value}}
}

func strVal(v string) *types.AttributeValueMemberS {
	return &types.AttributeValueMemberS{Value: v}
}

func numVal(v int64) *types.AttributeValueMemberN {
	return &types.AttributeValueMemberN{Value: strconv.FormatInt(v, 10)}
}

func isConditionalCheckFailed(err error) bool {
	var cfe *types.ConditionalCheckFailedException
	return errors.As(err, &cfe)
}

// cancellationReasons returns the per-item reasons of a cancelled
// transaction, or nil when err is not a cancellation.
func cancellationReasons(err error) []types.CancellationReason {
	var tce *types.TransactionCanceledException
	if !errors.As(err, &tce) {
		return nil
	}
	return tce.CancellationReasons
}

func conditionFailedAt(reasons []types.CancellationReason, i int) bool {
	return i < len(reasons) && aws.ToString(reasons[i].Code) == reasonConditionalCheckFailed
}

// isTransactionConflict reports whether err lost against another in-flight
// transaction on the same items.
func isTransactionConflict(err error) bool {
	var tce *types.TransactionConflictException
	if errors.As(err, &tce) {
		return true
	}
	for _, r := range cancellationReasons(err) {
		if aws.ToString(r.Code) == reasonTransactionConflict {
			return true
		}
	}
	return false
}

// dynamoBase holds what every DynamoDB repository shares: the client, the
// table names and the cascade helpers.
type dynamoBase struct {
	ddb    *dynamodb.Client
	tables DynamoTables
}

func (b dynamoBase) getItem(ctx context.Context, table string, key map[string]types.AttributeValue, dst any) (bool, error) {
	out, err := b.ddb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(table),
		Key:            key,
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return false, err
	}
	if len(out.Item) == 0 {
		return false, nil
	}
	if err := attributevalue.UnmarshalMap(out.Item, dst); err != nil {
		return false, err
	}
	return true, nil
}

func (b dynamoBase) scanAll(ctx context.Context, input *dynamodb.ScanInput) ([]map[string]types.AttributeValue, error) {
	var items []map[string]types.AttributeValue
	p := dynamodb.NewScanPaginator(b.ddb, input)
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		items = append(items, page.Items...)
	}
	return items, nil
}

// queryAll pages through a query; limit > 0 stops once that many items were read.
func (b dynamoBase) queryAll(ctx context.Context, input *dynamodb.QueryInput, limit int) ([]map[string]types.AttributeValue, error) {
	var items []map[string]types.AttributeValue
	p := dynamodb.NewQueryPaginator(b.ddb, input)
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		items = append(items, page.Items...)
		if limit > 0 && len(items) >= limit {
			return items[:limit], nil
		}
	}
	return items, nil
}

func (b dynamoBase) cartLines(ctx context.Context, cartID string) ([]cartLineItem, error) {
	raw, err := b.queryAll(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(b.tables.CartItems),
		KeyConditionExpression: aws.String("#cart_id = :cart_id"),
		ExpressionAttributeNames: map[string]string{
			"#cart_id": "cart_id",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":cart_id": strVal(cartID),
		},
		ConsistentRead: aws.Bool(true),
	}, 0)
	if err != nil {
		return nil, err
	}
	lines := make([]cartLineItem, 0, len(raw))
	for _, av := range raw {
		var it cartLineItem
		if err := attributevalue.UnmarshalMap(av, &it); err != nil {
			return nil, err
		}
		lines = append(lines, it)
	}
	return lines, nil
}

// deleteCartCascade removes the cart lines, the open-cart pointer (when it
// still points at this cart) and the cart itself.
func (b dynamoBase) deleteCartCascade(ctx context.Context, cart cartItem) error {
	lines, err := b.cartLines(ctx, cart.ID)
	if err != nil {
		return err
	}
	for _, l := range lines {
		if _, err := b.ddb.DeleteItem(ctx, &dynamodb.DeleteItemInput{
			TableName: aws.String(b.tables.CartItems),
			Key:       cartLineKey(l.CartID, l.ProductID),
		}); err != nil {
			return err
		}
	}

	_, err = b.ddb.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:           aws.String(b.tables.OpenCarts),
		Key:                 strKey("user_id", cart.UserID),
		ConditionExpression: aws.String("#cart_id = :cart_id"),
		ExpressionAttributeNames: map[string]string{
			"#cart_id": "cart_id",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":cart_id": strVal(cart.ID),
		},
	})
	if err != nil && !isConditionalCheckFailed(err) {
		return err
	}

	_, err = b.ddb.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(b.tables.Carts),
		Key:       strKey("id", cart.ID),
	})
	return err
}

func (b dynamoBase) deleteOrder(ctx context.Context, o orderItem) error {
	if o.IdempotencyKey != "" {
		if _, err := b.ddb.DeleteItem(ctx, &dynamodb.DeleteItemInput{
			TableName: aws.String(b.tables.CheckoutKeys),
			Key:       strKey("key", orderKey(o.UserID, o.IdempotencyKey)),
		}); err != nil {
			return err
		}
	}
	_, err := b.ddb.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(b.tables.Orders),
		Key:       strKey("id", o.ID),
	})
	return err
}

func (b dynamoBase) queryByUser(ctx context.Context, table, userID string, newestFirst bool, limit int) ([]map[string]types.AttributeValue, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(table),
		IndexName:              aws.String(userIDIndex),
		KeyConditionExpression: aws.String("#user_id = :user_id"),
		ExpressionAttributeNames: map[string]string{
			"#user_id": "user_id",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":user_id": strVal(userID),
		},
		ScanIndexForward: aws.Bool(!newestFirst),
	}
	if limit > 0 {
		input.Limit = aws.Int32(int32(limit))
	}
	return b.queryAll(ctx, input, limit)
}
