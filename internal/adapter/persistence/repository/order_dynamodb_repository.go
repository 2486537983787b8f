package repository

import (
	"context"
	"sort"
	"time"

	"retail_backoffice/internal/domain/entities"
	"retail_backoffice/internal/usecase/interfaces"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/pkg/errors"
)

type orderItem struct {
	ID             string          `dynamodbav:"id"`
	UserID         string          `dynamodbav:"user_id"`
	CartID         string          `dynamodbav:"cart_id"`
	Total          float64         `dynamodbav:"total"`
	PaymentStatus  string          `dynamodbav:"payment_status"`
	IdempotencyKey string          `dynamodbav:"idempotency_key,omitempty"`
	Items          []orderLineItem `dynamodbav:"items"`
	CreatedAt      string          `dynamodbav:"created_at"`
}

type orderLineItem struct {
	ProductID string  `dynamodbav:"product_id"`
	SKU       string  `dynamodbav:"sku"`
	Name      string  `dynamodbav:"name"`
	Quantity  int     `dynamodbav:"quantity"`
	UnitPrice float64 `dynamodbav:"unit_price"`
	LineTotal float64 `dynamodbav:"line_total"`
}

type checkoutKeyItem struct {
	Key     string `dynamodbav:"key"`
	OrderID string `dynamodbav:"order_id"`
}

// OrderDynamoRepository persists Order entities in DynamoDB.
//
// Table requirements:
//   - orders PK: id, GSI user_id-index (PK user_id, SK created_at)
//   - checkout_keys PK: key
type OrderDynamoRepository struct {
	dynamoBase
}

var _ interfaces.IOrderRepository = (*OrderDynamoRepository)(nil)

func NewOrderDynamoRepository(ddb *dynamodb.Client, tables DynamoTables) *OrderDynamoRepository {
	return &OrderDynamoRepository{dynamoBase{ddb: ddb, tables: tables}}
}

// CreateFromCart commits a checkout in one transaction:
//  0. flip the cart to checked_out, only if still open at the expected version
//  1. drop the user's open-cart pointer
//  2. insert the order
//  3. record the idempotency key, when present
func (r *OrderDynamoRepository) CreateFromCart(ctx context.Context, cmd entities.CheckoutCommand) (entities.Order, error) {
	o := cmd.Order
	orderAV, err := attributevalue.MarshalMap(toOrderItem(o))
	if err != nil {
		return entities.Order{}, err
	}
	now := time.Now().UTC()

	txItems := []types.TransactWriteItem{
		{Update: &types.Update{
			TableName:           aws.String(r.tables.Carts),
			Key:                 strKey("id", cmd.CartID),
			UpdateExpression:    aws.String("SET #status = :checked_out, #updated_at = :updated_at ADD #version :one"),
			ConditionExpression: aws.String("#status = :open AND #version = :version"),
			ExpressionAttributeNames: map[string]string{
				"#status":     "status",
				"#updated_at": "updated_at",
				"#version":    "version",
			},
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":checked_out": strVal(string(entities.CartStatusCheckedOut)),
				":open":        strVal(string(entities.CartStatusOpen)),
				":updated_at":  strVal(formatTime(now)),
				":version":     numVal(cmd.CartVersion),
				":one":         numVal(1),
			},
			ReturnValuesOnConditionCheckFailure: types.ReturnValuesOnConditionCheckFailureAllOld,
		}},
		{Delete: &types.Delete{
			TableName:                 aws.String(r.tables.OpenCarts),
			Key:                       strKey("user_id", o.UserID),
			ConditionExpression:       aws.String("#cart_id = :cart_id"),
			ExpressionAttributeNames:  map[string]string{"#cart_id": "cart_id"},
			ExpressionAttributeValues: map[string]types.AttributeValue{":cart_id": strVal(cmd.CartID)},
		}},
		{Put: &types.Put{
			TableName:                aws.String(r.tables.Orders),
			Item:                     orderAV,
			ConditionExpression:      aws.String("attribute_not_exists(#id)"),
			ExpressionAttributeNames: map[string]string{"#id": "id"},
		}},
	}
	if o.IdempotencyKey != "" {
		keyAV, err := attributevalue.MarshalMap(checkoutKeyItem{Key: orderKey(o.UserID, o.IdempotencyKey), OrderID: o.ID})
		if err != nil {
			return entities.Order{}, err
		}
		txItems = append(txItems, types.TransactWriteItem{Put: &types.Put{
			TableName:                aws.String(r.tables.CheckoutKeys),
			Item:                     keyAV,
			ConditionExpression:      aws.String("attribute_not_exists(#key)"),
			ExpressionAttributeNames: map[string]string{"#key": "key"},
		}})
	}

	_, err = r.ddb.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{TransactItems: txItems})
	if err == nil {
		return o, nil
	}

	reasons := cancellationReasons(err)
	switch {
	case conditionFailedAt(reasons, 3):
		return entities.Order{}, interfaces.ErrDuplicateKey
	case conditionFailedAt(reasons, 0):
		var old cartItem
		if len(reasons[0].Item) > 0 {
			_ = attributevalue.UnmarshalMap(reasons[0].Item, &old)
		}
		if old.Status == string(entities.CartStatusOpen) {
			return entities.Order{}, interfaces.ErrConcurrentUpdate
		}
		return entities.Order{}, interfaces.ErrCartNotOpen
	case conditionFailedAt(reasons, 1):
		return entities.Order{}, interfaces.ErrCartNotOpen
	case isTransactionConflict(err):
		return entities.Order{}, interfaces.ErrConcurrentUpdate
	}
	return entities.Order{}, errors.Wrap(err, "dynamodb checkout")
}

func (r *OrderDynamoRepository) GetByID(ctx context.Context, id string) (entities.Order, error) {
	var it orderItem
	found, err := r.getItem(ctx, r.tables.Orders, strKey("id", id), &it)
	if err != nil {
		return entities.Order{}, errors.Wrap(err, "dynamodb get order")
	}
	if !found {
		return entities.Order{}, nil
	}
	return fromOrderItem(it), nil
}

func (r *OrderDynamoRepository) GetByIdempotencyKey(ctx context.Context, userID, key string) (entities.Order, error) {
	var it checkoutKeyItem
	found, err := r.getItem(ctx, r.tables.CheckoutKeys, strKey("key", orderKey(userID, key)), &it)
	if err != nil {
		return entities.Order{}, errors.Wrap(err, "dynamodb get checkout key")
	}
	if !found {
		return entities.Order{}, nil
	}
	return r.GetByID(ctx, it.OrderID)
}

func (r *OrderDynamoRepository) ListByUserID(ctx context.Context, userID string, limit int) ([]entities.Order, error) {
	raw, err := r.queryByUser(ctx, r.tables.Orders, userID, true, limit)
	if err != nil {
		return nil, errors.Wrap(err, "dynamodb list user orders")
	}
	return decodeOrders(raw)
}

func (r *OrderDynamoRepository) List(ctx context.Context) ([]entities.Order, error) {
	raw, err := r.scanAll(ctx, &dynamodb.ScanInput{TableName: aws.String(r.tables.Orders)})
	if err != nil {
		return nil, errors.Wrap(err, "dynamodb list orders")
	}
	return decodeOrders(raw)
}

func (r *OrderDynamoRepository) UpdatePaymentStatus(ctx context.Context, id, status string) (entities.Order, error) {
	out, err := r.ddb.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(r.tables.Orders),
		Key:                 strKey("id", id),
		ConditionExpression: aws.String("attribute_exists(#id)"),
		UpdateExpression:    aws.String("SET #payment_status = :payment_status"),
		ExpressionAttributeNames: map[string]string{
			"#id":             "id",
			"#payment_status": "payment_status",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":payment_status": strVal(status),
		},
		ReturnValues: types.ReturnValueAllNew,
	})
	if err != nil {
		if isConditionalCheckFailed(err) {
			return entities.Order{}, nil
		}
		return entities.Order{}, errors.Wrap(err, "dynamodb update payment status")
	}
	var it orderItem
	if err := attributevalue.UnmarshalMap(out.Attributes, &it); err != nil {
		return entities.Order{}, err
	}
	return fromOrderItem(it), nil
}

func (r *OrderDynamoRepository) Delete(ctx context.Context, id string) error {
	var it orderItem
	found, err := r.getItem(ctx, r.tables.Orders, strKey("id", id), &it)
	if err != nil {
		return errors.Wrap(err, "dynamodb get order")
	}
	if !found {
		return nil
	}
	return errors.Wrap(r.deleteOrder(ctx, it), "dynamodb delete order")
}

func decodeOrders(raw []map[string]types.AttributeValue) ([]entities.Order, error) {
	orders := make([]entities.Order, 0, len(raw))
	for _, av := range raw {
		var it orderItem
		if err := attributevalue.UnmarshalMap(av, &it); err != nil {
			return nil, err
		}
		orders = append(orders, fromOrderItem(it))
	}
	sort.SliceStable(orders, func(i, j int) bool { return orders[i].CreatedAt.After(orders[j].CreatedAt) })
	return orders, nil
}

func toOrderItem(o entities.Order) orderItem {
	lines := make([]orderLineItem, 0, len(o.Items))
	for _, l := range o.Items {
		lines = append(lines, orderLineItem(l))
	}
	return orderItem{
		ID:             o.ID,
		UserID:         o.UserID,
		CartID:         o.CartID,
		Total:          o.Total,
		PaymentStatus:  o.PaymentStatus,
		IdempotencyKey: o.IdempotencyKey,
		Items:          lines,
		CreatedAt:      formatTime(o.CreatedAt),
	}
}

func fromOrderItem(it orderItem) entities.Order {
	lines := make([]entities.OrderLine, 0, len(it.Items))
	for _, l := range it.Items {
		lines = append(lines, entities.OrderLine(l))
	}
	return entities.Order{
		ID:             it.ID,
		UserID:         it.UserID,
		CartID:         it.CartID,
		Total:          it.Total,
		PaymentStatus:  it.PaymentStatus,
		IdempotencyKey: it.IdempotencyKey,
		Items:          lines,
		CreatedAt:      parseTime(it.CreatedAt),
	}
}
