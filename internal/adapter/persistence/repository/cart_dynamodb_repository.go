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
	"github.com/google/uuid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// cartWriteAttempts bounds how often a cart mutation re-reads after losing a
// race against another writer of the same user's cart.
const cartWriteAttempts = 3

type cartItem struct {
	ID        string `dynamodbav:"id"`
	UserID    string `dynamodbav:"user_id"`
	Status    string `dynamodbav:"status"`
	Version   int64  `dynamodbav:"version"`
	CreatedAt string `dynamodbav:"created_at"`
	UpdatedAt string `dynamodbav:"updated_at"`
}

type openCartItem struct {
	UserID string `dynamodbav:"user_id"`
	CartID string `dynamodbav:"cart_id"`
}

type cartLineItem struct {
	CartID    string  `dynamodbav:"cart_id"`
	ProductID string  `dynamodbav:"product_id"`
	LineID    string  `dynamodbav:"line_id"`
	Quantity  int     `dynamodbav:"quantity"`
	UnitPrice float64 `dynamodbav:"unit_price"`
}

// CartDynamoRepository persists carts and cart lines in DynamoDB.
//
// The open_carts table holds one item per user pointing at the open cart;
// creating it with attribute_not_exists is what makes "at most one open cart
// per user" hold under concurrent writers. Every line mutation is a
// transaction that re-checks that pointer and bumps the cart version.
type CartDynamoRepository struct {
	dynamoBase
}

var _ interfaces.ICartRepository = (*CartDynamoRepository)(nil)

func NewCartDynamoRepository(ddb *dynamodb.Client, tables DynamoTables) *CartDynamoRepository {
	return &CartDynamoRepository{dynamoBase{ddb: ddb, tables: tables}}
}

func (r *CartDynamoRepository) GetOpenCart(ctx context.Context, userID string) (entities.Cart, error) {
	var ptr openCartItem
	found, err := r.getItem(ctx, r.tables.OpenCarts, strKey("user_id", userID), &ptr)
	if err != nil {
		return entities.Cart{}, errors.Wrap(err, "dynamodb get open cart")
	}
	if !found {
		return entities.Cart{}, nil
	}

	cart, err := r.GetByID(ctx, ptr.CartID)
	if err != nil {
		return entities.Cart{}, err
	}
	if cart.Status != entities.CartStatusOpen {
		return entities.Cart{}, nil
	}
	return cart, nil
}

func (r *CartDynamoRepository) GetOrCreateOpenCart(ctx context.Context, userID string) (entities.Cart, error) {
	for attempt := 1; attempt <= cartWriteAttempts; attempt++ {
		cart, err := r.GetOpenCart(ctx, userID)
		if err != nil {
			return entities.Cart{}, err
		}
		if cart.ID != "" {
			return cart, nil
		}

		now := time.Now().UTC()
		cart = entities.Cart{
			ID:        uuid.NewString(),
			UserID:    userID,
			Status:    entities.CartStatusOpen,
			CreatedAt: now,
			UpdatedAt: now,
		}
		cartAV, err := attributevalue.MarshalMap(toCartItem(cart))
		if err != nil {
			return entities.Cart{}, err
		}
		ptrAV, err := attributevalue.MarshalMap(openCartItem{UserID: userID, CartID: cart.ID})
		if err != nil {
			return entities.Cart{}, err
		}

		_, err = r.ddb.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
			TransactItems: []types.TransactWriteItem{
				{Put: &types.Put{
					TableName:                aws.String(r.tables.OpenCarts),
					Item:                     ptrAV,
					ConditionExpression:      aws.String("attribute_not_exists(#user_id)"),
					ExpressionAttributeNames: map[string]string{"#user_id": "user_id"},
				}},
				{Put: &types.Put{
					TableName:                aws.String(r.tables.Carts),
					Item:                     cartAV,
					ConditionExpression:      aws.String("attribute_not_exists(#id)"),
					ExpressionAttributeNames: map[string]string{"#id": "id"},
				}},
			},
		})
		if err == nil {
			log.Printf("[cart][dynamodb] open cart created user_id=%s cart_id=%s", userID, cart.ID)
			return cart, nil
		}
		if conditionFailedAt(cancellationReasons(err), 0) || isTransactionConflict(err) {
			// Another request created the user's open cart first; read it.
			continue
		}
		return entities.Cart{}, errors.Wrap(err, "dynamodb create open cart")
	}
	return entities.Cart{}, interfaces.ErrConcurrentUpdate
}

func (r *CartDynamoRepository) AddItem(ctx context.Context, cmd entities.AddItemCommand) (entities.Cart, error) {
	if cmd.MaxLineQuantity > 0 && cmd.Quantity > cmd.MaxLineQuantity {
		return entities.Cart{}, interfaces.ErrLineQuantityExceeded
	}

	for attempt := 1; attempt <= cartWriteAttempts; attempt++ {
		cart, err := r.GetOrCreateOpenCart(ctx, cmd.UserID)
		if err != nil {
			return entities.Cart{}, err
		}
		now := time.Now().UTC()

		lineUpdate := &types.Update{
			TableName:        aws.String(r.tables.CartItems),
			Key:              cartLineKey(cart.ID, cmd.ProductID),
			UpdateExpression: aws.String("SET #unit_price = :unit_price, #line_id = if_not_exists(#line_id, :line_id) ADD #quantity :quantity"),
			ExpressionAttributeNames: map[string]string{
				"#unit_price": "unit_price",
				"#line_id":    "line_id",
				"#quantity":   "quantity",
			},
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":unit_price": &types.AttributeValueMemberN{Value: floatToString(cmd.UnitPrice)},
				":line_id":    strVal(uuid.NewString()),
				":quantity":   numVal(int64(cmd.Quantity)),
			},
		}
		if cmd.MaxLineQuantity > 0 {
			lineUpdate.ConditionExpression = aws.String("attribute_not_exists(#quantity) OR #quantity <= :max_prev")
			lineUpdate.ExpressionAttributeValues[":max_prev"] = numVal(int64(cmd.MaxLineQuantity - cmd.Quantity))
		}

		_, err = r.ddb.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
			TransactItems: []types.TransactWriteItem{
				{ConditionCheck: &types.ConditionCheck{
					TableName:                 aws.String(r.tables.OpenCarts),
					Key:                       strKey("user_id", cmd.UserID),
					ConditionExpression:       aws.String("#cart_id = :cart_id"),
					ExpressionAttributeNames:  map[string]string{"#cart_id": "cart_id"},
					ExpressionAttributeValues: map[string]types.AttributeValue{":cart_id": strVal(cart.ID)},
				}},
				{Update: lineUpdate},
				{Update: r.bumpCart(cart.ID, now, "#status = :open", statusName, map[string]types.AttributeValue{
					":open": strVal(string(entities.CartStatusOpen)),
				})},
			},
		})
		if err == nil {
			cart.Version++
			cart.UpdatedAt = now
			return cart, nil
		}

		reasons := cancellationReasons(err)
		if conditionFailedAt(reasons, 1) {
			return entities.Cart{}, interfaces.ErrLineQuantityExceeded
		}
		if conditionFailedAt(reasons, 0) || conditionFailedAt(reasons, 2) || isTransactionConflict(err) {
			log.Warnf("[cart][dynamodb] add-item retry user_id=%s cart_id=%s attempt=%d", cmd.UserID, cart.ID, attempt)
			continue
		}
		return entities.Cart{}, errors.Wrap(err, "dynamodb add cart item")
	}
	return entities.Cart{}, interfaces.ErrConcurrentUpdate
}

func (r *CartDynamoRepository) ListItems(ctx context.Context, cartID string) ([]entities.CartItem, error) {
	lines, err := r.cartLines(ctx, cartID)
	if err != nil {
		return nil, errors.Wrap(err, "dynamodb list cart items")
	}
	items := make([]entities.CartItem, 0, len(lines))
	for _, l := range lines {
		items = append(items, fromCartLineItem(l))
	}
	return items, nil
}

// ClearItems deletes every line of an open cart. The first transaction
// chunk is conditioned on the cart version read with the lines, so a
// concurrent add makes the clear start over instead of leaving a line behind.
func (r *CartDynamoRepository) ClearItems(ctx context.Context, cartID string) (entities.Cart, error) {
	for attempt := 1; attempt <= cartWriteAttempts; attempt++ {
		cart, err := r.GetByID(ctx, cartID)
		if err != nil {
			return entities.Cart{}, err
		}
		if cart.ID == "" || cart.Status != entities.CartStatusOpen {
			return entities.Cart{}, interfaces.ErrCartNotOpen
		}
		lines, err := r.cartLines(ctx, cartID)
		if err != nil {
			return entities.Cart{}, errors.Wrap(err, "dynamodb list cart items")
		}

		now := time.Now().UTC()
		lost := false
		for start := 0; start == 0 || start < len(lines); start += maxTransactItems - 1 {
			end := min(start+maxTransactItems-1, len(lines))
			cond := "#status = :open"
			values := map[string]types.AttributeValue{":open": strVal(string(entities.CartStatusOpen))}
			if start == 0 {
				cond += " AND #version = :version"
				values[":version"] = numVal(cart.Version)
			}

			txItems := []types.TransactWriteItem{{Update: r.bumpCart(cartID, now, cond, statusName, values)}}
			for _, l := range lines[start:end] {
				txItems = append(txItems, types.TransactWriteItem{Delete: &types.Delete{
					TableName: aws.String(r.tables.CartItems),
					Key:       cartLineKey(l.CartID, l.ProductID),
				}})
			}

			_, err = r.ddb.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{TransactItems: txItems})
			if err != nil {
				if conditionFailedAt(cancellationReasons(err), 0) || isTransactionConflict(err) {
					lost = true
					break
				}
				return entities.Cart{}, errors.Wrap(err, "dynamodb clear cart")
			}
			cart.Version++
			if len(lines) == 0 {
				break
			}
		}
		if lost {
			continue
		}
		cart.UpdatedAt = now
		return cart, nil
	}
	return entities.Cart{}, interfaces.ErrConcurrentUpdate
}

func (r *CartDynamoRepository) GetByID(ctx context.Context, id string) (entities.Cart, error) {
	var it cartItem
	found, err := r.getItem(ctx, r.tables.Carts, strKey("id", id), &it)
	if err != nil {
		return entities.Cart{}, errors.Wrap(err, "dynamodb get cart")
	}
	if !found {
		return entities.Cart{}, nil
	}
	return fromCartItem(it), nil
}

func (r *CartDynamoRepository) List(ctx context.Context) ([]entities.Cart, error) {
	raw, err := r.scanAll(ctx, &dynamodb.ScanInput{TableName: aws.String(r.tables.Carts)})
	if err != nil {
		return nil, errors.Wrap(err, "dynamodb list carts")
	}
	carts := make([]entities.Cart, 0, len(raw))
	for _, av := range raw {
		var it cartItem
		if err := attributevalue.UnmarshalMap(av, &it); err != nil {
			return nil, err
		}
		carts = append(carts, fromCartItem(it))
	}
	sort.SliceStable(carts, func(i, j int) bool { return carts[i].CreatedAt.After(carts[j].CreatedAt) })
	return carts, nil
}

// UpdateStatus keeps the open_carts pointer in step with the status override.
func (r *CartDynamoRepository) UpdateStatus(ctx context.Context, id string, status entities.CartStatus) (entities.Cart, error) {
	cart, err := r.GetByID(ctx, id)
	if err != nil || cart.ID == "" {
		return entities.Cart{}, err
	}
	now := time.Now().UTC()

	update := &types.Update{
		TableName:           aws.String(r.tables.Carts),
		Key:                 strKey("id", id),
		UpdateExpression:    aws.String("SET #status = :status, #updated_at = :updated_at ADD #version :one"),
		ConditionExpression: aws.String("attribute_exists(#id)"),
		ExpressionAttributeNames: map[string]string{
			"#status":     "status",
			"#updated_at": "updated_at",
			"#version":    "version",
			"#id":         "id",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":status":     strVal(string(status)),
			":updated_at": strVal(formatTime(now)),
			":one":        numVal(1),
		},
	}
	txItems := []types.TransactWriteItem{{Update: update}}

	switch {
	case status == entities.CartStatusOpen && cart.Status != entities.CartStatusOpen:
		ptrAV, err := attributevalue.MarshalMap(openCartItem{UserID: cart.UserID, CartID: cart.ID})
		if err != nil {
			return entities.Cart{}, err
		}
		txItems = append(txItems, types.TransactWriteItem{Put: &types.Put{
			TableName:                aws.String(r.tables.OpenCarts),
			Item:                     ptrAV,
			ConditionExpression:      aws.String("attribute_not_exists(#user_id)"),
			ExpressionAttributeNames: map[string]string{"#user_id": "user_id"},
		}})
	case status != entities.CartStatusOpen && cart.Status == entities.CartStatusOpen:
		txItems = append(txItems, types.TransactWriteItem{Delete: &types.Delete{
			TableName:                 aws.String(r.tables.OpenCarts),
			Key:                       strKey("user_id", cart.UserID),
			ConditionExpression:       aws.String("#cart_id = :cart_id"),
			ExpressionAttributeNames:  map[string]string{"#cart_id": "cart_id"},
			ExpressionAttributeValues: map[string]types.AttributeValue{":cart_id": strVal(cart.ID)},
		}})
	}

	_, err = r.ddb.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{TransactItems: txItems})
	if err != nil {
		reasons := cancellationReasons(err)
		if status == entities.CartStatusOpen && conditionFailedAt(reasons, 1) {
			return entities.Cart{}, interfaces.ErrDuplicateKey
		}
		if conditionFailedAt(reasons, 0) {
			return entities.Cart{}, nil
		}
		if conditionFailedAt(reasons, 1) || isTransactionConflict(err) {
			return entities.Cart{}, interfaces.ErrConcurrentUpdate
		}
		return entities.Cart{}, errors.Wrap(err, "dynamodb update cart status")
	}

	cart.Status = status
	cart.Version++
	cart.UpdatedAt = now
	return cart, nil
}

func (r *CartDynamoRepository) Delete(ctx context.Context, id string) error {
	var it cartItem
	found, err := r.getItem(ctx, r.tables.Carts, strKey("id", id), &it)
	if err != nil {
		return errors.Wrap(err, "dynamodb get cart")
	}
	if !found {
		return nil
	}
	return errors.Wrap(r.deleteCartCascade(ctx, it), "dynamodb delete cart")
}

// bumpCart refreshes updated_at and increments version under cond. names and
// values carry the placeholders cond adds.
func (r *CartDynamoRepository) bumpCart(cartID string, now time.Time, cond string, names map[string]string, values map[string]types.AttributeValue) *types.Update {
	vals := map[string]types.AttributeValue{
		":updated_at": strVal(formatTime(now)),
		":one":        numVal(1),
	}
	for k, v := range values {
		vals[k] = v
	}
	return &types.Update{
		TableName:           aws.String(r.tables.Carts),
		Key:                 strKey("id", cartID),
		UpdateExpression:    aws.String("SET #updated_at = :updated_at ADD #version :one"),
		ConditionExpression: aws.String(cond),
		ExpressionAttributeNames: mergeNames(map[string]string{
			"#updated_at": "updated_at",
			"#version":    "version",
		}, names),
		ExpressionAttributeValues: vals,
	}
}

var statusName = map[string]string{"#status": "status"}

func cartLineKey(cartID, productID string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"cart_id":    strVal(cartID),
		"product_id": strVal(productID),
	}
}

func toCartItem(c entities.Cart) cartItem {
	return cartItem{
		ID:        c.ID,
		UserID:    c.UserID,
		Status:    string(c.Status),
		Version:   c.Version,
		CreatedAt: formatTime(c.CreatedAt),
		UpdatedAt: formatTime(c.UpdatedAt),
	}
}

func fromCartItem(it cartItem) entities.Cart {
	return entities.Cart{
		ID:        it.ID,
		UserID:    it.UserID,
		Status:    entities.CartStatus(it.Status),
		Version:   it.Version,
		CreatedAt: parseTime(it.CreatedAt),
		UpdatedAt: parseTime(it.UpdatedAt),
	}
}

func fromCartLineItem(it cartLineItem) entities.CartItem {
	return entities.CartItem{
		ID:        it.LineID,
		CartID:    it.CartID,
		ProductID: it.ProductID,
		Quantity:  it.Quantity,
		UnitPrice: it.UnitPrice,
	}
}
