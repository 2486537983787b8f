package repository

import (
	"context"
	"sort"

	"retail_backoffice/internal/domain/entities"
	"retail_backoffice/internal/usecase/interfaces"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/pkg/errors"
)

// maxBatchGetKeys is the DynamoDB BatchGetItem limit.
const maxBatchGetKeys = 100

type productItem struct {
	ID          string  `dynamodbav:"id"`
	SKU         string  `dynamodbav:"sku"`
	Name        string  `dynamodbav:"name"`
	Category    string  `dynamodbav:"category"`
	Description string  `dynamodbav:"description"`
	Price       float64 `dynamodbav:"price"`
	IsOffer     bool    `dynamodbav:"is_offer"`
	Stock       int     `dynamodbav:"stock"`
	UpdatedAt   string  `dynamodbav:"updated_at"`
}

type productSKUItem struct {
	SKU       string `dynamodbav:"sku"`
	ProductID string `dynamodbav:"product_id"`
}

// ProductDynamoRepository persists Product entities in DynamoDB.
//
// Table requirements:
//   - products PK: id
//   - product_skus PK: sku (guard written in the same transaction as the product)
type ProductDynamoRepository struct {
	dynamoBase
}

var _ interfaces.IProductRepository = (*ProductDynamoRepository)(nil)

func NewProductDynamoRepository(ddb *dynamodb.Client, tables DynamoTables) *ProductDynamoRepository {
	return &ProductDynamoRepository{dynamoBase{ddb: ddb, tables: tables}}
}

func (r *ProductDynamoRepository) Create(ctx context.Context, p entities.Product) (entities.Product, error) {
	productAV, err := attributevalue.MarshalMap(toProductItem(p))
	if err != nil {
		return entities.Product{}, err
	}
	guardAV, err := attributevalue.MarshalMap(productSKUItem{SKU: p.SKU, ProductID: p.ID})
	if err != nil {
		return entities.Product{}, err
	}

	_, err = r.ddb.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{Put: &types.Put{
				TableName:                aws.String(r.tables.ProductSKUs),
				Item:                     guardAV,
				ConditionExpression:      aws.String("attribute_not_exists(#sku)"),
				ExpressionAttributeNames: map[string]string{"#sku": "sku"},
			}},
			{Put: &types.Put{
				TableName:                aws.String(r.tables.Products),
				Item:                     productAV,
				ConditionExpression:      aws.String("attribute_not_exists(#id)"),
				ExpressionAttributeNames: map[string]string{"#id": "id"},
			}},
		},
	})
	if err != nil {
		reasons := cancellationReasons(err)
		if conditionFailedAt(reasons, 0) || conditionFailedAt(reasons, 1) {
			return entities.Product{}, interfaces.ErrDuplicateKey
		}
		return entities.Product{}, errors.Wrap(err, "dynamodb create product")
	}
	return p, nil
}

func (r *ProductDynamoRepository) GetByID(ctx context.Context, id string) (entities.Product, error) {
	var it productItem
	found, err := r.getItem(ctx, r.tables.Products, strKey("id", id), &it)
	if err != nil {
		return entities.Product{}, errors.Wrap(err, "dynamodb get product")
	}
	if !found {
		return entities.Product{}, nil
	}
	return fromProductItem(it), nil
}

func (r *ProductDynamoRepository) GetBySKU(ctx context.Context, sku string) (entities.Product, error) {
	var guard productSKUItem
	found, err := r.getItem(ctx, r.tables.ProductSKUs, strKey("sku", sku), &guard)
	if err != nil {
		return entities.Product{}, errors.Wrap(err, "dynamodb get product sku")
	}
	if !found {
		return entities.Product{}, nil
	}
	return r.GetByID(ctx, guard.ProductID)
}

func (r *ProductDynamoRepository) GetByIDs(ctx context.Context, ids []string) (map[string]entities.Product, error) {
	out := make(map[string]entities.Product, len(ids))
	seen := make(map[string]bool, len(ids))
	keys := make([]map[string]types.AttributeValue, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		keys = append(keys, strKey("id", id))
	}

	for start := 0; start < len(keys); start += maxBatchGetKeys {
		end := min(start+maxBatchGetKeys, len(keys))
		request := map[string]types.KeysAndAttributes{
			r.tables.Products: {Keys: keys[start:end], ConsistentRead: aws.Bool(true)},
		}
		for len(request) > 0 {
			res, err := r.ddb.BatchGetItem(ctx, &dynamodb.BatchGetItemInput{RequestItems: request})
			if err != nil {
				return nil, errors.Wrap(err, "dynamodb batch get products")
			}
			for _, av := range res.Responses[r.tables.Products] {
				var it productItem
				if err := attributevalue.UnmarshalMap(av, &it); err != nil {
					return nil, err
				}
				out[it.ID] = fromProductItem(it)
			}
			request = res.UnprocessedKeys
		}
	}
	return out, nil
}

func (r *ProductDynamoRepository) List(ctx context.Context) ([]entities.Product, error) {
	raw, err := r.scanAll(ctx, &dynamodb.ScanInput{TableName: aws.String(r.tables.Products)})
	if err != nil {
		return nil, errors.Wrap(err, "dynamodb list products")
	}
	products := make([]entities.Product, 0, len(raw))
	for _, av := range raw {
		var it productItem
		if err := attributevalue.UnmarshalMap(av, &it); err != nil {
			return nil, err
		}
		products = append(products, fromProductItem(it))
	}
	sort.SliceStable(products, func(i, j int) bool { return products[i].UpdatedAt.After(products[j].UpdatedAt) })
	return products, nil
}

// Update replaces the product row; a sku change moves the uniqueness guard
// in the same transaction.
func (r *ProductDynamoRepository) Update(ctx context.Context, p entities.Product) (entities.Product, error) {
	current, err := r.GetByID(ctx, p.ID)
	if err != nil || current.ID == "" {
		return entities.Product{}, err
	}

	productAV, err := attributevalue.MarshalMap(toProductItem(p))
	if err != nil {
		return entities.Product{}, err
	}
	putProduct := types.TransactWriteItem{Put: &types.Put{
		TableName:                aws.String(r.tables.Products),
		Item:                     productAV,
		ConditionExpression:      aws.String("attribute_exists(#id)"),
		ExpressionAttributeNames: map[string]string{"#id": "id"},
	}}

	txItems := []types.TransactWriteItem{putProduct}
	if current.SKU != p.SKU {
		guardAV, err := attributevalue.MarshalMap(productSKUItem{SKU: p.SKU, ProductID: p.ID})
		if err != nil {
			return entities.Product{}, err
		}
		txItems = []types.TransactWriteItem{
			{Put: &types.Put{
				TableName:                aws.String(r.tables.ProductSKUs),
				Item:                     guardAV,
				ConditionExpression:      aws.String("attribute_not_exists(#sku)"),
				ExpressionAttributeNames: map[string]string{"#sku": "sku"},
			}},
			{Delete: &types.Delete{
				TableName: aws.String(r.tables.ProductSKUs),
				Key:       strKey("sku", current.SKU),
			}},
			putProduct,
		}
	}

	_, err = r.ddb.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{TransactItems: txItems})
	if err != nil {
		reasons := cancellationReasons(err)
		if len(txItems) > 1 && conditionFailedAt(reasons, 0) {
			return entities.Product{}, interfaces.ErrDuplicateKey
		}
		if conditionFailedAt(reasons, len(txItems)-1) {
			return entities.Product{}, nil
		}
		return entities.Product{}, errors.Wrap(err, "dynamodb update product")
	}
	return p, nil
}

// Delete removes every cart line referencing the product (bumping the owning
// cart's version so an in-flight checkout re-reads) and then the product.
func (r *ProductDynamoRepository) Delete(ctx context.Context, id string) error {
	current, err := r.GetByID(ctx, id)
	if err != nil || current.ID == "" {
		return err
	}

	raw, err := r.queryAll(ctx, &dynamodb.QueryInput{
		TableName:                aws.String(r.tables.CartItems),
		IndexName:                aws.String(productIDIndex),
		KeyConditionExpression:   aws.String("#product_id = :product_id"),
		ExpressionAttributeNames: map[string]string{"#product_id": "product_id"},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":product_id": strVal(id),
		},
	}, 0)
	if err != nil {
		return errors.Wrap(err, "dynamodb query product lines")
	}
	for _, av := range raw {
		var line cartLineItem
		if err := attributevalue.UnmarshalMap(av, &line); err != nil {
			return err
		}
		_, err := r.ddb.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
			TransactItems: []types.TransactWriteItem{
				{Delete: &types.Delete{
					TableName: aws.String(r.tables.CartItems),
					Key:       cartLineKey(line.CartID, line.ProductID),
				}},
				{Update: &types.Update{
					TableName:                 aws.String(r.tables.Carts),
					Key:                       strKey("id", line.CartID),
					UpdateExpression:          aws.String("ADD #version :one"),
					ConditionExpression:       aws.String("attribute_exists(#id)"),
					ExpressionAttributeNames:  map[string]string{"#version": "version", "#id": "id"},
					ExpressionAttributeValues: map[string]types.AttributeValue{":one": numVal(1)},
				}},
			},
		})
		if err != nil && conditionFailedAt(cancellationReasons(err), 1) {
			// Orphan line whose cart is already gone.
			_, err = r.ddb.DeleteItem(ctx, &dynamodb.DeleteItemInput{
				TableName: aws.String(r.tables.CartItems),
				Key:       cartLineKey(line.CartID, line.ProductID),
			})
		}
		if err != nil {
			return errors.Wrap(err, "dynamodb delete product line")
		}
	}

	_, err = r.ddb.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{Delete: &types.Delete{TableName: aws.String(r.tables.ProductSKUs), Key: strKey("sku", current.SKU)}},
			{Delete: &types.Delete{TableName: aws.String(r.tables.Products), Key: strKey("id", id)}},
		},
	})
	return errors.Wrap(err, "dynamodb delete product")
}

func toProductItem(p entities.Product) productItem {
	return productItem{
		ID:          p.ID,
		SKU:         p.SKU,
		Name:        p.Name,
		Category:    p.Category,
		Description: p.Description,
		Price:       p.Price,
		IsOffer:     p.IsOffer,
		Stock:       p.Stock,
		UpdatedAt:   formatTime(p.UpdatedAt),
	}
}

func fromProductItem(it productItem) entities.Product {
	return entities.Product{
		ID:          it.ID,
		SKU:         it.SKU,
		Name:        it.Name,
		Category:    it.Category,
		Description: it.Description,
		Price:       it.Price,
		IsOffer:     it.IsOffer,
		Stock:       it.Stock,
		UpdatedAt:   parseTime(it.UpdatedAt),
	}
}
