package repository

import (
	"context"
	"errors"

	"retail_backoffice/internal/infrastructure/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	log "github.com/sirupsen/logrus"
)

const (
	userIDIndex    = "user_id-index"
	productIDIndex = "product_id-index"
)

// DynamoTables names every table the DynamoDB store uses.
//
//   - users:         PK id
//   - user_emails:   PK email -> user_id (unique email guard)
//   - products:      PK id
//   - product_skus:  PK sku -> product_id (unique sku guard)
//   - carts:         PK id, GSI user_id-index
//   - open_carts:    PK user_id -> cart_id (at most one open cart per user)
//   - cart_items:    PK cart_id, SK product_id, GSI product_id-index
//   - orders:        PK id, GSI user_id-index (SK created_at)
//   - checkout_keys: PK key (user_id#idempotency_key) -> order_id
type DynamoTables struct {
	Users        string
	UserEmails   string
	Products     string
	ProductSKUs  string
	Carts        string
	OpenCarts    string
	CartItems    string
	Orders       string
	CheckoutKeys string
}

// NewDynamoTables takes the table names resolved by the config.
func NewDynamoTables(names config.DynamoDBTables) DynamoTables {
	return DynamoTables{
		Users:        names.Users,
		UserEmails:   names.UserEmails,
		Products:     names.Products,
		ProductSKUs:  names.ProductSKUs,
		Carts:        names.Carts,
		OpenCarts:    names.OpenCarts,
		CartItems:    names.CartItems,
		Orders:       names.Orders,
		CheckoutKeys: names.CheckoutKeys,
	}
}

// TableDefinitions returns the CreateTable inputs for every table.
func (t DynamoTables) TableDefinitions() []*dynamodb.CreateTableInput {
	str := func(name string) types.AttributeDefinition {
		return types.AttributeDefinition{AttributeName: aws.String(name), AttributeType: types.ScalarAttributeTypeS}
	}
	hash := func(name string) types.KeySchemaElement {
		return types.KeySchemaElement{AttributeName: aws.String(name), KeyType: types.KeyTypeHash}
	}
	rng := func(name string) types.KeySchemaElement {
		return types.KeySchemaElement{AttributeName: aws.String(name), KeyType: types.KeyTypeRange}
	}
	simple := func(table, pk string) *dynamodb.CreateTableInput {
		return &dynamodb.CreateTableInput{
			TableName:            aws.String(table),
			AttributeDefinitions: []types.AttributeDefinition{str(pk)},
			KeySchema:            []types.KeySchemaElement{hash(pk)},
			BillingMode:          types.BillingModePayPerRequest,
		}
	}
	gsi := func(name string, keys ...types.KeySchemaElement) types.GlobalSecondaryIndex {
		return types.GlobalSecondaryIndex{
			IndexName:  aws.String(name),
			KeySchema:  keys,
			Projection: &types.Projection{ProjectionType: types.ProjectionTypeAll},
		}
	}

	carts := simple(t.Carts, "id")
	carts.AttributeDefinitions = append(carts.AttributeDefinitions, str("user_id"))
	carts.GlobalSecondaryIndexes = []types.GlobalSecondaryIndex{gsi(userIDIndex, hash("user_id"))}

	orders := simple(t.Orders, "id")
	orders.AttributeDefinitions = append(orders.AttributeDefinitions, str("user_id"), str("created_at"))
	orders.GlobalSecondaryIndexes = []types.GlobalSecondaryIndex{gsi(userIDIndex, hash("user_id"), rng("created_at"))}

	items := &dynamodb.CreateTableInput{
		TableName:              aws.String(t.CartItems),
		AttributeDefinitions:   []types.AttributeDefinition{str("cart_id"), str("product_id")},
		KeySchema:              []types.KeySchemaElement{hash("cart_id"), rng("product_id")},
		GlobalSecondaryIndexes: []types.GlobalSecondaryIndex{gsi(productIDIndex, hash("product_id"))},
		BillingMode:            types.BillingModePayPerRequest,
	}

	return []*dynamodb.CreateTableInput{
		simple(t.Users, "id"),
		simple(t.UserEmails, "email"),
		simple(t.Products, "id"),
		simple(t.ProductSKUs, "sku"),
		carts,
		simple(t.OpenCarts, "user_id"),
		items,
		orders,
		simple(t.CheckoutKeys, "key"),
	}
}

// EnsureDynamoTables creates the tables that do not exist yet. Meant for
// local DynamoDB; production tables are provisioned outside the service.
func EnsureDynamoTables(ctx context.Context, ddb *dynamodb.Client, tables DynamoTables) error {
	for _, def := range tables.TableDefinitions() {
		name := aws.ToString(def.TableName)
		_, err := ddb.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: def.TableName})
		if err == nil {
			continue
		}
		var nf *types.ResourceNotFoundException
		if !errors.As(err, &nf) {
			return err
		}

		log.Printf("[store][dynamodb] creating table name=%s", name)
		if _, err := ddb.CreateTable(ctx, def); err != nil {
			var inUse *types.ResourceInUseException
			if errors.As(err, &inUse) {
				continue
			}
			return err
		}
	}
	return nil
}
