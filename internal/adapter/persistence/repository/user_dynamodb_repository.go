package repository

import (
	"context"
	"sort"
	"strings"

	"retail_backoffice/internal/domain/entities"
	"retail_backoffice/internal/usecase/interfaces"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/pkg/errors"
)

type userItem struct {
	ID        string `dynamodbav:"id"`
	Name      string `dynamodbav:"name"`
	NameLower string `dynamodbav:"name_lower"`
	Email     string `dynamodbav:"email"`
	Phone     string `dynamodbav:"phone"`
	Segment   string `dynamodbav:"segment"`
	CreatedAt string `dynamodbav:"created_at"`
}

type userEmailItem struct {
	Email  string `dynamodbav:"email"`
	UserID string `dynamodbav:"user_id"`
}

// UserDynamoRepository persists User entities in DynamoDB.
//
// Email uniqueness is enforced by writing a guard item in user_emails in the
// same transaction as the user row.
type UserDynamoRepository struct {
	dynamoBase
}

var _ interfaces.IUserRepository = (*UserDynamoRepository)(nil)

func NewUserDynamoRepository(ddb *dynamodb.Client, tables DynamoTables) *UserDynamoRepository {
	return &UserDynamoRepository{dynamoBase{ddb: ddb, tables: tables}}
}

func (r *UserDynamoRepository) Create(ctx context.Context, u entities.User) (entities.User, error) {
	userAV, err := attributevalue.MarshalMap(toUserItem(u))
	if err != nil {
		return entities.User{}, err
	}
	guardAV, err := attributevalue.MarshalMap(userEmailItem{Email: u.Email, UserID: u.ID})
	if err != nil {
		return entities.User{}, err
	}

	_, err = r.ddb.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{Put: &types.Put{
				TableName:                aws.String(r.tables.UserEmails),
				Item:                     guardAV,
				ConditionExpression:      aws.String("attribute_not_exists(#email)"),
				ExpressionAttributeNames: map[string]string{"#email": "email"},
			}},
			{Put: &types.Put{
				TableName:                aws.String(r.tables.Users),
				Item:                     userAV,
				ConditionExpression:      aws.String("attribute_not_exists(#id)"),
				ExpressionAttributeNames: map[string]string{"#id": "id"},
			}},
		},
	})
	if err != nil {
		reasons := cancellationReasons(err)
		if conditionFailedAt(reasons, 0) || conditionFailedAt(reasons, 1) {
			return entities.User{}, interfaces.ErrDuplicateKey
		}
		return entities.User{}, errors.Wrap(err, "dynamodb create user")
	}
	return u, nil
}

func (r *UserDynamoRepository) GetByID(ctx context.Context, id string) (entities.User, error) {
	var it userItem
	found, err := r.getItem(ctx, r.tables.Users, strKey("id", id), &it)
	if err != nil {
		return entities.User{}, errors.Wrap(err, "dynamodb get user")
	}
	if !found {
		return entities.User{}, nil
	}
	return fromUserItem(it), nil
}

func (r *UserDynamoRepository) GetByEmail(ctx context.Context, email string) (entities.User, error) {
	var guard userEmailItem
	found, err := r.getItem(ctx, r.tables.UserEmails, strKey("email", email), &guard)
	if err != nil {
		return entities.User{}, errors.Wrap(err, "dynamodb get user email")
	}
	if !found {
		return entities.User{}, nil
	}
	return r.GetByID(ctx, guard.UserID)
}

func (r *UserDynamoRepository) Search(ctx context.Context, criteria entities.UserSearch) ([]entities.User, error) {
	var (
		conds  []string
		names  = map[string]string{}
		values = map[string]types.AttributeValue{}
	)
	if criteria.Name != "" {
		conds = append(conds, "contains(#name_lower, :name)")
		names["#name_lower"] = "name_lower"
		values[":name"] = strVal(strings.ToLower(criteria.Name))
	}
	if criteria.Email != "" {
		conds = append(conds, "#email = :email")
		names["#email"] = "email"
		values[":email"] = strVal(criteria.Email)
	}
	if criteria.Phone != "" {
		conds = append(conds, "#phone = :phone")
		names["#phone"] = "phone"
		values[":phone"] = strVal(criteria.Phone)
	}
	if len(conds) == 0 {
		return []entities.User{}, nil
	}

	raw, err := r.scanAll(ctx, &dynamodb.ScanInput{
		TableName:                 aws.String(r.tables.Users),
		FilterExpression:          aws.String(strings.Join(conds, " OR ")),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
	})
	if err != nil {
		return nil, errors.Wrap(err, "dynamodb search users")
	}
	return decodeUsers(raw)
}

func (r *UserDynamoRepository) List(ctx context.Context) ([]entities.User, error) {
	raw, err := r.scanAll(ctx, &dynamodb.ScanInput{TableName: aws.String(r.tables.Users)})
	if err != nil {
		return nil, errors.Wrap(err, "dynamodb list users")
	}
	return decodeUsers(raw)
}

// Update replaces the user row. An email change moves the uniqueness guard
// in the same transaction.
func (r *UserDynamoRepository) Update(ctx context.Context, u entities.User) (entities.User, error) {
	current, err := r.GetByID(ctx, u.ID)
	if err != nil || current.ID == "" {
		return entities.User{}, err
	}
	u.CreatedAt = current.CreatedAt

	userAV, err := attributevalue.MarshalMap(toUserItem(u))
	if err != nil {
		return entities.User{}, err
	}
	putUser := types.TransactWriteItem{Put: &types.Put{
		TableName:                aws.String(r.tables.Users),
		Item:                     userAV,
		ConditionExpression:      aws.String("attribute_exists(#id)"),
		ExpressionAttributeNames: map[string]string{"#id": "id"},
	}}

	txItems := []types.TransactWriteItem{putUser}
	if current.Email != u.Email {
		guardAV, err := attributevalue.MarshalMap(userEmailItem{Email: u.Email, UserID: u.ID})
		if err != nil {
			return entities.User{}, err
		}
		txItems = []types.TransactWriteItem{
			{Put: &types.Put{
				TableName:                aws.String(r.tables.UserEmails),
				Item:                     guardAV,
				ConditionExpression:      aws.String("attribute_not_exists(#email)"),
				ExpressionAttributeNames: map[string]string{"#email": "email"},
			}},
			{Delete: &types.Delete{
				TableName: aws.String(r.tables.UserEmails),
				Key:       strKey("email", current.Email),
			}},
			putUser,
		}
	}

	_, err = r.ddb.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{TransactItems: txItems})
	if err != nil {
		reasons := cancellationReasons(err)
		if len(txItems) > 1 && conditionFailedAt(reasons, 0) {
			return entities.User{}, interfaces.ErrDuplicateKey
		}
		if conditionFailedAt(reasons, len(txItems)-1) {
			return entities.User{}, nil
		}
		return entities.User{}, errors.Wrap(err, "dynamodb update user")
	}
	return u, nil
}

// Delete cascades to the user's orders, carts and cart items before removing
// the user and its email guard.
func (r *UserDynamoRepository) Delete(ctx context.Context, id string) error {
	current, err := r.GetByID(ctx, id)
	if err != nil || current.ID == "" {
		return err
	}

	rawOrders, err := r.queryByUser(ctx, r.tables.Orders, id, true, 0)
	if err != nil {
		return errors.Wrap(err, "dynamodb query user orders")
	}
	for _, av := range rawOrders {
		var o orderItem
		if err := attributevalue.UnmarshalMap(av, &o); err != nil {
			return err
		}
		if err := r.deleteOrder(ctx, o); err != nil {
			return errors.Wrap(err, "dynamodb delete user order")
		}
	}

	rawCarts, err := r.queryByUser(ctx, r.tables.Carts, id, true, 0)
	if err != nil {
		return errors.Wrap(err, "dynamodb query user carts")
	}
	for _, av := range rawCarts {
		var c cartItem
		if err := attributevalue.UnmarshalMap(av, &c); err != nil {
			return err
		}
		if err := r.deleteCartCascade(ctx, c); err != nil {
			return errors.Wrap(err, "dynamodb delete user cart")
		}
	}

	_, err = r.ddb.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{Delete: &types.Delete{TableName: aws.String(r.tables.UserEmails), Key: strKey("email", current.Email)}},
			{Delete: &types.Delete{TableName: aws.String(r.tables.Users), Key: strKey("id", id)}},
		},
	})
	return errors.Wrap(err, "dynamodb delete user")
}

func decodeUsers(raw []map[string]types.AttributeValue) ([]entities.User, error) {
	users := make([]entities.User, 0, len(raw))
	for _, av := range raw {
		var it userItem
		if err := attributevalue.UnmarshalMap(av, &it); err != nil {
			return nil, err
		}
		users = append(users, fromUserItem(it))
	}
	sort.SliceStable(users, func(i, j int) bool { return users[i].CreatedAt.After(users[j].CreatedAt) })
	return users, nil
}

func toUserItem(u entities.User) userItem {
	return userItem{
		ID:        u.ID,
		Name:      u.Name,
		NameLower: strings.ToLower(u.Name),
		Email:     u.Email,
		Phone:     u.Phone,
		Segment:   u.Segment,
		CreatedAt: formatTime(u.CreatedAt),
	}
}

func fromUserItem(it userItem) entities.User {
	return entities.User{
		ID:        it.ID,
		Name:      it.Name,
		Email:     it.Email,
		Phone:     it.Phone,
		Segment:   it.Segment,
		CreatedAt: parseTime(it.CreatedAt),
	}
}
