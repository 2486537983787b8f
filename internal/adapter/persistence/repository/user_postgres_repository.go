package repository

import (
	"context"
	"strings"

	"retail_backoffice/internal/domain/entities"
	"retail_backoffice/internal/usecase/interfaces"

	"gorm.io/gorm"
)

// UserPostgresRepository persists User entities in PostgreSQL. Email
// uniqueness is the users.email unique index.
type UserPostgresRepository struct {
	db *gorm.DB
}

var _ interfaces.IUserRepository = (*UserPostgresRepository)(nil)

func NewUserPostgresRepository(db *gorm.DB) *UserPostgresRepository {
	return &UserPostgresRepository{db: db}
}

func (r *UserPostgresRepository) Create(ctx context.Context, u entities.User) (entities.User, error) {
	m := toUserModel(u)
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return entities.User{}, translatePgError(err, "postgres create user")
	}
	return fromUserModel(m), nil
}

func (r *UserPostgresRepository) GetByID(ctx context.Context, id string) (entities.User, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *UserPostgresRepository) GetByEmail(ctx context.Context, email string) (entities.User, error) {
	return r.first(ctx, "email = ?", email)
}

func (r *UserPostgresRepository) first(ctx context.Context, query string, arg any) (entities.User, error) {
	var m userModel
	found, err := findOne(r.db.WithContext(ctx).Where(query, arg), &m)
	if err != nil {
		return entities.User{}, translatePgError(err, "postgres get user")
	}
	if !found {
		return entities.User{}, nil
	}
	return fromUserModel(m), nil
}

func (r *UserPostgresRepository) Search(ctx context.Context, criteria entities.UserSearch) ([]entities.User, error) {
	var (
		conds []string
		args  []any
	)
	if criteria.Name != "" {
		conds = append(conds, "LOWER(name) LIKE ?")
		args = append(args, "%"+strings.ToLower(criteria.Name)+"%")
	}
	if criteria.Email != "" {
		conds = append(conds, "email = ?")
		args = append(args, criteria.Email)
	}
	if criteria.Phone != "" {
		conds = append(conds, "phone = ?")
		args = append(args, criteria.Phone)
	}
	if len(conds) == 0 {
		return []entities.User{}, nil
	}

	var ms []userModel
	err := r.db.WithContext(ctx).
		Where(strings.Join(conds, " OR "), args...).
		Order("created_at DESC").
		Find(&ms).Error
	if err != nil {
		return nil, translatePgError(err, "postgres search users")
	}
	return fromUserModels(ms), nil
}

func (r *UserPostgresRepository) List(ctx context.Context) ([]entities.User, error) {
	var ms []userModel
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&ms).Error; err != nil {
		return nil, translatePgError(err, "postgres list users")
	}
	return fromUserModels(ms), nil
}

func (r *UserPostgresRepository) Update(ctx context.Context, u entities.User) (entities.User, error) {
	res := r.db.WithContext(ctx).
		Model(&userModel{ID: u.ID}).
		Select("name", "email", "phone", "segment").
		Updates(toUserModel(u))
	if res.Error != nil {
		return entities.User{}, translatePgError(res.Error, "postgres update user")
	}
	if res.RowsAffected == 0 {
		return entities.User{}, nil
	}
	return r.GetByID(ctx, u.ID)
}

func (r *UserPostgresRepository) Delete(ctx context.Context, id string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		userCarts := tx.Model(&cartModel{}).Select("id").Where("user_id = ?", id)
		if err := tx.Where("cart_id IN (?)", userCarts).Delete(&cartItemModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&orderModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&cartModel{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&userModel{}).Error
	})
	return translatePgError(err, "postgres delete user")
}

func fromUserModels(ms []userModel) []entities.User {
	out := make([]entities.User, 0, len(ms))
	for _, m := range ms {
		out = append(out, fromUserModel(m))
	}
	return out
}
