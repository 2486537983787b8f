package repository

import (
	"encoding/json"
	"errors"
	"time"

	"retail_backoffice/internal/domain/entities"
	"retail_backoffice/internal/usecase/interfaces"

	pkgerrors "github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type userModel struct {
	ID        string    `gorm:"primaryKey;size:36"`
	Name      string    `gorm:"not null"`
	Email     string    `gorm:"uniqueIndex;not null"`
	Phone     string    `gorm:"index"`
	Segment   string    `gorm:"not null;default:nuevo"`
	CreatedAt time.Time `gorm:"index"`
}

func (userModel) TableName() string { return "users" }

type productModel struct {
	ID          string `gorm:"primaryKey;size:36"`
	SKU         string `gorm:"column:sku;uniqueIndex;not null"`
	Name        string `gorm:"not null"`
	Category    string `gorm:"index"`
	Description string
	Price       float64 `gorm:"type:numeric(12,2);not null"`
	IsOffer     bool    `gorm:"not null;default:false"`
	Stock       int     `gorm:"not null;default:0"`
	UpdatedAt   time.Time
}

func (productModel) TableName() string { return "products" }

type cartModel struct {
	ID        string `gorm:"primaryKey;size:36"`
	UserID    string `gorm:"size:36;index;not null"`
	Status    string `gorm:"size:16;not null"`
	Version   int64  `gorm:"not null;default:0"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (cartModel) TableName() string { return "carts" }

type cartItemModel struct {
	ID        string  `gorm:"primaryKey;size:36"`
	CartID    string  `gorm:"size:36;uniqueIndex:ux_cart_items_line;not null"`
	ProductID string  `gorm:"size:36;uniqueIndex:ux_cart_items_line;index;not null"`
	Quantity  int     `gorm:"not null"`
	UnitPrice float64 `gorm:"type:numeric(12,2);not null"`
}

func (cartItemModel) TableName() string { return "cart_items" }

type orderModel struct {
	ID             string  `gorm:"primaryKey;size:36"`
	UserID         string  `gorm:"size:36;index:ix_orders_user_created,priority:1;uniqueIndex:ux_orders_idempotency,priority:1;not null"`
	CartID         string  `gorm:"size:36;not null"`
	Total          float64 `gorm:"type:numeric(12,2);not null"`
	PaymentStatus  string  `gorm:"not null"`
	IdempotencyKey *string `gorm:"uniqueIndex:ux_orders_idempotency,priority:2"`
	Items          datatypes.JSON
	CreatedAt      time.Time `gorm:"index:ix_orders_user_created,priority:2"`
}

func (orderModel) TableName() string { return "orders" }

// MigratePostgres creates or updates the schema. The partial unique index is
// what keeps a user at one open cart.
func MigratePostgres(db *gorm.DB) error {
	if err := db.AutoMigrate(&userModel{}, &productModel{}, &cartModel{}, &cartItemModel{}, &orderModel{}); err != nil {
		return pkgerrors.Wrap(err, "postgres automigrate")
	}
	err := db.Exec("CREATE UNIQUE INDEX IF NOT EXISTS ux_carts_open_user ON carts (user_id) WHERE status = 'open'").Error
	if err != nil {
		return pkgerrors.Wrap(err, "postgres open cart index")
	}
	log.Printf("[store][postgres] schema ready")
	return nil
}

// translatePgError maps gorm's translated constraint errors to port sentinels.
func translatePgError(err error, msg string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return interfaces.ErrDuplicateKey
	}
	return pkgerrors.Wrap(err, msg)
}

// findOne loads the first row matching the query into dst, reporting whether
// one was found.
func findOne(q *gorm.DB, dst any) (bool, error) {
	res := q.Limit(1).Find(dst)
	return res.RowsAffected > 0, res.Error
}

func forUpdate(tx *gorm.DB) *gorm.DB {
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

func toUserModel(u entities.User) userModel {
	return userModel(u)
}

func fromUserModel(m userModel) entities.User {
	return entities.User(m)
}

func toProductModel(p entities.Product) productModel {
	return productModel(p)
}

func fromProductModel(m productModel) entities.Product {
	return entities.Product(m)
}

func fromCartModel(m cartModel) entities.Cart {
	return entities.Cart{
		ID:        m.ID,
		UserID:    m.UserID,
		Status:    entities.CartStatus(m.Status),
		Version:   m.Version,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func fromCartItemModel(m cartItemModel) entities.CartItem {
	return entities.CartItem(m)
}

func toOrderModel(o entities.Order) (orderModel, error) {
	items := o.Items
	if items == nil {
		items = []entities.OrderLine{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return orderModel{}, err
	}
	m := orderModel{
		ID:            o.ID,
		UserID:        o.UserID,
		CartID:        o.CartID,
		Total:         o.Total,
		PaymentStatus: o.PaymentStatus,
		Items:         datatypes.JSON(raw),
		CreatedAt:     o.CreatedAt,
	}
	if o.IdempotencyKey != "" {
		key := o.IdempotencyKey
		m.IdempotencyKey = &key
	}
	return m, nil
}

func fromOrderModel(m orderModel) (entities.Order, error) {
	o := entities.Order{
		ID:            m.ID,
		UserID:        m.UserID,
		CartID:        m.CartID,
		Total:         m.Total,
		PaymentStatus: m.PaymentStatus,
		Items:         []entities.OrderLine{},
		CreatedAt:     m.CreatedAt,
	}
	if m.IdempotencyKey != nil {
		o.IdempotencyKey = *m.IdempotencyKey
	}
	if len(m.Items) > 0 {
		if err := json.Unmarshal(m.Items, &o.Items); err != nil {
			return entities.Order{}, pkgerrors.Wrap(err, "decode order items")
		}
	}
	return o, nil
}

func fromOrderModels(ms []orderModel) ([]entities.Order, error) {
	out := make([]entities.Order, 0, len(ms))
	for _, m := range ms {
		o, err := fromOrderModel(m)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, nil
}
