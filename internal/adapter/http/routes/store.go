package routes

import (
	"context"

	"retail_backoffice/internal/adapter/persistence/repository"
	"retail_backoffice/internal/infrastructure/config"
	"retail_backoffice/internal/infrastructure/database"
	"retail_backoffice/internal/usecase/interfaces"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Repositories groups the four ports one store implements.
type Repositories struct {
	Users    interfaces.IUserRepository
	Products interfaces.IProductRepository
	Carts    interfaces.ICartRepository
	Orders   interfaces.IOrderRepository
}

// NewRepositories opens the store selected by STORE_DRIVER and bootstraps its
// schema when asked to.
func NewRepositories(ctx context.Context, cfg config.Config) (Repositories, error) {
	switch cfg.StoreDriver {
	case config.StoreMemory:
		log.Printf("[store] using in-memory store")
		return NewMemoryRepositories(), nil

	case config.StorePostgres:
		db, err := database.ConnectPostgres(cfg)
		if err != nil {
			return Repositories{}, err
		}
		if err := repository.MigratePostgres(db); err != nil {
			return Repositories{}, errors.Wrap(err, "postgres migrate")
		}
		log.Printf("[store] using postgres store")
		return Repositories{
			Users:    repository.NewUserPostgresRepository(db),
			Products: repository.NewProductPostgresRepository(db),
			Carts:    repository.NewCartPostgresRepository(db),
			Orders:   repository.NewOrderPostgresRepository(db),
		}, nil

	default:
		ddb, err := database.ConnectDynamoDB(ctx, cfg)
		if err != nil {
			return Repositories{}, err
		}
		tables := repository.NewDynamoTables(cfg.DynamoDBTables)
		if cfg.DynamoDBCreateTables {
			if err := repository.EnsureDynamoTables(ctx, ddb, tables); err != nil {
				return Repositories{}, errors.Wrap(err, "dynamodb ensure tables")
			}
		}
		log.Printf("[store] using dynamodb store prefix=%q", cfg.DynamoDBTablePrefix)
		return Repositories{
			Users:    repository.NewUserDynamoRepository(ddb, tables),
			Products: repository.NewProductDynamoRepository(ddb, tables),
			Carts:    repository.NewCartDynamoRepository(ddb, tables),
			Orders:   repository.NewOrderDynamoRepository(ddb, tables),
		}, nil
	}
}

// NewMemoryRepositories shares one in-memory store across the four ports.
func NewMemoryRepositories() Repositories {
	store := repository.NewMemoryStore()
	return Repositories{
		Users:    repository.NewMemoryUserRepository(store),
		Products: repository.NewMemoryProductRepository(store),
		Carts:    repository.NewMemoryCartRepository(store),
		Orders:   repository.NewMemoryOrderRepository(store),
	}
}
