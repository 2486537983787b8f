package usecase

import (
	"context"
	"errors"

	"retail_backoffice/internal/domain/entities"

	log "github.com/sirupsen/logrus"
)

var demoUsers = []entities.User{
	{Name: "Sergio Test", Email: "sergio@yoplabs.com", Phone: "+5491160149123", Segment: "recurrente"},
	{Name: "Maria Cliente", Email: "maria@example.com", Phone: "+5491160149124", Segment: "nuevo"},
	{Name: "Juan Comprador", Email: "juan@example.com", Phone: "+5491160149125", Segment: "premium"},
}

var demoProducts = []entities.Product{
	{SKU: "P001", Name: "Leche entera 1L", Category: "Lácteos", Description: "Leche entera pasteurizada", Price: 1200, Stock: 150},
	{SKU: "P041", Name: "Papel higiénico doble hoja (4 rollos)", Category: "Limpieza", Description: "Papel higiénico suave", Price: 2500, IsOffer: true, Stock: 80},
	{SKU: "P092", Name: "Tapa Para Empanadas Horno 12 u.", Category: "Almacén", Description: "Tapas para empanadas", Price: 1500, IsOffer: true, Stock: 100},
	{SKU: "P050", Name: "Mayonesa clásica pote 250g", Category: "Almacén", Description: "Mayonesa cremosa", Price: 2000, Stock: 120},
}

// SeedDemoData loads the demo users and products. Rows that already exist
// are left untouched, so it is safe to run on every start.
func SeedDemoData(ctx context.Context, users IUserUseCase, products IProductUseCase) error {
	created := 0
	for _, u := range demoUsers {
		_, err := users.Create(ctx, u)
		switch {
		case err == nil:
			created++
		case errors.Is(err, ErrEmailAlreadyExists):
		default:
			return err
		}
	}
	for _, p := range demoProducts {
		status, _, err := products.UpsertBySKU(ctx, p)
		if err != nil {
			return err
		}
		if status == entities.UpsertStatusCreated {
			created++
		}
	}
	log.Printf("[seed] demo data loaded created=%d", created)
	return nil
}
