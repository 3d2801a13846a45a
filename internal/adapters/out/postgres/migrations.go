package postgres

import (
	"marketdelivery/internal/adapters/out/postgres/driverrepo"
	"marketdelivery/internal/adapters/out/postgres/loyaltyrepo"
	"marketdelivery/internal/adapters/out/postgres/orderrepo"
	"marketdelivery/internal/adapters/out/postgres/paymentrepo"
	"marketdelivery/internal/adapters/out/postgres/productrepo"
	"marketdelivery/internal/adapters/out/postgres/supermarketrepo"

	"gorm.io/gorm"
)

// Tables lists every table Migrate creates, in truncation-safe order.
var Tables = []string{
	"orders",
	"product_stock",
	"products",
	"manager_assignments",
	"supermarket_locations",
	"supermarkets",
	"drivers",
	"payments",
	"loyalty_entries",
	"loyalty_accounts",
}

// Migrate creates or updates the schema of every persisted aggregate.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&orderrepo.OrderDTO{},
		&productrepo.ProductDTO{},
		&productrepo.StockDTO{},
		&supermarketrepo.SupermarketDTO{},
		&supermarketrepo.LocationDTO{},
		&supermarketrepo.AssignmentDTO{},
		&driverrepo.DriverDTO{},
		&paymentrepo.PaymentDTO{},
		&loyaltyrepo.AccountDTO{},
		&loyaltyrepo.EntryDTO{},
	)
}
