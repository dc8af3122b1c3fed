package migrations

import (
	"gorm.io/gorm"

	adminpg "github.com/Apurer/gifting-api/internal/domains/admins/adapters/persistence/postgres"
	catalogpg "github.com/Apurer/gifting-api/internal/domains/catalog/adapters/persistence/postgres"
	orderpg "github.com/Apurer/gifting-api/internal/domains/orders/adapters/persistence/postgres"
)

// Run applies the schema for the bounded contexts.
func Run(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	var models []any
	models = append(models, catalogpg.Models()...)
	models = append(models, orderpg.Models()...)
	models = append(models, adminpg.Models()...)
	return db.AutoMigrate(models...)
}
