package migration

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/mentora-inc/mentora/internal/infrastructure/persistence/models"
	"github.com/mentora-inc/mentora/internal/shared/logger"
)

// AutoMigrateModels lists every model owned by this service. Roster tables
// belong to the roster subsystem and are never migrated here.
func AutoMigrateModels() []interface{} {
	return []interface{}{
		&models.PlanModel{},
		&models.SubscriptionModel{},
		&models.SubscriptionEventModel{},
	}
}

// Run applies schema migrations via gorm automigrate.
func Run(db *gorm.DB) error {
	models := AutoMigrateModels()
	logger.Info("starting database migration", "models_count", len(models))

	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	logger.Info("database migration completed")
	return nil
}
