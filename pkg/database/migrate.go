package database

import (
	"fmt"

	"gorm.io/gorm"
)

// Migrate enables pgvector, auto-migrates models, then runs postSQL in order.
// Failures of postSQL statements are returned, not skipped.
func Migrate(db *gorm.DB, models []interface{}, postSQL []string) error {
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS vector;`).Error; err != nil {
		return fmt.Errorf("enable pgvector: %w", err)
	}

	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	for _, stmt := range postSQL {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("post-migration statement failed: %w", err)
		}
	}
	return nil
}
