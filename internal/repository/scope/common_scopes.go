package scope

import "gorm.io/gorm"

// OldestUpdatedFirst orders the indexing queue. id breaks ties so batches are stable.
func OldestUpdatedFirst(db *gorm.DB) *gorm.DB {
	return db.Order("updated_at ASC").Order("id ASC")
}
