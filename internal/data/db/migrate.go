package db

import (
	"gorm.io/gorm"

	"github.com/yungbote/onboarding-backend/internal/data/kvstore"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		&kvstore.Record{},
	)
}
