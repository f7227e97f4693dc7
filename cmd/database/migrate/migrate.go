package migration

import (
	"fmt"
	"log"

	"FreshKeeper/entities"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&entities.KVEntry{}); err != nil {
		log.Fatalf("Error migrating kv entry database: %v", err)
		return err
	}

	fmt.Println("Database migration complete")
	return nil
}
