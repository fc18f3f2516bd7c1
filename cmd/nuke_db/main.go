// Command nuke_db drops every chirp table. Refuses to run in production.
package main

import (
	"fmt"
	"log"

	"chirp/internal/config"
	"chirp/internal/database"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}
	if cfg.IsProduction() {
		log.Fatal("refusing to drop tables in production")
	}
	cfg.DBAutoMigrate = false

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println("Nuking database...")
	models := database.PersistentModels()
	// Dependent tables first.
	for i := len(models) - 1; i >= 0; i-- {
		if err := db.Migrator().DropTable(models[i]); err != nil {
			log.Fatalf("failed to drop table: %v", err)
		}
	}
	fmt.Println("Database nuked.")
}
