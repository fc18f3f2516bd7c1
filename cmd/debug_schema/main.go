// Command debug_schema prints the live columns and constraints of every chirp table.
package main

import (
	"fmt"
	"log"

	"chirp/internal/config"
	"chirp/internal/database"

	"gorm.io/gorm"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}
	cfg.DBAutoMigrate = false

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatal(err)
	}

	for _, model := range database.PersistentModels() {
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(model); err != nil {
			log.Fatalf("parse model: %v", err)
		}
		table := stmt.Schema.Table

		if !db.Migrator().HasTable(table) {
			fmt.Printf("%s: missing\n", table)
			continue
		}

		columns, err := db.Migrator().ColumnTypes(table)
		if err != nil {
			log.Fatalf("columns of %s: %v", table, err)
		}
		fmt.Printf("Columns in %s:\n", table)
		for _, c := range columns {
			nullable, _ := c.Nullable()
			fmt.Printf(" - %s: %s (nullable=%t)\n", c.Name(), c.DatabaseTypeName(), nullable)
		}

		var constraints []struct {
			Conname string `gorm:"column:conname"`
			Def     string `gorm:"column:def"`
		}
		db.Raw(`SELECT c.conname, pg_get_constraintdef(c.oid) AS def
			FROM pg_constraint c JOIN pg_class r ON c.conrelid = r.oid
			JOIN pg_namespace n ON n.oid = r.relnamespace
			WHERE n.nspname = 'public' AND r.relname = ?`, table).Scan(&constraints)
		fmt.Printf("Constraints in %s:\n", table)
		for _, c := range constraints {
			fmt.Printf(" - %s: %s\n", c.Conname, c.Def)
		}

		var rows int64
		db.Table(table).Count(&rows)
		fmt.Printf("Rows in %s: %d\n", table, rows)
	}
}
