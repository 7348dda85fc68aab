package main

import (
	"context"
	"database/sql"
	"flag"
	"log"

	_ "github.com/lib/pq"

	"github.com/mytheresa/parts-catalog/app/config"
	"github.com/mytheresa/parts-catalog/app/database"
)

func main() {
	schemaOnly := flag.Bool("schema-only", false, "create the tables without inserting demo rows")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	if err := db.PingContext(ctx); err != nil {
		log.Fatalf("failed to ping database: %v", err)
	}

	if *schemaOnly {
		err = database.Migrate(ctx, db)
	} else {
		err = database.Seed(ctx, db)
	}
	if err != nil {
		log.Fatalf("error seeding database: %v", err)
	}
	log.Println("database seeded successfully")
}
