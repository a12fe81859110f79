// Command schemaprobe checks which namespace each storefront table lives
// under in the configured database. Run it against a new environment before
// pinning SCHEMA_NAMESPACE.
package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/dajiagoods/storefront/internal/config"
	"github.com/dajiagoods/storefront/internal/postgres"
	"github.com/dajiagoods/storefront/internal/schema"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	if cfg.PostgresDSN == "" {
		log.Fatal("POSTGRES_DSN is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer db.Close()

	results := schema.DetectAll(ctx, db)
	for _, table := range schema.Tables {
		ns := results[table]
		if ns == "" {
			fmt.Printf("%-24s MISSING (no candidate namespace answered)\n", table)
			continue
		}
		fmt.Printf("%-24s %s\n", table, schema.Qualify(ns, table))
	}
}
