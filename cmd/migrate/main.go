// Command migrate applies the schema to the configured database.
package main

import (
	"fmt"
	"log"

	"fleamart/internal/config"
	"fleamart/internal/database"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}

	if err := database.Migrate(db); err != nil {
		return err
	}

	log.Printf("Migration complete (%d models, driver=%s)", len(database.AllModels()), cfg.DBDriver)
	return nil
}
