// Command migrate creates or updates the schema. Production servers do not migrate on start.
package main

import (
	"flag"
	"fmt"
	"log"

	"blogfeed/internal/config"
	"blogfeed/internal/database"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	flag.Parse()

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
	log.Printf("schema up to date (%d models)", len(database.PersistentModels()))
	return nil
}
