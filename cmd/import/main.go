package main

import (
	"log"
	"os"

	"yamdb-backend/internal/config"
	"yamdb-backend/internal/database"
	"yamdb-backend/internal/importer"
)

func main() {
	dir := "static/data"
	if len(os.Args) > 1 {
		dir = os.Args[1]
	}

	cfg := config.Load()

	db, err := database.Init(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := importer.New(db).ImportDir(dir); err != nil {
		log.Fatalf("Import finished with errors: %v", err)
	}
	log.Printf("Successfully loaded data from %s", dir)
}
