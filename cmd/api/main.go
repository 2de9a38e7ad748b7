package main

import (
	"fmt"
	"log"
	"net/http"

	"yamdb-backend/internal/config"
	"yamdb-backend/internal/database"
	"yamdb-backend/internal/handlers"
	"yamdb-backend/internal/mailer"
)

func main() {
	cfg := config.Load()

	db, err := database.Init(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	var mail mailer.Mailer = mailer.LogMailer{}
	if cfg.SMTPHost != "" {
		mail = mailer.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.EmailFrom)
	}

	router := handlers.NewRouter(db, mail, cfg)

	addr := fmt.Sprintf("%s:%s", cfg.Host, cfg.Port)
	fmt.Printf("Server starting on http://%s\n", addr)
	log.Fatal(http.ListenAndServe(addr, router))
}
