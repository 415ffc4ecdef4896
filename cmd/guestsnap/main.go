package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/guestsnap/guestsnap/db"
	"github.com/guestsnap/guestsnap/internal/config"
	"github.com/guestsnap/guestsnap/internal/router"
	"github.com/guestsnap/guestsnap/internal/storage"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.Load()

	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	gdb, err := db.Connect(cfg.DatabaseURL)

	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := db.Migrate(gdb); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	store, err := storage.NewS3Store(context.Background(), cfg)

	if err != nil {
		log.Fatalf("Failed to configure media storage: %v", err)
	}

	r := router.New(cfg, gdb, store, logger)

	logger.Info("starting server", "port", cfg.Port)

	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
