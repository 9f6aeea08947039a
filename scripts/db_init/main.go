package main

import (
	"context"
	"fmt"
	"os"

	dbfs "github.com/coderr-app/backend/db"
	"github.com/coderr-app/backend/internal/bootstrap"
	"github.com/coderr-app/backend/internal/config"
	"github.com/coderr-app/backend/internal/db"
	"github.com/coderr-app/backend/internal/repository/sqlite"
)

func main() {
	ctx := context.Background()
	cfg, err := config.LoadConfig("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	database, err := db.New(ctx, cfg.DatabasePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "DB init error: %v\n", err)
		os.Exit(1)
	}
	defer database.Close()

	if err := db.Migrate(ctx, database, dbfs.Migrations); err != nil {
		fmt.Fprintf(os.Stderr, "Migration runner error: %v\n", err)
		os.Exit(1)
	}

	if cfg.SeedGuests {
		repo := sqlite.New(database)
		if err := bootstrap.EnsureGuestAccounts(ctx, repo, repo); err != nil {
			fmt.Fprintf(os.Stderr, "Guest seed error: %v\n", err)
			os.Exit(1)
		}
	}

	fmt.Println("Database initialized successfully.")
}
