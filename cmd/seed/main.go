// Command seed loads clubs and their courts into PostgreSQL. Games can only
// be created on existing courts, and clubs are managed outside the API. The
// in-memory store gets the demo club from the server itself.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"

	"Courtside/config"
	"Courtside/services/clubs"
	"Courtside/services/store"
)

func main() {
	var file string
	var migrate bool
	flag.StringVar(&file, "file", "", "JSON file with the clubs to load (default: a demo club)")
	flag.BoolVar(&migrate, "migrate", true, "migrate the database first")
	flag.Parse()

	settings, err := config.Load()
	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}
	if settings.Storage != config.StoragePostgres {
		log.Fatal(errors.New("seeding needs STORAGE=postgres"))
	}

	seed := clubs.Defaults()
	if file != "" {
		f, err := os.Open(file)
		if err != nil {
			log.Fatalf("Error opening %s: %v", file, err)
		}
		seed, err = clubs.Load(f)
		f.Close()
		if err != nil {
			log.Fatalf("Error reading %s: %v", file, err)
		}
	}

	db, err := config.ConnectGORM(settings.Postgres, settings.VerbosePostgres)
	if err != nil {
		log.Fatalf("Error connecting to PostgreSQL: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("Error reading GORM PostgreSQL instance: %v", err)
	}
	defer sqlDB.Close()

	if migrate {
		if err := config.MigrateDatabase(db); err != nil {
			log.Fatalf("Database migration failed: %v", err)
		}
	}

	if err := clubs.Seed(context.Background(), store.NewGormStore(db), seed); err != nil {
		log.Fatalf("Error seeding clubs: %v", err)
	}
	log.Printf("Seeded %d clubs", len(seed))
}
