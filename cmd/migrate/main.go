package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/joho/godotenv"

	"project-service/internal/config"
	"project-service/internal/repository/postgres"
)

const (
	directionUp   = "up"
	directionDown = "down"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: Error loading .env file: %v\n", err)
	}

	direction := flag.String("direction", directionUp, "migration direction: up applies every pending migration, down rolls back one")
	flag.Parse()

	cfg, err := config.LoadDatabase()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	fmt.Println("=== Migrating Database ===")
	fmt.Printf("Target: %s@%s:%d/%s\n", cfg.User, cfg.Host, cfg.Port, cfg.Database)
	fmt.Println()

	var version uint
	switch *direction {
	case directionUp:
		version, err = postgres.Migrate(cfg)
	case directionDown:
		version, err = postgres.MigrateDown(cfg)
	default:
		log.Fatalf("Unknown direction %q: use %q or %q", *direction, directionUp, directionDown)
	}
	if err != nil {
		log.Fatalf("Migration %s failed: %v", *direction, err)
	}

	fmt.Printf("Schema now at version %d\n", version)
	fmt.Println()
	fmt.Println("=== Migration Complete ===")
}
