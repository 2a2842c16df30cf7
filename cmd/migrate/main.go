// Command migrate applies or rolls back the embedded SQL schema.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"

	"public-complaint-api/config"
	"public-complaint-api/models"
	"public-complaint-api/services"
)

func main() {
	config.LoadEnv()
	cfg := config.Load()

	var (
		action          string
		steps           int
		rehashPasswords bool
	)

	flag.StringVar(&action, "action", "up", "migration action: up, down or version")
	flag.IntVar(&steps, "steps", 1, "number of migrations to roll back with -action=down")
	flag.BoolVar(&rehashPasswords, "rehash-passwords", false, "bcrypt-hash any plaintext passwords left by a legacy import")
	flag.Parse()

	switch action {
	case "up":
		if err := config.MigrateUp(cfg); err != nil {
			log.Fatalf("migrate up failed: %v", err)
		}
	case "down":
		if steps < 1 {
			log.Fatal("steps must be greater than 0")
		}
		if err := config.MigrateDown(cfg, steps); err != nil {
			log.Fatalf("migrate down failed: %v", err)
		}
	case "version":
	default:
		log.Fatalf("unknown action %q", action)
	}

	version, dirty, err := config.MigrationVersion(cfg)
	if err != nil {
		log.Fatalf("read migration version: %v", err)
	}
	fmt.Printf("Schema version: %d (dirty: %t)\n", version, dirty)

	if rehashPasswords {
		if err := rehash(cfg); err != nil {
			log.Fatalf("password rehash failed: %v", err)
		}
	}
}

// rehash replaces plaintext passwords with bcrypt hashes. Hashed rows are skipped.
func rehash(cfg *config.AppConfig) error {
	db, err := config.InitDB(cfg)
	if err != nil {
		return err
	}

	var users []models.User
	if err := db.Find(&users).Error; err != nil {
		return fmt.Errorf("fetch users: %w", err)
	}

	store := services.NewGormUserStore(db)
	updated := 0
	for i := range users {
		user := &users[i]
		// bcrypt hashes start with $2
		if strings.HasPrefix(user.Password, "$2") {
			continue
		}

		hashed, err := services.HashPassword(user.Password)
		if err != nil {
			log.Printf("Failed to hash password for user %s: %v", user.Email, err)
			continue
		}
		user.Password = hashed
		if err := store.Update(context.Background(), user); err != nil {
			log.Printf("Failed to update password for user %s: %v", user.Email, err)
			continue
		}
		updated++
		log.Printf("Successfully updated password for user %s", user.Email)
	}

	log.Printf("Password migration completed (%d updated)", updated)
	return nil
}
