package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/GitHackerz/ezgo-sub000/internal/config"
	"github.com/GitHackerz/ezgo-sub000/internal/database"
)

// Tables holding booking activity. Buses and trips are owned by scheduling
// and survive a clear; trip seat counters are reset to bus capacity instead.
var activityTables = []string{
	"payment_events",
	"ratings",
	"payments",
	"bookings",
}

func main() {
	var (
		dbURLFlag string
		migrate   bool
		yes       bool
	)
	flag.StringVar(&dbURLFlag, "database-url", "", "PostgreSQL connection string (overrides DATABASE_URL)")
	flag.BoolVar(&migrate, "migrate", false, "apply the embedded schema before clearing")
	flag.BoolVar(&yes, "yes", false, "skip the confirmation prompt")
	flag.Parse()

	// Try loading .env from current working directory (optional)
	_ = godotenv.Load()

	dbURL := dbURLFlag
	if dbURL == "" {
		dbURL = os.Getenv("DATABASE_URL")
	}
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set and -database-url was not provided")
	}

	if !yes {
		fmt.Print("This deletes every booking, payment and rating. Type 'yes' to continue: ")
		var answer string
		_, _ = fmt.Scanln(&answer)
		if answer != "yes" {
			fmt.Println("Aborted.")
			return
		}
	}

	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)

	// Build minimal database config without loading full app config
	dbCfg := config.DatabaseConfig{
		URL:                dbURL,
		Driver:             os.Getenv("DATABASE_DRIVER"),
		MaxConnections:     2,
		MaxIdleConnections: 1,
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	db, err := database.NewConnection(ctx, dbCfg, logger)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	if migrate {
		if err := database.EnsureSchema(ctx, db.DB); err != nil {
			log.Fatalf("failed to apply schema: %v", err)
		}
		fmt.Println("Schema applied.")
	}

	fmt.Println("Connected to database. Clearing booking activity...")

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		log.Fatalf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback()

	for _, table := range activityTables {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			log.Fatalf("failed to clear %s: %v", table, err)
		}
	}

	result, err := tx.ExecContext(ctx, `
		UPDATE trips t
		SET available_seats = b.capacity, updated_at = NOW()
		FROM buses b
		WHERE b.id = t.bus_id`)
	if err != nil {
		log.Fatalf("failed to reset seat counters: %v", err)
	}
	if err := tx.Commit(); err != nil {
		log.Fatalf("failed to commit: %v", err)
	}

	reset, _ := result.RowsAffected()
	fmt.Printf("All booking activity cleared; %d trip seat counters reset.\n", reset)

	fmt.Println("Post-clear row counts:")
	for _, t := range activityTables {
		var count int
		if err := db.QueryRowContext(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", t)).Scan(&count); err != nil {
			fmt.Printf("  %s: error: %v\n", t, err)
			continue
		}
		fmt.Printf("  %s: %d\n", t, count)
	}
}
