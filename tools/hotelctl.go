package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"mayor-k/database"
	"mayor-k/database/seeders"
	auditService "mayor-k/services/audit"
	bookingService "mayor-k/services/booking"
	"mayor-k/services/overdue"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage:")
		fmt.Println("  go run tools/hotelctl.go migrate                       - Run migrations and seed data")
		fmt.Println("  go run tools/hotelctl.go sweep [-auto-checkout] [-grace-minutes N] - One-shot overdue sweep")
		return
	}

	_ = godotenv.Load()

	db, err := database.InitDB()
	if err != nil {
		fmt.Printf("❌ Failed to connect to the database: %v\n", err)
		os.Exit(1)
	}

	switch os.Args[1] {
	case "migrate":
		fmt.Println("🚀 Running database migrations...")
		if err := database.AutoMigrateAll(db); err != nil {
			fmt.Printf("❌ Migration failed: %v\n", err)
			os.Exit(1)
		}
		if err := seeders.SeedInitialData(db); err != nil {
			fmt.Printf("❌ Seeding failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("✅ Migration completed successfully!")

	case "sweep":
		fs := flag.NewFlagSet("sweep", flag.ExitOnError)
		autoCheckout := fs.Bool("auto-checkout", false, "check out fully paid overdue stays")
		graceMinutes := fs.Int("grace-minutes", 30, "grace period past expected checkout")
		if err := fs.Parse(os.Args[2:]); err != nil {
			os.Exit(1)
		}

		var policy overdue.Policy = overdue.AlertOnlyPolicy{}
		if *autoCheckout {
			policy = overdue.AutoCheckoutPolicy{}
		}
		checker := overdue.NewChecker(db, bookingService.NewService(db),
			auditService.NewService(db), policy,
			time.Duration(*graceMinutes)*time.Minute)

		handled, err := checker.Run()
		if err != nil {
			fmt.Printf("❌ Sweep failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("✅ Sweep completed, handled %d overdue booking(s)\n", handled)

	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		fmt.Println("Available commands: migrate, sweep")
	}
}
