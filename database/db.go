package database

import (
	"fmt"
	"os"

	"mayor-k/logger"
	auditModel "mayor-k/models/audit"
	bookingModel "mayor-k/models/booking"
	financeModel "mayor-k/models/finance"
	guestModel "mayor-k/models/guest"
	roomModel "mayor-k/models/room"
	userModel "mayor-k/models/user"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var DB *gorm.DB

// InitDB initializes the database connection with auto migration and indexing
func InitDB() (*gorm.DB, error) {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		logger.Error("Error loading .env file", err)
	}

	host := os.Getenv("DB_HOST")
	port := os.Getenv("DB_PORT")
	database := os.Getenv("DB_DATABASE")
	user := os.Getenv("DB_USERNAME")
	password := os.Getenv("DB_PASSWORD")
	sslmode := os.Getenv("DB_SSLMODE")

	if sslmode == "" {
		sslmode = "disable"
	}

	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		host, port, user, password, database, sslmode)

	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		logger.Error("Failed to connect to the database", err)
		return nil, err
	}
	logger.Success("Successfully connected to the database")

	if err := AutoMigrateAll(DB); err != nil {
		logger.Error("Failed to run migrations", err)
		return nil, err
	}
	logger.Success("All migrations completed successfully")

	if err := createIndexes(DB); err != nil {
		logger.Error("Failed to create indexes", err)
		return nil, err
	}
	logger.Success("All indexes created successfully")

	return DB, nil
}

// AutoMigrateAll runs auto migration for all models in dependency order.
func AutoMigrateAll(db *gorm.DB) error {
	// Stage 1: Core foundation models
	stage1Models := []interface{}{
		&userModel.User{},
		&guestModel.Guest{},
		&roomModel.RoomType{},
	}

	for _, model := range stage1Models {
		if err := db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate %T: %w", model, err)
		}
	}

	// Stage 2: Models with dependencies on Stage 1
	stage2Models := []interface{}{
		&roomModel.Room{},
		&roomModel.RoomStateTransition{},
		&bookingModel.Booking{},
		&bookingModel.BookingExtension{},
	}

	for _, model := range stage2Models {
		if err := db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate %T: %w", model, err)
		}
	}

	// Stage 3: Ledger, expenses, audit
	remainingModels := []interface{}{
		&financeModel.Transaction{},
		&financeModel.ExpenseCategory{},
		&financeModel.Expense{},
		&financeModel.MaintenanceLog{},
		&auditModel.SystemEvent{},
	}

	for _, model := range remainingModels {
		if err := db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate %T: %w", model, err)
		}
	}

	return createConstraints(db)
}

// createConstraints adds constraints AutoMigrate cannot express. The partial
// unique index is the storage-layer guard behind "at most one CHECKED_IN
// booking per room": two racing check-ins collide here and one fails.
func createConstraints(db *gorm.DB) error {
	if err := db.Exec(
		"CREATE UNIQUE INDEX IF NOT EXISTS uniq_bookings_checked_in_room ON bookings(room_id) WHERE status = 'CHECKED_IN'",
	).Error; err != nil {
		return fmt.Errorf("failed to create checked-in room guard index: %w", err)
	}
	return nil
}

// createIndexes creates additional indexes for better performance
func createIndexes(db *gorm.DB) error {
	indexes := []struct {
		name string
		sql  string
	}{
		{"idx_bookings_checkin_status", "CREATE INDEX IF NOT EXISTS idx_bookings_checkin_status ON bookings(check_in_date, status)"},
		{"idx_bookings_created_at", "CREATE INDEX IF NOT EXISTS idx_bookings_created_at ON bookings(created_at)"},
		{"idx_guests_phone", "CREATE INDEX IF NOT EXISTS idx_guests_phone ON guests(phone)"},
		{"idx_transactions_type_time", "CREATE INDEX IF NOT EXISTS idx_transactions_type_time ON transactions(transaction_type, created_at)"},
		{"idx_expenses_status_date", "CREATE INDEX IF NOT EXISTS idx_expenses_status_date ON expenses(status, expense_date)"},
		{"idx_system_events_actor_time", "CREATE INDEX IF NOT EXISTS idx_system_events_actor_time ON system_events(actor_id, created_at)"},
	}

	for _, idx := range indexes {
		if err := db.Exec(idx.sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}
	}

	return nil
}

// GetDB returns the database instance
func GetDB() *gorm.DB {
	return DB
}

// LockForUpdate applies a row-level exclusive lock on Postgres. SQLite (used
// by the test stores) serializes writers on its own and rejects FOR UPDATE.
func LockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}
