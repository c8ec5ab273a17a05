package seeders

import (
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"mayor-k/constants"
	"mayor-k/logger"
	financeModel "mayor-k/models/finance"
	roomModel "mayor-k/models/room"
	userModel "mayor-k/models/user"
)

// SeedInitialData creates the room catalogue, expense categories and an admin
// account. Idempotent: existing rows are left alone.
func SeedInitialData(db *gorm.DB) error {
	if err := seedRoomTypes(db); err != nil {
		return err
	}
	if err := seedRooms(db); err != nil {
		return err
	}
	if err := seedExpenseCategories(db); err != nil {
		return err
	}
	if err := seedAdminUser(db); err != nil {
		return err
	}
	logger.Success("Initial hotel data seeded")
	return nil
}

func dec(v string) decimal.Decimal {
	d, _ := decimal.NewFromString(v)
	return d
}

func decPtr(v string) *decimal.Decimal {
	d := dec(v)
	return &d
}

func seedRoomTypes(db *gorm.DB) error {
	roomTypes := []roomModel.RoomType{
		{
			Name:              "Standard",
			Description:       "Comfortable room with essential amenities",
			BaseRateShortRest: dec("5000.00"),
			BaseRateOvernight: dec("12000.00"),
			BaseRateLodge:     decPtr("10000.00"),
		},
		{
			Name:              "Deluxe",
			Description:       "Spacious room with premium furnishing",
			BaseRateShortRest: dec("8000.00"),
			BaseRateOvernight: dec("18000.00"),
			BaseRateLodge:     decPtr("15000.00"),
		},
		{
			Name:              "VIP Suite",
			Description:       "Top-floor suite with lounge area",
			BaseRateShortRest: dec("12000.00"),
			BaseRateOvernight: dec("30000.00"),
			BaseRateLodge:     decPtr("25000.00"),
		},
	}

	for i := range roomTypes {
		if err := db.Where(roomModel.RoomType{Name: roomTypes[i].Name}).
			FirstOrCreate(&roomTypes[i]).Error; err != nil {
			return fmt.Errorf("failed to seed room type %s: %w", roomTypes[i].Name, err)
		}
	}
	return nil
}

func seedRooms(db *gorm.DB) error {
	typeByName := map[string]roomModel.RoomType{}
	var roomTypes []roomModel.RoomType
	if err := db.Find(&roomTypes).Error; err != nil {
		return err
	}
	for _, rt := range roomTypes {
		typeByName[rt.Name] = rt
	}

	// Floor 1: 101-110 (8 Standard, 2 Deluxe)
	// Floor 2: 201-210 (5 Standard, 4 Deluxe, 1 VIP)
	// Floor 3: 301-310 (3 Standard, 5 Deluxe, 2 VIP)
	roomConfigs := []struct {
		number   string
		typeName string
		floor    uint
	}{
		{"101", "Standard", 1}, {"102", "Standard", 1}, {"103", "Standard", 1},
		{"104", "Standard", 1}, {"105", "Standard", 1}, {"106", "Standard", 1},
		{"107", "Standard", 1}, {"108", "Standard", 1}, {"109", "Deluxe", 1},
		{"110", "Deluxe", 1},
		{"201", "Standard", 2}, {"202", "Standard", 2}, {"203", "Standard", 2},
		{"204", "Standard", 2}, {"205", "Standard", 2}, {"206", "Deluxe", 2},
		{"207", "Deluxe", 2}, {"208", "Deluxe", 2}, {"209", "Deluxe", 2},
		{"210", "VIP Suite", 2},
		{"301", "Standard", 3}, {"302", "Standard", 3}, {"303", "Standard", 3},
		{"304", "Deluxe", 3}, {"305", "Deluxe", 3}, {"306", "Deluxe", 3},
		{"307", "Deluxe", 3}, {"308", "Deluxe", 3}, {"309", "VIP Suite", 3},
		{"310", "VIP Suite", 3},
	}

	for _, cfg := range roomConfigs {
		rt, ok := typeByName[cfg.typeName]
		if !ok {
			return fmt.Errorf("room type %s not seeded", cfg.typeName)
		}
		room := roomModel.Room{
			RoomNumber:   cfg.number,
			RoomTypeID:   rt.ID,
			Floor:        cfg.floor,
			CurrentState: roomModel.StateAvailable,
		}
		if err := db.Where(roomModel.Room{RoomNumber: cfg.number}).
			FirstOrCreate(&room).Error; err != nil {
			return fmt.Errorf("failed to seed room %s: %w", cfg.number, err)
		}
	}
	return nil
}

func seedExpenseCategories(db *gorm.DB) error {
	categories := []financeModel.ExpenseCategory{
		{Name: "Utilities", Description: "Electricity, water, internet bills"},
		{Name: "Supplies", Description: "Cleaning supplies, toiletries, linens"},
		{Name: "Maintenance", Description: "Repairs and equipment maintenance"},
		{Name: "Staff", Description: "Staff salaries and allowances"},
		{Name: "Security", Description: "Security services and equipment"},
		{Name: "Marketing", Description: "Advertising and promotional expenses"},
		{Name: "Fuel", Description: "Generator fuel (backup)"},
		{Name: "Solar Maintenance", Description: "Solar inverter servicing and battery maintenance"},
		{Name: "Food & Beverages", Description: "Restaurant and bar supplies"},
		{Name: "Miscellaneous", Description: "Other operational expenses"},
	}

	for i := range categories {
		if err := db.Where(financeModel.ExpenseCategory{Name: categories[i].Name}).
			FirstOrCreate(&categories[i]).Error; err != nil {
			return fmt.Errorf("failed to seed expense category %s: %w", categories[i].Name, err)
		}
	}
	return nil
}

func seedAdminUser(db *gorm.DB) error {
	admin := userModel.User{
		Username: "admin",
		FullName: "System Administrator",
		Role:     constants.RoleAdmin,
	}
	return db.Where(userModel.User{Username: "admin"}).FirstOrCreate(&admin).Error
}
