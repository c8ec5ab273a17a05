package finance

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Maintenance types: the equipment a log entry covers.
const (
	MaintenanceSolarInverter = "SOLAR_INVERTER"
	MaintenanceGenerator     = "GENERATOR"
	MaintenanceACUnit        = "AC_UNIT"
	MaintenancePlumbing      = "PLUMBING"
	MaintenanceElectrical    = "ELECTRICAL"
	MaintenanceOther         = "OTHER"
)

// ValidMaintenanceType reports whether t is a known maintenance type.
func ValidMaintenanceType(t string) bool {
	switch t {
	case MaintenanceSolarInverter, MaintenanceGenerator, MaintenanceACUnit,
		MaintenancePlumbing, MaintenanceElectrical, MaintenanceOther:
		return true
	}
	return false
}

// MaintenanceLog records equipment servicing: what was worked on, who did
// it, what it cost and when the next service is due.
type MaintenanceLog struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	MaintenanceType string          `gorm:"type:varchar(20);not null;index" json:"maintenance_type"`
	Description     string          `gorm:"type:text;not null" json:"description"`
	Vendor          string          `gorm:"type:varchar(100)" json:"vendor,omitempty"`
	Cost            decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"cost"`

	MaintenanceDate time.Time  `gorm:"type:date;not null;index" json:"maintenance_date"`
	NextScheduled   *time.Time `gorm:"type:date" json:"next_scheduled,omitempty"`

	LoggedByID *uuid.UUID `gorm:"type:uuid" json:"logged_by,omitempty"`
	Notes      string     `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt  time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

func (MaintenanceLog) TableName() string {
	return "maintenance_logs"
}

func (m *MaintenanceLog) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
