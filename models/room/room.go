package room

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Room states
const (
	StateAvailable   = "AVAILABLE"
	StateOccupied    = "OCCUPIED"
	StateDirty       = "DIRTY"
	StateCleaning    = "CLEANING"
	StateMaintenance = "MAINTENANCE"
)

// ValidState reports whether s is a known room state. The transition graph
// itself is deliberately open: any state may move to any other, the discipline
// lives in the audited transition history.
func ValidState(s string) bool {
	switch s {
	case StateAvailable, StateOccupied, StateDirty, StateCleaning, StateMaintenance:
		return true
	default:
		return false
	}
}

// RoomType is a room category with its base rates: Standard, Deluxe, VIP Suite.
type RoomType struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string    `gorm:"type:varchar(50);not null;unique" json:"name"`
	Description string    `gorm:"type:text" json:"description,omitempty"`

	BaseRateShortRest decimal.Decimal  `gorm:"type:decimal(10,2);not null" json:"base_rate_short_rest"`
	BaseRateOvernight decimal.Decimal  `gorm:"type:decimal(10,2);not null" json:"base_rate_overnight"`
	BaseRateLodge     *decimal.Decimal `gorm:"type:decimal(10,2)" json:"base_rate_lodge,omitempty"`

	Capacity  uint           `gorm:"default:2" json:"capacity"`
	Amenities datatypes.JSON `gorm:"type:json" json:"amenities,omitempty"`

	IsActive  bool      `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (RoomType) TableName() string {
	return "room_types"
}

func (rt *RoomType) BeforeCreate(tx *gorm.DB) error {
	if rt.ID == uuid.Nil {
		rt.ID = uuid.New()
	}
	return nil
}

// Room is a physical room. CurrentState only changes through the room state
// service, never by direct assignment from outside the core. Rooms are never
// deleted, only deactivated.
type Room struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	RoomNumber string    `gorm:"type:varchar(10);not null;unique" json:"room_number"`

	RoomTypeID uuid.UUID `gorm:"type:uuid;not null" json:"room_type_id"`
	RoomType   RoomType  `gorm:"foreignKey:RoomTypeID" json:"room_type"`

	Floor        uint   `gorm:"default:1" json:"floor"`
	CurrentState string `gorm:"type:varchar(15);not null;default:AVAILABLE;index" json:"current_state"`

	Notes     string    `gorm:"type:text" json:"notes,omitempty"`
	IsActive  bool      `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Room) TableName() string {
	return "rooms"
}

func (r *Room) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// IsAvailable reports whether the room can take a new check-in.
func (r *Room) IsAvailable() bool {
	return r.CurrentState == StateAvailable && r.IsActive
}
