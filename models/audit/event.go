package audit

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"mayor-k/types"
)

// Event categories
const (
	CategoryBooking  = "BOOKING"
	CategoryPayment  = "PAYMENT"
	CategoryRoom     = "ROOM"
	CategoryExpense  = "EXPENSE"
	CategoryAuth     = "AUTH"
	CategoryAdmin    = "ADMIN"
	CategorySecurity = "SECURITY"
	CategorySystem   = "SYSTEM"
)

// SystemEvent is the append-only audit log, the single source of truth for
// what happened and who did it across the core. Rows are never mutated.
// ActorRole is denormalized so queries stay cheap even if a user's role
// changes later.
type SystemEvent struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	EventType     string `gorm:"type:varchar(50);not null;index" json:"event_type"`
	EventCategory string `gorm:"type:varchar(20);not null;index:idx_system_events_category_time,priority:1" json:"event_category"`

	ActorID   *uuid.UUID `gorm:"type:uuid;index" json:"actor_id,omitempty"`
	ActorRole string     `gorm:"type:varchar(40)" json:"actor_role,omitempty"`

	TargetTable string     `gorm:"type:varchar(50);index:idx_system_events_target,priority:1" json:"target_table,omitempty"`
	TargetID    *uuid.UUID `gorm:"type:uuid;index:idx_system_events_target,priority:2" json:"target_id,omitempty"`

	Payload datatypes.JSON `gorm:"type:json" json:"payload,omitempty"`

	IPAddress   string `gorm:"type:varchar(45)" json:"ip_address,omitempty"`
	UserAgent   string `gorm:"type:varchar(500)" json:"user_agent,omitempty"`
	Description string `gorm:"type:text" json:"description,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime;index:idx_system_events_category_time,priority:2" json:"created_at"`
}

func (SystemEvent) TableName() string {
	return "system_events"
}

func (e *SystemEvent) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

func (e *SystemEvent) BeforeUpdate(tx *gorm.DB) error {
	return &types.ImmutabilityViolationError{Entity: "system event", ID: e.ID.String()}
}

func (e *SystemEvent) BeforeDelete(tx *gorm.DB) error {
	return &types.ImmutabilityViolationError{Entity: "system event", ID: e.ID.String()}
}
