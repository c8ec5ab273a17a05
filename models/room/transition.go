package room

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"mayor-k/types"
)

// RoomStateTransition is the event-sourced log of room state changes, one row
// per change, never updated or deleted. Ordered by time it forms the per-room
// timeline behind dirty-duration analytics.
type RoomStateTransition struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	RoomID uuid.UUID `gorm:"type:uuid;not null;index:idx_room_transitions_room_time,priority:1" json:"room_id"`
	Room   Room      `gorm:"foreignKey:RoomID;constraint:OnDelete:CASCADE" json:"-"`

	FromState string `gorm:"type:varchar(15);not null" json:"from_state"`
	ToState   string `gorm:"type:varchar(15);not null;index" json:"to_state"`

	// TransitionedByID is nil for system-originated changes; ActorRole then
	// carries the subsystem tag.
	TransitionedByID *uuid.UUID `gorm:"type:uuid" json:"transitioned_by,omitempty"`
	ActorRole        string     `gorm:"type:varchar(40)" json:"actor_role,omitempty"`

	Notes          string    `gorm:"type:text" json:"notes,omitempty"`
	TransitionedAt time.Time `gorm:"autoCreateTime;index:idx_room_transitions_room_time,priority:2" json:"transitioned_at"`
}

func (RoomStateTransition) TableName() string {
	return "room_state_transitions"
}

func (t *RoomStateTransition) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

func (t *RoomStateTransition) BeforeUpdate(tx *gorm.DB) error {
	return &types.ImmutabilityViolationError{Entity: "room state transition", ID: t.ID.String()}
}

func (t *RoomStateTransition) BeforeDelete(tx *gorm.DB) error {
	return &types.ImmutabilityViolationError{Entity: "room state transition", ID: t.ID.String()}
}
