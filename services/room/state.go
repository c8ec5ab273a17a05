package room

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"mayor-k/database"
	auditModel "mayor-k/models/audit"
	roomModel "mayor-k/models/room"
	auditService "mayor-k/services/audit"
	"mayor-k/types"
)

// Service is the room state machine. Every state change goes through here so
// the room row, the transition history and the audit log never drift apart.
// The transition graph is deliberately open: operational reality (marking an
// occupied room MAINTENANCE in an emergency) needs override capability, so the
// discipline is auditing every move, not restricting it.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// ChangeState moves a room to newState: persists the room, appends a
// RoomStateTransition and a ROOM system event as one atomic unit.
func (s *Service) ChangeState(roomID uuid.UUID, newState string, actor types.Actor, notes string) (*roomModel.Room, error) {
	var room roomModel.Room
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := database.LockForUpdate(tx).First(&room, "id = ?", roomID).Error; err != nil {
			return err
		}
		return ChangeStateTx(tx, &room, newState, actor, notes)
	})
	if err != nil {
		return nil, err
	}
	return &room, nil
}

// ChangeStateTx is ChangeState inside an existing transaction whose room row
// the caller already holds locked. The booking lifecycle composes its room
// moves through this.
func ChangeStateTx(tx *gorm.DB, room *roomModel.Room, newState string, actor types.Actor, notes string) error {
	if !roomModel.ValidState(newState) {
		return &types.InvalidTransitionError{
			Entity:    "room",
			ID:        room.RoomNumber,
			Current:   room.CurrentState,
			Attempted: newState,
		}
	}

	oldState := room.CurrentState
	room.CurrentState = newState
	if err := tx.Model(room).Update("current_state", newState).Error; err != nil {
		return fmt.Errorf("failed to persist room state: %w", err)
	}

	transition := roomModel.RoomStateTransition{
		RoomID:           room.ID,
		FromState:        oldState,
		ToState:          newState,
		TransitionedByID: actor.UserID,
		ActorRole:        actor.AuditRole(),
		Notes:            notes,
	}
	if err := tx.Create(&transition).Error; err != nil {
		return fmt.Errorf("failed to append room state transition: %w", err)
	}

	return auditService.Log(tx, auditService.Entry{
		EventType:   "ROOM_" + newState,
		Category:    auditModel.CategoryRoom,
		Actor:       actor,
		TargetTable: roomModel.Room{}.TableName(),
		TargetID:    &room.ID,
		Payload: map[string]interface{}{
			"room_number": room.RoomNumber,
			"from_state":  oldState,
			"to_state":    newState,
			"notes":       notes,
		},
	})
}

// History returns the room's transitions, oldest first.
func (s *Service) History(roomID uuid.UUID) ([]roomModel.RoomStateTransition, error) {
	var transitions []roomModel.RoomStateTransition
	err := s.db.Where("room_id = ?", roomID).
		Order("transitioned_at ASC").
		Find(&transitions).Error
	return transitions, err
}

// Available returns active rooms currently AVAILABLE.
func (s *Service) Available() ([]roomModel.Room, error) {
	var rooms []roomModel.Room
	err := s.db.Preload("RoomType").
		Where("current_state = ? AND is_active = ?", roomModel.StateAvailable, true).
		Order("room_number").
		Find(&rooms).Error
	return rooms, err
}

// DirtyPeriod is one DIRTY episode: from the transition into DIRTY until the
// next transition into AVAILABLE.
type DirtyPeriod struct {
	Start    time.Time     `json:"start"`
	End      time.Time     `json:"end,omitempty"`
	Duration time.Duration `json:"duration"`
	Open     bool          `json:"open"`
}

// DirtyDurations computes how long a room spent dirty, a paired scan over the
// room's transition timeline. A trailing DIRTY entry with no AVAILABLE yet is
// reported as an open period measured against now.
func (s *Service) DirtyDurations(roomID uuid.UUID) ([]DirtyPeriod, error) {
	transitions, err := s.History(roomID)
	if err != nil {
		return nil, err
	}

	var periods []DirtyPeriod
	var dirtySince *time.Time
	for _, t := range transitions {
		switch t.ToState {
		case roomModel.StateDirty:
			if dirtySince == nil {
				at := t.TransitionedAt
				dirtySince = &at
			}
		case roomModel.StateAvailable:
			if dirtySince != nil {
				periods = append(periods, DirtyPeriod{
					Start:    *dirtySince,
					End:      t.TransitionedAt,
					Duration: t.TransitionedAt.Sub(*dirtySince),
				})
				dirtySince = nil
			}
		}
	}
	if dirtySince != nil {
		periods = append(periods, DirtyPeriod{
			Start:    *dirtySince,
			Duration: time.Since(*dirtySince),
			Open:     true,
		})
	}
	return periods, nil
}
