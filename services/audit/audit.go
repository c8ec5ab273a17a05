package audit

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"mayor-k/logger"
	auditModel "mayor-k/models/audit"
	"mayor-k/types"
)

// Entry is a pending audit record headed for the system_events table.
type Entry struct {
	EventType   string
	Category    string
	Actor       types.Actor
	TargetTable string
	TargetID    *uuid.UUID
	Payload     map[string]interface{}
	Description string
	Request     *types.RequestContext
}

func (e Entry) toModel() auditModel.SystemEvent {
	ev := auditModel.SystemEvent{
		EventType:     e.EventType,
		EventCategory: e.Category,
		ActorID:       e.Actor.UserID,
		ActorRole:     e.Actor.AuditRole(),
		TargetTable:   e.TargetTable,
		TargetID:      e.TargetID,
		Description:   e.Description,
	}
	if e.Payload != nil {
		if raw, err := json.Marshal(e.Payload); err == nil {
			ev.Payload = raw
		}
	}
	if e.Request != nil {
		ev.IPAddress = e.Request.IPAddress
		ev.UserAgent = e.Request.UserAgent
	}
	return ev
}

// Log appends an audit event inside the caller's transaction. Core composite
// operations use this so the event commits atomically with the business write.
func Log(tx *gorm.DB, entry Entry) error {
	ev := entry.toModel()
	if err := tx.Create(&ev).Error; err != nil {
		return fmt.Errorf("failed to append system event %s: %w", entry.EventType, err)
	}
	return nil
}

// Service owns the read side of the audit log plus a best-effort async write
// path for events that must never fail their triggering operation.
type Service struct {
	db      *gorm.DB
	channel chan Entry
}

func NewService(db *gorm.DB) *Service {
	return &Service{
		db:      db,
		channel: make(chan Entry, 256),
	}
}

// LogAsync enqueues an audit event. Never blocks the caller and never fails
// it: if the queue is full the entry is dropped with an operational log line.
func (s *Service) LogAsync(entry Entry) {
	select {
	case s.channel <- entry:
	default:
		logger.Warning("Audit queue full, dropping event " + entry.EventType)
	}
}

// Close stops the async writer once the queue drains.
func (s *Service) Close() {
	close(s.channel)
}

// Process drains the async queue. Writes are retried here, not by the caller.
// Run as a goroutine at startup.
func (s *Service) Process() {
	logger.Info("Starting asynchronous audit writer...")

	for entry := range s.channel {
		var err error
		for attempt := 0; attempt < 3; attempt++ {
			if err = Log(s.db, entry); err == nil {
				break
			}
			time.Sleep(time.Duration(attempt+1) * 200 * time.Millisecond)
		}
		if err != nil {
			logger.Error("Failed to persist audit event "+entry.EventType, err)
		}
	}
}

// QueryFilter narrows audit reads. Zero fields are ignored.
type QueryFilter struct {
	Category  string
	EventType string
	ActorID   *uuid.UUID
	TargetID  *uuid.UUID
	From      time.Time
	To        time.Time
	Limit     int
}

// List returns matching events, newest first.
func (s *Service) List(filter QueryFilter) ([]auditModel.SystemEvent, error) {
	q := s.db.Model(&auditModel.SystemEvent{})
	if filter.Category != "" {
		q = q.Where("event_category = ?", filter.Category)
	}
	if filter.EventType != "" {
		q = q.Where("event_type = ?", filter.EventType)
	}
	if filter.ActorID != nil {
		q = q.Where("actor_id = ?", filter.ActorID)
	}
	if filter.TargetID != nil {
		q = q.Where("target_id = ?", filter.TargetID)
	}
	if !filter.From.IsZero() {
		q = q.Where("created_at >= ?", filter.From)
	}
	if !filter.To.IsZero() {
		q = q.Where("created_at < ?", filter.To)
	}
	limit := filter.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	var events []auditModel.SystemEvent
	err := q.Order("created_at DESC").Limit(limit).Find(&events).Error
	return events, err
}

// HasRecent reports whether an event of the given type for the given target
// exists within the window. Used to rate-limit repeated alerts.
func (s *Service) HasRecent(eventType string, targetID uuid.UUID, window time.Duration) (bool, error) {
	var count int64
	err := s.db.Model(&auditModel.SystemEvent{}).
		Where("event_type = ? AND target_id = ? AND created_at >= ?",
			eventType, targetID, time.Now().Add(-window)).
		Count(&count).Error
	return count > 0, err
}
