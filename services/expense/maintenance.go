package expense

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"mayor-k/constants"
	auditModel "mayor-k/models/audit"
	financeModel "mayor-k/models/finance"
	auditService "mayor-k/services/audit"
	"mayor-k/types"
	financeTypes "mayor-k/types/finance"
)

// LogMaintenance records an equipment maintenance entry with its cost and
// optional next service date.
func (s *Service) LogMaintenance(req financeTypes.MaintenanceCreateRequest, actor types.Actor) (*financeModel.MaintenanceLog, error) {
	caps := constants.CapabilityFor(actor.Role)
	if !caps.CanSubmitExpenses {
		return nil, &types.UnauthorizedError{Role: actor.Role, Action: "log maintenance"}
	}
	if !financeModel.ValidMaintenanceType(req.MaintenanceType) {
		return nil, fmt.Errorf("unknown maintenance type %q", req.MaintenanceType)
	}
	if req.Description == "" {
		return nil, &types.ValidationError{Field: "description"}
	}
	if req.Cost.Sign() < 0 {
		return nil, fmt.Errorf("maintenance cost cannot be negative")
	}

	maintenanceDate := time.Now()
	if req.MaintenanceDate != "" {
		parsed, err := time.Parse("2006-01-02", req.MaintenanceDate)
		if err != nil {
			return nil, fmt.Errorf("invalid maintenance date: %w", err)
		}
		maintenanceDate = parsed
	}
	var nextScheduled *time.Time
	if req.NextScheduled != "" {
		parsed, err := time.Parse("2006-01-02", req.NextScheduled)
		if err != nil {
			return nil, fmt.Errorf("invalid next scheduled date: %w", err)
		}
		nextScheduled = &parsed
	}

	log := financeModel.MaintenanceLog{
		MaintenanceType: req.MaintenanceType,
		Description:     req.Description,
		Vendor:          req.Vendor,
		Cost:            req.Cost,
		MaintenanceDate: maintenanceDate,
		NextScheduled:   nextScheduled,
		LoggedByID:      actor.UserID,
		Notes:           req.Notes,
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&log).Error; err != nil {
			return fmt.Errorf("failed to create maintenance log: %w", err)
		}
		return auditService.Log(tx, auditService.Entry{
			EventType:   "MAINTENANCE_LOGGED",
			Category:    auditModel.CategoryExpense,
			Actor:       actor,
			TargetTable: financeModel.MaintenanceLog{}.TableName(),
			TargetID:    &log.ID,
			Payload: map[string]interface{}{
				"maintenance_type": log.MaintenanceType,
				"cost":             log.Cost.String(),
				"vendor":           log.Vendor,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return &log, nil
}

// MaintenanceFilter narrows maintenance log queries.
type MaintenanceFilter struct {
	Type string
	From time.Time
	To   time.Time
}

// MaintenanceLogs returns entries newest first by maintenance date.
func (s *Service) MaintenanceLogs(filter MaintenanceFilter) ([]financeModel.MaintenanceLog, error) {
	q := s.db.Order("maintenance_date DESC")
	if filter.Type != "" {
		q = q.Where("maintenance_type = ?", filter.Type)
	}
	if !filter.From.IsZero() {
		q = q.Where("maintenance_date >= ?", filter.From)
	}
	if !filter.To.IsZero() {
		q = q.Where("maintenance_date <= ?", filter.To)
	}
	var logs []financeModel.MaintenanceLog
	err := q.Find(&logs).Error
	return logs, err
}
