package expense

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"mayor-k/constants"
	"mayor-k/database"
	auditModel "mayor-k/models/audit"
	financeModel "mayor-k/models/finance"
	auditService "mayor-k/services/audit"
	"mayor-k/types"
	financeTypes "mayor-k/types/finance"
	"mayor-k/utils"
)

const refRetries = 3

// Service runs the expense approval workflow: staff submit, managers approve
// within their ceiling or reject with a reason, and each decision is final.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Create logs a new expense in PENDING.
func (s *Service) Create(req financeTypes.ExpenseCreateRequest, actor types.Actor) (*financeModel.Expense, error) {
	caps := constants.CapabilityFor(actor.Role)
	if !caps.CanSubmitExpenses {
		return nil, &types.UnauthorizedError{Role: actor.Role, Action: "submit expense"}
	}
	if req.Amount.Sign() <= 0 {
		return nil, fmt.Errorf("expense amount must be positive")
	}
	categoryID, err := uuid.Parse(req.CategoryID)
	if err != nil {
		return nil, fmt.Errorf("invalid category id: %w", err)
	}
	expenseDate := time.Now()
	if req.ExpenseDate != "" {
		expenseDate, err = time.Parse("2006-01-02", req.ExpenseDate)
		if err != nil {
			return nil, fmt.Errorf("invalid expense date: %w", err)
		}
	}

	var expense financeModel.Expense
	err = s.db.Transaction(func(tx *gorm.DB) error {
		var category financeModel.ExpenseCategory
		if err := tx.First(&category, "id = ?", categoryID).Error; err != nil {
			return err
		}

		expense = financeModel.Expense{
			CategoryID:  category.ID,
			Description: req.Description,
			Amount:      req.Amount,
			VendorName:  req.VendorName,
			Status:      financeModel.ExpensePending,
			LoggedByID:  actor.UserID,
			ExpenseDate: expenseDate,
		}
		if err := createWithRef(tx, &expense); err != nil {
			return err
		}

		return auditService.Log(tx, auditService.Entry{
			EventType:   "EXPENSE_CREATED",
			Category:    auditModel.CategoryExpense,
			Actor:       actor,
			TargetTable: financeModel.Expense{}.TableName(),
			TargetID:    &expense.ID,
			Payload: map[string]interface{}{
				"expense_ref": expense.ExpenseRef,
				"category":    category.Name,
				"amount":      expense.Amount.String(),
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return &expense, nil
}

// Approve moves a PENDING expense to APPROVED. The actor needs the approval
// capability and the amount must sit within their ceiling; an unlimited
// ceiling is a nil pointer.
func (s *Service) Approve(expenseID uuid.UUID, actor types.Actor) (*financeModel.Expense, error) {
	caps := constants.CapabilityFor(actor.Role)
	if !caps.CanApproveExpenses {
		return nil, &types.UnauthorizedError{Role: actor.Role, Action: "approve expense"}
	}

	return s.decide(expenseID, func(tx *gorm.DB, expense *financeModel.Expense) error {
		if caps.ApprovalCeiling != nil && expense.Amount.GreaterThan(*caps.ApprovalCeiling) {
			return &types.ApprovalCeilingError{
				Role:    actor.Role,
				Ceiling: *caps.ApprovalCeiling,
				Amount:  expense.Amount,
			}
		}

		approvedAt := time.Now()
		updates := map[string]interface{}{
			"status":         financeModel.ExpenseApproved,
			"approved_by_id": actor.UserID,
			"approved_at":    approvedAt,
		}
		if err := tx.Model(expense).Updates(updates).Error; err != nil {
			return err
		}
		expense.Status = financeModel.ExpenseApproved
		expense.ApprovedByID = actor.UserID
		expense.ApprovedAt = &approvedAt

		return auditService.Log(tx, auditService.Entry{
			EventType:   "EXPENSE_APPROVED",
			Category:    auditModel.CategoryExpense,
			Actor:       actor,
			TargetTable: financeModel.Expense{}.TableName(),
			TargetID:    &expense.ID,
			Payload: map[string]interface{}{
				"expense_ref": expense.ExpenseRef,
				"amount":      expense.Amount.String(),
			},
		})
	})
}

// Reject moves a PENDING expense to REJECTED. The reason is mandatory.
func (s *Service) Reject(expenseID uuid.UUID, reason string, actor types.Actor) (*financeModel.Expense, error) {
	caps := constants.CapabilityFor(actor.Role)
	if !caps.CanApproveExpenses {
		return nil, &types.UnauthorizedError{Role: actor.Role, Action: "reject expense"}
	}
	if reason == "" {
		return nil, &types.MissingReasonError{Action: "reject expense"}
	}

	return s.decide(expenseID, func(tx *gorm.DB, expense *financeModel.Expense) error {
		updates := map[string]interface{}{
			"status":           financeModel.ExpenseRejected,
			"approved_by_id":   actor.UserID,
			"rejection_reason": reason,
		}
		if err := tx.Model(expense).Updates(updates).Error; err != nil {
			return err
		}
		expense.Status = financeModel.ExpenseRejected
		expense.ApprovedByID = actor.UserID
		expense.RejectionReason = reason

		return auditService.Log(tx, auditService.Entry{
			EventType:   "EXPENSE_REJECTED",
			Category:    auditModel.CategoryExpense,
			Actor:       actor,
			TargetTable: financeModel.Expense{}.TableName(),
			TargetID:    &expense.ID,
			Payload: map[string]interface{}{
				"expense_ref": expense.ExpenseRef,
				"amount":      expense.Amount.String(),
				"reason":      reason,
			},
		})
	})
}

// decide locks the expense, enforces the one-shot PENDING precondition and
// applies the decision atomically.
func (s *Service) decide(expenseID uuid.UUID, fn func(tx *gorm.DB, expense *financeModel.Expense) error) (*financeModel.Expense, error) {
	var expense financeModel.Expense
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := database.LockForUpdate(tx).First(&expense, "id = ?", expenseID).Error; err != nil {
			return err
		}
		if expense.Status != financeModel.ExpensePending {
			return &types.InvalidTransitionError{
				Entity:    "expense",
				ID:        expense.ExpenseRef,
				Current:   expense.Status,
				Attempted: "DECIDED",
			}
		}
		return fn(tx, &expense)
	})
	if err != nil {
		return nil, err
	}
	return &expense, nil
}

func createWithRef(tx *gorm.DB, expense *financeModel.Expense) error {
	for attempt := 0; attempt < refRetries; attempt++ {
		expense.ID = uuid.Nil
		expense.ExpenseRef = utils.GenerateDigitRef(utils.ExpenseRefPrefix, 3)
		err := tx.Create(expense).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("failed to create expense: %w", err)
		}
	}
	return types.ErrContention
}

// ListFilter narrows expense queries.
type ListFilter struct {
	Status     string
	CategoryID *uuid.UUID
	From       time.Time
	To         time.Time
}

// List returns expenses newest first.
func (s *Service) List(filter ListFilter) ([]financeModel.Expense, error) {
	q := s.db.Preload("Category").Order("created_at DESC")
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.CategoryID != nil {
		q = q.Where("category_id = ?", *filter.CategoryID)
	}
	if !filter.From.IsZero() {
		q = q.Where("expense_date >= ?", filter.From)
	}
	if !filter.To.IsZero() {
		q = q.Where("expense_date <= ?", filter.To)
	}
	var expenses []financeModel.Expense
	err := q.Find(&expenses).Error
	return expenses, err
}

// Categories returns the active expense categories.
func (s *Service) Categories() ([]financeModel.ExpenseCategory, error) {
	var categories []financeModel.ExpenseCategory
	err := s.db.Where("is_active = ?", true).Order("name ASC").Find(&categories).Error
	return categories, err
}
