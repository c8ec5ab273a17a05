package ledger

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	auditModel "mayor-k/models/audit"
	financeModel "mayor-k/models/finance"
	auditService "mayor-k/services/audit"
	"mayor-k/types"
	"mayor-k/utils"
)

const refRetries = 3

// Service is the immutable financial ledger. Rows are only ever appended;
// booking balances are derived by summing them, so there is no cache that a
// correction could leave stale.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// RecordPayment appends a CONFIRMED PAYMENT transaction for a booking.
func (s *Service) RecordPayment(bookingID *uuid.UUID, amount decimal.Decimal, method string, actor types.Actor, notes string) (*financeModel.Transaction, error) {
	var txn *financeModel.Transaction
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		txn, err = RecordPaymentTx(tx, bookingID, amount, method, actor, notes)
		return err
	})
	if err != nil {
		return nil, err
	}
	return txn, nil
}

// RecordPaymentTx is RecordPayment inside an existing transaction, for
// composition with the walk-in booking flow.
func RecordPaymentTx(tx *gorm.DB, bookingID *uuid.UUID, amount decimal.Decimal, method string, actor types.Actor, notes string) (*financeModel.Transaction, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("payment amount must be positive, got %s", amount)
	}

	txn := financeModel.Transaction{
		BookingID:       bookingID,
		TransactionType: financeModel.TypePayment,
		PaymentMethod:   method,
		Status:          financeModel.StatusConfirmed,
		Amount:          amount,
		ProcessedByID:   actor.UserID,
		ActorRole:       actor.AuditRole(),
		Notes:           notes,
	}
	if err := createWithRef(tx, &txn); err != nil {
		return nil, err
	}

	err := auditService.Log(tx, auditService.Entry{
		EventType:   "PAYMENT_RECORDED",
		Category:    auditModel.CategoryPayment,
		Actor:       actor,
		TargetTable: financeModel.Transaction{}.TableName(),
		TargetID:    &txn.ID,
		Payload: map[string]interface{}{
			"transaction_ref": txn.TransactionRef,
			"amount":          amount.String(),
			"method":          method,
		},
	})
	if err != nil {
		return nil, err
	}
	return &txn, nil
}

// CreateCorrection appends a CORRECTION transaction pointing at the original,
// which stays untouched. Without an explicit amount the correction is a full
// reversal (amount = −original.amount).
func (s *Service) CreateCorrection(originalID uuid.UUID, reason string, actor types.Actor, newAmount *decimal.Decimal) (*financeModel.Transaction, error) {
	if reason == "" {
		return nil, &types.MissingReasonError{Action: "correct a transaction"}
	}

	var correction financeModel.Transaction
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var original financeModel.Transaction
		if err := tx.First(&original, "id = ?", originalID).Error; err != nil {
			return err
		}

		amount := original.Amount.Neg()
		if newAmount != nil {
			amount = *newAmount
		}

		correction = financeModel.Transaction{
			BookingID:             original.BookingID,
			TransactionType:       financeModel.TypeCorrection,
			PaymentMethod:         original.PaymentMethod,
			Status:                financeModel.StatusConfirmed,
			Amount:                amount,
			OriginalTransactionID: &original.ID,
			CorrectionReason:      reason,
			ProcessedByID:         actor.UserID,
			ActorRole:             actor.AuditRole(),
			Notes:                 fmt.Sprintf("Correction for %s: %s", original.TransactionRef, reason),
		}
		if err := createWithRef(tx, &correction); err != nil {
			return err
		}

		return auditService.Log(tx, auditService.Entry{
			EventType:   "TRANSACTION_CORRECTED",
			Category:    auditModel.CategoryPayment,
			Actor:       actor,
			TargetTable: financeModel.Transaction{}.TableName(),
			TargetID:    &correction.ID,
			Payload: map[string]interface{}{
				"original_ref":      original.TransactionRef,
				"correction_ref":    correction.TransactionRef,
				"reason":            reason,
				"original_amount":   original.Amount.String(),
				"correction_amount": correction.Amount.String(),
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return &correction, nil
}

// createWithRef persists the transaction, regenerating the reference code on
// a unique-constraint collision instead of failing.
func createWithRef(tx *gorm.DB, txn *financeModel.Transaction) error {
	for attempt := 0; attempt < refRetries; attempt++ {
		txn.ID = uuid.Nil
		txn.TransactionRef = utils.GenerateRef(utils.TransactionRefPrefix, 5)
		err := tx.Create(txn).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("failed to create transaction: %w", err)
		}
	}
	return types.ErrContention
}

// AmountPaid derives the paid total for a booking from CONFIRMED ledger rows:
// payments add, refunds and corrections subtract via their signed amounts.
// Runs inside whatever transaction the caller holds.
func AmountPaid(tx *gorm.DB, bookingID uuid.UUID) (decimal.Decimal, error) {
	var rows []financeModel.Transaction
	err := tx.Where("booking_id = ? AND status = ?", bookingID, financeModel.StatusConfirmed).
		Find(&rows).Error
	if err != nil {
		return decimal.Zero, err
	}

	total := decimal.Zero
	for _, row := range rows {
		switch row.TransactionType {
		case financeModel.TypePayment:
			total = total.Add(row.Amount)
		case financeModel.TypeRefund:
			total = total.Sub(row.Amount.Abs())
		case financeModel.TypeCorrection:
			// Corrections carry signed amounts; a full reversal is negative.
			total = total.Add(row.Amount)
		}
	}
	return total, nil
}

// AmountPaid is the read-side entry point for callers without a transaction.
func (s *Service) AmountPaid(bookingID uuid.UUID) (decimal.Decimal, error) {
	return AmountPaid(s.db, bookingID)
}

// History returns all transactions for a booking, newest first.
func (s *Service) History(bookingID uuid.UUID) ([]financeModel.Transaction, error) {
	var rows []financeModel.Transaction
	err := s.db.Where("booking_id = ?", bookingID).
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}

// Get loads a single transaction.
func (s *Service) Get(id uuid.UUID) (*financeModel.Transaction, error) {
	var txn financeModel.Transaction
	if err := s.db.First(&txn, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &txn, nil
}
