package finance

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"mayor-k/logger"
	"mayor-k/middleware"
	ledgerService "mayor-k/services/ledger"
	"mayor-k/types"
	financeTypes "mayor-k/types/finance"
)

// TransactionController exposes the payment ledger over HTTP.
type TransactionController struct {
	Ledger *ledgerService.Service
}

func NewTransactionController(ledger *ledgerService.Service) *TransactionController {
	return &TransactionController{Ledger: ledger}
}

func fail(c *fiber.Ctx, err error, fallback string) error {
	status := types.StatusForError(err)
	message := fallback
	if status != fiber.StatusInternalServerError {
		message = err.Error()
	} else {
		logger.Error(fallback, err)
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		status = fiber.StatusNotFound
		message = "Record not found"
	}
	return c.Status(status).JSON(types.ApiResponse{
		Status:  status,
		Message: message,
	})
}

// RecordPayment appends a confirmed payment for a booking.
func (tc *TransactionController) RecordPayment(c *fiber.Ctx) error {
	bookingID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid booking id",
		})
	}
	var req financeTypes.PaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	txn, err := tc.Ledger.RecordPayment(&bookingID, req.Amount, req.Method,
		middleware.ActorFromCtx(c), req.Notes)
	if err != nil {
		return fail(c, err, "Failed to record payment")
	}
	return c.Status(fiber.StatusCreated).JSON(types.ApiResponse{
		Status:  fiber.StatusCreated,
		Message: "Payment recorded",
		Data:    txn,
	})
}

// History lists a booking's ledger entries, oldest first.
func (tc *TransactionController) History(c *fiber.Ctx) error {
	bookingID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid booking id",
		})
	}
	txns, err := tc.Ledger.History(bookingID)
	if err != nil {
		return fail(c, err, "Failed to fetch transactions")
	}
	return c.JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Transactions fetched",
		Data:    txns,
	})
}

// Correct appends a correction entry against a persisted transaction. The
// original row is never modified.
func (tc *TransactionController) Correct(c *fiber.Ctx) error {
	originalID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid transaction id",
		})
	}
	var req financeTypes.CorrectionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	correction, err := tc.Ledger.CreateCorrection(originalID, req.Reason,
		middleware.ActorFromCtx(c), req.Amount)
	if err != nil {
		return fail(c, err, "Failed to create correction")
	}
	return c.Status(fiber.StatusCreated).JSON(types.ApiResponse{
		Status:  fiber.StatusCreated,
		Message: "Correction recorded",
		Data:    correction,
	})
}

// Show fetches a single ledger entry.
func (tc *TransactionController) Show(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid transaction id",
		})
	}
	txn, err := tc.Ledger.Get(id)
	if err != nil {
		return fail(c, err, "Failed to fetch transaction")
	}
	return c.JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Transaction fetched",
		Data:    txn,
	})
}
