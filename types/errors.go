package types

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// ErrContention signals a storage-level conflict (row lock timeout, serialization
// failure, or a unique-constraint race such as two check-ins on one room).
// Safe to retry with backoff.
var ErrContention = errors.New("operation conflicted with a concurrent update, retry")

// InvalidTransitionError is returned when a status precondition is not met,
// e.g. checking in a booking that is still PENDING. Never retried automatically.
type InvalidTransitionError struct {
	Entity    string
	ID        string
	Current   string
	Attempted string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("%s %s cannot move from %s to %s", e.Entity, e.ID, e.Current, e.Attempted)
}

// UnauthorizedError is returned when the actor's role lacks the capability
// for the attempted action.
type UnauthorizedError struct {
	Role   string
	Action string
}

func (e *UnauthorizedError) Error() string {
	return fmt.Sprintf("role %s is not allowed to %s", e.Role, e.Action)
}

// ApprovalCeilingError is returned when an expense amount exceeds the
// approver's role ceiling. Such expenses must be escalated to an uncapped role.
type ApprovalCeilingError struct {
	Role    string
	Ceiling decimal.Decimal
	Amount  decimal.Decimal
}

func (e *ApprovalCeilingError) Error() string {
	return fmt.Sprintf("role %s can approve up to %s, expense amount is %s", e.Role, e.Ceiling, e.Amount)
}

// ImmutabilityViolationError is returned on any attempt to update or delete a
// persisted ledger or audit row. Indicates a programming error upstream; the
// only legal corrective action is a new correction entry.
type ImmutabilityViolationError struct {
	Entity string
	ID     string
}

func (e *ImmutabilityViolationError) Error() string {
	return fmt.Sprintf("%s %s is immutable, create a correction entry instead", e.Entity, e.ID)
}

// ValidationError is returned when a required request field is blank or
// malformed before any storage work happens.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s is required", e.Field)
}

// MissingReasonError is returned when a mandatory reason is blank (expense
// rejection, transaction correction).
type MissingReasonError struct {
	Action string
}

func (e *MissingReasonError) Error() string {
	return fmt.Sprintf("a reason is required to %s", e.Action)
}

// StatusForError maps the domain error taxonomy to an HTTP status code so
// controllers render actionable messages without re-deriving state.
func StatusForError(err error) int {
	var (
		invalidTransition *InvalidTransitionError
		unauthorized      *UnauthorizedError
		ceiling           *ApprovalCeilingError
		immutability      *ImmutabilityViolationError
		validation        *ValidationError
		missingReason     *MissingReasonError
	)
	switch {
	case errors.Is(err, ErrContention):
		return fiber.StatusConflict
	case errors.As(err, &invalidTransition):
		return fiber.StatusBadRequest
	case errors.As(err, &unauthorized), errors.As(err, &ceiling):
		return fiber.StatusForbidden
	case errors.As(err, &immutability):
		return fiber.StatusConflict
	case errors.As(err, &validation), errors.As(err, &missingReason):
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}
