package types

import (
	"errors"
	"fmt"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestStatusForError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"contention", ErrContention, fiber.StatusConflict},
		{"wrapped contention", fmt.Errorf("check-in failed: %w", ErrContention), fiber.StatusConflict},
		{"invalid transition", &InvalidTransitionError{Entity: "booking", Current: "PENDING", Attempted: "CHECKED_IN"}, fiber.StatusBadRequest},
		{"unauthorized", &UnauthorizedError{Role: "BAR_STAFF", Action: "approve expense"}, fiber.StatusForbidden},
		{"ceiling", &ApprovalCeilingError{Role: "MANAGER", Ceiling: decimal.NewFromInt(100000), Amount: decimal.NewFromInt(150000)}, fiber.StatusForbidden},
		{"immutability", &ImmutabilityViolationError{Entity: "transaction"}, fiber.StatusConflict},
		{"validation", &ValidationError{Field: "guest_phone"}, fiber.StatusBadRequest},
		{"missing reason", &MissingReasonError{Action: "reject expense"}, fiber.StatusBadRequest},
		{"unknown", errors.New("boom"), fiber.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, StatusForError(tc.err))
		})
	}
}

func TestActorAuditRole(t *testing.T) {
	system := SystemActor("OVERDUE_CHECKER")
	assert.True(t, system.IsSystem())
	assert.Equal(t, "SYSTEM/OVERDUE_CHECKER", system.AuditRole())
}
