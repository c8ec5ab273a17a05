package finance

import "github.com/shopspring/decimal"

// PaymentRequest records a payment against a booking.
type PaymentRequest struct {
	Amount decimal.Decimal `json:"amount"`
	Method string          `json:"method"`
	Notes  string          `json:"notes,omitempty"`
}

// CorrectionRequest reverses or adjusts a persisted transaction. Amount is
// optional; when omitted the correction is a full reversal of the original.
type CorrectionRequest struct {
	Reason string           `json:"reason"`
	Amount *decimal.Decimal `json:"amount,omitempty"`
}

// ExpenseCreateRequest logs an operational expense for approval.
type ExpenseCreateRequest struct {
	CategoryID  string          `json:"category_id"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	VendorName  string          `json:"vendor_name,omitempty"`
	ExpenseDate string          `json:"expense_date"`
}

// ExpenseRejectRequest carries the mandatory rejection reason.
type ExpenseRejectRequest struct {
	Reason string `json:"reason"`
}

// MaintenanceCreateRequest logs an equipment maintenance entry.
type MaintenanceCreateRequest struct {
	MaintenanceType string          `json:"maintenance_type"`
	Description     string          `json:"description"`
	Vendor          string          `json:"vendor,omitempty"`
	Cost            decimal.Decimal `json:"cost"`
	MaintenanceDate string          `json:"maintenance_date"`
	NextScheduled   string          `json:"next_scheduled,omitempty"`
	Notes           string          `json:"notes,omitempty"`
}
