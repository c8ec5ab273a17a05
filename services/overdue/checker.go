package overdue

import (
	"strconv"
	"time"

	"gorm.io/gorm"

	"mayor-k/logger"
	auditModel "mayor-k/models/audit"
	bookingModel "mayor-k/models/booking"
	auditService "mayor-k/services/audit"
	bookingService "mayor-k/services/booking"
	ledgerService "mayor-k/services/ledger"
	"mayor-k/types"
)

// DefaultGrace is how far past the expected checkout a stay may run before
// it counts as overdue.
const DefaultGrace = 30 * time.Minute

// AlertWindow rate-limits repeat alerts per booking.
const AlertWindow = time.Hour

// SystemName tags checker actions in the audit log.
const SystemName = "OVERDUE_CHECKER"

// Policy decides what to do with an overdue stay.
type Policy interface {
	Handle(c *Checker, booking *bookingModel.Booking) error
}

// Checker periodically scans for CHECKED_IN bookings past their expected
// checkout plus grace and hands each to the configured policy.
type Checker struct {
	db       *gorm.DB
	bookings *bookingService.Service
	audits   *auditService.Service
	policy   Policy
	grace    time.Duration
}

func NewChecker(db *gorm.DB, bookings *bookingService.Service, audits *auditService.Service, policy Policy, grace time.Duration) *Checker {
	if grace <= 0 {
		grace = DefaultGrace
	}
	if policy == nil {
		policy = AlertOnlyPolicy{}
	}
	return &Checker{db: db, bookings: bookings, audits: audits, policy: policy, grace: grace}
}

// Run performs one sweep and returns how many overdue bookings were handled.
// One failing booking never blocks the rest of the sweep.
func (c *Checker) Run() (int, error) {
	cutoff := time.Now().Add(-c.grace)
	var overdue []bookingModel.Booking
	err := c.db.Where("status = ? AND expected_checkout < ?", bookingModel.StatusCheckedIn, cutoff).
		Order("expected_checkout ASC").
		Find(&overdue).Error
	if err != nil {
		return 0, err
	}

	handled := 0
	for i := range overdue {
		if err := c.policy.Handle(c, &overdue[i]); err != nil {
			logger.Error("overdue handling failed for "+overdue[i].BookingRef, err)
			continue
		}
		handled++
	}
	return handled, nil
}

// Start runs sweeps on the given interval until the stop channel closes.
func (c *Checker) Start(interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if n, err := c.Run(); err != nil {
				logger.Error("overdue sweep failed", err)
			} else if n > 0 {
				logger.Info("overdue sweep handled " + strconv.Itoa(n) + " booking(s)")
			}
		case <-stop:
			return
		}
	}
}

// alert enqueues a rate-limited BOOKING_OVERDUE_ALERT for the booking: at
// most one per booking per AlertWindow. Alerts are best-effort and go through
// the async audit writer so a slow write never stalls the sweep.
func (c *Checker) alert(booking *bookingModel.Booking, amountPaidNote string) error {
	recent, err := c.audits.HasRecent("BOOKING_OVERDUE_ALERT", booking.ID, AlertWindow)
	if err != nil {
		return err
	}
	if recent {
		return nil
	}
	c.audits.LogAsync(auditService.Entry{
		EventType:   "BOOKING_OVERDUE_ALERT",
		Category:    auditModel.CategorySystem,
		Actor:       types.SystemActor(SystemName),
		TargetTable: bookingModel.Booking{}.TableName(),
		TargetID:    &booking.ID,
		Payload: map[string]interface{}{
			"booking_ref":       booking.BookingRef,
			"expected_checkout": booking.ExpectedCheckout.Format(time.RFC3339),
			"note":              amountPaidNote,
		},
	})
	return nil
}

// AlertOnlyPolicy raises a rate-limited alert and leaves the booking alone.
type AlertOnlyPolicy struct{}

func (AlertOnlyPolicy) Handle(c *Checker, booking *bookingModel.Booking) error {
	return c.alert(booking, "manual checkout required")
}

// AutoCheckoutPolicy checks out fully paid overdue stays as the system actor;
// stays with an outstanding balance only get an alert, since money questions
// need a human.
type AutoCheckoutPolicy struct{}

func (AutoCheckoutPolicy) Handle(c *Checker, booking *bookingModel.Booking) error {
	amountPaid, err := ledgerService.AmountPaid(c.db, booking.ID)
	if err != nil {
		return err
	}
	if !booking.IsFullyPaid(amountPaid) {
		return c.alert(booking, "outstanding balance "+booking.BalanceDue(amountPaid).String())
	}
	_, err = c.bookings.CheckOut(booking.ID, types.SystemActor(SystemName))
	return err
}
