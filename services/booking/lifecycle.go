package booking

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jinzhu/now"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"mayor-k/database"
	auditModel "mayor-k/models/audit"
	bookingModel "mayor-k/models/booking"
	guestModel "mayor-k/models/guest"
	roomModel "mayor-k/models/room"
	auditService "mayor-k/services/audit"
	ledgerService "mayor-k/services/ledger"
	roomService "mayor-k/services/room"
	"mayor-k/types"
	bookingTypes "mayor-k/types/booking"
	"mayor-k/utils"
)

// CheckoutHour is the house checkout time for overnight and lodge stays.
const CheckoutHour = 12

// ShortRestDuration is the slot for a short rest stay.
const ShortRestDuration = 4 * time.Hour

// Extension kinds accepted by Extend.
const (
	ExtendNights         = "NIGHTS"
	ExtendShortOvernight = "SHORT_TO_OVERNIGHT"
)

const refRetries = 3

// Service drives the booking lifecycle. On check-in/check-out it drives the
// room state machine, on payment it appends to the ledger, and every
// transition lands in the audit log. Each composite runs as one storage
// transaction.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// noonOn returns the checkout hour on t's day.
func noonOn(t time.Time) time.Time {
	return now.With(t).BeginningOfDay().Add(CheckoutHour * time.Hour)
}

// resolveGuest finds or creates the guest for a booking. The phone is the
// guest identity key, so a blank phone must be rejected before the lookup:
// a zero-value struct condition would match an arbitrary existing guest.
func resolveGuest(tx *gorm.DB, name, phone string) (*guestModel.Guest, error) {
	if phone == "" {
		return nil, &types.ValidationError{Field: "guest_phone"}
	}
	if name == "" {
		return nil, &types.ValidationError{Field: "guest_name"}
	}
	guest := guestModel.Guest{Phone: phone, Name: name}
	if err := tx.Where("phone = ?", phone).FirstOrCreate(&guest).Error; err != nil {
		return nil, err
	}
	return &guest, nil
}

// stayTiming computes the nightly rate and expected checkout for a stay
// starting now.
func stayTiming(rt *roomModel.RoomType, stayType string, numNights int, start time.Time) (decimal.Decimal, time.Time, error) {
	switch stayType {
	case bookingModel.StayShortRest:
		return rt.BaseRateShortRest, start.Add(ShortRestDuration), nil
	case bookingModel.StayOvernight:
		return rt.BaseRateOvernight, noonOn(start).AddDate(0, 0, 1), nil
	case bookingModel.StayLodge:
		rate := rt.BaseRateOvernight
		if rt.BaseRateLodge != nil {
			rate = *rt.BaseRateLodge
		}
		return rate, noonOn(start).AddDate(0, 0, numNights), nil
	default:
		return decimal.Zero, time.Time{}, fmt.Errorf("unknown stay type %q", stayType)
	}
}

// QuickBook is the walk-in fast path: resolve the guest by phone, create the
// booking directly CHECKED_IN, occupy the room, record the first payment and
// log the event, all in one atomic unit. The room row is locked while its
// availability is checked so two concurrent quick-books cannot double-book.
func (s *Service) QuickBook(req bookingTypes.QuickBookRequest, actor types.Actor) (*bookingModel.Booking, error) {
	roomID, err := uuid.Parse(req.RoomID)
	if err != nil {
		return nil, fmt.Errorf("invalid room id: %w", err)
	}
	if !bookingModel.ValidStayType(req.StayType) {
		return nil, fmt.Errorf("unknown stay type %q", req.StayType)
	}
	numNights := req.NumNights
	if numNights < 1 {
		numNights = 1
	}
	numGuests := req.NumGuests
	if numGuests < 1 {
		numGuests = 1
	}

	var booking bookingModel.Booking
	err = s.db.Transaction(func(tx *gorm.DB) error {
		var room roomModel.Room
		if err := database.LockForUpdate(tx).First(&room, "id = ?", roomID).Error; err != nil {
			return err
		}
		if !room.IsAvailable() {
			return &types.InvalidTransitionError{
				Entity:    "room",
				ID:        room.RoomNumber,
				Current:   room.CurrentState,
				Attempted: roomModel.StateOccupied,
			}
		}
		var roomType roomModel.RoomType
		if err := tx.First(&roomType, "id = ?", room.RoomTypeID).Error; err != nil {
			return err
		}

		guest, err := resolveGuest(tx, req.GuestName, req.GuestPhone)
		if err != nil {
			return err
		}

		checkInAt := time.Now()
		rate, expectedCheckout, err := stayTiming(&roomType, req.StayType, numNights, checkInAt)
		if err != nil {
			return err
		}
		total := rate.Mul(decimal.NewFromInt(int64(numNights)))

		booking = bookingModel.Booking{
			GuestID:          guest.ID,
			RoomID:           room.ID,
			StayType:         req.StayType,
			Status:           bookingModel.StatusCheckedIn,
			Source:           bookingModel.SourceWalkIn,
			CheckInDate:      now.With(checkInAt).BeginningOfDay(),
			CheckInTime:      &checkInAt,
			ExpectedCheckout: expectedCheckout,
			NumNights:        uint(numNights),
			NumGuests:        uint(numGuests),
			RoomRate:         rate,
			TotalAmount:      total,
			DiscountAmount:   req.DiscountAmount,
			DiscountReason:   req.DiscountReason,
			Notes:            req.Notes,
			CreatedByID:      actor.UserID,
		}
		if err := createWithRef(tx, &booking); err != nil {
			return err
		}

		if err := roomService.ChangeStateTx(tx, &room, roomModel.StateOccupied, actor,
			"Booking "+booking.BookingRef); err != nil {
			return err
		}

		if req.AmountPaid.GreaterThan(decimal.Zero) {
			if _, err := ledgerService.RecordPaymentTx(tx, &booking.ID, req.AmountPaid,
				req.PaymentMethod, actor, "Walk-in booking "+booking.BookingRef); err != nil {
				return err
			}
		}

		return auditService.Log(tx, auditService.Entry{
			EventType:   "BOOKING_QUICK_CREATED",
			Category:    auditModel.CategoryBooking,
			Actor:       actor,
			TargetTable: bookingModel.Booking{}.TableName(),
			TargetID:    &booking.ID,
			Payload: map[string]interface{}{
				"booking_ref": booking.BookingRef,
				"guest":       guest.Name,
				"room":        room.RoomNumber,
				"total":       total.String(),
				"paid":        req.AmountPaid.String(),
			},
		})
	})
	if err != nil {
		return nil, translateConflict(err)
	}
	return &booking, nil
}

// Create makes an advance booking in PENDING. Nothing about the room changes
// until check-in.
func (s *Service) Create(req bookingTypes.CreateBookingRequest, actor types.Actor) (*bookingModel.Booking, error) {
	roomID, err := uuid.Parse(req.RoomID)
	if err != nil {
		return nil, fmt.Errorf("invalid room id: %w", err)
	}
	if !bookingModel.ValidStayType(req.StayType) {
		return nil, fmt.Errorf("unknown stay type %q", req.StayType)
	}
	checkInDate, err := time.Parse("2006-01-02", req.CheckInDate)
	if err != nil {
		return nil, fmt.Errorf("invalid check-in date: %w", err)
	}
	numNights := req.NumNights
	if numNights < 1 {
		numNights = 1
	}
	numGuests := req.NumGuests
	if numGuests < 1 {
		numGuests = 1
	}
	source := req.Source
	if source == "" {
		source = bookingModel.SourcePhone
	}

	var booking bookingModel.Booking
	err = s.db.Transaction(func(tx *gorm.DB) error {
		var room roomModel.Room
		if err := tx.Preload("RoomType").First(&room, "id = ?", roomID).Error; err != nil {
			return err
		}

		guest, err := resolveGuest(tx, req.GuestName, req.GuestPhone)
		if err != nil {
			return err
		}

		rate, expectedCheckout, err := stayTiming(&room.RoomType, req.StayType, numNights, checkInDate)
		if err != nil {
			return err
		}
		total := rate.Mul(decimal.NewFromInt(int64(numNights)))

		booking = bookingModel.Booking{
			GuestID:          guest.ID,
			RoomID:           room.ID,
			StayType:         req.StayType,
			Status:           bookingModel.StatusPending,
			Source:           source,
			CheckInDate:      checkInDate,
			ExpectedCheckout: expectedCheckout,
			NumNights:        uint(numNights),
			NumGuests:        uint(numGuests),
			RoomRate:         rate,
			TotalAmount:      total,
			DiscountAmount:   req.DiscountAmount,
			DiscountReason:   req.DiscountReason,
			Notes:            req.Notes,
			CreatedByID:      actor.UserID,
		}
		if err := createWithRef(tx, &booking); err != nil {
			return err
		}

		return auditService.Log(tx, auditService.Entry{
			EventType:   "BOOKING_CREATED",
			Category:    auditModel.CategoryBooking,
			Actor:       actor,
			TargetTable: bookingModel.Booking{}.TableName(),
			TargetID:    &booking.ID,
			Payload: map[string]interface{}{
				"booking_ref": booking.BookingRef,
				"guest":       guest.Name,
				"room":        room.RoomNumber,
				"total":       total.String(),
			},
		})
	})
	if err != nil {
		return nil, translateConflict(err)
	}
	return &booking, nil
}

// Confirm moves a PENDING booking to CONFIRMED once payment is secured.
func (s *Service) Confirm(bookingID uuid.UUID, actor types.Actor) (*bookingModel.Booking, error) {
	return s.transition(bookingID, actor, func(tx *gorm.DB, b *bookingModel.Booking) error {
		if b.Status != bookingModel.StatusPending {
			return &types.InvalidTransitionError{
				Entity:    "booking",
				ID:        b.BookingRef,
				Current:   b.Status,
				Attempted: bookingModel.StatusConfirmed,
			}
		}
		if err := tx.Model(b).Update("status", bookingModel.StatusConfirmed).Error; err != nil {
			return err
		}
		b.Status = bookingModel.StatusConfirmed
		return s.logBookingEvent(tx, b, "BOOKING_CONFIRMED", actor, nil)
	})
}

// CheckIn moves a CONFIRMED booking to CHECKED_IN and occupies the room. The
// room row is locked for the availability check; the partial unique index on
// bookings(room_id) WHERE status='CHECKED_IN' backstops any race that slips
// past the lock.
func (s *Service) CheckIn(bookingID uuid.UUID, actor types.Actor) (*bookingModel.Booking, error) {
	return s.transition(bookingID, actor, func(tx *gorm.DB, b *bookingModel.Booking) error {
		if b.Status != bookingModel.StatusConfirmed {
			return &types.InvalidTransitionError{
				Entity:    "booking",
				ID:        b.BookingRef,
				Current:   b.Status,
				Attempted: bookingModel.StatusCheckedIn,
			}
		}

		var room roomModel.Room
		if err := database.LockForUpdate(tx).First(&room, "id = ?", b.RoomID).Error; err != nil {
			return err
		}
		if !room.IsAvailable() {
			return &types.InvalidTransitionError{
				Entity:    "room",
				ID:        room.RoomNumber,
				Current:   room.CurrentState,
				Attempted: roomModel.StateOccupied,
			}
		}

		checkInAt := time.Now()
		updates := map[string]interface{}{
			"status":        bookingModel.StatusCheckedIn,
			"check_in_time": checkInAt,
		}
		if err := tx.Model(b).Updates(updates).Error; err != nil {
			return err
		}
		b.Status = bookingModel.StatusCheckedIn
		b.CheckInTime = &checkInAt

		if err := roomService.ChangeStateTx(tx, &room, roomModel.StateOccupied, actor,
			"Booking "+b.BookingRef); err != nil {
			return err
		}

		return s.logBookingEvent(tx, b, "BOOKING_CHECKED_IN", actor, map[string]interface{}{
			"room": room.RoomNumber,
		})
	})
}

// CheckOut closes a CHECKED_IN booking: the room goes DIRTY (a checked-out
// room is never immediately available), the guest's stay count and spend
// aggregates grow by the ledger-derived paid total, and the event is logged.
func (s *Service) CheckOut(bookingID uuid.UUID, actor types.Actor) (*bookingModel.Booking, error) {
	return s.transition(bookingID, actor, func(tx *gorm.DB, b *bookingModel.Booking) error {
		if b.Status != bookingModel.StatusCheckedIn {
			return &types.InvalidTransitionError{
				Entity:    "booking",
				ID:        b.BookingRef,
				Current:   b.Status,
				Attempted: bookingModel.StatusCheckedOut,
			}
		}

		var room roomModel.Room
		if err := database.LockForUpdate(tx).First(&room, "id = ?", b.RoomID).Error; err != nil {
			return err
		}

		checkedOutAt := time.Now()
		updates := map[string]interface{}{
			"status":          bookingModel.StatusCheckedOut,
			"actual_checkout": checkedOutAt,
		}
		if err := tx.Model(b).Updates(updates).Error; err != nil {
			return err
		}
		b.Status = bookingModel.StatusCheckedOut
		b.ActualCheckout = &checkedOutAt

		if err := roomService.ChangeStateTx(tx, &room, roomModel.StateDirty, actor,
			"Checkout "+b.BookingRef); err != nil {
			return err
		}

		amountPaid, err := ledgerService.AmountPaid(tx, b.ID)
		if err != nil {
			return err
		}

		var guest guestModel.Guest
		if err := database.LockForUpdate(tx).First(&guest, "id = ?", b.GuestID).Error; err != nil {
			return err
		}
		guestUpdates := map[string]interface{}{
			"total_stays": guest.TotalStays + 1,
			"total_spent": guest.TotalSpent.Add(amountPaid),
		}
		if err := tx.Model(&guest).Updates(guestUpdates).Error; err != nil {
			return err
		}

		return s.logBookingEvent(tx, b, "BOOKING_CHECKED_OUT", actor, map[string]interface{}{
			"room":       room.RoomNumber,
			"total_paid": amountPaid.String(),
		})
	})
}

// Extend pushes a CHECKED_IN booking's checkout. Either add nights at the
// overnight rate, or convert a short rest to an overnight stay. Each call
// appends an immutable extension record and raises the total; collecting the
// extra payment is a separate ledger call.
func (s *Service) Extend(bookingID uuid.UUID, req bookingTypes.ExtendRequest, actor types.Actor) (*bookingModel.Booking, error) {
	return s.transition(bookingID, actor, func(tx *gorm.DB, b *bookingModel.Booking) error {
		if b.Status != bookingModel.StatusCheckedIn {
			return &types.InvalidTransitionError{
				Entity:    "booking",
				ID:        b.BookingRef,
				Current:   b.Status,
				Attempted: "EXTENDED",
			}
		}

		var room roomModel.Room
		if err := tx.Preload("RoomType").First(&room, "id = ?", b.RoomID).Error; err != nil {
			return err
		}

		originalCheckout := b.ExpectedCheckout
		var (
			newCheckout      time.Time
			additionalAmount decimal.Decimal
			additionalNights uint
			updates          = map[string]interface{}{}
		)

		switch req.Kind {
		case ExtendNights:
			nights := req.AdditionalNights
			if nights < 1 {
				nights = 1
			}
			additionalNights = uint(nights)
			additionalAmount = room.RoomType.BaseRateOvernight.Mul(decimal.NewFromInt(int64(nights)))
			newCheckout = originalCheckout.AddDate(0, 0, nights)
			updates["num_nights"] = b.NumNights + additionalNights
		case ExtendShortOvernight:
			if b.StayType != bookingModel.StayShortRest {
				return &types.InvalidTransitionError{
					Entity:    "booking",
					ID:        b.BookingRef,
					Current:   b.StayType,
					Attempted: bookingModel.StayOvernight,
				}
			}
			diff := room.RoomType.BaseRateOvernight.Sub(room.RoomType.BaseRateShortRest)
			additionalAmount = decimal.Max(diff, decimal.Zero)
			newCheckout = noonOn(time.Now()).AddDate(0, 0, 1)
			updates["stay_type"] = bookingModel.StayOvernight
			b.StayType = bookingModel.StayOvernight
		default:
			return fmt.Errorf("unknown extension kind %q", req.Kind)
		}

		extension := bookingModel.BookingExtension{
			BookingID:        b.ID,
			OriginalCheckout: originalCheckout,
			NewCheckout:      newCheckout,
			AdditionalNights: additionalNights,
			AdditionalAmount: additionalAmount,
			ApprovedByID:     actor.UserID,
		}
		if err := tx.Create(&extension).Error; err != nil {
			return err
		}

		newTotal := b.TotalAmount.Add(additionalAmount)
		updates["expected_checkout"] = newCheckout
		updates["total_amount"] = newTotal
		if err := tx.Model(b).Updates(updates).Error; err != nil {
			return err
		}
		b.ExpectedCheckout = newCheckout
		b.TotalAmount = newTotal

		return s.logBookingEvent(tx, b, "BOOKING_EXTENDED", actor, map[string]interface{}{
			"kind":              req.Kind,
			"original_checkout": originalCheckout.Format(time.RFC3339),
			"new_checkout":      newCheckout.Format(time.RFC3339),
			"additional_amount": additionalAmount.String(),
		})
	})
}

// Cancel moves a PENDING/CONFIRMED booking to the terminal CANCELLED state.
func (s *Service) Cancel(bookingID uuid.UUID, actor types.Actor, reason string) (*bookingModel.Booking, error) {
	return s.close(bookingID, actor, bookingModel.StatusCancelled, "BOOKING_CANCELLED", reason)
}

// NoShow marks a PENDING/CONFIRMED booking as a no-show.
func (s *Service) NoShow(bookingID uuid.UUID, actor types.Actor, reason string) (*bookingModel.Booking, error) {
	return s.close(bookingID, actor, bookingModel.StatusNoShow, "BOOKING_NO_SHOW", reason)
}

func (s *Service) close(bookingID uuid.UUID, actor types.Actor, target, eventType, reason string) (*bookingModel.Booking, error) {
	return s.transition(bookingID, actor, func(tx *gorm.DB, b *bookingModel.Booking) error {
		if !bookingModel.CanCancel(b.Status) {
			return &types.InvalidTransitionError{
				Entity:    "booking",
				ID:        b.BookingRef,
				Current:   b.Status,
				Attempted: target,
			}
		}
		if err := tx.Model(b).Update("status", target).Error; err != nil {
			return err
		}
		b.Status = target
		return s.logBookingEvent(tx, b, eventType, actor, map[string]interface{}{
			"reason": reason,
		})
	})
}

// transition runs fn against the booking row locked inside one transaction.
func (s *Service) transition(bookingID uuid.UUID, actor types.Actor, fn func(tx *gorm.DB, b *bookingModel.Booking) error) (*bookingModel.Booking, error) {
	var booking bookingModel.Booking
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := database.LockForUpdate(tx).First(&booking, "id = ?", bookingID).Error; err != nil {
			return err
		}
		return fn(tx, &booking)
	})
	if err != nil {
		return nil, translateConflict(err)
	}
	return &booking, nil
}

func (s *Service) logBookingEvent(tx *gorm.DB, b *bookingModel.Booking, eventType string, actor types.Actor, extra map[string]interface{}) error {
	payload := map[string]interface{}{
		"booking_ref": b.BookingRef,
	}
	for k, v := range extra {
		payload[k] = v
	}
	return auditService.Log(tx, auditService.Entry{
		EventType:   eventType,
		Category:    auditModel.CategoryBooking,
		Actor:       actor,
		TargetTable: bookingModel.Booking{}.TableName(),
		TargetID:    &b.ID,
		Payload:     payload,
	})
}

// createWithRef persists the booking, regenerating the reference on a
// unique-constraint collision.
func createWithRef(tx *gorm.DB, b *bookingModel.Booking) error {
	for attempt := 0; attempt < refRetries; attempt++ {
		b.ID = uuid.Nil
		b.BookingRef = utils.GenerateRef(utils.BookingRefPrefix, 4)
		err := tx.Create(b).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("failed to create booking: %w", err)
		}
	}
	return types.ErrContention
}

// translateConflict maps storage conflicts (the check-in guard index, lock
// timeouts) to the retryable contention error.
func translateConflict(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return types.ErrContention
	}
	return err
}

// Balance is the money view of a booking with the ledger-derived paid total.
type Balance struct {
	Booking    *bookingModel.Booking `json:"booking"`
	AmountPaid decimal.Decimal       `json:"amount_paid"`
	BalanceDue decimal.Decimal       `json:"balance_due"`
	FullyPaid  bool                  `json:"fully_paid"`
}

// BalanceFor loads a booking with its derived balance.
func (s *Service) BalanceFor(bookingID uuid.UUID) (*Balance, error) {
	var booking bookingModel.Booking
	if err := s.db.Preload("Guest").Preload("Room").First(&booking, "id = ?", bookingID).Error; err != nil {
		return nil, err
	}
	amountPaid, err := ledgerService.AmountPaid(s.db, booking.ID)
	if err != nil {
		return nil, err
	}
	return &Balance{
		Booking:    &booking,
		AmountPaid: amountPaid,
		BalanceDue: booking.BalanceDue(amountPaid),
		FullyPaid:  booking.IsFullyPaid(amountPaid),
	}, nil
}

// ByRef loads a booking by its reference code.
func (s *Service) ByRef(ref string) (*bookingModel.Booking, error) {
	var booking bookingModel.Booking
	if err := s.db.Preload("Guest").Preload("Room").
		First(&booking, "booking_ref = ?", ref).Error; err != nil {
		return nil, err
	}
	return &booking, nil
}

// Extensions returns a booking's extension history, oldest first.
func (s *Service) Extensions(bookingID uuid.UUID) ([]bookingModel.BookingExtension, error) {
	var extensions []bookingModel.BookingExtension
	err := s.db.Where("booking_id = ?", bookingID).
		Order("created_at ASC").
		Find(&extensions).Error
	return extensions, err
}
