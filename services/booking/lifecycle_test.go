package booking

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"mayor-k/constants"
	"mayor-k/database"
	auditModel "mayor-k/models/audit"
	bookingModel "mayor-k/models/booking"
	guestModel "mayor-k/models/guest"
	roomModel "mayor-k/models/room"
	ledgerService "mayor-k/services/ledger"
	roomService "mayor-k/services/room"
	"mayor-k/types"
	bookingTypes "mayor-k/types/booking"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.AutoMigrateAll(db))
	return db
}

func seedRoom(t *testing.T, db *gorm.DB, number string) *roomModel.Room {
	t.Helper()
	lodgeRate := decimal.NewFromInt(12000)
	roomType := roomModel.RoomType{
		Name:              "Standard " + number,
		BaseRateShortRest: decimal.NewFromInt(5000),
		BaseRateOvernight: decimal.NewFromInt(15000),
		BaseRateLodge:     &lodgeRate,
		IsActive:          true,
	}
	require.NoError(t, db.Create(&roomType).Error)
	room := roomModel.Room{
		RoomNumber:   number,
		RoomTypeID:   roomType.ID,
		CurrentState: roomModel.StateAvailable,
		IsActive:     true,
	}
	require.NoError(t, db.Create(&room).Error)
	return &room
}

func receptionist() types.Actor {
	return types.HumanActor(uuid.New(), constants.RoleReceptionist)
}

func quickBookReq(room *roomModel.Room) bookingTypes.QuickBookRequest {
	return bookingTypes.QuickBookRequest{
		GuestName:     "Ada Obi",
		GuestPhone:    "08030000001",
		RoomID:        room.ID.String(),
		StayType:      bookingModel.StayOvernight,
		NumNights:     1,
		PaymentMethod: "CASH",
		AmountPaid:    decimal.NewFromInt(15000),
	}
}

func TestQuickBookChecksInAndOccupiesRoom(t *testing.T) {
	db := setupDB(t)
	svc := NewService(db)
	room := seedRoom(t, db, "101")

	booking, err := svc.QuickBook(quickBookReq(room), receptionist())
	require.NoError(t, err)

	assert.Equal(t, bookingModel.StatusCheckedIn, booking.Status)
	assert.NotNil(t, booking.CheckInTime)
	assert.Regexp(t, `^MK-\d{6}-[A-Z0-9]{4}$`, booking.BookingRef)
	assert.True(t, booking.TotalAmount.Equal(decimal.NewFromInt(15000)))

	var updatedRoom roomModel.Room
	require.NoError(t, db.First(&updatedRoom, "id = ?", room.ID).Error)
	assert.Equal(t, roomModel.StateOccupied, updatedRoom.CurrentState)

	// Guest resolved by phone, payment in the ledger, events in the log.
	var guest guestModel.Guest
	require.NoError(t, db.First(&guest, "phone = ?", "08030000001").Error)

	paid, err := ledgerService.AmountPaid(db, booking.ID)
	require.NoError(t, err)
	assert.True(t, paid.Equal(decimal.NewFromInt(15000)))

	var bookingEvents int64
	require.NoError(t, db.Model(&auditModel.SystemEvent{}).
		Where("event_type = ?", "BOOKING_QUICK_CREATED").Count(&bookingEvents).Error)
	assert.EqualValues(t, 1, bookingEvents)
}

func TestQuickBookRequiresGuestIdentity(t *testing.T) {
	db := setupDB(t)
	svc := NewService(db)
	room := seedRoom(t, db, "105")

	// An unrelated guest already on file must never absorb the booking.
	existing := guestModel.Guest{Name: "Existing Guest", Phone: "08011111111"}
	require.NoError(t, db.Create(&existing).Error)

	req := quickBookReq(room)
	req.GuestPhone = ""
	_, err := svc.QuickBook(req, receptionist())
	var validation *types.ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, "guest_phone", validation.Field)

	req = quickBookReq(room)
	req.GuestName = ""
	_, err = svc.QuickBook(req, receptionist())
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, "guest_name", validation.Field)

	var bookings int64
	require.NoError(t, db.Model(&bookingModel.Booking{}).
		Where("guest_id = ?", existing.ID).Count(&bookings).Error)
	assert.EqualValues(t, 0, bookings)

	var reloadedRoom roomModel.Room
	require.NoError(t, db.First(&reloadedRoom, "id = ?", room.ID).Error)
	assert.Equal(t, roomModel.StateAvailable, reloadedRoom.CurrentState)
}

func TestQuickBookRejectsUnavailableRoom(t *testing.T) {
	db := setupDB(t)
	svc := NewService(db)
	room := seedRoom(t, db, "102")

	_, err := svc.QuickBook(quickBookReq(room), receptionist())
	require.NoError(t, err)

	// Room is now OCCUPIED; a second walk-in must fail without side effects.
	req := quickBookReq(room)
	req.GuestPhone = "08030000002"
	_, err = svc.QuickBook(req, receptionist())
	var invalid *types.InvalidTransitionError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "room", invalid.Entity)

	var count int64
	require.NoError(t, db.Model(&bookingModel.Booking{}).
		Where("room_id = ?", room.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
	var guestCount int64
	require.NoError(t, db.Model(&guestModel.Guest{}).
		Where("phone = ?", "08030000002").Count(&guestCount).Error)
	assert.EqualValues(t, 0, guestCount, "rolled-back booking must not leave a guest behind")
}

func TestCreateRequiresGuestPhone(t *testing.T) {
	db := setupDB(t)
	svc := NewService(db)
	room := seedRoom(t, db, "106")

	_, err := svc.Create(bookingTypes.CreateBookingRequest{
		GuestName:   "Bola Ade",
		GuestPhone:  "",
		RoomID:      room.ID.String(),
		StayType:    bookingModel.StayOvernight,
		CheckInDate: time.Now().Format("2006-01-02"),
		NumNights:   1,
	}, receptionist())
	var validation *types.ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, "guest_phone", validation.Field)

	var bookings int64
	require.NoError(t, db.Model(&bookingModel.Booking{}).Count(&bookings).Error)
	assert.EqualValues(t, 0, bookings)
}

func TestCheckInRequiresConfirmed(t *testing.T) {
	db := setupDB(t)
	svc := NewService(db)
	room := seedRoom(t, db, "103")
	actor := receptionist()

	booking, err := svc.Create(bookingTypes.CreateBookingRequest{
		GuestName:   "Bola Ade",
		GuestPhone:  "08030000003",
		RoomID:      room.ID.String(),
		StayType:    bookingModel.StayOvernight,
		CheckInDate: time.Now().Format("2006-01-02"),
		NumNights:   1,
	}, actor)
	require.NoError(t, err)
	assert.Equal(t, bookingModel.StatusPending, booking.Status)

	_, err = svc.CheckIn(booking.ID, actor)
	var invalid *types.InvalidTransitionError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, bookingModel.StatusPending, invalid.Current)

	// Neither booking nor room moved.
	var reloaded bookingModel.Booking
	require.NoError(t, db.First(&reloaded, "id = ?", booking.ID).Error)
	assert.Equal(t, bookingModel.StatusPending, reloaded.Status)
	var updatedRoom roomModel.Room
	require.NoError(t, db.First(&updatedRoom, "id = ?", room.ID).Error)
	assert.Equal(t, roomModel.StateAvailable, updatedRoom.CurrentState)
}

func TestConfirmThenCheckInFlow(t *testing.T) {
	db := setupDB(t)
	svc := NewService(db)
	room := seedRoom(t, db, "104")
	actor := receptionist()

	booking, err := svc.Create(bookingTypes.CreateBookingRequest{
		GuestName:   "Chi Eze",
		GuestPhone:  "08030000004",
		RoomID:      room.ID.String(),
		StayType:    bookingModel.StayOvernight,
		CheckInDate: time.Now().Format("2006-01-02"),
		NumNights:   1,
	}, actor)
	require.NoError(t, err)

	confirmed, err := svc.Confirm(booking.ID, actor)
	require.NoError(t, err)
	assert.Equal(t, bookingModel.StatusConfirmed, confirmed.Status)

	checkedIn, err := svc.CheckIn(booking.ID, actor)
	require.NoError(t, err)
	assert.Equal(t, bookingModel.StatusCheckedIn, checkedIn.Status)
	require.NotNil(t, checkedIn.CheckInTime)

	var updatedRoom roomModel.Room
	require.NoError(t, db.First(&updatedRoom, "id = ?", room.ID).Error)
	assert.Equal(t, roomModel.StateOccupied, updatedRoom.CurrentState)
}

func TestCheckOutMarksRoomDirtyAndUpdatesGuest(t *testing.T) {
	db := setupDB(t)
	svc := NewService(db)
	room := seedRoom(t, db, "105")
	actor := receptionist()

	booking, err := svc.QuickBook(quickBookReq(room), actor)
	require.NoError(t, err)

	checkedOut, err := svc.CheckOut(booking.ID, actor)
	require.NoError(t, err)
	assert.Equal(t, bookingModel.StatusCheckedOut, checkedOut.Status)
	require.NotNil(t, checkedOut.ActualCheckout)

	var updatedRoom roomModel.Room
	require.NoError(t, db.First(&updatedRoom, "id = ?", room.ID).Error)
	assert.Equal(t, roomModel.StateDirty, updatedRoom.CurrentState)

	var guest guestModel.Guest
	require.NoError(t, db.First(&guest, "id = ?", booking.GuestID).Error)
	assert.EqualValues(t, 1, guest.TotalStays)
	assert.True(t, guest.TotalSpent.Equal(decimal.NewFromInt(15000)), "got %s", guest.TotalSpent)

	// Checked out is terminal.
	_, err = svc.CheckOut(booking.ID, actor)
	var invalid *types.InvalidTransitionError
	require.ErrorAs(t, err, &invalid)
}

func TestExtendAddsNightsAtOvernightRate(t *testing.T) {
	db := setupDB(t)
	svc := NewService(db)
	room := seedRoom(t, db, "106")
	actor := receptionist()

	booking, err := svc.QuickBook(quickBookReq(room), actor)
	require.NoError(t, err)
	originalCheckout := booking.ExpectedCheckout

	extended, err := svc.Extend(booking.ID, bookingTypes.ExtendRequest{
		Kind:             ExtendNights,
		AdditionalNights: 2,
	}, actor)
	require.NoError(t, err)

	assert.True(t, extended.TotalAmount.Equal(decimal.NewFromInt(45000)),
		"15000 + 2x15000, got %s", extended.TotalAmount)
	assert.Equal(t, originalCheckout.AddDate(0, 0, 2).Unix(), extended.ExpectedCheckout.Unix())
	assert.EqualValues(t, 3, extended.NumNights)

	extensions, err := svc.Extensions(booking.ID)
	require.NoError(t, err)
	require.Len(t, extensions, 1)
	assert.Equal(t, originalCheckout.Unix(), extensions[0].OriginalCheckout.Unix())
	assert.True(t, extensions[0].AdditionalAmount.Equal(decimal.NewFromInt(30000)))
}

func TestExtendShortRestToOvernight(t *testing.T) {
	db := setupDB(t)
	svc := NewService(db)
	room := seedRoom(t, db, "107")
	actor := receptionist()

	req := quickBookReq(room)
	req.StayType = bookingModel.StayShortRest
	req.AmountPaid = decimal.NewFromInt(5000)
	booking, err := svc.QuickBook(req, actor)
	require.NoError(t, err)
	assert.True(t, booking.TotalAmount.Equal(decimal.NewFromInt(5000)))

	extended, err := svc.Extend(booking.ID, bookingTypes.ExtendRequest{
		Kind: ExtendShortOvernight,
	}, actor)
	require.NoError(t, err)

	assert.Equal(t, bookingModel.StayOvernight, extended.StayType)
	// Guest pays the difference up to the overnight rate.
	assert.True(t, extended.TotalAmount.Equal(decimal.NewFromInt(15000)),
		"got %s", extended.TotalAmount)
	assert.Equal(t, 12, extended.ExpectedCheckout.Hour())

	// Converting an overnight stay is not a thing.
	_, err = svc.Extend(booking.ID, bookingTypes.ExtendRequest{Kind: ExtendShortOvernight}, actor)
	var invalid *types.InvalidTransitionError
	require.ErrorAs(t, err, &invalid)
}

func TestExtensionRecordsAreImmutable(t *testing.T) {
	db := setupDB(t)
	svc := NewService(db)
	room := seedRoom(t, db, "108")
	actor := receptionist()

	booking, err := svc.QuickBook(quickBookReq(room), actor)
	require.NoError(t, err)
	_, err = svc.Extend(booking.ID, bookingTypes.ExtendRequest{Kind: ExtendNights, AdditionalNights: 1}, actor)
	require.NoError(t, err)

	var extension bookingModel.BookingExtension
	require.NoError(t, db.First(&extension, "booking_id = ?", booking.ID).Error)

	var violation *types.ImmutabilityViolationError
	err = db.Model(&extension).Update("additional_amount", decimal.Zero).Error
	require.ErrorAs(t, err, &violation)
}

func TestCancelOnlyBeforeCheckIn(t *testing.T) {
	db := setupDB(t)
	svc := NewService(db)
	room := seedRoom(t, db, "109")
	actor := receptionist()

	pending, err := svc.Create(bookingTypes.CreateBookingRequest{
		GuestName:   "Dan Musa",
		GuestPhone:  "08030000005",
		RoomID:      room.ID.String(),
		StayType:    bookingModel.StayOvernight,
		CheckInDate: time.Now().Format("2006-01-02"),
	}, actor)
	require.NoError(t, err)

	cancelled, err := svc.Cancel(pending.ID, actor, "guest called")
	require.NoError(t, err)
	assert.Equal(t, bookingModel.StatusCancelled, cancelled.Status)

	// A checked-in stay cannot be cancelled, only checked out.
	checkedIn, err := svc.QuickBook(quickBookReq(room), actor)
	require.NoError(t, err)
	_, err = svc.Cancel(checkedIn.ID, actor, "")
	var invalid *types.InvalidTransitionError
	require.ErrorAs(t, err, &invalid)
}

func TestLodgeUsesLodgeRate(t *testing.T) {
	db := setupDB(t)
	svc := NewService(db)
	room := seedRoom(t, db, "110")

	req := quickBookReq(room)
	req.StayType = bookingModel.StayLodge
	req.NumNights = 3
	booking, err := svc.QuickBook(req, receptionist())
	require.NoError(t, err)

	assert.True(t, booking.RoomRate.Equal(decimal.NewFromInt(12000)))
	assert.True(t, booking.TotalAmount.Equal(decimal.NewFromInt(36000)), "got %s", booking.TotalAmount)
	assert.Equal(t, 12, booking.ExpectedCheckout.Hour())
}

func TestWalkInDayInRoomLifecycle(t *testing.T) {
	db := setupDB(t)
	svc := NewService(db)
	roomSvc := roomService.NewService(db)
	room := seedRoom(t, db, "112")
	actor := receptionist()

	// Walk-in checks in, checks out, housekeeping turns the room around.
	booking, err := svc.QuickBook(quickBookReq(room), actor)
	require.NoError(t, err)
	_, err = svc.CheckOut(booking.ID, actor)
	require.NoError(t, err)
	_, err = roomSvc.ChangeState(room.ID, roomModel.StateAvailable, actor, "cleaned")
	require.NoError(t, err)

	history, err := roomSvc.History(room.ID)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, roomModel.StateOccupied, history[0].ToState)
	assert.Equal(t, roomModel.StateDirty, history[1].ToState)
	assert.Equal(t, roomModel.StateAvailable, history[2].ToState)

	var current roomModel.Room
	require.NoError(t, db.First(&current, "id = ?", room.ID).Error)
	assert.Equal(t, history[2].ToState, current.CurrentState)

	var roomEvents, bookingEvents int64
	require.NoError(t, db.Model(&auditModel.SystemEvent{}).
		Where("event_category = ?", auditModel.CategoryRoom).Count(&roomEvents).Error)
	require.NoError(t, db.Model(&auditModel.SystemEvent{}).
		Where("event_category = ?", auditModel.CategoryBooking).Count(&bookingEvents).Error)
	assert.EqualValues(t, 3, roomEvents)
	assert.EqualValues(t, 2, bookingEvents, "quick-create and check-out")
}

func TestAtMostOneCheckedInPerRoom(t *testing.T) {
	db := setupDB(t)
	svc := NewService(db)
	room := seedRoom(t, db, "113")

	first, err := svc.QuickBook(quickBookReq(room), receptionist())
	require.NoError(t, err)
	assert.Equal(t, bookingModel.StatusCheckedIn, first.Status)

	// The storage-layer guard holds even if a writer bypasses the service:
	// a second CHECKED_IN row for the room violates the partial unique index.
	second := bookingModel.Booking{
		BookingRef:       "MK-250901-RACE",
		GuestID:          first.GuestID,
		RoomID:           room.ID,
		StayType:         bookingModel.StayOvernight,
		Status:           bookingModel.StatusCheckedIn,
		Source:           bookingModel.SourceWalkIn,
		CheckInDate:      time.Now(),
		ExpectedCheckout: time.Now().Add(20 * time.Hour),
		RoomRate:         decimal.NewFromInt(15000),
		TotalAmount:      decimal.NewFromInt(15000),
	}
	err = db.Create(&second).Error
	require.ErrorIs(t, err, gorm.ErrDuplicatedKey)

	// The same guest could still hold a PENDING booking for that room.
	second.ID = uuid.Nil
	second.Status = bookingModel.StatusPending
	require.NoError(t, db.Create(&second).Error)
}

func TestBalanceForDerivesFromLedger(t *testing.T) {
	db := setupDB(t)
	svc := NewService(db)
	room := seedRoom(t, db, "111")

	req := quickBookReq(room)
	req.AmountPaid = decimal.NewFromInt(10000)
	booking, err := svc.QuickBook(req, receptionist())
	require.NoError(t, err)

	balance, err := svc.BalanceFor(booking.ID)
	require.NoError(t, err)
	assert.True(t, balance.AmountPaid.Equal(decimal.NewFromInt(10000)))
	assert.True(t, balance.BalanceDue.Equal(decimal.NewFromInt(5000)), "got %s", balance.BalanceDue)
	assert.False(t, balance.FullyPaid)
}
