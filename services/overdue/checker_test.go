package overdue

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"mayor-k/database"
	auditModel "mayor-k/models/audit"
	bookingModel "mayor-k/models/booking"
	financeModel "mayor-k/models/finance"
	guestModel "mayor-k/models/guest"
	roomModel "mayor-k/models/room"
	auditService "mayor-k/services/audit"
	bookingService "mayor-k/services/booking"
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

// seedOverdue creates a CHECKED_IN booking whose expected checkout passed
// hours ago, optionally fully paid.
func seedOverdue(t *testing.T, db *gorm.DB, number string, fullyPaid bool) *bookingModel.Booking {
	t.Helper()
	roomType := roomModel.RoomType{
		Name:              "Standard " + number,
		BaseRateShortRest: decimal.NewFromInt(5000),
		BaseRateOvernight: decimal.NewFromInt(15000),
		IsActive:          true,
	}
	require.NoError(t, db.Create(&roomType).Error)
	room := roomModel.Room{RoomNumber: number, RoomTypeID: roomType.ID, CurrentState: roomModel.StateOccupied, IsActive: true}
	require.NoError(t, db.Create(&room).Error)
	guest := guestModel.Guest{Name: "Ada Obi", Phone: "0803000" + number}
	require.NoError(t, db.Create(&guest).Error)

	checkIn := time.Now().Add(-26 * time.Hour)
	booking := bookingModel.Booking{
		BookingRef:       "MK-250901-" + number,
		GuestID:          guest.ID,
		RoomID:           room.ID,
		StayType:         bookingModel.StayOvernight,
		Status:           bookingModel.StatusCheckedIn,
		Source:           bookingModel.SourceWalkIn,
		CheckInDate:      checkIn,
		CheckInTime:      &checkIn,
		ExpectedCheckout: time.Now().Add(-2 * time.Hour),
		NumNights:        1,
		RoomRate:         decimal.NewFromInt(15000),
		TotalAmount:      decimal.NewFromInt(15000),
	}
	require.NoError(t, db.Create(&booking).Error)

	if fullyPaid {
		txn := financeModel.Transaction{
			TransactionRef:  "TXN-250901-" + number,
			BookingID:       &booking.ID,
			TransactionType: financeModel.TypePayment,
			PaymentMethod:   financeModel.MethodCash,
			Status:          financeModel.StatusConfirmed,
			Amount:          decimal.NewFromInt(15000),
		}
		require.NoError(t, db.Create(&txn).Error)
	}
	return &booking
}

// newChecker wires a checker against a running async audit writer. The
// returned drain stops the writer once its queue is empty; call it before
// asserting on alert rows.
func newChecker(db *gorm.DB, policy Policy) (*Checker, func()) {
	audits := auditService.NewService(db)
	done := make(chan struct{})
	go func() {
		audits.Process()
		close(done)
	}()
	checker := NewChecker(db, bookingService.NewService(db), audits, policy, DefaultGrace)
	drain := func() {
		audits.Close()
		<-done
	}
	return checker, drain
}

func countAlerts(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(&auditModel.SystemEvent{}).
		Where("event_type = ?", "BOOKING_OVERDUE_ALERT").Count(&count).Error)
	return count
}

func TestSweepAlertsOverdueOncePerWindow(t *testing.T) {
	db := setupDB(t)
	seedOverdue(t, db, "201", false)
	checker, drain := newChecker(db, AlertOnlyPolicy{})

	handled, err := checker.Run()
	require.NoError(t, err)
	assert.Equal(t, 1, handled)
	require.Eventually(t, func() bool {
		return countAlerts(t, db) == 1
	}, 2*time.Second, 10*time.Millisecond)

	// A second sweep inside the window raises no second alert.
	handled, err = checker.Run()
	require.NoError(t, err)
	assert.Equal(t, 1, handled)
	drain()
	assert.EqualValues(t, 1, countAlerts(t, db))

	var event auditModel.SystemEvent
	require.NoError(t, db.Where("event_type = ?", "BOOKING_OVERDUE_ALERT").First(&event).Error)
	assert.Equal(t, auditModel.CategorySystem, event.EventCategory)
	assert.Equal(t, "SYSTEM/"+SystemName, event.ActorRole)
}

func TestSweepRespectsGrace(t *testing.T) {
	db := setupDB(t)
	booking := seedOverdue(t, db, "202", false)
	// Just past checkout, still within grace.
	require.NoError(t, db.Model(&bookingModel.Booking{}).Where("id = ?", booking.ID).
		Update("expected_checkout", time.Now().Add(-10*time.Minute)).Error)

	checker, drain := newChecker(db, AlertOnlyPolicy{})
	handled, err := checker.Run()
	require.NoError(t, err)
	assert.Equal(t, 0, handled)
	drain()
	assert.EqualValues(t, 0, countAlerts(t, db))
}

func TestAutoCheckoutChecksOutFullyPaid(t *testing.T) {
	db := setupDB(t)
	booking := seedOverdue(t, db, "203", true)
	checker, drain := newChecker(db, AutoCheckoutPolicy{})

	handled, err := checker.Run()
	require.NoError(t, err)
	assert.Equal(t, 1, handled)
	drain()

	var reloaded bookingModel.Booking
	require.NoError(t, db.First(&reloaded, "id = ?", booking.ID).Error)
	assert.Equal(t, bookingModel.StatusCheckedOut, reloaded.Status)

	var room roomModel.Room
	require.NoError(t, db.First(&room, "id = ?", booking.RoomID).Error)
	assert.Equal(t, roomModel.StateDirty, room.CurrentState)

	// Checkout was performed by the system actor and audited as such.
	var event auditModel.SystemEvent
	require.NoError(t, db.Where("event_type = ? AND target_id = ?",
		"BOOKING_CHECKED_OUT", booking.ID).First(&event).Error)
	assert.Nil(t, event.ActorID)
	assert.Equal(t, "SYSTEM/"+SystemName, event.ActorRole)
}

func TestAutoCheckoutLeavesUnpaidAlone(t *testing.T) {
	db := setupDB(t)
	booking := seedOverdue(t, db, "204", false)
	checker, drain := newChecker(db, AutoCheckoutPolicy{})

	handled, err := checker.Run()
	require.NoError(t, err)
	assert.Equal(t, 1, handled)
	drain()

	var reloaded bookingModel.Booking
	require.NoError(t, db.First(&reloaded, "id = ?", booking.ID).Error)
	assert.Equal(t, bookingModel.StatusCheckedIn, reloaded.Status)
	assert.EqualValues(t, 1, countAlerts(t, db))
}
