package audit

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"mayor-k/constants"
	"mayor-k/database"
	auditModel "mayor-k/models/audit"
	"mayor-k/types"
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

func TestLogStoresActorAndPayload(t *testing.T) {
	db := setupDB(t)
	actorID := uuid.New()
	targetID := uuid.New()

	err := Log(db, Entry{
		EventType:   "BOOKING_CREATED",
		Category:    auditModel.CategoryBooking,
		Actor:       types.HumanActor(actorID, constants.RoleReceptionist),
		TargetTable: "bookings",
		TargetID:    &targetID,
		Payload:     map[string]interface{}{"booking_ref": "MK-250901-AAAA"},
	})
	require.NoError(t, err)

	var event auditModel.SystemEvent
	require.NoError(t, db.First(&event).Error)
	require.NotNil(t, event.ActorID)
	assert.Equal(t, actorID, *event.ActorID)
	assert.Equal(t, constants.RoleReceptionist, event.ActorRole)
	assert.JSONEq(t, `{"booking_ref":"MK-250901-AAAA"}`, string(event.Payload))
}

func TestSystemActorTaggedWithSubsystem(t *testing.T) {
	db := setupDB(t)

	err := Log(db, Entry{
		EventType: "BOOKING_OVERDUE_ALERT",
		Category:  auditModel.CategoryBooking,
		Actor:     types.SystemActor("OVERDUE_CHECKER"),
	})
	require.NoError(t, err)

	var event auditModel.SystemEvent
	require.NoError(t, db.First(&event).Error)
	assert.Nil(t, event.ActorID)
	assert.Equal(t, "SYSTEM/OVERDUE_CHECKER", event.ActorRole)
}

func TestEventsAreImmutable(t *testing.T) {
	db := setupDB(t)
	require.NoError(t, Log(db, Entry{
		EventType: "ROOM_DIRTY",
		Category:  auditModel.CategoryRoom,
		Actor:     types.SystemActor("TEST"),
	}))

	var event auditModel.SystemEvent
	require.NoError(t, db.First(&event).Error)

	var violation *types.ImmutabilityViolationError
	err := db.Model(&event).Update("event_type", "ROOM_AVAILABLE").Error
	require.ErrorAs(t, err, &violation)
	err = db.Delete(&event).Error
	require.ErrorAs(t, err, &violation)
}

func TestListFiltersAndOrders(t *testing.T) {
	db := setupDB(t)
	svc := NewService(db)
	targetID := uuid.New()

	require.NoError(t, Log(db, Entry{
		EventType: "ROOM_DIRTY", Category: auditModel.CategoryRoom,
		Actor: types.SystemActor("TEST"), TargetID: &targetID,
	}))
	time.Sleep(5 * time.Millisecond)
	require.NoError(t, Log(db, Entry{
		EventType: "PAYMENT_RECORDED", Category: auditModel.CategoryPayment,
		Actor: types.SystemActor("TEST"),
	}))

	all, err := svc.List(QueryFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "PAYMENT_RECORDED", all[0].EventType, "newest first")

	rooms, err := svc.List(QueryFilter{Category: auditModel.CategoryRoom})
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	assert.Equal(t, "ROOM_DIRTY", rooms[0].EventType)

	byTarget, err := svc.List(QueryFilter{TargetID: &targetID})
	require.NoError(t, err)
	assert.Len(t, byTarget, 1)
}

func TestAsyncWriterPersistsEntries(t *testing.T) {
	db := setupDB(t)
	svc := NewService(db)

	done := make(chan struct{})
	go func() {
		svc.Process()
		close(done)
	}()

	svc.LogAsync(Entry{
		EventType: "ROOM_CLEANING",
		Category:  auditModel.CategoryRoom,
		Actor:     types.SystemActor("TEST"),
	})
	svc.Close()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("async writer did not drain")
	}

	var count int64
	require.NoError(t, db.Model(&auditModel.SystemEvent{}).
		Where("event_type = ?", "ROOM_CLEANING").Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestHasRecentWindow(t *testing.T) {
	db := setupDB(t)
	svc := NewService(db)
	targetID := uuid.New()

	require.NoError(t, Log(db, Entry{
		EventType: "BOOKING_OVERDUE_ALERT",
		Category:  auditModel.CategoryBooking,
		Actor:     types.SystemActor("TEST"),
		TargetID:  &targetID,
	}))

	recent, err := svc.HasRecent("BOOKING_OVERDUE_ALERT", targetID, time.Hour)
	require.NoError(t, err)
	assert.True(t, recent)

	recent, err = svc.HasRecent("BOOKING_OVERDUE_ALERT", uuid.New(), time.Hour)
	require.NoError(t, err)
	assert.False(t, recent)
}
