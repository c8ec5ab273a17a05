package room

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"mayor-k/logger"
	"mayor-k/middleware"
	roomModel "mayor-k/models/room"
	roomService "mayor-k/services/room"
	"mayor-k/types"
	roomTypes "mayor-k/types/room"
)

// RoomController handles room catalogue and state machine HTTP requests.
type RoomController struct {
	DB      *gorm.DB
	Service *roomService.Service
}

func NewRoomController(db *gorm.DB, service *roomService.Service) *RoomController {
	return &RoomController{DB: db, Service: service}
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
		message = "Room not found"
	}
	return c.Status(status).JSON(types.ApiResponse{
		Status:  status,
		Message: message,
	})
}

// Index lists all active rooms with their types and current states.
func (rc *RoomController) Index(c *fiber.Ctx) error {
	q := rc.DB.Preload("RoomType").Where("is_active = ?", true).Order("room_number ASC")
	if state := c.Query("state"); state != "" {
		q = q.Where("current_state = ?", state)
	}
	var rooms []roomModel.Room
	if err := q.Find(&rooms).Error; err != nil {
		return fail(c, err, "Failed to list rooms")
	}
	return c.JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Rooms fetched",
		Data:    rooms,
	})
}

// Available lists rooms in AVAILABLE.
func (rc *RoomController) Available(c *fiber.Ctx) error {
	rooms, err := rc.Service.Available()
	if err != nil {
		return fail(c, err, "Failed to list available rooms")
	}
	return c.JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Available rooms fetched",
		Data:    rooms,
	})
}

// ChangeState moves a room to an explicit target state.
func (rc *RoomController) ChangeState(c *fiber.Ctx) error {
	return rc.transition(c, c.Params("state"))
}

// MarkClean is housekeeping's shortcut: DIRTY (or CLEANING) back to AVAILABLE.
func (rc *RoomController) MarkClean(c *fiber.Ctx) error {
	return rc.transition(c, roomModel.StateAvailable)
}

// MarkDirty flags a room for housekeeping.
func (rc *RoomController) MarkDirty(c *fiber.Ctx) error {
	return rc.transition(c, roomModel.StateDirty)
}

// MarkMaintenance takes a room out of service.
func (rc *RoomController) MarkMaintenance(c *fiber.Ctx) error {
	return rc.transition(c, roomModel.StateMaintenance)
}

func (rc *RoomController) transition(c *fiber.Ctx, newState string) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid room id",
		})
	}
	var req roomTypes.ChangeStateRequest
	if err := c.BodyParser(&req); err != nil {
		req.Notes = ""
	}

	room, err := rc.Service.ChangeState(id, newState, middleware.ActorFromCtx(c), req.Notes)
	if err != nil {
		return fail(c, err, "Failed to change room state")
	}
	return c.JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Room state changed",
		Data:    room,
	})
}

// History returns a room's transition log, oldest first.
func (rc *RoomController) History(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid room id",
		})
	}
	transitions, err := rc.Service.History(id)
	if err != nil {
		return fail(c, err, "Failed to fetch room history")
	}
	return c.JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Room history fetched",
		Data:    transitions,
	})
}

// DirtyDurations reports how long the room has sat dirty, per dirty period.
func (rc *RoomController) DirtyDurations(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid room id",
		})
	}
	periods, err := rc.Service.DirtyDurations(id)
	if err != nil {
		return fail(c, err, "Failed to compute dirty durations")
	}
	return c.JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Dirty durations computed",
		Data:    periods,
	})
}
