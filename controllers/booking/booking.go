package booking

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"mayor-k/logger"
	"mayor-k/middleware"
	bookingModel "mayor-k/models/booking"
	bookingService "mayor-k/services/booking"
	"mayor-k/types"
	bookingTypes "mayor-k/types/booking"
)

// BookingController handles booking lifecycle HTTP requests.
type BookingController struct {
	DB      *gorm.DB
	Service *bookingService.Service
}

func NewBookingController(db *gorm.DB, service *bookingService.Service) *BookingController {
	return &BookingController{DB: db, Service: service}
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
		message = "Booking not found"
	}
	return c.Status(status).JSON(types.ApiResponse{
		Status:  status,
		Message: message,
	})
}

func parseID(c *fiber.Ctx) (uuid.UUID, error) {
	return uuid.Parse(c.Params("id"))
}

// QuickBook handles the walk-in fast path.
func (bc *BookingController) QuickBook(c *fiber.Ctx) error {
	var req bookingTypes.QuickBookRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	booking, err := bc.Service.QuickBook(req, middleware.ActorFromCtx(c))
	if err != nil {
		return fail(c, err, "Failed to create booking")
	}
	return c.Status(fiber.StatusCreated).JSON(types.ApiResponse{
		Status:  fiber.StatusCreated,
		Message: "Booking created and checked in",
		Data:    booking,
	})
}

// Store creates an advance booking in PENDING.
func (bc *BookingController) Store(c *fiber.Ctx) error {
	var req bookingTypes.CreateBookingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	booking, err := bc.Service.Create(req, middleware.ActorFromCtx(c))
	if err != nil {
		return fail(c, err, "Failed to create booking")
	}
	return c.Status(fiber.StatusCreated).JSON(types.ApiResponse{
		Status:  fiber.StatusCreated,
		Message: "Booking created",
		Data:    booking,
	})
}

// Index lists bookings, optionally filtered by status and check-in date.
func (bc *BookingController) Index(c *fiber.Ctx) error {
	q := bc.DB.Preload("Guest").Preload("Room").Order("created_at DESC").Limit(200)
	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}
	if date := c.Query("date"); date != "" {
		day, err := time.Parse("2006-01-02", date)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
				Status:  fiber.StatusBadRequest,
				Message: "Invalid date, expected YYYY-MM-DD",
			})
		}
		q = q.Where("check_in_date = ?", day)
	}

	var bookings []bookingModel.Booking
	if err := q.Find(&bookings).Error; err != nil {
		return fail(c, err, "Failed to list bookings")
	}
	return c.JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Bookings fetched",
		Data:    bookings,
	})
}

// Show fetches one booking by its reference.
func (bc *BookingController) Show(c *fiber.Ctx) error {
	booking, err := bc.Service.ByRef(c.Params("ref"))
	if err != nil {
		return fail(c, err, "Failed to fetch booking")
	}
	return c.JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Booking fetched",
		Data:    booking,
	})
}

// Balance returns the booking with its ledger-derived paid total.
func (bc *BookingController) Balance(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid booking id",
		})
	}
	balance, err := bc.Service.BalanceFor(id)
	if err != nil {
		return fail(c, err, "Failed to compute balance")
	}
	return c.JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Balance computed",
		Data:    balance,
	})
}

// Extensions lists a booking's checkout extensions.
func (bc *BookingController) Extensions(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid booking id",
		})
	}
	extensions, err := bc.Service.Extensions(id)
	if err != nil {
		return fail(c, err, "Failed to list extensions")
	}
	return c.JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Extensions fetched",
		Data:    extensions,
	})
}

// Confirm moves a pending booking to CONFIRMED.
func (bc *BookingController) Confirm(c *fiber.Ctx) error {
	return bc.act(c, "Booking confirmed", bc.Service.Confirm)
}

// CheckIn checks a confirmed booking in and occupies the room.
func (bc *BookingController) CheckIn(c *fiber.Ctx) error {
	return bc.act(c, "Guest checked in", bc.Service.CheckIn)
}

// CheckOut checks a guest out and marks the room dirty.
func (bc *BookingController) CheckOut(c *fiber.Ctx) error {
	return bc.act(c, "Guest checked out", bc.Service.CheckOut)
}

// Extend pushes the expected checkout of a checked-in stay.
func (bc *BookingController) Extend(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid booking id",
		})
	}
	var req bookingTypes.ExtendRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	booking, err := bc.Service.Extend(id, req, middleware.ActorFromCtx(c))
	if err != nil {
		return fail(c, err, "Failed to extend booking")
	}
	return c.JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Booking extended",
		Data:    booking,
	})
}

// Cancel cancels a pending or confirmed booking.
func (bc *BookingController) Cancel(c *fiber.Ctx) error {
	return bc.closeWithReason(c, "Booking cancelled", bc.Service.Cancel)
}

// NoShow marks a pending or confirmed booking as a no-show.
func (bc *BookingController) NoShow(c *fiber.Ctx) error {
	return bc.closeWithReason(c, "Booking marked as no-show", bc.Service.NoShow)
}

func (bc *BookingController) act(c *fiber.Ctx, message string, fn func(uuid.UUID, types.Actor) (*bookingModel.Booking, error)) error {
	id, err := parseID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid booking id",
		})
	}
	booking, err := fn(id, middleware.ActorFromCtx(c))
	if err != nil {
		return fail(c, err, "Booking update failed")
	}
	return c.JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: message,
		Data:    booking,
	})
}

func (bc *BookingController) closeWithReason(c *fiber.Ctx, message string, fn func(uuid.UUID, types.Actor, string) (*bookingModel.Booking, error)) error {
	id, err := parseID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid booking id",
		})
	}
	var req bookingTypes.StatusReasonRequest
	if err := c.BodyParser(&req); err != nil && !errors.Is(err, fiber.ErrUnprocessableEntity) {
		req.Reason = ""
	}
	booking, err := fn(id, middleware.ActorFromCtx(c), req.Reason)
	if err != nil {
		return fail(c, err, "Booking update failed")
	}
	return c.JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: message,
		Data:    booking,
	})
}
