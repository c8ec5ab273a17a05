package guest

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"mayor-k/logger"
	bookingModel "mayor-k/models/booking"
	guestModel "mayor-k/models/guest"
	"mayor-k/types"
)

// GuestController exposes the guest directory.
type GuestController struct {
	DB *gorm.DB
}

func NewGuestController(db *gorm.DB) *GuestController {
	return &GuestController{DB: db}
}

// Index lists guests, optionally filtered by a phone or name fragment.
func (gc *GuestController) Index(c *fiber.Ctx) error {
	q := gc.DB.Order("name ASC").Limit(200)
	if search := c.Query("q"); search != "" {
		like := "%" + search + "%"
		q = q.Where("name LIKE ? OR phone LIKE ?", like, like)
	}
	var guests []guestModel.Guest
	if err := q.Find(&guests).Error; err != nil {
		logger.Error("Failed to list guests", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Failed to list guests",
		})
	}
	return c.JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Guests fetched",
		Data:    guests,
	})
}

// Show returns one guest with their booking history.
func (gc *GuestController) Show(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid guest id",
		})
	}

	var guest guestModel.Guest
	if err := gc.DB.First(&guest, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(types.ApiResponse{
				Status:  fiber.StatusNotFound,
				Message: "Guest not found",
			})
		}
		logger.Error("Failed to fetch guest", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Failed to fetch guest",
		})
	}

	var bookings []bookingModel.Booking
	if err := gc.DB.Preload("Room").Where("guest_id = ?", guest.ID).
		Order("created_at DESC").Limit(50).Find(&bookings).Error; err != nil {
		logger.Error("Failed to fetch guest bookings", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Failed to fetch guest bookings",
		})
	}

	return c.JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Guest fetched",
		Data: map[string]interface{}{
			"guest":    guest,
			"bookings": bookings,
		},
	})
}
