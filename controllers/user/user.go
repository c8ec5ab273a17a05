package user

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"mayor-k/constants"
	"mayor-k/database"
	"mayor-k/logger"
	"mayor-k/middleware"
	userModel "mayor-k/models/user"
	"mayor-k/types"
)

// GetUserInfo returns the authenticated staff member's profile along with the
// capabilities their role grants.
func GetUserInfo(c *fiber.Ctx) error {
	actor := middleware.ActorFromCtx(c)
	if actor.UserID == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(types.ApiResponse{
			Message: "Invalid token data",
			Status:  fiber.StatusUnauthorized,
		})
	}

	var user userModel.User
	if err := database.DB.Where("id = ?", *actor.UserID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(types.ApiResponse{
				Message: "User not found",
				Status:  fiber.StatusNotFound,
			})
		}
		logger.Error("Error fetching user", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Message: "Error fetching user",
			Status:  fiber.StatusInternalServerError,
		})
	}

	userInfo := map[string]interface{}{
		"id":           user.ID,
		"username":     user.Username,
		"full_name":    user.FullName,
		"role":         user.Role,
		"phone":        user.Phone,
		"is_active":    user.IsActive,
		"capabilities": constants.CapabilityFor(user.Role),
		"created_at":   user.CreatedAt.Format("2006-01-02 15:04:05"),
	}

	return c.JSON(types.ApiResponse{
		Message: "User fetched successfully",
		Status:  fiber.StatusOK,
		Data:    userInfo,
	})
}
