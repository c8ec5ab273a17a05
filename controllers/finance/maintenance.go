package finance

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"mayor-k/middleware"
	expenseService "mayor-k/services/expense"
	"mayor-k/types"
	financeTypes "mayor-k/types/finance"
)

// MaintenanceController exposes equipment maintenance record keeping.
type MaintenanceController struct {
	Service *expenseService.Service
}

func NewMaintenanceController(service *expenseService.Service) *MaintenanceController {
	return &MaintenanceController{Service: service}
}

// Store records a maintenance entry.
func (mc *MaintenanceController) Store(c *fiber.Ctx) error {
	var req financeTypes.MaintenanceCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	log, err := mc.Service.LogMaintenance(req, middleware.ActorFromCtx(c))
	if err != nil {
		return fail(c, err, "Failed to log maintenance")
	}
	return c.Status(fiber.StatusCreated).JSON(types.ApiResponse{
		Status:  fiber.StatusCreated,
		Message: "Maintenance logged",
		Data:    log,
	})
}

// Index lists maintenance entries with optional type/date filters.
func (mc *MaintenanceController) Index(c *fiber.Ctx) error {
	filter := expenseService.MaintenanceFilter{Type: c.Query("type")}
	if raw := c.Query("from"); raw != "" {
		from, err := time.Parse("2006-01-02", raw)
		if err == nil {
			filter.From = from
		}
	}
	if raw := c.Query("to"); raw != "" {
		to, err := time.Parse("2006-01-02", raw)
		if err == nil {
			filter.To = to
		}
	}

	logs, err := mc.Service.MaintenanceLogs(filter)
	if err != nil {
		return fail(c, err, "Failed to list maintenance logs")
	}
	return c.JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Maintenance logs fetched",
		Data:    logs,
	})
}
