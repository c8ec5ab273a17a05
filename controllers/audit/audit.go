package audit

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"mayor-k/logger"
	auditService "mayor-k/services/audit"
	"mayor-k/types"
)

// AuditController exposes read-only queries over the event log.
type AuditController struct {
	Service *auditService.Service
}

func NewAuditController(service *auditService.Service) *AuditController {
	return &AuditController{Service: service}
}

// Index lists events newest first, filtered by category, event type, actor,
// target and time range.
func (ac *AuditController) Index(c *fiber.Ctx) error {
	filter := auditService.QueryFilter{
		Category:  c.Query("category"),
		EventType: c.Query("event_type"),
	}
	if raw := c.Query("actor_id"); raw != "" {
		actorID, err := uuid.Parse(raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
				Status:  fiber.StatusBadRequest,
				Message: "Invalid actor id",
			})
		}
		filter.ActorID = &actorID
	}
	if raw := c.Query("target_id"); raw != "" {
		targetID, err := uuid.Parse(raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
				Status:  fiber.StatusBadRequest,
				Message: "Invalid target id",
			})
		}
		filter.TargetID = &targetID
	}
	if raw := c.Query("from"); raw != "" {
		if from, err := time.Parse(time.RFC3339, raw); err == nil {
			filter.From = from
		}
	}
	if raw := c.Query("to"); raw != "" {
		if to, err := time.Parse(time.RFC3339, raw); err == nil {
			filter.To = to
		}
	}
	if raw := c.Query("limit"); raw != "" {
		if limit, err := strconv.Atoi(raw); err == nil {
			filter.Limit = limit
		}
	}

	events, err := ac.Service.List(filter)
	if err != nil {
		logger.Error("Failed to query audit log", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Failed to query audit log",
		})
	}
	return c.JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Audit events fetched",
		Data:    events,
	})
}
