package finance

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"mayor-k/middleware"
	expenseService "mayor-k/services/expense"
	"mayor-k/types"
	financeTypes "mayor-k/types/finance"
)

// ExpenseController exposes the expense approval workflow over HTTP.
type ExpenseController struct {
	Service *expenseService.Service
}

func NewExpenseController(service *expenseService.Service) *ExpenseController {
	return &ExpenseController{Service: service}
}

// Store logs a new expense in PENDING.
func (ec *ExpenseController) Store(c *fiber.Ctx) error {
	var req financeTypes.ExpenseCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	expense, err := ec.Service.Create(req, middleware.ActorFromCtx(c))
	if err != nil {
		return fail(c, err, "Failed to create expense")
	}
	return c.Status(fiber.StatusCreated).JSON(types.ApiResponse{
		Status:  fiber.StatusCreated,
		Message: "Expense logged",
		Data:    expense,
	})
}

// Approve approves a pending expense within the actor's ceiling.
func (ec *ExpenseController) Approve(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid expense id",
		})
	}
	expense, err := ec.Service.Approve(id, middleware.ActorFromCtx(c))
	if err != nil {
		return fail(c, err, "Failed to approve expense")
	}
	return c.JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Expense approved",
		Data:    expense,
	})
}

// Reject rejects a pending expense; the reason is mandatory.
func (ec *ExpenseController) Reject(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid expense id",
		})
	}
	var req financeTypes.ExpenseRejectRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	expense, err := ec.Service.Reject(id, req.Reason, middleware.ActorFromCtx(c))
	if err != nil {
		return fail(c, err, "Failed to reject expense")
	}
	return c.JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Expense rejected",
		Data:    expense,
	})
}

// Index lists expenses with optional status/category/date filters.
func (ec *ExpenseController) Index(c *fiber.Ctx) error {
	filter := expenseService.ListFilter{Status: c.Query("status")}
	if raw := c.Query("category_id"); raw != "" {
		categoryID, err := uuid.Parse(raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
				Status:  fiber.StatusBadRequest,
				Message: "Invalid category id",
			})
		}
		filter.CategoryID = &categoryID
	}
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

	expenses, err := ec.Service.List(filter)
	if err != nil {
		return fail(c, err, "Failed to list expenses")
	}
	return c.JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Expenses fetched",
		Data:    expenses,
	})
}

// Categories lists the active expense categories.
func (ec *ExpenseController) Categories(c *fiber.Ctx) error {
	categories, err := ec.Service.Categories()
	if err != nil {
		return fail(c, err, "Failed to list categories")
	}
	return c.JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Categories fetched",
		Data:    categories,
	})
}
