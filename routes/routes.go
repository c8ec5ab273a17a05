package routes

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"mayor-k/constants"
	auditController "mayor-k/controllers/audit"
	bookingController "mayor-k/controllers/booking"
	financeController "mayor-k/controllers/finance"
	guestController "mayor-k/controllers/guest"
	roomController "mayor-k/controllers/room"
	"mayor-k/controllers/user"
	"mayor-k/middleware"
	auditService "mayor-k/services/audit"
	bookingService "mayor-k/services/booking"
	expenseService "mayor-k/services/expense"
	ledgerService "mayor-k/services/ledger"
	roomService "mayor-k/services/room"
	"mayor-k/types"
)

func SetupRoutes(app *fiber.App, db *gorm.DB, audits *auditService.Service) {
	rooms := roomService.NewService(db)
	ledger := ledgerService.NewService(db)
	bookings := bookingService.NewService(db)
	expenses := expenseService.NewService(db)

	roomCtl := roomController.NewRoomController(db, rooms)
	bookingCtl := bookingController.NewBookingController(db, bookings)
	transactionCtl := financeController.NewTransactionController(ledger)
	expenseCtl := financeController.NewExpenseController(expenses)
	maintenanceCtl := financeController.NewMaintenanceController(expenses)
	guestCtl := guestController.NewGuestController(db)
	auditCtl := auditController.NewAuditController(audits)

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(types.ApiResponse{
			Status:  fiber.StatusOK,
			Message: "Mayor K Guest Palace API",
		})
	})

	api := app.Group("/api").Use(middleware.Authenticate())

	/*=============================================================================
	| Profile
	===============================================================================*/
	api.Get("/auth/profile", user.GetUserInfo)

	/*=============================================================================
	| Rooms
	===============================================================================*/
	roomGroup := api.Group("/rooms")
	roomGroup.Get("/", roomCtl.Index)
	roomGroup.Get("/available", roomCtl.Available)
	roomGroup.Get("/:id/history", roomCtl.History)
	roomGroup.Get("/:id/dirty-durations", roomCtl.DirtyDurations)

	manageRooms := middleware.RequireCapability(func(caps constants.Capability) bool {
		return caps.CanManageRooms
	})
	roomGroup.Post("/:id/state/:state", manageRooms, roomCtl.ChangeState)
	roomGroup.Post("/:id/mark-clean", manageRooms, roomCtl.MarkClean)
	roomGroup.Post("/:id/mark-dirty", manageRooms, roomCtl.MarkDirty)
	roomGroup.Post("/:id/mark-maintenance", manageRooms, roomCtl.MarkMaintenance)

	/*=============================================================================
	| Bookings
	===============================================================================*/
	makeBookings := middleware.RequireCapability(func(caps constants.Capability) bool {
		return caps.CanMakeBookings
	})

	bookingGroup := api.Group("/bookings")
	bookingGroup.Get("/", bookingCtl.Index)
	bookingGroup.Get("/ref/:ref", bookingCtl.Show)
	bookingGroup.Get("/:id/balance", bookingCtl.Balance)
	bookingGroup.Get("/:id/extensions", bookingCtl.Extensions)

	bookingGroup.Post("/quick", makeBookings, bookingCtl.QuickBook)
	bookingGroup.Post("/", makeBookings, bookingCtl.Store)
	bookingGroup.Post("/:id/confirm", makeBookings, bookingCtl.Confirm)
	bookingGroup.Post("/:id/check-in", makeBookings, bookingCtl.CheckIn)
	bookingGroup.Post("/:id/check-out", makeBookings, bookingCtl.CheckOut)
	bookingGroup.Post("/:id/extend", makeBookings, bookingCtl.Extend)
	bookingGroup.Post("/:id/cancel", makeBookings, bookingCtl.Cancel)
	bookingGroup.Post("/:id/no-show", makeBookings, bookingCtl.NoShow)

	/*=============================================================================
	| Ledger
	===============================================================================*/
	viewFinance := middleware.RequireCapability(func(caps constants.Capability) bool {
		return caps.CanViewFinance
	})

	bookingGroup.Post("/:id/payments", makeBookings, transactionCtl.RecordPayment)
	bookingGroup.Get("/:id/transactions", transactionCtl.History)

	// Corrections are reserved for roles that decide money matters.
	approveFinance := middleware.RequireCapability(func(caps constants.Capability) bool {
		return caps.CanApproveExpenses
	})

	transactionGroup := api.Group("/transactions")
	transactionGroup.Get("/:id", viewFinance, transactionCtl.Show)
	transactionGroup.Post("/:id/correct", approveFinance, transactionCtl.Correct)

	/*=============================================================================
	| Expenses
	===============================================================================*/
	submitExpenses := middleware.RequireCapability(func(caps constants.Capability) bool {
		return caps.CanSubmitExpenses
	})
	approveExpenses := middleware.RequireCapability(func(caps constants.Capability) bool {
		return caps.CanApproveExpenses
	})

	expenseGroup := api.Group("/expenses")
	expenseGroup.Get("/", viewFinance, expenseCtl.Index)
	expenseGroup.Get("/categories", expenseCtl.Categories)
	expenseGroup.Post("/", submitExpenses, expenseCtl.Store)
	expenseGroup.Post("/:id/approve", approveExpenses, expenseCtl.Approve)
	expenseGroup.Post("/:id/reject", approveExpenses, expenseCtl.Reject)

	/*=============================================================================
	| Maintenance
	===============================================================================*/
	maintenanceGroup := api.Group("/maintenance")
	maintenanceGroup.Get("/", viewFinance, maintenanceCtl.Index)
	maintenanceGroup.Post("/", submitExpenses, maintenanceCtl.Store)

	/*=============================================================================
	| Guests & Audit
	===============================================================================*/
	guestGroup := api.Group("/guests")
	guestGroup.Get("/", guestCtl.Index)
	guestGroup.Get("/:id", guestCtl.Show)

	api.Get("/audit", viewFinance, auditCtl.Index)
}
