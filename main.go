package main

import (
	"fmt"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"

	"mayor-k/database"
	"mayor-k/database/seeders"
	"mayor-k/logger"
	"mayor-k/routes"
	auditService "mayor-k/services/audit"
	bookingService "mayor-k/services/booking"
	"mayor-k/services/overdue"
)

func main() {
	app := fiber.New(fiber.Config{
		ReadBufferSize:  32768, // 32KB read buffer
		WriteBufferSize: 32768, // 32KB write buffer
		ReadTimeout:     time.Second * 30,
		WriteTimeout:    time.Second * 30,
	})
	env := godotenv.Load()
	if env != nil {
		logger.Error("Error loading .env file", env)
		fmt.Println("Error loading .env file", env)
	}
	logger.Success("Server is running on ip: " + os.Getenv("APP_HOST") + " port: " + os.Getenv("APP_PORT") +
		"\n\t\t\t\t\t\t******************************************************************************************\n")

	db, err := database.InitDB()
	if err != nil {
		logger.Error("Failed to connect to the database", err)
		return
	}
	if err := seeders.SeedInitialData(db); err != nil {
		logger.Error("Failed to seed initial data", err)
		return
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     os.Getenv("FRONTEND_URL"),
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
	}))

	// One audit service for the whole process; its async writer handles
	// best-effort events like overdue alerts.
	audits := auditService.NewService(db)
	go audits.Process()

	routes.SetupRoutes(app, db, audits)

	// Background overdue sweep: alerts by default, auto-checkout when enabled.
	var policy overdue.Policy = overdue.AlertOnlyPolicy{}
	if os.Getenv("OVERDUE_AUTO_CHECKOUT") == "true" {
		policy = overdue.AutoCheckoutPolicy{}
	}
	checker := overdue.NewChecker(db, bookingService.NewService(db),
		audits, policy, overdue.DefaultGrace)
	stop := make(chan struct{})
	defer close(stop)
	go checker.Start(5*time.Minute, stop)

	app_host := os.Getenv("APP_HOST")
	app_port := os.Getenv("APP_PORT")
	app.Listen(app_host + ":" + app_port)
}
