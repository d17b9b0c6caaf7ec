package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"match-engine/src/config"
	"match-engine/src/handlers"
	"match-engine/src/middleware"
)

func SetupRoutes(app *fiber.App, orderHandler *handlers.OrderHandler, cfg *config.Config) {
	serviceAvailability := middleware.DefaultServiceAvailability()
	app.Use(serviceAvailability.Middleware())
	app.Use(middleware.RequestLogger())

	api := app.Group("/api/v1")

	if !cfg.RateLimit.Disabled {
		windowDuration, err := time.ParseDuration(cfg.RateLimit.Window)
		if err != nil || windowDuration <= 0 {
			windowDuration = time.Second
		}
		maxRequests := cfg.RateLimit.Max
		if maxRequests <= 0 {
			maxRequests = 100
		}
		rateLimiter := middleware.NewRateLimiter(maxRequests, windowDuration)
		api.Use(rateLimiter.Middleware())
	}

	api.Post("/orders", orderHandler.SubmitOrder)
	api.Put("/orders/:id", orderHandler.ModifyOrder)
	api.Delete("/orders/:id", orderHandler.CancelOrder)
	api.Get("/orders/:id", orderHandler.GetOrderStatus)
	api.Get("/orderbook", orderHandler.GetOrderBook)

	app.Get("/ws/trades", orderHandler.StreamTrades())
	app.Get("/ws/book", orderHandler.StreamBook())

	app.Get("/health", orderHandler.HealthCheck)
	app.Get("/metrics", orderHandler.Metrics)
}
