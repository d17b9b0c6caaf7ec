package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"match-engine/src/config"
	"match-engine/src/engine"
	"match-engine/src/handlers"
	"match-engine/src/logger"
	"match-engine/src/routes"
)

func main() {
	logger.InitLogger()
	log := logger.GetLogger()

	log.Info().Msg("Initializing order matching engine")

	cfg := config.MustLoad()

	sessionClose, err := time.ParseInLocation("15:04", cfg.Engine.SessionCloseLocal, time.Local)
	if err != nil {
		log.Fatal().Err(err).Str("session_close_local", cfg.Engine.SessionCloseLocal).Msg("invalid session close time")
	}

	book := engine.NewOrderBook(engine.Config{
		SessionCloseLocal: sessionClose,
		GFDEnabled:        cfg.Engine.GFDEnabled,
		Logger:            log,
	})
	defer book.Close()

	tradeFeed := handlers.NewTradeFeed()
	bookFeed := handlers.NewBookFeed()
	orderHandler := handlers.NewOrderHandler(book, tradeFeed, bookFeed, cfg.Engine.OrderbookMaxDepth)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}

			log.Error().
				Str("path", c.Path()).
				Str("method", c.Method()).
				Int("status", code).
				Str("error", err.Error()).
				Msg("request error")

			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	app.Use(recover.New())
	routes.SetupRoutes(app, orderHandler, cfg)

	port := ":" + cfg.HTTPServer.Port

	serverError := make(chan error, 1)

	go func() {
		if err := app.Listen(port); err != nil {
			errStr := err.Error()
			if errStr != "server is shutting down" {
				serverError <- err
			}
		}
	}()

	select {
	case err := <-serverError:
		log.Fatal().
			Err(err).
			Str("port", port).
			Msg("server failed to start")
	default:
		log.Info().
			Str("port", port).
			Msg("order matching engine started")

		log.Info().
			Strs("endpoints", []string{
				"POST   /api/v1/orders",
				"PUT    /api/v1/orders/:id",
				"DELETE /api/v1/orders/:id",
				"GET    /api/v1/orders/:id",
				"GET    /api/v1/orderbook",
				"GET    /ws/trades",
				"GET    /ws/book",
				"GET    /health",
				"GET    /metrics",
			}).
			Msg("API endpoints registered")
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	<-quit
	log.Info().Msg("received shutdown signal, shutting down...")

	shutdownTimeout, err := time.ParseDuration(cfg.ShutdownTimeout)
	if err != nil || shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			log.Warn().
				Dur("timeout", shutdownTimeout).
				Msg("timeout exceeded, shutting down...")
		} else {
			log.Error().
				Err(err).
				Msg("error during shutdown")
		}
	} else {
		log.Info().Msg("shutdown complete")
	}

	logger.CloseLogger()
}
