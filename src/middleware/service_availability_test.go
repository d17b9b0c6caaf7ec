package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func TestMaintenanceModeRejectsRequests(t *testing.T) {
	sa := NewServiceAvailability(0)
	sa.SetMaintenanceMode(true)

	app := fiber.New()
	app.Use(sa.Middleware())
	app.Get("/api/v1/orders", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	req := httptest.NewRequest("GET", "/api/v1/orders", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusServiceUnavailable {
		t.Fatalf("expected 503 in maintenance mode, got %d", resp.StatusCode)
	}
}

func TestMaintenanceModeStillServesHealth(t *testing.T) {
	sa := NewServiceAvailability(0)
	sa.SetMaintenanceMode(true)

	app := fiber.New()
	app.Use(sa.Middleware())
	app.Get("/health", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	req := httptest.NewRequest("GET", "/health", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected /health to bypass maintenance mode, got %d", resp.StatusCode)
	}
}

func TestOverloadRejectsBeyondMaxConcurrent(t *testing.T) {
	sa := NewServiceAvailability(1)

	release := make(chan struct{})
	started := make(chan struct{})

	app := fiber.New()
	app.Use(sa.Middleware())
	app.Get("/slow", func(c *fiber.Ctx) error {
		started <- struct{}{}
		<-release
		return c.SendStatus(fiber.StatusOK)
	})

	go func() {
		req := httptest.NewRequest("GET", "/slow", nil)
		_, _ = app.Test(req, -1)
	}()
	<-started

	req := httptest.NewRequest("GET", "/slow", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusServiceUnavailable {
		t.Fatalf("expected 503 when over capacity, got %d", resp.StatusCode)
	}

	close(release)
}
