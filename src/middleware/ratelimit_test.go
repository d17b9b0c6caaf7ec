package middleware

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
)

func TestRateLimiterAllowsUpToMax(t *testing.T) {
	app := fiber.New()
	rl := NewRateLimiter(2, time.Minute)
	app.Use(rl.Middleware())
	app.Get("/", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest("GET", "/", nil)
		resp, err := app.Test(req)
		if err != nil {
			t.Fatal(err)
		}
		if resp.StatusCode != fiber.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, resp.StatusCode)
		}
	}

	req := httptest.NewRequest("GET", "/", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusTooManyRequests {
		t.Fatalf("expected 429 once over the limit, got %d", resp.StatusCode)
	}
}

func TestRateLimiterTracksClientsIndependently(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)

	if !rl.Allow("1.1.1.1") {
		t.Fatal("first request from client A should be allowed")
	}
	if rl.Allow("1.1.1.1") {
		t.Fatal("second request from client A should be denied")
	}
	if !rl.Allow("2.2.2.2") {
		t.Fatal("first request from client B should be allowed regardless of client A's state")
	}
}
