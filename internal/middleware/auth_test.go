package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/minigame-party/minigame_party/internal/clock"
	"github.com/minigame-party/minigame_party/internal/session"
)

func newAuthedApp(sessions *session.Manager) *fiber.App {
	app := fiber.New()
	app.Get("/me", SessionAuth(sessions), func(c *fiber.Ctx) error {
		ident, ok := Identity(c)
		if !ok {
			return fiber.NewError(http.StatusInternalServerError, "identity missing")
		}
		return c.JSON(fiber.Map{"username": ident.Username})
	})
	return app
}

func TestSessionAuth(t *testing.T) {
	clk := clock.NewFake(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	sessions := session.NewManager("test-secret", time.Hour, time.Hour, clk)
	app := newAuthedApp(sessions)

	token, _, err := sessions.Issue(session.Identity{UserID: 1, Username: "alice"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	cases := []struct {
		name   string
		header string
		want   int
	}{
		{"valid token", "Bearer " + token, http.StatusOK},
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + token, http.StatusUnauthorized},
		{"garbage token", "Bearer nope", http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tc.header != "" {
				req.Header.Set(fiber.HeaderAuthorization, tc.header)
			}
			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("request failed: %v", err)
			}
			defer resp.Body.Close()
			if resp.StatusCode != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, resp.StatusCode)
			}
		})
	}
}

func TestSessionAuthRejectsExpired(t *testing.T) {
	clk := clock.NewFake(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	sessions := session.NewManager("test-secret", time.Hour, time.Hour, clk)
	app := newAuthedApp(sessions)

	token, _, err := sessions.Issue(session.Identity{UserID: 1, Username: "alice"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	clk.Advance(2 * time.Hour)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 for expired token, got %d", resp.StatusCode)
	}
}
