package auth

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

var testSecret = []byte("test-secret")

func signToken(t *testing.T, userID string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"user_id": userID})
	signed, err := token.SignedString(testSecret)
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}
	return signed
}

func newApp() *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if fe, ok := err.(*fiber.Error); ok {
				code = fe.Code
			}
			return c.Status(code).JSON(fiber.Map{"error": err.Error()})
		},
	})
	app.Use(Middleware(testSecret))
	app.Get("/whoami", func(c *fiber.Ctx) error {
		uid, _ := UserID(c)
		return c.JSON(fiber.Map{"user_id": uid})
	})
	app.Get("/users/:userId", RequireOwner(), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	return app
}

func TestMiddlewareRejectsMissingToken(t *testing.T) {
	app := newApp()
	req := httptest.NewRequest("GET", "/whoami", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Errorf("status = %d, want 401", resp.StatusCode)
	}
}

func TestMiddlewareRejectsMalformedHeader(t *testing.T) {
	app := newApp()
	for _, header := range []string{"Token abc", "Bearer", "Bearer not.a.jwt"} {
		req := httptest.NewRequest("GET", "/whoami", nil)
		req.Header.Set("Authorization", header)
		resp, err := app.Test(req)
		if err != nil {
			t.Fatal(err)
		}
		if resp.StatusCode != fiber.StatusUnauthorized {
			t.Errorf("header %q: status = %d, want 401", header, resp.StatusCode)
		}
	}
}

func TestMiddlewareAcceptsValidToken(t *testing.T) {
	app := newApp()
	req := httptest.NewRequest("GET", "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "user_1"))
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}

func TestRequireOwner(t *testing.T) {
	app := newApp()

	req := httptest.NewRequest("GET", "/users/user_1", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "user_1"))
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("own resource: status = %d, want 200", resp.StatusCode)
	}

	req = httptest.NewRequest("GET", "/users/user_2", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "user_1"))
	resp, err = app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusForbidden {
		t.Errorf("foreign resource: status = %d, want 403", resp.StatusCode)
	}
}
