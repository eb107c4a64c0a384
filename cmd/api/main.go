package main

import (
	"context"
	"errors"
	"log"
	"os"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/manuelgonzga/wallet-api/internal/account"
	"github.com/manuelgonzga/wallet-api/internal/auth"
	"github.com/manuelgonzga/wallet-api/internal/reports"
	"github.com/manuelgonzga/wallet-api/internal/router"
	"github.com/manuelgonzga/wallet-api/internal/settings"
	"github.com/manuelgonzga/wallet-api/internal/transactions"
)

func main() {
	_ = godotenv.Load()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL is not set")
	}
	secret := mustJWTSecret()

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		log.Fatalf("error creating pgx pool: %v", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		log.Fatalf("error pinging database: %v", err)
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			message := "internal server error"

			var fiberErr *fiber.Error
			if errors.As(err, &fiberErr) {
				code = fiberErr.Code
				message = fiberErr.Message
			}

			return c.Status(code).JSON(fiber.Map{"error": message})
		},
	})

	app.Use(router.CorsMiddleware())
	app.Use(requestLogger())
	app.Use(router.RateLimitAPI())

	r := &router.Router{
		SettingsHandler:     settings.NewHandler(settings.NewRepo(pool)),
		TransactionsHandler: transactions.NewHandler(transactions.NewRepo(pool)),
		AccountHandler:      account.NewHandler(account.NewRepo(pool)),
		ReportsHandler:      reports.NewHandler(pool),
		AuthMW:              auth.Middleware(secret),
	}
	r.RegisterRoutes(app)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Println("Listening on port", port)
	log.Fatal(app.Listen(":" + port))
}

func requestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		status := c.Response().StatusCode()
		log.Printf("%s %s %d %s", c.Method(), c.Path(), status, time.Since(start))
		return err
	}
}

// mustJWTSecret loads JWT_SECRET from the environment or exits the process.
func mustJWTSecret() []byte {
	secret := strings.TrimSpace(os.Getenv("JWT_SECRET"))
	if secret == "" {
		log.Fatal("JWT_SECRET is not set")
	}
	return []byte(secret)
}
