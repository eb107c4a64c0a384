package router

import (
	"os"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

// CorsMiddleware configures CORS from CORS_ORIGIN, a comma separated origin
// list defaulting to *.
func CorsMiddleware() fiber.Handler {
	origins := strings.TrimSpace(os.Getenv("CORS_ORIGIN"))
	if origins == "" {
		origins = "*"
	}

	return cors.New(cors.Config{
		AllowOrigins: origins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,PATCH,DELETE,OPTIONS",
	})
}
