package web

import (
	"io"
	"os"

	"github.com/andrelcunha/otterwatch/web/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

func (ws *WebServer) configServer(logOutput io.Writer) *fiber.App {

	config := fiber.Config{
		Prefork:               false,
		AppName:               "otterwatch",
		DisableStartupMessage: true,
	}
	app := fiber.New(config)

	app.Use(recover.New())

	// Enable CORS
	app.Use(middleware.CORSMiddleware())

	app.Use(logger.New(logger.Config{
		Output: logOutput,
	}))
	return app
}

// OpenAccessLog opens path for appending HTTP access log lines.
func OpenAccessLog(path string) (*os.File, error) {
	return os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
}
