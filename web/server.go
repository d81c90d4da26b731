package web

import (
	"io"
	"net/http"

	"github.com/andrelcunha/otterwatch/internal/core/coordinator"
	"github.com/andrelcunha/otterwatch/web/docs"
	"github.com/andrelcunha/otterwatch/web/handlers/api"
	"github.com/andrelcunha/otterwatch/web/middleware"

	"github.com/gofiber/swagger"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/rs/zerolog/log"
)

type WebServer struct {
	config      *Config
	Coordinator *coordinator.Coordinator
}

type Config struct {
	JwtKey        string
	WebServerPort string
	EnableSwagger bool
	SwaggerPrefix string
	ApiPrefix     string
	// MetricsHandler serves /metrics when set.
	MetricsHandler http.Handler
}

func NewWebServer(config *Config, coord *coordinator.Coordinator) (*WebServer, error) {
	if config.ApiPrefix == "" {
		config.ApiPrefix = "/api"
	}
	if config.SwaggerPrefix == "" {
		config.SwaggerPrefix = "/docs"
	}
	return &WebServer{
		config:      config,
		Coordinator: coord,
	}, nil
}

func (ws *WebServer) SetupApp(logOutput io.Writer) *fiber.App {
	app := ws.configServer(logOutput)

	if ws.config.MetricsHandler != nil {
		log.Info().Str("path", "/metrics").Msg("Prometheus metrics enabled")
		app.Get("/metrics", adaptor.HTTPHandler(ws.config.MetricsHandler))
	}

	if ws.config.EnableSwagger {
		docs.SwaggerInfo.Host = "localhost:" + ws.config.WebServerPort
		docs.SwaggerInfo.BasePath = ws.config.ApiPrefix + "/"
		log.Info().Str("path", ws.config.SwaggerPrefix+"/index.html").Msg("Swagger docs enabled")
		app.Get(ws.config.SwaggerPrefix+"/*", swagger.HandlerDefault)
	}

	ws.AddApi(app)

	return app
}

func (ws *WebServer) AddApi(app *fiber.App) {
	// Read-only routes
	apiGrp := app.Group(ws.config.ApiPrefix)
	apiGrp.Get("/state", func(c *fiber.Ctx) error {
		return api.GetState(c, ws.Coordinator)
	})
	apiGrp.Get("/health", func(c *fiber.Ctx) error {
		return api.GetHealth(c, ws.Coordinator)
	})

	// Protected intent routes
	apiGrp.Post("/peek", middleware.JwtMiddleware(ws.config.JwtKey), func(c *fiber.Ctx) error {
		return api.Peek(c, ws.Coordinator)
	})
	apiGrp.Post("/reset", middleware.JwtMiddleware(ws.config.JwtKey), func(c *fiber.Ctx) error {
		return api.ResetQueue(c, ws.Coordinator)
	})
	apiGrp.Post("/reset/cancel", middleware.JwtMiddleware(ws.config.JwtKey), func(c *fiber.Ctx) error {
		return api.CancelReset(c, ws.Coordinator)
	})
	apiGrp.Post("/queue", middleware.JwtMiddleware(ws.config.JwtKey), func(c *fiber.Ctx) error {
		return api.ChangeQueue(c, ws.Coordinator)
	})
	apiGrp.Post("/refresh", middleware.JwtMiddleware(ws.config.JwtKey), func(c *fiber.Ctx) error {
		return api.RefreshMetrics(c, ws.Coordinator)
	})
	apiGrp.Post("/select", middleware.JwtMiddleware(ws.config.JwtKey), func(c *fiber.Ctx) error {
		return api.SelectMessage(c, ws.Coordinator)
	})
}
