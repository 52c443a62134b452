// Package server serves the todo tools over HTTP.
package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/nhle/mcp-todo/internal/tools"
)

// Info identifies the server in health responses.
type Info struct {
	Name       string
	Version    string
	Production bool
}

// Server is the HTTP front end of the tool registry.
type Server struct {
	app      *fiber.App
	registry *tools.Registry
	info     Info
}

// New builds the fiber app and registers all routes.
func New(registry *tools.Registry, logger *slog.Logger, info Info) *Server {
	app := fiber.New(fiber.Config{
		AppName:               info.Name,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		IdleTimeout:           30 * time.Second,
		DisableStartupMessage: info.Production,
		ErrorHandler:          ErrorHandler,
	})

	s := &Server{app: app, registry: registry, info: info}

	app.Use(
		StructuredLogger(logger),
		recover.New(),
	)

	app.Get("/health", s.health)
	app.Get("/tools", s.listTools)
	app.Post("/tools/:name", s.callTool)

	return s
}

// App returns the underlying fiber app.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen serves on addr until Shutdown is called.
func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

// Shutdown stops accepting connections and waits for active requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func (s *Server) health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"name":    s.info.Name,
		"version": s.info.Version,
	})
}

func (s *Server) listTools(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"tools": s.registry.List()})
}

func (s *Server) callTool(c *fiber.Ctx) error {
	body := c.Body()
	args := make(json.RawMessage, len(body))
	copy(args, body)

	name := c.Params("name")
	c.Locals("tool", name)

	result, err := s.registry.Call(c.UserContext(), name, args)
	if err != nil {
		return err
	}
	return c.JSON(result)
}
