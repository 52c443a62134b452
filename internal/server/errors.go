package server

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/nhle/mcp-todo/internal/tools"
	"github.com/nhle/mcp-todo/internal/validator"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error     string                     `json:"error"`
	Details   validator.ValidationErrors `json:"details,omitempty"`
	RequestID string                     `json:"request_id,omitempty"`
}

// ErrorHandler maps invalid arguments to 400, unknown tools to 404 and
// everything else to 500. Internal error text is not sent to the client.
func ErrorHandler(c *fiber.Ctx, err error) error {
	resp := ErrorResponse{Error: "Internal server error"}
	code := fiber.StatusInternalServerError

	var fiberErr *fiber.Error
	var verrs validator.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		code = fiber.StatusBadRequest
		resp.Error = "Invalid arguments"
		resp.Details = verrs
	case errors.Is(err, tools.ErrUnknownTool):
		code = fiber.StatusNotFound
		resp.Error = err.Error()
	case errors.As(err, &fiberErr):
		code = fiberErr.Code
		resp.Error = fiberErr.Message
	}

	if id, ok := c.Locals("requestID").(string); ok {
		resp.RequestID = id
	}
	return c.Status(code).JSON(resp)
}
