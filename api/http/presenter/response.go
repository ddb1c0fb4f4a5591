package presenter

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
)

const MIMEXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ErrorResponse struct {
	Message string `json:"message"`
}

// Page wraps a list endpoint result.
type Page[T any] struct {
	Items  []T `json:"items"`
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

func JSON(c *fiber.Ctx, status int, v any) error {
	return c.Status(status).JSON(v)
}

func Error(c *fiber.Ctx, status int, message string) error {
	return JSON(c, status, ErrorResponse{Message: message})
}

// Attachment sends data as a file download.
func Attachment(c *fiber.Ctx, filename, contentType string, data []byte) error {
	c.Set(fiber.HeaderContentType, contentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Status(fiber.StatusOK).Send(data)
}
