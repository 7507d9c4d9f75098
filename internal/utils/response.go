package utils

import "github.com/gofiber/fiber/v2"

// APIResponse describes the envelope used by service endpoints such as health.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message"`
}

// SendSuccess sends a successful JSON envelope with a message.
func SendSuccess(c *fiber.Ctx, message string, data interface{}) error {
	if message == "" {
		message = "success"
	}

	return c.Status(fiber.StatusOK).JSON(APIResponse{
		Success: true,
		Data:    data,
		Message: message,
	})
}

// SendMessage sends a 200 response of the form {"message": ...}.
func SendMessage(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": message})
}

// SendDetail sends an error response of the form {"detail": ...}.
func SendDetail(c *fiber.Ctx, status int, detail string) error {
	if detail == "" {
		detail = "error"
	}
	if status == 0 {
		status = fiber.StatusInternalServerError
	}

	return c.Status(status).JSON(fiber.Map{"detail": detail})
}
