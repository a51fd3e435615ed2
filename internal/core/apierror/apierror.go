package apierror

import "github.com/gofiber/fiber/v2"

// Response represents the structure of an error response.
type Response struct {
	// Message is the error description.
	Message string `json:"message"`
	// Fields holds per-field validation messages, keyed by JSON field name.
	Fields map[string]string `json:"fields,omitempty"`
	// RayID is the unique request identifier for debugging.
	RayID string `json:"ray_id"`
}

// RayID returns the request id assigned by the requestid middleware.
func RayID(c *fiber.Ctx) string {
	rayID, ok := c.Locals("requestid").(string)
	if !ok || rayID == "" {
		return "unknown"
	}
	return rayID
}

// Write replies with status and an error body.
func Write(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(Response{
		Message: message,
		RayID:   RayID(c),
	})
}

// WriteFields replies with status and field-scoped validation errors.
func WriteFields(c *fiber.Ctx, status int, message string, fields map[string]string) error {
	return c.Status(status).JSON(Response{
		Message: message,
		Fields:  fields,
		RayID:   RayID(c),
	})
}
