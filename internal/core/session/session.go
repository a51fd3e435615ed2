package session

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	// CookieName carries the session id between browser requests.
	CookieName = "cart_id"
	// HeaderName lets API clients pass the session id explicitly.
	HeaderName = "X-Cart-ID"

	localsKey = "session_id"
)

// New returns a middleware that resolves the caller's session id from the header or cookie,
// minting a new one when absent or malformed, and refreshes the cookie.
// secure restricts the cookie to HTTPS.
func New(ttl time.Duration, secure bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(HeaderName)
		if id == "" {
			id = c.Cookies(CookieName)
		}
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}

		c.Cookie(&fiber.Cookie{
			Name:     CookieName,
			Value:    id,
			Path:     "/",
			Expires:  time.Now().Add(ttl),
			HTTPOnly: true,
			Secure:   secure,
			SameSite: fiber.CookieSameSiteLaxMode,
		})
		c.Set(HeaderName, id)
		c.Locals(localsKey, id)

		return c.Next()
	}
}

// ID returns the session id resolved by the middleware, or "" outside of it.
func ID(c *fiber.Ctx) string {
	id, _ := c.Locals(localsKey).(string)
	return id
}

// WithID is a test helper middleware that pins the session id.
func WithID(id string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals(localsKey, id)
		return c.Next()
	}
}
