package middleware

import (
	contextPkg "MediVoice/pkg/context"
	"MediVoice/pkg/utils"
	"regexp"
	"time"

	"github.com/gofiber/fiber/v2"
)

const RequestIDKey = contextPkg.HeaderRequestID

// Client IDs end up in logs and response headers verbatim.
var validRequestID = regexp.MustCompile(`^[A-Za-z0-9._-]{1,64}$`)

// NewRequestIDMiddleware keeps a well-formed X-Request-ID from the client and
// mints a ULID otherwise. The ID is echoed back and stored in both the locals
// and the user context.
func NewRequestIDMiddleware() fiber.Handler {
	utilsInstance := utils.New()

	return func(c *fiber.Ctx) error {
		requestID := c.Get(RequestIDKey)

		if !validRequestID.MatchString(requestID) {
			requestID, _ = utilsInstance.NewULIDFromTimestamp(time.Now())
		}

		c.Locals(RequestIDKey, requestID)
		c.Set(RequestIDKey, requestID)
		c.SetUserContext(contextPkg.WithRequestID(c.UserContext(), requestID))

		return c.Next()
	}
}
