package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/localnerve/plansdb/internal/logging"
	"github.com/sirupsen/logrus"
)

// RequestIDHeader carries the request id in and out
const RequestIDHeader = "X-Request-Id"

// RequestLogger tags each request with an id and a logger entry. The entry
// is stored in the locals under "logger" and in the user context.
func RequestLogger(logger *logrus.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		requestID := c.Get(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set(RequestIDHeader, requestID)

		entry := logger.WithFields(logrus.Fields{
			"request_id": requestID,
			"method":     c.Method(),
			"path":       c.Path(),
		})
		c.Locals("requestId", requestID)
		c.Locals("logger", entry)
		c.SetUserContext(logging.WithLogger(c.UserContext(), entry))

		err := c.Next()
		if err != nil {
			// Let the error handler write the response before logging its status
			if handlerErr := c.App().ErrorHandler(c, err); handlerErr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		status := c.Response().StatusCode()
		fields := entry.WithFields(logrus.Fields{
			"status":   status,
			"duration": time.Since(start),
		})
		switch {
		case status >= fiber.StatusInternalServerError:
			fields.Error("request completed")
		case status >= fiber.StatusBadRequest:
			fields.Warn("request completed")
		default:
			fields.Info("request completed")
		}
		return nil
	}
}
