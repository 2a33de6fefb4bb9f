package http

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/greenbox-dashboard/pkg/logger"
)

// RequestLogger devuelve un middleware Fiber que registra cada petición con zerolog.
//
// Nivel según el status final:
//   - 5xx → error
//   - 4xx → warn
//   - resto → info
func RequestLogger(log *logger.Logger) fiber.Handler {
	httpLog := log.Component("http")
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			status = fiber.StatusInternalServerError
			var fe *fiber.Error
			if errors.As(err, &fe) {
				status = fe.Code
			}
		}

		var ev *zerolog.Event
		switch {
		case status >= fiber.StatusInternalServerError:
			ev = httpLog.Error().Err(err)
		case status >= fiber.StatusBadRequest:
			ev = httpLog.Warn()
		default:
			ev = httpLog.Info()
		}
		ev.Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Msg("petición HTTP")
		return err
	}
}
