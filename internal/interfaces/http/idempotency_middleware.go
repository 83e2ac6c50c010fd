package http

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/dispatch-api/internal/application/dto"
	"github.com/jhoicas/dispatch-api/pkg/logger"
)

// HeaderIdempotencyKey header opcional en las peticiones que modifican estado.
const HeaderIdempotencyKey = "Idempotency-Key"

// IdempotencyStore reserva claves de idempotencia (Redis en producción).
type IdempotencyStore interface {
	SetIdempotency(ctx context.Context, key string) (bool, error)
	ReleaseIdempotency(ctx context.Context, key string) error
}

// Idempotency rechaza con 409 una Idempotency-Key ya usada por la misma empresa.
// La clave se libera si la petición falla, para permitir el reintento.
// Con store nil el middleware no hace nada.
func Idempotency(store IdempotencyStore, log *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if store == nil {
			return c.Next()
		}
		key := strings.TrimSpace(c.Get(HeaderIdempotencyKey))
		if key == "" {
			return c.Next()
		}
		scoped := GetCompanyID(c) + ":" + key

		ok, err := store.SetIdempotency(c.Context(), scoped)
		if err != nil {
			log.Error().Err(err).Str("key", scoped).Msg("reservar clave de idempotencia")
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "no se pudo verificar la clave de idempotencia"})
		}
		if !ok {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE_REQUEST", Message: "Idempotency-Key ya utilizada"})
		}

		err = c.Next()
		if err != nil || c.Response().StatusCode() >= fiber.StatusBadRequest {
			if relErr := store.ReleaseIdempotency(c.Context(), scoped); relErr != nil {
				log.Warn().Err(relErr).Str("key", scoped).Msg("liberar clave de idempotencia")
			}
		}
		return err
	}
}
