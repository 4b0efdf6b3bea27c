package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/tirs/quota/internal/application/dto"
	"github.com/tirs/quota/internal/domain"
)

// Códigos de error de la API.
const (
	codeNotFound      = "NOT_FOUND"
	codeInvalidParams = "INVALID_PARAMS"
	codeInternal      = "INTERNAL"
)

// writeError traduce un error de la capa de aplicación a su respuesta HTTP.
func writeError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Code: codeNotFound, Message: err.Error(),
		})
	case errors.Is(err, domain.ErrInvalidInput):
		return invalidParams(c, err.Error())
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Code: codeInternal, Message: "no se pudo completar el análisis",
		})
	}
}

func invalidParams(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
		Code: codeInvalidParams, Message: message,
	})
}

func isClientError(err error) bool {
	return errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrInvalidInput)
}
