package utils

import (
	"bursary-portal-backend/apperrors"
	"bursary-portal-backend/config"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// StatusForKind maps an error kind to its HTTP status.
func StatusForKind(kind apperrors.Kind) int {
	switch kind {
	case apperrors.KindValidation:
		return fiber.StatusUnprocessableEntity
	case apperrors.KindAuthRequired:
		return fiber.StatusUnauthorized
	case apperrors.KindAccessDenied:
		return fiber.StatusForbidden
	case apperrors.KindNotFound:
		return fiber.StatusNotFound
	case apperrors.KindUploadFailure, apperrors.KindPersistenceFailure:
		return fiber.StatusBadGateway
	}
	return fiber.StatusInternalServerError
}

// RespondError writes the standard failure envelope for err.
func RespondError(c *fiber.Ctx, err error) error {
	appErr, ok := apperrors.As(err)
	if !ok {
		config.Logger.Error("Unhandled error",
			zap.String("path", c.Path()), zap.String("method", c.Method()), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Something went wrong",
			"error":   err.Error(),
		})
	}

	return c.Status(StatusForKind(appErr.Kind)).JSON(fiber.Map{
		"success": false,
		"kind":    appErr.Kind,
		"message": appErr.Message,
		"error":   appErr.Detail,
	})
}

func RespondSuccess(c *fiber.Ctx, status int, message string, data interface{}) error {
	return c.Status(status).JSON(fiber.Map{
		"success": true,
		"message": message,
		"data":    data,
	})
}
