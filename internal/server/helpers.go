package server

import (
	"errors"

	"homestead/internal/models"

	"github.com/gofiber/fiber/v2"
)

// currentAccountID reads the account identity resolved by AuthRequired.
func currentAccountID(c *fiber.Ctx) uint {
	id, _ := c.Locals("accountID").(uint)
	return id
}

// statusForError maps a typed error onto its default HTTP status.
// Handlers override the mapping where an endpoint's contract differs
// (e.g. a registration conflict is the caller's fault, a slug-space
// conflict is ours).
func statusForError(err error) int {
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		switch appErr.Code {
		case models.CodeValidation:
			return fiber.StatusBadRequest
		case models.CodeUnauthorized:
			return fiber.StatusUnauthorized
		case models.CodeForbidden:
			return fiber.StatusForbidden
		case models.CodeNotFound:
			return fiber.StatusNotFound
		case models.CodeConflict:
			// Exhausted uniqueness is unexpected, not a client error.
			return fiber.StatusInternalServerError
		}
	}
	return fiber.StatusInternalServerError
}

func fail(c *fiber.Ctx, err error) error {
	return models.RespondWithError(c, statusForError(err), err)
}
