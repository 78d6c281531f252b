package handlers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/example/etailor/internal/apperrors"
)

// retryAfterSeconds is advertised when a collaborator is unavailable.
const retryAfterSeconds = "5"

type errorBody struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Fields  []apperrors.FieldError `json:"fields,omitempty"`
}

// errorCodes maps sentinels to a status and a stable machine-readable code.
// Order matters: session kinds are checked before plain validation.
var errorCodes = []struct {
	err    error
	status int
	code   string
}{
	{apperrors.ErrInvalidProduct, fiber.StatusUnprocessableEntity, "invalid_product"},
	{apperrors.ErrIneligibleFabric, fiber.StatusUnprocessableEntity, "ineligible_fabric"},
	{apperrors.ErrInvalidOption, fiber.StatusUnprocessableEntity, "invalid_option"},
	{apperrors.ErrInvalidMeasurements, fiber.StatusUnprocessableEntity, "invalid_measurements"},
	{apperrors.ErrIncompleteSession, fiber.StatusUnprocessableEntity, "incomplete_session"},
	{apperrors.ErrValidation, fiber.StatusUnprocessableEntity, "validation_failed"},
	{apperrors.ErrNotFound, fiber.StatusNotFound, "not_found"},
	{apperrors.ErrUnauthenticated, fiber.StatusUnauthorized, "unauthenticated"},
	{apperrors.ErrForbidden, fiber.StatusForbidden, "forbidden"},
	{apperrors.ErrIllegalTransition, fiber.StatusConflict, "illegal_transition"},
	{apperrors.ErrConflict, fiber.StatusConflict, "conflict"},
	{apperrors.ErrUnavailable, fiber.StatusServiceUnavailable, "unavailable"},
}

// ErrorHandler renders every error returned by a handler in the
// {"success": false, "error": {...}} envelope.
func ErrorHandler(c *fiber.Ctx, err error) error {
	body := errorBody{Code: "internal", Message: "internal server error"}
	status := fiber.StatusInternalServerError

	var fe *fiber.Error
	if errors.As(err, &fe) {
		status = fe.Code
		body.Code = codeForStatus(fe.Code)
		body.Message = fe.Message
		return c.Status(status).JSON(fiber.Map{"success": false, "error": body})
	}

	matched := false
	for _, m := range errorCodes {
		if errors.Is(err, m.err) {
			status, body.Code, body.Message = m.status, m.code, err.Error()
			matched = true
			break
		}
	}

	var verr *apperrors.ValidationError
	if errors.As(err, &verr) {
		body.Fields = verr.Fields
	}

	switch {
	case !matched:
		log.Printf("[HTTP] %s %s: %v", c.Method(), c.Path(), err)
	case status == fiber.StatusServiceUnavailable:
		log.Printf("[HTTP] %s %s: %v", c.Method(), c.Path(), err)
		c.Set(fiber.HeaderRetryAfter, retryAfterSeconds)
		body.Message = "service temporarily unavailable, retry shortly"
	}

	return c.Status(status).JSON(fiber.Map{"success": false, "error": body})
}

func codeForStatus(status int) string {
	switch status {
	case fiber.StatusBadRequest:
		return "bad_request"
	case fiber.StatusNotFound:
		return "not_found"
	case fiber.StatusMethodNotAllowed:
		return "method_not_allowed"
	case fiber.StatusRequestEntityTooLarge:
		return "too_large"
	case fiber.StatusUnauthorized:
		return "unauthenticated"
	}
	return "error"
}

func respond(c *fiber.Ctx, status int, data interface{}) error {
	return c.Status(status).JSON(fiber.Map{
		"success": true,
		"data":    data,
	})
}

func respondPage(c *fiber.Ctx, data interface{}, page, limit int, total int64) error {
	return c.JSON(fiber.Map{
		"success": true,
		"data":    data,
		"pagination": fiber.Map{
			"current_page":   page,
			"items_per_page": limit,
			"total_items":    total,
		},
	})
}
