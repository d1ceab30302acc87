package api

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/moogar0880/problems"

	"github.com/orbimatrix/Floworb-AI/pkg/floworb"
	"github.com/orbimatrix/Floworb-AI/pkg/floworb/journal"
)

func badRequest(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(400).
		WithInstance(c.Path()).
		WithType("validation_error").
		WithDetail(detail)

	return c.Status(fiber.StatusBadRequest).JSON(problem)
}

func notFound(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(404).
		WithInstance(c.Path()).
		WithType("not_found").
		WithDetail(detail)

	return c.Status(fiber.StatusNotFound).JSON(problem)
}

func internalError(c fiber.Ctx, err error) error {
	problem := problems.NewStatusProblem(500).
		WithInstance(c.Path()).
		WithType("internal_error").
		WithError(err)

	return c.Status(fiber.StatusInternalServerError).JSON(problem)
}

// classify maps an error to its HTTP status and problem type.
// Unrecognised errors yield zero.
func classify(err error) (int, string) {
	if errors.Is(err, journal.ErrNotFound) {
		return fiber.StatusNotFound, "not_found"
	}

	switch floworb.Categorize(err) {
	case floworb.CategoryNotFound:
		return fiber.StatusNotFound, "not_found"
	case floworb.CategoryConflict:
		return fiber.StatusConflict, "conflict"
	case floworb.CategoryValidation:
		if errors.Is(err, floworb.ErrInvalidNode) ||
			errors.Is(err, floworb.ErrUnknownKind) ||
			errors.Is(err, floworb.ErrSelfLoop) {
			return fiber.StatusBadRequest, "validation_error"
		}
		return fiber.StatusUnprocessableEntity, "validation_error"
	case floworb.CategoryTimeout:
		return fiber.StatusGatewayTimeout, "timeout"
	case floworb.CategoryService:
		return fiber.StatusBadGateway, "service_error"
	default:
		return 0, ""
	}
}

// handleError maps graph, engine and journal errors onto problem responses.
func handleError(c fiber.Ctx, err error) error {
	status, errType := classify(err)
	if status == 0 {
		return internalError(c, err)
	}

	problem := problems.NewStatusProblem(status).
		WithInstance(c.Path()).
		WithType(errType).
		WithDetail(err.Error())

	return c.Status(status).JSON(problem)
}
