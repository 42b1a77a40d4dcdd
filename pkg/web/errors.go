package web

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/moogar0880/problems"

	"github.com/apexcrm/flowkit/pkg/governance"
	"github.com/apexcrm/flowkit/pkg/graph"
	"github.com/apexcrm/flowkit/pkg/models"
	"github.com/apexcrm/flowkit/pkg/services"
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

func conflict(c fiber.Ctx, errType, detail string) error {
	problem := problems.NewStatusProblem(409).
		WithInstance(c.Path()).
		WithType(errType).
		WithDetail(detail)

	return c.Status(fiber.StatusConflict).JSON(problem)
}

func internalError(c fiber.Ctx, err error) error {
	problem := problems.NewStatusProblem(500).
		WithInstance(c.Path()).
		WithType("internal_error").
		WithError(err)

	return c.Status(fiber.StatusInternalServerError).JSON(problem)
}

// handleCompileError maps editable/normalized conversion failures to 400
// responses naming the offending node or edge.
func handleCompileError(c fiber.Ctx, err error) error {
	var compile *graph.CompileError
	if errors.As(err, &compile) {
		problem := problems.NewStatusProblem(400).
			WithInstance(c.Path()).
			WithType("compile_error").
			WithDetail(compile.Error())

		return c.Status(fiber.StatusBadRequest).JSON(problem)
	}

	return internalError(c, err)
}

// handleGovernanceError adds the approval-specific mappings on top of the
// generic service error handling.
func handleGovernanceError(c fiber.Ctx, err error) error {
	if errors.Is(err, governance.ErrActorRequired) {
		return badRequest(c, "actor_id is required to approve")
	}

	return handleServiceError(c, err)
}

// handleServiceError provides typed error handling for service layer errors.
func handleServiceError(c fiber.Ctx, err error) error {
	var governance *models.GovernanceError
	if errors.As(err, &governance) {
		return conflict(c, "governance_error", governance.Message)
	}

	var invalid *models.InvalidTransitionError
	if errors.As(err, &invalid) {
		return conflict(c, "invalid_transition", invalid.Error())
	}

	var validation *models.ValidationError
	if errors.As(err, &validation) {
		problem := problems.NewStatusProblem(400).
			WithInstance(c.Path()).
			WithType("validation_error").
			WithDetail(validation.Error())

		return c.Status(fiber.StatusBadRequest).JSON(problem)
	}

	switch {
	case services.IsNotFoundError(err):
		return notFound(c, err.Error())
	case services.IsValidationError(err):
		return badRequest(c, err.Error())
	case services.IsConflictError(err):
		return conflict(c, "conflict", err.Error())
	default:
		return internalError(c, err)
	}
}
