// Package web provides HTTP handlers and REST API endpoints for workflow
// management.
package web

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"github.com/apexcrm/flowkit/pkg/governance"
	"github.com/apexcrm/flowkit/pkg/graph"
	"github.com/apexcrm/flowkit/pkg/models"
	"github.com/apexcrm/flowkit/pkg/registry"
	"github.com/apexcrm/flowkit/pkg/runs"
	"github.com/apexcrm/flowkit/pkg/services"
	"github.com/apexcrm/flowkit/pkg/templates"
)

type APIHandlers struct {
	workflowService *services.Workflow
	stateMachine    *governance.StateMachine
	ledger          *runs.Ledger
	installer       *templates.Installer
	registry        *registry.Registry
	compiler        *graph.Compiler
	validator       *validator.Validate
}

func NewAPIHandlers(
	workflowService *services.Workflow,
	stateMachine *governance.StateMachine,
	ledger *runs.Ledger,
	installer *templates.Installer,
	reg *registry.Registry,
	validate *validator.Validate,
) *APIHandlers {
	return &APIHandlers{
		workflowService: workflowService,
		stateMachine:    stateMachine,
		ledger:          ledger,
		installer:       installer,
		registry:        reg,
		compiler:        graph.NewCompiler(),
		validator:       validate,
	}
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	repositoryCheck, repOk := h.workflowService.HealthCheck(c.Context())

	status := "unhealthy"
	httpStatus := http.StatusInternalServerError

	if repOk {
		status = "healthy"
		httpStatus = http.StatusOK
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status": status,
		"checkers": fiber.Map{
			"repository": repositoryCheck,
		},
		"timestamp": time.Now().UTC(),
	})
}

// Workflow CRUD

func (h *APIHandlers) GetWorkflows(c fiber.Ctx) error {
	req := services.ListWorkflowsRequest{OrgID: c.Query("org_id")}

	if limitStr := c.Query("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil {
			return badRequest(c, "Invalid limit parameter")
		}

		req.Limit = limit
	}

	if offsetStr := c.Query("offset"); offsetStr != "" {
		offset, err := strconv.Atoi(offsetStr)
		if err != nil {
			return badRequest(c, "Invalid offset parameter")
		}

		req.Offset = offset
	}

	if statusStr := c.Query("lifecycle_status"); statusStr != "" {
		status := models.LifecycleStatus(statusStr)
		req.LifecycleStatus = &status
	}

	if statusStr := c.Query("approval_status"); statusStr != "" {
		status := models.ApprovalStatus(statusStr)
		req.ApprovalStatus = &status
	}

	defs, err := h.workflowService.ListWorkflows(c.Context(), req)
	if err != nil {
		return handleServiceError(c, err)
	}

	summaries := make([]WorkflowSummary, 0, len(defs))
	for _, def := range defs {
		summaries = append(summaries, TransformWorkflowSummary(def))
	}

	return c.JSON(fiber.Map{
		"workflows": summaries,
		"pagination": fiber.Map{
			"limit":  req.Limit,
			"offset": req.Offset,
		},
	})
}

func (h *APIHandlers) GetWorkflow(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	def, err := h.workflowService.FetchByID(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(def)
}

func (h *APIHandlers) CreateWorkflow(c fiber.Ctx) error {
	var req CreateWorkflowRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	def := &models.WorkflowDefinition{
		Name:        req.Name,
		Description: req.Description,
		Trigger:     req.Trigger,
		Graph:       req.Graph,
	}

	if def.Graph == nil {
		def.Graph = &models.Graph{Nodes: []*models.Node{}, Edges: []*models.Edge{}}
	}

	org := models.OrgContext{OrgID: req.OrgID, ActorID: req.ActorID}

	created, err := h.workflowService.Create(c.Context(), def, org)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *APIHandlers) UpdateWorkflow(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	var req UpdateWorkflowRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	existing, err := h.workflowService.FetchByID(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	if req.Name != nil {
		existing.Name = *req.Name
	}

	if req.Description != nil {
		existing.Description = *req.Description
	}

	if req.Trigger != nil {
		existing.Trigger = req.Trigger
	}

	if req.Graph != nil {
		existing.Graph = req.Graph
	}

	updated, err := h.workflowService.Update(c.Context(), id, existing)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(updated)
}

func (h *APIHandlers) DeleteWorkflow(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	if err := h.workflowService.Delete(c.Context(), id); err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// Editor session: materialize the editable graph, accept it back on save.

func (h *APIHandlers) GetEditableGraph(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	def, err := h.workflowService.FetchByID(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	g := def.Graph
	if g == nil {
		g = &models.Graph{}
	}

	editable, err := h.compiler.ToEditable(g)
	if err != nil {
		return handleCompileError(c, err)
	}

	return c.JSON(editable)
}

func (h *APIHandlers) PutGraph(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	editable, err := graph.DecodeEditable(c.Body())
	if err != nil {
		return handleCompileError(c, err)
	}

	normalized, err := h.compiler.ToNormalized(editable)
	if err != nil {
		return handleCompileError(c, err)
	}

	updated, err := h.workflowService.UpdateGraph(c.Context(), id, normalized)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(updated)
}

// Governance

func (h *APIHandlers) RequestApproval(c fiber.Ctx) error {
	return h.approvalAction(c, h.stateMachine.Request)
}

func (h *APIHandlers) Approve(c fiber.Ctx) error {
	return h.approvalAction(c, h.stateMachine.Approve)
}

func (h *APIHandlers) Reject(c fiber.Ctx) error {
	return h.approvalAction(c, h.stateMachine.Reject)
}

func (h *APIHandlers) approvalAction(
	c fiber.Ctx,
	action func(ctx context.Context, workflowID, actorID, notes string) (*models.WorkflowDefinition, error),
) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	var req ApprovalActionRequest
	if len(c.Body()) > 0 {
		if err := c.Bind().JSON(&req); err != nil {
			return badRequest(c, "Invalid JSON format")
		}
	}

	def, err := action(c.Context(), id, req.ActorID, req.Notes)
	if err != nil {
		return handleGovernanceError(c, err)
	}

	return c.JSON(def)
}

func (h *APIHandlers) GetApprovalHistory(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	history, err := h.stateMachine.History(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{"events": history})
}

// Lifecycle

func (h *APIHandlers) ActivateWorkflow(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	def, err := h.workflowService.Activate(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(def)
}

func (h *APIHandlers) PauseWorkflow(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	def, err := h.workflowService.Pause(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(def)
}

// Run ledger intake and queries

func (h *APIHandlers) StartRun(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	record, err := h.ledger.StartRun(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(record)
}

func (h *APIHandlers) CompleteRun(c fiber.Ctx) error {
	runID := c.Params("runId")
	if runID == "" {
		return badRequest(c, "Run ID is required")
	}

	var req CompleteRunRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	record, err := h.ledger.CompleteRun(c.Context(), runID, req.Outcome, req.Error)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(record)
}

func (h *APIHandlers) CancelRun(c fiber.Ctx) error {
	runID := c.Params("runId")
	if runID == "" {
		return badRequest(c, "Run ID is required")
	}

	record, err := h.ledger.CancelRun(c.Context(), runID)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(record)
}

func (h *APIHandlers) GetRuns(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	limit := 0

	if limitStr := c.Query("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil {
			return badRequest(c, "Invalid limit parameter")
		}

		limit = parsed
	}

	records, err := h.ledger.ListRuns(c.Context(), id, limit)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{"runs": records})
}

// Registry catalog: the action kinds and domain event types the editor can
// offer when building a workflow.

func (h *APIHandlers) GetActionKinds(c fiber.Ctx) error {
	kinds := h.registry.ActionKinds()

	summaries := make([]ActionKindSummary, 0, len(kinds))
	for _, kind := range kinds {
		summaries = append(summaries, ActionKindSummary{
			Kind:        kind.Kind,
			Description: kind.Description,
			Schema:      kind.Schema,
		})
	}

	return c.JSON(fiber.Map{"action_kinds": summaries})
}

func (h *APIHandlers) GetEventTypes(c fiber.Ctx) error {
	return c.JSON(fiber.Map{"event_types": h.registry.EventTypes()})
}

// Templates

func (h *APIHandlers) GetTemplates(c fiber.Ctx) error {
	list, err := h.installer.ListTemplates(c.Context())
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{"templates": list})
}

func (h *APIHandlers) InstallTemplate(c fiber.Ctx) error {
	templateID := c.Params("id")
	if templateID == "" {
		return badRequest(c, "Template ID is required")
	}

	var req InstallTemplateRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	org := models.OrgContext{OrgID: req.OrgID, ActorID: req.ActorID}

	def, err := h.installer.Install(c.Context(), templateID, org)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(def)
}
