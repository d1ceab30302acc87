package api

import (
	"log/slog"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"github.com/orbimatrix/Floworb-AI/pkg/floworb"
	"github.com/orbimatrix/Floworb-AI/pkg/floworb/journal"
	"github.com/orbimatrix/Floworb-AI/pkg/floworb/notify"
)

const defaultRunsLimit = 20

type handlers struct {
	logger        *slog.Logger
	graph         *floworb.Graph
	engine        *floworb.Engine
	journal       journal.Store
	notifications *notify.Recorder
	validator     *validator.Validate
}

func (h *handlers) GetGraph(c fiber.Ctx) error {
	return c.JSON(h.graph.Snapshot())
}

func (h *handlers) ListNodes(c fiber.Ctx) error {
	return c.JSON(h.graph.Nodes())
}

func (h *handlers) GetNode(c fiber.Ctx) error {
	node, err := h.graph.Node(c.Params("id"))
	if err != nil {
		return handleError(c, err)
	}

	return c.JSON(node)
}

func (h *handlers) CreateNode(c fiber.Ctx) error {
	var req CreateNodeRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	kind := floworb.Kind(req.Kind)
	payload, err := floworb.DecodePayload(kind, req.Data)
	if err != nil {
		return badRequest(c, err.Error())
	}

	label := req.Label
	if label == "" {
		label = floworb.DefaultLabel(kind)
	}

	node, err := h.graph.CreateNode(floworb.NodeSpec{
		ID:       req.ID,
		Kind:     kind,
		Label:    label,
		Position: req.Position,
		Data:     payload,
	})
	if err != nil {
		return handleError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(node)
}

func (h *handlers) UpdateNode(c fiber.Ctx) error {
	var req UpdateNodeRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	patch := req.patch()
	if patch.IsEmpty() {
		return badRequest(c, "No fields to update")
	}

	node, err := h.graph.UpdateNode(c.Params("id"), patch)
	if err != nil {
		return handleError(c, err)
	}

	return c.JSON(node)
}

func (h *handlers) DeleteNode(c fiber.Ctx) error {
	id := c.Params("id")
	if err := h.graph.DeleteNode(id); err != nil {
		return handleError(c, err)
	}

	if h.journal != nil {
		if err := h.journal.DeleteNode(id); err != nil {
			h.logger.Warn("failed to drop run history", "node_id", id, "error", err)
		}
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// RunNode executes a node synchronously. A run that executed and failed
// answers with the Result under the status its failure maps to.
func (h *handlers) RunNode(c fiber.Ctx) error {
	result, err := h.engine.Run(c.Context(), c.Params("id"))
	if err == nil {
		return c.JSON(result)
	}
	if result == nil {
		return handleError(c, err)
	}

	status, _ := classify(err)
	if status == 0 {
		status = fiber.StatusInternalServerError
	}
	return c.Status(status).JSON(result)
}

func (h *handlers) ListRuns(c fiber.Ctx) error {
	id := c.Params("id")
	if _, err := h.graph.Node(id); err != nil {
		return handleError(c, err)
	}

	limit := defaultRunsLimit
	if limitStr := c.Query("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 0 {
			return badRequest(c, "Invalid limit")
		}
		limit = parsed
	}

	if h.journal == nil {
		return c.JSON([]journal.Record{})
	}

	records, err := h.journal.List(id, limit)
	if err != nil {
		return handleError(c, err)
	}

	return c.JSON(records)
}

func (h *handlers) GetRun(c fiber.Ctx) error {
	if h.journal == nil {
		return notFound(c, "Run history is disabled")
	}

	record, err := h.journal.Get(c.Params("runId"))
	if err != nil {
		return handleError(c, err)
	}

	return c.JSON(record)
}

func (h *handlers) ListConnections(c fiber.Ctx) error {
	return c.JSON(h.graph.Connections())
}

// CreateConnection answers 201 for a new edge and 200 when the pair was
// already connected.
func (h *handlers) CreateConnection(c fiber.Ctx) error {
	var req CreateConnectionRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	var (
		conn    floworb.Connection
		created bool
		err     error
	)
	if req.ID != "" {
		conn, created, err = h.graph.ConnectWithID(req.ID, req.SourceID, req.TargetID)
	} else {
		conn, created, err = h.graph.Connect(req.SourceID, req.TargetID)
	}
	if err != nil {
		return handleError(c, err)
	}

	if created {
		return c.Status(fiber.StatusCreated).JSON(conn)
	}
	return c.JSON(conn)
}

func (h *handlers) DeleteConnection(c fiber.Ctx) error {
	if err := h.graph.Disconnect(c.Params("id")); err != nil {
		return handleError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *handlers) ListNotifications(c fiber.Ctx) error {
	if h.notifications == nil {
		return c.JSON([]notify.Notification{})
	}

	return c.JSON(h.notifications.Recent())
}
