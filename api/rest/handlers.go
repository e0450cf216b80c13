package rest

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// handleHealth reports liveness.
func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// handleExecute plans and runs one request.
func (s *Server) handleExecute(c *fiber.Ctx) error {
	var req ExecuteRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "bad_request",
			Message: "invalid request body: " + err.Error(),
		})
	}

	if req.Text == "" && req.Plan == nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "bad_request",
			Message: "either text or plan is required",
		})
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.New().String()
	}

	plan := req.Plan
	if plan == nil {
		if s.planner == nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(ErrorResponse{
				Error:   "planner_unavailable",
				Message: "no planner is configured; submit a plan directly",
			})
		}
		var err error
		plan, err = s.planner.Plan(c.Context(), req.Text)
		if err != nil {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(ErrorResponse{
				Error:   "planning_failed",
				Message: err.Error(),
			})
		}
	}

	results := s.engine.Run(c.Context(), sessionID, plan)

	return c.JSON(ExecuteResponse{
		SessionID: sessionID,
		Pattern:   plan.Pattern,
		Results:   results,
	})
}

// handleConfirm settles a pending confirmation.
func (s *Server) handleConfirm(c *fiber.Ctx) error {
	var req ConfirmRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "bad_request",
			Message: "invalid request body: " + err.Error(),
		})
	}

	if req.SessionID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "bad_request",
			Message: "session_id is required",
		})
	}
	if req.Confirmation == nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "bad_request",
			Message: "confirmation payload is required",
		})
	}

	result := s.engine.Resume(c.Context(), req.SessionID, req.Confirmation, req.Approved)

	return c.JSON(ConfirmResponse{
		SessionID: req.SessionID,
		Result:    result,
	})
}

// handleCapabilities lists the capability table.
func (s *Server) handleCapabilities(c *fiber.Ctx) error {
	caps := s.engine.Capabilities()
	infos := make([]CapabilityInfo, 0)
	for _, name := range caps.Names() {
		desc := caps.Get(name)
		infos = append(infos, CapabilityInfo{
			Name:          desc.Name,
			Description:   desc.Description,
			Communication: desc.Communication,
			Required:      desc.Required,
		})
	}
	return c.JSON(fiber.Map{"capabilities": infos})
}

// handleStats exposes session and latency statistics.
func (s *Server) handleStats(c *fiber.Ctx) error {
	latency := make(map[string]any)
	for name, st := range s.engine.Progress().LatencySnapshot() {
		latency[name] = st
	}

	active := 0
	if s.sessions != nil {
		active = s.sessions.Len()
	}

	return c.JSON(StatsResponse{
		ActiveSessions: active,
		Latency:        latency,
	})
}
