package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/capogreco/string.assembly.fm-sub005/internal/ensemble"
	"github.com/capogreco/string.assembly.fm-sub005/internal/model"
	"github.com/capogreco/string.assembly.fm-sub005/internal/state"
	"github.com/capogreco/string.assembly.fm-sub005/pkg/response"
)

type PerformanceHandler struct {
	coordinator *ensemble.Coordinator
	validator   *validator.Validate
}

func NewPerformanceHandler(c *ensemble.Coordinator, v *validator.Validate) *PerformanceHandler {
	return &PerformanceHandler{
		coordinator: c,
		validator:   v,
	}
}

// SetChord handles PUT /api/chord
func (h *PerformanceHandler) SetChord(c *fiber.Ctx) error {
	var req model.SetChordRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}

	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	return response.OK(c, h.coordinator.SetChord(req.Frequencies))
}

// SetExpression handles PUT /api/chord/expression
func (h *PerformanceHandler) SetExpression(c *fiber.Ctx) error {
	var req model.SetExpressionRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}

	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	result, err := h.coordinator.SetExpression(req.NoteName, req.Expression)
	if err != nil {
		if errors.Is(err, state.ErrNoteNotInChord) {
			return response.NotFound(c, "Note not in chord")
		}
		return response.ServiceError(c, err.Error())
	}

	return response.OK(c, result)
}

// ClearExpression handles DELETE /api/chord/expression/:noteName
func (h *PerformanceHandler) ClearExpression(c *fiber.Ctx) error {
	noteName := c.Params("noteName")
	if noteName == "" {
		return response.ValidationError(c, "Note name is required", nil)
	}

	return response.OK(c, h.coordinator.ClearExpression(noteName))
}

// SetHarmonics handles PUT /api/harmonics
func (h *PerformanceHandler) SetHarmonics(c *fiber.Ctx) error {
	var req model.HarmonicsRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}

	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	h.coordinator.SetHarmonicValues(req.Expression, req.Part, req.Values)
	return response.NoContent(c)
}

// ToggleHarmonic handles POST /api/harmonics/toggle
func (h *PerformanceHandler) ToggleHarmonic(c *fiber.Ctx) error {
	var req model.HarmonicToggleRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}

	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	h.coordinator.ToggleHarmonic(req.Expression, req.Part, req.Value)
	return response.NoContent(c)
}

// Send handles POST /api/send
func (h *PerformanceHandler) Send(c *fiber.Ctx) error {
	var req model.SendRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return response.ValidationError(c, "Invalid request body", nil)
		}
		if err := h.validator.Struct(&req); err != nil {
			return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
		}
	}

	report, err := h.coordinator.SendCurrentPart(req.Transition, req.Strategy)
	if err != nil {
		if errors.Is(err, ensemble.ErrNoPeersReached) {
			return response.NoPeersReached(c)
		}
		return response.ServiceError(c, err.Error())
	}

	return response.OK(c, report)
}

// Power handles POST /api/power
func (h *PerformanceHandler) Power(c *fiber.Ctx) error {
	var req model.PowerRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}

	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	return response.OK(c, h.coordinator.SetPower(*req.Value))
}

// Ensemble handles GET /api/ensemble
func (h *PerformanceHandler) Ensemble(c *fiber.Ctx) error {
	return response.OK(c, h.coordinator.View())
}

func formatValidationErrors(err error) []map[string]string {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return nil
	}
	details := make([]map[string]string, 0, len(ve))
	for _, fe := range ve {
		details = append(details, map[string]string{
			"field": fe.Field(),
			"rule":  fe.Tag(),
		})
	}
	return details
}
