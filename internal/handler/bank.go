package handler

import (
	"errors"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/capogreco/string.assembly.fm-sub005/internal/bank"
	"github.com/capogreco/string.assembly.fm-sub005/internal/ensemble"
	"github.com/capogreco/string.assembly.fm-sub005/internal/model"
	"github.com/capogreco/string.assembly.fm-sub005/pkg/response"
)

// Operator-facing bank ids. Bank 0 is reserved for autosave.
const (
	minBankID = 1
	maxBankID = 16
)

type BankHandler struct {
	coordinator *ensemble.Coordinator
	validator   *validator.Validate
}

func NewBankHandler(c *ensemble.Coordinator, v *validator.Validate) *BankHandler {
	return &BankHandler{
		coordinator: c,
		validator:   v,
	}
}

// Save handles POST /api/banks/:id/save
func (h *BankHandler) Save(c *fiber.Ctx) error {
	id, err := parseBankID(c)
	if err != nil {
		return response.ValidationError(c, err.Error(), nil)
	}

	if err := h.coordinator.SaveBank(c.Context(), id); err != nil {
		return response.ServiceError(c, err.Error())
	}
	return response.NoContent(c)
}

// Load handles POST /api/banks/:id/load
func (h *BankHandler) Load(c *fiber.Ctx) error {
	id, err := parseBankID(c)
	if err != nil {
		return response.ValidationError(c, err.Error(), nil)
	}

	var req model.BankLoadRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return response.ValidationError(c, "Invalid request body", nil)
		}
		if err := h.validator.Struct(&req); err != nil {
			return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
		}
	}

	if err := h.coordinator.LoadBank(c.Context(), id, req.Transition); err != nil {
		if errors.Is(err, bank.ErrNotFound) {
			return response.NotFound(c, "Bank not found")
		}
		return response.ServiceError(c, err.Error())
	}
	return response.NoContent(c)
}

func parseBankID(c *fiber.Ctx) (int, error) {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil || id < minBankID || id > maxBankID {
		return 0, errors.New("bank id must be an integer between 1 and 16")
	}
	return id, nil
}
