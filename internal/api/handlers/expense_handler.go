package handlers

import (
	"errors"
	"time"

	"spendlens/internal/dto"
	"spendlens/internal/pipeline"
	"spendlens/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ExpenseHandler struct {
	expenseService *service.ExpenseService
	logger         *zap.Logger
}

func NewExpenseHandler(expenseService *service.ExpenseService, logger *zap.Logger) *ExpenseHandler {
	return &ExpenseHandler{
		expenseService: expenseService,
		logger:         logger,
	}
}

// CreateExpense godoc
// @Summary Create an expense manually
// @Description Manual entry path, also used as the fallback after a failed receipt pipeline run. Accepts the same field shape as the pipeline prefill.
// @Tags expenses
// @Accept json
// @Produce json
// @Param request body dto.ManualExpenseRequest true "Expense fields"
// @Security Bearer
// @Success 201 {object} dto.ExpenseResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 422 {object} dto.PipelineFailure
// @Router /api/v1/expenses [post]
func (h *ExpenseHandler) CreateExpense(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	var req dto.ManualExpenseRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if err := validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	expense, err := h.expenseService.CreateManual(c.Context(), userID, &req)
	if err != nil {
		var perr *pipeline.PipelineError
		switch {
		case errors.As(err, &perr):
			return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.PipelineFailure{
				Stage:  string(perr.Stage),
				Kind:   string(perr.Kind),
				Detail: perr.Detail,
			})
		case errors.Is(err, service.ErrReceiptNotFound):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Receipt image not found",
			})
		case errors.Is(err, service.ErrNotOwner):
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Receipt image belongs to another user",
			})
		}
		h.logger.Error("Failed to create expense", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create expense",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(dto.NewExpenseResponse(expense))
}

// ListExpenses godoc
// @Summary List user's expenses
// @Tags expenses
// @Produce json
// @Param category query string false "Filter by category"
// @Param limit query int false "Limit" default(20)
// @Param offset query int false "Offset" default(0)
// @Security Bearer
// @Success 200 {array} dto.ExpenseResponse
// @Failure 401 {object} map[string]string
// @Router /api/v1/expenses [get]
func (h *ExpenseHandler) ListExpenses(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	category := c.Query("category")
	limit := c.QueryInt("limit", 20)
	offset := c.QueryInt("offset", 0)

	expenses, err := h.expenseService.List(c.Context(), userID, category, limit, offset)
	if err != nil {
		h.logger.Error("Failed to list expenses", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list expenses",
		})
	}

	responses := make([]*dto.ExpenseResponse, len(expenses))
	for i, expense := range expenses {
		responses[i] = dto.NewExpenseResponse(expense)
	}

	return c.JSON(responses)
}

// ExpenseSummary godoc
// @Summary Monthly spend summary by category
// @Tags expenses
// @Produce json
// @Param month query string false "Month in YYYY-MM format, defaults to current month"
// @Security Bearer
// @Success 200 {object} dto.ExpenseSummaryResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /api/v1/expenses/summary [get]
func (h *ExpenseHandler) ExpenseSummary(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	month := time.Now().UTC()
	if monthStr := c.Query("month"); monthStr != "" {
		month, err = time.Parse("2006-01", monthStr)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid month, expected YYYY-MM",
			})
		}
	}

	summary, err := h.expenseService.Summary(c.Context(), userID, month)
	if err != nil {
		h.logger.Error("Failed to build expense summary", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to build expense summary",
		})
	}

	return c.JSON(summary)
}

// DeleteExpense godoc
// @Summary Delete an expense
// @Tags expenses
// @Produce json
// @Param id path string true "Expense ID"
// @Security Bearer
// @Success 204
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/v1/expenses/{id} [delete]
func (h *ExpenseHandler) DeleteExpense(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	expenseID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid expense ID",
		})
	}

	if err := h.expenseService.Delete(c.Context(), userID, expenseID); err != nil {
		switch {
		case errors.Is(err, service.ErrExpenseNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Expense not found",
			})
		case errors.Is(err, service.ErrNotOwner):
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Expense belongs to another user",
			})
		}
		h.logger.Error("Failed to delete expense", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete expense",
		})
	}

	return c.SendStatus(fiber.StatusNoContent)
}
