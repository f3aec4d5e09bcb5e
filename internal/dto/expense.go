package dto

import (
	"time"

	"spendlens/internal/models"
)

// ManualExpenseRequest is the manual entry fallback form. It accepts the
// same field subset as the pipeline prefill, so a failed run's partial
// data round-trips into it unchanged.
type ManualExpenseRequest struct {
	Name           string   `json:"expense_name" validate:"required"`
	Amount         *float64 `json:"amount" validate:"required,gt=0"`
	Category       string   `json:"category" validate:"required"`
	Date           string   `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Merchant       string   `json:"merchant"`
	Notes          string   `json:"notes"`
	ReceiptImageID string   `json:"receipt_image_id" validate:"omitempty,uuid"`
}

type ExpenseResponse struct {
	ID         string  `json:"id"`
	Name       string  `json:"expense_name"`
	Amount     float64 `json:"amount"`
	Category   string  `json:"category"`
	Date       string  `json:"date"`
	Notes      string  `json:"notes,omitempty"`
	Attachment string  `json:"attachment,omitempty"`
	CreatedAt  string  `json:"created_at"`
}

func NewExpenseResponse(expense *models.Expense) *ExpenseResponse {
	return &ExpenseResponse{
		ID:         expense.ID.String(),
		Name:       expense.Name,
		Amount:     expense.Amount,
		Category:   string(expense.Category),
		Date:       expense.Date.Format("2006-01-02"),
		Notes:      expense.Notes,
		Attachment: expense.Attachment,
		CreatedAt:  expense.CreatedAt.Format(time.RFC3339),
	}
}

type CategoryTotal struct {
	Category string  `json:"category"`
	Total    float64 `json:"total"`
}

type ExpenseSummaryResponse struct {
	Month      string          `json:"month"`
	Total      float64         `json:"total"`
	Categories []CategoryTotal `json:"categories"`
}
