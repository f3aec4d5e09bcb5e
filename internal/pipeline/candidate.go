package pipeline

import (
	"strings"
	"time"

	"spendlens/internal/models"
)

// RawText is the recognized text for one receipt image. It lives only for
// the duration of a single pipeline run.
type RawText struct {
	Text string
}

// Empty reports whether recognition read nothing useful from the image.
func (r RawText) Empty() bool {
	return strings.TrimSpace(r.Text) == ""
}

// CandidateExpense is a best-effort extraction result. Every field is
// optional; out-of-set categories are carried as-is and rejected by
// validation rather than silently coerced.
type CandidateExpense struct {
	Name     string   `json:"expense_name"`
	Amount   *float64 `json:"amount"`
	Category string   `json:"category"`
	Date     string   `json:"date"`
	Merchant string   `json:"merchant"`
}

// ValidatedExpense has the mandatory fields of a committable expense.
type ValidatedExpense struct {
	Name     string
	Amount   float64
	Category models.ExpenseCategory
	Date     time.Time
	Merchant string
}

// Validate checks the candidate against the mandatory-field constraints:
// non-empty name, amount present and positive, category in the closed set.
// A missing date is not a failure; it defaults to the processing date.
// On failure the original candidate is attached to the error untouched so
// the manual entry form can reuse whatever was extracted.
func Validate(c *CandidateExpense, now time.Time) (*ValidatedExpense, *PipelineError) {
	var missing []string

	name := strings.TrimSpace(c.Name)
	if name == "" {
		missing = append(missing, "name")
	}
	if c.Amount == nil || *c.Amount <= 0 {
		missing = append(missing, "amount")
	}
	category := models.ExpenseCategory(strings.ToLower(strings.TrimSpace(c.Category)))
	if !models.ValidCategory(category) {
		missing = append(missing, "category")
	}

	if len(missing) > 0 {
		return nil, &PipelineError{
			Stage:     StageValidation,
			Kind:      KindValidationFailed,
			Detail:    "missing or invalid fields: " + strings.Join(missing, ", "),
			Candidate: c,
		}
	}

	date := now
	if c.Date != "" {
		if parsed, err := time.Parse("2006-01-02", c.Date); err == nil {
			date = parsed
		}
	}

	return &ValidatedExpense{
		Name:     name,
		Amount:   *c.Amount,
		Category: category,
		Date:     date,
		Merchant: strings.TrimSpace(c.Merchant),
	}, nil
}
