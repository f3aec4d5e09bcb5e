package dto

// ExpensePrefill carries whatever subset of fields survived a failed
// pipeline run into the manual entry form. All fields are optional.
type ExpensePrefill struct {
	Name     string   `json:"expense_name,omitempty"`
	Amount   *float64 `json:"amount,omitempty"`
	Category string   `json:"category,omitempty"`
	Date     string   `json:"date,omitempty"`
	Merchant string   `json:"merchant,omitempty"`
}

// PipelineFailure is the stage-tagged failure of a pipeline run.
type PipelineFailure struct {
	Stage  string `json:"stage"`
	Kind   string `json:"kind"`
	Detail string `json:"detail"`
}

// ProcessReceiptResponse is the terminal outcome of one upload: either a
// committed expense (state "done") or a failure with prefill data for the
// manual entry fallback (state "fallback_required").
type ProcessReceiptResponse struct {
	State           string           `json:"state"`
	Message         string           `json:"message"`
	OfferFallback   bool             `json:"offer_fallback"`
	ReceiptImageID  string           `json:"receipt_image_id,omitempty"`
	ReceiptImageURL string           `json:"receipt_image_url,omitempty"`
	Expense         *ExpenseResponse `json:"expense,omitempty"`
	Failure         *PipelineFailure `json:"failure,omitempty"`
	Prefill         *ExpensePrefill  `json:"prefill,omitempty"`
}

type ReceiptResponse struct {
	ID          string `json:"id"`
	URL         string `json:"url"`
	Size        int64  `json:"size"`
	ContentType string `json:"content_type"`
	CreatedAt   string `json:"created_at"`
}
