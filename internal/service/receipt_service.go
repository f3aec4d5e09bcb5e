package service

import (
	"context"
	"time"

	"spendlens/internal/dto"
	"spendlens/internal/pipeline"
	"spendlens/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ReceiptService runs the receipt-to-expense pipeline for uploads and
// exposes the user's stored receipt images.
type ReceiptService struct {
	orchestrator *pipeline.Orchestrator
	receiptRepo  *repository.ReceiptRepository
	logger       *zap.Logger
}

func NewReceiptService(
	orchestrator *pipeline.Orchestrator,
	receiptRepo *repository.ReceiptRepository,
	logger *zap.Logger,
) *ReceiptService {
	return &ReceiptService{
		orchestrator: orchestrator,
		receiptRepo:  receiptRepo,
		logger:       logger,
	}
}

// Process runs one full pipeline pass for an uploaded receipt payload and
// maps the terminal state to the API response.
func (s *ReceiptService) Process(ctx context.Context, userID uuid.UUID, payload []byte, contentType string) *dto.ProcessReceiptResponse {
	result := s.orchestrator.Run(ctx, userID, payload, contentType)

	resp := &dto.ProcessReceiptResponse{
		State:         string(result.State),
		Message:       result.Signal.Message,
		OfferFallback: result.Signal.OfferFallback,
	}

	if result.Image != nil {
		resp.ReceiptImageID = result.Image.ID.String()
		resp.ReceiptImageURL = result.Image.URL
	}

	if result.Err != nil {
		resp.Failure = &dto.PipelineFailure{
			Stage:  string(result.Err.Stage),
			Kind:   string(result.Err.Kind),
			Detail: result.Err.Detail,
		}
	}

	if result.Prefill != nil {
		resp.Prefill = &dto.ExpensePrefill{
			Name:     result.Prefill.Name,
			Amount:   result.Prefill.Amount,
			Category: result.Prefill.Category,
			Date:     result.Prefill.Date,
			Merchant: result.Prefill.Merchant,
		}
	}

	if result.Expense != nil {
		resp.Expense = dto.NewExpenseResponse(result.Expense)
	}

	return resp
}

func (s *ReceiptService) ListReceipts(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*dto.ReceiptResponse, error) {
	receipts, err := s.receiptRepo.ListByUserID(ctx, userID, limit, offset)
	if err != nil {
		return nil, err
	}

	responses := make([]*dto.ReceiptResponse, len(receipts))
	for i, receipt := range receipts {
		responses[i] = &dto.ReceiptResponse{
			ID:          receipt.ID.String(),
			URL:         receipt.URL,
			Size:        receipt.Size,
			ContentType: receipt.ContentType,
			CreatedAt:   receipt.CreatedAt.Format(time.RFC3339),
		}
	}

	return responses, nil
}
