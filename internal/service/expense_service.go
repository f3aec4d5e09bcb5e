package service

import (
	"context"
	"errors"
	"time"

	"spendlens/internal/dto"
	"spendlens/internal/models"
	"spendlens/internal/pipeline"
	"spendlens/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrExpenseNotFound = errors.New("expense not found")
	ErrReceiptNotFound = errors.New("receipt not found")
	ErrNotOwner        = errors.New("resource belongs to another user")
)

// ExpenseService owns the expense table: it is the pipeline's persistence
// commit stage and the manual entry fallback's direct write path.
type ExpenseService struct {
	expenseRepo *repository.ExpenseRepository
	receiptRepo *repository.ReceiptRepository
	budget      *BudgetService
	logger      *zap.Logger
}

func NewExpenseService(
	expenseRepo *repository.ExpenseRepository,
	receiptRepo *repository.ReceiptRepository,
	budget *BudgetService,
	logger *zap.Logger,
) *ExpenseService {
	return &ExpenseService{
		expenseRepo: expenseRepo,
		receiptRepo: receiptRepo,
		budget:      budget,
		logger:      logger,
	}
}

// Commit writes exactly one expense record for a validated pipeline result.
// No automatic retry: a blind retry on a financial record risks a duplicate
// write, which is worse than a surfaced error.
func (s *ExpenseService) Commit(ctx context.Context, userID uuid.UUID, v *pipeline.ValidatedExpense, image *pipeline.StoredImage) (*models.Expense, error) {
	notes := ""
	if v.Merchant != "" {
		notes = "Merchant: " + v.Merchant
	}
	attachment := ""
	if image != nil {
		attachment = image.URL
	}

	return s.persist(ctx, userID, v, notes, attachment)
}

// CreateManual is the manual entry fallback: it re-applies only the
// validation-stage constraints and then commits directly, so the user can
// always finish recording the expense regardless of where the automated
// run failed.
func (s *ExpenseService) CreateManual(ctx context.Context, userID uuid.UUID, req *dto.ManualExpenseRequest) (*models.Expense, error) {
	candidate := &pipeline.CandidateExpense{
		Name:     req.Name,
		Amount:   req.Amount,
		Category: req.Category,
		Date:     req.Date,
		Merchant: req.Merchant,
	}

	validated, perr := pipeline.Validate(candidate, time.Now())
	if perr != nil {
		return nil, perr
	}

	notes := req.Notes
	if notes == "" && validated.Merchant != "" {
		notes = "Merchant: " + validated.Merchant
	}

	attachment := ""
	if req.ReceiptImageID != "" {
		receiptID, err := uuid.Parse(req.ReceiptImageID)
		if err != nil {
			return nil, ErrReceiptNotFound
		}
		receipt, err := s.receiptRepo.GetByID(ctx, receiptID)
		if err != nil {
			return nil, ErrReceiptNotFound
		}
		if receipt.UserID != userID {
			return nil, ErrNotOwner
		}
		attachment = receipt.URL
	}

	return s.persist(ctx, userID, validated, notes, attachment)
}

func (s *ExpenseService) persist(ctx context.Context, userID uuid.UUID, v *pipeline.ValidatedExpense, notes, attachment string) (*models.Expense, error) {
	now := time.Now()
	expense := &models.Expense{
		ID:         uuid.New(),
		UserID:     userID,
		Name:       v.Name,
		Amount:     v.Amount,
		Category:   v.Category,
		Date:       v.Date,
		Notes:      notes,
		Attachment: attachment,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.expenseRepo.Create(ctx, expense); err != nil {
		return nil, pipeline.Errf(pipeline.StagePersistence, pipeline.KindPersistenceFailed,
			"expense write failed: %v", err)
	}

	s.logger.Info("Expense committed",
		zap.String("expense_id", expense.ID.String()),
		zap.String("user_id", userID.String()),
		zap.Float64("amount", expense.Amount),
		zap.String("category", string(expense.Category)),
	)

	// Budget alerts must never fail a successful commit.
	if s.budget != nil {
		if err := s.budget.NotifyIfExceeded(ctx, userID, expense.Date); err != nil {
			s.logger.Warn("Budget alert check failed", zap.Error(err))
		}
	}

	return expense, nil
}

func (s *ExpenseService) List(ctx context.Context, userID uuid.UUID, category string, limit, offset int) ([]*models.Expense, error) {
	return s.expenseRepo.ListByUserID(ctx, userID, category, limit, offset)
}

// Summary returns the total and per-category spend for one calendar month.
func (s *ExpenseService) Summary(ctx context.Context, userID uuid.UUID, month time.Time) (*dto.ExpenseSummaryResponse, error) {
	from := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)

	totals, err := s.expenseRepo.SummaryByCategory(ctx, userID, from, to)
	if err != nil {
		return nil, err
	}

	resp := &dto.ExpenseSummaryResponse{
		Month: from.Format("2006-01"),
	}
	for _, ct := range totals {
		resp.Total += ct.Total
		resp.Categories = append(resp.Categories, dto.CategoryTotal{
			Category: string(ct.Category),
			Total:    ct.Total,
		})
	}

	return resp, nil
}

func (s *ExpenseService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	expense, err := s.expenseRepo.GetByID(ctx, id)
	if err != nil {
		return ErrExpenseNotFound
	}
	if expense.UserID != userID {
		return ErrNotOwner
	}

	return s.expenseRepo.Delete(ctx, id)
}
