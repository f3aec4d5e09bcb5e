package service

import (
	"context"
	"fmt"
	"time"

	"spendlens/internal/repository"
	"spendlens/pkg/config"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// BudgetService sends a monthly budget alert email when a commit pushes
// the month's spend over the user's limit.
type BudgetService struct {
	userRepo    *repository.UserRepository
	expenseRepo *repository.ExpenseRepository
	cfg         *config.BudgetConfig
	logger      *zap.Logger
}

func NewBudgetService(
	userRepo *repository.UserRepository,
	expenseRepo *repository.ExpenseRepository,
	cfg *config.BudgetConfig,
	logger *zap.Logger,
) *BudgetService {
	return &BudgetService{
		userRepo:    userRepo,
		expenseRepo: expenseRepo,
		cfg:         cfg,
		logger:      logger,
	}
}

// NotifyIfExceeded checks the calendar month containing date against the
// user's budget limit and sends one alert email if it is exceeded. Users
// without a configured budget are skipped.
func (s *BudgetService) NotifyIfExceeded(ctx context.Context, userID uuid.UUID, date time.Time) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to load user: %w", err)
	}
	if user.MonthlyBudget == nil || *user.MonthlyBudget <= 0 {
		return nil
	}

	from := time.Date(date.Year(), date.Month(), 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)

	spend, err := s.expenseRepo.MonthlySpend(ctx, userID, from, to)
	if err != nil {
		return fmt.Errorf("failed to compute monthly spend: %w", err)
	}
	if spend <= *user.MonthlyBudget {
		return nil
	}

	if s.cfg.SMTPHost == "" {
		s.logger.Info("Budget exceeded but SMTP is not configured, skipping alert",
			zap.String("user_id", userID.String()),
			zap.Float64("spend", spend),
			zap.Float64("budget", *user.MonthlyBudget),
		)
		return nil
	}

	monthYear := from.Format("January 2006")
	body := fmt.Sprintf(
		"<p>Hi %s,</p><p>Your spending for %s has reached <b>%.2f</b>, which exceeds your monthly budget of <b>%.2f</b>.</p>",
		user.Username, monthYear, spend, *user.MonthlyBudget,
	)

	mailer := gomail.NewMessage()
	mailer.SetHeader("From", s.cfg.From)
	mailer.SetHeader("To", user.Email)
	mailer.SetHeader("Subject", "Budget alert for "+monthYear)
	mailer.SetBody("text/html", body)

	dialer := gomail.NewDialer(s.cfg.SMTPHost, s.cfg.SMTPPort, s.cfg.SMTPUser, s.cfg.SMTPPass)
	if err := dialer.DialAndSend(mailer); err != nil {
		return fmt.Errorf("failed to send budget alert: %w", err)
	}

	s.logger.Info("Budget alert sent",
		zap.String("user_id", userID.String()),
		zap.String("month", monthYear),
		zap.Float64("spend", spend),
	)

	return nil
}
