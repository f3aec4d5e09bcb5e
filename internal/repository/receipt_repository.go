package repository

import (
	"context"

	"spendlens/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type ReceiptRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewReceiptRepository(db *pgxpool.Pool, logger *zap.Logger) *ReceiptRepository {
	return &ReceiptRepository{
		db:     db,
		logger: logger,
	}
}

func (r *ReceiptRepository) Create(ctx context.Context, receipt *models.ReceiptImage) error {
	query := squirrel.Insert("receipt_images").
		Columns("id", "user_id", "object_key", "url", "size", "content_type", "created_at").
		Values(receipt.ID, receipt.UserID, receipt.ObjectKey, receipt.URL, receipt.Size, receipt.ContentType, receipt.CreatedAt).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

func (r *ReceiptRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.ReceiptImage, error) {
	query := squirrel.Select("id", "user_id", "object_key", "url", "size", "content_type", "created_at").
		From("receipt_images").
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	var receipt models.ReceiptImage
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&receipt.ID, &receipt.UserID, &receipt.ObjectKey, &receipt.URL, &receipt.Size, &receipt.ContentType, &receipt.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &receipt, nil
}

func (r *ReceiptRepository) ListByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.ReceiptImage, error) {
	query := squirrel.Select("id", "user_id", "object_key", "url", "size", "content_type", "created_at").
		From("receipt_images").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("created_at DESC").
		Limit(uint64(limit)).
		Offset(uint64(offset)).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var receipts []*models.ReceiptImage
	for rows.Next() {
		var receipt models.ReceiptImage
		if err := rows.Scan(
			&receipt.ID, &receipt.UserID, &receipt.ObjectKey, &receipt.URL, &receipt.Size, &receipt.ContentType, &receipt.CreatedAt,
		); err != nil {
			return nil, err
		}
		receipts = append(receipts, &receipt)
	}

	return receipts, nil
}
