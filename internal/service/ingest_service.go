package service

import (
	"context"
	"fmt"
	"time"

	"spendlens/internal/models"
	"spendlens/internal/pipeline"
	"spendlens/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MaxReceiptSize is the upload ceiling for receipt images.
const MaxReceiptSize = 2 << 20 // 2 MiB

// allowedContentTypes maps the upload allow-list to object key extensions.
var allowedContentTypes = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
}

// BlobStore is the durable blob storage consumed by ingestion.
type BlobStore interface {
	Put(ctx context.Context, key, contentType string, data []byte) (string, error)
}

// IngestService stores uploaded receipt images. It enforces the size and
// content-type constraints before any write, so a rejected upload leaves
// no trace in storage.
type IngestService struct {
	blobs       BlobStore
	receiptRepo *repository.ReceiptRepository
	logger      *zap.Logger
}

func NewIngestService(blobs BlobStore, receiptRepo *repository.ReceiptRepository, logger *zap.Logger) *IngestService {
	return &IngestService{
		blobs:       blobs,
		receiptRepo: receiptRepo,
		logger:      logger,
	}
}

// Ingest validates and durably stores one uploaded payload. The object key
// combines the owning user with a random disambiguator so concurrent
// uploads from the same user never collide. Storage failures surface
// immediately as StorageUnavailable; there are no retries.
func (s *IngestService) Ingest(ctx context.Context, userID uuid.UUID, payload []byte, contentType string) (*pipeline.StoredImage, error) {
	if len(payload) > MaxReceiptSize {
		return nil, pipeline.Errf(pipeline.StageIngestion, pipeline.KindSizeExceeded,
			"payload is %d bytes, limit is %d", len(payload), MaxReceiptSize)
	}

	ext, ok := allowedContentTypes[contentType]
	if !ok {
		return nil, pipeline.Errf(pipeline.StageIngestion, pipeline.KindUnsupportedType,
			"content type %q is not supported (allowed: image/jpeg, image/png)", contentType)
	}

	imageID := uuid.New()
	key := fmt.Sprintf("receipts/%s/%s.%s", userID, imageID, ext)

	url, err := s.blobs.Put(ctx, key, contentType, payload)
	if err != nil {
		return nil, pipeline.Errf(pipeline.StageIngestion, pipeline.KindStorageUnavailable,
			"blob write failed: %v", err)
	}

	receipt := &models.ReceiptImage{
		ID:          imageID,
		UserID:      userID,
		ObjectKey:   key,
		URL:         url,
		Size:        int64(len(payload)),
		ContentType: contentType,
		CreatedAt:   time.Now(),
	}
	if err := s.receiptRepo.Create(ctx, receipt); err != nil {
		return nil, pipeline.Errf(pipeline.StageIngestion, pipeline.KindStorageUnavailable,
			"receipt record write failed: %v", err)
	}

	s.logger.Info("Receipt image stored",
		zap.String("user_id", userID.String()),
		zap.String("key", key),
		zap.Int("size", len(payload)),
	)

	return &pipeline.StoredImage{ID: imageID, URL: url}, nil
}
