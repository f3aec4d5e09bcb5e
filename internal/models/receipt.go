package models

import (
	"time"

	"github.com/google/uuid"
)

// ReceiptImage is the durable record of one uploaded receipt image.
// It is immutable after creation and referenced, never owned, by expenses.
type ReceiptImage struct {
	ID          uuid.UUID `db:"id"`
	UserID      uuid.UUID `db:"user_id"`
	ObjectKey   string    `db:"object_key"`
	URL         string    `db:"url"`
	Size        int64     `db:"size"`
	ContentType string    `db:"content_type"`
	CreatedAt   time.Time `db:"created_at"`
}
