package pipeline

import (
	"context"
	"testing"
	"time"

	"spendlens/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type mockIngestor struct {
	image *StoredImage
	err   error
	calls int
}

func (m *mockIngestor) Ingest(ctx context.Context, userID uuid.UUID, payload []byte, contentType string) (*StoredImage, error) {
	m.calls++
	return m.image, m.err
}

type mockRecognizer struct {
	text  RawText
	err   error
	calls int
}

func (m *mockRecognizer) Recognize(ctx context.Context, imageURL string) (RawText, error) {
	m.calls++
	return m.text, m.err
}

type mockExtractor struct {
	candidate *CandidateExpense
	err       error
	calls     int
}

func (m *mockExtractor) Extract(ctx context.Context, text string) (*CandidateExpense, error) {
	m.calls++
	return m.candidate, m.err
}

type mockCommitter struct {
	expense *models.Expense
	err     error
	calls   int
}

func (m *mockCommitter) Commit(ctx context.Context, userID uuid.UUID, v *ValidatedExpense, image *StoredImage) (*models.Expense, error) {
	m.calls++
	return m.expense, m.err
}

func newTestOrchestrator(i Ingestor, r Recognizer, e Extractor, c Committer) *Orchestrator {
	return NewOrchestrator(i, r, e, c, time.Second, time.Second, zap.NewNop())
}

func goodCandidate() *CandidateExpense {
	amount := 42.50
	return &CandidateExpense{
		Name:     "Dinner",
		Amount:   &amount,
		Category: "food",
		Date:     "2025-06-10",
		Merchant: "Luigi's",
	}
}

func TestRunHappyPath(t *testing.T) {
	image := &StoredImage{ID: uuid.New(), URL: "https://bucket.s3.eu-central-1.amazonaws.com/receipts/x.jpg"}
	expense := &models.Expense{ID: uuid.New(), Name: "Dinner", Amount: 42.50}

	ingestor := &mockIngestor{image: image}
	recognizer := &mockRecognizer{text: RawText{Text: "LUIGI'S\nTOTAL 42.50"}}
	extractor := &mockExtractor{candidate: goodCandidate()}
	committer := &mockCommitter{expense: expense}

	o := newTestOrchestrator(ingestor, recognizer, extractor, committer)
	result := o.Run(context.Background(), uuid.New(), []byte("jpeg-bytes"), "image/jpeg")

	if result.State != StateDone {
		t.Fatalf("State = %s, want %s", result.State, StateDone)
	}
	if result.Err != nil {
		t.Fatalf("unexpected error: %v", result.Err)
	}
	if result.Expense != expense {
		t.Error("expected the committed expense in the result")
	}
	if result.Image != image {
		t.Error("expected the stored image in the result")
	}
	if committer.calls != 1 {
		t.Errorf("Commit called %d times, want 1", committer.calls)
	}
}

func TestRunSizeRejectionStopsBeforeRecognition(t *testing.T) {
	ingestor := &mockIngestor{err: Errf(StageIngestion, KindSizeExceeded, "payload is 3000000 bytes")}
	recognizer := &mockRecognizer{}
	extractor := &mockExtractor{}
	committer := &mockCommitter{}

	o := newTestOrchestrator(ingestor, recognizer, extractor, committer)
	result := o.Run(context.Background(), uuid.New(), make([]byte, 16), "image/jpeg")

	if result.State != StateFallbackRequired {
		t.Fatalf("State = %s, want %s", result.State, StateFallbackRequired)
	}
	if result.Signal.OfferFallback {
		t.Error("size rejection must not offer the manual entry fallback")
	}
	if result.Err.Kind != KindSizeExceeded {
		t.Errorf("Kind = %s, want %s", result.Err.Kind, KindSizeExceeded)
	}
	if result.Image != nil {
		t.Error("rejected upload must not produce a stored image")
	}
	if recognizer.calls != 0 || extractor.calls != 0 || committer.calls != 0 {
		t.Error("no downstream stage may run after an ingestion rejection")
	}
}

func TestRunEmptyTextSkipsExtraction(t *testing.T) {
	image := &StoredImage{ID: uuid.New(), URL: "https://example.com/r.png"}
	ingestor := &mockIngestor{image: image}
	recognizer := &mockRecognizer{text: RawText{Text: "  \n "}}
	extractor := &mockExtractor{}
	committer := &mockCommitter{}

	o := newTestOrchestrator(ingestor, recognizer, extractor, committer)
	result := o.Run(context.Background(), uuid.New(), []byte("png-bytes"), "image/png")

	if result.State != StateFallbackRequired {
		t.Fatalf("State = %s, want %s", result.State, StateFallbackRequired)
	}
	if result.Err.Kind != KindEmptyText {
		t.Errorf("Kind = %s, want %s", result.Err.Kind, KindEmptyText)
	}
	if !result.Signal.OfferFallback {
		t.Error("empty text must offer the manual entry fallback")
	}
	if extractor.calls != 0 {
		t.Error("extraction must never run on empty text")
	}
	if result.Image != image {
		t.Error("the stored image must survive into the fallback result")
	}
	if result.Prefill == nil || *result.Prefill != (CandidateExpense{}) {
		t.Error("pre-extraction failures must carry an empty prefill")
	}
}

func TestRunRecognitionFailure(t *testing.T) {
	ingestor := &mockIngestor{image: &StoredImage{ID: uuid.New(), URL: "u"}}
	recognizer := &mockRecognizer{err: Errf(StageRecognition, KindRecognitionFailed, "vision API returned 503")}
	extractor := &mockExtractor{}
	committer := &mockCommitter{}

	o := newTestOrchestrator(ingestor, recognizer, extractor, committer)
	result := o.Run(context.Background(), uuid.New(), []byte("b"), "image/jpeg")

	if result.Err.Kind != KindRecognitionFailed {
		t.Errorf("Kind = %s, want %s", result.Err.Kind, KindRecognitionFailed)
	}
	if !result.Signal.OfferFallback {
		t.Error("recognition failure must offer the manual entry fallback")
	}
	if extractor.calls != 0 {
		t.Error("extraction must not run after a recognition failure")
	}
}

func TestRunExtractionParseFailure(t *testing.T) {
	ingestor := &mockIngestor{image: &StoredImage{ID: uuid.New(), URL: "u"}}
	recognizer := &mockRecognizer{text: RawText{Text: "TOTAL 9.99"}}
	extractor := &mockExtractor{err: Errf(StageExtraction, KindExtractionParseFailed, "response is not JSON")}
	committer := &mockCommitter{}

	o := newTestOrchestrator(ingestor, recognizer, extractor, committer)
	result := o.Run(context.Background(), uuid.New(), []byte("b"), "image/jpeg")

	if result.State != StateFallbackRequired {
		t.Fatalf("State = %s, want %s", result.State, StateFallbackRequired)
	}
	if result.Err.Kind != KindExtractionParseFailed {
		t.Errorf("Kind = %s, want %s", result.Err.Kind, KindExtractionParseFailed)
	}
	if committer.calls != 0 {
		t.Error("nothing may be committed after an extraction failure")
	}
}

func TestRunValidationFailureCarriesCandidate(t *testing.T) {
	// Amount is missing: extraction succeeded structurally but the candidate
	// cannot be committed.
	candidate := &CandidateExpense{Name: "Dinner", Category: "food", Merchant: "Luigi's"}

	ingestor := &mockIngestor{image: &StoredImage{ID: uuid.New(), URL: "u"}}
	recognizer := &mockRecognizer{text: RawText{Text: "LUIGI'S"}}
	extractor := &mockExtractor{candidate: candidate}
	committer := &mockCommitter{}

	o := newTestOrchestrator(ingestor, recognizer, extractor, committer)
	result := o.Run(context.Background(), uuid.New(), []byte("b"), "image/jpeg")

	if result.Err.Kind != KindValidationFailed {
		t.Fatalf("Kind = %s, want %s", result.Err.Kind, KindValidationFailed)
	}
	if result.Prefill != candidate {
		t.Error("validation failure must carry the extracted candidate into the prefill unchanged")
	}
	if committer.calls != 0 {
		t.Error("nothing may be committed after a validation failure")
	}
}

func TestRunPersistenceFailureCarriesCandidate(t *testing.T) {
	candidate := goodCandidate()

	ingestor := &mockIngestor{image: &StoredImage{ID: uuid.New(), URL: "u"}}
	recognizer := &mockRecognizer{text: RawText{Text: "LUIGI'S TOTAL 42.50"}}
	extractor := &mockExtractor{candidate: candidate}
	committer := &mockCommitter{err: Errf(StagePersistence, KindPersistenceFailed, "connection refused")}

	o := newTestOrchestrator(ingestor, recognizer, extractor, committer)
	result := o.Run(context.Background(), uuid.New(), []byte("b"), "image/jpeg")

	if result.State != StateFallbackRequired {
		t.Fatalf("State = %s, want %s", result.State, StateFallbackRequired)
	}
	if result.Err.Kind != KindPersistenceFailed {
		t.Errorf("Kind = %s, want %s", result.Err.Kind, KindPersistenceFailed)
	}
	if result.Prefill != candidate {
		t.Error("persistence failure must carry the validated candidate into the prefill")
	}
	if result.Expense != nil {
		t.Error("a failed commit must not surface an expense")
	}
}
