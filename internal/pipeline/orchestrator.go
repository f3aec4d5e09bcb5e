package pipeline

import (
	"context"
	"time"

	"spendlens/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// StoredImage is the ingestion stage's output: a durably stored receipt
// image with a dereferenceable URL.
type StoredImage struct {
	ID  uuid.UUID
	URL string
}

// Ingestor stores an uploaded payload and returns its image reference.
// Implementations enforce the size ceiling and content-type allow-list
// before writing anything.
type Ingestor interface {
	Ingest(ctx context.Context, userID uuid.UUID, payload []byte, contentType string) (*StoredImage, error)
}

// Recognizer turns a stored image URL into raw text. A single call, no
// internal retries; transport failures surface as RecognitionFailed.
type Recognizer interface {
	Recognize(ctx context.Context, imageURL string) (RawText, error)
}

// Extractor turns raw text into a candidate expense. Malformed provider
// output surfaces as ExtractionParseFailed, never as a panic.
type Extractor interface {
	Extract(ctx context.Context, text string) (*CandidateExpense, error)
}

// Committer writes the validated expense, tagged with its image reference.
type Committer interface {
	Commit(ctx context.Context, userID uuid.UUID, v *ValidatedExpense, image *StoredImage) (*models.Expense, error)
}

// Result is the terminal outcome of one pipeline run. On Done, Expense is
// the persisted record. On FallbackRequired, Err carries the stage-tagged
// failure and Prefill whatever partial data survived the run.
type Result struct {
	State   State
	Signal  Signal
	Image   *StoredImage
	Expense *models.Expense
	Prefill *CandidateExpense
	Err     *PipelineError
}

type Orchestrator struct {
	ingestor   Ingestor
	recognizer Recognizer
	extractor  Extractor
	committer  Committer

	recognizeTimeout time.Duration
	extractTimeout   time.Duration

	logger *zap.Logger
}

func NewOrchestrator(
	ingestor Ingestor,
	recognizer Recognizer,
	extractor Extractor,
	committer Committer,
	recognizeTimeout time.Duration,
	extractTimeout time.Duration,
	logger *zap.Logger,
) *Orchestrator {
	return &Orchestrator{
		ingestor:         ingestor,
		recognizer:       recognizer,
		extractor:        extractor,
		committer:        committer,
		recognizeTimeout: recognizeTimeout,
		extractTimeout:   extractTimeout,
		logger:           logger,
	}
}

// Run executes one sequential pipeline pass: ingest, recognize, extract,
// validate, commit. Every stage result feeds the state machine; the first
// failure routes the run to FallbackRequired with the best-available
// partial data. There are no retries: "retry" means the user re-initiates
// a fresh upload.
func (o *Orchestrator) Run(ctx context.Context, userID uuid.UUID, payload []byte, contentType string) *Result {
	state := StateUploading

	// Ingestion
	image, err := o.ingestor.Ingest(ctx, userID, payload, contentType)
	if err != nil {
		perr := Coerce(err, StageIngestion, KindStorageUnavailable)
		return o.fail(state, perr, nil)
	}
	state = o.transition(state, nil)

	// Recognition
	recognizeCtx, cancel := context.WithTimeout(ctx, o.recognizeTimeout)
	raw, err := o.recognizer.Recognize(recognizeCtx, image.URL)
	cancel()
	if err != nil {
		perr := Coerce(err, StageRecognition, KindRecognitionFailed)
		return o.fail(state, perr, image)
	}
	if raw.Empty() {
		// Nothing readable in the image is a terminal outcome, not a
		// transport failure: skip straight to manual entry.
		perr := Errf(StageRecognition, KindEmptyText, "recognized text is empty")
		return o.fail(state, perr, image)
	}
	state = o.transition(state, nil)

	// Extraction
	extractCtx, cancel := context.WithTimeout(ctx, o.extractTimeout)
	candidate, err := o.extractor.Extract(extractCtx, raw.Text)
	cancel()
	if err != nil {
		perr := Coerce(err, StageExtraction, KindExtractionParseFailed)
		return o.fail(state, perr, image)
	}
	state = o.transition(state, nil)

	// Validation
	validated, perr := Validate(candidate, time.Now())
	if perr != nil {
		return o.fail(state, perr, image)
	}
	state = o.transition(state, nil)

	// Persistence commit: the single atomic last step. Cancellation before
	// this point cannot leave a partial record behind.
	expense, err := o.committer.Commit(ctx, userID, validated, image)
	if err != nil {
		perr := Coerce(err, StagePersistence, KindPersistenceFailed)
		perr.Candidate = candidate
		return o.fail(state, perr, image)
	}
	state, signal := Advance(state, nil)

	o.logger.Info("Pipeline run completed",
		zap.String("state", string(state)),
		zap.String("user_id", userID.String()),
		zap.String("expense_id", expense.ID.String()),
	)

	return &Result{
		State:   state,
		Signal:  *signal,
		Image:   image,
		Expense: expense,
	}
}

// transition advances the state machine on stage success and logs the step.
func (o *Orchestrator) transition(state State, perr *PipelineError) State {
	next, _ := Advance(state, perr)
	o.logger.Debug("Pipeline state transition",
		zap.String("from", string(state)),
		zap.String("to", string(next)),
	)
	return next
}

func (o *Orchestrator) fail(state State, perr *PipelineError, image *StoredImage) *Result {
	next, signal := Advance(state, perr)

	prefill := perr.Candidate
	if prefill == nil {
		prefill = &CandidateExpense{}
	}

	o.logger.Warn("Pipeline run failed",
		zap.String("from", string(state)),
		zap.String("to", string(next)),
		zap.String("stage", string(perr.Stage)),
		zap.String("kind", string(perr.Kind)),
		zap.String("detail", perr.Detail),
	)

	return &Result{
		State:   next,
		Signal:  *signal,
		Image:   image,
		Prefill: prefill,
		Err:     perr,
	}
}
