package pipeline

// State is the position of one pipeline run in its lifecycle. Runs advance
// linearly from Uploading to Done; any stage failure moves the run into the
// absorbing FallbackRequired state.
type State string

const (
	StateUploading        State = "uploading"
	StateRecognizing      State = "recognizing"
	StateExtracting       State = "extracting"
	StateValidating       State = "validating"
	StateCommitting       State = "committing"
	StateDone             State = "done"
	StateFallbackRequired State = "fallback_required"
)

// Terminal reports whether a run in this state has finished.
func (s State) Terminal() bool {
	return s == StateDone || s == StateFallbackRequired
}

// Signal is the user-facing outcome of a state transition. OfferFallback
// tells the caller whether the manual entry form should be opened; it is
// false only for rejections that require a fresh upload.
type Signal struct {
	Message       string
	OfferFallback bool
}

var successor = map[State]State{
	StateUploading:   StateRecognizing,
	StateRecognizing: StateExtracting,
	StateExtracting:  StateValidating,
	StateValidating:  StateCommitting,
	StateCommitting:  StateDone,
}

var kindMessages = map[Kind]string{
	KindSizeExceeded:          "Receipt image exceeds the 2 MiB limit. Please upload a smaller file.",
	KindUnsupportedType:       "Only JPEG and PNG receipt images are supported.",
	KindStorageUnavailable:    "The receipt image could not be stored. You can add the expense manually.",
	KindRecognitionFailed:     "Text recognition failed. You can add the expense manually.",
	KindEmptyText:             "No text could be read from the image. You can add the expense manually.",
	KindExtractionParseFailed: "The receipt text could not be understood. You can add the expense manually.",
	KindValidationFailed:      "Some required fields could not be extracted. Please complete them manually.",
	KindPersistenceFailed:     "The expense could not be saved. Please try again or add it manually.",
}

// Advance is the pure transition function of the pipeline state machine:
// (state, stage result) -> (next state, optional user-facing signal).
// It performs no side effects, which keeps orchestration decisions
// unit-testable without a running pipeline.
func Advance(s State, stageErr *PipelineError) (State, *Signal) {
	if s.Terminal() {
		return s, nil
	}

	if stageErr != nil {
		signal := &Signal{
			Message:       kindMessages[stageErr.Kind],
			OfferFallback: OffersFallback(stageErr.Kind),
		}
		return StateFallbackRequired, signal
	}

	next := successor[s]
	if next == StateDone {
		return StateDone, &Signal{Message: "Expense added successfully."}
	}
	return next, nil
}

// OffersFallback reports whether a failure kind leads to the manual entry
// form. Size and type rejections happen before anything was stored, so the
// only remedy is a new upload.
func OffersFallback(k Kind) bool {
	return k != KindSizeExceeded && k != KindUnsupportedType
}
