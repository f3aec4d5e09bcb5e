package pipeline

import (
	"errors"
	"fmt"
)

// Stage identifies which pipeline stage produced a failure.
type Stage string

const (
	StageIngestion   Stage = "ingestion"
	StageRecognition Stage = "recognition"
	StageExtraction  Stage = "extraction"
	StageValidation  Stage = "validation"
	StagePersistence Stage = "persistence"
)

// Kind is the enumerated failure taxonomy. Every stage maps its failures
// onto exactly one kind; the orchestrator uses the kind to decide between
// aborting and handing off to manual entry.
type Kind string

const (
	KindSizeExceeded          Kind = "size_exceeded"
	KindUnsupportedType       Kind = "unsupported_type"
	KindStorageUnavailable    Kind = "storage_unavailable"
	KindRecognitionFailed     Kind = "recognition_failed"
	KindEmptyText             Kind = "empty_text"
	KindExtractionParseFailed Kind = "extraction_parse_failed"
	KindValidationFailed      Kind = "validation_failed"
	KindPersistenceFailed     Kind = "persistence_failed"
)

// PipelineError is the typed result of a failed stage. Candidate holds the
// best-available partial extraction so the manual entry form can be
// pre-populated; it is nil for failures before extraction produced anything.
type PipelineError struct {
	Stage     Stage
	Kind      Kind
	Detail    string
	Candidate *CandidateExpense
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("%s/%s: %s", e.Stage, e.Kind, e.Detail)
}

// Errf builds a stage-tagged error with a formatted detail message.
func Errf(stage Stage, kind Kind, format string, args ...interface{}) *PipelineError {
	return &PipelineError{
		Stage:  stage,
		Kind:   kind,
		Detail: fmt.Sprintf(format, args...),
	}
}

// Coerce maps an arbitrary error onto the pipeline taxonomy. Errors that are
// already stage-tagged pass through unchanged; anything else gets the given
// stage and fallback kind so the orchestrator never sees an untyped failure.
func Coerce(err error, stage Stage, kind Kind) *PipelineError {
	var perr *PipelineError
	if errors.As(err, &perr) {
		return perr
	}
	return &PipelineError{Stage: stage, Kind: kind, Detail: err.Error()}
}
