package pipeline

import "testing"

func TestAdvanceSuccessPath(t *testing.T) {
	order := []State{
		StateUploading,
		StateRecognizing,
		StateExtracting,
		StateValidating,
		StateCommitting,
	}

	state := order[0]
	for i := 0; i < len(order)-1; i++ {
		next, signal := Advance(state, nil)
		if next != order[i+1] {
			t.Fatalf("Advance(%s) = %s, want %s", state, next, order[i+1])
		}
		if signal != nil {
			t.Fatalf("Advance(%s) returned unexpected signal %+v", state, signal)
		}
		state = next
	}

	final, signal := Advance(state, nil)
	if final != StateDone {
		t.Fatalf("Advance(%s) = %s, want %s", state, final, StateDone)
	}
	if signal == nil || signal.Message == "" {
		t.Fatal("expected a success signal on the final transition")
	}
}

func TestAdvanceFailureRoutesToFallback(t *testing.T) {
	tests := []struct {
		name          string
		state         State
		kind          Kind
		offerFallback bool
	}{
		{"size rejection before storage", StateUploading, KindSizeExceeded, false},
		{"type rejection before storage", StateUploading, KindUnsupportedType, false},
		{"storage outage", StateUploading, KindStorageUnavailable, true},
		{"recognition failure", StateRecognizing, KindRecognitionFailed, true},
		{"empty text", StateRecognizing, KindEmptyText, true},
		{"extraction parse failure", StateExtracting, KindExtractionParseFailed, true},
		{"validation failure", StateValidating, KindValidationFailed, true},
		{"persistence failure", StateCommitting, KindPersistenceFailed, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			perr := Errf(StageIngestion, tt.kind, "boom")
			next, signal := Advance(tt.state, perr)
			if next != StateFallbackRequired {
				t.Errorf("Advance(%s, %s) = %s, want %s", tt.state, tt.kind, next, StateFallbackRequired)
			}
			if signal == nil {
				t.Fatal("expected a signal on failure")
			}
			if signal.OfferFallback != tt.offerFallback {
				t.Errorf("OfferFallback = %v, want %v", signal.OfferFallback, tt.offerFallback)
			}
			if signal.Message == "" {
				t.Error("expected a non-empty user-facing message")
			}
		})
	}
}

func TestAdvanceTerminalStatesAreAbsorbing(t *testing.T) {
	for _, state := range []State{StateDone, StateFallbackRequired} {
		next, signal := Advance(state, nil)
		if next != state {
			t.Errorf("Advance(%s) = %s, want it to stay put", state, next)
		}
		if signal != nil {
			t.Errorf("Advance(%s) returned unexpected signal", state)
		}

		next, _ = Advance(state, Errf(StagePersistence, KindPersistenceFailed, "boom"))
		if next != state {
			t.Errorf("Advance(%s, err) = %s, want it to stay put", state, next)
		}
	}
}

func TestTerminal(t *testing.T) {
	if !StateDone.Terminal() || !StateFallbackRequired.Terminal() {
		t.Error("done and fallback_required must be terminal")
	}
	for _, state := range []State{StateUploading, StateRecognizing, StateExtracting, StateValidating, StateCommitting} {
		if state.Terminal() {
			t.Errorf("%s must not be terminal", state)
		}
	}
}
