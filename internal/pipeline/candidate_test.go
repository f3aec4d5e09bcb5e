package pipeline

import (
	"strings"
	"testing"
	"time"

	"spendlens/internal/models"
)

func f64(v float64) *float64 { return &v }

func TestValidate(t *testing.T) {
	now := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		candidate *CandidateExpense
		want      *ValidatedExpense
		wantErr   string
	}{
		{
			name: "complete candidate",
			candidate: &CandidateExpense{
				Name:     "Coffee",
				Amount:   f64(4.50),
				Category: "food",
				Date:     "2025-06-10",
				Merchant: "Blue Bottle",
			},
			want: &ValidatedExpense{
				Name:     "Coffee",
				Amount:   4.50,
				Category: models.CategoryFood,
				Date:     time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC),
				Merchant: "Blue Bottle",
			},
		},
		{
			name: "missing date defaults to processing date",
			candidate: &CandidateExpense{
				Name:     "Groceries",
				Amount:   f64(32.10),
				Category: "groceries",
			},
			want: &ValidatedExpense{
				Name:     "Groceries",
				Amount:   32.10,
				Category: models.CategoryGroceries,
				Date:     now,
			},
		},
		{
			name: "unparseable date defaults to processing date",
			candidate: &CandidateExpense{
				Name:     "Taxi",
				Amount:   f64(18),
				Category: "transportation",
				Date:     "June 10th",
			},
			want: &ValidatedExpense{
				Name:     "Taxi",
				Amount:   18,
				Category: models.CategoryTransportation,
				Date:     now,
			},
		},
		{
			name: "category normalized to lower case",
			candidate: &CandidateExpense{
				Name:     "Gym",
				Amount:   f64(29.99),
				Category: "  Fitness ",
			},
			want: &ValidatedExpense{
				Name:     "Gym",
				Amount:   29.99,
				Category: models.CategoryFitness,
				Date:     now,
			},
		},
		{
			name:      "nil amount",
			candidate: &CandidateExpense{Name: "Lunch", Category: "food"},
			wantErr:   "amount",
		},
		{
			name:      "non-positive amount",
			candidate: &CandidateExpense{Name: "Lunch", Amount: f64(0), Category: "food"},
			wantErr:   "amount",
		},
		{
			name:      "blank name",
			candidate: &CandidateExpense{Name: "   ", Amount: f64(5), Category: "food"},
			wantErr:   "name",
		},
		{
			name:      "out-of-set category",
			candidate: &CandidateExpense{Name: "Lunch", Amount: f64(5), Category: "snacks"},
			wantErr:   "category",
		},
		{
			name:      "everything missing",
			candidate: &CandidateExpense{},
			wantErr:   "name, amount, category",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, perr := Validate(tt.candidate, now)

			if tt.wantErr != "" {
				if perr == nil {
					t.Fatalf("Validate() succeeded, want failure mentioning %q", tt.wantErr)
				}
				if perr.Stage != StageValidation || perr.Kind != KindValidationFailed {
					t.Errorf("got %s/%s, want %s/%s", perr.Stage, perr.Kind, StageValidation, KindValidationFailed)
				}
				if !strings.Contains(perr.Detail, tt.wantErr) {
					t.Errorf("Detail = %q, want it to contain %q", perr.Detail, tt.wantErr)
				}
				if perr.Candidate != tt.candidate {
					t.Error("failed validation must carry the original candidate untouched")
				}
				return
			}

			if perr != nil {
				t.Fatalf("Validate() failed: %v", perr)
			}
			if got.Name != tt.want.Name || got.Amount != tt.want.Amount ||
				got.Category != tt.want.Category || got.Merchant != tt.want.Merchant {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
			if !got.Date.Equal(tt.want.Date) {
				t.Errorf("Date = %v, want %v", got.Date, tt.want.Date)
			}
		})
	}
}

func TestRawTextEmpty(t *testing.T) {
	if !(RawText{}).Empty() {
		t.Error("zero value must be empty")
	}
	if !(RawText{Text: "  \n\t "}).Empty() {
		t.Error("whitespace-only text must be empty")
	}
	if (RawText{Text: "TOTAL 12.50"}).Empty() {
		t.Error("non-blank text must not be empty")
	}
}

func TestCoerce(t *testing.T) {
	tagged := Errf(StageIngestion, KindSizeExceeded, "too big")
	if got := Coerce(tagged, StagePersistence, KindPersistenceFailed); got != tagged {
		t.Error("stage-tagged errors must pass through unchanged")
	}

	got := Coerce(errDummy{}, StageRecognition, KindRecognitionFailed)
	if got.Stage != StageRecognition || got.Kind != KindRecognitionFailed {
		t.Errorf("got %s/%s, want %s/%s", got.Stage, got.Kind, StageRecognition, KindRecognitionFailed)
	}
	if got.Detail != "dummy" {
		t.Errorf("Detail = %q, want %q", got.Detail, "dummy")
	}
}

type errDummy struct{}

func (errDummy) Error() string { return "dummy" }
