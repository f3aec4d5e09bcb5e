package provider

import (
	"strings"
	"testing"

	"spendlens/internal/pipeline"
)

func TestParseCandidate(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    pipeline.CandidateExpense
		wantErr string
	}{
		{
			name:    "plain JSON",
			content: `{"expense_name":"Coffee","amount":4.5,"category":"food","date":"2025-06-10","merchant":"Blue Bottle"}`,
			want:    pipeline.CandidateExpense{Name: "Coffee", Category: "food", Date: "2025-06-10", Merchant: "Blue Bottle"},
		},
		{
			name: "markdown fenced JSON",
			content: "```json\n" +
				`{"expense_name":"Taxi","amount":18,"category":"transportation"}` +
				"\n```",
			want: pipeline.CandidateExpense{Name: "Taxi", Category: "transportation"},
		},
		{
			name:    "JSON embedded in prose",
			content: `Here is the extracted data: {"expense_name":"Gym","amount":29.99,"category":"fitness"} Hope that helps!`,
			want:    pipeline.CandidateExpense{Name: "Gym", Category: "fitness"},
		},
		{
			name:    "null amount passes through to validation",
			content: `{"expense_name":"Dinner","amount":null,"category":"food"}`,
			want:    pipeline.CandidateExpense{Name: "Dinner", Category: "food"},
		},
		{
			name:    "no JSON object",
			content: "Sorry, I could not read the receipt.",
			wantErr: "no JSON object",
		},
		{
			name:    "malformed JSON",
			content: `{"expense_name": "Coffee", "amount": }`,
			wantErr: "invalid JSON",
		},
		{
			name:    "missing required key",
			content: `{"expense_name":"Coffee","amount":4.5}`,
			wantErr: `missing "category"`,
		},
		{
			name:    "wrong value type",
			content: `{"expense_name":"Coffee","amount":"four fifty","category":"food"}`,
			wantErr: "does not match schema",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseCandidate(tt.content)

			if tt.wantErr != "" {
				if err == nil {
					t.Fatalf("parseCandidate() succeeded, want failure mentioning %q", tt.wantErr)
				}
				perr, ok := err.(*pipeline.PipelineError)
				if !ok {
					t.Fatalf("error type = %T, want *pipeline.PipelineError", err)
				}
				if perr.Stage != pipeline.StageExtraction || perr.Kind != pipeline.KindExtractionParseFailed {
					t.Errorf("got %s/%s, want %s/%s", perr.Stage, perr.Kind,
						pipeline.StageExtraction, pipeline.KindExtractionParseFailed)
				}
				if !strings.Contains(perr.Detail, tt.wantErr) {
					t.Errorf("Detail = %q, want it to contain %q", perr.Detail, tt.wantErr)
				}
				return
			}

			if err != nil {
				t.Fatalf("parseCandidate() failed: %v", err)
			}
			if got.Name != tt.want.Name || got.Category != tt.want.Category ||
				got.Date != tt.want.Date || got.Merchant != tt.want.Merchant {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseCandidateAmountValue(t *testing.T) {
	got, err := parseCandidate(`{"expense_name":"Coffee","amount":4.5,"category":"food"}`)
	if err != nil {
		t.Fatalf("parseCandidate() failed: %v", err)
	}
	if got.Amount == nil || *got.Amount != 4.5 {
		t.Errorf("Amount = %v, want 4.5", got.Amount)
	}

	got, err = parseCandidate(`{"expense_name":"Dinner","amount":null,"category":"food"}`)
	if err != nil {
		t.Fatalf("parseCandidate() failed: %v", err)
	}
	if got.Amount != nil {
		t.Errorf("Amount = %v, want nil for null", *got.Amount)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 200); got != "short" {
		t.Errorf("truncate() = %q, want unchanged", got)
	}
	long := strings.Repeat("x", 300)
	got := truncate(long, 200)
	if len(got) != 203 || !strings.HasSuffix(got, "...") {
		t.Errorf("truncate() length = %d, want 203 with ellipsis", len(got))
	}
}
