package provider

import (
	"encoding/json"
	"strings"

	"spendlens/internal/pipeline"
)

// extractionInstructions is the fixed schema description sent to the
// language-extraction provider. Categories outside the closed set fail
// validation downstream; they are never coerced here.
const extractionInstructions = `Extract structured expense data from receipt text. ` +
	`Return only valid JSON with these exact fields: expense_name (string), amount (number), ` +
	`category (one of: food, travel, bills, entertainment, shopping, healthcare, education, ` +
	`transportation, utilities, rent, groceries, clothing, fitness, subscriptions, other), ` +
	`date (YYYY-MM-DD format), merchant (string). ` +
	`If any field cannot be determined, use reasonable defaults.`

// requiredKeys must be present in the provider's JSON object. Null values
// are fine (the validation stage handles those); absent keys mean the
// provider did not follow the schema at all.
var requiredKeys = []string{"expense_name", "amount", "category"}

// parseCandidate turns a model completion into a CandidateExpense. Model
// output is untrusted: markdown fences are stripped, the JSON object is
// located by its outermost braces, and anything that still fails to parse
// or omits required keys yields ExtractionParseFailed instead of an
// unwrapped parse error.
func parseCandidate(content string) (*pipeline.CandidateExpense, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start == -1 || end == -1 || end < start {
		return nil, pipeline.Errf(pipeline.StageExtraction, pipeline.KindExtractionParseFailed,
			"no JSON object in extraction response: %s", truncate(content, 200))
	}
	jsonStr := content[start : end+1]

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(jsonStr), &fields); err != nil {
		return nil, pipeline.Errf(pipeline.StageExtraction, pipeline.KindExtractionParseFailed,
			"invalid JSON in extraction response: %v", err)
	}
	for _, key := range requiredKeys {
		if _, ok := fields[key]; !ok {
			return nil, pipeline.Errf(pipeline.StageExtraction, pipeline.KindExtractionParseFailed,
				"extraction response missing %q key", key)
		}
	}

	var candidate pipeline.CandidateExpense
	if err := json.Unmarshal([]byte(jsonStr), &candidate); err != nil {
		return nil, pipeline.Errf(pipeline.StageExtraction, pipeline.KindExtractionParseFailed,
			"extraction response does not match schema: %v", err)
	}

	return &candidate, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
