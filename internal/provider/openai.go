package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"spendlens/internal/pipeline"
	"spendlens/pkg/config"

	"go.uber.org/zap"
)

// OpenAIExtractor sends raw receipt text to an OpenAI-compatible chat
// completions endpoint with the fixed extraction schema. Temperature is
// pinned low to keep the output deterministic-leaning.
type OpenAIExtractor struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewOpenAIExtractor(cfg *config.ExtractorConfig, logger *zap.Logger) *OpenAIExtractor {
	return &OpenAIExtractor{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Extract performs a single completion call and parses its output as a
// CandidateExpense. Any upstream or parse failure surfaces as
// ExtractionParseFailed; the raw text is discarded, not retried.
func (e *OpenAIExtractor) Extract(ctx context.Context, text string) (*pipeline.CandidateExpense, error) {
	reqBody := chatRequest{
		Model: e.model,
		Messages: []chatMessage{
			{Role: "system", Content: extractionInstructions},
			{Role: "user", Content: "Extract expense data from this receipt text: " + text},
		},
		Temperature: 0.1,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, pipeline.Errf(pipeline.StageExtraction, pipeline.KindExtractionParseFailed,
			"failed to marshal completion request: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/chat/completions", bytes.NewReader(jsonData))
	if err != nil {
		return nil, pipeline.Errf(pipeline.StageExtraction, pipeline.KindExtractionParseFailed,
			"failed to create completion request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.apiKey)

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, pipeline.Errf(pipeline.StageExtraction, pipeline.KindExtractionParseFailed,
			"completion request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, pipeline.Errf(pipeline.StageExtraction, pipeline.KindExtractionParseFailed,
			"completion API status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var chatResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return nil, pipeline.Errf(pipeline.StageExtraction, pipeline.KindExtractionParseFailed,
			"failed to decode completion response: %v", err)
	}
	if len(chatResp.Choices) == 0 {
		return nil, pipeline.Errf(pipeline.StageExtraction, pipeline.KindExtractionParseFailed,
			"completion response has no choices")
	}

	candidate, err := parseCandidate(chatResp.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}

	e.logger.Info("Structured extraction completed",
		zap.String("name", candidate.Name),
		zap.String("category", candidate.Category),
	)

	return candidate, nil
}
