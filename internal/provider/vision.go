package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"spendlens/internal/pipeline"
	"spendlens/pkg/config"

	"go.uber.org/zap"
)

// VisionRecognizer sends stored image URLs to the Google Cloud Vision
// TEXT_DETECTION endpoint and returns the raw recognized text.
type VisionRecognizer struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewVisionRecognizer(cfg *config.VisionConfig, logger *zap.Logger) *VisionRecognizer {
	return &VisionRecognizer{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}
}

type visionImageSource struct {
	ImageURI string `json:"imageUri"`
}

type visionImage struct {
	Source visionImageSource `json:"source"`
}

type visionFeature struct {
	Type       string `json:"type"`
	MaxResults int    `json:"maxResults"`
}

type visionRequest struct {
	Image    visionImage     `json:"image"`
	Features []visionFeature `json:"features"`
}

type annotateRequest struct {
	Requests []visionRequest `json:"requests"`
}

type annotateResponse struct {
	Responses []struct {
		TextAnnotations []struct {
			Description string `json:"description"`
		} `json:"textAnnotations"`
	} `json:"responses"`
}

// Recognize performs a single annotate call. Transport failures and
// non-success statuses surface as RecognitionFailed with the upstream
// status and body for diagnostics; an empty text field is returned as an
// empty RawText, not an error.
func (r *VisionRecognizer) Recognize(ctx context.Context, imageURL string) (pipeline.RawText, error) {
	reqBody := annotateRequest{
		Requests: []visionRequest{{
			Image:    visionImage{Source: visionImageSource{ImageURI: imageURL}},
			Features: []visionFeature{{Type: "TEXT_DETECTION", MaxResults: 1}},
		}},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return pipeline.RawText{}, pipeline.Errf(pipeline.StageRecognition, pipeline.KindRecognitionFailed,
			"failed to marshal annotate request: %v", err)
	}

	url := fmt.Sprintf("%s/images:annotate?key=%s", r.baseURL, r.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
	if err != nil {
		return pipeline.RawText{}, pipeline.Errf(pipeline.StageRecognition, pipeline.KindRecognitionFailed,
			"failed to create annotate request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return pipeline.RawText{}, pipeline.Errf(pipeline.StageRecognition, pipeline.KindRecognitionFailed,
			"vision request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return pipeline.RawText{}, pipeline.Errf(pipeline.StageRecognition, pipeline.KindRecognitionFailed,
			"vision API status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var annotateResp annotateResponse
	if err := json.NewDecoder(resp.Body).Decode(&annotateResp); err != nil {
		return pipeline.RawText{}, pipeline.Errf(pipeline.StageRecognition, pipeline.KindRecognitionFailed,
			"failed to decode vision response: %v", err)
	}

	var text string
	if len(annotateResp.Responses) > 0 && len(annotateResp.Responses[0].TextAnnotations) > 0 {
		text = annotateResp.Responses[0].TextAnnotations[0].Description
	}

	r.logger.Info("Text recognition completed",
		zap.Int("text_length", len(text)),
	)

	return pipeline.RawText{Text: text}, nil
}
