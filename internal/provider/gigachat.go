package provider

import (
	"context"

	"spendlens/internal/pipeline"
	"spendlens/pkg/config"

	"github.com/Role1776/gigago"
	"go.uber.org/zap"
)

// GigaChatExtractor is an alternate structured-extraction provider backed
// by the GigaChat API. It honors the same contract as OpenAIExtractor and
// is selected with EXTRACTOR_PROVIDER=gigachat.
type GigaChatExtractor struct {
	client *gigago.Client
	model  *gigago.GenerativeModel
	logger *zap.Logger
}

func NewGigaChatExtractor(ctx context.Context, cfg *config.ExtractorConfig, logger *zap.Logger) (*GigaChatExtractor, error) {
	opts := []gigago.Option{
		gigago.WithCustomScope(cfg.GigaChatScope),
	}
	if cfg.InsecureSkipVerify {
		opts = append(opts, gigago.WithCustomInsecureSkipVerify(true))
		logger.Warn("GigaChat TLS certificate verification is disabled")
	}

	client, err := gigago.NewClient(ctx, cfg.APIKey, opts...)
	if err != nil {
		return nil, err
	}

	model := client.GenerativeModel("GigaChat")
	model.SystemInstruction = extractionInstructions
	model.Temperature = 0.1

	return &GigaChatExtractor{
		client: client,
		model:  model,
		logger: logger,
	}, nil
}

func (e *GigaChatExtractor) Extract(ctx context.Context, text string) (*pipeline.CandidateExpense, error) {
	messages := []gigago.Message{
		{Role: gigago.RoleUser, Content: "Extract expense data from this receipt text: " + text},
	}

	resp, err := e.model.Generate(ctx, messages)
	if err != nil {
		return nil, pipeline.Errf(pipeline.StageExtraction, pipeline.KindExtractionParseFailed,
			"generation failed: %v", err)
	}
	if len(resp.Choices) == 0 {
		return nil, pipeline.Errf(pipeline.StageExtraction, pipeline.KindExtractionParseFailed,
			"generation response has no choices")
	}

	candidate, err := parseCandidate(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}

	e.logger.Info("Structured extraction completed",
		zap.String("name", candidate.Name),
		zap.String("category", candidate.Category),
	)

	return candidate, nil
}

func (e *GigaChatExtractor) Close() error {
	if e.client != nil {
		e.client.Close()
	}
	return nil
}
