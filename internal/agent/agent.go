// Package agent implements the content generator capability on top of
// third-party model APIs. The orchestrator depends only on the
// ContentGenerator interface; which vendor actually answers is a matter of
// configuration.
package agent

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/daenny/ai-travel-planner/internal/api"
	"github.com/daenny/ai-travel-planner/internal/config"
	"github.com/daenny/ai-travel-planner/internal/util"
	"github.com/daenny/ai-travel-planner/pkg/models"
)

// ContentGenerator produces structured itinerary fragments from trip
// requirements. Implementations must not retry failed calls beyond the
// transport level; whether to continue after a failure is the caller's
// decision.
type ContentGenerator interface {
	// GenerateMetadata produces the trip overview. The returned metadata
	// always has TotalDays >= 1; anything else is a *MetadataError.
	GenerateMetadata(ctx context.Context, requirements, language string) (*models.ItineraryMetadata, error)

	// GenerateDayBlock produces exactly EndDay-StartDay+1 day plans numbered
	// StartDay..EndDay inclusive, or a *BlockError.
	GenerateDayBlock(ctx context.Context, req DayBlockRequest) ([]models.DayPlan, error)

	// Name returns the provider's display name
	Name() string

	// ModelID returns the model identifier being used
	ModelID() string
}

// DayBlockRequest carries everything the generator needs for one block
type DayBlockRequest struct {
	Requirements        string
	Metadata            *models.ItineraryMetadata
	StartDay            int
	EndDay              int
	TotalDays           int
	PreviousDaysSummary string
	Language            string
}

// Agent is the ContentGenerator implementation backed by a model API
// endpoint. One Agent serves one configured model; the wire format (OpenAI
// chat/completions vs Anthropic messages) is handled by the api client.
type Agent struct {
	client    *api.Client
	modelCfg  config.ModelConfig
	apiKey    string
	templates config.PromptTemplates
	logger    *slog.Logger
}

// New creates an agent for the given model configuration
func New(client *api.Client, modelCfg config.ModelConfig, apiKey string, templates config.PromptTemplates, logger *slog.Logger) *Agent {
	if templates.SystemPrompt == "" {
		templates.SystemPrompt = DefaultSystemPrompt
	}
	if templates.MetadataGeneration == "" {
		templates.MetadataGeneration = DefaultMetadataTemplate
	}
	if templates.DayBlockGeneration == "" {
		templates.DayBlockGeneration = DefaultDayBlockTemplate
	}

	return &Agent{
		client:    client,
		modelCfg:  modelCfg,
		apiKey:    apiKey,
		templates: templates,
		logger:    logger,
	}
}

// Name returns the provider's display name
func (a *Agent) Name() string {
	switch config.ProviderName(a.modelCfg.BaseURL) {
	case "anthropic":
		return "Claude"
	case "openai":
		return "OpenAI"
	case "gemini":
		return "Gemini"
	}
	return string(a.modelCfg.Provider)
}

// ModelID returns the model identifier being used
func (a *Agent) ModelID() string {
	return a.modelCfg.ModelName
}

// GenerateMetadata asks the model for the trip overview
func (a *Agent) GenerateMetadata(ctx context.Context, requirements, language string) (*models.ItineraryMetadata, error) {
	prompt, err := util.RenderTemplate(a.templates.MetadataGeneration, map[string]interface{}{
		"Requirements": requirements,
	})
	if err != nil {
		return nil, &MetadataError{Err: fmt.Errorf("failed to render metadata template: %w", err)}
	}

	systemPrompt, err := a.renderSystemPrompt(language)
	if err != nil {
		return nil, &MetadataError{Err: err}
	}

	content, err := a.client.Complete(ctx, a.modelCfg, a.apiKey, systemPrompt, prompt)
	if err != nil {
		return nil, &MetadataError{Err: err}
	}

	a.logger.Debug("Received metadata response", "length", len(content))

	meta, err := parseMetadata(content)
	if err != nil {
		a.logger.Error("Failed to parse metadata response",
			"error", err,
			"response", util.TruncateString(content, 200))
		return nil, &MetadataError{Err: err}
	}

	a.logger.Info("Metadata generated",
		"title", meta.Title,
		"total_days", meta.TotalDays)

	return meta, nil
}

// GenerateDayBlock asks the model for one contiguous block of day plans
func (a *Agent) GenerateDayBlock(ctx context.Context, req DayBlockRequest) ([]models.DayPlan, error) {
	blockErr := func(validation bool, err error) error {
		return &BlockError{
			StartDay:   req.StartDay,
			EndDay:     req.EndDay,
			Validation: validation,
			Err:        err,
		}
	}

	title := ""
	if req.Metadata != nil {
		title = req.Metadata.Title
	}

	prompt, err := util.RenderTemplate(a.templates.DayBlockGeneration, map[string]interface{}{
		"Requirements":        req.Requirements,
		"Title":               title,
		"StartDay":            req.StartDay,
		"EndDay":              req.EndDay,
		"TotalDays":           req.TotalDays,
		"BlockLength":         req.EndDay - req.StartDay + 1,
		"PreviousDaysSummary": req.PreviousDaysSummary,
	})
	if err != nil {
		return nil, blockErr(false, fmt.Errorf("failed to render day block template: %w", err))
	}

	systemPrompt, err := a.renderSystemPrompt(req.Language)
	if err != nil {
		return nil, blockErr(false, err)
	}

	content, err := a.client.Complete(ctx, a.modelCfg, a.apiKey, systemPrompt, prompt)
	if err != nil {
		return nil, blockErr(false, err)
	}

	a.logger.Debug("Received day block response",
		"start_day", req.StartDay,
		"end_day", req.EndDay,
		"length", len(content))

	days, err := parseDayBlock(content, req.StartDay, req.EndDay)
	if err != nil {
		a.logger.Error("Day block response failed validation",
			"start_day", req.StartDay,
			"end_day", req.EndDay,
			"error", err,
			"response", util.TruncateString(content, 200))
		return nil, blockErr(true, err)
	}

	return days, nil
}

func (a *Agent) renderSystemPrompt(language string) (string, error) {
	instruction := ""
	if language != "" && language != "English" {
		var err error
		instruction, err = util.RenderTemplate(languageInstruction, map[string]interface{}{
			"Language": language,
		})
		if err != nil {
			return "", fmt.Errorf("failed to render language instruction: %w", err)
		}
	}

	systemPrompt, err := util.RenderTemplate(a.templates.SystemPrompt, map[string]interface{}{
		"LanguageInstruction": instruction,
	})
	if err != nil {
		return "", fmt.Errorf("failed to render system prompt: %w", err)
	}
	return systemPrompt, nil
}
