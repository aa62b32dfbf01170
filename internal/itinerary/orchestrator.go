// Package itinerary drives the iterative generation of a travel itinerary:
// one metadata step that fixes the trip length, then day blocks generated in
// order, with progress surfaced after every generator call. Interrupted runs
// resume from the last completed day without regenerating anything.
package itinerary

import (
	"context"
	"fmt"
	"iter"
	"log/slog"

	"github.com/daenny/ai-travel-planner/internal/agent"
	"github.com/daenny/ai-travel-planner/internal/metrics"
	"github.com/daenny/ai-travel-planner/pkg/models"
)

// DefaultBlockSize is the number of days requested per generator call
const DefaultBlockSize = 3

// Request describes one generation run
type Request struct {
	Requirements string
	Language     string
	BlockSize    int
}

func (r Request) blockSize() int {
	if r.BlockSize < 1 {
		return DefaultBlockSize
	}
	return r.BlockSize
}

// Orchestrator runs generation against a pluggable content generator. It
// issues generator calls strictly sequentially: each block's prompt depends
// on a summary of every block before it.
type Orchestrator struct {
	gen    agent.ContentGenerator
	logger *slog.Logger
}

// New creates an orchestrator
func New(gen agent.ContentGenerator, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		gen:    gen,
		logger: logger,
	}
}

// Generate runs a fresh generation end-to-end, yielding a progress snapshot
// and a copy of the document after every step. The sequence is forward-only;
// the caller stops consuming to cancel cooperatively (no in-flight generator
// call is interrupted). A metadata failure terminates the sequence with
// status error and nothing resumable; a later block failure terminates it
// with status partial (or error if the first block fails), from which Resume
// can continue.
func (o *Orchestrator) Generate(ctx context.Context, req Request) iter.Seq2[models.GenerationProgress, *models.Itinerary] {
	return func(yield func(models.GenerationProgress, *models.Itinerary) bool) {
		progress := models.GenerationProgress{
			Status: models.StatusGeneratingMetadata,
		}
		doc := &models.Itinerary{}

		if !yield(progress, doc.Clone()) {
			return
		}

		o.logger.Info("Generating itinerary metadata",
			"provider", o.gen.Name(),
			"model", o.gen.ModelID(),
			"language", req.Language)

		meta, err := o.gen.GenerateMetadata(ctx, req.Requirements, req.Language)
		if err != nil {
			metrics.RecordGenerationStep("metadata", false)
			o.logger.Error("Metadata generation failed", "error", err)
			progress.Status = models.StatusError
			progress.ErrorMessage = fmt.Sprintf("failed to generate metadata: %v", err)
			yield(progress, doc.Clone())
			return
		}
		metrics.RecordGenerationStep("metadata", true)

		totalDays := meta.TotalDays
		doc = models.NewItinerary(meta)

		progress.Status = models.StatusGeneratingDays
		progress.TotalDays = totalDays
		progress.CurrentBlockStart = 1
		progress.CurrentBlockEnd = min(req.blockSize(), totalDays)

		o.logger.Info("Metadata generated",
			"title", meta.Title,
			"total_days", totalDays,
			"block_size", req.blockSize())

		if !yield(progress, doc.Clone()) {
			return
		}

		o.generateDays(ctx, req, meta, doc, progress, yield)
	}
}

// Resume continues a previously interrupted run. The metadata step is
// skipped entirely: the trip length is already known and days 1..k are never
// regenerated. The existing document is not mutated; work continues on a
// copy.
func (o *Orchestrator) Resume(
	ctx context.Context,
	req Request,
	meta *models.ItineraryMetadata,
	existing *models.Itinerary,
) iter.Seq2[models.GenerationProgress, *models.Itinerary] {
	return func(yield func(models.GenerationProgress, *models.Itinerary) bool) {
		doc := existing.Clone()
		if doc == nil {
			doc = models.NewItinerary(meta)
		}
		completed := len(doc.Days)

		progress := models.GenerationProgress{
			Status:            models.StatusGeneratingDays,
			CompletedDays:     completed,
			TotalDays:         meta.TotalDays,
			CurrentBlockStart: completed + 1,
		}

		o.logger.Info("Resuming itinerary generation",
			"title", meta.Title,
			"completed_days", completed,
			"total_days", meta.TotalDays)

		if !yield(progress, doc.Clone()) {
			return
		}

		o.generateDays(ctx, req, meta, doc, progress, yield)
	}
}

// generateDays produces the remaining day blocks, one generator call per
// block, emitting after each. Shared by Generate and Resume.
func (o *Orchestrator) generateDays(
	ctx context.Context,
	req Request,
	meta *models.ItineraryMetadata,
	doc *models.Itinerary,
	progress models.GenerationProgress,
	yield func(models.GenerationProgress, *models.Itinerary) bool,
) {
	totalDays := progress.TotalDays
	blockSize := req.blockSize()

	if progress.CompletedDays >= totalDays {
		progress.Status = models.StatusComplete
		yield(progress, doc.Clone())
		return
	}

	for progress.CompletedDays < totalDays {
		start := progress.CompletedDays + 1
		end := min(start+blockSize-1, totalDays)

		progress.CurrentBlockStart = start
		progress.CurrentBlockEnd = end

		o.logger.Info("Generating day block",
			"start_day", start,
			"end_day", end,
			"total_days", totalDays)

		days, err := o.gen.GenerateDayBlock(ctx, agent.DayBlockRequest{
			Requirements:        req.Requirements,
			Metadata:            meta,
			StartDay:            start,
			EndDay:              end,
			TotalDays:           totalDays,
			PreviousDaysSummary: summarizeDays(doc.Days),
			Language:            req.Language,
		})
		if err != nil {
			metrics.RecordGenerationStep("days", false)
			o.logger.Error("Day block generation failed",
				"start_day", start,
				"end_day", end,
				"completed_days", progress.CompletedDays,
				"error", err)

			// Resumable once at least one block landed; a first-block
			// failure is equivalent to a full restart.
			if progress.CompletedDays > 0 {
				progress.Status = models.StatusPartial
			} else {
				progress.Status = models.StatusError
			}
			progress.ErrorMessage = fmt.Sprintf("failed to generate days %d-%d: %v", start, end, err)
			yield(progress, doc.Clone())
			return
		}
		metrics.RecordGenerationStep("days", true)
		metrics.AddDaysGenerated(len(days))

		doc.AddDays(days)
		progress.CompletedDays += end - start + 1

		if progress.CompletedDays >= totalDays {
			progress.Status = models.StatusComplete
			o.logger.Info("Itinerary generation complete",
				"total_days", totalDays,
				"title", doc.Title)
		}

		if !yield(progress, doc.Clone()) {
			return
		}
	}
}
