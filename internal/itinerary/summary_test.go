package itinerary

import (
	"strings"
	"testing"

	"github.com/daenny/ai-travel-planner/pkg/models"
)

func TestSummarizeDaysEmpty(t *testing.T) {
	if got := summarizeDays(nil); got != "" {
		t.Errorf("summarizeDays(nil) = %q, want empty", got)
	}
}

func TestSummarizeDaysFormat(t *testing.T) {
	days := []models.DayPlan{
		{
			DayNumber: 1,
			Title:     "Arrival",
			Location:  "Lisbon",
			Activities: []models.Activity{
				{Name: "Check in"},
				{Name: "Alfama walk"},
			},
		},
		{
			DayNumber:  2,
			Title:      "Day trip",
			Activities: []models.Activity{{Name: "Sintra palaces"}},
		},
	}

	got := summarizeDays(days)
	lines := strings.Split(got, "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), got)
	}
	if want := "Day 1: Arrival (Lisbon) - Check in, Alfama walk"; lines[0] != want {
		t.Errorf("line 0 = %q, want %q", lines[0], want)
	}
	// No location, no parenthetical
	if strings.Contains(lines[1], "(") {
		t.Errorf("line 1 should omit empty location: %q", lines[1])
	}
}

func TestSummarizeDaysCapsActivities(t *testing.T) {
	day := models.DayPlan{
		DayNumber: 1,
		Title:     "Busy",
		Activities: []models.Activity{
			{Name: "a"}, {Name: "b"}, {Name: "c"}, {Name: "d"}, {Name: "e"},
		},
	}
	got := summarizeDays([]models.DayPlan{day})
	if strings.Contains(got, "d") && strings.Contains(got, ", d") {
		t.Errorf("more than %d activities in summary: %q", maxSummaryActivities, got)
	}
	if !strings.Contains(got, "a, b, c") {
		t.Errorf("expected first %d activities, got %q", maxSummaryActivities, got)
	}
}

func TestSummarizeDaysCollapsesOldDays(t *testing.T) {
	days := make([]models.DayPlan, 0, maxSummaryDays+5)
	for i := 1; i <= maxSummaryDays+5; i++ {
		loc := "North"
		if i > 3 {
			loc = "South"
		}
		days = append(days, models.DayPlan{DayNumber: i, Title: "T", Location: loc})
	}

	got := summarizeDays(days)
	lines := strings.Split(got, "\n")
	if len(lines) != maxSummaryDays+1 {
		t.Fatalf("expected %d lines (range line + %d detailed), got %d",
			maxSummaryDays+1, maxSummaryDays, len(lines))
	}
	if !strings.HasPrefix(lines[0], "Days 1-5:") {
		t.Errorf("first line should collapse days 1-5, got %q", lines[0])
	}
	if !strings.Contains(lines[0], "North") || !strings.Contains(lines[0], "South") {
		t.Errorf("collapsed line should list distinct locations, got %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "Day 6:") {
		t.Errorf("detailed lines should start at day 6, got %q", lines[1])
	}
}

func TestSummarizeDaysTruncatesLongLines(t *testing.T) {
	day := models.DayPlan{
		DayNumber: 1,
		Title:     strings.Repeat("very long title ", 30),
		Location:  "Somewhere",
	}
	got := summarizeDays([]models.DayPlan{day})
	if !strings.HasSuffix(got, "...") {
		t.Errorf("expected truncation marker, got %q", got)
	}
	if n := len([]rune(got)); n > maxSummaryLineLen+3 {
		t.Errorf("line length %d exceeds %d plus marker", n, maxSummaryLineLen)
	}
}
