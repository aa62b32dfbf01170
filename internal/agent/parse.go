package agent

import (
	"encoding/json"
	"fmt"

	"github.com/daenny/ai-travel-planner/internal/util"
	"github.com/daenny/ai-travel-planner/pkg/models"
)

// parseMetadata extracts and validates an ItineraryMetadata from a raw
// model response.
func parseMetadata(content string) (*models.ItineraryMetadata, error) {
	jsonStr := util.RepairJSON(util.ExtractJSON(content))

	var meta models.ItineraryMetadata
	if err := json.Unmarshal([]byte(jsonStr), &meta); err != nil {
		return nil, fmt.Errorf("failed to parse metadata JSON: %w", err)
	}

	if meta.Title == "" {
		return nil, fmt.Errorf("metadata is missing a title")
	}
	if meta.TotalDays < 1 {
		return nil, fmt.Errorf("metadata has invalid total_days: %d", meta.TotalDays)
	}

	return &meta, nil
}

// dayBlockResponse is the expected shape of a day block reply. Some models
// return the bare array instead of the wrapping object, so both are
// accepted.
type dayBlockResponse struct {
	Days []models.DayPlan `json:"days"`
}

// parseDayBlock extracts and validates the day plans for [startDay, endDay].
// The block must contain exactly endDay-startDay+1 entries and, after
// sorting, be numbered startDay..endDay with no gaps or duplicates.
func parseDayBlock(content string, startDay, endDay int) ([]models.DayPlan, error) {
	jsonStr := util.RepairJSON(util.ExtractJSON(content))

	var resp dayBlockResponse
	if err := json.Unmarshal([]byte(jsonStr), &resp); err != nil || resp.Days == nil {
		// Fallback: a bare array of day plans
		var days []models.DayPlan
		if arrErr := json.Unmarshal([]byte(jsonStr), &days); arrErr != nil {
			if err != nil {
				return nil, fmt.Errorf("failed to parse day block JSON: %w", err)
			}
			return nil, fmt.Errorf("failed to parse day block JSON: %w", arrErr)
		}
		resp.Days = days
	}

	expected := endDay - startDay + 1
	if len(resp.Days) != expected {
		return nil, fmt.Errorf("expected %d days, got %d", expected, len(resp.Days))
	}

	seen := make(map[int]bool, expected)
	for _, day := range resp.Days {
		if day.DayNumber < startDay || day.DayNumber > endDay {
			return nil, fmt.Errorf("day number %d is outside the requested range %d-%d", day.DayNumber, startDay, endDay)
		}
		if seen[day.DayNumber] {
			return nil, fmt.Errorf("duplicate day number %d", day.DayNumber)
		}
		seen[day.DayNumber] = true
		if day.Title == "" && len(day.Activities) == 0 {
			return nil, fmt.Errorf("day %d has no title and no activities", day.DayNumber)
		}
	}

	return resp.Days, nil
}
