package itinerary

import (
	"fmt"
	"strings"

	"github.com/daenny/ai-travel-planner/internal/util"
	"github.com/daenny/ai-travel-planner/pkg/models"
)

const (
	// maxSummaryDays bounds how many days are summarized individually;
	// older days collapse into a single range line so the prompt does not
	// grow without bound on long trips.
	maxSummaryDays = 14
	// maxSummaryLineLen bounds each per-day line
	maxSummaryLineLen = 160
	// maxSummaryActivities is how many activity names each line carries
	maxSummaryActivities = 3
)

// summarizeDays produces a condensed textual representation of already
// generated days. It gives the generator continuity context for the next
// block without resending full detail.
func summarizeDays(days []models.DayPlan) string {
	if len(days) == 0 {
		return ""
	}

	var sb strings.Builder

	detailed := days
	if len(days) > maxSummaryDays {
		skipped := days[:len(days)-maxSummaryDays]
		detailed = days[len(days)-maxSummaryDays:]
		fmt.Fprintf(&sb, "Days %d-%d: covered %s.\n",
			skipped[0].DayNumber,
			skipped[len(skipped)-1].DayNumber,
			joinLocations(skipped))
	}

	for _, day := range detailed {
		sb.WriteString(util.TruncateString(summarizeDay(day), maxSummaryLineLen))
		sb.WriteString("\n")
	}

	return strings.TrimRight(sb.String(), "\n")
}

func summarizeDay(day models.DayPlan) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Day %d: %s", day.DayNumber, day.Title)
	if day.Location != "" {
		fmt.Fprintf(&sb, " (%s)", day.Location)
	}

	names := make([]string, 0, maxSummaryActivities)
	for _, activity := range day.Activities {
		if len(names) == maxSummaryActivities {
			break
		}
		if activity.Name != "" {
			names = append(names, activity.Name)
		}
	}
	if len(names) > 0 {
		sb.WriteString(" - ")
		sb.WriteString(strings.Join(names, ", "))
	}

	return sb.String()
}

func joinLocations(days []models.DayPlan) string {
	seen := make(map[string]bool)
	var locations []string
	for _, day := range days {
		if day.Location == "" || seen[day.Location] {
			continue
		}
		seen[day.Location] = true
		locations = append(locations, day.Location)
	}
	if len(locations) == 0 {
		return "earlier stops"
	}
	return strings.Join(locations, ", ")
}
