package agent

import (
	"strings"
	"testing"

	"github.com/daenny/ai-travel-planner/pkg/models"
)

func TestParseMetadata(t *testing.T) {
	content := "```json\n" + `{
		"title": "A Week in Kyoto",
		"description": "Temples, food, and day trips",
		"total_days": 7,
		"packing_list": ["comfortable shoes"],
		"budget_estimate": "$1500"
	}` + "\n```"

	meta, err := parseMetadata(content)
	if err != nil {
		t.Fatalf("parseMetadata failed: %v", err)
	}
	if meta.Title != "A Week in Kyoto" {
		t.Errorf("title = %q", meta.Title)
	}
	if meta.TotalDays != 7 {
		t.Errorf("total_days = %d, want 7", meta.TotalDays)
	}
	if len(meta.PackingList) != 1 {
		t.Errorf("packing_list = %v", meta.PackingList)
	}
}

func TestParseMetadataWithProse(t *testing.T) {
	content := `Here is the overview you asked for:
{"title": "Quick Trip", "description": "d", "total_days": 2}
Let me know if you want changes.`

	meta, err := parseMetadata(content)
	if err != nil {
		t.Fatalf("parseMetadata failed: %v", err)
	}
	if meta.Title != "Quick Trip" || meta.TotalDays != 2 {
		t.Errorf("got %+v", meta)
	}
}

func TestParseMetadataInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"not JSON", "I cannot help with that.", "parse"},
		{"missing title", `{"description": "d", "total_days": 3}`, "title"},
		{"zero days", `{"title": "t", "total_days": 0}`, "total_days"},
		{"negative days", `{"title": "t", "total_days": -2}`, "total_days"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseMetadata(tt.content)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestParseDayBlock(t *testing.T) {
	content := `{"days": [
		{"day_number": 4, "title": "Mountains", "location": "Alps", "summary": "s",
		 "activities": [{"name": "Hike", "description": "d", "location": "Alps", "activity_type": "hiking"}]},
		{"day_number": 5, "title": "Lakes", "location": "Alps", "summary": "s", "activities": []}
	]}`

	days, err := parseDayBlock(content, 4, 5)
	if err != nil {
		t.Fatalf("parseDayBlock failed: %v", err)
	}
	if len(days) != 2 {
		t.Fatalf("got %d days, want 2", len(days))
	}
	if days[0].Activities[0].ActivityType != models.ActivityAdventure {
		t.Errorf("activity type not normalized: %q", days[0].Activities[0].ActivityType)
	}
}

func TestParseDayBlockBareArray(t *testing.T) {
	content := `[
		{"day_number": 1, "title": "Arrival", "location": "Lisbon", "summary": "s", "activities": []}
	]`
	days, err := parseDayBlock(content, 1, 1)
	if err != nil {
		t.Fatalf("parseDayBlock failed: %v", err)
	}
	if len(days) != 1 || days[0].DayNumber != 1 {
		t.Errorf("got %+v", days)
	}
}

func TestParseDayBlockTrailingComma(t *testing.T) {
	content := `{"days": [
		{"day_number": 1, "title": "Start", "location": "x", "summary": "s", "activities": [],},
	]}`
	days, err := parseDayBlock(content, 1, 1)
	if err != nil {
		t.Fatalf("expected trailing commas to be repaired: %v", err)
	}
	if len(days) != 1 {
		t.Errorf("got %d days, want 1", len(days))
	}
}

func TestParseDayBlockValidation(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		startDay int
		endDay   int
		wantErr  string
	}{
		{
			name:     "wrong count",
			content:  `{"days": [{"day_number": 1, "title": "t", "activities": []}]}`,
			startDay: 1, endDay: 2,
			wantErr: "expected 2 days",
		},
		{
			name:     "out of range",
			content:  `{"days": [{"day_number": 7, "title": "t", "activities": []}]}`,
			startDay: 1, endDay: 1,
			wantErr: "outside the requested range",
		},
		{
			name: "duplicate day",
			content: `{"days": [
				{"day_number": 3, "title": "a", "activities": []},
				{"day_number": 3, "title": "b", "activities": []}
			]}`,
			startDay: 3, endDay: 4,
			wantErr: "duplicate",
		},
		{
			name:     "empty day",
			content:  `{"days": [{"day_number": 1, "title": "", "activities": []}]}`,
			startDay: 1, endDay: 1,
			wantErr: "no title",
		},
		{
			name:     "not JSON at all",
			content:  "sorry, try again later",
			startDay: 1, endDay: 1,
			wantErr: "parse",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseDayBlock(tt.content, tt.startDay, tt.endDay)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}
