package models

import (
	"encoding/json"
	"sort"
	"strings"
	"time"
)

// ActivityType categorizes an itinerary activity
type ActivityType string

const (
	ActivitySightseeing   ActivityType = "sightseeing"
	ActivityAdventure     ActivityType = "adventure"
	ActivityDining        ActivityType = "dining"
	ActivityTransport     ActivityType = "transport"
	ActivityAccommodation ActivityType = "accommodation"
	ActivityRelaxation    ActivityType = "relaxation"
	ActivityWildlife      ActivityType = "wildlife"
	ActivityCultural      ActivityType = "cultural"
	ActivityShopping      ActivityType = "shopping"
	ActivityNature        ActivityType = "nature"
	ActivityBeach         ActivityType = "beach"
	ActivityOther         ActivityType = "other"
)

// activityTypeAliases maps common model-generated variations to valid types
var activityTypeAliases = map[string]ActivityType{
	"culture":    ActivityCultural,
	"museum":     ActivityCultural,
	"temple":     ActivityCultural,
	"food":       ActivityDining,
	"restaurant": ActivityDining,
	"eating":     ActivityDining,
	"travel":     ActivityTransport,
	"flight":     ActivityTransport,
	"bus":        ActivityTransport,
	"train":      ActivityTransport,
	"taxi":       ActivityTransport,
	"hotel":      ActivityAccommodation,
	"stay":       ActivityAccommodation,
	"lodge":      ActivityAccommodation,
	"hostel":     ActivityAccommodation,
	"rest":       ActivityRelaxation,
	"spa":        ActivityRelaxation,
	"hike":       ActivityAdventure,
	"hiking":     ActivityAdventure,
	"trek":       ActivityAdventure,
	"trekking":   ActivityAdventure,
	"snorkeling": ActivityAdventure,
	"diving":     ActivityAdventure,
	"tour":       ActivitySightseeing,
	"visit":      ActivitySightseeing,
	"explore":    ActivitySightseeing,
	"market":     ActivityShopping,
	"animals":    ActivityWildlife,
	"safari":     ActivityWildlife,
	"jungle":     ActivityWildlife,
	"rainforest": ActivityWildlife,
}

var validActivityTypes = map[ActivityType]bool{
	ActivitySightseeing:   true,
	ActivityAdventure:     true,
	ActivityDining:        true,
	ActivityTransport:     true,
	ActivityAccommodation: true,
	ActivityRelaxation:    true,
	ActivityWildlife:      true,
	ActivityCultural:      true,
	ActivityShopping:      true,
	ActivityNature:        true,
	ActivityBeach:         true,
	ActivityOther:         true,
}

// NormalizeActivityType maps a raw model-produced string to a valid ActivityType.
// Unknown values default to sightseeing rather than failing the whole day block.
func NormalizeActivityType(raw string) ActivityType {
	v := ActivityType(strings.ToLower(strings.TrimSpace(raw)))
	if alias, ok := activityTypeAliases[string(v)]; ok {
		return alias
	}
	if validActivityTypes[v] {
		return v
	}
	return ActivitySightseeing
}

// UnmarshalJSON accepts any string and normalizes it to a valid type
func (a *ActivityType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*a = NormalizeActivityType(s)
	return nil
}

// ClockTime holds a time of day normalized to "HH:MM".
// Models emit times in assorted formats ("3:04 PM", "15:04:00"); anything
// unparseable collapses to the empty string instead of failing decode.
type ClockTime string

var clockFormats = []string{"15:04", "15:04:05", "3:04 PM", "3:04PM", "03:04 PM"}

// UnmarshalJSON normalizes assorted time formats, tolerating null and "null"
func (c *ClockTime) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*c = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "null") {
		*c = ""
		return nil
	}
	for _, format := range clockFormats {
		if t, err := time.Parse(format, strings.ToUpper(s)); err == nil {
			*c = ClockTime(t.Format("15:04"))
			return nil
		}
	}
	*c = ""
	return nil
}

// TravelTip is a single piece of practical advice
type TravelTip struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	Category string `json:"category,omitempty"`
}

// Activity is a single entry within a day plan
type Activity struct {
	Name            string       `json:"name"`
	Description     string       `json:"description"`
	Location        string       `json:"location"`
	ActivityType    ActivityType `json:"activity_type"`
	StartTime       ClockTime    `json:"start_time,omitempty"`
	EndTime         ClockTime    `json:"end_time,omitempty"`
	CostEstimate    string       `json:"cost_estimate,omitempty"`
	BookingRequired bool         `json:"booking_required,omitempty"`
	BookingLink     string       `json:"booking_link,omitempty"`
	Tips            []TravelTip  `json:"tips,omitempty"`
}

// DayPlan is one day of the itinerary
type DayPlan struct {
	DayNumber   int         `json:"day_number"`
	Title       string      `json:"title"`
	Location    string      `json:"location"`
	Summary     string      `json:"summary"`
	Activities  []Activity  `json:"activities"`
	Tips        []TravelTip `json:"tips,omitempty"`
	WeatherNote string      `json:"weather_note,omitempty"`
}

// ItineraryMetadata is the trip overview produced by the metadata generation
// step. TotalDays is decided by the model, not the caller, and drives how
// many day blocks the orchestrator requests.
type ItineraryMetadata struct {
	Title          string      `json:"title"`
	Description    string      `json:"description"`
	TotalDays      int         `json:"total_days"`
	GeneralTips    []TravelTip `json:"general_tips,omitempty"`
	PackingList    []string    `json:"packing_list,omitempty"`
	BudgetEstimate string      `json:"budget_estimate,omitempty"`
}

// Itinerary is the travel document under construction: metadata fields plus
// the ordered day plans assembled so far.
type Itinerary struct {
	Title          string      `json:"title"`
	Description    string      `json:"description"`
	Travelers      int         `json:"travelers,omitempty"`
	Days           []DayPlan   `json:"days"`
	GeneralTips    []TravelTip `json:"general_tips,omitempty"`
	PackingList    []string    `json:"packing_list,omitempty"`
	BudgetEstimate string      `json:"budget_estimate,omitempty"`
}

// NewItinerary seeds an empty itinerary from generated metadata
func NewItinerary(meta *ItineraryMetadata) *Itinerary {
	if meta == nil {
		return &Itinerary{}
	}
	return &Itinerary{
		Title:          meta.Title,
		Description:    meta.Description,
		GeneralTips:    append([]TravelTip(nil), meta.GeneralTips...),
		PackingList:    append([]string(nil), meta.PackingList...),
		BudgetEstimate: meta.BudgetEstimate,
	}
}

// MetadataFromItinerary reconstructs the metadata an itinerary was seeded
// from. TotalDays is not stored on the document, so it comes from the
// accompanying progress.
func MetadataFromItinerary(it *Itinerary, totalDays int) *ItineraryMetadata {
	if it == nil {
		return nil
	}
	return &ItineraryMetadata{
		Title:          it.Title,
		Description:    it.Description,
		TotalDays:      totalDays,
		GeneralTips:    append([]TravelTip(nil), it.GeneralTips...),
		PackingList:    append([]string(nil), it.PackingList...),
		BudgetEstimate: it.BudgetEstimate,
	}
}

// AddDays appends day plans and keeps the collection sorted by day number
func (it *Itinerary) AddDays(days []DayPlan) {
	it.Days = append(it.Days, days...)
	sort.Slice(it.Days, func(i, j int) bool {
		return it.Days[i].DayNumber < it.Days[j].DayNumber
	})
}

// Day returns the plan for a given day number, or nil if not yet generated
func (it *Itinerary) Day(dayNumber int) *DayPlan {
	for i := range it.Days {
		if it.Days[i].DayNumber == dayNumber {
			return &it.Days[i]
		}
	}
	return nil
}

// Clone returns a deep copy. The orchestrator hands clones to the caller so
// it can keep mutating the working document between emissions.
func (it *Itinerary) Clone() *Itinerary {
	if it == nil {
		return nil
	}
	cp := *it
	cp.Days = make([]DayPlan, len(it.Days))
	for i, d := range it.Days {
		cp.Days[i] = d
		cp.Days[i].Activities = append([]Activity(nil), d.Activities...)
		cp.Days[i].Tips = append([]TravelTip(nil), d.Tips...)
	}
	cp.GeneralTips = append([]TravelTip(nil), it.GeneralTips...)
	cp.PackingList = append([]string(nil), it.PackingList...)
	return &cp
}
