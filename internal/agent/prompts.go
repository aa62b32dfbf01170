package agent

// Built-in prompt templates. Any of these can be overridden through the
// [prompt_templates] config section; the data keys stay the same.

// DefaultSystemPrompt frames every generation request
const DefaultSystemPrompt = `You are an expert travel planner specializing in family trips.
You help families plan memorable, safe, and enriching travel experiences.

Your expertise includes:
- Global destination knowledge
- Family-friendly activities and accommodations
- Local cuisine and dining recommendations
- Weather patterns and best times to visit
- Budget planning and cost estimates
- Safety tips and health precautions

Always be helpful, specific, and consider family-friendly options.
When asked for JSON, return ONLY valid JSON with no surrounding text.
{{if .LanguageInstruction}}
{{.LanguageInstruction}}{{end}}`

// languageInstruction is appended to the system prompt for non-English trips
const languageInstruction = `IMPORTANT: Generate ALL content in {{.Language}}. This includes activity names, descriptions, tips, day summaries, and packing list items. Keep proper names (places, restaurants) in their original form.`

// DefaultMetadataTemplate asks for the trip overview. The model decides
// total_days; the orchestrator never supplies it.
const DefaultMetadataTemplate = `Based on the following trip requirements, produce the overview of a travel itinerary in JSON format.

Trip requirements:
{{.Requirements}}

Decide how many days the trip should last based on the requirements. The JSON must follow this exact structure:
{
    "title": "Trip title",
    "description": "Brief description of the trip",
    "total_days": 7,
    "general_tips": [{"title": "Tip title", "content": "Tip content", "category": "packing|health|safety|money|culture|general"}],
    "packing_list": ["Item 1", "Item 2"],
    "budget_estimate": "Total estimate or null"
}

total_days must be a whole number of at least 1. Return ONLY the JSON, no other text.`

// DefaultDayBlockTemplate asks for one contiguous block of day plans
const DefaultDayBlockTemplate = `You are generating a travel itinerary titled "{{.Title}}" ({{.TotalDays}} days total).

Trip requirements:
{{.Requirements}}
{{if .PreviousDaysSummary}}
Days already planned (do not repeat these):
{{.PreviousDaysSummary}}
{{end}}
Now generate ONLY days {{.StartDay}} through {{.EndDay}} as JSON:
{
    "days": [
        {
            "day_number": {{.StartDay}},
            "title": "Day title",
            "location": "City/Area name",
            "summary": "Brief summary of the day",
            "activities": [
                {
                    "name": "Activity name",
                    "description": "What you'll do",
                    "location": "Specific location",
                    "activity_type": "sightseeing|adventure|dining|transport|accommodation|relaxation|wildlife|cultural|shopping|nature|beach|other",
                    "start_time": "HH:MM or null",
                    "end_time": "HH:MM or null",
                    "cost_estimate": "$XX or null",
                    "booking_required": false,
                    "booking_link": null,
                    "tips": [{"title": "Tip title", "content": "Tip content", "category": "general"}]
                }
            ],
            "tips": [{"title": "Day tip", "content": "Content", "category": "general"}],
            "weather_note": "Expected weather or null"
        }
    ]
}

The days array must contain exactly {{.BlockLength}} entries, numbered {{.StartDay}} through {{.EndDay}} in order. Each day needs at least a morning, afternoon, and evening activity. Return ONLY the JSON, no other text.`
