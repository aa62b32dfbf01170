package models

import "time"

// GenerationStatus represents where a generation run stands
type GenerationStatus string

const (
	StatusGeneratingMetadata GenerationStatus = "generating_metadata"
	StatusGeneratingDays     GenerationStatus = "generating_days"
	StatusComplete           GenerationStatus = "complete"
	// StatusPartial means a block failed after at least one block succeeded;
	// the run is resumable from the last completed day.
	StatusPartial GenerationStatus = "partial"
	StatusError   GenerationStatus = "error"
)

// GenerationProgress describes a multi-step generation run after one step.
// A fresh value is emitted after every generator call; it is only persisted
// as part of a GenerationState.
type GenerationProgress struct {
	Status            GenerationStatus `json:"status"`
	CompletedDays     int              `json:"completed_days"`
	TotalDays         int              `json:"total_days"` // 0 until metadata completes
	CurrentBlockStart int              `json:"current_block_start"`
	CurrentBlockEnd   int              `json:"current_block_end"`
	ErrorMessage      string           `json:"error_message,omitempty"`
}

// CanResume reports whether an interrupted run can be continued. Resume is
// only meaningful once the metadata step has fixed TotalDays and at least
// one day remains.
func (p GenerationProgress) CanResume() bool {
	if p.Status != StatusPartial && p.Status != StatusError {
		return false
	}
	return p.TotalDays > 0 && p.CompletedDays < p.TotalDays
}

// GenerationState is the durable snapshot of an interrupted run. It holds
// everything a resume needs: the original requirements, the metadata that
// fixed total_days, and the document assembled so far.
//
// Invariant: Progress.CompletedDays == len(Itinerary.Days).
type GenerationState struct {
	SessionID   string    `json:"session_id"`
	CreatedAt   time.Time `json:"created_at"`
	LastSavedAt time.Time `json:"last_saved_at"`

	Requirements string `json:"requirements"`
	Language     string `json:"language"`
	BlockSize    int    `json:"block_size"`

	Metadata  *ItineraryMetadata `json:"metadata,omitempty"`
	Progress  GenerationProgress `json:"progress"`
	Itinerary *Itinerary         `json:"itinerary,omitempty"`
}
