package agent

import "fmt"

// MetadataError means the generator failed to produce valid itinerary
// metadata. A run that fails here is not resumable: total_days was never
// established.
type MetadataError struct {
	Err error
}

func (e *MetadataError) Error() string {
	return fmt.Sprintf("metadata generation failed: %v", e.Err)
}

func (e *MetadataError) Unwrap() error {
	return e.Err
}

// BlockError means the generator failed or returned invalid day plans for a
// requested block. Validation is true when the model responded but the
// content failed structural validation (wrong count, day number out of
// range) rather than the request itself failing.
type BlockError struct {
	StartDay   int
	EndDay     int
	Validation bool
	Err        error
}

func (e *BlockError) Error() string {
	if e.Validation {
		return fmt.Sprintf("day block %d-%d failed validation: %v", e.StartDay, e.EndDay, e.Err)
	}
	return fmt.Sprintf("day block %d-%d generation failed: %v", e.StartDay, e.EndDay, e.Err)
}

func (e *BlockError) Unwrap() error {
	return e.Err
}
