package session

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/daenny/ai-travel-planner/pkg/models"
)

// StateFilename is the name of the generation state file inside a session
// directory.
const StateFilename = "state.json"

// StateStore persists generation state and itineraries as JSON. Writes are
// atomic (temp file + rename) so an interrupted save never leaves a corrupt
// state behind.
type StateStore struct {
	logger *slog.Logger
}

// NewStateStore creates a state store
func NewStateStore(logger *slog.Logger) *StateStore {
	return &StateStore{logger: logger}
}

// NewState builds a fresh generation state for an interrupted run
func NewState(requirements, language string, blockSize int) *models.GenerationState {
	return &models.GenerationState{
		SessionID:    uuid.New().String(),
		CreatedAt:    time.Now(),
		Requirements: requirements,
		Language:     language,
		BlockSize:    blockSize,
	}
}

// SaveState writes the generation state into the session directory
func (s *StateStore) SaveState(mgr *Manager, state *models.GenerationState) error {
	state.LastSavedAt = time.Now()

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	statePath := mgr.StatePath()
	tempPath := statePath + ".tmp"

	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write temp state: %w", err)
	}
	if err := os.Rename(tempPath, statePath); err != nil {
		return fmt.Errorf("failed to rename state file: %w", err)
	}

	s.logger.Debug("Generation state saved",
		"path", statePath,
		"completed_days", state.Progress.CompletedDays,
		"total_days", state.Progress.TotalDays)
	return nil
}

// LoadState reads the generation state from a session directory
func (s *StateStore) LoadState(sessionDir string) (*models.GenerationState, error) {
	data, err := os.ReadFile(filepath.Join(sessionDir, StateFilename))
	if err != nil {
		return nil, fmt.Errorf("failed to read state: %w", err)
	}

	var state models.GenerationState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal state: %w", err)
	}

	s.logger.Info("Generation state loaded",
		"session_id", state.SessionID,
		"status", state.Progress.Status,
		"completed_days", state.Progress.CompletedDays,
		"total_days", state.Progress.TotalDays)

	return &state, nil
}

// DeleteState removes the state file once a resumed run completes. A state
// that outlives its run is garbage.
func (s *StateStore) DeleteState(mgr *Manager) error {
	err := os.Remove(mgr.StatePath())
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete state: %w", err)
	}
	return nil
}

// ValidateState checks that a loaded state is internally consistent and
// actually resumable.
func ValidateState(state *models.GenerationState) error {
	if !state.Progress.CanResume() {
		return fmt.Errorf("state is not resumable (status %q, %d/%d days)",
			state.Progress.Status, state.Progress.CompletedDays, state.Progress.TotalDays)
	}
	if state.Metadata == nil {
		return fmt.Errorf("state has no metadata; nothing to resume from")
	}
	days := 0
	if state.Itinerary != nil {
		days = len(state.Itinerary.Days)
	}
	if days != state.Progress.CompletedDays {
		return fmt.Errorf("state is inconsistent: progress says %d completed days but the document has %d",
			state.Progress.CompletedDays, days)
	}
	return nil
}

// SaveItinerary writes the itinerary snapshot into the session directory
func (s *StateStore) SaveItinerary(mgr *Manager, it *models.Itinerary) error {
	data, err := json.MarshalIndent(it, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal itinerary: %w", err)
	}
	if err := os.WriteFile(mgr.ItineraryPath(), data, 0644); err != nil {
		return fmt.Errorf("failed to write itinerary: %w", err)
	}
	return nil
}

// SavePlan writes a completed itinerary into the plans directory under a
// filesystem-safe version of its title.
func (s *StateStore) SavePlan(plansDir string, it *models.Itinerary) (string, error) {
	if err := os.MkdirAll(plansDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create plans directory: %w", err)
	}

	name := it.Title
	if name == "" {
		name = "itinerary"
	}
	path := filepath.Join(plansDir, safeName(name)+".json")

	data, err := json.MarshalIndent(it, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal itinerary: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write plan: %w", err)
	}

	s.logger.Info("Saved completed plan", "path", path)
	return path, nil
}

// LoadPlan reads a saved itinerary by name from the plans directory
func (s *StateStore) LoadPlan(plansDir, name string) (*models.Itinerary, error) {
	data, err := os.ReadFile(filepath.Join(plansDir, safeName(name)+".json"))
	if err != nil {
		return nil, fmt.Errorf("failed to read plan: %w", err)
	}

	var it models.Itinerary
	if err := json.Unmarshal(data, &it); err != nil {
		return nil, fmt.Errorf("failed to unmarshal plan: %w", err)
	}
	return &it, nil
}

// ListPlans returns the names of all saved plans, sorted
func (s *StateStore) ListPlans(plansDir string) ([]string, error) {
	entries, err := os.ReadDir(plansDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read plans directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		names = append(names, strings.TrimSuffix(entry.Name(), ".json"))
	}
	sort.Strings(names)
	return names, nil
}

// safeName keeps alphanumerics, dot, underscore, and dash; everything else
// becomes an underscore.
func safeName(name string) string {
	var sb strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			sb.WriteRune(r)
		case r == '.' || r == '_' || r == '-':
			sb.WriteRune(r)
		default:
			sb.WriteRune('_')
		}
	}
	return sb.String()
}
