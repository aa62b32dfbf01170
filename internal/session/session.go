// Package session manages per-run session directories and the JSON
// persistence of generation state and finished itineraries.
package session

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// Manager manages a single session directory
type Manager struct {
	sessionDir string
	logger     *slog.Logger
}

// NewManager creates a session manager. With an empty resumeFrom a fresh
// timestamped directory is created under outputDir; otherwise the existing
// directory is reused.
func NewManager(logger *slog.Logger, outputDir, resumeFrom string) (*Manager, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	var sessionDir string
	if resumeFrom != "" {
		sessionDir = resumeFrom
		if !filepath.IsAbs(sessionDir) && filepath.Dir(sessionDir) == "." {
			sessionDir = filepath.Join(outputDir, resumeFrom)
		}
		if _, err := os.Stat(sessionDir); os.IsNotExist(err) {
			return nil, fmt.Errorf("session directory not found: %s", sessionDir)
		}
		logger.Info("Resuming from existing session", "path", sessionDir)
	} else {
		timestamp := time.Now().Format("2006-01-02T15-04-05")
		sessionDir = filepath.Join(outputDir, "session_"+timestamp)
		if err := os.MkdirAll(sessionDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create session directory: %w", err)
		}
		logger.Info("Created new session directory", "path", sessionDir)
	}

	return &Manager{
		sessionDir: sessionDir,
		logger:     logger,
	}, nil
}

// Dir returns the session directory path
func (m *Manager) Dir() string {
	return m.sessionDir
}

// StatePath returns the full path to the generation state file
func (m *Manager) StatePath() string {
	return filepath.Join(m.sessionDir, StateFilename)
}

// ItineraryPath returns the full path to the itinerary snapshot
func (m *Manager) ItineraryPath() string {
	return filepath.Join(m.sessionDir, "itinerary.json")
}

// LogPath returns the full path to the session log file
func (m *Manager) LogPath() string {
	return filepath.Join(m.sessionDir, "session.log")
}

// ConfigBackupPath returns the full path to the config backup
func (m *Manager) ConfigBackupPath() string {
	return filepath.Join(m.sessionDir, "config.toml.bak")
}

// BackupConfig copies the config file into the session directory so a
// resumed run can be checked against the settings it started with.
func (m *Manager) BackupConfig(configPath string) error {
	source, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	backupPath := m.ConfigBackupPath()
	if err := os.WriteFile(backupPath, source, 0644); err != nil {
		return fmt.Errorf("failed to write config backup: %w", err)
	}

	m.logger.Info("Backed up config file", "path", backupPath)
	return nil
}

// List returns the session directory names under outputDir that contain a
// state file, newest first.
func List(outputDir string) ([]string, error) {
	entries, err := os.ReadDir(outputDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read output directory: %w", err)
	}

	var sessions []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		statePath := filepath.Join(outputDir, entry.Name(), StateFilename)
		if _, err := os.Stat(statePath); err == nil {
			sessions = append(sessions, entry.Name())
		}
	}

	// ReadDir sorts ascending by name; timestamped names make the newest last
	for i, j := 0, len(sessions)-1; i < j; i, j = i+1, j-1 {
		sessions[i], sessions[j] = sessions[j], sessions[i]
	}

	return sessions, nil
}
