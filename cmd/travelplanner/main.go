package main

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/daenny/ai-travel-planner/internal/agent"
	"github.com/daenny/ai-travel-planner/internal/api"
	"github.com/daenny/ai-travel-planner/internal/config"
	"github.com/daenny/ai-travel-planner/internal/itinerary"
	"github.com/daenny/ai-travel-planner/internal/session"
	"github.com/daenny/ai-travel-planner/pkg/models"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

var (
	configPath       string
	envFile          string
	verbose          bool
	requirementsFile string
	providerOverride string
	blockSize        int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "travelplanner",
		Short: "AI Travel Planner - iterative itinerary generation",
		Long: `travelplanner generates day-by-day travel itineraries by driving
LLM APIs (Claude, OpenAI, Gemini) through a resumable block-by-block
pipeline. Interrupted runs are saved per session and can be resumed
without regenerating completed days.`,
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildTime),
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.toml", "Path to configuration file")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Path to environment file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")

	planCmd := &cobra.Command{
		Use:   "plan",
		Short: "Generate a new itinerary",
		Long: `Run a fresh generation:
1. Generate trip metadata (title, length, tips, packing list)
2. Generate days in blocks, showing progress after each block
3. Save the completed plan, or a resumable state on failure`,
		RunE: runPlan,
	}
	planCmd.Flags().StringVar(&requirementsFile, "requirements-file", "", "Read trip requirements from a file (overrides config)")
	planCmd.Flags().StringVar(&providerOverride, "provider", "", "Model to use (key into [models], overrides config)")
	planCmd.Flags().IntVar(&blockSize, "block-size", 0, "Days per generation block (overrides config)")

	resumeCmd := &cobra.Command{
		Use:   "resume <session-dir>",
		Short: "Resume an interrupted generation",
		Long:  "Continue a previously interrupted generation from its saved state, without regenerating completed days.",
		Args:  cobra.ExactArgs(1),
		RunE:  runResume,
	}
	resumeCmd.Flags().StringVar(&providerOverride, "provider", "", "Model to use (key into [models], overrides config)")

	sessionsCmd := &cobra.Command{
		Use:   "sessions",
		Short: "Manage generation sessions",
	}
	sessionsCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List sessions with saved generation state",
		RunE:  runSessionsList,
	})
	sessionsCmd.AddCommand(&cobra.Command{
		Use:   "inspect <session-dir>",
		Short: "Show the saved state of a session",
		Args:  cobra.ExactArgs(1),
		RunE:  runSessionsInspect,
	})

	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(resumeCmd)
	rootCmd.AddCommand(sessionsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, *config.Secrets, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Warning: failed to load env file: %v\n", err)
		}
	}

	cfg, secrets, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if requirementsFile != "" {
		data, err := os.ReadFile(requirementsFile)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read requirements file: %w", err)
		}
		cfg.Trip.Requirements = string(data)
	}
	if providerOverride != "" {
		if _, ok := cfg.Models[providerOverride]; !ok {
			return nil, nil, fmt.Errorf("models.%s is not configured", providerOverride)
		}
		cfg.Generation.Provider = providerOverride
	}
	if blockSize > 0 {
		cfg.Generation.BlockSize = blockSize
	}

	return cfg, secrets, nil
}

func logLevel() slog.Level {
	if verbose {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

func buildAgent(cfg *config.Config, secrets *config.Secrets, logger *slog.Logger) *agent.Agent {
	modelCfg := cfg.Models[cfg.Generation.Provider]
	apiKey := secrets.GetAPIKey(modelCfg.BaseURL)
	client := api.NewClient(logger)
	return agent.New(client, modelCfg, apiKey, cfg.PromptTemplates, logger)
}

func runPlan(cmd *cobra.Command, args []string) error {
	cfg, secrets, err := loadConfig()
	if err != nil {
		return err
	}

	mgr, err := session.NewManager(slog.Default(), cfg.Generation.OutputDir, "")
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	logger, logFile, err := session.SetupLogger(mgr, logLevel())
	if err != nil {
		return fmt.Errorf("failed to setup logger: %w", err)
	}
	defer func() {
		_ = logFile.Sync()
		_ = logFile.Close()
	}()

	logger.Info("travelplanner starting",
		"version", Version,
		"config", configPath,
		"session_dir", mgr.Dir())

	if err := mgr.BackupConfig(configPath); err != nil {
		return fmt.Errorf("failed to backup config: %w", err)
	}

	gen := buildAgent(cfg, secrets, logger)
	orch := itinerary.New(gen, logger)
	store := session.NewStateStore(logger)
	state := session.NewState(cfg.Trip.Requirements, cfg.Trip.Language, cfg.Generation.BlockSize)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	req := itinerary.Request{
		Requirements: cfg.Trip.Requirements,
		Language:     cfg.Trip.Language,
		BlockSize:    cfg.Generation.BlockSize,
	}

	return consumeRun(orch.Generate(ctx, req), cfg, mgr, store, state, logger)
}

func runResume(cmd *cobra.Command, args []string) error {
	cfg, secrets, err := loadConfig()
	if err != nil {
		return err
	}

	mgr, err := session.NewManager(slog.Default(), cfg.Generation.OutputDir, args[0])
	if err != nil {
		return fmt.Errorf("failed to open session: %w", err)
	}

	logger, logFile, err := session.SetupLogger(mgr, logLevel())
	if err != nil {
		return fmt.Errorf("failed to setup logger: %w", err)
	}
	defer func() {
		_ = logFile.Sync()
		_ = logFile.Close()
	}()

	store := session.NewStateStore(logger)
	state, err := store.LoadState(mgr.Dir())
	if err != nil {
		return fmt.Errorf("failed to load state: %w", err)
	}
	if err := session.ValidateState(state); err != nil {
		return fmt.Errorf("cannot resume: %w", err)
	}

	logger.Info("travelplanner resuming",
		"version", Version,
		"session_dir", mgr.Dir(),
		"completed_days", state.Progress.CompletedDays,
		"total_days", state.Progress.TotalDays)

	gen := buildAgent(cfg, secrets, logger)
	orch := itinerary.New(gen, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The run continues under its original requirements, language, and
	// block size; only the model may differ.
	req := itinerary.Request{
		Requirements: state.Requirements,
		Language:     state.Language,
		BlockSize:    state.BlockSize,
	}

	return consumeRun(orch.Resume(ctx, req, state.Metadata, state.Itinerary), cfg, mgr, store, state, logger)
}

// consumeRun drains the generation sequence, rendering progress and keeping
// the on-disk state current so an interruption at any point stays resumable.
func consumeRun(
	seq iter.Seq2[models.GenerationProgress, *models.Itinerary],
	cfg *config.Config,
	mgr *session.Manager,
	store *session.StateStore,
	state *models.GenerationState,
	logger *slog.Logger,
) error {
	var (
		bar           *progressbar.ProgressBar
		finalProgress models.GenerationProgress
		finalDoc      *models.Itinerary
	)

	for progress, doc := range seq {
		finalProgress = progress
		finalDoc = doc

		if progress.TotalDays > 0 && bar == nil {
			bar = progressbar.Default(int64(progress.TotalDays), "Generating days")
		}
		if bar != nil {
			_ = bar.Set(progress.CompletedDays)
		}

		if progress.TotalDays > 0 {
			state.Metadata = models.MetadataFromItinerary(doc, progress.TotalDays)
			state.Progress = progress
			state.Itinerary = doc
			if err := store.SaveState(mgr, state); err != nil {
				logger.Warn("Failed to save generation state", "error", err)
			}
			if err := store.SaveItinerary(mgr, doc); err != nil {
				logger.Warn("Failed to save itinerary snapshot", "error", err)
			}
		}
	}

	switch finalProgress.Status {
	case models.StatusComplete:
		if err := store.DeleteState(mgr); err != nil {
			logger.Warn("Failed to remove completed state", "error", err)
		}
		path, err := store.SavePlan(cfg.Generation.PlansDir, finalDoc)
		if err != nil {
			return err
		}
		logger.Info("Itinerary complete",
			"title", finalDoc.Title,
			"days", len(finalDoc.Days),
			"plan", path)
		return nil

	case models.StatusPartial, models.StatusError:
		if finalProgress.CanResume() {
			sessionName := filepath.Base(mgr.Dir())
			logger.Warn("Generation incomplete - state saved for resume",
				"completed_days", finalProgress.CompletedDays,
				"total_days", finalProgress.TotalDays,
				"resume_command", fmt.Sprintf("travelplanner resume %s", sessionName))
			return fmt.Errorf("generation incomplete after day %d: %s", finalProgress.CompletedDays, finalProgress.ErrorMessage)
		}
		return fmt.Errorf("generation failed: %s", finalProgress.ErrorMessage)

	default:
		// The caller stopped consuming (signal) mid-run
		return fmt.Errorf("generation interrupted (resume with: travelplanner resume %s)", filepath.Base(mgr.Dir()))
	}
}

func runSessionsList(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}

	sessions, err := session.List(cfg.Generation.OutputDir)
	if err != nil {
		return err
	}
	if len(sessions) == 0 {
		fmt.Println("No sessions with saved generation state found.")
		return nil
	}

	store := session.NewStateStore(slog.Default())
	for _, name := range sessions {
		state, err := store.LoadState(filepath.Join(cfg.Generation.OutputDir, name))
		if err != nil {
			fmt.Printf("%s  (unreadable: %v)\n", name, err)
			continue
		}
		fmt.Printf("%s  %s  %d/%d days  resumable=%v\n",
			name,
			state.Progress.Status,
			state.Progress.CompletedDays,
			state.Progress.TotalDays,
			state.Progress.CanResume())
	}
	return nil
}

func runSessionsInspect(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}

	sessionDir := args[0]
	if !filepath.IsAbs(sessionDir) && filepath.Dir(sessionDir) == "." {
		sessionDir = filepath.Join(cfg.Generation.OutputDir, sessionDir)
	}

	store := session.NewStateStore(slog.Default())
	state, err := store.LoadState(sessionDir)
	if err != nil {
		return err
	}

	fmt.Printf("Session:        %s\n", state.SessionID)
	fmt.Printf("Created:        %s\n", state.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Printf("Last saved:     %s\n", state.LastSavedAt.Format("2006-01-02 15:04:05"))
	fmt.Printf("Language:       %s\n", state.Language)
	fmt.Printf("Block size:     %d\n", state.BlockSize)
	fmt.Printf("Status:         %s\n", state.Progress.Status)
	fmt.Printf("Progress:       %d/%d days\n", state.Progress.CompletedDays, state.Progress.TotalDays)
	fmt.Printf("Resumable:      %v\n", state.Progress.CanResume())
	if state.Metadata != nil {
		fmt.Printf("Trip:           %s\n", state.Metadata.Title)
	}
	if state.Progress.ErrorMessage != "" {
		fmt.Printf("Last error:     %s\n", state.Progress.ErrorMessage)
	}
	return nil
}
