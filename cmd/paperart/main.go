// Package main is the entry point for the Paper Art TUI application.
// It initializes configuration, logging and services, then runs the Bubble Tea program.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/paperart-tui/internal/app"
	"github.com/j-veylop/paperart-tui/internal/config"
	"github.com/j-veylop/paperart-tui/internal/logger"
	"github.com/j-veylop/paperart-tui/internal/services"
	"github.com/j-veylop/paperart-tui/internal/ui/tabs/accounts"
	"github.com/j-veylop/paperart-tui/internal/ui/tabs/history"
	"github.com/j-veylop/paperart-tui/internal/ui/tabs/info"
	"github.com/j-veylop/paperart-tui/internal/ui/tabs/studio"
	"github.com/j-veylop/paperart-tui/internal/version"
)

func main() {
	if len(os.Args) > 1 && (os.Args[1] == "-v" || os.Args[1] == "--version") {
		fmt.Println(version.Info())
		os.Exit(0)
	}

	if len(os.Args) > 1 && (os.Args[1] == "-h" || os.Args[1] == "--help") {
		printUsage()
		os.Exit(0)
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run contains the main application logic, separated for cleaner error handling.
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logFile, err := logger.Init(cfg.LogPath, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer func() { _ = logFile.Close() }()

	logger.Info("starting", "version", version.GetVersion(), "store", cfg.StorePath, "backend", cfg.StoreBackend)

	// Opens the store, the history database and the file watcher.
	svcManager, err := services.NewManager(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}

	defer func() {
		if closeErr := svcManager.Close(); closeErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: error closing services: %v\n", closeErr)
		}
	}()

	model := app.NewModel(svcManager)

	state := model.GetState()
	tabs := []app.Tab{
		studio.New(state),                           // Tab 0: Studio - credits and generation
		history.New(state, svcManager),              // Tab 1: History - gallery and stats
		accounts.New(state, svcManager.Validator()), // Tab 2: Account - sign in and local data
		info.New(state, cfg),                        // Tab 3: Info - configuration and app info
	}
	model.SetTabs(tabs)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	go func() {
		<-sigChan
		p.Send(tea.Quit())
	}()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	logger.Info("stopped")
	return nil
}

// printUsage prints the command-line usage information.
func printUsage() {
	fmt.Println(`Paper Art TUI - Turn photos into paper craft art

Usage:
  paperart [flags]

Flags:
  -h, --help      Show this help message
  -v, --version   Show version information

Keyboard Shortcuts:
  1-4             Switch between tabs (Studio, History, Account, Info)
  Tab/Shift+Tab   Navigate between tabs
  j/k, Up/Down    Navigate lists
  Enter           Select/confirm
  ?               Toggle help
  q, Ctrl+C       Quit

Environment Variables:
  PAPERART_DATA_DIR       Data directory
  STORE_PATH              Key-value store path
  STORE_BACKEND           Store backend: file or sqlite (default: file)
  DATABASE_PATH           SQLite database path
  DOWNLOAD_DIR            Directory for downloaded images
  LOG_PATH                Log file path
  LOG_LEVEL               debug, info, warn or error (default: info)
  GEMINI_API_KEY          API key for the image description model
  GEMINI_MODEL            Vision model (default: gemini-1.5-flash)
  GEMINI_ENDPOINT         Vision API base URL
  IMAGE_ENDPOINT          Image generation base URL
  IMAGE_MODEL             Image generation model (default: flux)
  HTTP_TIMEOUT            Outbound request timeout (default: 2m)
  DAILY_CREDIT_LIMIT      Credits per day (default: 10)
  CREDIT_COST             Credits per generation (default: 1)
  STORAGE_QUOTA_BYTES     Local storage quota (default: 5 MiB)
  DESKTOP_NOTIFICATIONS   Desktop notifications on low credits (default: true)

Configuration:
  The application looks for .env files in the following locations:
  - Current directory
  - ~/.config/paperart/.env
  - ~/.paperart/.env`)
}
