// Package main provides the cowork entry point: a terminal client for a
// local conversational agent engine.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"cowork/agentrpc"
	"cowork/app"
	"cowork/chat"
	"cowork/settings"
)

var (
	plainFlag    bool
	forceNewFlag bool
	engineFlag   string
	settingsFlag string
	workdirFlag  string
)

var rootCmd = &cobra.Command{
	Use:   "cowork",
	Short: "Terminal client for a local agent engine",
	Long: `cowork talks to a local conversational agent engine over stdio:
it manages sessions, streams assistant output, tracks tool execution,
and gates mutable tools behind an interactive confirmation prompt.

The engine binary is looked up from settings (~/.cowork/settings.yaml)
unless overridden with --engine.`,
	RunE: run,
}

func init() {
	rootCmd.Flags().BoolVar(&plainFlag, "plain", false, "Line-based REPL instead of the full-screen UI")
	rootCmd.Flags().BoolVar(&forceNewFlag, "force-new", false, "Start a fresh session instead of resuming")
	rootCmd.Flags().StringVar(&engineFlag, "engine", "", "Engine binary path (default from settings)")
	rootCmd.Flags().StringVar(&settingsFlag, "settings", "", "Settings file path (default ~/.cowork/settings.yaml)")
	rootCmd.Flags().StringVar(&workdirFlag, "workdir", "", "Working directory reported to the engine (default cwd)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	settingsPath := settingsFlag
	if settingsPath == "" {
		var err error
		settingsPath, err = settings.DefaultPath()
		if err != nil {
			return err
		}
	}
	cfg, err := settings.Load(settingsPath)
	if err != nil {
		return err
	}

	engineBinary := engineFlag
	if engineBinary == "" {
		engineBinary = cfg.EngineBinary
	}

	workDir := workdirFlag
	if workDir == "" {
		workDir = cfg.WorkingDirectory
	}
	if workDir == "" {
		if cwd, err := os.Getwd(); err == nil {
			workDir = cwd
		}
	}

	client := agentrpc.NewClient(
		agentrpc.WithBinaryPath(engineBinary),
		agentrpc.WithBinaryArgs(cfg.EngineArgs...),
		agentrpc.WithStderrHandler(func(data []byte) {
			log.Printf("engine: %s", data)
		}),
	)
	if err := client.Start(ctx); err != nil {
		return fmt.Errorf("failed to start engine: %w", err)
	}
	defer client.Stop()

	store := chat.NewStore(client, workDir)

	guard := chat.NewSubscriptionGuard()
	teardown := guard.Arm(client.Events(), store)
	defer teardown()

	if _, err := store.CleanupEmptySessions(ctx); err != nil {
		log.Printf("WARNING: cleanup of empty sessions failed: %v", err)
	}

	if err := store.StartSession(ctx, forceNewFlag); err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}

	if !cfg.OnboardingComplete {
		cfg.OnboardingComplete = true
		if err := settings.Save(settingsPath, cfg); err != nil {
			log.Printf("WARNING: failed to persist settings: %v", err)
		}
	}

	if plainFlag || !term.IsTerminal(int(os.Stdout.Fd())) {
		return runPlain(ctx, store)
	}

	notifier := app.NewStoreNotifier()
	store.AddObserver(notifier)

	// Live theme reload on external settings edits.
	go func() {
		_ = settings.Watch(ctx, settingsPath, func(s *settings.Settings) {
			log.Printf("settings reloaded (theme %s)", s.Theme)
		})
	}()

	model := app.NewModel(ctx, store, notifier.C(), cfg.Theme)
	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("UI error: %w", err)
	}
	return nil
}
