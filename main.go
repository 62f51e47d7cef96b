// Package main provides the entry point for the DB Switch application.
// DB Switch is a small desktop tool that opens and closes a session
// against a configured database server with a single button, mirroring
// the connection state in its labels.
//
// Features:
//   - One action button that connects or disconnects the database
//   - Target management for multiple MySQL and PostgreSQL servers
//   - Secure credential storage using the system keyring
//   - Reachability monitoring of the selected server
//   - Command-line and terminal interfaces for scripting and SSH use
//
// Usage:
//
//	dbswitch [options]
//
// Environment:
//
//	DATABASE_URL selects an ad-hoc target. A .env file in the working
//	directory is loaded on startup.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/steve-ongera/dbswitch/cli"
	"github.com/steve-ongera/dbswitch/common"
	"github.com/steve-ongera/dbswitch/config"
	"github.com/steve-ongera/dbswitch/tui"
	"github.com/steve-ongera/dbswitch/ui"
)

// Build-time variables injected via ldflags (-X main.appVersion=x.y.z)
// Default values are used for local development builds
var (
	appVersion = "dev"
	buildTime  = "unknown"
	commitSHA  = "unknown"
)

var (
	// GUI/General flags
	showVersion = flag.Bool("version", false, "Show version and exit")
	verbose     = flag.Bool("verbose", false, "Enable verbose logging")
	showHelp    = flag.Bool("help", false, "Show help message")

	// CLI flags
	listTargets = flag.Bool("list", false, "List configured targets")
	checkTarget = flag.Bool("check", false, "Run one connect/disconnect cycle against a target")
	showStatus  = flag.Bool("status", false, "Probe target servers and report reachability")
	showHistory = flag.Bool("history", false, "Show recent connection events")
	historySize = flag.Int("limit", 20, "Max events to show with --history")
	runTUI      = flag.Bool("tui", false, "Launch the terminal interface")
)

func main() {
	flag.Parse()

	// Handle help flag
	if *showHelp {
		cli.PrintHelp()
		os.Exit(0)
	}

	// Handle version flag
	if *showVersion {
		fmt.Printf("DB Switch v%s\n", appVersion)
		if buildTime != "unknown" {
			fmt.Printf("  Build:  %s\n", buildTime)
			fmt.Printf("  Commit: %s\n", commitSHA)
		}
		os.Exit(0)
	}

	// A .env file can supply DATABASE_URL and the DBSWITCH_* variables.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Warning: could not load .env: %v\n", err)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: using default configuration: %v\n", err)
		cfg = config.DefaultConfig()
	}

	// Initialize logger with the configured level and file output
	logLevel := cfg.LogLevelValue()
	if *verbose {
		logLevel = common.LevelDebug
	}

	if err := common.InitLogger(common.LogConfig{
		Level:      logLevel,
		EnableFile: cfg.LogToFile,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not initialize file logging: %v\n", err)
	}
	defer common.CloseLogger()

	// Setup graceful shutdown context
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals (SIGINT, SIGTERM)
	setupSignalHandler(cancel)

	// Check if any CLI mode flag is set
	if *listTargets || *checkTarget || *showStatus || *showHistory || *runTUI {
		runCLI(ctx, cfg)
		return
	}

	// Start the fyne application (GUI mode)
	common.LogInfo("Starting %s v%s", common.AppName, appVersion)
	app := ui.NewApp(cfg, appVersion)
	app.Run()
}

// runCLI handles command-line interface operations.
// It accepts a context for graceful shutdown support.
func runCLI(ctx context.Context, cfg *config.Config) {
	cliApp, err := cli.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// Check if context is already cancelled before proceeding
	select {
	case <-ctx.Done():
		common.LogInfo("Operation cancelled before execution")
		cliApp.Close()
		return
	default:
	}

	var cliErr error

	switch {
	case *listTargets:
		cliErr = cliApp.ListTargets()
	case *checkTarget:
		cliErr = cliApp.Check(ctx, flag.Arg(0))
	case *showStatus:
		cliErr = cliApp.Status()
	case *showHistory:
		cliErr = cliApp.History(ctx, *historySize)
	case *runTUI:
		toggle, buildErr := cliApp.BuildToggle(flag.Arg(0))
		if buildErr != nil {
			cliErr = buildErr
		} else {
			cliErr = tui.Run(toggle)
		}
	}

	cliApp.Close()

	if cliErr != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", cliErr)
		os.Exit(1)
	}
}

// setupSignalHandler configures graceful shutdown on SIGINT/SIGTERM.
// When a signal is received, it cancels the context to allow cleanup.
func setupSignalHandler(cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		common.LogInfo("Received signal %v, initiating graceful shutdown...", sig)
		cancel()
		// CLI mode checks the context between steps; in GUI mode the
		// window close path handles shutdown.
	}()
}
