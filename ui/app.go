package ui

import (
	"context"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"

	"github.com/steve-ongera/dbswitch/common"
	"github.com/steve-ongera/dbswitch/config"
	"github.com/steve-ongera/dbswitch/conn"
	"github.com/steve-ongera/dbswitch/history"
)

// App represents the main application
type App struct {
	app      fyne.App
	window   *MainWindow
	targets  *conn.TargetManager
	monitor  *conn.Monitor
	events   *history.Store
	notifier *Notifier
	config   *config.Config
	version  string
}

// NewApp creates a new application
func NewApp(cfg *config.Config, version string) *App {
	// Create fyne application
	fyneApp := app.NewWithID(common.AppID)

	// Create target manager
	targets, err := conn.NewTargetManager()
	if err != nil {
		panic(err)
	}

	monitorConfig := conn.DefaultMonitorConfig()
	monitorConfig.Interval = cfg.MonitorInterval()

	application := &App{
		app:      fyneApp,
		targets:  targets,
		monitor:  conn.NewMonitor(monitorConfig),
		notifier: NewNotifier(fyneApp),
		config:   cfg,
		version:  version,
	}

	// History is informational; run without it if it fails to open.
	if path, err := history.DefaultPath(); err == nil {
		if store, err := history.Open(path); err == nil {
			application.events = store
		} else {
			common.LogWarn("History unavailable: %v", err)
		}
	}

	return application
}

// Run builds the main window and enters the fyne event loop. It blocks
// until the window is closed.
func (a *App) Run() {
	a.window = NewMainWindow(a)
	a.setupMonitor()
	a.window.ShowAndRun()
	a.shutdown()
}

// Quit closes the application
func (a *App) Quit() {
	a.app.Quit()
}

// initialTarget picks the target shown when the window opens: the
// configured default, else the first saved target, else the built-in
// local one.
func (a *App) initialTarget() *conn.Target {
	if a.config.DefaultTarget != "" {
		if target, err := a.targets.GetByName(a.config.DefaultTarget); err == nil {
			return target
		}
		common.LogWarn("Configured default target %q not found", a.config.DefaultTarget)
	}

	if targets := a.targets.List(); len(targets) > 0 {
		return targets[0]
	}

	return conn.DefaultTarget()
}

// setupMonitor configures and starts the reachability monitor.
func (a *App) setupMonitor() {
	if !a.config.MonitorEnabled {
		return
	}

	a.monitor.SetOnStateChange(func(oldState, newState conn.ProbeState) {
		// Monitor callbacks fire off the main thread; marshal all UI
		// work through fyne.Do.
		fyne.Do(func() {
			if a.window != nil {
				a.window.setReachability(newState)
			}
			if a.config.ShowNotifications && newState == conn.ProbeUnreachable {
				NotifyUnreachable(a.notifier, a.monitor.Status().Addr)
			}
		})
	})

	if target := a.window.Target(); target != nil {
		a.monitor.Watch(target.Addr())
	}
	a.monitor.Start()
}

// applyConfig pushes saved preferences into the running services.
// The connect timeout applies to toggles built afterwards, so the CLI
// picks it up immediately and the window on its next start.
func (a *App) applyConfig() {
	common.GetLogger().SetLevel(a.config.LogLevelValue())
	if a.config.LogToFile {
		if err := common.GetLogger().EnableFileLogging(); err != nil {
			common.LogWarn("Failed to enable file logging: %v", err)
		}
	}

	monitorConfig := conn.DefaultMonitorConfig()
	monitorConfig.Interval = a.config.MonitorInterval()

	a.monitor.Stop()
	a.monitor.UpdateConfig(monitorConfig)

	if a.config.MonitorEnabled {
		a.setupMonitor()
	} else if a.window != nil {
		a.window.setReachability(conn.ProbeUnknown)
	}
}

// recordEvent appends an event to the history log when it is available.
func (a *App) recordEvent(eventType string, target *conn.Target, detail string) {
	if a.events == nil {
		return
	}
	event := history.Event{
		TargetID:   target.ID,
		TargetName: target.Name,
		Type:       eventType,
		Detail:     detail,
	}
	if err := a.events.Record(context.Background(), event); err != nil {
		common.LogWarn("Failed to record history event: %v", err)
	}
}

// shutdown releases resources after the event loop exits. An open
// session is closed so the server does not hold a dead connection.
func (a *App) shutdown() {
	if a.window != nil && a.window.toggle.State() == conn.StateConnected {
		if _, err := a.window.toggle.Activate(context.Background()); err != nil {
			common.LogWarn("Failed to close session on exit: %v", err)
		}
	}

	a.monitor.Stop()
	if a.events != nil {
		a.events.Close()
	}
}
