// Package ui provides the graphical user interface for DB Switch.
//
// This package implements the fyne-based user interface including:
//
//   - Main window with the target selector and the connection toggle
//   - Credential prompt backed by the keyring
//   - Preferences dialog
//   - Desktop notifications for connection events
//
// # Architecture
//
// The UI is built on fyne v2. Key components:
//
//   - App: application lifecycle, monitor wiring and history recording
//   - MainWindow: the window with the single action button
//   - PreferencesDialog: settings dialog
//   - Notifier: desktop notifications through the fyne application
//
// The window holds exactly one Toggle. The action button carries the
// toggle's action label ("Connect Me" or "Disconnect Me") and the
// status line mirrors its state, so one click always performs exactly
// one transition.
//
// # Thread Safety
//
// fyne widgets must be updated on the main thread. Activations and
// monitor probes run on background goroutines and marshal their
// results back through fyne.Do:
//
//	go func() {
//	    state, err := toggle.Activate(ctx)
//	    fyne.Do(func() {
//	        // Safe to update widgets here
//	    })
//	}()
//
// While an activation is in flight the action button is disabled, so
// the toggle is never entered twice.
//
// # File Organization
//
//   - app.go: application lifecycle and monitor wiring
//   - main_window.go: window layout, menu and the toggle flow
//   - notifications.go: desktop notification helpers
//   - preferences.go: settings dialog
package ui
