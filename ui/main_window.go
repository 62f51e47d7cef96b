// Package ui provides the graphical user interface for DB Switch.
// This file contains the main window with the connection toggle.
package ui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/steve-ongera/dbswitch/common"
	"github.com/steve-ongera/dbswitch/conn"
	"github.com/steve-ongera/dbswitch/history"
	"github.com/steve-ongera/dbswitch/keyring"
)

// MainWindow represents the main application window.
type MainWindow struct {
	app    *App
	window fyne.Window
	toggle *conn.Toggle

	targetSelect *widget.Select
	statusLabel  *widget.Label
	actionBtn    *widget.Button
	progress     *widget.ProgressBarInfinite
	hintLabel    *widget.Label

	// busy suppresses the action button while an activation is in
	// flight. It is only touched on the fyne main thread: click
	// handlers run there and goroutine results come back via fyne.Do.
	busy bool

	// prompted remembers targets whose password was already asked for
	// in this session, so an empty password is not asked for twice.
	prompted map[string]bool
}

// NewMainWindow creates the main window and binds the toggle to the
// initial target.
func NewMainWindow(app *App) *MainWindow {
	mw := &MainWindow{
		app:      app,
		toggle:   conn.NewToggle(conn.SQLOpener{}, app.initialTarget()),
		prompted: make(map[string]bool),
	}
	mw.toggle.SetConnectTimeout(app.config.ConnectTimeout())

	mw.window = app.app.NewWindow(common.AppName)
	mw.window.Resize(fyne.NewSize(common.DefaultWindowWidth, common.DefaultWindowHeight))
	mw.window.SetFixedSize(true)
	mw.window.CenterOnScreen()

	// An activation in flight still owns the toggle; the window stays
	// open until it lands.
	mw.window.SetCloseIntercept(func() {
		if mw.busy {
			return
		}
		mw.window.Close()
	})

	// Every state transition lands in the widgets through this hook,
	// no matter which path triggered it.
	mw.toggle.SetOnStateChange(func(conn.State) {
		fyne.Do(mw.refreshState)
	})

	mw.createLayout()
	mw.createMenu()
	mw.refreshState()

	return mw
}

// createLayout creates the window layout.
func (mw *MainWindow) createLayout() {
	title := widget.NewLabelWithStyle(common.AppName, fyne.TextAlignCenter, fyne.TextStyle{Bold: true})

	mw.statusLabel = widget.NewLabelWithStyle("", fyne.TextAlignCenter, fyne.TextStyle{Bold: true})
	mw.hintLabel = widget.NewLabelWithStyle("", fyne.TextAlignCenter, fyne.TextStyle{Italic: true})

	mw.progress = widget.NewProgressBarInfinite()
	mw.progress.Stop()
	mw.progress.Hide()

	mw.actionBtn = widget.NewButton("", mw.onActionClicked)

	mw.targetSelect = widget.NewSelect(mw.targetNames(), mw.onTargetSelected)
	mw.targetSelect.SetSelected(mw.toggle.Target().Name)

	content := container.NewVBox(
		title,
		mw.targetSelect,
		mw.statusLabel,
		mw.progress,
		mw.actionBtn,
		mw.hintLabel,
	)

	mw.window.SetContent(container.NewPadded(content))
}

// createMenu creates the application menu.
func (mw *MainWindow) createMenu() {
	databaseMenu := fyne.NewMenu("Database",
		fyne.NewMenuItem("New Target...", mw.onAddTarget),
		fyne.NewMenuItem("Remove Target", mw.onRemoveTarget),
		fyne.NewMenuItem("Reload Targets", mw.onReloadTargets),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Preferences", mw.onPreferences),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Quit", mw.onQuit),
	)

	helpMenu := fyne.NewMenu("Help",
		fyne.NewMenuItem("Recent Events", mw.onHistory),
		fyne.NewMenuItem("About", mw.onAbout),
	)

	mw.window.SetMainMenu(fyne.NewMainMenu(databaseMenu, helpMenu))
}

// Show displays the window.
func (mw *MainWindow) Show() {
	mw.window.Show()
}

// ShowAndRun displays the window and enters the event loop.
func (mw *MainWindow) ShowAndRun() {
	mw.window.ShowAndRun()
}

// Target returns the target the toggle is currently bound to.
func (mw *MainWindow) Target() *conn.Target {
	return mw.toggle.Target()
}

// SetStatus updates the transient status line.
func (mw *MainWindow) SetStatus(text string) {
	mw.hintLabel.SetText(text)
}

// refreshState mirrors the toggle state into the widgets and the
// window title.
func (mw *MainWindow) refreshState() {
	state := mw.toggle.State()

	mw.window.SetTitle(common.AppName + " - " + state.StatusLabel())

	mw.statusLabel.Text = state.StatusLabel()
	if state == conn.StateConnected {
		mw.statusLabel.Importance = widget.SuccessImportance
	} else {
		mw.statusLabel.Importance = widget.MediumImportance
	}
	mw.statusLabel.Refresh()

	mw.actionBtn.Text = state.ActionLabel()
	if state == conn.StateConnected {
		mw.actionBtn.Importance = widget.DangerImportance
	} else {
		mw.actionBtn.Importance = widget.HighImportance
	}
	mw.actionBtn.Refresh()

	// Retargeting is only allowed while disconnected and idle.
	if state == conn.StateConnected || mw.busy {
		mw.targetSelect.Disable()
	} else {
		mw.targetSelect.Enable()
	}
}

// setBusy disables the controls while an activation is in flight.
func (mw *MainWindow) setBusy(busy bool) {
	mw.busy = busy
	if busy {
		mw.actionBtn.Disable()
		mw.progress.Show()
		mw.progress.Start()
	} else {
		mw.progress.Stop()
		mw.progress.Hide()
		mw.actionBtn.Enable()
	}
	mw.refreshState()
}

// setReachability updates the probe hint under the action button.
func (mw *MainWindow) setReachability(state conn.ProbeState) {
	status := mw.app.monitor.Status()
	switch state {
	case conn.ProbeReachable:
		mw.hintLabel.SetText(fmt.Sprintf("%s reachable (%s)", status.Addr, status.Latency.Round(time.Millisecond)))
	case conn.ProbeUnreachable:
		mw.hintLabel.SetText(status.Addr + " unreachable")
	default:
		mw.hintLabel.SetText("")
	}
}

// targetNames returns the selector options, falling back to the
// built-in local target when nothing is configured.
func (mw *MainWindow) targetNames() []string {
	targets := mw.app.targets.List()
	if len(targets) == 0 {
		return []string{conn.DefaultTarget().Name}
	}

	names := make([]string, 0, len(targets))
	for _, target := range targets {
		names = append(names, target.Name)
	}
	return names
}

// onTargetSelected rebinds the toggle when the selector changes.
func (mw *MainWindow) onTargetSelected(name string) {
	target, err := mw.app.targets.GetByName(name)
	if err != nil {
		// The built-in fallback never lives in the manager.
		fallback := conn.DefaultTarget()
		if name != fallback.Name {
			common.LogWarn("Selected target %q not found", name)
			return
		}
		target = fallback
	}

	if err := mw.toggle.SetTarget(target); err != nil {
		common.LogWarn("Cannot change target: %v", err)
		return
	}

	mw.app.monitor.Watch(target.Addr())
	mw.setReachability(conn.ProbeUnknown)
}

// onActionClicked handles a click on the action button. One click
// performs exactly one toggle: open when disconnected, close when
// connected.
func (mw *MainWindow) onActionClicked() {
	if mw.busy {
		return
	}

	target := mw.toggle.Target()

	// Opening may need a password; closing never does.
	if mw.toggle.State() == conn.StateDisconnected && !mw.fillPassword(target) {
		mw.promptPassword(target)
		return
	}

	mw.startActivation()
}

// fillPassword loads a stored password into the target. It reports
// whether the target is ready to connect without prompting.
func (mw *MainWindow) fillPassword(target *conn.Target) bool {
	if target.Password != "" || mw.prompted[targetKey(target)] {
		return true
	}

	if target.SavePassword && target.ID != "" {
		if password, err := keyring.Get(target.ID); err == nil {
			target.Password = password
			return true
		}
	}

	return false
}

// promptPassword asks for the target's password, then starts the
// activation the click began.
func (mw *MainWindow) promptPassword(target *conn.Target) {
	passwordEntry := widget.NewPasswordEntry()
	passwordEntry.SetPlaceHolder("empty for none")

	saveCheck := widget.NewCheck("Remember password", nil)
	saveCheck.SetChecked(target.SavePassword)

	items := []*widget.FormItem{
		widget.NewFormItem("Server", widget.NewLabel(fmt.Sprintf("%s@%s", target.User, target.Addr()))),
		widget.NewFormItem("Password", passwordEntry),
		widget.NewFormItem("", saveCheck),
	}

	dialog.ShowForm("Database Credentials", "Connect", "Cancel", items, func(confirmed bool) {
		if !confirmed {
			return
		}

		target.Password = passwordEntry.Text
		mw.prompted[targetKey(target)] = true

		if saveCheck.Checked && target.Password != "" && target.ID != "" {
			if err := keyring.Store(target.ID, target.Password); err != nil {
				common.LogWarn("Failed to store password: %v", err)
				mw.SetStatus("Could not save password")
			} else {
				target.SavePassword = true
				if err := mw.app.targets.Update(target); err != nil {
					common.LogWarn("Failed to persist target: %v", err)
				}
			}
		}

		mw.startActivation()
	}, mw.window)
}

// startActivation runs one toggle cycle off the main thread and lands
// the result back on it.
func (mw *MainWindow) startActivation() {
	mw.setBusy(true)

	target := mw.toggle.Target()
	opening := mw.toggle.State() == conn.StateDisconnected
	if opening {
		mw.SetStatus(fmt.Sprintf("Connecting to %s...", target.Name))
	} else {
		mw.SetStatus(fmt.Sprintf("Disconnecting from %s...", target.Name))
	}

	go func() {
		state, err := mw.toggle.Activate(context.Background())
		fyne.Do(func() {
			mw.finishActivation(target, opening, state, err)
		})
	}()
}

// finishActivation lands the result of one toggle cycle: it records
// the event, notifies and refreshes the widgets.
func (mw *MainWindow) finishActivation(target *conn.Target, opening bool, state conn.State, err error) {
	mw.setBusy(false)

	if err != nil {
		eventType := history.EventOpenFailed
		status := "Connection failed"
		if !opening {
			eventType = history.EventCloseFailed
			status = "Disconnect failed"
		}

		mw.app.recordEvent(eventType, target, err.Error())
		if mw.app.config.ShowNotifications {
			NotifyError(mw.app.notifier, target.Name, err.Error())
		}
		mw.SetStatus(status)
		dialog.ShowError(err, mw.window)
		return
	}

	switch state {
	case conn.StateConnected:
		mw.app.recordEvent(history.EventConnected, target, target.Redacted())
		if target.ID != "" {
			if err := mw.app.targets.MarkUsed(target.ID); err != nil {
				common.LogWarn("Failed to mark target used: %v", err)
			}
		}
		if mw.app.config.ShowNotifications {
			NotifyConnected(mw.app.notifier, target.Name)
		}
		mw.SetStatus(fmt.Sprintf("Connected to %s", target.Name))
	case conn.StateDisconnected:
		mw.app.recordEvent(history.EventDisconnected, target, "")
		if mw.app.config.ShowNotifications {
			NotifyDisconnected(mw.app.notifier, target.Name)
		}
		mw.SetStatus(fmt.Sprintf("Disconnected from %s", target.Name))
	}
}

// Event handlers

// onAddTarget shows the dialog to register a new target.
func (mw *MainWindow) onAddTarget() {
	nameEntry := widget.NewEntry()
	nameEntry.SetPlaceHolder("staging")

	engineSelect := widget.NewSelect([]string{common.EngineMySQL, common.EnginePostgres}, nil)
	engineSelect.SetSelected(common.EngineMySQL)

	hostEntry := widget.NewEntry()
	hostEntry.SetPlaceHolder("localhost")

	portEntry := widget.NewEntry()
	portEntry.SetPlaceHolder("engine default")

	databaseEntry := widget.NewEntry()
	userEntry := widget.NewEntry()

	items := []*widget.FormItem{
		widget.NewFormItem("Name", nameEntry),
		widget.NewFormItem("Engine", engineSelect),
		widget.NewFormItem("Host", hostEntry),
		widget.NewFormItem("Port", portEntry),
		widget.NewFormItem("Database", databaseEntry),
		widget.NewFormItem("User", userEntry),
	}

	dialog.ShowForm("New Target", "Add", "Cancel", items, func(confirmed bool) {
		if !confirmed {
			return
		}

		port := conn.DefaultPortFor(engineSelect.Selected)
		if text := strings.TrimSpace(portEntry.Text); text != "" {
			parsed, err := strconv.Atoi(text)
			if err != nil {
				dialog.ShowError(fmt.Errorf("invalid port: %s", text), mw.window)
				return
			}
			port = parsed
		}

		target := &conn.Target{
			Name:     strings.TrimSpace(nameEntry.Text),
			Engine:   engineSelect.Selected,
			Host:     strings.TrimSpace(hostEntry.Text),
			Port:     port,
			Database: strings.TrimSpace(databaseEntry.Text),
			User:     strings.TrimSpace(userEntry.Text),
		}

		if err := mw.app.targets.Add(target); err != nil {
			dialog.ShowError(err, mw.window)
			return
		}

		mw.targetSelect.Options = mw.targetNames()
		mw.targetSelect.SetSelected(target.Name)
		mw.SetStatus(fmt.Sprintf("Target '%s' added", target.Name))
	}, mw.window)
}

// onRemoveTarget removes the selected target after confirmation.
func (mw *MainWindow) onRemoveTarget() {
	if mw.busy || mw.toggle.State() == conn.StateConnected {
		dialog.ShowInformation("Remove Target", "Disconnect before removing the active target.", mw.window)
		return
	}

	target := mw.toggle.Target()
	if target.ID == "" {
		dialog.ShowInformation("Remove Target", "The built-in local target cannot be removed.", mw.window)
		return
	}

	message := fmt.Sprintf("Remove '%s'? Stored credentials are deleted as well.", target.Name)
	dialog.ShowConfirm("Remove Target", message, func(confirmed bool) {
		if !confirmed {
			return
		}

		if err := mw.app.targets.Remove(target.ID); err != nil {
			dialog.ShowError(err, mw.window)
			return
		}
		if err := keyring.Delete(target.ID); err != nil && !errors.Is(err, keyring.ErrNotFound) {
			common.LogWarn("Failed to delete stored password: %v", err)
		}

		mw.targetSelect.Options = mw.targetNames()
		mw.targetSelect.SetSelected(mw.targetSelect.Options[0])
		mw.SetStatus(fmt.Sprintf("Target '%s' removed", target.Name))
	}, mw.window)
}

// onReloadTargets re-reads the target file and refreshes the selector.
func (mw *MainWindow) onReloadTargets() {
	if err := mw.app.targets.Load(); err != nil {
		dialog.ShowError(err, mw.window)
		return
	}

	mw.targetSelect.Options = mw.targetNames()
	mw.targetSelect.Refresh()
	mw.SetStatus("Targets reloaded")
}

// onPreferences opens the settings dialog.
func (mw *MainWindow) onPreferences() {
	NewPreferencesDialog(mw).Show()
}

// onHistory shows the most recent connection events.
func (mw *MainWindow) onHistory() {
	if mw.app.events == nil {
		dialog.ShowInformation("Recent Events", "History is not available.", mw.window)
		return
	}

	events, err := mw.app.events.Recent(context.Background(), 10)
	if err != nil {
		dialog.ShowError(err, mw.window)
		return
	}
	if len(events) == 0 {
		dialog.ShowInformation("Recent Events", "No events recorded yet.", mw.window)
		return
	}

	var b strings.Builder
	for _, event := range events {
		fmt.Fprintf(&b, "%s  %-12s %s\n", event.At.Format("01/02 15:04"), event.Type, event.TargetName)
	}
	dialog.ShowInformation("Recent Events", b.String(), mw.window)
}

// onAbout shows the about dialog.
func (mw *MainWindow) onAbout() {
	message := fmt.Sprintf("%s v%s\n\nConnect and disconnect a database with one click.\nManage connection targets with ease.",
		common.AppName, mw.app.version)
	dialog.ShowInformation("About "+common.AppName, message, mw.window)
}

// onQuit leaves the event loop unless an activation is in flight.
func (mw *MainWindow) onQuit() {
	if mw.busy {
		return
	}
	mw.app.Quit()
}

// targetKey identifies a target across prompts; ad-hoc targets have
// no ID.
func targetKey(target *conn.Target) string {
	if target.ID != "" {
		return target.ID
	}
	return target.Name
}
