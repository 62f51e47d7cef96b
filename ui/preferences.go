// Package ui provides the graphical user interface for DB Switch.
// This file contains the PreferencesDialog component for application settings.
package ui

import (
	"strconv"
	"strings"

	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/steve-ongera/dbswitch/config"
)

// noDefaultTarget is the selector entry meaning no configured default.
const noDefaultTarget = "(none)"

// PreferencesDialog represents the preferences dialog.
type PreferencesDialog struct {
	mainWindow    *MainWindow
	config        *config.Config
	defaultSelect *widget.Select
	notifyCheck   *widget.Check
	monitorCheck  *widget.Check
	intervalEntry *widget.Entry
	timeoutEntry  *widget.Entry
	levelSelect   *widget.Select
	fileCheck     *widget.Check
}

// NewPreferencesDialog creates a new preferences dialog.
func NewPreferencesDialog(mainWindow *MainWindow) *PreferencesDialog {
	return &PreferencesDialog{
		mainWindow: mainWindow,
		config:     mainWindow.app.config,
	}
}

// Show builds and displays the dialog.
func (pd *PreferencesDialog) Show() {
	pd.defaultSelect = widget.NewSelect(append([]string{noDefaultTarget}, pd.mainWindow.targetNames()...), nil)
	if pd.config.DefaultTarget == "" {
		pd.defaultSelect.SetSelected(noDefaultTarget)
	} else {
		pd.defaultSelect.SetSelected(pd.config.DefaultTarget)
	}

	pd.notifyCheck = widget.NewCheck("Show desktop notifications", nil)
	pd.notifyCheck.SetChecked(pd.config.ShowNotifications)

	pd.monitorCheck = widget.NewCheck("Probe server reachability", nil)
	pd.monitorCheck.SetChecked(pd.config.MonitorEnabled)

	pd.intervalEntry = widget.NewEntry()
	pd.intervalEntry.SetText(strconv.Itoa(pd.config.MonitorIntervalSeconds))

	pd.timeoutEntry = widget.NewEntry()
	pd.timeoutEntry.SetText(strconv.Itoa(pd.config.ConnectTimeoutSeconds))

	pd.levelSelect = widget.NewSelect([]string{"debug", "info", "warn", "error"}, nil)
	pd.levelSelect.SetSelected(pd.config.LogLevel)

	pd.fileCheck = widget.NewCheck("Log to file", nil)
	pd.fileCheck.SetChecked(pd.config.LogToFile)

	items := []*widget.FormItem{
		widget.NewFormItem("Default target", pd.defaultSelect),
		widget.NewFormItem("", pd.notifyCheck),
		widget.NewFormItem("", pd.monitorCheck),
		widget.NewFormItem("Probe interval (s)", pd.intervalEntry),
		widget.NewFormItem("Connect timeout (s)", pd.timeoutEntry),
		widget.NewFormItem("Log level", pd.levelSelect),
		widget.NewFormItem("", pd.fileCheck),
	}

	dialog.ShowForm("Preferences", "Save", "Cancel", items, func(confirmed bool) {
		if !confirmed {
			return
		}
		pd.apply()
	}, pd.mainWindow.window)
}

// apply writes the dialog values back to the configuration and saves
// it. Number fields keep their previous value when the entry does not
// parse.
func (pd *PreferencesDialog) apply() {
	if pd.defaultSelect.Selected == noDefaultTarget {
		pd.config.DefaultTarget = ""
	} else {
		pd.config.DefaultTarget = pd.defaultSelect.Selected
	}

	pd.config.ShowNotifications = pd.notifyCheck.Checked
	pd.config.MonitorEnabled = pd.monitorCheck.Checked
	pd.config.LogLevel = pd.levelSelect.Selected
	pd.config.LogToFile = pd.fileCheck.Checked

	if interval, err := strconv.Atoi(strings.TrimSpace(pd.intervalEntry.Text)); err == nil && interval > 0 {
		pd.config.MonitorIntervalSeconds = interval
	}
	if timeout, err := strconv.Atoi(strings.TrimSpace(pd.timeoutEntry.Text)); err == nil && timeout > 0 {
		pd.config.ConnectTimeoutSeconds = timeout
	}

	if err := pd.config.Save(); err != nil {
		dialog.ShowError(err, pd.mainWindow.window)
		return
	}

	pd.mainWindow.app.applyConfig()
	pd.mainWindow.SetStatus("Preferences saved")
}
