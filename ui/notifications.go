// Package ui provides the graphical user interface for DB Switch.
// This file contains the notification helpers for connection events.
package ui

import (
	"fyne.io/fyne/v2"

	"github.com/steve-ongera/dbswitch/common"
)

// Notifier sends desktop notifications through the running fyne
// application. It implements common.Notifier.
type Notifier struct {
	app fyne.App
}

// NewNotifier creates a notifier bound to the given application.
func NewNotifier(app fyne.App) *Notifier {
	return &Notifier{app: app}
}

// Notify sends a notification with the given title and message.
func (n *Notifier) Notify(title, message string) error {
	n.app.SendNotification(fyne.NewNotification(title, message))
	return nil
}

var _ common.Notifier = (*Notifier)(nil)

// NotifyConnected shows a notification when a session opens.
func NotifyConnected(n common.Notifier, targetName string) {
	notify(n, "Database Connected", "Connected to "+targetName)
}

// NotifyDisconnected shows a notification when a session closes.
func NotifyDisconnected(n common.Notifier, targetName string) {
	notify(n, "Database Disconnected", "Disconnected from "+targetName)
}

// NotifyError shows a notification for connection errors.
func NotifyError(n common.Notifier, targetName, errorMsg string) {
	notify(n, "Connection Error", targetName+": "+errorMsg)
}

// NotifyUnreachable shows a notification when the monitor loses the server.
func NotifyUnreachable(n common.Notifier, addr string) {
	notify(n, "Server Unreachable", addr+" stopped answering probes")
}

func notify(n common.Notifier, title, message string) {
	if n == nil {
		return
	}
	if err := n.Notify(title, message); err != nil {
		common.LogWarn("Failed to show notification: %v", err)
	}
}
