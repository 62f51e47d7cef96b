// Package common provides shared constants, types, and utilities
// used across the DB Switch application.
package common

// CredentialStore defines the interface for credential storage.
// Implementations may use the system keyring, encrypted files, etc.
type CredentialStore interface {
	// Store saves the password for a target.
	Store(targetID, password string) error
	// Get retrieves the password for a target.
	Get(targetID string) (string, error)
	// Delete removes the password for a target.
	Delete(targetID string) error
}

// Notifier defines the interface for sending desktop notifications.
type Notifier interface {
	// Notify sends a notification with the given title and message.
	Notify(title, message string) error
}
