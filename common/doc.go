// Package common provides shared constants, types, utilities, and interfaces
// used throughout the DB Switch application.
//
// This package serves as the foundation for cross-cutting concerns:
//
//   - Constants: Application-wide constants like timeouts, file names, and
//     the default development target
//   - Errors: Sentinel errors for consistent error handling across packages
//   - Interfaces: Abstractions for credential storage and notifications
//   - Logger: Leveled logging with optional rotating file output
//   - Utils: Helpers for locating the configuration and data directories
//
// # Usage
//
// Import the package to access shared functionality:
//
//	import "github.com/steve-ongera/dbswitch/common"
//
//	// Use constants
//	timeout := common.ConnectTimeout
//
//	// Use logger
//	common.LogInfo("Opening connection to %s", target.Name)
//
//	// Check errors
//	if errors.Is(err, common.ErrTargetNotFound) {
//	    // Handle missing target
//	}
package common
