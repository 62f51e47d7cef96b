// Package conn implements the connection lifecycle core of DB Switch.
//
// This package implements the core functionality including:
//
//   - Lifecycle control: the two-state toggle that opens and closes
//     the database connection
//   - Target management: creating, updating, and deleting connection
//     targets persisted on disk
//   - Session opening: database/sql-backed connections for MySQL and
//     PostgreSQL targets
//   - Reachability monitoring: periodic TCP probes of the configured
//     server
//
// # Architecture
//
// The package is organized around three main types:
//
//   - Toggle: the lifecycle controller; owns the connection handle
//     and the two-valued state the display mirrors
//   - TargetManager: handles persistence and management of targets
//   - Monitor: probes the configured server and reports reachability
//
// # Toggle Flow
//
// A typical session:
//
//  1. The display surface routes the user's press to Toggle.Activate()
//  2. From Disconnected, the toggle opens a session via its Opener,
//     bounded by a timeout
//  3. On success the state flips to Connected and the surface reads
//     the new labels; on failure nothing changes and the error is shown
//  4. The next press closes the session and flips back to Disconnected
//
// The toggle performs exactly one open attempt or one close attempt
// per activation. There is no retry, no pooling, and no automatic
// reconnect.
//
// # Thread Safety
//
// Toggle holds no lock: Activate runs synchronously and the calling
// surface is responsible for suppressing re-entry while a call is in
// flight. Monitor is safe for concurrent use; it guards its own
// state and shares nothing with the toggle.
package conn
