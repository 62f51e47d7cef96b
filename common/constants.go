// Package common provides shared constants, types, and utilities
// used across the DB Switch application.
package common

import "time"

// Application metadata.
const (
	// AppID is the unique identifier for the application.
	AppID = "com.dbswitch.app"
	// AppName is the display name of the application.
	AppName = "DB Switch"
	// ConfigDirName is the name of the configuration directory.
	ConfigDirName = "dbswitch"
)

// File names used by the application.
const (
	TargetsFileName     = "targets.yaml"
	ConfigFileName      = "config.yaml"
	CredentialsFileName = ".credentials"
	HistoryFileName     = "history.db"
	LogFileName         = "dbswitch.log"
)

// Default timeouts and intervals.
const (
	// ConnectTimeout bounds a single open attempt against the server.
	ConnectTimeout = 10 * time.Second
	// MonitorInterval is how often the reachability monitor probes the server.
	MonitorInterval = 30 * time.Second
	// ProbeTimeout bounds one reachability probe.
	ProbeTimeout = 5 * time.Second
)

// UI constants.
const (
	// DefaultWindowWidth is the default main window width.
	DefaultWindowWidth = 420
	// DefaultWindowHeight is the default main window height.
	DefaultWindowHeight = 260
)

// Database engines recognized in target configuration.
const (
	EngineMySQL    = "mysql"
	EnginePostgres = "postgres"
)

// Default local development target. Used only when no target has
// been configured.
const (
	DefaultEngine   = EngineMySQL
	DefaultHost     = "localhost"
	DefaultPort     = 3306
	DefaultDatabase = "test"
	DefaultUser     = "root"
)
