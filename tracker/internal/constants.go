package internal

import "time"

// Server identity placeholders
const (
	// DefaultServerName is written to a fresh config file.
	DefaultServerName = "My Server"

	// PlaceholderServerName replaces a blank ServerName after the config is loaded.
	PlaceholderServerName = "Unnamed Server"

	// DefaultServerIP is used both as the default and as the replacement for a blank ServerIp.
	DefaultServerIP = "127.0.0.1"

	// UnknownMapName is reported when the host has no map name available.
	UnknownMapName = "unknown"
)

// Database defaults
const (
	// DefaultDatabasePort is the standard MySQL port.
	DefaultDatabasePort = 3306

	// DefaultTableName is the shared server list table.
	DefaultTableName = "servers_info"

	// DefaultServerID is the primary key used when none is configured.
	DefaultServerID = 1
)

// Row status values
const (
	// StatusOffline marks the server as down in the shared table.
	StatusOffline = 0

	// StatusOnline marks the server as up in the shared table.
	StatusOnline = 1
)

// Timing defaults
const (
	// DefaultUpdateInterval is the minimum time between two player-triggered updates.
	DefaultUpdateInterval = 3 * time.Second

	// DefaultTaskTimeout bounds a single background database task.
	DefaultTaskTimeout = 10 * time.Second

	// DefaultUnloadTimeout is how long unloading waits for in-flight tasks.
	DefaultUnloadTimeout = 5 * time.Second
)
